package domain

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"time"
)

// NotAvailable is the value carried by a field whose flag is false.
var NotAvailable = math.NaN()

// ErrNoReading reports that no record has been seen for a sensor.
var ErrNoReading = errors.New("no reading for sensor")

// Field is a physical quantity with its validity flag.
type Field struct {
	Value float64
	OK    bool
}

// Available returns a valid field holding v.
func Available(v float64) Field {
	return Field{Value: v, OK: true}
}

// Missing returns an invalid field.
func Missing() Field {
	return Field{Value: NotAvailable}
}

// MarshalJSON encodes the value, or null when the field is not available.
func (f Field) MarshalJSON() ([]byte, error) {
	if !f.OK {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// UnmarshalJSON accepts a number or null.
func (f *Field) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Missing()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Available(v)
	return nil
}

// LogValue renders an unavailable field as "n/a" instead of NaN.
func (f Field) LogValue() slog.Value {
	if !f.OK {
		return slog.StringValue("n/a")
	}
	return slog.Float64Value(f.Value)
}

// CanonicalRecord is the normalized form of a weather reading handed to
// sinks and subscribers.
type CanonicalRecord struct {
	SensorID   string     `json:"sensor_id"`
	SensorType SensorType `json:"sensor_type"`
	RSSI       float64    `json:"rssi"`
	BatteryOK  bool       `json:"battery_ok"`
	BatteryLow bool       `json:"battery_low"`

	Temperature   Field `json:"temperature"`
	Humidity      Field `json:"humidity"`
	WindGust      Field `json:"wind_gust"`
	WindSpeed     Field `json:"wind_speed"`
	WindDirection Field `json:"wind_direction"`
	Rain          Field `json:"rain"`
	UV            Field `json:"uv"`
	Light         Field `json:"light"`

	ReceivedAt time.Time `json:"received_at"`
}

// WindOK reports whether the wind group is valid.
func (r CanonicalRecord) WindOK() bool {
	return r.WindSpeed.OK
}
