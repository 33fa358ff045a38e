package domain

import (
	"fmt"
	"time"
)

// FormatSensorID renders id as eight uppercase hex digits.
func FormatSensorID(id uint32) string {
	return fmt.Sprintf("%08X", id)
}

// Normalize converts a raw reading into its canonical record. Flags are
// checked before any value is read; invalid fields become NotAvailable.
func Normalize(raw RawReading, receivedAt time.Time) CanonicalRecord {
	rec := CanonicalRecord{
		SensorID:   FormatSensorID(raw.SensorID),
		SensorType: raw.SensorType,
		RSSI:       raw.RSSI,
		BatteryOK:  raw.BatteryOK,
		BatteryLow: !raw.BatteryOK,

		Temperature: field(raw.TempOK, raw.TempC),
		Humidity:    field(raw.HumidityOK, raw.Humidity),
		Rain:        field(raw.RainOK, raw.RainMM),
		UV:          field(raw.UVOK, raw.UV),
		Light:       field(raw.LightOK, raw.LightKlx),

		ReceivedAt: receivedAt,
	}

	rec.WindGust = field(raw.WindOK, raw.WindGust)
	rec.WindSpeed = field(raw.WindOK, raw.WindAvg)
	rec.WindDirection = field(raw.WindOK, raw.WindDirection)

	return rec
}

func field(ok bool, v float64) Field {
	if !ok {
		return Missing()
	}
	return Available(v)
}
