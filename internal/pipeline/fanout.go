package pipeline

import (
	"github.com/couchcryptid/weather-sensor-bridge/internal/domain"
	"github.com/couchcryptid/weather-sensor-bridge/internal/sink"
)

// Publish pushes rec to every attached sink. Identifier, RSSI and battery are
// always pushed; a physical quantity only when its field is valid.
func Publish(s sink.Set, rec domain.CanonicalRecord) {
	if s.SensorID != nil {
		s.SensorID.Publish(rec.SensorID)
	}
	if s.RSSI != nil {
		s.RSSI.Publish(rec.RSSI)
	}
	if s.BatteryLow != nil {
		s.BatteryLow.Publish(rec.BatteryLow)
	}

	publishField(s.Temperature, rec.Temperature)
	publishField(s.Humidity, rec.Humidity)
	publishField(s.WindGust, rec.WindGust)
	publishField(s.WindSpeed, rec.WindSpeed)
	publishField(s.WindDirection, rec.WindDirection)
	publishField(s.Rain, rec.Rain)
	publishField(s.UV, rec.UV)
	publishField(s.Light, rec.Light)
}

func publishField(s sink.Numeric, f domain.Field) {
	if s == nil || !f.OK {
		return
	}
	s.Publish(f.Value)
}
