package main

import (
	"github.com/couchcryptid/weather-sensor-bridge/internal/config"
	"github.com/couchcryptid/weather-sensor-bridge/internal/observability"
	"github.com/couchcryptid/weather-sensor-bridge/internal/pipeline"
	"github.com/couchcryptid/weather-sensor-bridge/internal/sink"
)

// stateSinks hands out per-field sinks. *mqtt.Publisher implements it.
type stateSinks interface {
	NumberSink(field string) sink.Numeric
	BinarySink(field string) sink.Binary
	TextSink(field string) sink.Text
}

// attachSinks wires a Prometheus gauge to every numeric and binary slot, plus
// a state sink for each field in fields when state is non-nil.
func attachSinks(p *pipeline.Pipeline, fields []string, metrics *observability.Metrics, state stateSinks) {
	enabled := make(map[string]bool, len(fields))
	if state != nil {
		for _, f := range fields {
			enabled[f] = true
		}
	}

	number := func(field string) sink.Numeric {
		var s sink.Numeric
		if enabled[field] {
			s = state.NumberSink(field)
		}
		return sink.Numerics(metrics.GaugeSink(field), s)
	}

	var batteryState sink.Binary
	if enabled[config.FieldBatteryLow] {
		batteryState = state.BinarySink(config.FieldBatteryLow)
	}
	var idState sink.Text
	if enabled[config.FieldSensorID] {
		idState = state.TextSink(config.FieldSensorID)
	}

	p.SetSensorIDSink(sink.Texts(idState))
	p.SetRSSISink(number(config.FieldRSSI))
	p.SetBatteryLowSink(sink.Binaries(metrics.BinaryGaugeSink(config.FieldBatteryLow), batteryState))
	p.SetTemperatureSink(number(config.FieldTemperature))
	p.SetHumiditySink(number(config.FieldHumidity))
	p.SetWindGustSink(number(config.FieldWindGust))
	p.SetWindSpeedSink(number(config.FieldWindSpeed))
	p.SetWindDirectionSink(number(config.FieldWindDirection))
	p.SetRainSink(number(config.FieldRain))
	p.SetUVSink(number(config.FieldUV))
	p.SetLightSink(number(config.FieldLight))
}
