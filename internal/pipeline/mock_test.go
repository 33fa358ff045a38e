package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/couchcryptid/weather-sensor-bridge/internal/domain"
	"github.com/couchcryptid/weather-sensor-bridge/internal/observability"
	"github.com/couchcryptid/weather-sensor-bridge/internal/pipeline"
	"github.com/couchcryptid/weather-sensor-bridge/internal/sink"
)

// --- mocks ---

type poll struct {
	raw     domain.RawReading
	outcome domain.Outcome
}

// mockSource replays scripted polls, then reports NoData forever.
type mockSource struct {
	mu       sync.Mutex
	beginErr error
	begins   int
	polls    []poll
	calls    int
}

func (m *mockSource) Begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.begins++
	return m.beginErr
}

func (m *mockSource) Poll() (domain.RawReading, domain.Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if len(m.polls) == 0 {
		return domain.RawReading{}, domain.NoData
	}
	p := m.polls[0]
	m.polls = m.polls[1:]
	return p.raw, p.outcome
}

func (m *mockSource) pollCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func decoded(raw domain.RawReading) poll {
	return poll{raw: raw, outcome: domain.Decoded}
}

// recorder captures every sink publish and subscriber invocation.
type recorder struct {
	mu       sync.Mutex
	numbers  map[string][]float64
	binaries map[string][]bool
	texts    map[string][]string
	records  []domain.CanonicalRecord
}

func newRecorder() *recorder {
	return &recorder{
		numbers:  map[string][]float64{},
		binaries: map[string][]bool{},
		texts:    map[string][]string{},
	}
}

func (r *recorder) number(name string) sink.Numeric {
	return sink.NumericFunc(func(v float64) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.numbers[name] = append(r.numbers[name], v)
	})
}

func (r *recorder) binary(name string) sink.Binary {
	return sink.BinaryFunc(func(v bool) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.binaries[name] = append(r.binaries[name], v)
	})
}

func (r *recorder) text(name string) sink.Text {
	return sink.TextFunc(func(v string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.texts[name] = append(r.texts[name], v)
	})
}

func (r *recorder) subscriber(_ context.Context, rec domain.CanonicalRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

func (r *recorder) sinkCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, v := range r.numbers {
		n += len(v)
	}
	for _, v := range r.binaries {
		n += len(v)
	}
	for _, v := range r.texts {
		n += len(v)
	}
	return n
}

func (r *recorder) recordCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// attach wires every sink slot and one subscriber to r.
func (r *recorder) attach(p *pipeline.Pipeline) {
	p.SetSensorIDSink(r.text("sensor_id"))
	p.SetRSSISink(r.number("rssi"))
	p.SetBatteryLowSink(r.binary("battery_low"))
	p.SetTemperatureSink(r.number("temperature"))
	p.SetHumiditySink(r.number("humidity"))
	p.SetWindGustSink(r.number("wind_gust"))
	p.SetWindSpeedSink(r.number("wind_speed"))
	p.SetWindDirectionSink(r.number("wind_direction"))
	p.SetRainSink(r.number("rain"))
	p.SetUVSink(r.number("uv"))
	p.SetLightSink(r.number("light"))
	p.Subscribe(r.subscriber)
}

type mockEmitter struct {
	mu      sync.Mutex
	err     error
	emitted []domain.CanonicalRecord
}

func (m *mockEmitter) Emit(_ context.Context, rec domain.CanonicalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emitted = append(m.emitted, rec)
	return m.err
}

var errBoom = errors.New("boom")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}
