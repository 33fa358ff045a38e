package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/weather-sensor-bridge/internal/domain"
	"github.com/couchcryptid/weather-sensor-bridge/internal/observability"
	"github.com/couchcryptid/weather-sensor-bridge/internal/sink"
	"github.com/jonboulle/clockwork"
)

var (
	// ErrDecoderInit wraps a failure to start the decoder.
	ErrDecoderInit = errors.New("decoder initialization failed")
	// ErrNotInitialized is returned by Tick before a successful Initialize.
	ErrNotInitialized = errors.New("pipeline not initialized")
)

// Component is the lifecycle a host drives: one Initialize, then repeated Ticks.
type Component interface {
	Initialize(ctx context.Context) error
	Tick(ctx context.Context) error
}

// Source yields at most one decoded reading per call.
type Source interface {
	Begin() error
	Poll() (domain.RawReading, domain.Outcome)
}

// Pipeline runs decode, filter, classify, normalize and fanout once per tick.
type Pipeline struct {
	src          Source
	clock        clockwork.Clock
	logger       *slog.Logger
	metrics      *observability.Metrics
	pollInterval time.Duration
	dispatcher   *Dispatcher

	initialized atomic.Bool

	mu     sync.Mutex
	filter domain.IdentityFilter
	sinks  sink.Set
}

var _ Component = (*Pipeline)(nil)

// New creates a Pipeline reading from src. pollInterval is the delay Run
// waits after every tick.
func New(src Source, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, pollInterval time.Duration) *Pipeline {
	return &Pipeline{
		src:          src,
		clock:        clock,
		logger:       logger,
		metrics:      metrics,
		pollInterval: pollInterval,
		dispatcher:   NewDispatcher(),
	}
}

// Initialize starts the decoder. Once it has succeeded further calls are no-ops.
func (p *Pipeline) Initialize(_ context.Context) error {
	if p.initialized.Load() {
		return nil
	}
	p.logger.Info("starting sensor decoder")
	if err := p.src.Begin(); err != nil {
		return fmt.Errorf("%w: %w", ErrDecoderInit, err)
	}
	p.initialized.Store(true)
	p.logger.Info("sensor decoder initialized")
	return nil
}

// CheckReadiness returns nil once the decoder has been initialized.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.initialized.Load() {
		return errors.New("decoder has not been initialized")
	}
	return nil
}

// Run initializes the pipeline and ticks until the context is cancelled. The
// context is only checked between ticks.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.Initialize(ctx); err != nil {
		return err
	}

	p.logger.Info("pipeline started", "poll_interval", p.pollInterval)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	for {
		if ctx.Err() != nil {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
		if err := p.Tick(ctx); err != nil {
			return err
		}
		if !p.throttle(ctx) {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// Tick makes one decode attempt and, for an accepted weather reading, publishes
// one canonical record to the sinks and then to every subscriber. Subscribers
// get a context that keeps ctx's values but is never cancelled.
func (p *Pipeline) Tick(ctx context.Context) error {
	if !p.initialized.Load() {
		return ErrNotInitialized
	}

	start := time.Now()
	defer func() { p.metrics.TickDuration.Observe(time.Since(start).Seconds()) }()

	raw, outcome := p.src.Poll()
	p.metrics.Ticks.WithLabelValues(outcome.String()).Inc()

	switch outcome {
	case domain.Decoded:
	case domain.DecodeError:
		p.logger.Debug("decode attempt failed")
		return nil
	default:
		return nil
	}

	p.mu.Lock()
	filter, sinks := p.filter, p.sinks
	p.mu.Unlock()

	if !filter.Allow(raw.SensorID) {
		target, _ := filter.Target()
		p.logger.Debug("ignoring sensor",
			"sensor_id", domain.FormatSensorID(raw.SensorID),
			"filter", domain.FormatSensorID(target),
		)
		p.metrics.ReadingsRejected.WithLabelValues("identity").Inc()
		return nil
	}

	if !domain.IsWeather(raw.SensorType) {
		p.logger.Debug("ignoring non-weather sensor",
			"sensor_id", domain.FormatSensorID(raw.SensorID),
			"sensor_type", raw.SensorType.String(),
		)
		p.metrics.ReadingsRejected.WithLabelValues("sensor_type").Inc()
		return nil
	}

	rec := domain.Normalize(raw, p.clock.Now())
	Publish(sinks, rec)
	// Subscribers may do I/O; cancellation must not cut off the last record.
	p.dispatcher.Dispatch(context.WithoutCancel(ctx), rec)
	p.metrics.RecordsDispatched.Inc()

	p.logger.Debug("data published",
		"sensor_id", rec.SensorID,
		"temperature", rec.Temperature,
		"humidity", rec.Humidity,
		"wind_speed", rec.WindSpeed,
		"wind_gust", rec.WindGust,
		"wind_direction", rec.WindDirection,
		"rain", rec.Rain,
		"uv", rec.UV,
		"light", rec.Light,
		"rssi", rec.RSSI,
		"battery", batteryText(rec.BatteryOK),
	)
	return nil
}

// throttle waits the poll interval. Returns false if the context ended first.
func (p *Pipeline) throttle(ctx context.Context) bool {
	if p.pollInterval <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-p.clock.After(p.pollInterval):
		return true
	}
}

func batteryText(ok bool) string {
	if ok {
		return "OK"
	}
	return "Low"
}

// Dispatcher returns the dispatcher subscribers and triggers register with.
func (p *Pipeline) Dispatcher() *Dispatcher {
	return p.dispatcher
}

// Subscribe registers fn to receive every published record.
func (p *Pipeline) Subscribe(fn Subscriber) {
	p.dispatcher.Subscribe(fn)
}

// SetFilterSensorID restricts publishing to readings from id.
func (p *Pipeline) SetFilterSensorID(id uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filter.Set(id)
}

// SetSensorIDSink attaches the sink for the formatted sensor id.
func (p *Pipeline) SetSensorIDSink(s sink.Text) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinks.SensorID = s
}

// SetRSSISink attaches the sink for signal strength in dBm.
func (p *Pipeline) SetRSSISink(s sink.Numeric) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinks.RSSI = s
}

// SetBatteryLowSink attaches the sink for the low-battery flag.
func (p *Pipeline) SetBatteryLowSink(s sink.Binary) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinks.BatteryLow = s
}

// SetTemperatureSink attaches the sink for temperature in °C.
func (p *Pipeline) SetTemperatureSink(s sink.Numeric) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinks.Temperature = s
}

// SetHumiditySink attaches the sink for relative humidity in %.
func (p *Pipeline) SetHumiditySink(s sink.Numeric) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinks.Humidity = s
}

// SetWindGustSink attaches the sink for wind gust in m/s.
func (p *Pipeline) SetWindGustSink(s sink.Numeric) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinks.WindGust = s
}

// SetWindSpeedSink attaches the sink for average wind speed in m/s.
func (p *Pipeline) SetWindSpeedSink(s sink.Numeric) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinks.WindSpeed = s
}

// SetWindDirectionSink attaches the sink for wind direction in degrees.
func (p *Pipeline) SetWindDirectionSink(s sink.Numeric) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinks.WindDirection = s
}

// SetRainSink attaches the sink for accumulated rain in mm.
func (p *Pipeline) SetRainSink(s sink.Numeric) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinks.Rain = s
}

// SetUVSink attaches the sink for the UV index.
func (p *Pipeline) SetUVSink(s sink.Numeric) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinks.UV = s
}

// SetLightSink attaches the sink for light intensity in klx.
func (p *Pipeline) SetLightSink(s sink.Numeric) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinks.Light = s
}
