package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/weather-sensor-bridge/internal/domain"
	"github.com/couchcryptid/weather-sensor-bridge/internal/observability"
)

// Emitter delivers a record as an event to the outside world.
type Emitter interface {
	Emit(ctx context.Context, rec domain.CanonicalRecord) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ctx context.Context, rec domain.CanonicalRecord) error

func (f EmitterFunc) Emit(ctx context.Context, rec domain.CanonicalRecord) error {
	return f(ctx, rec)
}

// Trigger re-emits every record it receives. Construction has no side
// effects; call Subscribe to attach it to a dispatcher.
type Trigger struct {
	emitter Emitter
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTrigger creates a Trigger emitting through e.
func NewTrigger(e Emitter, logger *slog.Logger, metrics *observability.Metrics) *Trigger {
	return &Trigger{emitter: e, logger: logger, metrics: metrics}
}

// Subscribe registers the trigger with d.
func (t *Trigger) Subscribe(d *Dispatcher) {
	d.Subscribe(t.fire)
}

func (t *Trigger) fire(ctx context.Context, rec domain.CanonicalRecord) {
	if err := t.emitter.Emit(ctx, rec); err != nil {
		t.logger.Warn("trigger emit failed", "error", err, "sensor_id", rec.SensorID)
		t.metrics.TriggerErrors.Inc()
	}
}
