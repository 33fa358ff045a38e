// Command replay runs a captured rtl_433 JSON-lines file through the bridge
// pipeline and prints every published record as one JSON line on stdout.
// Decoder lists and the identity filter come from the same environment as
// the bridge.
//
// Usage:
//
//	rtl_433 -F json > capture.jsonl
//	go run ./cmd/replay -input capture.jsonl
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/weather-sensor-bridge/internal/config"
	"github.com/couchcryptid/weather-sensor-bridge/internal/decoder"
	"github.com/couchcryptid/weather-sensor-bridge/internal/domain"
	"github.com/couchcryptid/weather-sensor-bridge/internal/observability"
	"github.com/couchcryptid/weather-sensor-bridge/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	input := flag.String("input", cfg.RTL433Input, "rtl_433 JSON-lines capture, - for stdin")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := replay(ctx, cfg, *input, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%d records published in %d polls\n", stats.Records, stats.Polls)
}

// idleWait is how long replay waits after a poll found nothing buffered.
const idleWait = 10 * time.Millisecond

// replayStats summarizes one replay run.
type replayStats struct {
	Records int
	Polls   int
}

// pacedSource remembers whether the last poll came back empty.
type pacedSource struct {
	pipeline.Source
	polls int
	idle  bool
}

func (s *pacedSource) Poll() (domain.RawReading, domain.Outcome) {
	raw, outcome := s.Source.Poll()
	s.polls++
	s.idle = outcome == domain.NoData
	return raw, outcome
}

// replay opens path and replays it into out.
func replay(ctx context.Context, cfg *config.Config, path string, out io.Writer) (replayStats, error) {
	src, err := decoder.OpenInput(path)
	if err != nil {
		return replayStats{}, err
	}
	defer src.Close()
	return replayFrom(ctx, cfg, src, out, clockwork.NewRealClock())
}

// replayFrom ticks the pipeline until r is drained, writing every published
// record to out. Empty polls wait idleWait so a slow source is not spun on.
func replayFrom(ctx context.Context, cfg *config.Config, r io.Reader, out io.Writer, clock clockwork.Clock) (replayStats, error) {
	logger := observability.NewLoggerTo(os.Stderr, cfg)
	dec, err := decoder.NewRTL433(r, decoder.RTL433Options{
		Buffer:  cfg.RTL433Buffer,
		Include: cfg.IncludeIDs,
		Exclude: cfg.ExcludeIDs,
	}, logger)
	if err != nil {
		return replayStats{}, err
	}

	src := &pacedSource{Source: decoder.NewAdapter(dec)}
	p := pipeline.New(src, clock, logger, observability.NewUnregisteredMetrics(), 0)
	if cfg.FilterEnabled {
		p.SetFilterSensorID(cfg.FilterSensorID)
	}

	enc := json.NewEncoder(out)
	var stats replayStats
	var encErr error
	p.Subscribe(func(_ context.Context, rec domain.CanonicalRecord) {
		if encErr != nil {
			return
		}
		if encErr = enc.Encode(rec); encErr == nil {
			stats.Records++
		}
	})

	if err := p.Initialize(ctx); err != nil {
		return stats, err
	}
	for !dec.Exhausted() && ctx.Err() == nil {
		err := p.Tick(ctx)
		stats.Polls = src.polls
		if err != nil {
			return stats, err
		}
		if encErr != nil {
			return stats, fmt.Errorf("write record: %w", encErr)
		}
		if src.idle && !dec.Exhausted() {
			select {
			case <-ctx.Done():
			case <-clock.After(idleWait):
			}
		}
	}
	return stats, nil
}
