package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/weather-sensor-bridge/internal/decoder"
	"github.com/couchcryptid/weather-sensor-bridge/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SnapshotReader returns the last record published for a sensor, or an error
// wrapping domain.ErrNoReading.
type SnapshotReader interface {
	Latest(ctx context.Context, sensorID string) (domain.CanonicalRecord, error)
}

// AllReady combines checkers; it reports the first failure.
func AllReady(checkers ...sharedobs.ReadinessChecker) sharedobs.ReadinessChecker {
	return readinessChain(checkers)
}

type readinessChain []sharedobs.ReadinessChecker

func (c readinessChain) CheckReadiness(ctx context.Context) error {
	for _, rc := range c {
		if err := rc.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Server exposes health, readiness, metrics and snapshot HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz and /metrics routes.
// When snapshots is non-nil it also serves GET /sensors/{id}/latest, where id
// is hex in any case, with or without 0x.
func NewServer(addr string, ready sharedobs.ReadinessChecker, snapshots SnapshotReader, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	if snapshots != nil {
		mux.HandleFunc("GET /sensors/{id}/latest", s.handleLatest(snapshots))
	}

	return s
}

func (s *Server) handleLatest(snapshots SnapshotReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := decoder.ParseSensorID(r.PathValue("id"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		id := domain.FormatSensorID(n)
		rec, err := snapshots.Latest(r.Context(), id)
		switch {
		case errors.Is(err, domain.ErrNoReading):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error(), "sensor_id": id})
			return
		case err != nil:
			s.logger.Error("snapshot lookup failed", "sensor_id", id, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "snapshot lookup failed"})
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
