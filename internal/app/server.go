package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"journal-classifier/internal/common/logger"
)

// NewMetricsMux serves /health and /metrics.
func NewMetricsMux(runID string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"runId":  runID,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// StartMetricsServer serves the metrics mux on addr until the returned
// shutdown func is called.
func StartMetricsServer(addr, runID string, log logger.Logger) func(ctx context.Context) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewMetricsMux(runID),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("Health/Metrics server listening", map[string]interface{}{"address": addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Health/Metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()
	return srv.Shutdown
}
