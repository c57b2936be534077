// Package api exposes the matching and trust engines over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mutualaid-matching/internal/common/config"
	"mutualaid-matching/internal/common/logger"
	"mutualaid-matching/internal/common/observability"
)

// Server owns the HTTP listener and route table.
type Server struct {
	httpServer *http.Server
	handlers   *Handlers
	obs        *observability.Observability
	logger     logger.Logger
}

func NewServer(cfg config.ServerConfig, handlers *Handlers, obs *observability.Observability, log logger.Logger) *Server {
	s := &Server{
		handlers: handlers,
		obs:      obs,
		logger:   log.WithFields(map[string]interface{}{"component": "http-server"}),
	}

	mux := http.NewServeMux()
	s.register(mux)

	s.httpServer = &http.Server{
		Addr:              cfg.Address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handlers.HandleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /v1/matches/score", s.instrument("score_match", s.handlers.HandleScoreMatch))
	mux.HandleFunc("POST /v1/users/score-pair", s.instrument("score_pair", s.handlers.HandleScorePair))
	mux.HandleFunc("GET /v1/demands/{id}/recommendations", s.instrument("demand_recommendations", s.handlers.HandleDemandRecommendations))
	mux.HandleFunc("GET /v1/services/{id}/recommendations", s.instrument("service_recommendations", s.handlers.HandleServiceRecommendations))

	mux.HandleFunc("POST /v1/trust-scores/{userId}/compute", s.instrument("compute_trust", s.handlers.HandleComputeTrust))
	mux.HandleFunc("GET /v1/trust-scores/{userId}", s.instrument("get_trust", s.handlers.HandleGetTrust))
	mux.HandleFunc("GET /v1/users/high-trust", s.instrument("high_trust_users", s.handlers.HandleHighTrustUsers))
}

// instrument wraps a handler with request counting and latency
// recording under the given operation label.
func (s *Server) instrument(operation string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rw, r)

		if s.obs != nil {
			status := "success"
			if rw.status >= 400 {
				status = "error"
			}
			s.obs.RecordRequest(r.Context(), operation, status)
			s.obs.RecordDuration(r.Context(), operation, time.Since(start))
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Start blocks serving requests until the listener closes.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{"addr": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
