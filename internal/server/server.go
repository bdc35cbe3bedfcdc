// Package server exposes the analysis engine over HTTP. The surface is thin:
// one analysis endpoint, health, and prometheus metrics.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/singleflight"

	"riskscan/internal/analysis"
	"riskscan/internal/logger"
	"riskscan/internal/metrics"
)

// Server collapses concurrent requests for the same address into one engine
// call via singleflight; the engine itself performs no deduplication.
type Server struct {
	engine  *analysis.Engine
	group   singleflight.Group
	metrics *metrics.ServerMetrics
}

// New builds a server around an engine. m may be nil (no metrics recorded),
// which tests use to avoid registry collisions.
func New(engine *analysis.Engine, m *metrics.ServerMetrics) *Server {
	return &Server{engine: engine, metrics: m}
}

// Handler returns the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/analyze", s.handleAnalyze)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// ListenAndServe runs the HTTP server until it fails.
func (s *Server) ListenAndServe(listen string) error {
	srv := &http.Server{
		Addr:         listen,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	logger.Info("listening on %s", listen)
	return srv.ListenAndServe()
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		s.countError("missing_address")
		writeError(w, http.StatusUnprocessableEntity, "Missing 'address' query parameter")
		return
	}

	// One in-flight computation per normalized address; extra concurrent
	// callers wait for the first result.
	key := strings.ToLower(address)
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.engine.Analyze(r.Context(), address)
	})
	if err != nil {
		switch {
		case errors.Is(err, analysis.ErrInvalidAddress):
			s.countError("invalid_address")
			writeError(w, http.StatusUnprocessableEntity, "Invalid contract address: "+address)
		case errors.Is(err, analysis.ErrBytecodeFetch):
			s.countError("rpc")
			logger.Error("bytecode fetch failed for %s: %v", address, err)
			writeError(w, http.StatusBadGateway, "Upstream RPC error")
		default:
			s.countError("internal")
			logger.Error("analysis of %s failed: %v", address, err)
			writeError(w, http.StatusInternalServerError, "Internal error")
		}
		return
	}

	result := v.(*analysis.AnalysisResult)
	s.record(result, time.Since(start))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) record(res *analysis.AnalysisResult, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.AnalysesTotal.WithLabelValues(string(res.Level)).Inc()
	s.metrics.AnalysisDuration.Observe(elapsed.Seconds())
	for _, f := range res.Findings {
		s.metrics.FindingsTotal.WithLabelValues(f.Detector).Inc()
	}
}

func (s *Server) countError(kind string) {
	if s.metrics != nil {
		s.metrics.AnalysisErrors.WithLabelValues(kind).Inc()
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
