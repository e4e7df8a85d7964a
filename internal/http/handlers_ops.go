package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"fintrack/internal/log"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports not_ready when the templates are missing or the store
// does not answer a ping within five seconds.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]string{"templates": "ok", "store": "ok"}
	if len(s.templates) == 0 {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	if p, ok := s.store.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
			checks["store"] = fmt.Sprintf("failed: %v", err)
			status, code = "not_ready", http.StatusServiceUnavailable
		}
	}

	NewResponse().Status(code).JSON(map[string]any{
		"status":    status,
		"checks":    checks,
		"timestamp": time.Now().Format(time.RFC3339),
	}).Write(w)
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.tracer.GetMetrics()
	limitMetrics := s.limiter.GetMetrics()

	metrics := []struct {
		name, help, kind string
		value            int64
	}{
		{"http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests},
		{"http_last_response_microseconds", "Duration of the last response", "gauge", traceMetrics.LastResponseMicro},
		{"transactions_recorded_total", "Transactions recorded through the web app", "counter", s.recorded.Load()},
		{"rate_limit_hits_total", "Requests rejected by the rate limiter", "counter", limitMetrics.TotalHits},
		{"rate_limit_clients", "Clients tracked by the rate limiter", "gauge", limitMetrics.ClientCount},
		{"suspicious_requests_total", "Requests flagged by the security detector", "counter", s.detector.SuspiciousCount()},
		{"uptime_seconds", "Seconds since the server started", "gauge", int64(time.Since(s.started).Seconds())},
	}

	var body []byte
	for _, m := range metrics {
		body = fmt.Appendf(body, "# HELP %s %s\n# TYPE %s %s\n%s %d\n\n", m.name, m.help, m.name, m.kind, m.name, m.value)
	}
	NewResponse().Header("Content-Type", "text/plain; version=0.0.4; charset=utf-8").Body(body).Write(w)
}
