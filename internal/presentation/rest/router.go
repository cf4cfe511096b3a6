// Package rest exposes the scoring API over HTTP.
package rest

import (
	"log/slog"
	"net/http"
)

const serviceName = "risk-service"

// NewRouter wires the API, health and metrics endpoints behind the CORS and
// request-logging middleware. metrics may be nil.
func NewRouter(risk *RiskHandler, health *HealthHandler, metrics http.Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	risk.RegisterRoutes(mux)
	health.RegisterRoutes(mux)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	return LoggingMiddleware(logger)(CORSMiddleware(mux))
}
