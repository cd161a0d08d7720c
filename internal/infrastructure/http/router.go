package http

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/transporteur/marketplace/internal/infrastructure/http/handlers"
)

// RegisterOps mounts the unauthenticated operational routes on e.
func RegisterOps(e *echo.Echo, checks map[string]handlers.Check) {
	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(checks)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Prometheus scrape endpoint (default registry) ---
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- OpenAPI UI, served from the registered swag docs ---
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
