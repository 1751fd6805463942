// Package http serves the optional diagnostics endpoints of the client.
package http

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/lf9/taskdesk/internal/api"
	"github.com/lf9/taskdesk/internal/infrastructure/http/handlers"
)

// NewRouter builds the diagnostics Echo instance.
func NewRouter(log zerolog.Logger, deps map[string]handlers.Pinger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = api.NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			log.Debug().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("diag request")
			return nil
		},
	}))

	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(deps)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
