// Package httpmetrics exposes the per-request counter every service reports:
// http_requests_total labelled by method and route, pulled from /metrics.
package httpmetrics

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics owns a process-scoped registry. It is created once at startup and
// injected into the echo instance; nothing reconfigures it at runtime.
type Metrics struct {
	service  string
	registry *prometheus.Registry
	requests *prometheus.CounterVec
}

// New builds a registry with process/runtime collectors and the request
// counter registered.
func New(service string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route"})
	registry.MustRegister(requests)

	return &Metrics{service: service, registry: registry, requests: requests}
}

// Setup installs the counting middleware and the /metrics endpoint.
func (m *Metrics) Setup(e *echo.Echo) {
	e.Use(m.countRequests())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  m.service,
		Registerer: m.registry,
	}))
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: m.registry,
	}))
}

func (m *Metrics) countRequests() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}
			m.requests.WithLabelValues(c.Request().Method, route).Inc()
			return next(c)
		}
	}
}
