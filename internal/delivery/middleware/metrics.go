package middleware

import (
	"strconv"
	"time"

	"spurt/internal/infra/metrics"

	"github.com/labstack/echo/v4"
)

// unmatchedRoute labels requests that hit no registered route so raw paths never become label values.
const unmatchedRoute = "unmatched"

// MetricsMiddleware records request counts and latency per route template.
type MetricsMiddleware struct{}

// NewMetricsMiddleware creates a new metrics middleware
func NewMetricsMiddleware() *MetricsMiddleware {
	return &MetricsMiddleware{}
}

// Handle observes the wrapped handler
func (m *MetricsMiddleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		// Let the error handler write the status before it is read. The handler
		// skips responses that are already committed.
		if err != nil && !c.Response().Committed {
			c.Error(err)
		}

		route := c.Path()
		if route == "" {
			route = unmatchedRoute
		}
		method := c.Request().Method
		status := strconv.Itoa(c.Response().Status)

		metrics.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
		metrics.HTTPRequestDurationSeconds.WithLabelValues(method, route).Observe(time.Since(start).Seconds())

		return err
	}
}
