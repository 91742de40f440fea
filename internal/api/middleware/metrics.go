package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inotebook/backend/internal/pkg/metrics"
)

// RequestMetrics records the duration of every request by route pattern.
// Errors are handed to c.Error first so the recorded status is the final one.
func RequestMetrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.HTTPRequestDuration.
				WithLabelValues(c.Request().Method, route, strconv.Itoa(c.Response().Status)).
				Observe(time.Since(start).Seconds())

			return nil
		}
	}
}
