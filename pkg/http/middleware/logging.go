package middleware

import (
	"time"

	applogger "GapSight/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging writes one structured line per request. 5xx responses are
// logged at error level and anything slower than slowThreshold at warn, so
// a quiet log means a healthy API.
func RequestLogging(l *applogger.Logger, slowThreshold time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if l == nil {
				return next(c)
			}

			start := time.Now()
			err := next(c)
			elapsed := time.Since(start)

			status := c.Response().Status
			fields := []applogger.Field{
				applogger.String("method", c.Request().Method),
				applogger.String("route", routeLabel(c)),
				applogger.Int("status", status),
				applogger.Duration("duration", elapsed),
				applogger.String("remote", c.Request().RemoteAddr),
			}

			switch {
			case status >= 500:
				l.Error("http request failed", fields...)
			case slowThreshold > 0 && elapsed >= slowThreshold:
				l.Warn("http request slow", fields...)
			default:
				l.Debug("http request", fields...)
			}

			return err
		}
	}
}

// routeLabel prefers the route template over the raw URL so log lines and
// metric labels stay bounded.
func routeLabel(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	return c.Request().URL.Path
}
