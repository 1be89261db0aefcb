package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	applogger "GapSight/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Recover turns handler panics into 500 responses so one bad request
// cannot take the server down.
func Recover(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = fmt.Errorf("%v", r)
					}
					if l != nil {
						l.Error("http handler panic",
							applogger.String("route", routeLabel(c)),
							applogger.String("stack", string(debug.Stack())),
							applogger.Error(err),
						)
					}
					_ = c.JSON(http.StatusInternalServerError, map[string]interface{}{
						"status":  http.StatusInternalServerError,
						"message": http.StatusText(http.StatusInternalServerError),
					})
				}
			}()
			return next(c)
		}
	}
}
