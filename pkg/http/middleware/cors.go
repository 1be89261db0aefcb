package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// CORS lets browser dashboards read the API. origins lists the allowed
// Origin values; a single "*" allows any origin.
func CORS(origins []string) echo.MiddlewareFunc {
	wildcard := len(origins) == 1 && origins[0] == "*"

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			origin := c.Request().Header.Get("Origin")
			if origin == "" {
				return next(c)
			}

			if !wildcard && !contains(origins, origin) {
				return next(c)
			}

			h := c.Response().Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", strings.Join([]string{
				http.MethodGet, http.MethodOptions,
			}, ", "))
			h.Set("Access-Control-Allow-Headers", strings.Join([]string{
				echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
			}, ", "))

			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusNoContent)
			}
			return next(c)
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
