package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAccountType enforces that the authenticated principal is one
// of the given account types ("client" for tenant operators, "user" for
// booking subjects).  It assumes JWTAuth has already stored the typ
// claim in the context.  Requests with a missing or disallowed type are
// rejected with 403.
func RequireAccountType(types ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := c.Get("account_type")
			typ, ok := v.(string)
			if !ok || !allowed[typ] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
