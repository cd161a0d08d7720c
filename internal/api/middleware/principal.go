package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/transporteur/marketplace/internal/core/domain"
	"github.com/transporteur/marketplace/internal/core/ports"
)

// KeyPrincipal holds the domain.Principal resolved for the request.
const KeyPrincipal = "principal"

// Principal loads the caller's account and linked profile once per request.
// It must run after Auth.
func Principal(resolver ports.PrincipalResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			email, _ := c.Get(KeyEmail).(string)
			role, ok := domain.ParseRole(stringValue(c.Get(KeyRole)))
			if email == "" || !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			p, err := resolver.Resolve(c.Request().Context(), email, role)
			switch {
			case errors.Is(err, domain.ErrAccountNotFound),
				errors.Is(err, domain.ErrClientNotFound),
				errors.Is(err, domain.ErrCarrierNotFound):
				return echo.NewHTTPError(http.StatusUnauthorized, "unknown account").SetInternal(err)
			case err != nil:
				return err
			}

			c.Set(KeyPrincipal, p)
			return next(c)
		}
	}
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
