package handler

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"github.com/transporteur/marketplace/internal/api/middleware"
	"github.com/transporteur/marketplace/internal/core/domain"
)

// ctxPrincipal returns the principal injected by the Principal middleware.
// Its absence means the route was wired without authentication.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := c.Get(middleware.KeyPrincipal).(domain.Principal)
	if !ok || p.Email == "" {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return p, nil
}

// decimalID matches a positive base-10 id without sign or leading zeros.
// cast infers the base from the prefix, so "010" and "0x1f" must not reach it.
var decimalID = regexp.MustCompile(`^[1-9][0-9]*$`)

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	raw := c.Param(name)
	if !decimalID.MatchString(raw) {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	id, err := cast.ToInt64E(raw)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// bind decodes the request body into req and validates it.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload").SetInternal(err)
	}
	if err := c.Validate(req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
