package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/transporteur/marketplace/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Message string `json:"message"`
}

// badRequest lists the domain errors a client can fix by changing its request
// or by acting in a different mission state. Lookup failures belong here too:
// an unknown id is reported as 400 on every route except payment status.
var badRequest = []error{
	domain.ErrMissionNotFound,
	domain.ErrCarrierNotFound,
	domain.ErrClientNotFound,
	domain.ErrAccountNotFound,
	domain.ErrPaymentNotFound,
	domain.ErrInvalidTransition,
	domain.ErrInvalidStatus,
	domain.ErrInvalidPrice,
	domain.ErrPricePrecision,
	domain.ErrPriceNotProposed,
	domain.ErrPriceConfirmed,
	domain.ErrCarrierUnavailable,
	domain.ErrNotPaid,
	domain.ErrAlreadyPaid,
	domain.ErrPaymentExists,
	domain.ErrAmountMismatch,
	domain.ErrCardDeclined,
	domain.ErrIdempotencyReuse,
	domain.ErrInvalidCredentials,
	domain.ErrEmailTaken,
	domain.ErrInvalidRole,
	domain.ErrProfileRequired,
	domain.ErrWeakPassword,
}

var forbidden = []error{
	domain.ErrForbidden,
	domain.ErrNotMissionParty,
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"message": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, middleware rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			log.Debug().Err(he.Internal).Int("status", he.Code).Str("path", c.Path()).Msg("request rejected")
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	if matches(err, forbidden) {
		return http.StatusForbidden, err.Error()
	}
	if matches(err, badRequest) {
		return http.StatusBadRequest, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

func matches(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
