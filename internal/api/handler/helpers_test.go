package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/transporteur/marketplace/internal/api/middleware"
	"github.com/transporteur/marketplace/internal/core/domain"
)

var (
	clientP  = domain.Principal{AccountID: 1, Email: "client@example.com", Role: domain.RoleClient, ClientID: 10}
	carrierP = domain.Principal{AccountID: 2, Email: "carrier@example.com", Role: domain.RoleCarrier, CarrierID: 20}
	adminP   = domain.Principal{AccountID: 3, Email: "admin@example.com", Role: domain.RoleAdmin}
)

// newContext builds an echo context for a JSON request. A non-empty
// principal is installed the way the Principal middleware does it.
func newContext(method, target, body string, p domain.Principal) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if p.Email != "" {
		c.Set(middleware.KeyPrincipal, p)
	}
	return c, rec
}

func withParam(c echo.Context, name, value string) echo.Context {
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return resp
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return resp
}

// expectHTTPError asserts err is an *echo.HTTPError with the given code.
func expectHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected HTTP error %d, got %v", code, err)
	}
	if he.Code != code {
		t.Fatalf("expected HTTP error %d, got %d (%v)", code, he.Code, he.Message)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("expected %d, got %d: %s", code, rec.Code, rec.Body.String())
	}
}

var errUnexpected = errors.New("unexpected call")

func failCall(t *testing.T) error {
	t.Helper()
	t.Fatalf("service should not be called")
	return errUnexpected
}
