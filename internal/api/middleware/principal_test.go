package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/transporteur/marketplace/internal/core/domain"
)

type stubResolver struct {
	principal domain.Principal
	err       error
}

func (s stubResolver) Resolve(_ context.Context, email string, role domain.Role) (domain.Principal, error) {
	if s.err != nil {
		return domain.Principal{}, s.err
	}
	p := s.principal
	p.Email, p.Role = email, role
	return p, nil
}

func runPrincipal(resolver stubResolver, role string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(KeyEmail, "alice@example.com")
	c.Set(KeyRole, role)

	if err := Principal(resolver)(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestPrincipal_SetsPrincipal(t *testing.T) {
	resolver := stubResolver{principal: domain.Principal{AccountID: 1, ClientID: 10}}

	rec := runPrincipal(resolver, "CLIENT", func(c echo.Context) error {
		p, ok := c.Get(KeyPrincipal).(domain.Principal)
		if !ok {
			t.Fatalf("principal not set")
		}
		if !p.IsClient(10) || p.Email != "alice@example.com" {
			t.Fatalf("unexpected principal: %+v", p)
		}
		return c.NoContent(http.StatusOK)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestPrincipal_UnknownAccount(t *testing.T) {
	rec := runPrincipal(stubResolver{err: domain.ErrAccountNotFound}, "CLIENT", func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestPrincipal_UnknownRole(t *testing.T) {
	rec := runPrincipal(stubResolver{}, "PILOT", func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
