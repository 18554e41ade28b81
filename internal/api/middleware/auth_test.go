package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/devconnector/directory-api/internal/core/domain"
)

type stubVerifier struct {
	identities map[string]*domain.Identity
	calls      int
}

func (s *stubVerifier) Verify(token string) (*domain.Identity, error) {
	s.calls++
	if id, ok := s.identities[token]; ok {
		return id, nil
	}
	return nil, domain.ErrTokenInvalid
}

func newVerifier() *stubVerifier {
	return &stubVerifier{identities: map[string]*domain.Identity{
		"good-token": {UserID: "64b000000000000000000001", Name: "Ann"},
	}}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TokenHeader, "good-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Auth(newVerifier(), zerolog.Nop())
	handler := mw(func(c echo.Context) error {
		called = true
		id, ok := IdentityFrom(c)
		if !ok {
			t.Fatalf("identity not set")
		}
		if id.UserID != "64b000000000000000000001" || id.Name != "Ann" {
			t.Fatalf("unexpected identity: %+v", id)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_HeaderNameIsCaseInsensitive(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Auth-Token", "good-token")
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Auth(newVerifier(), zerolog.Nop())(func(c echo.Context) error { return nil })
	if err := handler(c); err != nil {
		t.Fatalf("expected canonical header to be accepted, got %v", err)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	verifier := newVerifier()
	handler := Auth(verifier, zerolog.Nop())(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	err := handler(c)
	if !errors.Is(err, domain.ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing, got %v", err)
	}
	if verifier.calls != 0 {
		t.Fatalf("verifier should not run without a token")
	}
}

func TestAuthMiddleware_BlankHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TokenHeader, "   ")
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Auth(newVerifier(), zerolog.Nop())(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing, got %v", err)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TokenHeader, "not-a-token")
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Auth(newVerifier(), zerolog.Nop())(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	err := handler(c)
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	if _, ok := IdentityFrom(c); ok {
		t.Fatalf("identity must not be set for a rejected token")
	}
}

func TestAuthMiddleware_AuthorizationHeaderIsIgnored(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Auth(newVerifier(), zerolog.Nop())(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing, got %v", err)
	}
}
