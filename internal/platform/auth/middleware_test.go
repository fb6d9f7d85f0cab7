package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newGuardTest() (*echo.Echo, *TokenService) {
	return echo.New(), NewTokenService([]byte("test-secret"), time.Hour)
}

func doRequest(e *echo.Echo, mw echo.MiddlewareFunc, header string, handler echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := mw(handler)(c)
	return rec, err
}

func TestRequired_MissingHeader(t *testing.T) {
	e, tokens := newGuardTest()
	called := false
	_, err := doRequest(e, Required(tokens), "", func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", httpErr.Code)
	}
	if called {
		t.Error("handler must not run without a token")
	}
}

func TestRequired_ValidToken(t *testing.T) {
	e, tokens := newGuardTest()
	ident := Identity{ID: uuid.New(), Email: "doc@example.com", Role: RoleDoctor}
	token, _ := tokens.Issue(ident)

	_, err := doRequest(e, Required(tokens), "Bearer "+token, func(c echo.Context) error {
		got, ok := FromContext(c.Request().Context())
		if !ok {
			t.Error("expected identity in request context")
		}
		if got.ID != ident.ID || got.Role != RoleDoctor {
			t.Errorf("unexpected identity %+v", got)
		}
		return c.NoContent(http.StatusOK)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequired_ExpiredAndMalformedIndistinguishable(t *testing.T) {
	e, tokens := newGuardTest()
	expired, _ := tokens.Issue(Identity{ID: uuid.New(), Role: RolePatient})
	tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	handler := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	_, expErr := doRequest(e, Required(tokens), "Bearer "+expired, handler)
	_, malErr := doRequest(e, Required(tokens), "Bearer not.a.token", handler)

	expHTTP, ok1 := expErr.(*echo.HTTPError)
	malHTTP, ok2 := malErr.(*echo.HTTPError)
	if !ok1 || !ok2 {
		t.Fatalf("expected echo.HTTPError for both, got %v / %v", expErr, malErr)
	}
	if expHTTP.Code != http.StatusUnauthorized || malHTTP.Code != http.StatusUnauthorized {
		t.Errorf("expected 401/401, got %d/%d", expHTTP.Code, malHTTP.Code)
	}
	if expHTTP.Message != malHTTP.Message {
		t.Errorf("failure bodies differ: %v vs %v", expHTTP.Message, malHTTP.Message)
	}
}

func TestRequireRole_Allowed(t *testing.T) {
	e, tokens := newGuardTest()
	token, _ := tokens.Issue(Identity{ID: uuid.New(), Role: RoleAdmin})

	chain := Required(tokens)(RequireRole(RoleAdmin, RoleDoctor)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	if err := chain(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequireRole_Forbidden(t *testing.T) {
	e, tokens := newGuardTest()
	token, _ := tokens.Issue(Identity{ID: uuid.New(), Role: RolePatient})

	called := false
	chain := Required(tokens)(RequireRole(RoleAdmin)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	err := chain(e.NewContext(req, rec))

	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %v", err)
	}
	// A valid identity with the wrong role is a 403, not a 401.
	if httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", httpErr.Code)
	}
	if called {
		t.Error("handler must not run for a forbidden role")
	}
}

func TestRequireRole_NoIdentity(t *testing.T) {
	e, _ := newGuardTest()
	chain := RequireRole(RoleAdmin)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	err := chain(e.NewContext(req, rec))

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 when no identity resolved, got %v", err)
	}
}

func TestOptional_NoToken(t *testing.T) {
	e, tokens := newGuardTest()
	_, err := doRequest(e, Optional(tokens), "", func(c echo.Context) error {
		if _, ok := FromContext(c.Request().Context()); ok {
			t.Error("expected no identity for anonymous request")
		}
		return c.NoContent(http.StatusOK)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOptional_InvalidTokenProceedsAnonymously(t *testing.T) {
	e, tokens := newGuardTest()
	_, err := doRequest(e, Optional(tokens), "Bearer junk", func(c echo.Context) error {
		if _, ok := FromContext(c.Request().Context()); ok {
			t.Error("expected no identity for invalid token")
		}
		return c.NoContent(http.StatusOK)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOptional_ValidToken(t *testing.T) {
	e, tokens := newGuardTest()
	ident := Identity{ID: uuid.New(), Role: RolePatient}
	token, _ := tokens.Issue(ident)

	_, err := doRequest(e, Optional(tokens), "Bearer "+token, func(c echo.Context) error {
		got, ok := FromContext(c.Request().Context())
		if !ok || got.ID != ident.ID {
			t.Errorf("expected identity %s, got %+v (ok=%v)", ident.ID, got, ok)
		}
		return c.NoContent(http.StatusOK)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
