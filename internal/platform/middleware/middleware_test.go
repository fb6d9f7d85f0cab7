package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicindia/api/internal/platform/auth"
)

func newTestContext(method, path string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequestID_Generated(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/")

	h := RequestID()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	rid, _ := c.Get("request_id").(string)
	if rid == "" {
		t.Fatal("expected request_id on context")
	}
	if got := rec.Header().Get(HeaderRequestID); got != rid {
		t.Errorf("response header = %q, want %q", got, rid)
	}
}

func TestRequestID_CallerSuppliedKept(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "client-rid-1")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequestID()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rid, _ := c.Get("request_id").(string); rid != "client-rid-1" {
		t.Errorf("request_id = %q, want client-rid-1", rid)
	}
}

func TestRecovery_PanicBecomes500(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/")

	h := Recovery(zerolog.Nop())(func(c echo.Context) error {
		panic("boom")
	})

	err := h(c)
	if err == nil {
		t.Fatal("expected error from recovered panic")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if he.Code != http.StatusInternalServerError {
		t.Errorf("code = %d, want 500", he.Code)
	}
}

func TestRateLimit_BurstThenBlocked(t *testing.T) {
	cfg := RateLimitConfig{RequestsPerSecond: 1, BurstSize: 3}
	mw := RateLimit(cfg)
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		c, _ := newTestContext(http.MethodGet, "/")
		if err := handler(c); err != nil {
			t.Fatalf("request %d unexpectedly limited: %v", i+1, err)
		}
	}

	c, rec := newTestContext(http.MethodGet, "/")
	err := handler(c)
	if err == nil {
		t.Fatal("expected rate limit error after burst exhausted")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestLogger_EmitsAuthenticatedUser(t *testing.T) {
	var buf strings.Builder
	logger := zerolog.New(&buf)

	tokens := auth.NewTokenService([]byte("test-secret"), time.Hour)
	ident := auth.Identity{ID: uuid.New(), Role: auth.RoleDoctor}
	token, err := tokens.Issue(ident)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	handler := Logger(logger)(auth.Required(tokens)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	line := buf.String()
	if !strings.Contains(line, ident.ID.String()) {
		t.Errorf("log line missing user id: %s", line)
	}
	if !strings.Contains(line, `"role":"doctor"`) {
		t.Errorf("log line missing role: %s", line)
	}
}

func TestLogger_AnonymousHasNoUserField(t *testing.T) {
	var buf strings.Builder
	logger := zerolog.New(&buf)

	handler := Logger(logger)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/doctors", nil)
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if strings.Contains(buf.String(), "user_id") {
		t.Errorf("anonymous request logged a user_id: %s", buf.String())
	}
}

// Two users behind one NAT must not share a bucket once identities are
// resolved, and the same user hitting twice must still be limited.
func TestRateLimit_PerUserBehindSharedIP(t *testing.T) {
	tokens := auth.NewTokenService([]byte("test-secret"), time.Hour)
	alice, err := tokens.Issue(auth.Identity{ID: uuid.New(), Role: auth.RolePatient})
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	bob, err := tokens.Issue(auth.Identity{ID: uuid.New(), Role: auth.RolePatient})
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	cfg := RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1}
	// Same composition as the server: identity resolution, then the limiter.
	handler := auth.Optional(tokens)(RateLimit(cfg)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}))

	e := echo.New()
	do := func(token string) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		return handler(e.NewContext(req, rec))
	}

	if err := do(alice); err != nil {
		t.Fatalf("first user limited on first request: %v", err)
	}
	if err := do(bob); err != nil {
		t.Fatalf("second user behind the same IP shares a bucket: %v", err)
	}

	err = do(alice)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for repeat user, got %v", err)
	}
}

func TestErrorHandler_HTTPErrorEnvelope(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/")

	ErrorHandler(zerolog.Nop(), false)(echo.NewHTTPError(http.StatusNotFound, "appointment not found"), c)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["error"] != "appointment not found" {
		t.Errorf("error = %q, want appointment not found", body["error"])
	}
}

func TestErrorHandler_InternalHiddenInProd(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/")

	ErrorHandler(zerolog.Nop(), false)(errors.New("pq: connection refused"), c)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Error("internal detail leaked in production mode")
	}
}

func TestErrorHandler_InternalShownInDev(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/")

	ErrorHandler(zerolog.Nop(), true)(errors.New("pq: connection refused"), c)

	if !strings.Contains(rec.Body.String(), "connection refused") {
		t.Error("expected underlying detail in dev mode")
	}
}
