package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testIdentity() Identity {
	return Identity{ID: uuid.New(), Email: "jane@example.com", Role: RolePatient}
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), time.Hour)
	ident := testIdentity()

	token, err := svc.Issue(ident)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != ident.ID {
		t.Errorf("expected id %s, got %s", ident.ID, got.ID)
	}
	if got.Email != ident.Email {
		t.Errorf("expected email %s, got %s", ident.Email, got.Email)
	}
	if got.Role != ident.Role {
		t.Errorf("expected role %s, got %s", ident.Role, got.Role)
	}
}

func TestVerify_ExpiredToken(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), time.Hour)
	token, err := svc.Issue(testIdentity())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Shift the clock past expiry.
	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = svc.Verify(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	base := time.Now()
	svc := NewTokenService([]byte("test-secret"), time.Hour)
	svc.now = func() time.Time { return base }

	token, err := svc.Issue(testIdentity())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// One second before expiry the token still verifies.
	svc.now = func() time.Time { return base.Add(time.Hour - time.Second) }
	if _, err := svc.Verify(token); err != nil {
		t.Errorf("token should verify just before expiry: %v", err)
	}

	// One second after expiry it does not.
	svc.now = func() time.Time { return base.Add(time.Hour + time.Second) }
	if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken after expiry, got %v", err)
	}
}

func TestVerify_MalformedToken(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), time.Hour)
	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := NewTokenService([]byte("secret-a"), time.Hour)
	verifier := NewTokenService([]byte("secret-b"), time.Hour)

	token, err := issuer.Issue(testIdentity())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := verifier.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestVerify_FailuresCollapse(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), time.Hour)
	expired, _ := svc.Issue(testIdentity())
	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, expiredErr := svc.Verify(expired)
	_, malformedErr := svc.Verify("garbage")

	if expiredErr == nil || malformedErr == nil {
		t.Fatal("expected both verifications to fail")
	}
	// Expired and malformed tokens must be indistinguishable.
	if expiredErr.Error() != malformedErr.Error() {
		t.Errorf("failure modes differ: %q vs %q", expiredErr, malformedErr)
	}
}

func TestRefresh_ExtendsExpiry(t *testing.T) {
	base := time.Now()
	svc := NewTokenService([]byte("test-secret"), time.Hour)
	svc.now = func() time.Time { return base }

	token, err := svc.Issue(testIdentity())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Refresh half way through the lifetime.
	svc.now = func() time.Time { return base.Add(30 * time.Minute) }
	refreshed, err := svc.Refresh(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Past the original expiry the refreshed token is still valid.
	svc.now = func() time.Time { return base.Add(80 * time.Minute) }
	if _, err := svc.Verify(refreshed); err != nil {
		t.Errorf("refreshed token should outlive the original: %v", err)
	}
	if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("original token should have expired, got %v", err)
	}
}

func TestRefresh_ExpiredTokenFails(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), time.Hour)
	token, _ := svc.Issue(testIdentity())

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.Refresh(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken refreshing expired token, got %v", err)
	}
}

func TestNewTokenService_DefaultTTL(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), 0)
	if svc.ttl != DefaultTokenTTL {
		t.Errorf("expected default ttl %s, got %s", DefaultTokenTTL, svc.ttl)
	}
}
