package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestService(t *testing.T) *hs256Service {
	t.Helper()
	ts, err := NewHS256Service("test-secret", "test-issuer", time.Hour)
	if err != nil {
		t.Fatalf("NewHS256Service: %v", err)
	}
	return ts.(*hs256Service)
}

func TestNewHS256ServiceValidatesArgs(t *testing.T) {
	tests := []struct {
		name           string
		secret, issuer string
		ttl            time.Duration
	}{
		{"empty secret", "", "iss", time.Hour},
		{"empty issuer", "s", "", time.Hour},
		{"zero ttl", "s", "iss", 0},
	}
	for _, tt := range tests {
		if _, err := NewHS256Service(tt.secret, tt.issuer, tt.ttl); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	ts := newTestService(t)

	token, err := ts.Sign("alice")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	claims, err := ts.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("subject: got %q, want %q", claims.Subject, "alice")
	}
	if !claims.ExpiresAt.After(claims.IssuedAt) {
		t.Fatalf("expiry %v not after issue %v", claims.ExpiresAt, claims.IssuedAt)
	}
}

func TestSignRejectsEmptySubject(t *testing.T) {
	if _, err := newTestService(t).Sign(""); err == nil {
		t.Fatal("expected error")
	}
}

func TestVerifyRejectsTamperedBytes(t *testing.T) {
	ts := newTestService(t)
	token, err := ts.Sign("alice")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	for i := 0; i < len(token); i++ {
		b := []byte(token)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		if _, err := ts.Verify(string(b)); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("byte %d tampered: got err %v, want ErrInvalidToken", i, err)
		}
	}
}

func TestVerifyRejectsForeignTokens(t *testing.T) {
	ts := newTestService(t)

	other, _ := NewHS256Service("other-secret", "test-issuer", time.Hour)
	foreign, _ := other.Sign("alice")
	if _, err := ts.Verify(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("other secret: got %v", err)
	}

	otherIssuer, _ := NewHS256Service("test-secret", "someone-else", time.Hour)
	wrongIss, _ := otherIssuer.Sign("alice")
	if _, err := ts.Verify(wrongIss); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("other issuer: got %v", err)
	}

	for _, malformed := range []string{"", "abc", "a.b.c"} {
		if _, err := ts.Verify(malformed); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%q: got %v", malformed, err)
		}
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	ts := newTestService(t)
	issued := time.Now().Add(-2 * time.Hour)
	ts.now = func() time.Time { return issued }
	token, err := ts.Sign("alice")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	ts.now = time.Now
	if _, err := ts.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired: got %v", err)
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := WithIdentity(t.Context(), Identity{Username: "bob"})
	id, ok := GetIdentity(ctx)
	if !ok || id.Username != "bob" {
		t.Fatalf("got %+v %v", id, ok)
	}
	if _, ok := GetIdentity(t.Context()); ok {
		t.Fatal("empty context should have no identity")
	}
}
