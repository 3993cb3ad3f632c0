package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTIssuer_IssueAndVerify(t *testing.T) {
	t.Parallel()

	issuer := NewJWTIssuer("super-secret", time.Hour)
	tok, err := issuer.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	got, err := issuer.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if got != "user-123" {
		t.Fatalf("user id mismatch: got %q", got)
	}
}

func TestJWTIssuer_TokensAreDistinct(t *testing.T) {
	t.Parallel()

	issuer := NewJWTIssuer("k", time.Hour)
	a, _ := issuer.Issue("u1")
	b, _ := issuer.Issue("u1")
	if a == b {
		t.Fatalf("expected distinct tokens for consecutive issues")
	}
}

func TestJWTIssuer_Expired(t *testing.T) {
	t.Parallel()

	issuer := NewJWTIssuer("k", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := issuer.Issue("u1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	issuer.now = time.Now
	if _, err := issuer.Verify(tok); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTIssuer_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, _ := NewJWTIssuer("right", time.Hour).Issue("u2")
	if _, err := NewJWTIssuer("wrong", time.Hour).Verify(tok); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTIssuer_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: "u3"})
	signed, err := tok.SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewJWTIssuer("k", time.Hour).Verify(signed); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTIssuer_Malformed(t *testing.T) {
	t.Parallel()

	if _, err := NewJWTIssuer("k", time.Hour).Verify("not.a.jwt"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
