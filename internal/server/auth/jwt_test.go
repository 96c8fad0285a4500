package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
)

func TestIssueAndVerify_SessionToken(t *testing.T) {
	t.Parallel()

	s := NewTokenService([]byte("super-secret"))

	tok, err := s.Issue("a@x.com", "", 30*time.Minute)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := s.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.Subject != "a@x.com" {
		t.Fatalf("subject mismatch: got %q", claims.Subject)
	}
	if claims.Purpose != "" {
		t.Fatalf("session token must carry no purpose, got %q", claims.Purpose)
	}
}

func TestIssueAndVerify_ResetToken(t *testing.T) {
	t.Parallel()

	s := NewTokenService([]byte("super-secret"))

	tok, err := s.Issue("a@x.com", PurposePasswordReset, 10*time.Minute)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := s.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.Purpose != PurposePasswordReset {
		t.Fatalf("purpose mismatch: got %q", claims.Purpose)
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	s := NewTokenService([]byte("secret"))

	tok, err := s.Issue("u@x.com", "", -1*time.Second)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = s.Verify(tok)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewTokenService([]byte("secret-a"))
	verifier := NewTokenService([]byte("secret-b"))

	tok, err := issuer.Issue("u@x.com", "", time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = verifier.Verify(tok)
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	t.Parallel()

	s := NewTokenService([]byte("secret"))

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := s.Verify(tok); !errors.Is(err, common.ErrInvalidToken) {
			t.Fatalf("token %q: expected common.ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestIssue_DistinctRawStrings(t *testing.T) {
	t.Parallel()

	s := NewTokenService([]byte("secret"))

	// Identical subject, purpose and validity must still produce distinct
	// raw token strings (fresh jti per issuance).
	a, err := s.Issue("u@x.com", PurposePasswordReset, 10*time.Minute)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	b, err := s.Issue("u@x.com", PurposePasswordReset, 10*time.Minute)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct token strings")
	}
}
