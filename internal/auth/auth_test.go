package auth

import (
	"testing"
	"time"

	"issuetracker/internal/domain"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatalf("password stored in plain text")
	}

	if !CheckPassword(hash, "correct horse battery staple") {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword(hash, "wrong password") {
		t.Fatalf("wrong password accepted")
	}
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	if _, err := NewTokenManager(""); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	manager, err := NewTokenManager("test-secret")
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	user := domain.User{ID: "u-1", Name: "Alice Johnson"}
	token, err := manager.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "" {
		t.Fatalf("empty token")
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.ID != "u-1" || claims.Name != "Alice Johnson" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer, _ := NewTokenManager("secret-a")
	verifier, _ := NewTokenManager("secret-b")

	token, err := issuer.Issue(domain.User{ID: "u-1", Name: "Alice Johnson"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := verifier.Verify(token); err == nil {
		t.Fatalf("token signed with another secret accepted")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	manager, _ := NewTokenManager("test-secret")
	manager.now = func() time.Time {
		return time.Now().Add(-TokenTTL - time.Minute)
	}

	token, err := manager.Issue(domain.User{ID: "u-1", Name: "Alice Johnson"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	manager.now = time.Now
	if _, err := manager.Verify(token); err == nil {
		t.Fatalf("expired token accepted")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	manager, _ := NewTokenManager("test-secret")
	if _, err := manager.Verify("not-a-token"); err == nil {
		t.Fatalf("garbage token accepted")
	}
}
