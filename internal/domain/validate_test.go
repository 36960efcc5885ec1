package domain

import (
	"errors"
	"testing"
)

func TestValidateNewUser(t *testing.T) {
	cases := []struct {
		name     string
		userName string
		email    string
		password string
		wantErr  bool
	}{
		{"valid", "Alice Johnson", "alice@example.com", "password123", false},
		{"missing name", "", "alice@example.com", "password123", true},
		{"missing email", "Alice Johnson", "", "password123", true},
		{"short name", "Al", "alice@example.com", "password123", true},
		{"bad email", "Alice Johnson", "not-an-email", "password123", true},
		{"uppercase email accepted", "Alice Johnson", "Alice@Example.COM", "password123", false},
		{"short password", "Alice Johnson", "alice@example.com", "1234567", true},
		{"exactly eight chars", "Alice Johnson", "alice@example.com", "12345678", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateNewUser(tc.userName, tc.email, tc.password)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr && !errors.Is(err, ErrValidation) {
				t.Fatalf("error does not wrap ErrValidation: %v", err)
			}
		})
	}
}

func TestValidateNewIssue(t *testing.T) {
	if err := ValidateNewIssue("Bug in login flow", "Users cannot log in."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateNewIssue("", "Users cannot log in."); err == nil {
		t.Fatalf("empty title accepted")
	}
	if err := ValidateNewIssue("Bug in login flow", ""); err == nil {
		t.Fatalf("empty description accepted")
	}
	if err := ValidateNewIssue("Bug", "Users cannot log in."); err == nil {
		t.Fatalf("short title accepted")
	}
	if err := ValidateNewIssue("Bug in login flow", "Bad"); err == nil {
		t.Fatalf("short description accepted")
	}
}

func TestValidateNewComment(t *testing.T) {
	if err := ValidateNewComment("Looks good", "u1", "i1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateNewComment("", "u1", "i1"); err == nil {
		t.Fatalf("empty content accepted")
	}
	if err := ValidateNewComment("Looks good", "", "i1"); err == nil {
		t.Fatalf("missing author accepted")
	}
	if err := ValidateNewComment("Looks good", "u1", ""); err == nil {
		t.Fatalf("missing issue accepted")
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []IssueStatus{StatusOpen, StatusAssigned, StatusInProgress, StatusResolved, StatusClosed} {
		if !ValidStatus(s) {
			t.Fatalf("%s should be valid", s)
		}
	}
	if ValidStatus("MERGED") {
		t.Fatalf("unknown status accepted")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Alice@Example.COM "); got != "alice@example.com" {
		t.Fatalf("NormalizeEmail: %q", got)
	}
}
