package domain

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	MinNameLength     = 5
	MinTitleLength    = 5
	MinDescLength     = 5
	MinPasswordLength = 8
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

func ValidateNewUser(name, email, password string) error {
	if name == "" || email == "" {
		return fmt.Errorf("%w: name and email are required", ErrValidation)
	}
	if len(name) < MinNameLength {
		return fmt.Errorf("%w: name requires at least %d characters", ErrValidation, MinNameLength)
	}
	if !emailPattern.MatchString(strings.ToLower(email)) {
		return fmt.Errorf("%w: please provide a valid email", ErrValidation)
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password requires at least %d characters", ErrValidation, MinPasswordLength)
	}
	return nil
}

func ValidateNewIssue(title, description string) error {
	if title == "" || description == "" {
		return fmt.Errorf("%w: title and description are required", ErrValidation)
	}
	if len(title) < MinTitleLength {
		return fmt.Errorf("%w: title requires at least %d characters", ErrValidation, MinTitleLength)
	}
	if len(description) < MinDescLength {
		return fmt.Errorf("%w: description requires at least %d characters", ErrValidation, MinDescLength)
	}
	return nil
}

func ValidateNewComment(content, authorID, issueID string) error {
	if content == "" || issueID == "" {
		return fmt.Errorf("%w: issueId and content are required", ErrValidation)
	}
	if authorID == "" {
		return fmt.Errorf("%w: author is required", ErrValidation)
	}
	return nil
}

// NormalizeEmail mirrors the persistence-layer lowercase constraint.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
