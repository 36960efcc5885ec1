package graphqltransport

import (
	"errors"

	"issuetracker/internal/domain"
)

// Error codes surfaced in the GraphQL error list.
const (
	codeBadUserInput    = "BAD_USER_INPUT"
	codeNotFound        = "NOT_FOUND"
	codeUnauthenticated = "UNAUTHENTICATED"
	codeInternal        = "INTERNAL_SERVER_ERROR"
)

// apiError carries a machine-readable code into the response's error
// extensions (picked up by the executor via the ExtendedError interface).
type apiError struct {
	code    string
	message string
}

func (e *apiError) Error() string {
	return e.message
}

func (e *apiError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.code}
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrUserExists):
		return &apiError{code: codeBadUserInput, message: err.Error()}
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrIssueNotFound),
		errors.Is(err, domain.ErrCommentNotFound):
		return &apiError{code: codeNotFound, message: err.Error()}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return &apiError{code: codeUnauthenticated, message: "invalid credentials"}
	default:
		return &apiError{code: codeInternal, message: "internal server error"}
	}
}
