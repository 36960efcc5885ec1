package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrIssueNotFound      = errors.New("issue not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrUserExists         = errors.New("name must be unique")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")
)
