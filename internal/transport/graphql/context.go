package graphqltransport

import (
	"context"

	"issuetracker/internal/domain"
)

type contextKey struct{}

var currentUserKey contextKey

func withCurrentUser(ctx context.Context, user domain.User) context.Context {
	return context.WithValue(ctx, currentUserKey, user)
}

// CurrentUser returns the caller decoded from the request's bearer token,
// if one was presented and verified.
func CurrentUser(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(currentUserKey).(domain.User)
	return user, ok
}
