package storage

import (
	"context"

	"issuetracker/internal/domain"
)

type Repository interface {
	CreateUser(ctx context.Context, user domain.User) (domain.User, error)
	GetUser(ctx context.Context, id string) (domain.User, error)
	GetUserByName(ctx context.Context, name string) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	DeleteUser(ctx context.Context, id string) (domain.User, error)
	// AddAssignedIssue registers the issue in the user's assigned set;
	// re-adding an already present issue is a no-op.
	AddAssignedIssue(ctx context.Context, userID, issueID string) error

	CreateIssue(ctx context.Context, issue domain.Issue) (domain.Issue, error)
	GetIssue(ctx context.Context, id string) (domain.Issue, error)
	UpdateIssue(ctx context.Context, issue domain.Issue) (domain.Issue, error)
	ListIssues(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, error)
	CountIssues(ctx context.Context, status *string) (int, error)
	ListIssuesByAssignee(ctx context.Context, userID string) ([]domain.Issue, error)

	CreateComment(ctx context.Context, comment domain.Comment) (domain.Comment, error)
	GetComment(ctx context.Context, id string) (domain.Comment, error)
	ListCommentsByIssue(ctx context.Context, issueID string) ([]domain.Comment, error)

	Health(ctx context.Context) error
}
