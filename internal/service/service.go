package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"issuetracker/internal/auth"
	"issuetracker/internal/domain"
	"issuetracker/internal/storage"
)

type Service interface {
	CreateUser(ctx context.Context, name, email, password string) (domain.User, error)
	Login(ctx context.Context, name, password string) (domain.Token, error)
	DeleteUser(ctx context.Context, id string) (domain.User, error)

	CreateIssue(ctx context.Context, title, description string) (domain.Issue, error)
	AssignIssue(ctx context.Context, issueID, userID string) (domain.Issue, error)
	UpdateIssueStatus(ctx context.Context, issueID string, status domain.IssueStatus) (domain.Issue, error)
	AddComment(ctx context.Context, content, authorID, issueID string) (domain.Comment, error)

	IssuesCount(ctx context.Context, status *string) (int, error)
	ListIssues(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, error)
	GetIssue(ctx context.Context, id string) (domain.Issue, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id string) (domain.User, error)
	ListIssuesByAssignee(ctx context.Context, userID string) ([]domain.Issue, error)
	ListComments(ctx context.Context, issueID string) ([]domain.Comment, error)
	GetComment(ctx context.Context, id string) (domain.Comment, error)

	Health(ctx context.Context) error
}

type TrackerService struct {
	repo   storage.Repository
	tokens *auth.TokenManager
}

func New(repo storage.Repository, tokens *auth.TokenManager) *TrackerService {
	return &TrackerService{
		repo:   repo,
		tokens: tokens,
	}
}

func (s *TrackerService) CreateUser(ctx context.Context, name, email, password string) (domain.User, error) {
	if err := domain.ValidateNewUser(name, email, password); err != nil {
		return domain.User{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	return s.repo.CreateUser(ctx, domain.User{
		Name:         name,
		Email:        domain.NormalizeEmail(email),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (s *TrackerService) Login(ctx context.Context, name, password string) (domain.Token, error) {
	if name == "" || password == "" {
		return domain.Token{}, fmt.Errorf("%w: name and password are required", domain.ErrValidation)
	}

	user, err := s.repo.GetUserByName(ctx, name)
	if err != nil {
		return domain.Token{}, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return domain.Token{}, domain.ErrInvalidCredentials
	}

	value, err := s.tokens.Issue(user)
	if err != nil {
		return domain.Token{}, err
	}
	return domain.Token{Value: value}, nil
}

func (s *TrackerService) DeleteUser(ctx context.Context, id string) (domain.User, error) {
	if id == "" {
		return domain.User{}, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	return s.repo.DeleteUser(ctx, id)
}

func (s *TrackerService) CreateIssue(ctx context.Context, title, description string) (domain.Issue, error) {
	description = strings.TrimSpace(description)
	if err := domain.ValidateNewIssue(title, description); err != nil {
		return domain.Issue{}, err
	}

	now := time.Now().UTC()
	return s.repo.CreateIssue(ctx, domain.Issue{
		Title:       title,
		Description: description,
		Status:      domain.StatusOpen,
		AssignedTo:  nil,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// AssignIssue sets the assignee and forces status to ASSIGNED. The issue is
// also registered in the user's assigned set, so repeating the call does not
// produce duplicate entries.
func (s *TrackerService) AssignIssue(ctx context.Context, issueID, userID string) (domain.Issue, error) {
	if issueID == "" || userID == "" {
		return domain.Issue{}, fmt.Errorf("%w: id and userId are required", domain.ErrValidation)
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return domain.Issue{}, err
	}

	issue, err := s.repo.GetIssue(ctx, issueID)
	if err != nil {
		return domain.Issue{}, err
	}

	if err := s.repo.AddAssignedIssue(ctx, user.ID, issue.ID); err != nil {
		return domain.Issue{}, err
	}

	issue.AssignedTo = &user.ID
	issue.Status = domain.StatusAssigned
	issue.UpdatedAt = time.Now().UTC()

	return s.repo.UpdateIssue(ctx, issue)
}

func (s *TrackerService) UpdateIssueStatus(ctx context.Context, issueID string, status domain.IssueStatus) (domain.Issue, error) {
	if issueID == "" || status == "" {
		return domain.Issue{}, fmt.Errorf("%w: id and status are required", domain.ErrValidation)
	}
	// Any status may follow any other; only enum membership is checked.
	if !domain.ValidStatus(status) {
		return domain.Issue{}, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}

	issue, err := s.repo.GetIssue(ctx, issueID)
	if err != nil {
		return domain.Issue{}, err
	}

	issue.Status = status
	issue.UpdatedAt = time.Now().UTC()

	return s.repo.UpdateIssue(ctx, issue)
}

func (s *TrackerService) AddComment(ctx context.Context, content, authorID, issueID string) (domain.Comment, error) {
	if err := domain.ValidateNewComment(content, authorID, issueID); err != nil {
		return domain.Comment{}, err
	}

	user, err := s.repo.GetUser(ctx, authorID)
	if err != nil {
		return domain.Comment{}, err
	}

	issue, err := s.repo.GetIssue(ctx, issueID)
	if err != nil {
		return domain.Comment{}, err
	}

	return s.repo.CreateComment(ctx, domain.Comment{
		Content:   content,
		AuthorID:  user.ID,
		IssueID:   issue.ID,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *TrackerService) IssuesCount(ctx context.Context, status *string) (int, error) {
	return s.repo.CountIssues(ctx, status)
}

func (s *TrackerService) ListIssues(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, error) {
	return s.repo.ListIssues(ctx, filter)
}

func (s *TrackerService) GetIssue(ctx context.Context, id string) (domain.Issue, error) {
	return s.repo.GetIssue(ctx, id)
}

func (s *TrackerService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *TrackerService) GetUser(ctx context.Context, id string) (domain.User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *TrackerService) ListIssuesByAssignee(ctx context.Context, userID string) ([]domain.Issue, error) {
	return s.repo.ListIssuesByAssignee(ctx, userID)
}

func (s *TrackerService) ListComments(ctx context.Context, issueID string) ([]domain.Comment, error) {
	return s.repo.ListCommentsByIssue(ctx, issueID)
}

func (s *TrackerService) GetComment(ctx context.Context, id string) (domain.Comment, error) {
	return s.repo.GetComment(ctx, id)
}

func (s *TrackerService) Health(ctx context.Context) error {
	return s.repo.Health(ctx)
}
