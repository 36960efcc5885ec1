package domain

import "time"

type IssueStatus string

const (
	StatusOpen       IssueStatus = "OPEN"
	StatusAssigned   IssueStatus = "ASSIGNED"
	StatusInProgress IssueStatus = "IN_PROGRESS"
	StatusResolved   IssueStatus = "RESOLVED"
	StatusClosed     IssueStatus = "CLOSED"
)

func ValidStatus(s IssueStatus) bool {
	switch s {
	case StatusOpen, StatusAssigned, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

type User struct {
	ID               string
	Name             string
	Email            string
	PasswordHash     string
	AssignedIssueIDs []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Issue struct {
	ID          string
	Title       string
	Description string
	Status      IssueStatus
	AssignedTo  *string
	CommentIDs  []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Comment struct {
	ID        string
	Content   string
	AuthorID  string
	IssueID   string
	CreatedAt time.Time
}

// Token is the signed credential returned by login.
type Token struct {
	Value string
}

// IssueFilter narrows issue listings; nil fields are unconstrained.
type IssueFilter struct {
	Status     *string
	AssignedTo *string
}
