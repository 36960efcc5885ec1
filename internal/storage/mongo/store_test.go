package mongo_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"issuetracker/internal/config"
	"issuetracker/internal/domain"
	"issuetracker/internal/storage/mongo"
)

func TestUserLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, ctx)

	created, err := store.CreateUser(ctx, testUser("Alice Johnson", "alice@example.com"))
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("created user has no id")
	}

	byID, err := store.GetUser(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if byID.Email != "alice@example.com" {
		t.Fatalf("unexpected email: %s", byID.Email)
	}

	byName, err := store.GetUserByName(ctx, "Alice Johnson")
	if err != nil {
		t.Fatalf("GetUserByName: %v", err)
	}
	if byName.ID != created.ID {
		t.Fatalf("lookup by name returned %s, want %s", byName.ID, created.ID)
	}

	deleted, err := store.DeleteUser(ctx, created.ID)
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if deleted.ID != created.ID {
		t.Fatalf("deleted wrong user: %s", deleted.ID)
	}
	if _, err := store.GetUser(ctx, created.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound after delete, got %v", err)
	}
}

func TestDuplicateEmailRejected(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, ctx)

	if _, err := store.CreateUser(ctx, testUser("Alice Johnson", "alice@example.com")); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	_, err := store.CreateUser(ctx, testUser("Alice Clone", "alice@example.com"))
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestMalformedIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, ctx)

	if _, err := store.GetUser(ctx, "not-an-object-id"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := store.GetIssue(ctx, "not-an-object-id"); !errors.Is(err, domain.ErrIssueNotFound) {
		t.Fatalf("expected ErrIssueNotFound, got %v", err)
	}
}

func TestAddAssignedIssueSetSemantics(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, ctx)

	user, err := store.CreateUser(ctx, testUser("Alice Johnson", "alice@example.com"))
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	issue, err := store.CreateIssue(ctx, testIssue("Bug in login flow"))
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := store.AddAssignedIssue(ctx, user.ID, issue.ID); err != nil {
			t.Fatalf("AddAssignedIssue #%d: %v", i+1, err)
		}
	}

	reloaded, err := store.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if len(reloaded.AssignedIssueIDs) != 1 || reloaded.AssignedIssueIDs[0] != issue.ID {
		t.Fatalf("assigned set: %v", reloaded.AssignedIssueIDs)
	}
}

func TestIssueUpdateAndFilters(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, ctx)

	user, err := store.CreateUser(ctx, testUser("Alice Johnson", "alice@example.com"))
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	first, err := store.CreateIssue(ctx, testIssue("Bug in login flow"))
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	if _, err := store.CreateIssue(ctx, testIssue("Add dark mode support")); err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	first.Status = domain.StatusAssigned
	first.AssignedTo = &user.ID
	first.UpdatedAt = time.Now().UTC()
	updated, err := store.UpdateIssue(ctx, first)
	if err != nil {
		t.Fatalf("UpdateIssue: %v", err)
	}
	if updated.AssignedTo == nil || *updated.AssignedTo != user.ID {
		t.Fatalf("assignee after update: %v", updated.AssignedTo)
	}

	assigned := string(domain.StatusAssigned)
	byStatus, err := store.ListIssues(ctx, domain.IssueFilter{Status: &assigned})
	if err != nil {
		t.Fatalf("ListIssues by status: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].ID != first.ID {
		t.Fatalf("status filter: %+v", byStatus)
	}

	byAssignee, err := store.ListIssues(ctx, domain.IssueFilter{AssignedTo: &user.ID})
	if err != nil {
		t.Fatalf("ListIssues by assignee: %v", err)
	}
	if len(byAssignee) != 1 {
		t.Fatalf("assignee filter: %+v", byAssignee)
	}

	bogus := "not-an-object-id"
	none, err := store.ListIssues(ctx, domain.IssueFilter{AssignedTo: &bogus})
	if err != nil {
		t.Fatalf("ListIssues with bogus assignee: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("bogus assignee matched issues: %+v", none)
	}

	count, err := store.CountIssues(ctx, &assigned)
	if err != nil {
		t.Fatalf("CountIssues: %v", err)
	}
	if count != 1 {
		t.Fatalf("assigned count: %d", count)
	}
}

func TestCommentsAppendToIssue(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, ctx)

	user, err := store.CreateUser(ctx, testUser("Bob Smith", "bob@example.com"))
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	issue, err := store.CreateIssue(ctx, testIssue("Bug in login flow"))
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	var commentIDs []string
	for i, content := range []string{"First observation", "Second observation"} {
		comment, err := store.CreateComment(ctx, domain.Comment{
			Content:   content,
			AuthorID:  user.ID,
			IssueID:   issue.ID,
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("CreateComment: %v", err)
		}
		commentIDs = append(commentIDs, comment.ID)
	}

	reloaded, err := store.GetIssue(ctx, issue.ID)
	if err != nil {
		t.Fatalf("GetIssue: %v", err)
	}
	if len(reloaded.CommentIDs) != 2 {
		t.Fatalf("issue references %d comments, want 2", len(reloaded.CommentIDs))
	}
	for i, id := range commentIDs {
		if reloaded.CommentIDs[i] != id {
			t.Fatalf("comment order: %v, want %v", reloaded.CommentIDs, commentIDs)
		}
	}

	comments, err := store.ListCommentsByIssue(ctx, issue.ID)
	if err != nil {
		t.Fatalf("ListCommentsByIssue: %v", err)
	}
	if len(comments) != 2 || comments[0].Content != "First observation" {
		t.Fatalf("comment listing: %+v", comments)
	}
}

// Helpers

func testUser(name, email string) domain.User {
	now := time.Now().UTC()
	return domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: "$2a$12$fakehashfortests",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func testIssue(title string) domain.Issue {
	now := time.Now().UTC()
	return domain.Issue{
		Title:       title,
		Description: "Description for: " + title,
		Status:      domain.StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func newTestStore(t *testing.T, ctx context.Context) *mongo.Store {
	t.Helper()

	mongoContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor: wait.ForListeningPort("27017/tcp").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start mongo container: %v", err)
	}

	t.Cleanup(func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate mongo container: %v", err)
		}
	})

	host, err := mongoContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get mongo host: %v", err)
	}

	port, err := mongoContainer.MappedPort(ctx, "27017")
	if err != nil {
		t.Fatalf("failed to get mongo port: %v", err)
	}

	store, err := mongo.New(ctx, config.MongoConfig{
		URI:      fmt.Sprintf("mongodb://%s:%s", host, port.Port()),
		Database: "test",
	})
	if err != nil {
		t.Fatalf("failed to create mongo store: %v", err)
	}

	t.Cleanup(store.Close)

	return store
}
