package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"issuetracker/internal/config"
	"issuetracker/internal/domain"
	"issuetracker/internal/storage"
)

var _ storage.Repository = (*Store)(nil)

type Store struct {
	client   *driver.Client
	users    *driver.Collection
	issues   *driver.Collection
	comments *driver.Collection
}

func New(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	client, err := driver.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx) //nolint:errcheck
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(cfg.Database)
	store := &Store{
		client:   client,
		users:    db.Collection("users"),
		issues:   db.Collection("issues"),
		comments: db.Collection("comments"),
	}

	if err := store.ensureIndexes(ctx); err != nil {
		client.Disconnect(ctx) //nolint:errcheck
		return nil, err
	}

	return store, nil
}

func (s *Store) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.client.Disconnect(ctx) //nolint:errcheck
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, driver.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

type userDoc struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty"`
	Name           string               `bson:"name"`
	Email          string               `bson:"email"`
	HashPwd        string               `bson:"hashPwd"`
	AssignedIssues []primitive.ObjectID `bson:"assignedIssues"`
	CreatedAt      time.Time            `bson:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt"`
}

type issueDoc struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Title       string               `bson:"title"`
	Description string               `bson:"description"`
	Status      string               `bson:"status"`
	AssignedTo  *primitive.ObjectID  `bson:"assignedTo"`
	Comments    []primitive.ObjectID `bson:"comments"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

type commentDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Content   string             `bson:"content"`
	Author    primitive.ObjectID `bson:"author"`
	Issue     primitive.ObjectID `bson:"issue"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (s *Store) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	doc := userDoc{
		Name:           user.Name,
		Email:          user.Email,
		HashPwd:        user.PasswordHash,
		AssignedIssues: []primitive.ObjectID{},
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}

	res, err := s.users.InsertOne(ctx, doc)
	if err != nil {
		if driver.IsDuplicateKeyError(err) {
			return domain.User{}, domain.ErrUserExists
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return mapUser(doc), nil
}

func (s *Store) GetUser(ctx context.Context, id string) (domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.User{}, domain.ErrUserNotFound
	}

	var doc userDoc
	if err := s.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, driver.ErrNoDocuments) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("find user: %w", err)
	}
	return mapUser(doc), nil
}

func (s *Store) GetUserByName(ctx context.Context, name string) (domain.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, bson.M{"name": name}).Decode(&doc); err != nil {
		if errors.Is(err, driver.ErrNoDocuments) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("find user by name: %w", err)
	}
	return mapUser(doc), nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	cursor, err := s.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []domain.User
	for cursor.Next(ctx) {
		var doc userDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, mapUser(doc))
	}
	return users, cursor.Err()
}

func (s *Store) DeleteUser(ctx context.Context, id string) (domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.User{}, domain.ErrUserNotFound
	}

	var doc userDoc
	if err := s.users.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, driver.ErrNoDocuments) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("delete user: %w", err)
	}
	return mapUser(doc), nil
}

func (s *Store) AddAssignedIssue(ctx context.Context, userID, issueID string) error {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}
	issueOID, err := primitive.ObjectIDFromHex(issueID)
	if err != nil {
		return domain.ErrIssueNotFound
	}

	res, err := s.users.UpdateByID(ctx, userOID, bson.M{
		"$addToSet": bson.M{"assignedIssues": issueOID},
	})
	if err != nil {
		return fmt.Errorf("add assigned issue: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *Store) CreateIssue(ctx context.Context, issue domain.Issue) (domain.Issue, error) {
	doc := issueDoc{
		Title:       issue.Title,
		Description: issue.Description,
		Status:      string(issue.Status),
		AssignedTo:  nil,
		Comments:    []primitive.ObjectID{},
		CreatedAt:   issue.CreatedAt,
		UpdatedAt:   issue.UpdatedAt,
	}

	res, err := s.issues.InsertOne(ctx, doc)
	if err != nil {
		return domain.Issue{}, fmt.Errorf("insert issue: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return mapIssue(doc), nil
}

func (s *Store) GetIssue(ctx context.Context, id string) (domain.Issue, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.Issue{}, domain.ErrIssueNotFound
	}

	var doc issueDoc
	if err := s.issues.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, driver.ErrNoDocuments) {
			return domain.Issue{}, domain.ErrIssueNotFound
		}
		return domain.Issue{}, fmt.Errorf("find issue: %w", err)
	}
	return mapIssue(doc), nil
}

func (s *Store) UpdateIssue(ctx context.Context, issue domain.Issue) (domain.Issue, error) {
	oid, err := primitive.ObjectIDFromHex(issue.ID)
	if err != nil {
		return domain.Issue{}, domain.ErrIssueNotFound
	}

	update := bson.M{
		"title":       issue.Title,
		"description": issue.Description,
		"status":      string(issue.Status),
		"updatedAt":   issue.UpdatedAt,
	}
	if issue.AssignedTo != nil {
		assignee, err := primitive.ObjectIDFromHex(*issue.AssignedTo)
		if err != nil {
			return domain.Issue{}, domain.ErrUserNotFound
		}
		update["assignedTo"] = assignee
	} else {
		update["assignedTo"] = nil
	}

	res, err := s.issues.UpdateByID(ctx, oid, bson.M{"$set": update})
	if err != nil {
		return domain.Issue{}, fmt.Errorf("update issue: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.Issue{}, domain.ErrIssueNotFound
	}

	return s.GetIssue(ctx, issue.ID)
}

func (s *Store) ListIssues(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, error) {
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.AssignedTo != nil {
		oid, err := primitive.ObjectIDFromHex(*filter.AssignedTo)
		if err != nil {
			return nil, nil
		}
		query["assignedTo"] = oid
	}
	return s.findIssues(ctx, query)
}

func (s *Store) CountIssues(ctx context.Context, status *string) (int, error) {
	query := bson.M{}
	if status != nil {
		query["status"] = *status
	}
	count, err := s.issues.CountDocuments(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("count issues: %w", err)
	}
	return int(count), nil
}

func (s *Store) ListIssuesByAssignee(ctx context.Context, userID string) ([]domain.Issue, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return s.findIssues(ctx, bson.M{"assignedTo": oid})
}

func (s *Store) findIssues(ctx context.Context, query bson.M) ([]domain.Issue, error) {
	cursor, err := s.issues.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	defer cursor.Close(ctx)

	var issues []domain.Issue
	for cursor.Next(ctx) {
		var doc issueDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode issue: %w", err)
		}
		issues = append(issues, mapIssue(doc))
	}
	return issues, cursor.Err()
}

// CreateComment inserts the comment and then appends its reference to the
// owning issue. The two writes are sequential; a failure between them leaves
// the comment unreferenced (accepted limitation).
func (s *Store) CreateComment(ctx context.Context, comment domain.Comment) (domain.Comment, error) {
	authorOID, err := primitive.ObjectIDFromHex(comment.AuthorID)
	if err != nil {
		return domain.Comment{}, domain.ErrUserNotFound
	}
	issueOID, err := primitive.ObjectIDFromHex(comment.IssueID)
	if err != nil {
		return domain.Comment{}, domain.ErrIssueNotFound
	}

	doc := commentDoc{
		Content:   comment.Content,
		Author:    authorOID,
		Issue:     issueOID,
		CreatedAt: comment.CreatedAt,
	}

	res, err := s.comments.InsertOne(ctx, doc)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)

	if _, err := s.issues.UpdateByID(ctx, issueOID, bson.M{
		"$push": bson.M{"comments": doc.ID},
	}); err != nil {
		return domain.Comment{}, fmt.Errorf("append comment reference: %w", err)
	}

	return mapComment(doc), nil
}

func (s *Store) GetComment(ctx context.Context, id string) (domain.Comment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.Comment{}, domain.ErrCommentNotFound
	}

	var doc commentDoc
	if err := s.comments.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, driver.ErrNoDocuments) {
			return domain.Comment{}, domain.ErrCommentNotFound
		}
		return domain.Comment{}, fmt.Errorf("find comment: %w", err)
	}
	return mapComment(doc), nil
}

func (s *Store) ListCommentsByIssue(ctx context.Context, issueID string) ([]domain.Comment, error) {
	oid, err := primitive.ObjectIDFromHex(issueID)
	if err != nil {
		return nil, domain.ErrIssueNotFound
	}

	cursor, err := s.comments.Find(ctx, bson.M{"issue": oid}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer cursor.Close(ctx)

	var comments []domain.Comment
	for cursor.Next(ctx) {
		var doc commentDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode comment: %w", err)
		}
		comments = append(comments, mapComment(doc))
	}
	return comments, cursor.Err()
}

func (s *Store) Health(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func mapUser(doc userDoc) domain.User {
	assigned := make([]string, 0, len(doc.AssignedIssues))
	for _, oid := range doc.AssignedIssues {
		assigned = append(assigned, oid.Hex())
	}
	return domain.User{
		ID:               doc.ID.Hex(),
		Name:             doc.Name,
		Email:            doc.Email,
		PasswordHash:     doc.HashPwd,
		AssignedIssueIDs: assigned,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
}

func mapIssue(doc issueDoc) domain.Issue {
	var assignedTo *string
	if doc.AssignedTo != nil {
		id := doc.AssignedTo.Hex()
		assignedTo = &id
	}
	commentIDs := make([]string, 0, len(doc.Comments))
	for _, oid := range doc.Comments {
		commentIDs = append(commentIDs, oid.Hex())
	}
	return domain.Issue{
		ID:          doc.ID.Hex(),
		Title:       doc.Title,
		Description: doc.Description,
		Status:      domain.IssueStatus(doc.Status),
		AssignedTo:  assignedTo,
		CommentIDs:  commentIDs,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

func mapComment(doc commentDoc) domain.Comment {
	return domain.Comment{
		ID:        doc.ID.Hex(),
		Content:   doc.Content,
		AuthorID:  doc.Author.Hex(),
		IssueID:   doc.Issue.Hex(),
		CreatedAt: doc.CreatedAt,
	}
}
