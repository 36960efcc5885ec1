package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"issuetracker/internal/config"
	"issuetracker/internal/domain"
	"issuetracker/internal/storage"
	"issuetracker/internal/storage/postgres/migrations"
)

var _ storage.Repository = (*Store)(nil)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg config.PostgresConfig) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	store := &Store{pool: pool}
	if err := store.applyMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) applyMigrations(ctx context.Context) error {
	entries, err := migrations.Files.ReadDir(".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		sqlBytes, err := fs.ReadFile(migrations.Files, entry.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := s.pool.Exec(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	user.ID = uuid.NewString()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return domain.User{}, translateError(err)
	}

	return s.GetUser(ctx, user.ID)
}

func (s *Store) GetUser(ctx context.Context, id string) (domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.User{}, domain.ErrUserNotFound
	}

	var user domain.User
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1`, id).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, err
	}

	if user.AssignedIssueIDs, err = s.assignedIssueIDs(ctx, user.ID); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *Store) GetUserByName(ctx context.Context, name string) (domain.User, error) {
	var id string
	err := s.pool.QueryRow(ctx, `
		SELECT id
		FROM users
		WHERE name = $1
		ORDER BY created_at
		LIMIT 1`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, err
	}
	return s.GetUser(ctx, id)
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users
		ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	for i := range users {
		if users[i].AssignedIssueIDs, err = s.assignedIssueIDs(ctx, users[i].ID); err != nil {
			return nil, err
		}
	}
	return users, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) (domain.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	commandTag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, user.ID)
	if err != nil {
		return domain.User{}, err
	}
	if commandTag.RowsAffected() == 0 {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) AddAssignedIssue(ctx context.Context, userID, issueID string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_assigned_issues (user_id, issue_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, issue_id) DO NOTHING
	`, userID, issueID)
	if err != nil {
		return translateError(err)
	}
	return nil
}

func (s *Store) assignedIssueIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT issue_id
		FROM user_assigned_issues
		WHERE user_id = $1
		ORDER BY position`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) CreateIssue(ctx context.Context, issue domain.Issue) (domain.Issue, error) {
	issue.ID = uuid.NewString()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO issues (id, title, description, status, assigned_to, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, issue.ID, issue.Title, issue.Description, string(issue.Status), issue.AssignedTo, issue.CreatedAt, issue.UpdatedAt)
	if err != nil {
		return domain.Issue{}, translateError(err)
	}

	return s.GetIssue(ctx, issue.ID)
}

func (s *Store) GetIssue(ctx context.Context, id string) (domain.Issue, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Issue{}, domain.ErrIssueNotFound
	}

	var issue domain.Issue
	err := s.pool.QueryRow(ctx, `
		SELECT id, title, description, status, assigned_to, created_at, updated_at
		FROM issues
		WHERE id = $1`, id).Scan(&issue.ID, &issue.Title, &issue.Description, &issue.Status, &issue.AssignedTo, &issue.CreatedAt, &issue.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Issue{}, domain.ErrIssueNotFound
		}
		return domain.Issue{}, err
	}

	if issue.CommentIDs, err = s.commentIDs(ctx, issue.ID); err != nil {
		return domain.Issue{}, err
	}
	return issue, nil
}

func (s *Store) UpdateIssue(ctx context.Context, issue domain.Issue) (domain.Issue, error) {
	if _, err := uuid.Parse(issue.ID); err != nil {
		return domain.Issue{}, domain.ErrIssueNotFound
	}

	commandTag, err := s.pool.Exec(ctx, `
		UPDATE issues
		SET title = $2,
		    description = $3,
		    status = $4,
		    assigned_to = $5,
		    updated_at = $6
		WHERE id = $1
	`, issue.ID, issue.Title, issue.Description, string(issue.Status), issue.AssignedTo, issue.UpdatedAt)
	if err != nil {
		return domain.Issue{}, translateError(err)
	}
	if commandTag.RowsAffected() == 0 {
		return domain.Issue{}, domain.ErrIssueNotFound
	}

	return s.GetIssue(ctx, issue.ID)
}

func (s *Store) ListIssues(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, error) {
	query := `
		SELECT id, title, description, status, assigned_to, created_at, updated_at
		FROM issues`
	var conds []string
	var args []any

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.AssignedTo != nil {
		if _, err := uuid.Parse(*filter.AssignedTo); err != nil {
			return nil, nil
		}
		args = append(args, *filter.AssignedTo)
		conds = append(conds, fmt.Sprintf("assigned_to = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at, id"

	return s.queryIssues(ctx, query, args...)
}

func (s *Store) CountIssues(ctx context.Context, status *string) (int, error) {
	var count int
	var err error
	if status != nil {
		err = s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM issues WHERE status = $1`, *status).Scan(&count)
	} else {
		err = s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM issues`).Scan(&count)
	}
	return count, err
}

func (s *Store) ListIssuesByAssignee(ctx context.Context, userID string) ([]domain.Issue, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, domain.ErrUserNotFound
	}
	return s.queryIssues(ctx, `
		SELECT id, title, description, status, assigned_to, created_at, updated_at
		FROM issues
		WHERE assigned_to = $1
		ORDER BY created_at, id`, userID)
}

func (s *Store) queryIssues(ctx context.Context, query string, args ...any) ([]domain.Issue, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []domain.Issue
	for rows.Next() {
		var issue domain.Issue
		if err := rows.Scan(&issue.ID, &issue.Title, &issue.Description, &issue.Status, &issue.AssignedTo, &issue.CreatedAt, &issue.UpdatedAt); err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	for i := range issues {
		if issues[i].CommentIDs, err = s.commentIDs(ctx, issues[i].ID); err != nil {
			return nil, err
		}
	}
	return issues, nil
}

func (s *Store) commentIDs(ctx context.Context, issueID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id
		FROM comments
		WHERE issue_id = $1
		ORDER BY seq`, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) CreateComment(ctx context.Context, comment domain.Comment) (domain.Comment, error) {
	comment.ID = uuid.NewString()

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO comments (id, content, author_id, issue_id, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, comment.ID, comment.Content, comment.AuthorID, comment.IssueID, comment.CreatedAt)
		return err
	})
	if err != nil {
		return domain.Comment{}, translateError(err)
	}

	return s.GetComment(ctx, comment.ID)
}

func (s *Store) GetComment(ctx context.Context, id string) (domain.Comment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Comment{}, domain.ErrCommentNotFound
	}

	var comment domain.Comment
	err := s.pool.QueryRow(ctx, `
		SELECT id, content, author_id, issue_id, created_at
		FROM comments
		WHERE id = $1`, id).Scan(&comment.ID, &comment.Content, &comment.AuthorID, &comment.IssueID, &comment.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Comment{}, domain.ErrCommentNotFound
		}
		return domain.Comment{}, err
	}
	return comment, nil
}

func (s *Store) ListCommentsByIssue(ctx context.Context, issueID string) ([]domain.Comment, error) {
	if _, err := uuid.Parse(issueID); err != nil {
		return nil, domain.ErrIssueNotFound
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, content, author_id, issue_id, created_at
		FROM comments
		WHERE issue_id = $1
		ORDER BY seq`, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(&comment.ID, &comment.Content, &comment.AuthorID, &comment.IssueID, &comment.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func (s *Store) Health(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "users_email_key" {
			return domain.ErrUserExists
		}
	}
	return err
}
