package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mudit06mah/guardian/internal/domain/model"
	"github.com/mudit06mah/guardian/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RepoStore = (*RepoRepo)(nil)

// RepoRepo is the SQLite implementation of the RepoStore port interface.
type RepoRepo struct {
	db *DB
}

// NewRepoRepo creates a new RepoRepo backed by the given DB.
func NewRepoRepo(db *DB) *RepoRepo {
	return &RepoRepo{db: db}
}

// Add tracks a repository for an account. An empty ID is replaced with a new
// UUID and Owner/Name are derived from FullName when blank. Tracking the same
// full name twice for one account returns driven.ErrRepoAlreadyExists.
func (r *RepoRepo) Add(ctx context.Context, repo model.Repository) error {
	const query = `
		INSERT INTO repositories (id, account_login, full_name, owner, name, is_active, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	if repo.ID == "" {
		repo.ID = uuid.NewString()
	}
	if repo.Owner == "" && repo.Name == "" {
		repo.Owner, repo.Name, _ = strings.Cut(repo.FullName, "/")
	}
	addedAt := repo.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now().UTC()
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		repo.ID, repo.AccountLogin, repo.FullName, repo.Owner, repo.Name, repo.IsActive, addedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("add repository %s: %w", repo.FullName, driven.ErrRepoAlreadyExists)
		}
		return fmt.Errorf("add repository %s: %w", repo.FullName, err)
	}

	return nil
}

// Remove deletes a repository by id. Its incidents are removed by cascade.
func (r *RepoRepo) Remove(ctx context.Context, id string) error {
	const query = `DELETE FROM repositories WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("remove repository %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("remove repository %s: %w", id, driven.ErrRepoNotFound)
	}

	return nil
}

// ListTrackedByFullName returns the active rows for fullName across all
// accounts. The comparison ignores case, as GitHub does.
func (r *RepoRepo) ListTrackedByFullName(ctx context.Context, fullName string) ([]model.Repository, error) {
	const query = `
		SELECT id, account_login, full_name, owner, name, is_active, added_at
		FROM repositories
		WHERE full_name = ? AND is_active = 1
		ORDER BY account_login`

	return r.list(ctx, query, fullName)
}

// ListAll returns all repositories ordered by full name.
func (r *RepoRepo) ListAll(ctx context.Context) ([]model.Repository, error) {
	const query = `
		SELECT id, account_login, full_name, owner, name, is_active, added_at
		FROM repositories
		ORDER BY full_name, account_login`

	return r.list(ctx, query)
}

func (r *RepoRepo) list(ctx context.Context, query string, args ...any) ([]model.Repository, error) {
	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	defer rows.Close()

	var repos []model.Repository
	for rows.Next() {
		repo, err := scanRepository(rows)
		if err != nil {
			return nil, fmt.Errorf("scan repository: %w", err)
		}
		repos = append(repos, *repo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate repositories: %w", err)
	}

	return repos, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRepository(s rowScanner) (*model.Repository, error) {
	var repo model.Repository
	var addedAt string

	err := s.Scan(&repo.ID, &repo.AccountLogin, &repo.FullName, &repo.Owner, &repo.Name, &repo.IsActive, &addedAt)
	if err != nil {
		return nil, err
	}

	repo.AddedAt, err = parseTime(addedAt)
	if err != nil {
		return nil, fmt.Errorf("parse added_at: %w", err)
	}

	return &repo, nil
}

// parseTime accepts the datetime layouts SQLite and the driver produce.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		"2006-01-02 15:04:05.999999999 -0700 MST",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
