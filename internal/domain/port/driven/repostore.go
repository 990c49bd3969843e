package driven

import (
	"context"
	"errors"

	"github.com/mudit06mah/guardian/internal/domain/model"
)

// Sentinel errors returned by RepoStore implementations.
var (
	// ErrRepoNotFound indicates the requested repository does not exist.
	ErrRepoNotFound = errors.New("repository not found")

	// ErrRepoAlreadyExists indicates the account already tracks a repository with the same name.
	ErrRepoAlreadyExists = errors.New("repository already exists")
)

// RepoStore defines the driven port for tracked repositories. The scanning core
// only reads it through ListTrackedByFullName; Add, Remove and ListAll back
// the external management surface.
type RepoStore interface {
	Add(ctx context.Context, repo model.Repository) error
	Remove(ctx context.Context, id string) error
	// ListTrackedByFullName returns every active repository row with the given
	// full name, across accounts. An empty result means the repository is not tracked.
	ListTrackedByFullName(ctx context.Context, fullName string) ([]model.Repository, error)
	ListAll(ctx context.Context) ([]model.Repository, error)
}
