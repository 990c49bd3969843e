package driven

import (
	"context"
	"errors"

	"github.com/mudit06mah/guardian/internal/domain/model"
)

// ErrEncryptionKeyNotSet is returned by InstallationStore operations when
// GUARDIAN_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set GUARDIAN_SECRET_KEY")

// InstallationStore defines the driven port for installation credential persistence.
// The adapter encrypts tokens at rest; this interface carries plaintext tokens.
type InstallationStore interface {
	// Get returns the credential for the installation, or nil, nil if none exists.
	Get(ctx context.Context, installationID int64) (*model.InstallationCredential, error)

	// Upsert creates the credential, or updates only the token fields when a
	// credential for the same installation already exists.
	Upsert(ctx context.Context, cred model.InstallationCredential) error

	// UpdateToken replaces the token of an existing credential in one atomic write.
	// Returns ErrInstallationNotFound if no credential exists.
	UpdateToken(ctx context.Context, installationID int64, token model.InstallationToken) error

	// Delete removes every credential for the installation and reports how many were removed.
	Delete(ctx context.Context, installationID int64) (int64, error)
}

// ErrInstallationNotFound indicates no credential exists for an installation.
var ErrInstallationNotFound = errors.New("installation not found")
