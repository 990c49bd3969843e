package driven

import (
	"context"

	"github.com/mudit06mah/guardian/internal/domain/model"
)

// WorkflowFetcher defines the driven port for reading workflow definitions
// with an installation token.
type WorkflowFetcher interface {
	// ListWorkflows returns every workflow registered in the repository.
	// A repository GitHub reports as missing yields an empty slice.
	ListWorkflows(ctx context.Context, repoFullName string) ([]model.WorkflowRef, error)

	// GetWorkflowFile returns the workflow content at ref (default branch when empty).
	// Returns nil, nil when the file does not exist at that ref.
	GetWorkflowFile(ctx context.Context, repoFullName, path, ref string) (*model.WorkflowFile, error)
}

// CredentialProvider defines the driven port for minting installation tokens.
type CredentialProvider interface {
	// RequestInstallationToken exchanges a fresh app assertion for an installation token.
	RequestInstallationToken(ctx context.Context, installationID int64) (model.InstallationToken, error)

	// RefreshIfNeeded returns current unchanged (false) while it stays valid for at
	// least the refresh buffer, otherwise a newly minted token (true).
	RefreshIfNeeded(ctx context.Context, installationID int64, current model.InstallationToken) (model.InstallationToken, bool, error)
}
