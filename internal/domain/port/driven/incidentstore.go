package driven

import (
	"context"

	"github.com/mudit06mah/guardian/internal/domain/model"
)

// IncidentStore defines the driven port for incident persistence.
type IncidentStore interface {
	// CreateIfAbsent inserts incident unless an incident with the same dedup key
	// already exists in a status other than those listed in ignored. The check
	// and the insert are atomic per dedup key. It reports whether a row was created.
	CreateIfAbsent(ctx context.Context, incident model.Incident, ignored []model.IncidentStatus) (bool, error)

	// ListByRepository returns incidents for a repository, newest first. The
	// webhook pipeline never reads incidents back; this serves the external
	// incident listing surface.
	ListByRepository(ctx context.Context, repositoryID string) ([]model.Incident, error)
}
