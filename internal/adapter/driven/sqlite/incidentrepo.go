package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mudit06mah/guardian/internal/domain/model"
	"github.com/mudit06mah/guardian/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.IncidentStore = (*IncidentRepo)(nil)

// IncidentRepo is the SQLite implementation of the IncidentStore port.
type IncidentRepo struct {
	db *DB
}

// NewIncidentRepo creates a new IncidentRepo backed by the given DB.
func NewIncidentRepo(db *DB) *IncidentRepo {
	return &IncidentRepo{db: db}
}

// CreateIfAbsent checks for an incident with the same dedup key whose status is
// not in ignored and inserts the new one only if none exists. Both statements run
// in one writer transaction; the partial unique index on open incidents turns a
// racing duplicate into a no-op.
func (r *IncidentRepo) CreateIfAbsent(ctx context.Context, incident model.Incident, ignored []model.IncidentStatus) (bool, error) {
	if incident.ID == "" {
		incident.ID = uuid.NewString()
	}
	if incident.Status == "" {
		incident.Status = model.IncidentStatusOpen
	}
	if incident.CreatedAt.IsZero() {
		incident.CreatedAt = time.Now().UTC()
	}

	existsQuery, existsArgs := dedupExistsQuery(incident.Key(), ignored)

	const insertQuery = `
		INSERT INTO incidents
			(id, repository_id, pr_number, workflow_path, finding_type, severity, description, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`

	var created bool
	err := r.db.withWriteTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx, existsQuery, existsArgs...).Scan(&exists); err != nil {
			return fmt.Errorf("check existing incident: %w", err)
		}
		if exists {
			return nil
		}

		result, err := tx.ExecContext(ctx, insertQuery,
			incident.ID, incident.RepositoryID, incident.PRNumber, incident.WorkflowPath,
			string(incident.FindingType), string(incident.Severity), incident.Description,
			string(incident.Status), incident.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert incident: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("check rows affected: %w", err)
		}
		created = rows == 1
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("create incident for %s %s: %w", incident.WorkflowPath, incident.FindingType, err)
	}

	return created, nil
}

func dedupExistsQuery(key model.DedupKey, ignored []model.IncidentStatus) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT EXISTS (
		SELECT 1 FROM incidents
		WHERE repository_id = ? AND workflow_path = ? AND finding_type = ? AND pr_number = ?`)

	args := []any{key.RepositoryID, key.WorkflowPath, string(key.FindingType), key.PRNumber}
	if len(ignored) > 0 {
		b.WriteString(` AND status NOT IN (?` + strings.Repeat(`, ?`, len(ignored)-1) + `)`)
		for _, s := range ignored {
			args = append(args, string(s))
		}
	}
	b.WriteString(`)`)

	return b.String(), args
}

// ListByRepository returns every incident of a repository, newest first.
func (r *IncidentRepo) ListByRepository(ctx context.Context, repositoryID string) ([]model.Incident, error) {
	const query = `
		SELECT id, repository_id, pr_number, workflow_path, finding_type, severity, description, status, created_at
		FROM incidents
		WHERE repository_id = ?
		ORDER BY created_at DESC, rowid DESC`

	rows, err := r.db.Reader.QueryContext(ctx, query, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("list incidents for %s: %w", repositoryID, err)
	}
	defer rows.Close()

	var incidents []model.Incident
	for rows.Next() {
		var inc model.Incident
		var findingType, severity, status, created string
		err := rows.Scan(&inc.ID, &inc.RepositoryID, &inc.PRNumber, &inc.WorkflowPath,
			&findingType, &severity, &inc.Description, &status, &created)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}

		inc.FindingType = model.FindingType(findingType)
		inc.Severity = model.Severity(severity)
		inc.Status = model.IncidentStatus(status)
		if inc.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}

		incidents = append(incidents, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}

	return incidents, nil
}

// SetStatus changes the status of one incident. Triage happens outside this
// service; the method exists so a resolved incident can be recorded.
func (r *IncidentRepo) SetStatus(ctx context.Context, id string, status model.IncidentStatus) error {
	const query = `UPDATE incidents SET status = ? WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("set status of incident %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("set status of incident %s: incident not found", id)
	}
	return nil
}
