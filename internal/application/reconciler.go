package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mudit06mah/guardian/internal/domain/model"
	"github.com/mudit06mah/guardian/internal/domain/port/driven"
)

// IncidentReconciler turns findings into incidents, creating one only when no
// matching incident exists for the same dedup key.
//
// On the default branch a Resolved incident does not count as matching, so a
// regression after a fix opens a new incident. Pull request incidents match in
// any status: once triaged for a PR a finding stays quiet for that PR.
type IncidentReconciler struct {
	store  driven.IncidentStore
	logger *slog.Logger
}

// NewIncidentReconciler creates an IncidentReconciler.
func NewIncidentReconciler(store driven.IncidentStore, logger *slog.Logger) *IncidentReconciler {
	return &IncidentReconciler{store: store, logger: logger}
}

// Reconcile records finding for the repository and reports whether a new
// incident was created. prNumber is model.DefaultBranchPR outside a pull request.
func (r *IncidentReconciler) Reconcile(ctx context.Context, finding model.Finding, repositoryID string, prNumber int) (bool, error) {
	incident := model.Incident{
		RepositoryID: repositoryID,
		PRNumber:     prNumber,
		WorkflowPath: finding.WorkflowPath,
		FindingType:  finding.Type,
		Severity:     finding.Severity,
		Description:  finding.Description,
		Status:       model.IncidentStatusOpen,
	}

	created, err := r.store.CreateIfAbsent(ctx, incident, ignoredStatuses(prNumber))
	if err != nil {
		return false, fmt.Errorf("reconcile %s in %s: %w", finding.Type, finding.WorkflowPath, err)
	}

	if created {
		r.logger.Info("incident opened",
			"repository_id", repositoryID,
			"workflow", finding.WorkflowPath,
			"finding", finding.Type,
			"severity", finding.Severity,
			"pr_number", prNumber,
		)
	}
	return created, nil
}

// ReconcileAll reconciles every finding against every repository row and
// returns the number of incidents created. A failure on one pair does not stop
// the others; all failures are returned together.
func (r *IncidentReconciler) ReconcileAll(ctx context.Context, findings []model.Finding, repos []model.Repository, prNumber int) (int, error) {
	var created int
	var errs []error

	for _, repo := range repos {
		for _, f := range findings {
			ok, err := r.Reconcile(ctx, f, repo.ID, prNumber)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if ok {
				created++
			}
		}
	}

	return created, errors.Join(errs...)
}

func ignoredStatuses(prNumber int) []model.IncidentStatus {
	if prNumber == model.DefaultBranchPR {
		return []model.IncidentStatus{model.IncidentStatusResolved}
	}
	return nil
}
