// Package application contains the webhook event handlers and the services
// they orchestrate.
package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mudit06mah/guardian/internal/domain/model"
	"github.com/mudit06mah/guardian/internal/domain/port/driven"
)

// Router dispatches verified webhook events to their handlers.
type Router struct {
	repos      driven.RepoStore
	tokens     *TokenService
	scans      *WorkflowScanService
	reconciler *IncidentReconciler
	logger     *slog.Logger
}

// NewRouter creates a Router with all required dependencies.
func NewRouter(
	repos driven.RepoStore,
	tokens *TokenService,
	scans *WorkflowScanService,
	reconciler *IncidentReconciler,
	logger *slog.Logger,
) *Router {
	return &Router{
		repos:      repos,
		tokens:     tokens,
		scans:      scans,
		reconciler: reconciler,
		logger:     logger,
	}
}

// Dispatch runs the handler for event. Unknown event types are logged and
// dropped without error.
func (r *Router) Dispatch(ctx context.Context, event model.Event) error {
	switch e := event.(type) {
	case model.InstallationEvent:
		return r.handleInstallation(ctx, e)
	case model.InstallationRepositoriesEvent:
		r.handleInstallationRepositories(e)
		return nil
	case model.WorkflowRunEvent:
		return r.handleWorkflowRun(ctx, e)
	case model.PullRequestEvent:
		return r.handlePullRequest(ctx, e)
	case model.UnknownEvent:
		r.logger.Info("ignoring unhandled event type", "event", e.Type)
		return nil
	default:
		return fmt.Errorf("dispatch: unsupported event %T", event)
	}
}

func (r *Router) handleInstallation(ctx context.Context, e model.InstallationEvent) error {
	switch e.Action {
	case "created":
		return r.tokens.Link(ctx, e.InstallationID, e.AccountLogin)
	case "deleted":
		return r.tokens.Revoke(ctx, e.InstallationID)
	default:
		r.logger.Debug("ignoring installation action", "action", e.Action, "installation_id", e.InstallationID)
		return nil
	}
}

// handleInstallationRepositories only records the change. Tracking a
// repository is always an explicit user decision.
func (r *Router) handleInstallationRepositories(e model.InstallationRepositoriesEvent) {
	r.logger.Info("installation repositories changed",
		"installation_id", e.InstallationID,
		"action", e.Action,
		"added", e.Added,
		"removed", e.Removed,
	)
}

func (r *Router) handleWorkflowRun(ctx context.Context, e model.WorkflowRunEvent) error {
	if e.Action != "completed" {
		r.logger.Debug("ignoring workflow_run action", "action", e.Action, "repo", e.RepoFullName)
		return nil
	}

	tracked, fetcher, err := r.prepare(ctx, e.InstallationID, e.RepoFullName)
	if err != nil || fetcher == nil {
		return err
	}

	findings, err := r.scans.ScanFile(ctx, fetcher, e.RepoFullName, e.WorkflowPath, e.HeadSHA)
	if err != nil {
		return fmt.Errorf("workflow_run %s %s: %w", e.RepoFullName, e.WorkflowPath, err)
	}

	created, err := r.reconciler.ReconcileAll(ctx, findings, tracked, model.DefaultBranchPR)
	r.logger.Info("workflow run scanned",
		"repo", e.RepoFullName,
		"workflow", e.WorkflowPath,
		"head_sha", e.HeadSHA,
		"findings", len(findings),
		"incidents_created", created,
	)
	if err != nil {
		return fmt.Errorf("workflow_run %s: %w", e.RepoFullName, err)
	}
	return nil
}

func (r *Router) handlePullRequest(ctx context.Context, e model.PullRequestEvent) error {
	switch e.Action {
	case "opened", "synchronize", "reopened":
	default:
		r.logger.Debug("ignoring pull_request action", "action", e.Action, "repo", e.RepoFullName, "pr_number", e.Number)
		return nil
	}

	tracked, fetcher, err := r.prepare(ctx, e.InstallationID, e.RepoFullName)
	if err != nil || fetcher == nil {
		return err
	}

	findings, err := r.scans.ScanRepository(ctx, fetcher, e.RepoFullName, e.HeadSHA)
	if err != nil {
		return fmt.Errorf("pull_request %s#%d: %w", e.RepoFullName, e.Number, err)
	}

	created, err := r.reconciler.ReconcileAll(ctx, findings, tracked, e.Number)
	r.logger.Info("pull request scanned",
		"repo", e.RepoFullName,
		"pr_number", e.Number,
		"head_sha", e.HeadSHA,
		"findings", len(findings),
		"incidents_created", created,
	)
	if err != nil {
		return fmt.Errorf("pull_request %s#%d: %w", e.RepoFullName, e.Number, err)
	}
	return nil
}

// prepare resolves the tracked rows for the repository and, only if there are
// any, a fetcher for the installation. A nil fetcher with a nil error means
// the event should be skipped; no outbound call is made for untracked repositories.
func (r *Router) prepare(ctx context.Context, installationID int64, repoFullName string) ([]model.Repository, driven.WorkflowFetcher, error) {
	tracked, err := r.repos.ListTrackedByFullName(ctx, repoFullName)
	if err != nil {
		return nil, nil, fmt.Errorf("look up tracked repository %s: %w", repoFullName, err)
	}
	if len(tracked) == 0 {
		r.logger.Debug("repository not tracked", "repo", repoFullName)
		return nil, nil, nil
	}

	fetcher, err := r.tokens.Fetcher(ctx, installationID)
	if err != nil {
		return nil, nil, err
	}
	if fetcher == nil {
		r.logger.Warn("no credential for installation", "installation_id", installationID, "repo", repoFullName)
		return nil, nil, nil
	}

	return tracked, fetcher, nil
}
