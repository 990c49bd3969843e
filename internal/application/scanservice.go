package application

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mudit06mah/guardian/internal/domain/model"
	"github.com/mudit06mah/guardian/internal/domain/port/driven"
)

// maxConcurrentFetches bounds the workflow files fetched and scanned at once
// for one pull request.
const maxConcurrentFetches = 4

// WorkflowScanner scans the text of one workflow file.
type WorkflowScanner interface {
	ScanWorkflow(text, path string) []model.Finding
}

// WorkflowScanService fetches workflow files and scans them.
type WorkflowScanService struct {
	scanner WorkflowScanner
	logger  *slog.Logger
}

// NewWorkflowScanService creates a WorkflowScanService.
func NewWorkflowScanService(scanner WorkflowScanner, logger *slog.Logger) *WorkflowScanService {
	return &WorkflowScanService{scanner: scanner, logger: logger}
}

// ScanFile fetches one workflow file at ref and scans it. A file that does
// not exist at ref has no findings.
func (s *WorkflowScanService) ScanFile(ctx context.Context, fetcher driven.WorkflowFetcher, repoFullName, path, ref string) ([]model.Finding, error) {
	file, err := fetcher.GetWorkflowFile(ctx, repoFullName, path, ref)
	if err != nil {
		return nil, err
	}
	if file == nil {
		s.logger.Debug("workflow file absent", "repo", repoFullName, "path", path, "ref", ref)
		return nil, nil
	}

	return s.scanner.ScanWorkflow(file.Content, file.Path), nil
}

// ScanRepository scans every workflow of the repository at ref. Files are
// fetched concurrently; findings keep the order in which GitHub lists the
// workflows. The first fetch failure aborts the whole scan.
func (s *WorkflowScanService) ScanRepository(ctx context.Context, fetcher driven.WorkflowFetcher, repoFullName, ref string) ([]model.Finding, error) {
	workflows, err := fetcher.ListWorkflows(ctx, repoFullName)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}

	results := make([][]model.Finding, len(workflows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, wf := range workflows {
		g.Go(func() error {
			findings, err := s.ScanFile(gctx, fetcher, repoFullName, wf.Path, ref)
			if err != nil {
				return fmt.Errorf("scan %s: %w", wf.Path, err)
			}
			results[i] = findings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []model.Finding
	for _, findings := range results {
		all = append(all, findings...)
	}
	return all, nil
}
