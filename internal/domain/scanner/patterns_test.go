package scanner_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mudit06mah/guardian/internal/domain/model"
	"github.com/mudit06mah/guardian/internal/domain/scanner"
)

func TestScanPatterns_UnpinnedActionReportedOnce(t *testing.T) {
	findings := scanner.ScanPatterns("uses: foo/bar@v1", "wf.yml")

	require.Len(t, findings, 1)
	assert.Equal(t, model.FindingUnpinnedAction, findings[0].Type)
	assert.Equal(t, model.SeverityHigh, findings[0].Severity)
	assert.Equal(t, 1, findings[0].Line)
	assert.Equal(t, "wf.yml", findings[0].WorkflowPath)
	assert.Equal(t, "uses: foo/bar@v1", findings[0].MatchedText)
}

func TestScanPatterns_PinnedRefsAreNotReported(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"commit sha", "uses: actions/setup-go@0123456789abcdef0123456789abcdef01234567"},
		{"checkout commit sha", "uses: actions/checkout@89ABCDEF0123456789abcdef0123456789abcdef"},
		{"sha256 digest", "uses: docker/build-push-action@sha256:4f1a9c"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Empty(t, scanner.ScanPatterns(tc.text, "wf.yml"))
		})
	}
}

func TestScanPatterns_CheckoutTagFiresBothRules(t *testing.T) {
	findings := scanner.ScanPatterns("      - uses: actions/checkout@v4\n", "ci.yml")

	require.Len(t, findings, 2)
	assert.Equal(t, model.FindingUnpinnedAction, findings[0].Type)
	assert.Equal(t, model.FindingNoCheckoutRef, findings[1].Type)
	assert.Equal(t, model.SeverityMedium, findings[1].Severity)
}

func TestScanPatterns_BenignTextHasNoFindings(t *testing.T) {
	text := "name: CI\non: push\njobs:\n  build:\n    runs-on: ubuntu-latest\n    steps:\n      - run: echo hello\n"

	assert.Empty(t, scanner.ScanPatterns(text, "ci.yml"))
	assert.Empty(t, scanner.ScanPatterns("", "ci.yml"))
}

func TestScanPatterns_ReportsLineNumbers(t *testing.T) {
	text := strings.Join([]string{
		"name: CI",
		"on: push",
		"jobs:",
		"  build:",
		"    runs-on: ubuntu-latest",
		"    steps:",
		"      - run: curl -sSL https://example.com/install.sh | bash",
	}, "\n")

	findings := scanner.ScanPatterns(text, "ci.yml")

	require.Len(t, findings, 2)
	assert.Equal(t, model.FindingCurlBash, findings[0].Type)
	assert.Equal(t, 7, findings[0].Line)
	assert.Equal(t, model.FindingExternalScript, findings[1].Type)
	assert.Equal(t, 7, findings[1].Line)
}

func TestScanPatterns_EveryOccurrenceIsReported(t *testing.T) {
	text := "steps:\n  - uses: foo/one@v1\n  - uses: foo/two@main\n  - uses: foo/three@v3\n"

	findings := scanner.ScanPatterns(text, "ci.yml")

	require.Len(t, findings, 3)
	for i, f := range findings {
		assert.Equal(t, model.FindingUnpinnedAction, f.Type)
		assert.Equal(t, i+2, f.Line)
	}
}

func TestScanPatterns_CaseInsensitive(t *testing.T) {
	findings := scanner.ScanPatterns(`API_KEY: "abcdefgh12345"`, "ci.yml")

	require.Len(t, findings, 1)
	assert.Equal(t, model.FindingHardcodedSecrets, findings[0].Type)
}

func TestScanPatterns_TruncatesMatchedText(t *testing.T) {
	text := `password: "` + strings.Repeat("a", 200) + `"`

	findings := scanner.ScanPatterns(text, "ci.yml")

	require.Len(t, findings, 1)
	assert.Equal(t, model.FindingHardcodedSecrets, findings[0].Type)
	assert.Len(t, findings[0].MatchedText, 100)
	assert.True(t, strings.HasPrefix(text, findings[0].MatchedText))
}

func TestScanPatterns_ShellInjection(t *testing.T) {
	findings := scanner.ScanPatterns("echo ${ HOME }", "ci.yml")

	require.Len(t, findings, 1)
	assert.Equal(t, model.FindingShellInjection, findings[0].Type)
	assert.Equal(t, "${ HOME }", findings[0].MatchedText)
}

func TestRemediation(t *testing.T) {
	assert.Contains(t, scanner.Remediation(model.FindingCurlBash), "Piping curl output directly to bash")
	assert.Contains(t, scanner.Remediation(model.FindingHardcodedSecrets), "${{ secrets.SECRET_NAME }}")
	assert.Equal(t, "Unknown security finding", scanner.Remediation(model.FindingType("nope")))
}
