// Package scanner detects risky constructs in GitHub Actions workflow files.
// All functions are pure and safe for concurrent use.
package scanner

import (
	"strings"
	"unicode/utf8"

	regexp "github.com/wasilibs/go-re2"

	"github.com/mudit06mah/guardian/internal/domain/model"
)

// matchedTextLimit caps the excerpt stored on pattern findings.
const matchedTextLimit = 100

// rule is one regex security check. When refGroup is non-zero the submatch
// with that index holds an action ref, and matches whose ref is pinned to a
// digest are not reported.
type rule struct {
	findingType model.FindingType
	severity    model.Severity
	description string
	pattern     *regexp.Regexp
	refGroup    int
}

// rules are evaluated in this order; findings keep it.
var rules = []rule{
	{
		findingType: model.FindingUnpinnedAction,
		severity:    model.SeverityHigh,
		description: "Action is not pinned to a specific commit SHA",
		pattern:     regexp.MustCompile(`(?im)uses:\s*['"]?[\w.-]+/[\w./-]+@([\w./:-]+)`),
		refGroup:    1,
	},
	{
		findingType: model.FindingCurlBash,
		severity:    model.SeverityHigh,
		description: "Direct execution of curl output via bash is unsafe",
		pattern:     regexp.MustCompile(`(?im)curl\s+.*\|\s*bash`),
	},
	{
		findingType: model.FindingHardcodedSecrets,
		severity:    model.SeverityHigh,
		description: "Potential hardcoded secrets detected",
		pattern:     regexp.MustCompile(`(?im)(?:password|secret|token|api[_-]?key)\s*[:=]\s*['"][\w\-./]{8,}['"]`),
	},
	{
		findingType: model.FindingNoCheckoutRef,
		severity:    model.SeverityMedium,
		description: "Checkout action should be pinned to specific commit",
		pattern:     regexp.MustCompile(`(?im)uses:\s*['"]?actions/checkout@([\w./:-]+)`),
		refGroup:    1,
	},
	{
		findingType: model.FindingExternalScript,
		severity:    model.SeverityMedium,
		description: "Downloading and executing external scripts is risky",
		pattern:     regexp.MustCompile(`(?im)run:\s*.*(?:wget|curl)\s+.*\|\s*(?:sh|bash|python)`),
	},
	{
		findingType: model.FindingShellInjection,
		severity:    model.SeverityMedium,
		description: "Environment variable expansion in unsafe context",
		pattern:     regexp.MustCompile(`(?im)\$\{\s*[A-Z_]+\s*\}`),
	},
}

var commitSHA = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)

// ScanPatterns evaluates every regex rule against text and reports each
// occurrence. Rules are independent, so overlapping matches from different
// rules are all reported.
func ScanPatterns(text, path string) []model.Finding {
	if text == "" {
		return nil
	}

	var findings []model.Finding
	for _, r := range rules {
		for _, loc := range r.pattern.FindAllStringSubmatchIndex(text, -1) {
			if r.refGroup > 0 && loc[2*r.refGroup] >= 0 {
				ref := text[loc[2*r.refGroup]:loc[2*r.refGroup+1]]
				if isPinned(ref) {
					continue
				}
			}

			start, end := loc[0], loc[1]
			findings = append(findings, model.Finding{
				Type:         r.findingType,
				Severity:     r.severity,
				Description:  r.description,
				Line:         lineAt(text, start),
				MatchedText:  truncate(text[start:end], matchedTextLimit),
				WorkflowPath: path,
			})
		}
	}

	return findings
}

// isPinned reports whether an action ref names an immutable digest.
func isPinned(ref string) bool {
	return commitSHA.MatchString(ref) || strings.HasPrefix(strings.ToLower(ref), "sha256:")
}

// lineAt returns the 1-based line number of byte offset off.
func lineAt(text string, off int) int {
	return strings.Count(text[:off], "\n") + 1
}

// truncate shortens s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// remediations holds the long-form guidance shown next to each finding type.
var remediations = map[model.FindingType]string{
	model.FindingUnpinnedAction:      "Actions should be pinned to a specific commit SHA (e.g., @a1b2c3d4) to prevent version drift and ensure reproducibility.",
	model.FindingCurlBash:            "Piping curl output directly to bash can execute arbitrary code. Consider downloading to a file first, verifying contents, then executing.",
	model.FindingHardcodedSecrets:    "Never hardcode secrets in workflow files. Use GitHub Secrets instead and reference them with ${{ secrets.SECRET_NAME }}.",
	model.FindingNoCheckoutRef:       "Always pin the checkout action to a specific commit to ensure consistent behavior.",
	model.FindingExternalScript:      "Downloading and executing scripts from the internet is risky. Review the script content before execution.",
	model.FindingShellInjection:      "Environment variables used in commands can be exploited. Escape special characters and validate input.",
	model.FindingSuspiciousCodeBlock: "This run step fetches remote content or starts an interpreter. Review the full script before trusting it.",
}

// Remediation returns guidance for a finding type.
func Remediation(t model.FindingType) string {
	if text, ok := remediations[t]; ok {
		return text
	}
	return "Unknown security finding"
}
