package scanner

import (
	"log/slog"

	"github.com/mudit06mah/guardian/internal/domain/model"
)

// ScanWorkflow returns the pattern findings for text followed by its
// structural findings. A document that is not valid YAML still gets pattern
// findings; the parse failure is logged and otherwise ignored.
func ScanWorkflow(text, path string) []model.Finding {
	findings := ScanPatterns(text, path)

	root, err := ParseDocument(text)
	if err != nil {
		slog.Warn("structural scan skipped", "path", path, "error", err)
		return findings
	}

	return append(findings, ScanStructure(root, path)...)
}
