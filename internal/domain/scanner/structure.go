package scanner

import (
	"strings"

	"github.com/mudit06mah/guardian/internal/domain/model"
)

const suspiciousDescription = "Suspicious code pattern in run command"

var suspiciousMarkers = []string{"curl", "wget", "python"}

// ScanStructure walks the tree and reports every `run` entry whose string value
// mentions a download tool or an interpreter. The whole script becomes the
// matched text and the line is always 0.
func ScanStructure(root Node, path string) []model.Finding {
	return walk(root, path, nil)
}

func walk(n Node, path string, out []model.Finding) []model.Finding {
	switch v := n.(type) {
	case Mapping:
		for _, e := range v.Entries {
			if e.Key == "run" {
				if s, ok := e.Value.(Scalar); ok && s.IsText() && isSuspicious(s.Value) {
					out = append(out, model.Finding{
						Type:         model.FindingSuspiciousCodeBlock,
						Severity:     model.SeverityMedium,
						Description:  suspiciousDescription,
						Line:         0,
						MatchedText:  s.Value,
						WorkflowPath: path,
					})
				}
			}
			out = walk(e.Value, path, out)
		}
	case Sequence:
		for _, item := range v.Items {
			out = walk(item, path, out)
		}
	}
	return out
}

func isSuspicious(script string) bool {
	lower := strings.ToLower(script)
	for _, m := range suspiciousMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
