package model

// Finding is one detected issue from a single scan of one workflow document.
// It is never persisted directly; the incident reconciler turns it into an Incident.
type Finding struct {
	Type         FindingType
	Severity     Severity
	Description  string
	Line         int    // 1-based; 0 when unavailable (structural findings).
	MatchedText  string // Truncated for pattern findings, full script for structural ones.
	WorkflowPath string
}
