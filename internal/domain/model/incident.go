package model

import "time"

// DefaultBranchPR is the PRNumber used for incidents raised outside a pull request.
const DefaultBranchPR = 0

// DedupKey identifies "the same" issue across scans.
type DedupKey struct {
	RepositoryID string
	WorkflowPath string
	FindingType  FindingType
	PRNumber     int
}

// Incident is the persisted, deduplicated record of a finding.
type Incident struct {
	ID           string
	RepositoryID string
	PRNumber     int // DefaultBranchPR when not scoped to a pull request.
	WorkflowPath string
	FindingType  FindingType
	Severity     Severity
	Description  string
	Status       IncidentStatus
	CreatedAt    time.Time
}

// Key returns the dedup key of the incident.
func (i Incident) Key() DedupKey {
	return DedupKey{
		RepositoryID: i.RepositoryID,
		WorkflowPath: i.WorkflowPath,
		FindingType:  i.FindingType,
		PRNumber:     i.PRNumber,
	}
}
