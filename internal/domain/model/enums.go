package model

// Severity ranks how dangerous a finding is.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// IncidentStatus represents the lifecycle state of an incident.
type IncidentStatus string

const (
	IncidentStatusOpen      IncidentStatus = "Open"
	IncidentStatusFixed     IncidentStatus = "Fixed"
	IncidentStatusDismissed IncidentStatus = "Dismissed"
	IncidentStatusResolved  IncidentStatus = "Resolved"
)

// FindingType identifies the rule that produced a finding.
type FindingType string

const (
	FindingUnpinnedAction      FindingType = "unpinned_action"
	FindingCurlBash            FindingType = "curl_bash"
	FindingHardcodedSecrets    FindingType = "hardcoded_secrets"
	FindingNoCheckoutRef       FindingType = "no_checkout_ref"
	FindingExternalScript      FindingType = "external_script"
	FindingShellInjection      FindingType = "shell_injection"
	FindingSuspiciousCodeBlock FindingType = "suspicious_code_block"
)
