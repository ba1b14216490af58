package engine

// Finding represents a normalized result from the posture scanner
type Finding struct {
	ID              string   `json:"id"`
	SourceTool      string   `json:"source_tool"`
	Plugin          string   `json:"plugin,omitempty"`
	Category        string   `json:"category"` // service group reported by the scanner, e.g. Identity, Networking
	Status          string   `json:"status"`   // OK / WARN / FAIL / UNKNOWN
	Severity        int      `json:"severity"` // normalized 1-10
	Confidence      string   `json:"confidence"`
	Asset           string   `json:"asset"` // resource OCID or N/A
	Region          string   `json:"region,omitempty"`
	Evidence        string   `json:"evidence"`
	RemediationHint string   `json:"remediation_hint,omitempty"`
	ComplianceList  []string `json:"compliance_mapping,omitempty"`
}

// IsRisk reports whether the finding describes an open problem. Passing
// checks are kept in the graph so a later diff can see what was fixed.
func (f Finding) IsRisk() bool {
	return f.Status != StatusOK
}

const (
	StatusOK      = "OK"
	StatusWarn    = "WARN"
	StatusFail    = "FAIL"
	StatusUnknown = "UNKNOWN"
)

// SeverityForStatus maps scanner status to the 1-10 scale.
func SeverityForStatus(status string) int {
	switch status {
	case StatusFail:
		return 8
	case StatusWarn:
		return 5
	case StatusUnknown:
		return 3
	default:
		return 1
	}
}

// key identifies the same finding across scans. Region is part of it
// because account-level results share the N/A asset in every region.
func (f Finding) key() string {
	return f.SourceTool + "|" + f.Category + "|" + f.Asset + "|" + f.Region + "|" + f.Evidence
}
