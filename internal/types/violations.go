package types

// Violation severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Violation represents a single quality-gate failure.
type Violation struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Details  string `json:"details"`

	// Fields for tracking what the violation refers to
	Section *string  `json:"section,omitempty"` // Which report section is affected
	Axis    *string  `json:"axis,omitempty"`    // Which score axis is affected
	Claim   *string  `json:"claim,omitempty"`   // Offending judgment claim text
	Value   *float64 `json:"value,omitempty"`   // Out-of-range or mismatched value
}

// Violations represents an ordered collection of quality-gate failures.
type Violations struct {
	Violations []Violation `json:"violations"`
}

// HasErrors reports whether any violation has error severity.
func (v *Violations) HasErrors() bool {
	for _, violation := range v.Violations {
		if violation.Severity == SeverityError {
			return true
		}
	}
	return false
}
