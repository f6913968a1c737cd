package calc

import (
	"fmt"

	"github.com/dashport-dev/dashport/pkg/token"
)

// DiagnosticKind classifies a parse or translation issue.
type DiagnosticKind string

// Diagnostic kind constants.
const (
	DiagSyntaxError         DiagnosticKind = "syntax-error"
	DiagUnresolvedField     DiagnosticKind = "unresolved-field"
	DiagUnsupportedFunction DiagnosticKind = "unsupported-function"
	DiagCircularDependency  DiagnosticKind = "circular-dependency"
	DiagNamingConflict      DiagnosticKind = "naming-conflict"
	DiagContextScope        DiagnosticKind = "context-dependent-scope"
	DiagDivideUnchecked     DiagnosticKind = "divide-by-zero-unchecked"
)

// Diagnostic is a structured report of a parse or translation issue.
// Diagnostics never abort the batch; they scope failure to the smallest
// affected unit.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Pos     token.Position `json:"pos,omitempty"`
	Subject string         `json:"subject,omitempty"` // field name, function name, or cycle members
	Message string         `json:"message"`
}

// Informational reports whether the diagnostic is advisory rather than a
// translation failure. Context-dependent-scope and unchecked-division notes
// accompany successful output.
func (d Diagnostic) Informational() bool {
	switch d.Kind {
	case DiagContextScope, DiagDivideUnchecked:
		return true
	}
	return false
}

func (d Diagnostic) String() string {
	if d.Pos.IsValid() {
		return fmt.Sprintf("%s at %s: %s", d.Kind, d.Pos, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// HasFailure reports whether any diagnostic in the list is non-informational.
func HasFailure(diags []Diagnostic) bool {
	for _, d := range diags {
		if !d.Informational() {
			return true
		}
	}
	return false
}
