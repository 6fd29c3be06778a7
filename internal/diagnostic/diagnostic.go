// Package diagnostic defines the result shape rules produce: a Diagnostic
// pinned to a source Span, with an optional Fix, flowing from plugin host
// through block distribution and the fixer.
package diagnostic

import "github.com/tsuzulint/tsuzulint-go/internal/ast"

// Severity is how seriously a Diagnostic should be treated.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeverityOff     Severity = "off"
)

// ParseSeverity normalizes a config string ("warn"/"warning" etc.) into a
// Severity value. Unknown strings default to SeverityError, matching the
// original config's "anything but off is enabled" stance.
func ParseSeverity(s string) Severity {
	switch s {
	case "error":
		return SeverityError
	case "warn", "warning":
		return SeverityWarning
	case "info":
		return SeverityInfo
	case "off":
		return SeverityOff
	default:
		return SeverityError
	}
}

// Fix is a single text replacement a rule proposes for its Diagnostic.
type Fix struct {
	Span ast.Span
	Text string
}

// Diagnostic is one finding from a rule against one file.
type Diagnostic struct {
	RuleName string
	Severity Severity
	Message  string
	Span     ast.Span
	FilePath string
	Fix      *Fix

	// BypassIgnore opts this diagnostic out of ignore-range filtering
	// (code spans), so it is reported even when it falls inside one. A
	// rule must explicitly request this; the default is to respect
	// ignore ranges like every other diagnostic.
	BypassIgnore bool
}

// Fixable reports whether the diagnostic carries a proposed fix.
func (d Diagnostic) Fixable() bool {
	return d.Fix != nil
}

// ByStart sorts diagnostics by ascending span start, the ordering block
// distribution and the fixer both depend on.
type ByStart []Diagnostic

func (d ByStart) Len() int      { return len(d) }
func (d ByStart) Swap(i, j int) { d[i], d[j] = d[j], d[i] }
func (d ByStart) Less(i, j int) bool {
	return d[i].Span.Start < d[j].Span.Start
}
