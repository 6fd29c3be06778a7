// Package lerrors is the typed error taxonomy used across tsuzulint: every
// operation that can fail wraps its underlying error in a Kind-tagged
// LintError carrying the operation name and a timestamp, so callers can
// branch on Kind or unwrap down to the original cause.
package lerrors

import (
	"fmt"
	"time"
)

// Kind classifies a LintError.
type Kind string

const (
	KindConfig     Kind = "config"
	KindFile       Kind = "file"
	KindParse      Kind = "parse"
	KindPluginLoad Kind = "plugin_load"
	KindPluginCall Kind = "plugin_call"
	KindCacheRead  Kind = "cache_read"
	KindCacheWrite Kind = "cache_write"
	KindFixInvalid Kind = "fix_invalid"
)

// LintError is the common error shape for every tsuzulint component.
type LintError struct {
	Kind       Kind
	Operation  string
	Path       string
	Underlying error
	Timestamp  time.Time
}

// New creates a LintError of the given kind for the given operation.
func New(kind Kind, op string, err error) *LintError {
	return &LintError{
		Kind:       kind,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithPath attaches a file path to the error for display.
func (e *LintError) WithPath(path string) *LintError {
	e.Path = path
	return e
}

// Error implements the error interface.
func (e *LintError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Kind, e.Operation, e.Path, e.Underlying)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Kind, e.Operation, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *LintError) Unwrap() error {
	return e.Underlying
}

// ParseError carries source-position context for a parse failure.
type ParseError struct {
	Path       string
	Line       int
	Column     int
	Underlying error
	Timestamp  time.Time
}

// NewParse creates a new ParseError.
func NewParse(path string, line, column int, err error) *ParseError {
	return &ParseError{
		Path:       path,
		Line:       line,
		Column:     column,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s:%d:%d: %v", e.Path, e.Line, e.Column, e.Underlying)
}

func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// MultiError aggregates independent failures, e.g. per-file errors from a
// batch lint run, so the caller can report every failure instead of only
// the first.
type MultiError struct {
	Errors []error
}

// NewMulti filters out nil errors and returns a MultiError. It returns nil
// if no non-nil errors remain.
func NewMulti(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

func (e *MultiError) Unwrap() []error {
	return e.Errors
}
