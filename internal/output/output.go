// Package output renders lint results for the CLI: a plain-text report by
// default, or JSON when the caller wants machine-readable results. This is
// a minimal pair only, the way the indexing engine's own tree formatter
// keeps a "text" and "json" branch and nothing more elaborate.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/tsuzulint/tsuzulint-go/internal/diagnostic"
	"github.com/tsuzulint/tsuzulint-go/internal/scheduler"
)

// Format selects how Write renders a batch of file results.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Formatter renders scheduler.FileResult batches to an io.Writer.
type Formatter struct {
	Format Format
}

// New returns a Formatter for the given format, defaulting to FormatText
// for anything it doesn't recognize.
func New(format string) *Formatter {
	if Format(format) == FormatJSON {
		return &Formatter{Format: FormatJSON}
	}
	return &Formatter{Format: FormatText}
}

type jsonDiagnostic struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Fixable  bool   `json:"fixable"`
}

type jsonFile struct {
	Path        string           `json:"path"`
	Error       string           `json:"error,omitempty"`
	Diagnostics []jsonDiagnostic `json:"diagnostics,omitempty"`
	FromCache   bool             `json:"from_cache,omitempty"`
}

// Write renders results to w. It returns the number of error-severity
// diagnostics across every file, so callers can decide the process exit
// code without re-walking the results themselves.
func (f *Formatter) Write(w io.Writer, results []scheduler.FileResult) (int, error) {
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })

	if f.Format == FormatJSON {
		return f.writeJSON(w, results)
	}
	return f.writeText(w, results)
}

func (f *Formatter) writeJSON(w io.Writer, results []scheduler.FileResult) (int, error) {
	errorCount := 0
	files := make([]jsonFile, 0, len(results))
	for _, r := range results {
		jf := jsonFile{Path: r.Path}
		if r.Err != nil {
			jf.Error = r.Err.Error()
			files = append(files, jf)
			continue
		}
		jf.FromCache = r.Result.FromCache
		for _, d := range r.Result.Diagnostics {
			if d.Severity == diagnostic.SeverityError {
				errorCount++
			}
			jf.Diagnostics = append(jf.Diagnostics, jsonDiagnostic{
				Rule:     d.RuleName,
				Severity: string(d.Severity),
				Message:  d.Message,
				Start:    d.Span.Start,
				End:      d.Span.End,
				Fixable:  d.Fixable(),
			})
		}
		files = append(files, jf)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errorCount, enc.Encode(files)
}

func (f *Formatter) writeText(w io.Writer, results []scheduler.FileResult) (int, error) {
	errorCount := 0
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s: error: %v\n", r.Path, r.Err)
			continue
		}
		for _, d := range r.Result.Diagnostics {
			if d.Severity == diagnostic.SeverityError {
				errorCount++
			}
			marker := ""
			if d.Fixable() {
				marker = " [fixable]"
			}
			fmt.Fprintf(w, "%s:%d-%d: %s: %s (%s)%s\n", r.Path, d.Span.Start, d.Span.End, d.Severity, d.Message, d.RuleName, marker)
		}
	}
	return errorCount, nil
}

// Summary reports totals across a batch of results, used for the CLI's
// trailing "N files, M issues" line.
func Summary(results []scheduler.FileResult) (files, issues, errors int) {
	for _, r := range results {
		files++
		if r.Err != nil {
			errors++
			continue
		}
		issues += len(r.Result.Diagnostics)
		for _, d := range r.Result.Diagnostics {
			if d.Severity == diagnostic.SeverityError {
				errors++
			}
		}
	}
	return files, issues, errors
}
