// Package fixer applies rule-proposed fixes to source content: a single
// descending-offset splice pass per call, plus a coordinator that re-lints
// and reapplies to a fixed point for fixes that only become visible after
// an earlier fix has landed.
package fixer

import (
	"sort"

	"github.com/tsuzulint/tsuzulint-go/internal/diagnostic"
	"github.com/tsuzulint/tsuzulint-go/internal/logging"
)

var log = logging.New("fixer")

// Result is the outcome of one ApplyFixes call.
type Result struct {
	FixedContent string
	FixesApplied int
	Modified     bool
}

// Unchanged returns a Result reporting that content was not modified.
func Unchanged(content string) Result {
	return Result{FixedContent: content, FixesApplied: 0, Modified: false}
}

// ApplyFixes applies every fixable diagnostic's Fix to content in a
// single pass. Fixes are sorted by descending span start so earlier
// splices never invalidate later ones' offsets. When two fixes overlap,
// the one with the later start wins — since fixes are processed in
// descending-start order, that is simply the first of the pair seen.
// Fixes whose span falls outside content's bounds, or whose start is
// after its end, are skipped and logged.
func ApplyFixes(content string, diagnostics []diagnostic.Diagnostic) Result {
	type candidate struct {
		start, end int
		text       string
	}

	var fixes []candidate
	for _, d := range diagnostics {
		if d.Fix == nil {
			continue
		}
		fixes = append(fixes, candidate{start: d.Fix.Span.Start, end: d.Fix.Span.End, text: d.Fix.Text})
	}
	if len(fixes) == 0 {
		return Unchanged(content)
	}

	sort.Slice(fixes, func(i, j int) bool { return fixes[i].start > fixes[j].start })

	var accepted []candidate
	for _, f := range fixes {
		if f.start < 0 || f.start > len(content) || f.end > len(content) || f.start > f.end {
			log.Warnf("skipping invalid fix span [%d,%d) against content of length %d", f.start, f.end, len(content))
			continue
		}
		overlaps := false
		for _, a := range accepted {
			if !(f.end <= a.start || f.start >= a.end) {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		accepted = append(accepted, f)
	}

	if len(accepted) == 0 {
		return Unchanged(content)
	}

	out := content
	for _, f := range accepted {
		out = out[:f.start] + f.text + out[f.end:]
	}

	return Result{FixedContent: out, FixesApplied: len(accepted), Modified: out != content}
}
