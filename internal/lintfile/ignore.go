package lintfile

import (
	"github.com/tsuzulint/tsuzulint-go/internal/ast"
	"github.com/tsuzulint/tsuzulint-go/internal/diagnostic"
)

// IgnoreRanges returns the span of every CodeBlock and Code node in the
// tree: prose rules should not fire inside code, so their output gets
// filtered against these ranges before being reported.
func IgnoreRanges(root *ast.Node) []ast.Span {
	var ranges []ast.Span
	ast.Walk(root, func(n *ast.Node) bool {
		if n.Kind == ast.CodeBlock || n.Kind == ast.Code {
			ranges = append(ranges, n.Span)
		}
		return true
	})
	return ranges
}

// intersectsAny reports whether span overlaps any of ranges at all. A
// diagnostic that only straddles a code span's boundary, rather than
// falling entirely inside it, is still suppressed: half a flagged span
// sitting in prose is not useful on its own.
func intersectsAny(span ast.Span, ranges []ast.Span) bool {
	for _, r := range ranges {
		if span.Start < r.End && span.End > r.Start {
			return true
		}
	}
	return false
}

// filterIgnored drops diagnostics that overlap an ignored range, unless a
// diagnostic opted out via BypassIgnore.
func filterIgnored(diags []diagnostic.Diagnostic, ranges []ast.Span) []diagnostic.Diagnostic {
	out := make([]diagnostic.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if !d.BypassIgnore && intersectsAny(d.Span, ranges) {
			continue
		}
		out = append(out, d)
	}
	return out
}
