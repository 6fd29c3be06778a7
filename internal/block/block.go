// Package block extracts a document's top-level blocks for block-level
// caching and sweeps a file's diagnostics into the blocks they belong to,
// so an unchanged block can reuse its cached diagnostics even when a
// sibling block's content changed.
package block

import (
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/tsuzulint/tsuzulint-go/internal/ast"
	"github.com/tsuzulint/tsuzulint-go/internal/diagnostic"
	"github.com/tsuzulint/tsuzulint-go/internal/hashing"
	"github.com/tsuzulint/tsuzulint-go/internal/logging"
)

var log = logging.New("block")

// Entry is one top-level block's cache-relevant state: its span, a content
// hash, and the diagnostics that fall entirely within it.
type Entry struct {
	Span        ast.Span
	Hash        string
	Diagnostics []diagnostic.Diagnostic
}

// Extract returns one Entry per direct child of root (expected to be a
// Document node). A child whose span falls outside source's bounds is
// skipped and logged rather than causing the whole extraction to fail.
func Extract(root *ast.Node, source string) []Entry {
	if root == nil {
		return nil
	}
	entries := make([]Entry, 0, len(root.Children))
	for _, child := range root.Children {
		if child.Span.Start < 0 || child.Span.End > len(source) || child.Span.Start > child.Span.End {
			log.Warnf("skipping out-of-bounds block span %s (source length %d)", child.Span, len(source))
			continue
		}
		entries = append(entries, Entry{
			Span: child.Span,
			Hash: hashing.String(child.Span.Slice(source)),
		})
	}
	return entries
}

// DiagnosticKey computes a fast, non-cryptographic identity for a
// diagnostic, used to recognize file-wide diagnostics that have already
// been accounted for globally and must not also be duplicated into a
// block entry. This is deliberately not the BLAKE3 content hash used for
// cache invalidation: it only needs to be a good dedup key, not a secure
// digest.
func DiagnosticKey(d diagnostic.Diagnostic) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(d.RuleName)
	_, _ = h.WriteString(d.Message)
	_, _ = h.Write([]byte{byte(d.Span.Start), byte(d.Span.Start >> 8), byte(d.Span.Start >> 16), byte(d.Span.Start >> 24)})
	_, _ = h.Write([]byte{byte(d.Span.End), byte(d.Span.End >> 8), byte(d.Span.End >> 16), byte(d.Span.End >> 24)})
	return h.Sum64()
}

// Distribute sweeps diagnostics (sorted by this call) into the blocks
// (also sorted by this call) they fall inside of. globalKeys identifies
// diagnostics already counted at the file level, which are excluded here
// entirely rather than duplicated into a block.
//
// A diagnostic that starts before a block's start without belonging to an
// earlier block, or straddles a block boundary, is dropped from every
// block's entry: once the sweep cursor passes a diagnostic it never
// backtracks. A diagnostic that starts exactly at a block's end is not
// part of that block; it goes to the following block when that block
// starts at that offset.
func Distribute(blocks []Entry, diagnostics []diagnostic.Diagnostic, globalKeys map[uint64]bool) []Entry {
	sorted := make([]Entry, len(blocks))
	copy(sorted, blocks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Span.Start < sorted[j].Span.Start })

	diags := make([]diagnostic.Diagnostic, 0, len(diagnostics))
	for _, d := range diagnostics {
		if globalKeys != nil && globalKeys[DiagnosticKey(d)] {
			continue
		}
		diags = append(diags, d)
	}
	sort.Sort(diagnostic.ByStart(diags))

	diagIdx := 0
	for i := range sorted {
		block := &sorted[i]
		for diagIdx < len(diags) && diags[diagIdx].Span.Start < block.Span.Start {
			diagIdx++
		}
		tempIdx := diagIdx
		for tempIdx < len(diags) {
			d := diags[tempIdx]
			if d.Span.Start >= block.Span.End {
				break
			}
			if d.Span.End <= block.Span.End {
				block.Diagnostics = append(block.Diagnostics, d)
			}
			tempIdx++
		}
	}
	return sorted
}
