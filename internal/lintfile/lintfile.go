// Package lintfile runs the per-file pipeline: consult the file-level
// cache, parse, walk the tree dispatching each rule only at the node
// kinds it declared interest in, reusing a block's cached diagnostics
// when its content hash is unchanged, strip diagnostics that land inside
// ignored (code) ranges, and record block-level cache entries for the
// next run.
package lintfile

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tsuzulint/tsuzulint-go/internal/ast"
	"github.com/tsuzulint/tsuzulint-go/internal/block"
	"github.com/tsuzulint/tsuzulint-go/internal/cache"
	"github.com/tsuzulint/tsuzulint-go/internal/diagnostic"
	"github.com/tsuzulint/tsuzulint-go/internal/hashing"
	"github.com/tsuzulint/tsuzulint-go/internal/lerrors"
	"github.com/tsuzulint/tsuzulint-go/internal/pluginhost"
)

// ParseFunc builds a Session's document tree from file content.
type ParseFunc func(source string) *ast.Session

// Result is one file's lint outcome.
type Result struct {
	Path        string
	Diagnostics []diagnostic.Diagnostic
	Blocks      []block.Entry
	FromCache   bool
}

// HasIssues reports whether any diagnostic survived ignore-range
// filtering.
func (r *Result) HasIssues() bool {
	return len(r.Diagnostics) > 0
}

// Linter runs the pipeline for one configuration snapshot: a cache, a
// plugin host with every rule already loaded, and a config/rule-version
// fingerprint used for cache validity checks.
type Linter struct {
	Cache        *cache.Manager
	Host         *pluginhost.Host
	ConfigHash   string
	RuleVersions map[string]string

	parsers map[string]ParseFunc
}

// New returns a Linter ready to have parsers registered onto it.
func New(c *cache.Manager, host *pluginhost.Host, configHash string, ruleVersions map[string]string) *Linter {
	return &Linter{
		Cache:        c,
		Host:         host,
		ConfigHash:   configHash,
		RuleVersions: ruleVersions,
		parsers:      make(map[string]ParseFunc),
	}
}

// RegisterParser associates a parser with one or more file extensions
// (without the leading dot, matched case-insensitively).
func (l *Linter) RegisterParser(parse ParseFunc, extensions ...string) {
	for _, ext := range extensions {
		l.parsers[strings.ToLower(ext)] = parse
	}
}

// LintFile runs the pipeline against one file's content.
func (l *Linter) LintFile(ctx context.Context, path string, content []byte) (*Result, error) {
	source := string(content)
	contentHash := hashing.String(source)

	if entry, ok := l.Cache.Get(path); ok && entry.IsValid(contentHash, l.ConfigHash, l.RuleVersions) {
		return &Result{Path: path, Diagnostics: entry.Diagnostics, FromCache: true}, nil
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	parse, ok := l.parsers[ext]
	if !ok {
		return nil, lerrors.New(lerrors.KindParse, "select_parser", fmt.Errorf("no parser registered for extension %q", ext)).WithPath(path)
	}

	session := parse(source)
	root := session.Root()

	ranges := IgnoreRanges(root)

	// Rules interested in the Document node itself see the whole file and
	// are not block-cacheable: they run fresh every time the file-level
	// cache misses.
	diags := filterIgnored(l.Host.RunRulesOnNode(ctx, root, source, path), ranges)

	// Every other rule is dispatched per top-level block, reusing a
	// block's last diagnostics from the cache when its content hash is
	// unchanged instead of re-running rules against it.
	for _, child := range root.Children {
		if child.Span.Start < 0 || child.Span.End > len(source) || child.Span.Start > child.Span.End {
			continue
		}
		hash := hashing.String(child.Span.Slice(source))

		if cached, ok := l.Cache.GetBlock(hash); ok {
			diags = append(diags, cached...)
			continue
		}

		blockDiags := filterIgnored(l.Host.RunAllRules(ctx, child, source, path), ranges)
		l.Cache.SetBlock(hash, blockDiags)
		diags = append(diags, blockDiags...)
	}

	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Span.Start != b.Span.Start {
			return a.Span.Start < b.Span.Start
		}
		if a.Span.End != b.Span.End {
			return a.Span.End < b.Span.End
		}
		return a.RuleName < b.RuleName
	})

	blocks := block.Extract(root, source)
	blocks = block.Distribute(blocks, diags, nil)

	l.Cache.Set(path, cache.Entry{
		ContentHash:  contentHash,
		ConfigHash:   l.ConfigHash,
		RuleVersions: l.RuleVersions,
		Diagnostics:  diags,
	})

	return &Result{Path: path, Diagnostics: diags, Blocks: blocks}, nil
}
