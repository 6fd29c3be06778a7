// Package plaintext parses plain-text files (.txt, .text) into a Document
// of Paragraph nodes, splitting on blank lines.
package plaintext

import (
	"strings"

	"github.com/tsuzulint/tsuzulint-go/internal/ast"
)

// Name is the parser's identifier.
const Name = "text"

// Extensions are the file extensions this parser handles, matched
// case-insensitively.
var Extensions = []string{"txt", "text"}

// Parse splits source into paragraphs at blank-line boundaries and
// returns a Session whose root is a Document spanning the whole source.
//
// A run of one or more blank lines ends the current paragraph; leading
// and trailing blank lines produce no paragraph. Each paragraph's span is
// trimmed to its non-whitespace content.
func Parse(source string) *ast.Session {
	session := ast.NewSession(source)
	arena := session.Arena()

	var paragraphs []*ast.Node
	paraStart := -1
	lineStart := 0

	for lineStart <= len(source) {
		idx := strings.IndexByte(source[lineStart:], '\n')
		var lineEnd, nextStart int
		hasNL := idx >= 0
		if hasNL {
			lineEnd = lineStart + idx
			nextStart = lineEnd + 1
		} else {
			lineEnd = len(source)
			nextStart = len(source) + 1
		}

		line := source[lineStart:lineEnd]
		if strings.TrimSpace(line) == "" {
			if paraStart >= 0 {
				if span, ok := trimmedSpan(source, paraStart, lineStart); ok {
					paragraphs = append(paragraphs, newParagraph(arena, source, span))
				}
				paraStart = -1
			}
		} else if paraStart < 0 {
			paraStart = lineStart
		}

		if !hasNL {
			break
		}
		lineStart = nextStart
	}

	if paraStart >= 0 {
		if span, ok := trimmedSpan(source, paraStart, len(source)); ok {
			paragraphs = append(paragraphs, newParagraph(arena, source, span))
		}
	}

	root := arena.Alloc()
	root.Kind = ast.Document
	root.Span = ast.Span{Start: 0, End: len(source)}
	root.Children = paragraphs
	session.SetRoot(root)
	return session
}

func newParagraph(arena *ast.Arena, source string, span ast.Span) *ast.Node {
	str := arena.Alloc()
	str.Kind = ast.Str
	str.Span = span
	str.Value = arena.AllocString(span.Slice(source))

	p := arena.Alloc()
	p.Kind = ast.Paragraph
	p.Span = span
	p.Children = []*ast.Node{str}
	return p
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

// trimmedSpan trims whitespace from both ends of source[start:end] and
// returns the resulting span. It returns ok=false if nothing but
// whitespace remains.
func trimmedSpan(source string, start, end int) (ast.Span, bool) {
	s, e := start, end
	for s < e && isSpaceByte(source[s]) {
		s++
	}
	for e > s && isSpaceByte(source[e-1]) {
		e--
	}
	if s >= e {
		return ast.Span{}, false
	}
	return ast.Span{Start: s, End: e}, true
}
