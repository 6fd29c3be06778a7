// Package markdown parses CommonMark+GFM documents with goldmark and
// translates goldmark's AST into tsuzulint's own closed node tree, so
// rules never depend on goldmark's node types directly.
package markdown

import (
	"strconv"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	emoji "github.com/yuin/goldmark-emoji"

	tast "github.com/tsuzulint/tsuzulint-go/internal/ast"
)

// Name is the parser's identifier.
const Name = "markdown"

// Extensions are the file extensions this parser handles.
var Extensions = []string{"md", "markdown"}

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Footnote, emoji.Emoji),
)

// Parse renders source through goldmark and translates the result into a
// Session holding tsuzulint's own Document tree.
func Parse(source string) *tast.Session {
	src := []byte(source)
	gmRoot := md.Parser().Parse(text.NewReader(src))

	session := tast.NewSession(source)
	tr := &translator{arena: session.Arena(), source: src}
	root := tr.translate(gmRoot)
	session.SetRoot(root)
	return session
}

type translator struct {
	arena  *tast.Arena
	source []byte
}

// span computes a node's byte range. Block nodes carry Lines(); for nodes
// without usable line info, the range is derived from the first and last
// child already translated.
func (t *translator) span(n gmast.Node, children []*tast.Node) tast.Span {
	if lines := n.Lines(); lines != nil && lines.Len() > 0 {
		first := lines.At(0)
		last := lines.At(lines.Len() - 1)
		return tast.Span{Start: first.Start, End: last.Stop}
	}
	if txt, ok := n.(*gmast.Text); ok {
		seg := txt.Segment
		return tast.Span{Start: seg.Start, End: seg.Stop}
	}
	if len(children) > 0 {
		start := children[0].Span.Start
		end := children[len(children)-1].Span.End
		for _, c := range children {
			if c.Span.Start < start {
				start = c.Span.Start
			}
			if c.Span.End > end {
				end = c.Span.End
			}
		}
		return tast.Span{Start: start, End: end}
	}
	return tast.Span{}
}

func (t *translator) translateChildren(n gmast.Node) []*tast.Node {
	var out []*tast.Node
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if tn := t.translate(c); tn != nil {
			out = append(out, tn)
		}
	}
	return out
}

func (t *translator) newParent(kind tast.Kind, n gmast.Node, children []*tast.Node) *tast.Node {
	node := t.arena.Alloc()
	node.Kind = kind
	node.Children = children
	node.Span = t.span(n, children)
	return node
}

func (t *translator) translate(n gmast.Node) *tast.Node {
	switch v := n.(type) {
	case *gmast.Document:
		children := t.translateChildren(n)
		node := t.newParent(tast.Document, n, children)
		node.Span = tast.Span{Start: 0, End: len(t.source)}
		return node

	case *gmast.Paragraph, *gmast.TextBlock:
		return t.newParent(tast.Paragraph, n, t.translateChildren(n))

	case *gmast.Heading:
		node := t.newParent(tast.Header, n, t.translateChildren(n))
		node.Data.Depth = v.Level
		return node

	case *gmast.Blockquote:
		return t.newParent(tast.BlockQuote, n, t.translateChildren(n))

	case *gmast.List:
		node := t.newParent(tast.List, n, t.translateChildren(n))
		node.Data.Ordered = v.IsOrdered()
		return node

	case *gmast.ListItem:
		return t.newParent(tast.ListItem, n, t.translateChildren(n))

	case *gmast.FencedCodeBlock:
		node := t.arena.Alloc()
		node.Kind = tast.CodeBlock
		node.Value = t.linesText(n)
		if info := v.Info; info != nil {
			node.Data.Lang = string(info.Segment.Value(t.source))
		}
		node.Span = t.span(n, nil)
		return node

	case *gmast.CodeBlock:
		node := t.arena.Alloc()
		node.Kind = tast.CodeBlock
		node.Value = t.linesText(n)
		node.Span = t.span(n, nil)
		return node

	case *gmast.ThematicBreak:
		node := t.arena.Alloc()
		node.Kind = tast.HorizontalRule
		node.Span = t.span(n, nil)
		return node

	case *gmast.HTMLBlock:
		node := t.arena.Alloc()
		node.Kind = tast.HTML
		node.Value = t.linesText(n)
		node.Span = t.span(n, nil)
		return node

	case *gmast.RawHTML:
		node := t.arena.Alloc()
		node.Kind = tast.HTML
		node.Span = t.span(n, nil)
		return node

	case *gmast.Text:
		node := t.arena.Alloc()
		node.Kind = tast.Str
		node.Value = string(v.Segment.Value(t.source))
		node.Span = tast.Span{Start: v.Segment.Start, End: v.Segment.Stop}
		return node

	case *gmast.String:
		node := t.arena.Alloc()
		node.Kind = tast.Str
		node.Value = string(v.Value)
		return node

	case *gmast.AutoLink:
		node := t.arena.Alloc()
		node.Kind = tast.Link
		node.Data.URL = string(v.URL(t.source))
		node.Span = t.span(n, nil)
		return node

	case *gmast.Emphasis:
		kind := tast.Emphasis
		if v.Level == 2 {
			kind = tast.Strong
		}
		return t.newParent(kind, n, t.translateChildren(n))

	case *gmast.CodeSpan:
		node := t.arena.Alloc()
		node.Kind = tast.Code
		children := t.translateChildren(n)
		var sb []byte
		for _, c := range children {
			sb = append(sb, c.Value...)
		}
		node.Value = string(sb)
		node.Span = t.span(n, children)
		return node

	case *gmast.Link:
		node := t.newParent(tast.Link, n, t.translateChildren(n))
		node.Data.URL = string(v.Destination)
		node.Data.Title = string(v.Title)
		return node

	case *gmast.Image:
		node := t.newParent(tast.Image, n, t.translateChildren(n))
		node.Data.URL = string(v.Destination)
		node.Data.Title = string(v.Title)
		return node

	case *extast.Strikethrough:
		return t.newParent(tast.Delete, n, t.translateChildren(n))

	case *extast.Table:
		return t.newParent(tast.Table, n, t.translateChildren(n))

	case *extast.TableRow, *extast.TableHeader:
		return t.newParent(tast.TableRow, n, t.translateChildren(n))

	case *extast.TableCell:
		return t.newParent(tast.TableCell, n, t.translateChildren(n))

	case *gmast.Definition:
		node := t.arena.Alloc()
		node.Kind = tast.Definition
		node.Data.URL = string(v.Destination)
		node.Data.Title = string(v.Title)
		node.Data.Identifier = string(v.Label)
		node.Span = t.span(n, nil)
		return node

	case *extast.FootnoteList:
		return t.newParent(tast.List, n, t.translateChildren(n))

	case *extast.Footnote:
		node := t.newParent(tast.FootnoteDefinition, n, t.translateChildren(n))
		node.Data.Identifier = string(v.Ref)
		return node

	case *extast.FootnoteLink:
		node := t.arena.Alloc()
		node.Kind = tast.FootnoteReference
		node.Data.Identifier = strconv.Itoa(v.Index)
		node.Span = t.span(n, nil)
		return node

	case *extast.FootnoteBacklink:
		// The renderer's synthetic return-arrow, not part of the
		// document's own content.
		return nil

	default:
		children := t.translateChildren(n)
		if children == nil {
			return nil
		}
		return t.newParent(tast.Paragraph, n, children)
	}
}

// linesText concatenates a block node's raw source lines.
func (t *translator) linesText(n gmast.Node) string {
	lines := n.Lines()
	if lines == nil {
		return ""
	}
	var out []byte
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		out = append(out, seg.Value(t.source)...)
	}
	return string(out)
}
