// Package ast is tsuzulint's own closed document-tree representation.
// Every parser (markdown, plaintext) translates into this tree rather than
// exposing its own AST, so rules see one stable node shape regardless of
// source format.
package ast

// Kind is the closed set of node kinds a document tree can contain. It is
// compatible with textlint's TxtAST node-type vocabulary.
type Kind uint8

const (
	// Document structure
	Document Kind = iota

	// Block elements
	Paragraph
	Header
	BlockQuote
	List
	ListItem
	CodeBlock
	HorizontalRule
	HTML

	// Inline elements
	Str
	Break
	Emphasis
	Strong
	Delete
	Code
	Link
	Image

	// Reference elements
	LinkReference
	ImageReference
	Definition

	// Extension elements
	Table
	TableRow
	TableCell
	FootnoteDefinition
	FootnoteReference
)

var kindNames = [...]string{
	Document:           "Document",
	Paragraph:          "Paragraph",
	Header:             "Header",
	BlockQuote:         "BlockQuote",
	List:               "List",
	ListItem:           "ListItem",
	CodeBlock:          "CodeBlock",
	HorizontalRule:     "HorizontalRule",
	HTML:               "Html",
	Str:                "Str",
	Break:              "Break",
	Emphasis:           "Emphasis",
	Strong:             "Strong",
	Delete:             "Delete",
	Code:               "Code",
	Link:               "Link",
	Image:              "Image",
	LinkReference:      "LinkReference",
	ImageReference:     "ImageReference",
	Definition:         "Definition",
	Table:              "Table",
	TableRow:           "TableRow",
	TableCell:          "TableCell",
	FootnoteDefinition: "FootnoteDefinition",
	FootnoteReference:  "FootnoteReference",
}

// String renders the kind using the same PascalCase names used on the wire.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// IsBlock reports whether kind is a block-level element.
func (k Kind) IsBlock() bool {
	switch k {
	case Document, Paragraph, Header, BlockQuote, List, ListItem, CodeBlock,
		HorizontalRule, HTML, Table, TableRow, FootnoteDefinition:
		return true
	default:
		return false
	}
}

// IsInline reports whether kind is an inline element.
func (k Kind) IsInline() bool {
	switch k {
	case Str, Break, Emphasis, Strong, Delete, Code, Link, Image,
		LinkReference, ImageReference, FootnoteReference:
		return true
	default:
		return false
	}
}

// IsParent reports whether kind may hold children.
func (k Kind) IsParent() bool {
	switch k {
	case Document, Paragraph, Header, BlockQuote, List, ListItem, Emphasis,
		Strong, Delete, Link, Table, TableRow, TableCell, FootnoteDefinition:
		return true
	default:
		return false
	}
}

// IsText reports whether kind carries a literal value instead of children.
func (k Kind) IsText() bool {
	switch k {
	case Str, Code, CodeBlock:
		return true
	default:
		return false
	}
}
