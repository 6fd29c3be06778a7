package ast

import "testing"

func TestKindPredicates(t *testing.T) {
	if !Paragraph.IsBlock() || !Header.IsBlock() {
		t.Fatalf("expected Paragraph and Header to be block kinds")
	}
	if Str.IsBlock() || Emphasis.IsBlock() {
		t.Fatalf("did not expect Str/Emphasis to be block kinds")
	}
	if !Str.IsInline() || !Emphasis.IsInline() {
		t.Fatalf("expected Str and Emphasis to be inline kinds")
	}
	if Paragraph.IsInline() || Document.IsInline() {
		t.Fatalf("did not expect Paragraph/Document to be inline kinds")
	}
	if !Document.IsParent() || !Paragraph.IsParent() {
		t.Fatalf("expected Document and Paragraph to be parent kinds")
	}
	if Str.IsParent() || Code.IsParent() {
		t.Fatalf("did not expect Str/Code to be parent kinds")
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		Document:  "Document",
		Str:       "Str",
		CodeBlock: "CodeBlock",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Fatalf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestArenaAllocStablePointers(t *testing.T) {
	a := NewArena()
	first := a.Alloc()
	first.Kind = Str
	first.Value = "first"

	for i := 0; i < chunkSize*3; i++ {
		n := a.Alloc()
		n.Kind = Str
	}

	if first.Value != "first" {
		t.Fatalf("pointer from early Alloc was invalidated by later allocations")
	}
}

func TestWalkVisitsAllNodes(t *testing.T) {
	a := NewArena()
	root := a.Alloc()
	root.Kind = Document
	root.Span = Span{0, 10}

	child := a.Alloc()
	child.Kind = Paragraph
	child.Span = Span{0, 10}
	root.Children = []*Node{child}

	leaf := a.Alloc()
	leaf.Kind = Str
	leaf.Value = "hi"
	child.Children = []*Node{leaf}

	var visited []Kind
	Walk(root, func(n *Node) bool {
		visited = append(visited, n.Kind)
		return true
	})

	want := []Kind{Document, Paragraph, Str}
	if len(visited) != len(want) {
		t.Fatalf("visited %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("visited %v, want %v", visited, want)
		}
	}
}

func TestToWireRoundTripsShape(t *testing.T) {
	a := NewArena()
	root := a.Alloc()
	root.Kind = Header
	root.Span = Span{0, 5}
	root.Data.Depth = 2

	w := ToWire(root)
	if w.Type != "Header" || w.Depth != 2 || w.Start != 0 || w.End != 5 {
		t.Fatalf("unexpected wire node: %+v", w)
	}
}
