package ast

// Session scopes a single parse: it owns the arena backing one document's
// tree plus the original source buffer the tree's spans index into.
// Release is a deliberate no-op — Go's garbage collector reclaims the
// arena once the Session and its tree fall out of reach — but keeping the
// call site makes a parse's lifetime explicit at the point of use, the way
// an explicit scope guard would in a language without a GC.
type Session struct {
	arena  *Arena
	source string
	root   *Node
}

// NewSession starts a session over source, ready for a parser to build a
// tree into via Arena().
func NewSession(source string) *Session {
	return &Session{arena: NewArena(), source: source}
}

// Arena returns the session's node allocator.
func (s *Session) Arena() *Arena {
	return s.arena
}

// Source returns the original source buffer the tree's spans were computed
// against.
func (s *Session) Source() string {
	return s.source
}

// SetRoot records the finished tree's root node. Parsers call this once
// after building the tree.
func (s *Session) SetRoot(root *Node) {
	s.root = root
}

// Root returns the session's document root, or nil if SetRoot has not been
// called yet.
func (s *Session) Root() *Node {
	return s.root
}

// Release ends the session. See the Session doc comment: this exists for
// explicit scoping, not resource cleanup.
func (s *Session) Release() {}
