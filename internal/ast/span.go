package ast

import "fmt"

// Span is a byte-offset range into a file's source buffer, end-exclusive.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether other is fully inside s.
func (s Span) Contains(other Span) bool {
	return other.Start >= s.Start && other.End <= s.End
}

// Slice returns the substring of source that s covers. It panics if the
// span is out of bounds; callers dealing with externally supplied spans
// should check bounds first (see block.Extract).
func (s Span) Slice(source string) string {
	return source[s.Start:s.End]
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}
