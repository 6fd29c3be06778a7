package lerrors

import (
	"errors"
	"testing"
)

func TestLintErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := New(KindCacheRead, "load", cause).WithPath("/tmp/cache.json")

	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to find cause")
	}
	want := "cache_read load failed for /tmp/cache.json: boom"
	if err.Error() != want {
		t.Fatalf("got %q want %q", err.Error(), want)
	}
}

func TestLintErrorWithoutPath(t *testing.T) {
	err := New(KindConfig, "parse", errors.New("bad json"))
	want := "config parse failed: bad json"
	if err.Error() != want {
		t.Fatalf("got %q want %q", err.Error(), want)
	}
}

func TestParseError(t *testing.T) {
	err := NewParse("doc.md", 3, 7, errors.New("unexpected token"))
	want := "parse error at doc.md:3:7: unexpected token"
	if err.Error() != want {
		t.Fatalf("got %q want %q", err.Error(), want)
	}
}

func TestMultiErrorFiltersNil(t *testing.T) {
	e1 := errors.New("one")
	me := NewMulti([]error{nil, e1, nil})
	if len(me.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(me.Errors))
	}
	if me.Error() != "one" {
		t.Fatalf("single error message should pass through unwrapped, got %q", me.Error())
	}
}

func TestMultiErrorAllNilReturnsNil(t *testing.T) {
	if NewMulti([]error{nil, nil}) != nil {
		t.Fatalf("expected nil MultiError when all inputs are nil")
	}
}

func TestMultiErrorMultiple(t *testing.T) {
	me := NewMulti([]error{errors.New("a"), errors.New("b")})
	want := "2 errors: [a b]"
	if me.Error() != want {
		t.Fatalf("got %q want %q", me.Error(), want)
	}
}
