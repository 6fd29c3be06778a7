package lintfile

import (
	"context"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tsuzulint/tsuzulint-go/internal/cache"
	"github.com/tsuzulint/tsuzulint-go/internal/plaintext"
	"github.com/tsuzulint/tsuzulint-go/internal/pluginhost"
	phtesting "github.com/tsuzulint/tsuzulint-go/internal/pluginhost/testing"
	"github.com/tsuzulint/tsuzulint-go/internal/ruleconfig"
)

func newLinterWithFakeRule(t *testing.T, diagStart, diagEnd int) *Linter {
	t.Helper()
	ctx := context.Background()
	host := pluginhost.New()
	fake := &phtesting.FakeCaller{
		Manifest: ruleconfig.Manifest{Name: "no-todo", NodeTypes: []string{"Document"}},
		LintFunc: func(payload []byte) ([]byte, error) {
			resp := pluginhost.LintResponse{Diagnostics: []pluginhost.WireDiagnostic{
				{Severity: "warning", Message: "found TODO", Start: diagStart, End: diagEnd},
			}}
			return msgpack.Marshal(resp)
		},
	}
	if err := host.LoadRule(ctx, "no-todo", fake, nil); err != nil {
		t.Fatalf("load rule: %v", err)
	}

	l := New(cache.New(t.TempDir()), host, "cfg1", map[string]string{"no-todo": "1"})
	l.RegisterParser(plaintext.Parse, "txt", "text")
	return l
}

func TestLintFileReturnsDiagnostics(t *testing.T) {
	l := newLinterWithFakeRule(t, 5, 9)
	result, err := l.LintFile(context.Background(), "a.txt", []byte("please TODO this"))
	if err != nil {
		t.Fatalf("lint failed: %v", err)
	}
	if len(result.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(result.Diagnostics))
	}
	if result.FromCache {
		t.Fatalf("expected first run to not be served from cache")
	}
}

func TestLintFileSecondRunHitsCache(t *testing.T) {
	l := newLinterWithFakeRule(t, 5, 9)
	ctx := context.Background()
	content := []byte("please TODO this")

	first, err := l.LintFile(ctx, "a.txt", content)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	second, err := l.LintFile(ctx, "a.txt", content)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if !second.FromCache {
		t.Fatalf("expected second identical run to be served from cache")
	}
	if len(second.Diagnostics) != len(first.Diagnostics) {
		t.Fatalf("expected cached diagnostics to match original run")
	}
}

func TestLintFileContentChangeInvalidatesCache(t *testing.T) {
	l := newLinterWithFakeRule(t, 0, 4)
	ctx := context.Background()

	if _, err := l.LintFile(ctx, "a.txt", []byte("one")); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := l.LintFile(ctx, "a.txt", []byte("two words"))
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if second.FromCache {
		t.Fatalf("expected changed content to invalidate the cache")
	}
}

func TestLintFileUnknownExtensionErrors(t *testing.T) {
	l := newLinterWithFakeRule(t, 0, 1)
	_, err := l.LintFile(context.Background(), "a.unknown", []byte("x"))
	if err == nil {
		t.Fatalf("expected error for unregistered extension")
	}
}
