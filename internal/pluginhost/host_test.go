package pluginhost

import (
	"context"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tsuzulint/tsuzulint-go/internal/ast"
	phtesting "github.com/tsuzulint/tsuzulint-go/internal/pluginhost/testing"
	"github.com/tsuzulint/tsuzulint-go/internal/ruleconfig"
)

func TestLoadAndRunRule(t *testing.T) {
	ctx := context.Background()
	h := New()

	fake := &phtesting.FakeCaller{
		Manifest: ruleconfig.Manifest{Name: "no-todo", Version: "1.0.0"},
		LintFunc: func(payload []byte) ([]byte, error) {
			resp := LintResponse{Diagnostics: []WireDiagnostic{
				{Severity: "warning", Message: "found TODO", Start: 3, End: 7},
			}}
			return msgpack.Marshal(resp)
		},
	}

	if err := h.LoadRule(ctx, "no-todo", fake, nil); err != nil {
		t.Fatalf("LoadRule failed: %v", err)
	}

	root := &ast.Node{Kind: ast.Document, Span: ast.Span{0, 10}}
	diags, err := h.RunRule(ctx, "no-todo", root, "line TODO!", "a.md")
	if err != nil {
		t.Fatalf("RunRule failed: %v", err)
	}
	if len(diags) != 1 || diags[0].Message != "found TODO" {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
}

func TestRunRuleNotLoaded(t *testing.T) {
	h := New()
	_, err := h.RunRule(context.Background(), "missing", &ast.Node{}, "", "a.md")
	if err == nil {
		t.Fatalf("expected error for unloaded rule")
	}
}

func TestConfigureRuleNotLoaded(t *testing.T) {
	h := New()
	if err := h.ConfigureRule("missing", nil); err == nil {
		t.Fatalf("expected error configuring unloaded rule")
	}
}

func TestRunAllRulesTolerantOfFailure(t *testing.T) {
	ctx := context.Background()
	h := New()

	good := &phtesting.FakeCaller{
		Manifest: ruleconfig.Manifest{Name: "good"},
		LintFunc: func(payload []byte) ([]byte, error) {
			return msgpack.Marshal(LintResponse{Diagnostics: []WireDiagnostic{{Severity: "error", Message: "bad"}}})
		},
	}
	bad := &phtesting.FakeCaller{
		Manifest: ruleconfig.Manifest{Name: "bad"},
		LintErr:  context.DeadlineExceeded,
	}

	if err := h.LoadRule(ctx, "good", good, nil); err != nil {
		t.Fatalf("load good: %v", err)
	}
	if err := h.LoadRule(ctx, "bad", bad, nil); err != nil {
		t.Fatalf("load bad: %v", err)
	}

	root := &ast.Node{Kind: ast.Document}
	diags := h.RunAllRules(ctx, root, "source", "a.md")
	if len(diags) != 1 || diags[0].RuleName != "good" {
		t.Fatalf("expected only the good rule's diagnostic to survive, got %+v", diags)
	}
}

func TestUnloadRule(t *testing.T) {
	ctx := context.Background()
	h := New()
	fake := &phtesting.FakeCaller{Manifest: ruleconfig.Manifest{Name: "x"}}
	if err := h.LoadRule(ctx, "x", fake, nil); err != nil {
		t.Fatalf("load: %v", err)
	}
	h.UnloadRule("x")
	if _, ok := h.Manifest("x"); ok {
		t.Fatalf("expected manifest gone after unload")
	}
}
