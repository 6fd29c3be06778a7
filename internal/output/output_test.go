package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/tsuzulint/tsuzulint-go/internal/ast"
	"github.com/tsuzulint/tsuzulint-go/internal/diagnostic"
	"github.com/tsuzulint/tsuzulint-go/internal/lintfile"
	"github.com/tsuzulint/tsuzulint-go/internal/scheduler"
)

func sampleResults() []scheduler.FileResult {
	return []scheduler.FileResult{
		{
			Path: "b.md",
			Result: &lintfile.Result{
				Path: "b.md",
				Diagnostics: []diagnostic.Diagnostic{
					{RuleName: "no-todo", Severity: diagnostic.SeverityWarning, Message: "found TODO", Span: ast.Span{Start: 3, End: 7}},
				},
			},
		},
		{Path: "a.md", Err: errors.New("no parser registered")},
	}
}

func TestWriteTextSortsByPathAndCountsErrors(t *testing.T) {
	var buf bytes.Buffer
	f := New("text")
	errCount, err := f.Write(&buf, sampleResults())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if errCount != 0 {
		t.Fatalf("expected no error-severity diagnostics, got %d", errCount)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "a.md: error:") {
		t.Fatalf("expected a.md (sorted first) to appear first, got %q", out)
	}
	if !strings.Contains(out, "b.md:3-7: warning: found TODO (no-todo)") {
		t.Fatalf("expected warning line, got %q", out)
	}
}

func TestWriteJSONMarksFixable(t *testing.T) {
	results := []scheduler.FileResult{
		{Path: "a.md", Result: &lintfile.Result{
			Path: "a.md",
			Diagnostics: []diagnostic.Diagnostic{
				{RuleName: "no-todo", Severity: diagnostic.SeverityError, Message: "x",
					Fix: &diagnostic.Fix{Span: ast.Span{Start: 0, End: 1}, Text: "y"}},
			},
		}},
	}
	var buf bytes.Buffer
	errCount, err := New("json").Write(&buf, results)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if errCount != 1 {
		t.Fatalf("expected 1 error-severity diagnostic, got %d", errCount)
	}
	if !strings.Contains(buf.String(), `"fixable": true`) {
		t.Fatalf("expected fixable marker in JSON output, got %s", buf.String())
	}
}

func TestSummaryCountsFilesIssuesAndErrors(t *testing.T) {
	files, issues, errs := Summary(sampleResults())
	if files != 2 {
		t.Fatalf("expected 2 files, got %d", files)
	}
	if issues != 1 {
		t.Fatalf("expected 1 issue, got %d", issues)
	}
	if errs != 1 {
		t.Fatalf("expected 1 error (the failed file), got %d", errs)
	}
}
