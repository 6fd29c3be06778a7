package pathutil

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/tsuzulint/tsuzulint-go/internal/diagnostic"
	"github.com/tsuzulint/tsuzulint-go/internal/lintfile"
	"github.com/tsuzulint/tsuzulint-go/internal/scheduler"
)

func TestToRelative(t *testing.T) {
	tests := []struct {
		name     string
		absPath  string
		rootDir  string
		expected string
	}{
		{
			name:     "simple relative path",
			absPath:  "/home/user/project/docs/notes.md",
			rootDir:  "/home/user/project",
			expected: "docs/notes.md",
		},
		{
			name:     "root level file",
			absPath:  "/home/user/project/README.md",
			rootDir:  "/home/user/project",
			expected: "README.md",
		},
		{
			name:     "same directory",
			absPath:  "/home/user/project",
			rootDir:  "/home/user/project",
			expected: ".",
		},
		{
			name:     "already relative path",
			absPath:  "docs/notes.md",
			rootDir:  "/home/user/project",
			expected: "docs/notes.md",
		},
		{
			name:     "path outside root - fallback to absolute",
			absPath:  "/other/location/file.md",
			rootDir:  "/home/user/project",
			expected: "/other/location/file.md",
		},
		{
			name:     "empty root directory",
			absPath:  "/home/user/project/file.md",
			rootDir:  "",
			expected: "/home/user/project/file.md",
		},
		{
			name:     "empty absolute path",
			absPath:  "",
			rootDir:  "/home/user/project",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToRelative(tt.absPath, tt.rootDir)

			if runtime.GOOS == "windows" {
				result = filepath.ToSlash(result)
				expected := filepath.ToSlash(tt.expected)
				if result != expected {
					t.Errorf("ToRelative() = %v, want %v", result, expected)
				}
			} else if result != tt.expected {
				t.Errorf("ToRelative() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestToRelativeResults(t *testing.T) {
	rootDir := "/home/user/project"

	input := []scheduler.FileResult{
		{
			Path: "/home/user/project/docs/notes.md",
			Result: &lintfile.Result{
				Path: "/home/user/project/docs/notes.md",
				Diagnostics: []diagnostic.Diagnostic{
					{RuleName: "no-todo", Message: "found TODO"},
				},
			},
		},
		{
			Path: "/home/user/project/README.md",
			Err:  nil,
		},
	}

	results := ToRelativeResults(input, rootDir)

	expected := []string{"docs/notes.md", "README.md"}
	if len(results) != len(expected) {
		t.Fatalf("expected %d results, got %d", len(expected), len(results))
	}

	for i, r := range results {
		gotPath := r.Path
		wantPath := expected[i]
		if runtime.GOOS == "windows" {
			gotPath = filepath.ToSlash(gotPath)
			wantPath = filepath.ToSlash(wantPath)
		}
		if gotPath != wantPath {
			t.Errorf("result %d: Path = %v, want %v", i, gotPath, wantPath)
		}
	}

	if results[0].Result.Path != results[0].Path {
		t.Errorf("expected nested Result.Path to track the converted Path, got %v", results[0].Result.Path)
	}
	if len(results[0].Result.Diagnostics) != 1 || results[0].Result.Diagnostics[0].RuleName != "no-todo" {
		t.Errorf("expected diagnostics to be preserved unchanged, got %v", results[0].Result.Diagnostics)
	}
}

func TestToRelativeResultsEmptySlice(t *testing.T) {
	out := ToRelativeResults(nil, "/home/user/project")
	if len(out) != 0 {
		t.Errorf("expected empty slice, got %d elements", len(out))
	}
}

func TestToRelativeResultsDoesNotMutateInput(t *testing.T) {
	input := []scheduler.FileResult{
		{Path: "/home/user/project/docs/notes.md"},
	}

	_ = ToRelativeResults(input, "/home/user/project")

	if input[0].Path != "/home/user/project/docs/notes.md" {
		t.Errorf("expected input slice to be left untouched, got %v", input[0].Path)
	}
}
