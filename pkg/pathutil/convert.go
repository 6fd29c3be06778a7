// Package pathutil converts between absolute and relative paths.
//
// The scheduler and linter work with whatever paths the CLI passes in
// (often absolute once a watch root is joined against a changed file), but
// output meant for a terminal reads better relative to the project root.
// This package provides that conversion layer between internal and
// user-facing path representations.
package pathutil

import (
	"path/filepath"
	"strings"

	"github.com/tsuzulint/tsuzulint-go/internal/scheduler"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is already relative.
//
// Examples:
//   - ToRelative("/home/user/project/src/notes.md", "/home/user/project") → "src/notes.md"
//   - ToRelative("/other/location/file.md", "/home/user/project") → "/other/location/file.md" (outside root)
//   - ToRelative("src/notes.md", "/home/user/project") → "src/notes.md" (already relative)
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}

	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		return absPath
	}

	if strings.HasPrefix(relPath, "..") {
		return absPath
	}

	return relPath
}

// ToRelativeResults converts the Path field of each scheduler.FileResult from
// absolute to relative, without mutating the input slice. Intended for use at
// output boundaries (the CLI's text/JSON formatter, the watch command's
// per-batch report) where results are displayed to a user.
func ToRelativeResults(results []scheduler.FileResult, rootDir string) []scheduler.FileResult {
	if len(results) == 0 {
		return results
	}

	converted := make([]scheduler.FileResult, len(results))
	copy(converted, results)

	for i := range converted {
		converted[i].Path = ToRelative(converted[i].Path, rootDir)
		if converted[i].Result != nil {
			r := *converted[i].Result
			r.Path = converted[i].Path
			converted[i].Result = &r
		}
	}

	return converted
}
