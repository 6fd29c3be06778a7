package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tsuzulint/tsuzulint-go/internal/config"
)

func TestWatcherDebouncesBatchOfChanges(t *testing.T) {
	dir := t.TempDir()

	cfg := config.New()
	cfg.Include = []string{"*.md"}

	w, err := New(cfg)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	w.debounce = 30 * time.Millisecond

	batches := make(chan []string, 4)
	w.OnBatch = func(paths []string) { batches <- paths }

	if err := w.Start(context.Background(), dir); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "a.md")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := os.WriteFile(path, []byte("hello again"), 0o644); err != nil {
		t.Fatalf("rewrite file: %v", err)
	}

	select {
	case batch := <-batches:
		if len(batch) == 0 {
			t.Fatalf("expected a non-empty batch")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for a debounced batch")
	}
}

func TestMatchesIncludeFiltersByPattern(t *testing.T) {
	cfg := config.New()
	cfg.Include = []string{"*.md"}
	w := &Watcher{cfg: cfg}

	if !w.matchesInclude("/tmp/project/readme.md") {
		t.Fatalf("expected .md file to match include pattern")
	}
	if w.matchesInclude("/tmp/project/notes.txt") {
		t.Fatalf("expected .txt file not to match include pattern")
	}
}

func TestShouldSkipDirHonorsExclude(t *testing.T) {
	cfg := config.New()
	cfg.Exclude = []string{"**/node_modules/**"}
	w := &Watcher{cfg: cfg}

	if !w.shouldSkipDir("/tmp/project/node_modules") {
		t.Fatalf("expected node_modules to be skipped")
	}
	if w.shouldSkipDir("/tmp/project/src") {
		t.Fatalf("did not expect src to be skipped")
	}
}
