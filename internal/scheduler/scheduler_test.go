package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/goleak"

	"github.com/tsuzulint/tsuzulint-go/internal/cache"
	"github.com/tsuzulint/tsuzulint-go/internal/lintfile"
	"github.com/tsuzulint/tsuzulint-go/internal/plaintext"
	"github.com/tsuzulint/tsuzulint-go/internal/pluginhost"
	phtesting "github.com/tsuzulint/tsuzulint-go/internal/pluginhost/testing"
	"github.com/tsuzulint/tsuzulint-go/internal/ruleconfig"
)

var errBoom = errors.New("boom: plugin host init failed")

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestLinter(t *testing.T) (*lintfile.Linter, error) {
	host := pluginhost.New()
	fake := &phtesting.FakeCaller{
		Manifest: ruleconfig.Manifest{Name: "no-todo"},
		LintFunc: func(payload []byte) ([]byte, error) {
			return msgpack.Marshal(pluginhost.LintResponse{})
		},
	}
	if err := host.LoadRule(context.Background(), "no-todo", fake, nil); err != nil {
		return nil, err
	}
	l := lintfile.New(cache.New(t.TempDir()), host, "cfg", map[string]string{"no-todo": "1"})
	l.RegisterParser(plaintext.Parse, "txt")
	return l, nil
}

func TestSchedulerRunsAllFiles(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for i := 0; i < 8; i++ {
		p := filepath.Join(dir, string(rune('a'+i))+".txt")
		if err := os.WriteFile(p, []byte("hello world"), 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
		files = append(files, p)
	}

	sched := New(func() (*lintfile.Linter, error) { return newTestLinter(t) })
	sched.Workers = 3

	results, err := sched.Run(context.Background(), files)
	if err != nil {
		t.Fatalf("scheduler run failed: %v", err)
	}
	if len(results) != len(files) {
		t.Fatalf("expected %d results, got %d", len(files), len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("unexpected per-file error: %v", r.Err)
		}
	}
}

func TestSchedulerReportsPerFileErrors(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "does-not-exist.txt")

	sched := New(func() (*lintfile.Linter, error) { return newTestLinter(t) })
	sched.Workers = 1

	results, err := sched.Run(context.Background(), []string{missing})
	if err != nil {
		t.Fatalf("unexpected scheduler-level error: %v", err)
	}
	if len(results) != 1 || results[0].Err == nil {
		t.Fatalf("expected a per-file error for a missing file, got %+v", results)
	}
}

func TestSchedulerLinterInitFailureFailsOnlyThoseFiles(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for i := 0; i < 5; i++ {
		p := filepath.Join(dir, string(rune('a'+i))+".txt")
		if err := os.WriteFile(p, []byte("hello world"), 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
		files = append(files, p)
	}

	sched := New(func() (*lintfile.Linter, error) {
		return nil, errBoom
	})
	sched.Workers = 2

	results, err := sched.Run(context.Background(), files)
	if err != nil {
		t.Fatalf("expected the batch to still drain despite every worker failing to start, got %v", err)
	}
	if len(results) != len(files) {
		t.Fatalf("expected %d results, got %d", len(files), len(results))
	}
	for _, r := range results {
		if r.Err == nil {
			t.Fatalf("expected every file to fail when no worker could start a linter, got %+v", r)
		}
	}
}

func TestSchedulerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sched := New(func() (*lintfile.Linter, error) { return newTestLinter(t) })
	sched.Workers = 1

	_, err := sched.Run(ctx, []string{"a.txt", "b.txt"})
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
}
