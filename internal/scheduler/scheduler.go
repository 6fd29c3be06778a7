// Package scheduler fans a batch of files out across a fixed worker pool.
// Each worker owns its own plugin host — no rule-engine state is shared
// across goroutines — and results flow back over a bounded channel with
// adaptive back-pressure, mirroring the retry-with-backoff send pattern
// used to move files and results through the indexing pipeline.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tsuzulint/tsuzulint-go/internal/lintfile"
	"github.com/tsuzulint/tsuzulint-go/internal/logging"
)

var log = logging.New("scheduler")

const (
	sendTimeout    = 2 * time.Second
	maxBackoff     = 30 * time.Second
	backoffFactor  = 1.5
)

// LinterFactory builds one worker's private Linter, so rule state is
// never shared between goroutines.
type LinterFactory func() (*lintfile.Linter, error)

// FileResult pairs a file path with its lint outcome or error.
type FileResult struct {
	Path   string
	Result *lintfile.Result
	Err    error
}

// Scheduler runs a fixed-size worker pool over a stream of file paths.
type Scheduler struct {
	Workers    int
	NewLinter  LinterFactory
	BufferSize int
}

// New returns a Scheduler with Workers set to GOMAXPROCS-sized
// parallelism, mirroring the indexing pipeline's default worker count.
func New(newLinter LinterFactory) *Scheduler {
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	return &Scheduler{Workers: workers, NewLinter: newLinter, BufferSize: workers * 4}
}

// Run lints every path in files, returning one FileResult per path (order
// not guaranteed). It stops early and returns ctx.Err() if ctx is
// cancelled.
func (s *Scheduler) Run(ctx context.Context, files []string) ([]FileResult, error) {
	taskChan := make(chan string, s.BufferSize)
	resultChan := make(chan FileResult, s.BufferSize)

	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < s.Workers; i++ {
		g.Go(func() error {
			linter, err := s.NewLinter()
			if err != nil {
				// A plugin-host initialization failure fails only the
				// files this worker would have processed, not the whole
				// batch: returning err here would cancel gctx through
				// errgroup and abort every other worker mid-drain.
				log.Warnf("worker failed to start a linter, reporting its files as failed: %v", err)
				return s.drainAsFailures(gctx, err, taskChan, resultChan)
			}
			return s.worker(gctx, linter, taskChan, resultChan)
		})
	}

	g.Go(func() error {
		defer close(taskChan)
		for _, f := range files {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case taskChan <- f:
			}
		}
		return nil
	})

	results := make([]FileResult, 0, len(files))
	done := make(chan struct{})
	go func() {
		for i := 0; i < len(files); i++ {
			select {
			case r, ok := <-resultChan:
				if !ok {
					close(done)
					return
				}
				results = append(results, r)
			case <-gctx.Done():
				close(done)
				return
			}
		}
		close(done)
	}()

	err := g.Wait()
	close(resultChan)
	<-done
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return results, err
	}
	return results, nil
}

func (s *Scheduler) worker(ctx context.Context, linter *lintfile.Linter, taskChan <-chan string, resultChan chan<- FileResult) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case path, ok := <-taskChan:
			if !ok {
				return nil
			}
			result := s.process(ctx, linter, path)
			if err := sendWithBackoff(ctx, resultChan, result); err != nil {
				return err
			}
			runtime.Gosched()
		}
	}
}

// drainAsFailures stands in for worker when a worker's Linter never came
// up: it keeps consuming taskChan so the batch still drains to
// completion, reporting each file it would have linted as a failure
// instead of letting it vanish.
func (s *Scheduler) drainAsFailures(ctx context.Context, initErr error, taskChan <-chan string, resultChan chan<- FileResult) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case path, ok := <-taskChan:
			if !ok {
				return nil
			}
			result := FileResult{Path: path, Err: fmt.Errorf("starting linter: %w", initErr)}
			if err := sendWithBackoff(ctx, resultChan, result); err != nil {
				return err
			}
		}
	}
}

func (s *Scheduler) process(ctx context.Context, linter *lintfile.Linter, path string) FileResult {
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return FileResult{Path: path, Err: err}
	}
	result, err := linter.LintFile(ctx, path, content)
	if err != nil {
		log.Warnf("lint failed for %s: %v", path, err)
		return FileResult{Path: path, Err: err}
	}
	return FileResult{Path: path, Result: result}
}

// sendWithBackoff sends r on ch, retrying with exponential backoff
// (capped at maxBackoff) if the channel stays full, so one slow consumer
// doesn't deadlock the whole pool.
func sendWithBackoff(ctx context.Context, ch chan<- FileResult, r FileResult) error {
	select {
	case ch <- r:
		return nil
	default:
	}

	backoff := sendTimeout
	for {
		select {
		case ch <- r:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
			backoff = time.Duration(float64(backoff) * backoffFactor)
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}
}
