// Package watch supplements the CLI with a debounced directory watcher,
// so `tsuzulint watch <root>` can re-lint a project incrementally instead
// of only running once, the way the indexing engine's own watch mode
// batches file-system events before acting on them.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tsuzulint/tsuzulint-go/internal/config"
	"github.com/tsuzulint/tsuzulint-go/internal/logging"
)

var log = logging.New("watch")

// DefaultDebounce matches the original workspace's LSP debounce window.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches a directory tree and delivers debounced batches of
// changed file paths to OnBatch.
type Watcher struct {
	cfg      *config.Config
	debounce time.Duration
	fsw      *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer

	OnBatch func(paths []string)

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Watcher bounded to cfg's Include/Exclude patterns.
func New(cfg *config.Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		cfg:      cfg,
		debounce: DefaultDebounce,
		fsw:      fsw,
		pending:  make(map[string]struct{}),
	}, nil
}

// Start begins watching root recursively and returns once the initial
// directory walk has added all watches.
func (w *Watcher) Start(ctx context.Context, root string) error {
	if err := w.addWatches(root); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go w.loop(ctx)

	log.Infof("watching %s for changes", root)
	return nil
}

// Stop stops the watcher and releases its fsnotify handle.
func (w *Watcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) addWatches(root string) error {
	visited := make(map[string]bool)
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}
		real, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil
		}
		if visited[real] {
			return filepath.SkipDir
		}
		visited[real] = true

		if w.shouldSkipDir(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			log.Warnf("failed to watch %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) shouldSkipDir(path string) bool {
	for _, pattern := range w.cfg.Exclude {
		if globMatchesPath(pattern, path) {
			return true
		}
	}
	return false
}

// globMatchesPath matches a config glob against path, tolerating the
// "**/" prefix and "/**" or "/*" suffix shapes Include/Exclude patterns
// use for "anywhere in the tree" matching — stdlib filepath.Match has no
// recursive-wildcard concept of its own.
func globMatchesPath(pattern, path string) bool {
	core := strings.TrimSuffix(strings.TrimSuffix(pattern, "/**"), "/*")
	core = strings.TrimPrefix(core, "**/")

	base := filepath.Base(path)
	if matched, _ := filepath.Match(core, base); matched {
		return true
	}
	if matched, _ := filepath.Match(pattern, path); matched {
		return true
	}
	if matched, _ := filepath.Match(core, path); matched {
		return true
	}
	return false
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Warnf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.shouldSkipDir(event.Name) {
				_ = w.fsw.Add(event.Name)
			}
			return
		}
	}
	if !w.matchesInclude(event.Name) {
		return
	}

	w.mu.Lock()
	w.pending[event.Name] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
	w.mu.Unlock()
}

func (w *Watcher) matchesInclude(path string) bool {
	for _, pattern := range w.cfg.Include {
		if globMatchesPath(pattern, path) {
			return true
		}
	}
	return false
}

func (w *Watcher) flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	if len(paths) == 0 || w.OnBatch == nil {
		return
	}
	w.OnBatch(paths)
}
