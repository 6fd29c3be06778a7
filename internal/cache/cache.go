// Package cache is tsuzulint's two-tier incremental cache: a file-level
// tier keyed by path, recording the (content hash, config hash, rule
// versions) fingerprint that produced a file's diagnostics, and a
// block-level tier keyed by block content hash, letting an unchanged
// block reuse its diagnostics even inside a file whose other blocks
// changed.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tsuzulint/tsuzulint-go/internal/diagnostic"
	"github.com/tsuzulint/tsuzulint-go/internal/lerrors"
)

const fileName = "cache.json"

// DefaultDir is the cache directory used when no override is configured.
const DefaultDir = ".tsuzulint-cache"

type persisted struct {
	Files  map[string]Entry                    `json:"files"`
	Blocks map[string][]diagnostic.Diagnostic  `json:"blocks"`
}

// Manager is the in-memory, optionally disk-backed cache. It is safe for
// concurrent use.
type Manager struct {
	mu      sync.Mutex
	dir     string
	enabled bool
	files   map[string]Entry
	blocks  map[string][]diagnostic.Diagnostic
}

// New returns a Manager rooted at dir, enabled by default.
func New(dir string) *Manager {
	if dir == "" {
		dir = DefaultDir
	}
	return &Manager{
		dir:     dir,
		enabled: true,
		files:   make(map[string]Entry),
		blocks:  make(map[string][]diagnostic.Diagnostic),
	}
}

// Enable turns the cache on.
func (m *Manager) Enable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = true
}

// Disable turns the cache off; Get/GetBlock calls behave as misses while
// disabled, but the in-memory contents are preserved.
func (m *Manager) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = false
}

// IsEnabled reports whether the cache is currently active.
func (m *Manager) IsEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// Get returns the cached Entry for path, if any and if the cache is
// enabled.
func (m *Manager) Get(path string) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return Entry{}, false
	}
	e, ok := m.files[path]
	return e, ok
}

// Set stores or replaces the cached Entry for path.
func (m *Manager) Set(path string, e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	m.files[path] = e
}

// Remove drops path's cached Entry, if any.
func (m *Manager) Remove(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
}

// Clear empties both cache tiers.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = make(map[string]Entry)
	m.blocks = make(map[string][]diagnostic.Diagnostic)
}

// Len returns the number of cached files.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

// IsEmpty reports whether the file-level cache holds nothing.
func (m *Manager) IsEmpty() bool {
	return m.Len() == 0
}

// GetBlock returns the cached diagnostics for a block content hash.
func (m *Manager) GetBlock(hash string) ([]diagnostic.Diagnostic, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return nil, false
	}
	d, ok := m.blocks[hash]
	return d, ok
}

// SetBlock stores diagnostics for a block content hash.
func (m *Manager) SetBlock(hash string, diags []diagnostic.Diagnostic) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocks[hash] = diags
}

// Load reads cache.json from the cache directory. A missing file is not
// an error — it simply leaves the cache empty, matching a first run.
func (m *Manager) Load() error {
	path := filepath.Join(m.dir, fileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return lerrors.New(lerrors.KindCacheRead, "load", err).WithPath(path)
	}

	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return lerrors.New(lerrors.KindCacheRead, "decode", err).WithPath(path)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if p.Files != nil {
		m.files = p.Files
	}
	if p.Blocks != nil {
		m.blocks = p.Blocks
	}
	return nil
}

// Save writes the cache to cache.json atomically: it writes to a temp
// file in the same directory and renames it into place, so a crash or
// concurrent reader never observes a partially written cache file.
func (m *Manager) Save() error {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return lerrors.New(lerrors.KindCacheWrite, "mkdir", err).WithPath(m.dir)
	}

	m.mu.Lock()
	p := persisted{Files: m.files, Blocks: m.blocks}
	m.mu.Unlock()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return lerrors.New(lerrors.KindCacheWrite, "encode", err)
	}

	final := filepath.Join(m.dir, fileName)
	tmp, err := os.CreateTemp(m.dir, fileName+".tmp-*")
	if err != nil {
		return lerrors.New(lerrors.KindCacheWrite, "create_temp", err).WithPath(m.dir)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return lerrors.New(lerrors.KindCacheWrite, "write", err).WithPath(tmpPath)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return lerrors.New(lerrors.KindCacheWrite, "close", err).WithPath(tmpPath)
	}
	if err := os.Rename(tmpPath, final); err != nil {
		os.Remove(tmpPath)
		return lerrors.New(lerrors.KindCacheWrite, "rename", err).WithPath(final)
	}
	return nil
}
