// Package config is tsuzulint's top-level user configuration: a primary
// JSON/JSONC file carrying rules/plugins/include/exclude/cache settings,
// optionally overlaid by a local KDL file the way the indexing engine
// merges a global config with a project one.
package config

import (
	"encoding/json"
	"os"

	"github.com/tsuzulint/tsuzulint-go/internal/hashing"
	"github.com/tsuzulint/tsuzulint-go/internal/lerrors"
	"github.com/tsuzulint/tsuzulint-go/internal/ruleconfig"
)

// DefaultCacheDir is used when a config omits CacheDir.
const DefaultCacheDir = ".tsuzulint-cache"

// Config is the full set of user-controlled linter settings.
type Config struct {
	Rules    map[string]ruleconfig.RuleConfig `json:"rules"`
	Plugins  []ruleconfig.Source              `json:"plugins"`
	Include  []string                         `json:"include"`
	Exclude  []string                         `json:"exclude"`
	Cache    bool                             `json:"cache"`
	CacheDir string                           `json:"cache_dir"`
	Timings  bool                             `json:"timings"`
}

// New returns a Config with the same defaults as a fresh project: caching
// on, the default cache directory, and no rules or plugins configured.
func New() *Config {
	return &Config{
		Rules:    make(map[string]ruleconfig.RuleConfig),
		CacheDir: DefaultCacheDir,
		Cache:    true,
	}
}

// Load reads and parses a JSON or JSONC config file from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, lerrors.New(lerrors.KindConfig, "read", err).WithPath(path)
	}
	return FromJSON(data)
}

// FromJSON parses JSON or JSONC (comments and trailing commas stripped
// first) into a Config, applying the same defaults New does for any
// field the document omits.
func FromJSON(data []byte) (*Config, error) {
	cfg := New()
	stripped := StripJSONC(data)
	if err := json.Unmarshal(stripped, cfg); err != nil {
		return nil, lerrors.New(lerrors.KindConfig, "decode", err)
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = DefaultCacheDir
	}
	if cfg.Rules == nil {
		cfg.Rules = make(map[string]ruleconfig.RuleConfig)
	}
	return cfg, nil
}

// ApplyBuildArtifactExclusions scans rootPath for language build manifests
// (package.json, tsconfig.json, Cargo.toml, pyproject.toml) and appends any
// custom output directories they declare to Exclude, deduplicated.
func (c *Config) ApplyBuildArtifactExclusions(rootPath string) {
	detector := NewBuildArtifactDetector(rootPath)
	c.Exclude = DeduplicatePatterns(append(c.Exclude, detector.DetectOutputDirectories()...))
}

// ApplyGitignore loads rootPath's .gitignore, if any, and appends its
// patterns to Exclude so linting skips whatever the repo itself ignores.
func (c *Config) ApplyGitignore(rootPath string) error {
	gp := NewGitignoreParser()
	if err := gp.LoadGitignore(rootPath); err != nil {
		return lerrors.New(lerrors.KindConfig, "gitignore", err).WithPath(rootPath)
	}
	c.Exclude = append(c.Exclude, gp.GetExclusionPatterns()...)
	return nil
}

// EnabledRules returns the subset of configured rules that are enabled.
func (c *Config) EnabledRules() map[string]ruleconfig.RuleConfig {
	out := make(map[string]ruleconfig.RuleConfig)
	for name, rc := range c.Rules {
		if rc.IsEnabled() {
			out[name] = rc
		}
	}
	return out
}

// Hash returns a BLAKE3 digest of the config's canonical JSON encoding,
// used as the cache's config-fingerprint component.
func (c *Config) Hash() string {
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return hashing.Content(data)
}
