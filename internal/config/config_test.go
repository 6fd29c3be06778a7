package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsuzulint/tsuzulint-go/internal/ruleconfig"
)

func TestNewHasSaneDefaults(t *testing.T) {
	cfg := New()
	assert.True(t, cfg.Cache)
	assert.Equal(t, DefaultCacheDir, cfg.CacheDir)
	assert.NotNil(t, cfg.Rules)
}

func TestFromJSONParsesRulesAndPlugins(t *testing.T) {
	cfg, err := FromJSON([]byte(`{
		"rules": {"no-todo": "warning", "line-length": false},
		"plugins": ["no-todo", {"path": "./rules/line-length.wasm"}],
		"include": ["**/*.md"],
		"exclude": ["vendor/**"]
	}`))
	require.NoError(t, err)

	assert.True(t, cfg.Rules["no-todo"].IsEnabled())
	assert.False(t, cfg.Rules["line-length"].IsEnabled())
	require.Len(t, cfg.Plugins, 2)
	assert.Equal(t, "no-todo", cfg.Plugins[0].DisplayName())
	assert.Equal(t, "./rules/line-length.wasm", cfg.Plugins[1].Path)
}

func TestFromJSONStripsComments(t *testing.T) {
	cfg, err := FromJSON([]byte(`{
		// enable the basics
		"rules": {
			"no-todo": true, // trailing comma below
		},
	}`))
	require.NoError(t, err)
	assert.True(t, cfg.Rules["no-todo"].IsEnabled())
}

func TestFromJSONAppliesDefaultsForOmittedFields(t *testing.T) {
	cfg, err := FromJSON([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultCacheDir, cfg.CacheDir)
	assert.NotNil(t, cfg.Rules)
}

func TestLoadReadsFileFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tsuzulint.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{"rules": {"no-todo": true}}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Rules["no-todo"].IsEnabled())
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.jsonc"))
	assert.Error(t, err)
}

func TestEnabledRulesFiltersDisabled(t *testing.T) {
	cfg := New()
	cfg.Rules["no-todo"] = ruleconfig.Enabled(true)
	cfg.Rules["line-length"] = ruleconfig.Enabled(false)

	enabled := cfg.EnabledRules()
	_, hasTodo := enabled["no-todo"]
	_, hasLineLength := enabled["line-length"]
	assert.True(t, hasTodo)
	assert.False(t, hasLineLength)
}

func TestHashIsDeterministicAndSensitiveToContent(t *testing.T) {
	a := New()
	b := New()
	assert.Equal(t, a.Hash(), b.Hash())

	b.Rules["no-todo"] = ruleconfig.Enabled(true)
	assert.NotEqual(t, a.Hash(), b.Hash())
}

func TestApplyGitignoreAppendsExclusions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("dist/\n*.log\n"), 0o644))

	cfg := New()
	require.NoError(t, cfg.ApplyGitignore(dir))
	assert.NotEmpty(t, cfg.Exclude)
}
