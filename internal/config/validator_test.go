package config

import (
	"testing"

	"github.com/tsuzulint/tsuzulint-go/internal/ruleconfig"
)

func TestValidateAndSetDefaultsFillsInDefaults(t *testing.T) {
	cfg := &Config{}

	if err := NewValidator().ValidateAndSetDefaults(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CacheDir != DefaultCacheDir {
		t.Errorf("expected default cache dir, got %q", cfg.CacheDir)
	}
	if cfg.Rules == nil {
		t.Errorf("expected Rules to be initialized")
	}
	if len(cfg.Include) == 0 {
		t.Errorf("expected default include patterns")
	}
}

func TestValidateRejectsEmptyRuleName(t *testing.T) {
	cfg := &Config{Rules: map[string]ruleconfig.RuleConfig{"": ruleconfig.Enabled(true)}}
	if err := ValidateConfig(cfg); err == nil {
		t.Fatalf("expected error for empty rule name")
	}
}

func TestValidateRejectsDuplicatePluginSource(t *testing.T) {
	cfg := &Config{Plugins: []ruleconfig.Source{{Name: "no-todo"}, {Name: "no-todo"}}}
	if err := ValidateConfig(cfg); err == nil {
		t.Fatalf("expected error for duplicate plugin source")
	}
}

func TestValidateRejectsInvalidGlob(t *testing.T) {
	cfg := &Config{Include: []string{"[unterminated"}}
	if err := ValidateConfig(cfg); err == nil {
		t.Fatalf("expected error for invalid glob pattern")
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	cfg := &Config{
		Rules:   map[string]ruleconfig.RuleConfig{"no-todo": ruleconfig.WithSeverity("warning")},
		Plugins: []ruleconfig.Source{{Path: "./rules/no-todo.wasm"}},
		Include: []string{"**/*.md"},
		Exclude: []string{"vendor/**"},
	}
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
