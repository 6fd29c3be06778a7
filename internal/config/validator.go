package config

import (
	"fmt"
	"path/filepath"

	"github.com/tsuzulint/tsuzulint-go/internal/lerrors"
	"github.com/tsuzulint/tsuzulint-go/internal/ruleconfig"
)

// Validator validates a Config and applies smart defaults, mirroring the
// project/index validator this module started from.
type Validator struct{}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates cfg and fills in any defaults a caller
// left unset. It returns an error describing the first problem found.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateRules(cfg.Rules); err != nil {
		return lerrors.New(lerrors.KindConfig, "rules", err)
	}
	if err := v.validatePlugins(cfg.Plugins); err != nil {
		return lerrors.New(lerrors.KindConfig, "plugins", err)
	}
	if err := v.validatePatterns(cfg.Include); err != nil {
		return lerrors.New(lerrors.KindConfig, "include", err)
	}
	if err := v.validatePatterns(cfg.Exclude); err != nil {
		return lerrors.New(lerrors.KindConfig, "exclude", err)
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateRules(rules map[string]ruleconfig.RuleConfig) error {
	for name := range rules {
		if name == "" {
			return fmt.Errorf("rule name cannot be empty")
		}
	}
	return nil
}

func (v *Validator) validatePlugins(plugins []ruleconfig.Source) error {
	seen := make(map[string]bool, len(plugins))
	for _, p := range plugins {
		name := p.DisplayName()
		if name == "<unknown rule source>" {
			return fmt.Errorf("plugin source must name a rule")
		}
		if seen[name] {
			return fmt.Errorf("plugin %q declared more than once", name)
		}
		seen[name] = true
	}
	return nil
}

func (v *Validator) validatePatterns(patterns []string) error {
	for _, p := range patterns {
		if _, err := filepath.Match(p, "probe"); err != nil {
			return fmt.Errorf("invalid glob pattern %q: %w", p, err)
		}
	}
	return nil
}

// setSmartDefaults fills in anything ValidateAndSetDefaults's caller left
// at its zero value.
func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.CacheDir == "" {
		cfg.CacheDir = DefaultCacheDir
	}
	if cfg.Rules == nil {
		cfg.Rules = make(map[string]ruleconfig.RuleConfig)
	}
	if len(cfg.Include) == 0 {
		cfg.Include = []string{"**/*.md", "**/*.txt"}
	}
}

// ValidateConfig is a convenience wrapper around Validator.
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
