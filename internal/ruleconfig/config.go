// Package ruleconfig models how a rule is configured: its enabled/severity
// state, its options payload, where its plugin comes from, and the
// manifest a loaded plugin reports about itself.
package ruleconfig

import (
	"encoding/json"

	"github.com/tsuzulint/tsuzulint-go/internal/diagnostic"
)

// RuleConfig is the per-rule entry in a project's configuration file. It
// accepts exactly the three shapes the original linter's config format
// does: a bare bool, a severity string, or a structured options object.
type RuleConfig struct {
	boolValue     *bool
	severityValue *string
	options       json.RawMessage
}

// UnmarshalJSON discriminates the three RuleConfig shapes by trying a bool,
// then a string, then falling back to an arbitrary options object.
func (r *RuleConfig) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		r.boolValue = &b
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.severityValue = &s
		return nil
	}
	r.options = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON re-emits whichever shape was parsed.
func (r RuleConfig) MarshalJSON() ([]byte, error) {
	switch {
	case r.boolValue != nil:
		return json.Marshal(*r.boolValue)
	case r.severityValue != nil:
		return json.Marshal(*r.severityValue)
	case r.options != nil:
		return r.options, nil
	default:
		return json.Marshal(true)
	}
}

// IsEnabled reports whether the rule is turned on: a bare bool is taken
// literally, a severity string is enabled unless it's "off", and an
// options object always implies the rule is enabled.
func (r RuleConfig) IsEnabled() bool {
	switch {
	case r.boolValue != nil:
		return *r.boolValue
	case r.severityValue != nil:
		return diagnostic.ParseSeverity(*r.severityValue) != diagnostic.SeverityOff
	default:
		return true
	}
}

// Severity returns the configured severity, falling back to def when the
// config shape doesn't specify one (bool and options shapes don't carry a
// severity of their own).
func (r RuleConfig) Severity(def diagnostic.Severity) diagnostic.Severity {
	if r.severityValue != nil {
		return diagnostic.ParseSeverity(*r.severityValue)
	}
	return def
}

// Options returns the rule's configured options payload, or nil if this
// config entry didn't carry one.
func (r RuleConfig) Options() json.RawMessage {
	return r.options
}

// Enabled builds a bool-shaped RuleConfig, used by tests and defaults.
func Enabled(v bool) RuleConfig {
	return RuleConfig{boolValue: &v}
}

// WithSeverity builds a severity-string-shaped RuleConfig.
func WithSeverity(s string) RuleConfig {
	return RuleConfig{severityValue: &s}
}

// WithOptions builds an options-object-shaped RuleConfig.
func WithOptions(opts json.RawMessage) RuleConfig {
	return RuleConfig{options: opts}
}
