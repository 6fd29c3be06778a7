package cache

import (
	"github.com/tsuzulint/tsuzulint-go/internal/diagnostic"
)

// Entry is one cached file's validity fingerprint plus its diagnostics
// from the last run that produced it.
type Entry struct {
	ContentHash  string            `json:"content_hash"`
	ConfigHash   string            `json:"config_hash"`
	RuleVersions map[string]string `json:"rule_versions"`
	Diagnostics  []diagnostic.Diagnostic `json:"diagnostics"`
	CreatedAt    int64             `json:"created_at"`
}

// IsValid reports whether the entry still applies given the current
// content hash, config hash, and set of rule versions. Rule version
// equality requires both sides to have the same number of rules and every
// key's value to match exactly.
func (e Entry) IsValid(contentHash, configHash string, ruleVersions map[string]string) bool {
	if e.ContentHash != contentHash {
		return false
	}
	if e.ConfigHash != configHash {
		return false
	}
	if len(e.RuleVersions) != len(ruleVersions) {
		return false
	}
	for name, version := range ruleVersions {
		if e.RuleVersions[name] != version {
			return false
		}
	}
	return true
}
