package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/tsuzulint/tsuzulint-go/internal/ruleconfig"
)

// kdlOverlayFile is the local project-level config overlay, checked for
// beside the primary JSON/JSONC config the same way a project-scoped file
// overrides a workspace-wide one.
const kdlOverlayFile = ".tsuzulint.kdl"

// LoadKDLOverlay reads projectRoot's local KDL overlay, if any, and merges
// it onto base: rules and plugin sources declared in the overlay win,
// Include/Exclude are unioned. A missing overlay file is not an error.
func LoadKDLOverlay(projectRoot string, base *Config) (*Config, error) {
	path := filepath.Join(projectRoot, kdlOverlayFile)
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return base, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", kdlOverlayFile, err)
	}

	overlay, err := parseKDLOverlay(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", kdlOverlayFile, err)
	}

	return mergeOverlay(base, overlay), nil
}

// mergeOverlay produces a new Config with overlay's rules and plugin
// sources overriding base's, and Include/Exclude unioned from both.
func mergeOverlay(base, overlay *Config) *Config {
	merged := *base
	merged.Rules = make(map[string]ruleconfig.RuleConfig, len(base.Rules)+len(overlay.Rules))
	for name, rc := range base.Rules {
		merged.Rules[name] = rc
	}
	for name, rc := range overlay.Rules {
		merged.Rules[name] = rc
	}

	overridden := make(map[string]bool, len(overlay.Plugins))
	for _, p := range overlay.Plugins {
		overridden[p.DisplayName()] = true
	}
	merged.Plugins = make([]ruleconfig.Source, 0, len(base.Plugins)+len(overlay.Plugins))
	for _, p := range base.Plugins {
		if !overridden[p.DisplayName()] {
			merged.Plugins = append(merged.Plugins, p)
		}
	}
	merged.Plugins = append(merged.Plugins, overlay.Plugins...)
	merged.Include = unionStrings(base.Include, overlay.Include)
	merged.Exclude = unionStrings(base.Exclude, overlay.Exclude)

	if overlay.CacheDir != "" {
		merged.CacheDir = overlay.CacheDir
	}
	if overlay.Timings {
		merged.Timings = true
	}
	if !overlay.Cache {
		merged.Cache = false
	}

	return &merged
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// parseKDLOverlay parses a ".tsuzulint.kdl" document shaped as:
//
//	rules {
//	    no-todo "warning"
//	    line-length off
//	}
//	plugins {
//	    "no-todo"
//	    local "./rules/custom.wasm"
//	}
//	include "**/*.md"
//	exclude "vendor/**" "CHANGELOG.md"
//	cache_dir ".cache"
//	timings true
func parseKDLOverlay(content string) (*Config, error) {
	cfg := New()

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, err
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "rules":
			for _, rn := range n.Children {
				name := nodeName(rn)
				if name == "" {
					continue
				}
				cfg.Rules[name] = ruleconfigFromNode(rn)
			}
		case "plugins":
			for _, pn := range n.Children {
				cfg.Plugins = append(cfg.Plugins, sourceFromNode(pn))
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			cfg.Exclude = append(cfg.Exclude, collectStringArgs(n)...)
		case "cache_dir":
			if s, ok := firstStringArg(n); ok {
				cfg.CacheDir = s
			}
		case "cache":
			if b, ok := firstBoolArg(n); ok {
				cfg.Cache = b
			}
		case "timings":
			if b, ok := firstBoolArg(n); ok {
				cfg.Timings = b
			}
		}
	}

	return cfg, nil
}

// ruleconfigFromNode turns a KDL rule node into a RuleConfig: a bare bool
// arg toggles it, a string arg is taken as severity, anything else leaves
// it enabled with no override.
func ruleconfigFromNode(n *document.Node) ruleconfig.RuleConfig {
	if b, ok := firstBoolArg(n); ok {
		return ruleconfig.Enabled(b)
	}
	if s, ok := firstStringArg(n); ok {
		return ruleconfig.WithSeverity(s)
	}
	return ruleconfig.Enabled(true)
}

// sourceFromNode turns a KDL plugin node into a Source. A bare node name
// is taken as the rule's registry name; a node carrying one string
// argument names a local WASM path instead, e.g. `local "./custom.wasm"`.
func sourceFromNode(n *document.Node) ruleconfig.Source {
	name := nodeName(n)
	if path, ok := firstStringArg(n); ok {
		return ruleconfig.Source{Name: name, Path: path}
	}
	return ruleconfig.Source{Name: name}
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if name := nodeName(child); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}
