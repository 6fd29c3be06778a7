// Package pluginhost loads rule plugins, holds their declared manifests
// and configured options, and dispatches lint calls to them over the
// MessagePack ABI, tolerating individual rule failures so one broken
// plugin cannot take down a whole run.
package pluginhost

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tsuzulint/tsuzulint-go/internal/ast"
	"github.com/tsuzulint/tsuzulint-go/internal/diagnostic"
	"github.com/tsuzulint/tsuzulint-go/internal/lerrors"
	"github.com/tsuzulint/tsuzulint-go/internal/logging"
	"github.com/tsuzulint/tsuzulint-go/internal/ruleconfig"
)

var log = logging.New("pluginhost")

// Caller is the subset of executor.Module a Host needs; tests substitute
// a fake implementation rather than a real WASM module.
type Caller interface {
	Call(ctx context.Context, exportName string, payload []byte) ([]byte, error)
}

// Host owns every rule loaded for one lint run: each rule's caller, its
// self-reported manifest, and its configured options.
type Host struct {
	callers   map[string]Caller
	manifests map[string]ruleconfig.Manifest
	configs   map[string]json.RawMessage
}

// New returns an empty Host.
func New() *Host {
	return &Host{
		callers:   make(map[string]Caller),
		manifests: make(map[string]ruleconfig.Manifest),
		configs:   make(map[string]json.RawMessage),
	}
}

// ProbeManifest fetches a caller's self-reported manifest via its
// get_manifest export, without registering it as a loaded rule. Used to
// learn a plugin's declared permissions before deciding how to
// instantiate it.
func ProbeManifest(ctx context.Context, caller Caller, name string) (ruleconfig.Manifest, error) {
	raw, err := caller.Call(ctx, "get_manifest", nil)
	if err != nil {
		return ruleconfig.Manifest{}, lerrors.New(lerrors.KindPluginLoad, "get_manifest", err).WithPath(name)
	}
	var manifest ruleconfig.Manifest
	if err := msgpack.Unmarshal(raw, &manifest); err != nil {
		return ruleconfig.Manifest{}, lerrors.New(lerrors.KindPluginLoad, "decode_manifest", err).WithPath(name)
	}
	return manifest, nil
}

// LoadRule registers a rule's caller and fetches its manifest via
// get_manifest. config may be nil, meaning the rule runs with no options.
func (h *Host) LoadRule(ctx context.Context, name string, caller Caller, config json.RawMessage) error {
	manifest, err := ProbeManifest(ctx, caller, name)
	if err != nil {
		return err
	}
	if manifest.Schema != nil {
		if err := manifest.ValidateOptions(config); err != nil {
			return lerrors.New(lerrors.KindPluginLoad, "validate_options", err).WithPath(name)
		}
	}

	h.callers[name] = caller
	h.manifests[name] = manifest
	if config == nil {
		config = json.RawMessage("null")
	}
	h.configs[name] = config
	return nil
}

// ConfigureRule updates an already-loaded rule's options.
func (h *Host) ConfigureRule(name string, config json.RawMessage) error {
	if _, ok := h.callers[name]; !ok {
		return lerrors.New(lerrors.KindPluginCall, "configure_rule", fmt.Errorf("rule %s not loaded", name)).WithPath(name)
	}
	h.configs[name] = config
	return nil
}

// Manifest returns the manifest a loaded rule reported.
func (h *Host) Manifest(name string) (ruleconfig.Manifest, bool) {
	m, ok := h.manifests[name]
	return m, ok
}

// LoadedRules returns the names of every currently loaded rule.
func (h *Host) LoadedRules() []string {
	names := make([]string, 0, len(h.callers))
	for name := range h.callers {
		names = append(names, name)
	}
	return names
}

// UnloadRule drops a rule and its state.
func (h *Host) UnloadRule(name string) {
	delete(h.callers, name)
	delete(h.manifests, name)
	delete(h.configs, name)
}

// UnloadAll drops every loaded rule.
func (h *Host) UnloadAll() {
	h.callers = make(map[string]Caller)
	h.manifests = make(map[string]ruleconfig.Manifest)
	h.configs = make(map[string]json.RawMessage)
}

// RunRule invokes a single loaded rule's "lint" export against node and
// returns its diagnostics.
func (h *Host) RunRule(ctx context.Context, name string, node *ast.Node, source, filePath string) ([]diagnostic.Diagnostic, error) {
	caller, ok := h.callers[name]
	if !ok {
		return nil, lerrors.New(lerrors.KindPluginCall, "run_rule", fmt.Errorf("rule %s not loaded", name)).WithPath(name)
	}

	req := LintRequest{
		Node:     ast.ToWire(node),
		Config:   h.configs[name],
		Source:   source,
		FilePath: filePath,
	}
	payload, err := msgpack.Marshal(req)
	if err != nil {
		return nil, lerrors.New(lerrors.KindPluginCall, "encode_request", err).WithPath(name)
	}

	raw, err := caller.Call(ctx, "lint", payload)
	if err != nil {
		return nil, lerrors.New(lerrors.KindPluginCall, "lint", err).WithPath(name)
	}

	var resp LintResponse
	if err := msgpack.Unmarshal(raw, &resp); err != nil {
		return nil, lerrors.New(lerrors.KindPluginCall, "decode_response", err).WithPath(name)
	}

	out := make([]diagnostic.Diagnostic, 0, len(resp.Diagnostics))
	for _, d := range resp.Diagnostics {
		diag := diagnostic.Diagnostic{
			RuleName:     name,
			Severity:     diagnostic.ParseSeverity(d.Severity),
			Message:      d.Message,
			Span:         ast.Span{Start: d.Start, End: d.End},
			FilePath:     filePath,
			BypassIgnore: d.IgnoreExempt,
		}
		if d.Fix != nil {
			diag.Fix = &diagnostic.Fix{
				Span: ast.Span{Start: d.Fix.Start, End: d.Fix.End},
				Text: d.Fix.Text,
			}
		}
		out = append(out, diag)
	}
	return out, nil
}

// runOnNode runs every loaded rule that declared interest in node's kind
// against node alone, tolerating per-rule failures: a rule that errors is
// logged and skipped rather than aborting the remaining rules.
func (h *Host) runOnNode(ctx context.Context, node *ast.Node, source, filePath string) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic
	kind := node.Kind.String()
	for _, name := range h.LoadedRules() {
		manifest, ok := h.manifests[name]
		if !ok || !manifest.HandlesNode(kind) {
			continue
		}
		out, err := h.RunRule(ctx, name, node, source, filePath)
		if err != nil {
			log.Warnf("rule %s failed on %s: %v", name, filePath, err)
			continue
		}
		diags = append(diags, out...)
	}
	return diags
}

// RunRulesOnNode runs every rule interested in node's kind against node
// alone, without descending into its children.
func (h *Host) RunRulesOnNode(ctx context.Context, node *ast.Node, source, filePath string) []diagnostic.Diagnostic {
	return h.runOnNode(ctx, node, source, filePath)
}

// RunAllRules walks node's subtree depth-first and, at each visited node,
// dispatches every loaded rule that declared interest in that node's kind
// (via its manifest's NodeTypes). A rule with no NodeTypes fires at every
// node it sees.
func (h *Host) RunAllRules(ctx context.Context, node *ast.Node, source, filePath string) []diagnostic.Diagnostic {
	var all []diagnostic.Diagnostic
	ast.Walk(node, func(n *ast.Node) bool {
		all = append(all, h.runOnNode(ctx, n, source, filePath)...)
		return true
	})
	return all
}
