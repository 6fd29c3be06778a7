package pluginhost

import (
	"encoding/json"

	"github.com/tsuzulint/tsuzulint-go/internal/ast"
)

// LintRequest is the MessagePack payload sent to a rule's "lint" export.
type LintRequest struct {
	Node     *ast.WireNode   `msgpack:"node"`
	Config   json.RawMessage `msgpack:"config"`
	Source   string          `msgpack:"source"`
	FilePath string          `msgpack:"file_path"`
}

// WireDiagnostic is one diagnostic as reported by a rule plugin.
type WireDiagnostic struct {
	Severity string   `msgpack:"severity"`
	Message  string   `msgpack:"message"`
	Start    int      `msgpack:"start"`
	End      int      `msgpack:"end"`
	Fix      *WireFix `msgpack:"fix,omitempty"`

	// IgnoreExempt lets a rule opt a diagnostic out of ignore-range
	// filtering (e.g. a rule that deliberately inspects code blocks).
	IgnoreExempt bool `msgpack:"ignore_exempt,omitempty"`
}

// WireFix is a rule-proposed replacement, in wire form.
type WireFix struct {
	Start int    `msgpack:"start"`
	End   int    `msgpack:"end"`
	Text  string `msgpack:"text"`
}

// LintResponse is the MessagePack payload returned from a rule's "lint"
// export.
type LintResponse struct {
	Diagnostics []WireDiagnostic `msgpack:"diagnostics"`
}
