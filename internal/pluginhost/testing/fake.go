// Package testing provides an in-process fake rule plugin caller, so
// pluginhost's dispatch logic can be exercised without a real WASM module.
package testing

import (
	"context"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tsuzulint/tsuzulint-go/internal/ruleconfig"
)

// FakeCaller answers get_manifest with a fixed manifest and lint with a
// caller-supplied function, standing in for a real executor.Module.
type FakeCaller struct {
	Manifest ruleconfig.Manifest
	LintFunc func(payload []byte) ([]byte, error)
	LintErr  error
}

// Call implements pluginhost.Caller.
func (f *FakeCaller) Call(_ context.Context, exportName string, payload []byte) ([]byte, error) {
	switch exportName {
	case "get_manifest":
		return msgpack.Marshal(f.Manifest)
	case "lint":
		if f.LintErr != nil {
			return nil, f.LintErr
		}
		if f.LintFunc != nil {
			return f.LintFunc(payload)
		}
		return nil, fmt.Errorf("no LintFunc configured")
	default:
		return nil, fmt.Errorf("fake caller: unknown export %s", exportName)
	}
}
