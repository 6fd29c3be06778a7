// Package executor sandboxes rule plugins as WebAssembly modules executed
// through wazero, either with its ahead-of-time compiler or, when the
// host requires no JIT at all, its pure interpreter.
package executor

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/tsuzulint/tsuzulint-go/internal/lerrors"
)

// DefaultCallTimeout bounds a single rule invocation. A rule that traps,
// loops, or otherwise overruns it fails that call; other rules continue.
// An overrun also closes that rule's module instance, so its later calls
// on the same instance fail too.
const DefaultCallTimeout = 5 * time.Second

// Mode selects wazero's execution strategy.
type Mode int

const (
	// ModeCompiler uses wazero's ahead-of-time compiler engine.
	ModeCompiler Mode = iota
	// ModeInterpreter runs modules without any native code generation,
	// for hosts that must not JIT untrusted bytes.
	ModeInterpreter
)

// Config configures a new Engine.
type Config struct {
	Mode Mode
	// MemoryLimitPages caps each module's memory in 64 KiB pages; zero
	// means 2048 pages (128 MiB).
	MemoryLimitPages uint32
}

// Engine owns one wazero runtime shared by every loaded plugin module.
type Engine struct {
	runtime wazero.Runtime
}

// NewEngine builds an Engine per cfg and instantiates the WASI snapshot
// preview1 host module every plugin module can import.
func NewEngine(ctx context.Context, cfg Config) (*Engine, error) {
	var runtimeCfg wazero.RuntimeConfig
	switch cfg.Mode {
	case ModeInterpreter:
		runtimeCfg = wazero.NewRuntimeConfigInterpreter()
	default:
		runtimeCfg = wazero.NewRuntimeConfigCompiler()
	}
	pages := cfg.MemoryLimitPages
	if pages == 0 {
		pages = 2048
	}
	// Close a module whose call context ends so a running guest is
	// actually interrupted at its deadline.
	runtimeCfg = runtimeCfg.WithMemoryLimitPages(pages).WithCloseOnContextDone(true)

	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, runtime); err != nil {
		runtime.Close(ctx)
		return nil, lerrors.New(lerrors.KindPluginLoad, "instantiate_wasi", err)
	}
	return &Engine{runtime: runtime}, nil
}

// Close releases every module this engine compiled.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// LoadOptions gates what a loaded module may reach beyond pure
// computation. The zero value grants nothing: no filesystem, no network —
// matching wazero's own stance that an unwired host import is simply
// absent, not merely denied at call time.
type LoadOptions struct {
	// FSRoot, when non-empty, is the single directory a module's WASI
	// filesystem calls are rooted at (via os.DirFS). Left empty, the
	// module gets no filesystem access at all.
	FSRoot string
}

// Load compiles and instantiates a rule plugin module under the given
// instance name, which must be unique within the engine.
func (e *Engine) Load(ctx context.Context, wasmBytes []byte, name string, opts LoadOptions) (*Module, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, lerrors.New(lerrors.KindPluginLoad, "compile", err).WithPath(name)
	}

	cfg := wazero.NewModuleConfig().WithName(name)
	if opts.FSRoot != "" {
		cfg = cfg.WithFS(os.DirFS(opts.FSRoot))
	}

	instance, err := e.runtime.InstantiateModule(ctx, compiled, cfg)
	if err != nil {
		compiled.Close(ctx)
		return nil, lerrors.New(lerrors.KindPluginLoad, "instantiate", err).WithPath(name)
	}

	return &Module{compiled: compiled, instance: instance, name: name}, nil
}

// Module is one loaded, instantiated rule plugin.
type Module struct {
	compiled wazero.CompiledModule
	instance api.Module
	name     string
}

// Close releases the module's instance and compiled bytes.
func (m *Module) Close(ctx context.Context) error {
	if err := m.instance.Close(ctx); err != nil {
		return err
	}
	return m.compiled.Close(ctx)
}

// Call invokes exportName with payload as its MessagePack-encoded
// argument and returns the callee's MessagePack-encoded result.
//
// The ABI convention is: the guest exports "alloc"/"dealloc" for the host
// to place the request bytes into guest memory, and the target export
// takes (ptr, len) and returns a single i64 packing the result's
// (ptr<<32 | len), which the host reads back out of guest memory before
// freeing both buffers.
func (m *Module) Call(ctx context.Context, exportName string, payload []byte) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCallTimeout)
		defer cancel()
	}

	alloc := m.instance.ExportedFunction("alloc")
	dealloc := m.instance.ExportedFunction("dealloc")
	target := m.instance.ExportedFunction(exportName)
	if alloc == nil || target == nil {
		return nil, lerrors.New(lerrors.KindPluginCall, exportName, fmt.Errorf("module %s does not export alloc/%s", m.name, exportName)).WithPath(m.name)
	}

	reqPtrResult, err := alloc.Call(ctx, uint64(len(payload)))
	if err != nil {
		return nil, lerrors.New(lerrors.KindPluginCall, "alloc", err).WithPath(m.name)
	}
	reqPtr := uint32(reqPtrResult[0])

	mem := m.instance.Memory()
	if !mem.Write(reqPtr, payload) {
		return nil, lerrors.New(lerrors.KindPluginCall, "write_request", fmt.Errorf("out of bounds memory write")).WithPath(m.name)
	}

	packed, err := target.Call(ctx, uint64(reqPtr), uint64(len(payload)))
	if dealloc != nil {
		_, _ = dealloc.Call(ctx, uint64(reqPtr), uint64(len(payload)))
	}
	if err != nil {
		return nil, lerrors.New(lerrors.KindPluginCall, exportName, err).WithPath(m.name)
	}
	if len(packed) != 1 {
		return nil, lerrors.New(lerrors.KindPluginCall, exportName, fmt.Errorf("expected a single packed return value")).WithPath(m.name)
	}

	resultPtr := uint32(packed[0] >> 32)
	resultLen := uint32(packed[0])

	result, ok := mem.Read(resultPtr, resultLen)
	if !ok {
		return nil, lerrors.New(lerrors.KindPluginCall, "read_result", fmt.Errorf("out of bounds memory read")).WithPath(m.name)
	}
	out := append([]byte(nil), result...)

	if dealloc != nil {
		_, _ = dealloc.Call(ctx, uint64(resultPtr), uint64(resultLen))
	}
	return out, nil
}
