package vm

import (
	"errors"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/chazu/tanuki/pkg/bytecode"
)

var log = commonlog.GetLogger("tanuki.engine")

// Engine defaults.
const (
	DefaultMaxStack     = 0x8FFF
	DefaultMaxCallDepth = 1024
)

// errHalt is the internal signal for a clean HALT; it never escapes Run.
var errHalt = errors.New("halt")

// opHandler executes one instruction's stack/local/control-flow effect.
type opHandler func(*Engine, bytecode.Word) error

// groupHandlers routes an opcode word by its group byte. The per-group
// tables are populated at package init, so new opcodes are additive table
// entries rather than new dispatch branches.
var groupHandlers [256]opHandler

var (
	sysOps   [256]opHandler
	stackOps [256]opHandler
	mathOps  [256]opHandler
	fpOps    [256]opHandler
	fnOps    [256]opHandler
)

func init() {
	groupHandlers[bytecode.GroupSystem] = groupDispatch(&sysOps)
	groupHandlers[bytecode.GroupStack] = groupDispatch(&stackOps)
	groupHandlers[bytecode.GroupJump] = (*Engine).execJump
	groupHandlers[bytecode.GroupMath] = groupDispatch(&mathOps)
	groupHandlers[bytecode.GroupFPMath] = groupDispatch(&fpOps)
	groupHandlers[bytecode.GroupFunction] = groupDispatch(&fnOps)
}

// groupDispatch adapts a per-group opcode table into a group handler.
func groupDispatch(table *[256]opHandler) opHandler {
	return func(e *Engine, op bytecode.Word) error {
		if h := table[op.Data()]; h != nil {
			return h(e, op)
		}
		return &BadOpcodeError{Code: op}
	}
}

// savedFrame captures a caller's state across a FUNCTION call.
type savedFrame struct {
	ctx    Context
	base   int
	locals *frame
}

// Engine executes bytecode. It owns the operand stack, the registry of
// loaded modules, per-call local frames, and the active execution context.
// An Engine is single-threaded; share immutable modules, not engines.
type Engine struct {
	stack    []uint64
	base     int // start of the current logical stack region
	maxStack int

	modules     []*Module
	moduleNames map[string]uint32

	ctx      Context
	locals   *frame
	calls    []savedFrame
	maxCalls int

	out   io.Writer
	trace bool
	runID string
}

// NewEngine creates an engine with default limits, printing to stdout.
func NewEngine() *Engine {
	return &Engine{
		maxStack:    DefaultMaxStack,
		maxCalls:    DefaultMaxCallDepth,
		moduleNames: make(map[string]uint32),
		locals:      &frame{},
		out:         os.Stdout,
	}
}

// SetMaxStack bounds the operand stack depth in 64-bit words.
func (e *Engine) SetMaxStack(n int) {
	e.maxStack = n
}

// SetMaxCallDepth bounds the FUNCTION-group call depth.
func (e *Engine) SetMaxCallDepth(n int) {
	e.maxCalls = n
}

// SetOutput redirects PRINT_* instruction output.
func (e *Engine) SetOutput(w io.Writer) {
	e.out = w
}

// SetTrace enables per-instruction debug logging.
func (e *Engine) SetTrace(on bool) {
	e.trace = on
}

// Stack returns the engine's logical operand stack, bottom first. The
// returned slice aliases engine state and is only valid until the next run.
func (e *Engine) Stack() []uint64 {
	return e.stack[e.base:]
}

// AddModule registers an immutable module under its unique name. A failed
// registration leaves the engine unchanged.
func (e *Engine) AddModule(m *Module) error {
	if m.Name == "" {
		return &InvalidNameError{Name: m.Name}
	}
	if _, ok := e.moduleNames[m.Name]; ok {
		return &NameCollisionError{Name: m.Name}
	}
	e.moduleNames[m.Name] = uint32(len(e.modules))
	e.modules = append(e.modules, m)
	return nil
}

// Lookup returns the registered id for a module name.
func (e *Engine) Lookup(name string) (uint32, bool) {
	id, ok := e.moduleNames[name]
	return id, ok
}

// ModuleAt returns the registered module with the given id.
func (e *Engine) ModuleAt(id uint32) (*Module, bool) {
	if uint64(id) >= uint64(len(e.modules)) {
		return nil, false
	}
	return e.modules[id], true
}

// ResolveExternals matches every registered module's external symbols
// against the registry by name, filling in their module and symbol ids.
// Symbols with no match keep the unresolved sentinel and only fault if
// bytecode calls through them, so a module may be registered and partially
// used before all of its dependencies exist. Run the pass again after
// registering more modules to pick up the newly resolvable entries.
//
// Resolution is the final step of the registration phase: complete it
// before sharing the module set across engines.
func (e *Engine) ResolveExternals() {
	for _, m := range e.modules {
		for i := range m.ExternalSymbols {
			ext := &m.ExternalSymbols[i]
			if ext.ModuleID != UnresolvedID && ext.SymbolID != UnresolvedID {
				continue
			}
			target, ok := e.Lookup(m.StringAt(ext.ModuleNameID))
			if !ok {
				continue
			}
			sym, ok := e.modules[target].Symbol(m.StringAt(ext.SymbolNameID))
			if !ok {
				continue
			}
			ext.ModuleID = target
			ext.SymbolID = sym
		}
	}
}

// resolve validates a (module, symbol) pair against the registry and builds
// a context at the symbol's entry point.
func (e *Engine) resolve(moduleID, symbolID uint32) (Context, error) {
	if uint64(moduleID) >= uint64(len(e.modules)) {
		return Context{}, &InvalidModuleError{ID: moduleID}
	}
	m := e.modules[moduleID]
	if uint64(symbolID) >= uint64(len(m.LocalSymbols)) {
		return Context{}, &InvalidSymbolError{ID: symbolID}
	}
	return NewContext(m, int(m.LocalSymbols[symbolID].CodeOffset))
}

// Run resolves a local symbol's entry point and executes from there until
// halt, stream exhaustion, or the first fault.
func (e *Engine) Run(moduleID, symbolID uint32) error {
	ctx, err := e.resolve(moduleID, symbolID)
	if err != nil {
		return err
	}
	return e.exec(ctx)
}

// RunCode executes an anonymous, unregistered instruction stream directly.
// The stream cannot name symbols, so FUNCTION-group external calls within
// it fault; everything else behaves as in a registered module.
func (e *Engine) RunCode(code []bytecode.Word) error {
	ctx, err := NewContext(&Module{Code: code}, 0)
	if err != nil {
		return err
	}
	return e.exec(ctx)
}

// exec is the fetch-decode-execute loop. Engine state from any previous run
// is discarded; the stack, frame storage, and call list live exactly as long
// as one invocation.
func (e *Engine) exec(ctx Context) error {
	e.ctx = ctx
	e.stack = e.stack[:0]
	e.base = 0
	e.locals = &frame{}
	e.calls = e.calls[:0]
	e.runID = uuid.New().String()

	if e.trace {
		log.Debugf("run %s: module %q, %d words", e.runID, ctx.module.Name, len(ctx.module.Code))
	}

	for {
		op, ok := e.ctx.Next()
		if !ok {
			// Falling off the end of a callee returns; at top level the
			// run is complete.
			if len(e.calls) == 0 {
				return nil
			}
			e.popCall()
			continue
		}

		if e.trace {
			log.Debugf("run %s: %04x: %s", e.runID, e.ctx.Offset()-1, op)
		}

		h := groupHandlers[op.Group()]
		if h == nil {
			return &BadOpcodeError{Code: op}
		}
		if err := h(e, op); err != nil {
			if err == errHalt {
				return nil
			}
			return err
		}
	}
}

// ---------------------------------------------------------------------------
// Stack primitives
// ---------------------------------------------------------------------------
//
// The logical stack is the region above the current base; values below the
// base belong to callers and are unreachable until POP_STACK restores them.

// size returns the logical stack height.
func (e *Engine) size() int {
	return len(e.stack) - e.base
}

// checkRoom verifies capacity for exactly n more words before any push.
func (e *Engine) checkRoom(op bytecode.Word, n int) error {
	if len(e.stack)+n > e.maxStack {
		return &StackOverflowError{Opcode: op}
	}
	return nil
}

// need verifies that at least n operands are present.
func (e *Engine) need(op bytecode.Word, n uint64) error {
	if uint64(e.size()) < n {
		return &StackUnderflowError{Opcode: op, Required: n}
	}
	return nil
}

// push adds one value, capacity-checked.
func (e *Engine) push(op bytecode.Word, v uint64) error {
	if err := e.checkRoom(op, 1); err != nil {
		return err
	}
	e.stack = append(e.stack, v)
	return nil
}

// push2 adds two values, capacity-checked for both up front.
func (e *Engine) push2(op bytecode.Word, v1, v2 uint64) error {
	if err := e.checkRoom(op, 2); err != nil {
		return err
	}
	e.stack = append(e.stack, v1, v2)
	return nil
}

// pop removes and returns the top value.
func (e *Engine) pop(op bytecode.Word) (uint64, error) {
	if err := e.need(op, 1); err != nil {
		return 0, err
	}
	v := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	return v, nil
}

// pop2 removes the top two values, returning them in pop order.
func (e *Engine) pop2(op bytecode.Word) (first, second uint64, err error) {
	if err := e.need(op, 2); err != nil {
		return 0, 0, err
	}
	n := len(e.stack)
	first, second = e.stack[n-1], e.stack[n-2]
	e.stack = e.stack[:n-2]
	return first, second, nil
}

// pop3 removes the top three values, returning them in pop order.
func (e *Engine) pop3(op bytecode.Word) (first, second, third uint64, err error) {
	if err := e.need(op, 3); err != nil {
		return 0, 0, 0, err
	}
	n := len(e.stack)
	first, second, third = e.stack[n-1], e.stack[n-2], e.stack[n-3]
	e.stack = e.stack[:n-3]
	return first, second, third, nil
}

// popCall restores the most recent saved frame, discarding the callee's
// context and locals.
func (e *Engine) popCall() {
	saved := e.calls[len(e.calls)-1]
	e.calls = e.calls[:len(e.calls)-1]
	e.ctx = saved.ctx
	e.base = saved.base
	e.locals = saved.locals
}
