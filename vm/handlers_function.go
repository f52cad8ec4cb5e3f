package vm

import "github.com/chazu/tanuki/pkg/bytecode"

func init() {
	fnOps[bytecode.FnCall] = execCall
	fnOps[bytecode.FnCallC] = execCallC
	fnOps[bytecode.FnCallExt] = execCallExt
	fnOps[bytecode.FnCallExtC] = execCallExtC
	fnOps[bytecode.FnReturn] = execReturn
}

// ---------------------------------------------------------------------------
// Calls
// ---------------------------------------------------------------------------
//
// A call saves the caller's context, stack base, and local frame, then
// continues in a fresh frame at the callee's entry point. Arguments and
// results travel on the operand stack, which the callee shares with its
// caller. RETURN, or falling off the end of the callee's stream, restores
// the saved state.

func execCall(e *Engine, op bytecode.Word) error {
	id, err := e.pop(op)
	if err != nil {
		return err
	}
	return e.callLocal(op, id)
}

func execCallC(e *Engine, op bytecode.Word) error {
	c, err := e.ctx.ConstU16()
	if err != nil {
		return err
	}
	return e.callLocal(op, uint64(c))
}

func execCallExt(e *Engine, op bytecode.Word) error {
	idx, err := e.pop(op)
	if err != nil {
		return err
	}
	return e.callExternal(op, idx)
}

func execCallExtC(e *Engine, op bytecode.Word) error {
	c, err := e.ctx.ConstU16()
	if err != nil {
		return err
	}
	return e.callExternal(op, uint64(c))
}

func execReturn(e *Engine, op bytecode.Word) error {
	if len(e.calls) == 0 {
		return errHalt
	}
	e.popCall()
	return nil
}

// callLocal transfers control to a local symbol of the executing module.
// Local calls never touch the registry, so they work in anonymous streams
// too, which simply have no symbols to call.
func (e *Engine) callLocal(op bytecode.Word, id uint64) error {
	m := e.ctx.Module()
	if id >= uint64(len(m.LocalSymbols)) {
		return &InvalidSymbolError{ID: uint32(id)}
	}
	ctx, err := NewContext(m, int(m.LocalSymbols[id].CodeOffset))
	if err != nil {
		return err
	}
	return e.pushCall(ctx)
}

// callExternal transfers control through the executing module's external
// symbol table. Entries still holding the unresolved sentinel fault here,
// not at registration.
func (e *Engine) callExternal(op bytecode.Word, idx uint64) error {
	m := e.ctx.Module()
	if idx >= uint64(len(m.ExternalSymbols)) {
		return &InvalidSymbolError{ID: uint32(idx)}
	}
	ext := m.ExternalSymbols[idx]
	ctx, err := e.resolve(ext.ModuleID, ext.SymbolID)
	if err != nil {
		return err
	}
	return e.pushCall(ctx)
}

func (e *Engine) pushCall(ctx Context) error {
	if len(e.calls) >= e.maxCalls {
		return &CallDepthError{Depth: len(e.calls) + 1}
	}
	e.calls = append(e.calls, savedFrame{ctx: e.ctx, base: e.base, locals: e.locals})
	e.ctx = ctx
	e.locals = &frame{}
	return nil
}
