package vm

import "github.com/chazu/tanuki/pkg/bytecode"

func init() {
	for data, h := range map[byte]opHandler{
		bytecode.StackConst0:   constHandler(0),
		bytecode.StackConst1:   constHandler(1),
		bytecode.StackConst2:   constHandler(2),
		bytecode.StackConst3:   constHandler(3),
		bytecode.StackConst4:   constHandler(4),
		bytecode.StackConst8:   constHandler(8),
		bytecode.StackConst16:  constHandler(16),
		bytecode.StackConst32:  constHandler(32),
		bytecode.StackConst64:  constHandler(64),
		bytecode.StackConst128: constHandler(128),
		bytecode.StackConstN1:  constHandler(^uint64(0)),
		bytecode.StackConstU16: execConstU16,
		bytecode.StackConstU32: execConstU32,
		bytecode.StackConstU64: execConstU64,
		bytecode.StackConstI16: execConstI16,
		bytecode.StackConstI32: execConstI32,

		bytecode.StackDupe:     execDupe,
		bytecode.StackDupe1:    execDupe1,
		bytecode.StackDupeC:    execDupeC,
		bytecode.StackSwap:     execSwap,
		bytecode.StackSwap1:    execSwap1,
		bytecode.StackSwapC:    execSwapC,
		bytecode.StackRotate:   execRotate,
		bytecode.StackRotate1:  execRotate1,
		bytecode.StackRotateC:  execRotateC,
		bytecode.StackRotate1C: execRotate1C,
		bytecode.StackPop:      execPop,
		bytecode.StackPop1:     execPop1,
		bytecode.StackPopC:     execPopC,

		bytecode.StackGetU8:   getHandler(8, false, false),
		bytecode.StackGetU8C:  getHandler(8, false, true),
		bytecode.StackGetU16:  getHandler(16, false, false),
		bytecode.StackGetU16C: getHandler(16, false, true),
		bytecode.StackGetU32:  getHandler(32, false, false),
		bytecode.StackGetU32C: getHandler(32, false, true),
		bytecode.StackGetU64:  getHandler(64, false, false),
		bytecode.StackGetU64C: getHandler(64, false, true),
		bytecode.StackGetI8:   getHandler(8, true, false),
		bytecode.StackGetI8C:  getHandler(8, true, true),
		bytecode.StackGetI16:  getHandler(16, true, false),
		bytecode.StackGetI16C: getHandler(16, true, true),
		bytecode.StackGetI32:  getHandler(32, true, false),
		bytecode.StackGetI32C: getHandler(32, true, true),
		bytecode.StackGetF32:  getHandler(32, false, false),
		bytecode.StackGetF32C: getHandler(32, false, true),

		bytecode.StackSet8:    setHandler(8, false),
		bytecode.StackSet8C:   setHandler(8, true),
		bytecode.StackSet16:   setHandler(16, false),
		bytecode.StackSet16C:  setHandler(16, true),
		bytecode.StackSet32:   setHandler(32, false),
		bytecode.StackSet32C:  setHandler(32, true),
		bytecode.StackSet64:   setHandler(64, false),
		bytecode.StackSet64C:  setHandler(64, true),
		bytecode.StackSetF32:  setHandler(32, false),
		bytecode.StackSetF32C: setHandler(32, true),

		bytecode.StackSize:      execStackSize,
		bytecode.StackPushStack: execPushStack,
		bytecode.StackPopStack:  execPopStack,
		bytecode.StackReserve:   execReserve,
		bytecode.StackReserveC:  execReserveC,
	} {
		stackOps[data] = h
	}
}

// ---------------------------------------------------------------------------
// Constants
// ---------------------------------------------------------------------------

func constHandler(v uint64) opHandler {
	return func(e *Engine, op bytecode.Word) error {
		return e.push(op, v)
	}
}

func execConstU16(e *Engine, op bytecode.Word) error {
	c, err := e.ctx.ConstU16()
	if err != nil {
		return err
	}
	return e.push(op, uint64(c))
}

func execConstU32(e *Engine, op bytecode.Word) error {
	c, err := e.ctx.ConstU32()
	if err != nil {
		return err
	}
	return e.push(op, uint64(c))
}

func execConstU64(e *Engine, op bytecode.Word) error {
	c, err := e.ctx.ConstU64()
	if err != nil {
		return err
	}
	return e.push(op, c)
}

func execConstI16(e *Engine, op bytecode.Word) error {
	c, err := e.ctx.ConstU16()
	if err != nil {
		return err
	}
	return e.push(op, uint64(int64(int16(c))))
}

func execConstI32(e *Engine, op bytecode.Word) error {
	c, err := e.ctx.ConstU32()
	if err != nil {
		return err
	}
	return e.push(op, uint64(int64(int32(c))))
}

// ---------------------------------------------------------------------------
// Shuffles
// ---------------------------------------------------------------------------

// dupe copies the top n values above themselves.
func dupe(e *Engine, op bytecode.Word, n uint64) error {
	if err := e.need(op, n); err != nil {
		return err
	}
	if err := e.checkRoom(op, int(n)); err != nil {
		return err
	}
	top := len(e.stack)
	for i := top - int(n); i < top; i++ {
		e.stack = append(e.stack, e.stack[i])
	}
	return nil
}

func execDupe(e *Engine, op bytecode.Word) error {
	n, err := e.pop(op)
	if err != nil {
		return err
	}
	return dupe(e, op, n)
}

func execDupe1(e *Engine, op bytecode.Word) error {
	return dupe(e, op, 1)
}

func execDupeC(e *Engine, op bytecode.Word) error {
	c, err := e.ctx.ConstU16()
	if err != nil {
		return err
	}
	return dupe(e, op, uint64(c))
}

// swap reverses the top n values.
func swap(e *Engine, op bytecode.Word, n uint64) error {
	if err := e.need(op, n); err != nil {
		return err
	}
	top := len(e.stack)
	for i, j := top-int(n), top-1; i < j; i, j = i+1, j-1 {
		e.stack[i], e.stack[j] = e.stack[j], e.stack[i]
	}
	return nil
}

func execSwap(e *Engine, op bytecode.Word) error {
	n, err := e.pop(op)
	if err != nil {
		return err
	}
	return swap(e, op, n)
}

func execSwap1(e *Engine, op bytecode.Word) error {
	return swap(e, op, 2)
}

func execSwapC(e *Engine, op bytecode.Word) error {
	c, err := e.ctx.ConstU16()
	if err != nil {
		return err
	}
	return swap(e, op, uint64(c))
}

// rotate moves the top `places` values of the top `count` window to the
// bottom of that window, preserving order within both parts.
func rotate(e *Engine, op bytecode.Word, count, places uint64) error {
	if err := e.need(op, count); err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	places %= count
	if places == 0 {
		return nil
	}
	window := e.stack[len(e.stack)-int(count):]
	rotated := make([]uint64, 0, count)
	rotated = append(rotated, window[count-places:]...)
	rotated = append(rotated, window[:count-places]...)
	copy(window, rotated)
	return nil
}

func execRotate(e *Engine, op bytecode.Word) error {
	count, places, err := e.pop2(op)
	if err != nil {
		return err
	}
	return rotate(e, op, count, places)
}

func execRotate1(e *Engine, op bytecode.Word) error {
	count, err := e.pop(op)
	if err != nil {
		return err
	}
	return rotate(e, op, count, 1)
}

func execRotateC(e *Engine, op bytecode.Word) error {
	places, err := e.ctx.ConstU16()
	if err != nil {
		return err
	}
	count, err := e.pop(op)
	if err != nil {
		return err
	}
	return rotate(e, op, count, uint64(places))
}

func execRotate1C(e *Engine, op bytecode.Word) error {
	count, err := e.ctx.ConstU16()
	if err != nil {
		return err
	}
	return rotate(e, op, uint64(count), 1)
}

// drop removes the top n values.
func drop(e *Engine, op bytecode.Word, n uint64) error {
	if err := e.need(op, n); err != nil {
		return err
	}
	e.stack = e.stack[:len(e.stack)-int(n)]
	return nil
}

func execPop(e *Engine, op bytecode.Word) error {
	n, err := e.pop(op)
	if err != nil {
		return err
	}
	return drop(e, op, n)
}

func execPop1(e *Engine, op bytecode.Word) error {
	return drop(e, op, 1)
}

func execPopC(e *Engine, op bytecode.Word) error {
	c, err := e.ctx.ConstU16()
	if err != nil {
		return err
	}
	return drop(e, op, uint64(c))
}

// ---------------------------------------------------------------------------
// Locals
// ---------------------------------------------------------------------------

// getHandler builds a GET_* handler for a width, signedness, and index
// source. The logical index comes from the stack or an immediate word; the
// extracted value is zero- or sign-extended to 64 bits.
func getHandler(width uint, signed, immediate bool) opHandler {
	return func(e *Engine, op bytecode.Word) error {
		index, err := localIndex(e, op, immediate)
		if err != nil {
			return err
		}
		v, ok := e.locals.get(index, width)
		if !ok {
			slot, _, _ := slotShift(index, width)
			return &InvalidLocalError{Opcode: op, Slot: int(slot)}
		}
		if signed {
			v = signExtend(v, width)
		}
		return e.push(op, v)
	}
}

// setHandler builds a SET_* handler. The value is popped first, then the
// logical index (or an immediate word). The target slot must already be
// reserved.
func setHandler(width uint, immediate bool) opHandler {
	return func(e *Engine, op bytecode.Word) error {
		value, err := e.pop(op)
		if err != nil {
			return err
		}
		index, err := localIndex(e, op, immediate)
		if err != nil {
			return err
		}
		if !e.locals.set(index, value, width) {
			slot, _, _ := slotShift(index, width)
			return &InvalidLocalError{Opcode: op, Slot: int(slot)}
		}
		return nil
	}
}

func localIndex(e *Engine, op bytecode.Word, immediate bool) (uint64, error) {
	if immediate {
		c, err := e.ctx.ConstU16()
		return uint64(c), err
	}
	return e.pop(op)
}

// ---------------------------------------------------------------------------
// Stack base markers and frame control
// ---------------------------------------------------------------------------

func execStackSize(e *Engine, op bytecode.Word) error {
	return e.push(op, uint64(e.size()))
}

// execPushStack records the current stack height as a marker and starts a
// fresh logical region above it. The marker is how POP_STACK later finds
// the caller's region.
func execPushStack(e *Engine, op bytecode.Word) error {
	n := uint64(e.size())
	if err := e.push(op, n); err != nil {
		return err
	}
	e.base = len(e.stack)
	return nil
}

// execPopStack restores the region below the most recent marker and splices
// everything above the marker down over it, delivering the callee's results
// to the caller without a separate return-value channel.
func execPopStack(e *Engine, op bytecode.Word) error {
	if e.base == 0 {
		return &StackUnderflowError{Opcode: op, Required: 1}
	}
	marker := e.stack[e.base-1]
	if marker > uint64(e.base-1) {
		return &StackUnderflowError{Opcode: op, Required: marker}
	}
	results := e.stack[e.base:]
	e.stack = append(e.stack[:e.base-1], results...)
	e.base = e.base - 1 - int(marker)
	return nil
}

func execReserve(e *Engine, op bytecode.Word) error {
	v, err := e.pop(op)
	if err != nil {
		return err
	}
	return applyReserve(e, op, int64(v))
}

func execReserveC(e *Engine, op bytecode.Word) error {
	c, err := e.ctx.ConstU16()
	if err != nil {
		return err
	}
	return applyReserve(e, op, int64(int16(c)))
}

func applyReserve(e *Engine, op bytecode.Word, delta int64) error {
	// Bound the delta before int conversion; the frame can never exceed
	// maxFrameSize slots, so anything larger is out of range regardless of
	// the current size.
	if delta > maxFrameSize || delta < -maxFrameSize {
		return &ReserveRangeError{Opcode: op, Size: len(e.locals.slots) + int(clampDelta(delta))}
	}
	if !e.locals.reserve(int(delta)) {
		return &ReserveRangeError{Opcode: op, Size: len(e.locals.slots) + int(delta)}
	}
	return nil
}

func clampDelta(delta int64) int64 {
	if delta > maxFrameSize {
		return maxFrameSize + 1
	}
	if delta < -maxFrameSize {
		return -maxFrameSize - 1
	}
	return delta
}
