package vm

import (
	"fmt"

	"github.com/chazu/tanuki/pkg/bytecode"
)

// ---------------------------------------------------------------------------
// Fault taxonomy
// ---------------------------------------------------------------------------
//
// A fault indicates that the bytecode is malformed or made an illegal
// request; it is evidence of a broken program, not a transient condition.
// Faults are ordinary error values: the dispatch loop returns the first one
// encountered and the whole run aborts. Module registration faults leave the
// engine unchanged.

// BadOpcodeError reports a group or data byte with no defined handler.
type BadOpcodeError struct {
	Code bytecode.Word
}

func (e *BadOpcodeError) Error() string {
	return fmt.Sprintf("invalid opcode %#04x", uint16(e.Code))
}

// CodeDataError reports an opcode whose trailing immediate runs past the end
// of the instruction stream.
type CodeDataError struct {
	Opcode   bytecode.Word
	Required int // immediate words the opcode needs
}

func (e *CodeDataError) Error() string {
	return fmt.Sprintf("insufficient code data for %s (%#04x); %d words required",
		e.Opcode, uint16(e.Opcode), e.Required)
}

// InvalidAddressError reports a context constructed or jumped outside its
// module's instruction stream.
type InvalidAddressError struct {
	Offset int
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address %d", e.Offset)
}

// InvalidModuleError reports an out-of-range or unresolved module id.
type InvalidModuleError struct {
	ID uint32
}

func (e *InvalidModuleError) Error() string {
	return fmt.Sprintf("invalid module id %d", e.ID)
}

// InvalidSymbolError reports an out-of-range or unresolved symbol id.
type InvalidSymbolError struct {
	ID uint32
}

func (e *InvalidSymbolError) Error() string {
	return fmt.Sprintf("invalid symbol id %d", e.ID)
}

// StackOverflowError reports a push that would exceed the configured
// maximum stack depth.
type StackOverflowError struct {
	Opcode bytecode.Word
}

func (e *StackOverflowError) Error() string {
	return fmt.Sprintf("stack size exceeded maximum on opcode %s (%#04x)",
		e.Opcode, uint16(e.Opcode))
}

// StackUnderflowError reports an operation that needs more operands than the
// stack currently holds.
type StackUnderflowError struct {
	Opcode   bytecode.Word
	Required uint64
}

func (e *StackUnderflowError) Error() string {
	return fmt.Sprintf("too few operands for %s (%#04x); %d values required",
		e.Opcode, uint16(e.Opcode), e.Required)
}

// DivideByZeroError reports an integer division or remainder with a zero
// divisor.
type DivideByZeroError struct {
	Opcode bytecode.Word
}

func (e *DivideByZeroError) Error() string {
	return fmt.Sprintf("division by zero on opcode %s (%#04x)", e.Opcode, uint16(e.Opcode))
}

// TrapError reports a deliberate fault raised by the FAULT or BREAKPOINT
// instruction.
type TrapError struct {
	Opcode bytecode.Word
}

func (e *TrapError) Error() string {
	return fmt.Sprintf("trap raised by opcode %s (%#04x)", e.Opcode, uint16(e.Opcode))
}

// InvalidLocalError reports a local access outside the frame's reserved
// slots.
type InvalidLocalError struct {
	Opcode bytecode.Word
	Slot   int
}

func (e *InvalidLocalError) Error() string {
	return fmt.Sprintf("local slot %d not reserved on opcode %s (%#04x)",
		e.Slot, e.Opcode, uint16(e.Opcode))
}

// ReserveRangeError reports a RESERVE that would leave the frame size
// outside [0,255].
type ReserveRangeError struct {
	Opcode bytecode.Word
	Size   int // size the reserve would have produced
}

func (e *ReserveRangeError) Error() string {
	return fmt.Sprintf("reserve would make frame size %d on opcode %s (%#04x); must stay within [0,255]",
		e.Size, e.Opcode, uint16(e.Opcode))
}

// CallDepthError reports a call that would exceed the configured maximum
// call depth.
type CallDepthError struct {
	Depth int
}

func (e *CallDepthError) Error() string {
	return fmt.Sprintf("call depth %d exceeds maximum", e.Depth)
}

// NameCollisionError reports a module registration with an already-taken
// name.
type NameCollisionError struct {
	Name string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("module %q already defined", e.Name)
}

// InvalidNameError reports a module registration with an unusable name.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid module name %q", e.Name)
}
