package vm

import (
	"testing"

	"github.com/chazu/tanuki/pkg/bytecode"
)

// Fault messages embed the offending word as a four-digit hex code; a wider
// rendering would misreport the 16-bit encoding.
func TestFaultMessageWordWidth(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"bad opcode",
			&BadOpcodeError{Code: bytecode.Word(0x0600)},
			"invalid opcode 0x0600",
		},
		{
			"code data",
			&CodeDataError{Opcode: bytecode.Math(bytecode.MathAddC), Required: 1},
			"insufficient code data for add.c (0x0301); 1 words required",
		},
		{
			"stack underflow",
			&StackUnderflowError{Opcode: bytecode.Math(bytecode.MathDiv), Required: 2},
			"too few operands for div (0x0306); 2 values required",
		},
		{
			"divide by zero",
			&DivideByZeroError{Opcode: bytecode.Math(bytecode.MathDiv)},
			"division by zero on opcode div (0x0306)",
		},
		{
			"trap",
			&TrapError{Opcode: bytecode.Sys(bytecode.SysFault)},
			"trap raised by opcode fault (0x00ff)",
		},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("%s: Error() = %q, want %q", tt.name, got, tt.want)
		}
	}
}
