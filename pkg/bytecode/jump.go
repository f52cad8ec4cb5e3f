package bytecode

import "strings"

// The data byte of a jump instruction is a bitfield:
//
//	| Predicate | P | P | P | P | C | M | S | S |
//	| Bit       | 7 | 6 | 5 | 4 | 3 | 2 | 1 | 0 |
//
// S selects the operand source, M the addressing mode, C whether the jump is
// conditional, and P (valid only when C is set) one of sixteen comparison
// predicates evaluated against the top one or two stack values.

// Operand source. For absolute jumps the source value is an unsigned offset;
// for relative jumps it is signed and added to the instruction pointer.
const (
	JumpSrcMask byte = 0x03
	JumpSrcC16  byte = 0x00 // 16-bit inline constant
	JumpSrcC32  byte = 0x01 // 32-bit inline constant
	JumpSrcC64  byte = 0x02 // 64-bit inline constant
	JumpSrcDyn  byte = 0x03 // value popped from the stack
)

// Addressing mode. Absolute sets the instruction pointer to the source
// value; relative adds the source to it.
const (
	JumpModeMask     byte = 0x04
	JumpModeAbsolute byte = 0x00
	JumpModeRelative byte = 0x04
)

// Conditional flag. When set, bits 4-7 select the predicate; when clear the
// jump is always taken and the predicate bits are ignored.
const (
	JumpConditionalMask byte = 0x08
	JumpConditional     byte = 0x08
)

// Comparison predicates. Single-operand predicates pop one value; the
// two-operand equality/ordering predicates pop two and compare the first pop
// against the second. Predicates treat operands as integers; float
// comparisons go through the FPMATH group instead.
const (
	JumpCondMask byte = 0xF0
	JumpCondZ    byte = 0x00 // first pop == 0
	JumpCondNZ   byte = 0x10 // first pop != 0
	JumpCondPos  byte = 0x20 // i64(first pop) > 0
	JumpCondNeg  byte = 0x30 // i64(first pop) < 0
	JumpCondGZ   byte = 0x40 // i64(first pop) >= 0
	JumpCondLZ   byte = 0x50 // i64(first pop) <= 0
	JumpCondEq   byte = 0x60 // first == second
	JumpCondNeq  byte = 0x70 // first != second
	JumpCondGT   byte = 0x80 // first > second, unsigned
	JumpCondGTS  byte = 0x90 // first > second, signed
	JumpCondLT   byte = 0xA0 // first < second, unsigned
	JumpCondLTS  byte = 0xB0 // first < second, signed
	JumpCondGE   byte = 0xC0 // first >= second, unsigned
	JumpCondGES  byte = 0xD0 // first >= second, signed
	JumpCondLE   byte = 0xE0 // first <= second, unsigned
	JumpCondLES  byte = 0xF0 // first <= second, signed
)

var jumpCondNames = [16]string{
	"z", "nz", "pos", "neg", "gz", "lz", "eq", "neq",
	"gt", "gts", "lt", "lts", "ge", "ges", "le", "les",
}

var jumpSrcNames = [4]string{"c16", "c32", "c64", "dyn"}

// jumpOperands returns the trailing immediate word count for a jump data
// byte, determined by its source bits.
func jumpOperands(data byte) int {
	switch data & JumpSrcMask {
	case JumpSrcC16:
		return 1
	case JumpSrcC32:
		return 2
	case JumpSrcC64:
		return 4
	default:
		return 0
	}
}

// jumpName formats a jump data byte as a mnemonic, e.g. "jump.rel.c16" or
// "jump.abs.dyn.nz".
func jumpName(data byte) string {
	var sb strings.Builder
	sb.WriteString("jump.")
	if data&JumpModeMask == JumpModeRelative {
		sb.WriteString("rel.")
	} else {
		sb.WriteString("abs.")
	}
	sb.WriteString(jumpSrcNames[data&JumpSrcMask])
	if data&JumpConditionalMask != 0 {
		sb.WriteByte('.')
		sb.WriteString(jumpCondNames[data>>4])
	}
	return sb.String()
}
