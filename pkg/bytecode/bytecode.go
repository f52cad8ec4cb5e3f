package bytecode

// Word is a single 16-bit unit of the instruction stream: either an opcode
// or part of an immediate operand.
type Word uint16

// Masks and shifts for splitting an opcode word into group and data bytes.
const (
	GroupMask  Word = 0xFF00
	GroupShift      = 8
	DataMask   Word = 0x00FF
)

// Instruction groups. The group is the high byte of an opcode word.
const (
	GroupSystem   byte = 0x00 // misc system and debug operations
	GroupStack    byte = 0x01 // stack, constant, and local manipulation
	GroupJump     byte = 0x02 // jumps within the current context
	GroupMath     byte = 0x03 // integer arithmetic
	GroupFPMath   byte = 0x04 // floating point arithmetic
	GroupFunction byte = 0x05 // calls and returns, possibly between modules
)

// Group returns the group byte of an opcode word.
func (w Word) Group() byte {
	return byte((w & GroupMask) >> GroupShift)
}

// Data returns the data byte of an opcode word.
func (w Word) Data() byte {
	return byte(w & DataMask)
}

// Sys builds a SYSTEM group instruction word.
func Sys(data byte) Word {
	return Word(GroupSystem)<<GroupShift | Word(data)
}

// Stack builds a STACK group instruction word.
func Stack(data byte) Word {
	return Word(GroupStack)<<GroupShift | Word(data)
}

// Math builds a MATH group instruction word.
func Math(data byte) Word {
	return Word(GroupMath)<<GroupShift | Word(data)
}

// FPMath builds an FPMATH group instruction word.
func FPMath(data byte) Word {
	return Word(GroupFPMath)<<GroupShift | Word(data)
}

// Function builds a FUNCTION group instruction word.
func Function(data byte) Word {
	return Word(GroupFunction)<<GroupShift | Word(data)
}

// Jump builds an unconditional jump word from a source and mode.
func Jump(src, mode byte) Word {
	return Word(GroupJump)<<GroupShift | Word(src) | Word(mode)
}

// JumpIf builds a conditional jump word from a source, mode, and predicate.
func JumpIf(src, mode, cond byte) Word {
	return Word(GroupJump)<<GroupShift | Word(src) | Word(mode) | Word(JumpConditional) | Word(cond)
}

// Words32 splits a 32-bit immediate into its two stream words, high first.
func Words32(v uint32) (hi, lo Word) {
	return Word(v >> 16), Word(v)
}

// Words64 splits a 64-bit immediate into its four stream words, high first.
func Words64(v uint64) (w1, w2, w3, w4 Word) {
	return Word(v >> 48), Word(v >> 32), Word(v >> 16), Word(v)
}
