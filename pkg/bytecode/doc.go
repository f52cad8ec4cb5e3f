// Package bytecode defines the Tanuki instruction encoding: the group and
// opcode constant tables, the jump-instruction bitfield, instruction builders,
// and a disassembler.
//
// Every instruction is a single 16-bit word. The high byte selects the group
// (instruction family) and the low byte is the group data — the opcode within
// that family. The one exception is the jump group, where the data byte is a
// bitfield selecting the operand source, addressing mode, and an optional
// comparison predicate.
//
// An opcode word may be followed in the same stream by 0, 1, 2, or 4 trailing
// 16-bit words holding an immediate operand. There is no padding or length
// prefix; the operand width is determined entirely by the opcode. Multi-word
// immediates are assembled most-significant-word first.
//
// This package is pure data plus a few formatting helpers. No instruction
// semantics live here; the vm package consults these tables from its dispatch
// loop.
package bytecode
