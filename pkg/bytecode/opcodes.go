package bytecode

import "fmt"

// ========================================================================
// SYSTEM group data values (0x00)
// ========================================================================

const (
	SysNop        byte = 0x00 // Do nothing
	SysHalt       byte = 0x01 // Stop execution normally
	SysPrintStack byte = 0x02 // Debug print the contents of the stack as u64 values
	SysPrintU64   byte = 0x03 // Pop and print the top value as u64
	SysPrintI64   byte = 0x04 // Pop and print the top value as i64
	SysPrintF32   byte = 0x05 // Pop and print the top value as f32 (truncating)
	SysPrintF64   byte = 0x06 // Pop and print the top value as f64
	SysBreakpoint byte = 0x07 // Force a fault (debugger trap)
	SysFault      byte = 0xFF // Force a fault
)

// ========================================================================
// STACK group data values (0x01)
// ========================================================================
//
// Stack-effect notation lists pop order left to right: in [a,b] the first
// pop is a, the second is b. A _C suffix means the count or constant is an
// immediate trailing word instead of a stack operand.

const (
	StackConst0   byte = 0x00 // [] -> [0]
	StackConst1   byte = 0x01 // [] -> [1]
	StackConst2   byte = 0x02 // [] -> [2]
	StackConst3   byte = 0x03 // [] -> [3]
	StackConst4   byte = 0x04 // [] -> [4]
	StackConst8   byte = 0x05 // [] -> [8]
	StackConst16  byte = 0x06 // [] -> [16]
	StackConst32  byte = 0x07 // [] -> [32]
	StackConst64  byte = 0x08 // [] -> [64]
	StackConst128 byte = 0x09 // [] -> [128]
	StackConstN1  byte = 0x0A // [] -> [-1]
	StackConstU16 byte = 0x0B // c:u16, zero-extended
	StackConstU32 byte = 0x0C // c:u32, zero-extended; also raw f32 bits
	StackConstU64 byte = 0x0D // c:u64; also f64 and i64 bit patterns
	StackConstI16 byte = 0x0E // c:i16, sign-extended
	StackConstI32 byte = 0x0F // c:i32, sign-extended

	StackDupe     byte = 0x10 // count popped
	StackDupe1    byte = 0x11 // duplicate top element
	StackDupeC    byte = 0x12 // c:u16 count
	StackSwap     byte = 0x13 // reverse top n, count popped
	StackSwap1    byte = 0x14 // swap top two
	StackSwapC    byte = 0x15 // c:u16 count
	StackRotate   byte = 0x16 // rotate top p back n places, both popped
	StackRotate1  byte = 0x17 // rotate top element back n places
	StackRotateC  byte = 0x18 // c:u16 places, p popped
	StackRotate1C byte = 0x19 // c:u16 count, rotate top element back
	StackPop      byte = 0x1A // count popped
	StackPop1     byte = 0x1B // remove top element
	StackPopC     byte = 0x1C // c:u16 count

	StackGetU8   byte = 0x1D
	StackGetU8C  byte = 0x1E
	StackGetU16  byte = 0x1F
	StackGetU16C byte = 0x20
	StackGetU32  byte = 0x21
	StackGetU32C byte = 0x22
	StackGetU64  byte = 0x23
	StackGetU64C byte = 0x24
	StackGetI8   byte = 0x25
	StackGetI8C  byte = 0x26
	StackGetI16  byte = 0x27
	StackGetI16C byte = 0x28
	StackGetI32  byte = 0x29
	StackGetI32C byte = 0x2A
	StackGetF32  byte = 0x2B
	StackGetF32C byte = 0x2C

	StackSet8    byte = 0x2D
	StackSet8C   byte = 0x2E
	StackSet16   byte = 0x2F
	StackSet16C  byte = 0x30
	StackSet32   byte = 0x31
	StackSet32C  byte = 0x32
	StackSet64   byte = 0x33
	StackSet64C  byte = 0x34
	StackSetF32  byte = 0x35
	StackSetF32C byte = 0x36

	StackSize      byte = 0x37 // push logical stack height
	StackPushStack byte = 0x38 // push height marker, move base above it
	StackPopStack  byte = 0x39 // restore prior base, splice results down
	StackReserve   byte = 0x3A // adjust frame size by popped signed count
	StackReserveC  byte = 0x3B // c:i16 adjust frame size
)

// ========================================================================
// MATH group data values (0x03)
// ========================================================================
//
// All integer arithmetic wraps modulo 2^64. I-prefixed opcodes reinterpret
// operands as signed two's-complement; _C immediates on signed opcodes are
// sign-extended i16, otherwise zero-extended u16.

const (
	MathAdd      byte = 0x00 // [a,b] -> [b+a]
	MathAddC     byte = 0x01 // c:u16; [a] -> [a+c]
	MathSub      byte = 0x02 // [a,b] -> [b-a]
	MathSubC     byte = 0x03 // c:u16; [a] -> [a-c]
	MathMul      byte = 0x04 // [a,b] -> [b*a]
	MathMulC     byte = 0x05 // c:u16; [a] -> [a*c]
	MathDiv      byte = 0x06 // [a,b] -> [b/a]
	MathDivC     byte = 0x07 // c:u16; [a] -> [a/c]
	MathIDiv     byte = 0x08 // signed [a,b] -> [b/a]
	MathIDivC    byte = 0x09 // c:i16; [a] -> [a/c]
	MathMod      byte = 0x0A // [a,b] -> [b%a]
	MathModC     byte = 0x0B // c:u16; [a] -> [a%c]
	MathIMod     byte = 0x0C // signed [a,b] -> [b%a]
	MathIModC    byte = 0x0D // c:i16; [a] -> [a%c]
	MathDivMod   byte = 0x0E // [a,b] -> [b/a,b%a]
	MathDivModC  byte = 0x0F // c:u16; [a] -> [a/c,a%c]
	MathIDivMod  byte = 0x10 // signed [a,b] -> [b/a,b%a]
	MathIDivModC byte = 0x11 // c:i16; [a] -> [a/c,a%c]
	MathFma      byte = 0x12 // [a,b,c] -> [(c*b)+a]
	MathFmaC     byte = 0x13 // c:u16; [a,b] -> [(a*b)+c]
	MathPow      byte = 0x14 // [a,b] -> [b**a]
	MathPowC     byte = 0x15 // c:u16; [a] -> [a**c]
	MathPowCR    byte = 0x16 // c:u16; [a] -> [c**a]
	MathIPow     byte = 0x17 // signed [a,b] -> [b**a]
	MathIPowC    byte = 0x18 // c:i16; [a] -> [a**c]
	MathIPowCR   byte = 0x19 // c:i16; [a] -> [c**a]
	MathMax      byte = 0x1A // [a,b] -> [max(a,b)]
	MathMaxC     byte = 0x1B // c:u16; [a] -> [max(a,c)]
	MathIMax     byte = 0x1C
	MathIMaxC    byte = 0x1D
	MathMin      byte = 0x1E // [a,b] -> [min(a,b)]
	MathMinC     byte = 0x1F
	MathIMin     byte = 0x20
	MathIMinC    byte = 0x21
	MathClamp    byte = 0x22 // [v,u,l] -> [clamp of v into [l,u]]
	MathClampC   byte = 0x23 // u,l:u16; [v] -> [clamp of v into [l,u]]
	MathIClamp   byte = 0x24
	MathIClampC  byte = 0x25

	// N-ary reductions fold left-to-right over popped operands.
	MathNMinC  byte = 0xF4
	MathNMin   byte = 0xF5
	MathNIMinC byte = 0xF6
	MathNIMin  byte = 0xF7
	MathNMaxC  byte = 0xF8
	MathNMax   byte = 0xF9
	MathNIMaxC byte = 0xFA
	MathNIMax  byte = 0xFB
	MathDiffC  byte = 0xFC
	MathDiff   byte = 0xFD
	MathSumC   byte = 0xFE
	MathSum    byte = 0xFF
)

// ========================================================================
// FPMATH group data values (0x04)
// ========================================================================
//
// Operands are f64 bit patterns held in 64-bit stack words. The F32TO64 and
// F64TO32 conversions move between a zero-extended f32 bit pattern and a
// full f64 pattern. Comparisons push 1 or 0.

const (
	FPAdd   byte = 0x00 // [a,b] -> [b+a]
	FPSub   byte = 0x01 // [a,b] -> [b-a]
	FPMul   byte = 0x02 // [a,b] -> [b*a]
	FPDiv   byte = 0x03 // [a,b] -> [b/a]
	FPMod   byte = 0x04 // [a,b] -> [fmod(b,a)]
	FPFma   byte = 0x05 // [a,b,c] -> [(c*b)+a]
	FPPow   byte = 0x06 // [a,b] -> [b**a]
	FPNeg   byte = 0x07 // [a] -> [-a]
	FPAbs   byte = 0x08 // [a] -> [|a|]
	FPSqrt  byte = 0x09 // [a] -> [sqrt(a)]
	FPMin   byte = 0x0A // [a,b] -> [min(a,b)]
	FPMax   byte = 0x0B // [a,b] -> [max(a,b)]
	FPClamp byte = 0x0C // [v,u,l] -> [clamp of v into [l,u]]

	FPEq byte = 0x10 // [a,b] -> [b==a]
	FPNe byte = 0x11 // [a,b] -> [b!=a]
	FPLt byte = 0x12 // [a,b] -> [b<a]
	FPLe byte = 0x13 // [a,b] -> [b<=a]
	FPGt byte = 0x14 // [a,b] -> [b>a]
	FPGe byte = 0x15 // [a,b] -> [b>=a]

	FPFromI64 byte = 0x20 // [a] -> [f64(i64(a))]
	FPFromU64 byte = 0x21 // [a] -> [f64(a)]
	FPToI64   byte = 0x22 // [a] -> [i64(f64(a))], saturating
	FPToU64   byte = 0x23 // [a] -> [u64(f64(a))], saturating
	FP32To64  byte = 0x24 // [a] -> [f64 bits of f32(a)]
	FP64To32  byte = 0x25 // [a] -> [zero-extended f32 bits of f64(a)]
)

// ========================================================================
// FUNCTION group data values (0x05)
// ========================================================================

const (
	FnCall     byte = 0x00 // local symbol id popped
	FnCallC    byte = 0x01 // c:u16 local symbol id
	FnCallExt  byte = 0x02 // external symbol index popped
	FnCallExtC byte = 0x03 // c:u16 external symbol index
	FnReturn   byte = 0x04 // resume caller, or end the run at top level
)

// OpInfo describes one opcode for disassembly and validation.
type OpInfo struct {
	Name     string // mnemonic
	Operands int    // trailing immediate words (0, 1, 2, or 4)
}

var sysInfo = map[byte]OpInfo{
	SysNop:        {"nop", 0},
	SysHalt:       {"halt", 0},
	SysPrintStack: {"print.stack", 0},
	SysPrintU64:   {"print.u64", 0},
	SysPrintI64:   {"print.i64", 0},
	SysPrintF32:   {"print.f32", 0},
	SysPrintF64:   {"print.f64", 0},
	SysBreakpoint: {"breakpoint", 0},
	SysFault:      {"fault", 0},
}

var stackInfo = map[byte]OpInfo{
	StackConst0:   {"const.0", 0},
	StackConst1:   {"const.1", 0},
	StackConst2:   {"const.2", 0},
	StackConst3:   {"const.3", 0},
	StackConst4:   {"const.4", 0},
	StackConst8:   {"const.8", 0},
	StackConst16:  {"const.16", 0},
	StackConst32:  {"const.32", 0},
	StackConst64:  {"const.64", 0},
	StackConst128: {"const.128", 0},
	StackConstN1:  {"const.n1", 0},
	StackConstU16: {"const.u16", 1},
	StackConstU32: {"const.u32", 2},
	StackConstU64: {"const.u64", 4},
	StackConstI16: {"const.i16", 1},
	StackConstI32: {"const.i32", 2},

	StackDupe:     {"dupe", 0},
	StackDupe1:    {"dupe.1", 0},
	StackDupeC:    {"dupe.c", 1},
	StackSwap:     {"swap", 0},
	StackSwap1:    {"swap.1", 0},
	StackSwapC:    {"swap.c", 1},
	StackRotate:   {"rotate", 0},
	StackRotate1:  {"rotate.1", 0},
	StackRotateC:  {"rotate.c", 1},
	StackRotate1C: {"rotate.1.c", 1},
	StackPop:      {"pop", 0},
	StackPop1:     {"pop.1", 0},
	StackPopC:     {"pop.c", 1},

	StackGetU8:   {"get.u8", 0},
	StackGetU8C:  {"get.u8.c", 1},
	StackGetU16:  {"get.u16", 0},
	StackGetU16C: {"get.u16.c", 1},
	StackGetU32:  {"get.u32", 0},
	StackGetU32C: {"get.u32.c", 1},
	StackGetU64:  {"get.u64", 0},
	StackGetU64C: {"get.u64.c", 1},
	StackGetI8:   {"get.i8", 0},
	StackGetI8C:  {"get.i8.c", 1},
	StackGetI16:  {"get.i16", 0},
	StackGetI16C: {"get.i16.c", 1},
	StackGetI32:  {"get.i32", 0},
	StackGetI32C: {"get.i32.c", 1},
	StackGetF32:  {"get.f32", 0},
	StackGetF32C: {"get.f32.c", 1},

	StackSet8:    {"set.8", 0},
	StackSet8C:   {"set.8.c", 1},
	StackSet16:   {"set.16", 0},
	StackSet16C:  {"set.16.c", 1},
	StackSet32:   {"set.32", 0},
	StackSet32C:  {"set.32.c", 1},
	StackSet64:   {"set.64", 0},
	StackSet64C:  {"set.64.c", 1},
	StackSetF32:  {"set.f32", 0},
	StackSetF32C: {"set.f32.c", 1},

	StackSize:      {"stack.size", 0},
	StackPushStack: {"push.stack", 0},
	StackPopStack:  {"pop.stack", 0},
	StackReserve:   {"reserve", 0},
	StackReserveC:  {"reserve.c", 1},
}

var mathInfo = map[byte]OpInfo{
	MathAdd:      {"add", 0},
	MathAddC:     {"add.c", 1},
	MathSub:      {"sub", 0},
	MathSubC:     {"sub.c", 1},
	MathMul:      {"mul", 0},
	MathMulC:     {"mul.c", 1},
	MathDiv:      {"div", 0},
	MathDivC:     {"div.c", 1},
	MathIDiv:     {"idiv", 0},
	MathIDivC:    {"idiv.c", 1},
	MathMod:      {"mod", 0},
	MathModC:     {"mod.c", 1},
	MathIMod:     {"imod", 0},
	MathIModC:    {"imod.c", 1},
	MathDivMod:   {"divmod", 0},
	MathDivModC:  {"divmod.c", 1},
	MathIDivMod:  {"idivmod", 0},
	MathIDivModC: {"idivmod.c", 1},
	MathFma:      {"fma", 0},
	MathFmaC:     {"fma.c", 1},
	MathPow:      {"pow", 0},
	MathPowC:     {"pow.c", 1},
	MathPowCR:    {"pow.c.r", 1},
	MathIPow:     {"ipow", 0},
	MathIPowC:    {"ipow.c", 1},
	MathIPowCR:   {"ipow.c.r", 1},
	MathMax:      {"max", 0},
	MathMaxC:     {"max.c", 1},
	MathIMax:     {"imax", 0},
	MathIMaxC:    {"imax.c", 1},
	MathMin:      {"min", 0},
	MathMinC:     {"min.c", 1},
	MathIMin:     {"imin", 0},
	MathIMinC:    {"imin.c", 1},
	MathClamp:    {"clamp", 0},
	MathClampC:   {"clamp.c", 2},
	MathIClamp:   {"iclamp", 0},
	MathIClampC:  {"iclamp.c", 2},

	MathNMinC:  {"nmin.c", 1},
	MathNMin:   {"nmin", 0},
	MathNIMinC: {"nimin.c", 1},
	MathNIMin:  {"nimin", 0},
	MathNMaxC:  {"nmax.c", 1},
	MathNMax:   {"nmax", 0},
	MathNIMaxC: {"nimax.c", 1},
	MathNIMax:  {"nimax", 0},
	MathDiffC:  {"diff.c", 1},
	MathDiff:   {"diff", 0},
	MathSumC:   {"sum.c", 1},
	MathSum:    {"sum", 0},
}

var fpMathInfo = map[byte]OpInfo{
	FPAdd:   {"fadd", 0},
	FPSub:   {"fsub", 0},
	FPMul:   {"fmul", 0},
	FPDiv:   {"fdiv", 0},
	FPMod:   {"fmod", 0},
	FPFma:   {"ffma", 0},
	FPPow:   {"fpow", 0},
	FPNeg:   {"fneg", 0},
	FPAbs:   {"fabs", 0},
	FPSqrt:  {"fsqrt", 0},
	FPMin:   {"fmin", 0},
	FPMax:   {"fmax", 0},
	FPClamp: {"fclamp", 0},

	FPEq: {"feq", 0},
	FPNe: {"fne", 0},
	FPLt: {"flt", 0},
	FPLe: {"fle", 0},
	FPGt: {"fgt", 0},
	FPGe: {"fge", 0},

	FPFromI64: {"i2f", 0},
	FPFromU64: {"u2f", 0},
	FPToI64:   {"f2i", 0},
	FPToU64:   {"f2u", 0},
	FP32To64:  {"f32to64", 0},
	FP64To32:  {"f64to32", 0},
}

var fnInfo = map[byte]OpInfo{
	FnCall:     {"call", 0},
	FnCallC:    {"call.c", 1},
	FnCallExt:  {"call.ext", 0},
	FnCallExtC: {"call.ext.c", 1},
	FnReturn:   {"return", 0},
}

// Info returns the metadata for an opcode word. The second return is false
// for words whose group or data byte is not a defined instruction.
func Info(w Word) (OpInfo, bool) {
	var info OpInfo
	var ok bool
	switch w.Group() {
	case GroupSystem:
		info, ok = sysInfo[w.Data()]
	case GroupStack:
		info, ok = stackInfo[w.Data()]
	case GroupJump:
		// Every jump bit pattern decodes; operand width follows the source.
		return OpInfo{Name: jumpName(w.Data()), Operands: jumpOperands(w.Data())}, true
	case GroupMath:
		info, ok = mathInfo[w.Data()]
	case GroupFPMath:
		info, ok = fpMathInfo[w.Data()]
	case GroupFunction:
		info, ok = fnInfo[w.Data()]
	}
	return info, ok
}

// String returns the mnemonic for an opcode word, or a hex marker for
// undefined encodings.
func (w Word) String() string {
	if info, ok := Info(w); ok {
		return info.Name
	}
	return fmt.Sprintf("op(%#04x)", uint16(w))
}
