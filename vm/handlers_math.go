package vm

import "github.com/chazu/tanuki/pkg/bytecode"

func init() {
	for data, h := range map[byte]opHandler{
		bytecode.MathAdd:  binHandler(func(first, second uint64) uint64 { return second + first }),
		bytecode.MathAddC: binConstU(func(v, c uint64) uint64 { return v + c }),
		bytecode.MathSub:  binHandler(func(first, second uint64) uint64 { return second - first }),
		bytecode.MathSubC: binConstU(func(v, c uint64) uint64 { return v - c }),
		bytecode.MathMul:  binHandler(func(first, second uint64) uint64 { return second * first }),
		bytecode.MathMulC: binConstU(func(v, c uint64) uint64 { return v * c }),

		bytecode.MathDiv:      execDiv,
		bytecode.MathDivC:     execDivC,
		bytecode.MathIDiv:     execIDiv,
		bytecode.MathIDivC:    execIDivC,
		bytecode.MathMod:      execMod,
		bytecode.MathModC:     execModC,
		bytecode.MathIMod:     execIMod,
		bytecode.MathIModC:    execIModC,
		bytecode.MathDivMod:   execDivMod,
		bytecode.MathDivModC:  execDivModC,
		bytecode.MathIDivMod:  execIDivMod,
		bytecode.MathIDivModC: execIDivModC,

		bytecode.MathFma:  execFma,
		bytecode.MathFmaC: execFmaC,

		bytecode.MathPow:    binHandler(func(first, second uint64) uint64 { return powU64(second, first) }),
		bytecode.MathPowC:   binConstU(func(v, c uint64) uint64 { return powU64(v, c) }),
		bytecode.MathPowCR:  binConstU(func(v, c uint64) uint64 { return powU64(c, v) }),
		bytecode.MathIPow:   binHandler(func(first, second uint64) uint64 { return uint64(powI64(int64(second), int64(first))) }),
		bytecode.MathIPowC:  binConstI(func(v, c int64) int64 { return powI64(v, c) }),
		bytecode.MathIPowCR: binConstI(func(v, c int64) int64 { return powI64(c, v) }),

		bytecode.MathMax:   binHandler(maxU64),
		bytecode.MathMaxC:  binConstU(maxU64),
		bytecode.MathIMax:  binHandler(func(first, second uint64) uint64 { return uint64(maxI64(int64(first), int64(second))) }),
		bytecode.MathIMaxC: binConstI(maxI64),
		bytecode.MathMin:   binHandler(minU64),
		bytecode.MathMinC:  binConstU(minU64),
		bytecode.MathIMin:  binHandler(func(first, second uint64) uint64 { return uint64(minI64(int64(first), int64(second))) }),
		bytecode.MathIMinC: binConstI(minI64),

		bytecode.MathClamp:   execClamp,
		bytecode.MathClampC:  execClampC,
		bytecode.MathIClamp:  execIClamp,
		bytecode.MathIClampC: execIClampC,

		bytecode.MathNMin:   reduceHandler(minU64, false),
		bytecode.MathNMinC:  reduceHandler(minU64, true),
		bytecode.MathNIMin:  reduceHandler(signedReduce(minI64), false),
		bytecode.MathNIMinC: reduceHandler(signedReduce(minI64), true),
		bytecode.MathNMax:   reduceHandler(maxU64, false),
		bytecode.MathNMaxC:  reduceHandler(maxU64, true),
		bytecode.MathNIMax:  reduceHandler(signedReduce(maxI64), false),
		bytecode.MathNIMaxC: reduceHandler(signedReduce(maxI64), true),
		bytecode.MathDiff:   reduceHandler(func(acc, v uint64) uint64 { return acc - v }, false),
		bytecode.MathDiffC:  reduceHandler(func(acc, v uint64) uint64 { return acc - v }, true),
		bytecode.MathSum:    reduceHandler(func(acc, v uint64) uint64 { return acc + v }, false),
		bytecode.MathSumC:   reduceHandler(func(acc, v uint64) uint64 { return acc + v }, true),
	} {
		mathOps[data] = h
	}
}

// ---------------------------------------------------------------------------
// Handler builders
// ---------------------------------------------------------------------------
//
// All integer arithmetic wraps modulo 2^64; overflow is defined, never a
// fault. Two-operand handlers receive operands in pop order, so for the
// non-commutative operations the conventional right-hand side is the first
// pop.

func binHandler(f func(first, second uint64) uint64) opHandler {
	return func(e *Engine, op bytecode.Word) error {
		first, second, err := e.pop2(op)
		if err != nil {
			return err
		}
		return e.push(op, f(first, second))
	}
}

// binConstU builds a handler for a _C opcode with a zero-extended u16
// immediate.
func binConstU(f func(v, c uint64) uint64) opHandler {
	return func(e *Engine, op bytecode.Word) error {
		c, err := e.ctx.ConstU16()
		if err != nil {
			return err
		}
		v, err := e.pop(op)
		if err != nil {
			return err
		}
		return e.push(op, f(v, uint64(c)))
	}
}

// binConstI builds a handler for a signed _C opcode with a sign-extended
// i16 immediate.
func binConstI(f func(v, c int64) int64) opHandler {
	return func(e *Engine, op bytecode.Word) error {
		c, err := e.ctx.ConstU16()
		if err != nil {
			return err
		}
		v, err := e.pop(op)
		if err != nil {
			return err
		}
		return e.push(op, uint64(f(int64(v), int64(int16(c)))))
	}
}

// ---------------------------------------------------------------------------
// Division
// ---------------------------------------------------------------------------
//
// A zero divisor faults; there is no defined wrapped result for it.

func execDiv(e *Engine, op bytecode.Word) error {
	first, second, err := e.pop2(op)
	if err != nil {
		return err
	}
	if first == 0 {
		return &DivideByZeroError{Opcode: op}
	}
	return e.push(op, second/first)
}

func execDivC(e *Engine, op bytecode.Word) error {
	c, v, err := popWithConstU(e, op)
	if err != nil {
		return err
	}
	if c == 0 {
		return &DivideByZeroError{Opcode: op}
	}
	return e.push(op, v/c)
}

func execIDiv(e *Engine, op bytecode.Word) error {
	first, second, err := e.pop2(op)
	if err != nil {
		return err
	}
	if first == 0 {
		return &DivideByZeroError{Opcode: op}
	}
	return e.push(op, uint64(divI64(int64(second), int64(first))))
}

func execIDivC(e *Engine, op bytecode.Word) error {
	c, v, err := popWithConstI(e, op)
	if err != nil {
		return err
	}
	if c == 0 {
		return &DivideByZeroError{Opcode: op}
	}
	return e.push(op, uint64(divI64(v, c)))
}

func execMod(e *Engine, op bytecode.Word) error {
	first, second, err := e.pop2(op)
	if err != nil {
		return err
	}
	if first == 0 {
		return &DivideByZeroError{Opcode: op}
	}
	return e.push(op, second%first)
}

func execModC(e *Engine, op bytecode.Word) error {
	c, v, err := popWithConstU(e, op)
	if err != nil {
		return err
	}
	if c == 0 {
		return &DivideByZeroError{Opcode: op}
	}
	return e.push(op, v%c)
}

func execIMod(e *Engine, op bytecode.Word) error {
	first, second, err := e.pop2(op)
	if err != nil {
		return err
	}
	if first == 0 {
		return &DivideByZeroError{Opcode: op}
	}
	return e.push(op, uint64(modI64(int64(second), int64(first))))
}

func execIModC(e *Engine, op bytecode.Word) error {
	c, v, err := popWithConstI(e, op)
	if err != nil {
		return err
	}
	if c == 0 {
		return &DivideByZeroError{Opcode: op}
	}
	return e.push(op, uint64(modI64(v, c)))
}

func execDivMod(e *Engine, op bytecode.Word) error {
	first, second, err := e.pop2(op)
	if err != nil {
		return err
	}
	if first == 0 {
		return &DivideByZeroError{Opcode: op}
	}
	return e.push2(op, second/first, second%first)
}

func execDivModC(e *Engine, op bytecode.Word) error {
	c, v, err := popWithConstU(e, op)
	if err != nil {
		return err
	}
	if c == 0 {
		return &DivideByZeroError{Opcode: op}
	}
	return e.push2(op, v/c, v%c)
}

func execIDivMod(e *Engine, op bytecode.Word) error {
	first, second, err := e.pop2(op)
	if err != nil {
		return err
	}
	if first == 0 {
		return &DivideByZeroError{Opcode: op}
	}
	return e.push2(op, uint64(divI64(int64(second), int64(first))), uint64(modI64(int64(second), int64(first))))
}

func execIDivModC(e *Engine, op bytecode.Word) error {
	c, v, err := popWithConstI(e, op)
	if err != nil {
		return err
	}
	if c == 0 {
		return &DivideByZeroError{Opcode: op}
	}
	return e.push2(op, uint64(divI64(v, c)), uint64(modI64(v, c)))
}

func popWithConstU(e *Engine, op bytecode.Word) (c, v uint64, err error) {
	c16, err := e.ctx.ConstU16()
	if err != nil {
		return 0, 0, err
	}
	v, err = e.pop(op)
	return uint64(c16), v, err
}

func popWithConstI(e *Engine, op bytecode.Word) (c, v int64, err error) {
	c16, err := e.ctx.ConstU16()
	if err != nil {
		return 0, 0, err
	}
	u, err := e.pop(op)
	return int64(int16(c16)), int64(u), err
}

// ---------------------------------------------------------------------------
// Fused multiply-add, clamp
// ---------------------------------------------------------------------------

func execFma(e *Engine, op bytecode.Word) error {
	a, b, c, err := e.pop3(op)
	if err != nil {
		return err
	}
	return e.push(op, c*b+a)
}

func execFmaC(e *Engine, op bytecode.Word) error {
	c16, err := e.ctx.ConstU16()
	if err != nil {
		return err
	}
	a, b, err := e.pop2(op)
	if err != nil {
		return err
	}
	return e.push(op, a*b+uint64(c16))
}

func execClamp(e *Engine, op bytecode.Word) error {
	v, upper, lower, err := e.pop3(op)
	if err != nil {
		return err
	}
	return e.push(op, clampU64(v, lower, upper))
}

func execClampC(e *Engine, op bytecode.Word) error {
	upper16, lower16, err := e.ctx.ConstU16x2()
	if err != nil {
		return err
	}
	v, err := e.pop(op)
	if err != nil {
		return err
	}
	return e.push(op, clampU64(v, uint64(lower16), uint64(upper16)))
}

func execIClamp(e *Engine, op bytecode.Word) error {
	v, upper, lower, err := e.pop3(op)
	if err != nil {
		return err
	}
	return e.push(op, uint64(clampI64(int64(v), int64(lower), int64(upper))))
}

func execIClampC(e *Engine, op bytecode.Word) error {
	upper16, lower16, err := e.ctx.ConstU16x2()
	if err != nil {
		return err
	}
	v, err := e.pop(op)
	if err != nil {
		return err
	}
	return e.push(op, uint64(clampI64(int64(v), int64(int16(lower16)), int64(int16(upper16)))))
}

// ---------------------------------------------------------------------------
// N-ary reductions
// ---------------------------------------------------------------------------

// reduceHandler builds a fold over n popped operands, left to right in pop
// order. The count comes from the stack or an immediate word; a zero count
// faults, since a fold needs at least one operand.
func reduceHandler(f func(acc, v uint64) uint64, immediate bool) opHandler {
	return func(e *Engine, op bytecode.Word) error {
		var n uint64
		if immediate {
			c, err := e.ctx.ConstU16()
			if err != nil {
				return err
			}
			n = uint64(c)
		} else {
			v, err := e.pop(op)
			if err != nil {
				return err
			}
			n = v
		}
		if n == 0 {
			return &StackUnderflowError{Opcode: op, Required: 1}
		}
		if err := e.need(op, n); err != nil {
			return err
		}
		acc, _ := e.pop(op)
		for i := uint64(1); i < n; i++ {
			v, _ := e.pop(op)
			acc = f(acc, v)
		}
		return e.push(op, acc)
	}
}

// signedReduce adapts a signed fold to the unsigned fold signature.
func signedReduce(f func(a, b int64) int64) func(acc, v uint64) uint64 {
	return func(acc, v uint64) uint64 {
		return uint64(f(int64(acc), int64(v)))
	}
}

// ---------------------------------------------------------------------------
// Arithmetic helpers
// ---------------------------------------------------------------------------

// powU64 is wrapping exponentiation by squaring.
func powU64(base, exp uint64) uint64 {
	result := uint64(1)
	for exp > 0 {
		if exp&1 != 0 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

// powI64 is truncated signed exponentiation: negative exponents yield 0,
// except for bases 1 and -1 where the result stays exact.
func powI64(base, exp int64) int64 {
	if exp < 0 {
		switch base {
		case 1:
			return 1
		case -1:
			if exp&1 == 0 {
				return 1
			}
			return -1
		default:
			return 0
		}
	}
	return int64(powU64(uint64(base), uint64(exp)))
}

// divI64 is wrapping signed division: MinInt64 / -1 wraps to MinInt64
// instead of trapping.
func divI64(a, b int64) int64 {
	if a == -a && b == -1 { // MinInt64
		return a
	}
	return a / b
}

func modI64(a, b int64) int64 {
	if a == -a && b == -1 { // MinInt64
		return 0
	}
	return a % b
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func maxI64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func minI64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// clampU64 bounds v to [lower, upper]; when upper < lower the upper bound
// wins.
func clampU64(v, lower, upper uint64) uint64 {
	if v > upper {
		return upper
	}
	if v < lower {
		return lower
	}
	return v
}

func clampI64(v, lower, upper int64) int64 {
	if v > upper {
		return upper
	}
	if v < lower {
		return lower
	}
	return v
}
