package vm

import (
	"errors"
	"testing"

	"github.com/chazu/tanuki/pkg/bytecode"
)

// pushU64 emits a CONST_U64 and its four immediate words.
func pushU64(v uint64) []bytecode.Word {
	w1, w2, w3, w4 := bytecode.Words64(v)
	return []bytecode.Word{bytecode.Stack(bytecode.StackConstU64), w1, w2, w3, w4}
}

// binOp builds a stream pushing a then b and running one MATH opcode, so b
// is the first pop.
func binOp(a, b uint64, data byte) []bytecode.Word {
	code := pushU64(a)
	code = append(code, pushU64(b)...)
	return append(code, bytecode.Math(data))
}

func TestMathBinary(t *testing.T) {
	for _, tc := range []struct {
		name string
		a, b uint64
		data byte
		want uint64
	}{
		{"add", 2, 3, bytecode.MathAdd, 5},
		{"add wraps", 0xFFFFFFFFFFFFFFFF, 1, bytecode.MathAdd, 0},
		{"sub", 10, 3, bytecode.MathSub, 7},
		{"sub wraps", 0, 1, bytecode.MathSub, 0xFFFFFFFFFFFFFFFF},
		{"mul", 6, 7, bytecode.MathMul, 42},
		{"mul wraps", 1 << 63, 2, bytecode.MathMul, 0},
		{"div", 42, 5, bytecode.MathDiv, 8},
		{"idiv", negU64(42), 5, bytecode.MathIDiv, negU64(8)},
		{"mod", 42, 5, bytecode.MathMod, 2},
		{"imod", negU64(42), 5, bytecode.MathIMod, negU64(2)},
		{"pow", 2, 10, bytecode.MathPow, 1024},
		{"pow wraps", 2, 64, bytecode.MathPow, 0},
		{"ipow negative exponent", 5, negU64(2), bytecode.MathIPow, 0},
		{"ipow base one", 1, negU64(3), bytecode.MathIPow, 1},
		{"ipow base minus one odd", negU64(1), negU64(3), bytecode.MathIPow, negU64(1)},
		{"max", 3, 9, bytecode.MathMax, 9},
		{"imax", negU64(3), 2, bytecode.MathIMax, 2},
		{"min", 3, 9, bytecode.MathMin, 3},
		{"imin", negU64(3), 2, bytecode.MathIMin, negU64(3)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			wantStack(t, runStack(t, binOp(tc.a, tc.b, tc.data)), tc.want)
		})
	}
}

func negU64(v uint64) uint64 {
	return -v
}

func TestMathSubOperandOrder(t *testing.T) {
	// 10 pushed first, 3 on top: result is 10 - 3.
	code := []bytecode.Word{
		bytecode.Stack(bytecode.StackConstU16), 10,
		bytecode.Stack(bytecode.StackConst3),
		bytecode.Math(bytecode.MathSub),
	}
	wantStack(t, runStack(t, code), 7)
}

func TestMathImmediates(t *testing.T) {
	for _, tc := range []struct {
		name string
		v    uint64
		data byte
		c    bytecode.Word
		want uint64
	}{
		{"add.c", 40, bytecode.MathAddC, 2, 42},
		{"sub.c", 50, bytecode.MathSubC, 8, 42},
		{"mul.c", 21, bytecode.MathMulC, 2, 42},
		{"div.c", 85, bytecode.MathDivC, 2, 42},
		{"mod.c", 47, bytecode.MathModC, 5, 2},
		{"idiv.c negative divisor", negU64(84), bytecode.MathIDivC, 0xFFFE, 42},
		{"pow.c", 2, bytecode.MathPowC, 5, 32},
		{"pow.c.r reversed", 5, bytecode.MathPowCR, 2, 32},
		{"max.c", 3, bytecode.MathMaxC, 9, 9},
		{"min.c", 3, bytecode.MathMinC, 9, 3},
		{"imax.c negative immediate", negU64(7), bytecode.MathIMaxC, 0xFFFF, negU64(1)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			code := append(pushU64(tc.v), bytecode.Math(tc.data), tc.c)
			wantStack(t, runStack(t, code), tc.want)
		})
	}
}

func TestMathDivideByZero(t *testing.T) {
	for _, data := range []byte{
		bytecode.MathDiv, bytecode.MathIDiv,
		bytecode.MathMod, bytecode.MathIMod,
		bytecode.MathDivMod, bytecode.MathIDivMod,
	} {
		err := runErr(t, binOp(7, 0, data))
		var dz *DivideByZeroError
		if !errors.As(err, &dz) {
			t.Fatalf("data %#02x: got %T (%v), want *DivideByZeroError", data, err, err)
		}
	}
}

func TestMathDivideByZeroImmediate(t *testing.T) {
	code := append(pushU64(7), bytecode.Math(bytecode.MathDivC), 0)
	err := runErr(t, code)
	var dz *DivideByZeroError
	if !errors.As(err, &dz) {
		t.Fatalf("got %T (%v), want *DivideByZeroError", err, err)
	}
}

func TestMathSignedDivisionWraps(t *testing.T) {
	// MinInt64 / -1 has no positive representation; it wraps instead of
	// trapping.
	code := binOp(1<<63, negU64(1), bytecode.MathIDiv)
	wantStack(t, runStack(t, code), 1<<63)

	code = binOp(1<<63, negU64(1), bytecode.MathIMod)
	wantStack(t, runStack(t, code), 0)
}

func TestMathDivMod(t *testing.T) {
	code := binOp(47, 5, bytecode.MathDivMod)
	wantStack(t, runStack(t, code), 9, 2)
}

func TestMathFma(t *testing.T) {
	// [a,b,c] with a on top: result is c*b + a.
	code := pushU64(100) // c
	code = append(code, pushU64(7)...)
	code = append(code, pushU64(2)...)
	code = append(code, bytecode.Math(bytecode.MathFma))
	wantStack(t, runStack(t, code), 702)
}

func TestMathClamp(t *testing.T) {
	for _, tc := range []struct {
		name            string
		lower, upper, v uint64
		want            uint64
	}{
		{"inside", 10, 20, 15, 15},
		{"below", 10, 20, 3, 10},
		{"above", 10, 20, 99, 20},
		{"upper wins", 20, 10, 15, 10},
	} {
		t.Run(tc.name, func(t *testing.T) {
			code := pushU64(tc.lower)
			code = append(code, pushU64(tc.upper)...)
			code = append(code, pushU64(tc.v)...)
			code = append(code, bytecode.Math(bytecode.MathClamp))
			wantStack(t, runStack(t, code), tc.want)
		})
	}
}

func TestMathClampImmediate(t *testing.T) {
	code := append(pushU64(99), bytecode.Math(bytecode.MathClampC), 20, 10)
	wantStack(t, runStack(t, code), 20)
}

func TestMathIClamp(t *testing.T) {
	code := pushU64(negU64(10)) // lower
	code = append(code, pushU64(10)...)
	code = append(code, pushU64(negU64(50))...)
	code = append(code, bytecode.Math(bytecode.MathIClamp))
	wantStack(t, runStack(t, code), negU64(10))
}

func TestMathReductions(t *testing.T) {
	push := func(vals ...uint64) []bytecode.Word {
		var code []bytecode.Word
		for _, v := range vals {
			code = append(code, pushU64(v)...)
		}
		return code
	}
	for _, tc := range []struct {
		name string
		vals []uint64
		data byte
		want uint64
	}{
		{"sum", []uint64{1, 2, 3, 4}, bytecode.MathSumC, 10},
		{"min", []uint64{9, 2, 7}, bytecode.MathNMinC, 2},
		{"max", []uint64{9, 2, 7}, bytecode.MathNMaxC, 9},
		{"imin", []uint64{5, negU64(3), 7}, bytecode.MathNIMinC, negU64(3)},
		{"imax", []uint64{negU64(5), negU64(3)}, bytecode.MathNIMaxC, negU64(3)},
		// DIFF folds from the first pop: 100 on top, 100 - 5 - 20 = 75.
		{"diff", []uint64{20, 5, 100}, bytecode.MathDiffC, 75},
	} {
		t.Run(tc.name, func(t *testing.T) {
			code := append(push(tc.vals...), bytecode.Math(tc.data), bytecode.Word(len(tc.vals)))
			wantStack(t, runStack(t, code), tc.want)
		})
	}
}

func TestMathReductionDynamicCount(t *testing.T) {
	code := []bytecode.Word{
		bytecode.Stack(bytecode.StackConst8),
		bytecode.Stack(bytecode.StackConst16),
		bytecode.Stack(bytecode.StackConst2), // count
		bytecode.Math(bytecode.MathSum),
	}
	wantStack(t, runStack(t, code), 24)
}

func TestMathReductionZeroCount(t *testing.T) {
	err := runErr(t, []bytecode.Word{bytecode.Math(bytecode.MathSumC), 0})
	var underflow *StackUnderflowError
	if !errors.As(err, &underflow) {
		t.Fatalf("got %T (%v), want *StackUnderflowError", err, err)
	}
}

func TestMathReductionUnderflow(t *testing.T) {
	err := runErr(t, []bytecode.Word{
		bytecode.Stack(bytecode.StackConst1),
		bytecode.Math(bytecode.MathSumC), 3,
	})
	var underflow *StackUnderflowError
	if !errors.As(err, &underflow) {
		t.Fatalf("got %T (%v), want *StackUnderflowError", err, err)
	}
	if underflow.Required != 3 {
		t.Errorf("Required = %d, want 3", underflow.Required)
	}
}
