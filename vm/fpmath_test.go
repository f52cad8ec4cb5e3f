package vm

import (
	"math"
	"testing"

	"github.com/chazu/tanuki/pkg/bytecode"
)

// pushF64 emits a CONST_U64 holding the f64 bit pattern.
func pushF64(f float64) []bytecode.Word {
	return pushU64(math.Float64bits(f))
}

// fpBinOp pushes a then b and runs one FPMATH opcode, so b is the first pop.
func fpBinOp(a, b float64, data byte) []bytecode.Word {
	code := pushF64(a)
	code = append(code, pushF64(b)...)
	return append(code, bytecode.FPMath(data))
}

func runF64(t *testing.T, code []bytecode.Word) float64 {
	t.Helper()
	stack := runStack(t, code)
	if len(stack) != 1 {
		t.Fatalf("stack %v, want a single result", stack)
	}
	return math.Float64frombits(stack[0])
}

func TestFPArithmetic(t *testing.T) {
	for _, tc := range []struct {
		name string
		a, b float64
		data byte
		want float64
	}{
		{"add", 1.5, 2.25, bytecode.FPAdd, 3.75},
		{"sub", 10, 2.5, bytecode.FPSub, 7.5},
		{"mul", 1.5, 4, bytecode.FPMul, 6},
		{"div", 10, 4, bytecode.FPDiv, 2.5},
		{"mod", 10, 3, bytecode.FPMod, 1},
		{"pow", 2, 10, bytecode.FPPow, 1024},
		{"min", 3, -1, bytecode.FPMin, -1},
		{"max", 3, -1, bytecode.FPMax, 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := runF64(t, fpBinOp(tc.a, tc.b, tc.data))
			if got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFPDivideByZeroIsInf(t *testing.T) {
	got := runF64(t, fpBinOp(1, 0, bytecode.FPDiv))
	if !math.IsInf(got, 1) {
		t.Errorf("got %v, want +Inf", got)
	}
}

func TestFPNaNPropagates(t *testing.T) {
	got := runF64(t, fpBinOp(math.NaN(), 1, bytecode.FPAdd))
	if !math.IsNaN(got) {
		t.Errorf("got %v, want NaN", got)
	}
}

func TestFPUnary(t *testing.T) {
	for _, tc := range []struct {
		name string
		a    float64
		data byte
		want float64
	}{
		{"neg", 2.5, bytecode.FPNeg, -2.5},
		{"abs", -2.5, bytecode.FPAbs, 2.5},
		{"sqrt", 9, bytecode.FPSqrt, 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			code := append(pushF64(tc.a), bytecode.FPMath(tc.data))
			if got := runF64(t, code); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFPFma(t *testing.T) {
	// a on top: result is c*b + a.
	code := pushF64(100)
	code = append(code, pushF64(7)...)
	code = append(code, pushF64(0.5)...)
	code = append(code, bytecode.FPMath(bytecode.FPFma))
	if got := runF64(t, code); got != 700.5 {
		t.Errorf("got %v, want 700.5", got)
	}
}

func TestFPClamp(t *testing.T) {
	code := pushF64(-1) // lower
	code = append(code, pushF64(1)...)
	code = append(code, pushF64(3.5)...)
	code = append(code, bytecode.FPMath(bytecode.FPClamp))
	if got := runF64(t, code); got != 1 {
		t.Errorf("got %v, want 1", got)
	}
}

func TestFPCompare(t *testing.T) {
	for _, tc := range []struct {
		name string
		a, b float64
		data byte
		want uint64
	}{
		{"eq true", 2, 2, bytecode.FPEq, 1},
		{"eq false", 2, 3, bytecode.FPEq, 0},
		{"eq nan", math.NaN(), math.NaN(), bytecode.FPEq, 0},
		{"ne nan", math.NaN(), math.NaN(), bytecode.FPNe, 1},
		{"lt", 1, 2, bytecode.FPLt, 1},
		{"le equal", 2, 2, bytecode.FPLe, 1},
		{"gt", 3, 2, bytecode.FPGt, 1},
		{"ge false", 1, 2, bytecode.FPGe, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			wantStack(t, runStack(t, fpBinOp(tc.a, tc.b, tc.data)), tc.want)
		})
	}
}

func TestFPConversions(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   uint64
		data byte
		want uint64
	}{
		{"from i64", negU64(2), bytecode.FPFromI64, math.Float64bits(-2)},
		{"from u64", 5, bytecode.FPFromU64, math.Float64bits(5)},
		{"to i64", math.Float64bits(-2.9), bytecode.FPToI64, negU64(2)},
		{"to u64", math.Float64bits(7.9), bytecode.FPToU64, 7},
		{"to i64 nan", math.Float64bits(math.NaN()), bytecode.FPToI64, 0},
		{"to i64 saturates high", math.Float64bits(1e300), bytecode.FPToI64, uint64(math.MaxInt64)},
		{"to i64 saturates low", math.Float64bits(-1e300), bytecode.FPToI64, uint64(1) << 63},
		{"to u64 negative", math.Float64bits(-5), bytecode.FPToU64, 0},
		{"to u64 saturates", math.Float64bits(1e300), bytecode.FPToU64, math.MaxUint64},
		{"f32 to f64", uint64(math.Float32bits(1.5)), bytecode.FP32To64, math.Float64bits(1.5)},
		{"f64 to f32", math.Float64bits(1.5), bytecode.FP64To32, uint64(math.Float32bits(1.5))},
	} {
		t.Run(tc.name, func(t *testing.T) {
			code := append(pushU64(tc.in), bytecode.FPMath(tc.data))
			wantStack(t, runStack(t, code), tc.want)
		})
	}
}

func TestFPCompareOperandOrder(t *testing.T) {
	// 5 pushed first, 1 on top: LT asks 5 < 1.
	got := runStack(t, fpBinOp(5, 1, bytecode.FPLt))
	wantStack(t, got, 0)
}
