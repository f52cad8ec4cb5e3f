package vm

import (
	"math"

	"github.com/chazu/tanuki/pkg/bytecode"
)

func init() {
	for data, h := range map[byte]opHandler{
		bytecode.FPAdd: fpBinHandler(func(first, second float64) float64 { return second + first }),
		bytecode.FPSub: fpBinHandler(func(first, second float64) float64 { return second - first }),
		bytecode.FPMul: fpBinHandler(func(first, second float64) float64 { return second * first }),
		bytecode.FPDiv: fpBinHandler(func(first, second float64) float64 { return second / first }),
		bytecode.FPMod: fpBinHandler(func(first, second float64) float64 { return math.Mod(second, first) }),
		bytecode.FPFma: execFPFma,
		bytecode.FPPow: fpBinHandler(func(first, second float64) float64 { return math.Pow(second, first) }),

		bytecode.FPNeg:  fpUnHandler(func(a float64) float64 { return -a }),
		bytecode.FPAbs:  fpUnHandler(math.Abs),
		bytecode.FPSqrt: fpUnHandler(math.Sqrt),
		bytecode.FPMin:  fpBinHandler(math.Min),
		bytecode.FPMax:  fpBinHandler(math.Max),

		bytecode.FPClamp: execFPClamp,

		bytecode.FPEq: fpCmpHandler(func(first, second float64) bool { return second == first }),
		bytecode.FPNe: fpCmpHandler(func(first, second float64) bool { return second != first }),
		bytecode.FPLt: fpCmpHandler(func(first, second float64) bool { return second < first }),
		bytecode.FPLe: fpCmpHandler(func(first, second float64) bool { return second <= first }),
		bytecode.FPGt: fpCmpHandler(func(first, second float64) bool { return second > first }),
		bytecode.FPGe: fpCmpHandler(func(first, second float64) bool { return second >= first }),

		bytecode.FPFromI64: execFPFromI64,
		bytecode.FPFromU64: execFPFromU64,
		bytecode.FPToI64:   execFPToI64,
		bytecode.FPToU64:   execFPToU64,
		bytecode.FP32To64:  execFP32To64,
		bytecode.FP64To32:  execFP64To32,
	} {
		fpOps[data] = h
	}
}

// ---------------------------------------------------------------------------
// Handler builders
// ---------------------------------------------------------------------------
//
// Float operands travel the stack as raw f64 bit patterns; the handlers
// reinterpret, compute with IEEE semantics (NaN propagates, division by zero
// yields an infinity), and push the result bits back.

func fpBinHandler(f func(first, second float64) float64) opHandler {
	return func(e *Engine, op bytecode.Word) error {
		first, second, err := e.pop2(op)
		if err != nil {
			return err
		}
		r := f(math.Float64frombits(first), math.Float64frombits(second))
		return e.push(op, math.Float64bits(r))
	}
}

func fpUnHandler(f func(a float64) float64) opHandler {
	return func(e *Engine, op bytecode.Word) error {
		v, err := e.pop(op)
		if err != nil {
			return err
		}
		return e.push(op, math.Float64bits(f(math.Float64frombits(v))))
	}
}

// fpCmpHandler pushes 1 for true, 0 for false. Any comparison against NaN
// is false except !=.
func fpCmpHandler(f func(first, second float64) bool) opHandler {
	return func(e *Engine, op bytecode.Word) error {
		first, second, err := e.pop2(op)
		if err != nil {
			return err
		}
		var r uint64
		if f(math.Float64frombits(first), math.Float64frombits(second)) {
			r = 1
		}
		return e.push(op, r)
	}
}

func execFPFma(e *Engine, op bytecode.Word) error {
	a, b, c, err := e.pop3(op)
	if err != nil {
		return err
	}
	r := math.FMA(math.Float64frombits(c), math.Float64frombits(b), math.Float64frombits(a))
	return e.push(op, math.Float64bits(r))
}

func execFPClamp(e *Engine, op bytecode.Word) error {
	v, upper, lower, err := e.pop3(op)
	if err != nil {
		return err
	}
	r := math.Min(math.Max(math.Float64frombits(v), math.Float64frombits(lower)), math.Float64frombits(upper))
	return e.push(op, math.Float64bits(r))
}

// ---------------------------------------------------------------------------
// Conversions
// ---------------------------------------------------------------------------

func execFPFromI64(e *Engine, op bytecode.Word) error {
	v, err := e.pop(op)
	if err != nil {
		return err
	}
	return e.push(op, math.Float64bits(float64(int64(v))))
}

func execFPFromU64(e *Engine, op bytecode.Word) error {
	v, err := e.pop(op)
	if err != nil {
		return err
	}
	return e.push(op, math.Float64bits(float64(v)))
}

// execFPToI64 converts with saturation: out-of-range values pin to the
// integer extremes and NaN converts to 0.
func execFPToI64(e *Engine, op bytecode.Word) error {
	v, err := e.pop(op)
	if err != nil {
		return err
	}
	f := math.Float64frombits(v)
	var r int64
	switch {
	case math.IsNaN(f):
		r = 0
	case f >= float64(math.MaxInt64):
		r = math.MaxInt64
	case f <= float64(math.MinInt64):
		r = math.MinInt64
	default:
		r = int64(f)
	}
	return e.push(op, uint64(r))
}

func execFPToU64(e *Engine, op bytecode.Word) error {
	v, err := e.pop(op)
	if err != nil {
		return err
	}
	f := math.Float64frombits(v)
	var r uint64
	switch {
	case math.IsNaN(f) || f <= 0:
		r = 0
	case f >= float64(math.MaxUint64):
		r = math.MaxUint64
	default:
		r = uint64(f)
	}
	return e.push(op, r)
}

func execFP32To64(e *Engine, op bytecode.Word) error {
	v, err := e.pop(op)
	if err != nil {
		return err
	}
	f := math.Float32frombits(uint32(v))
	return e.push(op, math.Float64bits(float64(f)))
}

func execFP64To32(e *Engine, op bytecode.Word) error {
	v, err := e.pop(op)
	if err != nil {
		return err
	}
	f := float32(math.Float64frombits(v))
	return e.push(op, uint64(math.Float32bits(f)))
}
