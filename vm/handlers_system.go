package vm

import (
	"fmt"
	"math"

	"github.com/chazu/tanuki/pkg/bytecode"
)

func init() {
	for data, h := range map[byte]opHandler{
		bytecode.SysNop:        execNop,
		bytecode.SysHalt:       execHalt,
		bytecode.SysPrintStack: execPrintStack,
		bytecode.SysPrintU64:   execPrintU64,
		bytecode.SysPrintI64:   execPrintI64,
		bytecode.SysPrintF32:   execPrintF32,
		bytecode.SysPrintF64:   execPrintF64,
		bytecode.SysBreakpoint: execTrap,
		bytecode.SysFault:      execTrap,
	} {
		sysOps[data] = h
	}
}

func execNop(e *Engine, op bytecode.Word) error {
	return nil
}

func execHalt(e *Engine, op bytecode.Word) error {
	return errHalt
}

func execTrap(e *Engine, op bytecode.Word) error {
	return &TrapError{Opcode: op}
}

func execPrintStack(e *Engine, op bytecode.Word) error {
	fmt.Fprintf(e.out, "stack: %v\n", e.Stack())
	return nil
}

func execPrintU64(e *Engine, op bytecode.Word) error {
	v, err := e.pop(op)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%d\n", v)
	return nil
}

func execPrintI64(e *Engine, op bytecode.Word) error {
	v, err := e.pop(op)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%d\n", int64(v))
	return nil
}

func execPrintF32(e *Engine, op bytecode.Word) error {
	v, err := e.pop(op)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%v\n", math.Float32frombits(uint32(v)))
	return nil
}

func execPrintF64(e *Engine, op bytecode.Word) error {
	v, err := e.pop(op)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%v\n", math.Float64frombits(v))
	return nil
}
