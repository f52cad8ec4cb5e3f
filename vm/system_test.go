package vm

import (
	"bytes"
	"testing"

	"github.com/chazu/tanuki/pkg/bytecode"
)

func runOutput(t *testing.T, code []bytecode.Word) string {
	t.Helper()
	var buf bytes.Buffer
	e := NewEngine()
	e.SetOutput(&buf)
	if err := e.RunCode(code); err != nil {
		t.Fatalf("RunCode failed: %v", err)
	}
	return buf.String()
}

func TestNopDoesNothing(t *testing.T) {
	e := run(t, []bytecode.Word{
		bytecode.Sys(bytecode.SysNop),
		bytecode.Sys(bytecode.SysNop),
	})
	if len(e.Stack()) != 0 {
		t.Errorf("stack %v, want empty", e.Stack())
	}
}

func TestPrintU64(t *testing.T) {
	out := runOutput(t, []bytecode.Word{
		bytecode.Stack(bytecode.StackConstN1),
		bytecode.Sys(bytecode.SysPrintU64),
	})
	if out != "18446744073709551615\n" {
		t.Errorf("output %q", out)
	}
}

func TestPrintI64(t *testing.T) {
	out := runOutput(t, []bytecode.Word{
		bytecode.Stack(bytecode.StackConstN1),
		bytecode.Sys(bytecode.SysPrintI64),
	})
	if out != "-1\n" {
		t.Errorf("output %q", out)
	}
}

func TestPrintConsumes(t *testing.T) {
	var buf bytes.Buffer
	e := NewEngine()
	e.SetOutput(&buf)
	if err := e.RunCode([]bytecode.Word{
		bytecode.Stack(bytecode.StackConst1),
		bytecode.Sys(bytecode.SysPrintU64),
	}); err != nil {
		t.Fatal(err)
	}
	if len(e.Stack()) != 0 {
		t.Errorf("stack %v, want empty after print", e.Stack())
	}
}

func TestPrintStack(t *testing.T) {
	out := runOutput(t, []bytecode.Word{
		bytecode.Stack(bytecode.StackConst1),
		bytecode.Stack(bytecode.StackConst2),
		bytecode.Sys(bytecode.SysPrintStack),
	})
	if out != "stack: [1 2]\n" {
		t.Errorf("output %q", out)
	}
}

func TestPrintUnderflow(t *testing.T) {
	err := runErr(t, []bytecode.Word{bytecode.Sys(bytecode.SysPrintF64)})
	if _, ok := err.(*StackUnderflowError); !ok {
		t.Fatalf("got %T (%v), want *StackUnderflowError", err, err)
	}
}
