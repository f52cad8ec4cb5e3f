package bytecode

import (
	"strings"
	"testing"
)

func TestDisassembleSimple(t *testing.T) {
	code := []Word{
		Stack(StackConstN1),
		Stack(StackConstU16), 0x0015,
		Sys(SysPrintStack),
		Math(MathAdd),
		Sys(SysHalt),
	}
	out := Disassemble(code)

	for _, want := range []string{"const.n1", "const.u16 0x15", "print.stack", "add", "halt"} {
		if !strings.Contains(out, want) {
			t.Errorf("listing missing %q:\n%s", want, out)
		}
	}
}

func TestDisassembleMultiWordImmediates(t *testing.T) {
	hi, lo := Words32(0xDEADBEEF)
	w1, w2, w3, w4 := Words64(0x123456789ABCDEF0)
	code := []Word{
		Stack(StackConstU32), hi, lo,
		Stack(StackConstU64), w1, w2, w3, w4,
	}
	out := Disassemble(code)

	if !strings.Contains(out, "0xdeadbeef") {
		t.Errorf("listing missing assembled u32 immediate:\n%s", out)
	}
	if !strings.Contains(out, "0x123456789abcdef0") {
		t.Errorf("listing missing assembled u64 immediate:\n%s", out)
	}
}

func TestDisassembleTruncated(t *testing.T) {
	code := []Word{Stack(StackConstU32), 0x1234} // needs two trailing words
	out := Disassemble(code)
	if !strings.Contains(out, "truncated") {
		t.Errorf("expected truncation marker:\n%s", out)
	}
}

func TestDisassembleUndefined(t *testing.T) {
	out := Disassemble([]Word{Word(0x0600)})
	if !strings.Contains(out, "???") {
		t.Errorf("expected undefined marker:\n%s", out)
	}
}

func TestDisassembleWithName(t *testing.T) {
	out := DisassembleWithName([]Word{Sys(SysNop)}, "boot")
	if !strings.HasPrefix(out, "; === boot ===") {
		t.Errorf("missing name header:\n%s", out)
	}
}
