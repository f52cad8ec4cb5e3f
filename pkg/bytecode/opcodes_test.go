package bytecode

import (
	"strings"
	"testing"
)

func TestWordGroupData(t *testing.T) {
	w := Math(MathAddC)
	if w.Group() != GroupMath {
		t.Errorf("Group() = %#x, want %#x", w.Group(), GroupMath)
	}
	if w.Data() != MathAddC {
		t.Errorf("Data() = %#x, want %#x", w.Data(), MathAddC)
	}
}

func TestBuilders(t *testing.T) {
	tests := []struct {
		name string
		word Word
		want Word
	}{
		{"sys nop", Sys(SysNop), 0x0000},
		{"sys halt", Sys(SysHalt), 0x0001},
		{"stack const.n1", Stack(StackConstN1), 0x010A},
		{"math sum", Math(MathSum), 0x03FF},
		{"fpmath fadd", FPMath(FPAdd), 0x0400},
		{"function return", Function(FnReturn), 0x0504},
		{"jump abs c16", Jump(JumpSrcC16, JumpModeAbsolute), 0x0200},
		{"jump rel dyn", Jump(JumpSrcDyn, JumpModeRelative), 0x0207},
		{"jump rel dyn nz", JumpIf(JumpSrcDyn, JumpModeRelative, JumpCondNZ), 0x021F},
		{"jump abs c32 les", JumpIf(JumpSrcC32, JumpModeAbsolute, JumpCondLES), 0x02F9},
	}
	for _, tt := range tests {
		if tt.word != tt.want {
			t.Errorf("%s: got %#04x, want %#04x", tt.name, uint16(tt.word), uint16(tt.want))
		}
	}
}

func TestWords32(t *testing.T) {
	hi, lo := Words32(0x12345678)
	if hi != 0x1234 || lo != 0x5678 {
		t.Errorf("Words32 = %#x,%#x, want 0x1234,0x5678", uint16(hi), uint16(lo))
	}
}

func TestWords64(t *testing.T) {
	w1, w2, w3, w4 := Words64(0x123456789ABCDEF0)
	if w1 != 0x1234 || w2 != 0x5678 || w3 != 0x9ABC || w4 != 0xDEF0 {
		t.Errorf("Words64 = %#x,%#x,%#x,%#x", uint16(w1), uint16(w2), uint16(w3), uint16(w4))
	}
}

func TestInfoOperandWidths(t *testing.T) {
	tests := []struct {
		word Word
		want int
	}{
		{Stack(StackConst0), 0},
		{Stack(StackConstU16), 1},
		{Stack(StackConstI16), 1},
		{Stack(StackConstU32), 2},
		{Stack(StackConstI32), 2},
		{Stack(StackConstU64), 4},
		{Math(MathClampC), 2},
		{Math(MathIClampC), 2},
		{Math(MathSumC), 1},
		{Jump(JumpSrcC16, JumpModeAbsolute), 1},
		{Jump(JumpSrcC32, JumpModeAbsolute), 2},
		{Jump(JumpSrcC64, JumpModeRelative), 4},
		{Jump(JumpSrcDyn, JumpModeRelative), 0},
		{Function(FnCallC), 1},
		{Function(FnCall), 0},
	}
	for _, tt := range tests {
		info, ok := Info(tt.word)
		if !ok {
			t.Errorf("Info(%s): not defined", tt.word)
			continue
		}
		if info.Operands != tt.want {
			t.Errorf("Info(%s).Operands = %d, want %d", info.Name, info.Operands, tt.want)
		}
	}
}

func TestInfoUndefined(t *testing.T) {
	undefined := []Word{
		Word(0x0008), // system gap
		Word(0x013C), // past reserve.c
		Word(0x0326), // math gap below the reduction range
		Word(0x0505), // past return
		Word(0x0600), // undefined group
		Word(0xFF00),
	}
	for _, w := range undefined {
		if _, ok := Info(w); ok {
			t.Errorf("Info(%#04x): expected undefined", uint16(w))
		}
	}
}

func TestJumpNames(t *testing.T) {
	tests := []struct {
		word Word
		want string
	}{
		{Jump(JumpSrcC16, JumpModeAbsolute), "jump.abs.c16"},
		{Jump(JumpSrcDyn, JumpModeRelative), "jump.rel.dyn"},
		{JumpIf(JumpSrcC16, JumpModeRelative, JumpCondNZ), "jump.rel.c16.nz"},
		{JumpIf(JumpSrcC64, JumpModeAbsolute, JumpCondLES), "jump.abs.c64.les"},
	}
	for _, tt := range tests {
		if got := tt.word.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestUndefinedWordString(t *testing.T) {
	got := Word(0x0600).String()
	if !strings.Contains(got, "0x0600") {
		t.Errorf("String() = %q, want hex marker", got)
	}
}

func TestMnemonicTablesComplete(t *testing.T) {
	for data, info := range stackInfo {
		if info.Name == "" {
			t.Errorf("stack opcode %#02x has empty name", data)
		}
	}
	for data, info := range mathInfo {
		if info.Name == "" {
			t.Errorf("math opcode %#02x has empty name", data)
		}
	}
	// The reduction range anchors at the top of the data byte.
	if _, ok := mathInfo[MathSum]; !ok || MathSum != 0xFF {
		t.Errorf("sum must sit at 0xFF, got %#02x", MathSum)
	}
}
