package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of an instruction stream.
// Undefined encodings and truncated immediates are annotated rather than
// aborting, so partial or malformed streams still produce a listing.
func Disassemble(code []Word) string {
	return DisassembleWithName(code, "")
}

// DisassembleWithName returns a listing with a name header.
func DisassembleWithName(code []Word, name string) string {
	var sb strings.Builder

	if name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	}
	sb.WriteString(fmt.Sprintf("; %d words\n", len(code)))

	for offset := 0; offset < len(code); {
		offset = disasmInstruction(&sb, code, offset)
	}

	return sb.String()
}

// disasmInstruction writes one instruction line and returns the offset of
// the next instruction.
func disasmInstruction(sb *strings.Builder, code []Word, offset int) int {
	w := code[offset]
	info, ok := Info(w)
	if !ok {
		sb.WriteString(fmt.Sprintf("%04x: %04x            ??? \n", offset, uint16(w)))
		return offset + 1
	}

	sb.WriteString(fmt.Sprintf("%04x: %04x ", offset, uint16(w)))

	end := offset + 1 + info.Operands
	if end > len(code) {
		// Truncated immediate; dump what remains.
		sb.WriteString(fmt.Sprintf("%-15s ; truncated, %d words missing\n",
			info.Name, end-len(code)))
		return len(code)
	}

	switch info.Operands {
	case 0:
		sb.WriteString(fmt.Sprintf("          %s\n", info.Name))
	case 1:
		sb.WriteString(fmt.Sprintf("%04x      %s %#x\n",
			uint16(code[offset+1]), info.Name, uint16(code[offset+1])))
	case 2:
		v := uint32(code[offset+1])<<16 | uint32(code[offset+2])
		sb.WriteString(fmt.Sprintf("%04x %04x %s %#x\n",
			uint16(code[offset+1]), uint16(code[offset+2]), info.Name, v))
	case 4:
		v := uint64(code[offset+1])<<48 | uint64(code[offset+2])<<32 |
			uint64(code[offset+3])<<16 | uint64(code[offset+4])
		sb.WriteString(fmt.Sprintf("...       %s %#x\n", info.Name, v))
	}

	return end
}
