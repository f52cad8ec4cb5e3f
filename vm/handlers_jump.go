package vm

import "github.com/chazu/tanuki/pkg/bytecode"

// execJump handles the whole jump group. The data byte is a bitfield rather
// than an opcode, so there is no per-opcode table: source operands are
// consumed first, then the predicate is evaluated, then the cursor moves.
// An untaken conditional jump still consumes its inline operands and its
// predicate pops.
func (e *Engine) execJump(op bytecode.Word) error {
	data := op.Data()

	// Absolute jumps read the source as an unsigned offset; relative jumps
	// read it as a signed displacement, sign-extended from its inline width.
	var uval uint64
	var sval int64
	switch data & bytecode.JumpSrcMask {
	case bytecode.JumpSrcC16:
		c, err := e.ctx.ConstU16()
		if err != nil {
			return err
		}
		uval, sval = uint64(c), int64(int16(c))
	case bytecode.JumpSrcC32:
		c, err := e.ctx.ConstU32()
		if err != nil {
			return err
		}
		uval, sval = uint64(c), int64(int32(c))
	case bytecode.JumpSrcC64:
		c, err := e.ctx.ConstU64()
		if err != nil {
			return err
		}
		uval, sval = c, int64(c)
	default: // JumpSrcDyn
		v, err := e.pop(op)
		if err != nil {
			return err
		}
		uval, sval = v, int64(v)
	}

	// Relative displacement is measured from the offset after the jump's
	// operands, captured here before any predicate pops.
	pos := e.ctx.Offset()

	if data&bytecode.JumpConditionalMask != 0 {
		taken, err := e.jumpTaken(op, data&bytecode.JumpCondMask)
		if err != nil {
			return err
		}
		if !taken {
			return nil
		}
	}

	var target int64
	if data&bytecode.JumpModeMask == bytecode.JumpModeRelative {
		target = int64(pos) + sval
	} else {
		target = int64(uval)
	}
	return e.ctx.jump(int(target))
}

// jumpTaken pops the predicate operands and evaluates the condition. The
// single-operand predicates pop one value; the comparison predicates pop two
// and compare the first pop against the second.
func (e *Engine) jumpTaken(op bytecode.Word, cond byte) (bool, error) {
	switch cond {
	case bytecode.JumpCondZ, bytecode.JumpCondNZ,
		bytecode.JumpCondPos, bytecode.JumpCondNeg,
		bytecode.JumpCondGZ, bytecode.JumpCondLZ:
		v, err := e.pop(op)
		if err != nil {
			return false, err
		}
		switch cond {
		case bytecode.JumpCondZ:
			return v == 0, nil
		case bytecode.JumpCondNZ:
			return v != 0, nil
		case bytecode.JumpCondPos:
			return int64(v) > 0, nil
		case bytecode.JumpCondNeg:
			return int64(v) < 0, nil
		case bytecode.JumpCondGZ:
			return int64(v) >= 0, nil
		default: // JumpCondLZ
			return int64(v) <= 0, nil
		}
	}

	first, second, err := e.pop2(op)
	if err != nil {
		return false, err
	}
	switch cond {
	case bytecode.JumpCondEq:
		return first == second, nil
	case bytecode.JumpCondNeq:
		return first != second, nil
	case bytecode.JumpCondGT:
		return first > second, nil
	case bytecode.JumpCondGTS:
		return int64(first) > int64(second), nil
	case bytecode.JumpCondLT:
		return first < second, nil
	case bytecode.JumpCondLTS:
		return int64(first) < int64(second), nil
	case bytecode.JumpCondGE:
		return first >= second, nil
	case bytecode.JumpCondGES:
		return int64(first) >= int64(second), nil
	case bytecode.JumpCondLE:
		return first <= second, nil
	default: // JumpCondLES
		return int64(first) <= int64(second), nil
	}
}
