package vm

import "github.com/chazu/tanuki/pkg/bytecode"

// Context is an execution cursor bound to one module's code stream: the
// currently fetched opcode plus an instruction pointer. Invariant: after
// construction and after every successful fetch, offset either indexes a
// valid word or equals the stream length (exhausted). A Context never
// mutates its module.
type Context struct {
	module  *Module
	offset  int
	current bytecode.Word
}

// NewContext creates a context at the given word offset. Offsets outside
// [0, len(code)] fault; len(code) itself is a valid, already-exhausted
// position.
func NewContext(m *Module, offset int) (Context, error) {
	if offset < 0 || offset > len(m.Code) {
		return Context{}, &InvalidAddressError{Offset: offset}
	}
	ctx := Context{module: m, offset: offset}
	if offset < len(m.Code) {
		ctx.current = m.Code[offset]
	}
	return ctx, nil
}

// Module returns the module this context executes in.
func (c *Context) Module() *Module {
	return c.module
}

// Offset returns the current word offset.
func (c *Context) Offset() int {
	return c.offset
}

// Opcode returns the most recently fetched word without advancing.
func (c *Context) Opcode() bytecode.Word {
	return c.current
}

// HasNext reports whether a word remains at the current offset.
func (c *Context) HasNext() bool {
	return c.offset < len(c.module.Code)
}

// Next returns the word at the cursor and advances past it. The second
// return is false at end of stream, which is not an error; the dispatch
// loop treats it as done.
func (c *Context) Next() (bytecode.Word, bool) {
	if !c.HasNext() {
		return 0, false
	}
	c.current = c.module.Code[c.offset]
	c.offset++
	return c.current, true
}

// jump repositions the cursor. The target may equal the stream length,
// which exhausts the context.
func (c *Context) jump(offset int) error {
	if offset < 0 || offset > len(c.module.Code) {
		return &InvalidAddressError{Offset: offset}
	}
	c.offset = offset
	return nil
}

// take consumes n trailing immediate words, faulting without consuming when
// fewer remain. The current opcode word itself is never part of an
// immediate.
func (c *Context) take(n int) ([]bytecode.Word, error) {
	if len(c.module.Code)-c.offset < n {
		return nil, &CodeDataError{Opcode: c.current, Required: n}
	}
	words := c.module.Code[c.offset : c.offset+n]
	c.offset += n
	return words, nil
}

// ConstU16 consumes one trailing word as a 16-bit immediate.
func (c *Context) ConstU16() (uint16, error) {
	words, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return uint16(words[0]), nil
}

// ConstU16x2 consumes two trailing words as two 16-bit immediates.
func (c *Context) ConstU16x2() (uint16, uint16, error) {
	words, err := c.take(2)
	if err != nil {
		return 0, 0, err
	}
	return uint16(words[0]), uint16(words[1]), nil
}

// ConstU16x4 consumes four trailing words as four 16-bit immediates.
func (c *Context) ConstU16x4() (uint16, uint16, uint16, uint16, error) {
	words, err := c.take(4)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return uint16(words[0]), uint16(words[1]), uint16(words[2]), uint16(words[3]), nil
}

// ConstU32 assembles a 32-bit immediate from two trailing words, high word
// first.
func (c *Context) ConstU32() (uint32, error) {
	hi, lo, err := c.ConstU16x2()
	if err != nil {
		return 0, err
	}
	return uint32(hi)<<16 | uint32(lo), nil
}

// ConstU64 assembles a 64-bit immediate from four trailing words, high word
// first.
func (c *Context) ConstU64() (uint64, error) {
	w1, w2, w3, w4, err := c.ConstU16x4()
	if err != nil {
		return 0, err
	}
	return uint64(w1)<<48 | uint64(w2)<<32 | uint64(w3)<<16 | uint64(w4), nil
}
