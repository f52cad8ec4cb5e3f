package vm

import "github.com/chazu/tanuki/pkg/bytecode"

// UnresolvedID is the sentinel for an external symbol id that has not been
// matched against the registry. Calling through it faults.
const UnresolvedID uint32 = 0xFFFFFFFF

// LocalSymbol names an entry point within its own module's bytecode.
type LocalSymbol struct {
	NameID     uint32 // index into the module string pool
	CodeOffset uint32 // word offset of the entry point
}

// ExternalSymbol names an entry point in another module. The name ids index
// this module's string pool; ModuleID and SymbolID start as UnresolvedID and
// are filled in by Engine.ResolveExternals once the target module is
// registered.
type ExternalSymbol struct {
	ModuleNameID uint32
	ModuleID     uint32
	SymbolNameID uint32
	SymbolID     uint32
}

// Module is an immutable bundle of code and linkage data. Build one with
// NewModule, hand it to an Engine, and never mutate it afterwards; a
// registered module may be shared read-only between any number of engines
// and contexts.
type Module struct {
	Name            string
	Strings         []string
	Data            []uint64
	LocalSymbols    []LocalSymbol
	ExternalSymbols []ExternalSymbol
	Code            []bytecode.Word

	symbolIndex map[string]uint32 // local symbol name -> id
}

// NewModule assembles a module and builds its symbol name index. External
// symbol ids are reset to the unresolved sentinel; they are filled in by the
// engine's resolution pass, not by the module author.
func NewModule(name string, strings []string, data []uint64,
	locals []LocalSymbol, externals []ExternalSymbol, code []bytecode.Word) *Module {

	m := &Module{
		Name:            name,
		Strings:         strings,
		Data:            data,
		LocalSymbols:    locals,
		ExternalSymbols: make([]ExternalSymbol, len(externals)),
		Code:            code,
		symbolIndex:     make(map[string]uint32, len(locals)),
	}
	for i, ext := range externals {
		ext.ModuleID = UnresolvedID
		ext.SymbolID = UnresolvedID
		m.ExternalSymbols[i] = ext
	}
	for id, sym := range locals {
		if int(sym.NameID) < len(strings) {
			m.symbolIndex[strings[sym.NameID]] = uint32(id)
		}
	}
	return m
}

// Symbol looks up a local symbol id by name.
func (m *Module) Symbol(name string) (uint32, bool) {
	id, ok := m.symbolIndex[name]
	return id, ok
}

// StringAt returns the pooled string at id, or "" when out of range.
func (m *Module) StringAt(id uint32) string {
	if int(id) >= len(m.Strings) {
		return ""
	}
	return m.Strings[id]
}
