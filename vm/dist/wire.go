// Package dist defines the portable module format: a canonical CBOR
// encoding of a module's code and linkage tables, content-hashed for
// integrity, plus a bolt-backed store for saved modules.
package dist

import (
	"crypto/sha256"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/tanuki/pkg/bytecode"
	"github.com/chazu/tanuki/vm"
)

// cborEncMode holds CBOR canonical-mode options so the same module always
// encodes to the same bytes, making the content hash stable.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("dist: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// WireSymbol is the serialized form of a local symbol.
type WireSymbol struct {
	NameID     uint32 `cbor:"1,keyasint"`
	CodeOffset uint32 `cbor:"2,keyasint"`
}

// WireExternal is the serialized form of an external symbol. Only the name
// ids travel; resolved ids are engine-local and rebuilt after load.
type WireExternal struct {
	ModuleNameID uint32 `cbor:"1,keyasint"`
	SymbolNameID uint32 `cbor:"2,keyasint"`
}

// WireModule is the serialized form of a module.
type WireModule struct {
	Name      string         `cbor:"1,keyasint"`
	Strings   []string       `cbor:"2,keyasint,omitempty"`
	Data      []uint64       `cbor:"3,keyasint,omitempty"`
	Locals    []WireSymbol   `cbor:"4,keyasint,omitempty"`
	Externals []WireExternal `cbor:"5,keyasint,omitempty"`
	Code      []uint16       `cbor:"6,keyasint,omitempty"`
}

// ToWire converts a module to its serialized form.
func ToWire(m *vm.Module) *WireModule {
	w := &WireModule{
		Name:    m.Name,
		Strings: m.Strings,
		Data:    m.Data,
	}
	for _, sym := range m.LocalSymbols {
		w.Locals = append(w.Locals, WireSymbol{NameID: sym.NameID, CodeOffset: sym.CodeOffset})
	}
	for _, ext := range m.ExternalSymbols {
		w.Externals = append(w.Externals, WireExternal{
			ModuleNameID: ext.ModuleNameID,
			SymbolNameID: ext.SymbolNameID,
		})
	}
	for _, word := range m.Code {
		w.Code = append(w.Code, uint16(word))
	}
	return w
}

// Module rebuilds a runtime module from its serialized form. External
// symbol ids come back unresolved; run the engine's resolution pass after
// registration.
func (w *WireModule) Module() *vm.Module {
	locals := make([]vm.LocalSymbol, len(w.Locals))
	for i, sym := range w.Locals {
		locals[i] = vm.LocalSymbol{NameID: sym.NameID, CodeOffset: sym.CodeOffset}
	}
	externals := make([]vm.ExternalSymbol, len(w.Externals))
	for i, ext := range w.Externals {
		externals[i] = vm.ExternalSymbol{
			ModuleNameID: ext.ModuleNameID,
			SymbolNameID: ext.SymbolNameID,
		}
	}
	code := make([]bytecode.Word, len(w.Code))
	for i, word := range w.Code {
		code[i] = bytecode.Word(word)
	}
	return vm.NewModule(w.Name, w.Strings, w.Data, locals, externals, code)
}

// MarshalModule serializes a module to canonical CBOR bytes.
func MarshalModule(m *vm.Module) ([]byte, error) {
	return cborEncMode.Marshal(ToWire(m))
}

// UnmarshalModule deserializes a module from CBOR bytes.
func UnmarshalModule(data []byte) (*vm.Module, error) {
	var w WireModule
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("dist: unmarshal module: %w", err)
	}
	return w.Module(), nil
}

// ModuleHash computes the content hash of a module's canonical encoding.
// Two modules with the same hash carry identical code and linkage.
func ModuleHash(m *vm.Module) ([32]byte, error) {
	data, err := MarshalModule(m)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(data), nil
}
