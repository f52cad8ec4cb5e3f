// Package vm implements the Tanuki virtual machine: an engine executing
// 16-bit word bytecode over an operand stack of 64-bit values, with a
// module/symbol linkage scheme that lets independently assembled code units
// call into each other.
//
// # Architecture Overview
//
//   - Module: an immutable bundle of name, string pool, data pool, symbol
//     tables, and the raw instruction stream. Modules are built once by a
//     caller, registered with an Engine, and never mutated afterwards, so a
//     registered Module may be shared read-only between engines.
//
//   - Context: an instruction-pointer cursor into one Module's code stream,
//     with bounds-checked fetch and immediate-operand assembly primitives.
//
//   - Engine: owns the operand stack, the module registry, per-call local
//     frames, and the active Context. Its run loop fetches an opcode word,
//     splits it into group and data bytes, and routes it through a dispatch
//     table built once at startup.
//
// # Linkage
//
// A local symbol names an entry point within its own module. An external
// symbol names a (module, symbol) pair in another module by string id; the
// numeric ids are filled in by a single resolution pass once the expected
// modules are registered. Resolution failures are deferred: an unresolved
// external symbol only faults when bytecode actually calls through it.
//
// # Failure semantics
//
// Every fallible operation returns one of the typed fault values in this
// package. The first fault anywhere aborts the run and is surfaced whole to
// the caller; HALT and stream exhaustion are the only successful
// terminations. There is no in-bytecode trap handling.
//
// Execution is single-threaded. Running two call chains concurrently
// requires two Engine instances over the shared, immutable module set.
package vm
