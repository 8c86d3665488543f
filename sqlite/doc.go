// Package sqlite bridges the Quill VM to an embedded SQLite engine.
//
// This package contains:
//   - The operand marshaller: arity and type checking of stack operands
//     for each primitive, and encoding of results back onto the stack
//   - The resource gateway: registries mapping tagged stack handles to
//     live connections and prepared statements
//   - The primitive table registered with the host VM
//   - The engine abstraction over the native SQLite library
//
// Every primitive is synchronous: it completes all native work before
// returning. Mutation paths (exec, prepare, bind, step, transactions)
// are strict and report failures through the status/error-context
// protocol; cleanup paths (close, finalize) never fail observably and
// row accessors degrade to zero-valued defaults on misuse.
package sqlite
