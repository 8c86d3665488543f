package sqlite

import (
	"github.com/quill-lang/quill-sqlite/stack"
)

// ---------------------------------------------------------------------------
// Operand marshalling
//
// Strict pops enforce each primitive's stack contract before any native
// call: wrong kind or an exhausted stack aborts with INVALID_ARGUMENT
// and pops nothing beyond what was needed to detect the mismatch.
// Lenient pops back the accessor and cleanup primitives, which degrade
// instead of failing.
// ---------------------------------------------------------------------------

// popConn pops a connection handle and resolves it. A stale handle
// (closed connection) is a transport-tier failure: unlike the raw
// pointer it replaces, a registry handle can be validated.
func (m *Module) popConn(ctx *stack.Context, op string) (Conn, *Error) {
	h, err := ctx.Stack.PopHandle(ClassConn)
	if err != nil {
		return nil, invalidArg(op, "expected database handle")
	}
	conn, ok := m.gw.conn(h)
	if !ok {
		return nil, invalidArg(op, "unknown database handle")
	}
	return conn, nil
}

// popStmt pops a statement handle and resolves it.
func (m *Module) popStmt(ctx *stack.Context, op string) (Stmt, *Error) {
	h, err := ctx.Stack.PopHandle(ClassStmt)
	if err != nil {
		return nil, invalidArg(op, "expected statement handle")
	}
	stmt, ok := m.gw.stmt(h)
	if !ok {
		return nil, invalidArg(op, "unknown statement handle")
	}
	return stmt, nil
}

func popString(ctx *stack.Context, op, what string) (string, *Error) {
	s, err := ctx.Stack.PopString()
	if err != nil {
		return "", invalidArg(op, "expected "+what)
	}
	return s, nil
}

func popInt(ctx *stack.Context, op, what string) (int64, *Error) {
	v, err := ctx.Stack.PopInt()
	if err != nil {
		return 0, invalidArg(op, "expected "+what)
	}
	return v, nil
}

func popFloat(ctx *stack.Context, op, what string) (float64, *Error) {
	v, err := ctx.Stack.PopFloat()
	if err != nil {
		return 0, invalidArg(op, "expected "+what)
	}
	return v, nil
}

// popStmtLenient pops a statement handle for the accessor primitives.
// Anything wrong (underflow, wrong kind, wrong class, stale handle)
// reports ok=false; the caller pushes its zero-valued default. The
// offending operand is still consumed.
func (m *Module) popStmtLenient(ctx *stack.Context) (Stmt, bool) {
	h, err := ctx.Stack.PopHandle(ClassStmt)
	if err != nil {
		return nil, false
	}
	stmt, ok := m.gw.stmt(h)
	return stmt, ok
}

// popConnLenient is popStmtLenient for connection handles.
func (m *Module) popConnLenient(ctx *stack.Context) (Conn, bool) {
	h, err := ctx.Stack.PopHandle(ClassConn)
	if err != nil {
		return nil, false
	}
	conn, ok := m.gw.conn(h)
	return conn, ok
}

// popIntLenient pops an integer, reporting ok=false on misuse.
func popIntLenient(ctx *stack.Context) (int64, bool) {
	v, err := ctx.Stack.PopInt()
	if err != nil {
		return 0, false
	}
	return v, true
}

// pushOK pushes the trailing OK status every fallible primitive ends
// with on success. It is pushed last so it is the first value a caller
// pops.
func pushOK(ctx *stack.Context) {
	ctx.Stack.PushInt(int64(CodeOK))
}
