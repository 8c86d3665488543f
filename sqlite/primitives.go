package sqlite

import (
	"github.com/tliron/commonlog"

	"github.com/quill-lang/quill-sqlite/stack"
)

var log = commonlog.GetLogger("quill.sqlite")

// Module is the SQLite bridge registered with a host VM. It owns the
// handle registries and the engine; all other state lives on the stack
// or in the native resources themselves.
type Module struct {
	engine Engine
	gw     *gateway
	cfg    Config
}

// New returns a Module backed by the embedded SQLite engine.
func New() *Module {
	return NewWithEngine(NewEngine())
}

// NewWithEngine returns a Module backed by the given engine. Tests use
// this to install a recording engine.
func NewWithEngine(e Engine) *Module {
	return &Module{engine: e, gw: newGateway()}
}

// SetConfig installs connection options applied to every subsequently
// opened connection. The zero Config applies nothing.
func (m *Module) SetConfig(cfg Config) {
	m.cfg = cfg
}

// Primitives returns the primitive table keyed by the names Quill
// programs call.
func (m *Module) Primitives() map[string]stack.Primitive {
	return map[string]stack.Primitive{
		"sqlite::open":              adapt(m.open),
		"sqlite::close":             adapt(m.close),
		"sqlite::exec":              adapt(m.exec),
		"sqlite::prepare":           adapt(m.prepare),
		"sqlite::bind_text":         adapt(m.bindText),
		"sqlite::bind_int":          adapt(m.bindInt),
		"sqlite::bind_float":        adapt(m.bindFloat),
		"sqlite::bind_null":         adapt(m.bindNull),
		"sqlite::step":              adapt(m.step),
		"sqlite::reset":             adapt(m.reset),
		"sqlite::finalize":          adapt(m.finalize),
		"sqlite::column_count":      adapt(m.columnCount),
		"sqlite::column_name":       adapt(m.columnName),
		"sqlite::column_type":       adapt(m.columnType),
		"sqlite::column_int":        adapt(m.columnInt),
		"sqlite::column_float":      adapt(m.columnFloat),
		"sqlite::column_text":       adapt(m.columnText),
		"sqlite::last_insert_rowid": adapt(m.lastInsertRowid),
		"sqlite::changes":           adapt(m.changes),
		"sqlite::begin":             adapt(m.begin),
		"sqlite::commit":            adapt(m.commit),
		"sqlite::rollback":          adapt(m.rollback),
	}
}

// Register registers every primitive with the host.
func (m *Module) Register(r stack.Registrar) {
	for name, fn := range m.Primitives() {
		r.RegisterPrimitive(name, fn)
	}
}

// adapt turns an explicit-result operation into the Primitive calling
// convention: failures are copied into the Context error slot and
// returned as the numeric status code.
func adapt(fn func(*stack.Context) *Error) stack.Primitive {
	return func(ctx *stack.Context) int {
		if err := fn(ctx); err != nil {
			log.Debugf("primitive failed: %s", err.Error())
			ctx.SetError(int(err.Code), err.Error())
			return int(err.Code)
		}
		return 0
	}
}

// CloseAll finalizes every live statement and closes every live
// connection. Host shutdown path; Quill programs are expected to pair
// open/close and prepare/finalize themselves.
func (m *Module) CloseAll() {
	m.gw.mu.Lock()
	stmts := m.gw.stmts
	conns := m.gw.conns
	m.gw.stmts = make(map[uint32]Stmt)
	m.gw.conns = make(map[uint32]Conn)
	m.gw.mu.Unlock()

	for _, s := range stmts {
		s.Finalize()
	}
	for _, c := range conns {
		c.Close()
	}
}

// ---------------------------------------------------------------------------
// Connection lifecycle
// ---------------------------------------------------------------------------

// open - Open a database file, creating it if needed.
// Stack: (path:str -- db:handle ok)!
func (m *Module) open(ctx *stack.Context) *Error {
	path, aerr := popString(ctx, "open", "string path")
	if aerr != nil {
		return aerr
	}

	conn, err := m.engine.Open(path)
	if err != nil {
		// The engine cleans up its partial state before returning; a
		// nil Conn means there is nothing left to release here.
		return nativeErr(CodeOpenError, "open", err)
	}
	if err := m.applyConfig(conn); err != nil {
		conn.Close()
		return nativeErr(CodeOpenError, "open", err)
	}

	h := m.gw.addConn(conn)
	log.Debugf("opened %s as handle %d", path, h.ID)
	ctx.Stack.PushHandle(h)
	pushOK(ctx)
	return nil
}

// close - Close a database connection.
// Stack: (db:handle -- )
//
// Best-effort: an invalid operand or an already-closed handle is a
// silent no-op, so cleanup code paths never double-report an earlier
// failure.
func (m *Module) close(ctx *stack.Context) *Error {
	h, err := ctx.Stack.PopHandle(ClassConn)
	if err != nil {
		return nil
	}
	if conn, ok := m.gw.removeConn(h); ok {
		conn.Close()
		log.Debugf("closed handle %d", h.ID)
	}
	return nil
}

// exec - Run a complete statement or batch with no row results.
// Stack: (sql:str db:handle -- ok)!
func (m *Module) exec(ctx *stack.Context) *Error {
	conn, aerr := m.popConn(ctx, "exec")
	if aerr != nil {
		return aerr
	}
	sql, aerr := popString(ctx, "exec", "SQL string")
	if aerr != nil {
		return aerr
	}

	if err := conn.Exec(sql); err != nil {
		return nativeErr(CodeExecError, "exec", err)
	}
	pushOK(ctx)
	return nil
}

// ---------------------------------------------------------------------------
// Statement lifecycle
// ---------------------------------------------------------------------------

// prepare - Compile one statement.
// Stack: (sql:str db:handle -- stmt:handle ok)!
func (m *Module) prepare(ctx *stack.Context) *Error {
	conn, aerr := m.popConn(ctx, "prepare")
	if aerr != nil {
		return aerr
	}
	sql, aerr := popString(ctx, "prepare", "SQL string")
	if aerr != nil {
		return aerr
	}

	stmt, err := conn.Prepare(sql)
	if err != nil {
		return nativeErr(CodePrepareError, "prepare", err)
	}
	h := m.gw.addStmt(stmt)
	ctx.Stack.PushHandle(h)
	pushOK(ctx)
	return nil
}

// bind_text - Bind a string parameter.
// Stack: (value:str index:int stmt:handle -- ok)!
func (m *Module) bindText(ctx *stack.Context) *Error {
	stmt, aerr := m.popStmt(ctx, "bind_text")
	if aerr != nil {
		return aerr
	}
	index, aerr := popInt(ctx, "bind_text", "integer index")
	if aerr != nil {
		return aerr
	}
	value, aerr := popString(ctx, "bind_text", "string value")
	if aerr != nil {
		return aerr
	}

	if err := stmt.BindText(int(index), value); err != nil {
		return nativeErr(CodeBindError, "bind_text", err)
	}
	pushOK(ctx)
	return nil
}

// bind_int - Bind an integer parameter.
// Stack: (value:int index:int stmt:handle -- ok)!
func (m *Module) bindInt(ctx *stack.Context) *Error {
	stmt, aerr := m.popStmt(ctx, "bind_int")
	if aerr != nil {
		return aerr
	}
	index, aerr := popInt(ctx, "bind_int", "integer index")
	if aerr != nil {
		return aerr
	}
	value, aerr := popInt(ctx, "bind_int", "integer value")
	if aerr != nil {
		return aerr
	}

	if err := stmt.BindInt(int(index), value); err != nil {
		return nativeErr(CodeBindError, "bind_int", err)
	}
	pushOK(ctx)
	return nil
}

// bind_float - Bind a float parameter.
// Stack: (value:float index:int stmt:handle -- ok)!
func (m *Module) bindFloat(ctx *stack.Context) *Error {
	stmt, aerr := m.popStmt(ctx, "bind_float")
	if aerr != nil {
		return aerr
	}
	index, aerr := popInt(ctx, "bind_float", "integer index")
	if aerr != nil {
		return aerr
	}
	value, aerr := popFloat(ctx, "bind_float", "float value")
	if aerr != nil {
		return aerr
	}

	if err := stmt.BindFloat(int(index), value); err != nil {
		return nativeErr(CodeBindError, "bind_float", err)
	}
	pushOK(ctx)
	return nil
}

// bind_null - Bind NULL to a parameter.
// Stack: (index:int stmt:handle -- ok)!
func (m *Module) bindNull(ctx *stack.Context) *Error {
	stmt, aerr := m.popStmt(ctx, "bind_null")
	if aerr != nil {
		return aerr
	}
	index, aerr := popInt(ctx, "bind_null", "integer index")
	if aerr != nil {
		return aerr
	}

	if err := stmt.BindNull(int(index)); err != nil {
		return nativeErr(CodeBindError, "bind_null", err)
	}
	pushOK(ctx)
	return nil
}

// step - Advance the statement's cursor.
// Stack: (stmt:handle -- has_row:int ok)!
//
// has_row is 1 when a row is available for column reads, 0 when
// execution completed. Every other native outcome (constraint, busy,
// misuse) collapses to STEP_ERROR; the sub-reason survives only in the
// message text.
func (m *Module) step(ctx *stack.Context) *Error {
	stmt, aerr := m.popStmt(ctx, "step")
	if aerr != nil {
		return aerr
	}

	hasRow, err := stmt.Step()
	if err != nil {
		return nativeErr(CodeStepError, "step", err)
	}
	if hasRow {
		ctx.Stack.PushInt(1)
	} else {
		ctx.Stack.PushInt(0)
	}
	pushOK(ctx)
	return nil
}

// reset - Return a statement to its pre-execution state and clear all
// bound parameters.
// Stack: (stmt:handle -- ok)!
//
// Always reports OK regardless of the native return, mirroring the
// engine's own permissive reset semantics.
func (m *Module) reset(ctx *stack.Context) *Error {
	stmt, aerr := m.popStmt(ctx, "reset")
	if aerr != nil {
		return aerr
	}

	stmt.Reset()
	pushOK(ctx)
	return nil
}

// finalize - Release a prepared statement.
// Stack: (stmt:handle -- )
//
// Best-effort: an invalid or non-handle operand is silently consumed,
// a deliberate leniency for cleanup code paths.
func (m *Module) finalize(ctx *stack.Context) *Error {
	h, err := ctx.Stack.PopHandle(ClassStmt)
	if err != nil {
		return nil
	}
	if stmt, ok := m.gw.removeStmt(h); ok {
		stmt.Finalize()
		log.Debugf("finalized statement %d", h.ID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Row accessors
//
// Valid only immediately after a step that reported has_row=1. These
// are best-effort queries, not fallible operations: no status is
// pushed, and misuse of any sort degrades to a zero-valued or
// empty-string default.
// ---------------------------------------------------------------------------

// column_count - Number of result columns.
// Stack: (stmt:handle -- count:int)
func (m *Module) columnCount(ctx *stack.Context) *Error {
	stmt, ok := m.popStmtLenient(ctx)
	if !ok {
		ctx.Stack.PushInt(0)
		return nil
	}
	ctx.Stack.PushInt(int64(stmt.ColumnCount()))
	return nil
}

// column_name - Name of a result column.
// Stack: (index:int stmt:handle -- name:str)
func (m *Module) columnName(ctx *stack.Context) *Error {
	stmt, ok := m.popStmtLenient(ctx)
	if !ok {
		ctx.Stack.PushString("")
		return nil
	}
	index, ok := popIntLenient(ctx)
	if !ok || index < 0 || index >= int64(stmt.ColumnCount()) {
		ctx.Stack.PushString("")
		return nil
	}
	ctx.Stack.PushString(stmt.ColumnName(int(index)))
	return nil
}

// column_type - Normalized type of a column value.
// Stack: (index:int stmt:handle -- type:int)
//
// Pushes one of the ColType codes for a valid column, 0 on misuse.
func (m *Module) columnType(ctx *stack.Context) *Error {
	stmt, ok := m.popStmtLenient(ctx)
	if !ok {
		ctx.Stack.PushInt(0)
		return nil
	}
	index, ok := popIntLenient(ctx)
	if !ok || index < 0 || index >= int64(stmt.ColumnCount()) {
		ctx.Stack.PushInt(0)
		return nil
	}
	ctx.Stack.PushInt(int64(stmt.ColumnType(int(index))))
	return nil
}

// column_int - Integer value of a column.
// Stack: (index:int stmt:handle -- value:int)
func (m *Module) columnInt(ctx *stack.Context) *Error {
	stmt, ok := m.popStmtLenient(ctx)
	if !ok {
		ctx.Stack.PushInt(0)
		return nil
	}
	index, ok := popIntLenient(ctx)
	if !ok || index < 0 || index >= int64(stmt.ColumnCount()) {
		ctx.Stack.PushInt(0)
		return nil
	}
	ctx.Stack.PushInt(stmt.ColumnInt(int(index)))
	return nil
}

// column_float - Float value of a column.
// Stack: (index:int stmt:handle -- value:float)
func (m *Module) columnFloat(ctx *stack.Context) *Error {
	stmt, ok := m.popStmtLenient(ctx)
	if !ok {
		ctx.Stack.PushFloat(0)
		return nil
	}
	index, ok := popIntLenient(ctx)
	if !ok || index < 0 || index >= int64(stmt.ColumnCount()) {
		ctx.Stack.PushFloat(0)
		return nil
	}
	ctx.Stack.PushFloat(stmt.ColumnFloat(int(index)))
	return nil
}

// column_text - Text value of a column.
// Stack: (index:int stmt:handle -- value:str)
func (m *Module) columnText(ctx *stack.Context) *Error {
	stmt, ok := m.popStmtLenient(ctx)
	if !ok {
		ctx.Stack.PushString("")
		return nil
	}
	index, ok := popIntLenient(ctx)
	if !ok || index < 0 || index >= int64(stmt.ColumnCount()) {
		ctx.Stack.PushString("")
		return nil
	}
	ctx.Stack.PushString(stmt.ColumnText(int(index)))
	return nil
}

// ---------------------------------------------------------------------------
// Post-exec introspection
// ---------------------------------------------------------------------------

// last_insert_rowid - Rowid of the most recent successful INSERT.
// Stack: (db:handle -- rowid:int)
func (m *Module) lastInsertRowid(ctx *stack.Context) *Error {
	conn, ok := m.popConnLenient(ctx)
	if !ok {
		ctx.Stack.PushInt(0)
		return nil
	}
	ctx.Stack.PushInt(conn.LastInsertRowID())
	return nil
}

// changes - Rows modified by the most recent statement.
// Stack: (db:handle -- changes:int)
func (m *Module) changes(ctx *stack.Context) *Error {
	conn, ok := m.popConnLenient(ctx)
	if !ok {
		ctx.Stack.PushInt(0)
		return nil
	}
	ctx.Stack.PushInt(conn.Changes())
	return nil
}

// ---------------------------------------------------------------------------
// Transactions
//
// Issued as plain SQL through the exec path. No session bookkeeping:
// nested or out-of-order transaction calls are left to the engine's
// own error reporting.
// ---------------------------------------------------------------------------

// begin - Begin a transaction.
// Stack: (db:handle -- ok)!
func (m *Module) begin(ctx *stack.Context) *Error {
	return m.txExec(ctx, "begin", "BEGIN TRANSACTION")
}

// commit - Commit the current transaction.
// Stack: (db:handle -- ok)!
func (m *Module) commit(ctx *stack.Context) *Error {
	return m.txExec(ctx, "commit", "COMMIT")
}

// rollback - Roll back the current transaction.
// Stack: (db:handle -- ok)!
func (m *Module) rollback(ctx *stack.Context) *Error {
	return m.txExec(ctx, "rollback", "ROLLBACK")
}

func (m *Module) txExec(ctx *stack.Context, op, sql string) *Error {
	conn, aerr := m.popConn(ctx, op)
	if aerr != nil {
		return aerr
	}
	if err := conn.Exec(sql); err != nil {
		return nativeErr(CodeExecError, op, err)
	}
	pushOK(ctx)
	return nil
}
