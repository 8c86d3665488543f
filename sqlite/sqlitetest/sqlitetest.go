// Package sqlitetest provides a recording, scriptable implementation
// of the sqlite engine interfaces for tests. Every native call is
// counted, so marshalling tests can assert that a transport-tier
// failure made no native call at all, and failure fields let gateway
// tests exercise native-tier error propagation without a real
// database.
package sqlitetest

import (
	"errors"

	"github.com/quill-lang/quill-sqlite/sqlite"
)

// ErrClosed is returned by operations on a connection the test already
// closed.
var ErrClosed = errors.New("connection closed")

// Engine implements sqlite.Engine, recording every call.
type Engine struct {
	calls map[string]int

	// FailOpen, when set, makes Open fail with this error.
	FailOpen error

	// Conns holds every connection handed out, in open order.
	Conns []*Conn
}

// NewEngine returns an empty recording engine.
func NewEngine() *Engine {
	return &Engine{calls: make(map[string]int)}
}

func (e *Engine) record(method string) {
	e.calls[method]++
}

// Calls reports how many times the named native method was called.
func (e *Engine) Calls(method string) int {
	return e.calls[method]
}

// TotalCalls reports the total number of native calls made.
func (e *Engine) TotalCalls() int {
	total := 0
	for _, n := range e.calls {
		total += n
	}
	return total
}

func (e *Engine) Open(path string) (sqlite.Conn, error) {
	e.record("open")
	if e.FailOpen != nil {
		return nil, e.FailOpen
	}
	c := &Conn{engine: e, Path: path}
	e.Conns = append(e.Conns, c)
	return c, nil
}

// Conn implements sqlite.Conn.
type Conn struct {
	engine *Engine

	Path   string
	Closed bool

	// Execed collects every SQL string passed to Exec, including the
	// transaction statements issued by begin/commit/rollback.
	Execed []string

	// FailExec / FailPrepare script native-tier failures.
	FailExec    error
	FailPrepare error

	// RowID and ChangeCount are returned by the introspection calls.
	RowID       int64
	ChangeCount int64

	// Rows seeds the scripted result rows of the next prepared
	// statement.
	Rows []Row

	// Params seeds the bind parameter count of the next prepared
	// statement.
	Params int

	Stmts []*Stmt
}

// Row is one scripted result row: column names paired with values.
// Value types map to column types the way the engine's do: int64,
// float64, string, []byte, or nil.
type Row struct {
	Names  []string
	Values []any
}

func (c *Conn) Close() error {
	c.engine.record("close")
	c.Closed = true
	return nil
}

func (c *Conn) Exec(sql string) error {
	c.engine.record("exec")
	if c.Closed {
		return ErrClosed
	}
	if c.FailExec != nil {
		return c.FailExec
	}
	c.Execed = append(c.Execed, sql)
	return nil
}

func (c *Conn) Prepare(sql string) (sqlite.Stmt, error) {
	c.engine.record("prepare")
	if c.Closed {
		return nil, ErrClosed
	}
	if c.FailPrepare != nil {
		return nil, c.FailPrepare
	}
	s := &Stmt{engine: c.engine, SQL: sql, Rows: c.Rows, Params: c.Params, Bindings: make(map[int]any)}
	c.Stmts = append(c.Stmts, s)
	return s, nil
}

func (c *Conn) LastInsertRowID() int64 {
	c.engine.record("last_insert_rowid")
	return c.RowID
}

func (c *Conn) Changes() int64 {
	c.engine.record("changes")
	return c.ChangeCount
}

// Stmt implements sqlite.Stmt over scripted rows.
type Stmt struct {
	engine *Engine

	SQL      string
	Params   int
	Bindings map[int]any
	Rows     []Row

	// FailStep scripts a native step failure.
	FailStep error

	Finalized  bool
	ResetCount int

	pos int // 0 = before first row
}

func (s *Stmt) bind(index int, value any) error {
	s.engine.record("bind")
	if index < 1 || index > s.Params {
		return errors.New("bind index out of range")
	}
	s.Bindings[index] = value
	return nil
}

func (s *Stmt) BindText(index int, value string) error  { return s.bind(index, value) }
func (s *Stmt) BindInt(index int, value int64) error    { return s.bind(index, value) }
func (s *Stmt) BindFloat(index int, value float64) error { return s.bind(index, value) }
func (s *Stmt) BindNull(index int) error                { return s.bind(index, nil) }

func (s *Stmt) Step() (bool, error) {
	s.engine.record("step")
	if s.FailStep != nil {
		return false, s.FailStep
	}
	if s.pos >= len(s.Rows) {
		return false, nil
	}
	s.pos++
	return true, nil
}

func (s *Stmt) Reset() error {
	s.engine.record("reset")
	s.pos = 0
	s.ResetCount++
	s.Bindings = make(map[int]any)
	return nil
}

func (s *Stmt) Finalize() error {
	s.engine.record("finalize")
	s.Finalized = true
	return nil
}

// current returns the row the cursor sits on, or nil before the first
// step / after the last row.
func (s *Stmt) current() *Row {
	if s.pos < 1 || s.pos > len(s.Rows) {
		return nil
	}
	return &s.Rows[s.pos-1]
}

func (s *Stmt) ColumnCount() int {
	s.engine.record("column_count")
	if len(s.Rows) == 0 {
		return 0
	}
	return len(s.Rows[0].Names)
}

func (s *Stmt) ColumnName(index int) string {
	s.engine.record("column_name")
	if len(s.Rows) == 0 || index < 0 || index >= len(s.Rows[0].Names) {
		return ""
	}
	return s.Rows[0].Names[index]
}

func (s *Stmt) ColumnType(index int) sqlite.ColType {
	s.engine.record("column_type")
	row := s.current()
	if row == nil || index < 0 || index >= len(row.Values) {
		return sqlite.TypeNull
	}
	switch row.Values[index].(type) {
	case int64:
		return sqlite.TypeInteger
	case float64:
		return sqlite.TypeFloat
	case string:
		return sqlite.TypeText
	case []byte:
		return sqlite.TypeBlob
	default:
		return sqlite.TypeNull
	}
}

func (s *Stmt) ColumnInt(index int) int64 {
	s.engine.record("column_int")
	row := s.current()
	if row == nil || index < 0 || index >= len(row.Values) {
		return 0
	}
	v, _ := row.Values[index].(int64)
	return v
}

func (s *Stmt) ColumnFloat(index int) float64 {
	s.engine.record("column_float")
	row := s.current()
	if row == nil || index < 0 || index >= len(row.Values) {
		return 0
	}
	v, _ := row.Values[index].(float64)
	return v
}

func (s *Stmt) ColumnText(index int) string {
	s.engine.record("column_text")
	row := s.current()
	if row == nil || index < 0 || index >= len(row.Values) {
		return ""
	}
	switch v := row.Values[index].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}
