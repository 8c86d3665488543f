package sqlite

// Engine abstracts the native SQLite library behind the gateway. The
// production engine wraps the embedded library directly; tests install
// a recording engine to observe exactly which native calls a primitive
// makes (in particular, that transport-tier failures make none).
type Engine interface {
	// Open opens or creates the database file at path.
	Open(path string) (Conn, error)
}

// Conn is one open database connection. Connections are single-threaded:
// the VM never issues concurrent calls against the same handle.
type Conn interface {
	// Close releases the connection. Safe to call once; the gateway
	// guarantees it is never called twice for the same handle.
	Close() error

	// Exec runs a complete statement or semicolon-separated batch,
	// discarding any rows produced.
	Exec(sql string) error

	// Prepare compiles a single statement.
	Prepare(sql string) (Stmt, error)

	// LastInsertRowID reports the rowid of the most recent successful
	// INSERT on this connection.
	LastInsertRowID() int64

	// Changes reports the number of rows modified by the most recent
	// statement on this connection.
	Changes() int64
}

// Stmt is one compiled statement bound to a Conn. Bind indexes are
// 1-based, column indexes 0-based, both following the native convention.
type Stmt interface {
	BindText(index int, value string) error
	BindInt(index int, value int64) error
	BindFloat(index int, value float64) error
	BindNull(index int) error

	// Step advances the statement's cursor. It reports true when a row
	// is available for column reads and false when execution completed.
	Step() (bool, error)

	// Reset returns the statement to its pre-execution state and
	// clears all bound parameter values.
	Reset() error

	// Finalize releases the statement. Called at most once per handle.
	Finalize() error

	ColumnCount() int
	ColumnName(index int) string
	ColumnType(index int) ColType
	ColumnInt(index int) int64
	ColumnFloat(index int) float64
	ColumnText(index int) string
}
