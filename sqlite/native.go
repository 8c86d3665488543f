package sqlite

import (
	"fmt"
	"strings"

	"zombiezen.com/go/sqlite"
)

// nativeEngine is the production Engine backed by the embedded SQLite
// library (pure-Go port; no cgo).
type nativeEngine struct{}

// NewEngine returns the production SQLite engine.
func NewEngine() Engine {
	return nativeEngine{}
}

func (nativeEngine) Open(path string) (Conn, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite|sqlite.OpenCreate)
	if err != nil {
		return nil, err
	}
	return &nativeConn{conn: conn}, nil
}

type nativeConn struct {
	conn *sqlite.Conn
}

func (c *nativeConn) Close() error {
	return c.conn.Close()
}

// Exec prepares and steps each statement in the batch to completion,
// discarding rows. Trailing-bytes continuation handles multi-statement
// scripts the way the native exec interface does.
func (c *nativeConn) Exec(sql string) error {
	for {
		sql = skipLeadingNoise(sql)
		if sql == "" {
			return nil
		}
		stmt, trailing, err := c.conn.PrepareTransient(sql)
		if err != nil {
			return err
		}
		for {
			hasRow, err := stmt.Step()
			if err != nil {
				stmt.Finalize()
				return err
			}
			if !hasRow {
				break
			}
		}
		if err := stmt.Finalize(); err != nil {
			return err
		}
		sql = sql[len(sql)-trailing:]
	}
}

// skipLeadingNoise advances past the whitespace, stray semicolons and
// SQL comments between the statements of a batch. The native exec
// interface skips these; preparing such a segment would yield a
// statement with no native handle, and stepping that reports misuse.
func skipLeadingNoise(sql string) string {
	for {
		sql = strings.TrimSpace(sql)
		switch {
		case strings.HasPrefix(sql, ";"):
			sql = sql[1:]
		case strings.HasPrefix(sql, "--"):
			i := strings.IndexByte(sql, '\n')
			if i < 0 {
				return ""
			}
			sql = sql[i+1:]
		case strings.HasPrefix(sql, "/*"):
			i := strings.Index(sql[2:], "*/")
			if i < 0 {
				// Unterminated comment; let prepare report it.
				return sql
			}
			sql = sql[2+i+2:]
		default:
			return sql
		}
	}
}

func (c *nativeConn) Prepare(sql string) (Stmt, error) {
	stmt, _, err := c.conn.PrepareTransient(sql)
	if err != nil {
		return nil, err
	}
	return &nativeStmt{stmt: stmt}, nil
}

func (c *nativeConn) LastInsertRowID() int64 {
	return c.conn.LastInsertRowID()
}

func (c *nativeConn) Changes() int64 {
	return int64(c.conn.Changes())
}

type nativeStmt struct {
	stmt *sqlite.Stmt
}

// checkParam validates a 1-based bind index against the statement's
// parameter count. The underlying library defers range errors to Step;
// bind failures must surface at bind time.
func (s *nativeStmt) checkParam(index int) error {
	if n := s.stmt.BindParamCount(); index < 1 || index > n {
		return fmt.Errorf("parameter index %d out of range [1,%d]", index, n)
	}
	return nil
}

func (s *nativeStmt) BindText(index int, value string) error {
	if err := s.checkParam(index); err != nil {
		return err
	}
	s.stmt.BindText(index, value)
	return nil
}

func (s *nativeStmt) BindInt(index int, value int64) error {
	if err := s.checkParam(index); err != nil {
		return err
	}
	s.stmt.BindInt64(index, value)
	return nil
}

func (s *nativeStmt) BindFloat(index int, value float64) error {
	if err := s.checkParam(index); err != nil {
		return err
	}
	s.stmt.BindFloat(index, value)
	return nil
}

func (s *nativeStmt) BindNull(index int) error {
	if err := s.checkParam(index); err != nil {
		return err
	}
	s.stmt.BindNull(index)
	return nil
}

func (s *nativeStmt) Step() (bool, error) {
	return s.stmt.Step()
}

func (s *nativeStmt) Reset() error {
	if err := s.stmt.Reset(); err != nil {
		return err
	}
	return s.stmt.ClearBindings()
}

func (s *nativeStmt) Finalize() error {
	return s.stmt.Finalize()
}

func (s *nativeStmt) ColumnCount() int {
	return s.stmt.ColumnCount()
}

func (s *nativeStmt) ColumnName(index int) string {
	return s.stmt.ColumnName(index)
}

func (s *nativeStmt) ColumnType(index int) ColType {
	switch s.stmt.ColumnType(index) {
	case sqlite.TypeInteger:
		return TypeInteger
	case sqlite.TypeFloat:
		return TypeFloat
	case sqlite.TypeText:
		return TypeText
	case sqlite.TypeBlob:
		return TypeBlob
	default:
		return TypeNull
	}
}

func (s *nativeStmt) ColumnInt(index int) int64 {
	return s.stmt.ColumnInt64(index)
}

func (s *nativeStmt) ColumnFloat(index int) float64 {
	return s.stmt.ColumnFloat(index)
}

func (s *nativeStmt) ColumnText(index int) string {
	return s.stmt.ColumnText(index)
}
