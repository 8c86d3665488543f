package sqlite

import (
	"sync"

	"github.com/quill-lang/quill-sqlite/stack"
)

// Handle classes for the two native resource kinds this module owns.
// The class tag makes it impossible to pass a statement handle where a
// connection handle is expected: the mismatch is caught at pop time.
const (
	ClassConn stack.HandleClass = 1
	ClassStmt stack.HandleClass = 2
)

// gateway owns the mapping from stack handles to live native resources.
// A handle is valid from the registering call (open, prepare) until the
// call that removes it (close, finalize); after removal the ID is never
// reused, so a stale handle looks up to nothing rather than to a
// recycled resource.
type gateway struct {
	mu       sync.Mutex
	conns    map[uint32]Conn
	stmts    map[uint32]Stmt
	nextConn uint32
	nextStmt uint32
}

func newGateway() *gateway {
	return &gateway{
		conns: make(map[uint32]Conn),
		stmts: make(map[uint32]Stmt),
	}
}

// addConn registers a connection and returns its handle.
func (g *gateway) addConn(c Conn) stack.Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextConn++
	g.conns[g.nextConn] = c
	return stack.Handle{Class: ClassConn, ID: g.nextConn}
}

// conn resolves a connection handle. ok is false for stale handles.
func (g *gateway) conn(h stack.Handle) (Conn, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.conns[h.ID]
	return c, ok
}

// removeConn unregisters a connection, returning it for the final
// native close. A second remove of the same handle reports ok=false,
// which is what makes double-close a harmless no-op.
func (g *gateway) removeConn(h stack.Handle) (Conn, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.conns[h.ID]
	if ok {
		delete(g.conns, h.ID)
	}
	return c, ok
}

// addStmt registers a prepared statement and returns its handle.
func (g *gateway) addStmt(s Stmt) stack.Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextStmt++
	g.stmts[g.nextStmt] = s
	return stack.Handle{Class: ClassStmt, ID: g.nextStmt}
}

// stmt resolves a statement handle. ok is false for stale handles.
func (g *gateway) stmt(h stack.Handle) (Stmt, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.stmts[h.ID]
	return s, ok
}

// removeStmt unregisters a statement for finalization.
func (g *gateway) removeStmt(h stack.Handle) (Stmt, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.stmts[h.ID]
	if ok {
		delete(g.stmts, h.ID)
	}
	return s, ok
}

// openConns reports the number of live connections.
func (g *gateway) openConns() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.conns)
}

// openStmts reports the number of live statements.
func (g *gateway) openStmts() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.stmts)
}
