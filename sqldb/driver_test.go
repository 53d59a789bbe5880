package sqldb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
)

// stubDriver is a database/sql driver whose connections can die the way
// network drivers' do when a statement is cancelled.
type stubDriver struct {
	mu    sync.Mutex
	opens int
	execs []string
}

const stubDriverName = "sqldb-stub"

var stub = &stubDriver{}

func init() {
	sql.Register(stubDriverName, stub)
}

func (d *stubDriver) Open(string) (driver.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opens++
	return &stubConn{d: d}, nil
}

func (d *stubDriver) reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opens = 0
	d.execs = nil
}

func (d *stubDriver) stats() (int, []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens, append([]string(nil), d.execs...)
}

var errRollback = errors.New("rollback refused")

type stubConn struct {
	d            *stubDriver
	dead         bool
	failRollback bool
}

func (c *stubConn) ExecContext(ctx context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	if c.dead {
		return nil, driver.ErrBadConn
	}
	switch query {
	case "WAIT":
		<-ctx.Done()
		c.dead = true
		return nil, ctx.Err()
	case "BREAK ROLLBACK":
		c.failRollback = true
	}
	c.d.mu.Lock()
	c.d.execs = append(c.d.execs, query)
	c.d.mu.Unlock()
	return driver.RowsAffected(1), nil
}

func (c *stubConn) Ping(context.Context) error {
	if c.dead {
		return driver.ErrBadConn
	}
	return nil
}

func (c *stubConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}

func (c *stubConn) Close() error { return nil }

func (c *stubConn) Begin() (driver.Tx, error) {
	if c.dead {
		return nil, driver.ErrBadConn
	}
	return &stubTx{c: c}, nil
}

type stubTx struct {
	c *stubConn
}

func (t *stubTx) Commit() error {
	if t.c.dead {
		return errors.New("invalid connection")
	}
	return nil
}

func (t *stubTx) Rollback() error {
	if t.c.dead {
		return errors.New("invalid connection")
	}
	if t.c.failRollback {
		t.c.failRollback = false
		return errRollback
	}
	return nil
}
