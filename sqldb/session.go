// Package sqldb implements bench.Session over database/sql for the
// drivers that register there.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hashicorp/go-multierror"

	"commitdata-bench/bench"
)

// BatchMode is how Flush sends a batch to the server.
type BatchMode int

const (
	// MultiValues sends INSERT ... VALUES (..), (..) statements.
	MultiValues BatchMode = iota
	// ArrayBind executes the single-row insert once with slice binds.
	ArrayBind
)

const maxRowsPerStatement = 500

type Session struct {
	db   *sql.DB
	conn *sql.Conn
	tx   *sql.Tx
	mode BatchMode
}

// Open pins one connection and starts the first transaction on it.
func Open(ctx context.Context, driver, dsn string, mode BatchMode) (*Session, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	conn, err := db.Conn(pingCtx)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Session{db: db, conn: conn, mode: mode}
	if err := s.begin(ctx); err != nil {
		conn.Close()
		db.Close()
		return nil, err
	}
	return s, nil
}

// begin detaches the transaction from ctx cancellation; it lives until the
// next Commit or Rollback no matter how short the caller's context is.
func (s *Session) begin(ctx context.Context) error {
	tx, err := s.conn.BeginTx(context.WithoutCancel(ctx), nil)
	if err != nil {
		return err
	}
	s.tx = tx
	return nil
}

func (s *Session) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := s.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	// DDL has no meaningful count on some drivers.
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *Session) Flush(ctx context.Context, ins bench.Insert, rows []bench.Row) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	if s.mode == ArrayBind {
		ids := make([]int64, len(rows))
		txts := make([]string, len(rows))
		for i, r := range rows {
			ids[i] = r.ID
			txts[i] = r.Text
		}
		return s.Exec(ctx, ins.SQL(), ids, txts)
	}

	var total int64
	for start := 0; start < len(rows); start += maxRowsPerStatement {
		end := min(start+maxRowsPerStatement, len(rows))
		chunk := rows[start:end]
		n, err := s.Exec(ctx, ins.Multi(len(chunk)), ins.Args(chunk)...)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (s *Session) Commit(ctx context.Context) error {
	if err := s.tx.Commit(); err != nil {
		return err
	}
	return s.begin(ctx)
}

// Rollback moves to a fresh connection when the pinned one died, as it
// does after some drivers cancel a statement. The server drops the open
// transaction together with the connection.
func (s *Session) Rollback(ctx context.Context) error {
	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		if s.conn.PingContext(ctx) == nil {
			return err
		}
		return s.repin(ctx)
	}
	return s.begin(ctx)
}

func (s *Session) repin(ctx context.Context) error {
	// the dead connection only reports sql.ErrConnDone here
	_ = s.conn.Close()
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return err
	}
	s.conn = conn
	return s.begin(ctx)
}

// Close rolls back whatever is still open and releases the connection.
func (s *Session) Close() error {
	var result *multierror.Error
	if s.tx != nil {
		if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			result = multierror.Append(result, err)
		}
	}
	if err := s.conn.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := s.db.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
