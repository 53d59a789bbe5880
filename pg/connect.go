package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"commitdata-bench/bench"
)

var Dialect = bench.Dialect{
	Name:        "postgres",
	IDType:      "BIGINT",
	TextType:    "VARCHAR(255)",
	Placeholder: bench.Dollar,
	ErrorTable:  bench.Table + "_ERR",
}

func Connect(ctx context.Context, c bench.ConnConfig, sslmode string) (*pgxpool.Pool, error) {
	if sslmode == "" {
		sslmode = "disable"
	}
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Service, sslmode)

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	// One session for the whole benchmark.
	config.MaxConns = 1
	config.MinConns = 1

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Session implements bench.Session on a single pooled connection.
// Batches are queued into a pgx.Batch and sent in one round trip.
type Session struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func Open(ctx context.Context, c bench.ConnConfig) (*Session, error) {
	pool, err := Connect(ctx, c, "disable")
	if err != nil {
		return nil, err
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &Session{pool: pool, tx: tx}, nil
}

func (s *Session) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := s.tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Session) Flush(ctx context.Context, ins bench.Insert, rows []bench.Row) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	query := ins.SQL()
	b := &pgx.Batch{}
	for _, r := range rows {
		b.Queue(query, r.ID, r.Text)
	}

	br := s.tx.SendBatch(ctx, b)
	var total int64
	for range rows {
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			return total, err
		}
		total += tag.RowsAffected()
	}
	return total, br.Close()
}

func (s *Session) Commit(ctx context.Context) error {
	if err := s.tx.Commit(ctx); err != nil {
		return err
	}
	return s.begin(ctx)
}

// Rollback also recovers a session whose connection pgx closed after a
// cancelled query: the next transaction starts on a fresh pooled connection.
func (s *Session) Rollback(ctx context.Context) error {
	conn := s.tx.Conn()
	if err := s.tx.Rollback(ctx); !rolledBack(err, conn.IsClosed()) {
		return err
	}
	return s.begin(ctx)
}

// rolledBack reports whether the transaction is gone after a rollback
// returned err. A dead connection takes its transaction with it.
func rolledBack(err error, connClosed bool) bool {
	return err == nil || errors.Is(err, pgx.ErrTxClosed) || connClosed
}

func (s *Session) begin(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	s.tx = tx
	return nil
}

func (s *Session) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	if s.tx != nil {
		conn := s.tx.Conn()
		if rerr := s.tx.Rollback(ctx); !rolledBack(rerr, conn.IsClosed()) {
			err = rerr
		}
	}
	s.pool.Close()
	return err
}
