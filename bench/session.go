package bench

import "context"

// Session is one database connection with auto-commit off. A transaction
// is always open: Commit and Rollback end it and start the next one.
type Session interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	// Flush sends rows as one batch using ins and returns rows affected.
	Flush(ctx context.Context, ins Insert, rows []Row) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	Close() error
}
