package bench

import (
	"context"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

const (
	batchSavepoint = "load_batch"
	rowSavepoint   = "load_row"
	maxErrMesg     = 2000
)

// Loader runs one strategy against an already prepared scratch table.
type Loader struct {
	Session Session
	Dialect Dialect
	Out     io.Writer
	Log     logrus.FieldLogger
}

type loadRun struct {
	*Loader
	plan Plan
	ins  Insert
	res  *Result
}

// Load prints the banner, inserts plan.Iterations rows under the plan's
// commit discipline and prints the elapsed time. The timer covers the
// insert loop and the commits only.
func (l *Loader) Load(ctx context.Context, p Plan) (Result, error) {
	res := Result{Label: p.Strategy.String(), Strategy: p.Strategy, Rows: p.Iterations}
	if p.Strategy == StrategyNone {
		return res, NewError(KindArgument, "load", fmt.Errorf("no load strategy selected"))
	}
	if p.Strategy.Batched() && p.BatchSize <= 0 {
		return res, NewError(KindArgument, "load", fmt.Errorf("batch size must be positive, got %d", p.BatchSize))
	}

	run := &loadRun{
		Loader: l,
		plan:   p,
		ins:    l.Dialect.Insert(p.DirectPath, p.Strategy.LogsErrors()),
		res:    &res,
	}

	fmt.Fprintln(l.Out, p.Banner())
	l.Log.WithFields(logrus.Fields{
		"strategy":   p.Strategy,
		"iterations": p.Iterations,
		"batch":      p.BatchSize,
		"insert":     run.ins.SQL(),
	}).Info("load started")

	start := time.Now()
	var err error
	if p.Strategy.Batched() {
		err = run.batched(ctx)
	} else {
		err = run.single(ctx)
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}

	if secs := res.Duration.Seconds(); secs > 0 {
		res.RowsPerSec = float64(res.Loaded()) / secs
	}
	if res.Rejected > 0 {
		l.Log.Warnf("%d rows diverted to %s", res.Rejected, l.Dialect.ErrorTable)
	}
	fmt.Fprintf(l.Out, "Data loaded in: %dms\n", res.Duration.Milliseconds())
	return res, nil
}

func (r *loadRun) single(ctx context.Context) error {
	query := r.ins.SQL()
	everyRow := r.plan.Strategy == CommitEveryRow
	for i := 0; i < r.plan.Iterations; i++ {
		if _, err := r.Session.Exec(ctx, query, int64(i), Filler); err != nil {
			return NewError(KindInsert, fmt.Sprintf("row %d", i), err)
		}
		if everyRow {
			if err := r.commit(ctx); err != nil {
				return err
			}
		}
	}
	if everyRow {
		return nil
	}
	return r.commit(ctx)
}

// batched queues row i and then flushes when i is a multiple of the batch
// size, so flushes land on 0, size, 2*size, ... with a final drain.
func (r *loadRun) batched(ctx context.Context) error {
	size := r.plan.BatchSize
	pending := make([]Row, 0, min(size, r.plan.Iterations)+1)
	for i := 0; i < r.plan.Iterations; i++ {
		pending = append(pending, Row{ID: int64(i), Text: Filler})
		if i%size == 0 {
			if err := r.flush(ctx, pending); err != nil {
				return err
			}
			pending = pending[:0]
		}
	}
	if err := r.flush(ctx, pending); err != nil {
		return err
	}
	return r.commit(ctx)
}

func (r *loadRun) flush(ctx context.Context, rows []Row) error {
	r.res.Flushes++
	if len(rows) == 0 {
		return nil
	}
	r.Log.WithFields(logrus.Fields{"first": rows[0].ID, "rows": len(rows)}).Debug("flush")

	if !r.plan.Strategy.LogsErrors() {
		if _, err := r.Session.Flush(ctx, r.ins, rows); err != nil {
			return NewError(KindInsert, fmt.Sprintf("batch at row %d", rows[0].ID), err)
		}
		return nil
	}

	if r.Dialect.NativeErrorLog() {
		n, err := r.Session.Flush(ctx, r.ins, rows)
		if err != nil {
			return NewError(KindInsert, fmt.Sprintf("batch at row %d", rows[0].ID), err)
		}
		if rejected := len(rows) - int(n); rejected > 0 {
			r.res.Rejected += rejected
		}
		return nil
	}
	return r.divert(ctx, rows)
}

// divert sends the batch under a savepoint. If it fails the batch is
// undone and replayed row by row, moving failing rows to the error table.
func (r *loadRun) divert(ctx context.Context, rows []Row) error {
	op := fmt.Sprintf("batch at row %d", rows[0].ID)
	if err := r.exec(ctx, op, "SAVEPOINT "+batchSavepoint); err != nil {
		return err
	}
	_, ferr := r.Session.Flush(ctx, r.ins, rows)
	if ferr == nil {
		return r.exec(ctx, op, "RELEASE SAVEPOINT "+batchSavepoint)
	}

	r.Log.WithError(ferr).Debugf("batch at row %d rejected, replaying row by row", rows[0].ID)
	if err := r.exec(ctx, op, "ROLLBACK TO SAVEPOINT "+batchSavepoint); err != nil {
		return err
	}

	query := r.ins.SQL()
	errInsert := r.Dialect.ErrorLogInsertSQL()
	for _, row := range rows {
		rop := fmt.Sprintf("row %d", row.ID)
		if err := r.exec(ctx, rop, "SAVEPOINT "+rowSavepoint); err != nil {
			return err
		}
		if _, err := r.Session.Exec(ctx, query, row.ID, row.Text); err != nil {
			if rerr := r.exec(ctx, rop, "ROLLBACK TO SAVEPOINT "+rowSavepoint); rerr != nil {
				return rerr
			}
			if _, lerr := r.Session.Exec(ctx, errInsert, errMesg(err), row.ID, row.Text); lerr != nil {
				return NewError(KindInsert, rop+": log rejected row", lerr)
			}
			r.res.Rejected++
		}
		if err := r.exec(ctx, rop, "RELEASE SAVEPOINT "+rowSavepoint); err != nil {
			return err
		}
	}
	return r.exec(ctx, op, "RELEASE SAVEPOINT "+batchSavepoint)
}

func (r *loadRun) exec(ctx context.Context, op, query string) error {
	if _, err := r.Session.Exec(ctx, query); err != nil {
		return NewError(KindInsert, op, err)
	}
	return nil
}

func (r *loadRun) commit(ctx context.Context) error {
	if err := r.Session.Commit(ctx); err != nil {
		return NewError(KindInsert, "commit", err)
	}
	r.res.Commits++
	return nil
}

func errMesg(err error) string {
	m := err.Error()
	if len(m) <= maxErrMesg {
		return m
	}
	n := maxErrMesg
	for n > 0 && !utf8.RuneStart(m[n]) {
		n--
	}
	return m[:n]
}
