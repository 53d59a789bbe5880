package lite

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commitdata-bench/bench"
	"commitdata-bench/sqldb"
)

func openTemp(t *testing.T) (*sqldb.Session, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bench.db")
	s, err := Open(context.Background(), bench.ConnConfig{Service: path})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

// inspect opens a second connection to look at what the session committed.
func inspect(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", DSN(path))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func tables(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}

func newLoader(s bench.Session) *bench.Loader {
	logger, _ := logtest.NewNullLogger()
	return &bench.Loader{Session: s, Dialect: Dialect, Out: &bytes.Buffer{}, Log: logger}
}

func TestSetupTeardownRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)
	db := inspect(t, path)

	sc := bench.NewSchema(Dialect, true)
	require.NoError(t, sc.Setup(ctx, s))
	assert.Equal(t, []string{"COMMITDATA", "COMMITDATA_ERR"}, tables(t, db))

	require.NoError(t, sc.Teardown(ctx, s))
	assert.Empty(t, tables(t, db))
}

func TestTeardownAfterErrorLogCreateFails(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)

	_, err := s.Exec(ctx, "CREATE TABLE COMMITDATA_ERR (X INTEGER)")
	require.NoError(t, err)
	require.NoError(t, s.Commit(ctx))

	sc := bench.NewSchema(Dialect, true)
	err = sc.Setup(ctx, s)
	require.Error(t, err)
	assert.True(t, bench.IsKind(err, bench.KindSchema))

	require.NoError(t, s.Rollback(ctx))
	require.NoError(t, sc.Teardown(ctx, s))
	assert.Equal(t, []string{"COMMITDATA_ERR"}, tables(t, inspect(t, path)))
}

func TestStrategiesLoadEveryRow(t *testing.T) {
	plans := []bench.Plan{
		{Strategy: bench.CommitEveryRow, Iterations: 120},
		{Strategy: bench.CommitAtEnd, Iterations: 120},
		{Strategy: bench.BatchCommit, BatchSize: 7, Iterations: 120},
		{Strategy: bench.BatchCommit, BatchSize: 1000, Iterations: 1200},
		{Strategy: bench.BatchCommitLog, BatchSize: 7, Iterations: 120},
		{Strategy: bench.CommitAtEnd, DirectPath: true, Iterations: 10},
	}
	for _, p := range plans {
		t.Run(p.Banner(), func(t *testing.T) {
			ctx := context.Background()
			s, path := openTemp(t)

			sc := bench.NewSchema(Dialect, p.Strategy.LogsErrors())
			require.NoError(t, sc.Setup(ctx, s))

			res, err := newLoader(s).Load(ctx, p)
			require.NoError(t, err)
			assert.Equal(t, p.Iterations, res.Loaded())
			assert.Equal(t, p.Iterations, countRows(t, inspect(t, path), bench.Table))
		})
	}
}

func TestCommitEveryRowAndAtEndLoadSameRows(t *testing.T) {
	load := func(strategy bench.Strategy) [][2]any {
		ctx := context.Background()
		s, path := openTemp(t)
		require.NoError(t, bench.NewSchema(Dialect, false).Setup(ctx, s))
		_, err := newLoader(s).Load(ctx, bench.Plan{Strategy: strategy, Iterations: 50})
		require.NoError(t, err)

		rows, err := inspect(t, path).Query("SELECT ID, TXT FROM COMMITDATA ORDER BY ID")
		require.NoError(t, err)
		defer rows.Close()

		var out [][2]any
		for rows.Next() {
			var id int64
			var txt string
			require.NoError(t, rows.Scan(&id, &txt))
			out = append(out, [2]any{id, txt})
		}
		require.NoError(t, rows.Err())
		return out
	}

	every := load(bench.CommitEveryRow)
	atEnd := load(bench.CommitAtEnd)
	require.Len(t, every, 50)
	assert.Equal(t, every, atEnd)
	assert.Equal(t, [2]any{int64(49), bench.Filler}, every[49])
}

func TestErrorLogDivertsRejectedRows(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)

	sc := bench.NewSchema(Dialect, true)
	require.NoError(t, sc.Setup(ctx, s))
	_, err := s.Exec(ctx, `CREATE TRIGGER commitdata_reject BEFORE INSERT ON COMMITDATA
		WHEN NEW.ID % 4 = 1 BEGIN SELECT RAISE(ABORT, 'rejected row'); END`)
	require.NoError(t, err)
	require.NoError(t, s.Commit(ctx))

	res, err := newLoader(s).Load(ctx, bench.Plan{Strategy: bench.BatchCommitLog, BatchSize: 5, Iterations: 20})
	require.NoError(t, err)

	// ids 1, 5, 9, 13, 17
	assert.Equal(t, 5, res.Rejected)
	assert.Equal(t, 1, res.Commits)

	db := inspect(t, path)
	assert.Equal(t, 15, countRows(t, db, bench.Table))
	assert.Equal(t, 5, countRows(t, db, Dialect.ErrorTable))

	var mesg string
	require.NoError(t, db.QueryRow("SELECT ERR_MESG FROM COMMITDATA_ERR WHERE ID = 9").Scan(&mesg))
	assert.Contains(t, mesg, "rejected row")
}

func TestBatchCommitFailsOnRejectedRow(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)

	sc := bench.NewSchema(Dialect, false)
	require.NoError(t, sc.Setup(ctx, s))
	_, err := s.Exec(ctx, `CREATE TRIGGER commitdata_reject BEFORE INSERT ON COMMITDATA
		WHEN NEW.ID = 6 BEGIN SELECT RAISE(ABORT, 'rejected row'); END`)
	require.NoError(t, err)
	require.NoError(t, s.Commit(ctx))

	_, err = newLoader(s).Load(ctx, bench.Plan{Strategy: bench.BatchCommit, BatchSize: 3, Iterations: 10})
	require.Error(t, err)
	assert.True(t, bench.IsKind(err, bench.KindInsert))

	require.NoError(t, s.Rollback(ctx))
	assert.Equal(t, 0, countRows(t, inspect(t, path), bench.Table))
	require.NoError(t, sc.Teardown(ctx, s))
}

func TestOpenNeedsFile(t *testing.T) {
	_, err := Open(context.Background(), bench.ConnConfig{})
	assert.Error(t, err)
}
