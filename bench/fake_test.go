package bench

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var errFake = errors.New("fake failure")

var testDialect = Dialect{
	Name:        "test",
	IDType:      "INTEGER",
	TextType:    "VARCHAR(255)",
	Placeholder: QuestionMark,
	AppendHint:  "/*+ APPEND */",
	ErrorTable:  "COMMITDATA_ERR",
}

var nativeDialect = Dialect{
	Name:            "native",
	IDType:          "NUMBER",
	TextType:        "VARCHAR2(255)",
	Placeholder:     Colon,
	AppendHint:      "/*+ APPEND_VALUES */",
	ErrorTable:      "ERR$_COMMITDATA",
	ErrorLogDDL:     "BEGIN DBMS_ERRLOG.CREATE_ERROR_LOG('COMMITDATA', 'ERR$_COMMITDATA'); END;",
	LogErrorsClause: "LOG ERRORS INTO ERR$_COMMITDATA REJECT LIMIT UNLIMITED",
	Purge:           "PURGE USER_RECYCLEBIN",
}

// fakeSession records what the loader and schema send. Rows only become
// visible in committed after Commit. Rows listed in reject fail.
type fakeSession struct {
	execs     []string
	flushes   [][]Row
	pending   []Row
	committed []Row
	commits   int
	rollbacks int
	reject    map[int64]bool
	failExec  string
	closed    bool
}

func (f *fakeSession) isLoadInsert(query string) bool {
	return strings.HasPrefix(query, "INSERT") && strings.Contains(query, "INTO "+Table+" ")
}

func (f *fakeSession) Exec(_ context.Context, query string, args ...any) (int64, error) {
	f.execs = append(f.execs, query)
	if f.failExec != "" && strings.Contains(query, f.failExec) {
		return 0, errFake
	}
	if f.isLoadInsert(query) {
		id := args[0].(int64)
		if f.reject[id] {
			return 0, fmt.Errorf("row %d: %w", id, errFake)
		}
		f.pending = append(f.pending, Row{ID: id, Text: args[1].(string)})
		return 1, nil
	}
	return 0, nil
}

func (f *fakeSession) Flush(_ context.Context, ins Insert, rows []Row) (int64, error) {
	batch := append([]Row(nil), rows...)
	f.flushes = append(f.flushes, batch)

	var ok []Row
	for _, r := range batch {
		if f.reject[r.ID] {
			if ins.Clause == "" {
				return 0, fmt.Errorf("row %d: %w", r.ID, errFake)
			}
			continue
		}
		ok = append(ok, r)
	}
	f.pending = append(f.pending, ok...)
	return int64(len(ok)), nil
}

func (f *fakeSession) Commit(context.Context) error {
	f.committed = append(f.committed, f.pending...)
	f.pending = nil
	f.commits++
	return nil
}

func (f *fakeSession) Rollback(context.Context) error {
	f.pending = nil
	f.rollbacks++
	return nil
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func expectedRows(n int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{ID: int64(i), Text: Filler}
	}
	return rows
}
