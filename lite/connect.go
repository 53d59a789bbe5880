// Package lite runs the benchmark against a local SQLite file.
package lite

import (
	"context"
	"errors"

	_ "modernc.org/sqlite"

	"commitdata-bench/bench"
	"commitdata-bench/sqldb"
)

var Dialect = bench.Dialect{
	Name:        "sqlite",
	IDType:      "INTEGER",
	TextType:    "VARCHAR(255)",
	Placeholder: bench.QuestionMark,
	ErrorTable:  bench.Table + "_ERR",
}

func DSN(path string) string {
	return path + "?_pragma=busy_timeout(5000)"
}

// Open uses c.Service as the database file. Other fields are ignored.
func Open(ctx context.Context, c bench.ConnConfig) (*sqldb.Session, error) {
	if c.Service == "" {
		return nil, errors.New("sqlite needs a database file")
	}
	return sqldb.Open(ctx, "sqlite", DSN(c.Service), sqldb.MultiValues)
}
