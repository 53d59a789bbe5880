package my

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"commitdata-bench/bench"
	"commitdata-bench/sqldb"
)

var Dialect = bench.Dialect{
	Name:        "mysql",
	IDType:      "BIGINT",
	TextType:    "VARCHAR(255)",
	Placeholder: bench.QuestionMark,
	ErrorTable:  bench.Table + "_ERR",
}

func DSN(c bench.ConnConfig) string {
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	cfg.DBName = c.Service
	cfg.Timeout = 30 * time.Second
	cfg.AllowCleartextPasswords = true
	cfg.InterpolateParams = true
	return cfg.FormatDSN()
}

// Open connects one session. Batches go out as multi-row inserts.
func Open(ctx context.Context, c bench.ConnConfig) (*sqldb.Session, error) {
	return sqldb.Open(ctx, "mysql", DSN(c), sqldb.MultiValues)
}
