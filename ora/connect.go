package ora

import (
	"context"
	"fmt"

	go_ora "github.com/sijms/go-ora/v2"

	"commitdata-bench/bench"
	"commitdata-bench/sqldb"
)

const errorTable = "ERR$_" + bench.Table

var Dialect = bench.Dialect{
	Name:            "oracle",
	IDType:          "NUMBER",
	TextType:        "VARCHAR2(255)",
	Placeholder:     bench.Colon,
	AppendHint:      "/*+ APPEND_VALUES */",
	ErrorTable:      errorTable,
	ErrorLogDDL:     fmt.Sprintf("BEGIN DBMS_ERRLOG.CREATE_ERROR_LOG('%s', '%s'); END;", bench.Table, errorTable),
	LogErrorsClause: fmt.Sprintf("LOG ERRORS INTO %s REJECT LIMIT UNLIMITED", errorTable),
	Purge:           "PURGE USER_RECYCLEBIN",
}

func DSN(c bench.ConnConfig) string {
	return go_ora.BuildUrl(c.Host, c.Port, c.Service, c.User, c.Password, nil)
}

// Open connects over the thin protocol. Batches are sent with array
// binding, one round trip per flush.
func Open(ctx context.Context, c bench.ConnConfig) (*sqldb.Session, error) {
	return sqldb.Open(ctx, "oracle", DSN(c), sqldb.ArrayBind)
}
