package bench

import "context"

// Schema creates and drops the scratch table and its error log, and
// remembers what it created so Teardown only drops that.
type Schema struct {
	dialect  Dialect
	errorLog bool

	hasTable    bool
	hasErrorLog bool
}

func NewSchema(d Dialect, errorLog bool) *Schema {
	return &Schema{dialect: d, errorLog: errorLog}
}

// Setup commits each table as soon as it is created. A later failure and
// the rollback that follows then leave the earlier tables in place for
// Teardown, on databases with transactional DDL too.
func (sc *Schema) Setup(ctx context.Context, s Session) error {
	if err := sc.create(ctx, s, Table, sc.dialect.CreateTableSQL()); err != nil {
		return err
	}
	sc.hasTable = true

	if sc.errorLog {
		if err := sc.create(ctx, s, sc.dialect.ErrorTable, sc.dialect.CreateErrorLogSQL()); err != nil {
			return err
		}
		sc.hasErrorLog = true
	}
	return nil
}

func (sc *Schema) create(ctx context.Context, s Session, table, ddl string) error {
	if _, err := s.Exec(ctx, ddl); err != nil {
		return NewError(KindSchema, "create "+table, err)
	}
	if err := s.Commit(ctx); err != nil {
		return NewError(KindSchema, "commit "+table, err)
	}
	return nil
}

func (sc *Schema) Teardown(ctx context.Context, s Session) error {
	if sc.hasErrorLog {
		if _, err := s.Exec(ctx, DropTableSQL(sc.dialect.ErrorTable)); err != nil {
			return NewError(KindSchema, "drop "+sc.dialect.ErrorTable, err)
		}
		sc.hasErrorLog = false
	}
	if sc.hasTable {
		if _, err := s.Exec(ctx, DropTableSQL(Table)); err != nil {
			return NewError(KindSchema, "drop "+Table, err)
		}
		sc.hasTable = false
	}
	if sc.dialect.Purge != "" {
		if _, err := s.Exec(ctx, sc.dialect.Purge); err != nil {
			return NewError(KindSchema, "purge", err)
		}
	}
	if err := s.Commit(ctx); err != nil {
		return NewError(KindSchema, "commit ddl", err)
	}
	return nil
}
