package bench

import (
	"fmt"
	"strings"
)

// Dialect holds the SQL that differs between databases.
type Dialect struct {
	Name        string
	IDType      string
	TextType    string
	Placeholder func(n int) string

	// AppendHint is placed after INSERT when direct path is requested.
	// Empty means the database has no such hint.
	AppendHint string

	ErrorTable string
	// ErrorLogDDL creates ErrorTable. When empty a plain
	// (ERR_MESG, ID, TXT) table is created instead.
	ErrorLogDDL string
	// LogErrorsClause is appended to inserts by databases that divert
	// failing rows on their own. Without it rejected rows are replayed
	// under savepoints by the loader.
	LogErrorsClause string

	// Purge reclaims storage after the drops. Optional.
	Purge string
}

func (d Dialect) NativeErrorLog() bool {
	return d.LogErrorsClause != ""
}

func (d Dialect) CreateTableSQL() string {
	return fmt.Sprintf("CREATE TABLE %s (ID %s, TXT %s)", Table, d.IDType, d.TextType)
}

func (d Dialect) CreateErrorLogSQL() string {
	if d.ErrorLogDDL != "" {
		return d.ErrorLogDDL
	}
	return fmt.Sprintf("CREATE TABLE %s (ERR_MESG VARCHAR(2000), ID %s, TXT %s)", d.ErrorTable, d.IDType, d.TextType)
}

func (d Dialect) ErrorLogInsertSQL() string {
	return fmt.Sprintf("INSERT INTO %s (ERR_MESG, ID, TXT) VALUES (%s, %s, %s)",
		d.ErrorTable, d.Placeholder(1), d.Placeholder(2), d.Placeholder(3))
}

func DropTableSQL(table string) string {
	return "DROP TABLE " + table
}

// Insert returns the insert template shared by all strategies.
func (d Dialect) Insert(directPath, logErrors bool) Insert {
	in := Insert{Table: Table, Placeholder: d.Placeholder}
	if directPath {
		in.Hint = d.AppendHint
	}
	if logErrors {
		in.Clause = d.LogErrorsClause
	}
	return in
}

// Insert renders INSERT [hint] INTO table VALUES (...) [clause].
type Insert struct {
	Table       string
	Hint        string
	Clause      string
	Placeholder func(n int) string
}

// SQL is the single-row statement.
func (in Insert) SQL() string {
	return in.build(1)
}

// Multi is a multi-row VALUES statement for rows rows.
func (in Insert) Multi(rows int) string {
	return in.build(rows)
}

// Args flattens rows in the order Multi expects.
func (in Insert) Args(rows []Row) []any {
	args := make([]any, 0, len(rows)*2)
	for _, r := range rows {
		args = append(args, r.ID, r.Text)
	}
	return args
}

func (in Insert) build(rows int) string {
	var b strings.Builder
	b.WriteString("INSERT ")
	if in.Hint != "" {
		b.WriteString(in.Hint)
		b.WriteByte(' ')
	}
	b.WriteString("INTO ")
	b.WriteString(in.Table)
	b.WriteString(" VALUES ")
	for i := 0; i < rows; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		b.WriteString(in.Placeholder(2*i + 1))
		b.WriteString(", ")
		b.WriteString(in.Placeholder(2*i + 2))
		b.WriteByte(')')
	}
	if in.Clause != "" {
		b.WriteByte(' ')
		b.WriteString(in.Clause)
	}
	return b.String()
}

// Positional placeholders for the supported drivers.
func QuestionMark(int) string { return "?" }
func Dollar(n int) string      { return fmt.Sprintf("$%d", n) }
func Colon(n int) string       { return fmt.Sprintf(":%d", n) }
