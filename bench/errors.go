package bench

import "errors"

type Kind int

const (
	KindArgument Kind = iota + 1
	KindConnection
	KindSchema
	KindInsert
)

func (k Kind) String() string {
	switch k {
	case KindArgument:
		return "argument error"
	case KindConnection:
		return "connection error"
	case KindSchema:
		return "schema error"
	case KindInsert:
		return "insert error"
	default:
		return "error"
	}
}

// Error tags a failure with the stage it happened in.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Kind.String() + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether any error in err's chain is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
