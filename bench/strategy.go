package bench

import "fmt"

type Strategy int

const (
	StrategyNone Strategy = iota
	CommitEveryRow
	CommitAtEnd
	BatchCommit
	BatchCommitLog
)

func (s Strategy) String() string {
	switch s {
	case CommitEveryRow:
		return "commit-every-row"
	case CommitAtEnd:
		return "commit-at-end"
	case BatchCommit:
		return "batch-commit"
	case BatchCommitLog:
		return "batch-commit-with-log"
	default:
		return "none"
	}
}

func (s Strategy) Batched() bool {
	return s == BatchCommit || s == BatchCommitLog
}

func (s Strategy) LogsErrors() bool {
	return s == BatchCommitLog
}

// Select resolves the strategy switches into one strategy.
// Precedence: every-row > at-end > batch with error log > batch.
func Select(everyRow, atEnd bool, batchSize int, saveExceptions bool) Strategy {
	switch {
	case everyRow:
		return CommitEveryRow
	case atEnd:
		return CommitAtEnd
	case batchSize > 0 && saveExceptions:
		return BatchCommitLog
	case batchSize > 0:
		return BatchCommit
	}
	return StrategyNone
}

// Plan is everything a single load needs to know.
type Plan struct {
	Strategy   Strategy
	BatchSize  int
	DirectPath bool
	Iterations int
}

func (p Plan) Banner() string {
	var b string
	switch p.Strategy {
	case CommitEveryRow:
		b = fmt.Sprintf("Loading data with committing after every row - %d iterations", p.Iterations)
	case CommitAtEnd:
		b = fmt.Sprintf("Loading data with committing after the entire set is loaded - %d iterations", p.Iterations)
	case BatchCommit:
		b = fmt.Sprintf("Loading data with committing in batches of %d rows - %d iterations", p.BatchSize, p.Iterations)
	case BatchCommitLog:
		b = fmt.Sprintf("Loading data with committing in batches of %d rows, logging errors - %d iterations", p.BatchSize, p.Iterations)
	default:
		b = fmt.Sprintf("No load strategy - %d iterations", p.Iterations)
	}
	if p.DirectPath {
		b += " (direct path)"
	}
	return b
}
