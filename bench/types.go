package bench

import "time"

const (
	// Table is the scratch table every run creates and drops.
	Table = "COMMITDATA"

	DefaultIterations = 100000

	// Filler is the payload written into TXT for every row.
	Filler = ";ajskfj[wig[ajdfkjaw[oeimakldjalksva;djfashdfjksahdf;lkjasdfoiwejaflkf;smvwlknvoaweijfasdfjasldf;kwlvma;dfjlaksjfowemowaivnoawn"
)

type ConnConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Service  string // Oracle service name, database name elsewhere, file path for sqlite
}

// Config is built once from the command line and passed by value.
type Config struct {
	Conn       ConnConfig
	Dialect    string
	Strategy   Strategy
	BatchSize  int
	DirectPath bool
	Iterations int
	Runs       int
	LogFile    string
	LogLevel   string
}

func (c Config) Plan() Plan {
	return Plan{
		Strategy:   c.Strategy,
		BatchSize:  c.BatchSize,
		DirectPath: c.DirectPath,
		Iterations: c.Iterations,
	}
}

type Row struct {
	ID   int64
	Text string
}

type Result struct {
	Label      string
	Strategy   Strategy
	Rows       int
	Rejected   int
	Commits    int
	Flushes    int
	Duration   time.Duration
	RowsPerSec float64
}

// Loaded is the number of rows that ended up in the scratch table.
func (r Result) Loaded() int {
	return r.Rows - r.Rejected
}
