package bench

import (
	"fmt"
	"io"
	"time"
)

func PrintResult(out io.Writer, r Result) {
	fmt.Fprintf(out, "\n┌─────────────────────────────────────────┐\n")
	fmt.Fprintf(out, "│  %-39s│\n", r.Label)
	fmt.Fprintf(out, "├─────────────────────────────────────────┤\n")
	fmt.Fprintf(out, "│  Rows:         %-24d│\n", r.Rows)
	fmt.Fprintf(out, "│  Loaded:       %-24d│\n", r.Loaded())
	fmt.Fprintf(out, "│  Rejected:     %-24d│\n", r.Rejected)
	fmt.Fprintf(out, "│  Commits:      %-24d│\n", r.Commits)
	fmt.Fprintf(out, "│  Flushes:      %-24d│\n", r.Flushes)
	fmt.Fprintf(out, "├─────────────────────────────────────────┤\n")
	fmt.Fprintf(out, "│  Duration:     %-24s│\n", r.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "│  Rows/sec:     %-24.1f│\n", r.RowsPerSec)
	fmt.Fprintf(out, "└─────────────────────────────────────────┘\n")
}

func FmtDur(d time.Duration) string {
	us := float64(d.Microseconds())
	if us < 1000 {
		return fmt.Sprintf("%.0fµs", us)
	}
	return fmt.Sprintf("%.2fms", us/1000)
}
