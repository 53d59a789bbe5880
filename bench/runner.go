package bench

import (
	"fmt"
	"io"
	"time"
)

// RunMultiple executes runFn runs times, checks steady-state, returns the
// median. The first failing run stops the series.
func RunMultiple(out io.Writer, runs int, cooldown time.Duration, label string, runFn func(run int) (Result, error)) (Result, error) {
	if runs <= 1 {
		return runFn(0)
	}

	fmt.Fprintf(out, "\n╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Fprintf(out, "║  %d-RUN BENCHMARK: %-38s║\n", runs, label)
	fmt.Fprintf(out, "║  Methodology: median of %d runs, steady-state verified    ║\n", runs)
	fmt.Fprintf(out, "╚═══════════════════════════════════════════════════════════╝\n")

	allRuns := make([]Result, runs)

	for i := 0; i < runs; i++ {
		fmt.Fprintf(out, "\n── Run %d/%d ──\n", i+1, runs)
		r, err := runFn(i)
		if err != nil {
			return r, fmt.Errorf("run %d/%d: %w", i+1, runs, err)
		}
		allRuns[i] = r

		fmt.Fprintf(out, "  Run %d: rows/s=%.1f  elapsed=%s  commits=%d  rejected=%d\n",
			i+1, r.RowsPerSec, FmtDur(r.Duration), r.Commits, r.Rejected)

		if i < runs-1 && cooldown > 0 {
			fmt.Fprintf(out, "  Cooling down (%s)...", cooldown)
			time.Sleep(cooldown)
			fmt.Fprintln(out, " done")
		}
	}

	steady, maxDev := SteadyState(allRuns, 0.05)
	fmt.Fprintf(out, "\n── Steady-State Check ──\n")
	fmt.Fprintf(out, "  Max rows/s deviation: %.1f%%\n", maxDev*100)
	if steady {
		fmt.Fprintln(out, "  ✅ PASSED (within ±5%)")
	} else {
		fmt.Fprintf(out, "  ⚠️  FAILED (%.1f%% > 5%%) — results still reported as median\n", maxDev*100)
	}

	median := MedianResult(allRuns)
	median.Label = fmt.Sprintf("%s (median of %d runs)", label, runs)

	fmt.Fprintf(out, "\n╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Fprintf(out, "║  ALL RUNS SUMMARY                                        ║\n")
	fmt.Fprintf(out, "╠═════╦════════════╦════════════╦══════════╦═══════════════╣\n")
	fmt.Fprintf(out, "║ Run ║   Rows/s   ║  Elapsed   ║ Commits  ║ Rejected      ║\n")
	fmt.Fprintf(out, "╠═════╬════════════╬════════════╬══════════╬═══════════════╣\n")
	for i, r := range allRuns {
		marker := "  "
		if r.Duration == median.Duration {
			marker = "→ "
		}
		fmt.Fprintf(out, "║ %s%d  ║ %10.1f ║ %10s ║ %8d ║ %-13d ║\n",
			marker, i+1, r.RowsPerSec, FmtDur(r.Duration), r.Commits, r.Rejected)
	}
	fmt.Fprintf(out, "╚═════╩════════════╩════════════╩══════════╩═══════════════╝\n")
	fmt.Fprintln(out, "  → = median (reported)")

	return median, nil
}
