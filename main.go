package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"commitdata-bench/bench"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errNoArguments = errors.New("no arguments given")

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout))
}

func realMain(args []string, stdout io.Writer) int {
	cfg, err := parseArgs(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(stdout)
			return exitOK
		}
		if !errors.Is(err, errNoArguments) {
			fmt.Fprintf(stdout, "Error: %v\n\n", err)
		}
		printUsage(stdout)
		return exitUsage
	}

	logger, closeLog, err := initLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return exitUsage
	}
	defer func() {
		if err := closeLog(); err != nil {
			fmt.Fprintf(stdout, "Error: close log: %v\n", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := execute(ctx, cfg, drivers[cfg.Dialect], stdout, newRunLog(logger, cfg)); err != nil {
		fmt.Fprintf(stdout, "  ✗ %v\n", err)
		if bench.IsKind(err, bench.KindArgument) {
			return exitUsage
		}
		return exitError
	}
	return exitOK
}

func parseArgs(args []string) (bench.Config, error) {
	var cfg bench.Config
	if len(args) == 0 {
		return cfg, bench.NewError(bench.KindArgument, "", errNoArguments)
	}

	cmd := flag.NewFlagSet("commitdata-bench", flag.ContinueOnError)
	cmd.SetOutput(io.Discard)

	// Connection
	host := cmd.String("host", "", "The database host name")
	port := cmd.Int("port", 0, "The database listener port")
	srvn := cmd.String("srvn", "", "The database service name")
	user := cmd.String("user", "", "The database username")
	pass := cmd.String("pass", "", "The database user password")
	dbType := cmd.String("db", "oracle", "Database type: oracle, postgres, mysql, sqlite")

	// Strategy
	commitEveryRow := cmd.Bool("commitEveryRow", false, "Commit data after every row")
	commitAtEnd := cmd.Bool("commitAtEnd", false, "Commit data only once at the end of a load")
	batchCommit := cmd.Int("batchCommit", 0, "Insert in batches of this size, commit at the end")
	saveExceptions := cmd.Bool("saveExceptions", false, "Divert failing rows into an error log table")
	directPath := cmd.Bool("directPath", false, "Use the append hint on inserts")

	// Benchmark parameters
	iterations := cmd.Int("iterations", bench.DefaultIterations, "Rows to load")
	runs := cmd.Int("runs", 1, "Number of runs, median is reported")
	logFile := cmd.String("logFile", "", "Write the diagnostic log to this file")
	logLevel := cmd.String("logLevel", "info", "Log level: debug, info, warn, error")

	if err := cmd.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cfg, err
		}
		return cfg, bench.NewError(bench.KindArgument, "", err)
	}
	if cmd.NArg() > 0 {
		return cfg, bench.NewError(bench.KindArgument, "", fmt.Errorf("unexpected argument %q", cmd.Arg(0)))
	}

	cfg = bench.Config{
		Conn: bench.ConnConfig{
			Host:     *host,
			Port:     *port,
			User:     *user,
			Password: *pass,
			Service:  *srvn,
		},
		Dialect:    strings.ToLower(*dbType),
		Strategy:   bench.Select(*commitEveryRow, *commitAtEnd, *batchCommit, *saveExceptions),
		BatchSize:  *batchCommit,
		DirectPath: *directPath,
		Iterations: *iterations,
		Runs:       *runs,
		LogFile:    *logFile,
		LogLevel:   *logLevel,
	}
	return cfg, validate(cfg)
}

func validate(cfg bench.Config) error {
	drv, ok := drivers[cfg.Dialect]
	if !ok {
		return bench.NewError(bench.KindArgument, "", fmt.Errorf("unknown database type %q", cfg.Dialect))
	}

	var missing []string
	if drv.needsServer {
		if cfg.Conn.Host == "" {
			missing = append(missing, "-host")
		}
		if cfg.Conn.Port <= 0 {
			missing = append(missing, "-port")
		}
		if cfg.Conn.User == "" {
			missing = append(missing, "-user")
		}
		if cfg.Conn.Password == "" {
			missing = append(missing, "-pass")
		}
	}
	if cfg.Conn.Service == "" {
		missing = append(missing, "-srvn")
	}
	if len(missing) > 0 {
		return bench.NewError(bench.KindArgument, "", fmt.Errorf("missing required flags: %s", strings.Join(missing, ", ")))
	}

	switch {
	case cfg.Strategy == bench.StrategyNone:
		return bench.NewError(bench.KindArgument, "", errors.New("no load strategy selected"))
	case cfg.BatchSize < 0:
		return bench.NewError(bench.KindArgument, "", fmt.Errorf("-batchCommit must be positive, got %d", cfg.BatchSize))
	case cfg.Iterations <= 0:
		return bench.NewError(bench.KindArgument, "", fmt.Errorf("-iterations must be positive, got %d", cfg.Iterations))
	case cfg.Runs <= 0:
		return bench.NewError(bench.KindArgument, "", fmt.Errorf("-runs must be positive, got %d", cfg.Runs))
	}
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Committing data to the database - Usage:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commitdata-bench -host [host] -port [port] -srvn [service name] -user [username] -pass [password] -commitEveryRow -commitAtEnd -batchCommit [commit size] -saveExceptions -directPath")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Required flags:")
	fmt.Fprintln(w, "  -host            The database host name")
	fmt.Fprintln(w, "  -port            The database listener port")
	fmt.Fprintln(w, "  -srvn            The database service name (sqlite: database file)")
	fmt.Fprintln(w, "  -user            The database username")
	fmt.Fprintln(w, "  -pass            The database user password")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Strategy (first match wins):")
	fmt.Fprintln(w, "  -commitEveryRow  Commit data after every row")
	fmt.Fprintln(w, "  -commitAtEnd     Commit data only once at the end of a load")
	fmt.Fprintln(w, "  -batchCommit     Insert in batches of [commit size] rows, commit at the end")
	fmt.Fprintln(w, "  -saveExceptions  With -batchCommit: divert failing rows into an error log table")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -directPath      Use the append hint on inserts")
	fmt.Fprintln(w, "  -db              Database type: oracle, postgres, mysql, sqlite (default: oracle)")
	fmt.Fprintf(w, "  -iterations      Rows to load (default: %d)\n", bench.DefaultIterations)
	fmt.Fprintln(w, "  -runs            Repeat the load and report the median (default: 1)")
	fmt.Fprintln(w, "  -logFile         Write the diagnostic log to a rotated file")
	fmt.Fprintln(w, "  -logLevel        Log level: debug, info, warn, error (default: info)")
}
