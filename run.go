package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"commitdata-bench/bench"
)

const (
	runCooldown     = 3 * time.Second
	teardownTimeout = 30 * time.Second
)

func execute(ctx context.Context, cfg bench.Config, drv driver, out io.Writer, log *logrus.Entry) error {
	plan := cfg.Plan()
	label := fmt.Sprintf("%s on %s", plan.Strategy, drv.dialect.Name)

	fmt.Fprintln(out, "═══════════════════════════════════════════")
	fmt.Fprintf(out, "  Commit Strategy Benchmark (%s)\n", drv.dialect.Name)
	fmt.Fprintln(out, "═══════════════════════════════════════════")
	fmt.Fprintf(out, "  Strategy: %s | Iterations: %d | Runs: %d\n\n", plan.Strategy, plan.Iterations, cfg.Runs)

	if plan.DirectPath && drv.dialect.AppendHint == "" {
		log.Warnf("%s has no append hint, -directPath has no effect", drv.dialect.Name)
	}

	fmt.Fprintf(out, "[1/4] Connecting to %s...\n", drv.dialect.Name)
	sess, err := drv.open(ctx, cfg.Conn)
	if err != nil {
		return bench.NewError(bench.KindConnection, "connect", err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.WithError(err).Warn("close session")
		}
	}()
	fmt.Fprintln(out, "  ✓ Connected")
	log.WithField("host", cfg.Conn.Host).Info("connected")

	loader := &bench.Loader{Session: sess, Dialect: drv.dialect, Out: out, Log: log}
	runOnce := func(run int) (bench.Result, error) {
		return loadOnce(ctx, loader, plan, out, log.WithField("n", run+1))
	}

	res, err := bench.RunMultiple(out, cfg.Runs, runCooldown, label, runOnce)
	if err != nil {
		return err
	}
	if cfg.Runs <= 1 {
		res.Label = label
	}
	bench.PrintResult(out, res)
	return nil
}

// loadOnce is setup, one load and teardown. Teardown is attempted even
// when setup or the load failed, on a context of its own.
func loadOnce(ctx context.Context, l *bench.Loader, plan bench.Plan, out io.Writer, log *logrus.Entry) (res bench.Result, err error) {
	schema := bench.NewSchema(l.Dialect, plan.Strategy.LogsErrors())

	defer func() {
		fmt.Fprintln(out, "\n[4/4] Dropping scratch table...")
		if terr := teardown(l.Session, schema, err != nil); terr != nil {
			log.WithError(terr).Error("teardown")
			err = multierror.Append(err, terr)
			return
		}
		fmt.Fprintln(out, "  ✓ Dropped")
	}()

	fmt.Fprintln(out, "\n[2/4] Creating scratch table...")
	if err = schema.Setup(ctx, l.Session); err != nil {
		return res, err
	}
	fmt.Fprintln(out, "  ✓ Table ready")

	fmt.Fprintln(out, "\n[3/4] Loading data...")
	res, err = l.Load(ctx, plan)
	if err != nil {
		log.WithError(err).Error("load failed")
		return res, err
	}
	log.WithFields(logrus.Fields{
		"elapsed":  res.Duration,
		"commits":  res.Commits,
		"flushes":  res.Flushes,
		"rejected": res.Rejected,
	}).Info("load finished")
	return res, nil
}

func teardown(s bench.Session, schema *bench.Schema, failed bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
	defer cancel()

	if failed {
		if err := s.Rollback(ctx); err != nil {
			return bench.NewError(bench.KindSchema, "rollback", err)
		}
	}
	return schema.Teardown(ctx, s)
}
