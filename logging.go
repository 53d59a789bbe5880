package main

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"commitdata-bench/bench"
)

const defaultLogTimeFormat = "2006/01/02 15:04:05.000"

type textFormatter struct{}

// Format implements logrus.Formatter
func (f *textFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	fmt.Fprintf(b, "%s [%s] %s", entry.Time.Format(defaultLogTimeFormat), entry.Level.String(), entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, " %v=%v", k, entry.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

// initLogger returns the logger and a func that closes its log file.
func initLogger(level, file string) (*logrus.Logger, func() error, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	logger := logrus.New()
	logger.SetLevel(lvl)
	logger.SetFormatter(&textFormatter{})

	if file == "" {
		logger.SetOutput(os.Stderr)
		return logger, func() error { return nil }, nil
	}
	// use lumberjack to logrotate
	out := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    100,
		MaxBackups: 3,
		LocalTime:  true,
	}
	logger.SetOutput(out)
	return logger, out.Close, nil
}

// newRunLog tags every entry of one invocation with a run id.
func newRunLog(logger *logrus.Logger, cfg bench.Config) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"run": uuid.NewString(),
		"db":  cfg.Dialect,
	})
}
