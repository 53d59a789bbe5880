package main

import (
	"context"

	"commitdata-bench/bench"
	"commitdata-bench/lite"
	"commitdata-bench/my"
	"commitdata-bench/ora"
	"commitdata-bench/pg"
)

type driver struct {
	dialect     bench.Dialect
	needsServer bool
	open        func(ctx context.Context, c bench.ConnConfig) (bench.Session, error)
}

var drivers = map[string]driver{
	"oracle": {
		dialect:     ora.Dialect,
		needsServer: true,
		open: func(ctx context.Context, c bench.ConnConfig) (bench.Session, error) {
			s, err := ora.Open(ctx, c)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
	},
	"postgres": {
		dialect:     pg.Dialect,
		needsServer: true,
		open: func(ctx context.Context, c bench.ConnConfig) (bench.Session, error) {
			s, err := pg.Open(ctx, c)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
	},
	"mysql": {
		dialect:     my.Dialect,
		needsServer: true,
		open: func(ctx context.Context, c bench.ConnConfig) (bench.Session, error) {
			s, err := my.Open(ctx, c)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
	},
	"sqlite": {
		dialect: lite.Dialect,
		open: func(ctx context.Context, c bench.ConnConfig) (bench.Session, error) {
			s, err := lite.Open(ctx, c)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
	},
}
