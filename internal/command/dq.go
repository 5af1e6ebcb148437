// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/staranto/exefitgo/internal/exercise"
	"github.com/staranto/exefitgo/internal/meta"
	"github.com/staranto/exefitgo/internal/wger"
)

// DqCommandAction is the action handler for the "dq" subcommand. It shows one
// exercise, served from the cache when a fresh copy is there.
func DqCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[exercise.Exercise]{
		CommandName:  "dq",
		SchemaType:   reflect.TypeOf(exercise.Exercise{}),
		DefaultAttrs: []string{"id", "name", "category", "muscles", "equipment"},
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]exercise.Exercise, error) {
			id, err := ExerciseIDArg(cmd, 0)
			if err != nil {
				return nil, err
			}

			svc, err := NewServices(ctx, cmd, false)
			if err != nil {
				return nil, err
			}
			defer svc.Close()

			fetch := svc.Catalog.Detail
			if cmd.Bool("refresh") {
				fetch = svc.Catalog.Refresh
			}

			ex, err := fetch(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", wger.Friendly(err, wger.ContextExercise), err)
			}
			if cmd.Bool("plain") {
				ex.Description = ex.PlainDescription()
			}
			return []exercise.Exercise{ex}, nil
		},
	}
	return runner.Run(ctx, cmd)
}

// DqCommandBuilder constructs the cli.Command definition for the "dq"
// command.
func DqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "dq",
		Usage:     "exercise detail query",
		UsageText: `exefit dq <id> [options]`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "refresh",
				Usage: "skip the cache and fetch a fresh copy",
			},
			&cli.BoolFlag{
				Name:  "plain",
				Usage: "strip markup from the description",
			},
		},
		Action: DqCommandAction,
		Meta:   meta,
	}).Build()
}
