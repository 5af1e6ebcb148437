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

// LqCommandAction is the action handler for the "lq" subcommand. It lists
// the categories, muscles or equipment exercises are filed under.
func LqCommandAction(ctx context.Context, cmd *cli.Command) error {
	kind := cmd.Args().First()
	if kind == "" {
		kind = "categories"
	}
	if err := FlagValidators(kind, LookupKindValidator); err != nil {
		return fmt.Errorf("lookup kind %q %w", kind, err)
	}

	client := NewClient(cmd)
	friendly := func(err error) error {
		return fmt.Errorf("%s: %w", wger.Friendly(err, wger.ContextLookup), err)
	}

	switch kind {
	case "muscles":
		return runLookup(ctx, cmd, []string{"id", "name", "is_front:front"},
			func(ctx context.Context) ([]exercise.Muscle, error) {
				items, err := client.Muscles(ctx)
				if err != nil {
					return nil, friendly(err)
				}
				return items, nil
			})
	case "equipment":
		return runLookup(ctx, cmd, []string{"id", "name"},
			func(ctx context.Context) ([]exercise.Equipment, error) {
				items, err := client.Equipment(ctx)
				if err != nil {
					return nil, friendly(err)
				}
				return items, nil
			})
	default:
		return runLookup(ctx, cmd, []string{"id", "name"},
			func(ctx context.Context) ([]exercise.Category, error) {
				items, err := client.Categories(ctx)
				if err != nil {
					return nil, friendly(err)
				}
				return items, nil
			})
	}
}

func runLookup[T any](
	ctx context.Context,
	cmd *cli.Command,
	defaults []string,
	fetch func(context.Context) ([]T, error),
) error {
	var zero T
	runner := &QueryActionRunner[T]{
		CommandName:  "lq",
		SchemaType:   reflect.TypeOf(zero),
		DefaultAttrs: defaults,
		FetchFn: func(ctx context.Context, _ *cli.Command) ([]T, error) {
			return fetch(ctx)
		},
	}
	return runner.Run(ctx, cmd)
}

// LqCommandBuilder constructs the cli.Command definition for the "lq"
// command.
func LqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "lq",
		Usage:     "lookup query",
		UsageText: `exefit lq [categories|muscles|equipment] [options]`,
		Action:    LqCommandAction,
		Meta:      meta,
	}).Build()
}
