// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/exefitgo/internal/differ"
	"github.com/staranto/exefitgo/internal/meta"
	"github.com/staranto/exefitgo/internal/wger"
)

// DiffCommandAction compares the cached copy of an exercise with a fresh one
// from the API.
func DiffCommandAction(ctx context.Context, cmd *cli.Command) error {
	if ShortCircuitTLDR(ctx, cmd, "diff") {
		return nil
	}

	id, err := ExerciseIDArg(cmd, 0)
	if err != nil {
		return err
	}

	svc, err := NewServices(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	cached, ok := svc.Cache.Get(id)
	if !ok {
		return fmt.Errorf("exercise %d is not cached", id)
	}

	fresh, err := svc.Catalog.Fetch(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", wger.Friendly(err, wger.ContextExercise), err)
	}

	result, err := differ.Compare(cached, fresh, differ.Format(cmd.String("format")), cmd.Bool("color"))
	if err != nil {
		return err
	}

	w := Writer(cmd)
	if !result.Modified {
		fmt.Fprintf(w, "exercise %d is unchanged\n", id)
		return nil
	}
	fmt.Fprint(w, result.Text)

	if cmd.Bool("update") {
		svc.Cache.Put(fresh)
		log.Debugf("updated cached exercise %d", id)
	}
	return nil
}

func DiffCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "diff",
		Usage:     "diff a cached exercise against the API",
		UsageText: `exefit diff <id> [options]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: []cli.Flag{
			newTLDRFlag(),
			NewAPIURLFlag("diff", meta.Config.Source),
			&cli.StringFlag{
				Name:  "format",
				Usage: "ascii or delta",
				Value: string(differ.FormatASCII),
				Validator: func(value string) error {
					if value != string(differ.FormatASCII) && value != string(differ.FormatDelta) {
						return fmt.Errorf("must be one of [ascii delta]")
					}
					return nil
				},
			},
			&cli.BoolWithInverseFlag{
				Name:    "color",
				Aliases: []string{"c"},
				Usage:   "color the ascii diff",
			},
			&cli.BoolFlag{
				Name:  "update",
				Usage: "replace the cached copy when it differs",
			},
		},
		Action: DiffCommandAction,
	}
}
