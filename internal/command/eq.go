// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"reflect"
	"strconv"

	"github.com/apex/log"
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/exefitgo/internal/catalog"
	"github.com/staranto/exefitgo/internal/exercise"
	"github.com/staranto/exefitgo/internal/filters"
	"github.com/staranto/exefitgo/internal/meta"
	"github.com/staranto/exefitgo/internal/search"
	"github.com/staranto/exefitgo/internal/wger"
)

// SearchParams reads the eq flags into search.Params. Positive "_key=value"
// filters (_search, _category, _muscle(s), _equipment) fill any flag that was
// not given.
func SearchParams(cmd *cli.Command) (search.Params, error) {
	p := search.Params{
		Search:    cmd.String("search"),
		Category:  cmd.Int("category"),
		Muscle:    cmd.Int("muscle"),
		Equipment: cmd.Int("equipment"),
		Page:      cmd.Int("page"),
		Limit:     cmd.Int("limit"),
		Fuzzy:     cmd.Bool("fuzzy"),
	}

	native := filters.NativeFilters(filters.BuildFilters(cmd.String("filter")))
	for key, value := range native {
		if key == "search" {
			if p.Search == "" {
				p.Search = value
			}
			continue
		}

		var target *int
		switch key {
		case "category":
			target = &p.Category
		case "muscle", "muscles":
			target = &p.Muscle
		case "equipment":
			target = &p.Equipment
		default:
			log.Warnf("unsupported native filter _%s", key)
			continue
		}

		n, err := strconv.Atoi(value)
		if err != nil {
			return search.Params{}, fmt.Errorf("filter _%s: %q is not an id", key, value)
		}
		if *target == 0 {
			*target = n
		}
	}

	p = p.WithDefaults()
	return p, p.Validate()
}

// EqCommandAction is the action handler for the "eq" subcommand. It lists
// one page of exercises, illustrated ones first.
func EqCommandAction(ctx context.Context, cmd *cli.Command) error {
	var result catalog.BrowseResult

	runner := &QueryActionRunner[exercise.Exercise]{
		CommandName:  "eq",
		SchemaType:   reflect.TypeOf(exercise.Exercise{}),
		DefaultAttrs: []string{"id", "name"},
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]exercise.Exercise, error) {
			params, err := SearchParams(cmd)
			if err != nil {
				return nil, err
			}
			log.Debugf("params: %+v", params)

			svc, err := NewServices(ctx, cmd, false)
			if err != nil {
				return nil, err
			}
			defer svc.Close()

			result, err = svc.Catalog.Browse(ctx, params)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", wger.Friendly(err, wger.ContextExercises), err)
			}
			return result.Exercises, nil
		},
	}

	if err := runner.Run(ctx, cmd); err != nil {
		return err
	}

	if cmd.Bool("titles") && cmd.String("output") == "text" && result.Page > 0 {
		fmt.Fprintf(Writer(cmd), "\npage %d of %d, %d matching\n",
			result.Page, result.TotalPages, result.Total)
	}
	return nil
}

// EqCommandBuilder constructs the cli.Command definition for the "eq"
// command, wiring flags, metadata, and the action/validator handlers.
func EqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "eq",
		Usage:     "exercise query",
		UsageText: `exefit eq [options]`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "search",
				Aliases: []string{"q"},
				Usage:   "match names and descriptions",
			},
			&cli.IntFlag{
				Name:  "category",
				Usage: "category id",
			},
			&cli.IntFlag{
				Name:  "muscle",
				Usage: "muscle id",
			},
			&cli.IntFlag{
				Name:  "equipment",
				Usage: "equipment id",
			},
			&cli.IntFlag{
				Name:    "page",
				Aliases: []string{"p"},
				Usage:   "page of results",
				Value:   search.DefaultPage,
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "results per page",
				Value:   search.DefaultLimit,
				Sources: cli.NewValueSourceChain(
					yaml.YAML("eq.limit", altsrc.StringSourcer(meta.Config.Source)),
				),
			},
			&cli.BoolFlag{
				Name:  "fuzzy",
				Usage: "rank names by fuzzy match",
			},
		},
		Action: EqCommandAction,
		Meta:   meta,
	}).Build()
}
