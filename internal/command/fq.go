// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/staranto/exefitgo/internal/catalog"
	"github.com/staranto/exefitgo/internal/favorites"
	"github.com/staranto/exefitgo/internal/meta"
	"github.com/staranto/exefitgo/internal/wger"
)

var favoriteDetailAttrs = []string{
	"exercise.id:id",
	"exercise.name:name",
	"exercise.category:category",
	"favorite.createdAt:added",
	"stub",
}

// FqCommandAction is the action handler for the "fq" subcommand. It lists the
// user's favorites, newest first, with their exercise details.
func FqCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[catalog.FavoriteDetail]{
		CommandName:  "fq",
		SchemaType:   reflect.TypeOf(catalog.FavoriteDetail{}),
		DefaultAttrs: favoriteDetailAttrs,
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]catalog.FavoriteDetail, error) {
			user := cmd.String("user")
			if user == "" {
				return nil, favorites.ErrUserNotSet
			}

			svc, err := NewServices(ctx, cmd, true)
			if err != nil {
				return nil, err
			}
			defer svc.Close()

			details, err := svc.Catalog.Favorites(ctx, user)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", wger.Friendly(err, wger.ContextFavorites), err)
			}
			return details, nil
		},
	}
	return runner.Run(ctx, cmd)
}

// FqCommandBuilder constructs the cli.Command definition for the "fq"
// command.
func FqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "fq",
		Usage:     "favorites query",
		UsageText: `exefit fq [options]`,
		Flags: []cli.Flag{
			NewUserFlag("fq", meta.Config.Source),
		},
		Action: FqCommandAction,
		Meta:   meta,
	}).Build()
}
