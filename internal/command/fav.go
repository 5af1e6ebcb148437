// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/exefitgo/internal/favorites"
	"github.com/staranto/exefitgo/internal/meta"
	"github.com/staranto/exefitgo/internal/wger"
)

// favAction resolves the user and exercise id, opens the services and hands
// them to fn.
func favAction(fn func(context.Context, *cli.Command, *Services, string, int) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		user := cmd.String("user")
		if user == "" {
			return favorites.ErrUserNotSet
		}
		id, err := ExerciseIDArg(cmd, 0)
		if err != nil {
			return err
		}

		svc, err := NewServices(ctx, cmd, true)
		if err != nil {
			return err
		}
		defer svc.Close()

		return fn(ctx, cmd, svc, user, id)
	}
}

// FavAddAction stars an exercise and prints the stored favorite.
func FavAddAction(ctx context.Context, cmd *cli.Command, svc *Services, user string, id int) error {
	fav, err := svc.Catalog.Favorite(ctx, user, id)
	if err != nil {
		return fmt.Errorf("%s: %w", wger.Friendly(err, wger.ContextExercise), err)
	}
	log.Debugf("favorite: %+v", fav)

	al := BuildAttrs(cmd, "exerciseId:id", "exerciseName:name", "createdAt:added")
	return EmitRecords([]favorites.Favorite{fav}, al, cmd, "")
}

// FavRmAction un-stars an exercise and drops it from the cache.
func FavRmAction(ctx context.Context, cmd *cli.Command, svc *Services, user string, id int) error {
	if err := svc.Catalog.Unfavorite(ctx, user, id); err != nil {
		return err
	}
	fmt.Fprintf(Writer(cmd), "removed exercise %d from %s's favorites\n", id, user)
	return nil
}

// FavHasAction prints whether the exercise is a favorite.
func FavHasAction(ctx context.Context, cmd *cli.Command, svc *Services, user string, id int) error {
	ok, err := svc.Catalog.IsFavorite(ctx, user, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(Writer(cmd), strconv.FormatBool(ok))
	return nil
}

// FavCommandBuilder constructs the "fav" command and its add, rm and has
// subcommands.
func FavCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	sub := func(name, usage string, action cli.ActionFunc, flags ...cli.Flag) *cli.Command {
		return &cli.Command{
			Name:      name,
			Usage:     usage,
			UsageText: fmt.Sprintf("exefit fav %s <id> [options]", name),
			Metadata: map[string]any{
				"meta": meta,
			},
			Flags: append([]cli.Flag{
				NewUserFlag("fav", meta.Config.Source),
				NewAPIURLFlag("fav", meta.Config.Source),
			}, flags...),
			Action: action,
		}
	}

	return &cli.Command{
		Name:      "fav",
		Usage:     "manage favorites",
		UsageText: `exefit fav add|rm|has <id> [options]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Commands: []*cli.Command{
			sub("add", "add an exercise to favorites", favAction(FavAddAction), NewGlobalFlags("fav")...),
			sub("rm", "remove an exercise from favorites", favAction(FavRmAction)),
			sub("has", "report whether an exercise is a favorite", favAction(FavHasAction)),
		},
	}
}
