// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/exefitgo/internal/browse"
	"github.com/staranto/exefitgo/internal/catalog"
	"github.com/staranto/exefitgo/internal/favorites"
	"github.com/staranto/exefitgo/internal/meta"
	"github.com/staranto/exefitgo/internal/wger"
)

var ErrNotATerminal = errors.New("browse needs an interactive terminal; use fq instead")

// isTerminal is swapped out in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
}

// BrowseEntries converts favorites into browser entries.
func BrowseEntries(details []catalog.FavoriteDetail) []browse.Entry {
	entries := make([]browse.Entry, 0, len(details))
	for _, d := range details {
		entries = append(entries, browse.Entry{
			Exercise: d.Exercise,
			Added:    d.Favorite.CreatedAt,
			Stub:     d.Stub,
		})
	}
	return entries
}

// BrowseLabels loads the lookup names. A lookup that fails leaves its ids
// unlabeled.
func BrowseLabels(ctx context.Context, client *wger.Client) browse.Labels {
	load := func(kind string) map[int]string {
		names, err := client.Names(ctx, kind)
		if err != nil {
			log.WithError(err).Warnf("failed to load %s", kind)
			return nil
		}
		return names
	}
	return browse.Labels{
		Categories: load("categories"),
		Muscles:    load("muscles"),
		Equipment:  load("equipment"),
	}
}

// BrowseCommandAction opens the interactive favorites browser.
func BrowseCommandAction(ctx context.Context, cmd *cli.Command) error {
	if ShortCircuitTLDR(ctx, cmd, "browse") {
		return nil
	}
	if !isTerminal() {
		return ErrNotATerminal
	}

	user := cmd.String("user")
	if user == "" {
		return favorites.ErrUserNotSet
	}

	svc, err := NewServices(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer svc.Close()

	details, err := svc.Catalog.Favorites(ctx, user)
	if err != nil {
		return err
	}

	remove := func(ctx context.Context, id int) error {
		return svc.Catalog.Unfavorite(ctx, user, id)
	}

	m := browse.NewModel(ctx, BrowseEntries(details), BrowseLabels(ctx, svc.Client), remove)
	return browse.Run(ctx, m)
}

func BrowseCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "browse",
		Usage:     "browse favorites interactively",
		UsageText: `exefit browse [options]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: []cli.Flag{
			newTLDRFlag(),
			NewUserFlag("browse", meta.Config.Source),
			NewAPIURLFlag("browse", meta.Config.Source),
		},
		Action: BrowseCommandAction,
	}
}
