// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/exefitgo/internal/cache"
	"github.com/staranto/exefitgo/internal/cacheutil"
	"github.com/staranto/exefitgo/internal/meta"
	"github.com/staranto/exefitgo/internal/wger"
)

// CacheStatsRow is what `cache stats` prints.
type CacheStatsRow struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
	Expired  int    `json:"expired"`
	Max      int    `json:"max"`
	TTL      string `json:"ttl"`
	Size     string `json:"size"`
	Oldest   string `json:"oldest"`
	Newest   string `json:"newest"`
}

// CacheEntryRow is one line of `cache ls`.
type CacheEntryRow struct {
	cache.Entry
	Expired bool `json:"expired"`
}

// NewCacheStatsRow summarizes stats. size is the byte length of the persisted
// blob.
func NewCacheStatsRow(stats cache.Stats, location string, size int) CacheStatsRow {
	row := CacheStatsRow{
		Location: location,
		Count:    stats.Count,
		Expired:  stats.Expired,
		Max:      stats.MaxSize,
		TTL:      stats.TTL.String(),
		Size:     humanize.Bytes(uint64(size)),
	}
	if stats.Oldest > 0 {
		row.Oldest = humanize.Time(time.UnixMilli(stats.Oldest))
	}
	if stats.Newest > 0 {
		row.Newest = humanize.Time(time.UnixMilli(stats.Newest))
	}
	return row
}

// cacheAction opens the cache for a `cache` subcommand.
func cacheAction(fn func(context.Context, *cli.Command, *Services) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		svc, err := NewServices(ctx, cmd, false)
		if err != nil {
			return err
		}
		defer svc.Close()
		return fn(ctx, cmd, svc)
	}
}

func CacheStatsAction(_ context.Context, cmd *cli.Command, svc *Services) error {
	size := 0
	if data, ok, err := svc.Store.Load(); err == nil && ok {
		size = len(data)
	}

	row := NewCacheStatsRow(svc.Cache.Stats(), StoreLocation(svc.Store), size)
	al := BuildAttrs(cmd, "location", "count", "expired", "max", "ttl", "size", "oldest", "newest")
	return EmitRecords([]CacheStatsRow{row}, al, cmd, "")
}

func CacheLsAction(_ context.Context, cmd *cli.Command, svc *Services) error {
	entries := svc.Cache.Entries()
	rows := make([]CacheEntryRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, CacheEntryRow{Entry: e, Expired: svc.Cache.Expired(e)})
	}

	al := BuildAttrs(cmd, "exercise.id:id", "exercise.name:name", "cachedAt:cached:a", "expired")
	return EmitRecords(rows, al, cmd, "")
}

func CacheRmAction(_ context.Context, cmd *cli.Command, svc *Services) error {
	id, err := ExerciseIDArg(cmd, 0)
	if err != nil {
		return err
	}
	svc.Cache.Remove(id)
	fmt.Fprintf(Writer(cmd), "removed exercise %d from the cache\n", id)
	return nil
}

func CacheClearAction(_ context.Context, cmd *cli.Command, svc *Services) error {
	svc.Cache.Clear()
	if cmd.Bool("all") {
		if err := cacheutil.RemoveAll(wger.ResponseCacheDir); err != nil {
			return err
		}
		fmt.Fprintln(Writer(cmd), "cleared the exercise cache and lookup responses")
		return nil
	}
	fmt.Fprintln(Writer(cmd), "cleared the exercise cache")
	return nil
}

func CachePurgeAction(_ context.Context, cmd *cli.Command, _ *Services) error {
	hours := cmd.Int("hours")
	removed, err := cacheutil.Purge(hours, wger.ResponseCacheDir)
	if err != nil {
		return err
	}
	log.Debugf("purged %d files older than %dh", removed, hours)
	fmt.Fprintf(Writer(cmd), "purged %d lookup responses\n", removed)
	return nil
}

// CqCommandBuilder constructs the "cache" command and its subcommands.
func CqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	sub := func(name, usage, usageText string, action cli.ActionFunc, flags ...cli.Flag) *cli.Command {
		return &cli.Command{
			Name:      name,
			Usage:     usage,
			UsageText: usageText,
			Metadata: map[string]any{
				"meta": meta,
			},
			Flags:  flags,
			Action: action,
		}
	}

	return &cli.Command{
		Name:      "cache",
		Usage:     "inspect and manage the exercise cache",
		UsageText: `exefit cache stats|ls|rm|clear|purge [options]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Commands: []*cli.Command{
			sub("stats", "show cache statistics", "exefit cache stats [options]",
				cacheAction(CacheStatsAction), NewGlobalFlags("cache")...),
			sub("ls", "list cached exercises, newest first", "exefit cache ls [options]",
				cacheAction(CacheLsAction), NewGlobalFlags("cache")...),
			sub("rm", "remove one exercise from the cache", "exefit cache rm <id>",
				cacheAction(CacheRmAction)),
			sub("clear", "remove every cached exercise", "exefit cache clear [--all]",
				cacheAction(CacheClearAction),
				&cli.BoolFlag{
					Name:  "all",
					Usage: "also remove cached lookup responses",
				}),
			sub("purge", "remove cached lookup responses older than --hours", "exefit cache purge [--hours n]",
				cacheAction(CachePurgeAction),
				&cli.IntFlag{
					Name:  "hours",
					Usage: "age in hours past which responses are removed",
					Value: 24,
					Sources: cli.NewValueSourceChain(
						yaml.YAML("cache.clean", altsrc.StringSourcer(meta.Config.Source)),
					),
				}),
		},
	}
}
