// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package wger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/apex/log"

	"github.com/staranto/exefitgo/internal/cacheutil"
	"github.com/staranto/exefitgo/internal/exercise"
)

// ResponseCacheDir is the cacheutil subdirectory holding lookup responses.
const ResponseCacheDir = "responses"

// lookupLimit is large enough that every lookup fits in one page.
const lookupLimit = 100

func (c *Client) Categories(ctx context.Context) ([]exercise.Category, error) {
	return lookup[exercise.Category](ctx, c, "/exercisecategory/", "Failed to fetch categories")
}

func (c *Client) Muscles(ctx context.Context) ([]exercise.Muscle, error) {
	return lookup[exercise.Muscle](ctx, c, "/muscle/", "Failed to fetch muscles")
}

func (c *Client) Equipment(ctx context.Context) ([]exercise.Equipment, error) {
	return lookup[exercise.Equipment](ctx, c, "/equipment/", "Failed to fetch equipment")
}

// lookup serves a small reference list, from the on-disk response cache when
// a fresh copy exists.
func lookup[T any](ctx context.Context, c *Client, path, what string) ([]T, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(lookupLimit))
	key := c.baseURL + path + "?" + q.Encode()

	var page exercise.Page[T]
	if c.lookupTTL > 0 {
		if entry, ok := cacheutil.Read([]string{ResponseCacheDir}, key); ok {
			if time.Since(entry.ModTime) < c.lookupTTL {
				if err := json.Unmarshal(entry.Data, &page); err == nil {
					log.Debugf("cache hit: %s", key)
					return page.Results, nil
				}
				log.Debugf("discarding unreadable cached response for %s", key)
			}
		}
	}

	body, err := c.get(ctx, c.list, path, q, &page, what)
	if err != nil {
		return nil, err
	}

	if c.lookupTTL > 0 {
		if err := cacheutil.Write([]string{ResponseCacheDir}, key, body); err != nil {
			log.WithError(err).Warn("failed to cache lookup response")
		}
	}
	return page.Results, nil
}

// Names maps ids to names for one of the lookup kinds.
func (c *Client) Names(ctx context.Context, kind string) (map[int]string, error) {
	out := map[int]string{}
	switch kind {
	case "categories":
		items, err := c.Categories(ctx)
		if err != nil {
			return nil, err
		}
		for _, i := range items {
			out[i.ID] = i.Name
		}
	case "muscles":
		items, err := c.Muscles(ctx)
		if err != nil {
			return nil, err
		}
		for _, i := range items {
			out[i.ID] = i.Name
		}
	case "equipment":
		items, err := c.Equipment(ctx)
		if err != nil {
			return nil, err
		}
		for _, i := range items {
			out[i.ID] = i.Name
		}
	default:
		return nil, fmt.Errorf("unknown lookup kind %q", kind)
	}
	return out, nil
}
