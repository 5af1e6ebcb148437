// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package catalog combines the wger client, the exercise cache and the
// favorites store into the operations the commands run.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"
	"golang.org/x/sync/errgroup"

	"github.com/staranto/exefitgo/internal/cache"
	"github.com/staranto/exefitgo/internal/exercise"
	"github.com/staranto/exefitgo/internal/favorites"
	"github.com/staranto/exefitgo/internal/search"
	"github.com/staranto/exefitgo/internal/wger"
)

// BrowseFetchLimit is how many exercises Browse pulls before filtering
// locally.
const BrowseFetchLimit = 50

const detailConcurrency = 4

var ErrNoFavoritesStore = errors.New("favorites store not configured")

// API is the part of the wger client the catalog needs.
type API interface {
	Exercises(ctx context.Context, opts wger.ListOptions) (exercise.Page[exercise.Exercise], error)
	Exercise(ctx context.Context, id int) (exercise.Exercise, error)
}

// FavoriteStore persists a user's favorites.
type FavoriteStore interface {
	Add(ctx context.Context, user string, ex exercise.Exercise) (favorites.Favorite, error)
	Remove(ctx context.Context, user string, id int) error
	List(ctx context.Context, user string) ([]favorites.Favorite, error)
	IsFavorite(ctx context.Context, user string, id int) (bool, error)
}

type Catalog struct {
	api   API
	cache *cache.Cache
	favs  FavoriteStore
}

// New builds a Catalog. favs may be nil when no command needs favorites.
func New(api API, c *cache.Cache, favs FavoriteStore) *Catalog {
	return &Catalog{api: api, cache: c, favs: favs}
}

// Cache is the exercise cache in use.
func (c *Catalog) Cache() *cache.Cache {
	return c.cache
}

// Detail returns exercise id from the cache, fetching and caching it on a
// miss.
func (c *Catalog) Detail(ctx context.Context, id int) (exercise.Exercise, error) {
	if ex, ok := c.cache.Get(id); ok {
		log.Debugf("cache hit: exercise %d", id)
		return ex, nil
	}
	return c.Refresh(ctx, id)
}

// Refresh fetches exercise id from the API and caches it, ignoring whatever
// is cached now.
func (c *Catalog) Refresh(ctx context.Context, id int) (exercise.Exercise, error) {
	ex, err := c.api.Exercise(ctx, id)
	if err != nil {
		return exercise.Exercise{}, err
	}
	c.cache.Put(ex)
	return ex, nil
}

// Fetch gets exercise id from the API without touching the cache.
func (c *Catalog) Fetch(ctx context.Context, id int) (exercise.Exercise, error) {
	return c.api.Exercise(ctx, id)
}

// Favorite stars exercise id for user.
func (c *Catalog) Favorite(ctx context.Context, user string, id int) (favorites.Favorite, error) {
	if c.favs == nil {
		return favorites.Favorite{}, ErrNoFavoritesStore
	}
	if user == "" {
		return favorites.Favorite{}, favorites.ErrUserNotSet
	}

	ex, err := c.Detail(ctx, id)
	if err != nil {
		return favorites.Favorite{}, err
	}
	return c.favs.Add(ctx, user, ex)
}

// Unfavorite un-stars exercise id for user and drops it from the cache.
func (c *Catalog) Unfavorite(ctx context.Context, user string, id int) error {
	if c.favs == nil {
		return ErrNoFavoritesStore
	}
	if err := c.favs.Remove(ctx, user, id); err != nil {
		return err
	}
	c.cache.Remove(id)
	return nil
}

// IsFavorite reports whether user starred exercise id.
func (c *Catalog) IsFavorite(ctx context.Context, user string, id int) (bool, error) {
	if c.favs == nil {
		return false, ErrNoFavoritesStore
	}
	return c.favs.IsFavorite(ctx, user, id)
}

// FavoriteDetail is a favorite joined with its exercise. Stub is set when the
// exercise could not be loaded and was rebuilt from the favorite itself.
type FavoriteDetail struct {
	Favorite favorites.Favorite `json:"favorite" yaml:"favorite"`
	Exercise exercise.Exercise  `json:"exercise" yaml:"exercise"`
	Stub     bool               `json:"stub" yaml:"stub"`
}

// Favorites lists user's favorites with their exercise details, newest first.
func (c *Catalog) Favorites(ctx context.Context, user string) ([]FavoriteDetail, error) {
	if c.favs == nil {
		return nil, ErrNoFavoritesStore
	}

	favs, err := c.favs.List(ctx, user)
	if err != nil {
		return nil, err
	}

	out := make([]FavoriteDetail, len(favs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailConcurrency)
	for i, f := range favs {
		g.Go(func() error {
			ex, err := c.Detail(gctx, f.ExerciseID)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.WithError(err).Warnf("failed to load favorite exercise %d", f.ExerciseID)
				out[i] = FavoriteDetail{Favorite: f, Exercise: stub(f), Stub: true}
				return nil
			}
			out[i] = FavoriteDetail{Favorite: f, Exercise: ex}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func stub(f favorites.Favorite) exercise.Exercise {
	return exercise.Exercise{
		ID:       f.ExerciseID,
		Name:     f.ExerciseName,
		Category: f.CategoryID,
		Images:   []exercise.Image{},
	}
}

// BrowseResult is one page of a Browse.
type BrowseResult struct {
	Exercises  []exercise.Exercise `json:"exercises" yaml:"exercises"`
	Page       int                 `json:"page" yaml:"page"`
	TotalPages int                 `json:"totalPages" yaml:"totalPages"`
	Total      int                 `json:"total" yaml:"total"`
}

// Browse fetches a batch of exercises narrowed server-side by category and
// muscle, filters the rest locally, puts illustrated exercises first and
// returns the requested page.
func (c *Catalog) Browse(ctx context.Context, p search.Params) (BrowseResult, error) {
	p = p.WithDefaults()
	if err := p.Validate(); err != nil {
		return BrowseResult{}, err
	}

	page, err := c.api.Exercises(ctx, wger.ListOptions{
		Language: exercise.LanguageEnglish,
		Limit:    BrowseFetchLimit,
		Category: p.Category,
		Muscle:   p.Muscle,
	})
	if err != nil {
		return BrowseResult{}, fmt.Errorf("failed to browse exercises: %w", err)
	}

	matched := search.SortImagesFirst(search.ApplyFilters(page.Results, p))
	items, total := search.Paginate(matched, p.Page, p.Limit)
	return BrowseResult{
		Exercises:  items,
		Page:       p.Page,
		TotalPages: total,
		Total:      len(matched),
	}, nil
}
