// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sahilm/fuzzy"

	"github.com/staranto/exefitgo/internal/exercise"
)

const (
	DefaultPage  = 1
	DefaultLimit = 5
	MaxLimit     = 50
)

var ErrInvalidParams = errors.New("invalid search parameters")

// Params narrows and pages an exercise listing. Zero ids mean "any".
type Params struct {
	Search    string
	Category  int
	Muscle    int
	Equipment int
	Page      int
	Limit     int
	Fuzzy     bool
}

// WithDefaults fills a zero Page or Limit.
func (p Params) WithDefaults() Params {
	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	return p
}

func (p Params) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Page, validation.Required, validation.Min(1)),
		validation.Field(&p.Limit, validation.Required, validation.Min(1), validation.Max(MaxLimit)),
		validation.Field(&p.Category, validation.Min(0)),
		validation.Field(&p.Muscle, validation.Min(0)),
		validation.Field(&p.Equipment, validation.Min(0)),
	)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidParams, err.Error())
	}
	return nil
}

// SearchExercises keeps exercises whose name or plain description contains
// term, ignoring case. A blank term keeps everything.
func SearchExercises(exs []exercise.Exercise, term string) []exercise.Exercise {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return exs
	}

	out := make([]exercise.Exercise, 0, len(exs))
	for _, ex := range exs {
		if strings.Contains(strings.ToLower(ex.Name), term) ||
			strings.Contains(strings.ToLower(ex.PlainDescription()), term) {
			out = append(out, ex)
		}
	}
	return out
}

// byName adapts a slice of exercises to fuzzy.Source.
type byName []exercise.Exercise

func (b byName) String(i int) string { return b[i].DisplayName() }
func (b byName) Len() int            { return len(b) }

// FuzzySearch keeps exercises whose name fuzzily matches term, best match
// first.
func FuzzySearch(exs []exercise.Exercise, term string) []exercise.Exercise {
	term = strings.TrimSpace(term)
	if term == "" {
		return exs
	}

	matches := fuzzy.FindFrom(term, byName(exs))
	out := make([]exercise.Exercise, 0, len(matches))
	for _, m := range matches {
		out = append(out, exs[m.Index])
	}
	return out
}

func FilterByCategory(exs []exercise.Exercise, id int) []exercise.Exercise {
	return filter(exs, id, exercise.Exercise.InCategory)
}

func FilterByMuscle(exs []exercise.Exercise, id int) []exercise.Exercise {
	return filter(exs, id, exercise.Exercise.HasMuscle)
}

func FilterByEquipment(exs []exercise.Exercise, id int) []exercise.Exercise {
	return filter(exs, id, exercise.Exercise.HasEquipment)
}

func filter(exs []exercise.Exercise, id int, keep func(exercise.Exercise, int) bool) []exercise.Exercise {
	if id == 0 {
		return exs
	}
	out := make([]exercise.Exercise, 0, len(exs))
	for _, ex := range exs {
		if keep(ex, id) {
			out = append(out, ex)
		}
	}
	return out
}

// ApplyFilters runs the search and every id filter in p, in that order.
func ApplyFilters(exs []exercise.Exercise, p Params) []exercise.Exercise {
	if p.Fuzzy {
		exs = FuzzySearch(exs, p.Search)
	} else {
		exs = SearchExercises(exs, p.Search)
	}
	exs = FilterByCategory(exs, p.Category)
	exs = FilterByMuscle(exs, p.Muscle)
	return FilterByEquipment(exs, p.Equipment)
}

// SortImagesFirst returns a copy with illustrated exercises ahead of the
// rest. Relative order is otherwise kept.
func SortImagesFirst(exs []exercise.Exercise) []exercise.Exercise {
	out := make([]exercise.Exercise, len(exs))
	copy(out, exs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].HasImages() && !out[j].HasImages()
	})
	return out
}

// Paginate returns the 1-based page of items and the page count, which is
// never less than one. A page past the end is empty.
func Paginate[T any](items []T, page, limit int) ([]T, int) {
	if limit < 1 {
		limit = DefaultLimit
	}
	if page < 1 {
		page = DefaultPage
	}

	total := (len(items) + limit - 1) / limit
	if total < 1 {
		total = 1
	}

	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}, total
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], total
}
