// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package favorites

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/exefitgo/internal/exercise"
)

func openTestStore(t *testing.T) (*Store, *time.Time) {
	t.Helper()

	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "db", "favorites.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.WithClock(func() time.Time { return now })
	return s, &now
}

func TestFavoriteID(t *testing.T) {
	assert.Equal(t, "alice_73", FavoriteID("alice", 73))
}

func TestAddListRemove(t *testing.T) {
	s, now := openTestStore(t)
	ctx := context.Background()

	f, err := s.Add(ctx, "alice", exercise.Exercise{ID: 73, Name: "Bench Press", Category: 11})
	require.NoError(t, err)
	assert.Equal(t, "alice_73", f.ID)
	assert.Equal(t, "Bench Press", f.ExerciseName)

	*now = now.Add(time.Minute)
	_, err = s.Add(ctx, "alice", exercise.Exercise{ID: 9, Category: 9})
	require.NoError(t, err)

	_, err = s.Add(ctx, "bob", exercise.Exercise{ID: 73, Name: "Bench Press"})
	require.NoError(t, err)

	list, err := s.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 9, list[0].ExerciseID, "newest first")
	assert.Equal(t, "Exercise #9", list[0].ExerciseName)
	assert.Equal(t, 73, list[1].ExerciseID)

	ok, err := s.IsFavorite(ctx, "alice", 73)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Remove(ctx, "alice", 73))
	ok, err = s.IsFavorite(ctx, "alice", 73)
	require.NoError(t, err)
	assert.False(t, ok)

	// Idempotent.
	require.NoError(t, s.Remove(ctx, "alice", 73))

	// Other users are untouched.
	ok, err = s.IsFavorite(ctx, "bob", 73)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAdd_Upserts(t *testing.T) {
	s, now := openTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, "alice", exercise.Exercise{ID: 1, Name: "Old"})
	require.NoError(t, err)
	_, err = s.Add(ctx, "alice", exercise.Exercise{ID: 2, Name: "Other"})
	require.NoError(t, err)

	*now = now.Add(time.Hour)
	_, err = s.Add(ctx, "alice", exercise.Exercise{ID: 1, Name: "New"})
	require.NoError(t, err)

	list, err := s.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].ExerciseID)
	assert.Equal(t, "New", list[0].ExerciseName)
}

func TestUserRequired(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, "", exercise.Exercise{ID: 1})
	assert.True(t, errors.Is(err, ErrUserNotSet))
	assert.ErrorIs(t, s.Remove(ctx, "", 1), ErrUserNotSet)
	_, err = s.List(ctx, "")
	assert.ErrorIs(t, err, ErrUserNotSet)
	_, err = s.IsFavorite(ctx, "", 1)
	assert.ErrorIs(t, err, ErrUserNotSet)
}

func TestList_Empty(t *testing.T) {
	s, _ := openTestStore(t)

	list, err := s.List(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDefaultDSN(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("EXEFIT_CACHE_DIR", dir)
	assert.Equal(t, filepath.Join(dir, "favorites.db"), DefaultDSN())
}
