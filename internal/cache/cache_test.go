// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cache

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/exefitgo/internal/exercise"
)

var epoch = time.UnixMilli(1_700_000_000_000)

type clock struct{ t time.Time }

func newClock() *clock { return &clock{t: epoch} }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

// at moves the clock to ms milliseconds after epoch.
func (c *clock) at(ms int64) { c.t = epoch.Add(time.Duration(ms) * time.Millisecond) }

func ex(id int) exercise.Exercise { return exercise.Exercise{ID: id, Name: "ex"} }

func ids(entries []Entry) []int {
	out := make([]int, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Exercise.ID)
	}
	return out
}

// failingStore errors on every call.
type failingStore struct{ saves int }

func (s *failingStore) Load() ([]byte, bool, error) { return nil, false, errors.New("load failed") }

func (s *failingStore) Save([]byte) error {
	s.saves++
	return errors.New("quota exceeded")
}

func (s *failingStore) Delete() error { return errors.New("delete failed") }

func TestStorageKey(t *testing.T) {
	assert.Equal(t, "exefit-exercise-cache", StorageKey(""))
	assert.Equal(t, "gym-exercise-cache", StorageKey("gym"))
}

func TestPutGet(t *testing.T) {
	clk := newClock()
	c := New(NewMemoryStore(), WithClock(clk.now))

	c.Put(exercise.Exercise{ID: 7, Name: "Squat"})
	got, ok := c.Get(7)
	require.True(t, ok)
	assert.Equal(t, "Squat", got.Name)

	_, ok = c.Get(8)
	assert.False(t, ok)
}

func TestPut_ReplacesAndMovesToFront(t *testing.T) {
	clk := newClock()
	c := New(NewMemoryStore(), WithClock(clk.now))

	c.Put(exercise.Exercise{ID: 1, Name: "old"})
	clk.advance(time.Millisecond)
	c.Put(ex(2))
	clk.advance(time.Millisecond)
	c.Put(exercise.Exercise{ID: 1, Name: "new"})

	assert.Equal(t, []int{1, 2}, ids(c.Entries()))
	got, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, "new", got.Name)
	assert.Equal(t, 2, c.Stats().Count)
}

func TestPut_EvictsOldest(t *testing.T) {
	clk := newClock()
	c := New(NewMemoryStore(), WithClock(clk.now), WithMaxEntries(2), WithTTL(time.Second))

	for _, id := range []int{1, 2, 3} {
		c.Put(ex(id))
		clk.advance(time.Millisecond)
	}

	assert.Equal(t, 2, c.Stats().Count)
	_, ok := c.Get(1)
	assert.False(t, ok)
	_, ok = c.Get(2)
	assert.True(t, ok)
	_, ok = c.Get(3)
	assert.True(t, ok)
}

func TestPut_SameTimestampEvictsOldestWrite(t *testing.T) {
	clk := newClock()
	c := New(NewMemoryStore(), WithClock(clk.now), WithMaxEntries(2))

	c.Put(ex(1))
	c.Put(ex(2))
	c.Put(ex(3))

	assert.Equal(t, []int{3, 2}, ids(c.Entries()))
}

func TestPut_ClockStepsBackward(t *testing.T) {
	clk := newClock()
	c := New(NewMemoryStore(), WithClock(clk.now), WithMaxEntries(2))

	clk.at(100)
	c.Put(ex(1))
	c.Put(ex(2))
	clk.at(50)
	c.Put(ex(3))

	got, ok := c.Get(3)
	require.True(t, ok, "the entry just written survives its own put")
	assert.Equal(t, 3, got.ID)
	assert.Equal(t, []int{3, 2}, ids(c.Entries()))
}

func TestPut_AfterLoadingEntriesFromAFastClock(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save([]byte(`[
		{"exercise":{"id":1},"cachedAt":5000},
		{"exercise":{"id":2},"cachedAt":4000}
	]`)))

	c := New(store, WithMaxEntries(2), WithClock(func() time.Time { return time.UnixMilli(3000) }))
	c.Put(ex(3))

	_, ok := c.Get(3)
	assert.True(t, ok)
	assert.Equal(t, []int{3, 1}, ids(c.Entries()))
}

func TestGet_DoesNotRefreshRecency(t *testing.T) {
	clk := newClock()
	c := New(NewMemoryStore(), WithClock(clk.now), WithMaxEntries(2))

	c.Put(ex(1))
	clk.advance(time.Millisecond)
	c.Put(ex(2))
	clk.advance(time.Millisecond)

	_, ok := c.Get(1)
	require.True(t, ok)

	c.Put(ex(3))
	_, ok = c.Get(1)
	assert.False(t, ok, "reads must not protect an entry from eviction")
	assert.Equal(t, []int{3, 2}, ids(c.Entries()))
}

func TestGet_Expiry(t *testing.T) {
	clk := newClock()
	store := NewMemoryStore()
	c := New(store, WithClock(clk.now), WithTTL(time.Second))

	c.Put(ex(1))
	clk.at(1500)

	_, ok := c.Get(1)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Stats().Count)

	raw, found, err := store.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestGet_ExpiresAtExactlyTTL(t *testing.T) {
	clk := newClock()
	c := New(NewMemoryStore(), WithClock(clk.now), WithTTL(time.Second))

	c.Put(ex(1))
	clk.at(999)
	_, ok := c.Get(1)
	assert.True(t, ok)

	clk.at(1000)
	_, ok = c.Get(1)
	assert.False(t, ok)
}

func TestGet_SweepsEveryExpiredEntry(t *testing.T) {
	clk := newClock()
	c := New(NewMemoryStore(), WithClock(clk.now), WithTTL(time.Second))

	c.Put(ex(1))
	c.Put(ex(2))
	clk.at(800)
	c.Put(ex(3))
	clk.at(1200)

	_, ok := c.Get(3)
	assert.True(t, ok)
	assert.Equal(t, []int{3}, ids(c.Entries()))
}

func TestStats(t *testing.T) {
	clk := newClock()
	c := New(NewMemoryStore(), WithClock(clk.now), WithMaxEntries(10), WithTTL(time.Second))

	empty := c.Stats()
	assert.Equal(t, Stats{MaxSize: 10, TTL: time.Second}, empty)

	c.Put(ex(1))
	clk.at(500)
	c.Put(ex(2))
	clk.at(1200)

	s := c.Stats()
	assert.Equal(t, 1, s.Count, "expired entries are not counted")
	assert.Equal(t, 1, s.Expired)
	assert.Equal(t, epoch.UnixMilli()+500, s.Oldest)
	assert.Equal(t, epoch.UnixMilli()+500, s.Newest)
	assert.Equal(t, []int{2, 1}, ids(c.Entries()), "stats do not sweep")

	// A read sweeps the expired entry out.
	c.Get(2)
	s = c.Stats()
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 0, s.Expired)
	assert.Equal(t, []int{2}, ids(c.Entries()))

	clk.at(2000)
	s = c.Stats()
	assert.Equal(t, 0, s.Count)
	assert.Equal(t, 1, s.Expired)
	assert.Zero(t, s.Oldest)
	assert.Zero(t, s.Newest)
}

func TestRemove(t *testing.T) {
	c := New(NewMemoryStore())
	c.Put(ex(1))
	c.Put(ex(2))

	c.Remove(1)
	_, ok := c.Get(1)
	assert.False(t, ok)
	assert.Equal(t, 1, c.Stats().Count)

	// Removing an absent id is a no-op.
	c.Remove(99)
	assert.Equal(t, 1, c.Stats().Count)
}

func TestRemove_Twice(t *testing.T) {
	store := NewMemoryStore()
	c := New(store)
	c.Put(ex(1))
	c.Put(ex(2))

	assert.NotPanics(t, func() {
		c.Remove(1)
		c.Remove(1)
	})

	_, ok := c.Get(1)
	assert.False(t, ok)
	assert.Equal(t, 1, c.Stats().Count)
	assert.Equal(t, []int{2}, ids(New(store).Entries()))
}

func TestClear(t *testing.T) {
	store := NewMemoryStore()
	c := New(store)
	c.Put(ex(1))
	c.Put(ex(2))

	c.Clear()
	assert.Equal(t, 0, c.Stats().Count)
	_, ok := c.Get(1)
	assert.False(t, ok)

	_, found, err := store.Load()
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPersistedFormat(t *testing.T) {
	clk := newClock()
	store := NewMemoryStore()
	c := New(store, WithClock(clk.now))

	c.Put(exercise.Exercise{ID: 1, Name: "Squat"})
	clk.advance(10 * time.Millisecond)
	c.Put(exercise.Exercise{ID: 2, Name: "Bench"})

	raw, found, err := store.Load()
	require.NoError(t, err)
	require.True(t, found)

	var stored []struct {
		Exercise map[string]any `json:"exercise"`
		CachedAt int64          `json:"cachedAt"`
	}
	require.NoError(t, json.Unmarshal(raw, &stored))
	require.Len(t, stored, 2)
	assert.Equal(t, "Bench", stored[0].Exercise["name"])
	assert.Equal(t, epoch.UnixMilli()+10, stored[0].CachedAt)
	assert.Equal(t, "Squat", stored[1].Exercise["name"])
	assert.Equal(t, epoch.UnixMilli(), stored[1].CachedAt)
}

func TestNew_LoadsFromStore(t *testing.T) {
	clk := newClock()
	store := NewMemoryStore()
	first := New(store, WithClock(clk.now))
	first.Put(ex(1))
	clk.advance(time.Millisecond)
	first.Put(ex(2))

	second := New(store, WithClock(clk.now))
	assert.Equal(t, []int{2, 1}, ids(second.Entries()))
	_, ok := second.Get(1)
	assert.True(t, ok)
}

func TestNew_NormalizesStoredEntries(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save([]byte(`[
		{"exercise":{"id":1},"cachedAt":100},
		{"exercise":{"id":2},"cachedAt":300},
		{"exercise":{"id":1},"cachedAt":50},
		{"exercise":{"id":3},"cachedAt":200}
	]`)))

	c := New(store, WithMaxEntries(2), WithClock(func() time.Time { return time.UnixMilli(400) }))
	assert.Equal(t, []int{2, 3}, ids(c.Entries()))
}

func TestNew_CorruptStoreStartsEmpty(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save([]byte("{not json")))

	c := New(store)
	assert.Equal(t, 0, c.Stats().Count)

	c.Put(ex(1))
	_, ok := c.Get(1)
	assert.True(t, ok)
}

func TestFailingStoreNeverSurfaces(t *testing.T) {
	store := &failingStore{}
	c := New(store)

	assert.NotPanics(t, func() {
		c.Put(ex(1))
		c.Put(ex(2))
		c.Remove(2)
		c.Clear()
		c.Put(ex(3))
	})

	got, ok := c.Get(3)
	require.True(t, ok, "memory stays authoritative when the store fails")
	assert.Equal(t, 3, got.ID)
	assert.Equal(t, 4, store.saves)
}

func TestInvalidOptionFallsBackAlone(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantMax int
		wantTTL time.Duration
	}{
		{"bad ttl keeps max", []Option{WithMaxEntries(2), WithTTL(0)}, 2, DefaultTTL},
		{"bad max keeps ttl", []Option{WithMaxEntries(-1), WithTTL(time.Minute)}, DefaultMaxEntries, time.Minute},
		{"both valid", []Option{WithMaxEntries(3), WithTTL(time.Hour)}, 3, time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(nil, tt.opts...).Stats()
			assert.Equal(t, tt.wantMax, s.MaxSize)
			assert.Equal(t, tt.wantTTL, s.TTL)
		})
	}
}

func TestInvalidOptionsFallBack(t *testing.T) {
	c := New(nil, WithMaxEntries(0), WithTTL(-time.Second))
	s := c.Stats()
	assert.Equal(t, DefaultMaxEntries, s.MaxSize)
	assert.Equal(t, DefaultTTL, s.TTL)
}
