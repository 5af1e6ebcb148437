// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/apex/log"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/staranto/exefitgo/internal/exercise"
)

const (
	DefaultMaxEntries = 50
	DefaultTTL        = 7 * 24 * time.Hour
	DefaultNamespace  = "exefit"
)

// StorageKey is the key the persisted entry set lives under.
func StorageKey(namespace string) string {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return namespace + "-exercise-cache"
}

// Entry is a cached exercise and the time it was written, in epoch millis.
type Entry struct {
	Exercise exercise.Exercise `json:"exercise"`
	CachedAt int64             `json:"cachedAt"`
}

// Time returns CachedAt as a time.Time.
func (e Entry) Time() time.Time {
	return time.UnixMilli(e.CachedAt)
}

// Stats is a read-only snapshot of the cache. Count, Oldest and Newest cover
// fresh entries only. Expired counts entries past the TTL that have not been
// swept yet. Oldest and Newest are zero when nothing is fresh.
type Stats struct {
	Count   int           `json:"count"`
	Expired int           `json:"expired"`
	MaxSize int           `json:"maxSize"`
	TTL     time.Duration `json:"ttl"`
	Oldest  int64         `json:"oldestCachedAt,omitempty"`
	Newest  int64         `json:"newestCachedAt,omitempty"`
}

type options struct {
	MaxEntries int
	TTL        time.Duration
	Now        func() time.Time
}

func (o options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.MaxEntries, validation.Required, validation.Min(1)),
		validation.Field(&o.TTL, validation.Required, validation.Min(time.Millisecond)),
	)
}

// Option customizes a Cache.
type Option func(*options)

// WithMaxEntries caps the number of entries. Defaults to DefaultMaxEntries.
func WithMaxEntries(n int) Option {
	return func(o *options) { o.MaxEntries = n }
}

// WithTTL sets how long an entry stays fresh. Defaults to DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.TTL = ttl }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.Now = now }
}

// Cache is a bounded, write-ordered exercise cache with lazy expiry.
type Cache struct {
	mu      sync.Mutex
	store   Store
	max     int
	ttl     time.Duration
	now     func() time.Time
	entries []Entry // newest first
}

// New builds a Cache over store and loads whatever the store already holds.
// An invalid option falls back to its default.
func New(store Store, opts ...Option) *Cache {
	o := options{MaxEntries: DefaultMaxEntries, TTL: DefaultTTL, Now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.Validate(); err != nil {
		log.WithError(err).Warn("invalid cache options, using defaults for those")
		errs, ok := err.(validation.Errors)
		if !ok {
			errs = validation.Errors{"MaxEntries": err, "TTL": err}
		}
		if _, bad := errs["MaxEntries"]; bad {
			o.MaxEntries = DefaultMaxEntries
		}
		if _, bad := errs["TTL"]; bad {
			o.TTL = DefaultTTL
		}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if store == nil {
		store = NewMemoryStore()
	}

	c := &Cache{
		store: store,
		max:   o.MaxEntries,
		ttl:   o.TTL,
		now:   o.Now,
	}
	c.entries = c.load()
	return c
}

// Put inserts or replaces ex at the most recent position with a fresh
// timestamp, evicts the oldest writes beyond capacity and persists.
func (c *Cache) Put(ex exercise.Exercise) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// The new entry goes first by position, whatever its timestamp, so a
	// clock that steps backward can never evict the write being made.
	entries := make([]Entry, 0, len(c.entries)+1)
	entries = append(entries, Entry{Exercise: ex, CachedAt: c.now().UnixMilli()})
	for _, e := range c.entries {
		if e.Exercise.ID != ex.ID {
			entries = append(entries, e)
		}
	}

	if len(entries) > c.max {
		for _, e := range entries[c.max:] {
			log.Debugf("evicted exercise %d from cache", e.Exercise.ID)
		}
		entries = entries[:c.max]
	}

	c.entries = entries
	c.persist()
	log.Debugf("cached exercise: %s (%d)", ex.DisplayName(), ex.ID)
}

// Get returns the cached exercise for id when present and fresh. Stale
// entries found along the way are swept from memory and from the store.
// Reads never refresh an entry's position.
func (c *Cache) Get(id int) (exercise.Exercise, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if removed := c.sweep(); removed > 0 {
		log.Debugf("removed %d expired exercises", removed)
		c.persist()
	}

	for _, e := range c.entries {
		if e.Exercise.ID == id {
			return e.Exercise, true
		}
	}
	return exercise.Exercise{}, false
}

// Remove deletes id. Removing an absent id is a no-op.
func (c *Cache) Remove(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.entries[:0:0]
	for _, e := range c.entries {
		if e.Exercise.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(c.entries) {
		return
	}

	c.entries = kept
	c.persist()
	log.Debugf("removed exercise %d from cache", id)
}

// Clear drops every entry and the persisted representation.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = nil
	if err := c.store.Delete(); err != nil {
		log.WithError(err).Warn("failed to clear persisted exercise cache")
		return
	}
	log.Debug("exercise cache cleared")
}

// Stats reports the current shape of the cache without modifying it.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{MaxSize: c.max, TTL: c.ttl}
	now := c.now()
	for _, e := range c.entries {
		if c.expired(e, now) {
			s.Expired++
			continue
		}
		if s.Count == 0 || e.CachedAt < s.Oldest {
			s.Oldest = e.CachedAt
		}
		if s.Count == 0 || e.CachedAt > s.Newest {
			s.Newest = e.CachedAt
		}
		s.Count++
	}
	return s
}

// Entries returns a copy of every entry, newest first, including ones that
// have expired but not been swept.
func (c *Cache) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Expired reports whether e is past the TTL right now.
func (c *Cache) Expired(e Entry) bool {
	return c.expired(e, c.now())
}

func (c *Cache) expired(e Entry, now time.Time) bool {
	return now.UnixMilli()-e.CachedAt >= c.ttl.Milliseconds()
}

// sweep drops expired entries and returns how many went away.
func (c *Cache) sweep() int {
	now := c.now()
	kept := c.entries[:0:0]
	for _, e := range c.entries {
		if !c.expired(e, now) {
			kept = append(kept, e)
		}
	}
	removed := len(c.entries) - len(kept)
	if removed > 0 {
		c.entries = kept
	}
	return removed
}

// load reads the persisted entry set. Anything unreadable is an empty cache.
func (c *Cache) load() []Entry {
	raw, ok, err := c.store.Load()
	if err != nil {
		log.WithError(err).Warn("failed to read persisted exercise cache")
		return nil
	}
	if !ok || len(raw) == 0 {
		return nil
	}

	var stored []Entry
	if err := json.Unmarshal(raw, &stored); err != nil {
		log.WithError(err).Warn("persisted exercise cache is corrupt, starting empty")
		return nil
	}

	// Another writer may have left things out of order or duplicated.
	sort.SliceStable(stored, func(i, j int) bool {
		return stored[i].CachedAt > stored[j].CachedAt
	})
	seen := make(map[int]struct{}, len(stored))
	entries := make([]Entry, 0, len(stored))
	for _, e := range stored {
		if _, dup := seen[e.Exercise.ID]; dup {
			continue
		}
		seen[e.Exercise.ID] = struct{}{}
		entries = append(entries, e)
	}
	if len(entries) > c.max {
		entries = entries[:c.max]
	}

	log.Debugf("loaded %d cached exercises", len(entries))
	return entries
}

// persist writes the full entry set. Failures leave memory authoritative.
func (c *Cache) persist() {
	entries := c.entries
	if entries == nil {
		entries = []Entry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		log.WithError(err).Warn("failed to encode exercise cache")
		return
	}
	if err := c.store.Save(raw); err != nil {
		log.WithError(err).Warn("failed to persist exercise cache")
	}
}
