// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"sync"

	"github.com/staranto/exefitgo/internal/cacheutil"
)

// Store persists the serialized entry set under a single key.
// Load reports ok=false when nothing has been stored yet.
type Store interface {
	Load() (data []byte, ok bool, err error)
	Save(data []byte) error
	Delete() error
}

// MemoryStore keeps the blob in process memory. It is what the cache falls
// back to when no durable store is available.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
	ok   bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ok {
		return nil, false, nil
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, true, nil
}

func (s *MemoryStore) Save(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append(s.data[:0], data...)
	s.ok = true
	return nil
}

func (s *MemoryStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data, s.ok = nil, false
	return nil
}

// FileStore keeps the blob in the exefit cache directory (see cacheutil).
// When caching is disabled through EXEFIT_CACHE it behaves like an empty,
// write-discarding store.
type FileStore struct {
	key     string
	subdirs []string
}

func NewFileStore(namespace string) *FileStore {
	return &FileStore{key: StorageKey(namespace)}
}

// Path is where the blob lives, whether or not it exists yet.
func (s *FileStore) Path() string {
	p, _ := cacheutil.EntryPath(s.subdirs, s.key)
	return p
}

func (s *FileStore) Load() ([]byte, bool, error) {
	entry, ok := cacheutil.Read(s.subdirs, s.key)
	if !ok {
		return nil, false, nil
	}
	return entry.Data, true, nil
}

func (s *FileStore) Save(data []byte) error {
	return cacheutil.Write(s.subdirs, s.key, data)
}

func (s *FileStore) Delete() error {
	return cacheutil.Remove(s.subdirs, s.key)
}
