// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/exefitgo/internal/aws"
	"github.com/staranto/exefitgo/internal/cache"
	"github.com/staranto/exefitgo/internal/cacheutil"
	"github.com/staranto/exefitgo/internal/catalog"
	"github.com/staranto/exefitgo/internal/config"
	"github.com/staranto/exefitgo/internal/favorites"
	"github.com/staranto/exefitgo/internal/wger"
)

const (
	backendFile   = "file"
	backendMemory = "memory"
	backendS3     = "s3"
	backendValkey = "valkey"
)

// NewClient builds the wger client from --api-url and the api.* config.
func NewClient(cmd *cli.Command) *wger.Client {
	rpm, _ := config.GetInt("api.rpm", wger.DefaultRPM)
	ttl, _ := config.GetDuration("api.lookup_ttl", wger.DefaultLookupTTL)
	return wger.New(
		wger.WithBaseURL(cmd.String("api-url")),
		wger.WithRPM(rpm),
		wger.WithLookupTTL(ttl),
	)
}

// NewCache builds the exercise cache over the configured store. The returned
// func releases the store.
func NewCache(ctx context.Context) (*cache.Cache, cache.Store, func()) {
	ns, _ := config.GetString("cache.namespace", cache.DefaultNamespace)
	maxEntries, _ := config.GetInt("cache.max", cache.DefaultMaxEntries)
	ttl, _ := config.GetDuration("cache.ttl", cache.DefaultTTL)

	store, closer := NewStore(ctx, ns)
	return cache.New(store, cache.WithMaxEntries(maxEntries), cache.WithTTL(ttl)), store, closer
}

// NewStore picks the cache store named by cache.backend. EXEFIT_CACHE=0
// forces memory, and a store that cannot be built falls back to memory.
func NewStore(ctx context.Context, namespace string) (cache.Store, func()) {
	noop := func() {}

	backend, _ := config.GetString("cache.backend", backendFile)
	if !cacheutil.Enabled() {
		backend = backendMemory
	}
	log.Debugf("cache backend: %s", backend)

	switch backend {
	case backendFile:
		return cache.NewFileStore(namespace), noop
	case backendMemory:
		return cache.NewMemoryStore(), noop
	case backendS3:
		store, err := newS3Store(ctx, namespace)
		if err == nil {
			return store, noop
		}
		log.WithError(err).Warn("s3 cache store unavailable, using memory")
	case backendValkey:
		store, err := newValkeyStore(namespace)
		if err == nil {
			return store, store.Close
		}
		log.WithError(err).Warn("valkey cache store unavailable, using memory")
	default:
		log.Warnf("unknown cache backend %q, using memory", backend)
	}

	return cache.NewMemoryStore(), noop
}

func newS3Store(ctx context.Context, namespace string) (*cache.S3Store, error) {
	bucket, _ := config.GetString("cache.s3.bucket", "")
	if bucket == "" {
		return nil, errors.New("cache.s3.bucket is not set")
	}
	prefix, _ := config.GetString("cache.s3.prefix", "")
	region, _ := config.GetString("cache.s3.region", "")
	profile, _ := config.GetString("cache.s3.profile", "")
	endpoint, _ := config.GetString("cache.s3.endpoint", "")

	awsCfg, err := aws.LoadAWSConfig(ctx, aws.WithProfile(profile), aws.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := aws.NewS3(awsCfg, aws.WithS3Endpoint(endpoint), aws.WithS3PathStyle(endpoint != ""))
	return cache.NewS3Store(client, bucket, prefix, namespace), nil
}

func newValkeyStore(namespace string) (*cache.ValkeyStore, error) {
	address, _ := config.GetString("cache.valkey.address", "localhost:6379")
	password, _ := config.GetString("cache.valkey.password", "")
	db, _ := config.GetInt("cache.valkey.db", 0)
	prefix, _ := config.GetString("cache.valkey.prefix", "")

	return cache.NewValkeyStore(cache.ValkeyConfig{
		Address:   address,
		Password:  password,
		DB:        db,
		KeyPrefix: prefix,
	}, namespace)
}

// StoreLocation describes where store keeps the cache, for display.
func StoreLocation(store cache.Store) string {
	switch s := store.(type) {
	case *cache.FileStore:
		return s.Path()
	case *cache.S3Store:
		return s.URI()
	case *cache.ValkeyStore:
		return "valkey:" + s.Key()
	case *cache.MemoryStore:
		return backendMemory
	}
	return fmt.Sprintf("%T", store)
}

// OpenFavorites opens the favorites database at favorites.dsn.
func OpenFavorites(ctx context.Context) (*favorites.Store, error) {
	dsn, _ := config.GetString("favorites.dsn", "")
	return favorites.Open(ctx, dsn)
}

// Services is everything an action may need. Close releases it all.
type Services struct {
	Client  *wger.Client
	Cache   *cache.Cache
	Store   cache.Store
	Favs    *favorites.Store
	Catalog *catalog.Catalog

	closers []func()
}

// NewServices wires the client, cache and, when withFavorites is set, the
// favorites store into a Catalog.
func NewServices(ctx context.Context, cmd *cli.Command, withFavorites bool) (*Services, error) {
	s := &Services{Client: NewClient(cmd)}

	var closer func()
	s.Cache, s.Store, closer = NewCache(ctx)
	s.closers = append(s.closers, closer)

	var favs catalog.FavoriteStore
	if withFavorites {
		store, err := OpenFavorites(ctx)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Favs = store
		favs = store
		s.closers = append(s.closers, func() {
			if err := store.Close(); err != nil {
				log.WithError(err).Debug("failed to close favorites database")
			}
		})
	}

	s.Catalog = catalog.New(s.Client, s.Cache, favs)
	return s, nil
}

func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
