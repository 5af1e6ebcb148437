// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package cache keeps recently fetched exercise details so repeated lookups
// do not go back to the API. The cache is bounded (oldest writes are evicted
// first), entries expire after a TTL that is only checked when the cache is
// read, and the whole entry set is persisted through a pluggable Store after
// every change. Storage failures are logged and never reach the caller.
package cache
