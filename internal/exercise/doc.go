// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package exercise holds the wger entities (exercises, images, categories,
// muscles and equipment) shared by the API client, the cache and the output
// layer.
package exercise
