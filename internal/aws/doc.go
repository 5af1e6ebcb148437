// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

// Package aws contains AWS SDK v2 helpers used by the S3-backed exercise cache
// store.
package aws
