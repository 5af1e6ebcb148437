// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package wger is a small client for the public wger exercise API
// (https://wger.de/api/v2). Requests are rate limited on the client side and
// retried once when no response arrives. HTTP failures come back as *APIError.
package wger
