// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package driller

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Driller resolves path against json. Segments are separated by dots and may
// carry [n] indexes, e.g. images[0].image. A single element array is drilled
// through transparently, so images.image works when there is one image. A
// multi element array without an index yields the array of that key across
// all elements.
func Driller(json string, path string) gjson.Result {
	cur := gjson.Parse(json)

	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			continue
		}

		key, idxs, ok := splitSegment(seg)
		if !ok {
			return gjson.Result{}
		}

		if key != "" {
			if cur.IsArray() {
				arr := cur.Array()
				if len(arr) == 1 {
					cur = arr[0].Get(escape(key))
				} else {
					cur = cur.Get("#." + escape(key))
				}
			} else {
				cur = cur.Get(escape(key))
			}
		}

		for _, idx := range idxs {
			if !cur.IsArray() {
				return gjson.Result{}
			}
			arr := cur.Array()
			if idx < 0 || idx >= len(arr) {
				return gjson.Result{}
			}
			cur = arr[idx]
		}

		if !cur.Exists() {
			return gjson.Result{}
		}
	}

	if cur.IsArray() {
		if arr := cur.Array(); len(arr) == 1 {
			return arr[0]
		}
	}

	return cur
}

// splitSegment separates name[1][2] into name and its indexes.
func splitSegment(seg string) (string, []int, bool) {
	open := strings.IndexByte(seg, '[')
	if open < 0 {
		return seg, nil, true
	}

	key := seg[:open]
	var idxs []int
	rest := seg[open:]
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, false
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return "", nil, false
		}
		n, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return "", nil, false
		}
		idxs = append(idxs, n)
		rest = rest[end+1:]
	}
	return key, idxs, true
}

// escape quotes gjson path syntax characters in a literal key.
func escape(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
