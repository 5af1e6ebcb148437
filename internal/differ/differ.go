// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package differ compares a cached exercise with a fresh copy from the API.
package differ

import (
	"encoding/json"
	"fmt"

	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// Format selects how a difference is rendered.
type Format string

const (
	// FormatASCII is a unified, line by line view of the left document.
	FormatASCII Format = "ascii"
	// FormatDelta is the jsondiffpatch delta document.
	FormatDelta Format = "delta"
)

// Result is the outcome of a comparison. Text is empty when nothing changed.
type Result struct {
	Modified bool
	Text     string
}

// Compare diffs left against right, both marshaled to JSON first.
func Compare(left, right any, format Format, color bool) (Result, error) {
	lb, err := json.Marshal(left)
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal left side: %w", err)
	}
	rb, err := json.Marshal(right)
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal right side: %w", err)
	}
	return CompareJSON(lb, rb, format, color)
}

// CompareJSON diffs two JSON objects.
func CompareJSON(left, right []byte, format Format, color bool) (Result, error) {
	d, err := gojsondiff.New().Compare(left, right)
	if err != nil {
		return Result{}, fmt.Errorf("failed to compare: %w", err)
	}

	if !d.Modified() {
		return Result{}, nil
	}

	var text string
	switch format {
	case FormatDelta:
		text, err = formatter.NewDeltaFormatter().Format(d)
	case FormatASCII, "":
		var leftObj map[string]interface{}
		if err := json.Unmarshal(left, &leftObj); err != nil {
			return Result{}, fmt.Errorf("failed to decode left side: %w", err)
		}
		text, err = formatter.NewAsciiFormatter(leftObj, formatter.AsciiFormatterConfig{
			ShowArrayIndex: true,
			Coloring:       color,
		}).Format(d)
	default:
		return Result{}, fmt.Errorf("unknown diff format: %s", format)
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to format diff: %w", err)
	}

	return Result{Modified: true, Text: text}, nil
}
