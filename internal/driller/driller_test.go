// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// no-cloc
package driller

import (
	"testing"
)

func TestDriller(t *testing.T) {
	tests := []struct {
		name        string
		json        string
		path        string
		expectedStr string
		isNil       bool
		isArray     bool
	}{
		// Simple key tests
		{
			name:        "simple string key",
			json:        `{"name": "squat"}`,
			path:        "name",
			expectedStr: "squat",
		},
		{
			name:        "simple number key",
			json:        `{"count": 42}`,
			path:        "count",
			expectedStr: "42",
		},
		{
			name:        "simple boolean key true",
			json:        `{"active": true}`,
			path:        "active",
			expectedStr: "true",
		},
		{
			name:        "simple boolean key false",
			json:        `{"active": false}`,
			path:        "active",
			expectedStr: "false",
		},
		{
			name:  "simple null key",
			json:  `{"value": null}`,
			path:  "value",
			isNil: true,
		},
		// Nested object tests
		{
			name:        "nested single level",
			json:        `{"category": {"name": "Chest"}}`,
			path:        "category.name",
			expectedStr: "Chest",
		},
		{
			name:        "nested multiple levels",
			json:        `{"exercise": {"detail": {"license": "value"}}}`,
			path:        "exercise.detail.license",
			expectedStr: "value",
		},
		// Array access tests - single element array
		{
			name:        "single element array returns element",
			json:        `{"variations": ["only"]}`,
			path:        "variations",
			expectedStr: "only",
		},
		{
			name:        "single element array of objects drills through",
			json:        `{"variations": [{"id": "Squat"}]}`,
			path:        "variations.id",
			expectedStr: "Squat",
		},
		// Array access tests - multi element array (returns array)
		{
			name:    "multi element array returns array",
			json:    `{"variations": ["Squat", "Lunge"]}`,
			path:    "variations",
			isArray: true,
		},
		// Array access tests - explicit index
		{
			name:        "array with explicit index 0",
			json:        `{"variations": ["Squat", "Lunge", "Deadlift"]}`,
			path:        "variations[0]",
			expectedStr: "Squat",
		},
		{
			name:        "array with explicit index 1",
			json:        `{"variations": ["Squat", "Lunge", "Deadlift"]}`,
			path:        "variations[1]",
			expectedStr: "Lunge",
		},
		{
			name:        "array with explicit index 2",
			json:        `{"variations": ["Squat", "Lunge", "Deadlift"]}`,
			path:        "variations[2]",
			expectedStr: "Deadlift",
		},
		{
			name:        "array with last valid index",
			json:        `{"variations": [10, 20, 30]}`,
			path:        "variations[2]",
			expectedStr: "30",
		},
		// Array inside nested objects
		{
			name:        "nested object with array access explicit index",
			json:        `{"category": {"aliases": ["press", "category"]}}`,
			path:        "category.aliases[0]",
			expectedStr: "press",
		},
		{
			name:        "nested object with array access second element",
			json:        `{"category": {"aliases": ["press", "category"]}}`,
			path:        "category.aliases[1]",
			expectedStr: "category",
		},
		// Array of objects
		{
			name:        "single element array of objects drills through property",
			json:        `{"favorites": [{"id": 1, "name": "Chest"}]}`,
			path:        "favorites.name",
			expectedStr: "Chest",
		},
		{
			name:        "array of objects with explicit index",
			json:        `{"favorites": [{"id": 1, "name": "Chest"}, {"id": 2, "name": "Legs"}]}`,
			path:        "favorites[1].name",
			expectedStr: "Legs",
		},
		{
			name:        "array of objects with multiple levels",
			json:        `{"workout": {"days": [{"name": "push", "primary": {"name": "Chest"}}]}}`,
			path:        "workout.days[0].primary.name",
			expectedStr: "Chest",
		},
		// Key names with special characters
		{
			name:        "key with hyphen",
			json:        `{"my-key": "value"}`,
			path:        "my-key",
			expectedStr: "value",
		},
		{
			name:        "key with underscore",
			json:        `{"my_key": "value"}`,
			path:        "my_key",
			expectedStr: "value",
		},
		{
			name:        "key with numbers",
			json:        `{"key123": "value"}`,
			path:        "key123",
			expectedStr: "value",
		},
		// Error cases - invalid paths
		{
			name:  "nonexistent key returns empty result",
			json:  `{"name": "squat"}`,
			path:  "missing",
			isNil: true,
		},
		{
			name:  "invalid array index returns empty result",
			json:  `{"variations": ["a", "b"]}`,
			path:  "variations[10]",
			isNil: true,
		},
		{
			name:  "nested missing key returns empty result",
			json:  `{"category": {"name": "Chest"}}`,
			path:  "category.missing",
			isNil: true,
		},
		// Empty structures
		{
			name:  "empty object returns empty result for any key",
			json:  `{}`,
			path:  "any",
			isNil: true,
		},
		{
			name:  "empty array with index returns empty result",
			json:  `{"variations": []}`,
			path:  "variations[0]",
			isNil: true,
		},
		// Exercise records
		{
			name:        "exercise image url",
			json:        `{"id": 73, "images": [{"id": 1, "image": "https://wger.de/media/bench.png", "is_main": true}]}`,
			path:        "images.image",
			expectedStr: "https://wger.de/media/bench.png",
		},
		{
			name:        "exercise second muscle",
			json:        `{"id": 73, "muscles": [4, 2, 5]}`,
			path:        "muscles[1]",
			expectedStr: "2",
		},
		{
			name:        "cache entry exercise name",
			json:        `{"exercise": {"id": 73, "name": "Bench Press"}, "cachedAt": 1700000000000}`,
			path:        "exercise.name",
			expectedStr: "Bench Press",
		},
		{
			name:        "favorite detail nested image",
			json:        `{"favorite": {"id": "alice_73"}, "exercise": {"images": [{"image": "a.png"}, {"image": "b.png"}]}}`,
			path:        "exercise.images[1].image",
			expectedStr: "b.png",
		},
		{
			name:    "multi element array drills to each element",
			json:    `{"images": [{"image": "a.png"}, {"image": "b.png"}]}`,
			path:    "images.image",
			isArray: true,
		},
		{
			name:  "malformed index",
			json:  `{"variations": ["a"]}`,
			path:  "variations[x]",
			isNil: true,
		},
		{
			name:        "key needing escape",
			json:        `{"a*b": "star"}`,
			path:        "a*b",
			expectedStr: "star",
		},
		// Dotted paths in strings
		{
			name:        "path traversal with repeated keys",
			json:        `{"a": {"b": {"c": {"value": "found"}}}}`,
			path:        "a.b.c.value",
			expectedStr: "found",
		},
		// Array element then nested access
		{
			name:        "array element explicit index then nested access",
			json:        `{"data": [{"nested": {"value": "squat"}}]}`,
			path:        "data[0].nested.value",
			expectedStr: "squat",
		},
		// Multi-element array access without index
		{
			name:    "multi element array access without index returns array",
			json:    `{"data": [{"value": "Squat"}, {"value": "Lunge"}]}`,
			path:    "data",
			isArray: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Driller(tt.json, tt.path)

			if tt.isNil {
				// Result should not exist or be null
				if result.Exists() && result.Type.String() != "Null" {
					t.Errorf("Expected nil/empty result but got: %v", result.Value())
				}
				return
			}

			if !result.Exists() {
				t.Errorf("Expected result but got nil/empty")
				return
			}

			if tt.isArray {
				if !result.IsArray() {
					t.Errorf("Expected array but got: %v (type: %T)", result.Value(), result.Value())
				}
				return
			}

			val := result.String()
			if val != tt.expectedStr {
				t.Errorf("Expected %q but got %q", tt.expectedStr, val)
			}
		})
	}
}

// BenchmarkDriller benchmarks the Driller function with various path depths.
func BenchmarkDriller(b *testing.B) {
	tests := []struct {
		name string
		json string
		path string
	}{
		{
			name: "simple",
			json: `{"name": "squat"}`,
			path: "name",
		},
		{
			name: "nested_2_levels",
			json: `{"category": {"name": "Chest"}}`,
			path: "category.name",
		},
		{
			name: "nested_4_levels",
			json: `{"exercise": {"detail": {"license": {"value": "squat"}}}}`,
			path: "exercise.detail.license.value",
		},
		{
			name: "array_access",
			json: `{"variations": [1, 2, 3]}`,
			path: "variations[1]",
		},
		{
			name: "array_of_objects",
			json: `{"favorites": [{"id": 1, "name": "Chest"}, {"id": 2, "name": "Legs"}]}`,
			path: "favorites[0].name",
		},
	}

	for _, tt := range tests {
		b.Run(tt.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				Driller(tt.json, tt.path)
			}
		})
	}
}
