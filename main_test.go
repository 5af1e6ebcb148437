// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/exefitgo/internal/config"
)

func TestMangleArguments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exefit.yaml")
	cfg := "eq:\n  defaults:\n    - --limit 10\n  legs:\n    - --category=9\n    - --sort=name\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	t.Setenv("EXEFIT_CFG", path)

	config.Config = config.Type{}
	t.Cleanup(func() { config.Config = config.Type{} })

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "defaults",
			args: []string{"exefit", "eq", "-o", "json"},
			want: []string{"exefit", "eq", "--limit", "10", "-o", "json"},
		},
		{
			name: "named set",
			args: []string{"exefit", "eq", "@legs", "-o", "json"},
			want: []string{"exefit", "eq", "--category=9", "--sort=name", "-o", "json"},
		},
		{
			name: "unknown set",
			args: []string{"exefit", "eq", "@arms"},
			want: []string{"exefit", "eq"},
		},
		{
			name: "no config for command",
			args: []string{"exefit", "lq", "muscles"},
			want: []string{"exefit", "lq", "muscles"},
		},
		{
			name: "help",
			args: []string{"exefit", "eq", "@legs", "-h"},
			want: []string{"exefit", "eq", "--help"},
		},
		{
			name: "root flag",
			args: []string{"exefit", "--version"},
			want: []string{"exefit", "--version"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mangleArguments(tt.args))
		})
	}
}
