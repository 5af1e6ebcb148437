// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/staranto/exefitgo/internal/cache"
	"github.com/staranto/exefitgo/internal/config"
	"github.com/staranto/exefitgo/internal/favorites"
	"github.com/staranto/exefitgo/internal/meta"
)

// fakeWger serves just enough of the wger API for the commands.
type fakeWger struct {
	mu        sync.Mutex
	benchName string
	hits      map[string]int
}

func (f *fakeWger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits[r.URL.Path]++

	switch r.URL.Path {
	case "/exercise/":
		fmt.Fprintf(w, `{"count":3,"next":null,"previous":null,"results":[
			{"id":1,"name":"Barbell Squat","category":9,"muscles":[10],"equipment":[1]},
			{"id":73,"name":%q,"category":11,"muscles":[4],"equipment":[1]},
			{"id":3,"name":"Lunges","category":9,"muscles":[10,8],"equipment":[]}
		]}`, f.benchName)
	case "/exercise/73/":
		fmt.Fprintf(w, `{"id":73,"name":%q,"description":"<p>Press the bar.</p>","category":11,"muscles":[4],"equipment":[1]}`, f.benchName)
	case "/exerciseimage/":
		if r.URL.Query().Get("exercise") == "73" {
			fmt.Fprint(w, `{"count":1,"results":[{"id":5,"image":"https://wger.de/media/bench.png","is_main":true,"exercise":73}]}`)
			return
		}
		fmt.Fprint(w, `{"count":0,"results":[]}`)
	case "/muscle/":
		fmt.Fprint(w, `{"count":2,"results":[{"id":4,"name":"Pectoralis major","is_front":true},{"id":10,"name":"Quadriceps femoris","is_front":true}]}`)
	case "/exercisecategory/":
		fmt.Fprint(w, `{"count":2,"results":[{"id":9,"name":"Legs"},{"id":11,"name":"Chest"}]}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"detail":"Not found."}`)
	}
}

func (f *fakeWger) setBenchName(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.benchName = name
}

func (f *fakeWger) hitCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

// setup points exefit at a fake API, a temp cache dir and a temp config.
func setup(t *testing.T) *fakeWger {
	t.Helper()

	config.Config = config.Type{}

	api := &fakeWger{benchName: "Bench Press", hits: map[string]int{}}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "exefit.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("api:\n  rpm: 6000\ncache:\n  max: 10\n"), 0o600))

	t.Setenv("EXEFIT_CFG", cfgPath)
	t.Setenv("EXEFIT_CACHE_DIR", filepath.Join(dir, "cache"))
	t.Setenv("EXEFIT_CACHE", "")
	t.Setenv("EXEFIT_API_URL", srv.URL)
	t.Setenv("EXEFIT_USER", "")
	t.Setenv("EXEFIT_FILTER_DELIM", "")

	t.Cleanup(func() { config.Config = config.Type{} })
	return api
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	full := append([]string{"exefit"}, args...)
	app, err := InitApp(context.Background(), full)
	require.NoError(t, err)

	var buf bytes.Buffer
	app.Writer = &buf
	app.ErrWriter = io.Discard
	err = app.Run(context.Background(), full)
	return buf.String(), err
}

func decode(t *testing.T, out string) []map[string]any {
	t.Helper()
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows), out)
	return rows
}

func TestEq(t *testing.T) {
	setup(t)

	out, err := run(t, "eq", "--category", "9", "-o", "json", "-s", "name")
	require.NoError(t, err)

	rows := decode(t, out)
	require.Len(t, rows, 2)
	assert.Equal(t, "Barbell Squat", rows[0]["name"])
	assert.Equal(t, "Lunges", rows[1]["name"])
	assert.Equal(t, []string{"id", "name"}, keys(rows[0]))
}

func TestEq_ImagesFirstAndPaging(t *testing.T) {
	setup(t)

	out, err := run(t, "eq", "--limit", "1", "-o", "json")
	require.NoError(t, err)
	rows := decode(t, out)
	require.Len(t, rows, 1)
	assert.Equal(t, "Bench Press", rows[0]["name"])

	out, err = run(t, "eq", "--limit", "1", "--page", "3", "-o", "json")
	require.NoError(t, err)
	rows = decode(t, out)
	require.Len(t, rows, 1)
	assert.Equal(t, "Lunges", rows[0]["name"])
}

func TestEq_TextFooter(t *testing.T) {
	setup(t)

	out, err := run(t, "eq", "--search", "squat", "--titles")
	require.NoError(t, err)
	assert.Contains(t, out, "Barbell Squat")
	assert.Contains(t, out, "page 1 of 1, 1 matching")
}

func TestEq_InvalidLimit(t *testing.T) {
	setup(t)

	_, err := run(t, "eq", "--limit", "500")
	assert.ErrorContains(t, err, "invalid search parameters")
}

func TestEq_Schema(t *testing.T) {
	setup(t)

	out, err := run(t, "eq", "--schema")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Schema for Exercise --"))
}

func TestSearchParams(t *testing.T) {
	var got map[string]any

	cmd := EqCommandBuilder(nil, meta.Meta{})
	cmd.Action = func(_ context.Context, c *cli.Command) error {
		p, err := SearchParams(c)
		got = map[string]any{
			"search": p.Search, "category": p.Category, "muscle": p.Muscle,
			"equipment": p.Equipment, "page": p.Page, "limit": p.Limit, "err": err,
		}
		return nil
	}

	err := cmd.Run(context.Background(), []string{"eq", "--category", "11",
		"--filter", "_category=9,_muscles=4,_search=press,name@bench"})
	require.NoError(t, err)

	assert.Equal(t, "press", got["search"])
	assert.Equal(t, 11, got["category"], "flags win over native filters")
	assert.Equal(t, 4, got["muscle"])
	assert.Equal(t, 0, got["equipment"])
	assert.Equal(t, 1, got["page"])
	assert.Equal(t, 5, got["limit"])
	assert.Nil(t, got["err"])
}

func TestDq_CachesDetail(t *testing.T) {
	api := setup(t)

	out, err := run(t, "dq", "73", "-o", "json", "-a", "images.image:image")
	require.NoError(t, err)
	rows := decode(t, out)
	require.Len(t, rows, 1)
	assert.Equal(t, "Bench Press", rows[0]["name"])
	assert.Equal(t, "https://wger.de/media/bench.png", rows[0]["image"])

	_, err = run(t, "dq", "73", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, 1, api.hitCount("/exercise/73/"), "second lookup is served from the cache")

	_, err = run(t, "dq", "73", "--refresh", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, 2, api.hitCount("/exercise/73/"))
}

func TestDq_Errors(t *testing.T) {
	setup(t)

	_, err := run(t, "dq")
	assert.ErrorContains(t, err, "missing exercise id")

	_, err = run(t, "dq", "abc")
	assert.ErrorContains(t, err, `invalid exercise id "abc"`)

	_, err = run(t, "dq", "999")
	assert.ErrorContains(t, err, "Exercise not found")
}

func TestDq_Plain(t *testing.T) {
	setup(t)

	out, err := run(t, "dq", "73", "--plain", "-o", "json", "-a", "description")
	require.NoError(t, err)
	rows := decode(t, out)
	require.Len(t, rows, 1)
	assert.Equal(t, "Press the bar.", rows[0]["description"])
}

func TestLq(t *testing.T) {
	setup(t)

	out, err := run(t, "lq", "muscles", "-o", "json", "-f", "front=true", "--sort=-name")
	require.NoError(t, err)
	rows := decode(t, out)
	require.Len(t, rows, 2)
	assert.Equal(t, "Quadriceps femoris", rows[0]["name"])

	out, err = run(t, "lq", "-o", "json")
	require.NoError(t, err)
	assert.Len(t, decode(t, out), 2)

	_, err = run(t, "lq", "tendons")
	assert.ErrorContains(t, err, "must be one of")
}

func TestGlobalFlagValidation(t *testing.T) {
	setup(t)

	_, err := run(t, "lq", "-o", "xml")
	assert.ErrorContains(t, err, "must be one of")

	_, err = run(t, "lq", "-f", "nonsense")
	assert.ErrorContains(t, err, "expected key<op>target")

	_, err = run(t, "lq", "-a", "id,,name")
	assert.ErrorContains(t, err, "empty attr key")
}

func TestCacheCommands(t *testing.T) {
	setup(t)

	_, err := run(t, "dq", "73", "-o", "json")
	require.NoError(t, err)

	out, err := run(t, "cache", "ls", "-o", "json")
	require.NoError(t, err)
	rows := decode(t, out)
	require.Len(t, rows, 1)
	assert.Equal(t, float64(73), rows[0]["id"])
	assert.Equal(t, false, rows[0]["expired"])
	assert.IsType(t, "", rows[0]["cached"])

	out, err = run(t, "cache", "stats", "-o", "json")
	require.NoError(t, err)
	rows = decode(t, out)
	require.Len(t, rows, 1)
	assert.Equal(t, float64(1), rows[0]["count"])
	assert.Equal(t, float64(10), rows[0]["max"])
	assert.Equal(t, "168h0m0s", rows[0]["ttl"])
	assert.NotEmpty(t, rows[0]["location"])

	out, err = run(t, "cache", "rm", "73")
	require.NoError(t, err)
	assert.Equal(t, "removed exercise 73 from the cache\n", out)

	out, err = run(t, "cache", "ls", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestCacheClearAll(t *testing.T) {
	setup(t)

	_, err := run(t, "lq", "categories", "-o", "json")
	require.NoError(t, err)
	_, err = run(t, "dq", "73", "-o", "json")
	require.NoError(t, err)

	out, err := run(t, "cache", "clear", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "lookup responses")

	responses := filepath.Join(os.Getenv("EXEFIT_CACHE_DIR"), "responses")
	_, statErr := os.Stat(responses)
	assert.True(t, os.IsNotExist(statErr))

	out, err = run(t, "cache", "stats", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, float64(0), decode(t, out)[0]["count"])
}

func TestCachePurge(t *testing.T) {
	setup(t)

	_, err := run(t, "lq", "categories", "-o", "json")
	require.NoError(t, err)

	out, err := run(t, "cache", "purge", "--hours", "1")
	require.NoError(t, err)
	assert.Equal(t, "purged 0 lookup responses\n", out)
}

func TestDiff(t *testing.T) {
	api := setup(t)

	_, err := run(t, "diff", "73")
	assert.ErrorContains(t, err, "exercise 73 is not cached")

	_, err = run(t, "dq", "73", "-o", "json")
	require.NoError(t, err)

	out, err := run(t, "diff", "73")
	require.NoError(t, err)
	assert.Equal(t, "exercise 73 is unchanged\n", out)

	api.setBenchName("Barbell Bench Press")

	out, err = run(t, "diff", "73", "--format", "delta", "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "Barbell Bench Press")

	out, err = run(t, "diff", "73")
	require.NoError(t, err)
	assert.Equal(t, "exercise 73 is unchanged\n", out, "--update replaced the cached copy")
}

func TestFavorites(t *testing.T) {
	setup(t)

	probe, err := favorites.Open(context.Background(), filepath.Join(t.TempDir(), "probe.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	_ = probe.Close()

	_, err = run(t, "fq")
	assert.ErrorIs(t, err, favorites.ErrUserNotSet)

	t.Setenv("EXEFIT_USER", "alice")

	out, err := run(t, "fav", "add", "73", "-o", "json")
	require.NoError(t, err)
	rows := decode(t, out)
	require.Len(t, rows, 1)
	assert.Equal(t, "Bench Press", rows[0]["name"])

	out, err = run(t, "fav", "has", "73")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = run(t, "fq", "-o", "json")
	require.NoError(t, err)
	rows = decode(t, out)
	require.Len(t, rows, 1)
	assert.Equal(t, float64(73), rows[0]["id"])
	assert.Equal(t, false, rows[0]["stub"])

	out, err = run(t, "fav", "rm", "73")
	require.NoError(t, err)
	assert.Equal(t, "removed exercise 73 from alice's favorites\n", out)

	out, err = run(t, "cache", "ls", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out, "un-favoriting drops the cached exercise")

	out, err = run(t, "fq", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestBrowse_NeedsTerminal(t *testing.T) {
	setup(t)

	orig := isTerminal
	isTerminal = func() bool { return false }
	t.Cleanup(func() { isTerminal = orig })

	_, err := run(t, "browse")
	assert.ErrorIs(t, err, ErrNotATerminal)
}

func TestCompletion(t *testing.T) {
	setup(t)

	out, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "complete -F _exefit exefit")

	out, err = run(t, "completion", "zsh")
	require.NoError(t, err)
	assert.Contains(t, out, "#compdef exefit")
}

func TestNewStore(t *testing.T) {
	setup(t)

	store, closer := NewStore(context.Background(), "exefit")
	defer closer()
	assert.IsType(t, &cache.FileStore{}, store)

	t.Setenv("EXEFIT_CACHE", "0")
	store, closer = NewStore(context.Background(), "exefit")
	defer closer()
	assert.IsType(t, &cache.MemoryStore{}, store)
	assert.Equal(t, "memory", StoreLocation(store))
}

func TestNewStore_FallsBackToMemory(t *testing.T) {
	setup(t)

	tests := []struct {
		name string
		yaml string
	}{
		{"unknown backend", "cache:\n  backend: floppy\n"},
		{"s3 without bucket", "cache:\n  backend: s3\n"},
		{"unreachable valkey", "cache:\n  backend: valkey\n  valkey:\n    address: 127.0.0.1:1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "exefit.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))
			t.Setenv("EXEFIT_CFG", path)
			_, err := config.Load()
			require.NoError(t, err)

			store, closer := NewStore(context.Background(), "exefit")
			defer closer()
			assert.IsType(t, &cache.MemoryStore{}, store)
		})
	}
}

func TestNewCacheStatsRow(t *testing.T) {
	row := NewCacheStatsRow(cache.Stats{Count: 2, MaxSize: 50, TTL: cache.DefaultTTL}, "memory", 2048)
	assert.Equal(t, "2.0 kB", row.Size)
	assert.Equal(t, "168h0m0s", row.TTL)
	assert.Empty(t, row.Oldest)
	assert.Empty(t, row.Newest)
}

func TestValidators(t *testing.T) {
	assert.NoError(t, OutputValidator("yaml"))
	assert.Error(t, OutputValidator("xml"))
	assert.NoError(t, JammedFlagValidator("name"))
	assert.Error(t, JammedFlagValidator("--titles"))
	assert.NoError(t, AttrsValidator("id,name::u"))
	assert.Error(t, AttrsValidator(":name"))
	assert.NoError(t, LookupKindValidator("equipment"))
	assert.Error(t, LookupKindValidator("tendons"))
	assert.Error(t, FlagValidators("--x", JammedFlagValidator, OutputValidator))
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	if len(out) == 2 && out[0] > out[1] {
		out[0], out[1] = out[1], out[0]
	}
	return out
}
