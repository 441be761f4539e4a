package search

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/hnsearch/internal/storage"
)

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedStories(t *testing.T, store *storage.Store) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, store.SaveStories([]*storage.Story{
		{ID: "1", Title: "Show HN: A Golang scheduler", Author: "pike", URL: "https://example.com/sched", Query: "go", FetchedAt: now},
		{ID: "2", Title: "React Server Components explained", Author: "dan", URL: "https://example.com/rsc", Query: "React", FetchedAt: now.Add(-time.Hour)},
		{ID: "3", Title: "Why we left Kubernetes", Author: "ops_team", URL: "https://example.com/k8s", Query: "devops", FetchedAt: now.Add(-48 * time.Hour)},
	}))
}

func TestSearchMinLength(t *testing.T) {
	engine := NewEngine(newTestStore(t))

	for _, q := range []string{"", "a", "   "} {
		results, err := engine.Search(q, 10)
		assert.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results, "short queries should return empty results")
	}
}

func TestEngineSearch(t *testing.T) {
	store := newTestStore(t)
	seedStories(t, store)
	engine := NewEngine(store)

	results, err := engine.Search("golang", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].Story.ID)
	assert.Equal(t, "title", results[0].Matches[0].Field)

	results, err = engine.Search("dan", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "2", results[0].Story.ID)

	results, err = engine.Search("example", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	n, err := engine.DocCount()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestScoreField(t *testing.T) {
	assert.Zero(t, scoreField("", []string{"go"}, 1))
	assert.Zero(t, scoreField("rust", []string{"go"}, 1))

	exact := scoreField("go tools", []string{"go"}, 1)
	partial := scoreField("gopher tools", []string{"go"}, 1)
	assert.Greater(t, exact, partial)
	assert.Greater(t, partial, 0.0)

	assert.Equal(t, 2*scoreField("go", []string{"go"}, 1), scoreField("go", []string{"go"}, 2))
	assert.Greater(t, scoreField("--", []string{"--"}, 1), 0.0, "no word tokens must not divide by zero")
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Hello, World!", []string{"hello", "world"}},
		{"a b cd", []string{"cd"}},
		{"Go1.22 release", []string{"go1", "22", "release"}},
		{"Ärger über", []string{"ärger", "über"}},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tokenize(tt.in), tt.in)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "äöü…", truncate("äöüßxyz", 4))
}

func TestRecencyBoost(t *testing.T) {
	now := time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)

	assert.Zero(t, recencyBoost(now, time.Time{}))
	assert.InDelta(t, 0.1, recencyBoost(now, now), 1e-9)
	assert.InDelta(t, 0.05, recencyBoost(now, now.Add(-84*time.Hour)), 1e-9)
	assert.Zero(t, recencyBoost(now, now.Add(-8*24*time.Hour)))
	assert.InDelta(t, 0.1, recencyBoost(now, now.Add(time.Hour)), 1e-9)
}
