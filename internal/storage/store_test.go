package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_GetValue_Missing(t *testing.T) {
	store := setupTestStore(t)

	value, found, err := store.GetValue("search")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, value)
}

func TestStore_PutAndGetValue(t *testing.T) {
	store := setupTestStore(t)

	require.NoError(t, store.PutValue("search", "webpack"))
	require.NoError(t, store.PutValue("search", "rust"))

	value, found, err := store.GetValue("search")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "rust", value)
}

func TestStore_PutValue_EmptyKey(t *testing.T) {
	store := setupTestStore(t)
	assert.Error(t, store.PutValue("", "x"))
}

func TestStore_ValueSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "persist.db")

	store, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.PutValue("search", "golang"))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	value, found, err := reopened.GetValue("search")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "golang", value)
}

func TestStore_LockedDatabaseTimesOut(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "locked.db")

	store, err := NewStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	_, err = NewStoreWithTimeout(dbPath, 50*time.Millisecond)
	assert.Error(t, err)
}

func TestStore_SaveAndGetStories(t *testing.T) {
	store := setupTestStore(t)
	now := time.Now()

	stories := []*Story{
		{ID: "1", Title: "Old", Author: "a", FetchedAt: now.Add(-2 * time.Hour), Query: "react"},
		{ID: "2", Title: "New", Author: "b", FetchedAt: now, Query: "react"},
		{ID: "3", Title: "Middle", Author: "c", FetchedAt: now.Add(-1 * time.Hour), Query: "rust"},
		{ID: "", Title: "skipped without id"},
	}
	require.NoError(t, store.SaveStories(stories))

	all, err := store.GetStories(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"2", "3", "1"}, []string{all[0].ID, all[1].ID, all[2].ID})

	limited, err := store.GetStories(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	n, err := store.CountStories()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestStore_SaveStoriesOverwrites(t *testing.T) {
	store := setupTestStore(t)

	require.NoError(t, store.SaveStories([]*Story{{ID: "1", Title: "First", Points: 1}}))
	require.NoError(t, store.SaveStories([]*Story{{ID: "1", Title: "First", Points: 50}}))

	story, err := store.GetStory("1")
	require.NoError(t, err)
	assert.Equal(t, 50, story.Points)
}

func TestStore_GetStory_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetStory("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_ClearStories(t *testing.T) {
	store := setupTestStore(t)

	require.NoError(t, store.PutValue("search", "kept"))
	require.NoError(t, store.SaveStories([]*Story{{ID: "1"}, {ID: "2"}}))
	require.NoError(t, store.ClearStories())

	n, err := store.CountStories()
	require.NoError(t, err)
	assert.Zero(t, n)

	value, found, err := store.GetValue("search")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "kept", value)
}
