package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/hnsearch/internal/hn"
)

func sortFixture() []hn.Story {
	return []hn.Story{
		{ObjectID: "1", Title: "beta", Author: "carol", NumComments: 5, Points: 10},
		{ObjectID: "2", Title: "Alpha", Author: "bob", NumComments: 50, Points: 3},
		{ObjectID: "3", Title: "gamma", Author: "alice", NumComments: 1, Points: 99},
	}
}

func TestSortStories(t *testing.T) {
	tests := []struct {
		key     SortKey
		reverse bool
		want    []string
	}{
		{SortNone, false, []string{"1", "2", "3"}},
		{SortNone, true, []string{"3", "2", "1"}},
		{SortTitle, false, []string{"2", "1", "3"}},
		{SortTitle, true, []string{"3", "1", "2"}},
		{SortAuthor, false, []string{"3", "2", "1"}},
		{SortComments, false, []string{"2", "1", "3"}},
		{SortPoints, false, []string{"3", "1", "2"}},
		{SortPoints, true, []string{"2", "1", "3"}},
	}

	for _, tt := range tests {
		name := string(tt.key)
		if tt.reverse {
			name += "_reverse"
		}
		t.Run(name, func(t *testing.T) {
			items := sortFixture()
			got := SortStories(items, tt.key, tt.reverse)
			assert.Equal(t, tt.want, ids(got))
			assert.Equal(t, []string{"1", "2", "3"}, ids(items), "input must not be reordered")
		})
	}
}

func TestSortKey_NextCycles(t *testing.T) {
	k := SortNone
	seen := []SortKey{}
	for range SortKeys() {
		seen = append(seen, k)
		k = k.Next()
	}
	assert.Equal(t, SortKeys(), seen)
	assert.Equal(t, SortNone, k)
	assert.Equal(t, SortNone, SortKey("bogus").Next())
}

func TestParseSortKey(t *testing.T) {
	k, err := ParseSortKey(" Points ")
	require.NoError(t, err)
	assert.Equal(t, SortPoints, k)

	k, err = ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortNone, k)

	_, err = ParseSortKey("karma")
	assert.Error(t, err)
}

func TestTotalComments(t *testing.T) {
	assert.Equal(t, 56, TotalComments(sortFixture()))
	assert.Equal(t, 0, TotalComments(nil))
}
