package session

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pders01/hnsearch/internal/hn"
)

type SortKey string

const (
	SortNone     SortKey = "none"
	SortTitle    SortKey = "title"
	SortAuthor   SortKey = "author"
	SortComments SortKey = "comments"
	SortPoints   SortKey = "points"
)

var sortKeys = []SortKey{SortNone, SortTitle, SortAuthor, SortComments, SortPoints}

// SortKeys lists the keys in cycling order.
func SortKeys() []SortKey {
	return append([]SortKey(nil), sortKeys...)
}

// Next returns the key after k in cycling order.
func (k SortKey) Next() SortKey {
	for i, key := range sortKeys {
		if key == k {
			return sortKeys[(i+1)%len(sortKeys)]
		}
	}
	return SortNone
}

func ParseSortKey(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortNone, nil
	}
	for _, key := range sortKeys {
		if string(key) == s {
			return key, nil
		}
	}
	return SortNone, fmt.Errorf("unknown sort key %q", s)
}

// SortStories returns a sorted copy of items. Title and author sort
// ascending, comments and points descending; reverse flips the order.
// SortNone keeps the fetched order.
func SortStories(items []hn.Story, key SortKey, reverse bool) []hn.Story {
	out := append([]hn.Story{}, items...)

	var less func(a, b hn.Story) bool
	switch key {
	case SortTitle:
		less = func(a, b hn.Story) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	case SortAuthor:
		less = func(a, b hn.Story) bool { return strings.ToLower(a.Author) < strings.ToLower(b.Author) }
	case SortComments:
		less = func(a, b hn.Story) bool { return a.NumComments > b.NumComments }
	case SortPoints:
		less = func(a, b hn.Story) bool { return a.Points > b.Points }
	default:
		if reverse {
			for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
				out[i], out[j] = out[j], out[i]
			}
		}
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		if reverse {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}
