package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pders01/hnsearch/internal/hn"
)

func urlsFor(terms ...string) []hn.IssuedURL {
	b := hn.NewURLBuilder("")
	out := make([]hn.IssuedURL, len(terms))
	for i, term := range terms {
		out[i] = b.Build(term, 0)
	}
	return out
}

func TestDeriveHistory(t *testing.T) {
	tests := []struct {
		name  string
		terms []string
		limit int
		want  []string
	}{
		{"empty", nil, 5, []string{}},
		{"only active", []string{"React"}, 5, []string{}},
		{"one earlier", []string{"React", "webpack"}, 5, []string{"React"}},
		{"collapses repeats", []string{"a", "a", "b", "b", "a"}, 5, []string{"a", "b"}},
		{"active repeated", []string{"a", "b", "b"}, 5, []string{"a"}},
		{"non adjacent kept", []string{"a", "b", "a", "b"}, 5, []string{"a", "b", "a"}},
		{"window", []string{"a", "b", "c", "d", "e", "f", "g"}, 5, []string{"b", "c", "d", "e", "f"}},
		{"small limit", []string{"a", "b", "c"}, 1, []string{"b"}},
		{"zero limit", []string{"a", "b"}, 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveHistory(urlsFor(tt.terms...), tt.limit))
		})
	}
}

func TestDeriveHistory_PagesOfOneTermCollapse(t *testing.T) {
	b := hn.NewURLBuilder("")
	urls := []hn.IssuedURL{b.Build("React", 0), b.Build("go", 0), b.Build("go", 1), b.Build("go", 2)}

	assert.Equal(t, []string{"React"}, DeriveHistory(urls, 5))
}

func TestDeriveHistory_SkipsUnparsable(t *testing.T) {
	urls := append(urlsFor("a"), hn.IssuedURL("://bad"), urlsFor("b")[0])

	assert.Equal(t, []string{"a"}, DeriveHistory(urls, 5))
}

func TestDeriveHistory_Properties(t *testing.T) {
	terms := []string{"a", "b", "b", "c", "a", "d", "d", "e", "f", "g", "h"}
	for n := 0; n <= len(terms); n++ {
		got := DeriveHistory(urlsFor(terms[:n]...), DefaultHistorySize)

		assert.LessOrEqual(t, len(got), DefaultHistorySize)
		for i := 1; i < len(got); i++ {
			assert.NotEqual(t, got[i-1], got[i], "adjacent entries must differ")
		}
		if n > 0 && len(got) > 0 {
			assert.NotEqual(t, terms[n-1], got[len(got)-1], "active term is never the last entry")
		}
	}
}
