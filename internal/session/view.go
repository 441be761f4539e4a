package session

import "github.com/pders01/hnsearch/internal/hn"

// View is everything a presentation layer needs to draw the session.
type View struct {
	Items     []hn.Story
	IsLoading bool
	IsError   bool
	Page      int

	// HasMore reports whether LoadMore can continue the active search.
	HasMore bool

	// History holds earlier terms, oldest first, excluding ActiveTerm.
	History []string

	// SearchTerm is the draft in the input; ActiveTerm is the term of the
	// latest issued URL.
	SearchTerm string
	ActiveTerm string

	TotalComments int
}

// TotalComments sums the comment counts of items.
func TotalComments(items []hn.Story) int {
	total := 0
	for _, s := range items {
		total += s.NumComments
	}
	return total
}
