package search

import "github.com/pders01/hnsearch/internal/storage"

// Searcher is the find API over archived stories used by the TUI and CLI.
type Searcher interface {
	Search(query string, limit int) ([]*Result, error)
	Index(stories []*storage.Story) error
	DocCount() (int, error)
	Close() error
}

// Result is a scored archived story.
type Result struct {
	Story   *storage.Story
	Score   float64
	Matches []Match
}

// Match represents where text was found
type Match struct {
	Field  string // "title", "author", "url", "query"
	Text   string
	Weight float64
}
