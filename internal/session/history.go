package session

import "github.com/pders01/hnsearch/internal/hn"

// DefaultHistorySize is the number of earlier terms offered as shortcuts.
const DefaultHistorySize = 5

// DeriveHistory returns up to limit earlier search terms, oldest first.
//
// Terms are extracted from urls in order and adjacent repeats are collapsed
// (paging on one term issues several URLs for it). The last collapsed term is
// the active search and is left out.
func DeriveHistory(urls []hn.IssuedURL, limit int) []string {
	if limit <= 0 {
		return []string{}
	}

	terms := make([]string, 0, len(urls))
	for _, u := range urls {
		term, err := hn.ExtractTerm(u)
		if err != nil {
			continue
		}
		if n := len(terms); n > 0 && terms[n-1] == term {
			continue
		}
		terms = append(terms, term)
	}

	if len(terms) <= 1 {
		return []string{}
	}

	end := len(terms) - 1
	start := end - limit
	if start < 0 {
		start = 0
	}
	return append([]string{}, terms[start:end]...)
}
