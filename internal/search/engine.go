package search

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/pders01/hnsearch/internal/storage"
)

// Engine scores archived stories by scanning the database. It needs no index
// and backs Open when the bleve index is unavailable.
type Engine struct {
	store *storage.Store
	now   func() time.Time
}

func NewEngine(store *storage.Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// Search performs a weighted substring search across archived stories
func (e *Engine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}

	terms := tokenize(query)
	if len(terms) == 0 {
		return []*Result{}, nil
	}

	stories, err := e.store.GetStories(0)
	if err != nil {
		return nil, err
	}

	results := []*Result{}
	for _, s := range stories {
		if r := e.scoreStory(s, terms); r != nil {
			results = append(results, r)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Index is a no-op; the scan reads the database directly.
func (e *Engine) Index([]*storage.Story) error { return nil }

func (e *Engine) DocCount() (int, error) {
	return e.store.CountStories()
}

func (e *Engine) Close() error { return nil }

func (e *Engine) scoreStory(s *storage.Story, terms []string) *Result {
	var matches []Match
	var total float64

	fields := []struct {
		name   string
		text   string
		weight float64
	}{
		{"title", s.Title, 4.0},
		{"author", s.Author, 2.0},
		{"query", s.Query, 1.5},
		{"url", s.URL, 0.5},
	}
	for _, f := range fields {
		if score := scoreField(f.text, terms, f.weight); score > 0 {
			matches = append(matches, Match{Field: f.name, Text: truncate(f.text, 120), Weight: score})
			total += score
		}
	}

	if total == 0 {
		return nil
	}
	total *= 1.0 + recencyBoost(e.now(), s.FetchedAt)

	return &Result{Story: s, Score: total, Matches: matches}
}

// scoreField calculates relevance score for a field
func scoreField(text string, terms []string, weight float64) float64 {
	if text == "" {
		return 0
	}

	lower := strings.ToLower(text)
	words := tokenize(text)

	var score float64
	matchedTerms := 0

	for _, term := range terms {
		// Exact phrase match (highest score)
		if strings.Contains(lower, term) {
			score += 2.0
			matchedTerms++
		}

		for _, word := range words {
			switch {
			case word == term:
				score += 1.5
				matchedTerms++
			case strings.HasPrefix(word, term) || strings.HasSuffix(word, term):
				score += 1.0
				matchedTerms++
			case strings.Contains(word, term):
				score += 0.5
				matchedTerms++
			}
		}
	}

	if len(terms) > 1 && matchedTerms > 1 {
		score *= 1.0 + float64(matchedTerms)/float64(len(terms))
	}

	if len(words) > 0 {
		tf := float64(matchedTerms) / float64(len(words))
		score *= 1.0 + math.Log(1.0+tf)
	}

	return score * weight
}

// tokenize breaks text into lowercase searchable terms
func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			if term := current.String(); len([]rune(term)) > 1 { // Skip single chars
				terms = append(terms, term)
			}
			current.Reset()
		}
	}

	if term := current.String(); len([]rune(term)) > 1 {
		terms = append(terms, term)
	}

	return terms
}

// truncate limits text length with ellipsis
func truncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen-1]) + "…"
}

// recencyBoost gives up to 10% to stories fetched within the last week.
func recencyBoost(now, fetched time.Time) float64 {
	if fetched.IsZero() {
		return 0
	}
	const week = 7 * 24 * time.Hour
	age := now.Sub(fetched)
	if age < 0 {
		age = 0
	}
	if age >= week {
		return 0
	}
	return 0.1 * (1 - float64(age)/float64(week))
}
