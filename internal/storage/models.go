package storage

import (
	"time"
)

// Story is an archived search hit. Stories are keyed by ObjectID; a story
// seen again under another query overwrites the earlier record.
type Story struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Author      string    `json:"author"`
	NumComments int       `json:"num_comments"`
	Points      int       `json:"points"`
	Query       string    `json:"query"`
	FetchedAt   time.Time `json:"fetched_at"`
}
