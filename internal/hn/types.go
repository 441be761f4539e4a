package hn

// Story is a single hit returned by the search endpoint. Only the fields the
// client consumes are decoded.
type Story struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Author      string `json:"author"`
	NumComments int    `json:"num_comments"`
	Points      int    `json:"points"`
}

// Page is one page of search results.
type Page struct {
	Hits    []Story `json:"hits"`
	Page    int     `json:"page"`
	NbPages int     `json:"nbPages"`
}

// HasMore reports whether the API advertised pages beyond this one.
// A zero NbPages means the field was absent and nothing is known.
func (p *Page) HasMore() bool {
	return p.NbPages == 0 || p.Page+1 < p.NbPages
}
