package hn

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DefaultBaseURL is the public Hacker News Algolia API.
const DefaultBaseURL = "https://hn.algolia.com/api/v1"

// IssuedURL is a request target built by URLBuilder. It encodes a search
// term and a page number and can be inverted with ExtractTerm/ExtractPage.
type IssuedURL string

func (u IssuedURL) String() string { return string(u) }

// URLBuilder maps (term, page) pairs onto search request URLs.
type URLBuilder struct {
	base string
}

// NewURLBuilder returns a builder rooted at base. An empty base falls back to
// DefaultBaseURL; trailing slashes are dropped.
func NewURLBuilder(base string) URLBuilder {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return URLBuilder{base: base}
}

// Base returns the API root the builder was created with.
func (b URLBuilder) Base() string {
	if b.base == "" {
		return DefaultBaseURL
	}
	return b.base
}

// Build returns <base>/search?query=<term>&page=<page>. The term is query
// escaped, so '&' and '=' inside it never collide with the parameter
// delimiters.
func (b URLBuilder) Build(term string, page int) IssuedURL {
	if page < 0 {
		page = 0
	}
	return IssuedURL(b.Base() + "/search?query=" + url.QueryEscape(term) + "&page=" + strconv.Itoa(page))
}

// ExtractTerm recovers the search term from a URL produced by Build.
func ExtractTerm(u IssuedURL) (string, error) {
	q, err := parseQuery(u)
	if err != nil {
		return "", err
	}
	if !q.Has("query") {
		return "", fmt.Errorf("no query parameter in %q", u)
	}
	return q.Get("query"), nil
}

// ExtractPage recovers the page number from a URL produced by Build. URLs
// without a page parameter address page 0.
func ExtractPage(u IssuedURL) (int, error) {
	q, err := parseQuery(u)
	if err != nil {
		return 0, err
	}
	raw := q.Get("page")
	if raw == "" {
		return 0, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 0 {
		return 0, fmt.Errorf("invalid page %q in %q", raw, u)
	}
	return page, nil
}

func parseQuery(u IssuedURL) (url.Values, error) {
	parsed, err := url.Parse(string(u))
	if err != nil {
		return nil, fmt.Errorf("parsing issued url: %w", err)
	}
	q, err := url.ParseQuery(parsed.RawQuery)
	if err != nil {
		return nil, fmt.Errorf("parsing issued url query: %w", err)
	}
	return q, nil
}
