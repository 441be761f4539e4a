package tui

import (
	"strings"
	"testing"

	"github.com/pders01/hnsearch/internal/hn"
)

func TestMsgSummary(t *testing.T) {
	tests := []struct {
		name    string
		sort    string
		reverse bool
		want    string
	}{
		{"unsorted", "none", false, "3 stories • 1 comment • page 2"},
		{"empty sort", "", true, "3 stories • 1 comment • page 2"},
		{"sorted", "points", false, "3 stories • 1 comment • page 2 • sort: points"},
		{"reversed", "title", true, "3 stories • 1 comment • page 2 • sort: title ↑"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MsgSummary(3, 1, 1, tt.sort, tt.reverse); got != tt.want {
				t.Errorf("MsgSummary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncateEnd("hello world", 6); got != "hello…" {
		t.Errorf("truncateEnd = %q", got)
	}
	if got := truncateEnd("short", 10); got != "short" {
		t.Errorf("truncateEnd = %q", got)
	}
	if got := truncateEnd("äöüß", 2); got != "ä…" {
		t.Errorf("truncateEnd should count runes, got %q", got)
	}
	if got := truncateMiddle("https://example.com/a/very/long/path", 11); got != "https…/path" {
		t.Errorf("truncateMiddle = %q", got)
	}
	if got := truncateMiddle("abc", 0); got != "" {
		t.Errorf("truncateMiddle with zero limit = %q", got)
	}
}

func TestHostOf(t *testing.T) {
	if got := hostOf("https://news.example.com:8080/x?y=1"); got != "news.example.com" {
		t.Errorf("hostOf = %q", got)
	}
	if got := hostOf(""); got != "" {
		t.Errorf("hostOf(\"\") = %q", got)
	}
}

func TestStoryMarkdown(t *testing.T) {
	md := storyMarkdown(hn.Story{
		ObjectID:    "42",
		Title:       "Show HN: a thing",
		Author:      "pg",
		URL:         "https://example.com/thing",
		Points:      100,
		NumComments: 12,
	})

	for _, want := range []string{
		"# Show HN: a thing",
		"*by pg • 100 points • 12 comments*",
		"[example.com](https://example.com/thing)",
		"https://news.ycombinator.com/item?id=42",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}

	self := storyMarkdown(hn.Story{Author: "pg"})
	if !strings.HasPrefix(self, "# (untitled)") {
		t.Errorf("untitled story heading = %q", self)
	}
	if strings.Contains(self, "](") {
		t.Errorf("self post should have no link: %q", self)
	}
}

func TestRenderHistory(t *testing.T) {
	if got := renderHistory(nil, 80); got != "" {
		t.Errorf("empty history rendered %q", got)
	}
	terms := make([]string, 12)
	for i := range terms {
		terms[i] = "t" + string(rune('a'+i))
	}
	out := renderHistory(terms, 200)
	if !strings.Contains(out, "ta") || !strings.Contains(out, "ti") {
		t.Errorf("expected first nine terms, got %q", out)
	}
	if strings.Contains(out, "tj") {
		t.Errorf("only %d terms should be listed, got %q", maxHistoryKeys, out)
	}
}
