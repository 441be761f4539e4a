package tui

import (
	"fmt"
	"strings"
)

// StatusKind indicates severity for status messages.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarn
	StatusError
)

// Canonical short status messages used across the app.
const (
	MsgLoading     = "Loading…"
	MsgFetchFailed = "Something went wrong…"
	MsgNoResults   = "No results"
	MsgNoLink      = "Story has no link"
	MsgNoArchive   = "Archive search unavailable"

	MsgStillLoading      = "Still loading, try again when the page arrives"
	MsgNothingToContinue = "No page of this search has loaded yet"
	MsgNoMorePages       = "No more pages"
)

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

func MsgComments(n int) string {
	if n == 1 {
		return "1 comment"
	}
	return fmt.Sprintf("%d comments", n)
}

func MsgOpened(url string) string {
	return "Opened " + truncateMiddle(url, 60)
}

// MsgSummary is the idle status line: stories, comments, page and sort.
func MsgSummary(stories, comments, page int, sort string, reverse bool) string {
	parts := []string{
		fmt.Sprintf("%d stories", stories),
		MsgComments(comments),
		fmt.Sprintf("page %d", page+1),
	}
	if sort != "" && sort != "none" {
		if reverse {
			sort += " ↑"
		}
		parts = append(parts, "sort: "+sort)
	}
	return strings.Join(parts, " • ")
}

func MsgArchiveCount(docs int) string {
	return fmt.Sprintf("Archive: %d stories indexed", docs)
}

// opError prefixes err with the user action that failed.
func opError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
