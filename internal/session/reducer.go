// Package session implements the search-session engine: result state,
// fetch lifecycle, URL history and the controller that ties them together.
package session

import (
	"fmt"

	"github.com/pders01/hnsearch/internal/hn"
)

// State is the accumulated result set of the active search. Term and
// NbPages describe the last accepted page; Items always belong to Term.
type State struct {
	Items     []hn.Story
	Page      int
	Term      string
	NbPages   int
	IsLoading bool
	IsError   bool
}

// HasMore reports whether the API advertised pages after the last accepted
// one. It is false until a page has been accepted.
func (s State) HasMore() bool {
	if s.Term == "" {
		return false
	}
	return (&hn.Page{Page: s.Page, NbPages: s.NbPages}).HasMore()
}

// Event is one of the result-store transitions. The set is closed: only the
// types in this file implement it.
type Event interface {
	isEvent()
}

// FetchInit marks the start of a request.
type FetchInit struct{}

// FetchSuccess carries one decoded page of Term. Page 0 replaces the
// accumulated items; later pages are appended.
type FetchSuccess struct {
	Stories []hn.Story
	Page    int
	Term    string
	NbPages int
}

// FetchFailure marks a request that ended without usable data.
type FetchFailure struct {
	Err error
}

// RemoveItem drops every item with the given ObjectID.
type RemoveItem struct {
	ObjectID string
}

func (FetchInit) isEvent()    {}
func (FetchSuccess) isEvent() {}
func (FetchFailure) isEvent() {}
func (RemoveItem) isEvent()   {}

// Reduce applies ev to s and returns the new state. s is not modified.
// A nil event panics.
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case FetchInit:
		s.IsLoading = true
		s.IsError = false
		return s

	case FetchSuccess:
		s.IsLoading = false
		s.IsError = false
		if e.Page == 0 {
			s.Items = append([]hn.Story{}, e.Stories...)
		} else {
			items := make([]hn.Story, 0, len(s.Items)+len(e.Stories))
			items = append(items, s.Items...)
			s.Items = append(items, e.Stories...)
		}
		s.Page = e.Page
		s.Term = e.Term
		s.NbPages = e.NbPages
		return s

	case FetchFailure:
		s.IsLoading = false
		s.IsError = true
		return s

	case RemoveItem:
		items := make([]hn.Story, 0, len(s.Items))
		for _, item := range s.Items {
			if item.ObjectID != e.ObjectID {
				items = append(items, item)
			}
		}
		s.Items = items
		return s

	default:
		panic(fmt.Sprintf("session: unhandled event %T", ev))
	}
}
