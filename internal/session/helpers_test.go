package session

import (
	"context"
	"errors"
	"sync"

	"github.com/pders01/hnsearch/internal/hn"
)

type fetchFunc func(ctx context.Context, url string) (*hn.Page, error)

func (f fetchFunc) Fetch(ctx context.Context, url string) (*hn.Page, error) {
	return f(ctx, url)
}

// scriptedFetcher answers from a fixed table keyed by URL and records calls.
type scriptedFetcher struct {
	mu    sync.Mutex
	pages map[string]*hn.Page
	errs  map[string]error
	calls []string
}

func newScriptedFetcher() *scriptedFetcher {
	return &scriptedFetcher{pages: map[string]*hn.Page{}, errs: map[string]error{}}
}

func (f *scriptedFetcher) on(u hn.IssuedURL, page *hn.Page) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[string(u)] = page
}

func (f *scriptedFetcher) fail(u hn.IssuedURL, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[string(u)] = err
}

func (f *scriptedFetcher) Fetch(ctx context.Context, url string) (*hn.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	if p, ok := f.pages[url]; ok {
		return p, nil
	}
	return nil, &hn.TransportError{URL: url, StatusCode: 404, Err: errors.New("not scripted")}
}

func (f *scriptedFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type memStore struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
	putErr error
	puts   int
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (m *memStore) GetValue(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStore) PutValue(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	m.values[key] = value
	return nil
}

type recordingListener struct {
	mu    sync.Mutex
	terms []string
	pages []int
	count int
}

func (r *recordingListener) OnResults(term string, page int, stories []hn.Story) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.terms = append(r.terms, term)
	r.pages = append(r.pages, page)
	r.count += len(stories)
}

func story(id, title string, comments int) hn.Story {
	return hn.Story{ObjectID: id, Title: title, Author: "user" + id, NumComments: comments, Points: comments * 2}
}

func ids(items []hn.Story) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = s.ObjectID
	}
	return out
}
