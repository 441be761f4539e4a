package search

import (
	"sync"
	"time"

	"github.com/pders01/hnsearch/internal/debuglog"
	"github.com/pders01/hnsearch/internal/hn"
	"github.com/pders01/hnsearch/internal/storage"
)

// Recorder archives every accepted result page and keeps the index in step.
// It satisfies session.ResultListener. Pages are written by a background
// worker so OnResults never waits on disk; Close flushes what is queued.
type Recorder struct {
	store *storage.Store
	index Searcher
	now   func() time.Time

	mu      sync.Mutex
	closed  bool
	pending chan recordBatch
	done    chan struct{}
}

type recordBatch struct {
	term    string
	page    int
	at      time.Time
	stories []hn.Story
}

// recordQueue bounds how many pages may wait for the worker. OnResults only
// blocks once it is full.
const recordQueue = 16

func NewRecorder(store *storage.Store, index Searcher) *Recorder {
	r := &Recorder{
		store:   store,
		index:   index,
		now:     time.Now,
		pending: make(chan recordBatch, recordQueue),
		done:    make(chan struct{}),
	}
	go r.loop()
	return r
}

func (r *Recorder) OnResults(term string, page int, stories []hn.Story) {
	if len(stories) == 0 {
		return
	}
	b := recordBatch{
		term:    term,
		page:    page,
		at:      r.now().UTC(),
		stories: append([]hn.Story(nil), stories...),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		debuglog.Warnf("recorder closed, dropping %d stories for %q", len(stories), term)
		return
	}
	r.pending <- b
}

// Close stops accepting pages and waits until queued ones are written.
// Close the recorder before the store and index it writes to.
func (r *Recorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.pending)
	}
	r.mu.Unlock()
	<-r.done
}

func (r *Recorder) loop() {
	defer close(r.done)
	for b := range r.pending {
		r.record(b)
	}
}

func (r *Recorder) record(b recordBatch) {
	archived := make([]*storage.Story, 0, len(b.stories))
	for _, s := range b.stories {
		if s.ObjectID == "" {
			continue
		}
		archived = append(archived, FromHN(s, b.term, b.at))
	}
	if len(archived) == 0 {
		return
	}

	if err := r.store.SaveStories(archived); err != nil {
		debuglog.Errorf("archiving %d stories for %q: %v", len(archived), b.term, err)
		return
	}
	if r.index != nil {
		if err := r.index.Index(archived); err != nil {
			debuglog.Warnf("indexing stories for %q: %v", b.term, err)
		}
	}
	debuglog.WithFields(map[string]interface{}{
		"query": b.term,
		"page":  b.page,
		"count": len(archived),
	}).Debugf("archived results")
}

// FromHN converts a search hit into its archived form.
func FromHN(s hn.Story, query string, at time.Time) *storage.Story {
	return &storage.Story{
		ID:          s.ObjectID,
		Title:       s.Title,
		URL:         s.URL,
		Author:      s.Author,
		NumComments: s.NumComments,
		Points:      s.Points,
		Query:       query,
		FetchedAt:   at,
	}
}
