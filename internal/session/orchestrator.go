package session

import (
	"context"
	"errors"
	"sync"

	"github.com/pders01/hnsearch/internal/debuglog"
	"github.com/pders01/hnsearch/internal/hn"
)

// Fetcher performs one search request. *hn.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*hn.Page, error)
}

// ResultListener is notified after a page has been accepted into the result
// store. Stale and failed fetches are not reported.
type ResultListener interface {
	OnResults(term string, page int, stories []hn.Story)
}

// Ticket identifies one begun request. Only the most recently begun ticket
// may change the result store.
type Ticket struct {
	Seq  uint64
	URL  hn.IssuedURL
	Term string
	Page int

	ctx context.Context
}

// Outcome is the settled result of running a ticket.
type Outcome struct {
	Ticket Ticket
	Result *hn.Page
	Err    error
}

// Orchestrator drives the fetch lifecycle for the latest issued URL.
type Orchestrator struct {
	fetcher Fetcher
	results *ResultStore

	mu        sync.Mutex
	seq       uint64
	settled   uint64
	cancel    context.CancelFunc
	listeners []ResultListener
}

func NewOrchestrator(fetcher Fetcher, results *ResultStore) *Orchestrator {
	return &Orchestrator{fetcher: fetcher, results: results}
}

// AddListener registers l for accepted pages.
func (o *Orchestrator) AddListener(l ResultListener) {
	if l == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, l)
}

// Begin supersedes any in-flight request, dispatches FetchInit and returns
// the ticket for u.
func (o *Orchestrator) Begin(u hn.IssuedURL) Ticket {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	o.seq++

	term, _ := hn.ExtractTerm(u)
	page, _ := hn.ExtractPage(u)

	o.results.Dispatch(FetchInit{})
	debuglog.Debugf("begin #%d %s", o.seq, u)

	return Ticket{Seq: o.seq, URL: u, Term: term, Page: page, ctx: ctx}
}

// Run performs exactly one fetch for t. It blocks until the fetcher returns,
// ctx is done, or t is superseded by a later Begin.
func (o *Orchestrator) Run(ctx context.Context, t Ticket) Outcome {
	if t.ctx != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		stop := context.AfterFunc(t.ctx, cancel)
		defer stop()
	}

	page, err := o.fetcher.Fetch(ctx, t.URL.String())
	if err == nil && page == nil {
		err = &hn.DecodeError{URL: t.URL.String(), Err: errors.New("empty response")}
	}
	return Outcome{Ticket: t, Result: page, Err: err}
}

// Settle reduces out into the result store if its ticket is still the latest
// unsettled one. It reports whether the outcome was applied.
func (o *Orchestrator) Settle(out Outcome) bool {
	o.mu.Lock()

	if out.Ticket.Seq != o.seq || o.settled == o.seq {
		o.mu.Unlock()
		debuglog.Debugf("discarding stale result #%d %s", out.Ticket.Seq, out.Ticket.URL)
		return false
	}
	o.settled = o.seq
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}

	if out.Err != nil {
		o.results.Dispatch(FetchFailure{Err: out.Err})
		o.mu.Unlock()
		debuglog.Warnf("fetch #%d failed: %v", out.Ticket.Seq, out.Err)
		return true
	}

	if out.Result.Page != out.Ticket.Page {
		debuglog.Warnf("fetch #%d: response page %d, requested %d", out.Ticket.Seq, out.Result.Page, out.Ticket.Page)
	}
	stories := append([]hn.Story{}, out.Result.Hits...)
	o.results.Dispatch(FetchSuccess{
		Stories: stories,
		Page:    out.Ticket.Page,
		Term:    out.Ticket.Term,
		NbPages: out.Result.NbPages,
	})
	listeners := append([]ResultListener(nil), o.listeners...)
	o.mu.Unlock()

	for _, l := range listeners {
		l.OnResults(out.Ticket.Term, out.Ticket.Page, stories)
	}
	return true
}

// Await runs t and settles its outcome.
func (o *Orchestrator) Await(ctx context.Context, t Ticket) bool {
	return o.Settle(o.Run(ctx, t))
}

// Pending reports whether the latest request has not settled yet.
func (o *Orchestrator) Pending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.seq != 0 && o.settled != o.seq
}

// Close cancels the in-flight request, if any.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}
