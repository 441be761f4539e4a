package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pders01/hnsearch/internal/config"
	"github.com/pders01/hnsearch/internal/debuglog"
	"github.com/pders01/hnsearch/internal/hn"
	"github.com/pders01/hnsearch/internal/validation"
)

const (
	DefaultTerm       = "React"
	DefaultStorageKey = "search"
)

// Errors returned by LoadMore. None of them changes any state.
var (
	// ErrNoActiveSearch means the latest issued URL has no recoverable term.
	ErrNoActiveSearch = errors.New("no active search")
	// ErrFetchPending means the latest request has not settled yet.
	ErrFetchPending = errors.New("a fetch is still pending")
	// ErrNoPageLoaded means no page of the active term has been accepted,
	// so there is nothing to continue from.
	ErrNoPageLoaded = errors.New("no page of the active search has loaded")
	// ErrNoMorePages means the last accepted page was the final one.
	ErrNoMorePages = errors.New("no more pages")
)

// PersistentStore keeps the search term across restarts. *storage.Store
// implements it.
type PersistentStore interface {
	GetValue(key string) (string, bool, error)
	PutValue(key, value string) error
}

type Option func(*Controller)

func WithURLBuilder(b hn.URLBuilder) Option {
	return func(c *Controller) { c.builder = b }
}

func WithHistorySize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.historySize = n
		}
	}
}

func WithStorageKey(key string) Option {
	return func(c *Controller) {
		if key != "" {
			c.storageKey = key
		}
	}
}

func WithDefaultTerm(term string) Option {
	return func(c *Controller) {
		if t, err := validation.ValidateSearchTerm(term); err == nil {
			c.defaultTerm = t
		}
	}
}

func WithListener(l ResultListener) Option {
	return func(c *Controller) { c.listeners = append(c.listeners, l) }
}

// OptionsFromConfig maps the session and api sections onto controller options.
func OptionsFromConfig(cfg *config.Config) []Option {
	if cfg == nil {
		return nil
	}
	return []Option{
		WithURLBuilder(hn.NewURLBuilder(cfg.API.BaseURL)),
		WithHistorySize(cfg.Session.HistorySize),
		WithStorageKey(cfg.Session.StorageKey),
		WithDefaultTerm(cfg.Session.DefaultTerm),
	}
}

// Controller owns one search session: the current term, the sequence of
// issued URLs and the result store. Intent methods never block on the
// network; the fetch they begin is completed with Run/Settle or Await.
type Controller struct {
	mu sync.Mutex

	store       PersistentStore
	storageKey  string
	defaultTerm string
	historySize int
	builder     hn.URLBuilder
	listeners   []ResultListener

	term   string
	issued []hn.IssuedURL

	results *ResultStore
	orch    *Orchestrator
}

// New restores the persisted term and issues the URL for its first page.
// No request is made until Start.
func New(store PersistentStore, fetcher Fetcher, opts ...Option) *Controller {
	c := &Controller{
		store:       store,
		storageKey:  DefaultStorageKey,
		defaultTerm: DefaultTerm,
		historySize: DefaultHistorySize,
		builder:     hn.NewURLBuilder(""),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.results = NewResultStore()
	c.orch = NewOrchestrator(fetcher, c.results)
	for _, l := range c.listeners {
		c.orch.AddListener(l)
	}

	c.term = c.restoreTerm()
	c.issued = append(c.issued, c.builder.Build(c.term, 0))
	return c
}

func (c *Controller) restoreTerm() string {
	if c.store == nil {
		return c.defaultTerm
	}
	value, ok, err := c.store.GetValue(c.storageKey)
	if err != nil {
		debuglog.Warnf("reading persisted term: %v", err)
		return c.defaultTerm
	}
	if !ok {
		return c.defaultTerm
	}
	term, err := validation.ValidateSearchTerm(value)
	if err != nil {
		if strings.TrimSpace(value) != "" {
			debuglog.Warnf("ignoring persisted term %q: %v", value, err)
		}
		return c.defaultTerm
	}
	return term
}

// persist must be called with c.mu held.
func (c *Controller) persist() {
	if c.store == nil {
		return
	}
	if err := c.store.PutValue(c.storageKey, c.term); err != nil {
		debuglog.Warnf("persisting term: %v", err)
	}
}

// Start begins the fetch for the latest issued URL.
func (c *Controller) Start() Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orch.Begin(c.issued[len(c.issued)-1])
}

// UpdateSearchInput records the draft term without fetching.
func (c *Controller) UpdateSearchInput(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if term == c.term {
		return
	}
	c.term = term
	c.persist()
}

// SubmitSearch makes term the active search and begins fetching its first page.
func (c *Controller) SubmitSearch(term string) (Ticket, error) {
	return c.search(term)
}

// PickHistory re-runs an earlier term from the history shortcuts.
func (c *Controller) PickHistory(term string) (Ticket, error) {
	return c.search(term)
}

func (c *Controller) search(term string) (Ticket, error) {
	term, err := validation.ValidateSearchTerm(term)
	if err != nil {
		return Ticket{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if term != c.term {
		c.term = term
		c.persist()
	}
	u := c.builder.Build(term, 0)
	c.issued = append(c.issued, u)
	return c.orch.Begin(u), nil
}

// LoadMore begins fetching the page after the last accepted one for the
// term of the latest issued URL. Nothing is issued unless the accepted items
// are a settled, unfinished run of that term.
func (c *Controller) LoadMore() (Ticket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	latest := c.issued[len(c.issued)-1]
	term, err := hn.ExtractTerm(latest)
	if err != nil {
		return Ticket{}, fmt.Errorf("%w: %v", ErrNoActiveSearch, err)
	}
	if c.orch.Pending() {
		return Ticket{}, ErrFetchPending
	}
	state := c.results.State()
	if state.Term != term {
		return Ticket{}, ErrNoPageLoaded
	}
	if !state.HasMore() {
		return Ticket{}, ErrNoMorePages
	}

	u := c.builder.Build(term, state.Page+1)
	c.issued = append(c.issued, u)
	return c.orch.Begin(u), nil
}

// RemoveItem hides a story from the current results.
func (c *Controller) RemoveItem(objectID string) {
	c.results.Dispatch(RemoveItem{ObjectID: objectID})
}

// Run performs the fetch for t; see Orchestrator.Run.
func (c *Controller) Run(ctx context.Context, t Ticket) Outcome {
	return c.orch.Run(ctx, t)
}

func (c *Controller) Settle(out Outcome) bool {
	return c.orch.Settle(out)
}

func (c *Controller) Await(ctx context.Context, t Ticket) bool {
	return c.orch.Await(ctx, t)
}

// Close cancels any in-flight fetch.
func (c *Controller) Close() {
	c.orch.Close()
}

// IssuedURLs returns a copy of every URL issued so far, oldest first.
func (c *Controller) IssuedURLs() []hn.IssuedURL {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]hn.IssuedURL(nil), c.issued...)
}

// View derives the presentation state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.results.State()
	active, _ := hn.ExtractTerm(c.issued[len(c.issued)-1])

	return View{
		Items:         state.Items,
		IsLoading:     state.IsLoading,
		IsError:       state.IsError,
		Page:          state.Page,
		HasMore:       state.Term == active && state.HasMore(),
		History:       DeriveHistory(c.issued, c.historySize),
		SearchTerm:    c.term,
		ActiveTerm:    active,
		TotalComments: TotalComments(state.Items),
	}
}
