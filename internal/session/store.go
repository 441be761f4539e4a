package session

import (
	"sync"

	"github.com/pders01/hnsearch/internal/hn"
)

// ResultStore serialises reducer transitions.
type ResultStore struct {
	mu    sync.RWMutex
	state State
}

func NewResultStore() *ResultStore {
	return &ResultStore{state: State{Items: []hn.Story{}}}
}

// Dispatch applies ev and returns a copy of the resulting state.
func (rs *ResultStore) Dispatch(ev Event) State {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.state = Reduce(rs.state, ev)
	return rs.state.clone()
}

// State returns a copy of the current state.
func (rs *ResultStore) State() State {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.state.clone()
}

func (s State) clone() State {
	s.Items = append([]hn.Story{}, s.Items...)
	return s
}
