// Package todosync keeps a rendered todo list in step with the remote store.
//
// The store is the only source of truth. A State is the snapshot a render
// surface displays; it is replaced wholesale after every successful fetch,
// appended to optimistically on create, and filtered by id on delete. A
// failed operation never touches it.
package todosync

import (
	"sync"

	"github.com/Makepad-fr/tada/internal/model"
)

// State is the snapshot owned by a render surface. Sync operations run on
// their own goroutines, so every access is locked; readers get copies.
type State struct {
	mu    sync.Mutex
	items []model.Item
}

// NewState returns an empty snapshot, as before the first fetch.
func NewState() *State {
	return &State{items: []model.Item{}}
}

// Snapshot returns a copy of the current items in order.
func (s *State) Snapshot() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// At returns the item at a 0-based position.
func (s *State) At(i int) (model.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.items) {
		return model.Item{}, false
	}
	return s.items[i], true
}

func (s *State) Find(id model.ID) (model.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := model.IndexOf(s.items, id); i >= 0 {
		return s.items[i], true
	}
	return model.Item{}, false
}

func (s *State) replace(items []model.Item) {
	cp := make([]model.Item, len(items))
	copy(cp, items)
	s.mu.Lock()
	s.items = cp
	s.mu.Unlock()
}

func (s *State) append(it model.Item) {
	s.mu.Lock()
	s.items = append(s.items, it)
	s.mu.Unlock()
}

// remove drops every item carrying id and keeps the rest in order.
func (s *State) remove(id model.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]model.Item, 0, len(s.items))
	for _, it := range s.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	s.items = kept
}
