// Package store holds the authoritative flat list of media items as last
// confirmed by the backend. All derived state (relationship graph, filtered
// views, playback pointers) is recomputed from this list and holds no
// independent lifetime: a swap here is the single source of truth that
// invalidates everything downstream.
package store

import (
	"sync"

	"github.com/ervall/mediavault/internal/database"
)

// Store is the canonical media list. The only write path is ReplaceAll;
// nothing edits items in place, so readers never observe a partial state.
type Store struct {
	mu    sync.RWMutex
	items []database.MediaItem
	byID  map[uint]int

	subMu       sync.Mutex
	nextSubID   int
	subscribers map[int]func([]database.MediaItem)
}

// New creates an empty store.
func New() *Store {
	return &Store{
		byID:        make(map[uint]int),
		subscribers: make(map[int]func([]database.MediaItem)),
	}
}

// ReplaceAll atomically swaps the canonical list and notifies subscribers
// with a snapshot. Input order is preserved; it is the order every derived
// view sees.
func (s *Store) ReplaceAll(items []database.MediaItem) {
	copied := make([]database.MediaItem, len(items))
	copy(copied, items)

	byID := make(map[uint]int, len(copied))
	for i, item := range copied {
		byID[item.ID] = i
	}

	s.mu.Lock()
	s.items = copied
	s.byID = byID
	s.mu.Unlock()

	s.notify()
}

// Get returns the item with the given id.
func (s *Store) Get(id uint) (database.MediaItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return database.MediaItem{}, false
	}
	return s.items[i], true
}

// Items returns a snapshot of the full list in input order.
func (s *Store) Items() []database.MediaItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]database.MediaItem, len(s.items))
	copy(out, s.items)
	return out
}

// Videos returns the video subset in input order.
func (s *Store) Videos() []database.MediaItem {
	return s.subset(database.MediaTypeVideo)
}

// Audio returns the audio subset in input order.
func (s *Store) Audio() []database.MediaItem {
	return s.subset(database.MediaTypeAudio)
}

func (s *Store) subset(mediaType string) []database.MediaItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []database.MediaItem
	for _, item := range s.items {
		if item.MediaType == mediaType {
			out = append(out, item)
		}
	}
	return out
}

// Len returns the number of items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Subscribe registers a callback invoked with a snapshot after every swap.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func([]database.MediaItem)) func() {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify() {
	snapshot := s.Items()

	s.subMu.Lock()
	fns := make([]func([]database.MediaItem), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}
