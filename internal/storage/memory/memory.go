// Package memory is a process-local deck repository.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/youruser/pokedeck/internal/deck"
)

type Store struct {
	mu    sync.RWMutex
	decks map[string]deck.Deck
	now   func() time.Time
}

func New() *Store {
	return &Store{decks: map[string]deck.Deck{}, now: time.Now}
}

func (s *Store) Create(ctx context.Context, d deck.Deck) (deck.Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d = d.Clone()
	d.ID = uuid.NewString()
	d.UpdatedAt = s.now().UTC()
	s.decks[d.ID] = d
	return d.Clone(), nil
}

func (s *Store) Update(ctx context.Context, d deck.Deck) (deck.Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.decks[d.ID]; !ok {
		return deck.Deck{}, deck.ErrNotFound
	}
	d = d.Clone()
	d.UpdatedAt = s.now().UTC()
	s.decks[d.ID] = d
	return d.Clone(), nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.decks[id]; !ok {
		return deck.ErrNotFound
	}
	delete(s.decks, id)
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (deck.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.decks[id]
	if !ok {
		return deck.Deck{}, deck.ErrNotFound
	}
	return d.Clone(), nil
}

// List returns every deck, most recently updated first.
func (s *Store) List(ctx context.Context) ([]deck.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]deck.Deck, 0, len(s.decks))
	for _, d := range s.decks {
		out = append(out, d.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
