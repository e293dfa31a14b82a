package cards

import (
	"context"
	"sync"
)

// Local serves catalog pages from cards held in memory, for example the CSV
// data loaded at startup.
type Local struct {
	mu    sync.RWMutex
	cards []Card
}

func NewLocal(cs []Card) *Local {
	return &Local{cards: cs}
}

// Replace swaps the whole card set.
func (l *Local) Replace(cs []Card) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cards = cs
}

func (l *Local) All() []Card {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Card, len(l.cards))
	copy(out, l.cards)
	return out
}

func (l *Local) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.cards)
}

func (l *Local) Fetch(ctx context.Context, q Query) ([]Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	matched := Filter(l.All(), FilterOptions{Name: q.Name})
	return Page(matched, q.Page, pageSize), nil
}
