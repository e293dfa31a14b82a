package deck

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/youruser/pokedeck/internal/cards"
)

// ErrNotFound is returned by repositories for unknown deck ids.
var ErrNotFound = errors.New("deck not found")

// Repository persists decks keyed by id.
type Repository interface {
	Create(ctx context.Context, d Deck) (Deck, error)
	Update(ctx context.Context, d Deck) (Deck, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (Deck, error)
	List(ctx context.Context) ([]Deck, error)
}

type ValidationKind int

const (
	NameRequired ValidationKind = iota + 1
	SizeOutOfRange
)

func (k ValidationKind) String() string {
	switch k {
	case NameRequired:
		return "name_required"
	case SizeOutOfRange:
		return "size_out_of_range"
	default:
		return "unknown"
	}
}

// ValidationError reports why a deck cannot be saved.
type ValidationError struct {
	Kind  ValidationKind
	Total int
	Min   int
	Max   int
}

func (e *ValidationError) Error() string {
	if e.Kind == SizeOutOfRange {
		return fmt.Sprintf("deck has %d cards, must have between %d and %d", e.Total, e.Min, e.Max)
	}
	return "deck name is required"
}

// Result is the outcome of a successful save.
type Result struct {
	Deck    Deck
	Created bool
}

// Editor is the in-memory draft of a deck being edited. It is not safe for
// concurrent use; callers serialize access.
type Editor struct {
	deck      Deck
	index     map[string]int
	submitted bool
}

// NewEditor starts editing d. Entries with a non-positive count are dropped
// and counts above MaxPerCard are clamped.
func NewEditor(d Deck) *Editor {
	e := &Editor{deck: Deck{ID: d.ID, Name: d.Name, UpdatedAt: d.UpdatedAt}}
	e.index = map[string]int{}
	for _, entry := range d.Cards {
		if entry.Count <= 0 {
			continue
		}
		if i, ok := e.index[entry.Card.ID]; ok {
			e.deck.Cards[i].Count = min(e.deck.Cards[i].Count+entry.Count, MaxPerCard)
			continue
		}
		entry.Count = min(entry.Count, MaxPerCard)
		e.index[entry.Card.ID] = len(e.deck.Cards)
		e.deck.Cards = append(e.deck.Cards, entry)
	}
	return e
}

func (e *Editor) UpdateName(name string) {
	e.deck.Name = name
}

// AddCard adds one copy of c. Adding past MaxPerCard does nothing.
func (e *Editor) AddCard(c cards.Card) {
	if i, ok := e.index[c.ID]; ok {
		if e.deck.Cards[i].Count < MaxPerCard {
			e.deck.Cards[i].Count++
		}
		return
	}
	e.index[c.ID] = len(e.deck.Cards)
	e.deck.Cards = append(e.deck.Cards, Entry{Card: c, Count: 1})
}

// RemoveCard removes one copy of c, dropping the entry when none are left.
// Removing a card that is not in the deck does nothing.
func (e *Editor) RemoveCard(c cards.Card) {
	i, ok := e.index[c.ID]
	if !ok {
		return
	}
	e.deck.Cards[i].Count--
	if e.deck.Cards[i].Count > 0 {
		return
	}
	e.deck.Cards = append(e.deck.Cards[:i], e.deck.Cards[i+1:]...)
	delete(e.index, c.ID)
	for j := i; j < len(e.deck.Cards); j++ {
		e.index[e.deck.Cards[j].Card.ID] = j
	}
}

func (e *Editor) Count(cardID string) int {
	if i, ok := e.index[cardID]; ok {
		return e.deck.Cards[i].Count
	}
	return 0
}

func (e *Editor) Total() int { return e.deck.Total() }

func (e *Editor) Entries() []Entry {
	out := make([]Entry, len(e.deck.Cards))
	copy(out, e.deck.Cards)
	return out
}

// Deck returns a copy of the draft.
func (e *Editor) Deck() Deck { return e.deck.Clone() }

// Submitted reports whether a save has succeeded.
func (e *Editor) Submitted() bool { return e.submitted }

// Validate checks the name first, then the deck size.
func (e *Editor) Validate() error {
	if strings.TrimSpace(e.deck.Name) == "" {
		return &ValidationError{Kind: NameRequired}
	}
	if total := e.deck.Total(); total < MinDeckSize || total > MaxDeckSize {
		return &ValidationError{Kind: SizeOutOfRange, Total: total, Min: MinDeckSize, Max: MaxDeckSize}
	}
	return nil
}

// Save validates the draft and persists it, creating it when it has no id.
// A failed save leaves the draft untouched.
func (e *Editor) Save(ctx context.Context, repo Repository) (Result, error) {
	if err := e.Validate(); err != nil {
		return Result{}, err
	}
	created := e.deck.ID == ""
	var saved Deck
	var err error
	if created {
		saved, err = repo.Create(ctx, e.deck.Clone())
	} else {
		saved, err = repo.Update(ctx, e.deck.Clone())
	}
	if err != nil {
		return Result{}, fmt.Errorf("save deck: %w", err)
	}
	e.deck.ID = saved.ID
	e.deck.UpdatedAt = saved.UpdatedAt
	e.submitted = true
	return Result{Deck: saved, Created: created}, nil
}
