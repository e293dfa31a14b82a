package deck

import (
	"time"

	"github.com/youruser/pokedeck/internal/cards"
)

// Deck limits.
const (
	MaxPerCard  = 4
	MinDeckSize = 24
	MaxDeckSize = 60
)

// Entry is one distinct card in a deck and how many copies it holds.
type Entry struct {
	Card  cards.Card `json:"card"`
	Count int        `json:"count"`
}

type Deck struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Cards     []Entry   `json:"cards"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Total is the number of cards in the deck, counting copies.
func (d Deck) Total() int {
	n := 0
	for _, e := range d.Cards {
		n += e.Count
	}
	return n
}

// Clone returns a deep copy of d.
func (d Deck) Clone() Deck {
	out := d
	out.Cards = make([]Entry, len(d.Cards))
	copy(out.Cards, d.Cards)
	return out
}
