package deck

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/youruser/pokedeck/internal/cards"
)

var (
	pikachu   = cards.Card{ID: "base1-58", Name: "Pikachu"}
	bulbasaur = cards.Card{ID: "base1-44", Name: "Bulbasaur"}
)

// fakeRepo is a minimal Repository that assigns sequential ids.
type fakeRepo struct {
	decks   map[string]Deck
	next    int
	creates int
	updates int
	err     error
}

func newFakeRepo() *fakeRepo { return &fakeRepo{decks: map[string]Deck{}} }

func (r *fakeRepo) Create(ctx context.Context, d Deck) (Deck, error) {
	if r.err != nil {
		return Deck{}, r.err
	}
	r.creates++
	r.next++
	d.ID = "deck-" + strconv.Itoa(r.next)
	r.decks[d.ID] = d
	return d, nil
}

func (r *fakeRepo) Update(ctx context.Context, d Deck) (Deck, error) {
	if r.err != nil {
		return Deck{}, r.err
	}
	if _, ok := r.decks[d.ID]; !ok {
		return Deck{}, ErrNotFound
	}
	r.updates++
	r.decks[d.ID] = d
	return d, nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	delete(r.decks, id)
	return nil
}

func (r *fakeRepo) Get(ctx context.Context, id string) (Deck, error) {
	d, ok := r.decks[id]
	if !ok {
		return Deck{}, ErrNotFound
	}
	return d, nil
}

func (r *fakeRepo) List(ctx context.Context) ([]Deck, error) {
	out := []Deck{}
	for _, d := range r.decks {
		out = append(out, d)
	}
	return out, nil
}

// fullDeck returns entries totalling n cards, four copies per card.
func fullDeck(n int) []Entry {
	var out []Entry
	for i := 0; n > 0; i++ {
		c := min(n, MaxPerCard)
		out = append(out, Entry{Card: cards.Card{ID: "c" + strconv.Itoa(i), Name: "Picle " + strconv.Itoa(i)}, Count: c})
		n -= c
	}
	return out
}

func TestAddCardCapsAtMaxPerCard(t *testing.T) {
	e := NewEditor(Deck{})
	e.AddCard(pikachu)
	e.AddCard(pikachu)
	if got := e.Count(pikachu.ID); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	for i := 0; i < 10; i++ {
		e.AddCard(pikachu)
	}
	if got := e.Count(pikachu.ID); got != MaxPerCard {
		t.Fatalf("expected %d, got %d", MaxPerCard, got)
	}
	if len(e.Entries()) != 1 {
		t.Fatalf("expected a single entry, got %d", len(e.Entries()))
	}
}

func TestAddSixTimesYieldsFour(t *testing.T) {
	e := NewEditor(Deck{})
	for i := 0; i < 6; i++ {
		e.AddCard(pikachu)
	}
	if got := e.Count(pikachu.ID); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
}

func TestRemoveCardDeletesEntryAtZero(t *testing.T) {
	e := NewEditor(Deck{})
	e.AddCard(pikachu)
	e.AddCard(pikachu)
	e.AddCard(bulbasaur)

	e.RemoveCard(pikachu)
	if got := e.Count(pikachu.ID); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	e.RemoveCard(pikachu)
	for _, entry := range e.Entries() {
		if entry.Card.ID == pikachu.ID {
			t.Fatalf("expected entry removed, found %+v", entry)
		}
	}
	e.RemoveCard(pikachu)
	if got := e.Count(pikachu.ID); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := e.Count(bulbasaur.ID); got != 1 {
		t.Fatalf("expected bulbasaur untouched, got %d", got)
	}
	// the index must follow the shifted entry
	e.AddCard(bulbasaur)
	if got := e.Entries(); len(got) != 1 || got[0].Count != 2 {
		t.Fatalf("unexpected entries %+v", got)
	}
}

func TestRemoveFromLoadedDeck(t *testing.T) {
	e := NewEditor(Deck{ID: "d1", Cards: []Entry{{Card: pikachu, Count: 4}}})
	e.RemoveCard(pikachu)
	if got := e.Count(pikachu.ID); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	for i := 0; i < 10; i++ {
		e.RemoveCard(pikachu)
	}
	if len(e.Entries()) != 0 {
		t.Fatalf("expected empty deck, got %+v", e.Entries())
	}
}

func TestNewEditorNormalizesEntries(t *testing.T) {
	e := NewEditor(Deck{Cards: []Entry{
		{Card: pikachu, Count: 9},
		{Card: bulbasaur, Count: 0},
		{Card: pikachu, Count: 1},
	}})
	if got := e.Entries(); len(got) != 1 || got[0].Count != MaxPerCard {
		t.Fatalf("unexpected entries %+v", got)
	}
}

func TestDeckReturnsCopy(t *testing.T) {
	e := NewEditor(Deck{})
	e.AddCard(pikachu)
	d := e.Deck()
	d.Cards[0].Count = 99
	if e.Count(pikachu.ID) != 1 {
		t.Fatal("mutating the returned deck changed the draft")
	}
}

func TestSaveRequiresName(t *testing.T) {
	for _, total := range []int{0, 30, 80} {
		e := NewEditor(Deck{Name: "  ", Cards: fullDeck(total)})
		_, err := e.Save(context.Background(), newFakeRepo())
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Kind != NameRequired {
			t.Fatalf("total %d: expected name required, got %v", total, err)
		}
		if e.Submitted() {
			t.Fatal("expected submitted=false")
		}
	}
}

func TestSaveRequiresSizeInRange(t *testing.T) {
	for _, total := range []int{0, MinDeckSize - 1, MaxDeckSize + 1} {
		e := NewEditor(Deck{Name: "Meu deck", Cards: fullDeck(total)})
		if total > MaxDeckSize {
			// NewEditor clamps per card, so build the oversized deck with AddCard.
			e = NewEditor(Deck{Name: "Meu deck"})
			for i := 0; i < total; i++ {
				e.AddCard(cards.Card{ID: "x" + strconv.Itoa(i/MaxPerCard)})
			}
		}
		repo := newFakeRepo()
		_, err := e.Save(context.Background(), repo)
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Kind != SizeOutOfRange {
			t.Fatalf("total %d: expected size error, got %v", total, err)
		}
		if verr.Min != MinDeckSize || verr.Max != MaxDeckSize || verr.Total != total {
			t.Fatalf("unexpected bounds %+v", verr)
		}
		if repo.creates != 0 {
			t.Fatal("expected nothing persisted")
		}
	}
}

func TestSaveCreatesThenUpdates(t *testing.T) {
	repo := newFakeRepo()
	e := NewEditor(Deck{Name: "Meu deck", Cards: fullDeck(MinDeckSize)})

	res, err := e.Save(context.Background(), repo)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !res.Created || res.Deck.ID == "" {
		t.Fatalf("expected created deck, got %+v", res)
	}
	if !e.Submitted() {
		t.Fatal("expected submitted=true")
	}
	if e.Deck().ID != res.Deck.ID {
		t.Fatal("expected draft to take the new id")
	}

	e.AddCard(pikachu)
	res, err = e.Save(context.Background(), repo)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if res.Created {
		t.Fatal("expected update on second save")
	}
	if repo.creates != 1 || repo.updates != 1 {
		t.Fatalf("expected 1 create and 1 update, got %d and %d", repo.creates, repo.updates)
	}
	if repo.decks[res.Deck.ID].Total() != MinDeckSize+1 {
		t.Fatalf("unexpected stored total %d", repo.decks[res.Deck.ID].Total())
	}
}

func TestSaveAtUpperBound(t *testing.T) {
	e := NewEditor(Deck{Name: "Meu deck", Cards: fullDeck(MaxDeckSize)})
	if _, err := e.Save(context.Background(), newFakeRepo()); err != nil {
		t.Fatalf("save: %v", err)
	}
}

func TestSaveRepositoryError(t *testing.T) {
	repo := newFakeRepo()
	repo.err = errors.New("disk full")
	e := NewEditor(Deck{Name: "Meu deck", Cards: fullDeck(MinDeckSize)})
	if _, err := e.Save(context.Background(), repo); !errors.Is(err, repo.err) {
		t.Fatalf("expected repository error, got %v", err)
	}
	if e.Submitted() {
		t.Fatal("expected submitted=false")
	}
}

func TestExportDeckText(t *testing.T) {
	d := Deck{Name: "Choque", Cards: []Entry{
		{Card: pikachu, Count: 4},
		{Card: bulbasaur, Count: 2},
	}}
	got := ExportDeckText(d)
	want := strings.Join([]string{
		"# Choque",
		"2 Bulbasaur base1-44",
		"4 Pikachu base1-58",
		"Total: 6",
	}, "\n")
	if got != want {
		t.Fatalf("got\n%s\nwant\n%s", got, want)
	}
}
