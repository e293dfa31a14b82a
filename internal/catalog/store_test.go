package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/youruser/pokedeck/internal/cards"
)

// fakeFetcher answers from a per-query table and records every request.
type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]map[int][]cards.Card
	err     error
	calls   []cards.Query
	gates   map[string]chan struct{}
	started chan cards.Query
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages: map[string]map[int][]cards.Card{},
		gates: map[string]chan struct{}{},
	}
}

func (f *fakeFetcher) set(query string, page int, cs ...cards.Card) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pages[query] == nil {
		f.pages[query] = map[int][]cards.Card{}
	}
	f.pages[query][page] = cs
}

// hold makes fetches for query block until the returned func is called.
func (f *fakeFetcher) hold(query string) func() {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[query] = ch
	f.mu.Unlock()
	return func() { close(ch) }
}

func (f *fakeFetcher) Fetch(ctx context.Context, q cards.Query) ([]cards.Card, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	gate := f.gates[q.Name]
	started := f.started
	f.mu.Unlock()
	if started != nil {
		started <- q
	}
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.pages[q.Name][q.Page], nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func names(cs []cards.Card) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

func TestNewStoreInitialState(t *testing.T) {
	s := NewStore(newFakeFetcher(), 0, nil)
	st := s.Snapshot()
	if st.Page != 1 || st.Query != "" || st.Loading || len(st.OrderedIDs) != 0 {
		t.Fatalf("unexpected initial state %+v", st)
	}
	if s.Loading() {
		t.Fatal("expected loading=false")
	}
}

func TestSearchReplacesCollection(t *testing.T) {
	f := newFakeFetcher()
	pikachu := cards.Card{ID: "base1-58", Name: "Pikachu"}
	f.set("", 1, pikachu)
	s := NewStore(f, 27, nil)

	if err := s.Search(context.Background(), ""); err != nil {
		t.Fatalf("search: %v", err)
	}
	if f.callCount() != 1 {
		t.Fatalf("expected 1 fetch, got %d", f.callCount())
	}
	if got := f.calls[0]; got != (cards.Query{Name: "", Page: 1, PageSize: 27}) {
		t.Fatalf("unexpected query %+v", got)
	}
	st := s.Snapshot()
	if len(st.OrderedIDs) != 1 || st.OrderedIDs[0] != pikachu.ID || st.CardsByID[pikachu.ID].Name != pikachu.Name {
		t.Fatalf("unexpected state %+v", st)
	}
	if st.Loading {
		t.Fatal("expected loading cleared")
	}

	f.set("squirt", 1, cards.Card{ID: "base1-63", Name: "Squirtle"})
	if err := s.Search(context.Background(), "squirt"); err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := names(s.Cards()); len(got) != 1 || got[0] != "Squirtle" {
		t.Fatalf("expected only Squirtle, got %v", got)
	}
}

func TestNextPageAppendsSorted(t *testing.T) {
	f := newFakeFetcher()
	f.set("", 1, cards.Card{ID: "a", Name: "Zubat"})
	f.set("", 2, cards.Card{ID: "b", Name: "Abra"})
	s := NewStore(f, 27, nil)

	if err := s.Search(context.Background(), ""); err != nil {
		t.Fatalf("search: %v", err)
	}
	if err := s.NextPage(context.Background()); err != nil {
		t.Fatalf("next page: %v", err)
	}
	got := names(s.Cards())
	if len(got) != 2 || got[0] != "Abra" || got[1] != "Zubat" {
		t.Fatalf("unexpected cards %v", got)
	}
	st := s.Snapshot()
	if st.Page != 2 {
		t.Fatalf("expected page 2, got %d", st.Page)
	}
	if st.OrderedIDs[0] != "a" || st.OrderedIDs[1] != "b" {
		t.Fatalf("expected fetch order, got %v", st.OrderedIDs)
	}
}

func TestNextPageUsesQuerySetter(t *testing.T) {
	f := newFakeFetcher()
	f.set("test", 2, cards.Card{ID: "p", Name: "PokeTest"})
	s := NewStore(f, 27, nil)

	s.SetQuery("test")
	if err := s.NextPage(context.Background()); err != nil {
		t.Fatalf("next page: %v", err)
	}
	if got := f.calls[0]; got != (cards.Query{Name: "test", Page: 2, PageSize: 27}) {
		t.Fatalf("unexpected query %+v", got)
	}
	st := s.Snapshot()
	if st.Query != "test" || st.Page != 2 || len(st.OrderedIDs) != 1 {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestNextPageSkipsDuplicates(t *testing.T) {
	f := newFakeFetcher()
	dup := cards.Card{ID: "a", Name: "Abra"}
	f.set("", 1, dup)
	f.set("", 2, dup, cards.Card{ID: "b", Name: "Kadabra"})
	s := NewStore(f, 27, nil)

	_ = s.Search(context.Background(), "")
	_ = s.NextPage(context.Background())
	if got := s.Snapshot().OrderedIDs; len(got) != 2 {
		t.Fatalf("expected no duplicate ids, got %v", got)
	}
}

func TestRepeatedSearchIsIdempotentButFetches(t *testing.T) {
	f := newFakeFetcher()
	f.set("abra", 1, cards.Card{ID: "a", Name: "Abra"})
	s := NewStore(f, 27, nil)

	_ = s.Search(context.Background(), "abra")
	first := s.Snapshot()
	_ = s.Search(context.Background(), "abra")
	second := s.Snapshot()
	if f.callCount() != 2 {
		t.Fatalf("expected 2 fetches, got %d", f.callCount())
	}
	if len(first.OrderedIDs) != len(second.OrderedIDs) || first.OrderedIDs[0] != second.OrderedIDs[0] {
		t.Fatalf("expected identical content, got %v and %v", first.OrderedIDs, second.OrderedIDs)
	}
}

func TestFetchFailureClearsLoadingAndKeepsState(t *testing.T) {
	f := newFakeFetcher()
	f.set("", 1, cards.Card{ID: "a", Name: "Abra"})
	s := NewStore(f, 27, nil)
	_ = s.Search(context.Background(), "")

	boom := errors.New("network down")
	f.mu.Lock()
	f.err = boom
	f.mu.Unlock()

	err := s.NextPage(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped network error, got %v", err)
	}
	st := s.Snapshot()
	if st.Loading {
		t.Fatal("expected loading cleared after failure")
	}
	if st.Page != 1 {
		t.Fatalf("expected page restored to 1, got %d", st.Page)
	}
	if len(st.OrderedIDs) != 1 {
		t.Fatalf("expected previous cards kept, got %v", st.OrderedIDs)
	}

	if err := s.Search(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("expected search error, got %v", err)
	}
	if s.Loading() {
		t.Fatal("expected loading cleared after failed search")
	}
}

func TestStaleSearchResponseIsDiscarded(t *testing.T) {
	f := newFakeFetcher()
	f.set("pika", 1, cards.Card{ID: "pk", Name: "Pikachu"})
	f.set("bulba", 1, cards.Card{ID: "bb", Name: "Bulbasaur"})
	f.started = make(chan cards.Query, 2)
	release := f.hold("pika")
	s := NewStore(f, 27, nil)

	slow := make(chan error, 1)
	go func() { slow <- s.Search(context.Background(), "pika") }()
	select {
	case <-f.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first fetch never started")
	}

	if err := s.Search(context.Background(), "bulba"); err != nil {
		t.Fatalf("second search: %v", err)
	}
	<-f.started
	release()

	select {
	case err := <-slow:
		if !errors.Is(err, ErrSuperseded) {
			t.Fatalf("expected ErrSuperseded, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first search never returned")
	}

	got := names(s.Cards())
	if len(got) != 1 || got[0] != "Bulbasaur" {
		t.Fatalf("expected only Bulbasaur, got %v", got)
	}
	st := s.Snapshot()
	if st.Query != "bulba" || st.Loading {
		t.Fatalf("unexpected final state %+v", st)
	}
}

func TestStaleNextPageResponseIsDiscarded(t *testing.T) {
	f := newFakeFetcher()
	f.set("", 2, cards.Card{ID: "old", Name: "Old"})
	f.set("new", 1, cards.Card{ID: "new", Name: "New"})
	f.started = make(chan cards.Query, 2)
	release := f.hold("")
	s := NewStore(f, 27, nil)

	done := make(chan error, 1)
	go func() { done <- s.NextPage(context.Background()) }()
	<-f.started

	if err := s.Search(context.Background(), "new"); err != nil {
		t.Fatalf("search: %v", err)
	}
	<-f.started
	release()
	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}
	if got := names(s.Cards()); len(got) != 1 || got[0] != "New" {
		t.Fatalf("expected only New, got %v", got)
	}
}

func TestSetters(t *testing.T) {
	s := NewStore(newFakeFetcher(), 27, nil)
	s.SetPage(2020)
	s.SetQuery("test")
	s.SetLoading(true)
	st := s.Snapshot()
	if st.Page != 2020 || st.Query != "test" || !st.Loading {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestSetQueryDuringSearchClearsLoading(t *testing.T) {
	f := newFakeFetcher()
	f.set("pika", 1, cards.Card{ID: "pk", Name: "Pikachu"})
	f.started = make(chan cards.Query, 1)
	release := f.hold("pika")
	s := NewStore(f, 27, nil)

	done := make(chan error, 1)
	go func() { done <- s.Search(context.Background(), "pika") }()
	<-f.started
	if !s.Loading() {
		t.Fatal("expected loading while the search is in flight")
	}

	s.SetQuery("bulba")
	if s.Loading() {
		t.Fatal("expected loading cleared once the query changed")
	}
	release()
	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}
	st := s.Snapshot()
	if st.Loading || st.Query != "bulba" || len(st.OrderedIDs) != 0 {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestNextPageBeforeFirstPageArrives(t *testing.T) {
	f := newFakeFetcher()
	f.set("q", 1, cards.Card{ID: "a", Name: "Zubat"})
	f.set("q", 2, cards.Card{ID: "b", Name: "Abra"})
	f.started = make(chan cards.Query, 2)
	release := f.hold("q")
	s := NewStore(f, 27, nil)

	first := make(chan error, 1)
	go func() { first <- s.Search(context.Background(), "q") }()
	<-f.started

	// page 2 answers first
	f.mu.Lock()
	delete(f.gates, "q")
	f.mu.Unlock()
	if err := s.NextPage(context.Background()); err != nil {
		t.Fatalf("next page: %v", err)
	}
	<-f.started
	if !s.Loading() {
		t.Fatal("expected loading while page 1 is still in flight")
	}

	release()
	if err := <-first; err != nil {
		t.Fatalf("search: %v", err)
	}
	st := s.Snapshot()
	if st.Page != 2 || st.Loading {
		t.Fatalf("unexpected state %+v", st)
	}
	if got := names(s.Cards()); len(got) != 2 || got[0] != "Abra" || got[1] != "Zubat" {
		t.Fatalf("expected both pages kept, got %v", got)
	}
}
