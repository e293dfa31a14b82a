// Package catalog holds paginated card search results fetched from a cards
// API.
//
// Every Search, and every SetQuery that changes the query, starts a new
// generation. A response is applied only if the generation it was issued
// under is still current, so a slow response for an older query can never
// bring back cards the user has already searched past.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/youruser/pokedeck/internal/cards"
	"github.com/youruser/pokedeck/internal/logger"
)

// ErrSuperseded is returned when a fetch completes after a newer search or
// query change replaced the context it was issued for. Its results are
// discarded.
var ErrSuperseded = errors.New("catalog: response superseded")

// State is a point-in-time copy of the store.
type State struct {
	CardsByID  map[string]cards.Card `json:"-"`
	OrderedIDs []string              `json:"ids"`
	Page       int                   `json:"page"`
	Query      string                `json:"query"`
	Loading    bool                  `json:"loading"`
}

type Store struct {
	fetcher  cards.Fetcher
	pageSize int
	log      *logger.Logger

	mu         sync.Mutex
	byID       map[string]cards.Card
	ids        []string
	page       int
	query      string
	loading    bool
	generation uint64
	// fetches of the current generation still running
	inflight int
}

func NewStore(fetcher cards.Fetcher, pageSize int, log *logger.Logger) *Store {
	if pageSize <= 0 {
		pageSize = cards.DefaultPageSize
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		fetcher:  fetcher,
		pageSize: pageSize,
		log:      log.With("component", "CatalogStore"),
		byID:     map[string]cards.Card{},
		ids:      []string{},
		page:     1,
	}
}

// request is the context a fetch was issued under.
type request struct {
	generation uint64
	query      string
	page       int
}

func (s *Store) currentLocked(r request) bool {
	return s.generation == r.generation
}

// finishLocked accounts for a completed fetch of the current generation.
func (s *Store) finishLocked() {
	s.inflight--
	s.loading = s.inflight > 0
}

// Search resets the collection and loads page 1 of q.
func (s *Store) Search(ctx context.Context, q string) error {
	s.mu.Lock()
	s.generation++
	s.query = q
	s.page = 1
	s.byID = map[string]cards.Card{}
	s.ids = []string{}
	s.loading = true
	s.inflight = 1
	req := request{generation: s.generation, query: q, page: 1}
	s.mu.Unlock()

	found, err := s.fetcher.Fetch(ctx, cards.Query{Name: q, Page: 1, PageSize: s.pageSize})

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(req) {
		s.log.Debug("Discarding stale search response", "query", q, "generation", req.generation)
		return ErrSuperseded
	}
	s.finishLocked()
	if err != nil {
		s.log.Warn("Catalog search failed", "query", q, "error", err)
		return fmt.Errorf("search %q: %w", q, err)
	}
	// a later page of this generation may already have been merged
	s.mergeLocked(found)
	return nil
}

// NextPage loads the page after the current one and appends its cards.
// On failure the page number is restored so the same page can be retried.
func (s *Store) NextPage(ctx context.Context) error {
	s.mu.Lock()
	prev := s.page
	s.page++
	s.loading = true
	s.inflight++
	req := request{generation: s.generation, query: s.query, page: s.page}
	s.mu.Unlock()

	found, err := s.fetcher.Fetch(ctx, cards.Query{Name: req.query, Page: req.page, PageSize: s.pageSize})

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(req) {
		s.log.Debug("Discarding stale page response", "query", req.query, "page", req.page)
		return ErrSuperseded
	}
	s.finishLocked()
	if err != nil {
		if s.page == req.page {
			s.page = prev
		}
		s.log.Warn("Catalog next page failed", "query", req.query, "page", req.page, "error", err)
		return fmt.Errorf("page %d of %q: %w", req.page, req.query, err)
	}
	s.mergeLocked(found)
	return nil
}

func (s *Store) mergeLocked(found []cards.Card) {
	for _, c := range found {
		if _, ok := s.byID[c.ID]; !ok {
			s.ids = append(s.ids, c.ID)
		}
		s.byID[c.ID] = c
	}
}

func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

func (s *Store) SetPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = page
}

// SetQuery changes the query used by NextPage. Fetches issued for a previous
// query are discarded when they complete, so loading is cleared here.
func (s *Store) SetQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q == s.query {
		return
	}
	s.query = q
	s.generation++
	s.inflight = 0
	s.loading = false
}

// Cards returns every known card ordered by name.
func (s *Store) Cards() []cards.Card {
	s.mu.Lock()
	list := make([]cards.Card, 0, len(s.ids))
	for _, id := range s.ids {
		list = append(list, s.byID[id])
	}
	s.mu.Unlock()
	return cards.SortByName(list)
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID := make(map[string]cards.Card, len(s.byID))
	for k, v := range s.byID {
		byID[k] = v
	}
	ids := make([]string, len(s.ids))
	copy(ids, s.ids)
	return State{
		CardsByID:  byID,
		OrderedIDs: ids,
		Page:       s.page,
		Query:      s.query,
		Loading:    s.loading,
	}
}
