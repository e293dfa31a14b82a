// Package session keeps the per-user editing state behind the HTTP API: one
// catalog search, one deck draft and the notifications produced for them.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/youruser/pokedeck/internal/cards"
	"github.com/youruser/pokedeck/internal/catalog"
	"github.com/youruser/pokedeck/internal/debounce"
	"github.com/youruser/pokedeck/internal/deck"
	"github.com/youruser/pokedeck/internal/form"
	"github.com/youruser/pokedeck/internal/i18n"
	"github.com/youruser/pokedeck/internal/logger"
)

// ErrUnknownCard is returned when a card id is neither in the catalog
// results nor in the deck.
var ErrUnknownCard = errors.New("card not found in catalog or deck")

type NotificationKind string

const (
	NotifyError   NotificationKind = "error"
	NotifySuccess NotificationKind = "success"
)

type Notification struct {
	ID      uint64           `json:"id"`
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
	At      time.Time        `json:"at"`
}

type Session struct {
	id       string
	catalog  *catalog.Store
	debounce *debounce.Debouncer
	printer  *i18n.Printer
	log      *logger.Logger
	// lastSeen is unix nanos of the last lookup, read by the idle sweeper.
	lastSeen atomic.Int64

	// mu guards form and notes; the catalog store has its own lock.
	mu       sync.Mutex
	form     *form.Coordinator
	notes    []Notification
	nextNote uint64
}

func (s *Session) ID() string { return s.id }

func (s *Session) Locale() string { return s.printer.Locale() }

// notifier records messages on the session. Calls arrive with s.mu held.
type notifier struct{ s *Session }

func (n notifier) Error(msg string) { n.s.queueLocked(NotifyError, msg) }

func (n notifier) Success(msg string) { n.s.queueLocked(NotifySuccess, msg) }

func (s *Session) queueLocked(kind NotificationKind, msg string) {
	s.nextNote++
	s.notes = append(s.notes, Notification{ID: s.nextNote, Kind: kind, Message: msg, At: time.Now().UTC()})
}

// Type records one keystroke of search input. The search runs once typing
// pauses for the debounce delay. Its failure has no caller to return to, so
// it is queued as a notification.
func (s *Session) Type(q string) {
	s.debounce.Trigger(func() {
		s.notifyFailure(s.search(context.Background(), q))
	})
}

// SearchPending reports whether typed input is waiting for the debounce.
func (s *Session) SearchPending() bool { return s.debounce.Pending() }

// Search runs q right away, dropping any debounced input. Failures are
// returned, not queued.
func (s *Session) Search(ctx context.Context, q string) error {
	s.debounce.Stop()
	return s.search(ctx, q)
}

func (s *Session) search(ctx context.Context, q string) error {
	return s.fetchResult(s.catalog.Search(ctx, q))
}

func (s *Session) NextPage(ctx context.Context) error {
	return s.fetchResult(s.catalog.NextPage(ctx))
}

// fetchResult drops superseded responses: they are not a failure from the
// user's point of view.
func (s *Session) fetchResult(err error) error {
	if err == nil || errors.Is(err, catalog.ErrSuperseded) {
		return nil
	}
	s.log.Warn("Catalog fetch failed", "error", err)
	return err
}

func (s *Session) notifyFailure(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queueLocked(NotifyError, s.printer.Sprintf(i18n.KeyFetchFailed))
}

func (s *Session) Cards() []cards.Card { return s.catalog.Cards() }

func (s *Session) Loading() bool { return s.catalog.Loading() }

func (s *Session) Catalog() catalog.State { return s.catalog.Snapshot() }

func (s *Session) UpdateName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.UpdateName(name)
}

func (s *Session) AddCard(c cards.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.AddCard(c)
}

// AddCardByID adds a card from the current catalog results.
func (s *Session) AddCardByID(id string) (cards.Card, error) {
	c, ok := s.catalog.Snapshot().CardsByID[id]
	if !ok {
		s.mu.Lock()
		c, ok = s.deckCardLocked(id)
		s.mu.Unlock()
	}
	if !ok {
		return cards.Card{}, ErrUnknownCard
	}
	s.AddCard(c)
	return c, nil
}

// RemoveCardByID removes one copy of the deck card with that id.
func (s *Session) RemoveCardByID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.deckCardLocked(id)
	if !ok {
		return ErrUnknownCard
	}
	s.form.RemoveCard(c)
	return nil
}

func (s *Session) deckCardLocked(id string) (cards.Card, bool) {
	for _, e := range s.form.Deck().Cards {
		if e.Card.ID == id {
			return e.Card, true
		}
	}
	return cards.Card{}, false
}

// Save persists the deck. The outcome is queued as a notification and also
// returned, so a caller that reports it can Dismiss it.
func (s *Session) Save(ctx context.Context) (deck.Result, Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.nextNote
	res, err := s.form.Save(ctx)
	var note Notification
	if n := len(s.notes); n > 0 && s.notes[n-1].ID > before {
		note = s.notes[n-1]
	}
	return res, note, err
}

// Dismiss removes one queued notification. Unknown ids are ignored.
func (s *Session) Dismiss(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notes {
		if n.ID == id {
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			return
		}
	}
}

func (s *Session) Deck() deck.Deck {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Deck()
}

func (s *Session) Submitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Submitted()
}

// DrainNotifications returns the queued notifications and clears the queue.
func (s *Session) DrainNotifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notes
	s.notes = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

func (s *Session) touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastSeen.Load()))
}

func (s *Session) close() {
	s.debounce.Stop()
}
