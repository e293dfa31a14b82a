package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/youruser/pokedeck/internal/cards"
	"github.com/youruser/pokedeck/internal/catalog"
	"github.com/youruser/pokedeck/internal/debounce"
	"github.com/youruser/pokedeck/internal/deck"
	"github.com/youruser/pokedeck/internal/form"
	"github.com/youruser/pokedeck/internal/i18n"
	"github.com/youruser/pokedeck/internal/logger"
)

var ErrNotFound = errors.New("session not found")

type Options struct {
	Repo     deck.Repository
	Fetcher  cards.Fetcher
	Messages *i18n.Bundle
	Log      *logger.Logger
	PageSize int
	Debounce time.Duration
	// AfterFunc overrides the debounce timer; nil uses real timers.
	AfterFunc debounce.AfterFunc
	// IdleTTL evicts sessions not looked up for that long. Zero keeps them
	// until deleted.
	IdleTTL time.Duration
	// SweepInterval is how often idle sessions are checked. Defaults to
	// IdleTTL/4.
	SweepInterval time.Duration
	// Now overrides the clock used for idle tracking.
	Now func() time.Time
}

type Manager struct {
	opts Options
	log  *logger.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewManager(opts Options) *Manager {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = debounce.DefaultDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	m := &Manager{
		opts:     opts,
		log:      opts.Log.With("component", "SessionManager"),
		sessions: map[string]*Session{},
		stop:     make(chan struct{}),
	}
	if opts.IdleTTL > 0 {
		interval := opts.SweepInterval
		if interval <= 0 {
			interval = opts.IdleTTL / 4
		}
		m.wg.Add(1)
		go m.sweepLoop(interval)
	}
	return m
}

func (m *Manager) sweepLoop(interval time.Duration) {
	defer m.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

// sweep closes every session idle for longer than IdleTTL and returns how
// many it closed.
func (m *Manager) sweep() int {
	now := m.opts.Now()
	var idle []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.idleSince(now) > m.opts.IdleTTL {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()
	for _, s := range idle {
		s.close()
		m.log.Info("Session expired", "session_id", s.ID())
	}
	return len(idle)
}

// Create opens an editing session for deckID (empty for a new deck) and
// loads the first catalog page. A failed first load is reported as a
// notification; the session is still usable.
func (m *Manager) Create(ctx context.Context, deckID, locale string) (*Session, error) {
	id := uuid.NewString()
	log := m.opts.Log.With("session_id", id)
	s := &Session{
		id:      id,
		catalog: catalog.NewStore(m.opts.Fetcher, m.opts.PageSize, log),
		printer: m.opts.Messages.Printer(locale),
		log:     log,
	}
	s.touch(m.opts.Now())
	if m.opts.AfterFunc != nil {
		s.debounce = debounce.NewWithAfterFunc(m.opts.Debounce, m.opts.AfterFunc)
	} else {
		s.debounce = debounce.New(m.opts.Debounce)
	}
	f, err := form.Open(ctx, m.opts.Repo, deckID, notifier{s}, s.printer)
	if err != nil {
		return nil, fmt.Errorf("open deck form: %w", err)
	}
	s.form = f

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	m.log.Info("Session created", "session_id", id, "deck_id", deckID)

	s.notifyFailure(s.Search(ctx, ""))
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.touch(m.opts.Now())
	return s, nil
}

func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.close()
	m.log.Info("Session closed", "session_id", id)
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops the idle sweeper and ends every session.
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
	m.wg.Wait()
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = map[string]*Session{}
	m.mu.Unlock()
	for _, s := range sessions {
		s.close()
	}
}
