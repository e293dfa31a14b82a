// Package redisstore keeps decks as JSON values in redis.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/youruser/pokedeck/internal/deck"
	"github.com/youruser/pokedeck/internal/logger"
)

const indexKey = "decks"

// DeckKey is the key a deck's JSON value is stored under.
func DeckKey(id string) string { return "deck:" + id }

type Store struct {
	rdb *goredis.Client
	log *logger.Logger
	now func() time.Time
}

// Connect dials addr and pings it before returning.
func Connect(ctx context.Context, addr string, log *logger.Logger) (*Store, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(rdb, log), nil
}

func New(rdb *goredis.Client, log *logger.Logger) *Store {
	return &Store{rdb: rdb, log: log.With("repo", "RedisDeckRepo"), now: time.Now}
}

func (s *Store) Close() error { return s.rdb.Close() }

func (s *Store) put(ctx context.Context, d deck.Deck) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, DeckKey(d.ID), raw, 0)
		p.SAdd(ctx, indexKey, d.ID)
		return nil
	})
	return err
}

func (s *Store) Create(ctx context.Context, d deck.Deck) (deck.Deck, error) {
	d = d.Clone()
	d.ID = uuid.NewString()
	d.UpdatedAt = s.now().UTC()
	if err := s.put(ctx, d); err != nil {
		return deck.Deck{}, fmt.Errorf("create deck: %w", err)
	}
	return d, nil
}

func (s *Store) Update(ctx context.Context, d deck.Deck) (deck.Deck, error) {
	n, err := s.rdb.Exists(ctx, DeckKey(d.ID)).Result()
	if err != nil {
		return deck.Deck{}, fmt.Errorf("update deck %s: %w", d.ID, err)
	}
	if n == 0 {
		return deck.Deck{}, deck.ErrNotFound
	}
	d = d.Clone()
	d.UpdatedAt = s.now().UTC()
	if err := s.put(ctx, d); err != nil {
		return deck.Deck{}, fmt.Errorf("update deck %s: %w", d.ID, err)
	}
	return d, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	var del *goredis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		del = p.Del(ctx, DeckKey(id))
		p.SRem(ctx, indexKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete deck %s: %w", id, err)
	}
	if del.Val() == 0 {
		return deck.ErrNotFound
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (deck.Deck, error) {
	raw, err := s.rdb.Get(ctx, DeckKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return deck.Deck{}, deck.ErrNotFound
	}
	if err != nil {
		return deck.Deck{}, fmt.Errorf("get deck %s: %w", id, err)
	}
	var d deck.Deck
	if err := json.Unmarshal(raw, &d); err != nil {
		return deck.Deck{}, fmt.Errorf("decode deck %s: %w", id, err)
	}
	return d, nil
}

func (s *Store) List(ctx context.Context) ([]deck.Deck, error) {
	ids, err := s.rdb.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	out := make([]deck.Deck, 0, len(ids))
	for _, id := range ids {
		d, err := s.Get(ctx, id)
		if errors.Is(err, deck.ErrNotFound) {
			s.log.Warn("Deck index points at missing deck", "deck_id", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
