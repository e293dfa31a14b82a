// Package gormstore persists decks through gorm, on sqlite or postgres.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/youruser/pokedeck/internal/deck"
	"github.com/youruser/pokedeck/internal/logger"
	"github.com/youruser/pokedeck/internal/util"
)

// DeckRow is the table layout. Entries are kept as one JSON column because
// they are only ever read and written with their deck.
type DeckRow struct {
	ID        string       `gorm:"type:varchar(36);primaryKey"`
	Name      string       `gorm:"not null"`
	Cards     datatypes.JSONSlice[deck.Entry]
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (DeckRow) TableName() string { return "deck" }

func toDeck(r DeckRow) deck.Deck {
	return deck.Deck{ID: r.ID, Name: r.Name, Cards: r.Cards, UpdatedAt: r.UpdatedAt}
}

type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

// OpenSQLite opens (creating if needed) a sqlite database file.
func OpenSQLite(dsn string, log *logger.Logger) (*Store, error) {
	if dsn != ":memory:" && dsn != "file::memory:" {
		if err := util.EnsureParentDir(dsn); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	log.Info("Opening sqlite deck store...", "dsn", dsn)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		log.Error("Failed to open sqlite", "error", err)
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return New(db, log)
}

// OpenPostgres connects to postgres using a URL or key=value DSN.
func OpenPostgres(dsn string, log *logger.Logger) (*Store, error) {
	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return New(db, log)
}

// New wraps an open gorm handle and migrates the deck table.
func New(db *gorm.DB, log *logger.Logger) (*Store, error) {
	s := &Store{db: db, log: log.With("repo", "DeckRepo")}
	if err := db.AutoMigrate(&DeckRow{}); err != nil {
		s.log.Error("Auto migration failed for deck table", "error", err)
		return nil, fmt.Errorf("migrate deck table: %w", err)
	}
	return s, nil
}

func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Create(ctx context.Context, d deck.Deck) (deck.Deck, error) {
	row := DeckRow{ID: uuid.NewString(), Name: d.Name, Cards: d.Cards}
	if row.Cards == nil {
		row.Cards = []deck.Entry{}
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return deck.Deck{}, fmt.Errorf("insert deck: %w", err)
	}
	return toDeck(row), nil
}

func (s *Store) Update(ctx context.Context, d deck.Deck) (deck.Deck, error) {
	var row DeckRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, "id = ?", d.ID).Error; err != nil {
			return err
		}
		row.Name = d.Name
		row.Cards = d.Cards
		if row.Cards == nil {
			row.Cards = []deck.Entry{}
		}
		return tx.Save(&row).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return deck.Deck{}, deck.ErrNotFound
	}
	if err != nil {
		return deck.Deck{}, fmt.Errorf("update deck %s: %w", d.ID, err)
	}
	return toDeck(row), nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&DeckRow{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete deck %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return deck.ErrNotFound
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (deck.Deck, error) {
	var row DeckRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return deck.Deck{}, deck.ErrNotFound
	}
	if err != nil {
		return deck.Deck{}, fmt.Errorf("get deck %s: %w", id, err)
	}
	return toDeck(row), nil
}

func (s *Store) List(ctx context.Context) ([]deck.Deck, error) {
	var rows []DeckRow
	if err := s.db.WithContext(ctx).Order("updated_at desc, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	out := make([]deck.Deck, 0, len(rows))
	for _, r := range rows {
		out = append(out, toDeck(r))
	}
	return out, nil
}
