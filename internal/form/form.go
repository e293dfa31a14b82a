// Package form connects a deck editor to the deck repository and to the
// notifications shown to the user.
package form

import (
	"context"
	"errors"
	"fmt"

	"github.com/youruser/pokedeck/internal/cards"
	"github.com/youruser/pokedeck/internal/deck"
	"github.com/youruser/pokedeck/internal/i18n"
)

// Notifier receives the localized messages produced by the form.
type Notifier interface {
	Error(msg string)
	Success(msg string)
}

// NotifierFuncs adapts two callbacks to Notifier. Nil callbacks are skipped.
type NotifierFuncs struct {
	OnError   func(msg string)
	OnSuccess func(msg string)
}

func (n NotifierFuncs) Error(msg string) {
	if n.OnError != nil {
		n.OnError(msg)
	}
}

func (n NotifierFuncs) Success(msg string) {
	if n.OnSuccess != nil {
		n.OnSuccess(msg)
	}
}

type Coordinator struct {
	repo     deck.Repository
	editor   *deck.Editor
	notifier Notifier
	printer  *i18n.Printer
}

// Open starts editing the deck with the given id, or a new empty deck when
// deckID is empty.
func Open(ctx context.Context, repo deck.Repository, deckID string, notifier Notifier, printer *i18n.Printer) (*Coordinator, error) {
	if notifier == nil {
		notifier = NotifierFuncs{}
	}
	c := &Coordinator{repo: repo, notifier: notifier, printer: printer}
	if deckID == "" {
		c.editor = deck.NewEditor(deck.Deck{})
		return c, nil
	}
	d, err := repo.Get(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("load deck %s: %w", deckID, err)
	}
	c.editor = deck.NewEditor(d)
	return c, nil
}

func (c *Coordinator) UpdateName(name string) { c.editor.UpdateName(name) }

func (c *Coordinator) AddCard(card cards.Card) { c.editor.AddCard(card) }

func (c *Coordinator) RemoveCard(card cards.Card) { c.editor.RemoveCard(card) }

func (c *Coordinator) Deck() deck.Deck { return c.editor.Deck() }

func (c *Coordinator) Submitted() bool { return c.editor.Submitted() }

// Save persists the draft and sends exactly one notification describing the
// outcome. The error is returned as well so callers can branch on it.
func (c *Coordinator) Save(ctx context.Context) (deck.Result, error) {
	res, err := c.editor.Save(ctx, c.repo)
	if err != nil {
		c.notifier.Error(c.Message(err))
		return deck.Result{}, err
	}
	c.notifier.Success(c.printer.Sprintf(i18n.KeySaved))
	return res, nil
}

// Message renders err for the user.
func (c *Coordinator) Message(err error) string {
	var verr *deck.ValidationError
	switch {
	case errors.As(err, &verr) && verr.Kind == deck.NameRequired:
		return c.printer.Sprintf(i18n.KeyNameRequired)
	case errors.As(err, &verr) && verr.Kind == deck.SizeOutOfRange:
		return c.printer.Sprintf(i18n.KeySizeOutOfRange, verr.Min, verr.Max)
	case errors.Is(err, deck.ErrNotFound):
		return c.printer.Sprintf(i18n.KeyDeckNotFound)
	default:
		return err.Error()
	}
}
