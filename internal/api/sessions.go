package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/youruser/pokedeck/internal/cards"
	"github.com/youruser/pokedeck/internal/deck"
	"github.com/youruser/pokedeck/internal/i18n"
	"github.com/youruser/pokedeck/internal/session"
)

type catalogView struct {
	Query   string `json:"query"`
	Page    int    `json:"page"`
	Loading bool   `json:"loading"`
	Pending bool   `json:"pending_search"`
}

type sessionView struct {
	ID            string                 `json:"id"`
	Locale        string                 `json:"locale"`
	Deck          deckView               `json:"deck"`
	Submitted     bool                   `json:"submitted"`
	Catalog       catalogView            `json:"catalog"`
	Notifications []session.Notification `json:"notifications"`
}

func viewSession(s *session.Session) sessionView {
	st := s.Catalog()
	return sessionView{
		ID:        s.ID(),
		Locale:    s.Locale(),
		Deck:      viewDeck(s.Deck()),
		Submitted: s.Submitted(),
		Catalog: catalogView{
			Query:   st.Query,
			Page:    st.Page,
			Loading: st.Loading,
			Pending: s.SearchPending(),
		},
		Notifications: s.DrainNotifications(),
	}
}

func (h *Handler) session(c *gin.Context) (*session.Session, bool) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return s, true
}

func (h *Handler) createSession(c *gin.Context) {
	var req struct {
		DeckID string `json:"deck_id"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badRequest(c, err)
			return
		}
	}
	locale := c.GetHeader("Accept-Language")
	if locale == "" {
		locale = h.locale
	}
	s, err := h.sessions.Create(c.Request.Context(), req.DeckID, locale)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, viewSession(s))
}

func (h *Handler) getSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, viewSession(s))
}

func (h *Handler) deleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) updateName(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	s.UpdateName(req.Name)
	c.JSON(http.StatusOK, viewDeck(s.Deck()))
}

// addCard accepts either {"card_id": "..."} for a card in the current
// results or a full {"card": {...}}.
func (h *Handler) addCard(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		CardID string      `json:"card_id"`
		Card   *cards.Card `json:"card"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	switch {
	case req.Card != nil && req.Card.ID != "":
		s.AddCard(*req.Card)
	case req.CardID != "":
		if _, err := s.AddCardByID(req.CardID); err != nil {
			h.fail(c, err)
			return
		}
	default:
		h.badRequest(c, nil)
		return
	}
	c.JSON(http.StatusOK, viewDeck(s.Deck()))
}

func (h *Handler) removeCard(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.RemoveCardByID(c.Param("cardId")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, viewDeck(s.Deck()))
}

func (h *Handler) saveDeck(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	res, note, err := s.Save(c.Request.Context())
	// this response reports the save, so its notification is not queued twice
	s.Dismiss(note.ID)
	msg := note.Message
	var verr *deck.ValidationError
	if errors.As(err, &verr) {
		respondError(c, http.StatusUnprocessableEntity, verr.Kind.String(), msg)
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"message":   msg,
		"deck":      viewDeck(res.Deck),
		"submitted": true,
	})
}

func (h *Handler) keystroke(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	s.Type(req.Query)
	c.Status(http.StatusAccepted)
}

func (h *Handler) search(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if err := s.Search(c.Request.Context(), req.Query); err != nil {
		h.upstreamFailed(c, s, err)
		return
	}
	h.writeCards(c, s)
}

func (h *Handler) nextPage(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.NextPage(c.Request.Context()); err != nil {
		h.upstreamFailed(c, s, err)
		return
	}
	h.writeCards(c, s)
}

func (h *Handler) sessionCards(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.writeCards(c, s)
}

func (h *Handler) upstreamFailed(c *gin.Context, s *session.Session, err error) {
	h.log.Warn("Catalog fetch failed", "session_id", s.ID(), "error", err)
	respondError(c, http.StatusBadGateway, "catalog_unavailable", h.messages.Printer(s.Locale()).Sprintf(i18n.KeyFetchFailed))
}

func (h *Handler) writeCards(c *gin.Context, s *session.Session) {
	st := s.Catalog()
	list := s.Cards()
	resp := gin.H{
		"cards":   list,
		"count":   len(list),
		"page":    st.Page,
		"query":   st.Query,
		"loading": st.Loading,
	}
	if len(list) == 0 && !st.Loading {
		resp["message"] = h.messages.Printer(s.Locale()).Sprintf(i18n.KeyEmptyResult)
	}
	c.JSON(http.StatusOK, resp)
}
