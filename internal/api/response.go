package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/youruser/pokedeck/internal/deck"
	"github.com/youruser/pokedeck/internal/i18n"
	"github.com/youruser/pokedeck/internal/session"
	"github.com/youruser/pokedeck/internal/util"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

// printer picks the message locale from Accept-Language, falling back to the
// server default.
func (h *Handler) printer(c *gin.Context) *i18n.Printer {
	if al := c.GetHeader("Accept-Language"); al != "" {
		return h.messages.Printer(al)
	}
	return h.messages.Printer(h.locale)
}

// fail maps err to a status and a localized message.
func (h *Handler) fail(c *gin.Context, err error) {
	p := h.printer(c)
	var verr *deck.ValidationError
	var serr *util.StatusError
	switch {
	case errors.As(err, &verr) && verr.Kind == deck.NameRequired:
		respondError(c, http.StatusUnprocessableEntity, verr.Kind.String(), p.Sprintf(i18n.KeyNameRequired))
	case errors.As(err, &verr):
		respondError(c, http.StatusUnprocessableEntity, verr.Kind.String(), p.Sprintf(i18n.KeySizeOutOfRange, verr.Min, verr.Max))
	case errors.Is(err, deck.ErrNotFound):
		respondError(c, http.StatusNotFound, "deck_not_found", p.Sprintf(i18n.KeyDeckNotFound))
	case errors.Is(err, session.ErrNotFound):
		respondError(c, http.StatusNotFound, "session_not_found", p.Sprintf(i18n.KeySessionMissing))
	case errors.Is(err, session.ErrUnknownCard):
		respondError(c, http.StatusNotFound, "card_not_found", err.Error())
	case errors.As(err, &serr):
		respondError(c, http.StatusBadGateway, "catalog_unavailable", p.Sprintf(i18n.KeyFetchFailed))
	default:
		h.log.Error("Request failed", "path", c.FullPath(), "error", err)
		respondError(c, http.StatusInternalServerError, "internal", err.Error())
	}
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	msg := h.printer(c).Sprintf(i18n.KeyInvalidRequest)
	if err != nil {
		msg += " " + err.Error()
	}
	respondError(c, http.StatusBadRequest, "invalid_request", msg)
}
