package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/youruser/pokedeck/internal/cards"
	"github.com/youruser/pokedeck/internal/deck"
	"github.com/youruser/pokedeck/internal/i18n"
	"github.com/youruser/pokedeck/internal/logger"
	"github.com/youruser/pokedeck/internal/session"
)

type Deps struct {
	Catalog  *cards.Local
	Decks    deck.Repository
	Sessions *session.Manager
	Messages *i18n.Bundle
	Locale   string
	// HTTPClient fetches card images for the deck image.
	HTTPClient *http.Client
	Log        *logger.Logger
}

type Handler struct {
	catalog  *cards.Local
	decks    deck.Repository
	sessions *session.Manager
	messages *i18n.Bundle
	locale   string
	client   *http.Client
	log      *logger.Logger
}

func NewHandler(d Deps) *Handler {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.HTTPClient == nil {
		d.HTTPClient = http.DefaultClient
	}
	if d.Catalog == nil {
		d.Catalog = cards.NewLocal(nil)
	}
	return &Handler{
		catalog:  d.Catalog,
		decks:    d.Decks,
		sessions: d.Sessions,
		messages: d.Messages,
		locale:   d.Locale,
		client:   d.HTTPClient,
		log:      d.Log.With("component", "API"),
	}
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	s := c.Query(key)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

// listCards serves GET /cards?page=&name=&pageSize= from the local catalog.
func (h *Handler) listCards(c *gin.Context) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		h.badRequest(c, err)
		return
	}
	pageSize, err := queryInt(c, "pageSize", cards.DefaultPageSize)
	if err != nil {
		h.badRequest(c, err)
		return
	}
	if pageSize > 250 {
		pageSize = 250
	}
	out, err := h.catalog.Fetch(c.Request.Context(), cards.Query{Name: c.Query("name"), Page: page, PageSize: pageSize})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cards.Response{Cards: out})
}

func (h *Handler) filterCards(c *gin.Context) {
	var opt cards.FilterOptions
	if err := c.ShouldBindJSON(&opt); err != nil {
		h.badRequest(c, err)
		return
	}
	out := cards.SortByName(cards.Filter(h.catalog.All(), opt))
	resp := gin.H{"count": len(out), "cards": out}
	if len(out) == 0 {
		resp["message"] = h.printer(c).Sprintf(i18n.KeyEmptyResult)
	}
	c.JSON(http.StatusOK, resp)
}
