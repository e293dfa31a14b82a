package api

import (
	"bytes"
	"image/png"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/youruser/pokedeck/internal/deck"
	imagepkg "github.com/youruser/pokedeck/internal/image"
)

type deckView struct {
	deck.Deck
	Total int `json:"total"`
}

func viewDeck(d deck.Deck) deckView {
	if d.Cards == nil {
		d.Cards = []deck.Entry{}
	}
	return deckView{Deck: d, Total: d.Total()}
}

func (h *Handler) listDecks(c *gin.Context) {
	list, err := h.decks.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]deckView, 0, len(list))
	for _, d := range list {
		out = append(out, viewDeck(d))
	}
	c.JSON(http.StatusOK, gin.H{"decks": out})
}

func (h *Handler) getDeck(c *gin.Context) {
	d, err := h.decks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, viewDeck(d))
}

func (h *Handler) deleteDeck(c *gin.Context) {
	if err := h.decks.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) exportDeck(c *gin.Context) {
	d, err := h.decks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.String(http.StatusOK, deck.ExportDeckText(d))
}

// deckQR returns a PNG QR code holding the deck's text export.
func (h *Handler) deckQR(c *gin.Context) {
	d, err := h.decks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	size := 400
	if s := c.Query("size"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			size = v
		}
	}
	b, err := imagepkg.GenerateQRPNG(deck.ExportDeckText(d), size)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

// deckImage renders the deck as a card grid. ?qr=1 adds the QR code.
func (h *Handler) deckImage(c *gin.Context) {
	d, err := h.decks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	qrText := ""
	if c.Query("qr") == "1" {
		qrText = deck.ExportDeckText(d)
	}
	img, err := imagepkg.RenderDeck(c.Request.Context(), h.client, d, qrText, h.log)
	if err != nil {
		h.fail(c, err)
		return
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
