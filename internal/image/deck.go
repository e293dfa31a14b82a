package imagepkg

import (
	"context"
	"image"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/youruser/pokedeck/internal/deck"
	"github.com/youruser/pokedeck/internal/logger"
)

const maxParallelDownloads = 6

// RenderDeck downloads every card image of d and composes the deck image.
// Cards whose image cannot be fetched are drawn as placeholders. An empty
// qrText leaves the QR code out.
func RenderDeck(ctx context.Context, client *http.Client, d deck.Deck, qrText string, log *logger.Logger) (image.Image, error) {
	tiles := make([]Tile, len(d.Cards))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDownloads)
	for i, e := range d.Cards {
		tiles[i].Count = e.Count
		if e.Card.ImageURL == "" {
			continue
		}
		i, url, id := i, e.Card.ImageURL, e.Card.ID
		g.Go(func() error {
			img, err := DownloadImage(gctx, client, url)
			if err != nil {
				log.Warn("Card image download failed", "card_id", id, "error", err)
				return nil
			}
			tiles[i].Image = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var qr image.Image
	if qrText != "" {
		q, err := GenerateQRImage(qrText, qrSize)
		if err != nil {
			return nil, err
		}
		qr = q
	}
	return ComposeDeckImage(tiles, qr), nil
}
