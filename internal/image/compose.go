package imagepkg

import (
	"image"
	"image/color"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

// Card tile and layout sizes, in pixels.
const (
	TileW    = 245
	TileH    = 342
	Gap      = 12
	Margin   = 48
	Columns  = 6
	pipSize  = 18
	pipGap   = 6
	pipAreaH = pipSize + 2*pipGap
	qrSize   = 300
	badgeR   = 16
)

var (
	background  = color.NRGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	placeholder = color.NRGBA{R: 0xc8, G: 0xc8, B: 0xc8, A: 0xff}
	pipColor    = color.NRGBA{R: 0xe3, G: 0x35, B: 0x0d, A: 0xff}
)

// Tile is one deck entry to draw. A nil Image draws a grey placeholder.
type Tile struct {
	Image image.Image
	Count int
}

// ComposeDeckImage lays the tiles out in a grid, one pip under each card per
// copy and a count badge on its corner, with the QR code (if any) in the
// top-right corner.
func ComposeDeckImage(tiles []Tile, qr image.Image) image.Image {
	rows := (len(tiles) + Columns - 1) / Columns
	if rows == 0 {
		rows = 1
	}
	top := Margin
	if qr != nil {
		top += qrSize + Gap
	}
	w := 2*Margin + Columns*TileW + (Columns-1)*Gap
	h := top + rows*(TileH+pipAreaH) + (rows-1)*Gap + Margin
	canvas := imaging.New(w, h, background)

	if qr != nil {
		q := imaging.Resize(qr, qrSize, qrSize, imaging.NearestNeighbor)
		canvas = imaging.Paste(canvas, q, image.Pt(w-Margin-qrSize, Margin))
	}

	for i, t := range tiles {
		x := Margin + (i%Columns)*(TileW+Gap)
		y := top + (i/Columns)*(TileH+pipAreaH+Gap)
		var card image.Image
		if t.Image != nil {
			card = imaging.Fill(t.Image, TileW, TileH, imaging.Center, imaging.Lanczos)
		} else {
			card = imaging.New(TileW, TileH, placeholder)
		}
		canvas = imaging.Paste(canvas, card, image.Pt(x, y))

		pip := imaging.New(pipSize, pipSize, pipColor)
		for p := 0; p < t.Count; p++ {
			canvas = imaging.Paste(canvas, pip, image.Pt(x+p*(pipSize+pipGap), y+TileH+pipGap))
		}
	}

	dc := gg.NewContextForImage(canvas)
	for i, t := range tiles {
		if t.Count <= 0 {
			continue
		}
		cx := float64(Margin + (i%Columns)*(TileW+Gap) + TileW - badgeR - 6)
		cy := float64(top + (i/Columns)*(TileH+pipAreaH+Gap) + badgeR + 6)
		dc.SetColor(pipColor)
		dc.DrawCircle(cx, cy, badgeR)
		dc.Fill()
		dc.SetColor(color.White)
		dc.DrawStringAnchored("x"+strconv.Itoa(t.Count), cx, cy, 0.5, 0.35)
	}
	return dc.Image()
}
