// Package draw has shape and text helpers for surfaces that can only be written one
// rectangle at a time, like the ST7789 memory window.
package draw

import (
	"image"
	"iter"

	"github.com/BeatGlow/st7789/pixel"
)

// Target is a surface that is filled one rectangle at a time. *st7789.Device implements it.
type Target interface {
	Bounds() image.Rectangle
	FillSolid(image.Rectangle, pixel.CRGB16) error
	FillRegion(image.Rectangle, iter.Seq[pixel.CRGB16]) error
}

// Draw aligns r.Min in dst with sp in src and replaces the rectangle r in dst with src.
func Draw(dst Target, r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Canon()
	return dst.FillRegion(r, pixel.Image(src, r.Sub(r.Min).Add(sp)))
}

// painter plots with a single color and keeps the first error; everything after it is
// skipped.
type painter struct {
	dst Target
	c   pixel.CRGB16
	err error
}

func (p *painter) fill(r image.Rectangle) {
	if p.err != nil || r.Empty() {
		return
	}
	p.err = p.dst.FillSolid(r, p.c)
}

func (p *painter) set(x, y int) {
	p.fill(image.Rect(x, y, x+1, y+1))
}

// hline fills a line between (x,y) and (x+w-1,y).
func (p *painter) hline(x, y, w int) {
	p.fill(image.Rect(x, y, x+w, y+1))
}

// vline fills a line between (x,y) and (x,y+h-1).
func (p *painter) vline(x, y, h int) {
	p.fill(image.Rect(x, y, x+1, y+h))
}
