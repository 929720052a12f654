package st7789

import (
	"image"
	"iter"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/BeatGlow/st7789/pixel"
)

const memoryWriteDelay = 10 * time.Millisecond

// FillRegion writes pixels into r, row by row. The source is consumed for every pixel of
// r, including the ones outside the display; those are dropped. The source may end early,
// the rest of the region is then left as it was.
func (d *Device) FillRegion(r image.Rectangle, pixels iter.Seq[pixel.CRGB16]) error {
	if err := d.check(); err != nil {
		return err
	}
	r = r.Canon()
	clip := r.Intersect(d.Bounds())
	if clip.Empty() {
		// Nothing visible, still drain the source for the requested area.
		drain(r, pixels)
		return nil
	}

	if err := d.beginWrite(clip); err != nil {
		drain(r, pixels)
		return err
	}

	var (
		total    = clip.Dx() * clip.Dy() * 2
		src      = visible(r, clip, pixels)
		streamed bool
	)
	sent, err := d.stream(total, func(yield func(pixel.CRGB16) bool) {
		streamed = true
		src(yield)
	})
	if !streamed {
		drain(r, pixels)
	}
	d.log.Debug("filled region", zap.Stringer("rect", clip), zap.Int("bytes", sent))
	return err
}

// FillSolid fills r with a single color.
func (d *Device) FillSolid(r image.Rectangle, c pixel.CRGB16) error {
	return d.FillRegion(r, pixel.Repeat(c))
}

// Clear fills the whole display with c.
func (d *Device) Clear(c pixel.CRGB16) error {
	return d.FillSolid(d.Bounds(), c)
}

// Draw aligns r.Min in the display with sp in src and copies the pixels of r, like
// draw.Draw with the draw.Src operator.
func (d *Device) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Canon()
	return d.FillRegion(r, pixel.Image(src, r.Sub(r.Min).Add(sp)))
}

// DrawPixels is not supported: random pixel writes do not fit in one continuous memory
// write. Fill a region instead.
func (d *Device) DrawPixels(pixels iter.Seq2[image.Point, pixel.CRGB16]) error {
	return ErrNotSupported
}

// DrawFrame writes a full screen of pre-encoded RGB565 pixels, 2 bytes per pixel,
// most significant byte first.
func (d *Device) DrawFrame(buf []byte) error {
	if err := d.check(); err != nil {
		return err
	}
	if want := d.width * d.height * 2; len(buf) != want {
		return errors.Wrapf(ErrFrameSize, "got %d bytes, want %d", len(buf), want)
	}
	if err := d.beginWrite(d.Bounds()); err != nil {
		return err
	}
	_, err := d.streamBytes(buf)
	return err
}

// beginWrite sets the window to r and issues the memory write command.
func (d *Device) beginWrite(r image.Rectangle) error {
	if err := d.setWindow(uint16(r.Min.X), uint16(r.Max.X-1), uint16(r.Min.Y), uint16(r.Max.Y-1)); err != nil {
		return err
	}
	return d.commandFrame(RAMWR, memoryWriteDelay)
}

// visible walks r in row-major order alongside pixels and yields the ones inside clip.
// The source keeps being consumed after the consumer stops.
func visible(r, clip image.Rectangle, pixels iter.Seq[pixel.CRGB16]) iter.Seq[pixel.CRGB16] {
	return func(yield func(pixel.CRGB16) bool) {
		var (
			p       = r.Min
			stopped bool
		)
		for c := range pixels {
			if !stopped && p.In(clip) {
				stopped = !yield(c)
			}
			if p.X++; p.X == r.Max.X {
				p.X = r.Min.X
				if p.Y++; p.Y == r.Max.Y {
					return
				}
			}
		}
	}
}

// drain consumes one pixel for every point of r.
func drain(r image.Rectangle, pixels iter.Seq[pixel.CRGB16]) {
	if r.Empty() {
		return
	}
	for range visible(r, image.Rectangle{}, pixels) {
	}
}
