package pixel

import (
	"encoding/binary"
	"image"
	"image/color"
	"image/draw"
)

// Buffer holds the pixel values and is a container that is used by most image formats in this package.
type Buffer struct {
	// Rect is the image bounding box.
	Rect image.Rectangle

	// Pix are the image pixels.
	Pix []byte

	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int
}

func (p *Buffer) Bounds() image.Rectangle {
	return p.Rect
}

func (p *Buffer) Clear() {
	for i := range p.Pix {
		p.Pix[i] = 0x00
	}
}

// CRGB16Image is a 16-bits per pixel 5-6-5-bit RGB image, stored in wire order
// (big endian), so a full-width image can be sent to the display as is.
type CRGB16Image struct {
	Buffer
}

// NewCRGB16Image returns an image with bounds r.
func NewCRGB16Image(r image.Rectangle) *CRGB16Image {
	w, h := r.Dx(), r.Dy()
	return &CRGB16Image{
		Buffer: Buffer{
			Rect:   r,
			Pix:    make([]byte, w*2*h),
			Stride: w * 2,
		},
	}
}

func (p *CRGB16Image) ColorModel() color.Model {
	return CRGB16Model
}

// PixOffset is the index of the first byte of the pixel at (x, y).
func (p *CRGB16Image) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*2
}

func (p *CRGB16Image) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return color.Transparent
	}
	return p.CRGB16At(x, y)
}

// CRGB16At is At without the interface conversion. Out of bounds pixels are black.
func (p *CRGB16Image) CRGB16At(x, y int) CRGB16 {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return Black
	}
	return CRGB16{binary.BigEndian.Uint16(p.Pix[p.PixOffset(x, y):])}
}

func (p *CRGB16Image) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}
	Convert(c).Put(p.Pix[p.PixOffset(x, y):])
}

func (p *CRGB16Image) Fill(c color.Color) {
	value := Convert(c).Bytes()
	for i, l := 0, len(p.Pix); i < l; i += 2 {
		copy(p.Pix[i:], value[:])
	}
}

// Interface checks.
var (
	_ draw.Image = (*CRGB16Image)(nil)
)
