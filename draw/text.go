package draw

import (
	"image"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	"github.com/BeatGlow/st7789/pixel"
)

// DefaultFontSize is the size of DefaultFace in points.
const DefaultFontSize = 16

var goRegular = sync.OnceValues(func() (*truetype.Font, error) {
	return truetype.Parse(goregular.TTF)
})

// Face returns a face of the TrueType font ttf at size points.
func Face(ttf []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, errors.Wrap(err, "draw: parse font")
	}
	return newFace(f, size), nil
}

// DefaultFace returns Go Regular at size points.
func DefaultFace(size float64) font.Face {
	f, err := goRegular()
	if err != nil {
		// The embedded font is known to parse.
		panic(err)
	}
	return newFace(f, size)
}

func newFace(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// TextBounds returns the area s covers when its top left corner is at pt.
func TextBounds(face font.Face, pt image.Point, s string) image.Rectangle {
	var (
		m = face.Metrics()
		w = font.MeasureString(face, s).Ceil()
		h = (m.Ascent + m.Descent).Ceil()
	)
	return image.Rect(pt.X, pt.Y, pt.X+w, pt.Y+h)
}

// Text draws s in fg on a bg background with its top left corner at pt. The text is
// rendered off screen and written as one region. It returns the area that was written.
func Text(dst Target, face font.Face, pt image.Point, s string, fg, bg pixel.CRGB16) (image.Rectangle, error) {
	if face == nil {
		face = DefaultFace(DefaultFontSize)
	}
	r := TextBounds(face, pt, s)
	if r.Empty() {
		return r, nil
	}

	img := pixel.NewCRGB16Image(r)
	img.Fill(bg)
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(pt.X, pt.Y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)

	return r, dst.FillRegion(r, pixel.Image(img, r))
}
