package pixel

import (
	"image"
	"iter"
)

// Repeat yields c forever.
func Repeat(c CRGB16) iter.Seq[CRGB16] {
	return func(yield func(CRGB16) bool) {
		for yield(c) {
		}
	}
}

// Slice yields the colors in s.
func Slice(s []CRGB16) iter.Seq[CRGB16] {
	return func(yield func(CRGB16) bool) {
		for _, c := range s {
			if !yield(c) {
				return
			}
		}
	}
}

// Image yields the pixels of src in r, row by row, converted to CRGB16. Pixels
// of r outside the bounds of src are transparent and come out black.
func Image(src image.Image, r image.Rectangle) iter.Seq[CRGB16] {
	if img, ok := src.(*CRGB16Image); ok {
		return func(yield func(CRGB16) bool) {
			for y := r.Min.Y; y < r.Max.Y; y++ {
				for x := r.Min.X; x < r.Max.X; x++ {
					if !yield(img.CRGB16At(x, y)) {
						return
					}
				}
			}
		}
	}
	return func(yield func(CRGB16) bool) {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				if !yield(Convert(src.At(x, y))) {
					return
				}
			}
		}
	}
}
