package draw

import (
	"image"

	"github.com/BeatGlow/st7789/pixel"
)

// Line draws a line between two points. Horizontal and vertical lines take a single fill,
// any other line one fill per pixel.
func Line(dst Target, a, b image.Point, c pixel.CRGB16) error {
	p := &painter{dst: dst, c: c}
	switch {
	case a.Y == b.Y:
		p.hline(min(a.X, b.X), a.Y, abs(b.X-a.X)+1)
	case a.X == b.X:
		p.vline(a.X, min(a.Y, b.Y), abs(b.Y-a.Y)+1)
	default:
		bresenham(p, a.X, a.Y, b.X, b.Y)
	}
	return p.err
}

// HorizontalLine draws a line between (x,y) and (x+w-1,y).
func HorizontalLine(dst Target, x, y, w int, c pixel.CRGB16) error {
	p := &painter{dst: dst, c: c}
	p.hline(x, y, w)
	return p.err
}

// VerticalLine draws a line between (x,y) and (x,y+h-1).
func VerticalLine(dst Target, x, y, h int, c pixel.CRGB16) error {
	p := &painter{dst: dst, c: c}
	p.vline(x, y, h)
	return p.err
}

// Rectangle draws the outline of rect.
func Rectangle(dst Target, rect image.Rectangle, c pixel.CRGB16) error {
	var (
		p = &painter{dst: dst, c: c}
		r = rect.Canon()
		w = r.Dx()
		h = r.Dy()
	)
	p.hline(r.Min.X, r.Min.Y, w)
	if h > 1 {
		p.hline(r.Min.X, r.Max.Y-1, w)
	}
	if h > 2 {
		p.vline(r.Min.X, r.Min.Y+1, h-2)
		if w > 1 {
			p.vline(r.Max.X-1, r.Min.Y+1, h-2)
		}
	}
	return p.err
}

// RoundedRectangle draws the outline of rect with radius pixels rounded corners.
func RoundedRectangle(dst Target, rect image.Rectangle, radius int, c pixel.CRGB16) error {
	var (
		p = &painter{dst: dst, c: c}
		r = clampRadius(rect.Canon(), radius)
		x = rect.Canon().Min.X
		y = rect.Canon().Min.Y
		w = rect.Canon().Dx()
		h = rect.Canon().Dy()
	)
	p.hline(x+r, y, w-2*r)
	p.hline(x+r, y+h-1, w-2*r)
	p.vline(x, y+r, h-2*r)
	p.vline(x+w-1, y+r, h-2*r)
	roundedCorner(p, x+r, y+r, r, 1)
	roundedCorner(p, x+w-r-1, y+r, r, 2)
	roundedCorner(p, x+w-r-1, y+h-r-1, r, 4)
	roundedCorner(p, x+r, y+h-r-1, r, 8)
	return p.err
}

// Box draws a filled rectangle.
func Box(dst Target, rect image.Rectangle, c pixel.CRGB16) error {
	p := &painter{dst: dst, c: c}
	p.fill(rect.Canon())
	return p.err
}

// RoundedBox draws a filled rectangle with radius pixels rounded corners.
func RoundedBox(dst Target, rect image.Rectangle, radius int, c pixel.CRGB16) error {
	var (
		p = &painter{dst: dst, c: c}
		r = clampRadius(rect.Canon(), radius)
		x = rect.Canon().Min.X
		y = rect.Canon().Min.Y
		w = rect.Canon().Dx()
		h = rect.Canon().Dy()
	)
	p.fill(image.Rect(x+r, y, x+w-r, y+h))
	filledRoundedCorner(p, x+w-r-1, y+r, r, 1, h-2*r-1)
	filledRoundedCorner(p, x+r, y+r, r, 2, h-2*r-1)
	return p.err
}

func clampRadius(rect image.Rectangle, radius int) int {
	if limit := min(rect.Dx(), rect.Dy()) / 2; radius > limit {
		radius = limit
	}
	return max(radius, 0)
}

func roundedCorner(p *painter, x0, y0, radius, quadrant int) {
	var (
		f    = 1 - radius
		ddFx = 1
		ddFy = -2 * radius
		x    = 0
		y    = radius
	)
	for x < y {
		if f >= 0 {
			y--
			ddFy += 2
			f += ddFy
		}

		x++
		ddFx += 2
		f += ddFx

		if quadrant&4 != 0 {
			p.set(x0+x, y0+y)
			p.set(x0+y, y0+x)
		}
		if quadrant&2 != 0 {
			p.set(x0+x, y0-y)
			p.set(x0+y, y0-x)
		}
		if quadrant&8 != 0 {
			p.set(x0-y, y0+x)
			p.set(x0-x, y0+y)
		}
		if quadrant&1 != 0 {
			p.set(x0-y, y0-x)
			p.set(x0-x, y0-y)
		}
	}
}

func filledRoundedCorner(p *painter, x0, y0, radius, quadrant, delta int) {
	var (
		f    = 1 - radius
		ddFx = 1
		ddFy = -2 * radius
		x    = 0
		y    = radius
	)
	for x < y {
		if f >= 0 {
			y--
			ddFy += 2
			f += ddFy
		}

		x++
		ddFx += 2
		f += ddFx

		if quadrant&1 != 0 {
			p.vline(x0+x, y0-y, 2*y+1+delta)
			p.vline(x0+y, y0-x, 2*x+1+delta)
		}
		if quadrant&2 != 0 {
			p.vline(x0-x, y0-y, 2*y+1+delta)
			p.vline(x0-y, y0-x, 2*x+1+delta)
		}
	}
}

// bresenham plots a line that is neither horizontal nor vertical.
func bresenham(p *painter, x1, y1, x2, y2 int) {
	// Drawing p1 -> p2 is equivalent to drawing p2 -> p1, sort on x.
	if x1 > x2 {
		x1, y1, x2, y2 = x2, y2, x1, y1
	}

	var (
		dx    = x2 - x1
		dy    = abs(y2 - y1)
		step  = 1
		e     int
		slope int
	)
	if y2 < y1 {
		step = -1
	}

	switch {
	case dx == dy:
		for ; dx != 0; dx-- {
			p.set(x1, y1)
			x1++
			y1 += step
		}

	case dx > dy:
		dy, e, slope = 2*dy, dx, 2*dx
		for ; dx != 0; dx-- {
			p.set(x1, y1)
			x1++
			e -= dy
			if e < 0 {
				y1 += step
				e += slope
			}
		}

	default:
		dx, e, slope = 2*dx, dy, 2*dy
		for ; dy != 0; dy-- {
			p.set(x1, y1)
			y1 += step
			e -= dx
			if e < 0 {
				x1++
				e += slope
			}
		}
	}
	p.set(x2, y2)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
