package st7789

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Delays around the address set commands.
const (
	windowCommandDelay = 1 * time.Millisecond
	windowDataDelay    = 1 * time.Millisecond
)

// setWindow selects the controller RAM area for the next memory write. Bounds are
// inclusive and in visible coordinates; the offsets of the current orientation are
// added here.
func (d *Device) setWindow(xs, xe, ys, ye uint16) error {
	w, h := d.size()
	if xs > xe || int(xe) >= w || ys > ye || int(ye) >= h {
		return errors.Wrapf(ErrBounds, "window (%d,%d)-(%d,%d) on %dx%d", xs, ys, xe, ye, w, h)
	}
	ox, oy := d.origin()
	xs += uint16(ox)
	xe += uint16(ox)
	ys += uint16(oy)
	ye += uint16(oy)

	col := d.colBuf.Take()
	putWindow(col, xs, xe)
	d.colBuf.Put(col)

	row := d.rowBuf.Take()
	putWindow(row, ys, ye)
	d.rowBuf.Put(row)

	d.log.Debug("set window",
		zap.Uint16("x0", xs), zap.Uint16("x1", xe),
		zap.Uint16("y0", ys), zap.Uint16("y1", ye),
		zap.Stringer("rotation", d.rotation))

	f := d.begin()
	f.command(CASET)
	f.settle(windowCommandDelay)
	f.buffer(&d.colBuf)
	f.settle(windowDataDelay)
	if err := f.end(); err != nil {
		return err
	}

	f = d.begin()
	f.command(RASET)
	f.settle(windowCommandDelay)
	f.buffer(&d.rowBuf)
	f.settle(windowDataDelay)
	return f.end()
}

// putWindow encodes start and end address, most significant byte first.
func putWindow(buf *[4]byte, start, end uint16) {
	buf[0] = byte(start >> 8)
	buf[1] = byte(start)
	buf[2] = byte(end >> 8)
	buf[3] = byte(end)
}
