package st7789

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// madctl is the MADCTL argument for the current rotation.
func (d *Device) madctl() byte {
	return d.memAccess ^ d.rotation.memoryAccess()
}

// size is the visible area in the current address orientation.
func (d *Device) size() (w, h int) {
	if d.madctl()&PageColumnOrder != 0 {
		return d.height, d.width
	}
	return d.width, d.height
}

// origin is the controller address of the top left visible pixel. An offset moves to the
// other end of the controller RAM when its axis is mirrored.
func (d *Device) origin() (x, y int) {
	var (
		m       = d.madctl()
		col     = d.colOffset
		row     = d.rowOffset
		colEdge = maxColumns - d.width - d.colOffset
		rowEdge = maxRows - d.height - d.rowOffset
	)
	if m&PageColumnOrder != 0 {
		// Columns address the panel rows.
		col, row, colEdge, rowEdge = row, col, rowEdge, colEdge
	}
	if m&ColumnAddressOrder != 0 {
		col = colEdge
	}
	if m&PageAddressOrder != 0 {
		row = rowEdge
	}
	return col, row
}

// Rotation returns the current rotation.
func (d *Device) Rotation() Rotation {
	return d.rotation
}

// SetRotation changes the orientation of everything drawn afterwards. Memory contents are
// not redrawn.
func (d *Device) SetRotation(rotation Rotation) error {
	if err := d.check(); err != nil {
		return err
	}
	d.rotation = rotation % 4

	m := d.madctl()
	if err := d.commandFrame(MADCTL, 1*time.Millisecond); err != nil {
		return errors.Wrap(err, "st7789: set rotation")
	}
	if err := d.dataFrame(m, 10*time.Millisecond); err != nil {
		return errors.Wrap(err, "st7789: set rotation")
	}
	d.log.Debug("set rotation", zap.Stringer("rotation", d.rotation), zap.Uint8("madctl", m))
	return nil
}
