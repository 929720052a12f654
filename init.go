package st7789

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
)

// Hardware reset timing.
const (
	resetPulse  = 120 * time.Millisecond
	resetSettle = 150 * time.Millisecond
)

type stepKind uint8

const (
	stepCommand stepKind = iota
	stepData
)

// initStep is a single command or data byte sent in its own chip select frame.
type initStep struct {
	name   string
	kind   stepKind
	value  byte
	settle time.Duration
}

func (d *Device) initSequence() []initStep {
	return []initStep{
		{"software reset", stepCommand, byte(SWRESET), 150 * time.Millisecond},
		{"sleep out", stepCommand, byte(SLPOUT), 120 * time.Millisecond},
		{"color mode", stepCommand, byte(COLMOD), 1 * time.Millisecond},
		{"color mode", stepData, ColorModeRGB565, 10 * time.Millisecond},
		{"memory access control", stepCommand, byte(MADCTL), 1 * time.Millisecond},
		{"memory access control", stepData, d.madctl(), 10 * time.Millisecond},
		{"inversion on", stepCommand, byte(INVON), 1 * time.Millisecond},
		{"display on", stepCommand, byte(DISPON), 50 * time.Millisecond},
	}
}

// Init resets the controller and brings it to an active display state. It blocks for
// roughly 600ms. Init may be called again to recover a display in an unknown state.
func (d *Device) Init() error {
	if err := d.check(); err != nil {
		return err
	}

	if err := d.reset(); err != nil {
		return errors.Wrap(err, "st7789: init hardware reset")
	}
	d.log.Debug("hardware reset completed")

	for _, step := range d.initSequence() {
		var err error
		switch step.kind {
		case stepCommand:
			err = d.commandFrame(Command(step.value), step.settle)
		case stepData:
			err = d.dataFrame(step.value, step.settle)
		}
		if err != nil {
			return errors.Wrapf(err, "st7789: init %s", step.name)
		}
		d.log.Debug("init step completed", zap.String("step", step.name), zap.Duration("settle", step.settle))
	}
	return nil
}

func (d *Device) reset() error {
	if err := d.pinOut("reset", d.rst, gpio.Low); err != nil {
		return err
	}
	d.delay.Sleep(resetPulse)
	if err := d.pinOut("reset", d.rst, gpio.High); err != nil {
		return err
	}
	d.delay.Sleep(resetSettle)
	return nil
}

// Show turns the display output on or off. Memory contents are kept.
func (d *Device) Show(show bool) error {
	if err := d.check(); err != nil {
		return err
	}
	cmd := DISPOFF
	if show {
		cmd = DISPON
	}
	return d.commandFrame(cmd, 50*time.Millisecond)
}

// Invert toggles display color inversion.
func (d *Device) Invert(invert bool) error {
	if err := d.check(); err != nil {
		return err
	}
	cmd := INVOFF
	if invert {
		cmd = INVON
	}
	return d.commandFrame(cmd, 1*time.Millisecond)
}

// Sleep puts the panel in or out of sleep mode. The controller needs 120ms after
// leaving sleep before it accepts another sleep command.
func (d *Device) Sleep(sleep bool) error {
	if err := d.check(); err != nil {
		return err
	}
	if sleep {
		return d.commandFrame(SLPIN, 5*time.Millisecond)
	}
	return d.commandFrame(SLPOUT, 120*time.Millisecond)
}
