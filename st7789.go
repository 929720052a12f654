// Package st7789 is a driver for ST7789V2 TFT display controllers on a SPI bus with
// data/command, reset and chip select lines, optionally fed by a DMA channel.
//
// All pixel data goes through one fixed size chunk buffer that is reused for every burst.
// The transmitter, DMA channel and staging buffers are owned by the Device and checked out
// to a transfer for its duration.
package st7789

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
)

var debug bool

func init() {
	debug = os.Getenv("ST7789_DEBUG") != ""
}

// Errors
var (
	ErrBounds       = errors.New("st7789: out of display bounds")
	ErrNotSupported = errors.New("st7789: operation not supported")
	ErrFrameSize    = errors.New("st7789: frame size does not match display")
	ErrChunkSize    = errors.New("st7789: chunk buffer size must be a power of two")
	ErrTransmitter  = errors.New("st7789: transmitter is required")
	ErrResetPin     = errors.New("st7789: reset GPIO pin is invalid")
	ErrDCPin        = errors.New("st7789: data/command (DC) GPIO pin is invalid")
	ErrCSPin        = errors.New("st7789: chip select (CS) GPIO pin is invalid")
	ErrBuffers      = errors.New("st7789: staging buffer is missing")
	ErrReleased     = errors.New("st7789: device was released")
	ErrBus          = errors.New("st7789: bus transfer failed")
	ErrPin          = errors.New("st7789: output pin failed")
)

// Command is a controller operation code.
type Command byte

// Registers (from st7789v2.pdf).
const (
	SWRESET Command = 0x01 // Software Reset
	SLPIN   Command = 0x10 // Sleep In
	SLPOUT  Command = 0x11 // Sleep Out
	INVOFF  Command = 0x20 // Display Inversion Off
	INVON   Command = 0x21 // Display Inversion On
	DISPOFF Command = 0x28 // Display Off
	DISPON  Command = 0x29 // Display On
	CASET   Command = 0x2A // Column Address Set
	RASET   Command = 0x2B // Row Address Set
	RAMWR   Command = 0x2C // Memory Write
	MADCTL  Command = 0x36 // Memory Data Access Control
	COLMOD  Command = 0x3A // Interface Pixel Format
)

var commandNames = map[Command]string{
	SWRESET: "SWRESET",
	SLPIN:   "SLPIN",
	SLPOUT:  "SLPOUT",
	INVOFF:  "INVOFF",
	INVON:   "INVON",
	DISPOFF: "DISPOFF",
	DISPON:  "DISPON",
	CASET:   "CASET",
	RASET:   "RASET",
	RAMWR:   "RAMWR",
	MADCTL:  "MADCTL",
	COLMOD:  "COLMOD",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", byte(c))
}

// ColorModeRGB565 is the COLMOD argument for 16 bits per pixel.
const ColorModeRGB565 = 0x55

// Memory Data Access Control (MADCTL) bit fields.
const (
	_                     byte = 1 << iota // D0: reserved
	_                                      // D1: reserved
	DisplayDataLatchOrder                  // D2: MH
	BGROrder                               // D3: RGB/BGR
	LineAddressOrder                       // D4: ML
	PageColumnOrder                        // D5: MV
	ColumnAddressOrder                     // D6: MX
	PageAddressOrder                       // D7: MY
)

// Rotation defines pixel rotation.
type Rotation uint8

// Supported rotations.
const (
	NoRotation Rotation = iota
	Rotate90            // Rotate 90° clock wise
	Rotate180           // Rotate 180°
	Rotate270           // Rotate 270° clock wise
)

func (r Rotation) String() string {
	switch r % 4 {
	case Rotate90:
		return "90°"
	case Rotate180:
		return "180°"
	case Rotate270:
		return "270°"
	default:
		return "0°"
	}
}

// memoryAccess is the MADCTL orientation for r.
func (r Rotation) memoryAccess() byte {
	switch r % 4 {
	case Rotate90:
		return ColumnAddressOrder | PageColumnOrder
	case Rotate180:
		return ColumnAddressOrder | PageAddressOrder
	case Rotate270:
		return PageAddressOrder | PageColumnOrder
	default:
		return 0
	}
}

// ErrorPolicy decides what happens when the bus or an output pin reports an error.
type ErrorPolicy uint8

// Supported policies.
const (
	// FailFast aborts the operation and returns the error, after releasing chip select.
	FailFast ErrorPolicy = iota

	// LogAndContinue logs the error and carries on with the sequence.
	LogAndContinue
)

func (p ErrorPolicy) String() string {
	switch p {
	case FailFast:
		return "fail-fast"
	case LogAndContinue:
		return "log-and-continue"
	default:
		return fmt.Sprintf("ErrorPolicy(%d)", uint8(p))
	}
}

// BusError is a failed transfer.
type BusError struct {
	Op  string
	Err error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("st7789: %s: %v", e.Op, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }

func (e *BusError) Is(target error) bool { return target == ErrBus }

// PinError is a failed output pin update.
type PinError struct {
	Pin string
	Err error
}

func (e *PinError) Error() string {
	return fmt.Sprintf("st7789: %s pin: %v", e.Pin, e.Err)
}

func (e *PinError) Unwrap() error { return e.Err }

func (e *PinError) Is(target error) bool { return target == ErrPin }
