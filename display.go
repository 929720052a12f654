package st7789

import (
	"fmt"
	"image"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/st7789/dma"
	"github.com/BeatGlow/st7789/internal/own"
)

const (
	maxColumns = 240
	maxRows    = 320
)

// DefaultChunkSize is the size of the chunk buffer created by NewBuffers(0).
const DefaultChunkSize = 4 * 1024

// Delayer blocks the caller for a duration. [clock.Clock] implements it.
type Delayer interface {
	Sleep(time.Duration)
}

// Config is the display configuration.
type Config struct {
	// Width of the display in pixels.
	Width int

	// Height of the visible area in pixels.
	Height int

	// RowOffset is the number of non-visible rows above the visible area.
	RowOffset int

	// ColumnOffset is the number of non-visible columns left of the visible area.
	ColumnOffset int

	// Rotation of the display contents.
	Rotation Rotation

	// MemoryAccess is the MADCTL argument sent during Init. Its MY, MX and MV bits are
	// combined with the ones of Rotation.
	MemoryAccess byte

	// ErrorPolicy for bus and pin errors.
	ErrorPolicy ErrorPolicy

	// Logger for diagnostics, a no-op logger is used if nil.
	Logger *zap.Logger
}

// DefaultConfig is a 1.69" 240x280 panel, its first 20 controller rows are not visible.
var DefaultConfig = Config{
	Width:     240,
	Height:    280,
	RowOffset: 20,
}

// Buffers are the caller owned transfer staging areas.
type Buffers struct {
	Command *[1]byte
	Data    *[1]byte
	Column  *[4]byte
	Row     *[4]byte
	Chunk   []byte
}

// NewBuffers allocates staging buffers with a chunk buffer of size bytes, 0 selects
// DefaultChunkSize. New rejects the buffers of a negative size with ErrChunkSize.
func NewBuffers(size int) *Buffers {
	if size == 0 {
		size = DefaultChunkSize
	}
	size = max(size, 0)
	return &Buffers{
		Command: new([1]byte),
		Data:    new([1]byte),
		Column:  new([4]byte),
		Row:     new([4]byte),
		Chunk:   make([]byte, size),
	}
}

func (b *Buffers) validate() error {
	if b.Command == nil || b.Data == nil || b.Column == nil || b.Row == nil || b.Chunk == nil {
		return ErrBuffers
	}
	if n := len(b.Chunk); n < 2 || n&(n-1) != 0 {
		return errors.Wrapf(ErrChunkSize, "got %d bytes", n)
	}
	return nil
}

// Resources are the capabilities a Device is built from, and what it hands back on Release.
type Resources struct {
	// Transmitter is the write-only SPI connection.
	Transmitter conn.Conn

	// Channel is an optional DMA channel bound to Transmitter.
	Channel dma.Channel

	// Reset pin.
	Reset gpio.PinOut

	// DC is the data/command select pin.
	DC gpio.PinOut

	// CS is the chip select pin (active low).
	CS gpio.PinOut

	// Delay provider, defaults to the wall clock.
	Delay Delayer

	// Buffers default to NewBuffers(DefaultChunkSize).
	Buffers *Buffers
}

// Device is an ST7789V2 display.
type Device struct {
	tx      own.Slot[conn.Conn]
	ch      own.Slot[dma.Channel]
	cmdBuf  own.Slot[*[1]byte]
	dataBuf own.Slot[*[1]byte]
	colBuf  own.Slot[*[4]byte]
	rowBuf  own.Slot[*[4]byte]
	chunk   own.Slot[[]byte]

	useDMA    bool
	rst       gpio.PinOut
	dc        gpio.PinOut
	cs        gpio.PinOut
	delay     Delayer
	width     int
	height    int
	rowOffset int
	colOffset int
	rotation  Rotation
	memAccess byte
	policy    ErrorPolicy
	log       *zap.Logger
	released  bool
}

// New takes ownership of the resources and returns a Device. The display is not touched
// until Init is called.
func New(r Resources, config *Config) (*Device, error) {
	if config == nil {
		config = new(Config)
		*config = DefaultConfig
	}
	if config.Width == 0 {
		config.Width = DefaultConfig.Width
	}
	if config.Height == 0 {
		config.Height = DefaultConfig.Height
	}
	if config.Width < 0 || config.ColumnOffset < 0 || config.Width+config.ColumnOffset > maxColumns {
		return nil, fmt.Errorf("st7789: invalid width %d at column offset %d, maximum is %d columns", config.Width, config.ColumnOffset, maxColumns)
	}
	if config.Height < 0 || config.RowOffset < 0 || config.Height+config.RowOffset > maxRows {
		return nil, fmt.Errorf("st7789: invalid height %d at row offset %d, maximum is %d rows", config.Height, config.RowOffset, maxRows)
	}

	if r.Transmitter == nil {
		return nil, ErrTransmitter
	}
	if r.Reset == nil || r.Reset == gpio.INVALID {
		return nil, ErrResetPin
	}
	if r.DC == nil || r.DC == gpio.INVALID {
		return nil, ErrDCPin
	}
	if r.CS == nil || r.CS == gpio.INVALID {
		return nil, ErrCSPin
	}
	if r.Delay == nil {
		r.Delay = clock.New()
	}
	if r.Buffers == nil {
		r.Buffers = NewBuffers(DefaultChunkSize)
	}
	if err := r.Buffers.validate(); err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = defaultLogger()
	}

	d := &Device{
		tx:        own.New("transmitter", r.Transmitter),
		ch:        own.New("channel", r.Channel),
		cmdBuf:    own.New("command buffer", r.Buffers.Command),
		dataBuf:   own.New("data buffer", r.Buffers.Data),
		colBuf:    own.New("column buffer", r.Buffers.Column),
		rowBuf:    own.New("row buffer", r.Buffers.Row),
		chunk:     own.New("chunk buffer", r.Buffers.Chunk),
		useDMA:    r.Channel != nil,
		rst:       r.Reset,
		dc:        r.DC,
		cs:        r.CS,
		delay:     r.Delay,
		width:     config.Width,
		height:    config.Height,
		rowOffset: config.RowOffset,
		colOffset: config.ColumnOffset,
		rotation:  config.Rotation % 4,
		memAccess: config.MemoryAccess,
		policy:    config.ErrorPolicy,
		log:       logger.Named("st7789"),
	}
	d.log.Debug("created device",
		zap.Stringer("bus", r.Transmitter),
		zap.Bool("dma", d.useDMA),
		zap.Int("chunk", len(r.Buffers.Chunk)),
		zap.Stringer("rotation", d.rotation),
		zap.Stringer("policy", d.policy))
	return d, nil
}

func defaultLogger() *zap.Logger {
	if debug {
		if logger, err := zap.NewDevelopment(); err == nil {
			return logger
		}
	}
	return zap.NewNop()
}

func (d *Device) String() string {
	mode := "spi"
	if d.useDMA {
		mode = "dma"
	}
	return fmt.Sprintf("ST7789V2 %dx%d (%s)", d.width, d.height, mode)
}

// Bounds is the visible display area, width and height swap when rotated by 90° or 270°.
func (d *Device) Bounds() image.Rectangle {
	w, h := d.size()
	return image.Rect(0, 0, w, h)
}

// Ready reports whether every owned resource is checked in.
func (d *Device) Ready() bool {
	return !d.released &&
		d.tx.Present() && d.ch.Present() &&
		d.cmdBuf.Present() && d.dataBuf.Present() &&
		d.colBuf.Present() && d.rowBuf.Present() &&
		d.chunk.Present()
}

// Release hands all resources back to the caller, for example to reuse the bus for
// another peripheral. The Device can not be used afterwards.
func (d *Device) Release() (Resources, error) {
	if d.released {
		return Resources{}, ErrReleased
	}
	if !d.Ready() {
		return Resources{}, own.ErrCheckedOut
	}
	d.released = true
	d.log.Debug("released device")
	return Resources{
		Transmitter: d.tx.Take(),
		Channel:     d.ch.Take(),
		Reset:       d.rst,
		DC:          d.dc,
		CS:          d.cs,
		Delay:       d.delay,
		Buffers: &Buffers{
			Command: d.cmdBuf.Take(),
			Data:    d.dataBuf.Take(),
			Column:  d.colBuf.Take(),
			Row:     d.rowBuf.Take(),
			Chunk:   d.chunk.Take(),
		},
	}, nil
}

// Close turns the display off and releases the resources. A Transmitter that
// implements io.Closer is closed too.
func (d *Device) Close() error {
	err := d.Show(false)
	r, rerr := d.Release()
	if rerr != nil {
		return multierr.Append(err, rerr)
	}
	if c, ok := r.Transmitter.(interface{ Close() error }); ok {
		err = multierr.Append(err, c.Close())
	}
	return err
}

func (d *Device) check() error {
	if d.released {
		return ErrReleased
	}
	return nil
}
