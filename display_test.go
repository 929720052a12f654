package st7789

import (
	"errors"
	"image"
	"testing"

	"go.uber.org/zap/zaptest"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/BeatGlow/st7789/internal/own"
	"github.com/BeatGlow/st7789/pixel"
)

func testResources() Resources {
	return Resources{
		Transmitter: &conntest.Record{},
		Reset:       &gpiotest.Pin{N: "reset"},
		DC:          &gpiotest.Pin{N: "dc"},
		CS:          &gpiotest.Pin{N: "cs"},
	}
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		d, err := New(testResources(), nil)
		if err != nil {
			t.Fatal(err)
		}
		if want := image.Rect(0, 0, 240, 280); d.Bounds() != want {
			t.Errorf("expected bounds %s, got %s", want, d.Bounds())
		}
		if d.rowOffset != 20 {
			t.Errorf("expected row offset 20, got %d", d.rowOffset)
		}
		if n := len(d.chunk.Borrow()); n != DefaultChunkSize {
			t.Errorf("expected chunk of %d bytes, got %d", DefaultChunkSize, n)
		}
		if d.delay == nil {
			t.Error("expected a default delay provider")
		}
		if !d.Ready() {
			t.Error("expected new device to be ready")
		}
	})

	tests := []struct {
		Name   string
		Modify func(*Resources, *Config)
		Err    error
	}{
		{"no transmitter", func(r *Resources, _ *Config) { r.Transmitter = nil }, ErrTransmitter},
		{"no reset", func(r *Resources, _ *Config) { r.Reset = nil }, ErrResetPin},
		{"invalid reset", func(r *Resources, _ *Config) { r.Reset = gpio.INVALID }, ErrResetPin},
		{"no dc", func(r *Resources, _ *Config) { r.DC = nil }, ErrDCPin},
		{"invalid cs", func(r *Resources, _ *Config) { r.CS = gpio.INVALID }, ErrCSPin},
		{"missing buffer", func(r *Resources, _ *Config) { r.Buffers = &Buffers{Chunk: make([]byte, 16)} }, ErrBuffers},
		{"chunk not a power of two", func(r *Resources, _ *Config) { r.Buffers = NewBuffers(100) }, ErrChunkSize},
		{"chunk too small", func(r *Resources, _ *Config) { r.Buffers = NewBuffers(1) }, ErrChunkSize},
		{"negative chunk", func(r *Resources, _ *Config) { r.Buffers = NewBuffers(-4096) }, ErrChunkSize},
		{"too wide", func(_ *Resources, c *Config) { c.Width = 241 }, nil},
		{"column offset too wide", func(_ *Resources, c *Config) { c.ColumnOffset = 1 }, nil},
		{"too tall", func(_ *Resources, c *Config) { c.Height = 301 }, nil},
		{"negative offset", func(_ *Resources, c *Config) { c.RowOffset = -1 }, nil},
	}
	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			r, config := testResources(), DefaultConfig
			test.Modify(&r, &config)
			d, err := New(r, &config)
			if err == nil {
				t.Fatalf("expected error, got device %s", d)
			}
			if test.Err != nil && !errors.Is(err, test.Err) {
				t.Errorf("expected %v, got %v", test.Err, err)
			}
		})
	}
}

func TestNewFullHeight(t *testing.T) {
	r := testResources()
	d, err := New(r, &Config{Width: 240, Height: 320, Logger: zaptest.NewLogger(t)})
	if err != nil {
		t.Fatal(err)
	}
	if want := image.Rect(0, 0, 240, 320); d.Bounds() != want {
		t.Errorf("expected bounds %s, got %s", want, d.Bounds())
	}
}

func TestDeviceString(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	if got, want := f.dev.String(), "ST7789V2 240x280 (spi)"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	f = newFixture(t, fixtureOptions{dma: true})
	if got, want := f.dev.String(), "ST7789V2 240x280 (dma)"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRelease(t *testing.T) {
	f := newFixture(t, fixtureOptions{dma: true})
	if err := f.dev.FillSolid(image.Rect(0, 0, 8, 8), pixel.White); err != nil {
		t.Fatal(err)
	}

	r, err := f.dev.Release()
	if err != nil {
		t.Fatal(err)
	}
	if r.Transmitter != f.conn {
		t.Error("expected the transmitter back")
	}
	if r.Channel != f.channel {
		t.Error("expected the channel back")
	}
	if r.Reset != f.reset || r.DC != f.dc || r.CS != f.cs {
		t.Error("expected the pins back")
	}
	if r.Buffers == nil || len(r.Buffers.Chunk) != DefaultChunkSize {
		t.Error("expected the buffers back")
	}
	if f.dev.Ready() {
		t.Error("released device must not be ready")
	}

	if _, err = f.dev.Release(); !errors.Is(err, ErrReleased) {
		t.Errorf("expected ErrReleased, got %v", err)
	}
	if err = f.dev.FillSolid(image.Rect(0, 0, 1, 1), pixel.White); !errors.Is(err, ErrReleased) {
		t.Errorf("expected ErrReleased, got %v", err)
	}
	if err = f.dev.Init(); !errors.Is(err, ErrReleased) {
		t.Errorf("expected ErrReleased, got %v", err)
	}

	// The resources can build a new device.
	d, err := New(r, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !d.Ready() {
		t.Error("expected rebuilt device to be ready")
	}
}

func TestReleaseCheckedOut(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	buf := f.dev.chunk.Take()
	defer f.dev.chunk.Put(buf)
	if _, err := f.dev.Release(); !errors.Is(err, own.ErrCheckedOut) {
		t.Errorf("expected ErrCheckedOut, got %v", err)
	}
}

type closingConn struct {
	fakeConn
	closed bool
}

func (c *closingConn) Close() error {
	c.closed = true
	return nil
}

func TestClose(t *testing.T) {
	tr := new(trace)
	c := &closingConn{fakeConn: fakeConn{trace: tr}}
	d, err := New(Resources{
		Transmitter: c,
		Reset:       newFakePin("reset", tr),
		DC:          newFakePin("dc", tr),
		CS:          newFakePin("cs", tr),
		Delay:       fakeDelay{trace: tr},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err = d.Close(); err != nil {
		t.Fatal(err)
	}
	if !c.closed {
		t.Error("expected transmitter to be closed")
	}
	if len(c.Ops) != 1 || c.Ops[0].W[0] != byte(DISPOFF) {
		t.Errorf("expected display off before close, got %v", c.Ops)
	}
	if err = d.Close(); !errors.Is(err, ErrReleased) {
		t.Errorf("expected ErrReleased on second close, got %v", err)
	}
}

func TestCommandString(t *testing.T) {
	tests := []struct {
		Command Command
		Want    string
	}{
		{CASET, "CASET"},
		{RAMWR, "RAMWR"},
		{SWRESET, "SWRESET"},
		{Command(0xB2), "0xB2"},
		{Command(0x13), "0x13"},
	}
	for _, test := range tests {
		if got := test.Command.String(); got != test.Want {
			t.Errorf("expected %q, got %q", test.Want, got)
		}
	}
}

func TestErrorPolicyString(t *testing.T) {
	for policy, want := range map[ErrorPolicy]string{
		FailFast:       "fail-fast",
		LogAndContinue: "log-and-continue",
		ErrorPolicy(9): "ErrorPolicy(9)",
	} {
		if got := policy.String(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}

func TestErrorTypes(t *testing.T) {
	cause := errors.New("cause")

	var err error = &BusError{Op: "burst", Err: cause}
	if !errors.Is(err, ErrBus) || !errors.Is(err, cause) {
		t.Errorf("expected %v to match ErrBus and its cause", err)
	}
	if errors.Is(err, ErrPin) {
		t.Errorf("%v must not match ErrPin", err)
	}
	if got, want := err.Error(), "st7789: burst: cause"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	err = &PinError{Pin: "cs", Err: cause}
	if !errors.Is(err, ErrPin) || !errors.Is(err, cause) {
		t.Errorf("expected %v to match ErrPin and its cause", err)
	}
	if got, want := err.Error(), "st7789: cs pin: cause"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
