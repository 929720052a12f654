package st7789

import (
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// trace is the ordered record of everything the driver did to its environment.
type trace struct {
	events []string
}

func (t *trace) add(format string, args ...any) {
	t.events = append(t.events, fmt.Sprintf(format, args...))
}

func (t *trace) reset() {
	t.events = nil
}

// fakePin fails with err once ok levels were driven.
type fakePin struct {
	*gpiotest.Pin
	trace *trace
	err   error
	ok    int
	outs  int
}

func newFakePin(name string, t *trace) *fakePin {
	return &fakePin{
		Pin:   &gpiotest.Pin{N: name},
		trace: t,
	}
}

func (p *fakePin) Out(l gpio.Level) error {
	if p.outs++; p.err != nil && p.outs > p.ok {
		return p.err
	}
	if l == gpio.High {
		p.trace.add("%s=H", p.N)
	} else {
		p.trace.add("%s=L", p.N)
	}
	return p.Pin.Out(l)
}

// fakeConn fails with err once ok writes went through.
type fakeConn struct {
	conntest.Record
	trace *trace
	err   error
	ok    int
}

func (c *fakeConn) Tx(w, r []byte) error {
	if len(w) > 8 {
		c.trace.add("tx [%d]", len(w))
	} else {
		c.trace.add("tx %s", hex.EncodeToString(w))
	}
	if c.err != nil && len(c.Ops) >= c.ok {
		return c.err
	}
	return c.Record.Tx(w, r)
}

// writes returns every payload, in order.
func (c *fakeConn) writes() [][]byte {
	out := make([][]byte, len(c.Ops))
	for i, op := range c.Ops {
		out[i] = op.W
	}
	return out
}

// fakeChannel moves the data synchronously but reports completion after a number of polls.
type fakeChannel struct {
	polls   int
	pending int
	err     error
	last    error
	starts  int
	onStart func(buf []byte)
}

func (c *fakeChannel) Start(tx conn.Conn, buf []byte) error {
	c.starts++
	if c.onStart != nil {
		c.onStart(buf)
	}
	c.pending = c.polls
	c.last = tx.Tx(buf, nil)
	if c.err != nil {
		c.last = c.err
	}
	return nil
}

func (c *fakeChannel) Complete() bool {
	if c.pending > 0 {
		c.pending--
		return false
	}
	return true
}

func (c *fakeChannel) Err() error {
	return c.last
}

type fakeDelay struct {
	trace *trace
}

func (d fakeDelay) Sleep(v time.Duration) {
	d.trace.add("sleep %s", v)
}

type fixture struct {
	trace   *trace
	conn    *fakeConn
	channel *fakeChannel
	reset   *fakePin
	dc      *fakePin
	cs      *fakePin
	logs    *observer.ObservedLogs
	dev     *Device
}

type fixtureOptions struct {
	dma       bool
	chunkSize int
	policy    ErrorPolicy
	config    *Config
}

func newFixture(t *testing.T, opts fixtureOptions) *fixture {
	t.Helper()

	tr := new(trace)
	f := &fixture{
		trace: tr,
		conn:  &fakeConn{trace: tr},
		reset: newFakePin("reset", tr),
		dc:    newFakePin("dc", tr),
		cs:    newFakePin("cs", tr),
	}

	core, logs := observer.New(zap.DebugLevel)
	f.logs = logs

	config := opts.config
	if config == nil {
		config = new(Config)
		*config = DefaultConfig
	}
	config.ErrorPolicy = opts.policy
	config.Logger = zap.New(core)

	r := Resources{
		Transmitter: f.conn,
		Reset:       f.reset,
		DC:          f.dc,
		CS:          f.cs,
		Delay:       fakeDelay{trace: tr},
		Buffers:     NewBuffers(opts.chunkSize),
	}
	if opts.dma {
		f.channel = &fakeChannel{polls: 2}
		r.Channel = f.channel
	}

	var err error
	if f.dev, err = New(r, config); err != nil {
		t.Fatal(err)
	}
	return f
}

// payload returns the writes following the last memory write command.
func (f *fixture) payload() [][]byte {
	writes := f.conn.writes()
	for i := len(writes) - 1; i >= 0; i-- {
		if len(writes[i]) == 1 && writes[i][0] == byte(RAMWR) {
			return writes[i+1:]
		}
	}
	return nil
}

// count returns how many single byte command writes of cmd were made.
func (f *fixture) count(cmd Command) int {
	var n int
	for _, w := range f.conn.writes() {
		if len(w) == 1 && w[0] == byte(cmd) {
			n++
		}
	}
	return n
}
