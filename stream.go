package st7789

import (
	"iter"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/BeatGlow/st7789/pixel"
)

// chunker fills the chunk buffer and sends it as one burst whenever it is full.
type chunker struct {
	d      *Device
	buf    []byte
	n      int
	sent   int
	bursts int
	err    error
}

func (d *Device) newChunker() *chunker {
	return &chunker{
		d:   d,
		buf: d.chunk.Borrow(),
	}
}

// write copies p into the chunk buffer, flushing as it fills up.
func (c *chunker) write(p []byte) {
	for len(p) > 0 && c.err == nil {
		n := copy(c.buf[c.n:], p)
		c.n += n
		p = p[n:]
		if c.n == len(c.buf) {
			c.flush()
		}
	}
}

// flush sends the buffered bytes, if any.
func (c *chunker) flush() {
	if c.n == 0 || c.err != nil {
		return
	}
	if c.err = c.d.burst(c.n); c.err == nil {
		c.sent += c.n
		c.bursts++
	}
	c.n = 0
}

// burst checks the chunk buffer out to a transfer of its first n bytes.
func (d *Device) burst(n int) error {
	buf := d.chunk.Take()
	size := len(buf)
	sent, err := d.transfer(buf[:n])
	d.chunk.Put(sent[:size])
	return d.busResult(err, "burst", zap.Int("bytes", n))
}

// stream sends up to total bytes of pixels as a single memory write: chip select and
// data mode are set once around all bursts. It returns the number of bytes sent.
func (d *Device) stream(total int, pixels iter.Seq[pixel.CRGB16]) (int, error) {
	f := d.begin()
	f.dataMode()
	if f.err != nil {
		return 0, f.end()
	}

	c := d.newChunker()
	if total > 0 {
		for px := range pixels {
			b := px.Bytes()
			c.write(b[:])
			if c.err != nil || c.sent+c.n >= total {
				break
			}
		}
	}
	c.flush()
	f.err = c.err

	d.log.Debug("streamed pixels", zap.Int("bytes", c.sent), zap.Int("bursts", c.bursts))
	return c.sent, f.end()
}

// streamBytes sends pre-encoded data as a single memory write.
func (d *Device) streamBytes(data []byte) (int, error) {
	f := d.begin()
	f.dataMode()
	if f.err != nil {
		return 0, f.end()
	}

	c := d.newChunker()
	c.write(data)
	c.flush()
	d.log.Debug("streamed frame", zap.Int("bytes", c.sent), zap.Int("bursts", c.bursts))
	return c.sent, multierr.Append(c.err, f.end())
}
