package dma

import (
	"go.uber.org/atomic"
	"periph.io/x/conn/v3"
)

// SPIChannel runs transfers on a worker goroutine, for hosts where the kernel SPI driver
// does the actual DMA. Completion is only observable by polling.
type SPIChannel struct {
	done atomic.Bool
	err  atomic.Error
}

// NewSPIChannel returns an idle channel.
func NewSPIChannel() *SPIChannel {
	c := new(SPIChannel)
	c.done.Store(true)
	return c
}

func (c *SPIChannel) String() string {
	return "dma: SPI worker channel"
}

// Start a transfer of buf over tx.
func (c *SPIChannel) Start(tx conn.Conn, buf []byte) error {
	if !c.done.CompareAndSwap(true, false) {
		return ErrBusy
	}
	c.err.Store(nil)
	go func() {
		c.err.Store(tx.Tx(buf, nil))
		c.done.Store(true)
	}()
	return nil
}

// Complete reports whether the last transfer finished.
func (c *SPIChannel) Complete() bool {
	return c.done.Load()
}

// Err returns the result of the last finished transfer.
func (c *SPIChannel) Err() error {
	return c.err.Load()
}

var _ Channel = (*SPIChannel)(nil)
