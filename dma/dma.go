// Package dma models a memory-to-peripheral block transfer engine.
//
// A Transfer owns its channel, transmitter and buffer from NewTransfer until Release; the
// caller gets all three back only after the transfer has observably completed.
package dma

import (
	"errors"
	"runtime"

	"periph.io/x/conn/v3"
)

// Errors
var (
	ErrBusy       = errors.New("dma: channel has a transfer in flight")
	ErrNotStarted = errors.New("dma: transfer was not started")
)

// Channel is a block transfer engine bound to a transmitter.
type Channel interface {
	// Start begins moving buf to the peripheral behind tx. It does not wait for completion.
	Start(tx conn.Conn, buf []byte) error

	// Complete reports whether the transfer that was started last has finished.
	Complete() bool

	// Err is the error flag of the last finished transfer.
	Err() error
}

// Transfer is a single memory-to-peripheral transfer.
type Transfer struct {
	ch      Channel
	tx      conn.Conn
	buf     []byte
	started bool
	done    bool
	err     error
}

// NewTransfer takes ownership of ch, tx and buf for the lifetime of the transfer.
func NewTransfer(ch Channel, tx conn.Conn, buf []byte) *Transfer {
	return &Transfer{
		ch:  ch,
		tx:  tx,
		buf: buf,
	}
}

// Len is the number of bytes to transfer.
func (t *Transfer) Len() int {
	return len(t.buf)
}

// Start the transfer.
func (t *Transfer) Start() error {
	if t.started {
		return ErrBusy
	}
	if err := t.ch.Start(t.tx, t.buf); err != nil {
		return err
	}
	t.started = true
	return nil
}

// Wait polls the channel until the transfer completes. There is no timeout.
func (t *Transfer) Wait() {
	if !t.started {
		t.done, t.err = true, ErrNotStarted
		return
	}
	for !t.ch.Complete() {
		runtime.Gosched()
	}
	t.done, t.err = true, t.ch.Err()
}

// IsTransferError reports whether the completed transfer failed.
func (t *Transfer) IsTransferError() bool {
	return t.err != nil
}

// Err is the transfer error, if any.
func (t *Transfer) Err() error {
	return t.err
}

// Release hands the channel, transmitter and buffer back. Releasing a transfer that was
// started but not waited for panics, the engine may still be reading buf.
func (t *Transfer) Release() (Channel, conn.Conn, []byte) {
	if t.started && !t.done {
		panic("dma: release of in-flight transfer")
	}
	ch, tx, buf := t.ch, t.tx, t.buf
	t.ch, t.tx, t.buf = nil, nil, nil
	return ch, tx, buf
}
