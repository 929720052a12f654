package dma

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/conntest"
)

// pollChannel completes after a number of polls, to exercise the busy-wait.
type pollChannel struct {
	polls   int
	started int
	err     error
	got     []byte
}

func (c *pollChannel) Start(tx conn.Conn, buf []byte) error {
	c.started++
	c.got = append([]byte(nil), buf...)
	return tx.Tx(buf, nil)
}

func (c *pollChannel) Complete() bool {
	if c.polls > 0 {
		c.polls--
		return false
	}
	return true
}

func (c *pollChannel) Err() error {
	return c.err
}

func TestTransfer(t *testing.T) {
	var (
		ch  = &pollChannel{polls: 3}
		tx  = &conntest.Record{}
		buf = []byte{0x2a, 0x00, 0x00, 0x00, 0xef}
	)

	tf := NewTransfer(ch, tx, buf)
	if v := tf.Len(); v != len(buf) {
		t.Errorf("expected length %d, got %d", len(buf), v)
	}
	if err := tf.Start(); err != nil {
		t.Fatal(err)
	}
	if err := tf.Start(); !errors.Is(err, ErrBusy) {
		t.Errorf("expected second start to fail with %v, got %v", ErrBusy, err)
	}
	tf.Wait()
	if ch.polls != 0 {
		t.Errorf("expected wait to poll until complete, %d polls left", ch.polls)
	}
	if tf.IsTransferError() {
		t.Errorf("unexpected transfer error %v", tf.Err())
	}

	rch, rtx, rbuf := tf.Release()
	if rch != Channel(ch) || rtx != conn.Conn(tx) || &rbuf[0] != &buf[0] {
		t.Error("expected release to return the resources passed to NewTransfer")
	}
	if len(tx.Ops) != 1 || string(tx.Ops[0].W) != string(buf) {
		t.Errorf("expected one write of %x, got %+v", buf, tx.Ops)
	}
}

func TestTransferError(t *testing.T) {
	want := errors.New("overrun")
	tf := NewTransfer(&pollChannel{err: want}, &conntest.Record{}, []byte{0})
	if err := tf.Start(); err != nil {
		t.Fatal(err)
	}
	tf.Wait()
	if !tf.IsTransferError() || !errors.Is(tf.Err(), want) {
		t.Errorf("expected transfer error %v, got %v", want, tf.Err())
	}
}

func TestTransferNotStarted(t *testing.T) {
	tf := NewTransfer(&pollChannel{}, &conntest.Record{}, []byte{0})
	tf.Wait()
	if !errors.Is(tf.Err(), ErrNotStarted) {
		t.Errorf("expected %v, got %v", ErrNotStarted, tf.Err())
	}
	tf.Release()
}

func TestTransferReleaseInFlight(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected release of in-flight transfer to panic")
		}
	}()
	tf := NewTransfer(&pollChannel{polls: 1}, &conntest.Record{}, []byte{0})
	if err := tf.Start(); err != nil {
		t.Fatal(err)
	}
	tf.Release()
}

type failConn struct {
	conntest.Record
	err error
}

func (c *failConn) Tx(w, r []byte) error {
	if c.err != nil {
		return c.err
	}
	return c.Record.Tx(w, r)
}

func TestSPIChannel(t *testing.T) {
	ch := NewSPIChannel()
	if !ch.Complete() {
		t.Fatal("expected idle channel to report complete")
	}

	tx := &failConn{}
	for i := 0; i < 3; i++ {
		tf := NewTransfer(ch, tx, []byte{byte(i), 0xff})
		if err := tf.Start(); err != nil {
			t.Fatalf("transfer %d: %v", i, err)
		}
		tf.Wait()
		if err := tf.Err(); err != nil {
			t.Fatalf("transfer %d: %v", i, err)
		}
		tf.Release()
	}
	if len(tx.Ops) != 3 {
		t.Errorf("expected 3 writes, got %d", len(tx.Ops))
	}

	want := errors.New("spi: bus error")
	tx.err = want
	tf := NewTransfer(ch, tx, []byte{0})
	if err := tf.Start(); err != nil {
		t.Fatal(err)
	}
	tf.Wait()
	if !errors.Is(tf.Err(), want) {
		t.Errorf("expected %v, got %v", want, tf.Err())
	}
}
