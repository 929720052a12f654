package st7789

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/st7789/dma"
	"github.com/BeatGlow/st7789/internal/own"
)

// transfer sends buf in one blocking transfer. The transmitter, and the channel if there
// is one, are checked out until the transfer completes. It returns the buffer as handed
// back by the transfer.
func (d *Device) transfer(buf []byte) ([]byte, error) {
	tx := d.tx.Take()
	if !d.useDMA {
		err := tx.Tx(buf, nil)
		d.tx.Put(tx)
		return buf, err
	}

	tf := dma.NewTransfer(d.ch.Take(), tx, buf)
	err := tf.Start()
	if err == nil {
		tf.Wait()
		err = tf.Err()
	}
	ch, tx, buf := tf.Release()
	d.ch.Put(ch)
	d.tx.Put(tx)
	return buf, err
}

// busResult logs the outcome of a transfer and applies the error policy.
func (d *Device) busResult(err error, op string, fields ...zap.Field) error {
	if err == nil {
		if ce := d.log.Check(zap.DebugLevel, "transfer complete"); ce != nil {
			ce.Write(append(fields, zap.String("op", op))...)
		}
		return nil
	}
	err = &BusError{Op: op, Err: err}
	d.log.Error("transfer error", append(fields, zap.String("op", op), zap.Error(err))...)
	if d.policy == LogAndContinue {
		return nil
	}
	return err
}

// pinOut drives an output pin and applies the error policy.
func (d *Device) pinOut(name string, pin gpio.PinOut, level gpio.Level) error {
	err := pin.Out(level)
	if err == nil {
		return nil
	}
	err = &PinError{Pin: name, Err: err}
	d.log.Warn("output pin error", zap.String("pin", name), zap.Stringer("level", level), zap.Error(err))
	if d.policy == LogAndContinue {
		return nil
	}
	return err
}

// sendCommand sends one command byte with DC low. Chip select is left alone.
func (d *Device) sendCommand(cmd Command) error {
	if err := d.pinOut("dc", d.dc, gpio.Low); err != nil {
		return err
	}
	buf := d.cmdBuf.Take()
	buf[0] = byte(cmd)
	_, err := d.transfer(buf[:])
	d.cmdBuf.Put(buf)
	return d.busResult(err, "command "+cmd.String())
}

// sendData sends one data byte with DC high. Chip select is left alone.
func (d *Device) sendData(v byte) error {
	if err := d.pinOut("dc", d.dc, gpio.High); err != nil {
		return err
	}
	buf := d.dataBuf.Take()
	buf[0] = v
	_, err := d.transfer(buf[:])
	d.dataBuf.Put(buf)
	return d.busResult(err, fmt.Sprintf("data 0x%02X", v))
}

// sendBuffer sends the contents of a 4-byte staging buffer with DC high.
func (d *Device) sendBuffer(slot *own.Slot[*[4]byte]) error {
	if err := d.pinOut("dc", d.dc, gpio.High); err != nil {
		return err
	}
	buf := slot.Take()
	_, err := d.transfer(buf[:])
	slot.Put(buf)
	return d.busResult(err, slot.Name(), zap.Binary("data", buf[:]))
}

// frame keeps the device selected across several primitives. After the first error
// every further step is skipped; end always releases chip select.
type frame struct {
	d   *Device
	err error
}

func (d *Device) begin() *frame {
	return &frame{
		d:   d,
		err: d.pinOut("cs", d.cs, gpio.Low),
	}
}

func (f *frame) command(cmd Command) {
	if f.err != nil {
		return
	}
	f.err = f.d.sendCommand(cmd)
}

func (f *frame) data(v byte) {
	if f.err != nil {
		return
	}
	f.err = f.d.sendData(v)
}

func (f *frame) buffer(slot *own.Slot[*[4]byte]) {
	if f.err != nil {
		return
	}
	f.err = f.d.sendBuffer(slot)
}

func (f *frame) dataMode() {
	if f.err != nil {
		return
	}
	f.err = f.d.pinOut("dc", f.d.dc, gpio.High)
}

func (f *frame) settle(delay time.Duration) {
	if f.err != nil || delay <= 0 {
		return
	}
	f.d.delay.Sleep(delay)
}

func (f *frame) end() error {
	return multierr.Append(f.err, f.d.pinOut("cs", f.d.cs, gpio.High))
}

// commandFrame sends cmd in its own chip select assertion and waits before deselecting.
func (d *Device) commandFrame(cmd Command, delay time.Duration) error {
	f := d.begin()
	f.command(cmd)
	f.settle(delay)
	return f.end()
}

// dataFrame sends v in its own chip select assertion and waits before deselecting.
func (d *Device) dataFrame(v byte, delay time.Duration) error {
	f := d.begin()
	f.data(v)
	f.settle(delay)
	return f.end()
}
