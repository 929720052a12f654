package conn

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/BeatGlow/st7789/internal/ioctl"
)

const spidevPath = "/dev/spidev"

// Definitions from <linux/spi/spidev.h>
const (
	spiIOCMode        = 0x6b01
	spiIOCBitsPerWord = 0x6b03
	spiIOCMaxSpeedHz  = 0x6b04
)

// Spidev is a write-only transmitter on a Linux spidev character device, without the
// periph host drivers.
type Spidev struct {
	f           *os.File
	fd          uintptr
	name        string
	mode        uint8
	bitsPerWord uint8
	maxSpeedHz  uint32
}

// OpenSpidev opens the numbered spi bus with the numbered device. The device often
// corresponds to the CS pin for that bus.
func OpenSpidev(bus, device int) (*Spidev, error) {
	return OpenSpidevPath(fmt.Sprintf("%s%d.%d", spidevPath, bus, device))
}

// OpenSpidevPath opens the spidev device at name and reads its current parameters.
func OpenSpidevPath(name string) (*Spidev, error) {
	f, err := os.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrap(err, "conn: open spidev")
	}

	c := &Spidev{
		f:    f,
		fd:   f.Fd(),
		name: name,
	}
	if err = ioctl.Do(c.fd, ioctl.Pointer(ioctl.Read, &c.mode, spiIOCMode), &c.mode); err == nil {
		if err = ioctl.Do(c.fd, ioctl.Pointer(ioctl.Read, &c.bitsPerWord, spiIOCBitsPerWord), &c.bitsPerWord); err == nil {
			err = ioctl.Do(c.fd, ioctl.Pointer(ioctl.Read, &c.maxSpeedHz, spiIOCMaxSpeedHz), &c.maxSpeedHz)
		}
	}
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "conn: %s is not a spidev device", name)
	}
	return c, nil
}

func (c *Spidev) Close() error {
	return c.f.Close()
}

func (c *Spidev) String() string {
	return fmt.Sprintf("%s mode=%d bits=%d speed=%s", c.name, c.mode, c.bitsPerWord, c.MaxSpeed())
}

// Tx writes w. The device is write-only, r must be empty.
func (c *Spidev) Tx(w, r []byte) error {
	if len(r) != 0 {
		return ErrWriteOnly
	}
	_, err := c.f.Write(w)
	return err
}

// Duplex implements conn.Conn.
func (c *Spidev) Duplex() conn.Duplex {
	return conn.Half
}

func (c *Spidev) Mode() spi.Mode {
	return spi.Mode(c.mode)
}

// SetMode sets the clock polarity and phase.
func (c *Spidev) SetMode(mode spi.Mode) error {
	m := uint8(mode & spi.Mode3)
	if err := ioctl.Do(c.fd, ioctl.Pointer(ioctl.Write, &m, spiIOCMode), &m); err != nil {
		return err
	}

	var test uint8
	if err := ioctl.Do(c.fd, ioctl.Pointer(ioctl.Read, &test, spiIOCMode), &test); err != nil {
		return err
	}
	if test&uint8(spi.Mode3) != m {
		return fmt.Errorf("conn: spidev attempted to set mode %#02x, but mode %#02x is in use", m, test)
	}

	c.mode = test
	return nil
}

func (c *Spidev) BitsPerWord() uint8 {
	return c.bitsPerWord
}

func (c *Spidev) SetBitsPerWord(bits uint8) error {
	if bits < 8 || bits > 32 {
		return fmt.Errorf("conn: spidev bits per word need to be 8 or more and 32 or less, got %d", bits)
	}
	if c.bitsPerWord != bits {
		if err := ioctl.Do(c.fd, ioctl.Pointer(ioctl.Write, &bits, spiIOCBitsPerWord), &bits); err != nil {
			return err
		}
		c.bitsPerWord = bits
	}
	return nil
}

func (c *Spidev) MaxSpeed() physic.Frequency {
	return physic.Frequency(c.maxSpeedHz) * physic.Hertz
}

func (c *Spidev) SetMaxSpeed(f physic.Frequency) error {
	if err := ValidSpeed(f); err != nil {
		return err
	}
	u := uint32(f / physic.Hertz)
	if c.maxSpeedHz != u {
		if err := ioctl.Do(c.fd, ioctl.Pointer(ioctl.Write, &u, spiIOCMaxSpeedHz), &u); err != nil {
			return err
		}
		c.maxSpeedHz = u
	}
	return nil
}

var _ conn.Conn = (*Spidev)(nil)
