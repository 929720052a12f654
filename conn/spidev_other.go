//go:build !linux

package conn

import (
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Spidev is only available on Linux.
type Spidev struct{}

func OpenSpidev(_, _ int) (*Spidev, error) {
	return nil, ErrNotSupported
}

func OpenSpidevPath(_ string) (*Spidev, error) {
	return nil, ErrNotSupported
}

func (*Spidev) Close() error {
	return ErrNotSupported
}

func (*Spidev) String() string {
	return "spidev"
}

func (*Spidev) Tx(_, _ []byte) error {
	return ErrNotSupported
}

func (*Spidev) Duplex() conn.Duplex {
	return conn.Half
}

func (*Spidev) Mode() spi.Mode {
	return spi.Mode0
}

func (*Spidev) SetMode(spi.Mode) error {
	return ErrNotSupported
}

func (*Spidev) BitsPerWord() uint8 {
	return 0
}

func (*Spidev) SetBitsPerWord(uint8) error {
	return ErrNotSupported
}

func (*Spidev) MaxSpeed() physic.Frequency {
	return 0
}

func (*Spidev) SetMaxSpeed(physic.Frequency) error {
	return ErrNotSupported
}
