// Package conn opens the SPI transmitters the display driver writes to.
package conn

import (
	"fmt"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
)

// Errors
var (
	ErrWriteOnly    = errors.New("conn: transmitter is write-only")
	ErrNotSupported = errors.New("conn: not supported on this platform")
	ErrSpeed        = errors.New("conn: invalid SPI speed")
)

// SPIConfig describes the SPI port configuration.
type SPIConfig struct {
	// Port name as known to spireg, empty for the first available port.
	Port string

	// Speed is the clock frequency.
	Speed physic.Frequency

	// Mode is the clock polarity and phase.
	Mode spi.Mode

	// Bits per word.
	Bits int
}

// DefaultSPIConfig are the default configuration values.
var DefaultSPIConfig = SPIConfig{
	Speed: 32 * physic.MegaHertz,
	Mode:  spi.Mode0,
	Bits:  8,
}

// ValidSPISpeeds are common valid SPI bus speeds.
var ValidSPISpeeds = []physic.Frequency{
	500 * physic.KiloHertz,
	1 * physic.MegaHertz,
	2 * physic.MegaHertz,
	4 * physic.MegaHertz,
	8 * physic.MegaHertz,
	16 * physic.MegaHertz,
	20 * physic.MegaHertz,
	24 * physic.MegaHertz,
	28 * physic.MegaHertz,
	32 * physic.MegaHertz,
	36 * physic.MegaHertz,
	40 * physic.MegaHertz,
	48 * physic.MegaHertz,
	50 * physic.MegaHertz,
	52 * physic.MegaHertz,
	62500 * physic.KiloHertz,
}

// ValidSpeed checks f against ValidSPISpeeds.
func ValidSpeed(f physic.Frequency) error {
	for _, speed := range ValidSPISpeeds {
		if speed == f {
			return nil
		}
	}
	return errors.Wrapf(ErrSpeed, "%s", f)
}

// SPI is a periph SPI port connection, it closes the port when closed.
type SPI struct {
	port spi.PortCloser
	conn spi.Conn
}

// OpenSPI opens a SPI port through the periph registry. host.Init must have been called.
func OpenSPI(config *SPIConfig) (*SPI, error) {
	if config == nil {
		config = new(SPIConfig)
		*config = DefaultSPIConfig
	}
	if config.Speed == 0 {
		config.Speed = DefaultSPIConfig.Speed
	}
	if config.Bits == 0 {
		config.Bits = DefaultSPIConfig.Bits
	}
	if err := ValidSpeed(config.Speed); err != nil {
		return nil, err
	}

	port, err := spireg.Open(config.Port)
	if err != nil {
		return nil, errors.Wrap(err, "conn: open SPI port")
	}

	c, err := port.Connect(config.Speed, config.Mode, config.Bits)
	if err != nil {
		_ = port.Close()
		return nil, errors.Wrapf(err, "conn: connect to %s", port)
	}

	return &SPI{
		port: port,
		conn: c,
	}, nil
}

func (c *SPI) String() string {
	return fmt.Sprintf("SPI %s", c.conn)
}

// Tx implements conn.Conn.
func (c *SPI) Tx(w, r []byte) error {
	return c.conn.Tx(w, r)
}

// Duplex implements conn.Conn.
func (c *SPI) Duplex() conn.Duplex {
	return c.conn.Duplex()
}

// MaxTxSize is the largest single transfer the port supports, 0 if unknown.
func (c *SPI) MaxTxSize() int {
	if l, ok := c.conn.(conn.Limits); ok {
		return l.MaxTxSize()
	}
	return 0
}

func (c *SPI) Close() error {
	return c.port.Close()
}

var _ conn.Conn = (*SPI)(nil)
