package main

import (
	"fmt"
	"image"
	"log"
	"os"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	periphconn "periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/host/v3"

	"github.com/BeatGlow/st7789"
	"github.com/BeatGlow/st7789/conn"
	"github.com/BeatGlow/st7789/dma"
	"github.com/BeatGlow/st7789/draw"
	"github.com/BeatGlow/st7789/pixel"
)

const (
	flagPort      = "spi-port"
	flagSpidev    = "spidev"
	flagSpeed     = "speed"
	flagReset     = "reset"
	flagDC        = "dc"
	flagCS        = "cs"
	flagBacklight = "bl"
	flagWidth     = "width"
	flagHeight    = "height"
	flagRowOffset = "row-offset"
	flagRotate    = "rotate"
	flagDMA       = "dma"
	flagChunk     = "chunk"
	flagPolicy    = "policy"
	flagHold      = "hold"
	flagDebug     = "debug"
)

func main() {
	app := &cli.App{
		Name:  "st7789-test",
		Usage: "draw a test pattern on an ST7789V2 display",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagPort, Usage: "periph SPI port name (default: first available)", EnvVars: []string{"ST7789_SPI_PORT"}},
			&cli.StringFlag{Name: flagSpidev, Usage: "use the raw spidev device at `PATH` instead of periph", EnvVars: []string{"ST7789_SPIDEV"}},
			&cli.StringFlag{Name: flagSpeed, Value: "32MHz", Usage: "SPI clock", EnvVars: []string{"ST7789_SPEED"}},
			&cli.StringFlag{Name: flagReset, Value: "GPIO25", Usage: "reset GPIO pin", EnvVars: []string{"ST7789_RESET"}},
			&cli.StringFlag{Name: flagDC, Value: "GPIO24", Usage: "data/command GPIO pin", EnvVars: []string{"ST7789_DC"}},
			&cli.StringFlag{Name: flagCS, Value: "GPIO8", Usage: "chip select GPIO pin", EnvVars: []string{"ST7789_CS"}},
			&cli.StringFlag{Name: flagBacklight, Value: "GPIO19", Usage: "backlight GPIO pin, empty to leave alone", EnvVars: []string{"ST7789_BL"}},
			&cli.IntFlag{Name: flagWidth, Value: st7789.DefaultConfig.Width, Usage: "display width", EnvVars: []string{"ST7789_WIDTH"}},
			&cli.IntFlag{Name: flagHeight, Value: st7789.DefaultConfig.Height, Usage: "display height", EnvVars: []string{"ST7789_HEIGHT"}},
			&cli.IntFlag{Name: flagRowOffset, Value: st7789.DefaultConfig.RowOffset, Usage: "hidden controller rows above the display", EnvVars: []string{"ST7789_ROW_OFFSET"}},
			&cli.StringFlag{Name: flagRotate, Usage: "rotation: 0, 90, 180 or 270 (also right, flip, left)", EnvVars: []string{"ST7789_ROTATE"}},
			&cli.BoolFlag{Name: flagDMA, Usage: "stream through a background transfer channel", EnvVars: []string{"ST7789_DMA"}},
			&cli.IntFlag{Name: flagChunk, Value: st7789.DefaultChunkSize, Usage: "chunk buffer size in bytes, a power of two", EnvVars: []string{"ST7789_CHUNK"}},
			&cli.StringFlag{Name: flagPolicy, Value: st7789.FailFast.String(), Usage: "error policy: fail-fast or log-and-continue", EnvVars: []string{"ST7789_POLICY"}},
			&cli.DurationFlag{Name: flagHold, Value: 5 * time.Second, Usage: "time to show the pattern before turning the display off"},
			&cli.BoolFlag{Name: flagDebug, Usage: "enable debug logging", EnvVars: []string{"ST7789_DEBUG"}},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}

func run(c *cli.Context) (err error) {
	logger := zap.NewNop()
	if c.Bool(flagDebug) {
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}
	defer func() { _ = logger.Sync() }()

	var policy st7789.ErrorPolicy
	switch p := c.String(flagPolicy); p {
	case st7789.FailFast.String():
		policy = st7789.FailFast
	case st7789.LogAndContinue.String():
		policy = st7789.LogAndContinue
	default:
		return fmt.Errorf("invalid error policy %q", p)
	}

	rotation, err := parseRotation(c.String(flagRotate))
	if err != nil {
		return err
	}

	var speed physic.Frequency
	if err = speed.Set(c.String(flagSpeed)); err != nil {
		return errors.Wrap(err, "invalid speed")
	}

	if _, err = host.Init(); err != nil {
		return err
	}

	pins := make(map[string]gpio.PinIO)
	for _, name := range []string{flagReset, flagDC, flagCS} {
		if pins[name] = gpioreg.ByName(c.String(name)); pins[name] == nil {
			return fmt.Errorf("unknown %s pin %q", name, c.String(name))
		}
	}
	if name := c.String(flagBacklight); name != "" {
		bl := gpioreg.ByName(name)
		if bl == nil {
			return fmt.Errorf("unknown backlight pin %q", name)
		}
		if err = bl.Out(gpio.High); err != nil {
			return err
		}
	}

	tx, err := openTransmitter(c, speed)
	if err != nil {
		return err
	}
	logger.Info("opened transmitter", zap.Stringer("conn", tx))

	r := st7789.Resources{
		Transmitter: tx,
		Reset:       pins[flagReset],
		DC:          pins[flagDC],
		CS:          pins[flagCS],
		Delay:       clock.New(),
		Buffers:     st7789.NewBuffers(c.Int(flagChunk)),
	}
	if c.Bool(flagDMA) {
		r.Channel = dma.NewSPIChannel()
	}

	d, err := st7789.New(r, &st7789.Config{
		Width:       c.Int(flagWidth),
		Height:      c.Int(flagHeight),
		RowOffset:   c.Int(flagRowOffset),
		Rotation:    rotation,
		ErrorPolicy: policy,
		Logger:      logger,
	})
	if err != nil {
		if closer, ok := tx.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		return err
	}
	defer func() { err = multierr.Append(err, d.Close()) }()
	fmt.Println("using driver:", d)

	start := time.Now()
	if err = d.Init(); err != nil {
		return err
	}
	logger.Info("initialized", zap.Duration("took", time.Since(start)))

	start = time.Now()
	if err = pattern(d); err != nil {
		return err
	}
	fmt.Printf("pattern drawn in %s\n", time.Since(start))

	time.Sleep(c.Duration(flagHold))
	return nil
}

func openTransmitter(c *cli.Context, speed physic.Frequency) (periphconn.Conn, error) {
	if path := c.String(flagSpidev); path != "" {
		s, err := conn.OpenSpidevPath(path)
		if err != nil {
			return nil, err
		}
		if err = multierr.Combine(s.SetMode(spi.Mode0), s.SetBitsPerWord(8), s.SetMaxSpeed(speed)); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	}
	return conn.OpenSPI(&conn.SPIConfig{
		Port:  c.String(flagPort),
		Speed: speed,
		Mode:  spi.Mode0,
		Bits:  8,
	})
}

// pattern draws a border, color bars and a label.
func pattern(d *st7789.Device) error {
	b := d.Bounds()
	if err := d.Clear(pixel.Black); err != nil {
		return err
	}
	if err := draw.Rectangle(d, b, pixel.White); err != nil {
		return err
	}

	var (
		colors = []pixel.CRGB16{pixel.Red, pixel.Green, pixel.Blue, pixel.Yellow, pixel.Cyan, pixel.Magenta}
		inner  = b.Inset(8)
		w      = inner.Dx() / len(colors)
	)
	for i, color := range colors {
		bar := image.Rect(inner.Min.X+i*w, inner.Max.Y-40, inner.Min.X+(i+1)*w, inner.Max.Y)
		if err := draw.RoundedBox(d, bar, 4, color); err != nil {
			return err
		}
	}

	if err := draw.Line(d, inner.Min, image.Pt(inner.Max.X-1, inner.Max.Y-48), pixel.Cyan); err != nil {
		return err
	}
	_, err := draw.Text(d, draw.DefaultFace(24), inner.Min.Add(image.Pt(4, 4)), "ST7789V2", pixel.White, pixel.Black)
	return err
}

func parseRotation(s string) (st7789.Rotation, error) {
	switch s {
	case "", "no", "0":
		return st7789.NoRotation, nil
	case "90", "right", "cw":
		return st7789.Rotate90, nil
	case "180", "flip":
		return st7789.Rotate180, nil
	case "270", "left", "ccw":
		return st7789.Rotate270, nil
	default:
		return 0, fmt.Errorf("invalid rotation %q", s)
	}
}
