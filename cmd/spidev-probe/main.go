package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"periph.io/x/conn/v3/physic"

	"github.com/BeatGlow/st7789/conn"
)

func main() {
	app := &cli.App{
		Name:  "spidev-probe",
		Usage: "open a spidev device and print its parameters",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "bus", Usage: "SPI bus", EnvVars: []string{"ST7789_SPI_BUS"}},
			&cli.IntFlag{Name: "device", Usage: "SPI device", EnvVars: []string{"ST7789_SPI_DEVICE"}},
			&cli.StringFlag{Name: "speed", Usage: "set the maximum clock, for example 32MHz"},
		},
		Action: func(c *cli.Context) error {
			dev, err := conn.OpenSpidev(c.Int("bus"), c.Int("device"))
			if err != nil {
				return err
			}
			defer dev.Close()
			fmt.Println("connected using", dev)

			if s := c.String("speed"); s != "" {
				var f physic.Frequency
				if err = f.Set(s); err != nil {
					return err
				}
				if err = dev.SetMaxSpeed(f); err != nil {
					return err
				}
				fmt.Println("changed speed to", dev.MaxSpeed())
			}
			return nil
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}
