// Package pixel implements the RGB565 color and image types used by the ST7789 driver.
//
// The types are compatible with Go's native [color.Color] and [image.Image] / [draw.Image]
// interfaces. Pixel sources handed to the driver are [iter.Seq] values in row-major order.
package pixel
