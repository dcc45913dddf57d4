package display

import (
	"image"
	"image/color"

	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/devices/v3/waveshare2in13v4"

	"github.com/bodgit/slideshow/palette"
)

// Waveshare drives a Waveshare 2.13" e-paper HAT. Drawing happens in the
// embedded FrameBuffer; Present pushes the whole buffer to the panel.
//
// The panel is monochrome, so red pixels are shown as black. The tricolor
// buffer is kept so the same rendered output can drive a tricolor panel or
// the preview tooling unchanged.
type Waveshare struct {
	*FrameBuffer
	dev  *waveshare2in13v4.Dev
	port spi.PortCloser
}

// OpenWaveshare opens the default SPI port and initializes the panel.
// periph's host must already be initialized.
func OpenWaveshare() (*Waveshare, error) {
	port, err := spireg.Open("")
	if err != nil {
		return nil, err
	}

	opts := waveshare2in13v4.EPD2in13v4
	dev, err := waveshare2in13v4.NewHat(port, &opts)
	if err != nil {
		port.Close()
		return nil, err
	}

	if err := dev.Init(); err != nil {
		port.Close()
		return nil, err
	}

	b := dev.Bounds()
	return &Waveshare{
		FrameBuffer: NewFrameBuffer(b.Dx(), b.Dy()),
		dev:         dev,
		port:        port,
	}, nil
}

// Present refreshes the panel with the buffer contents.
func (d *Waveshare) Present() error {
	b := d.dev.Bounds()
	img := image1bit.NewVerticalLSB(b)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if d.Pixel(x, y) == palette.White {
				img.SetBit(x, y, image1bit.On)
			}
		}
	}

	return d.dev.Draw(b, img, image.Point{})
}

// Close blanks the panel into its low-power state and releases the SPI
// port.
func (d *Waveshare) Close() error {
	if err := d.dev.Clear(color.White); err != nil {
		d.port.Close()
		return err
	}
	if err := d.dev.Sleep(); err != nil {
		d.port.Close()
		return err
	}
	if err := d.dev.Halt(); err != nil {
		d.port.Close()
		return err
	}
	return d.port.Close()
}
