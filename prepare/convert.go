package prepare

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/disintegration/gift"
	"github.com/ericpauley/go-quantize/quantize"
	"github.com/nfnt/resize"
	"golang.org/x/image/bmp"
)

// Convert reads one source image and writes it as a device-ready BMP. The
// output is always 24-bit: the device ignores color tables, so a paletted
// encoding would decode as garbage.
func (c *Converter) Convert(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("prepare: decoding %s: %w", src, err)
	}

	m = resize.Thumbnail(uint(c.width), uint(c.height), m, resize.Lanczos3)

	if c.grayscale {
		g := gift.New(gift.Grayscale())
		out := image.NewNRGBA(g.Bounds(m.Bounds()))
		g.Draw(out, m)
		m = out
	}

	if c.colors > 0 {
		q := quantize.MedianCutQuantizer{}
		pm := image.NewPaletted(m.Bounds(), q.Quantize(make(color.Palette, 0, c.colors), m))
		draw.Draw(pm, pm.Bounds(), m, m.Bounds().Min, draw.Src)
		m = pm
	}

	// Flatten to RGBA so the encoder emits 24-bit samples; Gray, Paletted
	// and NRGBA inputs would all pick an encoding the device rejects.
	flat := image.NewRGBA(m.Bounds())
	draw.Draw(flat, flat.Bounds(), m, m.Bounds().Min, draw.Src)

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if err := bmp.Encode(out, flat); err != nil {
		out.Close()
		return fmt.Errorf("prepare: encoding %s: %w", dst, err)
	}

	return out.Close()
}
