package bmp

import "github.com/bodgit/slideshow/palette"

// Surface is the drawing target for a render. Present is invoked exactly
// once after the last pixel has been written.
type Surface interface {
	Size() (width, height int)
	Clear()
	SetPixel(x, y int, c palette.Color)
	Present() error
}

type renderer struct {
	pixels  []byte
	width   int
	height  int
	depth   int
	topDown bool
	row     int

	thresholds palette.Thresholds
}

// at samples the source pixel at (x, y) in storage coordinates and quantizes
// it. Offsets past the pixel region report ErrTruncated so a file with a
// plausible header but missing data fails instead of rendering garbage.
func (r *renderer) at(x, y int) (palette.Color, error) {
	switch r.depth {
	case 24:
		off := y*r.row + x*3
		if off+3 > len(r.pixels) {
			return 0, ErrTruncated
		}
		// Samples are stored blue, green, red.
		return palette.FromRGB(r.pixels[off+2], r.pixels[off+1], r.pixels[off], r.thresholds), nil
	case 8:
		off := y*r.row + x
		if off >= len(r.pixels) {
			return 0, ErrTruncated
		}
		return palette.FromGray(r.pixels[off], r.thresholds), nil
	case 4:
		off := y*r.row + x/2
		if off >= len(r.pixels) {
			return 0, ErrTruncated
		}
		n := r.pixels[off] >> 4 // high nibble is the leftmost pixel
		if x&1 == 1 {
			n = r.pixels[off] & 0x0f
		}
		return palette.FromGray(n<<4|n, r.thresholds), nil
	default: // 1
		off := y*r.row + x/8
		if off >= len(r.pixels) {
			return 0, ErrTruncated
		}
		if r.pixels[off]>>(7-uint(x&7))&1 == 1 {
			return palette.White, nil
		}
		return palette.Black, nil
	}
}

func (r *renderer) render(dst Surface) error {
	targetW, targetH := dst.Size()

	scale := float64(targetW) / float64(r.width)
	if s := float64(targetH) / float64(r.height); s < scale {
		scale = s
	}

	scaledW := int(float64(r.width) * scale)
	scaledH := int(float64(r.height) * scale)
	offsetX := (targetW - scaledW) / 2
	offsetY := (targetH - scaledH) / 2

	dst.Clear()

	for y := 0; y < scaledH; y++ {
		srcY := int(float64(y) / scale)
		if srcY > r.height-1 {
			srcY = r.height - 1
		}
		if !r.topDown {
			// The common case stores rows bottom-up.
			srcY = r.height - 1 - srcY
		}

		for x := 0; x < scaledW; x++ {
			srcX := int(float64(x) / scale)
			if srcX > r.width-1 {
				srcX = r.width - 1
			}

			c, err := r.at(srcX, srcY)
			if err != nil {
				return err
			}
			dst.SetPixel(offsetX+x, offsetY+y, c)
		}
	}

	return dst.Present()
}

// Render decodes the bitmap in data and draws it scaled and centered onto
// dst. The surface is cleared first and presented once at the end; on any
// error the surface is left unpresented.
func Render(data []byte, dst Surface, thresholds palette.Thresholds) error {
	h, err := ParseHeader(data)
	if err != nil {
		return err
	}

	width, height := abs(h.Width), abs(h.Height)
	if width == 0 || height == 0 {
		return ErrBounds
	}

	if int64(h.DataOffset) > int64(len(data)) {
		return ErrTruncated
	}

	r := renderer{
		pixels:     data[h.DataOffset:],
		width:      width,
		height:     height,
		depth:      int(h.Depth),
		topDown:    h.Height < 0,
		row:        rowBytes(width, int(h.Depth)),
		thresholds: thresholds,
	}

	return r.render(dst)
}
