/*
Package display implements drawing surfaces for the slideshow.

FrameBuffer is the in-memory tricolor surface everything renders into; it
doubles as an image.Image so the standard image packages, tests and the
preview tooling can read it back. The e-paper device backend embeds one and
pushes its contents to the panel on Present.
*/
package display

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/bodgit/slideshow/palette"
)

// FrameBuffer is a tricolor drawing surface.
type FrameBuffer struct {
	pm *image.Paletted
}

// NewFrameBuffer returns a cleared surface of the given size.
func NewFrameBuffer(width, height int) *FrameBuffer {
	// Index 0 of the palette is white, so a fresh Paletted is already
	// cleared.
	return &FrameBuffer{
		pm: image.NewPaletted(image.Rect(0, 0, width, height), palette.Colors),
	}
}

// Size returns the surface dimensions in pixels.
func (f *FrameBuffer) Size() (int, int) {
	b := f.pm.Bounds()
	return b.Dx(), b.Dy()
}

// Bounds implements image.Image.
func (f *FrameBuffer) Bounds() image.Rectangle { return f.pm.Bounds() }

// ColorModel implements image.Image.
func (f *FrameBuffer) ColorModel() color.Model { return f.pm.ColorModel() }

// At implements image.Image.
func (f *FrameBuffer) At(x, y int) color.Color { return f.pm.At(x, y) }

// Clear resets every pixel to white.
func (f *FrameBuffer) Clear() {
	for i := range f.pm.Pix {
		f.pm.Pix[i] = 0
	}
}

// SetPixel writes one pixel. Writes outside the surface are ignored.
func (f *FrameBuffer) SetPixel(x, y int, c palette.Color) {
	if !(image.Point{X: x, Y: y}.In(f.pm.Rect)) {
		return
	}
	f.pm.SetColorIndex(x, y, uint8(c))
}

// Pixel reads one pixel back; out of range reads are white.
func (f *FrameBuffer) Pixel(x, y int) palette.Color {
	if !(image.Point{X: x, Y: y}.In(f.pm.Rect)) {
		return palette.White
	}
	return palette.Color(f.pm.ColorIndexAt(x, y))
}

// DrawText draws s in black with the dot at (x, y). Used for the loading,
// error and status overlays only.
func (f *FrameBuffer) DrawText(x, y int, s string) {
	d := font.Drawer{
		Dst:  f.pm,
		Src:  image.NewUniform(palette.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// Present is a no-op for the bare buffer; device backends override it.
func (f *FrameBuffer) Present() error { return nil }
