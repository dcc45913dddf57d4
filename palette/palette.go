/*
Package palette maps full-color pixel samples onto the small fixed palette of
a tricolor e-paper panel.

The panel can only show black, white and red so every source pixel has to be
classified into one of the three. Classification is a pure threshold test:
red wins when the red channel strictly dominates the other two and clears the
dominance threshold, otherwise dark pixels become black and everything else
white. The thresholds are tunable independently of the logic.
*/
package palette

import "image/color"

// Color is one of the displayable palette entries.
type Color uint8

const (
	White Color = iota
	Black
	Red
)

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	case Red:
		return "red"
	}
	return "unknown"
}

// RGBA implements color.Color so palette entries can be used anywhere the
// standard image packages expect a color.
func (c Color) RGBA() (r, g, b, a uint32) {
	switch c {
	case Black:
		return color.RGBA{0x00, 0x00, 0x00, 0xff}.RGBA()
	case Red:
		return color.RGBA{0xff, 0x00, 0x00, 0xff}.RGBA()
	default:
		return color.RGBA{0xff, 0xff, 0xff, 0xff}.RGBA()
	}
}

// Colors is the display palette in index order.
var Colors = color.Palette{White, Black, Red}

// Thresholds tunes the classification cut-offs.
type Thresholds struct {
	// RedDominance is the minimum red channel value for a pixel whose red
	// channel is the strict maximum to classify as red.
	RedDominance uint8
	// BlackLuma is the luma value below which a non-red pixel is black.
	BlackLuma uint8
	// Gray is the single cut-off for grayscale samples.
	Gray uint8
}

// DefaultThresholds matches the panel the hardware ships with.
var DefaultThresholds = Thresholds{
	RedDominance: 128,
	BlackLuma:    85,
	Gray:         128,
}

// Luma returns the integer-weighted luma of an RGB sample.
func Luma(r, g, b uint8) uint8 {
	return uint8((int(r)*30 + int(g)*59 + int(b)*11) / 100)
}

// FromRGB classifies an RGB sample.
func FromRGB(r, g, b uint8, t Thresholds) Color {
	if r > t.RedDominance && r > g && r > b {
		return Red
	}
	if Luma(r, g, b) < t.BlackLuma {
		return Black
	}
	return White
}

// FromGray classifies a grayscale sample.
func FromGray(v uint8, t Thresholds) Color {
	if v < t.Gray {
		return Black
	}
	return White
}
