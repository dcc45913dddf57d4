/*
Package bmp implements a decoder for uncompressed Windows bitmap files that
renders them scaled onto a small fixed-palette display surface.

Only the plain BITMAPINFOHEADER container is handled, at 1, 4, 8 and 24 bits
per pixel with no compression. Rather than producing an intermediate image,
decoding draws straight onto a Surface: the bitmap is scaled uniformly to fit
the surface, centered, and every sample is quantized to the display palette
on the way through. This keeps the peak memory at one file buffer, which is
what the target hardware can afford.
*/
package bmp

import (
	"encoding/binary"
	"errors"
)

const (
	// headerSize covers the file header plus BITMAPINFOHEADER.
	headerSize = 54

	signature = 0x4d42 // "BM"
)

var (
	ErrTooShort   = errors.New("bmp: file shorter than header")
	ErrSignature  = errors.New("bmp: bad signature")
	ErrBitDepth   = errors.New("bmp: unsupported bit depth")
	ErrCompressed = errors.New("bmp: compressed data is not supported")
	ErrTruncated  = errors.New("bmp: pixel data truncated")
	ErrBounds     = errors.New("bmp: image has no pixels")
)

// Header holds the fixed-layout fields of the bitmap container.
type Header struct {
	FileSize    uint32
	DataOffset  uint32
	Width       int32
	Height      int32
	Planes      uint16
	Depth       uint16
	Compression uint32
	ColorsUsed  uint32
}

// ParseHeader validates and extracts the container header. The dimension
// fields keep their sign; a negative height means rows are stored top-down.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < headerSize {
		return Header{}, ErrTooShort
	}

	if binary.LittleEndian.Uint16(data) != signature {
		return Header{}, ErrSignature
	}

	h := Header{
		FileSize:    binary.LittleEndian.Uint32(data[2:]),
		DataOffset:  binary.LittleEndian.Uint32(data[10:]),
		Width:       int32(binary.LittleEndian.Uint32(data[18:])),
		Height:      int32(binary.LittleEndian.Uint32(data[22:])),
		Planes:      binary.LittleEndian.Uint16(data[26:]),
		Depth:       binary.LittleEndian.Uint16(data[28:]),
		Compression: binary.LittleEndian.Uint32(data[30:]),
		ColorsUsed:  binary.LittleEndian.Uint32(data[46:]),
	}

	switch h.Depth {
	case 1, 4, 8, 24:
	default:
		return Header{}, ErrBitDepth
	}

	if h.Compression != 0 {
		return Header{}, ErrCompressed
	}

	return h, nil
}

// Config describes the decoded geometry of a bitmap.
type Config struct {
	Width   int
	Height  int
	Depth   int
	TopDown bool
}

// DecodeConfig returns the dimensions and depth of the bitmap in data
// without rendering it.
func DecodeConfig(data []byte) (Config, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Width:   abs(h.Width),
		Height:  abs(h.Height),
		Depth:   int(h.Depth),
		TopDown: h.Height < 0,
	}, nil
}

func abs(v int32) int {
	if v < 0 {
		return int(-v)
	}
	return int(v)
}

// rowBytes returns the padded length of one pixel row; rows are aligned to a
// 4-byte boundary regardless of depth.
func rowBytes(width, depth int) int {
	switch depth {
	case 24:
		return (width*3 + 3) &^ 3
	case 8:
		return (width + 3) &^ 3
	case 4:
		return ((width+1)/2 + 3) &^ 3
	default: // 1
		return ((width+7)/8 + 3) &^ 3
	}
}
