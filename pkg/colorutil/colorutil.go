// Package colorutil provides shared color utilities for the photo booth.
package colorutil

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Common colors used throughout the application.
var (
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}

	Pink400  = color.RGBA{R: 0xF4, G: 0x72, B: 0xB6, A: 255}
	Pink500  = color.RGBA{R: 0xEC, G: 0x48, B: 0x99, A: 255}
	Blue400  = color.RGBA{R: 0x60, G: 0xA5, B: 0xFA, A: 255}
	Green400 = color.RGBA{R: 0x4A, G: 0xDE, B: 0x80, A: 255}
)

// BorderPalette is the set of highlight colors the preview border cycles through.
func BorderPalette() []color.RGBA {
	return []color.RGBA{Pink400, Blue400, Green400}
}

// ParseHex parses "#RRGGBB", "#RRGGBBAA" or the short "#RGB" form. The
// alpha of the 8-digit form is non-premultiplied.
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	// Hex alpha is straight; color.RGBA is premultiplied.
	c := color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}
	return color.RGBAModel.Convert(c).(color.RGBA), nil
}

// Hex formats a color as "#RRGGBB".
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
