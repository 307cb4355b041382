package charts

import (
	"fmt"
	"math/rand"
	"strconv"
)

// seriesAlpha is applied to every fill color.
const seriesAlpha = 0.7

// Color is an RGB triple with an alpha channel in [0,1].
type Color struct {
	R, G, B uint8
	A       float64
}

// RGBA renders the color as a CSS rgba() value.
func (c Color) RGBA() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

// Hex renders the color as #rrggbb, dropping alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Opaque returns the border variant of a fill color.
func (c Color) Opaque() Color {
	c.A = 1
	return c
}

var palette = []Color{
	{54, 162, 235, seriesAlpha},
	{255, 99, 132, seriesAlpha},
	{75, 192, 192, seriesAlpha},
	{255, 206, 86, seriesAlpha},
	{153, 102, 255, seriesAlpha},
	{255, 159, 64, seriesAlpha},
	{99, 255, 132, seriesAlpha},
	{132, 99, 255, seriesAlpha},
}

// PaletteSize is the number of fixed colors before random ones are generated.
func PaletteSize() int { return len(palette) }

// Colors assigns count fill colors. The first PaletteSize are fixed by index;
// the rest are random with the same alpha.
func Colors(count int) []Color {
	if count <= 0 {
		return nil
	}
	out := make([]Color, count)
	for i := range out {
		if i < len(palette) {
			out[i] = palette[i]
			continue
		}
		out[i] = Color{
			R: uint8(rand.Intn(200)),
			G: uint8(rand.Intn(200)),
			B: uint8(rand.Intn(200)),
			A: seriesAlpha,
		}
	}
	return out
}
