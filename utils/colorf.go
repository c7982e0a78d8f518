package utils

import (
	"fmt"
	"image/color"
)

// ColorFloat is a straight alpha color with components in [0, 1].
type ColorFloat [4]float32

func (c *ColorFloat) RGBA() (r, g, b, a uint32) {
	const mf = float32(256*256 - 1)
	r = uint32(c[0] * c[3] * mf)
	g = uint32(c[1] * c[3] * mf)
	b = uint32(c[2] * c[3] * mf)
	a = uint32(c[3] * mf)
	return
}

func NewColorFloat(c color.RGBA) ColorFloat {
	return ColorFloat{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
}

func ColorHex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
