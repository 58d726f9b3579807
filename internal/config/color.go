package config

import (
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

// RandomColor picks a pleasant light colour: any hue, saturation in
// [0.5, 0.8), lightness in [0.55, 0.8).
func RandomColor(rng *rand.Rand) string {
	h := rng.Float64() * 360
	s := 0.5 + rng.Float64()*0.3
	l := 0.55 + rng.Float64()*0.25
	return colorful.Hsl(h, s, l).Clamped().Hex()
}

// RGB returns the 8-bit components of a validated hex colour.
func RGB(hex string) (r, g, b uint8, err error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0, 0, 0, &ValidationError{Field: "color", Value: hex, Reason: "must be #rrggbb"}
	}
	r, g, b = c.RGB255()
	return r, g, b, nil
}
