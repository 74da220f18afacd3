package graphics

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// RoundLayoutValue snaps a DIP value to the nearest device pixel at the given
// scale. Values go through 26.6 fixed point so that halves round the same way
// glyph metrics do. Non-finite values and non-positive scales are returned
// unchanged.
func RoundLayoutValue(v, scale float64) float64 {
	if scale <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	px := v * scale
	// Int26_6 overflows past ±2^25; leave such values alone.
	if math.Abs(px) >= 1<<25 {
		return v
	}
	f := fixed.Int26_6(math.Round(px * 64))
	return float64(f.Round()) / scale
}

// RoundSize snaps both dimensions to device pixels.
func RoundSize(s Size, scale float64) Size {
	return Size{
		Width:  RoundLayoutValue(s.Width, scale),
		Height: RoundLayoutValue(s.Height, scale),
	}
}

// RoundOffset snaps both coordinates to device pixels.
func RoundOffset(o Offset, scale float64) Offset {
	return Offset{
		X: RoundLayoutValue(o.X, scale),
		Y: RoundLayoutValue(o.Y, scale),
	}
}
