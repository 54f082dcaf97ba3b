package kaleidoscope

import (
	"math"

	"golang.org/x/exp/constraints"
)

func clamp[N constraints.Integer | constraints.Float](n, minN, maxN N) N {
	return max(min(n, maxN), minN)
}

func lerp[F constraints.Float](a, b, t F) F {
	return a + (b-a)*t
}

// glslMod matches GLSL's mod(x, y) = x - y*floor(x/y), whose result takes
// the sign of y. math.Mod takes the sign of x, which breaks the wedge fold
// for negative angles.
func glslMod(x, y float64) float64 {
	return x - y*math.Floor(x/y)
}

// fract returns the fractional part of x in [0, 1), matching GLSL fract.
func fract(x float64) float64 {
	return x - math.Floor(x)
}

// finitePositive reports whether v is a usable positive factor.
func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
