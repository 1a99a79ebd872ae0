package util

import "math"

func Clamp32(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func Abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func Copysign32(x, y float32) float32 {
	return float32(math.Copysign(float64(x), float64(y)))
}
