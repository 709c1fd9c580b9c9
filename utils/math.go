// Package utils contains small numeric helpers shared across packages.
package utils

import (
	"math"
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// Square returns n*n; math.Pow(x, 2) is slow.
func Square(n float64) float64 {
	return n * n
}

// Float64AlmostEqual compares two float64s and returns if the difference between them is less than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

// Float64RelAlmostEqual is like Float64AlmostEqual but the tolerance is relative to the larger
// magnitude of the two values. Values near zero fall back to comparing against epsilon directly.
func Float64RelAlmostEqual(a, b, epsilon float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= epsilon*scale
}

// ClampF64 limits v to the range [lo, hi].
func ClampF64(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MinF64 returns the smallest of the given values, or +Inf when none are given.
func MinF64(vals ...float64) float64 {
	m := math.Inf(1)
	for _, v := range vals {
		m = math.Min(m, v)
	}
	return m
}
