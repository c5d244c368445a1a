package vmath

import "gonum.org/v1/gonum/floats/scalar"

// DefaultTolerance is the absolute tolerance used for transform comparison
const DefaultTolerance = 1e-6

// Clamp01 limits t to [0,1]
func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// LerpF linearly interpolates between a and b
func LerpF(a, b, t float64) float64 {
	return a + (b-a)*t
}

// NearlyEqual compares two scalars within an absolute tolerance
func NearlyEqual(a, b, tol float64) bool {
	return scalar.EqualWithinAbs(a, b, tol)
}
