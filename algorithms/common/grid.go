package common

import (
	"math"
)

// Shared grid and index helpers used across the fitting, sampling, and
// plotting packages

// Linspace returns n evenly spaced points from a to b inclusive.
// n <= 0 returns nil; n == 1 returns [a].
func Linspace(a, b float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{a}
	}

	out := make([]float64, n)
	step := (b - a) / float64(n-1)
	for i := range out {
		out[i] = a + float64(i)*step
	}
	// Close the last point exactly so accumulated rounding never leaks past b
	out[n-1] = b
	return out
}

// NearestIndices returns n indices evenly spaced over [0, size-1], each
// rounded to the nearest integer index. n == 1 selects index 0. Indices may
// repeat when n > size; callers that need distinct picks must size the grid
// accordingly.
func NearestIndices(size, n int) []int {
	if size <= 0 || n <= 0 {
		return nil
	}
	if n == 1 {
		return []int{0}
	}

	out := make([]int, n)
	span := float64(size - 1)
	for i := range out {
		// The rounded position is clamped so float error in the spacing
		// arithmetic can never index past the grid
		out[i] = ClampInt(int(math.Round(float64(i)*span/float64(n-1))), 0, size-1)
	}
	return out
}

// Clamp constrains a value to a range
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ClampInt constrains an integer to a range
func ClampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
