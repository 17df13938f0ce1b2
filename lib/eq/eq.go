/*package eq is a simple package for telling whether two arrays are equal to
one another. It is used by the tests of the other packages.*/
package eq

import (
	"math"
)

// Slices returns true if two arrays have the same length and the same values
// and false otherwise.
func Slices[T comparable](x, y []T) bool {
	if len(x) != len(y) { return false }
	for i := range x {
		if x[i] != y[i] { return false }
	}
	return true
}

// Strings returns true if two []string arrays are the same and false otherwise.
func Strings(x, y []string) bool { return Slices(x, y) }

// Ints returns true if two []int arrays are the same and false otherwise.
func Ints(x, y []int) bool { return Slices(x, y) }

// Float64s returns true if two []float64 arrays are the same and false
// otherwise.
func Float64s(x, y []float64) bool { return Slices(x, y) }

// Float64Eps returns true if x and y are within eps of one another. Two
// infinities of the same sign are equal and NaN equals NaN.
func Float64Eps(x, y, eps float64) bool {
	switch {
	case math.IsNaN(x) || math.IsNaN(y):
		return math.IsNaN(x) && math.IsNaN(y)
	case math.IsInf(x, 0) || math.IsInf(y, 0):
		return x == y
	}
	return x + eps >= y && x - eps <= y
}

// Float64sEps returns true if the two []float64 arrays are within eps of one
// another and false otherwise.
func Float64sEps(x, y []float64, eps float64) bool {
	if len(x) != len(y) { return false }
	for i := range x {
		if !Float64Eps(x[i], y[i], eps) { return false }
	}
	return true
}
