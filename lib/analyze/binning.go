package analyze

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Binning is a partition of [Min, Max) into N bins of equal width.
type Binning struct {
	Min, Max float64
	N int
}

// NewBinning creates a Binning, returning an error if the range is empty or
// there are no bins.
func NewBinning(min, max float64, n int) (Binning, error) {
	if n <= 0 {
		return Binning{ }, fmt.Errorf("A binning needs at least one bin, got %d.", n)
	} else if !(max > min) || math.IsInf(max - min, 0) {
		return Binning{ }, fmt.Errorf("Invalid bin range [%g, %g).", min, max)
	}
	return Binning{ min, max, n }, nil
}

// Width returns the width of a single bin.
func (b Binning) Width() float64 { return (b.Max - b.Min) / float64(b.N) }

// Index returns the bin containing x. Values below Min give -1 and values at
// or above Max give N, so both fall outside of [0, N). NaN gives -1.
func (b Binning) Index(x float64) int {
	if math.IsNaN(x) || x < b.Min { return -1 }
	f := (x - b.Min) / b.Width()
	if f >= float64(b.N) { return b.N }
	return int(f)
}

// Excluded returns a value which Index never places in a bin.
func (b Binning) Excluded() float64 { return b.Max + 2*b.Width() }

// Edges returns the (low, high) edges of every bin.
func (b Binning) Edges() [][2]float64 {
	if b.N < 1 { return nil }
	edges := floats.Span(make([]float64, b.N + 1), b.Min, b.Max)
	out := make([][2]float64, b.N)
	for i := range out { out[i] = [2]float64{ edges[i], edges[i+1] } }
	return out
}
