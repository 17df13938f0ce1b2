package compress

import (
	"math"
)

var (
	xorshiftMaxUint = float64(math.MaxUint32)
)

// RNG is an xorshift random number generator used to build synthetic event
// streams for tests and benchmarks. It is not thread safe.
type RNG struct {
	w, x, y, z uint32
}

// NewRNG initializes an RNG with a given seed.
func NewRNG(seed uint64) *RNG {
	return &RNG{ uint32(seed), 123456789, 362436069, 521288629 }
}

func (gen *RNG) next() uint32 {
	t := gen.x ^ (gen.x << 11)
	gen.x, gen.y, gen.z = gen.y, gen.z, gen.w
	gen.w = gen.w ^ (gen.w >> 19) ^ (t ^ (t >> 8))
	return gen.w
}

// Uniform generates a single random number in the range [0, 1).
func (gen *RNG) Uniform() float64 {
	for {
		res := float64(math.MaxUint32 - gen.next()) / xorshiftMaxUint
		if res < 1 { return res }
	}
}

// UniformSequence generates one random number in the range [0, 1) for each
// element of the array target and writes them to that array.
func (gen *RNG) UniformSequence(target []float64) {
	for i := range target { target[i] = gen.Uniform() }
}

// Intn returns a random integer in [0, n).
func (gen *RNG) Intn(n int) int {
	return int(gen.Uniform() * float64(n))
}
