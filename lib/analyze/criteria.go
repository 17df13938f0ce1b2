/*package analyze reduces events to physics observables. Scalar criteria are
summed over the particles of each event and give one row of numbers per
event. Distribution criteria sort particles into bins and give one
histogram per criterion for the whole run.

Criteria are interfaces, so user code can add new ones without touching the
Analyzer. The criteria in this file and in distributions.go are the
standard set.
*/
package analyze

import (
	"math"
	"strconv"

	"github.com/phil-mansfield/hepstat/lib/dict"
	"github.com/phil-mansfield/hepstat/lib/kinematics"
	"github.com/phil-mansfield/hepstat/lib/particles"
)

// ChargeThreshold is the smallest |electric charge| counted by the charged
// particle criteria.
const ChargeThreshold = 0.1

// Filter decides whether a particle is seen by any criterion. It is called
// once per particle per Compute call from many goroutines at once.
type Filter func(p particles.Particle, d *dict.Dictionary) bool

// IsFinal accepts final-state particles.
func IsFinal(p particles.Particle, _ *dict.Dictionary) bool { return p.IsFinal() }

// All accepts every particle.
func All(particles.Particle, *dict.Dictionary) bool { return true }

// ScalarCriterion is summed over the filtered particles of an event.
type ScalarCriterion interface {
	// Name is the column header of the criterion.
	Name() string
	Value(p particles.Particle, d *dict.Dictionary) float64
}

// DistributionCriterion sorts particles into the bins of a Binning. A bin
// index outside [0, Binning().N) excludes the particle.
type DistributionCriterion interface {
	Name() string
	Binning() Binning
	Bin(p particles.Particle, d *dict.Dictionary) int
}

// Standard scalar criteria.
type (
	// FinEnergy sums particle energies.
	FinEnergy struct{ }
	// ECharge sums electric charge.
	ECharge struct{ }
	// BCharge sums baryon charge.
	BCharge struct{ }
	// LCharge sums lepton charge.
	LCharge struct{ }
	// FinCnt counts final-state particles.
	FinCnt struct{ }
	// ChargedFinCnt counts charged final-state particles.
	ChargedFinCnt struct{ }
)

func (FinEnergy) Name() string { return "FinEnergy" }
func (ECharge) Name() string { return "ECharge" }
func (BCharge) Name() string { return "BCharge" }
func (LCharge) Name() string { return "LCharge" }
func (FinCnt) Name() string { return "FinCnt" }
func (ChargedFinCnt) Name() string { return "ChargedFinCnt" }

func (FinEnergy) Value(p particles.Particle, d *dict.Dictionary) float64 {
	return p.Energy(d)
}
func (ECharge) Value(p particles.Particle, d *dict.Dictionary) float64 {
	return p.ECharge(d)
}
func (BCharge) Value(p particles.Particle, d *dict.Dictionary) float64 {
	return p.BCharge(d)
}
func (LCharge) Value(p particles.Particle, d *dict.Dictionary) float64 {
	return p.LCharge(d)
}
func (FinCnt) Value(p particles.Particle, _ *dict.Dictionary) float64 {
	return indicator(p.IsFinal())
}
func (ChargedFinCnt) Value(p particles.Particle, d *dict.Dictionary) float64 {
	return indicator(p.IsFinal() && isCharged(p, d))
}

// PseudorapidityFilterCnt counts charged final-state particles with a
// pseudorapidity in [Min, Max].
type PseudorapidityFilterCnt struct {
	Min, Max float64
}

func (c PseudorapidityFilterCnt) Name() string {
	return "PseudorapidityFilterCnt(" + formatParam(c.Min) + ", " +
		formatParam(c.Max) + ")"
}

func (c PseudorapidityFilterCnt) Value(
	p particles.Particle, d *dict.Dictionary,
) float64 {
	if !p.IsFinal() || !isCharged(p, d) { return 0 }
	eta := kinematics.Pseudorapidity(p.Momentum())
	return indicator(eta >= c.Min && eta <= c.Max)
}

// ScalarFunc turns a function into a ScalarCriterion.
type ScalarFunc struct {
	Label string
	F func(p particles.Particle, d *dict.Dictionary) float64
}

func (c ScalarFunc) Name() string { return c.Label }
func (c ScalarFunc) Value(p particles.Particle, d *dict.Dictionary) float64 {
	return c.F(p, d)
}

// StandardScalars returns the standard scalar criteria by name.
func StandardScalars() map[string]ScalarCriterion {
	out := map[string]ScalarCriterion{ }
	for _, c := range []ScalarCriterion{
		FinEnergy{ }, ECharge{ }, BCharge{ }, LCharge{ },
		FinCnt{ }, ChargedFinCnt{ },
	} {
		out[c.Name()] = c
	}
	return out
}

// DefaultScalars returns the criteria computed when none are configured.
func DefaultScalars() []ScalarCriterion {
	return []ScalarCriterion{
		FinEnergy{ }, ECharge{ }, BCharge{ }, LCharge{ },
		PseudorapidityFilterCnt{ -0.5, 0.5 },
		PseudorapidityFilterCnt{ -1, 1 },
		PseudorapidityFilterCnt{ -1.5, 1.5 },
	}
}

func isCharged(p particles.Particle, d *dict.Dictionary) bool {
	return math.Abs(p.ECharge(d)) > ChargeThreshold
}

func indicator(b bool) float64 {
	if b { return 1 }
	return 0
}

// formatParam prints whole numbers with a trailing ".0" so that column
// names stay the same as in older result files.
func formatParam(x float64) string {
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if x == math.Trunc(x) && !math.IsInf(x, 0) { s += ".0" }
	return s
}
