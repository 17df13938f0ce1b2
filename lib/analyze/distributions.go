package analyze

import (
	"math"

	"github.com/phil-mansfield/hepstat/lib/dict"
	"github.com/phil-mansfield/hepstat/lib/kinematics"
	"github.com/phil-mansfield/hepstat/lib/particles"
)

var (
	// ThetaBins is the default binning of polar angles.
	ThetaBins = Binning{ 0, math.Pi + 0.1, 360 }
	// PseudorapidityBins is the default binning of pseudorapidities.
	PseudorapidityBins = Binning{ -15, 15, 1000 }
)

// Theta bins the polar angle of the particle momentum.
type Theta struct {
	Label string
	Bins Binning
}

func (c Theta) Name() string { return c.Label }
func (c Theta) Binning() Binning { return c.Bins }
func (c Theta) Bin(p particles.Particle, _ *dict.Dictionary) int {
	return c.Bins.Index(kinematics.Theta(p.Momentum()))
}

// Pseudorapidity bins the pseudorapidity of every particle. Particles along
// the beam axis have an infinite pseudorapidity and are never binned.
type Pseudorapidity struct {
	Label string
	Bins Binning
}

func (c Pseudorapidity) Name() string { return c.Label }
func (c Pseudorapidity) Binning() Binning { return c.Bins }
func (c Pseudorapidity) Bin(p particles.Particle, _ *dict.Dictionary) int {
	return c.Bins.Index(kinematics.Pseudorapidity(p.Momentum()))
}

// CodePseudorapidity bins the pseudorapidity of particles whose codes are in
// Codes and excludes all others.
type CodePseudorapidity struct {
	Label string
	Bins Binning
	Codes map[int32]bool
}

// NewCodePseudorapidity creates a CodePseudorapidity which accepts the given
// codes.
func NewCodePseudorapidity(
	label string, bins Binning, codes ...int32,
) CodePseudorapidity {
	set := make(map[int32]bool, len(codes))
	for _, c := range codes { set[c] = true }
	return CodePseudorapidity{ label, bins, set }
}

func (c CodePseudorapidity) Name() string { return c.Label }
func (c CodePseudorapidity) Binning() Binning { return c.Bins }
func (c CodePseudorapidity) Bin(p particles.Particle, _ *dict.Dictionary) int {
	eta := c.Bins.Excluded()
	if c.Codes[p.Code()] { eta = kinematics.Pseudorapidity(p.Momentum()) }
	return c.Bins.Index(eta)
}

// DistributionFunc bins the value of an arbitrary function.
type DistributionFunc struct {
	Label string
	Bins Binning
	F func(p particles.Particle, d *dict.Dictionary) float64
}

func (c DistributionFunc) Name() string { return c.Label }
func (c DistributionFunc) Binning() Binning { return c.Bins }
func (c DistributionFunc) Bin(p particles.Particle, d *dict.Dictionary) int {
	return c.Bins.Index(c.F(p, d))
}

// DefaultDistributions returns the distributions computed when none are
// configured.
func DefaultDistributions() []DistributionCriterion {
	return []DistributionCriterion{
		Theta{ "N(Theta_p)", ThetaBins },
		Pseudorapidity{ "N(Nu)", PseudorapidityBins },
	}
}
