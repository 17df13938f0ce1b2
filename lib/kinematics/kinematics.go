/*package kinematics contains the special-relativistic formulas used by the
analysis: energies, rapidities and z-axis boosts. All momenta are r3.Vec
values in GeV with z along the beam axis, and c = 1.
*/
package kinematics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Momentum returns |p|.
func Momentum(p r3.Vec) float64 { return r3.Norm(p) }

// Energy returns sqrt(m^2 + |p|^2).
func Energy(mass float64, p r3.Vec) float64 {
	return math.Sqrt(mass*mass + r3.Norm2(p))
}

// MassFromEnergy returns sqrt(E^2 - |p|^2). Slightly off-shell particles
// where rounding makes E < |p| are given zero mass.
func MassFromEnergy(energy float64, p r3.Vec) float64 {
	m2 := energy*energy - r3.Norm2(p)
	if m2 <= 0 { return 0 }
	return math.Sqrt(m2)
}

// Theta returns the polar angle between p and the beam axis, in [0, pi].
// It is NaN for p = 0.
func Theta(p r3.Vec) float64 {
	pz := p.Z / r3.Norm(p)
	// |pz| can round past 1 for particles on the beam axis.
	if pz > 1 {
		pz = 1
	} else if pz < -1 {
		pz = -1
	}
	return math.Acos(pz)
}

// Pseudorapidity returns -ln(tan(theta/2)). It is +Inf for particles moving
// along +z and -Inf for particles moving along -z.
func Pseudorapidity(p r3.Vec) float64 {
	theta := Theta(p)
	switch theta {
	case 0: return math.Inf(+1)
	case math.Pi: return math.Inf(-1)
	}
	return -math.Log(math.Tan(theta / 2))
}

// Beta returns the speed |p|/E.
func Beta(energy float64, p r3.Vec) float64 { return r3.Norm(p) / energy }

// Gamma returns the Lorentz factor E/m.
func Gamma(energy, mass float64) float64 { return energy / mass }

// Rapidity returns atanh(beta), the rapidity along the direction of motion.
func Rapidity(energy float64, p r3.Vec) float64 {
	return math.Atanh(Beta(energy, p))
}

// LongitudinalRapidity returns 0.5 ln((E + pz)/(E - pz)), the rapidity along
// the beam axis. It equals the pseudorapidity for massless particles.
func LongitudinalRapidity(energy float64, p r3.Vec) float64 {
	return 0.5 * math.Log((energy + p.Z) / (energy - p.Z))
}

// BoostZ transforms a four-momentum (E, p) into a frame moving with speed
// beta along +z. beta must be in (-1, 1).
func BoostZ(p r3.Vec, energy, beta float64) (r3.Vec, float64) {
	gamma := 1 / math.Sqrt(1 - beta*beta)
	pz := gamma * (p.Z - beta*energy)
	e := gamma * (energy - beta*p.Z)
	return r3.Vec{ X: p.X, Y: p.Y, Z: pz }, e
}

// BoostToLab re-expresses a momentum measured in a particle's center-of-mass
// frame in the lab frame: pz' = gamma*(pz + beta*E), with beta = |p|/E and
// gamma = E/m computed from the particle itself. Massless particles and
// particles at rest are returned unchanged.
func BoostToLab(p r3.Vec, energy, mass float64) r3.Vec {
	if mass <= 0 || energy <= 0 { return p }
	beta, gamma := Beta(energy, p), Gamma(energy, mass)
	return r3.Vec{ X: p.X, Y: p.Y, Z: gamma * (p.Z + beta*energy) }
}
