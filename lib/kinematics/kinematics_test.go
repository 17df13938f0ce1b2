package kinematics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/hepstat/lib/eq"
)

func TestEnergy(t *testing.T) {
	tests := []struct{
		mass float64
		p r3.Vec
		e float64
	} {
		{0, r3.Vec{ }, 0},
		{1, r3.Vec{ }, 1},
		{0, r3.Vec{ X: 3, Y: 4 }, 5},
		{0.938, r3.Vec{ Z: 1 }, math.Sqrt(0.938*0.938 + 1)},
	}

	for i := range tests {
		e := Energy(tests[i].mass, tests[i].p)
		if !eq.Float64Eps(e, tests[i].e, 1e-12) {
			t.Errorf("%d) Expected E = %g, got %g.", i, tests[i].e, e)
		}
		m := MassFromEnergy(e, tests[i].p)
		if !eq.Float64Eps(m, tests[i].mass, 1e-6) {
			t.Errorf("%d) Expected m = %g, got %g.", i, tests[i].mass, m)
		}
	}

	if m := MassFromEnergy(1, r3.Vec{ Z: 1.0000001 }); m != 0 {
		t.Errorf("Expected off-shell mass to be 0, got %g.", m)
	}
}

func TestPseudorapidity(t *testing.T) {
	tests := []struct{
		p r3.Vec
		eta float64
	} {
		{r3.Vec{ X: 1 }, 0},
		{r3.Vec{ Z: 1 }, math.Inf(+1)},
		{r3.Vec{ Z: -2 }, math.Inf(-1)},
		{r3.Vec{ X: 1, Z: 1 }, -math.Log(math.Tan(math.Pi / 8))},
		{r3.Vec{ Y: 1, Z: -1 }, math.Log(math.Tan(math.Pi / 8))},
	}

	for i := range tests {
		eta := Pseudorapidity(tests[i].p)
		if !eq.Float64Eps(eta, tests[i].eta, 1e-12) {
			t.Errorf("%d) Expected eta(%v) = %g, got %g.",
				i, tests[i].p, tests[i].eta, eta)
		}
	}

	if !math.IsNaN(Theta(r3.Vec{ })) {
		t.Errorf("Expected theta of a zero momentum to be NaN.")
	}
}

func TestRapidityLimits(t *testing.T) {
	p := r3.Vec{ X: 0.3, Y: -0.2, Z: 0.7 }

	// Massless: the longitudinal rapidity is the pseudorapidity.
	e := Energy(0, p)
	if y, eta := LongitudinalRapidity(e, p), Pseudorapidity(p);
		!eq.Float64Eps(y, eta, 1e-12) {
		t.Errorf("Expected y = eta for a massless particle, got %g, %g.", y, eta)
	}

	// Heavy: the particle is non-relativistic and the rapidity vanishes.
	small := r3.Scale(1e-4, p)
	e = Energy(1e3, small)
	if y := Rapidity(e, small); !eq.Float64Eps(y, 0, 1e-6) {
		t.Errorf("Expected y ~ 0 for a heavy particle, got %g.", y)
	}
	if y := LongitudinalRapidity(e, small); !eq.Float64Eps(y, 0, 1e-6) {
		t.Errorf("Expected y_z ~ 0 for a heavy particle, got %g.", y)
	}
}

func TestBoostRoundTrip(t *testing.T) {
	tests := []struct{
		p r3.Vec
		mass float64
	} {
		{r3.Vec{ X: 0.1, Y: 0.2, Z: 0.3 }, 0.938},
		{r3.Vec{ Z: -5 }, 0.13957},
		{r3.Vec{ X: 1, Z: 10 }, 0.000511},
	}

	for i := range tests {
		p, m := tests[i].p, tests[i].mass
		e := Energy(m, p)
		beta := p.Z / e

		// Into the frame where pz = 0 and back.
		rest, eRest := BoostZ(p, e, beta)
		if !eq.Float64Eps(rest.Z, 0, 1e-9) {
			t.Errorf("%d) Expected pz = 0 in the comoving frame, got %g.", i, rest.Z)
		}
		if !eq.Float64Eps(Energy(m, rest), eRest, 1e-9) {
			t.Errorf("%d) Boost did not preserve the mass shell.", i)
		}

		back, eBack := BoostZ(rest, eRest, -beta)
		got := []float64{ back.X, back.Y, back.Z, eBack }
		exp := []float64{ p.X, p.Y, p.Z, e }
		if !eq.Float64sEps(got, exp, 1e-9) {
			t.Errorf("%d) Expected %g after round trip, got %g.", i, exp, got)
		}
	}
}

func TestBoostToLab(t *testing.T) {
	p := r3.Vec{ X: 0.5, Y: -0.5, Z: 2 }
	m := 0.938
	e := Energy(m, p)
	beta, gamma := Beta(e, p), Gamma(e, m)

	lab := BoostToLab(p, e, m)
	if lab.X != p.X || lab.Y != p.Y {
		t.Errorf("Expected transverse momentum to be unchanged, got %v.", lab)
	}
	if exp := gamma * (p.Z + beta*e); !eq.Float64Eps(lab.Z, exp, 1e-12) {
		t.Errorf("Expected pz = %g, got %g.", exp, lab.Z)
	}

	if lab := BoostToLab(p, Energy(0, p), 0); lab != p {
		t.Errorf("Expected massless particles to be unchanged, got %v.", lab)
	}
}
