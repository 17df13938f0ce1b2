package eventio

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/hepstat/lib/compress"
	"github.com/phil-mansfield/hepstat/lib/kinematics"
	"github.com/phil-mansfield/hepstat/lib/particles"
)

// FakeEvent is an event that can be rendered as OSCAR1999A text for testing
// purposes.
type FakeEvent struct {
	Header particles.EventHeader
	Particles []OSCARParticle
}

// FakeConfig describes randomly generated FakeEvents.
type FakeConfig struct {
	Events, Particles int
	// Codes and Masses give the particle species, which are drawn
	// uniformly.
	Codes []int32
	Masses []float64
	// MaxMomentum is the largest momentum component in GeV.
	MaxMomentum float64
	// NonFinal is the fraction of particles with a non-zero state.
	NonFinal float64
	Seed uint64
}

// NewFakeEvents generates events with uniformly distributed momenta.
func NewFakeEvents(config FakeConfig) []FakeEvent {
	rng := compress.NewRNG(config.Seed)
	events := make([]FakeEvent, config.Events)

	for i := range events {
		hd := newHeader()
		hd.ID, hd.NOut = int64(i + 1), config.Particles
		hd.B = 10*rng.Uniform()
		hd.Phi = 2*math.Pi*rng.Uniform()

		ps := make([]OSCARParticle, config.Particles)
		for j := range ps {
			k := rng.Intn(len(config.Codes))
			p := r3.Vec{
				X: config.MaxMomentum*(2*rng.Uniform() - 1),
				Y: config.MaxMomentum*(2*rng.Uniform() - 1),
				Z: config.MaxMomentum*(2*rng.Uniform() - 1),
			}
			state := int32(0)
			if rng.Uniform() < config.NonFinal { state = 1 }

			ps[j] = OSCARParticle{
				ID: int32(j), PCode: config.Codes[k], State: state, P: p,
				P0: kinematics.Energy(config.Masses[k], p), M: config.Masses[k],
			}
		}

		events[i] = FakeEvent{ Header: hd, Particles: ps }
	}

	return events
}

// WriteOSCAR renders events as an OSCAR1999A stream with the given run
// header.
func WriteOSCAR(w io.Writer, run particles.RunHeader, events []FakeEvent) error {
	buf := bufio.NewWriter(w)

	fmt.Fprintln(buf, "# OSC1999A")
	fmt.Fprintln(buf, "# final_id_p_x")
	fmt.Fprintf(buf, "# %s %s %.6g\n", run.Signature, OSCARRunMarker, run.Snn)

	for _, e := range events {
		hd := e.Header
		fmt.Fprintf(buf, "%d %d %.8g %.8g 0\n", hd.ID, hd.NOut, hd.B, hd.Phi)
		for _, p := range e.Particles {
			fmt.Fprintf(buf, "%d %d %d %.17g %.17g %.17g %.17g %.17g %.8g %.8g %.8g %.8g\n",
				p.ID, p.PCode, p.State, p.P.X, p.P.Y, p.P.Z, p.P0, p.M,
				p.X.X, p.X.Y, p.X.Z, p.T)
		}
	}

	return buf.Flush()
}
