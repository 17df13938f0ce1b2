package eventio

import (
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/hepstat/lib/catio"
	"github.com/phil-mansfield/hepstat/lib/dict"
	"github.com/phil-mansfield/hepstat/lib/kinematics"
	"github.com/phil-mansfield/hepstat/lib/particles"
)

const (
	hepmcEventTokens = 4
	hepmcWeightTokens = 2
	hepmcParticleTokens = 10
	// HepMCFinalStatus is the status of final-state particles.
	HepMCFinalStatus = 1
)

// HepMCParticle is a "P" line of a HepMC3 ASCII file:
//
//    P id parent pid px py pz e m status
//
// The mass is derived from the written energy. Charges are looked up in the
// Dictionary.
type HepMCParticle struct {
	ID, Parent int32
	PCode int32
	P r3.Vec
	E float64
	// GeneratedMass is the mass written by the generator.
	GeneratedMass float64
	Status int32
}

// HepMCBlock is an event of HepMCParticles.
type HepMCBlock = particles.Block[HepMCParticle, *HepMCParticle]

var _ particles.Boostable = &HepMCParticle{ }

func (p *HepMCParticle) Code() int32 { return p.PCode }
func (p *HepMCParticle) Momentum() r3.Vec { return p.P }
func (p *HepMCParticle) Energy(*dict.Dictionary) float64 { return p.E }
func (p *HepMCParticle) IsFinal() bool { return p.Status == HepMCFinalStatus }

func (p *HepMCParticle) Mass(*dict.Dictionary) float64 {
	return kinematics.MassFromEnergy(p.E, p.P)
}

func (p *HepMCParticle) ECharge(d *dict.Dictionary) float64 {
	x, _ := d.ECharge(p.PCode)
	return x
}

func (p *HepMCParticle) BCharge(d *dict.Dictionary) float64 {
	x, _ := d.BCharge(p.PCode)
	return x
}

func (p *HepMCParticle) LCharge(d *dict.Dictionary) float64 {
	return d.LCharge(p.PCode)
}

func (p *HepMCParticle) BoostToLab(*dict.Dictionary) {
	m := kinematics.MassFromEnergy(p.E, p.P)
	p.P = kinematics.BoostToLab(p.P, p.E, m)
	p.E = kinematics.Energy(m, p.P)
}

// decodeHepMC reads HepMC3 ASCII files. Lines are identified by their first
// token: "E id nvertices nparticles" opens an event, "W weight" sets its
// weight and "P" lines are particles. "HepMC::" lines mark the start and
// end of the listing and close the current event. Every other line type
// (vertices, attributes, units, tools) is ignored.
func decodeHepMC(r *catio.Reader, p *parser) (*particles.DataFile, error) {
	ev := newEvents[HepMCParticle](p)

	for r.Next() && p.err == nil {
		tok := r.Tokens()

		switch {
		case strings.HasPrefix(tok[0], "HepMC"):
			ev.flush()
			if ev.file.Run.Signature == "" && len(tok) > 1 {
				ev.file.Run.Signature = r.Text()
			}
		case tok[0] == "E":
			if len(tok) < hepmcEventTokens {
				p.badLine(r, "4 or more")
				continue
			}
			hd := newHeader()
			hd.ID, hd.NOut = p.int64(r, 1), p.int(r, 3)
			ev.open(hd)
		case tok[0] == "W":
			if len(tok) < hepmcWeightTokens {
				p.badLine(r, "2 or more")
				continue
			}
			if ev.active() { ev.current.Head.Weight = p.float64(r, 1) }
		case tok[0] == "P":
			if len(tok) != hepmcParticleTokens {
				p.badLine(r, "10")
				continue
			}
			if !ev.active() {
				p.orphan(r)
				continue
			}
			ev.add(HepMCParticle{
				ID: p.int32(r, 1), Parent: p.int32(r, 2), PCode: p.int32(r, 3),
				P: p.vec(r, 4), E: p.float64(r, 7),
				GeneratedMass: p.float64(r, 8), Status: p.int32(r, 9),
			})
		}
	}

	return ev.finish(r)
}
