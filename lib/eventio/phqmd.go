package eventio

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/hepstat/lib/catio"
	"github.com/phil-mansfield/hepstat/lib/dict"
	"github.com/phil-mansfield/hepstat/lib/kinematics"
	"github.com/phil-mansfield/hepstat/lib/particles"
)

const (
	phqmdHeaderTokens = 5
	phqmdParticleTokens = 9
)

// PHQMDParticle is a particle line of a PHQMD file:
//
//    code charge px py pz E _ _ id
//
// The mass is derived from the written energy. Baryon and lepton charges are
// looked up in the Dictionary. All particles are final.
type PHQMDParticle struct {
	PCode int32
	Charge int32
	P r3.Vec
	E float64
	ID int32
}

// PHQMDBlock is an event of PHQMDParticles.
type PHQMDBlock = particles.Block[PHQMDParticle, *PHQMDParticle]

var _ particles.Boostable = &PHQMDParticle{ }

func (p *PHQMDParticle) Code() int32 { return p.PCode }
func (p *PHQMDParticle) Momentum() r3.Vec { return p.P }
func (p *PHQMDParticle) Energy(*dict.Dictionary) float64 { return p.E }
func (p *PHQMDParticle) ECharge(*dict.Dictionary) float64 { return float64(p.Charge) }
func (p *PHQMDParticle) IsFinal() bool { return true }

func (p *PHQMDParticle) Mass(*dict.Dictionary) float64 {
	return kinematics.MassFromEnergy(p.E, p.P)
}

func (p *PHQMDParticle) BCharge(d *dict.Dictionary) float64 {
	x, _ := d.BCharge(p.PCode)
	return x
}

func (p *PHQMDParticle) LCharge(d *dict.Dictionary) float64 {
	return d.LCharge(p.PCode)
}

func (p *PHQMDParticle) BoostToLab(*dict.Dictionary) {
	m := kinematics.MassFromEnergy(p.E, p.P)
	p.P = kinematics.BoostToLab(p.P, p.E, m)
	p.E = kinematics.Energy(m, p.P)
}

// decodePHQMD reads PHQMD output. An event header has five tokens, the first
// being the particle count, and is followed by a secondary header line which
// is skipped. PHQMD doesn't number its events, so they're numbered in the
// order they're read.
func decodePHQMD(r *catio.Reader, p *parser) (*particles.DataFile, error) {
	ev := newEvents[PHQMDParticle](p)
	skip := false
	nEvents := int64(0)

	for r.Next() && p.err == nil {
		if skip {
			skip = false
			continue
		}

		switch len(r.Tokens()) {
		case phqmdHeaderTokens:
			hd := newHeader()
			hd.ID, hd.NOut = nEvents, p.int(r, 0)
			nEvents++
			ev.open(hd)
			skip = true
		case phqmdParticleTokens:
			if !ev.active() {
				p.orphan(r)
				continue
			}
			ev.add(PHQMDParticle{
				PCode: p.int32(r, 0), Charge: p.int32(r, 1),
				P: p.vec(r, 2), E: p.float64(r, 5), ID: p.int32(r, 8),
			})
		default:
			p.badLine(r, "5 or 9")
		}
	}

	return ev.finish(r)
}
