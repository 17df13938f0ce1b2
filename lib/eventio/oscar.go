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
	oscarHeaderTokens = 5
	oscarParticleTokens = 12
	urqmdHeaderTokens = 4
	urqmdParticleTokens = 11
	// OSCARRunMarker separates the collision signature from sqrt(s_NN) in
	// an OSCAR1999A run header comment.
	OSCARRunMarker = "nncm"
	// UrQMDRunMarker identifies run header lines in .f19 files.
	UrQMDRunMarker = "UrQMD"
	urqmdRunLines = 3
)

// OSCARParticle is a particle line of an OSCAR file:
//
//    id code state px py pz p0 mass x y z t
//
// Energies are computed from the written mass and charges are looked up in
// the Dictionary.
type OSCARParticle struct {
	ID int32
	PCode int32
	State int32
	P r3.Vec
	// P0 is the written energy. Energy doesn't use it.
	P0 float64
	M float64
	X r3.Vec
	T float64
}

// OSCARBlock is an event of OSCARParticles.
type OSCARBlock = particles.Block[OSCARParticle, *OSCARParticle]

var _ particles.Boostable = &OSCARParticle{ }

func (p *OSCARParticle) Code() int32 { return p.PCode }
func (p *OSCARParticle) Momentum() r3.Vec { return p.P }
func (p *OSCARParticle) Mass(*dict.Dictionary) float64 { return p.M }
func (p *OSCARParticle) IsFinal() bool { return p.State == 0 }

func (p *OSCARParticle) Energy(*dict.Dictionary) float64 {
	return kinematics.Energy(p.M, p.P)
}

func (p *OSCARParticle) ECharge(d *dict.Dictionary) float64 {
	x, _ := d.ECharge(p.PCode)
	return x
}

func (p *OSCARParticle) BCharge(d *dict.Dictionary) float64 {
	x, _ := d.BCharge(p.PCode)
	return x
}

func (p *OSCARParticle) LCharge(d *dict.Dictionary) float64 {
	return d.LCharge(p.PCode)
}

func (p *OSCARParticle) BoostToLab(*dict.Dictionary) {
	e := kinematics.Energy(p.M, p.P)
	p.P = kinematics.BoostToLab(p.P, e, p.M)
	p.P0 = kinematics.Energy(p.M, p.P)
}

// parseOSCARParticle reads a 12-token particle line.
func parseOSCARParticle(r *catio.Reader, p *parser) OSCARParticle {
	return OSCARParticle{
		ID: p.int32(r, 0), PCode: p.int32(r, 1), State: p.int32(r, 2),
		P: p.vec(r, 3), P0: p.float64(r, 6), M: p.float64(r, 7),
		X: p.vec(r, 8), T: p.float64(r, 11),
	}
}

// decodeOSCAR reads OSCAR1999A files. Event headers are
//
//    event npart b phi 0
//
// and '#' comment lines carry the run header, for example
//
//    # (197,79)+(197,79) nncm 200.0
//
// the text before "nncm" being the signature and the following token
// sqrt(s_NN).
func decodeOSCAR(r *catio.Reader, p *parser) (*particles.DataFile, error) {
	ev := newEvents[OSCARParticle](p)

	for r.Next() && p.err == nil {
		if strings.HasPrefix(r.Text(), "#") {
			parseOSCARRunHeader(r, p, &ev.file.Run)
			continue
		}

		switch len(r.Tokens()) {
		case oscarHeaderTokens:
			hd := newHeader()
			hd.ID, hd.NOut = p.int64(r, 0), p.int(r, 1)
			hd.B, hd.Phi = p.float64(r, 2), p.float64(r, 3)
			ev.open(hd)
		case oscarParticleTokens:
			if !ev.active() {
				p.orphan(r)
				continue
			}
			ev.add(parseOSCARParticle(r, p))
		default:
			p.badLine(r, "5 or 12")
		}
	}

	return ev.finish(r)
}

func parseOSCARRunHeader(r *catio.Reader, p *parser, run *particles.RunHeader) {
	comment := strings.TrimLeft(r.Text(), "#")
	before, after, ok := strings.Cut(comment, OSCARRunMarker)
	if !ok { return }

	tok := strings.Fields(after)
	if len(tok) == 0 {
		p.log.Warn("run header has no collision energy", "line", r.Line())
		return
	}
	snn, err := catio.ParseFloat64(tok[0])
	if err != nil {
		p.failToken(r, tok[0], err)
		return
	}
	run.Signature, run.Snn = strings.TrimSpace(before), snn
}

// decodeUrQMD reads the OSC1997A .f19 output of UrQMD. Run header lines,
// among the first three, contain "UrQMD" and end with sqrt(s_NN). Event
// headers are
//
//    event npart b phi
//
// and particle lines are OSCAR particle lines without the state column. All
// particles are final.
func decodeUrQMD(r *catio.Reader, p *parser) (*particles.DataFile, error) {
	ev := newEvents[OSCARParticle](p)

	for r.Next() && p.err == nil {
		if r.Line() <= urqmdRunLines && strings.Contains(r.Text(), UrQMDRunMarker) {
			tok := r.Tokens()
			if len(tok) < 2 { continue }
			snn, err := catio.ParseFloat64(tok[len(tok) - 1])
			if err != nil {
				p.fail(r, len(tok) - 1, err)
				continue
			}
			ev.file.Run = particles.RunHeader{ Signature: r.Text(), Snn: snn }
			continue
		}

		switch len(r.Tokens()) {
		case urqmdHeaderTokens:
			hd := newHeader()
			hd.ID, hd.NOut = p.int64(r, 0), p.int(r, 1)
			hd.B, hd.Phi = p.float64(r, 2), p.float64(r, 3)
			ev.open(hd)
		case urqmdParticleTokens:
			if !ev.active() {
				p.orphan(r)
				continue
			}
			ev.add(OSCARParticle{
				ID: p.int32(r, 0), PCode: p.int32(r, 1), State: 0,
				P: p.vec(r, 2), P0: p.float64(r, 5), M: p.float64(r, 6),
				X: p.vec(r, 7), T: p.float64(r, 10),
			})
		default:
			// Format banners
			if r.Line() <= urqmdRunLines { continue }
			p.badLine(r, "4 or 11")
		}
	}

	return ev.finish(r)
}
