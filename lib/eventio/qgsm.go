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
	qgsmHeaderTokens = 5
	qgsmParticleTokens = 11
	// qgsmRunLines is the number of run header lines at the top of a QGSM
	// file.
	qgsmRunLines = 4
	// QGSMSignatureMarker and QGSMEnergyMarker identify the run header
	// lines holding the signature and sqrt(s_NN).
	QGSMSignatureMarker = "Results of QGSM"
	QGSMEnergyMarker = "sqrt(s)="
)

// QGSMParticle is a particle line of a QGSM file:
//
//    charge lepton strangeness baryon code px py pz pz_lab ? mass
//
// QGSM writes every charge explicitly, so its particles never use the
// Dictionary and are all final.
type QGSMParticle struct {
	Charge, Lepton, Strangeness, Baryon int32
	PCode int32
	P r3.Vec
	// PzLab is the lab-frame pz written by QGSM. It is kept as data and
	// isn't used by BoostToLab.
	PzLab float64
	M float64
}

// QGSMBlock is an event of QGSMParticles.
type QGSMBlock = particles.Block[QGSMParticle, *QGSMParticle]

var _ particles.Boostable = &QGSMParticle{ }

func (p *QGSMParticle) Code() int32 { return p.PCode }
func (p *QGSMParticle) Momentum() r3.Vec { return p.P }
func (p *QGSMParticle) Mass(*dict.Dictionary) float64 { return p.M }
func (p *QGSMParticle) ECharge(*dict.Dictionary) float64 { return float64(p.Charge) }
func (p *QGSMParticle) BCharge(*dict.Dictionary) float64 { return float64(p.Baryon) }
func (p *QGSMParticle) LCharge(*dict.Dictionary) float64 { return float64(p.Lepton) }
func (p *QGSMParticle) IsFinal() bool { return true }

func (p *QGSMParticle) Energy(*dict.Dictionary) float64 {
	return kinematics.Energy(p.M, p.P)
}

// BoostToLab boosts P like every other format does. PzLab is left as it was
// read.
func (p *QGSMParticle) BoostToLab(*dict.Dictionary) {
	p.P = kinematics.BoostToLab(p.P, kinematics.Energy(p.M, p.P), p.M)
}

// decodeQGSM reads QGSM output. The first four lines are the run header,
// with the signature on the line containing "Results of QGSM" and sqrt(s_NN)
// on the line containing "sqrt(s)=", written as "(sqrt(s)= 4.5 GeV)". Event
// headers are
//
//    event npart b bx by
func decodeQGSM(r *catio.Reader, p *parser) (*particles.DataFile, error) {
	ev := newEvents[QGSMParticle](p)

	for r.Next() && p.err == nil {
		if r.Line() <= qgsmRunLines {
			parseQGSMRunHeader(r, p, &ev.file.Run)
			continue
		}

		switch len(r.Tokens()) {
		case qgsmHeaderTokens:
			hd := newHeader()
			hd.ID, hd.NOut = p.int64(r, 0), p.int(r, 1)
			hd.B, hd.Bx, hd.By = p.float64(r, 2), p.float64(r, 3), p.float64(r, 4)
			ev.open(hd)
		case qgsmParticleTokens:
			if !ev.active() {
				p.orphan(r)
				continue
			}
			ev.add(QGSMParticle{
				Charge: p.int32(r, 0), Lepton: p.int32(r, 1),
				Strangeness: p.int32(r, 2), Baryon: p.int32(r, 3),
				PCode: p.int32(r, 4), P: p.vec(r, 5), PzLab: p.float64(r, 8),
				M: p.float64(r, 10),
			})
		default:
			p.badLine(r, "5 or 11")
		}
	}

	return ev.finish(r)
}

func parseQGSMRunHeader(r *catio.Reader, p *parser, run *particles.RunHeader) {
	text := r.Text()
	if strings.Contains(text, QGSMSignatureMarker) {
		run.Signature = text
	}

	_, after, ok := strings.Cut(text, QGSMEnergyMarker)
	if !ok { return }
	value, _, _ := strings.Cut(after, ")")
	value = strings.TrimSpace(value)
	if fields := strings.Fields(value); len(fields) > 0 { value = fields[0] }

	snn, err := catio.ParseFloat64(value)
	if err != nil {
		p.failToken(r, value, err)
		return
	}
	run.Snn = snn
}
