package particles

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/hepstat/lib/dict"
	"github.com/phil-mansfield/hepstat/lib/eq"
)

// testParticle carries its own charges so that tests don't need a
// Dictionary.
type testParticle struct {
	code int32
	p r3.Vec
	final bool
}

var _ Boostable = &testParticle{ }

func (p *testParticle) Code() int32 { return p.code }
func (p *testParticle) Momentum() r3.Vec { return p.p }
func (p *testParticle) Mass(*dict.Dictionary) float64 { return 1 }
func (p *testParticle) Energy(*dict.Dictionary) float64 { return 2 }
func (p *testParticle) ECharge(*dict.Dictionary) float64 { return 1 }
func (p *testParticle) BCharge(*dict.Dictionary) float64 { return 0 }
func (p *testParticle) LCharge(*dict.Dictionary) float64 { return 0 }
func (p *testParticle) IsFinal() bool { return p.final }
func (p *testParticle) BoostToLab(*dict.Dictionary) { p.p.Z += 1 }

type testBlock = Block[testParticle, *testParticle]

func newTestFile(format string, codes ...[]int32) *DataFile {
	f := NewDataFile(format)
	for i := range codes {
		b := &testBlock{ Head: EventHeader{ ID: int64(i), NOut: len(codes[i]) } }
		for _, code := range codes[i] {
			b.Particles = append(b.Particles, testParticle{ code: code })
		}
		f.Events = append(f.Events, b)
	}
	return f
}

func TestBlock(t *testing.T) {
	b := &testBlock{ Particles: []testParticle{ { code: 1 }, { code: 2 } } }
	var e Event = b

	if e.Len() != 2 {
		t.Fatalf("Expected 2 particles, got %d.", e.Len())
	}
	if e.At(1).Code() != 2 {
		t.Errorf("Expected At(1).Code() = 2, got %d.", e.At(1).Code())
	}

	e.Header().ID = 7
	if b.Head.ID != 7 {
		t.Errorf("Expected Header() to refer to the stored header.")
	}

	e.At(0).(*testParticle).code = 5
	if b.Particles[0].code != 5 {
		t.Errorf("Expected At() to refer to the stored particle.")
	}
}

func TestPushBack(t *testing.T) {
	f1 := newTestFile("epos", []int32{ 1, 2 }, []int32{ 3 })
	f2 := newTestFile("epos", []int32{ 4 })
	f2.Run = RunHeader{ Signature: "EPOS", Snn: 200 }

	if err := f1.PushBack(f2); err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if f1.Len() != 3 || f1.Particles() != 4 {
		t.Errorf("Expected 3 events and 4 particles, got %d and %d.",
			f1.Len(), f1.Particles())
	}
	if f1.Run.Snn != 200 {
		t.Errorf("Expected the run header to be taken from the second file.")
	}

	f3 := newTestFile("hepmc", []int32{ 5 })
	if err := f1.PushBack(f3); !errors.Is(err, ErrFormatMismatch) {
		t.Errorf("Expected ErrFormatMismatch, got %v.", err)
	}
	if f1.Len() != 3 {
		t.Errorf("Expected a failed PushBack to leave the file unchanged.")
	}
}

func TestIntoBlocks(t *testing.T) {
	f := newTestFile("urqmd", []int32{ 1 }, []int32{ 2, 3 })
	blocks := f.IntoBlocks()
	if len(blocks) != 2 || f.Len() != 0 {
		t.Errorf("Expected 2 blocks and an empty file, got %d and %d.",
			len(blocks), f.Len())
	}
}

func TestCodes(t *testing.T) {
	f := newTestFile("qgsm", []int32{ 3, 1, 3 }, []int32{ -1, 1, 2 })
	codes := f.Codes()
	if !eq.Slices(codes, []int32{ 3, 1, -1, 2 }) {
		t.Errorf("Expected codes [3 1 -1 2], got %d.", codes)
	}
}

func TestBoostToLab(t *testing.T) {
	f := newTestFile("epos", []int32{ 1, 2 }, []int32{ 3 })
	if n := f.BoostToLab(nil); n != 3 {
		t.Errorf("Expected 3 boosted particles, got %d.", n)
	}
	for _, e := range f.Events {
		for i := 0; i < e.Len(); i++ {
			if z := e.At(i).Momentum().Z; z != 1 {
				t.Errorf("Expected boosted pz = 1, got %g.", z)
			}
		}
	}
}
