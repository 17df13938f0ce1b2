/*package particles contains the format-independent view of simulated
collisions: the Particle and Event interfaces which every input format
implements, and DataFile, which holds all the events read from a run.

Particles resolve their masses and charges through a *dict.Dictionary which
is passed alongside them rather than stored in them, so a single read-only
Dictionary can be shared by every worker.
*/
package particles

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/hepstat/lib/dict"
)

// ErrFormatMismatch is returned when DataFiles of different formats are
// merged.
var ErrFormatMismatch = errors.New("data files have different formats")

// Particle is the capability interface implemented by the particle type of
// each input format. Charges are in units of e and energies in GeV.
type Particle interface {
	// Code returns the particle's code in the coding of its format.
	Code() int32
	// Momentum returns the particle's three-momentum.
	Momentum() r3.Vec
	Mass(d *dict.Dictionary) float64
	Energy(d *dict.Dictionary) float64
	ECharge(d *dict.Dictionary) float64
	BCharge(d *dict.Dictionary) float64
	LCharge(d *dict.Dictionary) float64
	// IsFinal returns true if the particle is part of the final state of
	// its event.
	IsFinal() bool
}

// Boostable is implemented by particles whose momentum can be replaced by
// its lab-frame value. It is only called while a DataFile is being loaded.
type Boostable interface {
	Particle
	BoostToLab(d *dict.Dictionary)
}

// EventHeader contains the per-event values written by a generator.
// Formats which don't write a value leave it at zero, except Weight, which
// defaults to 1.
type EventHeader struct {
	ID int64
	// NOut is the declared number of particles.
	NOut int
	Weight float64
	// B is the impact parameter in fm and (Bx, By) its components.
	B, Bx, By float64
	// Phi is the event-plane angle.
	Phi float64
}

// RunHeader contains the values written once at the start of a file.
type RunHeader struct {
	// Signature is the generator's self-description.
	Signature string
	// Snn is the center-of-mass energy per nucleon pair in GeV. It is zero
	// if the file doesn't record it.
	Snn float64
}

// Event is a single simulated collision.
type Event interface {
	Header() *EventHeader
	// Len returns the number of particles in the event.
	Len() int
	// At returns the i-th particle. The returned value refers to the
	// particle stored in the event.
	At(i int) Particle
}

// Block is an Event which stores its particles in a slice of a concrete
// particle type T, whose pointer type PT implements Particle.
type Block[T any, PT interface{ *T; Particle }] struct {
	Head EventHeader
	Particles []T
}

func (b *Block[T, PT]) Header() *EventHeader { return &b.Head }
func (b *Block[T, PT]) Len() int { return len(b.Particles) }
func (b *Block[T, PT]) At(i int) Particle { return PT(&b.Particles[i]) }

// DataFile holds every event read from one or more input streams of a single
// format.
type DataFile struct {
	Format string
	Run RunHeader
	Events []Event
}

// NewDataFile creates an empty DataFile of the given format.
func NewDataFile(format string) *DataFile {
	return &DataFile{ Format: format }
}

// PushBack appends the events of other to f. The run header of f is kept
// unless f has none yet.
func (f *DataFile) PushBack(other *DataFile) error {
	if other.Format != f.Format {
		return fmt.Errorf("%w: cannot append '%s' events to '%s' events",
			ErrFormatMismatch, other.Format, f.Format)
	}
	if f.Run == (RunHeader{ }) { f.Run = other.Run }
	f.Events = append(f.Events, other.Events...)
	return nil
}

// IntoBlocks transfers ownership of the events to the caller. f is empty
// afterwards.
func (f *DataFile) IntoBlocks() []Event {
	events := f.Events
	f.Events = nil
	return events
}

// Len returns the number of events.
func (f *DataFile) Len() int { return len(f.Events) }

// Particles returns the total number of particles over all events.
func (f *DataFile) Particles() int {
	n := 0
	for _, e := range f.Events { n += e.Len() }
	return n
}

// BoostToLab replaces the momentum of every Boostable particle by its
// lab-frame value and returns the number of particles boosted.
func (f *DataFile) BoostToLab(d *dict.Dictionary) int {
	n := 0
	for _, e := range f.Events {
		for i := 0; i < e.Len(); i++ {
			if p, ok := e.At(i).(Boostable); ok {
				p.BoostToLab(d)
				n++
			}
		}
	}
	return n
}

// Codes returns the distinct particle codes in f, in order of first
// appearance.
func (f *DataFile) Codes() []int32 {
	seen := map[int32]bool{ }
	var out []int32
	for _, e := range f.Events {
		for i := 0; i < e.Len(); i++ {
			code := e.At(i).Code()
			if !seen[code] {
				seen[code] = true
				out = append(out, code)
			}
		}
	}
	return out
}
