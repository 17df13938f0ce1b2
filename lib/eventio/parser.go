package eventio

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/hepstat/lib/catio"
	"github.com/phil-mansfield/hepstat/lib/particles"
)

// parser holds the state shared by all the decoders: the stream's name, its
// logger and the first field error of the current line. Field reads after an
// error are no-ops, so a decoder can read a whole line and check err once.
type parser struct {
	file string
	log *slog.Logger
	err error
}

func (p *parser) fail(r *catio.Reader, col int, err error) {
	if p.err != nil { return }
	p.err = &ParseError{
		File: p.file, Line: r.Line(), Column: col + 1,
		Token: r.Tokens()[col], Err: err,
	}
}

// failToken reports an error for a token found by content rather than by
// column. Column is 0 if the token isn't a whole field of the line.
func (p *parser) failToken(r *catio.Reader, tok string, err error) {
	for col := range r.Tokens() {
		if r.Tokens()[col] == tok {
			p.fail(r, col, err)
			return
		}
	}
	if p.err != nil { return }
	p.err = &ParseError{ File: p.file, Line: r.Line(), Token: tok, Err: err }
}

func (p *parser) int32(r *catio.Reader, col int) int32 {
	if p.err != nil { return 0 }
	x, err := catio.ParseInt32(r.Tokens()[col])
	if err != nil { p.fail(r, col, err) }
	return x
}

func (p *parser) int(r *catio.Reader, col int) int {
	return int(p.int32(r, col))
}

func (p *parser) int64(r *catio.Reader, col int) int64 {
	if p.err != nil { return 0 }
	x, err := catio.ParseInt64(r.Tokens()[col])
	if err != nil { p.fail(r, col, err) }
	return x
}

func (p *parser) float64(r *catio.Reader, col int) float64 {
	if p.err != nil { return 0 }
	x, err := catio.ParseFloat64(r.Tokens()[col])
	if err != nil { p.fail(r, col, err) }
	return x
}

// vec reads three consecutive columns starting at col.
func (p *parser) vec(r *catio.Reader, col int) r3.Vec {
	return r3.Vec{
		X: p.float64(r, col), Y: p.float64(r, col + 1), Z: p.float64(r, col + 2),
	}
}

// badLine reports a line that doesn't fit the grammar.
func (p *parser) badLine(r *catio.Reader, want string) {
	p.log.Warn("skipping malformed line",
		"line", r.Line(), "tokens", len(r.Tokens()), "want", want)
}

// orphan reports a particle line which appears before any event header.
func (p *parser) orphan(r *catio.Reader) {
	p.log.Warn("skipping particle line outside of an event", "line", r.Line())
}

// maxPrealloc caps the number of particles allocated up front for an event.
// Headers can declare any count, and counts aren't trusted.
const maxPrealloc = 1 << 16

// events collects Blocks of a single particle type while a stream is being
// parsed.
type events[T any, PT interface{ *T; particles.Particle }] struct {
	p *parser
	file *particles.DataFile
	current *particles.Block[T, PT]
}

func newEvents[T any, PT interface{ *T; particles.Particle }](
	p *parser,
) *events[T, PT] {
	return &events[T, PT]{ p: p, file: particles.NewDataFile("") }
}

// open flushes the current event and starts a new one.
func (ev *events[T, PT]) open(hd particles.EventHeader) {
	ev.flush()
	ev.current = &particles.Block[T, PT]{ Head: hd }
	if hd.NOut > 0 {
		ev.current.Particles = make([]T, 0, min(hd.NOut, maxPrealloc))
	}
}

// active returns true if there's an event to add particles to.
func (ev *events[T, PT]) active() bool { return ev.current != nil }

func (ev *events[T, PT]) add(x T) {
	ev.current.Particles = append(ev.current.Particles, x)
}

// flush appends the current event to the file, if there is one.
func (ev *events[T, PT]) flush() {
	if ev.current == nil { return }
	b := ev.current
	if b.Head.NOut != len(b.Particles) {
		ev.p.log.Warn("particle count does not match event header",
			"event", b.Head.ID, "declared", b.Head.NOut,
			"read", len(b.Particles))
	}
	ev.file.Events = append(ev.file.Events, b)
	ev.current = nil
}

// finish flushes the last event and returns the DataFile, or the first
// parse or read error.
func (ev *events[T, PT]) finish(r *catio.Reader) (*particles.DataFile, error) {
	if ev.p.err != nil { return nil, ev.p.err }
	if err := r.Err(); err != nil { return nil, err }
	ev.flush()
	return ev.file, nil
}

func newHeader() particles.EventHeader {
	return particles.EventHeader{ Weight: 1 }
}
