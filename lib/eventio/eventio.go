/*package eventio reads the ASCII output of event generators into
particles.DataFile values.

Each supported grammar is a line-oriented state machine: an event header line
with a fixed token count opens an event and declares its particle count, and
the particle lines which follow are collected into it until the next header
or the end of the stream. Formats differ in their token counts, in whether
they carry a run header and in which quantities they write explicitly.

Recoverable problems (lines with the wrong number of tokens, particles before
the first event header, mismatched particle counts and undefined dictionary
fields) are logged as warnings. Tokens which can't be parsed as numbers are
returned as *ParseError values and particle codes which the Dictionary can't
resolve are returned as dict.ErrUnknownCode. Both stop the upload.
*/
package eventio

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/phil-mansfield/hepstat/lib/catio"
	"github.com/phil-mansfield/hepstat/lib/compress"
	"github.com/phil-mansfield/hepstat/lib/dict"
	"github.com/phil-mansfield/hepstat/lib/particles"
)

var (
	// ErrFieldParse is wrapped by every ParseError.
	ErrFieldParse = errors.New("field cannot be parsed")
	// ErrUnknownFormat is returned for format tags without a decoder.
	ErrUnknownFormat = errors.New("unknown input format")
	// ErrFormatMismatch is returned when files of different formats are
	// merged.
	ErrFormatMismatch = particles.ErrFormatMismatch
)

// ParseError reports a token which couldn't be parsed as the numeric type of
// its column.
type ParseError struct {
	File string
	// Line and Column are 1-based. Column counts tokens, not bytes.
	Line, Column int
	Token string
	Err error
}

func (e *ParseError) Error() string {
	file := e.File
	if file == "" { file = "<stream>" }
	return fmt.Sprintf("%s:%d: column %d ('%s') cannot be parsed: %v",
		file, e.Line, e.Column, e.Token, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ ErrFieldParse, e.Err } }

// Format identifies an input grammar.
type Format int
const (
	// OSCAR is the OSCAR1999A output of EPOS.
	OSCAR Format = iota
	// UrQMD is the OSC1997A (.f19) output of UrQMD.
	UrQMD
	QGSM
	PHQMD
	// HepMC is HepMC3 ASCII.
	HepMC
	numFormats
)

// decoder parses a whole stream into a DataFile.
type decoder func(r *catio.Reader, p *parser) (*particles.DataFile, error)

type formatInfo struct {
	name string
	coding dict.Coding
	// fields are the dictionary fields the format's particles read. Formats
	// with no fields don't use the Dictionary at all.
	fields []dict.Field
	config catio.TextConfig
	decode decoder
}

var (
	flavorFields = []dict.Field{ dict.FieldIFL1, dict.FieldIFL2, dict.FieldIFL3 }
	chargeFields = append([]dict.Field{ dict.FieldCharge }, flavorFields...)

	// Comment lines are handled by the decoders, since some formats hide
	// run headers in them.
	lineConfig = catio.TextConfig{ MaxLineSize: 1<<20 }
)

var formats = [numFormats]formatInfo{
	OSCAR: { "epos", dict.EPOS, chargeFields, lineConfig, decodeOSCAR },
	UrQMD: { "urqmd", dict.PDG, chargeFields, lineConfig, decodeUrQMD },
	QGSM: { "qgsm", dict.PDG, nil, lineConfig, decodeQGSM },
	PHQMD: { "phqmd", dict.PDG, flavorFields, lineConfig, decodePHQMD },
	HepMC: { "hepmc", dict.PDG, chargeFields, lineConfig, decodeHepMC },
}

func (f Format) String() string {
	if f < 0 || f >= numFormats { return fmt.Sprintf("Format(%d)", int(f)) }
	return formats[f].name
}

// Coding returns the particle coding used by the format's files.
func (f Format) Coding() dict.Coding { return formats[f].coding }

// UsesDictionary returns true if the format's particles resolve their
// quantities through a Dictionary.
func (f Format) UsesDictionary() bool { return len(formats[f].fields) > 0 }

// Formats returns the tags of all supported formats.
func Formats() []string {
	out := make([]string, numFormats)
	for i := range formats { out[i] = formats[i].name }
	return out
}

// ParseFormat converts a format tag into a Format.
func ParseFormat(s string) (Format, error) {
	for i := range formats {
		if strings.EqualFold(s, formats[i].name) { return Format(i), nil }
	}
	return 0, fmt.Errorf("%w: '%s'. Valid formats are %s.",
		ErrUnknownFormat, s, strings.Join(Formats(), ", "))
}

// Options configures an upload.
type Options struct {
	Log *slog.Logger
	// Lab boosts every particle to the lab frame after reading.
	Lab bool
	// Name labels the stream in diagnostics.
	Name string
}

// Option modifies Options.
type Option func(*Options)

// WithLogger sets the logger that receives warnings.
func WithLogger(log *slog.Logger) Option {
	return func(o *Options) { if log != nil { o.Log = log } }
}

// WithLabFrame sets whether momenta are boosted to the lab frame.
func WithLabFrame(lab bool) Option { return func(o *Options) { o.Lab = lab } }

// WithName sets the stream name used in diagnostics.
func WithName(name string) Option { return func(o *Options) { o.Name = name } }

func newOptions(opts []Option) Options {
	o := Options{ Log: slog.Default() }
	for _, opt := range opts { opt(&o) }
	return o
}

// Upload reads a single stream of the given format. d may be nil for formats
// which don't use a Dictionary.
func Upload(
	format Format, rd io.Reader, d *dict.Dictionary, opts ...Option,
) (*particles.DataFile, error) {
	if format < 0 || format >= numFormats {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, int(format))
	}
	o := newOptions(opts)
	info := &formats[format]

	if format.UsesDictionary() && d == nil {
		return nil, fmt.Errorf("Format '%s' requires a particle dictionary.",
			info.name)
	}

	p := &parser{ file: o.Name, log: o.Log.With("format", info.name) }
	if o.Name != "" { p.log = p.log.With("file", o.Name) }

	if d != nil && format.UsesDictionary() && d.Coding() != info.coding {
		p.log.Warn("dictionary coding differs from the format's coding",
			"dictionary", d.Coding().String(), "format", info.coding.String())
	}

	file, err := info.decode(catio.NewReader(rd, info.config), p)
	if err != nil { return nil, err }
	file.Format = info.name

	if format.UsesDictionary() {
		if err := validate(file, d, info.fields, p); err != nil { return nil, err }
	}
	if o.Lab {
		n := file.BoostToLab(d)
		p.log.Debug("boosted particles to the lab frame", "particles", n)
	}

	return file, nil
}

// UploadFiles reads each file in turn, decompressing it if needed, and
// merges them into one DataFile.
func UploadFiles(
	format Format, names []string, d *dict.Dictionary, opts ...Option,
) (*particles.DataFile, error) {
	o := newOptions(opts)
	out := particles.NewDataFile(format.String())

	for _, name := range names {
		o.Log.Info("reading file", "file", name, "format", format.String())

		f, err := compress.Open(name)
		if err != nil { return nil, err }

		fileOpts := append(append([]Option{ }, opts...), WithName(name))
		file, err := Upload(format, f, d, fileOpts...)
		f.Close()
		if err != nil { return nil, err }

		if err := out.PushBack(file); err != nil { return nil, err }
	}

	return out, nil
}

// validate checks that every code in file resolves and warns once per code
// about undefined fields.
func validate(
	file *particles.DataFile, d *dict.Dictionary, fields []dict.Field, p *parser,
) error {
	for _, code := range file.Codes() {
		missing, err := d.Undefined(code, fields...)
		if err != nil {
			if p.file != "" { return fmt.Errorf("%s: %w", p.file, err) }
			return err
		}
		if len(missing) == 0 { continue }

		names := make([]string, len(missing))
		for i := range missing { names[i] = missing[i].String() }
		p.log.Warn("using undefined dictionary fields as zero",
			"code", code, "fields", strings.Join(names, ","))
	}
	return nil
}
