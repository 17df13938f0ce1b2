/*package dict contains the particle dictionary, which resolves the integer
particle codes written by event generators into masses and charges.

Dictionaries are built from plaintext tables with one particle per line and
sixteen whitespace-separated columns:

   EPOS PDG QGSJET GHEISHA SIBYLL name ifl1 ifl2 ifl3 counter mass charge
   width multiplicity degeneracy status

Lines starting with '!' are comments and the value "99" marks a column as
unknown. Only one of the five code columns is used as the key of a given
Dictionary, selected by its Coding.

A Dictionary is filled by a sequence of loads and is read-only afterwards, so
it can be shared between any number of goroutines once Build (or the last
Load) returns.
*/
package dict

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/phil-mansfield/hepstat/lib/catio"
)

const (
	// Unknown is the table value that marks a column as undefined.
	Unknown = "99"
	// Columns is the number of columns in a dictionary table row.
	Columns = 16
	// CommentPrefix starts a comment line in a dictionary table.
	CommentPrefix = "!"
	// AntiPrefix marks an antiparticle name in CodeOf.
	AntiPrefix = "-"
)

// TableConfig is the layout of dictionary tables. Lines shorter than ten
// characters are skipped without a diagnostic.
var TableConfig = catio.TextConfig{
	Comment: CommentPrefix,
	MinLineLength: 10,
}

var (
	// ErrUnknownCode is returned when neither a code nor its negation is in
	// the Dictionary.
	ErrUnknownCode = errors.New("particle code is not in the dictionary")
	// ErrFieldParse is returned when a table field can't be parsed as its
	// column's numeric type.
	ErrFieldParse = errors.New("dictionary field cannot be parsed")
)

// Coding selects which of the table's code columns is used as the key.
type Coding int
const (
	EPOS Coding = iota
	PDG
	QGSJET
	GHEISHA
	SIBYLL
	numCodings
)

var codingNames = [numCodings]string{ "EPOS", "PDG", "QGSJET", "GHEISHA", "SIBYLL" }

func (c Coding) String() string {
	if c < 0 || c >= numCodings { return fmt.Sprintf("Coding(%d)", int(c)) }
	return codingNames[c]
}

// ParseCoding converts a case-insensitive coding name into a Coding.
func ParseCoding(s string) (Coding, error) {
	for i, name := range codingNames {
		if strings.EqualFold(s, name) { return Coding(i), nil }
	}
	return 0, fmt.Errorf("'%s' is not a particle coding. Valid codings are %s.",
		s, strings.Join(codingNames[:], ", "))
}

// Field identifies a numeric column of the table. Its value is the column
// index.
type Field int
const (
	FieldEPOS Field = iota
	FieldPDG
	FieldQGSJET
	FieldGHEISHA
	FieldSIBYLL
	fieldName
	FieldIFL1
	FieldIFL2
	FieldIFL3
	FieldCounter
	FieldMass
	FieldCharge
	FieldWidth
	FieldMultiplicity
	FieldDegeneracy
	fieldStatus
)

var fieldNames = [Columns]string{
	"id_EPOS", "id_PDG", "id_QGSJET", "id_GHEISHA", "id_SIBYLL", "name",
	"ifl1", "ifl2", "ifl3", "counter", "mass", "charge", "width",
	"multiplicity", "degeneracy", "status",
}

func (f Field) String() string {
	if f < 0 || int(f) >= Columns { return fmt.Sprintf("Field(%d)", int(f)) }
	return fieldNames[f]
}

func (f Field) isFloat() bool {
	return f == FieldMass || f == FieldCharge || f == FieldWidth
}

// Entry is a single row of a dictionary table. Numeric fields which were
// "99" in the table are zero and reported as undefined by Defined.
type Entry struct {
	IDs [numCodings]int32
	Name string
	// Flavors are the quark flavor indicators ifl1, ifl2, ifl3.
	Flavors [3]int32
	Counter int32
	Mass, Charge, Width float64
	Multiplicity, Degeneracy int32
	Status string

	defined uint32
}

// Defined returns true if the field was given a value in the table.
func (e *Entry) Defined(f Field) bool { return e.defined & (1 << uint(f)) != 0 }

// ID returns the entry's code under the given coding.
func (e *Entry) ID(c Coding) (int32, bool) {
	return e.IDs[c], e.Defined(Field(c))
}

// Baryon returns the mean sign of the three quark flavor indicators.
// Undefined indicators count as zero.
func (e *Entry) Baryon() float64 {
	sum := 0.0
	for i, fl := range e.Flavors {
		if !e.Defined(FieldIFL1 + Field(i)) { continue }
		if fl > 0 {
			sum += 1
		} else if fl < 0 {
			sum -= 1
		}
	}
	return sum / 3
}

func (e *Entry) String() string {
	return fmt.Sprintf("%s{EPOS=%d PDG=%d mass=%g charge=%g ifl=%d}",
		e.Name, e.IDs[EPOS], e.IDs[PDG], e.Mass, e.Charge, e.Flavors)
}

// parseEntry parses a single table row which has already been split into
// tokens.
func parseEntry(tok []string) (*Entry, error) {
	e := &Entry{ Name: tok[fieldName], Status: tok[fieldStatus] }

	for col := 0; col < Columns; col++ {
		f := Field(col)
		if f == fieldName || f == fieldStatus || tok[col] == Unknown {
			continue
		}

		if f.isFloat() {
			x, err := catio.ParseFloat64(tok[col])
			if err != nil {
				return nil, fmt.Errorf("%w: column '%s' has value '%s'",
					ErrFieldParse, f, tok[col])
			}
			switch f {
			case FieldMass: e.Mass = x
			case FieldCharge: e.Charge = x
			case FieldWidth: e.Width = x
			}
		} else {
			n, err := catio.ParseInt32(tok[col])
			if err != nil {
				return nil, fmt.Errorf("%w: column '%s' has value '%s'",
					ErrFieldParse, f, tok[col])
			}
			switch {
			case f <= FieldSIBYLL: e.IDs[f] = n
			case f <= FieldIFL3: e.Flavors[f - FieldIFL1] = n
			case f == FieldCounter: e.Counter = n
			case f == FieldMultiplicity: e.Multiplicity = n
			case f == FieldDegeneracy: e.Degeneracy = n
			}
		}
		e.defined |= 1 << uint(col)
	}

	return e, nil
}

// Dictionary maps the particle codes of one Coding to table entries.
type Dictionary struct {
	coding Coding
	entries map[int32]*Entry
	// order holds codes in insertion order so that name lookups are
	// deterministic.
	order []int32
	leptons map[int32]bool
	log *slog.Logger
}

// Option configures a Dictionary.
type Option func(*Dictionary)

// WithLogger sets the logger that receives load diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(d *Dictionary) { if log != nil { d.log = log } }
}

// New creates an empty Dictionary keyed by the given coding. leptons is the
// set of codes flagged as leptons and may be nil.
func New(coding Coding, leptons map[int32]bool, opts ...Option) *Dictionary {
	if leptons == nil { leptons = map[int32]bool{ } }
	d := &Dictionary{
		coding: coding, entries: map[int32]*Entry{ },
		leptons: leptons, log: slog.Default(),
	}
	for _, opt := range opts { opt(d) }
	return d
}

// Upload creates a Dictionary from a single table.
func Upload(
	rd io.Reader, coding Coding, leptons map[int32]bool, opts ...Option,
) (*Dictionary, error) {
	d := New(coding, leptons, opts...)
	if _, err := d.Load(rd); err != nil { return nil, err }
	return d, nil
}

// Build constructs a Dictionary in one pass: the lepton table establishes the
// lepton set, then the main particle table and the optional nuclei table (which
// may be nil) are loaded into it.
func Build(
	coding Coding, leptonTable, particleTable, nucleiTable io.Reader,
	opts ...Option,
) (*Dictionary, error) {
	lep, err := Upload(leptonTable, coding, nil, opts...)
	if err != nil { return nil, fmt.Errorf("lepton table: %w", err) }

	leptons := map[int32]bool{ }
	for _, code := range lep.order { leptons[code] = true }

	d, err := Upload(particleTable, coding, leptons, opts...)
	if err != nil { return nil, fmt.Errorf("particle table: %w", err) }

	if nucleiTable != nil {
		if _, err := d.Load(nucleiTable); err != nil {
			return nil, fmt.Errorf("nuclei table: %w", err)
		}
	}
	return d, nil
}

// Load appends the rows of a table to the Dictionary and returns the number
// of entries added. Existing codes are never overwritten: a row whose code is
// already present is reported as a warning and ignored. Rows without a code
// for the Dictionary's Coding are skipped.
func (d *Dictionary) Load(rd io.Reader) (added int, err error) {
	r := catio.NewReader(rd, TableConfig)

	for r.Next() {
		tok := r.Tokens()
		if len(tok) < Columns {
			d.log.Warn("skipping short dictionary row",
				"line", r.Line(), "tokens", len(tok), "want", Columns)
			continue
		}

		e, err := parseEntry(tok)
		if err != nil { return added, fmt.Errorf("line %d: %w", r.Line(), err) }

		code, ok := e.ID(d.coding)
		if !ok { continue }

		if old, ok := d.entries[code]; ok {
			d.log.Warn("dictionary code already defined, keeping original entry",
				"code", code, "coding", d.coding.String(),
				"original", old.Name, "ignored", e.Name, "line", r.Line())
			continue
		}

		d.entries[code] = e
		d.order = append(d.order, code)
		added++
	}

	if err := r.Err(); err != nil { return added, err }
	return added, nil
}

// Coding returns the coding scheme of the Dictionary's keys.
func (d *Dictionary) Coding() Coding { return d.coding }

// Len returns the number of entries.
func (d *Dictionary) Len() int { return len(d.entries) }

// Codes returns all codes in the Dictionary in increasing order.
func (d *Dictionary) Codes() []int32 {
	out := append([]int32{ }, d.order...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Get returns the entry stored under exactly this code.
func (d *Dictionary) Get(code int32) (*Entry, bool) {
	e, ok := d.entries[code]
	return e, ok
}

// IsLepton returns true if the code is flagged as a lepton.
func (d *Dictionary) IsLepton(code int32) bool { return d.leptons[code] }

// CodeOf returns the code of the first entry with the given name. Names
// starting with AntiPrefix resolve to the negated code of the remaining name.
func (d *Dictionary) CodeOf(name string) (int32, bool) {
	sign := int32(1)
	if strings.HasPrefix(name, AntiPrefix) && len(name) > len(AntiPrefix) {
		if code, ok := d.codeOf(name); ok { return code, true }
		name, sign = name[len(AntiPrefix):], -1
	}

	code, ok := d.codeOf(name)
	return sign*code, ok
}

func (d *Dictionary) codeOf(name string) (int32, bool) {
	for _, code := range d.order {
		if d.entries[code].Name == name { return code, true }
	}
	return 0, false
}

// Resolve finds the entry for a code. If only the negated code is present,
// the particle is that entry's antiparticle and sign is -1. Nuclei without a
// table entry resolve to a nil entry with no error.
func (d *Dictionary) Resolve(code int32) (e *Entry, sign float64, err error) {
	if e, ok := d.entries[code]; ok { return e, 1, nil }
	if e, ok := d.entries[-code]; ok { return e, -1, nil }
	if IsNucleus(code) { return nil, 1, nil }
	return nil, 0, fmt.Errorf("%w: %d (coding %s)", ErrUnknownCode, code, d.coding)
}

// Mass returns the mass of a particle in GeV. Antiparticles share the mass of
// their particle.
func (d *Dictionary) Mass(code int32) (float64, error) {
	e, _, err := d.Resolve(code)
	if err != nil { return 0, err }
	if IsNucleus(code) && (e == nil || !e.Defined(FieldMass)) {
		return float64(NucleusA(code)) * AtomicMassUnit, nil
	}
	return e.Mass, nil
}

// ECharge returns the electric charge of a particle in units of e.
func (d *Dictionary) ECharge(code int32) (float64, error) {
	if IsNucleus(code) { return float64(sign32(code) * NucleusZ(code)), nil }
	e, sign, err := d.Resolve(code)
	if err != nil { return 0, err }
	return sign * e.Charge, nil
}

// BCharge returns the baryon charge of a particle.
func (d *Dictionary) BCharge(code int32) (float64, error) {
	if IsNucleus(code) { return float64(sign32(code) * NucleusA(code)), nil }
	e, sign, err := d.Resolve(code)
	if err != nil { return 0, err }
	return sign * e.Baryon(), nil
}

// LCharge returns the lepton charge of a particle: +1 for codes in the lepton
// set, -1 for their negations and 0 otherwise.
func (d *Dictionary) LCharge(code int32) float64 {
	if d.leptons[code] {
		return 1
	} else if d.leptons[-code] {
		return -1
	}
	return 0
}

// Undefined returns which of the requested fields are undefined for the
// entry a code resolves to. It returns an error if the code can't be
// resolved. Nuclei never have undefined fields.
func (d *Dictionary) Undefined(code int32, fields ...Field) ([]Field, error) {
	e, _, err := d.Resolve(code)
	if err != nil { return nil, err }
	if IsNucleus(code) { return nil, nil }

	var out []Field
	for _, f := range fields {
		if !e.Defined(f) { out = append(out, f) }
	}
	return out, nil
}

func sign32(x int32) int32 {
	if x < 0 { return -1 }
	return 1
}
