/*package catio reads whitespace-separated text tables line by line. It is
used for both the particle dictionary tables and the generator output files,
which share the same basic layout: one record per line, with comment lines
and short filler lines mixed in.
*/
package catio

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"
)

// TextConfig contains information neccessary for tokenizing a table.
type TextConfig struct {
	// Comment is the prefix of comment lines. Comment lines are skipped
	// unless it's empty.
	Comment string
	// MinLineLength is the length below which trimmed lines are skipped.
	// Empty lines are always skipped.
	MinLineLength int
	// SkipLines is the number of lines to skip at the start of the file.
	SkipLines int
	// MaxLineSize is the largest possible line size.
	MaxLineSize int
}

// DefaultConfig is a TextConfig which skips '#' comments and nothing else.
var DefaultConfig = TextConfig{
	Comment: "#",
	MaxLineSize: 1<<20,
}

// Reader iterates over the non-skipped lines of a table.
type Reader struct {
	config TextConfig
	scanner *bufio.Scanner
	line int
	text string
	tokens []string
}

// NewReader creates a new Reader associated with the I/O stream rd. An
// optional config can be provided, otherwise DefaultConfig will be used.
func NewReader(rd io.Reader, config ...TextConfig) *Reader {
	r := &Reader{ config: DefaultConfig }
	if len(config) > 0 { r.config = config[0] }
	if r.config.MaxLineSize <= 0 { r.config.MaxLineSize = DefaultConfig.MaxLineSize }

	r.scanner = bufio.NewScanner(rd)
	initSize := 64*1024
	if initSize > r.config.MaxLineSize { initSize = r.config.MaxLineSize }
	r.scanner.Buffer(make([]byte, initSize), r.config.MaxLineSize)
	return r
}

// Next advances to the next line that isn't skipped. It returns false at
// the end of the stream or on a read error, which is reported by Err.
func (r *Reader) Next() bool {
	for r.scanner.Scan() {
		r.line++
		if r.line <= r.config.SkipLines { continue }

		text := strings.TrimSpace(r.scanner.Text())
		if len(text) == 0 || len(text) < r.config.MinLineLength { continue }
		if r.config.Comment != "" && strings.HasPrefix(text, r.config.Comment) {
			continue
		}

		r.text, r.tokens = text, strings.Fields(text)
		return true
	}
	r.text, r.tokens = "", nil
	return false
}

// Line returns the 1-based line number of the current line.
func (r *Reader) Line() int { return r.line }

// Text returns the current line with surrounding whitespace removed.
func (r *Reader) Text() string { return r.text }

// Tokens returns the whitespace-separated fields of the current line.
func (r *Reader) Tokens() []string { return r.tokens }

// Err returns the first read error encountered by Next.
func (r *Reader) Err() error { return r.scanner.Err() }

// ParseInt32 parses a base-10 int32. Tokens written in float notation with
// an integral value, like "2212.", are accepted too, since some generators
// write codes that way.
func ParseInt32(tok string) (int32, error) {
	n, err := strconv.ParseInt(tok, 10, 32)
	if err == nil { return int32(n), nil }

	x, ferr := strconv.ParseFloat(tok, 64)
	if ferr != nil || x != float64(int32(x)) { return 0, err }
	return int32(x), nil
}

// ParseInt64 parses a base-10 int64, with the same float notation rule as
// ParseInt32.
func ParseInt64(tok string) (int64, error) {
	n, err := strconv.ParseInt(tok, 10, 64)
	if err == nil { return n, nil }

	x, ferr := strconv.ParseFloat(tok, 64)
	if ferr != nil || x != math.Trunc(x) || math.Abs(x) >= 1 << 63 { return 0, err }
	return int64(x), nil
}

// ParseFloat64 parses a float64. Fortran-style 'D' exponents are accepted.
func ParseFloat64(tok string) (float64, error) {
	x, err := strconv.ParseFloat(tok, 64)
	if err == nil { return x, nil }

	if i := strings.IndexAny(tok, "dD"); i >= 0 {
		fixed := tok[:i] + "e" + tok[i+1:]
		if x, ferr := strconv.ParseFloat(fixed, 64); ferr == nil { return x, nil }
	}
	return 0, err
}
