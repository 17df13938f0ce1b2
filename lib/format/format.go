/*package format expands the file lists of a run. Multi-file runs are usually
numbered, so instead of listing every file, a file format can be given, e.g.

   Files = run{%02d,1..10}/urqmd{%d,0..99 - 17}.f19

File format strings are a combination of fixed text and variables. Variables
are written as {verb,sequence}. "verb" is a printf() verb (e.g. %03d) that
specifies how the variable is printed and "sequence" is a sequence format
giving the values the variable takes on. Variables with the same sequence
take the same value, so "run{%d,1..3}/run{%d,1..3}.dat" names three files.
Variables with different sequences vary independently, with the leftmost
variable varying slowest.

Sequence formats are a generic way to specify non-contiguous sequences of
natural numbers. They consist of a series of n tokens separated by "+" or "-".
Each token can be either a number or two numbers separted by "..". E.g.:

  100
  0..100
  0..10 + 100
  0..100 - 63 - 10..20

These strings build up sequences of numbers by adding/removing individual
numbers and contiguous sequences. For example, 1, 2, 3, 15, 16, 17 could be
written as 1..17 - 4..14. This is useful for skipping corrupted generator
output.

All spaces around "-", "+", and "," symbols are ignored.
*/
package format

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	hs_error "github.com/phil-mansfield/hepstat/lib/error"
)

const (
	// Any expanded formats which would have more than BigNumber elements are
	// assumed to be bugs.
	BigNumber = 1<<20
)

// ExpandSequenceFormat expands a sequence format string into a sorted sequence
// of integers.
func ExpandSequenceFormat(format string) ([]int, error) {
	tok, err := tokeniseSequenceFormat(format)
	if err != nil { return nil, err }
	adds, subs, err := addsSubsSequenceFormat(tok)
	if err != nil { return nil, err }

	m := map[int]bool{ }
	for i := range adds {
		for _, n := range parseSequenceFormatToken(adds[i]) {
			if m[n] {
				return nil, fmt.Errorf("The number %d is added more than once.", n)
			}
			m[n] = true
		}
		if len(m) > BigNumber {
			return nil, fmt.Errorf("The sequence '%s' has more than %d elements, which is almost certainly a bug.", format, BigNumber)
		}
	}

	for i := range subs {
		for _, n := range parseSequenceFormatToken(subs[i]) {
			if !m[n] {
				return nil, fmt.Errorf("The number %d is removed more times than it was inserted.", n)
			}
			delete(m, n)
		}
	}

	out := make([]int, 0, len(m))
	for n := range m { out = append(out, n) }
	sort.Ints(out)

	return out, nil
}

// tokeniseSequenceFormat splits a sequence format into numbers, ranges, and
// "+"/"-" operators.
func tokeniseSequenceFormat(format string) ([]string, error) {
	clean := strings.ReplaceAll(format, "+", " + ")
	clean = strings.ReplaceAll(clean, "-", " - ")

	tok := strings.Fields(clean)
	if len(tok) == 0 {
		return nil, fmt.Errorf("The format string is empty.")
	}
	return tok, nil
}

// addsSubsSequenceFormat sorts the tokens of a sequence format into the
// ranges which are added and the ranges which are removed.
func addsSubsSequenceFormat(tok []string) (adds, subs []string, err error) {
	if len(tok) == 0 {
		return nil, nil, fmt.Errorf("Format string is empty")
	}

	// The leading "+" can be dropped.
	adds, subs = []string{ }, []string{ }
	start := 0
	if tok[0] != "+" && tok[0] != "-" {
		if err := isSequenceFormatToken(tok[0]); err != nil {
			return nil, nil, fmt.Errorf(
				"Element number %d, '%s', cannot be parsed because %s",
				1, tok[0], err.Error(),
			)
		}
		adds = append(adds, tok[0])
		start = 1
	}

	for i := start; i < len(tok); i += 2 {
		if tok[i] != "-" && tok[i] != "+" {
			return nil, nil, fmt.Errorf(
				"Element number %d, '%s', should be a '-' or '+', but isn't.",
				i+1, tok[i])
		}

		if i + 1 >= len(tok) {
			return nil, nil, fmt.Errorf(
				"The format string ends in a trailing '%s'", tok[i],
			)
		}

		if err := isSequenceFormatToken(tok[i+1]); err != nil {
			return nil, nil, fmt.Errorf(
				"Element number %d, '%s', cannot be parsed because %s",
				i+2, tok[i+1], err.Error(),
			)
		}

		if tok[i] == "+" {
			adds = append(adds, tok[i+1])
		} else {
			subs = append(subs, tok[i+1])
		}
	}

	return adds, subs, nil
}

// isSequenceFormatToken returns a nil error is tok is a valid token for
// a sequence format and an error describing the problem otherwise. The error
// message assumes it is printed after a trailing "because"
func isSequenceFormatToken(tok string) error {
	if len(tok) == 0 {
		return fmt.Errorf("the format string is empty.")
	}

	bounds := strings.Split(tok, "..")

	switch len(bounds) {
	case 1:
		if _, err := strconv.Atoi(bounds[0]); err != nil {
			return fmt.Errorf("'%s' is not an integer.", bounds[0])
		}
		return nil
	case 2:
		start, err := strconv.Atoi(bounds[0])
		if err != nil { return fmt.Errorf("'%s' is not an integer.", bounds[0]) }
		end, err := strconv.Atoi(bounds[1])
		if err != nil { return fmt.Errorf("'%s' is not an integer.", bounds[1]) }
		if end < start {
			return fmt.Errorf("lower bound %d is larger than upper bound %d.",
				start, end)
		}
		return nil
	}
	return fmt.Errorf("it has more than one '..'.")
}

// parseSequenceFormatToken parses a single token in a sequence format string
// and returns the corresponding array of numbers. Tokens must already have
// passed isSequenceFormatToken.
func parseSequenceFormatToken(tok string) []int {
	bounds := strings.Split(tok, "..")

	switch len(bounds) {
	case 1:
		n, _ := strconv.Atoi(tok)
		return []int{ n }
	case 2:
		start, _ := strconv.Atoi(bounds[0])
		end, _ := strconv.Atoi(bounds[1])
		out := make([]int, 0, end - start + 1)
		for n := start; n <= end; n++ { out = append(out, n) }
		return out
	}

	hs_error.Internal(
		"Invalid sequence format token, '%s', passed isSequenceFormatToken()",
		tok,
	)
	return nil
}

// ExpandFileFormat expands a file format string into the list of file names
// it describes. Strings without variables expand to themselves.
func ExpandFileFormat(format string) ([]string, error) {
	starts, ends, err := startsEndsFormatString(format)
	if err != nil { return nil, err }
	comp, err := newFileFormatComponents(format, starts, ends)
	if err != nil { return nil, err }

	n := 1
	for _, seq := range comp.Sequences {
		n *= len(seq)
		if n > BigNumber {
			return nil, fmt.Errorf("The file format '%s' names more than %d files, which is almost certainly a bug.", format, BigNumber)
		}
	}

	out := make([]string, 0, n)
	idx := make([]int, len(comp.Sequences))
	for i := 0; i < n; i++ {
		out = append(out, comp.name(idx))

		// Increment the rightmost sequence first.
		for j := len(idx) - 1; j >= 0; j-- {
			idx[j]++
			if idx[j] < len(comp.Sequences[j]) { break }
			idx[j] = 0
		}
	}

	return out, nil
}

// ExpandFileFormats expands and concatenates a list of file formats.
func ExpandFileFormats(formats []string) ([]string, error) {
	out := []string{ }
	for _, format := range formats {
		names, err := ExpandFileFormat(format)
		if err != nil { return nil, err }
		out = append(out, names...)
	}
	return out, nil
}

// startsEndsFormatString returns the indices of the beginning and end of each
// format variable.
func startsEndsFormatString(format string) (starts, ends []int, err error) {
	starts, ends = []int{ }, []int{ }
	nestedLevel := 0

	ending := "Make sure variables in file formats are enclosed in matching { ... } pairs."

	for i := range format {
		if format[i] == '{' {
			nestedLevel++
			starts = append(starts, i)
		} else if format[i] == '}' {
			nestedLevel--
			ends = append(ends, i+1)
		}

		if nestedLevel > 1 {
			end := len(starts) - 1
			return nil, nil, fmt.Errorf("The file format '%s' has nested '{' characters, making it invalid. These '{'s are at indices %d and %d. " + ending,
				format, starts[end - 1], starts[end])
		} else if nestedLevel < 0 {
			end := len(ends) - 1
			return nil, nil, fmt.Errorf("The file format '%s' has a '}' that doesn't come after a '{' character, making it invalid. This '}' is at index %d. " + ending,
				format, ends[end] - 1)
		}
	}

	if len(ends) != len(starts) {
		end := len(starts) - 1
		return nil, nil, fmt.Errorf("The file format '%s' has a '{' without a matching '}', making it invalid. This '{' is at index %d. " + ending, format, starts[end])
	}

	return starts, ends, nil
}

// fileFormatComponents is a parsed file format. Separators has one more
// element than Vars, and Vars[i] is printed between Separators[i] and
// Separators[i+1].
type fileFormatComponents struct {
	Separators []string
	Vars []fileFormatVar
	// Sequences holds the values of each distinct sequence.
	Sequences [][]int
}

type fileFormatVar struct {
	Verb string
	// Seq indexes fileFormatComponents.Sequences.
	Seq int
}

func newFileFormatComponents(
	format string, starts, ends []int,
) (*fileFormatComponents, error) {
	comp := &fileFormatComponents{ }
	seqIndex := map[string]int{ }

	sepStart := 0
	for i := range starts {
		comp.Separators = append(comp.Separators, format[sepStart: starts[i]])
		sepStart = ends[i]

		v := format[starts[i]+1: ends[i]-1]
		verb, rule, ok := strings.Cut(v, ",")
		verb, rule = strings.TrimSpace(verb), strings.TrimSpace(rule)
		if !ok || !strings.HasPrefix(verb, "%") {
			return nil, fmt.Errorf("The file format '%s' has an invalid variable, '{%s}'. Variables should contain a formatting 'verb' (e.g. '%%d', '%%03d', etc.), a comma, and a sequence giving the values that variable takes on (e.g. '0..511').", format, v)
		}

		j, ok := seqIndex[rule]
		if !ok {
			seq, err := ExpandSequenceFormat(rule)
			if err != nil {
				return nil, fmt.Errorf("The variable '{%s}' in the file format '%s' has an invalid sequence: %s", v, format, err.Error())
			}
			j = len(comp.Sequences)
			seqIndex[rule] = j
			comp.Sequences = append(comp.Sequences, seq)
		}

		comp.Vars = append(comp.Vars, fileFormatVar{ verb, j })
	}
	comp.Separators = append(comp.Separators, format[sepStart:])

	return comp, nil
}

// name prints the file name where the i-th sequence is at index idx[i].
func (comp *fileFormatComponents) name(idx []int) string {
	sb := &strings.Builder{ }
	for i, v := range comp.Vars {
		sb.WriteString(comp.Separators[i])
		fmt.Fprintf(sb, v.Verb, comp.Sequences[v.Seq][idx[v.Seq]])
	}
	sb.WriteString(comp.Separators[len(comp.Separators) - 1])
	return sb.String()
}
