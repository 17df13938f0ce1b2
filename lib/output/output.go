/*package output writes analysis results. Scalar results are written as a
single table and each distribution is written to its own file, named after
the distribution and its total count. Results can also be written as a JSON
document or as YODA histograms.

Every file is compressed according to its extension (see package compress).
*/
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/phil-mansfield/hepstat/lib/analyze"
	"github.com/phil-mansfield/hepstat/lib/compress"
	"github.com/phil-mansfield/hepstat/lib/particles"
)

// Separator separates the columns of every table.
const Separator = ";\t"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// WriteScalars writes a header line of criterion names followed by one line
// per event.
func WriteScalars(w io.Writer, res *analyze.ScalarResults) error {
	buf := bufio.NewWriter(w)
	buf.WriteString(strings.Join(res.Headers, Separator) + "\n")

	vals := make([]string, len(res.Headers))
	for _, row := range res.Rows {
		vals = vals[:len(row)]
		for i := range row { vals[i] = formatFloat(row[i]) }
		buf.WriteString(strings.Join(vals, Separator) + "\n")
	}
	return buf.Flush()
}

// WriteDistribution writes a commented header followed by one
// "low; high; count" line per bin.
func WriteDistribution(w io.Writer, r *analyze.DistributionResult) error {
	buf := bufio.NewWriter(w)
	fmt.Fprintf(buf, "# distribution : %s; total-items=%d\n", r.Name, r.Total)
	fmt.Fprintf(buf, " lbin%s rbin%s value\n", Separator, Separator)
	for i, n := range r.Counts {
		fmt.Fprintf(buf, "%s%s%s%s%d\n", formatFloat(r.Edges[i][0]), Separator,
			formatFloat(r.Edges[i][1]), Separator, n)
	}
	return buf.Flush()
}

// DistributionFileName returns the name of the file a distribution is
// written to: "<name>-<total>-<base>" in the directory of output.
func DistributionFileName(output string, r *analyze.DistributionResult) string {
	dir, base := filepath.Split(output)
	return filepath.Join(dir, fmt.Sprintf("%s-%d-%s", r.Name, r.Total, base))
}

// Document is the JSON representation of a run's results.
type Document struct {
	Format string `json:"format"`
	Signature string `json:"signature,omitempty"`
	Snn float64 `json:"sqrt_snn,omitempty"`
	Events int `json:"events"`
	Scalars *ScalarTable `json:"scalars,omitempty"`
	Distributions []Distribution `json:"distributions,omitempty"`
}

// ScalarTable is the JSON representation of scalar results.
type ScalarTable struct {
	Headers []string `json:"headers"`
	Rows [][]float64 `json:"rows"`
}

// Distribution is the JSON representation of a distribution.
type Distribution struct {
	Name string `json:"name"`
	Total int64 `json:"total"`
	Edges [][2]float64 `json:"edges"`
	Counts []int64 `json:"counts"`
}

// NewDocument collects results into a Document. scalars and dists may be
// nil if they weren't computed.
func NewDocument(
	format string, run particles.RunHeader, events int,
	scalars *analyze.ScalarResults, dists []analyze.DistributionResult,
) *Document {
	doc := &Document{
		Format: format, Signature: run.Signature, Snn: run.Snn, Events: events,
	}
	if scalars != nil {
		doc.Scalars = &ScalarTable{ scalars.Headers, scalars.Rows }
	}
	for _, r := range dists {
		doc.Distributions = append(doc.Distributions,
			Distribution{ r.Name, r.Total, r.Edges, r.Counts })
	}
	return doc
}

// WriteJSON writes doc as JSON.
func WriteJSON(w io.Writer, doc *Document) error {
	b, err := json.Marshal(doc)
	if err != nil { return fmt.Errorf("Could not encode results as JSON: %w", err) }
	_, err = w.Write(append(b, '\n'))
	return err
}

// ReadJSON reads a Document written by WriteJSON.
func ReadJSON(rd io.Reader) (*Document, error) {
	doc := &Document{ }
	if err := json.NewDecoder(rd).Decode(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// WriteYODA writes every distribution as a YODA histogram.
func WriteYODA(w io.Writer, dists []analyze.DistributionResult) error {
	for i := range dists {
		h := dists[i].H1D()
		h.Ann["path"] = "/hepstat/" + dists[i].Name
		b, err := h.MarshalYODA()
		if err != nil {
			return fmt.Errorf("Could not encode '%s' as YODA: %w", dists[i].Name, err)
		}
		if _, err := w.Write(b); err != nil { return err }
	}
	return nil
}

// partialPrefix is prepended to the base name of files which are still
// being written. The extension is kept so compression is unchanged.
const partialPrefix = ".partial-"

// writeFile creates fname and writes to it with f. Nothing is left at fname
// if writing fails.
func writeFile(fname string, f func(io.Writer) error) error {
	wr, err := compress.Create(fname)
	if err != nil { return err }
	if err := f(wr); err != nil {
		wr.Close()
		os.Remove(fname)
		return fmt.Errorf("Could not write %s: %w", fname, err)
	}
	if err := wr.Close(); err != nil {
		os.Remove(fname)
		return fmt.Errorf("Could not write %s: %w", fname, err)
	}
	return nil
}

// Batch writes a set of result files which appear together or not at all.
// Each file is written under a temporary name in its final directory, and
// Commit renames them. A Batch which is never committed should be
// Aborted.
type Batch struct {
	final, partial []string
}

func (b *Batch) write(fname string, f func(io.Writer) error) error {
	partial := filepath.Join(filepath.Dir(fname), partialPrefix + filepath.Base(fname))
	if err := writeFile(partial, f); err != nil { return err }
	b.final = append(b.final, fname)
	b.partial = append(b.partial, partial)
	return nil
}

// Commit moves every written file to its final name and returns the names.
// If a rename fails, every file of the batch is removed.
func (b *Batch) Commit() ([]string, error) {
	for i := range b.partial {
		if err := os.Rename(b.partial[i], b.final[i]); err != nil {
			for _, name := range b.final[:i] { os.Remove(name) }
			b.partial = b.partial[i:]
			b.Abort()
			return nil, fmt.Errorf("Could not move results into place: %w", err)
		}
	}
	names := b.final
	b.final, b.partial = nil, nil
	return names, nil
}

// Abort removes every file written so far. It does nothing after Commit.
func (b *Batch) Abort() {
	for _, partial := range b.partial { os.Remove(partial) }
	b.final, b.partial = nil, nil
}

// SaveScalars writes scalar results to fname.
func (b *Batch) SaveScalars(fname string, res *analyze.ScalarResults) error {
	return b.write(fname, func(w io.Writer) error { return WriteScalars(w, res) })
}

// SaveDistributions writes each distribution to the file given by
// DistributionFileName.
func (b *Batch) SaveDistributions(
	output string, dists []analyze.DistributionResult,
) error {
	for i := range dists {
		err := b.write(DistributionFileName(output, &dists[i]),
			func(w io.Writer) error { return WriteDistribution(w, &dists[i]) })
		if err != nil { return err }
	}
	return nil
}

// SaveJSON writes doc to fname.
func (b *Batch) SaveJSON(fname string, doc *Document) error {
	return b.write(fname, func(w io.Writer) error { return WriteJSON(w, doc) })
}

// SaveYODA writes dists to fname.
func (b *Batch) SaveYODA(fname string, dists []analyze.DistributionResult) error {
	return b.write(fname, func(w io.Writer) error { return WriteYODA(w, dists) })
}
