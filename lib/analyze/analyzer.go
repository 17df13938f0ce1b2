package analyze

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"go-hep.org/x/hep/hbook"
	"golang.org/x/sync/errgroup"

	"github.com/phil-mansfield/hepstat/lib/dict"
	"github.com/phil-mansfield/hepstat/lib/particles"
)

// ErrCriteriaMismatch is returned when partial histograms computed for
// different criteria are merged. It always indicates a bug.
var ErrCriteriaMismatch = errors.New("partial results were computed for different criteria")

// chunksPerWorker is the number of event chunks handed to each worker.
const chunksPerWorker = 4

// Analyzer computes criteria over a slice of events in parallel. The events,
// the Dictionary and the criteria are only read.
type Analyzer struct {
	events []particles.Event
	workers int
	log *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithWorkers sets the number of goroutines used. Values below one use
// GOMAXPROCS.
func WithWorkers(n int) Option { return func(a *Analyzer) { a.workers = n } }

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(log *slog.Logger) Option {
	return func(a *Analyzer) {
		if log != nil { a.log = log }
	}
}

// New creates an Analyzer over events.
func New(events []particles.Event, opts ...Option) *Analyzer {
	a := &Analyzer{ events: events, log: slog.Default() }
	for _, opt := range opts { opt(a) }
	if a.workers < 1 { a.workers = runtime.GOMAXPROCS(0) }
	return a
}

// Len returns the number of events.
func (a *Analyzer) Len() int { return len(a.events) }

// chunks splits [0, n) into contiguous ranges.
func (a *Analyzer) chunks() [][2]int {
	n := len(a.events)
	if n == 0 { return nil }
	m := a.workers * chunksPerWorker
	if m > n { m = n }

	out := make([][2]int, m)
	for i := range out {
		out[i] = [2]int{ i*n / m, (i + 1)*n / m }
	}
	return out
}

// forChunks calls f on every chunk using at most a.workers goroutines.
func (a *Analyzer) forChunks(f func(i, start, end int) error) error {
	g := &errgroup.Group{ }
	g.SetLimit(a.workers)
	for i, c := range a.chunks() {
		i, c := i, c
		g.Go(func() error { return f(i, c[0], c[1]) })
	}
	return g.Wait()
}

// ScalarResults is a table with one column per criterion and one row per
// event, in event order.
type ScalarResults struct {
	Headers []string
	Rows [][]float64
}

// ComputeScalars sums every criterion over the particles of each event
// accepted by filter.
func (a *Analyzer) ComputeScalars(
	filter Filter, criteria []ScalarCriterion, d *dict.Dictionary,
) (*ScalarResults, error) {
	res := &ScalarResults{
		Headers: make([]string, len(criteria)),
		Rows: make([][]float64, len(a.events)),
	}
	for i, c := range criteria { res.Headers[i] = c.Name() }

	err := a.forChunks(func(_, start, end int) error {
		for i := start; i < end; i++ {
			res.Rows[i] = scalarRow(a.events[i], filter, criteria, d)
		}
		return nil
	})
	if err != nil { return nil, err }

	a.log.Debug("computed scalars", "events", len(a.events),
		"criteria", len(criteria))
	return res, nil
}

func scalarRow(
	e particles.Event, filter Filter,
	criteria []ScalarCriterion, d *dict.Dictionary,
) []float64 {
	row := make([]float64, len(criteria))
	for j := 0; j < e.Len(); j++ {
		p := e.At(j)
		if !filter(p, d) { continue }
		for k, c := range criteria { row[k] += c.Value(p, d) }
	}
	return row
}

// DistributionResult is the histogram of a single criterion over all
// events.
type DistributionResult struct {
	Name string
	// Total is the number of particles placed in a bin. It is always the
	// sum of Counts.
	Total int64
	Binning Binning
	Edges [][2]float64
	Counts []int64
}

// H1D converts r into a histogram whose bin heights are the counts. Each
// bin holds as many unit-weight entries as its count, all at the bin center,
// so bin errors are Poisson.
func (r *DistributionResult) H1D() *hbook.H1D {
	h := hbook.NewH1D(r.Binning.N, r.Binning.Min, r.Binning.Max)
	h.Ann["name"] = r.Name
	for i, n := range r.Counts {
		if n == 0 { continue }
		x := (r.Edges[i][0] + r.Edges[i][1]) / 2
		dist := unitEntries(n, x)
		h.Binning.Bins[i].Dist = dist
		addDist(&h.Binning.Dist, dist)
	}
	return h
}

// unitEntries returns the moments of n weight-one entries at x.
func unitEntries(n int64, x float64) hbook.Dist1D {
	w := float64(n)
	dist := hbook.Dist1D{ Dist: hbook.Dist0D{ N: n, SumW: w, SumW2: w } }
	dist.Stats.SumWX, dist.Stats.SumWX2 = w*x, w*x*x
	return dist
}

func addDist(dst *hbook.Dist1D, src hbook.Dist1D) {
	dst.Dist.N += src.Dist.N
	dst.Dist.SumW += src.Dist.SumW
	dst.Dist.SumW2 += src.Dist.SumW2
	dst.Stats.SumWX += src.Stats.SumWX
	dst.Stats.SumWX2 += src.Stats.SumWX2
}

// histogram is a partial result for a single criterion.
type histogram struct {
	name string
	total int64
	counts []int64
}

func newHistograms(criteria []DistributionCriterion) []histogram {
	hs := make([]histogram, len(criteria))
	for i, c := range criteria {
		hs[i] = histogram{ c.Name(), 0, make([]int64, c.Binning().N) }
	}
	return hs
}

// merge adds the counts of src into dst.
func merge(dst, src []histogram) error {
	if len(dst) != len(src) {
		return fmt.Errorf("%w: %d and %d criteria",
			ErrCriteriaMismatch, len(dst), len(src))
	}
	for i := range dst {
		if dst[i].name != src[i].name || len(dst[i].counts) != len(src[i].counts) {
			return fmt.Errorf("%w: '%s' and '%s'",
				ErrCriteriaMismatch, dst[i].name, src[i].name)
		}
		dst[i].total += src[i].total
		for j := range dst[i].counts { dst[i].counts[j] += src[i].counts[j] }
	}
	return nil
}

// ComputeDistributions histograms every criterion over the particles of all
// events accepted by filter. Counts are integers, so results don't depend on
// the number of workers.
func (a *Analyzer) ComputeDistributions(
	filter Filter, criteria []DistributionCriterion, d *dict.Dictionary,
) ([]DistributionResult, error) {
	partials := make([][]histogram, len(a.chunks()))
	err := a.forChunks(func(i, start, end int) error {
		hs := newHistograms(criteria)
		for _, e := range a.events[start:end] { fill(hs, e, filter, criteria, d) }
		partials[i] = hs
		return nil
	})
	if err != nil { return nil, err }

	total := newHistograms(criteria)
	for _, hs := range partials {
		if err := merge(total, hs); err != nil { return nil, err }
	}

	out := make([]DistributionResult, len(criteria))
	for i, c := range criteria {
		bins := c.Binning()
		out[i] = DistributionResult{
			Name: total[i].name, Total: total[i].total, Binning: bins,
			Edges: bins.Edges(), Counts: total[i].counts,
		}
	}

	a.log.Debug("computed distributions", "events", len(a.events),
		"criteria", len(criteria))
	return out, nil
}

func fill(
	hs []histogram, e particles.Event, filter Filter,
	criteria []DistributionCriterion, d *dict.Dictionary,
) {
	for j := 0; j < e.Len(); j++ {
		p := e.At(j)
		if !filter(p, d) { continue }
		for k, c := range criteria {
			bin := c.Bin(p, d)
			if bin < 0 || bin >= len(hs[k].counts) { continue }
			hs[k].counts[bin]++
			hs[k].total++
		}
	}
}
