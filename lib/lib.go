/*package lib contains the functions behind the hepstat command: argument
handling, the "check" mode, and Run, which reads a set of generator output
files and computes and writes their statistics. Almost all of the heavy
lifting is done by lib/'s subpackages.
*/
package lib

import (
	"log/slog"
	"time"

	"github.com/phil-mansfield/hepstat/lib/analyze"
	"github.com/phil-mansfield/hepstat/lib/dict"
	"github.com/phil-mansfield/hepstat/lib/output"
	"github.com/phil-mansfield/hepstat/lib/particles"
	"github.com/phil-mansfield/hepstat/lib/thread"
)

// Version is the version of the software.
const Version = "0.2.0"

// Results holds everything computed by a run. Fields for targets which
// weren't requested are nil.
type Results struct {
	Format string
	Run particles.RunHeader
	Events int
	Scalars *analyze.ScalarResults
	Distributions []analyze.DistributionResult
}

// Analyze computes the requested targets over the events of f, which is
// emptied.
func Analyze(
	args *Args, d *dict.Dictionary, f *particles.DataFile, log *slog.Logger,
) (*Results, error) {
	res := &Results{ Format: f.Format, Run: f.Run, Events: f.Len() }
	a := analyze.New(f.IntoBlocks(), analyze.WithWorkers(args.Threads),
		analyze.WithLogger(log))

	if args.Targets.Has(Distribution) {
		criteria, err := args.DistributionCriteria(d)
		if err != nil { return nil, err }
		res.Distributions, err = a.ComputeDistributions(analyze.IsFinal, criteria, d)
		if err != nil { return nil, err }
	}
	if args.Targets.Has(Statistics) {
		var err error
		res.Scalars, err = a.ComputeScalars(analyze.IsFinal, args.Scalars, d)
		if err != nil { return nil, err }
	}

	return res, nil
}

// Save writes res to the files named by args and returns their names. If
// any file can't be written, none of them are left behind.
func Save(args *Args, res *Results) ([]string, error) {
	b := &output.Batch{ }
	defer b.Abort()

	if res.Scalars != nil {
		if err := b.SaveScalars(args.Output, res.Scalars); err != nil {
			return nil, err
		}
	}

	if res.Distributions != nil {
		if err := b.SaveDistributions(args.Output, res.Distributions); err != nil {
			return nil, err
		}
	}

	if args.JSON {
		doc := output.NewDocument(res.Format, res.Run, res.Events,
			res.Scalars, res.Distributions)
		if err := b.SaveJSON(args.Output + ".json", doc); err != nil {
			return nil, err
		}
	}

	if args.YODA && res.Distributions != nil {
		if err := b.SaveYODA(args.Output + ".yoda", res.Distributions); err != nil {
			return nil, err
		}
	}

	return b.Commit()
}

// Run executes a full run: it loads the dictionary, reads every input file,
// computes the requested targets and writes them. Nothing is written unless
// every step before writing succeeds.
func Run(args *Args, log *slog.Logger) (*Results, error) {
	start := time.Now()
	if _, err := thread.Set(args.Threads); err != nil { return nil, err }

	d, err := LoadDictionary(args, log)
	if err != nil { return nil, err }

	f, err := CollectEvents(args, d, log)
	if err != nil { return nil, err }
	log.Info("reading done", "seconds", time.Since(start).Seconds())

	res, err := Analyze(args, d, f, log)
	if err != nil { return nil, err }
	log.Info("total done", "seconds", time.Since(start).Seconds())

	names, err := Save(args, res)
	if err != nil { return nil, err }
	for _, name := range names { log.Info("wrote results", "file", name) }

	return res, nil
}
