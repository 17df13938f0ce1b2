package lib

/* This file contains functions for loading the dictionary and events of a
run. */

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/phil-mansfield/hepstat/lib/compress"
	"github.com/phil-mansfield/hepstat/lib/dict"
	"github.com/phil-mansfield/hepstat/lib/eventio"
	"github.com/phil-mansfield/hepstat/lib/particles"
)

// LoadDictionary builds the Dictionary described by args. It returns nil if
// no tables were configured.
func LoadDictionary(args *Args, log *slog.Logger) (*dict.Dictionary, error) {
	if !args.HasDictionary() { return nil, nil }

	var closers []io.Closer
	defer func() {
		for _, c := range closers { c.Close() }
	}()
	open := func(fname string) (io.Reader, error) {
		if fname == "" { return nil, nil }
		rd, err := compress.Open(fname)
		if err != nil { return nil, fmt.Errorf("Could not open dictionary table: %w", err) }
		closers = append(closers, rd)
		return rd, nil
	}

	leptons, err := open(args.LeptonTable)
	if err != nil { return nil, err }
	table, err := open(args.ParticleTable)
	if err != nil { return nil, err }
	nuclei, err := open(args.NucleiTable)
	if err != nil { return nil, err }

	d, err := dict.Build(args.Coding, leptons, table, nuclei, dict.WithLogger(log))
	if err != nil { return nil, err }

	log.Info("loaded dictionary", "coding", d.Coding(), "entries", d.Len())
	return d, nil
}

// CollectEvents reads every input file into a single DataFile. It is
// boosted to the lab frame if args asks for it.
func CollectEvents(
	args *Args, d *dict.Dictionary, log *slog.Logger,
) (*particles.DataFile, error) {
	f, err := eventio.UploadFiles(args.Format, args.Files, d,
		eventio.WithLogger(log), eventio.WithLabFrame(args.Lab))
	if err != nil { return nil, err }

	log.Info("collected events", "files", len(args.Files),
		"events", f.Len(), "particles", f.Particles())
	return f, nil
}

// missingFiles returns the input files which can't be opened.
func missingFiles(names []string) []error {
	errs := []error{ }
	for _, name := range names {
		if name == "" { continue }
		info, err := os.Stat(name)
		if err != nil {
			errs = append(errs, err)
		} else if info.IsDir() {
			errs = append(errs, fmt.Errorf("%s is a directory, not a file.", name))
		}
	}
	return errs
}
