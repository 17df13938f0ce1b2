package lib

/* check.go contains the core functions of hepstat's "check" mode. */

import (
	"errors"
	"log/slog"

	"github.com/phil-mansfield/hepstat/lib/dict"
)

// Check checks that a run described by args can start: that every input file
// and dictionary table exists, that the tables load, and that the configured
// distributions can be resolved against them. No events are read. With
// CrashOnError the first problem is returned, and with WarnOnError every
// problem is logged and all of them are returned together.
func Check(args *Args, strictness CheckStrictness, log *slog.Logger) error {
	errs := []error{ }
	report := func(err error) bool {
		if err == nil { return false }
		errs = append(errs, err)
		if strictness == WarnOnError {
			log.Warn("check failed", "error", err.Error())
			return false
		}
		return true
	}

	for _, err := range missingFiles(args.Files) {
		if report(err) { return err }
	}

	tables := []string{ args.LeptonTable, args.ParticleTable, args.NucleiTable }
	tableErrs := missingFiles(tables)
	for _, err := range tableErrs {
		if report(err) { return err }
	}

	var (
		d *dict.Dictionary
		err error
	)
	if len(tableErrs) == 0 {
		d, err = LoadDictionary(args, log)
		if report(err) { return err }
	}

	if err == nil && len(tableErrs) == 0 {
		_, err := args.DistributionCriteria(d)
		if report(err) { return err }
	}

	if len(errs) == 0 {
		log.Info("check passed", "files", len(args.Files),
			"format", args.Format.String(), "targets", args.Targets.String())
	}
	return errors.Join(errs...)
}
