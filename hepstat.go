package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/phil-mansfield/hepstat/lib"
	"github.com/phil-mansfield/hepstat/lib/analyze"
	"github.com/phil-mansfield/hepstat/lib/error"
)

const helpText = `hepstat %s computes per-event statistics and distributions of heavy-ion
event generator output.

Usage:
    hepstat <mode> [config file] [--<flag> <value> ...]

Modes:
    help  - print this message.
    check - check the configuration, input files and particle tables without
            reading any events.
    stats - read every input file and compute the requested targets.

Flags set on the command line overwrite the values in the config file.

Flags:
`

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)
	error.SetLogger(log)

	// Parse arguments.
	mode, configFile, cmdArgs, err := lib.ParseCommandLine(os.Args[1:], os.Stderr)
	if err != nil { error.External("%s", err.Error()) }
	if mode == lib.HelpMode {
		PrintHelp()
		return
	}

	rawArgs := cmdArgs
	if configFile != "" {
		rawArgs, err = lib.ParseConfigFile(configFile)
		if err != nil { error.External("%s", err.Error()) }
		rawArgs.Overwrite(cmdArgs)
	}

	// Do processing that doesn't need external validation.
	args, err := rawArgs.Process()
	if err != nil { error.External("%s", err.Error()) }

	// Run the chosen mode.
	switch mode {
	case lib.CheckMode:
		Check(args, log)
	case lib.StatsMode:
		Stats(args, log)
	}
}

// PrintHelp prints hepstat's usage.
func PrintHelp() {
	fmt.Fprintf(os.Stderr, helpText, lib.Version)
	lib.Usage(os.Stderr)
}

// Check runs hepstat's "check" mode which tests for errors in the
// configuration arguments.
func Check(args *lib.Args, log *slog.Logger) {
	if err := lib.Check(args, lib.WarnOnError, log); err != nil {
		error.External("The configuration has errors:\n%s", err.Error())
	}
	fmt.Println("No errors detected.")
}

// Stats runs hepstat's "stats" mode, which computes and writes the requested
// targets.
func Stats(args *lib.Args, log *slog.Logger) {
	if err := lib.Check(args, lib.CrashOnError, log); err != nil {
		error.External("%s", err.Error())
	}

	_, err := lib.Run(args, log)
	switch {
	case errors.Is(err, analyze.ErrCriteriaMismatch):
		error.Internal("%s", err.Error())
	case err != nil:
		error.External("%s", err.Error())
	}
}
