package lib

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/phil-mansfield/hepstat/lib/analyze"
	"github.com/phil-mansfield/hepstat/lib/config"
	"github.com/phil-mansfield/hepstat/lib/dict"
	"github.com/phil-mansfield/hepstat/lib/eventio"
	"github.com/phil-mansfield/hepstat/lib/format"
	"github.com/phil-mansfield/hepstat/lib/thread"
)

// RawArgs stores the unprocessed values which the user assigned to each config
// variable.
type RawArgs struct {
	Config *config.Config
	// set contains the names of the variables which were given. It is nil
	// when every variable counts as given.
	set map[string]bool
}

// Args stores configuration information. It is a post-processed version of
// RawArgs.
type Args struct {
	Format eventio.Format
	Targets CalcTarget
	// Files is the expanded list of input files.
	Files []string
	Output string
	// Threads is the resolved number of workers.
	Threads int
	Lab, JSON, YODA bool

	Coding dict.Coding
	LeptonTable, ParticleTable, NucleiTable string

	Scalars []analyze.ScalarCriterion
	// Config is kept so distributions can be resolved once the Dictionary
	// has been loaded.
	Config *config.Config
}

// overwriters copies the variable set by each command line flag.
var overwriters = map[string]func(dst, src *config.Config){
	"format": func(dst, src *config.Config) { dst.Run.Format = src.Run.Format },
	"target": func(dst, src *config.Config) { dst.Run.Target = src.Run.Target },
	"file": func(dst, src *config.Config) { dst.Run.Files = src.Run.Files },
	"output": func(dst, src *config.Config) { dst.Run.Output = src.Run.Output },
	"threads": func(dst, src *config.Config) { dst.Run.Threads = src.Run.Threads },
	"lab": func(dst, src *config.Config) { dst.Run.Lab = src.Run.Lab },
	"json": func(dst, src *config.Config) { dst.Run.JSON = src.Run.JSON },
	"yoda": func(dst, src *config.Config) { dst.Run.YODA = src.Run.YODA },
	"leptons": func(dst, src *config.Config) {
		dst.Dictionary.Leptons = src.Dictionary.Leptons
	},
	"particles": func(dst, src *config.Config) {
		dst.Dictionary.Particles = src.Dictionary.Particles
	},
	"nuclei": func(dst, src *config.Config) {
		dst.Dictionary.Nuclei = src.Dictionary.Nuclei
	},
	"coding": func(dst, src *config.Config) {
		dst.Dictionary.Coding = src.Dictionary.Coding
	},
	"criterion": func(dst, src *config.Config) {
		dst.Scalar.Criterion = src.Scalar.Criterion
	},
	"etawindow": func(dst, src *config.Config) {
		dst.Scalar.EtaWindow = src.Scalar.EtaWindow
	},
}

// newFlagSet binds the command line flags to the variables of c.
func newFlagSet(c *config.Config, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("hepstat", flag.ContinueOnError)
	fs.SetOutput(out)

	appendString := func(dst *[]string) func(string) error {
		return func(s string) error { *dst = append(*dst, s); return nil }
	}

	fs.StringVar(&c.Run.Format, "format", c.Run.Format,
		"Input format: " + strings.Join(eventio.Formats(), ", ") + ".")
	fs.Func("target", "Calculation target, statistics and/or distribution. May be repeated.",
		appendString(&c.Run.Target))
	fs.Func("file", "Input file format, e.g. run{%d,1..5}.f19. May be repeated.",
		appendString(&c.Run.Files))
	fs.StringVar(&c.Run.Output, "output", c.Run.Output, "Output file name.")
	fs.IntVar(&c.Run.Threads, "threads", c.Run.Threads,
		"Number of threads. -1 uses every core.")
	fs.BoolVar(&c.Run.Lab, "lab", c.Run.Lab,
		"Boost momenta to the lab frame before analysis.")
	fs.BoolVar(&c.Run.JSON, "json", c.Run.JSON, "Also write results as JSON.")
	fs.BoolVar(&c.Run.YODA, "yoda", c.Run.YODA,
		"Also write distributions as YODA histograms.")
	fs.StringVar(&c.Dictionary.Leptons, "leptons", c.Dictionary.Leptons,
		"Lepton table.")
	fs.StringVar(&c.Dictionary.Particles, "particles", c.Dictionary.Particles,
		"Particle table.")
	fs.StringVar(&c.Dictionary.Nuclei, "nuclei", c.Dictionary.Nuclei,
		"Optional nuclei table.")
	fs.StringVar(&c.Dictionary.Coding, "coding", c.Dictionary.Coding,
		"Particle coding of the tables. Defaults to the coding of the format.")
	fs.Func("criterion", "Standard scalar criterion. May be repeated.",
		appendString(&c.Scalar.Criterion))
	fs.Func("etawindow", "Count charged particles with |eta| <= w. May be repeated.",
		func(s string) error {
			w, err := strconv.ParseFloat(s, 64)
			if err != nil { return err }
			c.Scalar.EtaWindow = append(c.Scalar.EtaWindow, w)
			return nil
		})

	return fs
}

// ParseCommandLine parses the command line arguments and returns the mode
// hepstat is being run in, the name of the config file, and any arguments
// which were set. Expects that the arguments are presented in the order:
// $ hepstat <mode> [config file] [--<Arg1> <Value1>] [--<Arg2> <Value2>]
// argv does not include the program name. Usage errors are written to out.
func ParseCommandLine(
	argv []string, out io.Writer,
) (mode Mode, configFile string, args *RawArgs, err error) {
	if len(argv) == 0 { return HelpMode, "", nil, nil }
	mode, err = ParseMode(argv[0])
	if err != nil { return mode, "", nil, err }

	rest := argv[1:]
	if len(rest) > 0 && !strings.HasPrefix(rest[0], "-") {
		configFile, rest = rest[0], rest[1:]
	}

	c := config.Default()
	fs := newFlagSet(c, out)
	if err := fs.Parse(rest); err != nil { return mode, "", nil, err }
	if fs.NArg() > 0 {
		return mode, "", nil, fmt.Errorf("Unexpected argument '%s'. Arguments after the config file must be flags.", fs.Arg(0))
	}

	args = &RawArgs{ Config: c, set: map[string]bool{ } }
	fs.Visit(func(f *flag.Flag) { args.set[f.Name] = true })
	return mode, configFile, args, nil
}

// Usage writes the list of command line flags to out.
func Usage(out io.Writer) {
	fs := newFlagSet(config.Default(), out)
	fs.PrintDefaults()
}

// ParseConfigFile parses arguments from a config file.
func ParseConfigFile(fileName string) (*RawArgs, error) {
	c, err := config.Read(fileName)
	if err != nil { return nil, err }
	return &RawArgs{ Config: c }, nil
}

// Overwrite arguments in arg1 which have been set in arg2.
func (arg1 *RawArgs) Overwrite(arg2 *RawArgs) {
	if arg2.set == nil {
		*arg1.Config = *arg2.Config
		arg1.set = nil
		return
	}

	for name := range arg2.set {
		overwriters[name](arg1.Config, arg2.Config)
		if arg1.set != nil { arg1.set[name] = true }
	}
}

// Process converts the raw user input to a format which is more useful for
// internal functions. Very simple validation is done here, but nothing
// which requires interacting with external files.
func (args *RawArgs) Process() (*Args, error) {
	c := args.Config
	out := &Args{
		Output: c.Run.Output, Lab: c.Run.Lab, JSON: c.Run.JSON, YODA: c.Run.YODA,
		LeptonTable: c.Dictionary.Leptons, ParticleTable: c.Dictionary.Particles,
		NucleiTable: c.Dictionary.Nuclei, Config: c,
	}

	var err error
	if out.Format, err = eventio.ParseFormat(c.Run.Format); err != nil {
		return nil, err
	}
	if out.Targets, err = ParseCalcTargets(c.Run.Target); err != nil {
		return nil, err
	}
	if out.Threads, err = thread.Workers(c.Run.Threads); err != nil {
		return nil, err
	}

	if len(c.Run.Files) == 0 {
		return nil, fmt.Errorf("No input files were given. Set 'files' in the [run] section or pass --file.")
	}
	if out.Files, err = format.ExpandFileFormats(c.Run.Files); err != nil {
		return nil, err
	}
	if out.Output == "" {
		return nil, fmt.Errorf("The output file name is empty.")
	}

	out.Coding = out.Format.Coding()
	if c.Dictionary.Coding != "" {
		if out.Coding, err = dict.ParseCoding(c.Dictionary.Coding); err != nil {
			return nil, err
		}
	}
	if out.Format.UsesDictionary() &&
		(out.LeptonTable == "" || out.ParticleTable == "") {
		return nil, fmt.Errorf("The '%s' format needs a lepton table and a particle table. Set 'leptons' and 'particles' in the [dictionary] section.", out.Format)
	}

	if out.Scalars, err = c.ScalarCriteria(); err != nil { return nil, err }
	for _, name := range c.DistributionNames() {
		if err := c.Distribution[name].Check(name); err != nil { return nil, err }
	}

	return out, nil
}

// DistributionCriteria resolves the configured distributions with d.
func (args *Args) DistributionCriteria(
	d *dict.Dictionary,
) ([]analyze.DistributionCriterion, error) {
	return args.Config.DistributionCriteria(d)
}

// HasDictionary returns true if dictionary tables were configured.
func (args *Args) HasDictionary() bool {
	return args.LeptonTable != "" && args.ParticleTable != ""
}
