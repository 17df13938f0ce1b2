/*package config reads hepstat run configuration files. Files use git-config
(INI) syntax:

   [run]
   format = epos            ; epos | urqmd | qgsm | phqmd | hepmc
   target = statistics      ; statistics and/or distribution
   files = run{%d,1..5}.dat ; may be repeated
   output = results.csv.stat
   threads = -1
   lab = false
   json = false
   yoda = false

   [dictionary]
   leptons = dicts/EPOS_LEPTONS.particles.txt
   particles = dicts/EPOS.particles.txt
   nuclei =
   coding =                 ; defaults to the coding of the format

   [scalar]
   criterion = FinEnergy    ; may be repeated
   etawindow = 0.5          ; adds PseudorapidityFilterCnt(-0.5, 0.5)

   [distribution "N(Nu)"]
   kind = eta               ; theta | eta | eta-codes
   min = -15
   max = 15
   bins = 1000
   particle = p             ; eta-codes only, may be repeated

Repeated variables accumulate. If no scalar or distribution criteria are
configured, the standard ones are used.
*/
package config

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/hepstat/lib/analyze"
	"github.com/phil-mansfield/hepstat/lib/dict"
)

// Distribution kinds.
const (
	ThetaKind = "theta"
	EtaKind = "eta"
	EtaCodesKind = "eta-codes"
)

// Run contains the [run] section.
type Run struct {
	Format string
	Target []string
	Files []string
	Output string
	Threads int
	Lab bool
	JSON bool
	YODA bool
}

// Dictionary contains the [dictionary] section.
type Dictionary struct {
	Leptons, Particles, Nuclei string
	Coding string
}

// Scalar contains the [scalar] section.
type Scalar struct {
	Criterion []string
	EtaWindow []float64
}

// Distribution contains a single [distribution "name"] section.
type Distribution struct {
	Kind string
	Min, Max float64
	// Bins is the number of bins. If it is zero, the standard binning of
	// Kind is used and Min and Max are ignored.
	Bins int
	Particle []string
}

// Config is a full configuration file.
type Config struct {
	Run Run
	Dictionary Dictionary
	Scalar Scalar
	Distribution map[string]*Distribution
}

// Default returns the configuration used for variables which aren't set.
func Default() *Config {
	return &Config{
		Run: Run{
			Format: "epos", Output: "results.csv.stat", Threads: -1,
		},
	}
}

// Read parses a configuration file on top of the defaults.
func Read(fname string) (*Config, error) {
	c := Default()
	if err := gcfg.ReadFileInto(c, fname); err != nil {
		return nil, fmt.Errorf("Could not parse config file %s: %w", fname, err)
	}
	return c, nil
}

// ReadString parses the text of a configuration file on top of the
// defaults.
func ReadString(text string) (*Config, error) {
	c := Default()
	if err := gcfg.ReadStringInto(c, text); err != nil {
		return nil, fmt.Errorf("Could not parse config: %w", err)
	}
	return c, nil
}

// ScalarCriteria returns the configured scalar criteria, in the order:
// named criteria, then eta windows.
func (c *Config) ScalarCriteria() ([]analyze.ScalarCriterion, error) {
	if len(c.Scalar.Criterion) == 0 && len(c.Scalar.EtaWindow) == 0 {
		return analyze.DefaultScalars(), nil
	}

	std := analyze.StandardScalars()
	out := []analyze.ScalarCriterion{ }
	for _, name := range c.Scalar.Criterion {
		crit, ok := std[name]
		if !ok {
			return nil, fmt.Errorf("Unrecognized scalar criterion '%s'. The standard criteria are %s.", name, scalarNames(std))
		}
		out = append(out, crit)
	}

	for _, w := range c.Scalar.EtaWindow {
		if !(w > 0) {
			return nil, fmt.Errorf("etawindow must be positive, got %g.", w)
		}
		out = append(out, analyze.PseudorapidityFilterCnt{ Min: -w, Max: w })
	}

	return out, nil
}

func scalarNames(std map[string]analyze.ScalarCriterion) []string {
	names := make([]string, 0, len(std))
	for name := range std { names = append(names, name) }
	sort.Strings(names)
	return names
}

// DistributionNames returns the names of the configured distributions in
// sorted order.
func (c *Config) DistributionNames() []string {
	names := make([]string, 0, len(c.Distribution))
	for name := range c.Distribution { names = append(names, name) }
	sort.Strings(names)
	return names
}

// DistributionCriteria returns the configured distribution criteria sorted
// by name. Particle names are resolved through d, which may only be nil if
// no eta-codes distributions are configured.
func (c *Config) DistributionCriteria(
	d *dict.Dictionary,
) ([]analyze.DistributionCriterion, error) {
	if len(c.Distribution) == 0 { return analyze.DefaultDistributions(), nil }

	out := []analyze.DistributionCriterion{ }
	for _, name := range c.DistributionNames() {
		crit, err := c.Distribution[name].Criterion(name, d)
		if err != nil { return nil, err }
		out = append(out, crit)
	}
	return out, nil
}

// Check validates a distribution without resolving its particle names.
func (dist *Distribution) Check(name string) error {
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("Distribution name '%s' contains a path separator. Names are used in output file names.", name)
	}
	_, err := dist.binning(name)
	if err != nil { return err }
	switch dist.Kind {
	case ThetaKind, EtaKind:
		return nil
	case EtaCodesKind:
		if len(dist.Particle) == 0 {
			return fmt.Errorf("Distribution '%s' has kind '%s' but lists no particles.", name, dist.Kind)
		}
		return nil
	}
	return fmt.Errorf("Distribution '%s' has unrecognized kind '%s'. Valid kinds are '%s', '%s' and '%s'.", name, dist.Kind, ThetaKind, EtaKind, EtaCodesKind)
}

func (dist *Distribution) binning(name string) (analyze.Binning, error) {
	if dist.Bins == 0 {
		if dist.Kind == ThetaKind { return analyze.ThetaBins, nil }
		return analyze.PseudorapidityBins, nil
	}
	bins, err := analyze.NewBinning(dist.Min, dist.Max, dist.Bins)
	if err != nil {
		return bins, fmt.Errorf("Distribution '%s': %w", name, err)
	}
	return bins, nil
}

// Criterion converts the section into a criterion with the given name.
func (dist *Distribution) Criterion(
	name string, d *dict.Dictionary,
) (analyze.DistributionCriterion, error) {
	if err := dist.Check(name); err != nil { return nil, err }
	bins, _ := dist.binning(name)

	switch dist.Kind {
	case ThetaKind:
		return analyze.Theta{ Label: name, Bins: bins }, nil
	case EtaKind:
		return analyze.Pseudorapidity{ Label: name, Bins: bins }, nil
	}

	if d == nil {
		return nil, fmt.Errorf("Distribution '%s' needs a particle dictionary to resolve its particles.", name)
	}
	codes := make([]int32, len(dist.Particle))
	for i, pname := range dist.Particle {
		code, ok := d.CodeOf(pname)
		if !ok {
			return nil, fmt.Errorf("Distribution '%s' lists particle '%s', which isn't in the dictionary.", name, pname)
		}
		codes[i] = code
	}
	return analyze.NewCodePseudorapidity(name, bins, codes...), nil
}
