package lib

import (
	"fmt"
	"strings"
)

// Mode is the command hepstat is being run with.
type Mode int
const (
	HelpMode Mode = iota
	CheckMode
	StatsMode
)

var modeNames = []string{ "help", "check", "stats" }

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) { return fmt.Sprintf("Mode(%d)", int(m)) }
	return modeNames[m]
}

// ParseMode converts a mode name into a Mode.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if s == name { return Mode(i), nil }
	}
	return HelpMode, fmt.Errorf("Unrecognized mode '%s'. Valid modes are %s.",
		s, strings.Join(modeNames, ", "))
}

// CalcTarget is a set of the quantities that a run computes.
type CalcTarget int
const (
	Statistics CalcTarget = 1 << iota
	Distribution
)

var targetNames = map[string]CalcTarget{
	"statistics": Statistics, "distribution": Distribution,
}

// Has returns true if t contains every target in x.
func (t CalcTarget) Has(x CalcTarget) bool { return t & x == x }

func (t CalcTarget) String() string {
	names := []string{ }
	if t.Has(Statistics) { names = append(names, "statistics") }
	if t.Has(Distribution) { names = append(names, "distribution") }
	return strings.Join(names, ",")
}

// ParseCalcTargets converts a list of target names into a CalcTarget. Names
// may also be comma-separated. An empty list means Statistics.
func ParseCalcTargets(names []string) (CalcTarget, error) {
	t := CalcTarget(0)
	for _, list := range names {
		for _, name := range strings.Split(list, ",") {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" { continue }
			x, ok := targetNames[name]
			if !ok {
				return 0, fmt.Errorf("Unrecognized calculation target '%s'. Valid targets are 'statistics' and 'distribution'.", name)
			}
			t |= x
		}
	}

	if t == 0 { t = Statistics }
	return t, nil
}

// CheckStrictness indicates how Check should behave when it encounters an
// error.
type CheckStrictness int
const (
	// CrashOnError returns the first problem found.
	CrashOnError CheckStrictness = iota
	// WarnOnError logs every problem found and returns all of them.
	WarnOnError
)
