package dict

// Nuclei use the PDG convention ±10LZZZAAAI, where L is the number of strange
// quarks, ZZZ the proton number, AAA the mass number and I the isomer level.
// They are handled the same way under every Coding.

const (
	// NucleusThreshold is the smallest code magnitude that denotes a
	// nucleus.
	NucleusThreshold = 1000000000
	// AtomicMassUnit is the mass per nucleon, in GeV, of nuclei which don't
	// have an explicit table mass.
	AtomicMassUnit = 0.9314941
)

// IsNucleus returns true if a code denotes a nucleus.
func IsNucleus(code int32) bool {
	return code > NucleusThreshold || code < -NucleusThreshold
}

// NucleusZ returns the proton number of a nucleus code.
func NucleusZ(code int32) int32 { return (abs32(code) / 10000) % 1000 }

// NucleusA returns the mass number of a nucleus code.
func NucleusA(code int32) int32 { return (abs32(code) / 10) % 1000 }

// NucleusCode assembles the code of a nucleus with proton number z and mass
// number a.
func NucleusCode(z, a int32) int32 {
	return NucleusThreshold + z*10000 + a*10
}

func abs32(x int32) int32 {
	if x < 0 { return -x }
	return x
}
