// Package bmc drives bounded model checking of a single function between two
// cut points and represents the counterexamples it finds.
package bmc

type Verdict int

const (
	// NoVerdict means verification did not run to a decision: the function
	// was skipped or solving was disabled.
	NoVerdict Verdict = iota
	// Bug: a safety violation is reachable (the encoding is satisfiable).
	Bug
	// Safe: no violation is reachable (the encoding is unsatisfiable).
	Safe
	// Unknown: the solver could not decide.
	Unknown
)

func (v Verdict) String() string {
	switch v {
	case Bug:
		return "bug"
	case Safe:
		return "safe"
	case Unknown:
		return "unknown"
	}
	return "none"
}
