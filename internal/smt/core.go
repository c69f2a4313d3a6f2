package smt

import (
	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
)

// UnsatCoreProbe shrinks an unsatisfiable set of assertions to a core by
// deletion probing: drop each assertion in turn and keep the drop whenever
// the remainder is still unsatisfiable. The bindings expose no native core
// API, so the core costs one check per assertion on fresh contexts.
// Diagnostics only.
func UnsatCoreProbe(asserts []yices2.TermT) []yices2.TermT {
	core := make([]yices2.TermT, len(asserts))
	copy(core, asserts)
	for i := 0; i < len(core); {
		rest := make([]yices2.TermT, 0, len(core)-1)
		rest = append(rest, core[:i]...)
		rest = append(rest, core[i+1:]...)
		status, _, err := NewSolver().Check(rest...)
		if err == nil && status == Unsat {
			core = rest
		} else {
			i++
		}
	}
	return core
}

// TermString renders a term for diagnostics.
func TermString(t yices2.TermT) string {
	return yices2.TermToString(t, 512, 30, 0)
}
