package smt

import (
	"fmt"
	"io"
	"strings"
	"sync"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
)

// The yices printer emits Yices' own syntax (bv-add, 0b… constants), which
// no external solver accepts. Every constructor in this package therefore
// records the SMT-LIB2 form of the term it builds; dumps render from this
// table. Yices hash-conses terms, so the table stays proportional to the
// number of distinct terms.
var (
	renderMu sync.Mutex
	renders  = make(map[yices2.TermT]string)
)

func remember(t yices2.TermT, form string) yices2.TermT {
	renderMu.Lock()
	renders[t] = form
	renderMu.Unlock()
	return t
}

// app registers a compound form (op arg...). A term composed from terms
// built outside this package stays unrendered.
func app(op string, t yices2.TermT, args ...yices2.TermT) yices2.TermT {
	renderMu.Lock()
	defer renderMu.Unlock()
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, op)
	for _, a := range args {
		form, ok := renders[a]
		if !ok {
			return t
		}
		parts = append(parts, form)
	}
	renders[t] = "(" + strings.Join(parts, " ") + ")"
	return t
}

// Render returns the SMT-LIB2 form of a term built through this package.
func Render(t yices2.TermT) (string, bool) {
	renderMu.Lock()
	defer renderMu.Unlock()
	s, ok := renders[t]
	return s, ok
}

// Decl records a variable declaration for the dump. Bits == 0 declares Bool.
type Decl struct {
	Name string
	Bits uint32
}

// WriteSmtLib serializes an encoding in SMT-LIB2 form: declarations, one
// assert per term, then (check-sat). It never touches a context, so a dump
// cannot perturb later solving. Terms not built through this package have no
// recorded form and are an error.
func WriteSmtLib(w io.Writer, decls []Decl, asserts []yices2.TermT) error {
	if _, err := fmt.Fprintln(w, "(set-logic QF_BV)"); err != nil {
		return err
	}
	for _, d := range decls {
		var err error
		if d.Bits == 0 {
			_, err = fmt.Fprintf(w, "(declare-fun %s () Bool)\n", d.Name)
		} else {
			_, err = fmt.Fprintf(w, "(declare-fun %s () (_ BitVec %d))\n", d.Name, d.Bits)
		}
		if err != nil {
			return err
		}
	}
	for _, t := range asserts {
		form, ok := Render(t)
		if !ok {
			return fmt.Errorf("no solver-input form for term %s", TermString(t))
		}
		if _, err := fmt.Fprintf(w, "(assert %s)\n", form); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "(check-sat)")
	return err
}
