// Package smt wraps the yices2 bindings behind the small surface the
// verification engines need: contexts, term construction, model extraction,
// dumps, and unsat-core probing.
package smt

import (
	"fmt"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
)

type Status int

const (
	Unknown Status = iota
	Sat
	Unsat
)

func (s Status) String() string {
	switch s {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	}
	return "unknown"
}

type Solver struct {
	ctx yices2.ContextT
}

func NewSolver() *Solver {
	s := &Solver{
		ctx: yices2.ContextT{},
	}
	yices2.InitContext(yices2.ConfigT{}, &s.ctx)
	return s
}

func (s *Solver) Assert(terms ...yices2.TermT) error {
	errcode := yices2.AssertFormulas(s.ctx, terms)
	if errcode < 0 {
		return fmt.Errorf("%s", yices2.ErrorString())
	}
	return nil
}

// Check asserts terms and decides satisfiability of everything asserted so
// far. The model is non-nil only for Sat.
func (s *Solver) Check(terms ...yices2.TermT) (Status, *yices2.ModelT, error) {
	if err := s.Assert(terms...); err != nil {
		return Unknown, nil, err
	}
	status := yices2.CheckContext(s.ctx, yices2.ParamT{})
	switch status {
	case yices2.StatusSat:
		return Sat, yices2.GetModel(s.ctx, 1), nil
	case yices2.StatusUnsat:
		return Unsat, nil, nil
	}
	return Unknown, nil, nil
}

func (s *Solver) Push() {
	yices2.Push(s.ctx)
}

func (s *Solver) Pop() {
	yices2.Pop(s.ctx)
}
