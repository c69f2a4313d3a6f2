package bmc

import (
	"fmt"
	"io"

	"gobmc/internal/cpg"
	"gobmc/internal/encode"
	"gobmc/internal/smt"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// monoEngine encodes the whole procedure at once: every path gets a guard
// variable, and the single solver query asks whether some guarded path can
// violate an assertion.
type monoEngine struct {
	enc   *encode.Encoder
	graph *cpg.Graph
	cps   []*cpg.CutPoint

	encoded   bool
	truncated bool
	paths     []*encode.PathEncoding
	guards    []yices2.TermT
	asserts   []yices2.TermT
	decls     []smt.Decl
	// guardSeq numbers this engine's guard variables; per instance, so
	// concurrently running engines share no state.
	guardSeq int

	solver  *smt.Solver
	verdict Verdict
	model   *yices2.ModelT
	bugPath int
}

func newMonoEngine(cfg Config) *monoEngine {
	return &monoEngine{
		enc:     cfg.Enc,
		graph:   cfg.Graph,
		solver:  smt.NewSolver(),
		verdict: NoVerdict,
		bugPath: -1,
	}
}

func (m *monoEngine) AddCutPoint(cp *cpg.CutPoint) {
	m.cps = append(m.cps, cp)
}

func (m *monoEngine) Encode() error {
	if m.encoded {
		return nil
	}
	m.encoded = true
	if len(m.cps) < 2 {
		return errors.New("engine needs a source and a target cut point")
	}
	src, dst := m.cps[0], m.cps[len(m.cps)-1]

	blockPaths, truncated := fullPaths(m.graph, src, dst, nil)
	m.truncated = truncated

	var guarded []yices2.TermT
	for _, blocks := range blockPaths {
		pe, err := m.enc.EncodePath(blocks)
		if err != nil {
			return errors.Wrap(err, "encode path")
		}
		name := fmt.Sprintf("path!%d", m.guardSeq)
		m.guardSeq++
		guard := smt.FreshBV(name, 1)
		g := smt.AsBool(guard)
		m.paths = append(m.paths, pe)
		m.guards = append(m.guards, guard)
		m.decls = append(m.decls, pe.Decls...)
		m.decls = append(m.decls, smt.Decl{Name: name, Bits: 1})
		m.asserts = append(m.asserts, smt.Implies(g, pe.Formula()))
		guarded = append(guarded, g)
	}
	// some guard must be taken; with no paths this is the empty disjunction
	m.asserts = append(m.asserts, smt.Or(guarded...))
	return nil
}

func (m *monoEngine) ToSmtLib(w io.Writer) error {
	if !m.encoded {
		return errors.New("nothing encoded")
	}
	return smt.WriteSmtLib(w, m.decls, m.asserts)
}

func (m *monoEngine) Solve() Verdict {
	if !m.encoded {
		return Unknown
	}
	status, model, err := m.solver.Check(m.asserts...)
	if err != nil {
		log.Errorf("solver: %v", err)
		m.verdict = Unknown
		return m.verdict
	}
	switch status {
	case smt.Sat:
		m.verdict = Bug
		m.model = model
		m.bugPath = m.takenPath(model)
	case smt.Unsat:
		if m.truncated {
			m.verdict = Unknown
		} else {
			m.verdict = Safe
		}
	default:
		m.verdict = Unknown
	}
	return m.verdict
}

// takenPath finds the first guard the model sets.
func (m *monoEngine) takenPath(model *yices2.ModelT) int {
	for i, g := range m.guards {
		v, ok := smt.ModelBig(model, g)
		if ok && v.Sign() != 0 {
			return i
		}
	}
	return -1
}

func (m *monoEngine) UnsatCore() []string {
	if m.verdict != Safe {
		return nil
	}
	core := smt.UnsatCoreProbe(m.asserts)
	out := make([]string, len(core))
	for i, t := range core {
		if form, ok := smt.Render(t); ok {
			out[i] = form
		} else {
			out[i] = smt.TermString(t)
		}
	}
	return out
}

func (m *monoEngine) Trace() (*Trace, error) {
	if m.verdict != Bug || m.model == nil {
		return nil, errors.New("no counterexample available")
	}
	if m.bugPath < 0 {
		return nil, errors.New("model selects no path")
	}
	return newTrace(m.paths[m.bugPath].Steps, m.model), nil
}
