package bmc

import (
	"io"

	"gobmc/internal/cpg"
	"gobmc/internal/encode"
	"gobmc/internal/smt"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// pathEngine checks one path at a time under push/pop, stopping at the first
// satisfiable one. An optional oracle discards cut-point paths before they
// are encoded.
type pathEngine struct {
	enc    *encode.Encoder
	graph  *cpg.Graph
	oracle Oracle
	cps    []*cpg.CutPoint

	encoded   bool
	truncated bool
	paths     []*encode.PathEncoding
	decls     []smt.Decl

	solver     *smt.Solver
	verdict    Verdict
	model      *yices2.ModelT
	bugPath    int
	sawUnknown bool
}

func newPathEngine(cfg Config) *pathEngine {
	return &pathEngine{
		enc:     cfg.Enc,
		graph:   cfg.Graph,
		oracle:  cfg.Oracle,
		solver:  smt.NewSolver(),
		verdict: NoVerdict,
		bugPath: -1,
	}
}

func (p *pathEngine) AddCutPoint(cp *cpg.CutPoint) {
	p.cps = append(p.cps, cp)
}

func (p *pathEngine) Encode() error {
	if p.encoded {
		return nil
	}
	p.encoded = true
	if len(p.cps) < 2 {
		return errors.New("engine needs a source and a target cut point")
	}
	src, dst := p.cps[0], p.cps[len(p.cps)-1]

	blockPaths, truncated := fullPaths(p.graph, src, dst, p.oracle)
	p.truncated = truncated
	for _, blocks := range blockPaths {
		pe, err := p.enc.EncodePath(blocks)
		if err != nil {
			return errors.Wrap(err, "encode path")
		}
		p.paths = append(p.paths, pe)
		p.decls = append(p.decls, pe.Decls...)
	}
	return nil
}

func (p *pathEngine) ToSmtLib(w io.Writer) error {
	if !p.encoded {
		return errors.New("nothing encoded")
	}
	// the whole problem is the disjunction over per-path formulas, so a
	// re-solve of the dump agrees with the incremental run
	formulas := make([]yices2.TermT, 0, len(p.paths))
	for _, pe := range p.paths {
		formulas = append(formulas, pe.Formula())
	}
	return smt.WriteSmtLib(w, p.decls, []yices2.TermT{smt.Or(formulas...)})
}

func (p *pathEngine) Solve() Verdict {
	if !p.encoded {
		return Unknown
	}
	for i, pe := range p.paths {
		if len(pe.Violations) == 0 {
			continue
		}
		p.solver.Push()
		status, model, err := p.solver.Check(pe.Formula())
		p.solver.Pop()
		if err != nil {
			log.Errorf("solver: %v", err)
			p.sawUnknown = true
			continue
		}
		switch status {
		case smt.Sat:
			p.verdict = Bug
			p.model = model
			p.bugPath = i
			return p.verdict
		case smt.Unsat:
		default:
			p.sawUnknown = true
		}
	}
	if p.sawUnknown || p.truncated {
		p.verdict = Unknown
	} else {
		p.verdict = Safe
	}
	return p.verdict
}

// UnsatCore is not provided by this engine: Safe here is the conjunction of
// many independent per-path refutations, not one unsatisfiable set.
func (p *pathEngine) UnsatCore() []string {
	return nil
}

func (p *pathEngine) Trace() (*Trace, error) {
	if p.verdict != Bug || p.model == nil {
		return nil, errors.New("no counterexample available")
	}
	return newTrace(p.paths[p.bugPath].Steps, p.model), nil
}
