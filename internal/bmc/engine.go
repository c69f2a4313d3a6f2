package bmc

import (
	"io"

	"gobmc/internal/cpg"
	"gobmc/internal/encode"
)

type EngineKind int

const (
	Mono EngineKind = iota
	PathBased
)

func (k EngineKind) String() string {
	if k == PathBased {
		return "path"
	}
	return "mono"
}

// Oracle prunes cut-point paths the path-based engine would otherwise
// encode. Optional collaborator; typically backed by abstract interpretation.
type Oracle interface {
	Infeasible(path []*cpg.CutPoint) bool
}

// Engine is one bounded-model-checking strategy over a pair of cut points.
// Lifecycle: AddCutPoint (source then target), Encode once, optional
// ToSmtLib, Solve, then UnsatCore or Trace depending on the verdict.
type Engine interface {
	AddCutPoint(cp *cpg.CutPoint)
	Encode() error
	ToSmtLib(w io.Writer) error
	Solve() Verdict
	UnsatCore() []string
	Trace() (*Trace, error)
}

type Config struct {
	Kind  EngineKind
	Enc   *encode.Encoder
	Graph *cpg.Graph
	// Oracle is consulted by the path-based engine only.
	Oracle Oracle
}

// New instantiates the engine variant selected by cfg.Kind.
func New(cfg Config) Engine {
	if cfg.Kind == PathBased {
		return newPathEngine(cfg)
	}
	return newMonoEngine(cfg)
}
