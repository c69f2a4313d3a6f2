package bmc

import (
	"fmt"
	"io"
	"os"

	"gobmc/internal/cpg"
	"gobmc/internal/dbg"
	"gobmc/internal/encode"
	"gobmc/internal/ir"
	"gobmc/internal/stats"

	log "github.com/sirupsen/logrus"
)

// Driver runs one verification per function: pick the entry and return cut
// points, encode with the configured engine, optionally dump, solve, report.
// It never mutates the analyzed function.
type Driver struct {
	Engine EngineKind
	Layout encode.DataLayout
	Mem    encode.MemModel
	Lib    encode.LibSemantics
	Oracle Oracle
	// Dump receives the encoding in solver-input form before solving.
	Dump io.Writer
	// Solve false stops after encoding (and dumping).
	Solve bool
	// Results receives exactly one verdict line per verified function.
	Results io.Writer
	// Diag receives gated diagnostics; defaults to stderr.
	Diag io.Writer
}

func NewDriver() *Driver {
	return &Driver{
		Engine:  Mono,
		Layout:  encode.DefaultLayout(),
		Mem:     encode.MemRegisters,
		Solve:   true,
		Results: os.Stdout,
		Diag:    os.Stderr,
	}
}

// Run verifies fn between its entry and its first return cut point. The
// trace is non-nil only on Bug.
func (d *Driver) Run(fn *ir.Func, g *cpg.Graph) (Verdict, *Trace) {
	src := g.CpByBlock(fn.Entry())
	if src == nil {
		log.Warnf("BmcDriver: function '%s' has no entry cut point", fn.Name)
		return NoVerdict, nil
	}

	// find the return instruction; assume it is unique and take the first
	var dst *cpg.CutPoint
	extra := 0
	for _, b := range fn.Blocks {
		if _, ok := b.Term.(*ir.Ret); !ok {
			continue
		}
		if !g.IsCutPoint(b) {
			continue
		}
		if dst == nil {
			dst = g.CpByBlock(b)
		} else {
			extra++
		}
	}
	if extra > 0 {
		log.Warnf("BmcDriver: function '%s' has %d additional return locations; only the first is verified", fn.Name, extra)
	}
	if dst == nil || !g.HasEdge(src, dst) {
		log.Warnf("BmcDriver: function '%s' never returns", fn.Name)
		return NoVerdict, nil
	}

	enc := encode.New(fn, d.Layout, d.Mem, d.Lib)
	engine := New(Config{Kind: d.Engine, Enc: enc, Graph: g, Oracle: d.Oracle})

	engine.AddCutPoint(src)
	engine.AddCutPoint(dst)
	dbg.Logf("bmc", "BMC from: %s to %s", src.Block().Name, dst.Block().Name)

	if err := engine.Encode(); err != nil {
		log.Warnf("BmcDriver: function '%s': %v", fn.Name, err)
		return NoVerdict, nil
	}
	if d.Dump != nil {
		if err := engine.ToSmtLib(d.Dump); err != nil {
			log.Warnf("BmcDriver: dump failed: %v", err)
		}
	}
	if !d.Solve {
		dbg.Logf("bmc", "Stopping before solving")
		return NoVerdict, nil
	}

	stats.Resume("BMC")
	verdict := engine.Solve()
	stats.Stop("BMC")

	switch verdict {
	case Bug:
		fmt.Fprintln(d.Results, "sat")
		stats.Sset("Result", "FALSE")
	case Safe:
		fmt.Fprintln(d.Results, "unsat")
		stats.Sset("Result", "TRUE")
	default:
		fmt.Fprintln(d.Results, "unknown")
	}

	if verdict == Safe && dbg.On("bmc") {
		fmt.Fprintln(d.diag(), "CORE BEGIN")
		for _, c := range engine.UnsatCore() {
			fmt.Fprintln(d.diag(), c)
		}
		fmt.Fprintln(d.diag(), "CORE END")
	}

	var trace *Trace
	if verdict == Bug {
		var err error
		trace, err = engine.Trace()
		if err != nil {
			log.Errorf("BmcDriver: counterexample: %v", err)
		}
		if trace != nil && dbg.On("cex") {
			fmt.Fprintf(d.diag(), "Analyzed Function:\n%s\n", fn)
			fmt.Fprintln(d.diag(), "Trace")
			trace.Print(d.diag())
		}
	}
	return verdict, trace
}

func (d *Driver) diag() io.Writer {
	if d.Diag != nil {
		return d.Diag
	}
	return os.Stderr
}
