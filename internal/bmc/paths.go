package bmc

import (
	"gobmc/internal/cpg"
	"gobmc/internal/ir"

	log "github.com/sirupsen/logrus"
)

// maxPaths bounds path enumeration; hitting it degrades the verdict to
// Unknown instead of running forever on loop-heavy control flow.
const maxPaths = 4096

// cpSeqs enumerates cut-point sequences from src to dst, using each edge of
// the cut-point graph at most once. That bound lets a loop header be entered
// and its body taken one summarized iteration, which is what makes this
// checking bounded.
func cpSeqs(g *cpg.Graph, src, dst *cpg.CutPoint) [][]*cpg.CutPoint {
	type edge struct{ a, b *cpg.CutPoint }
	var out [][]*cpg.CutPoint
	used := make(map[edge]bool)
	var walk func(cp *cpg.CutPoint, seq []*cpg.CutPoint)
	walk = func(cp *cpg.CutPoint, seq []*cpg.CutPoint) {
		if cp == dst {
			out = append(out, append([]*cpg.CutPoint{}, seq...))
			return
		}
		for _, succ := range g.Succs(cp) {
			e := edge{cp, succ}
			if used[e] {
				continue
			}
			used[e] = true
			walk(succ, append(seq, succ))
			delete(used, e)
		}
	}
	walk(src, []*cpg.CutPoint{src})
	return out
}

// expand turns a cut-point sequence into every block path realizing it, one
// choice of summary path per edge.
func expand(g *cpg.Graph, seq []*cpg.CutPoint) [][]*ir.Block {
	paths := [][]*ir.Block{{seq[0].Block()}}
	for i := 0; i+1 < len(seq); i++ {
		options := g.Paths(seq[i], seq[i+1])
		var next [][]*ir.Block
		for _, prefix := range paths {
			for _, opt := range options {
				p := make([]*ir.Block, 0, len(prefix)+len(opt)-1)
				p = append(p, prefix...)
				p = append(p, opt[1:]...) // opt starts with seq[i], already present
				next = append(next, p)
			}
		}
		paths = next
	}
	return paths
}

// fullPaths enumerates the block paths from src to dst the engines encode.
// The second result reports truncation at maxPaths.
func fullPaths(g *cpg.Graph, src, dst *cpg.CutPoint, oracle Oracle) ([][]*ir.Block, bool) {
	var out [][]*ir.Block
	for _, seq := range cpSeqs(g, src, dst) {
		if oracle != nil && oracle.Infeasible(seq) {
			continue
		}
		for _, p := range expand(g, seq) {
			if len(out) == maxPaths {
				log.Warnf("path enumeration truncated at %d paths", maxPaths)
				return out, true
			}
			out = append(out, p)
		}
	}
	return out, false
}
