// Package cpg builds the cut-point graph of a function: the entry block,
// every loop header, and every returning block are cut points; an edge exists
// between two cut points when a path of non-cut-point blocks connects them.
package cpg

import (
	"fmt"

	"gobmc/internal/ir"
)

type CutPoint struct {
	id    int
	block *ir.Block
}

func (cp *CutPoint) Block() *ir.Block {
	return cp.block
}

func (cp *CutPoint) String() string {
	return fmt.Sprintf("cp(%s)", cp.block.Name)
}

type Graph struct {
	fn      *ir.Func
	cps     []*CutPoint
	byBlock map[*ir.Block]*CutPoint
	// paths[a][b] holds every cut-point-free block path from a to b,
	// inclusive of both endpoints.
	paths map[int]map[int][][]*ir.Block
}

// Build computes the cut-point graph for fn.
func Build(fn *ir.Func) *Graph {
	g := &Graph{
		fn:      fn,
		byBlock: make(map[*ir.Block]*CutPoint),
		paths:   make(map[int]map[int][][]*ir.Block),
	}

	headers := loopHeaders(fn)
	for _, b := range fn.Blocks {
		_, isRet := b.Term.(*ir.Ret)
		if b == fn.Entry() || headers[b] || isRet {
			cp := &CutPoint{id: len(g.cps), block: b}
			g.cps = append(g.cps, cp)
			g.byBlock[b] = cp
		}
	}
	for _, cp := range g.cps {
		g.explore(cp)
	}
	return g
}

func (g *Graph) Func() *ir.Func {
	return g.fn
}

func (g *Graph) CutPoints() []*CutPoint {
	return g.cps
}

// CpByBlock returns the cut point for b, or nil if b is not a cut point.
func (g *Graph) CpByBlock(b *ir.Block) *CutPoint {
	return g.byBlock[b]
}

func (g *Graph) IsCutPoint(b *ir.Block) bool {
	return g.byBlock[b] != nil
}

func (g *Graph) HasEdge(a, b *CutPoint) bool {
	return len(g.paths[a.id][b.id]) > 0
}

// Paths returns every cut-point-free block path from a to b, both endpoints
// included. The slices are shared; callers must not mutate them.
func (g *Graph) Paths(a, b *CutPoint) [][]*ir.Block {
	return g.paths[a.id][b.id]
}

// Succs returns the cut points reachable from a by one edge.
func (g *Graph) Succs(a *CutPoint) []*CutPoint {
	var out []*CutPoint
	for _, cp := range g.cps {
		if cp != a && g.HasEdge(a, cp) {
			out = append(out, cp)
		}
	}
	// self loop (loop header straight back to itself)
	if g.HasEdge(a, a) {
		out = append(out, a)
	}
	return out
}

// explore enumerates every cut-point-free path out of src to the next cut
// points. Interior blocks may not repeat, so the walk terminates.
func (g *Graph) explore(src *CutPoint) {
	var walk func(b *ir.Block, path []*ir.Block, seen map[*ir.Block]bool)
	walk = func(b *ir.Block, path []*ir.Block, seen map[*ir.Block]bool) {
		for _, name := range b.Successors() {
			succ := g.fn.BlockByName(name)
			if dst := g.byBlock[succ]; dst != nil {
				full := make([]*ir.Block, 0, len(path)+1)
				full = append(full, path...)
				full = append(full, succ)
				if g.paths[src.id] == nil {
					g.paths[src.id] = make(map[int][][]*ir.Block)
				}
				g.paths[src.id][dst.id] = append(g.paths[src.id][dst.id], full)
				continue
			}
			if seen[succ] {
				continue
			}
			seen[succ] = true
			walk(succ, append(path, succ), seen)
			delete(seen, succ)
		}
	}
	walk(src.block, []*ir.Block{src.block}, map[*ir.Block]bool{})
}

// loopHeaders finds targets of back edges by DFS from the entry block.
func loopHeaders(fn *ir.Func) map[*ir.Block]bool {
	headers := make(map[*ir.Block]bool)
	state := make(map[*ir.Block]int) // 0 unvisited, 1 on stack, 2 done
	var visit func(b *ir.Block)
	visit = func(b *ir.Block) {
		state[b] = 1
		for _, name := range b.Successors() {
			succ := fn.BlockByName(name)
			switch state[succ] {
			case 0:
				visit(succ)
			case 1:
				headers[succ] = true
			}
		}
		state[b] = 2
	}
	if fn.Entry() != nil {
		visit(fn.Entry())
	}
	return headers
}
