package bmc

import (
	"fmt"
	"io"
	"math/big"
	"sort"

	"gobmc/internal/encode"
	"gobmc/internal/ir"
	"gobmc/internal/smt"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
)

type ValueKind int

const (
	// ValUnknown marks a value the model does not pin down.
	ValUnknown ValueKind = iota
	ValTrue
	ValFalse
	ValInt
)

// Value is the abstract solver value assigned to an instruction result.
type Value struct {
	Kind ValueKind
	Int  *big.Int
}

func (v Value) String() string {
	switch v.Kind {
	case ValTrue:
		return "true"
	case ValFalse:
		return "false"
	case ValInt:
		return v.Int.String()
	}
	return "?"
}

type traceStep struct {
	block *ir.Block
	vals  map[string]Value
}

// Trace is an ordered counterexample: the blocks visited by the model and
// the partial valuation at each step. Immutable once built.
type Trace struct {
	steps []traceStep
}

// newTrace projects the model onto every value bound along the path.
func newTrace(steps []encode.Step, model *yices2.ModelT) *Trace {
	tr := &Trace{}
	for _, s := range steps {
		st := traceStep{block: s.Block, vals: make(map[string]Value, len(s.Defs))}
		for name, term := range s.Defs {
			v, ok := smt.ModelBig(model, term)
			if !ok {
				st.vals[name] = Value{Kind: ValUnknown}
				continue
			}
			if yices2.TermBitsize(term) == 1 {
				if v.Sign() != 0 {
					st.vals[name] = Value{Kind: ValTrue}
				} else {
					st.vals[name] = Value{Kind: ValFalse}
				}
			} else {
				st.vals[name] = Value{Kind: ValInt, Int: v}
			}
		}
		tr.steps = append(tr.steps, st)
	}
	return tr
}

// NewTrace assembles a trace from explicit steps: one visited block and its
// valuation per position. The engines build traces from solver models; this
// constructor lets any other strategy produce one for the synthesizer.
func NewTrace(blocks []*ir.Block, vals []map[string]Value) *Trace {
	tr := &Trace{}
	for i, b := range blocks {
		v := make(map[string]Value, len(vals[i]))
		for name, val := range vals[i] {
			v[name] = val
		}
		tr.steps = append(tr.steps, traceStep{block: b, vals: v})
	}
	return tr
}

func (t *Trace) Len() int {
	return len(t.steps)
}

func (t *Trace) Block(pos int) *ir.Block {
	return t.steps[pos].block
}

// Eval returns the value the model assigns to the result of in at the given
// position. The second result is false when the step binds no such value.
func (t *Trace) Eval(pos int, in ir.Instr) (Value, bool) {
	name := ir.Result(in)
	if name == "" || pos < 0 || pos >= len(t.steps) {
		return Value{}, false
	}
	v, ok := t.steps[pos].vals[name]
	return v, ok
}

func (t *Trace) Print(w io.Writer) {
	for pos, s := range t.steps {
		fmt.Fprintf(w, "[%d] %s:\n", pos, s.block.Name)
		names := make([]string, 0, len(s.vals))
		for n := range s.vals {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Fprintf(w, "  %%%s = %s\n", n, s.vals[n])
		}
	}
}
