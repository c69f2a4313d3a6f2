// Package harness turns a counterexample trace into a standalone module that
// replays the external-call results the solver chose. Each stubbed callee
// gets a constant array of captured values and a call counter; the stub
// delegates to an external get_value_<type> oracle so that replay runs which
// call more often than the captured prefix stay well defined.
package harness

import (
	"math/big"
	"strconv"
	"strings"

	"gobmc/internal/bmc"
	"gobmc/internal/ir"
	"gobmc/internal/stats"

	log "github.com/sirupsen/logrus"
	"github.com/pkg/errors"
)

const counterBits = 32

type Options struct {
	// Module is the analyzed program, used to reject locally defined
	// callees. Optional.
	Module *ir.Module
	// KeepCallee decides which callees are original, stubbable functions.
	// Nil selects the default: no '.' in the name (the separator compilers
	// use for generated clones) and not defined in Module.
	KeepCallee func(name string) bool
}

func (o Options) keep(name string) bool {
	if o.KeepCallee != nil {
		return o.KeepCallee(name)
	}
	if strings.Contains(name, ".") {
		return false
	}
	return o.Module == nil || !o.Module.Defines(name)
}

type captured struct {
	call   *ir.Call
	values []bmc.Value
}

// Synthesize builds the replay module for a trace. Synthesizing the same
// trace twice yields structurally identical modules.
func Synthesize(trace *bmc.Trace, opts Options) (*ir.Module, error) {
	if trace == nil {
		return nil, errors.New("nil trace")
	}

	byCallee := make(map[string]*captured)
	var order []string

	for pos := 0; pos < trace.Len(); pos++ {
		for _, in := range trace.Block(pos).Instrs {
			call, ok := in.(*ir.Call)
			if !ok {
				continue
			}
			// only values the model pins down are replayable
			v, ok := trace.Eval(pos, call)
			if !ok || v.Kind == bmc.ValUnknown {
				continue
			}
			if !opts.keep(call.Callee) {
				continue
			}
			c, ok := byCallee[call.Callee]
			if !ok {
				c = &captured{call: call}
				byCallee[call.Callee] = c
				order = append(order, call.Callee)
			}
			c.values = append(c.values, v)
		}
	}

	m := &ir.Module{Name: "harness"}
	for _, name := range order {
		c := byCallee[name]
		ret, ok := c.call.Type.(ir.IntType)
		if !ok {
			log.Warnf("Skipping non-integer function: %s", name)
			continue
		}
		buildStub(m, name, ret, c)
	}
	return m, nil
}

func buildStub(m *ir.Module, name string, ret ir.IntType, c *captured) {
	values := &ir.Global{
		Name:  name + ".values",
		Elem:  ret,
		Array: true,
		Const: true,
		Init:  make([]*big.Int, 0, len(c.values)),
	}
	for _, v := range c.values {
		values.Init = append(values.Init, literal(v))
	}
	counter := &ir.Global{
		Name: name + ".counter",
		Elem: ir.IntType{Bits: counterBits},
		Init: []*big.Int{big.NewInt(0)},
	}
	m.Globals = append(m.Globals, values, counter)

	params := make([]ir.Param, len(c.call.Args))
	for i := range c.call.Args {
		params[i] = ir.Param{Name: argName(c.call.Args[i], i), Type: paramType(c.call, i)}
	}
	stub := &ir.Func{
		Name:   name,
		Params: params,
		Ret:    ret,
		Blocks: []*ir.Block{{
			Name: "entry",
			Instrs: []ir.Instr{
				&ir.Load{Name: "count", Type: ir.IntType{Bits: counterBits}, Global: counter.Name},
				&ir.BinOp{Name: "next", Op: ir.OpAdd, Type: ir.IntType{Bits: counterBits},
					X: ir.Var{Name: "count"}, Y: ir.IntConst{Val: big.NewInt(1), Bits: counterBits}},
				&ir.Store{Global: counter.Name, Val: ir.Var{Name: "next"}},
				&ir.Call{
					Name:   "value",
					Callee: "get_value_" + ret.String(),
					Type:   ret,
					Args: []ir.Value{
						ir.Var{Name: "count"},
						ir.GlobalRef{Name: values.Name},
						ir.IntConst{Val: big.NewInt(int64(len(c.values))), Bits: counterBits},
					},
				},
			},
			Term: &ir.Ret{Val: ir.Var{Name: "value"}},
		}},
	}
	m.Funcs = append(m.Funcs, stub)
}

// paramType mirrors the callee's declared argument type into the stub
// signature. Untyped arguments default to i32.
func paramType(c *ir.Call, i int) ir.Type {
	if i < len(c.ArgTypes) && c.ArgTypes[i] != nil {
		return c.ArgTypes[i]
	}
	return ir.IntType{Bits: 32}
}

// literal converts an abstract solver value to a concrete initializer.
// Unrecognized kinds fall back to zero; lossy, but it keeps synthesis total.
func literal(v bmc.Value) *big.Int {
	switch v.Kind {
	case bmc.ValTrue:
		return big.NewInt(1)
	case bmc.ValFalse:
		return big.NewInt(0)
	case bmc.ValInt:
		return new(big.Int).Set(v.Int)
	default:
		log.Warnf("Not handled value: %s", v)
		stats.Count("HarnessLossyValues")
		return big.NewInt(0)
	}
}

func argName(v ir.Value, i int) string {
	if x, ok := v.(ir.Var); ok {
		return x.Name
	}
	return "arg" + strconv.Itoa(i)
}
