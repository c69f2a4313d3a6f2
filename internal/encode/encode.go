// Package encode turns straight-line block paths into logical constraints
// over bitvector terms. It never decides satisfiability; engines own the
// solver.
package encode

import (
	"fmt"

	"gobmc/internal/ir"
	"gobmc/internal/smt"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
	"github.com/pkg/errors"
)

// MemModel selects how memory is modelled. Only register-level modelling is
// implemented; the enum exists because the driver picks one per run.
type MemModel int

const (
	MemRegisters MemModel = iota
)

// DataLayout fixes the widths the encoder falls back to when the program
// does not pin them.
type DataLayout struct {
	IntBits uint32 // width of untyped integer literals
	PtrBits uint32 // width pointers are modelled at
}

func DefaultLayout() DataLayout {
	return DataLayout{IntBits: 32, PtrBits: 64}
}

// Summary defines the result of a known library call in terms of its
// arguments. Optional; callees without a summary havoc their result.
type Summary func(args []yices2.TermT, bits uint32) yices2.TermT

type LibSemantics map[string]Summary

// Step is one visited block along an encoded path together with the terms
// bound by its instructions.
type Step struct {
	Block *ir.Block
	Defs  map[string]yices2.TermT
}

// PathEncoding is the encoding of one block path. Each violation term is
// self-contained: it conjoins the path condition up to its assert with the
// negated condition. The path can fail iff the disjunction of its violations
// is satisfiable.
type PathEncoding struct {
	Violations []yices2.TermT
	Steps      []Step
	Decls      []smt.Decl
}

// Formula is the term to assert for this path.
func (pe *PathEncoding) Formula() yices2.TermT {
	return smt.Or(pe.Violations...)
}

type Encoder struct {
	fn     *ir.Func
	layout DataLayout
	mem    MemModel
	lib    LibSemantics
	fresh  int
}

func New(fn *ir.Func, layout DataLayout, mem MemModel, lib LibSemantics) *Encoder {
	return &Encoder{
		fn:     fn,
		layout: layout,
		mem:    mem,
		lib:    lib,
	}
}

// EncodePath encodes one block path from entry to return. Every invocation
// uses fresh variables, so encodings of different paths are independent even
// inside one solver context.
func (e *Encoder) EncodePath(blocks []*ir.Block) (*PathEncoding, error) {
	pe := &PathEncoding{}
	env := make(map[string]yices2.TermT)
	bits := make(map[string]uint32)

	for _, p := range e.fn.Params {
		w := e.widthOf(p.Type)
		t := e.freshVar(p.Name, w, pe)
		env[p.Name] = t
		bits[p.Name] = w
	}

	// path condition accumulated so far: assumes, taken branch conditions,
	// and conditions of asserts already passed
	var guards []yices2.TermT

	for k, b := range blocks {
		step := Step{Block: b, Defs: make(map[string]yices2.TermT)}
		for _, in := range b.Instrs {
			if err := e.encodeInstr(in, env, bits, &step, &guards, pe); err != nil {
				return nil, errors.Wrapf(err, "block %s", b.Name)
			}
		}
		if k+1 < len(blocks) {
			if err := e.encodeBranch(b, blocks[k+1], env, bits, &guards); err != nil {
				return nil, errors.Wrapf(err, "block %s", b.Name)
			}
		}
		pe.Steps = append(pe.Steps, step)
	}
	return pe, nil
}

func (e *Encoder) encodeInstr(in ir.Instr, env map[string]yices2.TermT,
	bits map[string]uint32, step *Step, guards *[]yices2.TermT, pe *PathEncoding) error {
	switch i := in.(type) {
	case *ir.BinOp:
		x, err := e.operand(i.X, i.Type.Bits, env)
		if err != nil {
			return err
		}
		y, err := e.operand(i.Y, i.Type.Bits, env)
		if err != nil {
			return err
		}
		t, err := binop(i.Op, x, y)
		if err != nil {
			return err
		}
		env[i.Name] = t
		bits[i.Name] = i.Type.Bits
		step.Defs[i.Name] = t
	case *ir.ICmp:
		w := e.cmpWidth(i, bits)
		x, err := e.operand(i.X, w, env)
		if err != nil {
			return err
		}
		y, err := e.operand(i.Y, w, env)
		if err != nil {
			return err
		}
		c, err := icmp(i.Pred, x, y)
		if err != nil {
			return err
		}
		// stored as a one-bit vector so models assign it like any value
		t := smt.BoolToBV(c, 1)
		env[i.Name] = t
		bits[i.Name] = 1
		step.Defs[i.Name] = t
	case *ir.Call:
		return e.encodeCall(i, env, bits, step, pe)
	case *ir.Assume:
		c, err := e.condition(i.Cond, env)
		if err != nil {
			return err
		}
		*guards = append(*guards, c)
	case *ir.Assert:
		c, err := e.condition(i.Cond, env)
		if err != nil {
			return err
		}
		violation := smt.And(append(append([]yices2.TermT{}, *guards...), smt.Not(c))...)
		pe.Violations = append(pe.Violations, violation)
		// execution past this point means the assert held
		*guards = append(*guards, c)
	default:
		return errors.Errorf("cannot encode %s", in)
	}
	return nil
}

func (e *Encoder) encodeCall(i *ir.Call, env map[string]yices2.TermT,
	bits map[string]uint32, step *Step, pe *PathEncoding) error {
	w, ok := e.resultWidth(i.Type)
	if i.Name == "" || !ok {
		return nil
	}
	var t yices2.TermT
	if sum, found := e.lib[i.Callee]; found {
		args := make([]yices2.TermT, 0, len(i.Args))
		for k, a := range i.Args {
			aw := e.layout.IntBits
			if k < len(i.ArgTypes) && i.ArgTypes[k] != nil {
				aw = e.widthOf(i.ArgTypes[k])
			}
			at, err := e.operand(a, aw, env)
			if err != nil {
				return err
			}
			args = append(args, at)
		}
		t = sum(args, w)
	} else {
		// external call: the result is unconstrained
		t = e.freshVar(i.Callee+"."+i.Name, w, pe)
	}
	env[i.Name] = t
	bits[i.Name] = w
	step.Defs[i.Name] = t
	return nil
}

func (e *Encoder) encodeBranch(b, next *ir.Block, env map[string]yices2.TermT,
	bits map[string]uint32, guards *[]yices2.TermT) error {
	switch t := b.Term.(type) {
	case *ir.Br:
		if t.Target != next.Name {
			return errors.Errorf("path does not follow branch to %s", t.Target)
		}
	case *ir.CondBr:
		c, err := e.condition(t.Cond, env)
		if err != nil {
			return err
		}
		switch next.Name {
		case t.Then:
			*guards = append(*guards, c)
		case t.Else:
			*guards = append(*guards, smt.Not(c))
		default:
			return errors.Errorf("path does not follow branch to %s or %s", t.Then, t.Else)
		}
	case *ir.Ret:
		return errors.New("return in the middle of a path")
	}
	return nil
}

func (e *Encoder) condition(v ir.Value, env map[string]yices2.TermT) (yices2.TermT, error) {
	t, err := e.operand(v, 1, env)
	if err != nil {
		return yices2.NullTerm, err
	}
	return smt.AsBool(t), nil
}

func (e *Encoder) operand(v ir.Value, width uint32, env map[string]yices2.TermT) (yices2.TermT, error) {
	switch x := v.(type) {
	case ir.Var:
		t, ok := env[x.Name]
		if !ok {
			return yices2.NullTerm, errors.Errorf("use of undefined value %%%s", x.Name)
		}
		return t, nil
	case ir.IntConst:
		w := width
		if x.Bits != 0 {
			w = x.Bits
		}
		if w == 0 {
			w = e.layout.IntBits
		}
		return smt.BVConst(x.Val, w), nil
	default:
		return yices2.NullTerm, errors.Errorf("cannot encode operand %s", v)
	}
}

// cmpWidth picks the comparison width from the first variable operand.
func (e *Encoder) cmpWidth(i *ir.ICmp, bits map[string]uint32) uint32 {
	for _, op := range []ir.Value{i.X, i.Y} {
		if v, ok := op.(ir.Var); ok {
			if w, ok := bits[v.Name]; ok {
				return w
			}
		}
	}
	return e.layout.IntBits
}

func (e *Encoder) widthOf(t ir.Type) uint32 {
	switch ty := t.(type) {
	case ir.IntType:
		return ty.Bits
	case ir.PtrType:
		return e.layout.PtrBits
	}
	return e.layout.IntBits
}

// resultWidth maps a call result type to a modelled width. Void results are
// not modelled.
func (e *Encoder) resultWidth(t ir.Type) (uint32, bool) {
	switch ty := t.(type) {
	case ir.IntType:
		return ty.Bits, true
	case ir.PtrType:
		return e.layout.PtrBits, true
	}
	return 0, false
}

func (e *Encoder) freshVar(base string, width uint32, pe *PathEncoding) yices2.TermT {
	name := fmt.Sprintf("%s!%d", base, e.fresh)
	e.fresh++
	pe.Decls = append(pe.Decls, smt.Decl{Name: name, Bits: width})
	return smt.FreshBV(name, width)
}

func binop(op ir.BinOpKind, x, y yices2.TermT) (yices2.TermT, error) {
	switch op {
	case ir.OpAdd:
		return smt.BvAdd(x, y), nil
	case ir.OpSub:
		return smt.BvSub(x, y), nil
	case ir.OpMul:
		return smt.BvMul(x, y), nil
	case ir.OpSDiv:
		return smt.BvSDiv(x, y), nil
	case ir.OpUDiv:
		return smt.BvUDiv(x, y), nil
	case ir.OpSRem:
		return smt.BvSRem(x, y), nil
	case ir.OpURem:
		return smt.BvURem(x, y), nil
	case ir.OpAnd:
		return smt.BvAnd(x, y), nil
	case ir.OpOr:
		return smt.BvOr(x, y), nil
	case ir.OpXor:
		return smt.BvXor(x, y), nil
	case ir.OpShl:
		return smt.BvShl(x, y), nil
	case ir.OpLShr:
		return smt.BvLshr(x, y), nil
	case ir.OpAShr:
		return smt.BvAshr(x, y), nil
	}
	return yices2.NullTerm, errors.Errorf("unknown binop %s", op)
}

func icmp(pred ir.CmpPred, x, y yices2.TermT) (yices2.TermT, error) {
	switch pred {
	case ir.PredEq:
		return smt.BvEq(x, y), nil
	case ir.PredNe:
		return smt.BvNe(x, y), nil
	case ir.PredSlt:
		return smt.BvSlt(x, y), nil
	case ir.PredSle:
		return smt.BvSle(x, y), nil
	case ir.PredSgt:
		return smt.BvSgt(x, y), nil
	case ir.PredSge:
		return smt.BvSge(x, y), nil
	case ir.PredUlt:
		return smt.BvUlt(x, y), nil
	case ir.PredUle:
		return smt.BvUle(x, y), nil
	case ir.PredUgt:
		return smt.BvUgt(x, y), nil
	case ir.PredUge:
		return smt.BvUge(x, y), nil
	}
	return yices2.NullTerm, errors.Errorf("unknown predicate %s", pred)
}
