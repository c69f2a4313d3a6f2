package ir

import (
	"fmt"
	"strings"
)

type BinOpKind string

const (
	OpAdd  BinOpKind = "add"
	OpSub  BinOpKind = "sub"
	OpMul  BinOpKind = "mul"
	OpSDiv BinOpKind = "sdiv"
	OpUDiv BinOpKind = "udiv"
	OpSRem BinOpKind = "srem"
	OpURem BinOpKind = "urem"
	OpAnd  BinOpKind = "and"
	OpOr   BinOpKind = "or"
	OpXor  BinOpKind = "xor"
	OpShl  BinOpKind = "shl"
	OpLShr BinOpKind = "lshr"
	OpAShr BinOpKind = "ashr"
)

type CmpPred string

const (
	PredEq  CmpPred = "eq"
	PredNe  CmpPred = "ne"
	PredSlt CmpPred = "slt"
	PredSle CmpPred = "sle"
	PredSgt CmpPred = "sgt"
	PredSge CmpPred = "sge"
	PredUlt CmpPred = "ult"
	PredUle CmpPred = "ule"
	PredUgt CmpPred = "ugt"
	PredUge CmpPred = "uge"
)

type Instr interface {
	instr()
	String() string
}

// Result returns the name an instruction binds, or "" if it binds none.
func Result(in Instr) string {
	switch i := in.(type) {
	case *BinOp:
		return i.Name
	case *ICmp:
		return i.Name
	case *Call:
		return i.Name
	case *Load:
		return i.Name
	}
	return ""
}

type BinOp struct {
	Name string
	Op   BinOpKind
	Type IntType
	X, Y Value
}

func (*BinOp) instr() {}

func (i *BinOp) String() string {
	return fmt.Sprintf("%%%s = %s %s %s, %s", i.Name, i.Op, i.Type, i.X, i.Y)
}

// ICmp compares two integers; the result is i1.
type ICmp struct {
	Name string
	Pred CmpPred
	X, Y Value
}

func (*ICmp) instr() {}

func (i *ICmp) String() string {
	return fmt.Sprintf("%%%s = icmp %s %s, %s", i.Name, i.Pred, i.X, i.Y)
}

// Call invokes Callee. Name is empty for void calls. A callee not defined in
// the module is external; the encoder leaves its result unconstrained.
// ArgTypes, when present, types each argument; synthesized stubs mirror them
// into their parameter lists.
type Call struct {
	Name     string
	Callee   string
	Type     Type
	Args     []Value
	ArgTypes []Type
}

func (*Call) instr() {}

func (i *Call) String() string {
	args := make([]string, len(i.Args))
	for k := range i.Args {
		args[k] = i.Args[k].String()
		if k < len(i.ArgTypes) && i.ArgTypes[k] != nil {
			args[k] = i.ArgTypes[k].String() + " " + args[k]
		}
	}
	if i.Name == "" {
		return fmt.Sprintf("call %s @%s(%s)", i.Type, i.Callee, strings.Join(args, ", "))
	}
	return fmt.Sprintf("%%%s = call %s @%s(%s)", i.Name, i.Type, i.Callee, strings.Join(args, ", "))
}

// Assume restricts the paths under consideration to those satisfying Cond.
type Assume struct {
	Cond Value
}

func (*Assume) instr() {}

func (i *Assume) String() string {
	return fmt.Sprintf("assume %s", i.Cond)
}

// Assert is a safety condition; a reachable violation is a bug.
type Assert struct {
	Cond Value
}

func (*Assert) instr() {}

func (i *Assert) String() string {
	return fmt.Sprintf("assert %s", i.Cond)
}

// Load reads a scalar global. Harness modules only.
type Load struct {
	Name   string
	Type   IntType
	Global string
}

func (*Load) instr() {}

func (i *Load) String() string {
	return fmt.Sprintf("%%%s = load %s @%s", i.Name, i.Type, i.Global)
}

// Store writes a scalar global. Harness modules only.
type Store struct {
	Global string
	Val    Value
}

func (*Store) instr() {}

func (i *Store) String() string {
	return fmt.Sprintf("store %s, @%s", i.Val, i.Global)
}

type Terminator interface {
	term()
	String() string
}

type Br struct {
	Target string
}

func (*Br) term() {}

func (t *Br) String() string {
	return fmt.Sprintf("br %%%s", t.Target)
}

type CondBr struct {
	Cond Value
	Then string
	Else string
}

func (*CondBr) term() {}

func (t *CondBr) String() string {
	return fmt.Sprintf("br %s, %%%s, %%%s", t.Cond, t.Then, t.Else)
}

type Ret struct {
	Val Value // nil for void
}

func (*Ret) term() {}

func (t *Ret) String() string {
	if t.Val == nil {
		return "ret void"
	}
	return fmt.Sprintf("ret %s", t.Val)
}
