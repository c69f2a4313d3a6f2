package ir

import "math/big"

type Value interface {
	val()
	String() string
}

// Var references the result of an earlier instruction or a parameter.
type Var struct {
	Name string
}

func (Var) val() {}

func (v Var) String() string {
	return "%" + v.Name
}

// IntConst is an integer literal. Bits == 0 means the width is inferred from
// the surrounding operation by the encoder.
type IntConst struct {
	Val  *big.Int
	Bits uint32
}

func (IntConst) val() {}

func (c IntConst) String() string {
	return c.Val.String()
}

// GlobalRef references a module-level global by name. Only harness modules
// use these.
type GlobalRef struct {
	Name string
}

func (GlobalRef) val() {}

func (g GlobalRef) String() string {
	return "@" + g.Name
}
