// Package ir defines the typed control-flow representation analyzed by the
// verifier and produced by the harness synthesizer.
package ir

import "fmt"

type Type interface {
	typ()
	String() string
}

// IntType is an integer of a fixed bit width. Bits == 1 doubles as bool.
type IntType struct {
	Bits uint32
}

func (IntType) typ() {}

func (t IntType) String() string {
	return fmt.Sprintf("i%d", t.Bits)
}

// PtrType is an opaque pointer. The verifier never dereferences these; they
// exist so that calls with non-integer results can be represented and skipped.
type PtrType struct {
	Elem Type
}

func (PtrType) typ() {}

func (t PtrType) String() string {
	if t.Elem == nil {
		return "ptr"
	}
	return t.Elem.String() + "*"
}

type VoidType struct{}

func (VoidType) typ() {}

func (VoidType) String() string {
	return "void"
}
