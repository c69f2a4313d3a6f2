package ir

import (
	"fmt"
	"math/big"
	"strings"
)

type Param struct {
	Name string
	Type Type
}

type Block struct {
	Name   string
	Instrs []Instr
	Term   Terminator
}

// Successors returns the names of the blocks this block branches to.
func (b *Block) Successors() []string {
	switch t := b.Term.(type) {
	case *Br:
		return []string{t.Target}
	case *CondBr:
		return []string{t.Then, t.Else}
	}
	return nil
}

type Func struct {
	Name   string
	Params []Param
	Ret    Type
	Blocks []*Block
}

// Entry is the first block of the function.
func (f *Func) Entry() *Block {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

func (f *Func) BlockByName(name string) *Block {
	for _, b := range f.Blocks {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// Global is a module-level variable. Array globals carry one initializer per
// element; scalar globals carry exactly one.
type Global struct {
	Name  string
	Elem  IntType
	Array bool
	Const bool
	Init  []*big.Int
}

type Module struct {
	Name    string
	Funcs   []*Func
	Globals []*Global
}

func (m *Module) FuncByName(name string) *Func {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (m *Module) GlobalByName(name string) *Global {
	for _, g := range m.Globals {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// Defines reports whether the module contains a definition for name.
func (m *Module) Defines(name string) bool {
	return m.FuncByName(name) != nil
}

func (g *Global) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "@%s = ", g.Name)
	if g.Const {
		sb.WriteString("constant ")
	} else {
		sb.WriteString("global ")
	}
	if g.Array {
		fmt.Fprintf(&sb, "[%d x %s] [", len(g.Init), g.Elem)
		for i, v := range g.Init {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(v.String())
		}
		sb.WriteString("]")
	} else {
		fmt.Fprintf(&sb, "%s %s", g.Elem, g.Init[0])
	}
	return sb.String()
}

func (f *Func) String() string {
	var sb strings.Builder
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = fmt.Sprintf("%s %%%s", p.Type, p.Name)
	}
	fmt.Fprintf(&sb, "func %s @%s(%s) {\n", f.Ret, f.Name, strings.Join(params, ", "))
	for _, b := range f.Blocks {
		fmt.Fprintf(&sb, "%s:\n", b.Name)
		for _, in := range b.Instrs {
			fmt.Fprintf(&sb, "  %s\n", in)
		}
		if b.Term != nil {
			fmt.Fprintf(&sb, "  %s\n", b.Term)
		}
	}
	sb.WriteString("}")
	return sb.String()
}

func (m *Module) String() string {
	var parts []string
	for _, g := range m.Globals {
		parts = append(parts, g.String())
	}
	for _, f := range m.Funcs {
		parts = append(parts, f.String())
	}
	return strings.Join(parts, "\n\n")
}
