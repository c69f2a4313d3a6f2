package ir

import (
	"math/big"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// YAML program description. One document per module:
//
//	name: prog
//	functions:
//	  - name: main
//	    ret: i32
//	    params: [{name: x, type: i32}]
//	    blocks:
//	      - name: entry
//	        instrs:
//	          - {op: call, name: n, callee: nd_int, type: i32}
//	          - {op: icmp, name: c, pred: sgt, x: n, y: "0"}
//	          - {op: assert, cond: c}
//	        term: {op: ret, val: "0"}
//
// Operands are either a variable name or an integer literal.

type yamlModule struct {
	Name      string     `yaml:"name"`
	Functions []yamlFunc `yaml:"functions"`
}

type yamlFunc struct {
	Name   string      `yaml:"name"`
	Ret    string      `yaml:"ret"`
	Params []yamlParam `yaml:"params"`
	Blocks []yamlBlock `yaml:"blocks"`
}

type yamlParam struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type yamlBlock struct {
	Name   string      `yaml:"name"`
	Instrs []yamlInstr `yaml:"instrs"`
	Term   *yamlInstr  `yaml:"term"`
}

type yamlInstr struct {
	Op     string   `yaml:"op"`
	Name   string   `yaml:"name"`
	Type   string   `yaml:"type"`
	Pred   string   `yaml:"pred"`
	X      string   `yaml:"x"`
	Y      string   `yaml:"y"`
	Cond   string   `yaml:"cond"`
	Val    string   `yaml:"val"`
	Callee   string   `yaml:"callee"`
	Args     []string `yaml:"args"`
	ArgTypes []string `yaml:"argtypes"`
	Target string   `yaml:"target"`
	Then   string   `yaml:"then"`
	Else   string   `yaml:"else"`
}

func LoadYAML(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return ParseYAML(data)
}

func ParseYAML(data []byte) (*Module, error) {
	var ym yamlModule
	if err := yaml.Unmarshal(data, &ym); err != nil {
		return nil, errors.Wrap(err, "unmarshal module")
	}
	m := &Module{Name: ym.Name}
	for i := range ym.Functions {
		f, err := buildFunc(&ym.Functions[i])
		if err != nil {
			return nil, errors.Wrapf(err, "function %s", ym.Functions[i].Name)
		}
		m.Funcs = append(m.Funcs, f)
	}
	return m, nil
}

func buildFunc(yf *yamlFunc) (*Func, error) {
	if yf.Name == "" {
		return nil, errors.New("function without a name")
	}
	ret, err := parseType(yf.Ret)
	if err != nil {
		return nil, err
	}
	f := &Func{Name: yf.Name, Ret: ret}
	for _, p := range yf.Params {
		pt, err := parseType(p.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "param %s", p.Name)
		}
		f.Params = append(f.Params, Param{Name: p.Name, Type: pt})
	}
	if len(yf.Blocks) == 0 {
		return nil, errors.New("function has no blocks")
	}
	for i := range yf.Blocks {
		b, err := buildBlock(&yf.Blocks[i])
		if err != nil {
			return nil, errors.Wrapf(err, "block %s", yf.Blocks[i].Name)
		}
		f.Blocks = append(f.Blocks, b)
	}
	for _, b := range f.Blocks {
		for _, succ := range b.Successors() {
			if f.BlockByName(succ) == nil {
				return nil, errors.Errorf("block %s branches to undefined block %s", b.Name, succ)
			}
		}
	}
	return f, nil
}

func buildBlock(yb *yamlBlock) (*Block, error) {
	b := &Block{Name: yb.Name}
	for i := range yb.Instrs {
		in, err := buildInstr(&yb.Instrs[i])
		if err != nil {
			return nil, err
		}
		b.Instrs = append(b.Instrs, in)
	}
	if yb.Term == nil {
		return nil, errors.New("missing terminator")
	}
	term, err := buildTerm(yb.Term)
	if err != nil {
		return nil, err
	}
	b.Term = term
	return b, nil
}

func buildInstr(yi *yamlInstr) (Instr, error) {
	switch yi.Op {
	case "add", "sub", "mul", "sdiv", "udiv", "srem", "urem",
		"and", "or", "xor", "shl", "lshr", "ashr":
		ty, err := parseIntType(yi.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "%s %%%s", yi.Op, yi.Name)
		}
		return &BinOp{
			Name: yi.Name,
			Op:   BinOpKind(yi.Op),
			Type: ty,
			X:    parseOperand(yi.X),
			Y:    parseOperand(yi.Y),
		}, nil
	case "icmp":
		switch CmpPred(yi.Pred) {
		case PredEq, PredNe, PredSlt, PredSle, PredSgt, PredSge,
			PredUlt, PredUle, PredUgt, PredUge:
		default:
			return nil, errors.Errorf("icmp %%%s: unknown predicate %q", yi.Name, yi.Pred)
		}
		return &ICmp{
			Name: yi.Name,
			Pred: CmpPred(yi.Pred),
			X:    parseOperand(yi.X),
			Y:    parseOperand(yi.Y),
		}, nil
	case "call":
		ty, err := parseType(yi.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "call @%s", yi.Callee)
		}
		c := &Call{Name: yi.Name, Callee: yi.Callee, Type: ty}
		for _, a := range yi.Args {
			c.Args = append(c.Args, parseOperand(a))
		}
		if len(yi.ArgTypes) > 0 {
			if len(yi.ArgTypes) != len(yi.Args) {
				return nil, errors.Errorf("call @%s: %d args but %d argtypes",
					yi.Callee, len(yi.Args), len(yi.ArgTypes))
			}
			for _, ts := range yi.ArgTypes {
				at, err := parseType(ts)
				if err != nil {
					return nil, errors.Wrapf(err, "call @%s", yi.Callee)
				}
				c.ArgTypes = append(c.ArgTypes, at)
			}
		}
		return c, nil
	case "assume":
		return &Assume{Cond: parseOperand(yi.Cond)}, nil
	case "assert":
		return &Assert{Cond: parseOperand(yi.Cond)}, nil
	default:
		return nil, errors.Errorf("unknown instruction op %q", yi.Op)
	}
}

func buildTerm(yi *yamlInstr) (Terminator, error) {
	switch yi.Op {
	case "br":
		if yi.Cond != "" {
			return &CondBr{Cond: parseOperand(yi.Cond), Then: yi.Then, Else: yi.Else}, nil
		}
		return &Br{Target: yi.Target}, nil
	case "ret":
		if yi.Val == "" {
			return &Ret{}, nil
		}
		return &Ret{Val: parseOperand(yi.Val)}, nil
	default:
		return nil, errors.Errorf("unknown terminator op %q", yi.Op)
	}
}

func parseType(s string) (Type, error) {
	switch {
	case s == "" || s == "void":
		return VoidType{}, nil
	case strings.HasSuffix(s, "*"):
		elem, err := parseType(strings.TrimSuffix(s, "*"))
		if err != nil {
			return nil, err
		}
		return PtrType{Elem: elem}, nil
	default:
		return parseIntType(s)
	}
}

func parseIntType(s string) (IntType, error) {
	if !strings.HasPrefix(s, "i") {
		return IntType{}, errors.Errorf("bad integer type %q", s)
	}
	bits := new(big.Int)
	if _, ok := bits.SetString(s[1:], 10); !ok || bits.Sign() <= 0 || bits.Cmp(big.NewInt(1024)) > 0 {
		return IntType{}, errors.Errorf("bad integer type %q", s)
	}
	return IntType{Bits: uint32(bits.Uint64())}, nil
}

// parseOperand reads either an integer literal or a variable name.
func parseOperand(s string) Value {
	if v, ok := new(big.Int).SetString(s, 0); ok {
		return IntConst{Val: v}
	}
	return Var{Name: s}
}
