package smt

import (
	"fmt"
	"math/big"
	"strings"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
)

// FreshBV creates a named uninterpreted bitvector variable.
func FreshBV(name string, bits uint32) yices2.TermT {
	term := yices2.NewUninterpretedTerm(yices2.BvType(bits))
	errcode := yices2.SetTermName(term, name)
	if errcode < 0 {
		fmt.Println("set term name ", errcode)
	}
	return remember(term, name)
}

// BVConst builds a bitvector constant from value, reduced modulo 2^bits.
// Negative values take their two's complement representation.
func BVConst(value *big.Int, bits uint32) yices2.TermT {
	mod := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	v := new(big.Int).Mod(value, mod)
	arr := make([]int32, bits)
	var sb strings.Builder
	sb.WriteString("#b")
	for i := int(bits) - 1; i >= 0; i-- {
		arr[i] = int32(v.Bit(i))
		if v.Bit(i) == 1 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return remember(yices2.BvconstFromArray(arr), sb.String())
}

func True() yices2.TermT {
	return remember(yices2.True(), "true")
}

func False() yices2.TermT {
	return remember(yices2.False(), "false")
}

func Not(t yices2.TermT) yices2.TermT {
	return app("not", yices2.Not(t), t)
}

func Ite(c, a, b yices2.TermT) yices2.TermT {
	return app("ite", yices2.Ite(c, a, b), c, a, b)
}

// And folds terms with And2; the empty conjunction is true.
func And(terms ...yices2.TermT) yices2.TermT {
	if len(terms) == 0 {
		return True()
	}
	result := terms[0]
	for _, t := range terms[1:] {
		result = yices2.And2(result, t)
	}
	if len(terms) > 1 {
		result = app("and", result, terms...)
	}
	return result
}

// Or folds terms with Or2; the empty disjunction is false.
func Or(terms ...yices2.TermT) yices2.TermT {
	if len(terms) == 0 {
		return False()
	}
	result := terms[0]
	for _, t := range terms[1:] {
		result = yices2.Or2(result, t)
	}
	if len(terms) > 1 {
		result = app("or", result, terms...)
	}
	return result
}

func Implies(a, b yices2.TermT) yices2.TermT {
	return app("=>", yices2.Or2(yices2.Not(a), b), a, b)
}

// AsBool coerces a term to bool. Bitvector terms compare against the one-bit
// constant 1; bool terms pass through.
func AsBool(t yices2.TermT) yices2.TermT {
	if yices2.TermIsBitvector(t) {
		one := BVConst(big.NewInt(1), yices2.TermBitsize(t))
		return app("=", yices2.BveqAtom(t, one), t, one)
	}
	return t
}

// BoolToBV widens a bool term to a bitvector of the given width.
func BoolToBV(t yices2.TermT, bits uint32) yices2.TermT {
	return Ite(t, BVConst(big.NewInt(1), bits), BVConst(big.NewInt(0), bits))
}

func BvAdd(x, y yices2.TermT) yices2.TermT  { return app("bvadd", yices2.Bvadd(x, y), x, y) }
func BvSub(x, y yices2.TermT) yices2.TermT  { return app("bvsub", yices2.Bvsub(x, y), x, y) }
func BvMul(x, y yices2.TermT) yices2.TermT  { return app("bvmul", yices2.Bvmul(x, y), x, y) }
func BvSDiv(x, y yices2.TermT) yices2.TermT { return app("bvsdiv", yices2.Bvsdiv(x, y), x, y) }
func BvUDiv(x, y yices2.TermT) yices2.TermT { return app("bvudiv", yices2.Bvdiv(x, y), x, y) }
func BvSRem(x, y yices2.TermT) yices2.TermT { return app("bvsrem", yices2.Bvsrem(x, y), x, y) }
func BvURem(x, y yices2.TermT) yices2.TermT { return app("bvurem", yices2.Bvrem(x, y), x, y) }
func BvAnd(x, y yices2.TermT) yices2.TermT  { return app("bvand", yices2.Bvand2(x, y), x, y) }
func BvOr(x, y yices2.TermT) yices2.TermT   { return app("bvor", yices2.Bvor2(x, y), x, y) }
func BvXor(x, y yices2.TermT) yices2.TermT  { return app("bvxor", yices2.Bvxor2(x, y), x, y) }
func BvShl(x, y yices2.TermT) yices2.TermT  { return app("bvshl", yices2.Bvshl(x, y), x, y) }
func BvLshr(x, y yices2.TermT) yices2.TermT { return app("bvlshr", yices2.Bvlshr(x, y), x, y) }
func BvAshr(x, y yices2.TermT) yices2.TermT { return app("bvashr", yices2.Bvashr(x, y), x, y) }

func BvEq(x, y yices2.TermT) yices2.TermT {
	return app("=", yices2.BveqAtom(x, y), x, y)
}

func BvNe(x, y yices2.TermT) yices2.TermT {
	return app("distinct", yices2.BvneqAtom(x, y), x, y)
}

func BvSlt(x, y yices2.TermT) yices2.TermT { return app("bvslt", yices2.BvsltAtom(x, y), x, y) }
func BvSle(x, y yices2.TermT) yices2.TermT { return app("bvsle", yices2.BvsleAtom(x, y), x, y) }
func BvSgt(x, y yices2.TermT) yices2.TermT { return app("bvsgt", yices2.BvsgtAtom(x, y), x, y) }
func BvSge(x, y yices2.TermT) yices2.TermT { return app("bvsge", yices2.BvsgeAtom(x, y), x, y) }
func BvUlt(x, y yices2.TermT) yices2.TermT { return app("bvult", yices2.BvltAtom(x, y), x, y) }
func BvUle(x, y yices2.TermT) yices2.TermT { return app("bvule", yices2.BvleAtom(x, y), x, y) }
func BvUgt(x, y yices2.TermT) yices2.TermT { return app("bvugt", yices2.BvgtAtom(x, y), x, y) }
func BvUge(x, y yices2.TermT) yices2.TermT { return app("bvuge", yices2.BvgeAtom(x, y), x, y) }
