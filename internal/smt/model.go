package smt

import (
	"math/big"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
)

// ModelBig reads the value of a bitvector term from a model. The second
// result is false when the model does not pin the term to a value.
func ModelBig(model *yices2.ModelT, term yices2.TermT) (*big.Int, bool) {
	bits := yices2.TermBitsize(term)
	if bits == 0 {
		return nil, false
	}
	intVal := make([]int32, bits)
	errcode := yices2.GetBvValue(*model, term, intVal)
	if errcode != 0 {
		return nil, false
	}
	result := big.NewInt(0)
	for i := 0; i < len(intVal); i++ {
		result.SetBit(result, i, uint(intVal[i]))
	}
	return result, true
}
