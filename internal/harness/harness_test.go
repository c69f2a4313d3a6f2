package harness

import (
	"math/big"
	"testing"

	"gobmc/internal/bmc"
	"gobmc/internal/ir"
	"gobmc/internal/stats"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bigCmp = cmp.Comparer(func(a, b *big.Int) bool { return a.Cmp(b) == 0 })

func intVal(v int64) bmc.Value {
	return bmc.Value{Kind: bmc.ValInt, Int: big.NewInt(v)}
}

// two calls to foo with concrete results, one pointer-returning bar
func mixedTrace() *bmc.Trace {
	fooA := &ir.Call{Name: "a", Callee: "foo", Type: ir.IntType{Bits: 32}}
	fooB := &ir.Call{Name: "b", Callee: "foo", Type: ir.IntType{Bits: 32}}
	barP := &ir.Call{Name: "p", Callee: "bar", Type: ir.PtrType{Elem: ir.IntType{Bits: 8}}}

	b0 := &ir.Block{Name: "entry", Instrs: []ir.Instr{fooA, barP}, Term: &ir.Br{Target: "next"}}
	b1 := &ir.Block{Name: "next", Instrs: []ir.Instr{fooB},
		Term: &ir.Ret{Val: ir.IntConst{Val: big.NewInt(0)}}}

	return bmc.NewTrace(
		[]*ir.Block{b0, b1},
		[]map[string]bmc.Value{
			{"a": intVal(3), "p": intVal(0x1000)},
			{"b": intVal(7)},
		})
}

func findFunc(m *ir.Module, name string) *ir.Func {
	return m.FuncByName(name)
}

func Test_SynthesizeCapturesInOrder(t *testing.T) {
	m, err := Synthesize(mixedTrace(), Options{})
	require.NoError(t, err)

	g := m.GlobalByName("foo.values")
	require.NotNil(t, g)
	assert.True(t, g.Array)
	assert.True(t, g.Const)
	require.Len(t, g.Init, 2)
	assert.Equal(t, "3", g.Init[0].String())
	assert.Equal(t, "7", g.Init[1].String())

	counter := m.GlobalByName("foo.counter")
	require.NotNil(t, counter)
	assert.False(t, counter.Array)
	require.Len(t, counter.Init, 1)
	assert.Equal(t, int64(0), counter.Init[0].Int64())
}

func Test_SynthesizeSkipsNonInteger(t *testing.T) {
	m, err := Synthesize(mixedTrace(), Options{})
	require.NoError(t, err)

	assert.Nil(t, findFunc(m, "bar"), "pointer-returning callee gets no stub")
	assert.Nil(t, m.GlobalByName("bar.values"))
	assert.NotNil(t, findFunc(m, "foo"))
}

func Test_StubDelegatesToOracle(t *testing.T) {
	m, err := Synthesize(mixedTrace(), Options{})
	require.NoError(t, err)

	stub := findFunc(m, "foo")
	require.NotNil(t, stub)
	require.Len(t, stub.Blocks, 1)
	entry := stub.Blocks[0]

	// load counter, bump it, store back, fetch via the oracle
	require.Len(t, entry.Instrs, 4)
	load, ok := entry.Instrs[0].(*ir.Load)
	require.True(t, ok)
	assert.Equal(t, "foo.counter", load.Global)

	store, ok := entry.Instrs[2].(*ir.Store)
	require.True(t, ok)
	assert.Equal(t, "foo.counter", store.Global)

	call, ok := entry.Instrs[3].(*ir.Call)
	require.True(t, ok)
	assert.Equal(t, "get_value_i32", call.Callee)
	require.Len(t, call.Args, 3)
	assert.Equal(t, ir.GlobalRef{Name: "foo.values"}, call.Args[1])
	n, ok := call.Args[2].(ir.IntConst)
	require.True(t, ok)
	assert.Equal(t, int64(2), n.Val.Int64(), "oracle gets the captured length")

	ret, ok := entry.Term.(*ir.Ret)
	require.True(t, ok)
	assert.Equal(t, ir.Var{Name: "value"}, ret.Val)
}

func Test_SynthesizeIdempotent(t *testing.T) {
	tr := mixedTrace()
	m1, err := Synthesize(tr, Options{})
	require.NoError(t, err)
	m2, err := Synthesize(tr, Options{})
	require.NoError(t, err)

	if diff := cmp.Diff(m1, m2, bigCmp); diff != "" {
		t.Fatalf("modules differ:\n%s", diff)
	}
}

func Test_UncapturedCalleeAbsent(t *testing.T) {
	// the call appears in the trace but the model binds no value for it
	free := &ir.Call{Name: "u", Callee: "free_fn", Type: ir.IntType{Bits: 32}}
	b := &ir.Block{Name: "entry", Instrs: []ir.Instr{free},
		Term: &ir.Ret{Val: ir.IntConst{Val: big.NewInt(0)}}}
	tr := bmc.NewTrace([]*ir.Block{b}, []map[string]bmc.Value{{}})

	m, err := Synthesize(tr, Options{})
	require.NoError(t, err)
	assert.Empty(t, m.Funcs)
	assert.Empty(t, m.Globals)
}

func Test_LossyValueFallsBackToZero(t *testing.T) {
	stats.Reset()

	// a value kind the converter does not recognize degrades to zero
	c := &ir.Call{Name: "v", Callee: "vague", Type: ir.IntType{Bits: 32}}
	b := &ir.Block{Name: "entry", Instrs: []ir.Instr{c},
		Term: &ir.Ret{Val: ir.IntConst{Val: big.NewInt(0)}}}
	tr := bmc.NewTrace([]*ir.Block{b},
		[]map[string]bmc.Value{{"v": {Kind: bmc.ValueKind(99)}}})

	m, err := Synthesize(tr, Options{})
	require.NoError(t, err)

	g := m.GlobalByName("vague.values")
	require.NotNil(t, g)
	require.Len(t, g.Init, 1)
	assert.Equal(t, int64(0), g.Init[0].Int64())
	assert.Equal(t, int64(1), stats.CountVal("HarnessLossyValues"))
}

func Test_UnpinnedValueNotCaptured(t *testing.T) {
	stats.Reset()

	// the model binds the first result without pinning it; only the pinned
	// second call is replayable
	c := &ir.Call{Name: "v", Callee: "vague", Type: ir.IntType{Bits: 32}}
	b := &ir.Block{Name: "entry", Instrs: []ir.Instr{c},
		Term: &ir.Ret{Val: ir.IntConst{Val: big.NewInt(0)}}}
	tr := bmc.NewTrace([]*ir.Block{b, b},
		[]map[string]bmc.Value{
			{"v": {Kind: bmc.ValUnknown}},
			{"v": intVal(5)},
		})

	m, err := Synthesize(tr, Options{})
	require.NoError(t, err)

	g := m.GlobalByName("vague.values")
	require.NotNil(t, g)
	require.Len(t, g.Init, 1)
	assert.Equal(t, "5", g.Init[0].String())
	assert.Equal(t, int64(0), stats.CountVal("HarnessLossyValues"))
}

func Test_OnlyUnpinnedValuesNoStub(t *testing.T) {
	c := &ir.Call{Name: "v", Callee: "vague", Type: ir.IntType{Bits: 32}}
	b := &ir.Block{Name: "entry", Instrs: []ir.Instr{c},
		Term: &ir.Ret{Val: ir.IntConst{Val: big.NewInt(0)}}}
	tr := bmc.NewTrace([]*ir.Block{b},
		[]map[string]bmc.Value{{"v": {Kind: bmc.ValUnknown}}})

	m, err := Synthesize(tr, Options{})
	require.NoError(t, err)
	assert.Empty(t, m.Funcs)
	assert.Empty(t, m.Globals)
}

func Test_BoolValuesBecomeBits(t *testing.T) {
	c := &ir.Call{Name: "f", Callee: "flag", Type: ir.IntType{Bits: 1}}
	b := &ir.Block{Name: "entry", Instrs: []ir.Instr{c},
		Term: &ir.Ret{Val: ir.IntConst{Val: big.NewInt(0)}}}
	tr := bmc.NewTrace([]*ir.Block{b, b},
		[]map[string]bmc.Value{
			{"f": {Kind: bmc.ValTrue}},
			{"f": {Kind: bmc.ValFalse}},
		})

	m, err := Synthesize(tr, Options{})
	require.NoError(t, err)
	g := m.GlobalByName("flag.values")
	require.NotNil(t, g)
	require.Len(t, g.Init, 2)
	assert.Equal(t, int64(1), g.Init[0].Int64())
	assert.Equal(t, int64(0), g.Init[1].Int64())
}

func Test_DefaultKeepFiltersCallees(t *testing.T) {
	mod := &ir.Module{Funcs: []*ir.Func{{Name: "helper"}}}

	local := &ir.Call{Name: "l", Callee: "helper", Type: ir.IntType{Bits: 32}}
	clone := &ir.Call{Name: "c", Callee: "llvm.memcpy.p0", Type: ir.IntType{Bits: 32}}
	ext := &ir.Call{Name: "e", Callee: "read_input", Type: ir.IntType{Bits: 32}}
	b := &ir.Block{Name: "entry", Instrs: []ir.Instr{local, clone, ext},
		Term: &ir.Ret{Val: ir.IntConst{Val: big.NewInt(0)}}}
	tr := bmc.NewTrace([]*ir.Block{b},
		[]map[string]bmc.Value{{"l": intVal(1), "c": intVal(2), "e": intVal(3)}})

	m, err := Synthesize(tr, Options{Module: mod})
	require.NoError(t, err)

	assert.Nil(t, findFunc(m, "helper"), "locally defined callee is not stubbed")
	assert.Nil(t, findFunc(m, "llvm.memcpy.p0"), "dotted clone names are not stubbed")
	assert.NotNil(t, findFunc(m, "read_input"))
}

func Test_KeepCalleeOverride(t *testing.T) {
	ext := &ir.Call{Name: "e", Callee: "read_input", Type: ir.IntType{Bits: 32}}
	b := &ir.Block{Name: "entry", Instrs: []ir.Instr{ext},
		Term: &ir.Ret{Val: ir.IntConst{Val: big.NewInt(0)}}}
	tr := bmc.NewTrace([]*ir.Block{b}, []map[string]bmc.Value{{"e": intVal(3)}})

	m, err := Synthesize(tr, Options{KeepCallee: func(string) bool { return false }})
	require.NoError(t, err)
	assert.Empty(t, m.Funcs)
}

func Test_SynthesizeNilTrace(t *testing.T) {
	_, err := Synthesize(nil, Options{})
	assert.Error(t, err)
}

func Test_StubParamsMirrorCallArgs(t *testing.T) {
	c := &ir.Call{Name: "r", Callee: "read_at", Type: ir.IntType{Bits: 32},
		Args: []ir.Value{ir.Var{Name: "off"}, ir.IntConst{Val: big.NewInt(4)}}}
	b := &ir.Block{Name: "entry", Instrs: []ir.Instr{c},
		Term: &ir.Ret{Val: ir.IntConst{Val: big.NewInt(0)}}}
	tr := bmc.NewTrace([]*ir.Block{b}, []map[string]bmc.Value{{"r": intVal(9)}})

	m, err := Synthesize(tr, Options{})
	require.NoError(t, err)
	stub := findFunc(m, "read_at")
	require.NotNil(t, stub)
	require.Len(t, stub.Params, 2)
	assert.Equal(t, "off", stub.Params[0].Name)
	assert.Equal(t, "arg1", stub.Params[1].Name)
	// untyped arguments default to i32
	assert.Equal(t, ir.IntType{Bits: 32}, stub.Params[0].Type)
}

func Test_StubParamsUseDeclaredTypes(t *testing.T) {
	c := &ir.Call{Name: "r", Callee: "read_at", Type: ir.IntType{Bits: 32},
		Args:     []ir.Value{ir.Var{Name: "off"}, ir.IntConst{Val: big.NewInt(4)}},
		ArgTypes: []ir.Type{ir.IntType{Bits: 64}, ir.IntType{Bits: 8}}}
	b := &ir.Block{Name: "entry", Instrs: []ir.Instr{c},
		Term: &ir.Ret{Val: ir.IntConst{Val: big.NewInt(0)}}}
	tr := bmc.NewTrace([]*ir.Block{b}, []map[string]bmc.Value{{"r": intVal(9)}})

	m, err := Synthesize(tr, Options{})
	require.NoError(t, err)
	stub := findFunc(m, "read_at")
	require.NotNil(t, stub)
	require.Len(t, stub.Params, 2)
	assert.Equal(t, ir.IntType{Bits: 64}, stub.Params[0].Type)
	assert.Equal(t, ir.IntType{Bits: 8}, stub.Params[1].Type)
}
