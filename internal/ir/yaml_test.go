package ir

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProgram = `
name: sample
functions:
  - name: main
    ret: i32
    blocks:
      - name: entry
        instrs:
          - {op: call, name: n, callee: nd_int, type: i32}
          - {op: icmp, name: c, pred: sgt, x: n, y: "0"}
          - {op: assert, cond: c}
        term: {op: br, target: exit}
      - name: exit
        term: {op: ret, val: "0"}
`

func Test_ParseYAML(t *testing.T) {
	m, err := ParseYAML([]byte(sampleProgram))
	require.NoError(t, err)
	assert.Equal(t, "sample", m.Name)
	require.Len(t, m.Funcs, 1)

	fn := m.FuncByName("main")
	require.NotNil(t, fn)
	assert.Equal(t, IntType{Bits: 32}, fn.Ret)
	require.Len(t, fn.Blocks, 2)
	assert.Equal(t, "entry", fn.Entry().Name)

	entry := fn.Blocks[0]
	require.Len(t, entry.Instrs, 3)
	call, ok := entry.Instrs[0].(*Call)
	require.True(t, ok)
	assert.Equal(t, "nd_int", call.Callee)
	assert.Equal(t, "n", Result(call))

	cmp, ok := entry.Instrs[1].(*ICmp)
	require.True(t, ok)
	assert.Equal(t, PredSgt, cmp.Pred)
	c, ok := cmp.Y.(IntConst)
	require.True(t, ok)
	assert.Equal(t, 0, c.Val.Cmp(big.NewInt(0)))

	assert.Equal(t, []string{"exit"}, entry.Successors())
}

func Test_ParseYAML_Errors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"unknown op", `
functions:
  - name: f
    blocks:
      - name: entry
        instrs: [{op: frobnicate}]
        term: {op: ret}
`},
		{"missing terminator", `
functions:
  - name: f
    blocks:
      - name: entry
`},
		{"undefined target", `
functions:
  - name: f
    blocks:
      - name: entry
        term: {op: br, target: nowhere}
`},
		{"bad predicate", `
functions:
  - name: f
    blocks:
      - name: entry
        instrs: [{op: icmp, name: c, pred: weird, x: "1", y: "2"}]
        term: {op: ret}
`},
		{"bad type", `
functions:
  - name: f
    blocks:
      - name: entry
        instrs: [{op: add, name: a, type: banana, x: "1", y: "2"}]
        term: {op: ret}
`},
		{"argtypes arity mismatch", `
functions:
  - name: f
    blocks:
      - name: entry
        instrs:
          - {op: call, name: r, callee: g, type: i32, args: [x, "4"], argtypes: [i64]}
        term: {op: ret}
`},
	}
	for _, tc := range cases {
		_, err := ParseYAML([]byte(tc.src))
		assert.Error(t, err, tc.name)
	}
}

func Test_ParseYAML_CallArgTypes(t *testing.T) {
	m, err := ParseYAML([]byte(`
functions:
  - name: f
    blocks:
      - name: entry
        instrs:
          - {op: call, name: r, callee: read_at, type: i32, args: [x, "4"], argtypes: [i64, i32]}
        term: {op: ret, val: "0"}
`))
	require.NoError(t, err)

	call, ok := m.Funcs[0].Blocks[0].Instrs[0].(*Call)
	require.True(t, ok)
	require.Len(t, call.ArgTypes, 2)
	assert.Equal(t, IntType{Bits: 64}, call.ArgTypes[0])
	assert.Equal(t, IntType{Bits: 32}, call.ArgTypes[1])
	assert.Contains(t, call.String(), "i64 %x")
}

func Test_ModuleString(t *testing.T) {
	m, err := ParseYAML([]byte(sampleProgram))
	require.NoError(t, err)
	s := m.String()
	assert.Contains(t, s, "func i32 @main()")
	assert.Contains(t, s, "%n = call i32 @nd_int()")
	assert.Contains(t, s, "assert %c")
	assert.Contains(t, s, "ret 0")
}

func Test_Defines(t *testing.T) {
	m, err := ParseYAML([]byte(sampleProgram))
	require.NoError(t, err)
	assert.True(t, m.Defines("main"))
	assert.False(t, m.Defines("nd_int"))
}
