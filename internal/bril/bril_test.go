package bril

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgramRoundTrip(t *testing.T) {
	src := `{
		"functions": [{
			"name": "main",
			"args": [{"name": "cond", "type": "bool"}],
			"instrs": [
				{"op": "const", "dest": "x", "type": "int", "value": 1},
				{"op": "const", "dest": "b", "type": "bool", "value": true},
				{"label": "done"},
				{"op": "br", "args": ["cond"], "labels": ["done", "done"]},
				{"op": "print", "args": ["x"]}
			]
		}]
	}`
	p, err := ParseProgram([]byte(src))
	require.NoError(t, err)

	require.Len(t, p.Functions, 1)
	f := p.Functions[0]
	assert.Equal(t, "main", f.Name)
	require.Len(t, f.Instrs, 5)
	assert.Equal(t, Int32(1), *f.Instrs[0].Value)
	assert.Equal(t, BoolOf(true), *f.Instrs[1].Value)
	assert.True(t, f.Instrs[2].IsLabel())
	assert.True(t, f.Instrs[3].IsTerminator())

	data, err := json.Marshal(p)
	require.NoError(t, err)
	p2, err := ParseProgram(data)
	require.NoError(t, err)

	require.Len(t, p2.Functions[0].Instrs, 5)
	for i := range f.Instrs {
		assert.True(t, f.Instrs[i].Equal(p2.Functions[0].Instrs[i]), "instr %d", i)
	}
}

func TestValueSerializesBare(t *testing.T) {
	data, err := json.Marshal(Int32(7))
	require.NoError(t, err)
	assert.Equal(t, "7", string(data))

	data, err = json.Marshal(BoolOf(false))
	require.NoError(t, err)
	assert.Equal(t, "false", string(data))

	var v Value
	require.NoError(t, json.Unmarshal([]byte("true"), &v))
	assert.Equal(t, BoolOf(true), v)
	require.NoError(t, json.Unmarshal([]byte("-3"), &v))
	assert.Equal(t, Int32(-3), v)
	assert.Error(t, json.Unmarshal([]byte(`"str"`), &v))
}

func TestOptionalFieldsOmitted(t *testing.T) {
	inst := &Instruction{Op: "print", Args: []string{"x"}}
	data, err := json.Marshal(inst)
	require.NoError(t, err)
	assert.JSONEq(t, `{"op": "print", "args": ["x"]}`, string(data))

	label := &Instruction{Label: "loop"}
	data, err = json.Marshal(label)
	require.NoError(t, err)
	assert.JSONEq(t, `{"label": "loop"}`, string(data))
}

func TestInstructionEquality(t *testing.T) {
	a := &Instruction{Op: "add", Dest: "c", Type: "int", Args: []string{"a", "b"}}
	b := &Instruction{Op: "add", Dest: "c", Type: "int", Args: []string{"a", "b"}}
	c := &Instruction{Op: "add", Dest: "c", Type: "int", Args: []string{"b", "a"}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())

	clone := a.Clone()
	clone.Args[0] = "z"
	assert.Equal(t, "a", a.Args[0])
}
