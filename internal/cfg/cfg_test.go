package cfg

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brilt/internal/bril"
	brilterrors "brilt/internal/errors"
)

func mustFunction(t *testing.T, src string) *bril.Function {
	t.Helper()
	p, err := bril.ParseProgram([]byte(src))
	require.NoError(t, err)
	require.Len(t, p.Functions, 1)
	return p.Functions[0]
}

func TestFromFunctionSplitsBlocks(t *testing.T) {
	f := mustFunction(t, `{
		"functions": [{
			"name": "main",
			"instrs": [
				{"label": "a"},
				{"op": "const", "dest": "x", "type": "int", "value": 1},
				{"op": "jmp", "labels": ["L"]},
				{"label": "L"},
				{"op": "print", "args": ["x"]}
			]
		}]
	}`)
	c, err := FromFunction(f)
	require.NoError(t, err)

	require.Equal(t, 2, c.NumNodes())
	entry := c.Entry
	assert.Empty(t, c.Predecessors(entry))
	require.Len(t, c.Successors(entry), 1)

	l := c.Successors(entry)[0]
	assert.Equal(t, "L", c.Nodes[l].Block.Label)
	assert.Equal(t, []int{entry}, c.Predecessors(l))
	assert.Empty(t, c.Successors(l))
}

func TestMirroredEdges(t *testing.T) {
	f := mustFunction(t, `{
		"functions": [{
			"name": "main",
			"instrs": [
				{"op": "const", "dest": "b", "type": "bool", "value": true},
				{"op": "br", "args": ["b"], "labels": ["t", "f"]},
				{"label": "t"},
				{"op": "jmp", "labels": ["f"]},
				{"label": "f"},
				{"op": "print", "args": ["b"]}
			]
		}]
	}`)
	c, err := FromFunction(f)
	require.NoError(t, err)

	for n := 0; n < c.NumNodes(); n++ {
		for _, s := range c.Successors(n) {
			assert.Contains(t, c.Predecessors(s), n)
		}
		for _, p := range c.Predecessors(n) {
			assert.Contains(t, c.Successors(p), n)
		}
	}
}

func TestEntryNormalization(t *testing.T) {
	// The first block is a jump target, so a synthetic entry must keep
	// the no-predecessor invariant.
	f := mustFunction(t, `{
		"functions": [{
			"name": "main",
			"instrs": [
				{"label": "top"},
				{"op": "const", "dest": "x", "type": "int", "value": 0},
				{"op": "jmp", "labels": ["top"]}
			]
		}]
	}`)
	c, err := FromFunction(f)
	require.NoError(t, err)

	require.Equal(t, 2, c.NumNodes())
	assert.Empty(t, c.Predecessors(c.Entry))
	assert.NotEqual(t, "top", c.Nodes[c.Entry].Block.Label)
	require.Len(t, c.Successors(c.Entry), 1)
	top := c.Successors(c.Entry)[0]
	assert.Equal(t, "top", c.Nodes[top].Block.Label)
	// The back-edge to top survives.
	assert.Contains(t, c.Predecessors(top), top)
}

func TestUnknownLabelFails(t *testing.T) {
	f := mustFunction(t, `{
		"functions": [{
			"name": "main",
			"instrs": [{"op": "jmp", "labels": ["nowhere"]}]
		}]
	}`)
	_, err := FromFunction(f)
	require.Error(t, err)
	assert.True(t, errors.Is(err, brilterrors.ErrMalformedProgram))
}

func TestIntoFunctionRoundTrip(t *testing.T) {
	src := `{
		"functions": [{
			"name": "main",
			"args": [{"name": "n", "type": "int"}],
			"type": "int",
			"instrs": [
				{"op": "const", "dest": "x", "type": "int", "value": 1},
				{"op": "jmp", "labels": ["L"]},
				{"label": "L"},
				{"op": "add", "dest": "y", "type": "int", "args": ["x", "n"]},
				{"op": "ret", "args": ["y"]}
			]
		}]
	}`
	f := mustFunction(t, src)
	c, err := FromFunction(f)
	require.NoError(t, err)

	back := c.IntoFunction()
	assert.Equal(t, f.Name, back.Name)
	assert.Equal(t, f.Args, back.Args)
	assert.Equal(t, f.Type, back.Type)
	require.Len(t, back.Instrs, len(f.Instrs))
	for i := range f.Instrs {
		assert.True(t, f.Instrs[i].Equal(back.Instrs[i]), "instr %d differs", i)
	}
}

func TestLabelOnlyBlock(t *testing.T) {
	f := mustFunction(t, `{
		"functions": [{
			"name": "main",
			"instrs": [
				{"op": "jmp", "labels": ["only"]},
				{"label": "only"}
			]
		}]
	}`)
	c, err := FromFunction(f)
	require.NoError(t, err)
	require.Equal(t, 2, c.NumNodes())
	only := c.Successors(c.Entry)[0]
	assert.Equal(t, "only", c.Nodes[only].Block.Label)
	assert.Empty(t, c.Nodes[only].Block.Instrs)
}
