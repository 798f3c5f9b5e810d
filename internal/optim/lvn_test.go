package optim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brilt/internal/bril"
	"brilt/internal/cfg"
	"brilt/internal/parser"
)

func mustCfg(t *testing.T, src string) *cfg.Cfg {
	t.Helper()
	p, err := parser.ParseSource("test.bril", src)
	require.NoError(t, err)
	require.Len(t, p.Functions, 1)
	c, err := cfg.FromFunction(p.Functions[0])
	require.NoError(t, err)
	return c
}

func nodeByLabel(t *testing.T, c *cfg.Cfg, label string) int {
	t.Helper()
	for i, n := range c.Nodes {
		if n.Block.Label == label {
			return i
		}
	}
	t.Fatalf("no block labeled %s", label)
	return -1
}

func ops(blk *cfg.BasicBlock) []string {
	var out []string
	for _, inst := range blk.Instrs {
		out = append(out, inst.Op)
	}
	return out
}

func TestLVNFoldsConstants(t *testing.T) {
	c := mustCfg(t, `
@main {
  a: int = const 3;
  b: int = const 4;
  c: int = add a b;
  print c;
}`)
	blk := c.Nodes[c.Entry].Block
	LVNBlock(blk, true, nil)

	require.Equal(t, []string{"const", "const", "const", "print"}, ops(blk))
	folded := blk.Instrs[2]
	assert.Equal(t, "c", folded.Dest)
	require.NotNil(t, folded.Value)
	assert.Equal(t, bril.Int32(7), *folded.Value)
	assert.Equal(t, []string{"c"}, blk.Instrs[3].Args)
}

func TestLVNCommutativeReuse(t *testing.T) {
	c := mustCfg(t, `
@main(a: int, b: int) {
  s: int = add a b;
  u: int = add b a;
  print u;
}`)
	blk := c.Nodes[c.Entry].Block
	LVNBlock(blk, false, nil)

	require.Equal(t, []string{"add", "id", "print"}, ops(blk))
	assert.Equal(t, []string{"s"}, blk.Instrs[1].Args)
	// The use reads the canonical variable.
	assert.Equal(t, []string{"s"}, blk.Instrs[2].Args)
}

func TestLVNNonCommutativeNotReused(t *testing.T) {
	c := mustCfg(t, `
@main(a: int, b: int) {
  s: int = sub a b;
  u: int = sub b a;
  print s;
  print u;
}`)
	blk := c.Nodes[c.Entry].Block
	LVNBlock(blk, false, nil)
	assert.Equal(t, []string{"sub", "sub", "print", "print"}, ops(blk))
}

func TestLVNCallsAreOpaque(t *testing.T) {
	c := mustCfg(t, `
@main(a: int) {
  x: int = call @f a;
  y: int = call @f a;
  print x;
  print y;
}`)
	blk := c.Nodes[c.Entry].Block
	LVNBlock(blk, false, nil)
	assert.Equal(t, []string{"call", "call", "print", "print"}, ops(blk))
}

func TestLVNConservativeRenaming(t *testing.T) {
	// x is reassigned; the first def and its use must be renamed apart
	// so numbering cannot alias the two values.
	c := mustCfg(t, `
@main(a: int, b: int) {
  x: int = add a b;
  y: int = id x;
  x: int = const 5;
  print x;
  print y;
}`)
	blk := c.Nodes[c.Entry].Block
	ConservativeRename(blk)

	first, second := blk.Instrs[0], blk.Instrs[2]
	assert.NotEqual(t, "x", first.Dest)
	assert.Equal(t, "x", second.Dest)
	assert.Equal(t, []string{first.Dest}, blk.Instrs[1].Args)
	assert.Equal(t, []string{"x"}, blk.Instrs[3].Args)
}

func TestLVNIdempotent(t *testing.T) {
	for name, src := range map[string]string{
		"folding": `
@main {
  a: int = const 3;
  b: int = const 4;
  c: int = add a b;
  print c;
}`,
		"reuse": `
@main(a: int, b: int) {
  s: int = add a b;
  u: int = add a b;
  print u;
}`,
	} {
		t.Run(name, func(t *testing.T) {
			c := mustCfg(t, src)
			blk := c.Nodes[c.Entry].Block
			LVNBlock(blk, true, nil)
			once := make([]string, 0, len(blk.Instrs))
			for _, inst := range blk.Instrs {
				once = append(once, inst.Key())
			}

			LVNBlock(blk, true, nil)
			twice := make([]string, 0, len(blk.Instrs))
			for _, inst := range blk.Instrs {
				twice = append(twice, inst.Key())
			}
			assert.Equal(t, once, twice)
		})
	}
}

func TestLVNSeededConstants(t *testing.T) {
	c := mustCfg(t, `
@main {
  a: int = const 3;
  jmp .next;
.next:
  b: int = const 4;
  s: int = add a b;
  print s;
}`)
	next := nodeByLabel(t, c, "next")
	LVNBlock(c.Nodes[next].Block, true, map[string]bril.Value{"a": bril.Int32(3)})

	blk := c.Nodes[next].Block
	require.Equal(t, []string{"const", "const", "print"}, ops(blk))
	assert.Equal(t, bril.Int32(7), *blk.Instrs[1].Value)
}
