package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brilt/internal/cfg"
	"brilt/internal/dataflow"
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

func TestLivenessAcrossJump(t *testing.T) {
	c := mustCfg(t, `
@main {
.a:
  x: int = const 1;
  jmp .L;
.L:
  print x;
}`)
	liveIn := Liveness(c)

	l := nodeByLabel(t, c, "L")
	assert.Equal(t, VarSet{"x": {}}, liveIn[l])
	assert.Empty(t, liveIn[c.Entry])
}

func TestLivenessLoop(t *testing.T) {
	c := mustCfg(t, `
@main {
  i: int = const 0;
  one: int = const 1;
  jmp .loop;
.loop:
  i: int = add i one;
  b: bool = const true;
  br b .loop .done;
.done:
  print i;
}`)
	liveIn := Liveness(c)
	loop := nodeByLabel(t, c, "loop")
	assert.True(t, liveIn[loop].Has("i"))
	assert.True(t, liveIn[loop].Has("one"))

	// Fixed point: live-in of each node is transfer of the merged
	// successor values.
	p := livenessProblem{c}
	for n := 0; n < c.NumNodes(); n++ {
		var flows []VarSet
		for _, s := range c.Successors(n) {
			flows = append(flows, liveIn[s])
		}
		in := p.InitIn(n)
		if len(flows) > 0 {
			in = p.Merge(flows)
		}
		assert.True(t, p.Transfer(n, in).Equal(liveIn[n]), "node %d not at fixed point", n)
	}
}

func TestLivenessParallelMatchesSerial(t *testing.T) {
	c := mustCfg(t, `
@main(n: int) {
  i: int = const 0;
  one: int = const 1;
  jmp .loop;
.loop:
  i: int = add i one;
  b: bool = const true;
  br b .loop .done;
.done:
  print i;
  print n;
}`)
	serial := Liveness(c)
	parallel := LivenessParallel(c, dataflow.Config{Workers: 4})
	require.Len(t, parallel, len(serial))
	for n, s := range serial {
		assert.True(t, s.Equal(parallel[n]), "node %d", n)
	}
}

func TestReachingDefs(t *testing.T) {
	c := mustCfg(t, `
@main(n: int) {
  x: int = const 1;
  jmp .L;
.L:
  y: int = add x n;
  print y;
}`)
	reach := ReachingDefs(c)
	l := nodeByLabel(t, c, "L")
	for _, v := range []string{"n", "x", "y"} {
		assert.True(t, reach[l].Has(v), "%s should reach the exit of L", v)
	}
	assert.True(t, reach[c.Entry].Has("n"), "arguments reach from the entry")
	assert.False(t, reach[c.Entry].Has("y"))
}
