package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brilt/internal/cfg"
)

const diamondSrc = `
@main {
  cond: bool = const true;
  br cond .A .B;
.A:
  y: int = const 1;
  jmp .M;
.B:
  y: int = const 2;
  jmp .M;
.M:
  print y;
}`

func TestDominatorsDiamond(t *testing.T) {
	c := mustCfg(t, diamondSrc)
	doms := Dominators(c)

	entry := c.Entry
	a := nodeByLabel(t, c, "A")
	b := nodeByLabel(t, c, "B")
	m := nodeByLabel(t, c, "M")

	assert.True(t, doms[m].Has(entry))
	assert.True(t, doms[m].Has(m))
	assert.False(t, doms[m].Has(a))
	assert.False(t, doms[m].Has(b))
	assert.True(t, doms[a].Has(entry))
}

// Dominator sets must equal the intersection of the nodes on every
// entry→n path, checked by exhaustive path enumeration.
func TestDominatorsMatchAllPaths(t *testing.T) {
	for name, src := range map[string]string{
		"diamond": diamondSrc,
		"loop": `
@main {
  i: int = const 0;
  jmp .head;
.head:
  b: bool = const true;
  br b .body .done;
.body:
  i: int = const 1;
  jmp .head;
.done:
  print i;
}`,
	} {
		t.Run(name, func(t *testing.T) {
			c := mustCfg(t, src)
			doms := Dominators(c)
			exact := exactDominators(c)
			require.Len(t, doms, len(exact))
			for n, want := range exact {
				assert.True(t, doms[n].Equal(want), "node %d: got %v want %v", n, doms[n].Sorted(), want.Sorted())
			}
		})
	}
}

// exactDominators intersects the node sets of all acyclic entry→n walks
// (a path revisiting a node adds nothing to the intersection).
func exactDominators(c *cfg.Cfg) map[int]NodeSet {
	exact := map[int]NodeSet{}
	path := NodeSet{}
	var dfs func(n int)
	dfs = func(n int) {
		if path.Has(n) {
			return
		}
		path.Add(n)
		if prev, ok := exact[n]; ok {
			exact[n] = prev.Intersect(path)
		} else {
			exact[n] = path.Clone()
		}
		for _, s := range c.Successors(n) {
			dfs(s)
		}
		delete(path, n)
	}
	dfs(c.Entry)
	return exact
}

func TestDomTreeShape(t *testing.T) {
	c := mustCfg(t, diamondSrc)
	dt := BuildDomTree(c)

	require.Equal(t, c.Entry, dt.Root.Index)
	require.Len(t, dt.Root.Children, 3)

	a := nodeByLabel(t, c, "A")
	m := nodeByLabel(t, c, "M")
	assert.Equal(t, c.Entry, dt.Node(a).Parent.Index)
	assert.Equal(t, c.Entry, dt.Node(m).Parent.Index)

	assert.True(t, dt.IsDominatorOf(c.Entry, m))
	assert.True(t, dt.IsDominatorOf(m, m))
	assert.False(t, dt.IsDominatorOf(a, m))
}

func TestDominanceFrontierDiamond(t *testing.T) {
	c := mustCfg(t, diamondSrc)
	dt := BuildDomTree(c)

	a := nodeByLabel(t, c, "A")
	b := nodeByLabel(t, c, "B")
	m := nodeByLabel(t, c, "M")

	assert.Equal(t, NodeSet{m: {}}, dt.Frontier(a))
	assert.Equal(t, NodeSet{m: {}}, dt.Frontier(b))
	assert.Empty(t, dt.Frontier(c.Entry))
}

func TestLoopHeaderInOwnFrontier(t *testing.T) {
	c := mustCfg(t, `
@main {
  jmp .head;
.head:
  b: bool = const true;
  br b .head .done;
.done:
  print b;
}`)
	dt := BuildDomTree(c)
	head := nodeByLabel(t, c, "head")
	assert.True(t, dt.Frontier(head).Has(head))
}
