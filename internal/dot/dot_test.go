package dot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brilt/internal/analysis"
	"brilt/internal/cfg"
	"brilt/internal/parser"
)

func TestRender(t *testing.T) {
	p, err := parser.ParseSource("test.bril", `
@main {
  x: int = const 1;
  jmp .L;
.L:
  print x;
}`)
	require.NoError(t, err)
	cfgs, err := cfg.FromProgram(p)
	require.NoError(t, err)

	out := Render(cfgs)
	assert.True(t, strings.HasPrefix(out, "digraph G {"))
	assert.Contains(t, out, `label = "@main"`)
	assert.Contains(t, out, "main_0 -> main_1;")
	assert.Contains(t, out, `.L\nprint`)
}

func TestRenderWithDom(t *testing.T) {
	p, err := parser.ParseSource("test.bril", `
@main {
  cond: bool = const true;
  br cond .A .B;
.A:
  jmp .M;
.B:
  jmp .M;
.M:
  print cond;
}`)
	require.NoError(t, err)
	c, err := cfg.FromFunction(p.Functions[0])
	require.NoError(t, err)

	out := RenderWithDom(c, analysis.BuildDomTree(c))
	assert.Contains(t, out, "style = dashed")
	// Dominator edges from the entry to every other node.
	assert.Contains(t, out, "n0 -> n3 [style = dashed")
}
