package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	brilterrors "brilt/internal/errors"
)

func TestVarTypes(t *testing.T) {
	c := mustCfg(t, `
@main(n: int) {
  x: int = const 1;
  b: bool = const true;
  jmp .L;
.L:
  y: int = add x n;
  print y;
}`)
	out, err := VarTypes(c)
	require.NoError(t, err)

	l := nodeByLabel(t, c, "L")
	assert.Equal(t, "int", out[l]["x"])
	assert.Equal(t, "bool", out[l]["b"])
	assert.Equal(t, "int", out[l]["y"])
	assert.Equal(t, "int", out[l]["n"])
}

func TestVarTypesConflict(t *testing.T) {
	c := mustCfg(t, `
@main(cond: bool) {
  br cond .A .B;
.A:
  x: int = const 1;
  jmp .M;
.B:
  x: bool = const true;
  jmp .M;
.M:
  print x;
}`)
	_, err := VarTypes(c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, brilterrors.ErrInvariantViolation))
}

func TestTypesAtEntry(t *testing.T) {
	c := mustCfg(t, `
@main(n: int) {
  x: int = const 1;
  jmp .L;
.L:
  print x;
}`)
	in, err := TypesAtEntry(c)
	require.NoError(t, err)
	l := nodeByLabel(t, c, "L")
	assert.Equal(t, "int", in[l]["x"])
	assert.Equal(t, TypeEnv{"n": "int"}, in[c.Entry])
}
