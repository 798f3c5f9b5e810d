package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindMatching(t *testing.T) {
	err := MalformedProgramf("jmp targets unknown label .%s", "L")
	assert.True(t, errors.Is(err, ErrMalformedProgram))
	assert.False(t, errors.Is(err, ErrDiagnostic))
	assert.Equal(t, "[E0100] jmp targets unknown label .L", err.Error())
}

func TestDiagnosticKind(t *testing.T) {
	err := Diagnosticf("block %s, instr %d: variables [%s] may be uninitialized", "L", 2, "x")
	assert.True(t, errors.Is(err, ErrDiagnostic))
	assert.Contains(t, err.Error(), CodeUninitializedVariable)
}

func TestReporterFormats(t *testing.T) {
	out := Reporter{}.FormatError(InvariantViolationf("variable %s typed %s and %s", "x", "int", "bool"))
	assert.Contains(t, out, "E0003")
	assert.Contains(t, out, "variable x typed int and bool")
}
