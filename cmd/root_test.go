package cmd

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProgram = `{
	"functions": [{
		"name": "main",
		"instrs": [
			{"op": "const", "dest": "x", "type": "int", "value": 1},
			{"op": "jmp", "labels": ["L"]},
			{"label": "L"},
			{"op": "print", "args": ["x"]}
		]
	}]
}`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	rootCmd.SetArgs(args)
	execErr := rootCmd.Execute()
	w.Close()
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out), execErr
}

func TestCfgCommandEmitsDot(t *testing.T) {
	path := writeTemp(t, sampleProgram)
	out, err := runCommand(t, "cfg", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "digraph G {")
	assert.Contains(t, out, "main_0 -> main_1;")
}

func TestDceCommandWritesJSON(t *testing.T) {
	path := writeTemp(t, sampleProgram)
	out, err := runCommand(t, "dce", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"functions"`)
	assert.Contains(t, out, `"print"`)
}

func TestUninitCommandFlags(t *testing.T) {
	path := writeTemp(t, `{
		"functions": [{
			"name": "main",
			"instrs": [{"op": "print", "args": ["ghost"]}]
		}]
	}`)
	out, err := runCommand(t, "uninit", "-f", path)
	require.Error(t, err)
	assert.Contains(t, out, "ghost")
}

func TestMalformedInputFails(t *testing.T) {
	path := writeTemp(t, `{"functions": [{"name": "main", "instrs": [{"op": "jmp", "labels": ["nope"]}]}]}`)
	_, err := runCommand(t, "cfg", "-f", path)
	assert.Error(t, err)
}
