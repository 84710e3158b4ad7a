package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (int, string, error) {
	t.Helper()
	t.Setenv("LOG_FILE", "")
	t.Setenv("MCX_EQUALITY_TOL", "")
	t.Setenv("MCX_NEGLIGIBLE_TOL", "")
	t.Setenv("MCX_REPORT_FORMAT", "")
	t.Setenv("MCX_EXPERIMENT", "")
	t.Setenv("MCX_CONTROLS", "")

	var out bytes.Buffer
	code, err := run(append([]string{"-log-level", "disabled"}, args...), &out)
	return code, out.String(), err
}

func TestRunSingleExperiment(t *testing.T) {
	code, out, err := runCLI(t, "-experiment", "phase-flip-toffoli", "-circuits")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "phase-flip-toffoli")
	assert.Contains(t, out, "Custom circuit")
	assert.Contains(t, out, "3.1416 rad (pi)")
}

func TestRunAllExperiments(t *testing.T) {
	code, out, err := runCLI(t, "-controls", "4")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	for _, name := range []string{"phase-flip-toffoli", "dirty-pair-mcx4", "barenco-lemma-7.2", "dirty-ancilla-mcx"} {
		assert.Contains(t, out, name)
	}
}

func TestRunStrict(t *testing.T) {
	code, _, err := runCLI(t, "-experiment", "dirty-pair-mcx4", "-strict")
	require.NoError(t, err)
	assert.Equal(t, exitNotEquivalent, code)
}

func TestRunUnknownExperiment(t *testing.T) {
	code, _, err := runCLI(t, "-experiment", "nope")
	assert.Error(t, err)
	assert.Equal(t, 1, code)
}

func TestRunCustomQASM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toffoli.qasm")
	require.NoError(t, os.WriteFile(path, []byte("OPENQASM 2.0;\nqreg q[3];\nccx q[0], q[1], q[2];\n"), 0644))

	code, out, err := runCLI(t, "-qasm", path, "-strict")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, path)

	_, _, err = runCLI(t, "-qasm", filepath.Join(t.TempDir(), "missing.qasm"))
	assert.Error(t, err)
}

func TestRunWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.json")
	code, _, err := runCLI(t, "-experiment", "phase-flip-toffoli", "-out", path)
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "phase-flip-toffoli", decoded[0]["experiment"])
}

func TestRunMsgpackThenShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.msgpack")
	_, _, err := runCLI(t, "-experiment", "dirty-pair-mcx4", "-out", path, "-format", "msgpack")
	require.NoError(t, err)

	code, out, err := runCLI(t, "-show", path)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "dirty-pair-mcx4")
	assert.Contains(t, out, "3.1416 rad (pi)")
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	code, _, err := runCLI(t, "-format", "xml")
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, 1, code)
}
