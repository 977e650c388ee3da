package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, failFast bool, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{
		"--config", filepath.Join(t.TempDir(), "config.yaml"),
		"--no-color",
		"--fail-fast=" + strconv.FormatBool(failFast),
	}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const passing = `cases:
  - id: status
    value: {status: 200}
    steps:
      - prop: status
      - eq: 200
`

const failing = `cases:
  - id: wrong
    value: {a: 13}
    steps:
      - prop: a
      - eq: 14
  - id: later
    value: 1
    steps: [exist]
`

func TestVersion(t *testing.T) {
	out, err := execute(t, false, "version")
	require.NoError(t, err)
	assert.Equal(t, "chifir dev\n", out)
}

func TestRunPassing(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "ok.yaml", passing)

	out, err := execute(t, false, "run", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "PASS status")
	assert.Contains(t, out, "1 passed, 0 failed")
}

func TestRunFailing(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "bad.yaml", failing)

	out, err := execute(t, false, "run", path)
	assert.ErrorIs(t, err, errFailures)
	assert.Contains(t, out, "FAIL wrong: Expected to be equal to 14 [Eq]")
	assert.Contains(t, out, "actual: 13")
	assert.Contains(t, out, "PASS later")
	assert.Contains(t, out, "1 passed, 1 failed")
}

func TestRunFailFast(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "bad.yaml", failing)

	out, err := execute(t, true, "run", path)
	assert.ErrorIs(t, err, errFailures)
	assert.NotContains(t, out, "later")
	assert.Contains(t, out, "0 passed, 1 failed")
}

func TestRunInvalidScript(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "broken.yaml", "cases:\n  - steps: [frobnicate]\n")

	_, err := execute(t, false, "run", dir)
	require.Error(t, err)
	assert.NotErrorIs(t, err, errFailures)
	assert.Contains(t, err.Error(), "unknown step")
}

func TestRunMissingPath(t *testing.T) {
	_, err := execute(t, false, "run", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestRunBadConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeScript(t, dir, "config.yaml", "logging:\n  format: xml\n")

	rootCmd.SetArgs([]string{"--config", cfgPath, "version"})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	err := rootCmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log format")
}
