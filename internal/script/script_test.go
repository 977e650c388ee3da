package script

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gopkg.in/yaml.v3"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sample = `version: 1
cases:
  - id: status
    value:
      status: 200
      body:
        items: [1, 2, 3]
    steps:
      - prop: status
      - eq: 200
      - context
      - prop: body
      - prop: items
      - prop: 1
      - gt: 1
  - value: hello
    steps:
      - exist
      - typeOf: string
      - match: "^h"
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Version)
	require.Len(t, s.Cases, 2)

	assert.Equal(t, "status", s.Cases[0].ID)
	assert.Equal(t, "case-2", s.Cases[1].ID)

	want := []Step{
		{Op: "prop", Arg: "status", HasArg: true},
		{Op: "eq", Arg: 200, HasArg: true},
		{Op: "context"},
		{Op: "prop", Arg: "body", HasArg: true},
		{Op: "prop", Arg: "items", HasArg: true},
		{Op: "prop", Arg: 1, HasArg: true},
		{Op: "gt", Arg: 1, HasArg: true},
	}
	if diff := cmp.Diff(want, s.Cases[0].Steps); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad yaml", "cases: [", "failed to parse"},
		{"unknown step", "cases:\n  - steps: [frobnicate]\n", "unknown step"},
		{"two keys", "cases:\n  - steps:\n      - {eq: 1, ne: 2}\n", "exactly one key"},
		{"missing arg", "cases:\n  - steps: [eq]\n", "missing argument"},
		{"unexpected arg", "cases:\n  - steps:\n      - exist: 1\n", "takes no argument"},
		{"bad regexp", "cases:\n  - steps:\n      - match: \"(\"\n", "step 1 (match)"},
		{"bad type", "cases:\n  - steps:\n      - typeOf: number\n", "unknown type"},
		{"bad key", "cases:\n  - steps:\n      - prop: [1]\n", "property key"},
		{"duplicate id", "cases:\n  - id: a\n  - id: a\n", "duplicate case id"},
		{"value and file", "cases:\n  - value: 1\n    file: x.json\n", "mutually exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestStepMarshalRoundTrip(t *testing.T) {
	steps := []Step{{Op: "exist"}, {Op: "prop", Arg: "a", HasArg: true}}
	data, err := yaml.Marshal(steps)
	require.NoError(t, err)
	assert.Equal(t, "- exist\n- prop: a\n", string(data))
	assert.Equal(t, "prop: a", steps[1].String())
}

func TestLoadResolvesFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "fixtures/resp.json", `{"status": 200, "tags": ["a", "b"]}`)
	path := writeFile(t, dir, "resp.yaml", `cases:
  - id: fixture
    file: fixtures/resp.json
    steps:
      - prop: tags
      - prop: 0
      - eq: a
`)

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path)
	assert.Equal(t, map[string]any{"status": 200, "tags": []any{"a", "b"}}, s.Cases[0].Value)
}

func TestLoadMissingCaseFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "s.yaml", "cases:\n  - id: x\n    file: nope.json\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "case x")
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.yaml", "b.yaml", "c.yaml"} {
		paths = append(paths, writeFile(t, dir, name, "cases:\n  - id: "+name+"\n    value: 1\n    steps: [exist]\n"))
	}

	scripts, err := LoadAll(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, scripts, 3)
	for i, s := range scripts {
		assert.Equal(t, paths[i], s.Path)
	}

	paths = append(paths, filepath.Join(dir, "missing.yaml"))
	_, err = LoadAll(context.Background(), paths)
	assert.Error(t, err)
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yaml", "")
	b := writeFile(t, dir, "nested/b.yml", "")
	writeFile(t, dir, "nested/readme.md", "")
	single := writeFile(t, t.TempDir(), "one.txt", "")

	got, err := Expand([]string{dir, single})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b, single}, got)

	_, err = Expand([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}

func TestDefaultScriptDir(t *testing.T) {
	assert.Equal(t, filepath.Join("ws", ".chifir", "scripts"), DefaultScriptDir("ws"))
}
