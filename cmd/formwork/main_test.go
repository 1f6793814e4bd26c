package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/formwork/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args,
		"--config", filepath.Join(dir, "missing.yaml"),
		"--driver", "file",
		"--dir", filepath.Join(dir, "forms"),
		"--log-level", "error",
	))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_FormLifecycle(t *testing.T) {
	dir := testutils.SetupDir(t, map[string]string{"legacy.json": `[
		{"id": "sec", "type": "Section", "properties": {"columns": 2}},
		{"id": "name", "type": "Input", "parentId": "sec", "column": 1},
		{"id": "tabs", "type": "Page", "properties": {"tabs": [{"id": "t1", "label": "Main"}]}}
	]`})
	legacy := filepath.Join(dir, "legacy.json")

	out, err := run(t, dir, "forms", "import", "contact", legacy)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported contact")

	out, err = run(t, dir, "forms", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "- contact")

	out, err = run(t, dir, "validate", "contact")
	require.NoError(t, err)
	assert.Contains(t, out, "contact: valid")

	out, err = run(t, dir, "graph", "contact")
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "sec")

	out, err = run(t, dir, "inspect", "contact", "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "# contact")

	yamlOut := filepath.Join(dir, "contact.yaml")
	_, err = run(t, dir, "convert", "contact", yamlOut)
	require.NoError(t, err)
	data, err := os.ReadFile(yamlOut)
	require.NoError(t, err)
	assert.Contains(t, string(data), "components:")

	out, err = run(t, dir, "forms", "show", "contact")
	require.NoError(t, err)
	assert.Contains(t, out, `"children"`)

	_, err = run(t, dir, "forms", "rm", "contact")
	require.NoError(t, err)
	out, err = run(t, dir, "forms", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "No forms found.")
}

func TestCLI_ValidateReportsIssues(t *testing.T) {
	dir := testutils.SetupDir(t, map[string]string{"bad.json": `{"components": [
		{"id": "a", "type": "Button", "column": 0},
		{"id": "a", "type": "Spinner"}
	]}`})
	bad := filepath.Join(dir, "bad.json")

	out, err := run(t, dir, "validate", bad)
	assert.Error(t, err)
	assert.Contains(t, out, "bad: ")
	assert.Contains(t, out, "issue(s)")
}

func TestCLI_Version(t *testing.T) {
	out, err := run(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "formwork version 0.1.0")
}
