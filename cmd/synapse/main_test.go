package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/synapse/internal/utils"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "synapse dev\n", out)
}

func TestGenerateFlags(t *testing.T) {
	cmd := newGenerateCmd()
	for _, name := range []string{"module", "config", "contract", "verbose", "quiet", "output"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("generate is missing --%s", name)
		}
	}

	_, err := execute(t, "generate", "--verbose", "--quiet", ".")
	assert.Error(t, err, "--verbose and --quiet are exclusive")
}

func TestGenerateAndClean(t *testing.T) {
	root := t.TempDir()
	api := filepath.Join(root, "api")
	require.NoError(t, os.MkdirAll(api, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/shop\n\ngo 1.22\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(api, "health.go"), []byte(`package api

//synapse::client -BaseAddress=https://shop.example.com
type Health interface {
	//synapse::http GET /healthz
	Check() error
}
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "synapse.yaml"), []byte("diagnostics: silent\n"), 0644))
	t.Chdir(root)

	_, err := execute(t, "generate", "./...")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(api, utils.DefaultOutputFile))

	t.Setenv("NO_COLOR", "1")
	require.NoError(t, os.WriteFile(filepath.Join(root, "synapse.yaml"), []byte("diagnostics: info\n"), 0644))
	out, err := execute(t, "clean")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed:\n")
	assert.Contains(t, out, "  - "+filepath.Join("api", utils.DefaultOutputFile))
	assert.Contains(t, out, "[SUCCESS] 1 generated files removed")
	assert.NoFileExists(t, filepath.Join(api, utils.DefaultOutputFile))
}

func TestGenerateMissingConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := execute(t, "generate", "--quiet", "--config", "missing.yaml", ".")
	assert.Error(t, err)
}
