package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/synapse/internal/models"
	"github.com/toyz/synapse/internal/utils"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "synapse.yaml", `
module: github.com/acme/api
output: clients_gen.go
diagnostics: verbose
contracts:
  - contracts/billing.yaml
defaults:
  query_separator: ","
  buffer_size: 4096
  content_type: application/vnd.acme+json
log:
  env: prod
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "github.com/acme/api", cfg.Module)
	assert.Equal(t, "clients_gen.go", cfg.Output)
	assert.Equal(t, "verbose", cfg.Diagnostics)
	assert.Equal(t, []string{"contracts/billing.yaml"}, cfg.Contracts)
	assert.Equal(t, Defaults{QuerySeparator: ",", BufferSize: 4096, ContentType: "application/vnd.acme+json"}, cfg.Defaults)
	assert.Equal(t, LogConfig{Env: "prod", Level: "debug"}, cfg.Log)
	assert.Empty(t, cfg.Validate())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "synapse.yaml", "output: from_file.go\n")

	t.Setenv("SYNAPSE_OUTPUT", "from_env.go")
	t.Setenv("SYNAPSE_DEFAULTS_BUFFER_SIZE", "1024")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from_env.go", cfg.Output)
	assert.Equal(t, 1024, cfg.Defaults.BufferSize)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "synapse.yaml", "diagnostics: info\n")
	writeFile(t, dir, ".env", "SYNAPSE_LOG_LEVEL=error\n")
	t.Cleanup(func() { os.Unsetenv("SYNAPSE_LOG_LEVEL") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, utils.DefaultOutputFile, cfg.Output)
	assert.Equal(t, "info", cfg.Diagnostics)
	assert.Equal(t, "dev", cfg.Log.Env)
	assert.Empty(t, cfg.Contracts)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err, "an explicit config file must exist")

	bad := writeFile(t, dir, "bad.yaml", "output: [unterminated\n")
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Output: "out/client.txt", Diagnostics: "loud", Defaults: Defaults{BufferSize: -1}, Log: LogConfig{Env: "staging"}}
	warnings := cfg.Validate()
	assert.Len(t, warnings, 4)
	assert.Contains(t, warnings, "validation error for field 'output': must end with '.go'")

	cfg.Output = "out/client.go"
	assert.Contains(t, cfg.Validate(), "validation error for field 'output': must be a file name, not a path")
}

func TestDefaults_Apply(t *testing.T) {
	iface := models.NewInterfaceBuilder("Files").
		WithContentType("application/xml").
		Method("List", "GET", "/files").
		Param("tags", "[]string", "").
		Param("ids", "[]int", models.RoleArrayQuery).
		Param("sizes", "[]int", "", models.Separator("|")).
		Done().
		Method("Download", "GET", "/files/{id}").
		Param("id", "string", "").
		Param("dest", "string", models.RoleFilePath).
		Done().
		Build()
	other := models.NewInterfaceBuilder("Other").Build()

	metadata := &models.PackageMetadata{Interfaces: []*models.InterfaceDescriptor{iface, other}}
	Defaults{QuerySeparator: ",", BufferSize: 4096, ContentType: "application/json"}.Apply(metadata)

	list := iface.Methods[0]
	assert.Equal(t, ",", list.Param("tags").Separator)
	assert.Equal(t, "", list.Param("ids").Separator)
	assert.Equal(t, "|", list.Param("sizes").Separator)
	assert.Equal(t, 4096, iface.Methods[1].Param("dest").BufferSize)

	assert.Equal(t, "application/xml", iface.ContentType)
	assert.Equal(t, "application/json", other.ContentType)
}
