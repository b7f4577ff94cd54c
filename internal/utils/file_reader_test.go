package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileReaderCaching(t *testing.T) {
	path := writeFile(t, t.TempDir(), "users.go", "package api\n\ntype UserService interface{}\n")
	reader := NewFileReader()

	file1, err := reader.ParseGoFile(path)
	require.NoError(t, err)
	file2, err := reader.ParseGoFile(path)
	require.NoError(t, err)
	if file1 != file2 {
		t.Error("expected cached AST to be returned")
	}

	content, err := reader.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, content, "UserService")

	astFiles, contentFiles := reader.GetCacheStats()
	assert.Equal(t, 1, astFiles)
	assert.Equal(t, 1, contentFiles)

	reader.InvalidateFile(path)
	astFiles, contentFiles = reader.GetCacheStats()
	assert.Zero(t, astFiles+contentFiles)
}

func TestFileReaderErrors(t *testing.T) {
	reader := NewFileReader()

	_, err := reader.ParseGoFile("")
	assert.Error(t, err)

	_, err = reader.ReadFile(filepath.Join(t.TempDir(), "missing.go"))
	assert.ErrorContains(t, err, "does not exist")

	_, err = reader.ReadFile("a/../../etc/passwd")
	assert.Error(t, err)

	bad := writeFile(t, t.TempDir(), "bad.go", "package api\nfunc {")
	_, err = reader.ParseGoFile(bad)
	assert.ErrorContains(t, err, "failed to parse Go file bad.go")
}

func TestFileReader_ParseGoSource(t *testing.T) {
	reader := NewFileReader()
	file, err := reader.ParseGoSource("inline.go", "package inline\n")
	require.NoError(t, err)
	assert.Equal(t, "inline", file.Name.Name)
	assert.Equal(t, "inline.go", reader.Position(file.Package).Filename)
}
