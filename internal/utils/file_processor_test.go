package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileProcessor_ScanDirectoriesWithGoFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "api/users.go", "package api\n")
	writeFile(t, root, "api/v2/orders.go", "package v2\n")
	writeFile(t, root, "only_tests/x_test.go", "package only\n")
	writeFile(t, root, "generated/autogen_client.go", "package generated\n")
	writeFile(t, root, "vendor/lib/lib.go", "package lib\n")
	writeFile(t, root, "_examples/demo/demo.go", "package demo\n")
	writeFile(t, root, ".hidden/h.go", "package h\n")

	dirs, err := NewFileProcessor().ScanDirectoriesWithGoFiles([]string{root})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		filepath.Join(root, "api"),
		filepath.Join(root, "api/v2"),
	}, dirs)
}

func TestFileProcessor_ParseDirectoryFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.go", "package api\n")
	writeFile(t, dir, "a.go", "package api\n")
	writeFile(t, dir, "a_test.go", "package api_test\n")
	writeFile(t, dir, DefaultOutputFile, "package api\n")

	pkg, err := NewFileProcessor().ParseDirectoryFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, "api", pkg.Name)
	assert.Equal(t, []string{filepath.Join(dir, "a.go"), filepath.Join(dir, "b.go")}, pkg.Paths)
	assert.Len(t, pkg.Files, 2)
}

func TestFileProcessor_ParseDirectoryFilesErrors(t *testing.T) {
	mixed := t.TempDir()
	writeFile(t, mixed, "a.go", "package api\n")
	writeFile(t, mixed, "b.go", "package other\n")
	_, err := NewFileProcessor().ParseDirectoryFiles(mixed)
	assert.ErrorContains(t, err, "multiple packages")

	_, err = NewFileProcessor().ParseDirectoryFiles(t.TempDir())
	assert.ErrorContains(t, err, "no Go files")
}

func TestFileProcessor_CleanDirectories(t *testing.T) {
	root := t.TempDir()
	keep := writeFile(t, root, "api/users.go", "package api\n")
	gen := writeFile(t, root, "api/autogen_client.go", "package api\n")
	nested := writeFile(t, root, "api/v2/autogen_client.go", "package v2\n")
	other := writeFile(t, root, "api/autogen_other.go", "package api\n")

	removed, err := NewFileProcessor().CleanDirectories([]string{root}, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{gen, nested}, removed)

	for _, path := range []string{keep, other} {
		_, err := os.Stat(path)
		assert.NoError(t, err, path)
	}
}

func TestFileProcessor_CleanDirectoriesCustomOutput(t *testing.T) {
	root := t.TempDir()
	custom := writeFile(t, root, "api/clients_gen.go", "package api\n")
	def := writeFile(t, root, "api/autogen_client.go", "package api\n")

	removed, err := NewFileProcessor().CleanDirectories([]string{root, filepath.Join(root, "missing")}, "clients_gen.go")
	require.NoError(t, err)
	assert.Equal(t, []string{custom}, removed)
	assert.FileExists(t, def)
}

func TestFileProcessor_WalkFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a\n")
	writeFile(t, root, "autogen_client.go", "package a\n")
	writeFile(t, root, "clients_gen.go", "package a\n")
	writeFile(t, root, "vendor/autogen_client.go", "package v\n")

	files, err := NewFileProcessor().WalkFiles(root, FileWalkOptions{
		FileFilter:      GeneratedFileFilter(""),
		DirectoryFilter: DefaultDirectoryFilter(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "autogen_client.go")}, files)
}
