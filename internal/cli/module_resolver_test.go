package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/synapse/internal/utils"
)

const testGoMod = `module github.com/example/testapp

go 1.21

require (
	github.com/labstack/echo/v4 v4.11.1
)
`

func TestModuleResolver_Resolve(t *testing.T) {
	resolver := NewModuleResolver()

	t.Run("read from go.mod in a parent directory", func(t *testing.T) {
		tempDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "go.mod"), []byte(testGoMod), 0644))
		sub := filepath.Join(tempDir, "internal", "api")
		require.NoError(t, os.MkdirAll(sub, 0755))
		t.Chdir(sub)

		info, err := resolver.Resolve("")
		require.NoError(t, err)
		assert.Equal(t, "github.com/example/testapp", info.Path)
		assert.Equal(t, "1.21", info.GoVersion)

		root, err := filepath.EvalSymlinks(tempDir)
		require.NoError(t, err)
		got, err := filepath.EvalSymlinks(info.Root)
		require.NoError(t, err)
		assert.Equal(t, root, got)
	})

	t.Run("custom module name overrides go.mod", func(t *testing.T) {
		tempDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "go.mod"), []byte(testGoMod), 0644))
		t.Chdir(tempDir)

		name, err := resolver.ResolveModuleName("github.com/custom/module")
		require.NoError(t, err)
		assert.Equal(t, "github.com/custom/module", name)
	})

	t.Run("custom module name without go.mod", func(t *testing.T) {
		t.Chdir(t.TempDir())

		info, err := resolver.Resolve("github.com/custom/module")
		require.NoError(t, err)
		assert.Equal(t, "github.com/custom/module", info.Path)
	})

	t.Run("no go.mod file found", func(t *testing.T) {
		t.Chdir(t.TempDir())

		_, err := resolver.ResolveModuleName("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--module")
	})
}

func TestModuleResolver_BuildPackagePath(t *testing.T) {
	resolver := NewModuleResolver()
	root := t.TempDir()
	module := &utils.ModuleInfo{Path: "github.com/example/app", Root: root}

	testCases := []struct {
		name       string
		packageDir string
		expected   string
	}{
		{"module root", root, "github.com/example/app"},
		{"subdirectory", filepath.Join(root, "internal", "clients"), "github.com/example/app/internal/clients"},
		{"nested subdirectory", filepath.Join(root, "internal", "services", "user"), "github.com/example/app/internal/services/user"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := resolver.BuildPackagePath(module, tc.packageDir)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result)
		})
	}

	t.Run("outside the module", func(t *testing.T) {
		_, err := resolver.BuildPackagePath(module, filepath.Dir(root))
		assert.Error(t, err)
	})
}
