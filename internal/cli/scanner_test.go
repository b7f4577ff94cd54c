package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/synapse/internal/utils"
)

func TestDirectoryScanner_ScanDirectories(t *testing.T) {
	tempDir := t.TempDir()

	// tempDir/
	//   clients/orders.go
	//   services/user_service.go
	//   services/subservice/helper.go
	//   models/user.go
	//   vendor/dependency.go   (skipped)
	//   empty_dir/             (no Go files)
	clientsDir := filepath.Join(tempDir, "clients")
	servicesDir := filepath.Join(tempDir, "services")
	subserviceDir := filepath.Join(servicesDir, "subservice")
	modelsDir := filepath.Join(tempDir, "models")
	vendorDir := filepath.Join(tempDir, "vendor")
	emptyDir := filepath.Join(tempDir, "empty_dir")

	for _, dir := range []string{clientsDir, subserviceDir, modelsDir, vendorDir, emptyDir} {
		require.NoError(t, os.MkdirAll(dir, 0755))
	}

	goFiles := map[string]string{
		filepath.Join(clientsDir, "orders.go"):           "package clients\n\ntype Orders interface{}",
		filepath.Join(servicesDir, "user_service.go"):    "package services\n\ntype UserService struct{}",
		filepath.Join(subserviceDir, "helper.go"):        "package subservice\n\ntype Helper struct{}",
		filepath.Join(modelsDir, "user.go"):              "package models\n\ntype User struct{}",
		filepath.Join(vendorDir, "dependency.go"):        "package vendor\n\ntype Dependency struct{}",
		filepath.Join(clientsDir, "orders_test.go"):      "package clients",
		filepath.Join(emptyDir, utils.DefaultOutputFile): "package empty_dir",
	}
	for filePath, content := range goFiles {
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	scanner := NewDirectoryScanner()

	t.Run("scan single directory", func(t *testing.T) {
		dirs, err := scanner.ScanDirectories([]string{clientsDir})
		require.NoError(t, err)
		assert.Equal(t, []string{clientsDir}, dirs)
	})

	t.Run("scan multiple directories", func(t *testing.T) {
		dirs, err := scanner.ScanDirectories([]string{clientsDir, servicesDir})
		require.NoError(t, err)
		assert.Len(t, dirs, 3) // clients, services, services/subservice
		assert.Contains(t, dirs, subserviceDir)
	})

	t.Run("scan root directory recursively", func(t *testing.T) {
		dirs, err := scanner.ScanDirectories([]string{tempDir})
		require.NoError(t, err)

		assert.Len(t, dirs, 4)
		assert.NotContains(t, dirs, vendorDir)
		assert.NotContains(t, dirs, emptyDir, "generated files alone do not make a package")
	})

	t.Run("Go-style recursive patterns", func(t *testing.T) {
		t.Chdir(tempDir)

		dirs, err := scanner.ScanDirectories([]string{"./..."})
		require.NoError(t, err)
		assert.Len(t, dirs, 4)

		dirs, err = scanner.ScanDirectories([]string{"./services/..."})
		require.NoError(t, err)
		for _, dir := range dirs {
			relDir, err := filepath.Rel(tempDir, dir)
			require.NoError(t, err)
			assert.True(t, relDir == "services" || relDir == filepath.Join("services", "subservice"),
				"Expected services or services/subservice, got %s", relDir)
		}
	})

	t.Run("nonexistent directory", func(t *testing.T) {
		_, err := scanner.ScanDirectories([]string{"/nonexistent/path"})
		assert.Error(t, err)
	})
}

func TestTrimRecursivePattern(t *testing.T) {
	tests := map[string]string{
		"./...":          ".",
		"...":            ".",
		"/...":           ".",
		"./api/...":      "./api",
		"internal/users": "internal/users",
	}
	for in, want := range tests {
		if got := trimRecursivePattern(in); got != want {
			t.Errorf("trimRecursivePattern(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCleaner_CleanGeneratedFiles(t *testing.T) {
	tempDir := t.TempDir()
	nested := filepath.Join(tempDir, "api", "v1")
	require.NoError(t, os.MkdirAll(nested, 0755))

	generated := []string{
		filepath.Join(tempDir, utils.DefaultOutputFile),
		filepath.Join(nested, utils.DefaultOutputFile),
	}
	kept := filepath.Join(nested, "client.go")
	for _, path := range append(generated, kept) {
		require.NoError(t, os.WriteFile(path, []byte("package x\n"), 0644))
	}

	removed, err := NewCleaner("").CleanGeneratedFiles([]string{tempDir + "/..."})
	require.NoError(t, err)
	assert.ElementsMatch(t, generated, removed)
	assert.FileExists(t, kept)

	removed, err = NewCleaner("clients_gen.go").CleanGeneratedFiles([]string{tempDir})
	require.NoError(t, err)
	assert.Empty(t, removed)
}
