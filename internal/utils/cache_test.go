package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_BasicOperations(t *testing.T) {
	cache := NewCache[string, int](0)

	cache.Set("key1", 42)
	value, exists := cache.Get("key1")
	if !exists || value != 42 {
		t.Errorf("expected 42, got %d (exists=%v)", value, exists)
	}

	_, exists = cache.Get("nonexistent")
	assert.False(t, exists)

	cache.Delete("key1")
	_, exists = cache.Get("key1")
	assert.False(t, exists)

	cache.Set("a", 1)
	cache.Set("b", 2)
	assert.Equal(t, []string{"a", "b"}, cache.Keys())
	cache.Clear()
	assert.Equal(t, 0, cache.Size())
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewCache[string, int](2)
	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Get("a")
	cache.Set("c", 3)

	_, ok := cache.Get("b")
	assert.False(t, ok, "b was least recently used")
	assert.Equal(t, 2, cache.Size())
}

func TestCache_FileValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.go")
	require.NoError(t, os.WriteFile(path, []byte("package api\n"), 0o644))

	cache := NewCache[string, string](4)
	require.NoError(t, cache.SetWithFileInfo(path, "parsed", path))

	got, ok := cache.GetWithFileValidation(path, path)
	assert.True(t, ok)
	assert.Equal(t, "parsed", got)

	require.NoError(t, os.WriteFile(path, []byte("package api\n\n// changed\n"), 0o644))
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	_, ok = cache.GetWithFileValidation(path, path)
	assert.False(t, ok, "changed file must invalidate the entry")
	assert.Equal(t, 0, cache.Size())

	assert.Error(t, cache.SetWithFileInfo("missing", "x", filepath.Join(t.TempDir(), "missing.go")))
}
