package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/giants/internal/model"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("Isaac_Newton")
	b := CacheKey("Isaac_Newton")
	c := CacheKey("Gottfried_Wilhelm_Leibniz")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "giants:portrait:v1:"))
	assert.Len(t, strings.TrimPrefix(a, "giants:portrait:v1:"), 64)
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok)

	require.NoError(t, c.Set("k", []byte("v"), 0))
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, c.Delete("k"))
	_, ok = c.Get("k")
	assert.False(t, ok)

	require.NoError(t, c.Set("a", []byte("1"), 0))
	require.NoError(t, c.Clear())
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	require.NoError(t, c.Set("k", []byte("v"), 10*time.Millisecond))

	time.Sleep(30 * time.Millisecond)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestDiskCache_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "portraits")
	c := NewDiskCache(dir, time.Hour)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	key := CacheKey("Ada_Lovelace")
	require.NoError(t, c.Set(key, []byte(`{"portrait_url":"x"}`), 0))

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.JSONEq(t, `{"portrait_url":"x"}`, string(got))

	require.NoError(t, c.Delete(key))
	require.NoError(t, c.Delete(key), "deleting a missing key is not an error")
	_, ok = c.Get(key)
	assert.False(t, ok)
}

func TestDiskCache_PortableFileNames(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	keys := []string{CacheKey("Ada_Lovelace"), "../escape", `C:\temp\x`, "a/b"}
	for _, k := range keys {
		require.NoError(t, c.Set(k, []byte(k), 0))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, len(keys), "every key gets its own file inside the cache dir")
	for _, e := range entries {
		assert.False(t, e.IsDir())
		assert.NotContains(t, e.Name(), ":", "colons are not allowed in Windows file names")
		assert.Regexp(t, `^[0-9a-f]{64}\.cache$`, e.Name())
	}

	for _, k := range keys {
		got, ok := c.Get(k)
		require.True(t, ok, k)
		assert.Equal(t, k, string(got))
	}
}

func TestDiskCache_Expired(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	require.NoError(t, c.Set("k", []byte("v"), time.Minute))

	now = now.Add(2 * time.Minute)
	_, ok := c.Get("k")
	assert.False(t, ok)

	_, err := os.Stat(c.path("k"))
	assert.True(t, os.IsNotExist(err), "expired entry should be removed")
}

func TestDiskCache_CorruptFileIsMiss(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	require.NoError(t, os.WriteFile(c.path("k"), []byte("not json"), 0o644))

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()

	disk := NewDiskCache(dir, time.Hour)
	require.NoError(t, disk.Set("k", []byte("v"), 0))

	c := NewLayeredCache(time.Minute, dir, time.Hour)
	_, inMemory := c.memory.Get("k")
	require.False(t, inMemory)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	_, inMemory = c.memory.Get("k")
	assert.True(t, inMemory)
}

func TestLayeredCache_WriteThroughAndClear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "c")
	c := NewLayeredCache(time.Minute, dir, time.Hour)

	require.NoError(t, c.Set("k", []byte("v"), 0))
	_, ok := c.disk.Get("k")
	assert.True(t, ok)

	require.NoError(t, c.Delete("k"))
	_, ok = c.Get("k")
	assert.False(t, ok)

	require.NoError(t, c.Set("k", []byte("v"), 0))
	require.NoError(t, c.Clear())
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestFromConfig(t *testing.T) {
	cfg := model.DefaultConfig().Cache

	cfg.Enabled = false
	assert.Nil(t, FromConfig(cfg))

	cfg.Enabled = true
	cfg.Dir = ""
	assert.IsType(t, &MemoryCache{}, FromConfig(cfg))

	cfg.Dir = t.TempDir()
	assert.IsType(t, &LayeredCache{}, FromConfig(cfg))
}
