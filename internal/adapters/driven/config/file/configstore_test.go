package file

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(filepath.Join(t.TempDir(), DefaultFileName))
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "deep", DefaultFileName)

	store, err := NewConfigStore(path)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, path, store.Path())

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("this is not valid TOML {{{[["), 0600))

	store, err := NewConfigStore(path)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_NestedTablesFlatten(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	content := `
[artifacts]
retention = "90s"
url_ttl = 600
delete_rate = 2.5

[highlight]
palette = ["FFFF00", "90EE90"]
workers = 3

[server]
addr = "0.0.0.0:9000"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	store, err := NewConfigStore(path)
	require.NoError(t, err)

	d, ok := store.GetDuration("artifacts.retention")
	assert.True(t, ok)
	assert.Equal(t, 90*time.Second, d)

	d, ok = store.GetDuration("artifacts.url_ttl")
	assert.True(t, ok)
	assert.Equal(t, 10*time.Minute, d)

	assert.InDelta(t, 2.5, store.GetFloat("artifacts.delete_rate"), 0.0001)
	assert.Equal(t, []string{"FFFF00", "90EE90"}, store.GetStringSlice("highlight.palette"))
	assert.Equal(t, 3, store.GetInt("highlight.workers"))
	assert.Equal(t, 3.0, store.GetFloat("highlight.workers"))
	assert.Equal(t, "0.0.0.0:9000", store.GetString("server.addr"))
	assert.Equal(t, []string{
		"artifacts.delete_rate", "artifacts.retention", "artifacts.url_ttl",
		"highlight.palette", "highlight.workers", "server.addr",
	}, store.Keys())
}

func TestConfigStore_GetDuration_Invalid(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("a", "soon"))
	require.NoError(t, store.Set("b", true))

	_, ok := store.GetDuration("a")
	assert.False(t, ok)
	_, ok = store.GetDuration("b")
	assert.False(t, ok)
	_, ok = store.GetDuration("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGettersWrongType(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("int_key", 42))
	require.NoError(t, store.Set("string_key", "hello"))

	assert.Equal(t, "", store.GetString("int_key"))
	assert.Equal(t, 0, store.GetInt("string_key"))
	assert.False(t, store.GetBool("string_key"))
	assert.Equal(t, 0.0, store.GetFloat("string_key"))
	assert.Nil(t, store.GetStringSlice("int_key"))

	val, ok := store.Get("nonexistent")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_SaveWritesNestedTables(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("storage.signing_key", "abc123"))
	require.NoError(t, store.Set("storage.driver", "memory"))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[storage]")
	assert.False(t, strings.Contains(string(raw), `"storage.driver"`))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reloaded, err := NewConfigStore(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "abc123", reloaded.GetString("storage.signing_key"))
	assert.Equal(t, "memory", reloaded.GetString("storage.driver"))
}

func TestConfigStore_SaveReload_PreservesData(t *testing.T) {
	store := newTestStore(t)

	testData := map[string]any{
		"key1":           "string_value",
		"key2":           int64(42),
		"key3":           true,
		"section.float":  3.14159,
		"section.nested": "deep",
	}
	for key, val := range testData {
		require.NoError(t, store.Set(key, val))
	}

	store2, err := NewConfigStore(store.Path())
	require.NoError(t, err)

	assert.Equal(t, "string_value", store2.GetString("key1"))
	assert.Equal(t, 42, store2.GetInt("key2"))
	assert.True(t, store2.GetBool("key3"))
	assert.InDelta(t, 3.14159, store2.GetFloat("section.float"), 0.00001)
	assert.Equal(t, "deep", store2.GetString("section.nested"))
}

func TestConfigStore_Load_EmptyTOMLData(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("# Just a comment\n\n"), 0600))

	store, err := NewConfigStore(path)
	require.NoError(t, err)

	val, ok := store.Get("any_key")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("test", "value"))

	// Replace the file with a directory to cause a write error.
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("another", "value"))
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store := newTestStore(t)

	// Channels cannot be marshaled to TOML
	err := store.Set("channel", make(chan int))

	assert.Error(t, err)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.GetString(key)
			_, _ = store.GetDuration(key)
			_ = store.Keys()
		}(i)
	}
	wg.Wait()
}

func TestNestMap(t *testing.T) {
	flat := map[string]any{
		"a":     1,
		"a.b":   2, // shadowed by the leaf "a"
		"c.d.e": "x",
		"c.f":   true,
	}

	nested := nestMap(flat)

	assert.Equal(t, 1, nested["a"])
	c, ok := nested["c"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, c["f"])
	d, ok := c["d"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "x", d["e"])

	back := make(map[string]any)
	flatten(back, map[string]any{"c": c}, "")
	assert.Equal(t, map[string]any{"c.d.e": "x", "c.f": true}, back)
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "SERCHA_VIEW_STORAGE_SIGNING_KEY", EnvName("storage.signing_key"))
	assert.Equal(t, "SERCHA_VIEW_LOG_FORMAT", EnvName("log.format"))
	assert.Equal(t, "SERCHA_VIEW_A_B_C", EnvName("a.b-c"))
}

func TestConfigStore_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	content := `
[artifacts]
retention = "2m"

[server]
addr = "127.0.0.1:8080"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	t.Setenv("SERCHA_VIEW_SERVER_ADDR", "0.0.0.0:9999")
	t.Setenv("SERCHA_VIEW_ARTIFACTS_RETENTION", "300")
	t.Setenv("SERCHA_VIEW_HIGHLIGHT_PALETTE", "FFFF00,90EE90")
	t.Setenv("SERCHA_VIEW_HIGHLIGHT_WORKERS", "4")
	t.Setenv("SERCHA_VIEW_LOG_VERBOSE", "true")

	store, err := NewConfigStore(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9999", store.GetString("server.addr"))
	d, ok := store.GetDuration("artifacts.retention")
	require.True(t, ok)
	assert.Equal(t, 5*time.Minute, d)
	assert.Equal(t, []string{"FFFF00", "90EE90"}, store.GetStringSlice("highlight.palette"))
	assert.Equal(t, 4, store.GetInt("highlight.workers"))
	assert.True(t, store.GetBool("log.verbose"))

	// Overrides are not persisted.
	require.NoError(t, store.Set("search.limit", 5))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "127.0.0.1:8080")
	assert.NotContains(t, string(raw), "9999")
	assert.Equal(t, []string{"artifacts.retention", "search.limit", "server.addr"}, store.Keys())
}
