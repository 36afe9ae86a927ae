package file

import (
	"errors"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/sercha-view/internal/adapters/driven/config/values"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
)

// DefaultFileName is the configuration file name inside the config directory.
const DefaultFileName = "config.toml"

// EnvPrefix starts the environment variables that override file values.
// The key "storage.signing_key" is overridden by SERCHA_VIEW_STORAGE_SIGNING_KEY.
const EnvPrefix = "SERCHA_VIEW_"

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps configuration in a TOML file. Keys are addressed in dot
// notation and written back as nested tables. Environment variables take
// precedence over the file but are never written to it.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
	env      func(string) (string, bool)
}

// NewConfigStore opens the TOML file at filePath, creating its directory.
// An empty filePath means ~/.sercha-view/config.toml. A missing file is an
// empty configuration.
func NewConfigStore(filePath string) (*ConfigStore, error) {
	if filePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		filePath = filepath.Join(home, ".sercha-view", DefaultFileName)
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filePath,
		data:     make(map[string]any),
		env:      os.LookupEnv,
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

// Get returns the environment override for key, else the file value.
func (s *ConfigStore) Get(key string) (any, bool) {
	if v, ok := s.env(EnvName(key)); ok {
		return v, true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// GetString returns key as a string, or "".
func (s *ConfigStore) GetString(key string) string {
	v, _ := s.Get(key)
	return values.String(v)
}

// GetInt returns key as an int, or 0.
func (s *ConfigStore) GetInt(key string) int {
	v, _ := s.Get(key)
	return values.Int(v)
}

// GetFloat returns key as a float64, or 0.
func (s *ConfigStore) GetFloat(key string) float64 {
	v, _ := s.Get(key)
	return values.Float(v)
}

// GetBool returns key as a bool, or false.
func (s *ConfigStore) GetBool(key string) bool {
	v, _ := s.Get(key)
	return values.Bool(v)
}

// GetDuration reads "90s" style strings, or integers as seconds.
func (s *ConfigStore) GetDuration(key string) (time.Duration, bool) {
	v, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	return values.Duration(v)
}

// GetStringSlice reads TOML arrays, or comma separated strings.
func (s *ConfigStore) GetStringSlice(key string) []string {
	v, _ := s.Get(key)
	return values.StringSlice(v)
}

// Keys returns the keys stored in the file, sorted.
func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.data))
}

// Set stores a value and rewrites the file.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.save()
}

// Save rewrites the file from memory.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save requires s.mu. The file holds the URL signing key, so it is only
// readable by its owner.
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(nestMap(s.data))
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0o600)
}

// Load replaces the in-memory values with the file's.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		s.data = make(map[string]any)
		return nil
	}
	if err != nil {
		return err
	}

	var tree map[string]any
	if err := toml.Unmarshal(raw, &tree); err != nil {
		return err
	}
	s.data = make(map[string]any)
	flatten(s.data, tree, "")
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// flatten copies tree into dst with dotted keys: {"a": {"b": 1}} sets "a.b".
func flatten(dst, tree map[string]any, prefix string) {
	for k, v := range tree {
		if prefix != "" {
			k = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			flatten(dst, sub, k)
			continue
		}
		dst[k] = v
	}
}

// nestMap turns dotted keys back into tables. When a key is both a value and
// a table prefix ("a" and "a.b"), the value wins and the deeper key is dropped.
func nestMap(flat map[string]any) map[string]any {
	keys := slices.SortedFunc(maps.Keys(flat), func(a, b string) int {
		return strings.Count(a, ".") - strings.Count(b, ".")
	})

	root := make(map[string]any)
next:
	for _, key := range keys {
		parts := strings.Split(key, ".")
		node := root
		for _, p := range parts[:len(parts)-1] {
			switch child := node[p].(type) {
			case nil:
				sub := make(map[string]any)
				node[p] = sub
				node = sub
			case map[string]any:
				node = child
			default:
				continue next
			}
		}
		node[parts[len(parts)-1]] = flat[key]
	}
	return root
}
