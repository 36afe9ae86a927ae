package memory

import (
	"maps"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-view/internal/adapters/driven/config/values"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is an in-memory implementation of driven.ConfigStore.
// It backs ephemeral runs and tests.
type ConfigStore struct {
	mu   sync.RWMutex
	data map[string]any
	path string
}

// NewConfigStore creates an in-memory config store seeded with a copy of
// seed. Keys use dot notation, as in the file store.
func NewConfigStore(seed map[string]any) *ConfigStore {
	s := &ConfigStore{
		data: make(map[string]any, len(seed)),
		path: ":memory:",
	}
	maps.Copy(s.data, seed)
	return s
}

// WithPath sets the path reported by Path. Settings derived from the
// config location (such as the default database file) resolve against it.
func (s *ConfigStore) WithPath(path string) *ConfigStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = path
	return s
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	return val, ok
}

// GetString returns key as a string, or "".
func (s *ConfigStore) GetString(key string) string {
	v, _ := s.Get(key)
	return values.String(v)
}

// GetInt returns key as an int, or 0. Floats are truncated.
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

// GetDuration reads a time.Duration, a duration string, or seconds.
func (s *ConfigStore) GetDuration(key string) (time.Duration, bool) {
	v, _ := s.Get(key)
	return values.Duration(v)
}

// GetStringSlice reads a string list or a comma separated string.
func (s *ConfigStore) GetStringSlice(key string) []string {
	v, _ := s.Get(key)
	return values.StringSlice(v)
}

// Set stores a configuration value.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Save persists the current configuration (no-op for memory store).
func (s *ConfigStore) Save() error {
	return nil
}

// Load reads configuration from storage (no-op for memory store).
func (s *ConfigStore) Load() error {
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}
