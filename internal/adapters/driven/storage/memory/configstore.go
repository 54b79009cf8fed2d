package memory

import (
	"maps"
	"sync"

	"github.com/custodia-labs/docsmith/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigPath is what Path reports for an in-memory config store.
const ConfigPath = ":memory:"

// ConfigStore holds settings for the lifetime of the process only.
// It stands in for the file store when no config directory is usable.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore creates a config store seeded with a copy of seed.
func NewConfigStore(seed map[string]any) *ConfigStore {
	values := maps.Clone(seed)
	if values == nil {
		values = make(map[string]any)
	}
	return &ConfigStore{values: values}
}

// Get returns the raw value for key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// GetString returns key as a string, or "".
func (s *ConfigStore) GetString(key string) string {
	str, _ := s.value(key).(string)
	return str
}

// GetInt returns key as an int, or 0.
func (s *ConfigStore) GetInt(key string) int {
	switch n := s.value(key).(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// GetBool returns key as a bool, or false.
func (s *ConfigStore) GetBool(key string) bool {
	b, _ := s.value(key).(bool)
	return b
}

// GetStringSlice returns key as a string slice, or nil.
func (s *ConfigStore) GetStringSlice(key string) []string {
	switch items := s.value(key).(type) {
	case []string:
		return items
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

func (s *ConfigStore) value(key string) any {
	v, _ := s.Get(key)
	return v
}

// Set stores value under key.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Save is a no-op.
func (s *ConfigStore) Save() error { return nil }

// Load is a no-op.
func (s *ConfigStore) Load() error { return nil }

// Path returns ConfigPath.
func (s *ConfigStore) Path() string { return ConfigPath }
