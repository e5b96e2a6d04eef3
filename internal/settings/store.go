package settings

// Store maps (scope, key) pairs to configuration values. Values keep the
// type the loader gave them: int64, uint64, bool, string, []any, or
// map[string]any for nested structures such as decoded device-tree nodes.
type Store struct {
	values map[string]map[string]any
}

// New creates an empty store.
func New() *Store {
	return &Store{values: make(map[string]map[string]any)}
}

// Set records a value under a scope and key, replacing any previous value.
func (s *Store) Set(scope, key string, value any) {
	m, ok := s.values[scope]
	if !ok {
		m = make(map[string]any)
		s.values[scope] = m
	}
	m[key] = normalize(value)
}

// Lookup returns the value for (scope, key), reporting whether it exists.
func (s *Store) Lookup(scope, key string) (any, bool) {
	m, ok := s.values[scope]
	if !ok {
		return nil, false
	}
	v, ok := m[key]
	return v, ok
}

// Int returns the value as an int64, or def when absent or not an integer.
func (s *Store) Int(scope, key string, def int64) int64 {
	if v, ok := s.Lookup(scope, key); ok {
		if n, ok := asInt64(v); ok {
			return n
		}
	}
	return def
}

// OptionalInt returns the value as an int64 with explicit presence.
func (s *Store) OptionalInt(scope, key string) (int64, bool) {
	v, ok := s.Lookup(scope, key)
	if !ok {
		return 0, false
	}
	return asInt64(v)
}

// Uint returns the value as a uint64, or def when absent.
func (s *Store) Uint(scope, key string, def uint64) uint64 {
	if v, ok := s.Lookup(scope, key); ok {
		switch n := v.(type) {
		case uint64:
			return n
		case int64:
			if n >= 0 {
				return uint64(n)
			}
		}
	}
	return def
}

// Bool returns the value as a bool, or def when absent or not a bool.
func (s *Store) Bool(scope, key string, def bool) bool {
	if v, ok := s.Lookup(scope, key); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// String returns the value as a string, or def when absent or not a string.
func (s *Store) String(scope, key, def string) string {
	if v, ok := s.Lookup(scope, key); ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return def
}

// Map returns the value as a nested map, reporting whether it exists and has
// that shape.
func (s *Store) Map(scope, key string) (map[string]any, bool) {
	v, ok := s.Lookup(scope, key)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// Merge applies every value from overlay on top of this store. Later sources
// win per (scope, key); scopes not present in the overlay are untouched.
func (s *Store) Merge(overlay *Store) {
	if overlay == nil {
		return
	}
	for scope, kv := range overlay.values {
		for key, value := range kv {
			s.Set(scope, key, value)
		}
	}
}

// normalize brings loader-dependent numeric types onto int64 so lookups see
// one integer representation regardless of input format.
func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case uint:
		return uint64(n)
	case uint32:
		return uint64(n)
	case []any:
		out := make([]any, len(n))
		for i, e := range n {
			out[i] = normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, e := range n {
			out[k] = normalize(e)
		}
		return out
	}
	return v
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	}
	return 0, false
}
