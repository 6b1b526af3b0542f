package env

import "os"

// Source resolves raw environment variables.
type Source interface {
	Lookup(key string) (string, bool)
}

// OSSource reads from the process environment.
type OSSource struct{}

// Lookup implements Source.
func (OSSource) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapSource serves variables from a fixed map.
type MapSource map[string]string

// Lookup implements Source.
func (m MapSource) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// NopSource never reports a variable.
type NopSource struct{}

// Lookup implements Source.
func (NopSource) Lookup(string) (string, bool) {
	return "", false
}
