// Package env reads the process environment variables recognised by the
// translator and exposes them as typed values. Variables that are unset or
// empty are treated as absent so callers keep their own defaults.
package env
