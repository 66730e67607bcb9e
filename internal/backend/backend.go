// Package backend selects and constructs the durable key-value store the
// session persists itself to.
package backend

import (
	"context"

	"tally/internal/kv"
)

// Type identifies a kv.Store implementation.
type Type string

const (
	Memory Type = "memory"
	SQLite Type = "sqlite"
	Redis  Type = "redis"
)

// String implements fmt.Stringer.
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite, Redis:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types.
func Types() []Type {
	return []Type{Memory, SQLite, Redis}
}

// CleanupFunc releases resources held by a store. May be nil.
type CleanupFunc func() error

// Result contains the store instance and its optional cleanup function.
type Result struct {
	Store   kv.Store
	Cleanup CleanupFunc
}

// Config holds everything needed to build any of the backends.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// Redis specific
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Factory creates stores based on configuration.
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*Result, error)
}
