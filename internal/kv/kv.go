// Package kv defines the durable key-value storage used to persist the
// session across runs. The session keeps exactly two entries in it: the
// raw token string and the serialized user record.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("key not found")

// Store is a string-keyed durable store. Implementations must treat an
// absent key as ErrNotFound, and Delete of an absent key as a no-op.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
