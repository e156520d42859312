// Package storage provides the durable key/value persistence surface used by
// the accounts package: bearer token, current-user identity, and the local
// fallback registry each live under their own key, serialized as JSON text.
//
// Three backends ship with the package: an in-memory store (tests and
// session-scoped state), a bun/sqlite store for single-node deployments, and
// a redis store for shared dashboard deployments.
package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the key has no stored value.
var ErrKeyNotFound = errors.New("storage: key not found")

// Store is a minimal key/value persistence surface. Values are JSON text.
// Delete is idempotent: removing an absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
