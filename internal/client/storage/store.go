// Package storage provides the local durable key/value store used for
// whole-state snapshots (preferences, kept items, session).
package storage

import "context"

// Snapshot keys. Each key has exactly one owning component.
const (
	KeyPreferences = "preferences"
	KeyKeptItems   = "kept_items"
	KeySession     = "session"
)

// Store is a flat snapshot store. There are no transactions; the last write
// wins.
type Store interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
