// Package storage holds the key-value collaborators the expense store
// persists through. Every implementation stores opaque string values under
// string keys and overwrites on Set.
package storage

import "context"

// KV is the persistent key-value collaborator.
type KV interface {
	// Get returns the value under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any prior value.
	Set(ctx context.Context, key, value string) error
}
