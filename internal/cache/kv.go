package cache

import "errors"

// KV is the durable key-value store the storefront caches into.
// Values are opaque bytes; freshness is tracked by the Cache envelope, not
// by the store. Implementations must be safe for concurrent use.
type KV interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}

var ErrNotFound = errors.New("cache: not found")
