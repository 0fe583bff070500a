package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DefaultExpiry is the freshness window used when callers pass expiry <= 0.
const DefaultExpiry = 5 * time.Minute

// envelope is the persisted layout of every cache entry.
type envelope struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"` // ms since epoch
}

// Cache stores JSON payloads in a KV wrapped in a timestamped envelope.
//
// Staleness is advisory: entries are never evicted, IsValid only reports
// whether an entry is younger than a caller-supplied window. Absent and
// corrupt entries read as misses; errors from the underlying store are
// returned unchanged.
type Cache struct {
	kv  KV
	now func() time.Time
}

func New(kv KV) *Cache {
	return &Cache{kv: kv, now: time.Now}
}

// SetClock replaces the wall clock used for timestamps and freshness.
func (c *Cache) SetClock(now func() time.Time) { c.now = now }

// Set overwrites key with {data, timestamp: now}.
func (c *Cache) Set(key string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	b, err := json.Marshal(envelope{Data: raw, Timestamp: c.now().UnixMilli()})
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	return c.kv.Put(key, b)
}

// Get decodes the payload stored under key into dst. It reports false when
// the entry is absent, corrupt, or holds null.
func (c *Cache) Get(key string, dst any) (bool, error) {
	env, err := c.read(key)
	if err != nil || env == nil {
		return false, err
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return false, nil
	}
	if json.Unmarshal(env.Data, dst) != nil {
		return false, nil
	}
	return true, nil
}

// IsValid reports whether key holds an entry younger than expiry.
func (c *Cache) IsValid(key string, expiry time.Duration) (bool, error) {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	env, err := c.read(key)
	if err != nil || env == nil {
		return false, err
	}
	return c.now().UnixMilli()-env.Timestamp < expiry.Milliseconds(), nil
}

// Has reports whether key holds a readable entry, fresh or stale.
func (c *Cache) Has(key string) (bool, error) {
	env, err := c.read(key)
	return env != nil, err
}

// Clear removes key. Clearing an absent key is a no-op.
func (c *Cache) Clear(key string) error {
	if err := c.kv.Delete(key); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

func (c *Cache) read(key string) (*envelope, error) {
	b, err := c.kv.Get(key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var env envelope
	if json.Unmarshal(b, &env) != nil {
		return nil, nil
	}
	return &env, nil
}
