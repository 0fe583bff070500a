package cache

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseKV runs the KV contract against any implementation.
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()

	_, err := kv.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Put("cartData", []byte(`{"id":"cart_1"}`)))
	got, err := kv.Get("cartData")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"cart_1"}`, string(got))

	require.NoError(t, kv.Put("cartData", []byte(`{"id":"cart_2"}`)))
	got, err = kv.Get("cartData")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"cart_2"}`, string(got))

	require.NoError(t, kv.Delete("cartData"))
	_, err = kv.Get("cartData")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, kv.Delete("cartData"), "deleting an absent key is a no-op")
}

func TestBoltStore(t *testing.T) {
	exerciseKV(t, openTestBolt(t))
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.bbolt")
	store, err := OpenBolt(path, Options{Bucket: "storefront"})
	require.NoError(t, err)
	require.NoError(t, store.Put("regionsData", []byte("x")))
	require.NoError(t, store.Close())

	store, err = OpenBolt(path, Options{Bucket: "storefront"})
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Get("regionsData")
	require.NoError(t, err)
	assert.Equal(t, "x", string(got))
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	exerciseKV(t, NewRedisStore(client, "storefront"))
}

func TestRedisStorePrefixesKeys(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, "storefront")
	require.NoError(t, store.Put("cartData", []byte("v")))

	assert.True(t, mr.Exists("storefront:cartData"))
	assert.False(t, mr.Exists("cartData"))
	assert.Zero(t, mr.TTL("storefront:cartData"), "entries carry no expiry")
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	_, err = NewRedisStore(client, "").Get("k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func startDaemon(t *testing.T) string {
	t.Helper()
	// Unix socket paths are length-limited; keep them out of t.TempDir().
	dir, err := os.MkdirTemp("", "sfc")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	sock := filepath.Join(dir, "cache.sock")
	l, err := net.Listen("unix", sock)
	require.NoError(t, err)

	store := openTestBolt(t)
	done := make(chan error, 1)
	go func() { done <- Serve(l, store) }()
	t.Cleanup(func() {
		_ = l.Close()
		assert.NoError(t, <-done)
	})
	return sock
}

func TestSocketClient(t *testing.T) {
	client := NewClient(startDaemon(t))
	require.NoError(t, client.Ping())

	exerciseKV(t, client)
}

func TestSocketClientEnvelopeRoundTrip(t *testing.T) {
	c := New(NewClient(startDaemon(t)))
	require.NoError(t, c.Set("faqDato_en", []map[string]string{{"id": "faq_1"}}))

	var got []map[string]string
	ok, err := c.Get("faqDato_en", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "faq_1", got[0]["id"])
}

func TestSocketClientNoDaemon(t *testing.T) {
	client := NewClient(filepath.Join(t.TempDir(), "absent.sock"))
	assert.Error(t, client.Ping())

	_, err := client.Get("k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestDispatchUnknownOp(t *testing.T) {
	resp := dispatch(openTestBolt(t), Request{Op: "flush"})
	assert.False(t, resp.OK)
	assert.Equal(t, "unknown op", resp.Error)
}
