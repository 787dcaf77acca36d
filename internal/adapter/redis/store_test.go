package redis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/motostock-inventory-service/internal/cache"
	"github.com/couchcryptid/motostock-inventory-service/internal/domain"
)

// fakeClient is an in-memory kvClient.
type fakeClient struct {
	mu      sync.Mutex
	values  map[string]string
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	lastKey string
}

func newFakeClient() *fakeClient {
	return &fakeClient{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeClient) Get(_ context.Context, key string) *goredis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastKey = key
	if f.getErr != nil {
		return goredis.NewStringResult("", f.getErr)
	}
	v, ok := f.values[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (f *fakeClient) Set(_ context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastKey = key
	if f.setErr != nil {
		return goredis.NewStatusResult("", f.setErr)
	}
	b, ok := value.([]byte)
	if !ok {
		return goredis.NewStatusResult("", errors.New("unexpected value type"))
	}
	f.values[key] = string(b)
	f.ttls[key] = expiration
	return goredis.NewStatusResult("OK", nil)
}

func TestStore_SetGet(t *testing.T) {
	client := newFakeClient()
	s := &Store{client: client, prefix: "motostock:"}
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, cache.KeyData, []byte(`[{"id":1}]`)))
	assert.Equal(t, "motostock:"+cache.KeyData, client.lastKey)
	assert.Zero(t, client.ttls["motostock:"+cache.KeyData], "cache entries never expire")

	got, err := s.Get(ctx, cache.KeyData)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1}]`, string(got))
}

func TestStore_GetMissingKey(t *testing.T) {
	s := &Store{client: newFakeClient()}

	_, err := s.Get(context.Background(), cache.KeyLastUpdated)
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestStore_Errors(t *testing.T) {
	client := newFakeClient()
	client.getErr = errors.New("connection reset")
	client.setErr = errors.New("READONLY replica")
	s := &Store{client: client}
	ctx := context.Background()

	_, err := s.Get(ctx, cache.KeyData)
	require.Error(t, err)
	assert.NotErrorIs(t, err, cache.ErrNotFound)
	assert.Contains(t, err.Error(), "connection reset")

	err = s.Set(ctx, cache.KeyData, []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "READONLY")
}

func TestStore_ThroughCache(t *testing.T) {
	client := newFakeClient()
	c := cache.New(&Store{client: client, prefix: "ms:"}, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	ctx := context.Background()

	_, ok := c.Load(ctx)
	assert.False(t, ok, "empty server is a cache miss")

	ts := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	c.Save(ctx, domain.CachedDataset{
		Records:     []domain.StockRecord{{ID: 1, City: "Pune", Category: domain.CategoryTech, Item: "GPS Mount", Stock: 7}},
		LastUpdated: ts,
	})
	assert.Contains(t, client.values, "ms:"+cache.KeyData)
	assert.Equal(t, ts.Format(time.RFC3339Nano), client.values["ms:"+cache.KeyLastUpdated])

	got, ok := c.Load(ctx)
	require.True(t, ok)
	require.Len(t, got.Records, 1)
	assert.Equal(t, "Pune", got.Records[0].City)
	assert.True(t, ts.Equal(got.LastUpdated))
}

func TestNewStore_BadURL(t *testing.T) {
	_, err := NewStore(context.Background(), "not-a-url", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis url")
}

func TestNewStore_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewStore(ctx, "redis://127.0.0.1:1/0", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping redis")
}

func TestStore_CloseWithoutClient(t *testing.T) {
	assert.NoError(t, (&Store{}).Close())
}
