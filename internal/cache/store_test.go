package cache

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type page struct {
	Items []string `json:"items"`
}

func newTestStore(t *testing.T) (*miniredis.Miniredis, *Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := NewRedisClient(mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewStore(rdb)
}

func TestViewKey(t *testing.T) {
	tests := []struct {
		name   string
		route  string
		params url.Values
		want   string
	}{
		{"no params", "/", nil, "view:/"},
		{"page", "/", url.Values{"page": {"2"}}, "view:/?page=2"},
		{"sorted", "/group/cats/", url.Values{"z": {"1"}, "page": {"3"}}, "view:/group/cats/?page=3&z=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ViewKey(tt.route, tt.params))
		})
	}
}

func TestAside_ServesStaleUntilTTL(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()
	key := ViewKey("/", url.Values{"page": {"1"}})

	calls := 0
	source := []string{"first"}
	load := func(dest *page) func() error {
		return func() error {
			calls++
			dest.Items = append([]string(nil), source...)
			return nil
		}
	}

	var got page
	require.NoError(t, store.Aside(ctx, "index", key, &got, 20*time.Second, load(&got)))
	assert.Equal(t, []string{"first"}, got.Items)

	source = []string{"second", "first"}

	var cached page
	require.NoError(t, store.Aside(ctx, "index", key, &cached, 20*time.Second, load(&cached)))
	assert.Equal(t, []string{"first"}, cached.Items)
	assert.Equal(t, 1, calls)

	mr.FastForward(21 * time.Second)

	var fresh page
	require.NoError(t, store.Aside(ctx, "index", key, &fresh, 20*time.Second, load(&fresh)))
	assert.Equal(t, []string{"second", "first"}, fresh.Items)
	assert.Equal(t, 2, calls)
}

func TestAside_FetchErrorIsNotCached(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	var got page
	err := store.Aside(ctx, "index", "view:/", &got, time.Minute, func() error { return errors.New("db down") })
	assert.Error(t, err)
	assert.False(t, mr.Exists("view:/"))
}

func TestStore_WithoutRedisCachesInProcess(t *testing.T) {
	store := NewStore(nil)
	assert.True(t, store.Enabled())
	assert.False(t, store.Shared())

	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }
	ctx := context.Background()

	calls := 0
	load := func(dest *page, items ...string) func() error {
		return func() error {
			calls++
			dest.Items = items
			return nil
		}
	}

	var got page
	require.NoError(t, store.Aside(ctx, "index", "view:/", &got, 20*time.Second, load(&got, "first")))
	var cached page
	require.NoError(t, store.Aside(ctx, "index", "view:/", &cached, 20*time.Second, load(&cached, "second", "first")))
	assert.Equal(t, []string{"first"}, cached.Items)
	assert.Equal(t, 1, calls)

	clock = clock.Add(21 * time.Second)

	var fresh page
	require.NoError(t, store.Aside(ctx, "index", "view:/", &fresh, 20*time.Second, load(&fresh, "second", "first")))
	assert.Equal(t, []string{"second", "first"}, fresh.Items)
	assert.Equal(t, 2, calls)

	store.Invalidate(ctx, "view:/")
	assert.False(t, store.Get(ctx, "view:/", &got))
}

func TestStore_LocalSweepDropsExpired(t *testing.T) {
	store := NewStore(nil)
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }
	ctx := context.Background()

	for i := 0; i < localSweepSize; i++ {
		store.Set(ctx, ViewKey("/", url.Values{"page": {strconv.Itoa(i)}}), page{}, time.Second)
	}
	clock = clock.Add(2 * time.Second)
	store.Set(ctx, "view:/fresh", page{Items: []string{"kept"}}, time.Minute)

	assert.Len(t, store.local, 1)
	var got page
	assert.True(t, store.Get(ctx, "view:/fresh", &got))
	assert.Equal(t, []string{"kept"}, got.Items)
}

func TestStore_NilStoreIsPassThrough(t *testing.T) {
	var store *Store
	assert.False(t, store.Enabled())

	calls := 0
	var got page
	for i := 0; i < 2; i++ {
		require.NoError(t, store.Aside(context.Background(), "index", "view:/", &got, time.Minute, func() error {
			calls++
			return nil
		}))
	}
	assert.Equal(t, 2, calls)
	store.Invalidate(context.Background(), "view:/")
}

func TestStore_UndecodableValueIsMiss(t *testing.T) {
	mr, store := newTestStore(t)
	require.NoError(t, mr.Set("view:/", "{not json"))

	var got page
	assert.False(t, store.Get(context.Background(), "view:/", &got))
}

func TestStore_RedisDownFailsOpen(t *testing.T) {
	mr, store := newTestStore(t)
	mr.Close()

	calls := 0
	var got page
	err := store.Aside(context.Background(), "index", "view:/", &got, time.Minute, func() error {
		calls++
		got.Items = []string{"live"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"live"}, got.Items)
}

func TestInitRedis_Unreachable(t *testing.T) {
	assert.Nil(t, InitRedis("redis://127.0.0.1:1/0"))
	assert.Nil(t, InitRedis("redis://%%bad"))
}
