package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedClub struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func useMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := NewClient(mr.Addr())
	require.NoError(t, err)
	SetClient(rdb)
	t.Cleanup(func() {
		SetClient(nil)
		_ = rdb.Close()
	})
	return mr
}

func TestAside_LoadsOnceThenServesFromCache(t *testing.T) {
	mr := useMiniredis(t)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (cachedClub, error) {
		calls++
		return cachedClub{ID: 3, Name: "Chess Club"}, nil
	}

	first, err := Aside(ctx, ClubKey(3), ClubTTL, load)
	require.NoError(t, err)
	second, err := Aside(ctx, ClubKey(3), ClubTTL, load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists("club:3"))

	InvalidateClub(ctx, 3)
	assert.False(t, mr.Exists("club:3"))

	_, err = Aside(ctx, ClubKey(3), ClubTTL, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestAside_ErrorsAreNotCached(t *testing.T) {
	mr := useMiniredis(t)

	boom := errors.New("db down")
	_, err := Aside(context.Background(), UserKey(1), UserTTL, func(context.Context) (cachedClub, error) {
		return cachedClub{}, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("user:1"))
}

func TestAside_WithoutClientCallsLoader(t *testing.T) {
	SetClient(nil)
	v, err := Aside(context.Background(), "k", time.Minute, func(context.Context) (int, error) { return 5, nil })
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestAside_RedisDownFallsThrough(t *testing.T) {
	mr := useMiniredis(t)
	mr.Close()

	v, err := Aside(context.Background(), "k", time.Minute, func(context.Context) (int, error) { return 9, nil })
	require.NoError(t, err)
	assert.Equal(t, 9, v)
}

func TestNewClientParsesURL(t *testing.T) {
	c, err := NewClient("redis://localhost:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", c.Options().Addr)
	assert.Equal(t, 2, c.Options().DB)
	_ = c.Close()

	_, err = NewClient("redis://%zz")
	assert.Error(t, err)
}

func TestNewClientFailsFastWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	c, err := NewClient(addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	assert.Equal(t, dialTimeout, c.Options().DialTimeout)
	assert.Equal(t, maxRetries, c.Options().MaxRetries)

	start := time.Now()
	assert.Error(t, c.Ping(context.Background()).Err())
	assert.Less(t, time.Since(start), 3*time.Second)

	c, err = NewClient("redis://localhost:6380/0?dial_timeout=2s")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, c.Options().DialTimeout)
	_ = c.Close()
}
