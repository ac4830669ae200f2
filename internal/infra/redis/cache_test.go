package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"avdb-go/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMain(m *testing.M) {
	logger.InitDiscard()
	os.Exit(m.Run())
}

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCache(client, ttl), mr
}

type cachedThing struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	cache.SetJSON(ctx, "thing:1", cachedThing{Name: "ABC-001", Count: 3})

	var got cachedThing
	if err := cache.GetJSON(ctx, "thing:1", &got); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if got.Name != "ABC-001" || got.Count != 3 {
		t.Errorf("got %+v", got)
	}
}

func TestCacheMiss(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)

	var got cachedThing
	if err := cache.GetJSON(context.Background(), "missing", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("want ErrCacheMiss, got %v", err)
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	cache.SetJSONWithTTL(ctx, "short", cachedThing{Name: "x"}, 10*time.Second)
	mr.FastForward(11 * time.Second)

	var got cachedThing
	if err := cache.GetJSON(ctx, "short", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("want ErrCacheMiss after expiry, got %v", err)
	}
}

// 脏数据当未命中处理，不向调用方抛错
func TestCacheCorruptedPayload(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)

	mr.Set("broken", "not json at all")

	var got cachedThing
	if err := cache.GetJSON(context.Background(), "broken", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("want ErrCacheMiss for corrupted payload, got %v", err)
	}
}

func TestCacheNilSafety(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	// nil 缓存等同于全部未命中，写入是空操作
	cache.SetJSON(ctx, "k", cachedThing{})
	var got cachedThing
	if err := cache.GetJSON(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("want ErrCacheMiss on nil cache, got %v", err)
	}

	cache.Delete(ctx, "k")
}
