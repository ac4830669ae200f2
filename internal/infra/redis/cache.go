package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"avdb-go/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrCacheMiss 缓存未命中
var ErrCacheMiss = errors.New("cache miss")

// Cache 通用 TTL JSON 缓存封装
// Redis 不可用或序列化失败时对调用方透明（当作未命中），查询退回数据库
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache 创建缓存封装
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// GetJSON 按 key 取缓存并反序列化到 dest
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	if c == nil || c.client == nil {
		return ErrCacheMiss
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("Cache get failed", zap.String("key", key), zap.Error(err))
		}
		return ErrCacheMiss
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		logger.Warn("Cache payload corrupted", zap.String("key", key), zap.Error(err))
		return ErrCacheMiss
	}
	return nil
}

// SetJSON 序列化 value 并按默认 TTL 写入
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	c.SetJSONWithTTL(ctx, key, value, c.ttl)
}

// SetJSONWithTTL 序列化 value 并按指定 TTL 写入
func (c *Cache) SetJSONWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		logger.Warn("Cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		logger.Warn("Cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete 删除指定 key
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Warn("Cache delete failed", zap.Error(err))
	}
}
