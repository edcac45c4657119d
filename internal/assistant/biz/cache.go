package biz

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kart-io/teamsync/pkg/utils/json"
)

// EmbeddingCacheConfig 缓存配置。
type EmbeddingCacheConfig struct {
	// Enabled 是否启用缓存。
	Enabled bool
	// TTL 缓存过期时间。
	TTL time.Duration
	// KeyPrefix 缓存键前缀。
	KeyPrefix string
}

// EmbeddingCache 基于 Redis 的查询向量缓存。
// 缓存未命中返回 (nil, nil)，调用方回源 embedding 供应商。
type EmbeddingCache struct {
	redis  *goredis.Client
	config *EmbeddingCacheConfig
}

// NewEmbeddingCache 创建缓存实例。
func NewEmbeddingCache(redis *goredis.Client, config *EmbeddingCacheConfig) *EmbeddingCache {
	if config == nil {
		config = &EmbeddingCacheConfig{
			Enabled:   false,
			TTL:       24 * time.Hour,
			KeyPrefix: "teamsync:embed:",
		}
	}
	return &EmbeddingCache{
		redis:  redis,
		config: config,
	}
}

// cacheKey 基于查询文本生成缓存键（SHA256）。
func (c *EmbeddingCache) cacheKey(text string) string {
	hash := sha256.Sum256([]byte(text))
	return c.config.KeyPrefix + hex.EncodeToString(hash[:])
}

// Get 返回缓存的向量；未命中或缓存不可用时返回 (nil, nil)。
func (c *EmbeddingCache) Get(ctx context.Context, text string) ([]float32, error) {
	if !c.config.Enabled || c.redis == nil {
		return nil, nil
	}

	key := c.cacheKey(text)

	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		logger.Warnw("failed to get embedding from cache", "error", err.Error(), "key", key)
		return nil, err
	}

	var vector []float32
	if err := json.Unmarshal(data, &vector); err != nil {
		logger.Warnw("failed to unmarshal cached embedding", "error", err.Error(), "key", key)
		// 删除损坏的缓存
		_ = c.redis.Del(ctx, key).Err()
		return nil, nil
	}

	logger.Debugw("embedding cache hit", "key", key, "dim", len(vector))
	return vector, nil
}

// Set 缓存查询向量；失败仅记录日志。
func (c *EmbeddingCache) Set(ctx context.Context, text string, vector []float32) {
	if !c.config.Enabled || c.redis == nil || len(vector) == 0 {
		return
	}

	key := c.cacheKey(text)

	data, err := json.Marshal(vector)
	if err != nil {
		logger.Warnw("failed to marshal embedding for caching", "error", err.Error())
		return
	}

	if err := c.redis.Set(ctx, key, data, c.config.TTL).Err(); err != nil {
		logger.Warnw("failed to cache embedding", "error", err.Error(), "key", key)
	}
}
