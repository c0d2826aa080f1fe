// Package cache 提供商品读缓存的 Redis 实现
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/ecommerce/internal/product/domain"
	"github.com/wyfcoding/ecommerce/pkg/cache"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

const (
	productKeyPrefix = "product:"
	productListKey   = "product:list"
)

// RedisProductCache 商品缓存 Redis 实现。
// 所有缓存故障只记日志不上抛，读写路径均不受缓存可用性影响。
type RedisProductCache struct {
	redis *cache.RedisCache
	ttl   time.Duration
}

// NewRedisProductCache 创建商品缓存实例
func NewRedisProductCache(redis *cache.RedisCache, ttl time.Duration) *RedisProductCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisProductCache{redis: redis, ttl: ttl}
}

func productKey(id uint) string {
	return fmt.Sprintf("%s%d", productKeyPrefix, id)
}

// GetProduct 读取单个商品缓存
func (c *RedisProductCache) GetProduct(ctx context.Context, id uint) (*domain.Product, bool) {
	var product domain.Product
	found, err := c.redis.GetJSON(ctx, productKey(id), &product)
	if err != nil {
		logger.Warn(ctx, "Product cache read failed", "product_id", id, "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	return &product, true
}

// SetProduct 写入单个商品缓存
func (c *RedisProductCache) SetProduct(ctx context.Context, product *domain.Product) {
	if err := c.redis.SetJSON(ctx, productKey(product.ID), product, c.ttl); err != nil {
		logger.Warn(ctx, "Product cache write failed", "product_id", product.ID, "error", err)
	}
}

// GetList 读取商品列表缓存
func (c *RedisProductCache) GetList(ctx context.Context) ([]*domain.Product, bool) {
	var products []*domain.Product
	found, err := c.redis.GetJSON(ctx, productListKey, &products)
	if err != nil {
		logger.Warn(ctx, "Product list cache read failed", "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	return products, true
}

// SetList 写入商品列表缓存
func (c *RedisProductCache) SetList(ctx context.Context, products []*domain.Product) {
	if err := c.redis.SetJSON(ctx, productListKey, products, c.ttl); err != nil {
		logger.Warn(ctx, "Product list cache write failed", "error", err)
	}
}

// Invalidate 失效单个商品及列表缓存
func (c *RedisProductCache) Invalidate(ctx context.Context, id uint) {
	if err := c.redis.Delete(ctx, productKey(id), productListKey); err != nil {
		logger.Warn(ctx, "Product cache invalidation failed", "product_id", id, "error", err)
	}
}
