// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ReviewCacheRepository 定义了审核看板聚合结果的缓存操作接口。
// 缓存按医院范围（"all"、"global" 或医院 ID）分键；审核动作发生时整体失效，
// 由下一次读取重建。
type ReviewCacheRepository interface {
	// GetStats 读取缓存的聚合 JSON；缓存未命中返回 (nil, nil)。
	GetStats(ctx context.Context, scope string) ([]byte, error)
	// SetStats 以给定 TTL 写入聚合 JSON。
	SetStats(ctx context.Context, scope string, data []byte, ttl time.Duration) error
	// InvalidateAll 删除所有审核聚合缓存键。
	InvalidateAll(ctx context.Context) error
}

type redisReviewCacheRepository struct {
	redisClient *redis.Client
}

// NewReviewCacheRepository 创建一个新的 ReviewCacheRepository 实例。
func NewReviewCacheRepository(redisClient *redis.Client) ReviewCacheRepository {
	return &redisReviewCacheRepository{redisClient: redisClient}
}

func (r *redisReviewCacheRepository) statsKey(scope string) string {
	return fmt.Sprintf("review:stats:%s", scope)
}

// GetStats 读取缓存的聚合 JSON。
func (r *redisReviewCacheRepository) GetStats(ctx context.Context, scope string) ([]byte, error) {
	data, err := r.redisClient.Get(ctx, r.statsKey(scope)).Bytes()
	if err == redis.Nil {
		return nil, nil // 缓存未命中
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review stats cache: %w", err)
	}
	return data, nil
}

// SetStats 写入聚合 JSON。
func (r *redisReviewCacheRepository) SetStats(ctx context.Context, scope string, data []byte, ttl time.Duration) error {
	if err := r.redisClient.Set(ctx, r.statsKey(scope), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set review stats cache: %w", err)
	}
	return nil
}

// InvalidateAll 删除所有审核聚合缓存键。
// 审核动作相对低频，Keys 扫描的代价可以接受。
func (r *redisReviewCacheRepository) InvalidateAll(ctx context.Context) error {
	keys, err := r.redisClient.Keys(ctx, "review:stats:*").Result()
	if err != nil {
		return fmt.Errorf("failed to scan review stats keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return r.redisClient.Del(ctx, keys...).Err()
}
