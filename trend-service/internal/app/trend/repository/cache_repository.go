package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"trenddrop/pkg/metrics"
	"trenddrop/trend-service/internal/app/trend/entity"

	"github.com/redis/go-redis/v9"
)

const (
	categoriesCacheKey = "trend:categories"
	summaryCacheKey    = "trend:dashboard-summary"
)

type cacheRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheRepository(client *redis.Client, ttl time.Duration) CacheRepository {
	return &cacheRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *cacheRepository) GetCategories(ctx context.Context) ([]string, error) {
	var categories []string
	found, err := r.get(ctx, categoriesCacheKey, &categories)
	if err != nil || !found {
		return nil, err
	}
	return categories, nil
}

func (r *cacheRepository) SetCategories(ctx context.Context, categories []string) error {
	return r.set(ctx, categoriesCacheKey, categories)
}

func (r *cacheRepository) GetSummary(ctx context.Context) (*entity.DashboardSummary, error) {
	var summary entity.DashboardSummary
	found, err := r.get(ctx, summaryCacheKey, &summary)
	if err != nil || !found {
		return nil, err
	}
	return &summary, nil
}

func (r *cacheRepository) SetSummary(ctx context.Context, summary *entity.DashboardSummary) error {
	return r.set(ctx, summaryCacheKey, summary)
}

// Invalidate сбрасывает агрегаты после прохода, изменившего каталог
func (r *cacheRepository) Invalidate(ctx context.Context) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpDel)
	defer timer.ObserveDuration()

	if err := r.client.Del(ctx, categoriesCacheKey, summaryCacheKey).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpDel)
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

func (r *cacheRepository) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss(serviceName, key)
			return false, nil
		}
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return false, fmt.Errorf("failed to get %s from cache: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	metrics.RecordCacheHit(serviceName, key)
	return true, nil
}

func (r *cacheRepository) set(ctx context.Context, key string, value interface{}) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to set %s in cache: %w", key, err)
	}
	return nil
}
