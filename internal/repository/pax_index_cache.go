package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/paxcalc-backend/internal/config"
	"github.com/stemsi/paxcalc-backend/internal/model"
)

// PaxIndexCache keeps decoded indices in redis so lookups skip postgres.
type PaxIndexCache interface {
	Get(ctx context.Context, year int, indexType model.IndexType) (*model.PaxIndex, error)
	Set(ctx context.Context, idx *model.PaxIndex) error
	Delete(ctx context.Context, year int, indexType model.IndexType) error
}

type paxIndexCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPaxIndexCache(rdb *redis.Client, ttl time.Duration) PaxIndexCache {
	return &paxIndexCache{rdb: rdb, ttl: ttl}
}

// Get returns ErrNotFound on a cache miss.
func (c *paxIndexCache) Get(ctx context.Context, year int, indexType model.IndexType) (*model.PaxIndex, error) {
	data, err := c.rdb.Get(ctx, config.CacheKey.PaxIndexKey(year, string(indexType))).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var idx model.PaxIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, err
	}
	return &idx, nil
}

func (c *paxIndexCache) Set(ctx context.Context, idx *model.PaxIndex) error {
	data, err := json.Marshal(idx)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, config.CacheKey.PaxIndexKey(idx.Year, string(idx.IndexType)), data, c.ttl).Err()
}

func (c *paxIndexCache) Delete(ctx context.Context, year int, indexType model.IndexType) error {
	return c.rdb.Del(ctx, config.CacheKey.PaxIndexKey(year, string(indexType))).Err()
}
