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

// LastUsedRepository remembers each client's most recent calculator inputs.
type LastUsedRepository interface {
	Save(ctx context.Context, clientID string, lu *model.LastUsed) error
	Get(ctx context.Context, clientID string) (*model.LastUsed, error)
}

type lastUsedRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewLastUsedRepository(rdb *redis.Client, ttl time.Duration) LastUsedRepository {
	return &lastUsedRepository{rdb: rdb, ttl: ttl}
}

// Save overwrites the client's state and refreshes its expiry.
func (r *lastUsedRepository) Save(ctx context.Context, clientID string, lu *model.LastUsed) error {
	data, err := json.Marshal(lu)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, config.CacheKey.LastUsedKey(clientID), data, r.ttl).Err()
}

func (r *lastUsedRepository) Get(ctx context.Context, clientID string) (*model.LastUsed, error) {
	data, err := r.rdb.Get(ctx, config.CacheKey.LastUsedKey(clientID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var lu model.LastUsed
	if err := json.Unmarshal(data, &lu); err != nil {
		return nil, err
	}
	return &lu, nil
}
