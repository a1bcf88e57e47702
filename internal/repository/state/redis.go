package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/HuyGoodBoy/yogalanding-sub000/internal/domain"
	"github.com/redis/go-redis/v9"
)

// keyState is state:{client_id}:{key}.
const keyState = "state:%s:%s"

type redisRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis stores values under keyState; every write refreshes ttl (0 keeps values forever).
func NewRedis(rdb *redis.Client, ttl time.Duration) Repository {
	return &redisRepo{rdb: rdb, ttl: ttl}
}

func (r *redisRepo) Get(ctx context.Context, clientID, key string) ([]byte, error) {
	value, err := r.rdb.Get(ctx, fmt.Sprintf(keyState, clientID, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (r *redisRepo) Set(ctx context.Context, clientID, key string, value []byte) error {
	return r.rdb.Set(ctx, fmt.Sprintf(keyState, clientID, key), value, r.ttl).Err()
}

func (r *redisRepo) Delete(ctx context.Context, clientID, key string) error {
	return r.rdb.Del(ctx, fmt.Sprintf(keyState, clientID, key)).Err()
}
