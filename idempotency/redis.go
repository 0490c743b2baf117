// Package idempotency guards order creation against client retries.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyOrderCreate maps idem:order:create:{customer}:{key} -> order id
const KeyOrderCreate = "idem:order:create:%d:%s"

const (
	TTL = 24 * time.Hour
	// pendingTTL bounds how long a crashed request can hold a key
	pendingTTL = 30 * time.Second
	pending    = "pending"
)

// Store is the fast path in front of the database's unique index.
// Reserve returns false when another request already holds or completed the key.
type Store interface {
	Reserve(ctx context.Context, customerID uint, key string) (bool, error)
	Complete(ctx context.Context, customerID uint, key string, orderID uint) error
	Release(ctx context.Context, customerID uint, key string) error
}

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func redisKey(customerID uint, key string) string {
	return fmt.Sprintf(KeyOrderCreate, customerID, key)
}

func (s *RedisStore) Reserve(ctx context.Context, customerID uint, key string) (bool, error) {
	return s.rdb.SetNX(ctx, redisKey(customerID, key), pending, pendingTTL).Result()
}

func (s *RedisStore) Complete(ctx context.Context, customerID uint, key string, orderID uint) error {
	return s.rdb.Set(ctx, redisKey(customerID, key), orderID, TTL).Err()
}

func (s *RedisStore) Release(ctx context.Context, customerID uint, key string) error {
	return s.rdb.Del(ctx, redisKey(customerID, key)).Err()
}

// NopStore always grants the reservation; the database index still decides
type NopStore struct{}

func (NopStore) Reserve(context.Context, uint, string) (bool, error) { return true, nil }
func (NopStore) Complete(context.Context, uint, string, uint) error  { return nil }
func (NopStore) Release(context.Context, uint, string) error         { return nil }
