package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	domain "github.com/bilal-alaabadi/mahen-b/internal/entity"
	"github.com/bilal-alaabadi/mahen-b/internal/usecase"
)

const pendingKeyPrefix = "pending:order:"

// RedisPendingStore keeps pending orders in Redis so checkout state
// survives process restarts. TTL reclaims abandoned checkouts.
type RedisPendingStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisPendingStore(rdb *redis.Client, ttl time.Duration) *RedisPendingStore {
	return &RedisPendingStore{rdb: rdb, ttl: ttl}
}

func (s *RedisPendingStore) Put(ctx context.Context, po domain.PendingOrder) error {
	b, err := json.Marshal(po)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, pendingKeyPrefix+po.CorrelationID, b, s.ttl).Err()
}

func (s *RedisPendingStore) Get(ctx context.Context, correlationID string) (domain.PendingOrder, bool, error) {
	raw, err := s.rdb.Get(ctx, pendingKeyPrefix+correlationID).Bytes()
	if err == redis.Nil {
		return domain.PendingOrder{}, false, nil
	}
	if err != nil {
		return domain.PendingOrder{}, false, err
	}
	var po domain.PendingOrder
	if err := json.Unmarshal(raw, &po); err != nil {
		return domain.PendingOrder{}, false, err
	}
	return po, true, nil
}

func (s *RedisPendingStore) Delete(ctx context.Context, correlationID string) error {
	return s.rdb.Del(ctx, pendingKeyPrefix+correlationID).Err()
}

var _ usecase.PendingOrderStore = (*RedisPendingStore)(nil)
