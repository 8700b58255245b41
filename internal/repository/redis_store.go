package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ratesvc/internal/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	fieldTable     = "table"
	fieldFetchedAt = "fetched_at"

	maxWatchRetries = 5
)

// RedisRateStore keeps the rate record in a Redis hash with no expiry.
type RedisRateStore struct {
	rdb    *redis.Client
	key    string
	logger *zap.SugaredLogger
}

// NewRedisRateStore creates a RedisRateStore under CacheKey.
func NewRedisRateStore(rdb *redis.Client, logger *zap.SugaredLogger) *RedisRateStore {
	return &RedisRateStore{rdb: rdb, key: CacheKey, logger: logger}
}

// Load reads the stored table. Missing or undecodable records yield (nil, nil).
func (s *RedisRateStore) Load(ctx context.Context) (*model.RateTable, error) {
	vals, err := s.rdb.HMGet(ctx, s.key, fieldTable, fieldFetchedAt).Result()
	if err != nil {
		return nil, fmt.Errorf("load rate record: %w", err)
	}
	payload, fetchedAtRaw := asString(vals[0]), asString(vals[1])
	if payload == "" || fetchedAtRaw == "" {
		return nil, nil
	}

	fetchedAt, err := time.Parse(time.RFC3339Nano, fetchedAtRaw)
	if err != nil {
		s.logger.Warnw("Discarding rate record with bad timestamp", "key", s.key, "error", err)
		return nil, nil
	}
	table, err := decodePayload([]byte(payload), fetchedAt)
	if err != nil {
		s.logger.Warnw("Discarding unreadable rate record", "key", s.key, "error", err)
		return nil, nil
	}
	return table, nil
}

// Save replaces the stored record atomically.
func (s *RedisRateStore) Save(ctx context.Context, table *model.RateTable) error {
	payload, err := encodePayload(table)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		pipe.HSet(ctx, s.key,
			fieldTable, string(payload),
			fieldFetchedAt, table.FetchedAt().UTC().Format(time.RFC3339Nano),
		)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save rate record: %w", err)
	}
	return nil
}

// Clear removes the stored record.
func (s *RedisRateStore) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear rate record: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *RedisRateStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// RedisFavoritesStore keeps favorite codes in a Redis set.
type RedisFavoritesStore struct {
	rdb *redis.Client
	key string
}

// NewRedisFavoritesStore creates a RedisFavoritesStore under FavoritesKey.
func NewRedisFavoritesStore(rdb *redis.Client) *RedisFavoritesStore {
	return &RedisFavoritesStore{rdb: rdb, key: FavoritesKey}
}

// List returns the stored codes in no particular order.
func (s *RedisFavoritesStore) List(ctx context.Context) ([]string, error) {
	codes, err := s.rdb.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return codes, nil
}

// Add inserts code under WATCH so concurrent adds cannot exceed limit.
func (s *RedisFavoritesStore) Add(ctx context.Context, code string, limit int) error {
	txf := func(tx *redis.Tx) error {
		member, err := tx.SIsMember(ctx, s.key, code).Result()
		if err != nil {
			return err
		}
		if member {
			return nil
		}
		n, err := tx.SCard(ctx, s.key).Result()
		if err != nil {
			return err
		}
		if n >= int64(limit) {
			return ErrFavoritesFull
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SAdd(ctx, s.key, code)
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := s.rdb.Watch(ctx, txf, s.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, ErrFavoritesFull) {
			return fmt.Errorf("add favorite: %w", err)
		}
		return err
	}
	return fmt.Errorf("add favorite: %w", redis.TxFailedErr)
}

// Remove deletes code from the set. Removing an absent code is a no-op.
func (s *RedisFavoritesStore) Remove(ctx context.Context, code string) error {
	if err := s.rdb.SRem(ctx, s.key, code).Err(); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return ""
	}
}
