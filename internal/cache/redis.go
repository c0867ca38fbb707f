package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jonathan/geo-visibility/internal/types"
)

const redisPrefix = "geo:"

// RedisStore is a Store shared between server instances.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisOptions configures NewRedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis address cannot be empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return NewRedisStoreFromClient(client, opts.TTL), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultWindow
	}
	return &RedisStore{client: client, ttl: ttl}
}

// GetRecentAnalysis implements Store.
func (r *RedisStore) GetRecentAnalysis(ctx context.Context, userID uuid.UUID, normalizedURL string, since time.Time) ([]byte, error) {
	id, err := r.client.Get(ctx, redisPrefix+latestKey(userID, normalizedURL)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read latest history: %w", err)
	}

	historyID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid history id %q: %w", id, err)
	}

	raw, err := r.client.Get(ctx, redisPrefix+historyKey(historyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	var h types.DomainHistory
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	if h.CreatedAt.Before(since) {
		return nil, nil
	}

	data, err := r.client.Get(ctx, redisPrefix+analysisKey(historyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis: %w", err)
	}
	return data, nil
}

// SaveDomainHistory implements Store.
func (r *RedisStore) SaveDomainHistory(ctx context.Context, h *types.DomainHistory) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	raw, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisPrefix+historyKey(h.ID), raw, r.ttl)
		pipe.Set(ctx, redisPrefix+latestKey(h.UserID, h.NormalizedURL), h.ID.String(), r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

// SaveAnalysisResult implements Store.
func (r *RedisStore) SaveAnalysisResult(ctx context.Context, historyID uuid.UUID, data []byte) error {
	if err := r.client.Set(ctx, redisPrefix+analysisKey(historyID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
