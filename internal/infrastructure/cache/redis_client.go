// Package cache provides the Redis-backed cache repository with a
// simple circuit breaker, so upstream-heavy flows degrade to direct
// fetches instead of stalling when Redis is down.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/JamieKoz/platepicker-api/internal/infrastructure/config"
	"github.com/JamieKoz/platepicker-api/internal/ports/outbound"
)

// ErrCacheMiss is returned when a key does not exist.
var ErrCacheMiss = errors.New("cache miss")

// ErrCircuitOpen is returned while the breaker is rejecting calls.
var ErrCircuitOpen = errors.New("cache circuit breaker open")

const (
	breakerFailureThreshold = 5
	breakerResetTimeout     = 30 * time.Second
)

// circuitBreaker tracks consecutive failures and rejects calls for a
// cooldown period once the threshold is crossed.
type circuitBreaker struct {
	mu          sync.Mutex
	failures    int
	lastFailure time.Time
}

func (cb *circuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.failures < breakerFailureThreshold {
		return true
	}
	if time.Since(cb.lastFailure) > breakerResetTimeout {
		cb.failures = 0
		return true
	}
	return false
}

func (cb *circuitBreaker) recordSuccess() {
	cb.mu.Lock()
	cb.failures = 0
	cb.mu.Unlock()
}

func (cb *circuitBreaker) recordFailure() {
	cb.mu.Lock()
	cb.failures++
	cb.lastFailure = time.Now()
	cb.mu.Unlock()
}

// RedisClient implements outbound.CacheRepository over go-redis.
type RedisClient struct {
	client  *redis.Client
	breaker *circuitBreaker
	logger  *zap.Logger
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(cfg *config.Config, logger *zap.Logger) (outbound.CacheRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("redis connection established", zap.String("addr", cfg.Redis.GetRedisAddr()))
	return &RedisClient{
		client:  client,
		breaker: &circuitBreaker{},
		logger:  logger.Named("cache"),
	}, nil
}

// Get retrieves a value, returning ErrCacheMiss for absent keys.
func (r *RedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	if !r.breaker.allow() {
		return nil, ErrCircuitOpen
	}
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.breaker.recordSuccess()
			return nil, ErrCacheMiss
		}
		r.breaker.recordFailure()
		r.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	r.breaker.recordSuccess()
	return val, nil
}

// Set stores a value with a TTL.
func (r *RedisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !r.breaker.allow() {
		return ErrCircuitOpen
	}
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.breaker.recordFailure()
		r.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		return err
	}
	r.breaker.recordSuccess()
	return nil
}

// SetNX stores a value only if the key is absent.
func (r *RedisClient) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if !r.breaker.allow() {
		return false, ErrCircuitOpen
	}
	ok, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		r.breaker.recordFailure()
		return false, err
	}
	r.breaker.recordSuccess()
	return ok, nil
}

// Delete removes a key.
func (r *RedisClient) Delete(ctx context.Context, key string) error {
	if !r.breaker.allow() {
		return ErrCircuitOpen
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.breaker.recordFailure()
		return err
	}
	r.breaker.recordSuccess()
	return nil
}

// Exists reports whether a key is present.
func (r *RedisClient) Exists(ctx context.Context, key string) (bool, error) {
	if !r.breaker.allow() {
		return false, ErrCircuitOpen
	}
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		r.breaker.recordFailure()
		return false, err
	}
	r.breaker.recordSuccess()
	return n > 0, nil
}
