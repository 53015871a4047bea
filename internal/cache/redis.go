package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout  = 3 * time.Second
	readTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
	pingTimeout  = 2 * time.Second
)

var _ Store = (*Redis)(nil)

// Redis is a Store shared between dashboard instances. Entries live under
// <prefix>:entry:<key>; tag membership is kept in sets at <prefix>:tag:<tag>.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to redisURL and verifies the connection with a ping.
func NewRedis(ctx context.Context, redisURL, prefix string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cache: invalid redis URL: %w", err)
	}
	opts.DialTimeout = dialTimeout
	opts.ReadTimeout = readTimeout
	opts.WriteTimeout = writeTimeout

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: redis ping failed: %w", err)
	}
	return NewRedisWithClient(client, prefix), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "bookdash"
	}
	return &Redis{client: client, prefix: prefix}
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) entryKey(key string) string { return r.prefix + ":entry:" + key }
func (r *Redis) tagKey(tag string) string   { return r.prefix + ":tag:" + tag }

// Get returns the cached value for key.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, r.entryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get %q: %w", key, err)
	}
	return val, true, nil
}

// Set stores value and records its tags. Tag sets expire with the longest
// lived member they were last touched by.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	if ttl < 0 {
		ttl = 0
	}
	entryKey := r.entryKey(key)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, entryKey, value, ttl)
		for _, tag := range tags {
			pipe.SAdd(ctx, r.tagKey(tag), entryKey)
			if ttl > 0 {
				pipe.Expire(ctx, r.tagKey(tag), ttl)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache: set %q: %w", key, err)
	}
	return nil
}

// InvalidateTags deletes every entry listed under tags, then the tag sets.
func (r *Redis) InvalidateTags(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		tagKey := r.tagKey(tag)
		members, err := r.client.SMembers(ctx, tagKey).Result()
		if err != nil {
			return fmt.Errorf("cache: members of %q: %w", tag, err)
		}
		keys := append(members, tagKey)
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("cache: invalidate %q: %w", tag, err)
		}
	}
	return nil
}
