package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const versionKey = "acl:version"

// Cache stores built documents per role set. Entries are keyed by a
// version token so a role edit invalidates every cached document at once.
type Cache interface {
	Version(ctx context.Context) (string, error)
	Bump(ctx context.Context) (string, error)
	Get(ctx context.Context, key string) (*UserACL, error)
	Set(ctx context.Context, key string, doc *UserACL, ttl time.Duration) error
}

// ErrCacheMiss is returned by Get when nothing is stored under key.
var ErrCacheMiss = errors.New("acl cache miss")

// CacheKey returns the cache key of a role set under version. Guests and
// members are keyed apart since the builder zeroes different levels for
// each even when their role sets match.
func CacheKey(version string, authenticated bool, roleIDs []uint) string {
	ids := slices.Clone(roleIDs)
	slices.Sort(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	identity := "anon"
	if authenticated {
		identity = "user"
	}
	return "acl:" + version + ":" + identity + ":" + strings.Join(parts, ",")
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// Version returns the current version token, creating one on first use.
func (c *RedisCache) Version(ctx context.Context) (string, error) {
	v, err := c.client.Get(ctx, versionKey).Result()
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("read acl version: %w", err)
	}

	fresh := uuid.NewString()
	ok, err := c.client.SetNX(ctx, versionKey, fresh, 0).Result()
	if err != nil {
		return "", fmt.Errorf("init acl version: %w", err)
	}
	if ok {
		return fresh, nil
	}
	return c.client.Get(ctx, versionKey).Result()
}

// Bump replaces the version token. Documents cached under the old token
// are never read again and expire on their own.
func (c *RedisCache) Bump(ctx context.Context) (string, error) {
	fresh := uuid.NewString()
	if err := c.client.Set(ctx, versionKey, fresh, 0).Err(); err != nil {
		return "", fmt.Errorf("bump acl version: %w", err)
	}
	return fresh, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (*UserACL, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("read acl: %w", err)
	}

	var doc UserACL
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal acl: %w", err)
	}
	return &doc, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, doc *UserACL, ttl time.Duration) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal acl: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("store acl: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
