package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	versionKey     = "sitebooks:cache:version"
	DefaultChannel = "ledger.bump"
)

// raiseVersion sets the version to ARGV[1] unless the stored version is already at least that high.
var raiseVersion = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
local incoming = tonumber(ARGV[1])
if incoming > current then
	redis.call("SET", KEYS[1], incoming)
	return incoming
end
return current
`)

// Cache is a versioned JSON cache over Redis. A nil Cache, or one without a client,
// calls the loader every time.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewClient connects to Redis and checks the connection.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: ping: %w", err)
	}

	return client, nil
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Version returns the current cache version, initialising it when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, versionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey joins parts and appends the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(append([]string{"sitebooks"}, parts...), ":")
	if !c.enabled() {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// FetchJSON decodes the cached value at key, or runs loader and stores its result.
// Redis errors never fail the call; the loader result is returned instead.
func FetchJSON[T any](ctx context.Context, c *Cache, key string, loader func(context.Context) (T, error)) (T, error) {
	return FetchJSONIf(ctx, c, key, loader, nil)
}

// FetchJSONIf is FetchJSON that stores a loaded value only when cacheable reports true.
// A nil cacheable stores every successful result.
func FetchJSONIf[T any](ctx context.Context, c *Cache, key string, loader func(context.Context) (T, error), cacheable func(T) bool) (T, error) {
	if loader == nil {
		var zero T
		return zero, errors.New("cache: loader required")
	}
	if !c.enabled() {
		return loader(ctx)
	}

	if payload, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var cached T
		if err := json.Unmarshal(payload, &cached); err == nil {
			return cached, nil
		}
	}

	value, err := loader(ctx)
	if err != nil {
		return value, err
	}
	if cacheable != nil && !cacheable(value) {
		return value, nil
	}
	if raw, err := json.Marshal(value); err == nil {
		_ = c.client.Set(ctx, key, raw, c.ttl).Err()
	}
	return value, nil
}

// Bump invalidates every cached entry by incrementing the version and publishing it.
// Ledger writers call it after a write; the API process only listens.
func (c *Cache) Bump(ctx context.Context, channel string) error {
	if !c.enabled() {
		return nil
	}
	if channel == "" {
		channel = DefaultChannel
	}
	ver, err := c.client.Incr(ctx, versionKey).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, channel, strconv.FormatInt(ver, 10)).Err()
}

// ListenForInvalidation subscribes to version bumps published by ledger writers.
// A numeric payload raises the version to that value and never lowers it; anything else increments it.
func (c *Cache) ListenForInvalidation(ctx context.Context, channel string) error {
	if !c.enabled() {
		return nil
	}
	if channel == "" {
		channel = DefaultChannel
	}
	pubsub := c.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("cache: subscribe %s: %w", channel, err)
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if msg.Payload != "" {
					if ver, err := strconv.ParseInt(msg.Payload, 10, 64); err == nil {
						_ = raiseVersion.Run(ctx, c.client, []string{versionKey}, ver).Err()
						continue
					}
				}
				_ = c.client.Incr(ctx, versionKey).Err()
			}
		}
	}()
	return nil
}
