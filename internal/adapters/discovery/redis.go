package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jsamuelsen/licensing-mesh/internal/platform/config"
	"github.com/jsamuelsen/licensing-mesh/internal/ports"
)

const redisConnectTimeout = 5 * time.Second

// redisClient is the subset of Redis commands the directory uses.
type redisClient interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	MGet(ctx context.Context, keys ...string) ([][]byte, error)
	Del(ctx context.Context, keys ...string) error
	SAdd(ctx context.Context, key, member string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// goRedisClient adapts *redis.Client to redisClient.
type goRedisClient struct {
	client *redis.Client
}

var _ redisClient = (*goRedisClient)(nil)

func (c *goRedisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// MGet returns one entry per key; missing keys yield nil.
func (c *goRedisClient) MGet(ctx context.Context, keys ...string) ([][]byte, error) {
	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([][]byte, len(vals))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[i] = []byte(s)
		}
	}

	return out, nil
}

func (c *goRedisClient) Del(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

func (c *goRedisClient) SAdd(ctx context.Context, key, member string) error {
	return c.client.SAdd(ctx, key, member).Err()
}

func (c *goRedisClient) SRem(ctx context.Context, key string, members ...string) error {
	args := make([]any, len(members))
	for i, m := range members {
		args[i] = m
	}
	return c.client.SRem(ctx, key, args...).Err()
}

func (c *goRedisClient) SMembers(ctx context.Context, key string) ([]string, error) {
	return c.client.SMembers(ctx, key).Result()
}

func (c *goRedisClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *goRedisClient) Close() error {
	return c.client.Close()
}

// RedisDirectory keeps instances in Redis so every process of a deployment
// sees the same membership.
//
// Layout:
//   - {prefix}:{service}:{instanceID} holds the JSON instance and expires after TTL
//   - {prefix}:{service} is a set of the service's instance ids
//
// An instance whose key expired is dropped from the set on the next lookup.
type RedisDirectory struct {
	client redisClient
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisDirectory connects to Redis and verifies the connection.
func NewRedisDirectory(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*RedisDirectory, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}

	return newRedisDirectory(&goRedisClient{client: client}, cfg.KeyPrefix, cfg.TTL, logger), nil
}

func newRedisDirectory(client redisClient, prefix string, ttl time.Duration, logger *slog.Logger) *RedisDirectory {
	if prefix == "" {
		prefix = "discovery"
	}
	if ttl <= 0 {
		ttl = config.DefaultDirectoryTTL
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &RedisDirectory{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "discovery.RedisDirectory")),
	}
}

func (d *RedisDirectory) serviceKey(service string) string {
	return d.prefix + ":" + service
}

func (d *RedisDirectory) instanceKey(service, instanceID string) string {
	return d.prefix + ":" + service + ":" + instanceID
}

// Register writes the instance with a fresh TTL. Calling it again before
// the TTL runs out keeps the instance live.
func (d *RedisDirectory) Register(ctx context.Context, inst ports.ServiceInstance) error {
	data, err := json.Marshal(inst)
	if err != nil {
		return fmt.Errorf("encoding instance: %w", err)
	}

	if err := d.client.Set(ctx, d.instanceKey(inst.ServiceName, inst.InstanceID), data, d.ttl); err != nil {
		return fmt.Errorf("registering %s/%s: %w", inst.ServiceName, inst.InstanceID, err)
	}

	if err := d.client.SAdd(ctx, d.serviceKey(inst.ServiceName), inst.InstanceID); err != nil {
		return fmt.Errorf("indexing %s/%s: %w", inst.ServiceName, inst.InstanceID, err)
	}

	return nil
}

// Deregister removes the instance immediately.
func (d *RedisDirectory) Deregister(ctx context.Context, inst ports.ServiceInstance) error {
	if err := d.client.Del(ctx, d.instanceKey(inst.ServiceName, inst.InstanceID)); err != nil {
		return fmt.Errorf("deregistering %s/%s: %w", inst.ServiceName, inst.InstanceID, err)
	}

	if err := d.client.SRem(ctx, d.serviceKey(inst.ServiceName), inst.InstanceID); err != nil {
		return fmt.Errorf("unindexing %s/%s: %w", inst.ServiceName, inst.InstanceID, err)
	}

	return nil
}

// Lookup returns the live instances of a service ordered by instance id.
func (d *RedisDirectory) Lookup(ctx context.Context, serviceName string) ([]ports.ServiceInstance, error) {
	ids, err := d.client.SMembers(ctx, d.serviceKey(serviceName))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", serviceName, err)
	}

	if len(ids) == 0 {
		return []ports.ServiceInstance{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = d.instanceKey(serviceName, id)
	}

	values, err := d.client.MGet(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("reading %s instances: %w", serviceName, err)
	}

	instances := make([]ports.ServiceInstance, 0, len(values))
	var stale []string

	for i, raw := range values {
		if raw == nil {
			stale = append(stale, ids[i])
			continue
		}

		var inst ports.ServiceInstance
		if err := json.Unmarshal(raw, &inst); err != nil {
			d.logger.WarnContext(ctx, "skipping undecodable instance",
				slog.String("key", keys[i]),
				slog.Any("error", err),
			)
			continue
		}

		instances = append(instances, inst)
	}

	if len(stale) > 0 {
		if err := d.client.SRem(ctx, d.serviceKey(serviceName), stale...); err != nil {
			d.logger.DebugContext(ctx, "failed to prune expired instances", slog.Any("error", err))
		}
	}

	sortInstances(instances)

	return instances, nil
}

// Name implements ports.HealthChecker.
func (d *RedisDirectory) Name() string { return healthCheckName }

// Check implements ports.HealthChecker by pinging Redis.
func (d *RedisDirectory) Check(ctx context.Context) error {
	return d.client.Ping(ctx)
}

// Close releases the Redis connection pool.
func (d *RedisDirectory) Close() error {
	return d.client.Close()
}
