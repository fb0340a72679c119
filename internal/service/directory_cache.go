package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"psychiatry-booking/internal/domain/entity"

	"github.com/redis/go-redis/v9"
)

const (
	directoryCacheKey   = "directory:psychiatrists"
	directoryVersionKey = "directory:psychiatrists:version"
)

// setIfVersionScript writes the listing only when no invalidation happened
// since the caller read the version.
// KEYS[1] = listing key, KEYS[2] = version key
// ARGV[1] = version read before the database query, ARGV[2] = payload, ARGV[3] = ttl in ms (0 = no expiry)
var setIfVersionScript = redis.NewScript(`
local current = redis.call('GET', KEYS[2])
if current == false then
	current = '0'
end
if current ~= ARGV[1] then
	return 0
end
if ARGV[3] == '0' then
	redis.call('SET', KEYS[1], ARGV[2])
else
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
end
return 1
`)

// DirectoryCache holds the public psychiatrist listing between writes.
// Readers that miss take Version before querying the database and pass it
// to Set, so a listing read before an Invalidate is never written back.
type DirectoryCache interface {
	Get(ctx context.Context) ([]entity.Psychiatrist, bool, error)
	Version(ctx context.Context) (int64, error)
	Set(ctx context.Context, version int64, psychiatrists []entity.Psychiatrist) (bool, error)
	Invalidate(ctx context.Context) error
}

type redisDirectoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDirectoryCache(client *redis.Client, ttl time.Duration) DirectoryCache {
	return &redisDirectoryCache{client: client, ttl: ttl}
}

// Get reports a miss as (nil, false, nil).
func (c *redisDirectoryCache) Get(ctx context.Context) ([]entity.Psychiatrist, bool, error) {
	raw, err := c.client.Get(ctx, directoryCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var psychiatrists []entity.Psychiatrist
	if err := json.Unmarshal(raw, &psychiatrists); err != nil {
		return nil, false, err
	}
	return psychiatrists, true, nil
}

// Version returns the invalidation counter, 0 before the first invalidation.
func (c *redisDirectoryCache) Version(ctx context.Context) (int64, error) {
	version, err := c.client.Get(ctx, directoryVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return version, err
}

// Set reports false when the listing was skipped because version is stale.
func (c *redisDirectoryCache) Set(ctx context.Context, version int64, psychiatrists []entity.Psychiatrist) (bool, error) {
	raw, err := json.Marshal(psychiatrists)
	if err != nil {
		return false, err
	}

	stored, err := setIfVersionScript.Run(ctx, c.client,
		[]string{directoryCacheKey, directoryVersionKey},
		version, raw, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

// Invalidate bumps the version and drops the listing in one transaction.
func (c *redisDirectoryCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, directoryVersionKey)
		pipe.Del(ctx, directoryCacheKey)
		return nil
	})
	return err
}
