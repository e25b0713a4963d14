package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	defaultKeyPrefix = "showfinder:"
	// redisOpTimeout bounds each round trip on top of the caller's context.
	redisOpTimeout = 2 * time.Second
)

// redisCache shares catalog bodies between ShowFinder instances.
//
// Each body is a plain string key {prefix}body:{key} expiring with PX. Two sorted sets
// track members: {prefix}lru scored by last read and {prefix}exp scored by expiry, both
// in microseconds. Scripts keep the sets consistent with the bodies.
type redisCache struct {
	client     *redis.Client
	ttl        time.Duration
	maxEntries int
	onEvict    func(key string)
	logger     zerolog.Logger

	bodyPrefix string
	lruKey     string
	expKey     string
}

// readScript returns the body and marks it as recently read. A member whose body has
// expired is dropped from both sets.
//
// KEYS: body, lru, exp. ARGV: now, member.
var readScript = redis.NewScript(`
local body = redis.call('GET', KEYS[1])
if not body then
  redis.call('ZREM', KEYS[2], ARGV[2])
  redis.call('ZREM', KEYS[3], ARGV[2])
  return false
end
redis.call('ZADD', KEYS[2], ARGV[1], ARGV[2])
return body
`)

// writeScript stores a body, drops expired members and evicts the least recently read
// members beyond the size bound. It returns every member removed.
//
// KEYS: body, lru, exp. ARGV: body, now, member, max entries, ttl ms, expiry, body prefix.
var writeScript = redis.NewScript(`
local member = ARGV[3]
if tonumber(ARGV[5]) > 0 then
  redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[5])
  redis.call('ZADD', KEYS[3], ARGV[6], member)
else
  redis.call('SET', KEYS[1], ARGV[1])
  redis.call('ZREM', KEYS[3], member)
end
redis.call('ZADD', KEYS[2], ARGV[2], member)

local removed = redis.call('ZRANGEBYSCORE', KEYS[3], '-inf', ARGV[2])
for _, m in ipairs(removed) do
  redis.call('ZREM', KEYS[2], m)
end
redis.call('ZREMRANGEBYSCORE', KEYS[3], '-inf', ARGV[2])

local maxEntries = tonumber(ARGV[4])
if maxEntries > 0 then
  local over = redis.call('ZCARD', KEYS[2]) - maxEntries
  if over > 0 then
    local oldest = redis.call('ZRANGE', KEYS[2], 0, over - 1)
    for _, m in ipairs(oldest) do
      redis.call('DEL', ARGV[7] .. m)
      redis.call('ZREM', KEYS[2], m)
      redis.call('ZREM', KEYS[3], m)
      table.insert(removed, m)
    end
  end
end
return removed
`)

// countScript drops expired members and returns the number left.
//
// KEYS: lru, exp. ARGV: now.
var countScript = redis.NewScript(`
local expired = redis.call('ZRANGEBYSCORE', KEYS[2], '-inf', ARGV[1])
for _, m in ipairs(expired) do
  redis.call('ZREM', KEYS[1], m)
end
redis.call('ZREMRANGEBYSCORE', KEYS[2], '-inf', ARGV[1])
return redis.call('ZCARD', KEYS[1])
`)

func newRedisCache(opts RedisOptions, maxEntries int, ttl time.Duration, onEvict func(string), logger zerolog.Logger) (*redisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: redis at %s unreachable: %w", opts.Address, err)
	}

	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &redisCache{
		client:     client,
		ttl:        ttl,
		maxEntries: maxEntries,
		onEvict:    onEvict,
		logger:     logger,
		bodyPrefix: prefix + "body:",
		lruKey:     prefix + "lru",
		expKey:     prefix + "exp",
	}, nil
}

func micros(t time.Time) string {
	return strconv.FormatInt(t.UnixMicro(), 10)
}

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	keys := []string{r.bodyPrefix + key, r.lruKey, r.expKey}
	body, err := readScript.Run(ctx, r.client, keys, micros(time.Now()), key).Text()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn().Err(err).Str("key", key).Msg("Redis cache read failed")
		}
		return nil, false
	}
	return []byte(body), true
}

func (r *redisCache) Set(ctx context.Context, key string, body []byte) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	now := time.Now()
	keys := []string{r.bodyPrefix + key, r.lruKey, r.expKey}
	removed, err := writeScript.Run(ctx, r.client, keys,
		body,
		micros(now),
		key,
		strconv.Itoa(r.maxEntries),
		strconv.FormatInt(r.ttl.Milliseconds(), 10),
		micros(now.Add(r.ttl)),
		r.bodyPrefix,
	).StringSlice()
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("Redis cache write failed")
		return
	}

	if r.onEvict == nil {
		return
	}
	for _, member := range removed {
		r.onEvict(member)
	}
}

// Len also runs from the metrics collector, outside any request.
func (r *redisCache) Len() int {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	n, err := countScript.Run(ctx, r.client, []string{r.lruKey, r.expKey}, micros(time.Now())).Int()
	if err != nil {
		r.logger.Warn().Err(err).Msg("Redis cache count failed")
		return 0
	}
	return n
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
