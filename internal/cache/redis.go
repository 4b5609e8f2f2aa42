package cache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisPrefix   = "userdesk:users:"
	generationKey = redisPrefix + "gen"
)

// Redis stores listing pages in redis. Keys embed a generation counter;
// Invalidate bumps the counter so older pages become unreachable and age
// out on their TTL. Redis failures degrade to misses.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewRedis(rdb *redis.Client, ttl time.Duration, log *slog.Logger) *Redis {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	return &Redis{rdb: rdb, ttl: ttl, log: log}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	gen, err := r.generation(ctx)
	if err != nil {
		r.log.WarnContext(ctx, "cache generation lookup failed", "err", err)
		return nil, false
	}

	val, err := r.rdb.Get(ctx, r.key(gen, key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.WarnContext(ctx, "cache get failed", "err", err)
		}
		return nil, false
	}

	return val, true
}

// Version is the current generation. A page written under an old
// generation lands on a key no Get will ask for.
func (r *Redis) Version(ctx context.Context) (uint64, bool) {
	gen, err := r.generation(ctx)
	if err != nil {
		r.log.WarnContext(ctx, "cache generation lookup failed", "err", err)
		return 0, false
	}
	return uint64(gen), true
}

func (r *Redis) Set(ctx context.Context, key string, val []byte, ver uint64) {
	if err := r.rdb.Set(ctx, r.key(int64(ver), key), val, r.ttl).Err(); err != nil {
		r.log.WarnContext(ctx, "cache set failed", "err", err)
	}
}

func (r *Redis) Invalidate(ctx context.Context) {
	if err := r.rdb.Incr(ctx, generationKey).Err(); err != nil {
		r.log.WarnContext(ctx, "cache invalidate failed", "err", err)
	}
}

func (r *Redis) generation(ctx context.Context) (int64, error) {
	gen, err := r.rdb.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (r *Redis) key(gen int64, key string) string {
	return redisPrefix + "g" + strconv.FormatInt(gen, 10) + ":" + key
}
