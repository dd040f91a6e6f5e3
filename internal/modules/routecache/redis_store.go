// README: Cache store backed by Redis hashes plus sorted-set time indexes.
package routecache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	entryKeyPrefix    = "routecache:entry:"
	lastSeenIndexKey  = "routecache:last_seen"
	firstSeenIndexKey = "routecache:first_seen"
)

// RedisStore keeps each entry in a hash and indexes keys by last_seen and
// first_seen in sorted sets so cleanup and stats stay O(log n).
type RedisStore struct {
	redis *redis.Client
}

func NewRedisStore(redis *redis.Client) *RedisStore {
	return &RedisStore{redis: redis}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	val, err := s.redis.HGet(ctx, entryKeyPrefix+key, "entry").Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal([]byte(val), &e); err != nil {
		return nil, err
	}
	hits, err := s.redis.HGet(ctx, entryKeyPrefix+key, "hit_count").Int64()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	e.HitCount = hits
	if last, err := s.redis.ZScore(ctx, lastSeenIndexKey, key).Result(); err == nil {
		e.LastSeen = time.Unix(int64(last), 0).UTC()
	}
	stale, err := s.redis.HGet(ctx, entryKeyPrefix+key, "stale").Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	e.Stale = stale == "1"
	return &e, nil
}

func (s *RedisStore) Upsert(ctx context.Context, e Entry) error {
	// Preserve first_seen and hit_count across refreshes of the same key.
	exists, err := s.redis.Exists(ctx, entryKeyPrefix+e.Key).Result()
	if err != nil {
		return err
	}
	if exists == 1 {
		if first, err := s.redis.ZScore(ctx, firstSeenIndexKey, e.Key).Result(); err == nil {
			e.FirstSeen = time.Unix(int64(first), 0).UTC()
		}
	}

	blob, err := json.Marshal(e)
	if err != nil {
		return err
	}
	pipe := s.redis.TxPipeline()
	pipe.HSet(ctx, entryKeyPrefix+e.Key, "entry", blob, "stale", "0")
	if exists == 0 {
		pipe.HSet(ctx, entryKeyPrefix+e.Key, "hit_count", 0)
		pipe.ZAdd(ctx, firstSeenIndexKey, redis.Z{Score: float64(e.FirstSeen.Unix()), Member: e.Key})
	}
	pipe.ZAdd(ctx, lastSeenIndexKey, redis.Z{Score: float64(e.LastSeen.Unix()), Member: e.Key})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Touch(ctx context.Context, key string, at time.Time) (int64, error) {
	exists, err := s.redis.Exists(ctx, entryKeyPrefix+key).Result()
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, ErrNotFound
	}
	pipe := s.redis.TxPipeline()
	incr := pipe.HIncrBy(ctx, entryKeyPrefix+key, "hit_count", 1)
	// GT keeps last_seen monotonic even if clocks race.
	pipe.ZAddGT(ctx, lastSeenIndexKey, redis.Z{Score: float64(at.Unix()), Member: key})
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (s *RedisStore) SetStale(ctx context.Context, key string, stale bool) error {
	exists, err := s.redis.Exists(ctx, entryKeyPrefix+key).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}
	v := "0"
	if stale {
		v = "1"
	}
	return s.redis.HSet(ctx, entryKeyPrefix+key, "stale", v).Err()
}

func (s *RedisStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	max := fmtScore(cutoff)
	keys, err := s.redis.ZRangeByScore(ctx, lastSeenIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: max,
	}).Result()
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	pipe := s.redis.TxPipeline()
	for _, k := range keys {
		pipe.Del(ctx, entryKeyPrefix+k)
	}
	members := make([]interface{}, len(keys))
	for i, k := range keys {
		members[i] = k
	}
	pipe.ZRem(ctx, lastSeenIndexKey, members...)
	pipe.ZRem(ctx, firstSeenIndexKey, members...)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return int64(len(keys)), nil
}

func (s *RedisStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	keys, err := s.redis.ZRangeWithScores(ctx, firstSeenIndexKey, 0, -1).Result()
	if err != nil {
		return Stats{}, err
	}
	st.TotalEntries = int64(len(keys))
	if len(keys) > 0 {
		oldest := time.Unix(int64(keys[0].Score), 0).UTC()
		newest := time.Unix(int64(keys[len(keys)-1].Score), 0).UTC()
		st.OldestFirstSeen = &oldest
		st.NewestFirstSeen = &newest
	}
	for _, k := range keys {
		hits, err := s.redis.HGet(ctx, entryKeyPrefix+k.Member.(string), "hit_count").Int64()
		if err != nil && err != redis.Nil {
			return Stats{}, err
		}
		st.TotalHits += hits
	}
	return st, nil
}

func fmtScore(t time.Time) string {
	// ZRangeByScore max is exclusive via "(": entries seen exactly at the
	// cutoff survive.
	return "(" + strconv.FormatInt(t.Unix(), 10)
}
