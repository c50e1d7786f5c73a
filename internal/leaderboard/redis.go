package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const maxTxRetries = 5

// RedisOptions configures the Redis store.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Key prefixes the ranking ZSET (<key>) and the entry hash (<key>:entries).
	Key string
}

// Redis ranks users in a sorted set and keeps each entry as JSON in a hash.
// Members with equal rank scores are ordered by Redis (member descending),
// not by record time.
type Redis struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

// OpenRedis connects and pings the server.
func OpenRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return NewRedis(client, opts.Key), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, key string) *Redis {
	return &Redis{client: client, key: key, now: time.Now}
}

func (r *Redis) rankKey() string  { return r.key }
func (r *Redis) entryKey() string { return r.key + ":entries" }

// rankScore folds percentage and score into one sortable float.
func rankScore(e Entry) float64 {
	return float64(e.Percentage)*1e6 + float64(e.Score)
}

func (r *Redis) Add(ctx context.Context, entry Entry) (bool, error) {
	entry = prepare(entry, r.now)
	member := strconv.FormatInt(entry.UserID, 10)
	payload, err := json.Marshal(entry)
	if err != nil {
		return false, fmt.Errorf("marshal leaderboard entry: %w", err)
	}

	var improved bool
	txf := func(tx *redis.Tx) error {
		improved = false
		current, err := r.loadEntry(ctx, tx, member)
		if err != nil {
			return err
		}
		if current != nil && !better(entry, *current) {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, r.entryKey(), member, payload)
			pipe.ZAdd(ctx, r.rankKey(), &redis.Z{Score: rankScore(entry), Member: member})
			return nil
		})
		if err == nil {
			improved = true
		}
		return err
	}

	for range maxTxRetries {
		err = r.client.Watch(ctx, txf, r.entryKey())
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("store leaderboard entry: %w", err)
		}
		return improved, nil
	}
	return false, fmt.Errorf("store leaderboard entry: %w", err)
}

func (r *Redis) Top(ctx context.Context, limit int) ([]Entry, error) {
	stop := int64(limit - 1)
	if limit <= 0 {
		stop = -1
	}
	members, err := r.client.ZRevRange(ctx, r.rankKey(), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("read leaderboard ranking: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}
	values, err := r.client.HMGet(ctx, r.entryKey(), members...).Result()
	if err != nil {
		return nil, fmt.Errorf("read leaderboard entries: %w", err)
	}
	entries := make([]Entry, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("decode leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *Redis) Position(ctx context.Context, userID int64) (int, *Entry, error) {
	member := strconv.FormatInt(userID, 10)
	rank, err := r.client.ZRevRank(ctx, r.rankKey(), member).Result()
	if errors.Is(err, redis.Nil) {
		return -1, nil, nil
	}
	if err != nil {
		return -1, nil, fmt.Errorf("read leaderboard rank: %w", err)
	}
	entry, err := r.loadEntry(ctx, r.client, member)
	if err != nil {
		return -1, nil, err
	}
	if entry == nil {
		return -1, nil, nil
	}
	return int(rank) + 1, entry, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

type hashGetter interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
}

func (r *Redis) loadEntry(ctx context.Context, c hashGetter, member string) (*Entry, error) {
	raw, err := c.HGet(ctx, r.entryKey(), member).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read leaderboard entry: %w", err)
	}
	var e Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, fmt.Errorf("decode leaderboard entry: %w", err)
	}
	return &e, nil
}
