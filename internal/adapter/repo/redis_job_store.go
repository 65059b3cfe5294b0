package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"veogallery/internal/domain"
)

const (
	redisKeyPrefix     = "genjob:"
	redisIndexKey      = "genjob:index"
	redisWatchAttempts = 5
)

// RedisJobStore stores jobs as JSON strings. A sorted set indexes job IDs by
// creation time so Sweep does not have to scan the keyspace.
type RedisJobStore struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedisJobStore wraps client. Terminal jobs also get a TTL of retention so
// they expire even when no sweeper runs.
func NewRedisJobStore(client *redis.Client, retention time.Duration) *RedisJobStore {
	return &RedisJobStore{client: client, retention: retention}
}

func jobKey(id string) string { return redisKeyPrefix + id }

func (s *RedisJobStore) Create(ctx context.Context, job *domain.Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	ok, err := s.client.SetNX(ctx, jobKey(job.ID), payload, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	return s.client.ZAdd(ctx, redisIndexKey, redis.Z{
		Score:  float64(job.CreatedAt.UnixMilli()),
		Member: job.ID,
	}).Err()
}

func (s *RedisJobStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	raw, err := s.client.Get(ctx, jobKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return decodeJob(raw)
}

func (s *RedisJobStore) Update(ctx context.Context, id string, fn func(*domain.Job) error) (*domain.Job, error) {
	key := jobKey(id)
	var updated *domain.Job
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return domain.ErrNotFound
			}
			return err
		}
		job, err := decodeJob(raw)
		if err != nil {
			return err
		}
		if err := fn(job); err != nil {
			return err
		}
		payload, err := json.Marshal(job)
		if err != nil {
			return fmt.Errorf("encode job: %w", err)
		}
		ttl := time.Duration(0)
		if job.IsTerminal() {
			ttl = s.retention
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, ttl)
			return nil
		})
		if err == nil {
			updated = job
		}
		return err
	}

	for attempt := 0; attempt < redisWatchAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("update job %s: too much contention", id)
}

// Sweep scans the creation index up to the later cutoff; a job is only
// created before it is updated, so nothing past that point can be expired.
func (s *RedisJobStore) Sweep(ctx context.Context, c domain.SweepCutoffs) (int, error) {
	ids, err := s.client.ZRangeByScore(ctx, redisIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("(%d", c.Oldest().UnixMilli()),
	}).Result()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, id := range ids {
		job, err := s.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			// expired through TTL already
			_ = s.client.ZRem(ctx, redisIndexKey, id).Err()
			continue
		}
		if err != nil {
			return removed, err
		}
		if !c.Expired(job) {
			continue
		}
		if err := s.client.Del(ctx, jobKey(id)).Err(); err != nil {
			return removed, err
		}
		_ = s.client.ZRem(ctx, redisIndexKey, id).Err()
		removed++
	}
	return removed, nil
}

func decodeJob(raw []byte) (*domain.Job, error) {
	var job domain.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	return &job, nil
}

var _ domain.JobStore = (*RedisJobStore)(nil)
