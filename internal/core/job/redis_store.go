package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	rds "emlak-scraper/internal/platform/redis"

	redisv8 "github.com/go-redis/redis/v8"
)

const (
	recentKey       = "jobs:recent"
	maxWatchRetries = 5
)

// RedisStore keeps each record as JSON at job:<id> and indexes ids by
// creation time in a sorted set. Writes publish "updated" on job:<id>.
type RedisStore struct{ redis *rds.Service }

func NewRedisStore(redis *rds.Service) *RedisStore { return &RedisStore{redis: redis} }

func (s *RedisStore) Insert(ctx context.Context, rec *Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", rec.ID, err)
	}
	c := s.redis.Client()
	ok, err := c.SetNX(ctx, key(rec.ID), b, 0).Result()
	if err != nil {
		return fmt.Errorf("insert job %s: %w", rec.ID, err)
	}
	if !ok {
		return fmt.Errorf("job %s already exists", rec.ID)
	}
	score := float64(rec.CreatedDate.UnixMicro())
	if err := c.ZAdd(ctx, recentKey, &redisv8.Z{Score: score, Member: rec.ID}).Err(); err != nil {
		return fmt.Errorf("index job %s: %w", rec.ID, err)
	}
	s.publish(ctx, rec.ID)
	return nil
}

func (s *RedisStore) UpdateFields(ctx context.Context, id string, f Fields) error {
	k := key(id)
	txf := func(tx *redisv8.Tx) error {
		b, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, redisv8.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var rec Record
		if err := json.Unmarshal(b, &rec); err != nil {
			return fmt.Errorf("decode job %s: %w", id, err)
		}
		f.Apply(&rec)
		nb, err := json.Marshal(&rec)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redisv8.Pipeliner) error {
			p.Set(ctx, k, nb, 0)
			return nil
		})
		return err
	}

	var err error
	for attempt := 0; attempt < maxWatchRetries; attempt++ {
		err = s.redis.Client().Watch(ctx, txf, k)
		if errors.Is(err, redisv8.TxFailedErr) {
			continue
		}
		if err != nil {
			return err
		}
		s.publish(ctx, id)
		return nil
	}
	return fmt.Errorf("update job %s: %w", id, err)
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	b, err := s.redis.Client().Get(ctx, key(id)).Bytes()
	if errors.Is(err, redisv8.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}
	if !IsKnownStatus(rec.Status) {
		return nil, fmt.Errorf("job %s has unknown status %q", id, rec.Status)
	}
	if rec.Listings == nil {
		rec.Listings = []Listing{}
	}
	return &rec, nil
}

func (s *RedisStore) ListRecent(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = RecentLimit
	}
	c := s.redis.Client()
	ids, err := c.ZRevRange(ctx, recentKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("list recent jobs: %w", err)
	}
	if len(ids) == 0 {
		return []*Record{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(id)
	}
	vals, err := c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load recent jobs: %w", err)
	}

	out := make([]*Record, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			continue
		}
		if rec.Listings == nil {
			rec.Listings = []Listing{}
		}
		out = append(out, &rec)
	}
	return out, nil
}

// Subscribe streams update notifications for one job.
func (s *RedisStore) Subscribe(ctx context.Context, id string) (<-chan string, func(), error) {
	return s.redis.Subscribe(ctx, key(id))
}

func (s *RedisStore) HealthCheck(ctx context.Context) error { return s.redis.HealthCheck(ctx) }

func (s *RedisStore) publish(ctx context.Context, id string) {
	_ = s.redis.Publish(ctx, key(id), "updated")
}

func key(id string) string { return "job:" + id }
