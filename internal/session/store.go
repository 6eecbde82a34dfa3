package session

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/eleven-am/interview-backend/internal/shared"
	"github.com/redis/go-redis/v9"
)

const (
	sessionTTL = 24 * time.Hour
	metricsTTL = 7 * 24 * time.Hour
)

type Store struct {
	redis *redis.Client
}

func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

func (s *Store) CreateRecord(ctx context.Context, rec *Record) error {
	rec.Status = StatusActive
	rec.StartedAt = time.Now()
	rec.LastActiveAt = time.Now()

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, rec.RedisKey(), data, sessionTTL).Err(); err != nil {
		return err
	}
	return s.incrementMetric(ctx, "sessions", 1)
}

func (s *Store) GetRecord(ctx context.Context, id string) (*Record, error) {
	data, err := s.redis.Get(ctx, "interview:"+id).Bytes()
	if err == redis.Nil {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) UpdateRecord(ctx context.Context, rec *Record) error {
	rec.LastActiveAt = time.Now()
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, rec.RedisKey(), data, sessionTTL).Err()
}

func (s *Store) EndRecord(ctx context.Context, id string, status Status) error {
	rec, err := s.GetRecord(ctx, id)
	if err != nil {
		return err
	}
	rec.Status = status
	return s.UpdateRecord(ctx, rec)
}

func (s *Store) DeleteRecord(ctx context.Context, id string) error {
	return s.redis.Del(ctx, "interview:"+id).Err()
}

func (s *Store) ListActive(ctx context.Context) ([]*Record, error) {
	keys, err := s.redis.Keys(ctx, "interview:*").Result()
	if err != nil {
		return nil, err
	}

	var records []*Record
	for _, key := range keys {
		if strings.HasPrefix(key, "interview:metrics:") {
			continue
		}
		data, err := s.redis.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		if rec.Status == StatusActive {
			records = append(records, &rec)
		}
	}
	return records, nil
}

func (s *Store) incrementMetric(ctx context.Context, field string, value int64) error {
	now := time.Now().UTC()
	key := MetricsRedisKey(now.Format("2006-01-02"), now.Hour())

	pipe := s.redis.Pipeline()
	pipe.HIncrBy(ctx, key, field, value)
	pipe.Expire(ctx, key, metricsTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// QuestionConcluded satisfies the session metrics contract.
func (s *Store) QuestionConcluded(ctx context.Context, reason string) {
	field := "completed"
	switch reason {
	case "no_answer":
		field = "no_answer"
	case "forced_complete":
		field = "forced_complete"
	}
	_ = s.incrementMetric(ctx, field, 1)
}

// JudgeChecked satisfies the session metrics contract.
func (s *Store) JudgeChecked(ctx context.Context) {
	_ = s.incrementMetric(ctx, "judge_checks", 1)
}

func (s *Store) GetMetrics(ctx context.Context, hours int) ([]*Metrics, error) {
	now := time.Now().UTC()
	var metrics []*Metrics

	for i := 0; i < hours; i++ {
		t := now.Add(-time.Duration(i) * time.Hour)
		key := MetricsRedisKey(t.Format("2006-01-02"), t.Hour())

		data, err := s.redis.HGetAll(ctx, key).Result()
		if err != nil || len(data) == 0 {
			continue
		}

		m := &Metrics{
			Date: t.Format("2006-01-02"),
			Hour: t.Hour(),
		}
		if v, ok := data["sessions"]; ok {
			m.Sessions, _ = strconv.ParseInt(v, 10, 64)
		}
		if v, ok := data["judge_checks"]; ok {
			m.JudgeChecks, _ = strconv.ParseInt(v, 10, 64)
		}
		if v, ok := data["completed"]; ok {
			m.Completed, _ = strconv.ParseInt(v, 10, 64)
		}
		if v, ok := data["no_answer"]; ok {
			m.NoAnswer, _ = strconv.ParseInt(v, 10, 64)
		}
		if v, ok := data["forced_complete"]; ok {
			m.ForcedComplete, _ = strconv.ParseInt(v, 10, 64)
		}

		metrics = append(metrics, m)
	}

	return metrics, nil
}
