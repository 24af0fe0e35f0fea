package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"todo_webapp/internal/domain"

	"github.com/redis/go-redis/v9"
)

const activityTTL = 7 * 24 * time.Hour

// ActivityStore keeps the most recent assistant activity entries per user,
// newest first.
type ActivityStore interface {
	Append(ctx context.Context, userID string, a domain.Activity) error
	List(ctx context.Context, userID string) ([]domain.Activity, error)
	Clear(ctx context.Context, userID string) error
}

// NewActivityStore returns a Redis backed store, or an in-memory one when
// client is nil.
func NewActivityStore(client *redis.Client) ActivityStore {
	if client == nil {
		return NewMemoryActivityStore()
	}
	return &RedisActivityStore{client: client}
}

type RedisActivityStore struct {
	client *redis.Client
}

func activityKey(userID string) string {
	return "activity:" + userID
}

func (s *RedisActivityStore) Append(ctx context.Context, userID string, a domain.Activity) error {
	b, err := json.Marshal(a)
	if err != nil {
		return err
	}
	key := activityKey(userID)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, b)
	pipe.LTrim(ctx, key, 0, domain.MaxActivityEntries-1)
	pipe.Expire(ctx, key, activityTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

func (s *RedisActivityStore) List(ctx context.Context, userID string) ([]domain.Activity, error) {
	raw, err := s.client.LRange(ctx, activityKey(userID), 0, domain.MaxActivityEntries-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	out := make([]domain.Activity, 0, len(raw))
	for _, r := range raw {
		var a domain.Activity
		if err := json.Unmarshal([]byte(r), &a); err != nil {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *RedisActivityStore) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, activityKey(userID)).Err()
}

type MemoryActivityStore struct {
	mu      sync.Mutex
	entries map[string][]domain.Activity
}

func NewMemoryActivityStore() *MemoryActivityStore {
	return &MemoryActivityStore{entries: make(map[string][]domain.Activity)}
}

func (s *MemoryActivityStore) Append(_ context.Context, userID string, a domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := append([]domain.Activity{a}, s.entries[userID]...)
	if len(list) > domain.MaxActivityEntries {
		list = list[:domain.MaxActivityEntries]
	}
	s.entries[userID] = list
	return nil
}

func (s *MemoryActivityStore) List(_ context.Context, userID string) ([]domain.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Activity, len(s.entries[userID]))
	copy(out, s.entries[userID])
	return out, nil
}

func (s *MemoryActivityStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	return nil
}
