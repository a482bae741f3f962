package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeenStore recuerda que ids mock ya se sirvieron a cada usuario.
type SeenStore interface {
	Seen(ctx context.Context, userID int64) ([]int64, error)
	Add(ctx context.Context, userID, mockID int64) error
}

type memorySeenStore struct {
	mu    sync.Mutex
	items map[int64]map[int64]struct{}
}

func NewMemorySeenStore() SeenStore {
	return &memorySeenStore{
		items: make(map[int64]map[int64]struct{}),
	}
}

func (s *memorySeenStore) Seen(_ context.Context, userID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.items[userID]
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *memorySeenStore) Add(_ context.Context, userID, mockID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.items[userID]
	if !ok {
		set = make(map[int64]struct{})
		s.items[userID] = set
	}
	set[mockID] = struct{}{}
	return nil
}

type redisSetClient interface {
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
}

type redisSeenStore struct {
	client  redisSetClient
	prefix  string
	timeout time.Duration
}

func NewRedisSeenStore(client *redis.Client) SeenStore {
	if client == nil {
		return nil
	}
	return &redisSeenStore{
		client:  client,
		prefix:  "mock:seen:",
		timeout: 500 * time.Millisecond,
	}
}

func (s *redisSeenStore) key(userID int64) string {
	return s.prefix + strconv.FormatInt(userID, 10)
}

func (s *redisSeenStore) Seen(ctx context.Context, userID int64) ([]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	members, err := s.client.SMembers(ctx, s.key(userID)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse seen id %q: %w", m, err)
		}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *redisSeenStore) Add(ctx context.Context, userID, mockID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.SAdd(ctx, s.key(userID), mockID).Err()
}
