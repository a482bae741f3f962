package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockRedisEvaler struct {
	lastScript string
	lastKeys   []string
	lastArgs   []interface{}
	result     int64
	err        error
}

func (m *mockRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.lastScript = script
	m.lastKeys = keys
	m.lastArgs = args
	cmd := redis.NewCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	cmd.SetVal(m.result)
	return cmd
}

func TestTurnLimiterKey(t *testing.T) {
	if got := TurnLimiterKey(3, " Ana "); got != "ana@3" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestMemoryTurnLimiter(t *testing.T) {
	l := NewMemoryTurnLimiter(time.Minute, 2).(*memoryTurnLimiter)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	if !l.Allow(ctx, "a@1") || !l.Allow(ctx, "a@1") {
		t.Fatalf("expected first two turns allowed")
	}
	if l.Allow(ctx, "a@1") {
		t.Fatalf("expected third turn denied")
	}
	if !l.Allow(ctx, "b@1") {
		t.Fatalf("keys are independent")
	}

	now = now.Add(61 * time.Second)
	if !l.Allow(ctx, "a@1") {
		t.Fatalf("expected window to slide")
	}
}

func TestRedisTurnLimiterAllow(t *testing.T) {
	t.Run("nil receiver fail-open", func(t *testing.T) {
		var l *redisTurnLimiter
		if !l.Allow(context.Background(), "a@1") {
			t.Fatalf("expected fail-open for nil limiter")
		}
	})

	t.Run("empty key rejected", func(t *testing.T) {
		l := &redisTurnLimiter{client: &mockRedisEvaler{result: 1}, window: time.Minute, max: 3, prefix: "chat:rl:"}
		if l.Allow(context.Background(), "  ") {
			t.Fatalf("expected empty key to be rejected")
		}
	})

	t.Run("allow when count within max", func(t *testing.T) {
		mock := &mockRedisEvaler{result: 3}
		l := &redisTurnLimiter{client: mock, window: 2 * time.Minute, max: 3, prefix: "chat:rl:"}
		if !l.Allow(context.Background(), "ana@3") {
			t.Fatalf("expected allow when count <= max")
		}
		if len(mock.lastKeys) != 1 || mock.lastKeys[0] != "chat:rl:ana@3" {
			t.Fatalf("unexpected key, got %+v", mock.lastKeys)
		}
		if len(mock.lastArgs) != 1 || mock.lastArgs[0] != 120 {
			t.Fatalf("expected TTL seconds=120, got %+v", mock.lastArgs)
		}
		if mock.lastScript != redisTurnAllowScript {
			t.Fatalf("expected script to match")
		}
	})

	t.Run("deny when count exceeds max", func(t *testing.T) {
		l := &redisTurnLimiter{client: &mockRedisEvaler{result: 4}, window: time.Minute, max: 3, prefix: "chat:rl:"}
		if l.Allow(context.Background(), "ana@3") {
			t.Fatalf("expected deny when count > max")
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		l := &redisTurnLimiter{client: &mockRedisEvaler{err: errors.New("redis down")}, window: time.Minute, max: 3, prefix: "chat:rl:"}
		if !l.Allow(context.Background(), "ana@3") {
			t.Fatalf("expected fail-open on redis errors")
		}
	})
}
