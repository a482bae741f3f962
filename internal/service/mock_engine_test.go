package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestEngine(repo *memMockRepo, sampleRange, poolSize int, intN func(int) int) *MockEngine {
	return NewMockEngine(repo, sampleRange, poolSize, WithDelay(NoDelay, 0), WithRandom(intN))
}

func TestMockEngineNext_NeverRepeatsUntilExhausted(t *testing.T) {
	repo := &memMockRepo{messages: []string{"a", "b", "c", "d"}}
	engine := NewMockEngine(repo, 4, 4, WithDelay(NoDelay, 0))

	var seen []int64
	got := map[int64]bool{}
	for i := 0; i < 4; i++ {
		resp, err := engine.Next(context.Background(), seen)
		if err != nil {
			t.Fatalf("draw %d: unexpected error %v", i, err)
		}
		if got[resp.ID] {
			t.Fatalf("id %d served twice", resp.ID)
		}
		if resp.Message != repo.messages[resp.ID-1] {
			t.Fatalf("message mismatch for id %d", resp.ID)
		}
		got[resp.ID] = true
		seen = append(seen, resp.ID)
	}
}

func TestMockEngineNext_PicksAmongUnseen(t *testing.T) {
	repo := &memMockRepo{messages: []string{"a", "b", "c", "d", "e"}}
	var gotN int
	engine := newTestEngine(repo, 5, 5, func(n int) int { gotN = n; return n - 1 })

	resp, err := engine.Next(context.Background(), []int64{1, 5, 5, 99})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotN != 3 {
		t.Fatalf("expected 3 candidates (2,3,4), got %d", gotN)
	}
	if resp.ID != 4 {
		t.Fatalf("expected last candidate id 4, got %d", resp.ID)
	}
}

func TestMockEngineNext_FullPoolFallsBackToUniform(t *testing.T) {
	repo := &memMockRepo{messages: []string{"a", "b", "c"}}
	var gotN int
	engine := newTestEngine(repo, 3, 3, func(n int) int { gotN = n; return 1 })

	resp, err := engine.Next(context.Background(), []int64{3, 1, 2, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotN != 3 || resp.ID != 2 {
		t.Fatalf("expected uniform draw over 1..3, got n=%d id=%d", gotN, resp.ID)
	}
}

func TestMockEngineNext_Exhaustion(t *testing.T) {
	t.Run("range exhausted before pool size", func(t *testing.T) {
		repo := &memMockRepo{messages: make([]string, 55)}
		engine := newTestEngine(repo, 5, 55, nil)
		_, err := engine.Next(context.Background(), []int64{1, 2, 3, 4, 5})
		if !errors.Is(err, ErrMockExhausted) {
			t.Fatalf("expected ErrMockExhausted, got %v", err)
		}
	})

	t.Run("drawn id without record", func(t *testing.T) {
		repo := &memMockRepo{messages: []string{"a", "b"}}
		engine := newTestEngine(repo, 5, 55, func(n int) int { return n - 1 })
		_, err := engine.Next(context.Background(), []int64{1})
		if !errors.Is(err, ErrMockExhausted) {
			t.Fatalf("expected ErrMockExhausted for missing record, got %v", err)
		}
	})

	t.Run("empty pool", func(t *testing.T) {
		engine := newTestEngine(&memMockRepo{}, 0, 0, nil)
		if _, err := engine.Next(context.Background(), nil); !errors.Is(err, ErrMockExhausted) {
			t.Fatalf("expected ErrMockExhausted, got %v", err)
		}
	})
}

func TestMockEngineNext_RepoError(t *testing.T) {
	boom := errors.New("db down")
	engine := newTestEngine(&memMockRepo{messages: []string{"a"}, getErr: boom}, 1, 1, nil)
	_, err := engine.Next(context.Background(), nil)
	if !errors.Is(err, boom) || errors.Is(err, ErrMockExhausted) {
		t.Fatalf("expected repository error, got %v", err)
	}
}

func TestMockEngineNext_HonoursDelayCancellation(t *testing.T) {
	repo := &memMockRepo{messages: []string{"a"}}
	engine := NewMockEngine(repo, 1, 1, WithDelay(SleepContext, time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := engine.Next(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(repo.lookups) != 0 {
		t.Fatalf("cancelled request must not hit the pool")
	}
}

func TestMockEngineNext_WaitsConfiguredDelay(t *testing.T) {
	var waited time.Duration
	delay := func(ctx context.Context, d time.Duration) error {
		waited = d
		return nil
	}
	engine := NewMockEngine(&memMockRepo{messages: []string{"a"}}, 1, 1, WithDelay(delay, DefaultMockDelay))
	if _, err := engine.Next(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if waited != 10*time.Second {
		t.Fatalf("expected 10s thinking delay, got %s", waited)
	}
}

func TestMockBounds(t *testing.T) {
	if r, p := MockBounds(0, 0, 12); r != 12 || p != 12 {
		t.Fatalf("expected loaded count for both, got %d/%d", r, p)
	}
	if r, p := MockBounds(5, 55, 12); r != 5 || p != 55 {
		t.Fatalf("explicit values must win, got %d/%d", r, p)
	}
}
