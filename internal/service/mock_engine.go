package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"scope-chat/internal/domain"
	"scope-chat/internal/repository"
)

// ExhaustedMessage se guarda y devuelve cuando no quedan respuestas mock.
const ExhaustedMessage = "No more responses available."

// DefaultMockDelay simula el tiempo de "pensar" antes de una respuesta mock.
const DefaultMockDelay = 10 * time.Second

var ErrMockExhausted = errors.New("mock responses exhausted")

// MockResponder entrega la siguiente respuesta mock no vista.
type MockResponder interface {
	Next(ctx context.Context, seen []int64) (domain.MockResponse, error)
}

type MockEngine struct {
	repo        repository.MockResponseRepository
	sampleRange int
	poolSize    int
	delay       Delay
	wait        time.Duration
	intN        func(n int) int
}

type MockEngineOption func(*MockEngine)

func WithDelay(delay Delay, wait time.Duration) MockEngineOption {
	return func(e *MockEngine) {
		if delay != nil {
			e.delay = delay
		}
		e.wait = wait
	}
}

// WithRandom reemplaza la fuente de aleatoriedad; intN debe devolver [0, n).
func WithRandom(intN func(n int) int) MockEngineOption {
	return func(e *MockEngine) {
		if intN != nil {
			e.intN = intN
		}
	}
}

// NewMockEngine crea el motor. sampleRange acota los ids candidatos (1..R)
// y poolSize es la cantidad de ids vistos a partir de la cual se sortea sin exclusion.
func NewMockEngine(repo repository.MockResponseRepository, sampleRange, poolSize int, opts ...MockEngineOption) *MockEngine {
	e := &MockEngine{
		repo:        repo,
		sampleRange: sampleRange,
		poolSize:    poolSize,
		delay:       SleepContext,
		wait:        DefaultMockDelay,
		intN:        rand.IntN,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *MockEngine) Next(ctx context.Context, seen []int64) (domain.MockResponse, error) {
	if err := e.delay(ctx, e.wait); err != nil {
		return domain.MockResponse{}, err
	}

	id, err := e.pick(seen)
	if err != nil {
		return domain.MockResponse{}, err
	}

	resp, err := e.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.MockResponse{}, ErrMockExhausted
		}
		return domain.MockResponse{}, fmt.Errorf("get mock response %d: %w", id, err)
	}
	return resp, nil
}

func (e *MockEngine) pick(seen []int64) (int64, error) {
	if e.poolSize <= 0 || e.sampleRange <= 0 {
		return 0, ErrMockExhausted
	}

	distinct := make(map[int64]struct{}, len(seen))
	for _, id := range seen {
		distinct[id] = struct{}{}
	}

	if len(distinct) == e.poolSize {
		return int64(e.intN(e.poolSize) + 1), nil
	}

	candidates := make([]int64, 0, e.sampleRange)
	for id := int64(1); id <= int64(e.sampleRange); id++ {
		if _, ok := distinct[id]; !ok {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return 0, ErrMockExhausted
	}
	return candidates[e.intN(len(candidates))], nil
}

// MockBounds completa el rango de muestreo y el tamano del pool con la
// cantidad de respuestas cargadas cuando no vienen configurados (<= 0).
func MockBounds(sampleRange, poolSize, loaded int) (int, int) {
	if sampleRange <= 0 {
		sampleRange = loaded
	}
	if poolSize <= 0 {
		poolSize = loaded
	}
	return sampleRange, poolSize
}
