package service

import (
	"context"
	"time"
)

// Delay espera d o hasta que ctx se cancele.
type Delay func(ctx context.Context, d time.Duration) error

// SleepContext es la implementacion real de Delay basada en un timer.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoDelay no espera; util en tests.
func NoDelay(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}
