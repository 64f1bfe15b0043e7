package main

import (
	"context"
	"math"
	"sync/atomic"
	"time"
)

// timeFader animates the transition curtain over wall-clock time.
// Transitions run off the render goroutine, so the curtain level is
// shared through an atomic; Draw samples it every frame.
type timeFader struct {
	duration time.Duration
	bits     atomic.Uint64
}

func newTimeFader(d time.Duration) *timeFader {
	if d <= 0 {
		d = 500 * time.Millisecond
	}
	return &timeFader{duration: d}
}

// Level returns the current curtain opacity in [0, 1].
func (f *timeFader) Level() float64 {
	return math.Float64frombits(f.bits.Load())
}

func (f *timeFader) set(v float64) {
	f.bits.Store(math.Float64bits(v))
}

func (f *timeFader) FadeOut(ctx context.Context) error {
	return f.animate(ctx, 1)
}

func (f *timeFader) FadeIn(ctx context.Context) error {
	return f.animate(ctx, 0)
}

// animate moves the curtain from its current level to target. On
// cancellation it snaps to the target first; the screen must never be
// stuck mid-fade.
func (f *timeFader) animate(ctx context.Context, target float64) error {
	from := f.Level()
	if from == target {
		return ctx.Err()
	}

	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()
	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			f.set(target)
			return ctx.Err()
		case <-ticker.C:
			t := float64(time.Since(start)) / float64(f.duration)
			if t >= 1 {
				f.set(target)
				return nil
			}
			f.set(from + (target-from)*t)
		}
	}
}
