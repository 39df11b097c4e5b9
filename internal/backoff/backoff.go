// Package backoff computes exponential backoff delays with jitter.
package backoff

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// RandReader provides https://pkg.go.dev/math/rand/v2#Float64.
type RandReader interface{ Float64() float64 }

// Backoff is a stateless exponential backoff with jitter calculator.
type Backoff struct {
	Min        time.Duration // Minimum delay, greater 0 and at most Max.
	Max        time.Duration // Maximum delay.
	Factor     float64       // Exponential growth factor, greater 1.0.
	Jitter     float64       // Jitter ratio in [0.0, 1.0].
	RandSource RandReader
}

// New checks the parameters and returns a new backoff. If randSource is nil
// a PCG source is created.
func New(min, max time.Duration, factor, jitter float64, randSource RandReader) (Backoff, error) {
	if min <= 0 {
		return Backoff{}, fmt.Errorf("min(%d) must be >0", min)
	}
	if min > max {
		return Backoff{}, fmt.Errorf("min(%s) > max(%s)", min, max)
	}
	if factor <= 1.0 {
		return Backoff{}, fmt.Errorf("factor(%g) must be >1.0", factor)
	}
	if jitter < 0 || jitter > 1 {
		return Backoff{}, fmt.Errorf("jitter(%g) must be >=0.0 && <=1.0", jitter)
	}
	if randSource == nil {
		randSource = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}
	return Backoff{Min: min, Max: max, Factor: factor, Jitter: jitter, RandSource: randSource}, nil
}

// MustNew is New for package-level defaults; it panics on invalid parameters.
func MustNew(min, max time.Duration, factor, jitter float64) Backoff {
	b, err := New(min, max, factor, jitter, nil)
	if err != nil {
		panic(err)
	}
	return b
}

// Duration returns the delay before retry number attempt (1-based).
// Returns 0 when attempt < 1.
func (b Backoff) Duration(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	exp := float64(b.Min) * math.Pow(b.Factor, float64(attempt-1))
	d := b.Max
	if exp < float64(b.Max) {
		d = time.Duration(exp)
	}
	if b.Jitter == 0 || b.RandSource == nil {
		return d
	}
	delta := float64(d) * b.Jitter * (b.RandSource.Float64()*2 - 1)
	return max(d+time.Duration(delta), b.Min)
}

// Sleep waits for the delay of attempt or until ctx is done.
func (b Backoff) Sleep(ctx context.Context, attempt int) error {
	d := b.Duration(attempt)
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
