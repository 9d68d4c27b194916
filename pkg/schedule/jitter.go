package schedule

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

const (
	retryDelayMin  = 1 * time.Second
	retryDelaySpan = 2 * time.Second
)

// Jitter produces the randomized delays and times of day the billing
// engine uses to avoid synchronized retry storms and thundering-herd
// schedule starts. Safe for concurrent use.
type Jitter struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewJitter creates a Jitter seeded from the current time.
func NewJitter() *Jitter {
	return NewJitterWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewJitterWithSource creates a Jitter with a caller-provided source,
// letting tests make it deterministic.
func NewJitterWithSource(src rand.Source) *Jitter {
	return &Jitter{rng: rand.New(src)}
}

// RetryDelay returns a duration uniformly distributed in [1s, 3s).
func (j *Jitter) RetryDelay() time.Duration {
	j.mu.Lock()
	defer j.mu.Unlock()
	return retryDelayMin + time.Duration(j.rng.Int63n(int64(retryDelaySpan)))
}

// SleepRetry blocks for a jittered retry delay, returning early if the
// context is cancelled.
func (j *Jitter) SleepRetry(ctx context.Context) {
	t := time.NewTimer(j.RetryDelay())
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// RandomHour returns a random hour of day in [0, 23].
func (j *Jitter) RandomHour() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.rng.Intn(24)
}

// RandomMinute returns a random minute in [0, 59].
func (j *Jitter) RandomMinute() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.rng.Intn(60)
}
