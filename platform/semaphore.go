// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package platform

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Semaphore is the counting-semaphore primitive spec §6 names
// abstractly (sem_init/post/wait/trywait/destroy). golang.org/x/sync's
// weighted semaphore is the Go-idiomatic equivalent: Post is Release(1),
// Wait is a blocking Acquire(1), TryWait is TryAcquire(1). There is no
// destroy step — the semaphore is garbage collected with its owner.
type Semaphore struct {
	w *semaphore.Weighted
}

// NewSemaphore creates a semaphore with the given initial value.
func NewSemaphore(val int64) *Semaphore {
	s := &Semaphore{w: semaphore.NewWeighted(val + reservedHeadroom)}
	// Weighted starts fully available (0 held); acquire the headroom
	// once so the semaphore's available count equals val, matching
	// sem_init(sem, val)'s contract of val immediately-postable units.
	_ = s.w.Acquire(context.Background(), reservedHeadroom)
	return s
}

// reservedHeadroom lets a semaphore be Post-ed beyond its initial
// value (the ticket factory's return_tickets can post more than the
// number of outstanding acquires if callers are disciplined about
// capacity), by giving x/sync/semaphore effectively unbounded weight
// and manually tracking the logical "available" count via acquiring
// this fixed headroom once at construction time.
const reservedHeadroom = 1 << 30

// Post increments the semaphore, waking one blocked Wait if any.
func (s *Semaphore) Post() {
	s.w.Release(1)
}

// Wait blocks until the semaphore can be decremented.
func (s *Semaphore) Wait(ctx context.Context) error {
	return s.w.Acquire(ctx, 1)
}

// TryWait attempts to decrement the semaphore without blocking,
// reporting whether it succeeded.
func (s *Semaphore) TryWait() bool {
	return s.w.TryAcquire(1)
}
