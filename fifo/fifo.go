// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fifo is the bounded single-producer multiple-consumer queue
// (spec §4.J), grounded on
// original_source/src/containers/parallel/fifo_spmc.h/.c: a fixed ring
// of entries gated by a counting semaphore the producer posts once an
// entry is published, with consumers racing a single atomic
// fetch-add over the head cursor to claim the next reserved entry.
//
// Style carried from the teacher's BoundedPool (see block.Allocator's
// doc comment): NoCopy embedding, cache-line-padded cursors,
// spin.Wait for the blocking push path.
package fifo

import (
	"context"
	"sync/atomic"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/spin"

	"code.hybscloud.com/dsruntime"
	"code.hybscloud.com/dsruntime/internal"
	"code.hybscloud.com/dsruntime/platform"
)

// entry is one ring slot: inUse gates producer republication exactly
// like fifo_spmc_entry.in_use, and data holds the published payload.
type entry[T any] struct {
	inUse atomic.Uint32
	data  T
}

// Queue is a bounded SPMC ring. capacity must be a power of two so
// index wraparound on overflowing cursors stays correct via masking,
// matching PowerOfTwoCheck(max_entry_count) in fifo_spmc_init.
type Queue[T any] struct {
	_ dsruntime.NoCopy

	entries []entry[T]
	mask    uint32

	_pad0    [internal.CacheLineSize]byte
	reserved platform.Semaphore // able_for_reservation
	_pad1    [internal.CacheLineSize]byte
	aFirst   atomic.Uint32 // consumer-owned
	_pad2    [internal.CacheLineSize]byte
	nextAlloc uint32 // producer-owned, not atomic: single producer
}

// New creates a Queue with the given power-of-two capacity.
func New[T any](capacity uint32) *Queue[T] {
	if capacity == 0 || capacity&(capacity-1) != 0 {
		panic("fifo: capacity must be a power of two")
	}
	q := &Queue[T]{
		entries: make([]entry[T], capacity),
		mask:    capacity - 1,
	}
	q.reserved = *platform.NewSemaphore(0)
	return q
}

// TryPush publishes data into the next producer-owned slot if it is
// not currently in use, grounded on fifo_spmc_try_push. Returns
// iox.ErrWouldBlock, the teacher's bounded-container sentinel for
// this case, when the slot the producer would claim is still held by
// a consumer.
func (q *Queue[T]) TryPush(data T) error {
	next := q.nextAlloc & q.mask
	if q.entries[next].inUse.Load() != 0 {
		return iox.ErrWouldBlock
	}

	q.nextAlloc = next + 1
	q.entries[next].data = data
	q.entries[next].inUse.Store(1)
	q.reserved.Post()
	return nil
}

// Push spins until TryPush succeeds, grounded on fifo_spmc_push's
// busy-wait loop.
func (q *Queue[T]) Push(data T) {
	var w spin.Wait
	for {
		if err := q.TryPush(data); err == nil {
			return
		}
		w.Once()
	}
}

// PushableCount reports how many consecutive producer-owned slots,
// starting at the next alloc position, are currently free, grounded
// on fifo_spmc_pushable_count.
func (q *Queue[T]) PushableCount() int {
	count := uint32(0)
	cap := uint32(len(q.entries))
	for count < cap {
		next := (q.nextAlloc + count) & q.mask
		if q.entries[next].inUse.Load() != 0 {
			break
		}
		count++
	}
	return int(count)
}

// Pop blocks until an entry is reserved for this caller (via the
// counting semaphore), then claims it with an atomic fetch-add over
// the shared consumer cursor, grounded on fifo_spmc_pop. Returns
// ctx's error if ctx is cancelled before an entry becomes available.
func (q *Queue[T]) Pop(ctx context.Context) (T, error) {
	var zero T
	if err := q.reserved.Wait(ctx); err != nil {
		return zero, err
	}

	i := q.aFirst.Add(1) - 1
	idx := i & q.mask
	data := q.entries[idx].data
	q.entries[idx].inUse.Store(0)
	return data, nil
}

// TryPop claims a reserved entry without blocking, or reports
// iox.ErrWouldBlock if none is currently available.
func (q *Queue[T]) TryPop() (T, error) {
	var zero T
	if !q.reserved.TryWait() {
		return zero, iox.ErrWouldBlock
	}
	i := q.aFirst.Add(1) - 1
	idx := i & q.mask
	data := q.entries[idx].data
	q.entries[idx].inUse.Store(0)
	return data, nil
}

// Cap returns the queue's fixed entry count.
func (q *Queue[T]) Cap() int { return len(q.entries) }
