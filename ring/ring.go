// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ring is the double-mapped virtual ring buffer (spec §4.D):
// base..base+2*size is a double mapping of one physical region, so
// PushStart/PushEnd and PopStart/PopEnd always hand back a contiguous
// view even across a wraparound. Grounded on struct ring and
// RingAlloc/Dealloc/Flush/PushStart/PushEnd/PopStart/PopEnd in
// original_source/src/base/ds_allocator.c; the double mapping itself
// is platform.DoubleMap.
package ring

import (
	"code.hybscloud.com/dsruntime/internal/dserr"
	"code.hybscloud.com/dsruntime/platform"
)

// Ring is a single-producer/single-consumer byte buffer. Not
// internally synchronized — a single writer and a single reader may
// use it concurrently (the classic SPSC ring contract), but multiple
// writers or multiple readers must synchronize externally.
type Ring struct {
	mm          *platform.DoubleMapping
	size        int
	remaining   int // free bytes available to Push
	writeOffset int // 0 <= writeOffset < size
	readOffset  int // 0 <= readOffset < size
}

// New allocates a ring of at least size bytes (rounded up to the page
// size by the underlying double mapping).
func New(plat *platform.Platform, size int) (*Ring, error) {
	mm, err := plat.DoubleMap(size)
	if err != nil {
		return nil, err
	}
	return &Ring{mm: mm, size: mm.Size, remaining: mm.Size}, nil
}

// Remaining returns the number of bytes currently available to Push.
func (r *Ring) Remaining() int { return r.remaining }

// Size returns the ring's total capacity.
func (r *Ring) Size() int { return r.size }

// PushStart reserves n bytes without committing them and returns a
// contiguous writable view. The caller must follow with PushEnd(n)
// (or a smaller commit) once the data is written; the reservation is
// not visible to Pop until PushEnd runs.
func (r *Ring) PushStart(n int) ([]byte, error) {
	if n < 0 || n > r.remaining {
		return nil, dserr.ErrOutOfMemory
	}
	return r.mm.Base[r.writeOffset : r.writeOffset+n], nil
}

// PushEnd commits n bytes previously reserved via PushStart, advancing
// the write cursor and shrinking Remaining by n.
func (r *Ring) PushEnd(n int) {
	r.writeOffset = (r.writeOffset + n) % r.size
	r.remaining -= n
}

// PopStart returns a contiguous read-only view of the next n
// committed bytes without consuming them.
func (r *Ring) PopStart(n int) ([]byte, error) {
	if n < 0 || n > r.size-r.remaining {
		return nil, dserr.ErrOutOfMemory
	}
	return r.mm.Base[r.readOffset : r.readOffset+n], nil
}

// PopEnd consumes n bytes previously returned via PopStart, advancing
// the read cursor and growing Remaining by n.
func (r *Ring) PopEnd(n int) {
	r.readOffset = (r.readOffset + n) % r.size
	r.remaining += n
}

// Flush resets the ring to empty without releasing its memory.
func (r *Ring) Flush() {
	r.remaining = r.size
	r.writeOffset = 0
	r.readOffset = 0
}

// Dealloc releases the ring's backing double mapping.
func (r *Ring) Dealloc() error {
	return r.mm.Close()
}
