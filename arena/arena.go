// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package arena is the stack-discipline bump allocator (spec §4.C):
// pushes consume padding + size from a backing slot, recorded
// checkpoints restore the cursor on Pop, Flush resets to empty.
// Grounded on struct arena/struct arenaRecord and
// ArenaPushRecord/PopRecord/RemoveRecord/ArenaAlloc/Free/Flush/
// PushAligned* in original_source/src/base/ds_allocator.c.
package arena

import (
	"code.hybscloud.com/dsruntime/internal/dserr"
	"code.hybscloud.com/dsruntime/memslot"
)

// Source resolves the spec's Open Question (§9): ArenaAlloc1MB draws
// from a fixed-size block class, ArenaAlloc(size) takes a fresh
// page-aligned slot. Both shapes implement Source so arena.New can
// take either without the caller needing two arena constructors.
type Source interface {
	Reserve(hint int) (memslot.Slot, error)
	Release(memslot.Slot) error
}

// Arena is a bump allocator over a single backing Slot. Not safe for
// concurrent use; callers provide external synchronization if shared,
// matching spec §5's "not internally synchronised" contract for
// arena/pool/hierarchy/contact-db instances.
type Arena struct {
	source  Source
	slot    memslot.Slot
	used    int   // bytes consumed from slot.Bytes, 0 <= used <= len(slot.Bytes)
	records []int // stack of prior `used` values; in-place linked list in the original, a Go slice here since nothing needs pointer-stability across a push
}

// New creates an arena drawing its backing memory from source, sized
// at least size bytes.
func New(source Source, size int) (*Arena, error) {
	slot, err := source.Reserve(size)
	if err != nil {
		return nil, err
	}
	return &Arena{source: source, slot: slot}, nil
}

// Remaining returns the number of bytes still available to push.
func (a *Arena) Remaining() int { return len(a.slot.Bytes) - a.used }

// Total returns the arena's total capacity in bytes.
func (a *Arena) Total() int { return len(a.slot.Bytes) }

// Push reserves size bytes aligned to align (which must be a power of
// two) and returns the slice. Returns dserr.ErrOutOfMemory if the
// arena cannot satisfy the request; the original escalates this to a
// fatal exit, which callers may do themselves via dserr.Fatal.
func (a *Arena) Push(size int, align int) ([]byte, error) {
	if align <= 0 {
		align = 1
	}
	padded := alignUp(a.used, align) - a.used
	need := padded + size
	if need < 0 || need > a.Remaining() {
		return nil, dserr.ErrOutOfMemory
	}
	start := a.used + padded
	a.used += need
	b := a.slot.Bytes[start : start+size : start+size]
	poisonClear(b)
	return b, nil
}

// PushZero is Push followed by zeroing the returned region.
func (a *Arena) PushZero(size int, align int) ([]byte, error) {
	b, err := a.Push(size, align)
	if err != nil {
		return nil, err
	}
	clear(b)
	return b, nil
}

// PushAll aligns the cursor to align and reserves everything left in
// the arena as one slice, matching ArenaPushAlignedAll's "consume
// everything" discipline used by callers that want the whole
// remainder reserved as a scratch region. Afterward Remaining is 0.
func (a *Arena) PushAll(align int) ([]byte, error) {
	if align <= 0 {
		align = 1
	}
	padded := alignUp(a.used, align) - a.used
	start := a.used + padded
	if start > len(a.slot.Bytes) {
		return nil, dserr.ErrOutOfMemory
	}
	size := len(a.slot.Bytes) - start
	a.used = len(a.slot.Bytes)
	return a.slot.Bytes[start : start+size : start+size], nil
}

// PushRecord saves a checkpoint of the current cursor so a later Pop
// can restore it. Returns the checkpoint depth (for debugging/assertions).
func (a *Arena) PushRecord() int {
	a.records = append(a.records, a.used)
	return len(a.records)
}

// PopRecord restores the arena to the most recently pushed checkpoint
// and discards it. Popping with no outstanding record is a contract
// violation: under the dsdebug build tag this returns dserr.ErrCorrupt,
// otherwise (matching the original's release-build contract) it is a
// silent no-op.
func (a *Arena) PopRecord() error {
	if len(a.records) == 0 {
		return popRecordUnderflow()
	}
	last := len(a.records) - 1
	poisonRange(a.slot.Bytes, a.records[last], a.used)
	a.used = a.records[last]
	a.records = a.records[:last]
	return nil
}

// RemoveRecord discards the most recently pushed checkpoint without
// restoring the cursor (the arena keeps whatever was pushed since,
// folding it into the parent checkpoint's scope).
func (a *Arena) RemoveRecord() error {
	if len(a.records) == 0 {
		return popRecordUnderflow()
	}
	a.records = a.records[:len(a.records)-1]
	return nil
}

// Flush resets the arena to empty, discarding all checkpoints.
func (a *Arena) Flush() {
	poisonRange(a.slot.Bytes, 0, a.used)
	a.used = 0
	a.records = a.records[:0]
}

// Free releases the arena's backing slot back to its Source. The
// arena must not be used afterward.
func (a *Arena) Free() error {
	return a.source.Release(a.slot)
}

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) &^ (align - 1)
}
