// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pool is the intrusive slot allocator (spec §4.F): a growable
// array of T with a free list threaded through each slot's own state
// word, so Add/Remove never touch the heap once the backing array has
// room. Capacity is bounded at 2^31-1 exactly as the original enforces
// via its slot_allocation_state high bit.
//
// Go has no struct-offset macros, so where the original's
// POOL_SLOT_STATE embeds a plain u32 field addressed by offset, a
// pooled type here implements Slotted on its pointer receiver instead:
// one method returning a pointer to its own state word. Pool is
// parameterized over both T (the value stored inline in the backing
// array) and PT (its pointer type, constrained to implement Slotted) —
// the standard two-parameter idiom for "a method set on *T" generics,
// needed here so the backing array holds real T values rather than a
// slice of nil pointers. The index-by-handle access pattern (Add
// returns an index, Address/Index round-trip between index and
// pointer) is the teacher's IndirectPool shape, generalized from
// buffer pools to arbitrary intrusive slot types.
package pool

import (
	"unsafe"

	"code.hybscloud.com/dsruntime/internal/dserr"
)

// poolNull is the free-list terminator, distinct from 0 so index 0 is
// a usable slot.
const poolNull = 0x7fffffff

const allocatedBit = uint32(0x80000000)

// SlotState is the free-list-or-allocated state word embedded in every
// pooled type. Top bit set means allocated; otherwise the low 31 bits
// are the index of the next free slot, or poolNull at the chain's end.
type SlotState uint32

func (s *SlotState) allocated() bool    { return uint32(*s)&allocatedBit != 0 }
func (s *SlotState) next() uint32       { return uint32(*s) & 0x7fffffff }
func (s *SlotState) setNext(idx uint32) { *s = SlotState(idx) }
func (s *SlotState) setAllocated()      { *s = SlotState(allocatedBit) }

// Slotted is implemented by a pointer to any type stored in a Pool.
// PoolState must always return a pointer into the same backing storage
// Pool manages for that slot.
type Slotted interface {
	PoolState() *SlotState
}

// Pool is a growable array of T, handing out and reclaiming slots by
// index via an intrusive free list. Not safe for concurrent use; the
// spec's pooled containers (list, hierarchy, contactdb) are all
// single-owner structures built on top of it.
type Pool[T any, PT interface {
	*T
	Slotted
}] struct {
	slots    []T
	count    uint32
	countMax uint32
	nextFree uint32
	growable bool
}

// New creates a Pool with length initial slots. If growable is false,
// Add returns dserr.ErrOutOfMemory once length slots are allocated.
func New[T any, PT interface {
	*T
	Slotted
}](length uint32, growable bool) *Pool[T, PT] {
	p := &Pool[T, PT]{
		slots:    make([]T, length),
		nextFree: 0,
		growable: growable,
	}
	p.relink(0, length)
	return p
}

// relink rebuilds the free chain for slots in [from, to) in ascending
// order, terminating with poolNull.
func (p *Pool[T, PT]) relink(from, to uint32) {
	for i := from; i < to; i++ {
		st := PT(&p.slots[i]).PoolState()
		if i+1 < to {
			st.setNext(i + 1)
		} else {
			st.setNext(poolNull)
		}
	}
}

// Len returns the current backing array length.
func (p *Pool[T, PT]) Len() int { return len(p.slots) }

// Count returns the number of currently allocated slots.
func (p *Pool[T, PT]) Count() int { return int(p.count) }

// grow doubles the backing array, clamped to 2^31-1, and relinks the
// newly added slots onto the free chain.
func (p *Pool[T, PT]) grow() error {
	oldLen := uint32(len(p.slots))
	const maxLen = 1<<31 - 1
	if oldLen >= maxLen {
		return dserr.ErrOutOfMemory
	}
	newLen := oldLen * 2
	if newLen == 0 {
		newLen = 1
	}
	if newLen > maxLen {
		newLen = maxLen
	}
	grown := make([]T, newLen)
	copy(grown, p.slots)
	p.slots = grown
	p.relink(oldLen, newLen)
	p.nextFree = oldLen
	return nil
}

// Add claims the next free slot, returning its index. Returns
// dserr.ErrOutOfMemory if the pool is full and not growable.
func (p *Pool[T, PT]) Add() (index uint32, err error) {
	if p.nextFree == poolNull {
		if !p.growable {
			return 0, dserr.ErrOutOfMemory
		}
		if err := p.grow(); err != nil {
			return 0, err
		}
	}
	idx := p.nextFree
	st := PT(&p.slots[idx]).PoolState()
	p.nextFree = st.next()
	st.setAllocated()
	p.count++
	if p.count > p.countMax {
		p.countMax = p.count
	}
	return idx, nil
}

// Remove returns the slot at index to the free list. index must have
// been returned by a prior Add not yet Removed; violating this is
// caller error.
func (p *Pool[T, PT]) Remove(index uint32) {
	st := PT(&p.slots[index]).PoolState()
	st.setNext(p.nextFree)
	p.nextFree = index
	p.count--
}

// RemoveAddress removes the slot whose address is ptr.
func (p *Pool[T, PT]) RemoveAddress(ptr *T) {
	p.Remove(p.Index(ptr))
}

// Address returns a pointer to the slot at index.
func (p *Pool[T, PT]) Address(index uint32) *T {
	return &p.slots[index]
}

// Index returns the index of ptr, which must point into p's backing
// array.
func (p *Pool[T, PT]) Index(ptr *T) uint32 {
	base := uintptr(unsafe.Pointer(&p.slots[0]))
	off := uintptr(unsafe.Pointer(ptr)) - base
	return uint32(off / unsafe.Sizeof(p.slots[0]))
}

// Slice exposes the backing array for callers that need to hand it to
// an array-based container (list.SLL/DLL) alongside this pool's
// indices — e.g. a DLL threading pool-owned slots together. Grows and
// reallocates exactly when Add triggers a grow; callers must not
// retain a stale slice across an Add.
func (p *Pool[T, PT]) Slice() []T { return p.slots }

// Flush deallocates every slot and resets the free chain, without
// shrinking the backing array.
func (p *Pool[T, PT]) Flush() {
	p.relink(0, uint32(len(p.slots)))
	p.nextFree = 0
	p.count = 0
}

// Note: growing reallocates the backing array, invalidating any *T
// pointer obtained via Address before the grow. Callers that hold
// indices, not pointers, across an Add are unaffected — list and
// hierarchy both follow that discipline.
