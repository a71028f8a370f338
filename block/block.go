// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package block is the lock-free fixed-size block allocator (spec
// §4.E): a single packed 64-bit (generation, index) head CAS over an
// intrusive free list threaded through cache-aligned block headers,
// ABA-safe because every Alloc records a bumped generation in the
// allocated block's own header, and Free publishes that (generation,
// index) pair as the new head.
//
// The *style* (generics, NoCopy, spin.Wait/iox.Backoff retry loop,
// cache-line padding of the head word) is carried from the teacher's
// BoundedPool; the algorithm itself is ported from
// original_source/src/base/ds_allocator.c's ThreadBlockTryAlloc/
// ThreadBlockTryFree, which is a different (and simpler) construction
// than the teacher's Nikolaev-SCQ turn-tagged entries array.
package block

import (
	"sync/atomic"
	"unsafe"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/spin"

	"code.hybscloud.com/dsruntime"
	"code.hybscloud.com/dsruntime/internal"
	"code.hybscloud.com/dsruntime/memslot"
)

// header is the cache-aligned prefix of every block. id encodes the
// block's own (generation, index) as of its most recent allocation;
// next stashes the previous head word at Free time so the next Alloc
// of this slot can relink the free chain without a second atomic.
type header struct {
	id   atomic.Uint64
	next atomic.Uint64
}

// headerSize is the header struct's actual size; it is smaller than
// the cache line reserved for it (internal.CacheLineSize) since the
// payload always begins one full cache line into the block, never at
// the header struct's own tail.
const headerSize = int(unsafe.Sizeof(header{}))

// u32Max masks the index out of the head word's low 32 bits (where an
// index equal to capacity is the OOM sentinel once every block is
// allocated).
const u32Max = 1<<32 - 1

// Allocator hands out cache-aligned blocks of a single size class,
// lock-free across arbitrary producer/consumer goroutines.
type Allocator struct {
	_ dsruntime.NoCopy

	_pad0 [internal.CacheLineSize]byte
	head  atomic.Uint64 // packed generation<<32 | index
	_pad1 [internal.CacheLineSize]byte

	base       []byte
	blockSize  int // one full cache line for the header + payload, aligned up to CacheLineSize
	payload    int // requested payload size
	capacity   uint32
	backingLen int
}

// New creates an Allocator of capacity blocks, each able to hold a
// payload of payloadSize bytes, backed by a fresh slot from heap.
func New(heap *memslot.Heap, payloadSize int, capacity uint32) (*Allocator, error) {
	blockSize := internal.CacheLineSize + alignUp(payloadSize, internal.CacheLineSize)
	total := blockSize * int(capacity)
	slot, err := heap.Alloc(total, payloadSize >= 1<<20)
	if err != nil {
		return nil, err
	}
	a := &Allocator{
		base:       slot.Bytes,
		blockSize:  blockSize,
		payload:    payloadSize,
		capacity:   capacity,
		backingLen: len(slot.Bytes),
	}
	// head starts at gen=0, index=0: the bump-allocation convention
	// (gen==0 on an unallocated block means its "next" field is not
	// yet meaningful, so Alloc treats index+1 as the implicit next).
	a.head.Store(0)
	return a, nil
}

func alignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

func (a *Allocator) headerAt(idx uint32) *header {
	off := int(idx) * a.blockSize
	return (*header)(unsafe.Pointer(&a.base[off]))
}

func (a *Allocator) payloadAt(idx uint32) []byte {
	off := int(idx)*a.blockSize + internal.CacheLineSize
	return a.base[off : off+a.payload : off+a.payload]
}

// Cap returns the number of blocks in this size class.
func (a *Allocator) Cap() int { return int(a.capacity) }

// Alloc returns a payload-sized, cache-aligned slice, or
// iox.ErrWouldBlock once the class is exhausted.
func (a *Allocator) Alloc() ([]byte, error) {
	for {
		old := a.head.Load()
		gen, idx := old>>32, uint32(old&u32Max)
		if idx >= a.capacity {
			return nil, iox.ErrWouldBlock
		}
		h := a.headerAt(idx)
		var newNext uint64
		if gen == 0 {
			newNext = uint64(idx) + 1
		} else {
			newNext = h.next.Load()
		}
		if a.head.CompareAndSwap(old, newNext) {
			h.id.Store(old + (1 << 32))
			return a.payloadAt(idx), nil
		}
	}
}

// AllocBlocking spins with a backoff until Alloc succeeds.
func (a *Allocator) AllocBlocking() []byte {
	var bo iox.Backoff
	for {
		b, err := a.Alloc()
		if err == nil {
			return b
		}
		bo.Wait()
	}
}

// Free returns a block previously obtained from Alloc to the
// allocator. Freeing a pointer not owned by this allocator, or
// double-freeing, is caller error exactly as spec's Non-goals state.
func (a *Allocator) Free(payload []byte) {
	base := uintptr(unsafe.Pointer(unsafe.SliceData(a.base)))
	p := uintptr(unsafe.Pointer(unsafe.SliceData(payload)))
	idx := uint32((p - base - uintptr(internal.CacheLineSize)) / uintptr(a.blockSize))
	h := a.headerAt(idx)

	var sw spin.Wait
	for {
		old := a.head.Load()
		h.next.Store(old)
		newHead := h.id.Load()
		if a.head.CompareAndSwap(old, newHead) {
			return
		}
		sw.Once()
	}
}
