// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package block

import "unsafe"

// Thread-local 256 B cache constants, named after the original's
// LOCAL_MAX_COUNT/LOCAL_FREE_LOW/LOCAL_FREE_HIGH in ds_allocator.c.
const (
	LocalMax      = 32
	LocalFreeLow  = 16
	LocalFreeHigh = 31
)

// LocalCache is a latency optimisation for one hot size class (spec
// names the 256 B class specifically): up to LocalMax freed blocks
// are kept by a single owner without touching the global atomic head,
// splicing the oldest run back in one CAS once full. Correctness does
// not depend on it — Allocator.Alloc/Free remain correct without a
// LocalCache, which is why only AllocLocal/FreeLocal engage it.
//
// Go has no portable thread-local storage; the original's per-thread
// cache becomes an explicit handle the caller owns one of per worker
// goroutine (this module's threads-are-workers model, spec §5, makes
// that a one-to-one, not an approximation) rather than an implicit
// goroutine-local lookup, which Go cannot express safely since
// goroutines migrate between OS threads.
type LocalCache struct {
	count int
	slots [LocalMax][]byte
}

// NewLocalCache returns an empty cache ready for use by AllocLocal/FreeLocal.
func NewLocalCache() *LocalCache {
	return &LocalCache{}
}

func (a *Allocator) indexOf(payload []byte) uint32 {
	base := uintptr(unsafe.Pointer(unsafe.SliceData(a.base)))
	p := uintptr(unsafe.Pointer(unsafe.SliceData(payload)))
	return uint32((p - base - uintptr(headerSize)) / uintptr(a.blockSize))
}

// AllocLocal pops from the local cache if non-empty, else falls
// through to the uncached global Alloc. Single-threaded among calls
// from the same LocalCache, so no atomics are needed for the pop
// itself.
func (a *Allocator) AllocLocal(c *LocalCache) ([]byte, error) {
	if c.count > 0 {
		c.count--
		b := c.slots[c.count]
		c.slots[c.count] = nil
		return b, nil
	}
	return a.Alloc()
}

// FreeLocal pushes payload onto the local cache. Once the cache
// reaches LocalMax, the oldest LocalFreeHigh-LocalFreeLow+1 entries
// are spliced back onto the global free list in a single CAS:
// spliceBack links them together just before publishing, so the splice
// is one atomic operation regardless of how many blocks it carries.
func (a *Allocator) FreeLocal(c *LocalCache, payload []byte) {
	if c.count < LocalMax {
		c.slots[c.count] = payload
		c.count++
		return
	}
	a.spliceBack(c.slots[:LocalFreeHigh-LocalFreeLow+1])
	copy(c.slots[:], c.slots[LocalFreeHigh-LocalFreeLow+1:c.count])
	c.count -= LocalFreeHigh - LocalFreeLow + 1
	c.slots[c.count] = payload
	c.count++
}

// spliceBack links chain (ordered oldest-locally-freed first)
// into a single free-list run and publishes it as the new global head
// in one CAS, retrying only if a concurrent Alloc/Free raced the head
// in the meantime.
func (a *Allocator) spliceBack(chain [][]byte) {
	if len(chain) == 0 {
		return
	}
	for {
		old := a.head.Load()
		next := old
		for i := len(chain) - 1; i >= 0; i-- {
			h := a.headerAt(a.indexOf(chain[i]))
			h.next.Store(next)
			next = h.id.Load()
		}
		if a.head.CompareAndSwap(old, next) {
			return
		}
	}
}
