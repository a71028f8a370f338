// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package block_test

import (
	"sync"
	"testing"
	"unsafe"

	"code.hybscloud.com/iox"

	"code.hybscloud.com/dsruntime/block"
	"code.hybscloud.com/dsruntime/internal"
	"code.hybscloud.com/dsruntime/memslot"
	"code.hybscloud.com/dsruntime/platform"
)

func newAllocator(t *testing.T, payload int, cap uint32) *block.Allocator {
	t.Helper()
	plat, err := platform.Init()
	if err != nil {
		t.Fatalf("platform.Init: %v", err)
	}
	a, err := block.New(memslot.NewHeap(plat), payload, cap)
	if err != nil {
		t.Fatalf("block.New: %v", err)
	}
	return a
}

func TestAllocFreeRoundTrip(t *testing.T) {
	a := newAllocator(t, 256, 4)

	b1, err := a.Alloc()
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	b2, err := a.Alloc()
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if len(b1) != 256 || len(b2) != 256 {
		t.Fatalf("unexpected payload length")
	}
	a.Free(b1)
	a.Free(b2)

	for i := 0; i < 4; i++ {
		if _, err := a.Alloc(); err != nil {
			t.Fatalf("Alloc %d after free: %v", i, err)
		}
	}
	if _, err := a.Alloc(); err != iox.ErrWouldBlock {
		t.Fatalf("expected ErrWouldBlock once exhausted, got %v", err)
	}
}

// TestBlockABAStress is the concrete end-to-end scenario from spec §8:
// many goroutines run alloc/free cycles against a small class, and
// every goroutine's Alloc eventually succeeds without error.
func TestBlockABAStress(t *testing.T) {
	const capacity = 64
	const goroutines = 16
	const iterations = 2000

	a := newAllocator(t, 256, capacity)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var bo iox.Backoff
			for i := 0; i < iterations; i++ {
				b, err := a.Alloc()
				for err == iox.ErrWouldBlock {
					bo.Wait()
					b, err = a.Alloc()
				}
				if err != nil {
					t.Errorf("Alloc: %v", err)
					return
				}
				b[0] = 0xAB
				a.Free(b)
			}
		}()
	}
	wg.Wait()
}

// TestAllocReturnsCacheAlignedPayload is the testable property from
// spec §8: every returned pointer is cache-aligned, with the payload
// beginning one full cache line into its block.
func TestAllocReturnsCacheAlignedPayload(t *testing.T) {
	a := newAllocator(t, 256, 8)

	for i := 0; i < 8; i++ {
		b, err := a.Alloc()
		if err != nil {
			t.Fatalf("Alloc %d: %v", i, err)
		}
		addr := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
		if addr%uintptr(internal.CacheLineSize) != 0 {
			t.Fatalf("payload %d at %#x is not cache-aligned", i, addr)
		}
	}
}

func TestLocalCacheSpliceBack(t *testing.T) {
	a := newAllocator(t, 256, block.LocalMax*2)
	c := block.NewLocalCache()

	var ptrs [][]byte
	for i := 0; i < block.LocalMax*2; i++ {
		b, err := a.AllocLocal(c)
		if err != nil {
			t.Fatalf("AllocLocal %d: %v", i, err)
		}
		ptrs = append(ptrs, b)
	}
	for _, p := range ptrs {
		a.FreeLocal(c, p) // exercises the splice-back once count hits LocalMax
	}
	for i := 0; i < block.LocalMax*2; i++ {
		if _, err := a.AllocLocal(c); err != nil {
			t.Fatalf("AllocLocal after free-all, %d: %v", i, err)
		}
	}
}
