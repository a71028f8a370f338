// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memslot_test

import (
	"testing"

	"code.hybscloud.com/dsruntime/memslot"
	"code.hybscloud.com/dsruntime/platform"
)

func TestAllocZeroFilled(t *testing.T) {
	plat, err := platform.Init()
	if err != nil {
		t.Fatalf("platform.Init: %v", err)
	}
	h := memslot.NewHeap(plat)

	s, err := h.Alloc(4096, false)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	defer h.Free(s)

	if len(s.Bytes) < 4096 {
		t.Fatalf("len(Bytes) = %d, want >= 4096", len(s.Bytes))
	}
	for i, b := range s.Bytes {
		if b != 0 {
			t.Fatalf("Bytes[%d] = %d, want 0", i, b)
		}
	}
}

func TestAllocRejectsNonPositiveSize(t *testing.T) {
	plat, err := platform.Init()
	if err != nil {
		t.Fatalf("platform.Init: %v", err)
	}
	h := memslot.NewHeap(plat)

	if _, err := h.Alloc(0, false); err == nil {
		t.Fatal("Alloc(0) should fail")
	}
	if _, err := h.Alloc(-1, false); err == nil {
		t.Fatal("Alloc(-1) should fail")
	}
}

func TestReallocGrowsAndPreservesData(t *testing.T) {
	plat, err := platform.Init()
	if err != nil {
		t.Fatalf("platform.Init: %v", err)
	}
	h := memslot.NewHeap(plat)

	s, err := h.Alloc(4096, false)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	s.Bytes[0] = 0x42

	grown, err := h.Realloc(s, 3*4096)
	if err != nil {
		t.Fatalf("Realloc: %v", err)
	}
	defer h.Free(grown)

	if len(grown.Bytes) < 3*4096 {
		t.Fatalf("len(Bytes) = %d, want >= %d", len(grown.Bytes), 3*4096)
	}
	if grown.Bytes[0] != 0x42 {
		t.Fatal("Realloc must preserve existing contents")
	}
}

func TestFreeReturnsPages(t *testing.T) {
	plat, err := platform.Init()
	if err != nil {
		t.Fatalf("platform.Init: %v", err)
	}
	h := memslot.NewHeap(plat)

	s, err := h.Alloc(4096, false)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if err := h.Free(s); err != nil {
		t.Fatalf("Free: %v", err)
	}
}
