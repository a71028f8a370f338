// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package memslot is the heap-slot allocator (spec §4.B): a
// page-aligned region with an optional huge-page hint, exposed as an
// opaque Slot recording base+size+hint. Grounded on struct memSlot and
// ds_Alloc/ds_Realloc/ds_Free in original_source/src/base/ds_allocator.c.
package memslot

import (
	"code.hybscloud.com/dsruntime/internal/dserr"
	"code.hybscloud.com/dsruntime/platform"
)

// Slot is an opaque page-aligned memory region. The zero value is not
// valid; obtain one via Heap.Alloc.
type Slot struct {
	Bytes    []byte
	HugeHint bool
}

// Heap allocates, grows and releases Slots against a Platform. It
// carries no state of its own beyond the platform handle, matching
// the original's g_mem_config being a thin wrapper over the platform
// VM primitives rather than an allocator with its own bookkeeping.
type Heap struct {
	plat *platform.Platform
}

// NewHeap returns a Heap bound to plat.
func NewHeap(plat *platform.Platform) *Heap {
	return &Heap{plat: plat}
}

// Alloc reserves a zero-filled, page-aligned region of at least size
// bytes.
func (h *Heap) Alloc(size int, hugeHint bool) (Slot, error) {
	if size <= 0 {
		return Slot{}, dserr.ErrOutOfMemory
	}
	b, err := h.plat.ReserveAligned(size, hugeHint)
	if err != nil {
		return Slot{}, err
	}
	return Slot{Bytes: b, HugeHint: hugeHint}, nil
}

// Realloc grows or shrinks slot in place when the platform can, else
// relocates it; the original's contract ("on failure terminates
// fatally") is relaxed here to a returned error — callers that want
// the original's fatal behaviour should route the error through
// dserr.Fatal, since a Go library must not call os.Exit on a caller's
// behalf.
func (h *Heap) Realloc(slot Slot, newSize int) (Slot, error) {
	b, err := h.plat.Remap(slot.Bytes, newSize)
	if err != nil {
		return Slot{}, err
	}
	return Slot{Bytes: b, HugeHint: slot.HugeHint}, nil
}

// Free returns slot's pages to the OS. slot is passed by value, so
// Free does not clear the caller's Slot; the caller drops its
// reference to slot.Bytes itself.
func (h *Heap) Free(slot Slot) error {
	return h.plat.Release(slot.Bytes)
}
