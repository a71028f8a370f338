// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hierarchy

import (
	"unsafe"

	"code.hybscloud.com/dsruntime/arena"
)

// Iterator walks root and its entire sub-hierarchy depth-first,
// grounded on hierarchy_index_iterator_init/next_df/skip. The index
// stack starts backed by a caller-supplied arena record and grows via
// ordinary Go slice append; append transparently falls back to a fresh
// heap allocation once the arena-backed capacity is exhausted, which
// is this iterator's analogue of the original's forced_malloc path —
// ForcedMalloc reports whether that happened, exactly as the original
// asks the caller to check after iterating.
type Iterator[T any, PT interface {
	*T
	Linked
}] struct {
	h            *Hierarchy[T, PT]
	ar           *arena.Arena
	rec          int
	stack        []uint32
	arenaBacked  uintptr
	forcedMalloc bool
}

// NewIterator pushes a record on ar (so Release can pop it), reserves
// all of ar's remaining space as stack storage, then seeds the stack
// with root.
func NewIterator[T any, PT interface {
	*T
	Linked
}](ar *arena.Arena, h *Hierarchy[T, PT], root uint32) (*Iterator[T, PT], error) {
	if root == NullIndex {
		panic("hierarchy: iterator root must not be NullIndex")
	}
	rec := ar.PushRecord()

	it := &Iterator[T, PT]{h: h, ar: ar, rec: rec}
	if buf, err := ar.PushAll(int(unsafe.Sizeof(uint32(0)))); err == nil && len(buf) >= 4 {
		n := len(buf) / 4
		backing := unsafe.Slice((*uint32)(unsafe.Pointer(&buf[0])), n)
		it.stack = backing[:0]
		it.arenaBacked = uintptr(unsafe.Pointer(&backing[0]))
	} else {
		it.forcedMalloc = true
		it.stack = make([]uint32, 0, 64)
	}

	it.stack = append(it.stack, root)
	it.checkForcedMalloc()
	return it, nil
}

// checkForcedMalloc detects that append reallocated the stack off of
// its original arena-backed storage.
func (it *Iterator[T, PT]) checkForcedMalloc() {
	if it.forcedMalloc || len(it.stack) == 0 {
		return
	}
	if uintptr(unsafe.Pointer(&it.stack[0])) != it.arenaBacked {
		it.forcedMalloc = true
	}
}

// ForcedMalloc reports whether the stack outgrew its arena-backed
// capacity and fell back to a heap allocation.
func (it *Iterator[T, PT]) ForcedMalloc() bool { return it.forcedMalloc }

// Release pops the arena record taken at construction.
func (it *Iterator[T, PT]) Release() {
	_ = it.ar.PopRecord()
}

// Peek returns the next index to be visited without advancing.
func (it *Iterator[T, PT]) Peek() uint32 {
	return it.stack[len(it.stack)-1]
}

// NextDF returns the next index in depth-first order and pushes its
// unvisited sibling and first child, if any.
func (it *Iterator[T, PT]) NextDF() uint32 {
	top := len(it.stack) - 1
	next := it.stack[top]
	it.stack = it.stack[:top]

	node := it.h.node(next)
	if n := *node.HNext(); n != NullIndex {
		it.stack = append(it.stack, n)
	}
	if c := *node.HFirst(); c != NullIndex {
		it.stack = append(it.stack, c)
	}
	it.checkForcedMalloc()
	return next
}

// Skip discards the subtree rooted at the next index without visiting
// it, advancing to its next sibling if one exists.
func (it *Iterator[T, PT]) Skip() {
	top := len(it.stack) - 1
	node := it.h.node(it.stack[top])
	if n := *node.HNext(); n != NullIndex {
		it.stack[top] = n
		return
	}
	it.stack = it.stack[:top]
}

// Len returns the number of indices remaining to visit.
func (it *Iterator[T, PT]) Len() int { return len(it.stack) }
