// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package hierarchy is the tree-over-an-array container (spec §4.H),
// grounded on src/containers/hierarchy_index.c: a pool-backed array of
// nodes, each a sibling of a doubly linked child list under its
// parent, with two permanently reserved indices that let every
// traversal skip a nil check — RootStub (index 0, the tree's synthetic
// top) and OrphanStub (index 1, a second reserved parent that nothing
// in this package attaches nodes to on its own).
package hierarchy

import "code.hybscloud.com/dsruntime/pool"

// RootStub and OrphanStub are permanently reserved slots, allocated
// once at construction and never removed, mirroring
// HI_ROOT_STUB_INDEX/HI_ORPHAN_STUB_INDEX.
const (
	RootStub   = 0
	OrphanStub = 1
)

// NullIndex marks the absence of a sibling/child; it aliases RootStub
// exactly as the original's HI_NULL_INDEX does (index 0 is never a
// real tree member's sibling or child because the root stub never
// gets a parent, next, or prev of its own). A top-level node's parent
// is 0, which there means the root stub itself.
const NullIndex = 0

// Linked is implemented by a pointer to any type stored in a
// Hierarchy; fields map 1:1 to struct hierarchy_index_node.
type Linked interface {
	pool.Slotted
	HParent() *uint32
	HNext() *uint32
	HPrev() *uint32
	HFirst() *uint32
	HLast() *uint32
	HChildCount() *uint32
}

// Hierarchy is a tree of T, array-indexed and pool-allocated.
type Hierarchy[T any, PT interface {
	*T
	Linked
}] struct {
	p pool.Pool[T, PT]
}

// New creates a Hierarchy with length initial slots (including the two
// reserved stubs), growable per growable.
func New[T any, PT interface {
	*T
	Linked
}](length uint32, growable bool) *Hierarchy[T, PT] {
	h := &Hierarchy[T, PT]{p: *pool.New[T, PT](length, growable)}
	h.reserveStubs()
	return h
}

func (h *Hierarchy[T, PT]) reserveStubs() {
	root, err := h.p.Add()
	if err != nil || root != RootStub {
		panic("hierarchy: failed to reserve root stub")
	}
	orphan, err := h.p.Add()
	if err != nil || orphan != OrphanStub {
		panic("hierarchy: failed to reserve orphan stub")
	}
}

// Flush deallocates every node and re-reserves the two stubs.
func (h *Hierarchy[T, PT]) Flush() {
	h.p.Flush()
	h.reserveStubs()
}

// Address returns a pointer to the node at index.
func (h *Hierarchy[T, PT]) Address(index uint32) *T { return h.p.Address(index) }

// Index returns the index of ptr.
func (h *Hierarchy[T, PT]) Index(ptr *T) uint32 { return h.p.Index(ptr) }

// Len returns the backing pool's slot count.
func (h *Hierarchy[T, PT]) Len() int { return h.p.Len() }

func (h *Hierarchy[T, PT]) node(index uint32) PT { return PT(h.p.Address(index)) }

// Add allocates a node as the new last child of parentIndex.
func (h *Hierarchy[T, PT]) Add(parentIndex uint32) (index uint32, err error) {
	idx, err := h.p.Add()
	if err != nil {
		return 0, err
	}

	parent := h.node(parentIndex)
	newNode := h.node(idx)

	*parent.HChildCount()++
	*newNode.HChildCount() = 0
	*newNode.HParent() = parentIndex
	*newNode.HPrev() = *parent.HLast()
	*newNode.HNext() = NullIndex
	*newNode.HFirst() = NullIndex
	*newNode.HLast() = NullIndex

	if *parent.HLast() != NullIndex {
		prev := h.node(*parent.HLast())
		*parent.HLast() = idx
		*prev.HNext() = idx
	} else {
		*parent.HFirst() = idx
		*parent.HLast() = idx
	}

	return idx, nil
}

// unlinkFromParent detaches index from its parent's sibling chain and
// decrements the parent's child count, without touching index's own
// child list. Used by Remove.
func (h *Hierarchy[T, PT]) unlinkFromParent(index uint32) {
	node := h.node(index)
	prevIdx, nextIdx := *node.HPrev(), *node.HNext()

	parent := h.node(*node.HParent())
	*parent.HChildCount()--

	if prevIdx != NullIndex && nextIdx != NullIndex {
		prev, next := h.node(prevIdx), h.node(nextIdx)
		*prev.HNext() = nextIdx
		*next.HPrev() = prevIdx
		return
	}

	switch {
	case *parent.HFirst() == *parent.HLast():
		*parent.HFirst() = NullIndex
		*parent.HLast() = NullIndex
	case *parent.HFirst() == index:
		*parent.HFirst() = nextIdx
		*h.node(nextIdx).HPrev() = NullIndex
	default:
		*parent.HLast() = prevIdx
		*h.node(prevIdx).HNext() = NullIndex
	}
}

// Remove deallocates node_index and its entire sub-hierarchy,
// iterating with an explicit stack rather than recursion (the
// original's guard against stack overflow on a deep or wide
// sub-hierarchy). scratch is reused as the stack's backing storage,
// grown by append if the sub-hierarchy exceeds its capacity — the Go
// analogue of the original's try-arena-then-malloc fallback, since Go
// slices already grow safely without a second allocator path.
func (h *Hierarchy[T, PT]) Remove(scratch []uint32, index uint32) {
	node := h.node(index)
	if first := *node.HFirst(); first != NullIndex {
		stack := append(scratch[:0], first)
		for len(stack) > 0 {
			sub := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			subNode := h.node(sub)
			if c := *subNode.HFirst(); c != NullIndex {
				stack = append(stack, c)
			}
			if n := *subNode.HNext(); n != NullIndex {
				stack = append(stack, n)
			}
			h.p.Remove(sub)
		}
	}

	h.unlinkFromParent(index)
	h.p.Remove(index)
}
