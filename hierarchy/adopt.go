// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hierarchy

// AdoptNodeExclusive moves node_index's children up to become direct
// children of node_index's own parent, then reparents node_index alone
// (now childless) under new_parent_index — grounded on
// hierarchy_index_adopt_node_exclusive. Used when a node is being
// demoted out of the tree shape it headed without taking its subtree
// along.
func (h *Hierarchy[T, PT]) AdoptNodeExclusive(nodeIndex, newParentIndex uint32) {
	node := h.node(nodeIndex)
	oldParent := h.node(*node.HParent())
	next := h.node(*node.HNext())
	prev := h.node(*node.HPrev())

	*oldParent.HChildCount() += *node.HChildCount() - 1

	switch {
	case *oldParent.HFirst() == *oldParent.HLast():
		*next.HPrev() = *node.HPrev()
		*prev.HNext() = *node.HNext()
		*oldParent.HFirst() = *node.HFirst()
		*oldParent.HLast() = *node.HLast()
	case *oldParent.HFirst() == nodeIndex:
		*next.HPrev() = *node.HLast()
		if *node.HFirst() != NullIndex {
			*oldParent.HFirst() = *node.HFirst()
			*h.node(*node.HLast()).HNext() = *node.HNext()
		} else {
			*oldParent.HFirst() = *node.HNext()
		}
	case *oldParent.HLast() == nodeIndex:
		*prev.HNext() = *node.HFirst()
		if *node.HLast() != NullIndex {
			*oldParent.HLast() = *node.HLast()
			*h.node(*node.HFirst()).HPrev() = *node.HPrev()
		} else {
			*oldParent.HLast() = *node.HPrev()
		}
	default:
		if *node.HFirst() != NullIndex {
			*prev.HNext() = *node.HFirst()
			*next.HPrev() = *node.HLast()
			*h.node(*node.HFirst()).HPrev() = *node.HPrev()
			*h.node(*node.HLast()).HNext() = *node.HNext()
		} else {
			*next.HPrev() = *node.HPrev()
			*prev.HNext() = *node.HNext()
		}
	}

	for i := *node.HFirst(); i != NullIndex; {
		child := h.node(i)
		*child.HParent() = *node.HParent()
		i = *child.HNext()
	}

	h.reparentAsLastChild(nodeIndex, newParentIndex)
	*node.HChildCount() = 0
	*node.HFirst() = NullIndex
	*node.HLast() = NullIndex
}

// AdoptNode moves node_index's entire subtree out of its current
// parent's child list and in under new_parent_index, grounded on
// hierarchy_index_adopt_node.
func (h *Hierarchy[T, PT]) AdoptNode(nodeIndex, newParentIndex uint32) {
	node := h.node(nodeIndex)
	oldParent := h.node(*node.HParent())
	next := h.node(*node.HNext())
	prev := h.node(*node.HPrev())

	*oldParent.HChildCount()--
	if *node.HNext() != NullIndex {
		*next.HPrev() = *node.HPrev()
	}
	if *node.HPrev() != NullIndex {
		*prev.HNext() = *node.HNext()
	}

	switch {
	case *oldParent.HFirst() == *oldParent.HLast():
		*oldParent.HFirst() = NullIndex
		*oldParent.HLast() = NullIndex
	case *oldParent.HFirst() == nodeIndex:
		*oldParent.HFirst() = *node.HNext()
	case *oldParent.HLast() == nodeIndex:
		*oldParent.HLast() = *node.HPrev()
	}

	h.reparentAsLastChild(nodeIndex, newParentIndex)
}

// reparentAsLastChild relinks nodeIndex as the new last child of
// newParentIndex, the common tail shared by the two adoption
// primitives (Add links its new node inline).
func (h *Hierarchy[T, PT]) reparentAsLastChild(nodeIndex, newParentIndex uint32) {
	newParent := h.node(newParentIndex)
	node := h.node(nodeIndex)

	*newParent.HChildCount()++
	*node.HParent() = newParentIndex
	*node.HPrev() = *newParent.HLast()
	*node.HNext() = NullIndex

	if *newParent.HLast() != NullIndex {
		prev := h.node(*newParent.HLast())
		*newParent.HLast() = nodeIndex
		*prev.HNext() = nodeIndex
	} else {
		*newParent.HFirst() = nodeIndex
		*newParent.HLast() = nodeIndex
	}
}
