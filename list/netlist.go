// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package list

import "code.hybscloud.com/dsruntime/pool"

// NetLinked is implemented by a pointer to any type stored in a
// NetList: each node carries two independent next/prev chains (side 0
// and side 1), grounded on struct nll's pool_slot layout with
// next[2]/prev[2]. contactdb uses this for a contact node that belongs
// simultaneously to both of its two bodies' contact chains.
type NetLinked interface {
	pool.Slotted
	NetNext() *[2]uint32
	NetPrev() *[2]uint32
}

// PeerResolver locates, for node's chain side, the neighboring node
// and which of the neighbor's two sides points back at node — the Go
// shape of index_in_prev_node/index_in_next_node, which in the
// original resolve a raw slot address plus a 0/1 side index. Needed
// because a node's two chains are not symmetric in general: node's
// side-0 chain neighbor may reference node back via its own side-1
// slot (e.g. a contact's two endpoint bodies need not agree on which
// side of their own chain the contact occupies).
type PeerResolver[T any, PT interface {
	*T
	NetLinked
}] func(nl *NetList[T, PT], node uint32, side int) (peer uint32, peerSide int)

// SymmetricResolver is a PeerResolver for chains where side 0 always
// links to other nodes' side 0, and side 1 to side 1. It always follows
// the node's NetNext link, so it resolves the next-side neighbour only;
// used as a prevResolver it returns the next neighbour, not the
// previous one.
func SymmetricResolver[T any, PT interface {
	*T
	NetLinked
}](nl *NetList[T, PT], node uint32, side int) (peer uint32, peerSide int) {
	return PT(nl.Address(node)).NetNext()[side], side
}

// NetList is a net list: a pool-backed collection of nodes, each
// linked into two independent doubly linked chains simultaneously,
// grounded on nll_alloc/nll_add/nll_remove in net_list.c. Unlike SLL/
// DLL, NetList owns its backing pool (the original's nll_alloc always
// allocates from an arena or the heap, never operates over a
// caller-supplied array) because chain membership must survive pool
// growth reallocation, which only NetList's own Add/Remove can track.
type NetList[T any, PT interface {
	*T
	NetLinked
}] struct {
	p pool.Pool[T, PT]

	prevResolver PeerResolver[T, PT]
	nextResolver PeerResolver[T, PT]
}

// New creates a NetList with length initial slots. prevResolver and
// nextResolver must, given a node and a side, locate the neighboring
// node and the side of the neighbor's own chain that points back.
// SymmetricResolver serves as nextResolver for symmetric chains (both
// sides always reference the matching side); it does not resolve the
// previous neighbour.
func New[T any, PT interface {
	*T
	NetLinked
}](length uint32, growable bool, prevResolver, nextResolver PeerResolver[T, PT]) *NetList[T, PT] {
	return &NetList[T, PT]{
		p:            *pool.New[T, PT](length, growable),
		prevResolver: prevResolver,
		nextResolver: nextResolver,
	}
}

// Len returns the backing pool's slot count.
func (n *NetList[T, PT]) Len() int { return n.p.Len() }

// Address returns a pointer to the node at index.
func (n *NetList[T, PT]) Address(index uint32) *T { return n.p.Address(index) }

// Index returns the index of ptr.
func (n *NetList[T, PT]) Index(ptr *T) uint32 { return n.p.Index(ptr) }

// Add allocates a node, copies data into it, and splices it as the new
// head of chain 0 at next0 and chain 1 at next1 (NullIndex for an
// empty chain).
func (n *NetList[T, PT]) Add(data T, next0, next1 uint32) (index uint32, err error) {
	idx, err := n.p.Add()
	if err != nil {
		return 0, err
	}
	*n.p.Address(idx) = data

	node := PT(n.p.Address(idx))
	*node.NetNext() = [2]uint32{next0, next1}
	*node.NetPrev() = [2]uint32{NullIndex, NullIndex}

	nexts := [2]uint32{next0, next1}
	for side := 0; side < 2; side++ {
		if nexts[side] == NullIndex {
			continue
		}
		peer, peerSide := n.nextResolver(n, idx, side)
		PT(n.Address(peer)).NetPrev()[peerSide] = idx
	}
	return idx, nil
}

// Remove unlinks the node at index from both of its chains and
// returns its slot to the pool.
func (n *NetList[T, PT]) Remove(index uint32) {
	node := PT(n.p.Address(index))
	next := *node.NetNext()
	prev := *node.NetPrev()

	for side := 0; side < 2; side++ {
		if prev[side] != NullIndex {
			peer, peerSide := n.prevResolver(n, index, side)
			PT(n.Address(peer)).NetNext()[peerSide] = next[side]
		}
		if next[side] != NullIndex {
			peer, peerSide := n.nextResolver(n, index, side)
			PT(n.Address(peer)).NetPrev()[peerSide] = prev[side]
		}
	}

	n.p.Remove(index)
}
