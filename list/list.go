// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package list is the intrusive-link container family (spec §4.G):
// singly linked (SLL), doubly linked (DLL), and net (NetList) lists
// threaded through index fields embedded in caller-owned slots rather
// than through heap pointers — grounded on src/containers/list.c's
// ll_*/dll_*/nll_* families. SLL and DLL operate over a caller's
// backing array by index, exactly like the original's ll_append(ll,
// array, index): the list value itself only tracks first/last/count,
// never owning storage. NetList instead owns its backing pool.
package list

// NullIndex marks the end of a chain (LL_NULL/DLL_NULL). It is never a
// valid slot index since pool.Pool caps capacity at 2^31-1.
const NullIndex = ^uint32(0)

// NotInList marks a DLL node not currently linked into any list,
// distinct from NullIndex so "end of chain" and "not in a list" remain
// separately observable, mirroring DLL_NOT_IN_LIST.
const NotInList = NullIndex - 1

// SLLLinked is implemented by a pointer to any type stored in an SLL.
type SLLLinked interface {
	SLLNext() *uint32
}

// SLL is a singly linked list: O(1) Append (the node becomes the new
// head) and Prepend (the node becomes the new tail), no O(1) arbitrary
// removal — callers needing removal
// use DLL instead.
type SLL[T any, PT interface {
	*T
	SLLLinked
}] struct {
	count       uint32
	first, last uint32
}

// NewSLL returns an empty SLL.
func NewSLL[T any, PT interface {
	*T
	SLLLinked
}]() *SLL[T, PT] {
	return &SLL[T, PT]{first: NullIndex, last: NullIndex}
}

// Flush empties the list without touching array.
func (l *SLL[T, PT]) Flush() {
	l.count = 0
	l.first = NullIndex
	l.last = NullIndex
}

// Count returns the number of linked nodes.
func (l *SLL[T, PT]) Count() int { return int(l.count) }

// First returns the head index, or NullIndex if empty.
func (l *SLL[T, PT]) First() uint32 { return l.first }

// Append links array[index] as the new head.
func (l *SLL[T, PT]) Append(array []T, index uint32) {
	l.count++
	*PT(&array[index]).SLLNext() = l.first
	l.first = index
	if l.last == NullIndex {
		l.last = index
	}
}

// Prepend links array[index] as the new tail.
func (l *SLL[T, PT]) Prepend(array []T, index uint32) {
	l.count++
	if l.last != NullIndex {
		*PT(&array[l.last]).SLLNext() = index
	} else {
		l.first = index
	}
	l.last = index
	*PT(&array[index]).SLLNext() = NullIndex
}

// DLLLinked is implemented by a pointer to any type stored in a DLL.
type DLLLinked interface {
	DLLPrev() *uint32
	DLLNext() *uint32
}

// DLL is a doubly linked list supporting O(1) removal of an arbitrary
// linked node.
type DLL[T any, PT interface {
	*T
	DLLLinked
}] struct {
	count       uint32
	first, last uint32
}

// NewDLL returns an empty DLL.
func NewDLL[T any, PT interface {
	*T
	DLLLinked
}]() *DLL[T, PT] {
	return &DLL[T, PT]{first: NullIndex, last: NullIndex}
}

// Flush empties the list without touching array.
func (l *DLL[T, PT]) Flush() {
	l.count = 0
	l.first = NullIndex
	l.last = NullIndex
}

// Count returns the number of linked nodes.
func (l *DLL[T, PT]) Count() int { return int(l.count) }

// First returns the head index, or NullIndex if empty.
func (l *DLL[T, PT]) First() uint32 { return l.first }

// Last returns the tail index, or NullIndex if empty.
func (l *DLL[T, PT]) Last() uint32 { return l.last }

// Append links array[index] as the new tail.
func (l *DLL[T, PT]) Append(array []T, index uint32) {
	l.count++
	node := PT(&array[index])
	*node.DLLPrev() = l.last
	*node.DLLNext() = NullIndex

	if l.last == NullIndex {
		l.first = index
	} else {
		*PT(&array[l.last]).DLLNext() = index
	}
	l.last = index
}

// Prepend links array[index] as the new head.
func (l *DLL[T, PT]) Prepend(array []T, index uint32) {
	l.count++
	node := PT(&array[index])
	*node.DLLPrev() = NullIndex
	*node.DLLNext() = l.first

	if l.first == NullIndex {
		l.last = index
	} else {
		*PT(&array[l.first]).DLLPrev() = index
	}
	l.first = index
}

// Remove unlinks array[index] from the list, handling the four
// canonical cases (sole node, head, tail, interior) exactly as
// dll_remove does, and marks the removed node NotInList.
func (l *DLL[T, PT]) Remove(array []T, index uint32) {
	node := PT(&array[index])
	prev, next := *node.DLLPrev(), *node.DLLNext()
	l.count--

	switch {
	case prev == NullIndex && next == NullIndex:
		l.first, l.last = NullIndex, NullIndex
	case prev == NullIndex:
		*PT(&array[next]).DLLPrev() = NullIndex
		l.first = next
	case next == NullIndex:
		*PT(&array[prev]).DLLNext() = NullIndex
		l.last = prev
	default:
		*PT(&array[prev]).DLLNext() = next
		*PT(&array[next]).DLLPrev() = prev
	}

	*node.DLLPrev() = NotInList
	*node.DLLNext() = NotInList
}

// SetNotInList marks node's link fields as unlinked without touching
// any list's first/last/count, for a node never yet appended.
func SetNotInList[T any, PT interface {
	*T
	DLLLinked
}](node *T) {
	p := PT(node)
	*p.DLLPrev() = NotInList
	*p.DLLNext() = NotInList
}
