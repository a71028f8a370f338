// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package list_test

import (
	"testing"

	"code.hybscloud.com/dsruntime/list"
)

type sllNode struct {
	next  uint32
	value int
}

func (n *sllNode) SLLNext() *uint32 { return &n.next }

func TestSLLAppendPrepend(t *testing.T) {
	array := make([]sllNode, 4)
	l := list.NewSLL[sllNode, *sllNode]()

	l.Prepend(array, 0) // tail
	l.Append(array, 1)  // new head
	l.Append(array, 2)  // new head

	if l.Count() != 3 {
		t.Fatalf("Count = %d, want 3", l.Count())
	}
	if l.First() != 2 {
		t.Fatalf("First = %d, want 2", l.First())
	}

	// walk from head: 2 -> 1 -> 0 -> NullIndex
	got := []uint32{}
	for i := l.First(); i != list.NullIndex; i = array[i].next {
		got = append(got, i)
	}
	want := []uint32{2, 1, 0}
	if len(got) != len(want) {
		t.Fatalf("chain length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("chain[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

type dllNode struct {
	prev, next uint32
	value      int
}

func (n *dllNode) DLLPrev() *uint32 { return &n.prev }
func (n *dllNode) DLLNext() *uint32 { return &n.next }

func TestDLLRemoveMiddle(t *testing.T) {
	array := make([]dllNode, 3)
	l := list.NewDLL[dllNode, *dllNode]()
	l.Append(array, 0)
	l.Append(array, 1)
	l.Append(array, 2)

	l.Remove(array, 1)
	if l.Count() != 2 {
		t.Fatalf("Count = %d, want 2", l.Count())
	}
	if array[0].next != 2 || array[2].prev != 0 {
		t.Fatalf("middle removal did not relink neighbors: %+v %+v", array[0], array[2])
	}
	if array[1].prev != list.NotInList || array[1].next != list.NotInList {
		t.Fatalf("removed node should be marked NotInList, got prev=%d next=%d", array[1].prev, array[1].next)
	}
}

func TestDLLRemoveHeadAndTail(t *testing.T) {
	array := make([]dllNode, 3)
	l := list.NewDLL[dllNode, *dllNode]()
	l.Append(array, 0)
	l.Append(array, 1)
	l.Append(array, 2)

	l.Remove(array, 0) // head
	if l.First() != 1 {
		t.Fatalf("First after removing head = %d, want 1", l.First())
	}
	l.Remove(array, 2) // tail
	if l.Last() != 1 {
		t.Fatalf("Last after removing tail = %d, want 1", l.Last())
	}
	l.Remove(array, 1) // sole remaining node
	if l.First() != list.NullIndex || l.Last() != list.NullIndex {
		t.Fatalf("expected empty list after removing sole node")
	}
}
