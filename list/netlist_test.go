// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package list_test

import (
	"testing"

	"code.hybscloud.com/dsruntime/list"
	"code.hybscloud.com/dsruntime/pool"
)

// contact mirrors contact_database.c's struct contact: a node that
// belongs to two independent chains simultaneously, one per endpoint
// body, with symmetric side resolution (side 0 is always this
// contact's relationship to body 0, side 1 to body 1).
type contact struct {
	state pool.SlotState
	next  [2]uint32
	prev  [2]uint32
	body0 uint32
	body1 uint32
}

func (c *contact) PoolState() *pool.SlotState { return &c.state }
func (c *contact) NetNext() *[2]uint32        { return &c.next }
func (c *contact) NetPrev() *[2]uint32        { return &c.prev }

func newContactNet(length uint32) *list.NetList[contact, *contact] {
	return list.New[contact, *contact](length, true,
		list.SymmetricResolver[contact, *contact],
		list.SymmetricResolver[contact, *contact])
}

func TestNetListAddRemove(t *testing.T) {
	net := newContactNet(8)

	i0, err := net.Add(contact{body0: 10, body1: 20}, list.NullIndex, list.NullIndex)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	i1, err := net.Add(contact{body0: 10, body1: 30}, i0, list.NullIndex)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	// i1 is now head of body0's chain (side 0), i0 is head of body1's
	// chain (side 1) and second in body0's chain.
	if net.Address(i1).next[0] != i0 {
		t.Fatalf("i1's side-0 next = %d, want %d", net.Address(i1).next[0], i0)
	}
	if net.Address(i0).prev[0] != i1 {
		t.Fatalf("i0's side-0 prev = %d, want %d", net.Address(i0).prev[0], i1)
	}

	net.Remove(i1)
	if net.Address(i0).prev[0] != list.NullIndex {
		t.Fatalf("removing i1 should clear i0's side-0 prev, got %d", net.Address(i0).prev[0])
	}
}
