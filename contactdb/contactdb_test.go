// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package contactdb_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/dsruntime/contactdb"
)

type manifold struct{ depth float32 }
type satState struct{ axis [3]float32 }

func TestAddContactLinksBothBodies(t *testing.T) {
	db := contactdb.New[manifold, satState](8)

	idx, isNew, err := db.AddContact(3, 1, manifold{depth: 0.1})
	require.NoError(t, err)
	require.True(t, isNew)

	again, isNew, err := db.AddContact(1, 3, manifold{depth: 0.2})
	require.NoError(t, err)
	require.False(t, isNew)
	require.Equal(t, idx, again)

	got, ok := db.LookupContact(1, 3)
	require.True(t, ok)
	require.Equal(t, idx, got)
}

func TestAddContactMultiplePerBody(t *testing.T) {
	db := contactdb.New[manifold, satState](8)

	_, _, err := db.AddContact(0, 1, manifold{})
	require.NoError(t, err)
	_, _, err = db.AddContact(0, 2, manifold{})
	require.NoError(t, err)
	_, _, err = db.AddContact(0, 3, manifold{})
	require.NoError(t, err)

	_, ok := db.LookupContact(0, 2)
	require.True(t, ok)
}

func TestRemoveBodyContactsClearsAllChains(t *testing.T) {
	db := contactdb.New[manifold, satState](8)

	_, _, _ = db.AddContact(0, 1, manifold{})
	_, _, _ = db.AddContact(0, 2, manifold{})
	_, _, _ = db.AddContact(1, 2, manifold{})

	db.RemoveBodyContacts(0)

	_, ok := db.LookupContact(0, 1)
	require.False(t, ok)
	_, ok = db.LookupContact(0, 2)
	require.False(t, ok)

	idx, ok := db.LookupContact(1, 2)
	require.True(t, ok, "contact not touching body 0 must survive")
	require.NotZero(t, idx+1)
}

func TestRemoveStaticContactsReportsDistinctIslands(t *testing.T) {
	db := contactdb.New[manifold, satState](8)

	_, _, _ = db.AddContact(5, 1, manifold{})
	_, _, _ = db.AddContact(5, 2, manifold{})
	_, _, _ = db.AddContact(5, 3, manifold{})

	// bodies 1 and 2 share island 100, body 3 is alone in island 200.
	bodyIsland := map[uint32]uint32{1: 100, 2: 100, 3: 200}
	marked := map[uint32]bool{}

	affected := db.RemoveStaticContactsAndReportIslands(5,
		func(peerBody uint32) uint32 { return bodyIsland[peerBody] },
		func(islandID uint32) (bool, func()) {
			already := marked[islandID]
			return already, func() { marked[islandID] = true }
		})

	require.ElementsMatch(t, []uint32{100, 200}, affected)
	_, ok := db.LookupContact(5, 1)
	require.False(t, ok)
}

func TestSatCacheAddLookupAndFrameSweep(t *testing.T) {
	db := contactdb.New[manifold, satState](8)

	require.NoError(t, db.AddSat(2, 7, satState{axis: [3]float32{1, 0, 0}}))

	state, ok := db.LookupSat(7, 2)
	require.True(t, ok)
	require.Equal(t, float32(1), state.axis[0])

	// AddSat and LookupSat touched it, so the first ClearFrame keeps it
	// and clears the flag; not touched in the following frame, the
	// second ClearFrame should evict it.
	db.ClearFrame()
	db.ClearFrame()
	_, ok = db.LookupSat(2, 7)
	require.False(t, ok)
}

func TestSatCacheSurvivesFrameWhenTouched(t *testing.T) {
	db := contactdb.New[manifold, satState](8)
	require.NoError(t, db.AddSat(2, 7, satState{}))

	// LookupSat marks the entry touched; ClearFrame must keep it, then
	// clear the touched flag for the next sweep.
	_, ok := db.LookupSat(2, 7)
	require.True(t, ok)
	db.ClearFrame()

	_, ok = db.LookupSat(2, 7)
	require.True(t, ok)
}

func TestUpdatePersistentContactsUsage(t *testing.T) {
	db := contactdb.New[manifold, satState](8)
	_, _, err := db.AddContact(0, 1, manifold{})
	require.NoError(t, err)

	db.UpdatePersistentContactsUsage()
}
