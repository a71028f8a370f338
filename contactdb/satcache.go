// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package contactdb

import (
	"code.hybscloud.com/dsruntime/list"
	"code.hybscloud.com/dsruntime/pool"
)

// SatCache is one separating-axis-theorem result cached across frames
// for a body pair, grounded on sat_cache_pool/sat_cache_list in
// contact_database.c. S is the caller's SAT result payload (axis,
// penetration depth, or whatever the narrow phase wants to remember).
type SatCache[S any] struct {
	state pool.SlotState
	prev  uint32
	next  uint32

	Key     uint64
	Touched bool
	State   S
}

func (e *SatCache[S]) PoolState() *pool.SlotState { return &e.state }
func (e *SatCache[S]) DLLPrev() *uint32            { return &e.prev }
func (e *SatCache[S]) DLLNext() *uint32            { return &e.next }

// LookupSat returns the cached SAT state for the pair (i1, i2), and
// whether it exists, marking it touched so ClearFrame keeps it.
func (db *DB[M, S]) LookupSat(i1, i2 uint32) (state S, ok bool) {
	b0, b1 := orderBodies(i1, i2)
	idx, found := db.satByKey[pairKey(b0, b1)]
	if !found {
		return state, false
	}
	entry := db.sat.Address(idx)
	entry.Touched = true
	return entry.State, true
}

// AddSat inserts or refreshes the SAT cache entry for (i1, i2),
// grounded on sat_cache_add.
func (db *DB[M, S]) AddSat(i1, i2 uint32, state S) error {
	b0, b1 := orderBodies(i1, i2)
	key := pairKey(b0, b1)

	if idx, ok := db.satByKey[key]; ok {
		entry := db.sat.Address(idx)
		entry.State = state
		entry.Touched = true
		return nil
	}

	idx, err := db.sat.Add()
	if err != nil {
		return err
	}
	entry := db.sat.Address(idx)
	*entry = SatCache[S]{Key: key, Touched: true, State: state}
	db.satList.Append(db.sat.Slice(), idx)
	db.satByKey[key] = idx
	return nil
}

// removeSatForKey evicts the SAT cache entry for key, if any, used
// when a contact goes away so a stale SAT result never outlives its
// contact.
func (db *DB[M, S]) removeSatForKey(key uint64) {
	idx, ok := db.satByKey[key]
	if !ok {
		return
	}
	db.satList.Remove(db.sat.Slice(), idx)
	delete(db.satByKey, key)
	db.sat.Remove(idx)
}

var _ list.DLLLinked = (*SatCache[struct{}])(nil)
