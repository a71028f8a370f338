// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package contactdb is the contact database (spec §4.I), grounded on
// src/math/dynamics/contact_database.c: a fingerprint (body-pair)
// keyed map onto a net list of contacts, so a contact can be threaded
// simultaneously into both of its endpoint bodies' per-body chains; a
// per-frame/persistent bit-vector sweep distinguishes contacts that
// survived a frame from stale ones; and a SAT (separating axis
// theorem) result cache with its own touched/untouched sweep, indexed
// by the same body-pair fingerprint.
//
// Go's built-in map replaces the original's custom open-addressing
// hash_map: no hash-map library appears anywhere in the example pack,
// and a body-pair-to-index lookup has no performance requirement this
// module's spec calls out, so the standard map is the idiomatic choice
// rather than a hand-rolled table.
package contactdb

import (
	"code.hybscloud.com/dsruntime/bitvector"
	"code.hybscloud.com/dsruntime/list"
	"code.hybscloud.com/dsruntime/pool"
)

// pairKey packs an ordered body-index pair into a single fingerprint,
// grounded on key_gen_u32_u32/CONTACT_KEY_TO_BODY_0/1.
func pairKey(b0, b1 uint32) uint64 { return uint64(b0)<<32 | uint64(b1) }

func keyBody0(key uint64) uint32 { return uint32(key >> 32) }
func keyBody1(key uint64) uint32 { return uint32(key) }

func orderBodies(i1, i2 uint32) (b0, b1 uint32) {
	if i1 < i2 {
		return i1, i2
	}
	return i2, i1
}

// Contact is a node in the contact net list. M is the caller's
// narrow-phase manifold payload (spec's contact_manifold), opaque to
// this package.
type Contact[M any] struct {
	state pool.SlotState
	next  [2]uint32
	prev  [2]uint32

	Key      uint64
	Manifold M
}

func (c *Contact[M]) PoolState() *pool.SlotState { return &c.state }
func (c *Contact[M]) NetNext() *[2]uint32        { return &c.next }
func (c *Contact[M]) NetPrev() *[2]uint32        { return &c.prev }

// Body0 and Body1 return the contact's ordered endpoint bodies
// (Body0 < Body1).
func (c *Contact[M]) Body0() uint32 { return keyBody0(c.Key) }
func (c *Contact[M]) Body1() uint32 { return keyBody1(c.Key) }

func sideBody(key uint64, side int) uint32 {
	if side == 0 {
		return keyBody0(key)
	}
	return keyBody1(key)
}

// contactResolver returns a list.PeerResolver that looks up the
// neighbor referenced by which(c)[side] and determines which of the
// neighbor's two sides shares the same body, grounded on
// c_db_index_in_previous_contact_node/c_db_index_in_next_contact_node:
// a contact's two chains are not symmetric, since the neighbor it
// shares a body with may hold that body on either of its own sides.
func contactResolver[M any](which func(*Contact[M]) *[2]uint32) list.PeerResolver[Contact[M], *Contact[M]] {
	return func(nl *list.NetList[Contact[M], *Contact[M]], node uint32, side int) (peer uint32, peerSide int) {
		c := nl.Address(node)
		body := sideBody(c.Key, side)
		peer = which(c)[side]
		if peer == list.NullIndex {
			return peer, 0
		}
		neighbor := nl.Address(peer)
		if keyBody0(neighbor.Key) == body {
			return peer, 0
		}
		return peer, 1
	}
}

// DB is the contact database: fingerprint-keyed contacts threaded into
// per-body chains, plus a SAT cache sharing the same fingerprint
// space. S is the SAT cache's caller-supplied payload type.
type DB[M any, S any] struct {
	net      *list.NetList[Contact[M], *Contact[M]]
	byKey    map[uint64]uint32
	bodyHead map[uint32]uint32

	frameUsage      *bitvector.BitVector
	persistentUsage *bitvector.BitVector

	sat      pool.Pool[SatCache[S], *SatCache[S]]
	satList  *list.DLL[SatCache[S], *SatCache[S]]
	satByKey map[uint64]uint32
}

// New creates a DB sized for size contacts and SAT cache entries
// (power-of-two, matching the original's is_power_of_two assertion),
// growable.
func New[M any, S any](size uint32) *DB[M, S] {
	db := &DB[M, S]{
		byKey:           make(map[uint64]uint32, size),
		bodyHead:        make(map[uint32]uint32, size),
		frameUsage:      bitvector.New(int(size)),
		persistentUsage: bitvector.New(int(size)),
		sat:             *pool.New[SatCache[S], *SatCache[S]](size, true),
		satList:         list.NewDLL[SatCache[S], *SatCache[S]](),
		satByKey:        make(map[uint64]uint32, size),
	}
	db.net = list.New[Contact[M], *Contact[M]](size, true,
		contactResolver[M](func(c *Contact[M]) *[2]uint32 { return c.NetPrev() }),
		contactResolver[M](func(c *Contact[M]) *[2]uint32 { return c.NetNext() }))
	return db
}

func (db *DB[M, S]) bodyHeadOr(body uint32) uint32 {
	if idx, ok := db.bodyHead[body]; ok {
		return idx
	}
	return list.NullIndex
}

// LookupContact returns the contact between i1 and i2, and whether it
// exists.
func (db *DB[M, S]) LookupContact(i1, i2 uint32) (index uint32, ok bool) {
	b0, b1 := orderBodies(i1, i2)
	index, ok = db.byKey[pairKey(b0, b1)]
	return index, ok
}

// AddContact adds or refreshes the contact between i1 and i2 with
// manifold, grounded on c_db_add_contact: a fresh contact is spliced
// onto the head of both bodies' chains; an existing one just has its
// manifold replaced and its frame-usage bit set.
func (db *DB[M, S]) AddContact(i1, i2 uint32, manifold M) (index uint32, isNew bool, err error) {
	b0, b1 := orderBodies(i1, i2)
	key := pairKey(b0, b1)

	if idx, ok := db.byKey[key]; ok {
		c := db.net.Address(idx)
		c.Manifold = manifold
		db.frameUsage.Set(int(idx), true)
		return idx, false, nil
	}

	h0, h1 := db.bodyHeadOr(b0), db.bodyHeadOr(b1)
	idx, err := db.net.Add(Contact[M]{Key: key, Manifold: manifold}, h0, h1)
	if err != nil {
		return 0, false, err
	}
	db.bodyHead[b0] = idx
	db.bodyHead[b1] = idx
	db.byKey[key] = idx
	if int(idx) >= db.frameUsage.Len() {
		db.frameUsage.Grow(int(idx) + 1)
	}
	db.frameUsage.Set(int(idx), true)
	return idx, true, nil
}

// RemoveContact removes a single known contact by index.
func (db *DB[M, S]) RemoveContact(index uint32) {
	c := db.net.Address(index)
	b0, b1 := c.Body0(), c.Body1()
	if db.bodyHead[b0] == index {
		db.bodyHead[b0] = c.next[0]
	}
	if db.bodyHead[b1] == index {
		db.bodyHead[b1] = c.next[1]
	}
	delete(db.byKey, c.Key)
	db.net.Remove(index)
}

// RemoveBodyContacts removes every contact touching body, releasing
// each one's SAT cache entry too, grounded on
// c_db_remove_body_contacts.
func (db *DB[M, S]) RemoveBodyContacts(body uint32) {
	ci := db.bodyHeadOr(body)
	delete(db.bodyHead, body)

	for ci != list.NullIndex {
		c := db.net.Address(ci)
		db.removeSatForKey(c.Key)

		var nextSide int
		var peerBody uint32
		if body == c.Body0() {
			nextSide = 0
			peerBody = c.Body1()
		} else {
			nextSide = 1
			peerBody = c.Body0()
		}
		if db.bodyHead[peerBody] == ci {
			db.bodyHead[peerBody] = c.next[1-nextSide]
		}
		next := c.next[nextSide]

		db.persistentUsage.Set(int(ci), false)
		delete(db.byKey, c.Key)
		db.net.Remove(ci)
		ci = next
	}
}

// RemoveStaticContactsAndReportIslands removes every contact touching
// staticBody, grounded on
// c_db_remove_static_contacts_and_store_affected_islands: the
// original writes each affected dynamic body's island id into a
// caller-provided output buffer, deduplicated via an
// ISLAND_SPLIT-equivalent "already recorded" bit it reads and sets on
// the island record itself. contactdb has no island type of its own,
// so bodyIsland resolves a peer body to its island id and
// reportIsland performs the dedup check-and-mark (returning whether
// the island was already recorded, and a mark function to call when
// it was not); RemoveStaticContactsAndReportIslands returns the
// distinct island ids it newly reported, in removal order.
func (db *DB[M, S]) RemoveStaticContactsAndReportIslands(
	staticBody uint32,
	bodyIsland func(peerBody uint32) uint32,
	reportIsland func(islandID uint32) (alreadyMarked bool, mark func()),
) (affected []uint32) {
	ci := db.bodyHeadOr(staticBody)
	delete(db.bodyHead, staticBody)

	for ci != list.NullIndex {
		c := db.net.Address(ci)
		var nextSide int
		var peerBody uint32
		if staticBody == c.Body0() {
			nextSide = 0
			peerBody = c.Body1()
		} else {
			nextSide = 1
			peerBody = c.Body0()
		}
		if db.bodyHead[peerBody] == ci {
			db.bodyHead[peerBody] = c.next[1-nextSide]
		}
		next := c.next[nextSide]

		island := bodyIsland(peerBody)
		if already, mark := reportIsland(island); !already {
			mark()
			affected = append(affected, island)
		}

		db.persistentUsage.Set(int(ci), false)
		delete(db.byKey, c.Key)
		db.net.Remove(ci)
		ci = next
	}
	return affected
}

// ClearFrame resets per-frame bookkeeping and sweeps the SAT cache,
// grounded on c_db_clear_frame: any SAT entry not touched this frame
// is evicted.
func (db *DB[M, S]) ClearFrame() {
	db.frameUsage = bitvector.New(db.frameUsage.Len())

	for i := db.satList.First(); i != list.NullIndex; {
		entry := db.sat.Address(i)
		next := *entry.DLLNext()
		if entry.Touched {
			entry.Touched = false
		} else {
			db.satList.Remove(db.sat.Slice(), i)
			delete(db.satByKey, entry.Key)
			db.sat.Remove(i)
		}
		i = next
	}
}

// UpdatePersistentContactsUsage copies the frame usage bit-vector into
// the persistent one and grows it to match any newly grown contact
// pool capacity, grounded on c_db_update_persistent_contacts_usage.
func (db *DB[M, S]) UpdatePersistentContactsUsage() {
	db.persistentUsage.CopyFrom(db.frameUsage)
	if netLen := db.net.Len(); db.persistentUsage.Len() < netLen {
		db.persistentUsage.Grow(netLen)
	}
}
