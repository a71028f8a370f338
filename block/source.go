// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package block

import (
	"code.hybscloud.com/dsruntime/memslot"
)

// ArenaSource adapts an Allocator to arena.Source, resolving spec's
// Open Question (§9): ArenaAlloc1MB draws a fixed-size block from a
// 1 MB-class Allocator rather than taking a fresh page-aligned slot.
// Declared here (not in package arena) to avoid an import cycle, since
// arena.Source is just the two-method shape block.Allocator already
// has a natural implementation of.
type ArenaSource struct {
	alloc *Allocator
}

// NewArenaSource wraps alloc (expected to be a 1 MB fixed-size class)
// as an arena.Source.
func NewArenaSource(alloc *Allocator) *ArenaSource {
	return &ArenaSource{alloc: alloc}
}

// Reserve ignores hint — the block allocator only ever hands out its
// one fixed class size — and blocks until a block is available.
func (s *ArenaSource) Reserve(_ int) (memslot.Slot, error) {
	b := s.alloc.AllocBlocking()
	return memslot.Slot{Bytes: b}, nil
}

// Release returns slot's backing block to the allocator.
func (s *ArenaSource) Release(slot memslot.Slot) error {
	s.alloc.Free(slot.Bytes)
	return nil
}
