// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pool

// GenerationSlotted is Slotted plus a generation counter, grounded on
// GENERATIONAL_POOL_SLOT_STATE: every reuse of a slot index bumps its
// generation, so a (index, generation) handle caught stale by a reader
// can be detected instead of silently aliasing a different occupant.
type GenerationSlotted interface {
	Slotted
	PoolGeneration() *uint32
}

// GenerationalPool wraps Pool, incrementing each slot's generation
// word on every Add, mirroring GPoolAdd_generational.
type GenerationalPool[T any, PT interface {
	*T
	GenerationSlotted
}] struct {
	Pool[T, PT]
}

// NewGenerational creates a GenerationalPool with length initial slots.
func NewGenerational[T any, PT interface {
	*T
	GenerationSlotted
}](length uint32, growable bool) *GenerationalPool[T, PT] {
	return &GenerationalPool[T, PT]{Pool: *New[T, PT](length, growable)}
}

// Add claims a slot exactly as Pool.Add, additionally bumping the
// slot's generation counter so previously issued handles to this index
// become distinguishable from the new occupant.
func (p *GenerationalPool[T, PT]) Add() (index uint32, generation uint32, err error) {
	idx, err := p.Pool.Add()
	if err != nil {
		return 0, 0, err
	}
	gen := PT(&p.slots[idx]).PoolGeneration()
	*gen++
	return idx, *gen, nil
}

// Generation returns the current generation of the slot at index.
func (p *GenerationalPool[T, PT]) Generation(index uint32) uint32 {
	return *PT(&p.slots[index]).PoolGeneration()
}
