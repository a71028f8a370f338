// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pool

import "code.hybscloud.com/dsruntime/internal/dserr"

// ExternalPool manages allocation over a caller-owned buffer of plain
// values, grounded on poolExternal: the free list lives in an internal
// side array parallel to Buf rather than inside T itself, for element
// types with no room for an embedded state word (spec's motivating
// example: f32, u32, vec3).
type ExternalPool[T any] struct {
	// Buf is the caller-owned backing buffer; ExternalPool never
	// reads or writes its elements, only hands out indices into it.
	// Buf must have at least Len() elements at all times; after any
	// Add that grows the pool, the caller must grow Buf to match.
	Buf []T

	state    []SlotState
	count    uint32
	nextFree uint32
	growable bool
}

// NewExternal creates an ExternalPool over buf, tracking length slots.
func NewExternal[T any](buf []T, length uint32, growable bool) *ExternalPool[T] {
	p := &ExternalPool[T]{
		Buf:      buf,
		state:    make([]SlotState, length),
		growable: growable,
	}
	p.relink(0, length)
	return p
}

func (p *ExternalPool[T]) relink(from, to uint32) {
	for i := from; i < to; i++ {
		if i+1 < to {
			p.state[i].setNext(i + 1)
		} else {
			p.state[i].setNext(poolNull)
		}
	}
}

// Len returns the number of tracked slots, which Buf must be at least
// as long as.
func (p *ExternalPool[T]) Len() int { return len(p.state) }

// Count returns the number of currently allocated slots.
func (p *ExternalPool[T]) Count() int { return int(p.count) }

// Add claims the next free index, growing the side table (doubling,
// clamped to 2^31-1) when full and growable. If growth occurs, the
// caller must grow Buf to at least Len() before using the new index.
func (p *ExternalPool[T]) Add() (index uint32, err error) {
	if p.nextFree == poolNull {
		if !p.growable {
			return 0, dserr.ErrOutOfMemory
		}
		oldLen := uint32(len(p.state))
		const maxLen = 1<<31 - 1
		if oldLen >= maxLen {
			return 0, dserr.ErrOutOfMemory
		}
		newLen := oldLen * 2
		if newLen == 0 {
			newLen = 1
		}
		if newLen > maxLen {
			newLen = maxLen
		}
		grown := make([]SlotState, newLen)
		copy(grown, p.state)
		p.state = grown
		p.relink(oldLen, newLen)
		p.nextFree = oldLen
	}
	idx := p.nextFree
	p.nextFree = p.state[idx].next()
	p.state[idx].setAllocated()
	p.count++
	return idx, nil
}

// Remove returns index to the free list.
func (p *ExternalPool[T]) Remove(index uint32) {
	p.state[index].setNext(p.nextFree)
	p.nextFree = index
	p.count--
}
