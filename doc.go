// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package dsruntime is the root of a runtime substrate: a family of
// custom allocators, a lock-free fixed-size block allocator used as a
// process-wide memory spine, intrusive generational pools and linked
// lists, a single-producer multi-consumer FIFO, a ticket factory
// gated by a counting semaphore, and a precision timing subsystem.
//
// The package itself only carries a process-wide page-size knob
// (PageSize, set by platform.Init) and a NoCopy sentinel; the actual
// components live in subpackages so each can be imported (and its
// dependency surface pulled in) independently:
//
//	platform   - page size, logical cores, cpuid flags, vm reserve/release, clocks, semaphores
//	memslot    - page-aligned heap-slot allocator
//	arena      - stack-discipline bump allocator
//	ring       - double-mapped wrap-free ring buffer
//	block      - lock-free fixed-size block allocator, ABA-safe
//	pool       - intrusive slot pool, optional generation counter, external variant
//	bitvector  - packed bit vector used by contactdb's frame/persistent sweeps
//	list       - intrusive SLL/DLL/net-list over pool slots
//	hierarchy  - tree over an array-list with sibling DLLs
//	contactdb  - fingerprint-keyed contact database with SAT cache sweep
//	fifo       - bounded single-producer/multi-consumer queue
//	ticket     - semaphore-gated monotonic ticket factory
//	timer      - wall/TSC sync, frequency calibration, per-core skew
//	dslog      - lock-free ring logger, ticket-gated, drained to file when full and at Shutdown (no timed drain)
//
// # Thread safety
//
// platform, timer and the calibration state are read-only after
// Init. block, fifo, ticket and dslog are internally synchronized and
// safe for concurrent use by design. arena, pool, list, hierarchy and
// contactdb are NOT internally synchronized: callers provide external
// synchronization if an instance is shared, exactly as upstream.
package dsruntime
