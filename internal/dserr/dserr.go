// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package dserr carries the small sentinel-error vocabulary shared
// across the allocator and concurrency packages. iox.ErrWouldBlock is
// reused directly for the "would block" control-flow case (see the
// teacher's BoundedPool.Get/Put); this package only adds the cases
// iox has no opinion on.
package dserr

import (
	"errors"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	// ErrOutOfMemory is returned by bounded allocators (arena, pool,
	// memslot) when growth is exhausted and the caller asked for a soft
	// failure rather than a fatal exit.
	ErrOutOfMemory = errors.New("dsruntime: out of memory")

	// ErrClosed is returned by the ticket factory's TryGet once the
	// factory has been closed for new producers.
	ErrClosed = errors.New("dsruntime: closed")

	// ErrCorrupt is returned by dsdebug-gated contract checks (an
	// arena record underflow in PopRecord/RemoveRecord) instead of
	// silently corrupting state. Without the dsdebug build tag these
	// checks compile out and an underflow is a silent no-op.
	ErrCorrupt = errors.New("dsruntime: corrupt state")
)

var fatalOnce atomic.Bool

// Fatal logs msg at Fatal level via logger (flushing and exiting the
// process) the first time it is called; subsequent concurrent callers
// block forever rather than racing a second exit path, mirroring the
// "process-wide CAS flag ensures exactly one thread drives cleanup"
// contract of the platform this module ports.
func Fatal(logger *zap.Logger, msg string, fields ...zap.Field) {
	if !fatalOnce.CompareAndSwap(false, true) {
		select {}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Fatal(msg, fields...)
}
