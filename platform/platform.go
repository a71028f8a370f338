// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

// Package platform is the facade component (spec §4.A): page size,
// logical core count, cpuid flags, virtual-memory reserve/remap/release,
// double mapping for the ring, monotonic clock access and the counting
// semaphore primitive every blocking component in this module is built
// on. Everything above this package reaches the OS only through it.
package platform

import (
	"fmt"
	"runtime"
	"time"

	"github.com/klauspost/cpuid/v2"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"code.hybscloud.com/dsruntime"
)

// Platform is process-wide, read-only-after-init state: page size,
// logical core count and cpuid flags. Created once by the owning
// application via Init; never a package-level implicit singleton.
type Platform struct {
	pageSize     uintptr
	logicalCores int
	tscInvariant bool
	log          *zap.Logger
}

// Option configures Init.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger injects the ambient structured logger used for bootstrap
// diagnostics (see SPEC_FULL §10.1). Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Init latches GOMAXPROCS from the container CPU quota (so the logical
// core count the timer's per-core skew calibration iterates over
// reflects what the scheduler can actually place, not the host's raw
// CPU count), detects cpuid's invariant-TSC flag, and records the OS
// page size.
func Init(opts ...Option) (*Platform, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		o.logger.Sugar().Debugf(format, args...)
	})); err != nil {
		o.logger.Warn("automaxprocs: failed to set GOMAXPROCS from cgroup quota", zap.Error(err))
	}

	p := &Platform{
		pageSize:     uintptr(unix.Getpagesize()),
		logicalCores: runtime.GOMAXPROCS(0),
		tscInvariant: cpuid.CPU.Supports(cpuid.TSCINV),
		log:          o.logger,
	}
	dsruntime.SetPageSize(int(p.pageSize))
	return p, nil
}

// PageSize returns the OS page size in bytes.
func (p *Platform) PageSize() uintptr { return p.pageSize }

// LogicalCores returns the number of logical cores the scheduler may
// place goroutines on (post GOMAXPROCS latch).
func (p *Platform) LogicalCores() int { return p.logicalCores }

// TSCInvariant reports whether the CPU exposes an invariant TSC
// (constant rate, unaffected by core power state). When false, timer
// falls back to monotonic-only mode per spec §4.L's closing paragraph.
func (p *Platform) TSCInvariant() bool { return p.tscInvariant }

// Logger returns the ambient structured logger injected at Init.
func (p *Platform) Logger() *zap.Logger { return p.log }

// MonotonicNs returns a monotonic nanosecond timestamp. Go's
// runtime-internal monotonic clock (carried inside time.Time since
// Go 1.9) is the portable equivalent of clock_gettime(CLOCK_MONOTONIC_RAW);
// timer.New anchors its wall/TSC sync point against this. The value
// counts from an arbitrary process-local origin, not the Unix epoch.
func MonotonicNs() int64 {
	return int64(time.Since(monotonicOrigin))
}

var monotonicOrigin = time.Now()

// ReserveAligned reserves a zero-filled, page-aligned virtual memory
// region of size bytes (rounded up to the page size), with an optional
// transparent-huge-page hint. Mirrors the original's
// reserve_aligned(bytes, huge_hint) contract.
func (p *Platform) ReserveAligned(size int, hugeHint bool) ([]byte, error) {
	n := alignUp(size, int(p.pageSize))
	b, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("platform: mmap reserve %d bytes: %w", n, err)
	}
	if hugeHint {
		// Best effort: MADV_HUGEPAGE is advisory, failure is not fatal.
		_ = unix.Madvise(b, unix.MADV_HUGEPAGE)
	}
	return b, nil
}

// Remap expands or relocates a previously-reserved region in place
// when possible. On failure the caller's fatal-cleanup path (per spec
// §7) is expected to run; Remap itself only reports the error.
func (p *Platform) Remap(b []byte, newSize int) ([]byte, error) {
	n := alignUp(newSize, int(p.pageSize))
	out, err := unix.Mremap(b, n, unix.MREMAP_MAYMOVE)
	if err != nil {
		return nil, fmt.Errorf("platform: mremap to %d bytes: %w", n, err)
	}
	return out, nil
}

// Release returns a reserved region's pages to the OS.
func (p *Platform) Release(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if err := unix.Munmap(b); err != nil {
		return fmt.Errorf("platform: munmap: %w", err)
	}
	return nil
}

func alignUp(n, align int) int {
	if align <= 0 {
		return n
	}
	return (n + align - 1) &^ (align - 1)
}
