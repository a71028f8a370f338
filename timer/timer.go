// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

// Package timer is the precision timer (spec §4.L), grounded on
// src/base/ds_time.c: a wall-clock/TSC sync point captured once at
// startup, a 100 ms busy-wait calibration window to measure the TSC's
// tick frequency, and a ping-pong calibration between logical core 0
// and every other core to estimate each core's TSC read skew relative
// to core 0. Falls back to monotonic-clock-only mode (no TSC
// conversions) when the CPU lacks an invariant TSC, per
// platform.Platform.TSCInvariant's contract.
package timer

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"code.hybscloud.com/dsruntime/platform"
)

// Timer anchors a wall-clock/TSC sync point and, when the CPU supports
// it, an invariant TSC frequency and per-core skew table.
type Timer struct {
	nsStart  int64
	tscStart uint64
	tscFreq  uint64
	skew     []int64
	precise  bool
}

// New captures the sync point and, if the platform reports an
// invariant TSC, runs the 100 ms calibration window and per-core skew
// estimation, grounded on ds_TimeApiInit.
func New(p *platform.Platform) *Timer {
	t := &Timer{nsStart: platform.MonotonicNs()}

	if !haveRdtsc || !p.TSCInvariant() {
		return t
	}

	tsc0, _ := rdtscp()
	t.tscStart = tsc0
	t.precise = true

	const calibration = 100 * time.Millisecond
	goal := time.Now().Add(calibration)
	for time.Now().Before(goal) {
	}
	end := rdtsc()
	// 1000/ms in the original's integer arithmetic, with ms = 100:
	// tsc_freq = 10 * (end - start).
	t.tscFreq = 10 * (end - tsc0)

	t.estimateSkew(p.LogicalCores())
	return t
}

// Precise reports whether this Timer has a calibrated TSC frequency
// available for Ns/Tsc conversions.
func (t *Timer) Precise() bool { return t.precise }

// NowNs returns elapsed nanoseconds since the sync point, grounded on
// ds_TimeNs.
func (t *Timer) NowNs() int64 { return platform.MonotonicNs() - t.nsStart }

// NsFromTsc converts a tick count into a duration in nanoseconds,
// grounded on NsFromTsc/SFromTsc.
func (t *Timer) NsFromTsc(tsc uint64) uint64 {
	return uint64(float64(tsc) * 1e9 / float64(t.tscFreq))
}

// TscFromNs converts a nanosecond duration into a tick count, grounded
// on TscFromNs.
func (t *Timer) TscFromNs(ns uint64) uint64 {
	return uint64(float64(ns) * float64(t.tscFreq) / 1e9)
}

// NsFromTscReading converts an absolute TSC reading into an absolute
// nanosecond timestamp relative to this Timer's sync point, grounded
// on ds_TimeNsFromTsc. tsc must not precede the sync point's reading.
func (t *Timer) NsFromTscReading(tsc uint64) int64 {
	return t.nsStart + int64(t.NsFromTsc(tsc-t.tscStart))
}

// TscFromNsReading converts an absolute nanosecond timestamp into the
// TSC reading expected at that time, grounded on ds_TimeTscFromNs. ns
// must not precede the sync point.
func (t *Timer) TscFromNsReading(ns int64) uint64 {
	return t.tscStart + t.TscFromNs(uint64(ns-t.nsStart))
}

// NsFromTscTruthSource converts tsc into a nanosecond timestamp
// relative to an arbitrary (nsTruth, ccTruth) anchor pair rather than
// this Timer's own sync point, grounded on NsFromTscTruthSource — used
// when two timers (e.g. across a process boundary) need to agree on a
// shared anchor instead of each using its own startup sync point.
func (t *Timer) NsFromTscTruthSource(tsc uint64, nsTruth int64, ccTruth uint64) int64 {
	if tsc >= ccTruth {
		return nsTruth + int64(t.NsFromTsc(tsc-ccTruth))
	}
	return nsTruth - int64(t.NsFromTsc(ccTruth-tsc))
}

// TscFromNsTruthSource is the inverse of NsFromTscTruthSource, grounded
// on TscFromNsTruthSource.
func (t *Timer) TscFromNsTruthSource(ns int64, nsTruth int64, ccTruth uint64) uint64 {
	if ns >= nsTruth {
		return ccTruth + t.TscFromNs(uint64(ns-nsTruth))
	}
	return ccTruth - t.TscFromNs(uint64(nsTruth-ns))
}

// Skew returns core's estimated TSC read skew relative to logical core
// 0, or 0 if skew estimation never ran (no TSC, or a single-core
// host).
func (t *Timer) Skew(core int) int64 {
	if core < 0 || core >= len(t.skew) {
		return 0
	}
	return t.skew[core]
}

// TscFrequency returns the calibrated tick frequency, or 0 if this
// Timer is not Precise.
func (t *Timer) TscFrequency() uint64 { return t.tscFreq }

const skewIterations = 100000

const (
	unlockedByReference = 1
	unlockedByIterator  = 2
)

// estimateSkew runs the ping-pong calibration between logical core 0
// (the reference) and every other core, grounded on
// PingPongReference/PingPongCoreIterator/TscEstimateSkew: for each
// other core, the reference and iterator threads hand a lock back and
// forth skewIterations times, each timestamping its own hand-off; the
// minimum observed (iterator_tsc - reference_tsc) across all
// iterations is that core's skew estimate, since extra scheduling
// latency can only ever make the difference larger than the true
// skew, never smaller.
func (t *Timer) estimateSkew(cores int) {
	t.skew = make([]int64, cores)
	if cores <= 1 {
		return
	}

	tscReference := make([]uint64, skewIterations)
	tscIterator := make([]uint64, skewIterations)
	var lock atomic.Uint32
	var iterationTest atomic.Uint32

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		pinCurrentThread(0)

		for core := 1; core < cores; core++ {
			iterationTest.Store(1)

			for i := 0; i < skewIterations; i++ {
				for lock.Load() != unlockedByIterator {
				}
				tscReference[i], _ = rdtscp()
				lock.Store(unlockedByReference)
			}
			for iterationTest.Load() != 0 {
			}

			minSkew := int64(math.MaxInt64)
			for i := 0; i < skewIterations; i++ {
				skew := int64(tscIterator[i] - tscReference[i])
				if skew < minSkew {
					minSkew = skew
				}
			}
			t.skew[core] = minSkew
		}
	}()

	go func() {
		defer wg.Done()

		for core := 1; core < cores; core++ {
			pinCurrentThread(core)

			for iterationTest.Load() != 1 {
			}
			lock.Store(unlockedByIterator)

			for i := 0; i < skewIterations; i++ {
				for lock.Load() != unlockedByReference {
				}
				tscIterator[i], _ = rdtscp()
				lock.Store(unlockedByIterator)
			}

			lock.Store(0)
			iterationTest.Store(0)
		}
	}()

	wg.Wait()
}
