// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package timer

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinCurrentThread locks the calling goroutine to its current OS
// thread and restricts that thread to core, mirroring
// pthread_setaffinity_np's role in PingPongReference/
// PingPongCoreIterator. Best effort: a failure to set affinity is not
// fatal here, unlike the original's FatalCleanupAndExit, since a wrong
// skew estimate is recoverable by simply not trusting Timer.Skew.
func pinCurrentThread(core int) {
	runtime.LockOSThread()

	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	_ = unix.SchedSetaffinity(0, &set)
}
