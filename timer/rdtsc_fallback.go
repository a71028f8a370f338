// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !amd64

package timer

// On non-amd64 targets there is no RDTSC(P) instruction; Timer always
// runs in monotonic-only mode (see Platform.TSCInvariant's fallback
// contract in spec §4.L's closing paragraph) and these are never
// called.
func rdtscp() (tsc uint64, aux uint32) { return 0, 0 }
func rdtsc() uint64                    { return 0 }

const haveRdtsc = false
