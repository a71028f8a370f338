// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build amd64

package timer

// rdtscp reads the time-stamp counter with a serializing RDTSCP,
// mirroring __rdtscp(&tmp2); aux is the processor ID hint in IA32_TSC_AUX,
// unused here but returned since RDTSCP always produces it.
func rdtscp() (tsc uint64, aux uint32)

// rdtsc reads the time-stamp counter without serializing, mirroring
// __rdtsc() used for the calibration window's end reading.
func rdtsc() uint64

const haveRdtsc = true
