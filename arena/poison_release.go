// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !dsdebug

package arena

// Without the dsdebug build tag, poisoning and contract-violation
// checks compile out entirely: a record underflow is a silent no-op
// that returns nil, leaving the arena unchanged.
func poisonRange(_ []byte, _, _ int) {}
func poisonClear(_ []byte)           {}

func popRecordUnderflow() error { return nil }
