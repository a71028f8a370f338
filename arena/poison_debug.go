// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build dsdebug

package arena

import "code.hybscloud.com/dsruntime/internal/dserr"

// poisonByte matches the fill value the original uses for ASAN
// poisoning at rest (see SPEC_FULL §12.1).
const poisonByte = 0xDE

// poisonRange fills a freed/popped range with the poison byte so a
// subsequent out-of-discipline read is visibly wrong rather than
// silently reading stale live data.
func poisonRange(buf []byte, lo, hi int) {
	for i := lo; i < hi; i++ {
		buf[i] = poisonByte
	}
}

// poisonClear is a no-op placeholder kept symmetric with poisonRange;
// freshly pushed memory is left as-is (the caller is about to write
// it) rather than unpoisoned byte-by-byte, since Push already slices
// exactly the live region.
func poisonClear(_ []byte) {}

func popRecordUnderflow() error {
	return dserr.ErrCorrupt
}
