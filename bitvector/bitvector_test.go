// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bitvector_test

import (
	"testing"

	"code.hybscloud.com/dsruntime/bitvector"
)

func TestSetGet(t *testing.T) {
	bv := bitvector.New(200)
	bv.Set(0, true)
	bv.Set(63, true)
	bv.Set(64, true)
	bv.Set(199, true)

	for _, i := range []int{0, 63, 64, 199} {
		if !bv.Get(i) {
			t.Fatalf("bit %d should be set", i)
		}
	}
	if bv.Get(1) || bv.Get(65) {
		t.Fatalf("unexpected bit set")
	}
}

func TestGrowPreservesBits(t *testing.T) {
	bv := bitvector.New(10)
	bv.Set(5, true)
	bv.Grow(500)
	if bv.Len() != 500 {
		t.Fatalf("Len = %d, want 500", bv.Len())
	}
	if !bv.Get(5) {
		t.Fatalf("bit 5 should survive Grow")
	}
	if bv.Get(400) {
		t.Fatalf("newly grown bit should be clear")
	}
}

func TestCopyFrom(t *testing.T) {
	src := bitvector.New(128)
	src.Set(100, true)
	dst := bitvector.New(4)
	dst.CopyFrom(src)
	if !dst.Get(100) {
		t.Fatalf("CopyFrom should copy set bits")
	}
}
