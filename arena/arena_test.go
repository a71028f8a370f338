// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package arena_test

import (
	"testing"

	"code.hybscloud.com/dsruntime/arena"
	"code.hybscloud.com/dsruntime/memslot"
)

type fakeSource struct {
	buf []byte
}

func (f *fakeSource) Reserve(hint int) (memslot.Slot, error) {
	if f.buf == nil {
		f.buf = make([]byte, hint)
	}
	return memslot.Slot{Bytes: f.buf}, nil
}

func (f *fakeSource) Release(memslot.Slot) error { return nil }

func TestArenaPushPopRestoresRemaining(t *testing.T) {
	src := &fakeSource{}
	a, err := arena.New(src, 4096)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	before := a.Remaining()

	a.PushRecord()
	if _, err := a.Push(256, 8); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if a.Remaining() == before {
		t.Fatalf("expected Remaining to shrink after Push")
	}
	if err := a.PopRecord(); err != nil {
		t.Fatalf("PopRecord: %v", err)
	}
	if a.Remaining() != before {
		t.Fatalf("Remaining = %d, want %d after pop", a.Remaining(), before)
	}
}

func TestArenaOutOfMemory(t *testing.T) {
	src := &fakeSource{}
	a, err := arena.New(src, 64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := a.Push(128, 8); err == nil {
		t.Fatalf("expected out-of-memory error")
	}
}

func TestArenaFlush(t *testing.T) {
	src := &fakeSource{}
	a, err := arena.New(src, 4096)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	total := a.Total()
	if _, err := a.Push(1024, 8); err != nil {
		t.Fatalf("Push: %v", err)
	}
	a.Flush()
	if a.Remaining() != total {
		t.Fatalf("Remaining = %d, want %d after Flush", a.Remaining(), total)
	}
}
