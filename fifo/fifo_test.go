// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fifo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/dsruntime/fifo"
)

func TestPushPopRoundTrip(t *testing.T) {
	q := fifo.New[int](4)

	if err := q.TryPush(42); err != nil {
		t.Fatalf("TryPush: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := q.Pop(ctx)
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

func TestTryPushFailsWhenSlotInUse(t *testing.T) {
	q := fifo.New[int](1)
	if err := q.TryPush(1); err != nil {
		t.Fatalf("first TryPush: %v", err)
	}
	if err := q.TryPush(2); err == nil {
		t.Fatal("expected TryPush to fail while the sole slot is still unread")
	}
}

func TestTryPopEmpty(t *testing.T) {
	q := fifo.New[int](2)
	if _, err := q.TryPop(); err == nil {
		t.Fatal("expected TryPop to fail on an empty queue")
	}
}

func TestPushableCount(t *testing.T) {
	q := fifo.New[int](4)
	if c := q.PushableCount(); c != 4 {
		t.Fatalf("PushableCount = %d, want 4", c)
	}
	_ = q.TryPush(1)
	if c := q.PushableCount(); c != 3 {
		t.Fatalf("PushableCount after one push = %d, want 3", c)
	}
}

func TestConcurrentConsumersEachClaimDistinctEntry(t *testing.T) {
	const n = 200
	q := fifo.New[int](256)
	for i := 0; i < n; i++ {
		q.Push(i)
	}

	var mu sync.Mutex
	seen := make(map[int]bool, n)
	var wg sync.WaitGroup

	for c := 0; c < 8; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				v, err := q.TryPop()
				if err != nil {
					return
				}
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Fatalf("saw %d distinct values, want %d", len(seen), n)
	}
}
