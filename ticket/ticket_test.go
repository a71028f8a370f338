// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ticket_test

import (
	"context"
	"testing"
	"time"

	"code.hybscloud.com/dsruntime/internal/dserr"
	"code.hybscloud.com/dsruntime/ticket"
)

func TestTryGetIssuesMonotonicTickets(t *testing.T) {
	f := ticket.New(4)

	a, ok, err := f.TryGet()
	if err != nil || !ok {
		t.Fatalf("TryGet a: ok=%v err=%v", ok, err)
	}
	b, ok, err := f.TryGet()
	if err != nil || !ok {
		t.Fatalf("TryGet b: ok=%v err=%v", ok, err)
	}
	if b != a+1 {
		t.Fatalf("tickets not monotonic: a=%d b=%d", a, b)
	}
}

func TestTryGetExhaustsCapacity(t *testing.T) {
	f := ticket.New(2)
	_, _, _ = f.TryGet()
	_, _, _ = f.TryGet()

	_, ok, err := f.TryGet()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected TryGet to fail once capacity is exhausted")
	}
}

func TestReturnTicketsReplenishesCapacity(t *testing.T) {
	f := ticket.New(2)
	_, _, _ = f.TryGet()
	_, _, _ = f.TryGet()

	f.ReturnTickets(1)

	_, ok, err := f.TryGet()
	if err != nil || !ok {
		t.Fatalf("expected a ticket after return: ok=%v err=%v", ok, err)
	}
}

func TestTryGetAfterCloseReturnsErrClosed(t *testing.T) {
	f := ticket.New(2)
	f.Close()

	_, _, err := f.TryGet()
	if err != dserr.ErrClosed {
		t.Fatalf("got err=%v, want dserr.ErrClosed", err)
	}
}

func TestGetContextRespectsCancellation(t *testing.T) {
	f := ticket.New(1)
	_, _, _ = f.TryGet() // exhaust capacity

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.GetContext(ctx)
	if err == nil {
		t.Fatal("expected GetContext to time out")
	}
}

func TestOutstanding(t *testing.T) {
	f := ticket.New(4)
	_, _, _ = f.TryGet()
	_, _, _ = f.TryGet()
	if got := f.Outstanding(); got != 2 {
		t.Fatalf("Outstanding = %d, want 2", got)
	}
	f.ReturnTickets(1)
	if got := f.Outstanding(); got != 1 {
		t.Fatalf("Outstanding after return = %d, want 1", got)
	}
}
