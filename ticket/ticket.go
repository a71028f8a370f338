// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ticket is the monotonic ticket factory (spec §4.K),
// grounded on include/ticket_factory.h and
// src/base/ticket_factory.c: a semaphore caps the number of
// outstanding tickets at max_tickets, a single atomic counter hands
// out strictly increasing ticket numbers, and callers return a
// contiguous batch once they are done serving it, posting the
// semaphore once per returned ticket.
package ticket

import (
	"context"
	"sync/atomic"

	"code.hybscloud.com/spin"

	"code.hybscloud.com/dsruntime"
	"code.hybscloud.com/dsruntime/internal/dserr"
	"code.hybscloud.com/dsruntime/platform"
)

// Factory hands out monotonically increasing ticket numbers gated by
// a fixed capacity.
type Factory struct {
	_ dsruntime.NoCopy

	available platform.Semaphore
	served    atomic.Uint32 // a_serve
	next      atomic.Uint32 // a_next
	open      atomic.Bool   // a_open
	maxTickets uint32
}

// New creates a Factory with the given power-of-two capacity, open
// for business, matching TicketFactoryInit.
func New(maxTickets uint32) *Factory {
	if maxTickets == 0 || maxTickets&(maxTickets-1) != 0 {
		panic("ticket: maxTickets must be a power of two")
	}
	f := &Factory{maxTickets: maxTickets}
	f.available = *platform.NewSemaphore(int64(maxTickets))
	f.open.Store(true)
	return f
}

// Close stops new tickets from being issued; outstanding tickets can
// still be returned. There is no TICKET_FACTORY_CLOSED sentinel
// return value in Go — TryGet instead reports dserr.ErrClosed.
func (f *Factory) Close() { f.open.Store(false) }

// TryGet claims the next ticket without blocking, grounded on
// TicketFactoryTryGetTicket. Returns dserr.ErrClosed once Close has
// been called, or iox-style "no ticket available" as a plain false
// ok result (mirroring the C function's 0/1/CLOSED three-way return,
// split here into an error for the closed case and a bool for the
// ordinary "no capacity right now" case).
func (f *Factory) TryGet() (tk uint32, ok bool, err error) {
	if !f.open.Load() {
		return 0, false, dserr.ErrClosed
	}
	if !f.available.TryWait() {
		return 0, false, nil
	}
	return f.next.Add(1) - 1, true, nil
}

// Get blocks, spin-retrying TryGet, until a ticket is claimed or the
// factory closes, grounded on TicketFactoryGetTicket's busy-wait —
// generalized to return dserr.ErrClosed instead of looping forever,
// since the original documents UNDEFINED BEHAVIOUR on a closed
// factory rather than a defined contract to port as-is.
func (f *Factory) Get() (uint32, error) {
	var w spin.Wait
	for {
		tk, ok, err := f.TryGet()
		if err != nil {
			return 0, err
		}
		if ok {
			return tk, nil
		}
		w.Once()
	}
}

// GetContext is Get with cancellation: it blocks on the semaphore via
// ctx rather than spinning, for callers that would rather park a
// goroutine than burn CPU waiting for capacity.
func (f *Factory) GetContext(ctx context.Context) (uint32, error) {
	if !f.open.Load() {
		return 0, dserr.ErrClosed
	}
	if err := f.available.Wait(ctx); err != nil {
		return 0, err
	}
	return f.next.Add(1) - 1, nil
}

// ReturnTickets puts the batch [served, served+count) up for use
// again, grounded on TicketFactoryReturnTickets: advances the serve
// cursor first (the sync point), then posts the semaphore once per
// ticket in the batch.
func (f *Factory) ReturnTickets(count uint32) {
	served := f.served.Load()
	next := f.next.Load()
	if count > f.maxTickets || count > next-served {
		panic("ticket: ReturnTickets count exceeds outstanding tickets")
	}

	f.served.Add(count)
	for i := uint32(0); i < count; i++ {
		f.available.Post()
	}
}

// Outstanding returns the number of tickets issued but not yet
// returned (next - served).
func (f *Factory) Outstanding() uint32 {
	return f.next.Load() - f.served.Load()
}

// Served returns the serve cursor (a_serve): the first not-yet-served
// ticket. Exposed for callers like dslog that need to walk the
// served..next range directly rather than through ReturnTickets alone.
func (f *Factory) Served() uint32 { return f.served.Load() }

// Next returns the next cursor (a_next): one past the most recently
// issued ticket.
func (f *Factory) Next() uint32 { return f.next.Load() }
