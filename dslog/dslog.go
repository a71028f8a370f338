// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package dslog is the lock-free, ticket-gated, file-draining log
// ring (spec §4.M), restored in full per SPEC_FULL §12.3 since the
// original (src/base/ds_log.c) has a complete implementation the
// distillation only summarizes: a fixed ring of pre-sized message
// records, a producer side that claims a slot via ticket.Factory and
// marks it complete with a release store, and a single drainer
// goroutine — elected via CAS over an atomic.Bool, the Go shape of
// the original's "single writer wins via CAS" — that walks completed
// messages in ticket order and appends them to a file using the
// normative line format.
package dslog

import (
	"bytes"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"code.hybscloud.com/dsruntime/ticket"
)

// System names the subsystem emitting a message, grounded on
// LogInit's systems table.
type System int

const (
	System_System System = iota
	System_Renderer
	System_Physics
	System_Asset
	System_Utility
	System_Profiler
	System_Assert
	System_Game
	System_UI
	System_Led
	systemCount
)

var systemNames = [systemCount]string{
	"System", "Renderer", "Physics", "Asset", "Utility",
	"Profiler", "Assert", "Game", "Ui", "Led",
}

func (s System) String() string {
	if s < 0 || int(s) >= len(systemNames) {
		return "Unknown"
	}
	return systemNames[s]
}

// Severity grades a message, grounded on LogInit's severities table.
type Severity int

const (
	SeveritySuccess Severity = iota
	SeverityNote
	SeverityWarning
	SeverityError
	SeverityFatal
	severityCount
)

var severityNames = [severityCount]string{
	"success", "note", "warning", "error", "fatal",
}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "unknown"
	}
	return severityNames[s]
}

// MaxMessages is the ring's fixed capacity, grounded on
// LOG_MAX_MESSAGES.
const MaxMessages = 512

// MaxMessageSize bounds a single formatted record, grounded on
// LOG_MAX_MESSAGE_SIZE; messages are truncated to fit, matching
// Utf8FormatBufferedVariadic's buffered-truncation contract.
const MaxMessageSize = 512

// message is one ring slot, grounded on struct Log_message. completed
// is the release-store flag a producer sets once the record is fully
// written (a_in_use_and_completed); the drainer claims it with an
// acquire compare-and-swap back to 0, exactly
// Log_try_write_to_disk's loop.
type message struct {
	timeMs    int64
	system    System
	severity  Severity
	threadID  uint64
	line      [MaxMessageSize]byte
	n         int
	completed atomic.Bool
}

// Log is the process-wide ticket-gated message ring and its file
// drain, grounded on struct Log/LogInit/LogWriteMessage/LogShutdown.
type Log struct {
	msgs [MaxMessages]message
	tf   *ticket.Factory

	writingToDisk atomic.Bool
	shuttingDown  atomic.Bool

	w io.Writer
}

// New creates a Log draining to w (nil discards the formatted output,
// matching has_file == 0 when file creation fails in the original).
func New(w io.Writer) *Log {
	return &Log{tf: ticket.New(MaxMessages), w: w}
}

// Log formats and publishes a message, grounded on LogWriteMessage:
// it spins claiming a ticket (running the drain inline on contention,
// exactly as the original's retry loop calls Log_try_write_to_disk
// between attempts), then writes the record and releases it with a
// Store, the sync point the drainer's CAS depends on.
func (l *Log) Log(threadID uint64, system System, severity Severity, format string, args ...any) {
	if l.shuttingDown.Load() {
		return
	}

	var tk uint32
	for {
		got, ok, err := l.tf.TryGet()
		if err != nil {
			return
		}
		if ok {
			tk = got
			break
		}
		l.tryDrain()
	}

	msg := &l.msgs[tk%MaxMessages]
	ms := time.Now().UnixMilli()
	msg.timeMs = ms
	msg.system = system
	msg.severity = severity
	msg.threadID = threadID

	body := fmt.Sprintf(format, args...)
	line := fmt.Sprintf("[%d.%03ds] %s %s - Thread %d: %s\n",
		ms/1000, ms%1000, system, severity, threadID, body)

	n := copy(msg.line[:], line)
	msg.n = n
	msg.completed.Store(true)
}

// tryDrain attempts to become the single elected drainer (the CAS
// from spec §7's "single writer wins"), grounded on
// Log_try_write_to_disk: on success, it walks completed messages
// starting at the ticket factory's serve cursor until it reaches one
// not yet completed, appends them to the file, and returns that whole
// batch's tickets via ReturnTickets.
func (l *Log) tryDrain() {
	if !l.writingToDisk.CompareAndSwap(false, true) {
		return
	}
	defer l.writingToDisk.Store(false)

	count := uint32(0)
	serving := l.tf.Served() % MaxMessages
	var buf bytes.Buffer
	for l.msgs[serving].completed.CompareAndSwap(true, false) {
		msg := &l.msgs[serving]
		if l.w != nil && msg.n > 0 {
			buf.Write(msg.line[:msg.n])
		}
		serving = (serving + 1) % MaxMessages
		count++
	}

	if count == 0 {
		return
	}
	if l.w != nil && buf.Len() > 0 {
		_, _ = l.w.Write(buf.Bytes())
	}
	l.tf.ReturnTickets(count)
}

// Shutdown stops new messages from being accepted, drains every
// outstanding message to the file, and closes the underlying writer
// if it implements io.Closer, grounded on LogShutdown.
func (l *Log) Shutdown() {
	l.shuttingDown.Store(true)
	l.tf.Close()

	for l.tf.Served() != l.tf.Next() {
		l.tryDrain()
	}

	if c, ok := l.w.(io.Closer); ok {
		_ = c.Close()
	}
}
