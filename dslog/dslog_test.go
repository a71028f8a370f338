// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dslog_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"code.hybscloud.com/dsruntime/dslog"
)

func TestLogWritesNormativeLineFormat(t *testing.T) {
	var buf bytes.Buffer
	l := dslog.New(&buf)

	l.Log(1, dslog.System_Physics, dslog.SeverityWarning, "narrow phase took %dus", 120)
	l.Shutdown()

	out := buf.String()
	if !strings.Contains(out, "Physics warning - Thread 1: narrow phase took 120us") {
		t.Fatalf("unexpected log line: %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("log line missing trailing newline: %q", out)
	}
}

func TestLogAfterShutdownIsDiscarded(t *testing.T) {
	var buf bytes.Buffer
	l := dslog.New(&buf)
	l.Shutdown()

	l.Log(1, dslog.System_Game, dslog.SeverityError, "should not appear")

	if buf.Len() != 0 {
		t.Fatalf("expected no output after shutdown, got %q", buf.String())
	}
}

func TestConcurrentProducersAllDrain(t *testing.T) {
	var buf bytes.Buffer
	var mu sync.Mutex
	syncWriter := syncWriterFunc(func(p []byte) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		return buf.Write(p)
	})
	l := dslog.New(syncWriter)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Log(uint64(i), dslog.System_Asset, dslog.SeverityNote, "loaded asset %d", i)
		}(i)
	}
	wg.Wait()
	l.Shutdown()

	mu.Lock()
	defer mu.Unlock()
	lines := strings.Count(buf.String(), "\n")
	if lines != n {
		t.Fatalf("got %d drained lines, want %d", lines, n)
	}
}

type syncWriterFunc func([]byte) (int, error)

func (f syncWriterFunc) Write(p []byte) (int, error) { return f(p) }
