// Copyright 2025 The Perfscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfscope

import (
	"io"
	"math"
	"strings"
	"testing"
)

// testingB is the *testing.B interface needed by BenchCounters. Used
// for testing.
type testingB interface {
	ReportMetric(n float64, unit string)
	Logf(format string, args ...any)
	Cleanup(func())
}

// BenchCounters binds a counter registry to a running benchmark. The
// counters are stopped and reported as per-op metrics in a b.Cleanup
// function; if the benchmark does substantial other work in cleanup
// functions it may want to call [BenchCounters.Stop] explicitly before
// returning.
type BenchCounters struct {
	b  testingB
	bN int
	r  *Registry
}

// OpenBench opens the default counter catalog for benchmark b and
// starts it. Counter values are reported as "<name>/op" metrics when
// the benchmark ends, along with instructions per cycle. On platforms
// or kernels without usable perf events no metrics are reported.
//
// Any calls to b.StopTimer, b.StartTimer, or b.ResetTimer should be
// paired with [BenchCounters.Stop] and [BenchCounters.Start].
func OpenBench(b *testing.B) *BenchCounters {
	return openBench(b, b.N)
}

func openBench(b testingB, bN int) *BenchCounters {
	r := New(WithOutput(io.Discard), WithErrorOutput(benchLog{b}))
	cs := &BenchCounters{b: b, bN: bN, r: r}
	b.Cleanup(cs.close)
	r.Start()
	return cs
}

// Start restarts the counters. This resets their values, so it should
// bracket the single region the benchmark measures.
func (cs *BenchCounters) Start() {
	cs.r.Start()
}

// Stop stops the counters.
func (cs *BenchCounters) Stop() {
	cs.r.Stop()
}

func (cs *BenchCounters) close() {
	if cs.b == nil {
		return
	}
	cs.r.Stop()
	names := cs.r.counterNames()
	for _, name := range names {
		v := cs.r.Counter(name)
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			cs.b.ReportMetric(v/float64(cs.bN), name+"/op")
		}
	}
	if len(names) > 0 {
		if ipc := cs.r.IPC(); !math.IsNaN(ipc) && !math.IsInf(ipc, 0) {
			cs.b.ReportMetric(ipc, "instrs/cycle")
		}
	}
	cs.r.Close()
	cs.b = nil
}

// benchLog routes registry diagnostics to the benchmark log.
type benchLog struct {
	b testingB
}

func (w benchLog) Write(p []byte) (int, error) {
	w.b.Logf("%s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
