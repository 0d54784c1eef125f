// Copyright 2025 The Perfscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package perf

import (
	"math"
	"testing"

	"github.com/benchlab/perfscope/events"
)

func TestSinceIdentity(t *testing.T) {
	// When the counter was scheduled the whole time, the correction
	// must be an exact identity.
	prev := Count{RawValue: 100, TimeEnabled: 1000, TimeRunning: 1000}
	cur := Count{RawValue: 1100, TimeEnabled: 5000, TimeRunning: 5000}
	if got := cur.Since(prev); got != 1000 {
		t.Errorf("Since = %v, want 1000", got)
	}
}

func TestSinceMultiplexed(t *testing.T) {
	// Scheduled for half of the enabled window: raw delta doubles.
	prev := Count{RawValue: 0, TimeEnabled: 0, TimeRunning: 0}
	cur := Count{RawValue: 500, TimeEnabled: 2000, TimeRunning: 1000}
	if got := cur.Since(prev); got != 1000 {
		t.Errorf("Since = %v, want 1000", got)
	}
}

func TestSinceZeroRunning(t *testing.T) {
	// A counter that never ran yields a non-finite value, surfaced
	// as-is.
	prev := Count{}
	cur := Count{RawValue: 500, TimeEnabled: 2000, TimeRunning: 0}
	if got := cur.Since(prev); !math.IsInf(got, 1) {
		t.Errorf("Since = %v, want +Inf", got)
	}

	cur = Count{RawValue: 0, TimeEnabled: 2000, TimeRunning: 0}
	if got := cur.Since(prev); !math.IsNaN(got) {
		t.Errorf("Since = %v, want NaN", got)
	}
}

func TestSinceZeroCycle(t *testing.T) {
	// Two identical snapshots (stop without start) are a zero delta,
	// not a crash.
	var c Count
	if got := c.Since(c); got != 0 {
		t.Errorf("Since = %v, want 0", got)
	}
}

func TestOpenRead(t *testing.T) {
	c, err := Open(events.CPUCycles, false)
	if err != nil {
		t.Skipf("cannot open cycle counter: %v", err)
	}
	defer c.Close()

	doRead := func(min Count) Count {
		t.Helper()
		count, err := c.Read()
		if err != nil {
			t.Fatal("read failed:", err)
		}
		t.Logf("read %+v", count)
		checkCount(t, count, min)
		return count
	}

	c1 := doRead(Count{})
	if c1.RawValue != 0 || c1.TimeEnabled != 0 {
		t.Fatal("counter is non-zero before enabling")
	}

	t.Log("enabling counter")
	c.Enable()
	c2 := doRead(c1)

	t.Log("disabling counter")
	c.Disable()
	c3 := doRead(c2)
	c4 := doRead(c2)
	if c3 != c4 {
		t.Fatal("counter changed while disabled")
	}
}

func TestResetZeroesValue(t *testing.T) {
	c, err := Open(events.Instructions, false)
	if err != nil {
		t.Skipf("cannot open instruction counter: %v", err)
	}
	defer c.Close()

	c.Enable()
	for i := 0; i < 1000; i++ {
	}
	c.Disable()

	before, err := c.Read()
	if err != nil {
		t.Fatal("read failed:", err)
	}
	if before.RawValue == 0 {
		t.Skip("instruction counter read 0; cannot observe reset")
	}

	c.Reset()
	after, err := c.Read()
	if err != nil {
		t.Fatal("read failed:", err)
	}
	if after.RawValue >= before.RawValue {
		t.Errorf("reset did not zero value: before %d, after %d", before.RawValue, after.RawValue)
	}
}

func TestClosedCounter(t *testing.T) {
	var c *Counter
	c.Reset()
	c.Enable()
	c.Disable()
	c.Close()
	if _, err := c.Read(); err == nil {
		t.Error("read on nil counter did not fail")
	}
}

func checkCount(t *testing.T, count, min Count) {
	t.Helper()
	if count.TimeRunning > count.TimeEnabled {
		t.Fatal("TimeRunning > TimeEnabled")
	}
	if count.RawValue < min.RawValue {
		t.Fatal("RawValue decreased")
	}
	if count.TimeEnabled < min.TimeEnabled {
		t.Fatal("TimeEnabled decreased")
	}
	if count.TimeRunning < min.TimeRunning {
		t.Fatal("TimeRunning decreased")
	}
}
