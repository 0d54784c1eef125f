// Copyright 2025 The Perfscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

// Package perf opens and reads Linux performance counters via
// perf_event_open.
package perf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strconv"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/benchlab/perfscope/events"
)

// A Counter is one open kernel performance counter. It observes the
// calling process and, while enabled, any tasks the process spawns
// (inherit semantics). The zero Counter and the nil Counter are inert.
type Counter struct {
	f       *os.File
	readBuf [3 * 8]byte
}

// Open returns a new [Counter] for the given [events.Event]. The
// counter starts disabled; call [Counter.Enable] to start it. If
// excludeUser is set, user-space execution is not counted, which
// produces kernel-only variants of an otherwise identical event.
// Hypervisor-level events are never counted.
//
// Callers are expected to call [Counter.Close] when done.
func Open(ev events.Event, excludeUser bool) (*Counter, error) {
	attr := unix.PerfEventAttr{}
	attr.Size = uint32(unsafe.Sizeof(attr))
	attr.Type = ev.Type
	attr.Config = ev.Config
	attr.Read_format = unix.PERF_FORMAT_TOTAL_TIME_ENABLED |
		unix.PERF_FORMAT_TOTAL_TIME_RUNNING
	attr.Bits = unix.PerfBitDisabled | unix.PerfBitInherit | unix.PerfBitExcludeHv
	if excludeUser {
		attr.Bits |= unix.PerfBitExcludeUser
	}

	fd, err := unix.PerfEventOpen(&attr, 0, -1, -1, unix.PERF_FLAG_FD_CLOEXEC)
	if err != nil {
		if errors.Is(err, syscall.EACCES) {
			const path = "/proc/sys/kernel/perf_event_paranoid"
			data, err2 := os.ReadFile(path)
			data = bytes.TrimSpace(data)
			if val, err3 := strconv.Atoi(string(data)); err2 != nil || err3 != nil || val > 0 {
				// We can't read it, or it's set to > 0.
				err = fmt.Errorf("%w (consider: echo 0 | sudo tee %s)", err, path)
			}
		}
		return nil, err
	}
	return &Counter{f: os.NewFile(uintptr(fd), "<perf-event>")}, nil
}

// Close releases the counter's file descriptor. Close is idempotent;
// the Counter is inert afterward.
func (c *Counter) Close() {
	if c == nil || c.f == nil {
		return
	}
	c.f.Close()
	c.f = nil
}

// Reset zeroes the counter's value. It does not reset the counter's
// enabled and running times.
func (c *Counter) Reset() {
	c.ioctl(unix.PERF_EVENT_IOC_RESET)
}

// Enable starts the counter.
func (c *Counter) Enable() {
	c.ioctl(unix.PERF_EVENT_IOC_ENABLE)
}

// Disable stops the counter. Its value stays readable and frozen.
func (c *Counter) Disable() {
	c.ioctl(unix.PERF_EVENT_IOC_DISABLE)
}

func (c *Counter) ioctl(req uint) {
	if c == nil || c.f == nil {
		return
	}
	unix.IoctlGetInt(int(c.f.Fd()), req)
}

// A Count is a point-in-time snapshot of a Counter.
type Count struct {
	RawValue uint64 // The number of events while the counter was running.

	// Normally, TimeEnabled == TimeRunning. However, if more counters are
	// running than the hardware can support, events are multiplexed onto
	// the hardware. In that case, TimeRunning < TimeEnabled, and raw
	// deltas should be scaled under the assumption that the event occurs
	// at a regular rate and the sampled time is representative.

	TimeEnabled uint64 // Total time the counter was enabled, in nanoseconds.
	TimeRunning uint64 // Total time the counter was actually counting, in nanoseconds.
}

// Read returns the current snapshot of the counter.
func (c *Counter) Read() (Count, error) {
	if c == nil || c.f == nil {
		return Count{}, errors.New("counter is closed")
	}
	n, err := c.f.Read(c.readBuf[:])
	if err != nil {
		return Count{}, err
	}
	if n < len(c.readBuf) {
		return Count{}, fmt.Errorf("short counter read: %d bytes", n)
	}
	return Count{
		RawValue:    binary.NativeEndian.Uint64(c.readBuf[0:]),
		TimeEnabled: binary.NativeEndian.Uint64(c.readBuf[8:]),
		TimeRunning: binary.NativeEndian.Uint64(c.readBuf[16:]),
	}, nil
}

// Since returns the number of events between the prev snapshot and c,
// corrected for multiplexing: the raw delta is scaled by the ratio of
// enabled time to running time over the same window. When the counter
// was scheduled the whole time the correction is an identity.
//
// If the counter never ran between the two snapshots the division is
// degenerate and the result is NaN or an infinity; callers must treat
// such counters as unreliable.
func (c Count) Since(prev Count) float64 {
	raw := float64(c.RawValue - prev.RawValue)
	enabled := float64(c.TimeEnabled - prev.TimeEnabled)
	running := float64(c.TimeRunning - prev.TimeRunning)
	if enabled == running {
		// Common case: scheduled the whole time.
		return raw
	}
	return raw * (enabled / running)
}
