// Copyright 2025 The Perfscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package perfscope

import (
	"fmt"
	"io"

	"github.com/benchlab/perfscope/perf"
)

// A counter pairs one open kernel counter with its report name and its
// before/after snapshots. The after snapshot is only meaningful once
// both Start and Stop have completed for the cycle.
type counter struct {
	name   string
	pc     *perf.Counter
	before perf.Count
	after  perf.Count
}

type registryOS struct {
	counters []*counter
	errw     io.Writer
}

func (r *registryOS) openOS(catalog []CounterConfig, errw io.Writer) {
	r.errw = errw
	for _, cc := range catalog {
		pc, err := perf.Open(cc.Event, cc.ExcludeUser)
		if err != nil {
			fmt.Fprintf(errw, "error opening counter %s: %v\n", cc.Name, err)
			r.closeOS()
			return
		}
		r.counters = append(r.counters, &counter{name: cc.Name, pc: pc})
	}
}

func (r *registryOS) startOS() {
	for _, c := range r.counters {
		c.pc.Reset()
		c.pc.Enable()
		if snap, err := c.pc.Read(); err != nil {
			fmt.Fprintf(r.errw, "error reading counter %s: %v\n", c.name, err)
		} else {
			c.before = snap
		}
	}
}

func (r *registryOS) stopOS() {
	for _, c := range r.counters {
		if snap, err := c.pc.Read(); err != nil {
			fmt.Fprintf(r.errw, "error reading counter %s: %v\n", c.name, err)
		} else {
			c.after = snap
		}
		c.pc.Disable()
	}
}

func (r *registryOS) closeOS() {
	for _, c := range r.counters {
		c.pc.Close()
	}
	r.counters = nil
}

func (r *registryOS) counterNames() []string {
	if len(r.counters) == 0 {
		return nil
	}
	names := make([]string, len(r.counters))
	for i, c := range r.counters {
		names[i] = c.name
	}
	return names
}

func (r *registryOS) counterValue(name string) float64 {
	for _, c := range r.counters {
		if c.name == name {
			return c.after.Since(c.before)
		}
	}
	return Unavailable
}
