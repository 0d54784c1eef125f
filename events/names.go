// Copyright 2025 The Perfscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package events

import (
	"sort"
	"strings"
	"sync"
)

type cacheName struct {
	name   string
	config uint64
}

// names holds the tables for resolving perf-style symbolic event
// names. Built once on first Lookup.
var names struct {
	hardware map[string]Event
	software map[string]Event

	cache        []cacheName
	cacheOp      []cacheName
	cacheResult  []cacheName
	cacheAllowed map[uint64]uint8 // Cache level -> bitmap of cache op

	once sync.Once
}

func initNames() {
	// See perf's parse-events.c:event_symbols_hw
	names.hardware = make(map[string]Event)
	hw := func(ev Event, ns ...string) {
		for _, n := range ns {
			names.hardware[n] = ev
		}
	}
	hw(CPUCycles, "cpu-cycles", "cycles")
	hw(Instructions, "instructions")
	hw(CacheReferences, "cache-references")
	hw(CacheMisses, "cache-misses")
	hw(Branches, "branch-instructions", "branches")
	hw(BranchMisses, "branch-misses")
	hw(BusCycles, "bus-cycles")
	hw(StalledCyclesFrontend, "stalled-cycles-frontend", "idle-cycles-frontend")
	hw(StalledCyclesBackend, "stalled-cycles-backend", "idle-cycles-backend")
	hw(RefCPUCycles, "ref-cycles")

	// See parse-events.c:event_symbols_sw
	names.software = make(map[string]Event)
	sw := func(ev Event, ns ...string) {
		for _, n := range ns {
			names.software[n] = ev
		}
	}
	sw(CPUClock, "cpu-clock")
	sw(TaskClock, "task-clock")
	sw(PageFaults, "page-faults", "faults")
	sw(ContextSwitches, "context-switches", "cs")
	sw(CPUMigrations, "cpu-migrations", "migrations")
	sw(MinorFaults, "minor-faults")
	sw(MajorFaults, "major-faults")
	sw(AlignmentFaults, "alignment-faults")
	sw(EmulationFaults, "emulation-faults")

	var m *[]cacheName
	c := func(config uint64, ns ...string) {
		for _, n := range ns {
			*m = append(*m, cacheName{n, config})
		}
	}
	cSort := func() {
		// Put longer names earlier for matching
		sort.Slice(*m, func(i, j int) bool {
			return len((*m)[i].name) > len((*m)[j].name)
		})
	}
	// See evsel.c:evsel__hw_cache
	m = &names.cache
	c(CacheL1D, "L1-dcache", "l1-d", "l1d", "L1-data")
	c(CacheL1I, "L1-icache", "l1-i", "l1i", "L1-instruction")
	c(CacheLL, "LLC", "L2")
	c(CacheDTLB, "dTLB", "d-tlb", "Data-TLB")
	c(CacheITLB, "iTLB", "i-tlb", "Instruction-TLB")
	c(CacheBPU, "branch", "branches", "bpu", "btb", "bpc")
	c(CacheNode, "node")
	cSort()
	// See evsel.c:evsel__hw_cache_op
	m = &names.cacheOp
	c(CacheOpRead, "load", "loads", "read")
	c(CacheOpWrite, "store", "stores", "write")
	c(CacheOpPrefetch, "prefetch", "prefetches", "speculative-read", "speculative-load")
	cSort()
	// See evsel.c:evsel__hw_cache_result
	m = &names.cacheResult
	c(CacheResultAccess, "refs", "Reference", "ops", "access")
	c(CacheResultMiss, "misses", "miss")
	cSort()

	r := uint8(1) << CacheOpRead
	w := uint8(1) << CacheOpWrite
	p := uint8(1) << CacheOpPrefetch
	names.cacheAllowed = map[uint64]uint8{
		CacheL1D:  r | w | p,
		CacheL1I:  r | p,
		CacheLL:   r | w | p,
		CacheDTLB: r | w | p,
		CacheITLB: r,
		CacheBPU:  r,
		CacheNode: r | w | p,
	}
}

// Lookup resolves a perf-style symbolic event name, such as "cycles",
// "task-clock", or a compound cache name like "L1-dcache-load-misses".
// The second result is false if the name is unknown.
func Lookup(name string) (Event, bool) {
	names.once.Do(initNames)

	if ev, ok := names.hardware[name]; ok {
		return ev, true
	}
	if ev, ok := names.software[name]; ok {
		return ev, true
	}
	return lookupCache(name)
}

// lookupCache parses compound cache event names of the form
// level[-op][-result], defaulting to read accesses. See perf's
// parse-events.c:parse_events__decode_legacy_cache.
func lookupCache(name string) (Event, bool) {
	find := func(s string, table []cacheName) (uint64, string, bool) {
		for i := range table {
			n := table[i].name
			if s == n {
				return table[i].config, "", true
			}
			if strings.HasPrefix(s, n) && s[len(n)] == '-' {
				return table[i].config, s[len(n)+1:], true
			}
		}
		return 0, "", false
	}

	level, s, ok := find(name, names.cache)
	if !ok {
		return Event{}, false
	}
	op := CacheOpRead
	result := CacheResultAccess
	var haveOp, haveResult bool
	for i := 0; i < 2 && s != ""; i++ {
		if !haveOp {
			if op2, s2, ok := find(s, names.cacheOp); ok {
				op, s, haveOp = op2, s2, true
				continue
			}
		}
		if !haveResult {
			if result2, s2, ok := find(s, names.cacheResult); ok {
				result, s, haveResult = result2, s2, true
				continue
			}
		}
		break
	}
	if s != "" {
		return Event{}, false
	}
	if names.cacheAllowed[level]&(1<<op) == 0 {
		return Event{}, false
	}
	return Cache(level, op, result), true
}
