// Copyright 2025 The Perfscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package events describes the performance events a kernel counter can
// observe.
//
// An [Event] is plain data: the perf ABI source type plus its config
// selector, passed through to the kernel uninterpreted. Keeping
// descriptors free of OS types means a counter catalog can be declared
// on any platform; only the perf package turns an Event into an open
// kernel resource.
package events

// An Event identifies a performance event by its source type and
// config selector.
type Event struct {
	Type   uint32
	Config uint64
}

// Event source types. These mirror the perf_event_open ABI and are
// stable across kernels.
const (
	TypeHardware   uint32 = 0
	TypeSoftware   uint32 = 1
	TypeTracepoint uint32 = 2
	TypeHWCache    uint32 = 3
	TypeRaw        uint32 = 4
)

// Hardware event configs.
const (
	hwCPUCycles uint64 = iota
	hwInstructions
	hwCacheReferences
	hwCacheMisses
	hwBranchInstructions
	hwBranchMisses
	hwBusCycles
	hwStalledCyclesFrontend
	hwStalledCyclesBackend
	hwRefCPUCycles
)

// Software event configs.
const (
	swCPUClock uint64 = iota
	swTaskClock
	swPageFaults
	swContextSwitches
	swCPUMigrations
	swPageFaultsMin
	swPageFaultsMaj
	swAlignmentFaults
	swEmulationFaults
	swDummy
	swBPFOutput
)

var (
	// Hardware events
	CPUCycles             = Event{TypeHardware, hwCPUCycles}
	Instructions          = Event{TypeHardware, hwInstructions}
	CacheReferences       = Event{TypeHardware, hwCacheReferences}
	CacheMisses           = Event{TypeHardware, hwCacheMisses}
	Branches              = Event{TypeHardware, hwBranchInstructions}
	BranchMisses          = Event{TypeHardware, hwBranchMisses}
	BusCycles             = Event{TypeHardware, hwBusCycles}
	StalledCyclesFrontend = Event{TypeHardware, hwStalledCyclesFrontend}
	StalledCyclesBackend  = Event{TypeHardware, hwStalledCyclesBackend}
	RefCPUCycles          = Event{TypeHardware, hwRefCPUCycles}
)

var (
	// Software events
	CPUClock        = Event{TypeSoftware, swCPUClock}
	TaskClock       = Event{TypeSoftware, swTaskClock}
	PageFaults      = Event{TypeSoftware, swPageFaults}
	ContextSwitches = Event{TypeSoftware, swContextSwitches}
	CPUMigrations   = Event{TypeSoftware, swCPUMigrations}
	MinorFaults     = Event{TypeSoftware, swPageFaultsMin}
	MajorFaults     = Event{TypeSoftware, swPageFaultsMaj}
	AlignmentFaults = Event{TypeSoftware, swAlignmentFaults}
	EmulationFaults = Event{TypeSoftware, swEmulationFaults}
)

// Cache levels for [Cache].
const (
	CacheL1D uint64 = iota
	CacheL1I
	CacheLL
	CacheDTLB
	CacheITLB
	CacheBPU
	CacheNode
)

// Cache operations for [Cache].
const (
	CacheOpRead uint64 = iota
	CacheOpWrite
	CacheOpPrefetch
)

// Cache results for [Cache].
const (
	CacheResultAccess uint64 = iota
	CacheResultMiss
)

// Cache returns the hardware cache event for the given cache level,
// operation, and result, e.g. Cache(CacheL1D, CacheOpRead,
// CacheResultMiss) for L1 data read misses.
func Cache(level, op, result uint64) Event {
	return Event{TypeHWCache, level | op<<8 | result<<16}
}

// Raw returns a raw, CPU-specific event. The config encoding is
// defined by the CPU vendor's PMU documentation.
func Raw(config uint64) Event {
	return Event{TypeRaw, config}
}
