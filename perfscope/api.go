// Copyright 2025 The Perfscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package perfscope measures hardware performance counters across a
// bracketed region of code and reports raw and derived metrics
// (instructions per cycle, CPU utilization, clock frequency) as an
// aligned two-row table.
//
// A [Registry] owns a fixed catalog of counters opened at
// construction. A [Scope] brackets one measurement cycle:
//
//	r := perfscope.New()
//	defer r.Close()
//
//	s := perfscope.Begin(r, numOps)
//	defer s.End()
//	// ... measured region ...
//
// On platforms without perf events the whole surface is present but
// inert: counters read as the [Unavailable] sentinel and no report is
// produced.
package perfscope

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/benchlab/perfscope/events"
)

// Unavailable is returned by [Registry.Counter] for names not present
// in the registry, including every name on a degraded or unsupported
// registry.
const Unavailable = -1

// A CounterConfig is one entry of a registry's counter catalog.
type CounterConfig struct {
	// Name identifies the counter within the registry and labels its
	// report column.
	Name string

	// Event is the kernel event the counter observes.
	Event events.Event

	// ExcludeUser, if set, excludes user-space execution from the
	// count, producing a kernel-only variant of the event.
	ExcludeUser bool
}

// DefaultCatalog is the catalog used when no [WithCatalog] option is
// given. The "cycle", "instr", and "task" counters feed the derived
// metrics.
var DefaultCatalog = []CounterConfig{
	{Name: "cycle", Event: events.CPUCycles},
	{Name: "kcycle", Event: events.CPUCycles, ExcludeUser: true},
	{Name: "instr", Event: events.Instructions},
	{Name: "L1-miss", Event: events.Cache(events.CacheL1D, events.CacheOpRead, events.CacheResultMiss)},
	{Name: "LLC-miss", Event: events.CacheMisses},
	{Name: "br-miss", Event: events.BranchMisses},
	{Name: "task", Event: events.TaskClock},
}

type config struct {
	catalog []CounterConfig
	out     io.Writer
	errw    io.Writer
	series  *Series
}

// An Option configures a [Registry].
type Option func(*config)

// WithCatalog replaces [DefaultCatalog] with the given counters.
// Registration order defines report column order; when two entries
// share a name, lookups return the first.
func WithCatalog(catalog ...CounterConfig) Option {
	return func(c *config) { c.catalog = catalog }
}

// WithOutput sets the writer reports are emitted to. Defaults to
// standard output.
func WithOutput(w io.Writer) Option {
	return func(c *config) { c.out = w }
}

// WithErrorOutput sets the writer counter diagnostics are emitted to.
// Defaults to standard error.
func WithErrorOutput(w io.Writer) Option {
	return func(c *config) { c.errw = w }
}

// WithSeries attaches a [Series] that accumulates every reported
// metric across measurement cycles.
func WithSeries(s *Series) Option {
	return func(c *config) { c.series = s }
}

// A Registry owns an ordered catalog of performance counters and
// mediates all kernel interaction for them. It may run any number of
// start/stop cycles before being closed.
//
// If any counter of the catalog fails to open, the whole registry
// degrades: it holds zero counters, every lookup returns
// [Unavailable], and no report is emitted. A report over a meaningless
// subset of counters is worse than no report.
//
// A Registry is not safe for concurrent use; it is meant to be driven
// sequentially by one measurement context. The counters themselves
// count events from all tasks spawned by the measured code.
type Registry struct {
	registryOS

	out    io.Writer
	series *Series

	startTime time.Time
	stopTime  time.Time

	params        map[string]string
	headerPrinted bool
}

// New constructs a Registry and opens a kernel handle for every
// catalog entry. Failures are reported on the error writer; see the
// Registry degradation policy.
func New(opts ...Option) *Registry {
	cfg := config{catalog: DefaultCatalog, out: os.Stdout, errw: os.Stderr}
	for _, o := range opts {
		o(&cfg)
	}
	r := &Registry{out: cfg.out, series: cfg.series, params: make(map[string]string)}
	r.openOS(cfg.catalog, cfg.errw)
	return r
}

// Start resets and enables every live counter, captures its before
// snapshot, and then records the start timestamp. Read failures are
// logged and do not stop the remaining counters from starting.
func (r *Registry) Start() {
	r.startOS()
	r.startTime = time.Now()
}

// Stop records the stop timestamp, then captures every live counter's
// after snapshot and disables it. The timestamp-then-read-then-disable
// order keeps the window between stop intent and counter freeze small.
func (r *Registry) Stop() {
	r.stopTime = time.Now()
	r.stopOS()
}

// Close releases all counter handles. The registry is inert afterward.
func (r *Registry) Close() {
	r.closeOS()
}

// Counter returns the multiplexing-corrected delta of the named
// counter between the last Start and Stop, or [Unavailable] if no
// counter has that name. A counter with zero running time yields a
// non-finite value.
func (r *Registry) Counter(name string) float64 {
	return r.counterValue(name)
}

// IPC returns instructions retired per CPU cycle over the last
// measurement cycle.
func (r *Registry) IPC() float64 {
	return r.Counter("instr") / r.Counter("cycle")
}

// CPUs returns the average number of concurrently active threads over
// the last measurement cycle. Task-clock accumulates nanoseconds
// across all inheriting threads, so dividing it by wall-clock
// nanoseconds yields thread concurrency.
func (r *Registry) CPUs() float64 {
	return r.Counter("task") / (r.Duration() * 1e9)
}

// GHz returns the average clock frequency the measured threads ran at.
func (r *Registry) GHz() float64 {
	return r.Counter("cycle") / r.Counter("task")
}

// Duration returns the wall-clock time between Start and Stop in
// seconds.
func (r *Registry) Duration() float64 {
	return r.stopTime.Sub(r.startTime).Seconds()
}

// DurationMicros returns the wall-clock time between Start and Stop in
// whole microseconds.
func (r *Registry) DurationMicros() int64 {
	return r.stopTime.Sub(r.startTime).Microseconds()
}

// SetParam attaches a descriptive key/value annotation to the
// registry's reports. Params are reported in sorted key order, before
// the metric columns. Setting an existing key replaces its value.
func (r *Registry) SetParam(name string, value any) {
	r.params[name] = fmt.Sprint(value)
}

// PrintReport writes a header row and a data row with every counter
// value divided by scale, the scale itself, and the derived metrics.
// A degraded or unsupported registry writes nothing.
func (r *Registry) PrintReport(w io.Writer, scale uint64) {
	names := r.counterNames()
	if len(names) == 0 {
		return
	}
	if scale == 0 {
		scale = 1
	}
	var t table
	r.metricColumns(&t, names, scale)
	fmt.Fprintln(w, t.headerRow())
	fmt.Fprintln(w, t.dataRow())
}

func (r *Registry) metricColumns(t *table, names []string, scale uint64) {
	for _, name := range names {
		t.float(name, r.Counter(name)/float64(scale))
	}
	t.uint("scale", scale)
	t.float("IPC", r.IPC())
	t.float("CPU", r.CPUs())
	t.float("GHz", r.GHz())
}

// sortedParamKeys returns the registry's param names in sorted order.
func (r *Registry) sortedParamKeys() []string {
	keys := make([]string, 0, len(r.params))
	for k := range r.params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// A Scope brackets one measurement cycle over a Registry. Begin starts
// the counters; End stops them and emits the report. Nesting or
// overlapping scopes over one registry interleaves their snapshots and
// is not supported.
type Scope struct {
	r     *Registry
	scale uint64
	done  bool
}

// Begin starts the registry's counters and returns a Scope whose End
// should be deferred, so the stop-and-report sequence runs on every
// exit path from the measured region. scale divides every reported
// counter value, e.g. the number of operations the region performs;
// zero means 1.
func Begin(r *Registry, scale uint64) *Scope {
	if scale == 0 {
		scale = 1
	}
	r.Start()
	return &Scope{r: r, scale: scale}
}

// End stops the counters and emits the report: params, wall-clock
// time, per-counter values divided by the scope's scale, the scale,
// and the derived metrics. The header row is emitted only for the
// registry's first report, so repeated cycles form an aligned table.
// End runs at most once; later calls are no-ops.
func (s *Scope) End() {
	if s == nil || s.done {
		return
	}
	s.done = true

	r := s.r
	r.Stop()

	names := r.counterNames()
	if len(names) == 0 {
		return
	}

	var t table
	for _, k := range r.sortedParamKeys() {
		t.string(k, r.params[k])
	}
	t.float("time", r.Duration())
	t.int("time_us", r.DurationMicros())
	r.metricColumns(&t, names, s.scale)

	if !r.headerPrinted {
		fmt.Fprintln(r.out, t.headerRow())
		r.headerPrinted = true
	}
	fmt.Fprintln(r.out, t.dataRow())

	if r.series != nil {
		r.series.record("time", r.Duration())
		for _, name := range names {
			r.series.record(name, r.Counter(name)/float64(s.scale))
		}
		r.series.record("IPC", r.IPC())
		r.series.record("CPU", r.CPUs())
		r.series.record("GHz", r.GHz())
	}
}
