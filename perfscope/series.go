// Copyright 2025 The Perfscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfscope

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// A Series accumulates the metric values of repeated measurement
// cycles so a run of cycles can be summarized. Attach one to a
// registry with [WithSeries]; every value a scope reports is recorded
// under its column name.
type Series struct {
	order   []string
	samples map[string][]float64
}

// NewSeries returns an empty Series.
func NewSeries() *Series {
	return &Series{samples: make(map[string][]float64)}
}

func (s *Series) record(name string, v float64) {
	if _, ok := s.samples[name]; !ok {
		s.order = append(s.order, name)
	}
	s.samples[name] = append(s.samples[name], v)
}

// Names returns the recorded metric names in first-recorded order.
func (s *Series) Names() []string {
	return slices.Clone(s.order)
}

// Values returns all recorded values of the named metric in cycle
// order, or nil if the metric was never recorded.
func (s *Series) Values(name string) []float64 {
	return slices.Clone(s.samples[name])
}

// A Summary describes one metric across all recorded cycles.
type Summary struct {
	N      int
	Mean   float64
	StdDev float64 // NaN when N < 2.
	P95    float64
}

// Summary summarizes the named metric. The second result is false if
// the metric was never recorded.
func (s *Series) Summary(name string) (Summary, bool) {
	vals := s.samples[name]
	if len(vals) == 0 {
		return Summary{}, false
	}
	sorted := slices.Clone(vals)
	slices.Sort(sorted)
	return Summary{
		N:      len(vals),
		Mean:   stat.Mean(vals, nil),
		StdDev: stat.StdDev(vals, nil),
		P95:    stat.Quantile(0.95, stat.Empirical, sorted, nil),
	}, true
}
