// Copyright 2025 The Perfscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfscope

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeriesSummary(t *testing.T) {
	s := NewSeries()
	for i := 1; i <= 100; i++ {
		s.record("cycle", float64(i))
	}

	sum, ok := s.Summary("cycle")
	assert.True(t, ok)
	assert.Equal(t, 100, sum.N)
	assert.InDelta(t, 50.5, sum.Mean, 1e-9)
	assert.InDelta(t, 29.011, sum.StdDev, 0.01)
	assert.InDelta(t, 95, sum.P95, 1)
}

func TestSeriesUnknownMetric(t *testing.T) {
	s := NewSeries()
	_, ok := s.Summary("cycle")
	assert.False(t, ok)
	assert.Nil(t, s.Values("cycle"))
}

func TestSeriesOrderAndValues(t *testing.T) {
	s := NewSeries()
	s.record("time", 0.5)
	s.record("cycle", 1000)
	s.record("time", 0.75)

	assert.Equal(t, []string{"time", "cycle"}, s.Names())
	assert.Equal(t, []float64{0.5, 0.75}, s.Values("time"))
}

func TestSeriesSingleCycle(t *testing.T) {
	s := NewSeries()
	s.record("IPC", 1.5)

	sum, ok := s.Summary("IPC")
	assert.True(t, ok)
	assert.Equal(t, 1, sum.N)
	assert.Equal(t, 1.5, sum.Mean)
	assert.Equal(t, 1.5, sum.P95)
}
