// Copyright 2025 The Perfscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package perfscope

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopRegistry(t *testing.T) {
	var out, errw bytes.Buffer
	r := New(WithOutput(&out), WithErrorOutput(&errw))
	defer r.Close()

	s := Begin(r, 1)
	s.End()

	assert.Empty(t, r.counterNames())
	assert.Equal(t, float64(Unavailable), r.Counter("cycle"))
	assert.Empty(t, out.String(), "no report on unsupported platforms")
	assert.Empty(t, errw.String())

	var buf bytes.Buffer
	r.PrintReport(&buf, 1)
	assert.Empty(t, buf.String())
}
