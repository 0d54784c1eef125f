// Copyright 2025 The Perfscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package perfscope

import "io"

// registryOS on platforms without perf events: the whole registry
// surface is present but inert, and no report is ever produced.
type registryOS struct{}

func (r *registryOS) openOS([]CounterConfig, io.Writer) {}

func (r *registryOS) startOS() {}

func (r *registryOS) stopOS() {}

func (r *registryOS) closeOS() {}

func (r *registryOS) counterNames() []string { return nil }

func (r *registryOS) counterValue(string) float64 { return Unavailable }
