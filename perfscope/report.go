// Copyright 2025 The Perfscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfscope

import (
	"fmt"
	"strconv"
	"strings"
)

// A table accumulates paired (name, value) columns and renders them as
// one header row and one data row. Each column is padded to the wider
// of its name and value, so a data row lines up under its header.
type table struct {
	cols []tableCol
}

type tableCol struct {
	name  string
	value string
}

func (t *table) string(name, value string) {
	t.cols = append(t.cols, tableCol{name, value})
}

// float renders with fixed two-decimal precision. Non-finite values
// render as NaN or ±Inf.
func (t *table) float(name string, v float64) {
	t.string(name, strconv.FormatFloat(v, 'f', 2, 64))
}

func (t *table) int(name string, v int64) {
	t.string(name, strconv.FormatInt(v, 10))
}

func (t *table) uint(name string, v uint64) {
	t.string(name, strconv.FormatUint(v, 10))
}

func (t *table) headerRow() string {
	return t.row(func(c tableCol) string { return c.name })
}

func (t *table) dataRow() string {
	return t.row(func(c tableCol) string { return c.value })
}

func (t *table) row(field func(tableCol) string) string {
	var b strings.Builder
	for i, c := range t.cols {
		width := len(c.name)
		if len(c.value) > width {
			width = len(c.value)
		}
		delim := ","
		if i == len(t.cols)-1 {
			delim = ""
		}
		fmt.Fprintf(&b, "%*s%s ", width, field(c), delim)
	}
	return strings.TrimRight(b.String(), " ")
}
