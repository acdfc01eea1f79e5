// Copyright 2024-2025 CardinalHQ, Inc
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tally

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/exp/maps"
)

// Histogram counts observations per case.
type Histogram[K Key] struct {
	name  string
	items map[K]*Counter
	count int64
}

func NewHistogram[K Key](name string) *Histogram[K] {
	h := &Histogram[K]{name: name}
	h.Reset()
	return h
}

func (h *Histogram[K]) Name() string {
	return h.name
}

// Add records one observation of case x with weight 1.
func (h *Histogram[K]) Add(x K) {
	h.AddN(x, 1)
}

// AddN records one observation of case x with weight y.
func (h *Histogram[K]) AddN(x K, y float64) {
	c, ok := h.items[x]
	if !ok {
		c = &Counter{}
		h.items[x] = c
	}
	c.Add(y)
	h.count++
}

// Count returns the number of observations, regardless of weight.
func (h *Histogram[K]) Count() int64 {
	return h.count
}

func (h *Histogram[K]) Empty() bool {
	return h.count == 0
}

// CasesCount returns the number of distinct cases.
func (h *Histogram[K]) CasesCount() int {
	return len(h.items)
}

// Cases returns the distinct cases in ascending order.
func (h *Histogram[K]) Cases() []K {
	keys := maps.Keys(h.items)
	slices.Sort(keys)
	return keys
}

// Get returns the weight recorded for case x.
func (h *Histogram[K]) Get(x K) float64 {
	if c, ok := h.items[x]; ok {
		return c.Count()
	}
	return 0
}

// NormalizeTotal divides every case by the number of observations.
func (h *Histogram[K]) NormalizeTotal() {
	if h.count == 0 {
		return
	}
	n := float64(h.count)
	for _, c := range h.items {
		c.Divide(n)
	}
}

func (h *Histogram[K]) Reset() {
	h.items = make(map[K]*Counter)
	h.count = 0
}

func (h *Histogram[K]) String() string {
	var b strings.Builder
	b.WriteString("Histogram(")
	if h.name != "" {
		b.WriteString(h.name)
		b.WriteByte(',')
	}
	if h.Empty() {
		b.WriteString("empty)")
		return b.String()
	}
	for i, k := range h.Cases() {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%v=%s", k, h.items[k])
	}
	fmt.Fprintf(&b, ",count=%d)", h.count)
	return b.String()
}
