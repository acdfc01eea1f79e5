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

// Package tally holds simple counting companions to livestat: a Counter
// and a Histogram of counters keyed by case.
package tally

import "golang.org/x/exp/constraints"

// Tally is the surface shared by Counter and Histogram.
type Tally interface {
	Empty() bool
	String() string
}

var (
	_ Tally = (*Counter)(nil)
	_ Tally = (*Histogram[string])(nil)
	_ Tally = (*Histogram[int])(nil)
)

// Key is any case type a Histogram can sort.
type Key interface {
	constraints.Ordered
}
