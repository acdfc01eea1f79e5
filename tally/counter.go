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

import "strconv"

// Counter accumulates a weight. The zero value is ready to use.
type Counter struct {
	c float64
}

// Add increases the counter by x.
func (c *Counter) Add(x float64) {
	c.c += x
}

// Count returns the accumulated weight.
func (c *Counter) Count() float64 {
	return c.c
}

func (c *Counter) Empty() bool {
	return c.c == 0
}

// Divide scales the counter by 1/x, e.g. to turn counts into frequencies.
func (c *Counter) Divide(x float64) {
	c.c /= x
}

func (c *Counter) String() string {
	return strconv.FormatFloat(c.c, 'g', -1, 64)
}
