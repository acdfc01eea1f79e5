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

package livestat

// DeltaLiveStat accumulates the differences between consecutive values
// of a series. Its readers describe the deltas, not the absolute values.
type DeltaLiveStat struct {
	stat LiveStat

	last    float64
	hasLast bool
	dlast   float64
}

// NewDelta returns an empty delta accumulator.
func NewDelta(name string) *DeltaLiveStat {
	return &DeltaLiveStat{stat: LiveStat{name: name}}
}

// Add records the next absolute value. The first value after creation,
// a gap or ResetLast only primes the series.
func (d *DeltaLiveStat) Add(x float64) {
	if !d.hasLast {
		d.last = x
		d.hasLast = true
		d.dlast = 0
		return
	}
	d.dlast = x - d.last
	d.stat.Add(d.dlast)
	d.last = x
}

// AddGap marks a break in the series. The next value starts a new run of
// deltas; the statistics gathered so far are kept.
func (d *DeltaLiveStat) AddGap() {
	d.hasLast = false
}

// AddValue adds *x, or a gap when x is nil.
func (d *DeltaLiveStat) AddValue(x *float64) {
	if x == nil {
		d.AddGap()
		return
	}
	d.Add(*x)
}

// ResetLast forgets the previous value and zeroes the last delta while
// keeping the statistics.
func (d *DeltaLiveStat) ResetLast() {
	d.hasLast = false
	d.dlast = 0
}

// Reset empties the accumulator and forgets the previous value.
func (d *DeltaLiveStat) Reset() {
	d.stat.Reset()
	d.hasLast = false
	d.dlast = 0
}

// Last returns the previous absolute value, if any.
func (d *DeltaLiveStat) Last() (float64, bool) {
	return d.last, d.hasLast
}

// DeltaLast returns the most recent delta.
func (d *DeltaLiveStat) DeltaLast() float64 {
	return d.dlast
}

// Stat returns a copy of the statistics of the deltas.
func (d *DeltaLiveStat) Stat() *LiveStat {
	return d.stat.Clone()
}

// Clone returns an independent copy of d.
func (d *DeltaLiveStat) Clone() *DeltaLiveStat {
	c := *d
	return &c
}

// Copy makes d an exact copy of other.
func (d *DeltaLiveStat) Copy(other *DeltaLiveStat) {
	*d = *other
}

func (d *DeltaLiveStat) Name() string      { return d.stat.Name() }
func (d *DeltaLiveStat) Empty() bool       { return d.stat.Empty() }
func (d *DeltaLiveStat) Count() int64      { return d.stat.Count() }
func (d *DeltaLiveStat) Sum() float64      { return d.stat.Sum() }
func (d *DeltaLiveStat) Mean() float64     { return d.stat.Mean() }
func (d *DeltaLiveStat) Min() float64      { return d.stat.Min() }
func (d *DeltaLiveStat) Max() float64      { return d.stat.Max() }
func (d *DeltaLiveStat) Span() float64     { return d.stat.Span() }
func (d *DeltaLiveStat) Variance() float64 { return d.stat.Variance() }
func (d *DeltaLiveStat) Std() float64      { return d.stat.Std() }
