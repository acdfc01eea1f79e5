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

// Package livestat computes count, sum, mean, variance, min and max of a
// scalar series as values are produced, without keeping the values.
//
// A LiveStat is owned by a single goroutine. Use Locked, or hand the
// values to one owning goroutine, when several producers feed one series.
package livestat

import (
	"math"

	"golang.org/x/exp/constraints"
)

type varianceState uint8

const (
	// varianceClean means the cached variance matches count and m2.
	varianceClean varianceState = iota
	// varianceDirty means the cache must be recomputed before it is read.
	varianceDirty
)

// Reader is the read-only view shared by LiveStat and DeltaLiveStat.
type Reader interface {
	Name() string
	Empty() bool
	Count() int64
	Sum() float64
	Mean() float64
	Min() float64
	Max() float64
	Span() float64
	Variance() float64
	Std() float64
	String() string
}

var (
	_ Reader = (*LiveStat)(nil)
	_ Reader = (*DeltaLiveStat)(nil)
)

// LiveStat accumulates the statistics of a scalar series.
//
// The zero value is an empty, unnamed accumulator. When empty, every value
// reader returns NaN. With a single observation Variance and Std return 0;
// that is a degenerate fallback, not a meaningful variance.
type LiveStat struct {
	name string

	count int64
	min   float64
	max   float64
	sum   float64
	mean  float64
	m2    float64

	variance float64
	state    varianceState
}

// New returns an empty accumulator. The name is only used by String.
func New(name string) *LiveStat {
	return &LiveStat{name: name}
}

func (s *LiveStat) Name() string {
	return s.name
}

// SetName changes the display name.
func (s *LiveStat) SetName(name string) {
	s.name = name
}

// Empty reports whether no value has been added.
func (s *LiveStat) Empty() bool {
	return s.count == 0
}

func (s *LiveStat) Count() int64 {
	return s.count
}

func (s *LiveStat) Sum() float64 {
	if s.Empty() {
		return math.NaN()
	}
	return s.sum
}

func (s *LiveStat) Mean() float64 {
	if s.Empty() {
		return math.NaN()
	}
	return s.mean
}

func (s *LiveStat) Min() float64 {
	if s.Empty() {
		return math.NaN()
	}
	return s.min
}

func (s *LiveStat) Max() float64 {
	if s.Empty() {
		return math.NaN()
	}
	return s.max
}

// Span returns max - min.
func (s *LiveStat) Span() float64 {
	if s.Empty() {
		return math.NaN()
	}
	return s.max - s.min
}

// Variance returns the sample variance, m2/(count-1).
func (s *LiveStat) Variance() float64 {
	if s.Empty() {
		return math.NaN()
	}
	if s.state == varianceDirty {
		s.finalize()
	}
	return s.variance
}

// Std returns the sample standard deviation.
func (s *LiveStat) Std() float64 {
	return math.Sqrt(s.Variance())
}

func (s *LiveStat) finalize() {
	if s.count > 1 {
		s.variance = s.m2 / float64(s.count-1)
	} else {
		s.variance = 0
	}
	s.state = varianceClean
}

// Add appends one value to the series.
func (s *LiveStat) Add(x float64) {
	if s.count == 0 {
		s.count = 1
		s.min = x
		s.max = x
		s.sum = x
		s.mean = x
		s.m2 = 0
		s.variance = 0
		s.state = varianceClean
		return
	}

	s.count++
	if x < s.min {
		s.min = x
	}
	if x > s.max {
		s.max = x
	}
	delta := x - s.mean
	s.mean += delta / float64(s.count)
	s.m2 += (x - s.mean) * delta
	s.sum += x
	s.state = varianceDirty
}

// AddAll appends every value of xs in order.
func (s *LiveStat) AddAll(xs ...float64) {
	for _, x := range xs {
		s.Add(x)
	}
}

// AddValues appends integer or floating point values to s.
func AddValues[T constraints.Integer | constraints.Float](s *LiveStat, xs ...T) {
	for _, x := range xs {
		s.Add(float64(x))
	}
}

// Reset empties the accumulator. The name is kept.
func (s *LiveStat) Reset() {
	*s = LiveStat{name: s.name}
}

// Merge folds the observations summarized by other into s, so that s
// describes the union of both series. An empty s becomes a copy of
// other, name included; an empty other leaves s unchanged.
func (s *LiveStat) Merge(other *LiveStat) {
	if other == nil || other.Empty() {
		return
	}
	if s.Empty() {
		s.Copy(other)
		return
	}

	if other.min < s.min {
		s.min = other.min
	}
	if other.max > s.max {
		s.max = other.max
	}

	countOld := s.count
	s.count += other.count
	s.sum += other.sum

	delta := other.mean - s.mean
	n := float64(s.count)
	s.mean += delta * float64(other.count) / n
	s.m2 += other.m2 + delta*delta*(float64(other.count)*float64(countOld))/n
	s.state = varianceDirty
}

// Clone returns an independent copy of s.
func (s *LiveStat) Clone() *LiveStat {
	c := *s
	return &c
}

// Copy makes s an exact copy of other, name included.
func (s *LiveStat) Copy(other *LiveStat) {
	*s = *other
}

// Summary is a point-in-time snapshot of the derived statistics.
type Summary struct {
	Name  string  `json:"name,omitempty" yaml:"name,omitempty"`
	Count int64   `json:"count" yaml:"count"`
	Sum   float64 `json:"sum" yaml:"sum"`
	Mean  float64 `json:"mean" yaml:"mean"`
	Std   float64 `json:"std" yaml:"std"`
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
}

// Summary returns the derived statistics, or false when s is empty.
func (s *LiveStat) Summary() (Summary, bool) {
	if s.Empty() {
		return Summary{Name: s.name}, false
	}
	return Summary{
		Name:  s.name,
		Count: s.count,
		Sum:   s.sum,
		Mean:  s.mean,
		Std:   s.Std(),
		Min:   s.min,
		Max:   s.max,
	}, true
}
