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

package moments

import (
	"errors"
	"fmt"
	"math"
)

// ErrInsufficientData is returned when fewer than two observations are
// available and the sample variance is therefore undefined.
var ErrInsufficientData = errors.New("insufficient data")

// Record keys used by the statistics interchange format.
const (
	KeyCount    = "count"
	KeyMean     = "mean"
	KeyStd      = "std"
	KeyVar      = "var"
	KeyPopVar   = "popvar"
	KeySkewness = "skewness"
	KeyKurtosis = "kurtosis"
)

// Statistics is the descriptive summary derived from Moments.
// Std and Var use the n-1 denominator, PopVar uses n.
type Statistics struct {
	Count    int64   `json:"count" yaml:"count"`
	Mean     float64 `json:"mean" yaml:"mean"`
	Std      float64 `json:"std" yaml:"std"`
	Var      float64 `json:"var" yaml:"var"`
	PopVar   float64 `json:"popvar" yaml:"popvar"`
	Skewness float64 `json:"skewness" yaml:"skewness"`
	Kurtosis float64 `json:"kurtosis" yaml:"kurtosis"`
}

// Record is the loose mapping form of Statistics. Any subset of the keys
// may be present; it is what external toolkits usually hand over.
type Record map[string]float64

// Statistics derives the descriptive statistics without checking the
// sample size. An empty tuple yields NaN for every value field; a single
// observation yields NaN or Inf as IEEE division dictates. Callers must
// check N first.
func (m Moments) Statistics() Statistics {
	if m.N == 0 {
		nan := math.NaN()
		return Statistics{
			Mean:     nan,
			Std:      nan,
			Var:      nan,
			PopVar:   nan,
			Skewness: nan,
			Kurtosis: nan,
		}
	}
	nf := float64(m.N)
	v := m.M2 / (nf - 1)

	mu2 := m.M2 / nf
	mu3 := m.M3 / nf
	mu4 := m.M4 / nf

	return Statistics{
		Count:    m.N,
		Mean:     m.Mean,
		Std:      math.Sqrt(v),
		Var:      v,
		PopVar:   mu2,
		Skewness: mu3 / math.Pow(mu2, 1.5),
		Kurtosis: mu4 / (mu2 * mu2),
	}
}

// ToStatistics derives the descriptive statistics of m. It fails with
// ErrInsufficientData when m holds fewer than two observations.
func ToStatistics(m Moments) (Statistics, error) {
	if m.N < 2 {
		return Statistics{}, fmt.Errorf("statistics of %d observations: %w", m.N, ErrInsufficientData)
	}
	return m.Statistics(), nil
}

// Record returns the full mapping form of s.
func (s Statistics) Record() Record {
	return Record{
		KeyCount:    float64(s.Count),
		KeyMean:     s.Mean,
		KeyStd:      s.Std,
		KeyVar:      s.Var,
		KeyPopVar:   s.PopVar,
		KeySkewness: s.Skewness,
		KeyKurtosis: s.Kurtosis,
	}
}

// FromStatistics rebuilds moments from a full statistics value.
func FromStatistics(s Statistics) Moments {
	m, _ := FromRecord(s.Record())
	return m
}

// FromRecord rebuilds moments from a statistics mapping. The variance is
// taken from the first key present among var, std and popvar; skewness
// and kurtosis default to 0. The result is a best-effort reconstruction
// and need not round-trip through ToStatistics exactly.
func FromRecord(r Record) (Moments, error) {
	count, ok := r[KeyCount]
	if !ok {
		return Moments{}, fmt.Errorf("statistics record: missing %q", KeyCount)
	}
	mean, ok := r[KeyMean]
	if !ok {
		return Moments{}, fmt.Errorf("statistics record: missing %q", KeyMean)
	}
	if count < 0 || count != math.Trunc(count) {
		return Moments{}, fmt.Errorf("statistics record: invalid count %v", count)
	}

	n := int64(count)
	if n == 0 {
		return Empty(), nil
	}
	nf := float64(n)

	var m2 float64
	if v, ok := r[KeyVar]; ok {
		m2 = v * (nf - 1)
	} else if sd, ok := r[KeyStd]; ok {
		m2 = sd * sd * (nf - 1)
	} else if pv, ok := r[KeyPopVar]; ok {
		m2 = pv * nf
	}

	sk := r[KeySkewness]
	ku := r[KeyKurtosis]

	mu2 := m2 / nf
	return Moments{
		N:    n,
		Mean: mean,
		M2:   m2,
		M3:   nf * sk * math.Pow(mu2, 1.5),
		M4:   nf * ku * mu2 * mu2,
	}, nil
}
