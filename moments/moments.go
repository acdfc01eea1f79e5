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

// Package moments holds the functional form of the online moment
// accumulator: a value (n, mean, M2, M3, M4) where Mk is the sum of
// (x - mean)^k over every observation folded in so far.
//
// Every function returns a new Moments and leaves its inputs alone.
// Combine follows Terriberry, "Computing Higher-Order Moments Online" (2007).
package moments

// Moments is the running summary of a scalar sample.
type Moments struct {
	N    int64   `json:"n" yaml:"n"`
	Mean float64 `json:"mean" yaml:"mean"`
	M2   float64 `json:"m2" yaml:"m2"`
	M3   float64 `json:"m3" yaml:"m3"`
	M4   float64 `json:"m4" yaml:"m4"`
}

// Empty returns the moments of an empty sample.
func Empty() Moments {
	return Moments{}
}

// FromScalar returns the moments of the single observation x.
func FromScalar(x float64) Moments {
	return Moments{N: 1, Mean: x}
}

// IsEmpty reports whether no observation has been folded in.
func (m Moments) IsEmpty() bool {
	return m.N == 0
}

// Scale returns the moments of the sample with every x replaced by s*x.
// The k-th central moment is homogeneous of degree k.
func Scale(m Moments, s float64) Moments {
	s2 := s * s
	return Moments{
		N:    m.N,
		Mean: s * m.Mean,
		M2:   s2 * m.M2,
		M3:   s2 * s * m.M3,
		M4:   s2 * s2 * m.M4,
	}
}

// Translate returns the moments of the sample with every x replaced by x+t.
func Translate(m Moments, t float64) Moments {
	return Moments{
		N:    m.N,
		Mean: m.Mean + t,
		M2:   m.M2,
		M3:   m.M3,
		M4:   m.M4,
	}
}

// AddScalar folds one observation into m.
// It is the nB == 1 specialization of Combine.
func AddScalar(m Moments, x float64) Moments {
	delta := x - m.Mean
	delta2 := delta * delta
	delta3 := delta2 * delta
	delta4 := delta3 * delta

	nA := float64(m.N)
	nAA := nA * nA
	nX := nA + 1
	nXX := nX * nX
	nXXX := nXX * nX

	return Moments{
		N:    m.N + 1,
		Mean: m.Mean + delta/nX,
		M2:   m.M2 + delta2*nA/nX,
		M3:   m.M3 + delta3*(nA*(nA-1))/nXX - 3*delta*m.M2/nX,
		M4:   m.M4 + delta4*(nA*(nAA-nA+1)/nXXX) + 6*delta2*m.M2/nXX - 4*delta*m.M3/nX,
	}
}

// Combine merges the moments of two disjoint samples into the moments of
// their union.
func Combine(a, b Moments) Moments {
	// the general formula divides by nA+nB
	if b.N == 0 {
		return a
	}
	if a.N == 0 {
		return b
	}

	delta := b.Mean - a.Mean
	delta2 := delta * delta
	delta3 := delta2 * delta
	delta4 := delta3 * delta

	nA := float64(a.N)
	nB := float64(b.N)
	nAB := nA * nB
	nAA := nA * nA
	nBB := nB * nB
	nX := nA + nB
	nXX := nX * nX
	nXXX := nXX * nX

	return Moments{
		N:    a.N + b.N,
		Mean: a.Mean + delta*nB/nX,
		M2:   a.M2 + b.M2 + delta2*nAB/nX,
		M3: a.M3 + b.M3 +
			delta3*(nAB*(nA-nB))/nXX +
			3*delta*(nA*b.M2-nB*a.M2)/nX,
		M4: a.M4 + b.M4 +
			delta4*(nAB*(nAA-nAB+nBB)/nXXX) +
			6*delta2*(nAA*b.M2+nBB*a.M2)/nXX +
			4*delta*(nA*b.M3-nB*a.M3)/nX,
	}
}

// FromSequence computes the moments of xs in two passes: the mean first,
// then the central sums. It is the direct reference for the online path.
func FromSequence(xs []float64) Moments {
	if len(xs) == 0 {
		return Empty()
	}
	n := float64(len(xs))
	mean := 0.0
	for _, x := range xs {
		mean += x / n
	}

	m := Moments{N: int64(len(xs)), Mean: mean}
	for _, x := range xs {
		d := x - mean
		d2 := d * d
		m.M2 += d2
		m.M3 += d2 * d
		m.M4 += d2 * d2
	}
	return m
}

// Fold folds every value of xs into m, one at a time.
func Fold(m Moments, xs ...float64) Moments {
	for _, x := range xs {
		m = AddScalar(m, x)
	}
	return m
}
