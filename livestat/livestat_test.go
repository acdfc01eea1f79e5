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

import (
	"math"
	"math/rand"
	"testing"

	"github.com/aclements/go-moremath/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/livestat/moments"
)

func statOf(name string, xs ...float64) *LiveStat {
	s := New(name)
	s.AddAll(xs...)
	return s
}

func randomSeries(seed int64, n int, offset float64) []float64 {
	r := rand.New(rand.NewSource(seed))
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = offset + r.NormFloat64()*3
	}
	return xs
}

func assertSameStats(t *testing.T, want, got *LiveStat) {
	t.Helper()
	assert.Equal(t, want.Count(), got.Count(), "count")
	assert.InEpsilon(t, want.Mean(), got.Mean(), 1e-9, "mean")
	assert.InEpsilon(t, want.Variance(), got.Variance(), 1e-9, "variance")
	assert.Equal(t, want.Min(), got.Min(), "min")
	assert.Equal(t, want.Max(), got.Max(), "max")
}

func TestLiveStat_Scenario(t *testing.T) {
	x := statOf("x", 10, 20, 15)
	assert.Equal(t, int64(3), x.Count())
	assert.Equal(t, 15.0, x.Mean())
	assert.Equal(t, 10.0, x.Min())
	assert.Equal(t, 20.0, x.Max())
	assert.Equal(t, 10.0, x.Span())
	assert.Equal(t, 45.0, x.Sum())
	assert.Equal(t, 25.0, x.Variance())
	assert.Equal(t, 5.0, x.Std())
	assert.Equal(t, "LiveStat(x,mean=15,std=5,min=10,max=20,count=3)", x.String())

	y := statOf("y", 210, 220, 215)
	merged := x.Clone()
	merged.Merge(y)
	assert.Equal(t, int64(6), merged.Count())
	assert.Equal(t, 115.0, merged.Mean())
	assert.Equal(t, 10.0, merged.Min())
	assert.Equal(t, 220.0, merged.Max())
	assert.Equal(t, 690.0, merged.Sum())

	x.Translate(2)
	assert.Equal(t, 17.0, x.Mean())
	assert.Equal(t, 12.0, x.Min())
	assert.Equal(t, 22.0, x.Max())
	assert.Equal(t, 5.0, x.Std())
}

func TestLiveStat_MatchesFromSequence(t *testing.T) {
	tests := []struct {
		name   string
		offset float64
		n      int
	}{
		{"small", 0, 50},
		{"shifted", 1e6, 500},
		{"two values", -4, 2},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xs := randomSeries(int64(i+1), tt.n, tt.offset)
			s := statOf("", xs...)
			ref, err := moments.ToStatistics(moments.FromSequence(xs))
			require.NoError(t, err)

			assert.Equal(t, ref.Count, s.Count())
			assert.InEpsilon(t, ref.Mean, s.Mean(), 1e-9)
			assert.InEpsilon(t, ref.Var, s.Variance(), 1e-9)
			assert.InEpsilon(t, ref.Std, s.Std(), 1e-9)
		})
	}
}

func TestLiveStat_Empty(t *testing.T) {
	s := New("e")
	assert.True(t, s.Empty())
	assert.Equal(t, int64(0), s.Count())
	assert.True(t, math.IsNaN(s.Mean()))
	assert.True(t, math.IsNaN(s.Min()))
	assert.True(t, math.IsNaN(s.Max()))
	assert.True(t, math.IsNaN(s.Sum()))
	assert.True(t, math.IsNaN(s.Span()))
	assert.True(t, math.IsNaN(s.Variance()))
	assert.True(t, math.IsNaN(s.Std()))
	assert.Equal(t, "LiveStat(e,empty)", s.String())
	assert.Equal(t, "LiveStat(empty)", New("").String())

	_, ok := s.Summary()
	assert.False(t, ok)

	var zero LiveStat
	assert.True(t, zero.Empty())
}

func TestLiveStat_ResetDropsState(t *testing.T) {
	s := statOf("r", 1, 2, 3)
	s.Reset()
	assert.True(t, s.Empty())
	assert.Equal(t, "r", s.Name())
	assert.True(t, math.IsNaN(s.Mean()))
	assert.True(t, math.IsNaN(s.Std()))

	s.Add(7)
	assert.Equal(t, 7.0, s.Mean())
	assert.Equal(t, 0.0, s.Variance())
}

func TestLiveStat_SingleValue(t *testing.T) {
	s := statOf("", 4)
	assert.Equal(t, 4.0, s.Mean())
	assert.Equal(t, 0.0, s.Variance())
	assert.Equal(t, 0.0, s.Std())
	assert.Equal(t, 0.0, s.Span())
}

func TestLiveStat_VarianceCache(t *testing.T) {
	s := New("")
	for i, x := range randomSeries(7, 40, 3) {
		s.Add(x)
		cached := s.Variance()
		assert.Equal(t, varianceClean, s.state)
		if s.count > 1 {
			assert.Equal(t, s.m2/float64(s.count-1), cached, "step %d", i)
		}
		assert.Equal(t, cached, s.Variance())
	}
}

func TestLiveStat_Merge(t *testing.T) {
	xs := randomSeries(42, 200, 10)
	whole := statOf("", xs...)
	for _, split := range []int{1, 50, 100, 199} {
		a := statOf("a", xs[:split]...)
		b := statOf("b", xs[split:]...)

		ab := a.Clone()
		ab.Merge(b)
		assertSameStats(t, whole, ab)
		assert.Equal(t, "a", ab.Name())

		ba := b.Clone()
		ba.Merge(a)
		assert.Equal(t, ab.Count(), ba.Count())
		assert.InEpsilon(t, ab.Mean(), ba.Mean(), 1e-12)
		assert.InEpsilon(t, ab.Variance(), ba.Variance(), 1e-12)
		assert.Equal(t, ab.Min(), ba.Min())
		assert.Equal(t, ab.Max(), ba.Max())
		assert.InEpsilon(t, whole.Sum(), ab.Sum(), 1e-9)

		var sa, sb stats.StreamStats
		for _, x := range xs[:split] {
			sa.Add(x)
		}
		for _, x := range xs[split:] {
			sb.Add(x)
		}
		sa.Combine(&sb)
		assert.Equal(t, int64(sa.Count), ab.Count())
		assert.InEpsilon(t, sa.Mean(), ab.Mean(), 1e-12)
		assert.InEpsilon(t, sa.Variance(), ab.Variance(), 1e-9)
		assert.Equal(t, sa.Min, ab.Min())
		assert.Equal(t, sa.Max, ab.Max())
	}
}

func TestLiveStat_MergeEmpty(t *testing.T) {
	full := statOf("full", 1, 2, 3, 4)

	s := New("target")
	s.Merge(full)
	assertSameStats(t, full, s)
	assert.Equal(t, full, s)
	assert.Equal(t, "full", s.Name())

	before := full.Clone()
	full.Merge(New("nothing"))
	full.Merge(nil)
	assert.Equal(t, before, full)

	empty := New("")
	empty.Merge(New(""))
	assert.True(t, empty.Empty())
}

func TestLiveStat_MergeDoesNotAlias(t *testing.T) {
	src := statOf("src", 1, 2)
	dst := New("")
	dst.Merge(src)
	src.Add(100)
	assert.Equal(t, int64(2), dst.Count())
	assert.Equal(t, 1.5, dst.Mean())
}

func TestLiveStat_CloneCopy(t *testing.T) {
	s := statOf("orig", 3, 5, 9)
	c := s.Clone()
	assert.Equal(t, s.String(), c.String())
	c.Add(100)
	assert.Equal(t, int64(3), s.Count())

	var d LiveStat
	d.Copy(s)
	assert.Equal(t, "orig", d.Name())
	assert.Equal(t, s.Mean(), d.Mean())
	assert.Equal(t, s.Std(), d.Std())

	d.Copy(New("blank"))
	assert.True(t, d.Empty())
	assert.Equal(t, "blank", d.Name())
}

func TestAddValues(t *testing.T) {
	s := New("")
	AddValues(s, 1, 2, 3)
	AddValues(s, int64(4))
	AddValues(s, float32(5))
	assert.Equal(t, int64(5), s.Count())
	assert.Equal(t, 3.0, s.Mean())
}

func TestLiveStat_Summary(t *testing.T) {
	s := statOf("sum", 10, 20, 15)
	sum, ok := s.Summary()
	require.True(t, ok)
	assert.Equal(t, Summary{Name: "sum", Count: 3, Sum: 45, Mean: 15, Std: 5, Min: 10, Max: 20}, sum)
}
