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
	"fmt"
	"math"
)

// JarqueBera is the outcome of a Jarque-Bera normality test.
type JarqueBera struct {
	Statistic float64 `json:"statistic" yaml:"statistic"`
	PValue    float64 `json:"pvalue" yaml:"pvalue"`
	Reject    bool    `json:"reject" yaml:"reject"`
}

// JarqueBeraStatistic returns n/6 * (skewness^2 + (kurtosis-3)^2/4).
func JarqueBeraStatistic(s Statistics) float64 {
	ex := s.Kurtosis - 3
	return float64(s.Count) / 6 * (s.Skewness*s.Skewness + ex*ex/4)
}

// JarqueBeraTest tests the sample summarized by s for normality at
// significance alpha. The statistic is asymptotically chi-squared with two
// degrees of freedom, whose survival function is exp(-x/2).
func JarqueBeraTest(s Statistics, alpha float64) (JarqueBera, error) {
	if alpha <= 0 || alpha >= 1 {
		return JarqueBera{}, fmt.Errorf("jarque-bera: alpha %v out of (0, 1)", alpha)
	}
	if s.Count < 2 {
		return JarqueBera{}, fmt.Errorf("jarque-bera on %d observations: %w", s.Count, ErrInsufficientData)
	}
	jb := JarqueBeraStatistic(s)
	p := math.Exp(-jb / 2)
	return JarqueBera{
		Statistic: jb,
		PValue:    p,
		Reject:    p < alpha,
	}, nil
}
