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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJarqueBera(t *testing.T) {
	s := FromSequence(referenceX).Statistics()
	assert.InDelta(t, 0.4937, JarqueBeraStatistic(s), 1e-3)

	jb, err := JarqueBeraTest(s, 0.05)
	require.NoError(t, err)
	assert.False(t, jb.Reject)
	assert.InDelta(t, 0.7813, jb.PValue, 1e-3)
}

func TestJarqueBera_Errors(t *testing.T) {
	s := FromSequence(referenceX).Statistics()
	_, err := JarqueBeraTest(s, 0)
	assert.Error(t, err)
	_, err = JarqueBeraTest(s, 1)
	assert.Error(t, err)

	_, err = JarqueBeraTest(Statistics{Count: 1}, 0.05)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestJarqueBera_RejectsSkewed(t *testing.T) {
	s := Statistics{Count: 1000, Skewness: 2, Kurtosis: 9}
	jb, err := JarqueBeraTest(s, 0.05)
	require.NoError(t, err)
	assert.True(t, jb.Reject)
}
