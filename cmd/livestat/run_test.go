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

// Command livestat reads numbers from files or stdin and prints their
package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/collector/pdata/pmetric"
	"go.uber.org/zap/zaptest"

	"github.com/cardinalhq/livestat/internal/config"
)

func newRunner(t *testing.T, doc string, stdin string) (*runner, *bytes.Buffer) {
	t.Helper()
	cfg, err := config.Parse([]byte(doc))
	require.NoError(t, err)
	out := &bytes.Buffer{}
	return &runner{
		cfg:    cfg,
		logger: zaptest.NewLogger(t),
		stdin:  strings.NewReader(stdin),
		stdout: out,
	}, out
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunPlain(t *testing.T) {
	r, out := newRunner(t, "", "1 2\n3\n")
	require.NoError(t, r.run(context.Background()))

	s := out.String()
	assert.Contains(t, s, "== - (3 values, 0 gaps, 0 invalid)")
	assert.Contains(t, s, "LiveStat(x,mean=2,std=1,min=1,max=3,count=3)")
	assert.Contains(t, s, "count=3 mean=2 std=1 var=1 popvar=0.666667")
	assert.Contains(t, s, "jarque-bera=")
	assert.NotContains(t, s, "== total")
}

func TestRunDelta(t *testing.T) {
	r, out := newRunner(t, "input:\n  mode: delta\n  name: ticks\n", "1 3 6 - 10 11\n")
	require.NoError(t, r.run(context.Background()))

	s := out.String()
	assert.Contains(t, s, "(5 values, 1 gaps, 0 invalid)")
	assert.Contains(t, s, "DeltaLiveStat(ticks,mean=2,std=1,min=1,max=3,count=3)")
	assert.Contains(t, s, "count=3 mean=2 std=1 var=1")
}

func TestRunFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "1\n2\n3\n")
	b := writeFile(t, dir, "b.txt", "4, 5, 6 # trailing comment\n")

	r, out := newRunner(t, "registry:\n  quantiles: [0.5]\n", "")
	r.cfg.Input.Files = []string{a, b}
	require.NoError(t, r.run(context.Background()))

	s := out.String()
	assert.Contains(t, s, "== "+a)
	assert.Contains(t, s, "== "+b)
	assert.Contains(t, s, "LiveStat(x,mean=5,std=1,min=4,max=6,count=3)")
	assert.Contains(t, s, "== total")
	assert.Contains(t, s, "mean=3.5,")
	assert.Contains(t, s, "count=6)")
	assert.Contains(t, s, "q0.5=")
}

func TestRunInsufficientData(t *testing.T) {
	r, out := newRunner(t, "", "5\n")
	require.NoError(t, r.run(context.Background()))

	s := out.String()
	assert.Contains(t, s, "LiveStat(x,mean=5,std=0,min=5,max=5,count=1)")
	assert.Contains(t, s, "statistics: statistics of 1 observations: insufficient data")
}

func TestRunReference(t *testing.T) {
	doc := "reference:\n  count: 3\n  mean: 2.5\n"
	r, out := newRunner(t, doc, "1 2 3\n")
	require.NoError(t, r.run(context.Background()))

	s := out.String()
	assert.Contains(t, s, "reference count: want=3 got=3 diff=0")
	assert.Contains(t, s, "reference mean: want=2.5 got=2 diff=-0.5")
}

func TestRunInvalidInput(t *testing.T) {
	r, out := newRunner(t, "", "1 oops 2\n")
	require.NoError(t, r.run(context.Background()))
	assert.Contains(t, out.String(), "(2 values, 0 gaps, 1 invalid)")

	r, _ = newRunner(t, "input:\n  max_errors: 1\n", "1 a b 2\n")
	assert.Error(t, r.run(context.Background()))
}

func TestRunMissingFile(t *testing.T) {
	r, _ := newRunner(t, "", "")
	r.cfg.Input.Files = []string{filepath.Join(t.TempDir(), "missing.txt")}
	assert.Error(t, r.run(context.Background()))
}

func TestRunOTLP(t *testing.T) {
	r, _ := newRunner(t, "input:\n  name: latency\n", "1 2 3\n")
	r.otlpPath = filepath.Join(t.TempDir(), "metrics.json")
	require.NoError(t, r.run(context.Background()))

	b, err := os.ReadFile(r.otlpPath)
	require.NoError(t, err)
	md, err := (&pmetric.JSONUnmarshaler{}).UnmarshalMetrics(b)
	require.NoError(t, err)

	require.Equal(t, 1, md.ResourceMetrics().Len())
	metrics := md.ResourceMetrics().At(0).ScopeMetrics().At(0).Metrics()
	require.GreaterOrEqual(t, metrics.Len(), 1)
	m := metrics.At(0)
	assert.Equal(t, "latency", m.Name())
	require.Equal(t, pmetric.MetricTypeSummary, m.Type())
	dp := m.Summary().DataPoints().At(0)
	assert.Equal(t, uint64(3), dp.Count())
	assert.Equal(t, 6.0, dp.Sum())
	src, ok := dp.Attributes().Get(sourceAttr)
	require.True(t, ok)
	assert.Equal(t, stdinName, src.Str())
}
