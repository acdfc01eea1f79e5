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

package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/cardinalhq/livestat/internal/registry"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	ret := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			ret[m.Name] = m.Data
		}
	}
	return ret
}

func TestTelemetry(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	r := registry.NewRegistry()
	for _, x := range []float64{10, 20, 15} {
		require.NoError(t, r.Add("x", map[string]string{"host": "a"}, x))
	}
	require.NoError(t, r.Add("y", nil, 1))

	tel, err := Register(provider.Meter("livestat"), r, attribute.String("job", "test"))
	require.NoError(t, err)

	data := collect(t, reader)

	series, ok := data["livestat.series"].(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, series.DataPoints, 1)
	assert.Equal(t, int64(2), series.DataPoints[0].Value)

	mean, ok := data["livestat.mean"].(metricdata.Gauge[float64])
	require.True(t, ok)
	require.Len(t, mean.DataPoints, 2)
	var found bool
	for _, dp := range mean.DataPoints {
		name, _ := dp.Attributes.Value(attribute.Key(seriesAttr))
		if name.AsString() != "x" {
			continue
		}
		found = true
		assert.Equal(t, 15.0, dp.Value)
		host, _ := dp.Attributes.Value("host")
		assert.Equal(t, "a", host.AsString())
		job, _ := dp.Attributes.Value("job")
		assert.Equal(t, "test", job.AsString())
	}
	assert.True(t, found)

	std, ok := data["livestat.std"].(metricdata.Gauge[float64])
	require.True(t, ok)
	for _, dp := range std.DataPoints {
		name, _ := dp.Attributes.Value(attribute.Key(seriesAttr))
		if name.AsString() == "x" {
			assert.Equal(t, 5.0, dp.Value)
		}
	}

	count, ok := data["livestat.count"].(metricdata.Gauge[int64])
	require.True(t, ok)
	assert.Len(t, count.DataPoints, 2)

	require.NoError(t, r.Add("x", map[string]string{"host": "a"}, 35))
	data = collect(t, reader)
	mean, ok = data["livestat.mean"].(metricdata.Gauge[float64])
	require.True(t, ok)
	for _, dp := range mean.DataPoints {
		name, _ := dp.Attributes.Value(attribute.Key(seriesAttr))
		if name.AsString() == "x" {
			assert.Equal(t, 20.0, dp.Value)
		}
	}

	require.NoError(t, tel.Shutdown())
}
