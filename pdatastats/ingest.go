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

// Package pdatastats feeds OpenTelemetry metric data points into live
// statistics and turns the statistics back into Summary metrics.
package pdatastats

import (
	"context"
	"math"

	"go.opentelemetry.io/collector/pdata/pcommon"
	"go.opentelemetry.io/collector/pdata/pmetric"
	"go.uber.org/zap"

	"github.com/cardinalhq/livestat/internal/registry"
)

// Attribute key prefixes used to keep resource and data point attributes
// apart inside one series identity.
const (
	resourcePrefix = "resource."
	metricPrefix   = "metric."
)

type Ingester struct {
	registry *registry.Registry
	logger   *zap.Logger
}

func NewIngester(r *registry.Registry, logger *zap.Logger) *Ingester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingester{
		registry: r,
		logger:   logger,
	}
}

// ConsumeMetrics adds every Gauge and Sum data point of md to the series
// named after its metric. Other metric types are skipped. It returns the
// number of data points added.
func (i *Ingester) ConsumeMetrics(ctx context.Context, md pmetric.Metrics) (int, error) {
	added := 0
	for j := 0; j < md.ResourceMetrics().Len(); j++ {
		rm := md.ResourceMetrics().At(j)
		for k := 0; k < rm.ScopeMetrics().Len(); k++ {
			if err := ctx.Err(); err != nil {
				return added, err
			}
			sm := rm.ScopeMetrics().At(k)
			for l := 0; l < sm.Metrics().Len(); l++ {
				added += i.consumeMetric(rm.Resource(), sm.Metrics().At(l))
			}
		}
	}
	return added, nil
}

func (i *Ingester) consumeMetric(res pcommon.Resource, metric pmetric.Metric) int {
	var dps pmetric.NumberDataPointSlice
	switch metric.Type() {
	case pmetric.MetricTypeGauge:
		dps = metric.Gauge().DataPoints()
	case pmetric.MetricTypeSum:
		dps = metric.Sum().DataPoints()
	default:
		return 0
	}

	added := 0
	for n := 0; n < dps.Len(); n++ {
		dp := dps.At(n)
		v, ok := pointValue(dp)
		if !ok {
			continue
		}
		attrs := seriesAttributes(res.Attributes(), dp.Attributes())
		if err := i.registry.Add(metric.Name(), attrs, v); err != nil {
			i.logger.Error("Error adding datapoint", zap.String("metric", metric.Name()), zap.Error(err))
			continue
		}
		added++
	}
	return added
}

func pointValue(dp pmetric.NumberDataPoint) (float64, bool) {
	if dp.Flags().NoRecordedValue() {
		return 0, false
	}
	switch dp.ValueType() {
	case pmetric.NumberDataPointValueTypeInt:
		return float64(dp.IntValue()), true
	case pmetric.NumberDataPointValueTypeDouble:
		v := dp.DoubleValue()
		if math.IsNaN(v) {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}

func seriesAttributes(resource pcommon.Map, point pcommon.Map) map[string]string {
	attrs := make(map[string]string, resource.Len()+point.Len())
	resource.Range(func(k string, v pcommon.Value) bool {
		attrs[resourcePrefix+k] = v.AsString()
		return true
	})
	point.Range(func(k string, v pcommon.Value) bool {
		attrs[metricPrefix+k] = v.AsString()
		return true
	})
	return attrs
}
