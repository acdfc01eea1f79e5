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

package pdatastats

import (
	"strings"
	"time"

	"go.opentelemetry.io/collector/pdata/pcommon"
	"go.opentelemetry.io/collector/pdata/pmetric"

	"github.com/cardinalhq/livestat/internal/registry"
)

// Emitter turns registry snapshots into metrics. Every series becomes a
// Summary with count, sum, min (quantile 0), max (quantile 1) and, when
// the series keeps a sketch, the configured quantiles; mean and standard
// deviation go out as two gauges next to it. Quantiles must be ascending.
type Emitter struct {
	Quantiles []float64
	ScopeName string
}

// Emit builds one ResourceMetrics per non-empty series.
func (e *Emitter) Emit(snaps []registry.Snapshot, start, now time.Time) pmetric.Metrics {
	md := pmetric.NewMetrics()
	startTs := pcommon.NewTimestampFromTime(start)
	ts := pcommon.NewTimestampFromTime(now)

	for _, snap := range snaps {
		summary, ok := snap.Stat.Summary()
		if !ok {
			continue
		}

		rm := md.ResourceMetrics().AppendEmpty()
		sm := rm.ScopeMetrics().AppendEmpty()
		sm.Scope().SetName(e.ScopeName)

		m := sm.Metrics().AppendEmpty()
		m.SetName(snap.Name)
		dp := m.SetEmptySummary().DataPoints().AppendEmpty()
		dp.SetStartTimestamp(startTs)
		dp.SetTimestamp(ts)
		dp.SetCount(uint64(summary.Count))
		dp.SetSum(summary.Sum)

		qv := dp.QuantileValues()
		appendQuantile(qv, 0, summary.Min)
		if snap.Sketch != nil && len(e.Quantiles) > 0 && !snap.Sketch.IsEmpty() {
			values, err := snap.Sketch.GetValuesAtQuantiles(e.Quantiles)
			if err == nil {
				for i, q := range e.Quantiles {
					if q > 0 && q < 1 {
						appendQuantile(qv, q, values[i])
					}
				}
			}
		}
		appendQuantile(qv, 1, summary.Max)

		setAttributes(rm.Resource().Attributes(), dp.Attributes(), snap.Attributes)

		appendGauge(sm, snap, snap.Name+".mean", summary.Mean, startTs, ts)
		appendGauge(sm, snap, snap.Name+".std", summary.Std, startTs, ts)
	}
	return md
}

func appendQuantile(qv pmetric.SummaryDataPointValueAtQuantileSlice, q float64, v float64) {
	item := qv.AppendEmpty()
	item.SetQuantile(q)
	item.SetValue(v)
}

func appendGauge(sm pmetric.ScopeMetrics, snap registry.Snapshot, name string, v float64, start, ts pcommon.Timestamp) {
	m := sm.Metrics().AppendEmpty()
	m.SetName(name)
	dp := m.SetEmptyGauge().DataPoints().AppendEmpty()
	dp.SetStartTimestamp(start)
	dp.SetTimestamp(ts)
	dp.SetDoubleValue(v)
	for k, val := range snap.Attributes {
		if tag, ok := strings.CutPrefix(k, metricPrefix); ok {
			dp.Attributes().PutStr(tag, val)
		}
	}
}

// setAttributes splits series attributes back into resource and data
// point attributes.
func setAttributes(resource pcommon.Map, point pcommon.Map, attrs map[string]string) {
	for k, v := range attrs {
		if tag, ok := strings.CutPrefix(k, resourcePrefix); ok {
			resource.PutStr(tag, v)
			continue
		}
		if tag, ok := strings.CutPrefix(k, metricPrefix); ok {
			point.PutStr(tag, v)
			continue
		}
		point.PutStr(k, v)
	}
}
