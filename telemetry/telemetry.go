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

// Package telemetry publishes the series of a registry as OpenTelemetry
// observable gauges.
package telemetry

import (
	"context"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/cardinalhq/livestat/internal/registry"
)

const (
	seriesAttr = "series"
	prefix     = "livestat."
)

type Telemetry struct {
	registry     *registry.Registry
	baseAttr     []attribute.KeyValue
	registration metric.Registration

	count  metric.Int64ObservableGauge
	mean   metric.Float64ObservableGauge
	std    metric.Float64ObservableGauge
	min    metric.Float64ObservableGauge
	max    metric.Float64ObservableGauge
	series metric.Int64ObservableGauge
}

// Register creates the gauges on meter and starts reporting r on every
// collection. baseAttr is added to every observation.
func Register(meter metric.Meter, r *registry.Registry, baseAttr ...attribute.KeyValue) (*Telemetry, error) {
	t := &Telemetry{
		registry: r,
		baseAttr: baseAttr,
	}

	var err error
	t.count, err = meter.Int64ObservableGauge(
		prefix+"count",
		metric.WithDescription("The number of values accumulated by the series"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}
	t.mean, err = meter.Float64ObservableGauge(
		prefix+"mean",
		metric.WithDescription("The running mean of the series"),
	)
	if err != nil {
		return nil, err
	}
	t.std, err = meter.Float64ObservableGauge(
		prefix+"std",
		metric.WithDescription("The running sample standard deviation of the series"),
	)
	if err != nil {
		return nil, err
	}
	t.min, err = meter.Float64ObservableGauge(
		prefix+"min",
		metric.WithDescription("The smallest value seen by the series"),
	)
	if err != nil {
		return nil, err
	}
	t.max, err = meter.Float64ObservableGauge(
		prefix+"max",
		metric.WithDescription("The largest value seen by the series"),
	)
	if err != nil {
		return nil, err
	}
	t.series, err = meter.Int64ObservableGauge(
		prefix+"series",
		metric.WithDescription("The number of series held by the registry"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	t.registration, err = meter.RegisterCallback(t.observe, t.count, t.mean, t.std, t.min, t.max, t.series)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Telemetry) observe(_ context.Context, o metric.Observer) error {
	snaps := t.registry.Snapshot()
	o.ObserveInt64(t.series, int64(len(snaps)), metric.WithAttributes(t.baseAttr...))

	for _, snap := range snaps {
		summary, ok := snap.Stat.Summary()
		if !ok {
			continue
		}
		opt := metric.WithAttributeSet(t.attributes(snap))
		o.ObserveInt64(t.count, summary.Count, opt)
		o.ObserveFloat64(t.mean, summary.Mean, opt)
		o.ObserveFloat64(t.std, summary.Std, opt)
		o.ObserveFloat64(t.min, summary.Min, opt)
		o.ObserveFloat64(t.max, summary.Max, opt)
	}
	return nil
}

func (t *Telemetry) attributes(snap registry.Snapshot) attribute.Set {
	kvs := slices.Clone(t.baseAttr)
	kvs = append(kvs, attribute.String(seriesAttr, snap.Name))
	for k, v := range snap.Attributes {
		kvs = append(kvs, attribute.String(k, v))
	}
	return attribute.NewSet(kvs...)
}

// Shutdown stops reporting.
func (t *Telemetry) Shutdown() error {
	return t.registration.Unregister()
}
