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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/collector/pdata/pmetric"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/cardinalhq/livestat/internal/config"
	"github.com/cardinalhq/livestat/internal/feed"
	"github.com/cardinalhq/livestat/internal/registry"
	"github.com/cardinalhq/livestat/livestat"
	"github.com/cardinalhq/livestat/moments"
	"github.com/cardinalhq/livestat/pdatastats"
)

const (
	stdinName  = "-"
	sourceAttr = "source"
)

type runner struct {
	cfg      *config.Config
	logger   *zap.Logger
	stdin    io.Reader
	stdout   io.Writer
	otlpPath string
}

// accumulator fans every value out to the rendered accumulator, the
// higher moments and the registry. It is owned by one feed.Pump.
type accumulator struct {
	name  string
	attrs map[string]string
	reg   *registry.Registry

	plain *livestat.LiveStat
	delta *livestat.DeltaLiveStat

	moments moments.Moments
	err     error
	result  feed.Result
}

func newAccumulator(cfg *config.Config, source string, reg *registry.Registry) *accumulator {
	a := &accumulator{
		name:    cfg.Input.Name,
		attrs:   map[string]string{sourceAttr: source},
		reg:     reg,
		moments: moments.Empty(),
	}
	if cfg.Input.Mode == config.ModeDelta {
		a.delta = livestat.NewDelta(cfg.Input.Name)
	} else {
		a.plain = livestat.New(cfg.Input.Name)
	}
	return a
}

func (a *accumulator) Add(x float64) {
	v := x
	if a.delta != nil {
		last, ok := a.delta.Last()
		a.delta.Add(x)
		if !ok {
			return
		}
		v = x - last
	} else {
		a.plain.Add(x)
	}
	a.moments = moments.AddScalar(a.moments, v)
	if err := a.reg.Add(a.name, a.attrs, v); err != nil && a.err == nil {
		a.err = err
	}
}

func (a *accumulator) AddGap() {
	if a.delta != nil {
		a.delta.AddGap()
	}
}

func (a *accumulator) stat() *livestat.LiveStat {
	if a.delta != nil {
		return a.delta.Stat()
	}
	return a.plain
}

func (a *accumulator) String() string {
	if a.delta != nil {
		return a.delta.String()
	}
	return a.plain.String()
}

func (r *runner) sources() []string {
	if len(r.cfg.Input.Files) == 0 {
		return []string{stdinName}
	}
	return r.cfg.Input.Files
}

func (r *runner) open(source string) (io.ReadCloser, error) {
	if source == stdinName {
		return io.NopCloser(r.stdin), nil
	}
	return os.Open(source)
}

func (r *runner) run(ctx context.Context) error {
	start := time.Now()
	reg := registry.NewRegistry(r.cfg.Registry.Options(r.logger)...)
	parser := feed.NewParser(r.logger, r.cfg.Input.ParserOptions()...)

	sources := r.sources()
	accs := make([]*accumulator, len(sources))
	errs := make([]error, len(sources))

	var wg sync.WaitGroup
	for i, source := range sources {
		accs[i] = newAccumulator(r.cfg, source, reg)
		wg.Add(1)
		go func(i int, source string) {
			defer wg.Done()
			errs[i] = r.consume(ctx, parser, source, accs[i])
		}(i, source)
	}
	wg.Wait()

	if err := multierr.Combine(errs...); err != nil {
		return err
	}

	for i, source := range sources {
		r.report(reg, source, accs[i])
	}
	if len(accs) > 1 {
		r.reportTotal(accs)
	}

	if r.otlpPath != "" {
		return r.writeOTLP(reg, start)
	}
	return nil
}

func (r *runner) consume(ctx context.Context, parser *feed.Parser, source string, acc *accumulator) error {
	in, err := r.open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	pump := feed.NewPump(acc, r.cfg.Input.Buffer)
	res, err := parser.Feed(ctx, in, pump)
	pump.Close()
	acc.result = res

	r.logger.Debug("Consumed source",
		zap.String("source", source),
		zap.Int("lines", res.Lines),
		zap.Int("values", res.Values),
		zap.Int("gaps", res.Gaps),
		zap.Int("invalid", res.Invalid))

	if err != nil {
		if ctx.Err() != nil || r.cfg.Input.MaxErrors > 0 && res.Invalid > r.cfg.Input.MaxErrors {
			return fmt.Errorf("%s: %w", source, err)
		}
		r.logger.Warn("Skipped invalid input", zap.String("source", source), zap.Error(err))
	}
	return acc.err
}

func (r *runner) report(reg *registry.Registry, source string, acc *accumulator) {
	out := r.stdout
	fmt.Fprintf(out, "== %s (%d values, %d gaps, %d invalid)\n", source, acc.result.Values, acc.result.Gaps, acc.result.Invalid)
	fmt.Fprintln(out, acc.String())
	r.reportMoments(acc.moments)

	if snap, ok := reg.Get(acc.name, acc.attrs); ok && snap.Sketch != nil && !snap.Sketch.IsEmpty() {
		for _, q := range r.cfg.Registry.Quantiles {
			v, err := snap.Sketch.GetValueAtQuantile(q)
			if err != nil {
				continue
			}
			fmt.Fprintf(out, "q%g=%.6g ", q, v)
		}
		if len(r.cfg.Registry.Quantiles) > 0 {
			fmt.Fprintln(out)
		}
	}
}

func (r *runner) reportTotal(accs []*accumulator) {
	total := livestat.New(r.cfg.Input.Name)
	m := moments.Empty()
	for _, acc := range accs {
		total.Merge(acc.stat())
		m = moments.Combine(m, acc.moments)
	}
	fmt.Fprintln(r.stdout, "== total")
	fmt.Fprintln(r.stdout, total.String())
	r.reportMoments(m)
}

func (r *runner) reportMoments(m moments.Moments) {
	out := r.stdout
	stats, err := moments.ToStatistics(m)
	if err != nil {
		fmt.Fprintf(out, "statistics: %v\n", err)
		return
	}

	rec := stats.Record()
	keys := []string{
		moments.KeyCount, moments.KeyMean, moments.KeyStd, moments.KeyVar,
		moments.KeyPopVar, moments.KeySkewness, moments.KeyKurtosis,
	}
	for _, k := range keys {
		fmt.Fprintf(out, "%s=%.6g ", k, rec[k])
	}
	fmt.Fprintln(out)

	jb, err := moments.JarqueBeraTest(stats, r.cfg.Normality.Alpha)
	if err == nil {
		fmt.Fprintf(out, "jarque-bera=%.6g p=%.6g normal=%t\n", jb.Statistic, jb.PValue, !jb.Reject)
	}

	if r.cfg.Reference == nil {
		return
	}
	refKeys := make([]string, 0, len(r.cfg.Reference))
	for k := range r.cfg.Reference {
		refKeys = append(refKeys, k)
	}
	slices.Sort(refKeys)
	for _, k := range refKeys {
		got, ok := rec[k]
		if !ok {
			continue
		}
		want := r.cfg.Reference[k]
		fmt.Fprintf(out, "reference %s: want=%.6g got=%.6g diff=%.3g\n", k, want, got, got-want)
	}
}

func (r *runner) writeOTLP(reg *registry.Registry, start time.Time) error {
	emitter := pdatastats.Emitter{
		Quantiles: r.cfg.Registry.Quantiles,
		ScopeName: "github.com/cardinalhq/livestat",
	}
	md := emitter.Emit(reg.Snapshot(), start, time.Now())

	marshaler := &pmetric.JSONMarshaler{}
	b, err := marshaler.MarshalMetrics(md)
	if err != nil {
		return err
	}
	return os.WriteFile(r.otlpPath, b, 0o644)
}
