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

package feed

import (
	"context"
)

type sample struct {
	x   float64
	gap bool
}

// Pump gives a Sink a single owning goroutine. Any number of producers
// may call Add concurrently; the sink sees the values one at a time.
// The sink must not be touched by anyone else until Close returns.
type Pump struct {
	sink    Sink
	samples chan sample
	done    chan struct{}
}

func NewPump(sink Sink, buffer int) *Pump {
	p := &Pump{
		sink:    sink,
		samples: make(chan sample, buffer),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Pump) run() {
	defer close(p.done)
	gapSink, handlesGaps := p.sink.(GapSink)
	for s := range p.samples {
		if s.gap {
			if handlesGaps {
				gapSink.AddGap()
			}
			continue
		}
		p.sink.Add(s.x)
	}
}

// Send queues x, blocking while the buffer is full or until ctx is done.
// It must not be called after Close.
func (p *Pump) Send(ctx context.Context, x float64) error {
	return p.send(ctx, sample{x: x})
}

// SendGap queues a break in the series.
func (p *Pump) SendGap(ctx context.Context) error {
	return p.send(ctx, sample{gap: true})
}

func (p *Pump) send(ctx context.Context, s sample) error {
	select {
	case p.samples <- s:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Add queues x without a deadline, so a Pump can itself serve as a Sink.
func (p *Pump) Add(x float64) {
	p.samples <- sample{x: x}
}

// AddGap queues a break in the series without a deadline.
func (p *Pump) AddGap() {
	p.samples <- sample{gap: true}
}

// Close waits for every queued value to reach the sink and stops the
// owning goroutine.
func (p *Pump) Close() {
	close(p.samples)
	<-p.done
}
