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

package registry

import (
	"encoding/binary"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/DataDog/sketches-go/ddsketch"
	"github.com/cespare/xxhash/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"

	"github.com/cardinalhq/livestat/livestat"
)

const defaultIdleTTL = 1 * time.Hour

// ErrKeyCollision is returned when two different series hash to the same key.
var ErrKeyCollision = errors.New("series key collision")

// Registry holds one accumulator per named series. Series are identified
// by name plus attributes. All methods are safe for concurrent use.
type Registry struct {
	sync.Mutex
	series map[uint64]*series

	idleTTL          time.Duration
	relativeAccuracy float64
	clock            clockwork.Clock
	logger           *zap.Logger
}

type series struct {
	name       string
	attributes map[string]string
	stat       *livestat.LiveStat
	sketch     *ddsketch.DDSketch
	lastUpdate time.Time
}

// Snapshot is a copy of one series, safe to use after the lock is released.
type Snapshot struct {
	Key        uint64
	Name       string
	Attributes map[string]string
	Stat       *livestat.LiveStat
	Sketch     *ddsketch.DDSketch
	LastUpdate time.Time
}

type Option func(r *Registry)

// WithIdleTTL sets how long a series may go without updates before Expire
// drops it. Zero disables expiry.
func WithIdleTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		r.idleTTL = ttl
	}
}

// WithQuantiles keeps a DDSketch with the given relative accuracy next to
// every accumulator. Zero disables the sketches.
func WithQuantiles(relativeAccuracy float64) Option {
	return func(r *Registry) {
		r.relativeAccuracy = relativeAccuracy
	}
}

// WithClock sets the clock used for idle expiry.
// This is useful for testing.
func WithClock(clock clockwork.Clock) Option {
	return func(r *Registry) {
		r.clock = clock
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty registry. By default series expire after
// an hour without updates and no sketches are kept.
func NewRegistry(options ...Option) *Registry {
	r := &Registry{
		series:  make(map[uint64]*series),
		idleTTL: defaultIdleTTL,
		clock:   clockwork.NewRealClock(),
		logger:  zap.NewNop(),
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// Key returns the hash identifying a series. Attribute order does not
// matter. Every string is length prefixed so separators inside names or
// values cannot make two identities hash the same input.
func Key(name string, attributes map[string]string) uint64 {
	d := xxhash.New()
	writeField(d, name)
	keys := maps.Keys(attributes)
	slices.Sort(keys)
	for _, k := range keys {
		writeField(d, k)
		writeField(d, attributes[k])
	}
	return d.Sum64()
}

func writeField(d *xxhash.Digest, s string) {
	var n [binary.MaxVarintLen64]byte
	_, _ = d.Write(n[:binary.PutUvarint(n[:], uint64(len(s)))])
	_, _ = d.WriteString(s)
}

func (s *series) matches(name string, attributes map[string]string) bool {
	return s.name == name && maps.Equal(s.attributes, attributes)
}

// lookup returns the series for name and attributes, creating it when
// missing. Called with the lock held.
func (r *Registry) lookup(name string, attributes map[string]string) (*series, error) {
	key := Key(name, attributes)
	s, ok := r.series[key]
	if ok {
		if !s.matches(name, attributes) {
			r.logger.Warn("Series key collision", zap.String("name", name), zap.String("existing", s.name), zap.Uint64("key", key))
			return nil, ErrKeyCollision
		}
		return s, nil
	}

	s = &series{
		name:       name,
		attributes: maps.Clone(attributes),
		stat:       livestat.New(name),
	}
	if r.relativeAccuracy > 0 {
		sketch, err := ddsketch.NewDefaultDDSketch(r.relativeAccuracy)
		if err != nil {
			return nil, err
		}
		s.sketch = sketch
	}
	r.series[key] = s
	return s, nil
}

// Add appends x to the series.
func (r *Registry) Add(name string, attributes map[string]string, x float64) error {
	r.Lock()
	defer r.Unlock()

	s, err := r.lookup(name, attributes)
	if err != nil {
		return err
	}
	s.stat.Add(x)
	if s.sketch != nil {
		if err := s.sketch.Add(x); err != nil {
			r.logger.Debug("Value not added to sketch", zap.String("name", name), zap.Float64("value", x), zap.Error(err))
		}
	}
	s.lastUpdate = r.clock.Now()
	return nil
}

// Merge folds an accumulator built elsewhere into the series. Quantile
// sketches are not updated since the values are gone.
func (r *Registry) Merge(name string, attributes map[string]string, other *livestat.LiveStat) error {
	r.Lock()
	defer r.Unlock()

	s, err := r.lookup(name, attributes)
	if err != nil {
		return err
	}
	s.stat.Merge(other)
	s.stat.SetName(s.name)
	s.lastUpdate = r.clock.Now()
	return nil
}

// Get returns a copy of one series.
func (r *Registry) Get(name string, attributes map[string]string) (Snapshot, bool) {
	r.Lock()
	defer r.Unlock()

	key := Key(name, attributes)
	s, ok := r.series[key]
	if !ok || !s.matches(name, attributes) {
		return Snapshot{}, false
	}
	return s.snapshot(key), true
}

// Snapshot returns copies of every series ordered by name, then key.
func (r *Registry) Snapshot() []Snapshot {
	r.Lock()
	defer r.Unlock()

	ret := make([]Snapshot, 0, len(r.series))
	for key, s := range r.series {
		ret = append(ret, s.snapshot(key))
	}
	slices.SortFunc(ret, func(a, b Snapshot) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		switch {
		case a.Key < b.Key:
			return -1
		case a.Key > b.Key:
			return 1
		}
		return 0
	})
	return ret
}

func (s *series) snapshot(key uint64) Snapshot {
	snap := Snapshot{
		Key:        key,
		Name:       s.name,
		Attributes: maps.Clone(s.attributes),
		Stat:       s.stat.Clone(),
		LastUpdate: s.lastUpdate,
	}
	if s.sketch != nil {
		snap.Sketch = s.sketch.Copy()
	}
	return snap
}

// Expire drops series idle for longer than the TTL and returns how many
// were removed.
func (r *Registry) Expire() int {
	r.Lock()
	defer r.Unlock()

	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.clock.Now().Add(-r.idleTTL)
	removed := 0
	for key, s := range r.series {
		if s.lastUpdate.Before(cutoff) {
			delete(r.series, key)
			removed++
		}
	}
	if removed > 0 {
		r.logger.Debug("Expired idle series", zap.Int("removed", removed))
	}
	return removed
}

func (r *Registry) Delete(name string, attributes map[string]string) {
	r.Lock()
	defer r.Unlock()

	key := Key(name, attributes)
	if s, ok := r.series[key]; ok && s.matches(name, attributes) {
		delete(r.series, key)
	}
}

func (r *Registry) Clear() {
	r.Lock()
	defer r.Unlock()

	r.series = make(map[uint64]*series)
}

func (r *Registry) Len() int {
	r.Lock()
	defer r.Unlock()

	return len(r.series)
}
