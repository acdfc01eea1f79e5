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

package livestat

import "sync"

// Locked serializes access to one LiveStat so several goroutines can feed
// it. A reader never observes a mean updated without its m2.
type Locked struct {
	sync.Mutex
	stat LiveStat
}

func NewLocked(name string) *Locked {
	return &Locked{stat: LiveStat{name: name}}
}

func (l *Locked) Add(x float64) {
	l.Lock()
	defer l.Unlock()
	l.stat.Add(x)
}

// Merge folds other into the guarded accumulator. other must not be
// modified concurrently.
func (l *Locked) Merge(other *LiveStat) {
	l.Lock()
	defer l.Unlock()
	l.stat.Merge(other)
}

func (l *Locked) Reset() {
	l.Lock()
	defer l.Unlock()
	l.stat.Reset()
}

// Snapshot returns a consistent copy of the accumulator.
func (l *Locked) Snapshot() *LiveStat {
	l.Lock()
	defer l.Unlock()
	return l.stat.Clone()
}

// Do runs f with the lock held.
func (l *Locked) Do(f func(s *LiveStat)) {
	l.Lock()
	defer l.Unlock()
	f(&l.stat)
}
