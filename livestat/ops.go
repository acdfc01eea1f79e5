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

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedOperation is returned for the product or ratio of two
	// accumulators, which has no definition here.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrEmptyStatistics is returned when a pairwise sum or difference
	// involves an empty accumulator.
	ErrEmptyStatistics = errors.New("cannot combine empty statistics")

	// ErrDivisionByZero is returned when dividing by a zero scalar.
	ErrDivisionByZero = errors.New("division by zero")
)

// Scale rewrites the statistics as if every value x had been f*x.
// A negative f swaps min and max.
func (s *LiveStat) Scale(f float64) {
	if s.Empty() {
		return
	}
	s.mean *= f
	if f < 0 {
		s.min, s.max = s.max*f, s.min*f
	} else {
		s.min *= f
		s.max *= f
	}
	s.sum *= f
	s.m2 *= f * f
	s.state = varianceDirty
}

// Divide rewrites the statistics as if every value x had been x/d.
func (s *LiveStat) Divide(d float64) error {
	if d == 0 {
		return ErrDivisionByZero
	}
	if s.Empty() {
		return nil
	}
	s.mean /= d
	if d < 0 {
		s.min, s.max = s.max/d, s.min/d
	} else {
		s.min /= d
		s.max /= d
	}
	s.sum /= d
	s.m2 /= d * d
	s.state = varianceDirty
	return nil
}

// Translate rewrites the statistics as if every value x had been x+t.
// Central moments do not move.
func (s *LiveStat) Translate(t float64) {
	if s.Empty() {
		return
	}
	s.min += t
	s.max += t
	s.mean += t
	s.sum += float64(s.count) * t
	s.state = varianceDirty
}

// AddStat treats s and other as paired series and rewrites s as the
// statistics of z_i = x_i + y_i. Only the first count = min(countA, countB)
// pairs are assumed to exist and the series are assumed independent, so
// m2 is the sum of both m2. This is an approximation: the two series
// weigh differently when their counts differ.
func (s *LiveStat) AddStat(other *LiveStat) error {
	if s.Empty() || other == nil || other.Empty() {
		return ErrEmptyStatistics
	}
	s.min += other.min
	s.max += other.max
	s.mean += other.mean
	s.sum += other.sum
	s.m2 += other.m2
	s.count = min(s.count, other.count)
	s.state = varianceDirty
	return nil
}

// SubStat is AddStat for z_i = x_i - y_i. Subtracting a range swaps its
// bounds, and the variance of a difference still adds.
func (s *LiveStat) SubStat(other *LiveStat) error {
	if s.Empty() || other == nil || other.Empty() {
		return ErrEmptyStatistics
	}
	s.min, s.max = s.min-other.max, s.max-other.min
	s.mean -= other.mean
	s.sum -= other.sum
	s.m2 += other.m2
	s.count = min(s.count, other.count)
	s.state = varianceDirty
	return nil
}

// Op is an arithmetic operation applied to a whole series.
type Op uint8

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
}

type operandKind uint8

const (
	scalarOperand operandKind = iota
	statOperand
)

// Operand is either a scalar or another accumulator. The kind is fixed by
// the constructor, so Stat(nil) stays an accumulator operand.
type Operand struct {
	kind   operandKind
	scalar float64
	stat   *LiveStat
}

// Scalar returns a scalar operand.
func Scalar(v float64) Operand {
	return Operand{kind: scalarOperand, scalar: v}
}

// Stat returns an accumulator operand.
func Stat(s *LiveStat) Operand {
	return Operand{kind: statOperand, stat: s}
}

// IsStat reports whether the operand is an accumulator.
func (o Operand) IsStat() bool {
	return o.kind == statOperand
}

// Apply performs op with o in place.
func (s *LiveStat) Apply(op Op, o Operand) error {
	if o.IsStat() && o.stat == nil {
		return fmt.Errorf("%v with nil statistics: %w", op, ErrEmptyStatistics)
	}
	switch op {
	case OpAdd:
		if o.IsStat() {
			return s.AddStat(o.stat)
		}
		s.Translate(o.scalar)
	case OpSub:
		if o.IsStat() {
			return s.SubStat(o.stat)
		}
		s.Translate(-o.scalar)
	case OpMul:
		if o.IsStat() {
			return fmt.Errorf("product of statistics: %w", ErrUnsupportedOperation)
		}
		s.Scale(o.scalar)
	case OpDiv:
		if o.IsStat() {
			return fmt.Errorf("ratio of statistics: %w", ErrUnsupportedOperation)
		}
		return s.Divide(o.scalar)
	default:
		return fmt.Errorf("%v: %w", op, ErrUnsupportedOperation)
	}
	return nil
}

// Combine returns a new accumulator holding s op o. Neither s nor the
// operand is modified.
func (s *LiveStat) Combine(op Op, o Operand) (*LiveStat, error) {
	if o.IsStat() && o.stat == nil {
		return nil, fmt.Errorf("%v with nil statistics: %w", op, ErrEmptyStatistics)
	}
	c := s.Clone()
	if o.IsStat() {
		c.name = "(" + s.name + op.String() + o.stat.name + ")"
	} else {
		c.name = "(" + s.name + op.String() + " scalar)"
	}
	if err := c.Apply(op, o); err != nil {
		return nil, err
	}
	return c, nil
}

// Plus returns s + o.
func (s *LiveStat) Plus(o Operand) (*LiveStat, error) {
	return s.Combine(OpAdd, o)
}

// Minus returns s - o.
func (s *LiveStat) Minus(o Operand) (*LiveStat, error) {
	return s.Combine(OpSub, o)
}

// Times returns s * o.
func (s *LiveStat) Times(o Operand) (*LiveStat, error) {
	return s.Combine(OpMul, o)
}

// DividedBy returns s / o.
func (s *LiveStat) DividedBy(o Operand) (*LiveStat, error) {
	return s.Combine(OpDiv, o)
}
