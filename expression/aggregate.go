// Copyright 2026 The Glaive Authors
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

package expression

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/glaive-db/glaive/ast"
	"github.com/glaive-db/glaive/sql"
)

// Accumulator folds one aggregate function's argument across a group
// of rows, per spec.md §4.4's GroupBy/Having operators. rowexec creates
// one Accumulator per (aggregate call, group) and feeds it every row in
// the group via Add, then reads Result once the group is exhausted.
type Accumulator interface {
	Add(v sql.Value) error
	Result() (sql.Value, error)
}

// NewAccumulator returns the Accumulator for kind.
func NewAccumulator(kind ast.AggregateKind) Accumulator {
	switch kind {
	case ast.AggCountStar:
		return &countStar{}
	case ast.AggCount:
		return &count{}
	case ast.AggSum:
		return &sum{}
	case ast.AggAvg:
		return &avg{}
	case ast.AggMin:
		return &minMax{greatest: false}
	case ast.AggMax:
		return &minMax{greatest: true}
	case ast.AggStdev:
		return &variance{sample: true, stdev: true}
	case ast.AggVariance:
		return &variance{sample: true}
	default:
		return &count{}
	}
}

type countStar struct{ n int64 }

func (c *countStar) Add(sql.Value) error       { c.n++; return nil }
func (c *countStar) Result() (sql.Value, error) { return sql.NewI64(c.n), nil }

type count struct{ n int64 }

func (c *count) Add(v sql.Value) error {
	if !v.IsNull() {
		c.n++
	}
	return nil
}
func (c *count) Result() (sql.Value, error) { return sql.NewI64(c.n), nil }

type sum struct {
	total decimal.Decimal
	any   bool
}

func (s *sum) Add(v sql.Value) error {
	if v.IsNull() {
		return nil
	}
	d, err := toDecimalValue(v)
	if err != nil {
		return err
	}
	s.total = s.total.Add(d)
	s.any = true
	return nil
}

func (s *sum) Result() (sql.Value, error) {
	if !s.any {
		return sql.Null, nil
	}
	return sql.NewDecimal(s.total), nil
}

type avg struct {
	total decimal.Decimal
	n     int64
}

func (a *avg) Add(v sql.Value) error {
	if v.IsNull() {
		return nil
	}
	d, err := toDecimalValue(v)
	if err != nil {
		return err
	}
	a.total = a.total.Add(d)
	a.n++
	return nil
}

func (a *avg) Result() (sql.Value, error) {
	if a.n == 0 {
		return sql.Null, nil
	}
	return sql.NewDecimal(a.total.Div(decimal.NewFromInt(a.n))), nil
}

type minMax struct {
	val      sql.Value
	any      bool
	greatest bool
}

func (m *minMax) Add(v sql.Value) error {
	if v.IsNull() {
		return nil
	}
	if !m.any {
		m.val, m.any = v, true
		return nil
	}
	c, err := v.Compare(m.val)
	if err != nil {
		return err
	}
	if (m.greatest && c > 0) || (!m.greatest && c < 0) {
		m.val = v
	}
	return nil
}

func (m *minMax) Result() (sql.Value, error) {
	if !m.any {
		return sql.Null, nil
	}
	return m.val, nil
}

// variance accumulates via Welford's online algorithm, then reports
// either the (sample) variance or its square root for STDEV.
type variance struct {
	n        int64
	mean     float64
	m2       float64
	sample   bool
	stdev    bool
}

func (v *variance) Add(val sql.Value) error {
	if val.IsNull() {
		return nil
	}
	f, err := asFloat(val)
	if err != nil {
		return err
	}
	v.n++
	delta := f - v.mean
	v.mean += delta / float64(v.n)
	delta2 := f - v.mean
	v.m2 += delta * delta2
	return nil
}

func (v *variance) Result() (sql.Value, error) {
	if v.n < 2 {
		return sql.Null, nil
	}
	variance := v.m2 / float64(v.n-1)
	if v.stdev {
		return sql.NewF64(math.Sqrt(variance)), nil
	}
	return sql.NewF64(variance), nil
}
