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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glaive-db/glaive/ast"
	"github.com/glaive-db/glaive/sql"
)

func TestCountStarCountsNullRows(t *testing.T) {
	acc := NewAccumulator(ast.AggCountStar)
	require.NoError(t, acc.Add(sql.Null))
	require.NoError(t, acc.Add(sql.NewI64(1)))
	v, err := acc.Result()
	require.NoError(t, err)
	n, _ := v.AsInt64()
	require.EqualValues(t, 2, n)
}

func TestCountSkipsNull(t *testing.T) {
	acc := NewAccumulator(ast.AggCount)
	require.NoError(t, acc.Add(sql.Null))
	require.NoError(t, acc.Add(sql.NewI64(1)))
	v, err := acc.Result()
	require.NoError(t, err)
	n, _ := v.AsInt64()
	require.EqualValues(t, 1, n)
}

func TestSumAccumulatesDecimal(t *testing.T) {
	acc := NewAccumulator(ast.AggSum)
	require.NoError(t, acc.Add(sql.NewI64(2)))
	require.NoError(t, acc.Add(sql.NewI64(3)))
	v, err := acc.Result()
	require.NoError(t, err)
	require.Equal(t, "5", v.Decimal().String())
}

func TestAvgOverEmptyGroupIsNull(t *testing.T) {
	acc := NewAccumulator(ast.AggAvg)
	v, err := acc.Result()
	require.NoError(t, err)
	require.True(t, v.IsNull())
}

func TestMinMax(t *testing.T) {
	minAcc := NewAccumulator(ast.AggMin)
	maxAcc := NewAccumulator(ast.AggMax)
	for _, n := range []int64{5, 1, 9, 3} {
		require.NoError(t, minAcc.Add(sql.NewI64(n)))
		require.NoError(t, maxAcc.Add(sql.NewI64(n)))
	}
	minV, _ := minAcc.Result()
	maxV, _ := maxAcc.Result()
	n1, _ := minV.AsInt64()
	n2, _ := maxV.AsInt64()
	require.EqualValues(t, 1, n1)
	require.EqualValues(t, 9, n2)
}

func TestVarianceAndStdevOfConstantSeriesIsZero(t *testing.T) {
	varAcc := NewAccumulator(ast.AggVariance)
	stdevAcc := NewAccumulator(ast.AggStdev)
	for i := 0; i < 5; i++ {
		require.NoError(t, varAcc.Add(sql.NewF64(7)))
		require.NoError(t, stdevAcc.Add(sql.NewF64(7)))
	}
	v, _ := varAcc.Result()
	s, _ := stdevAcc.Result()
	f1, _ := v.AsFloat64()
	f2, _ := s.AsFloat64()
	require.InDelta(t, 0, f1, 1e-9)
	require.InDelta(t, 0, f2, 1e-9)
}
