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
	"time"

	"github.com/stretchr/testify/require"

	"github.com/glaive-db/glaive/ast"
	"github.com/glaive-db/glaive/sql"
)

func TestColumnDefaultEvaluatesConstantExpression(t *testing.T) {
	d := &ColumnDefault{Column: "created_at", Expr: &ast.FunctionCall{Name: "NOW"}}
	old := Clock
	defer func() { Clock = old }()
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	Clock = func() time.Time { return fixed }
	v, err := d.EvalDefault()
	require.NoError(t, err)
	require.Equal(t, sql.KindTimestamp, v.Kind())
	require.True(t, fixed.Equal(v.Timestamp()))
}

func TestColumnDefaultRejectsColumnReference(t *testing.T) {
	d := &ColumnDefault{Column: "total", Expr: &ast.Identifier{Name: "other_column"}}
	_, err := d.EvalDefault()
	require.Error(t, err)
	require.True(t, ErrNonConstantDefault.Is(err))
}

func TestColumnDefaultLiteralArithmetic(t *testing.T) {
	d := &ColumnDefault{Column: "n", Expr: &ast.BinaryOp{
		Left: &ast.Literal{Value: sql.NewI64(1)}, Op: "+", Right: &ast.Literal{Value: sql.NewI64(1)},
	}}
	v, err := d.EvalDefault()
	require.NoError(t, err)
	n, _ := v.AsInt64()
	require.EqualValues(t, 2, n)
}
