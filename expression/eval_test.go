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

type mapResolver map[string]sql.Value

func (m mapResolver) Column(table, column string) (sql.Value, error) {
	key := column
	if table != "" {
		key = table + "." + column
	}
	v, ok := m[key]
	if !ok {
		return sql.Null, sql.ErrColumnNotFound.New(key)
	}
	return v, nil
}

func (m mapResolver) Param(int) (sql.Value, error) { return sql.Null, nil }

func lit(v sql.Value) ast.Expr { return &ast.Literal{Value: v} }

func TestArithmeticIntegerExact(t *testing.T) {
	e := New(mapResolver{})
	v, err := e.Eval(&ast.BinaryOp{Left: lit(sql.NewI64(7)), Op: "+", Right: lit(sql.NewI64(35))})
	require.NoError(t, err)
	n, _ := v.AsInt64()
	require.EqualValues(t, 42, n)
}

func TestArithmeticDivisionByZero(t *testing.T) {
	e := New(mapResolver{})
	_, err := e.Eval(&ast.BinaryOp{Left: lit(sql.NewI64(1)), Op: "/", Right: lit(sql.NewI64(0))})
	require.Error(t, err)
	require.True(t, ErrDivisionByZero.Is(err))
}

func TestArithmeticNullPropagates(t *testing.T) {
	e := New(mapResolver{})
	v, err := e.Eval(&ast.BinaryOp{Left: lit(sql.Null), Op: "+", Right: lit(sql.NewI64(1))})
	require.NoError(t, err)
	require.True(t, v.IsNull())
}

func TestComparisonCoercesNumericKinds(t *testing.T) {
	e := New(mapResolver{})
	v, err := e.Eval(&ast.BinaryOp{Left: lit(sql.NewI64(3)), Op: "=", Right: lit(sql.NewF64(3.0))})
	require.NoError(t, err)
	require.True(t, v.Bool())
}

func TestThreeValuedAndFalseShortCircuitsNull(t *testing.T) {
	e := New(mapResolver{})
	v, err := e.Eval(&ast.BinaryOp{Left: lit(sql.NewBool(false)), Op: "AND", Right: lit(sql.Null)})
	require.NoError(t, err)
	require.False(t, v.IsNull())
	require.False(t, v.Bool())
}

func TestThreeValuedOrTrueShortCircuitsNull(t *testing.T) {
	e := New(mapResolver{})
	v, err := e.Eval(&ast.BinaryOp{Left: lit(sql.NewBool(true)), Op: "OR", Right: lit(sql.Null)})
	require.NoError(t, err)
	require.True(t, v.Bool())
}

func TestLikeMatchesWildcards(t *testing.T) {
	e := New(mapResolver{})
	v, err := e.Eval(&ast.Like{Expr: lit(sql.NewStr("hello world")), Pattern: lit(sql.NewStr("hello%"))})
	require.NoError(t, err)
	require.True(t, v.Bool())
}

func TestBetweenInclusive(t *testing.T) {
	e := New(mapResolver{})
	v, err := e.Eval(&ast.Between{Expr: lit(sql.NewI64(5)), Low: lit(sql.NewI64(1)), High: lit(sql.NewI64(5))})
	require.NoError(t, err)
	require.True(t, v.Bool())
}

func TestInListNullHandling(t *testing.T) {
	e := New(mapResolver{})
	v, err := e.Eval(&ast.InList{Expr: lit(sql.NewI64(9)), List: []ast.Expr{lit(sql.NewI64(1)), lit(sql.Null)}})
	require.NoError(t, err)
	require.True(t, v.IsNull(), "9 not found among non-null candidates but a NULL was present: unknown")
}

func TestCaseSearchedForm(t *testing.T) {
	e := New(mapResolver{})
	c := &ast.Case{
		WhenThen: []ast.CaseWhen{
			{When: lit(sql.NewBool(false)), Then: lit(sql.NewStr("no"))},
			{When: lit(sql.NewBool(true)), Then: lit(sql.NewStr("yes"))},
		},
		ElseResult: lit(sql.NewStr("else")),
	}
	v, err := e.Eval(c)
	require.NoError(t, err)
	require.Equal(t, "yes", v.Str())
}

func TestCastIntegerToText(t *testing.T) {
	e := New(mapResolver{})
	v, err := e.Eval(&ast.Cast{Expr: lit(sql.NewI64(42)), DataType: sql.Text})
	require.NoError(t, err)
	require.Equal(t, "42", v.Str())
}

func TestIdentifierResolution(t *testing.T) {
	e := New(mapResolver{"t.a": sql.NewI64(5)})
	v, err := e.Eval(&ast.CompoundIdentifier{Table: "t", Column: "a"})
	require.NoError(t, err)
	n, _ := v.AsInt64()
	require.EqualValues(t, 5, n)
}

func TestFunctionCallLtrimDefaultWhitespace(t *testing.T) {
	e := New(mapResolver{})
	v, err := e.Eval(&ast.FunctionCall{Name: "LTRIM", Args: []ast.Expr{lit(sql.NewStr("  hi"))}})
	require.NoError(t, err)
	require.Equal(t, "hi", v.Str())
}

func TestFunctionCallConcat(t *testing.T) {
	e := New(mapResolver{})
	v, err := e.Eval(&ast.FunctionCall{Name: "CONCAT", Args: []ast.Expr{lit(sql.NewStr("foo")), lit(sql.NewStr("bar"))}})
	require.NoError(t, err)
	require.Equal(t, "foobar", v.Str())
}

func TestFunctionCallCoalesceSkipsNulls(t *testing.T) {
	e := New(mapResolver{})
	v, err := e.Eval(&ast.FunctionCall{Name: "COALESCE", Args: []ast.Expr{lit(sql.Null), lit(sql.NewI64(7))}})
	require.NoError(t, err)
	n, _ := v.AsInt64()
	require.EqualValues(t, 7, n)
}

func TestFunctionCallUnknownRejected(t *testing.T) {
	e := New(mapResolver{})
	_, err := e.Eval(&ast.FunctionCall{Name: "NOPE", Args: nil})
	require.Error(t, err)
	require.True(t, ErrUnknownFunction.Is(err))
}

func TestAggregateCallRejectedOutsideGroupExec(t *testing.T) {
	e := New(mapResolver{})
	_, err := e.Eval(&ast.AggregateCall{Kind: ast.AggCountStar})
	require.Error(t, err)
	require.True(t, ErrAggregateOutsideExec.Is(err))
}
