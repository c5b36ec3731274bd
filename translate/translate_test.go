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

package translate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glaive-db/glaive/ast"
	"github.com/glaive-db/glaive/rawsql"
)

func parseAndTranslate(t *testing.T, src string) ast.Statement {
	t.Helper()
	raw, err := rawsql.Parse(src)
	require.NoError(t, err)
	require.Len(t, raw, 1)
	stmt, err := Statement(raw[0])
	require.NoError(t, err)
	return stmt
}

func TestEmptyFromRewritesToSeries(t *testing.T) {
	stmt := parseAndTranslate(t, "SELECT 1")
	q := stmt.(*ast.Query)
	sel := q.Body.(*ast.Select)
	_, ok := sel.From.Relation.(*ast.TableFactorSeries)
	require.True(t, ok, "expected implicit FROM SERIES(1)")
}

func TestSeriesTableFunctionRecognized(t *testing.T) {
	stmt := parseAndTranslate(t, "SELECT * FROM SERIES(5)")
	sel := stmt.(*ast.Query).Body.(*ast.Select)
	_, ok := sel.From.Relation.(*ast.TableFactorSeries)
	require.True(t, ok)
}

func TestReservedTableBecomesDictionary(t *testing.T) {
	stmt := parseAndTranslate(t, "SELECT * FROM GLUE_TABLES")
	sel := stmt.(*ast.Query).Body.(*ast.Select)
	dict, ok := sel.From.Relation.(*ast.TableFactorDictionary)
	require.True(t, ok)
	require.Equal(t, "GLUE_TABLES", dict.View)
}

func TestDerivedTableWithoutAliasRejected(t *testing.T) {
	raw, err := rawsql.Parse("SELECT * FROM (SELECT 1)")
	require.NoError(t, err)
	_, err = Statement(raw[0])
	require.Error(t, err)
	require.True(t, ErrLackOfAlias.Is(err))
}

func TestFunctionArityMismatch(t *testing.T) {
	raw, err := rawsql.Parse("SELECT LOWER(a, b)")
	require.NoError(t, err)
	_, err = Statement(raw[0])
	require.Error(t, err)
	require.True(t, ErrFunctionArgsLengthNotMatching.Is(err))
}

func TestFunctionArityRange(t *testing.T) {
	raw, err := rawsql.Parse("SELECT SUBSTR(a)")
	require.NoError(t, err)
	_, err = Statement(raw[0])
	require.Error(t, err)
	require.True(t, ErrFunctionArgsLengthRangeNotMatching.Is(err))
}

func TestUnknownFunctionRejected(t *testing.T) {
	raw, err := rawsql.Parse("SELECT NOT_A_FUNCTION(a)")
	require.NoError(t, err)
	_, err = Statement(raw[0])
	require.Error(t, err)
	require.True(t, ErrUnknownFunction.Is(err))
}

func TestCountStarAggregate(t *testing.T) {
	stmt := parseAndTranslate(t, "SELECT COUNT(*) FROM t")
	sel := stmt.(*ast.Query).Body.(*ast.Select)
	agg, ok := sel.Projection[0].Expr.(*ast.AggregateCall)
	require.True(t, ok)
	require.Equal(t, ast.AggCountStar, agg.Kind)
}

func TestIntervalLiteralValidUnit(t *testing.T) {
	stmt := parseAndTranslate(t, "SELECT INTERVAL '3' DAY")
	sel := stmt.(*ast.Query).Body.(*ast.Select)
	lit, ok := sel.Projection[0].Expr.(*ast.IntervalLit)
	require.True(t, ok)
	require.Equal(t, "DAY", lit.Unit)
}

func TestIntervalLiteralInvalidUnitRejected(t *testing.T) {
	raw, err := rawsql.Parse("SELECT INTERVAL '3' FORTNIGHT")
	require.NoError(t, err)
	_, err = Statement(raw[0])
	require.Error(t, err)
	require.True(t, ErrInvalidIntervalUnit.Is(err))
}

func TestDateLiteral(t *testing.T) {
	stmt := parseAndTranslate(t, "SELECT DATE '2024-01-01'")
	sel := stmt.(*ast.Query).Body.(*ast.Select)
	lit, ok := sel.Projection[0].Expr.(*ast.Literal)
	require.True(t, ok)
	require.False(t, lit.Value.IsNull())
}

func TestNumericLiteralKeepsIntegerExact(t *testing.T) {
	stmt := parseAndTranslate(t, "SELECT 42")
	sel := stmt.(*ast.Query).Body.(*ast.Select)
	lit := sel.Projection[0].Expr.(*ast.Literal)
	n, ok := lit.Value.AsInt64()
	require.True(t, ok)
	require.EqualValues(t, 42, n)
}

func TestCreateTableColumnsLowered(t *testing.T) {
	stmt := parseAndTranslate(t, "CREATE TABLE t (a INT PRIMARY KEY, b TEXT NOT NULL)")
	ct := stmt.(*ast.CreateTable)
	require.Len(t, ct.Columns, 2)
	require.True(t, ct.Columns[0].PrimaryKey)
	require.False(t, ct.Columns[1].Nullable)
}

func TestAlterTableRenameColumn(t *testing.T) {
	stmt := parseAndTranslate(t, "ALTER TABLE t RENAME COLUMN a TO b")
	alt := stmt.(*ast.AlterTable)
	rc, ok := alt.Action.(*ast.RenameColumn)
	require.True(t, ok)
	require.Equal(t, "a", rc.OldName)
	require.Equal(t, "b", rc.NewName)
}
