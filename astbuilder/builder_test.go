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

package astbuilder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glaive-db/glaive/ast"
	"github.com/glaive-db/glaive/rawsql"
	"github.com/glaive-db/glaive/translate"
)

func TestBuilderMatchesTranslatedShape(t *testing.T) {
	raw, err := rawsql.Parse("SELECT a, b FROM t WHERE a > 1 ORDER BY a DESC LIMIT 10 OFFSET 2")
	require.NoError(t, err)
	translated, err := translate.Statements(raw)
	require.NoError(t, err)
	want := translated[0].(*ast.Query)

	got := Table("t").
		Select(
			ast.SelectItem{Expr: &ast.Identifier{Name: "a"}, Alias: "a"},
			ast.SelectItem{Expr: &ast.Identifier{Name: "b"}, Alias: "b"},
		).
		Filter(&ast.BinaryOp{Left: &ast.Identifier{Name: "a"}, Op: ">", Right: &ast.Literal{Value: want.Body.(*ast.Select).Selection.(*ast.BinaryOp).Right.(*ast.Literal).Value}}).
		Project(
			ast.SelectItem{Expr: &ast.Identifier{Name: "a"}, Alias: "a"},
			ast.SelectItem{Expr: &ast.Identifier{Name: "b"}, Alias: "b"},
		).
		OrderBy(ast.OrderByExpr{Expr: &ast.Identifier{Name: "a"}, Desc: true}).
		Offset(&ast.Literal{Value: want.Offset.(*ast.Literal).Value}).
		Limit(&ast.Literal{Value: want.Limit.(*ast.Literal).Value}).
		Build()

	require.Equal(t, want, got)
}

func TestInsertBuilder(t *testing.T) {
	q := &ast.Query{Body: &ast.Values{Rows: [][]ast.Expr{{&ast.Literal{}}}}}
	ins := Insert("t", []string{"a"}, q)
	require.Equal(t, "t", ins.Table)
	require.Equal(t, []string{"a"}, ins.Columns)
}
