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

package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glaive-db/glaive/ast"
	"github.com/glaive-db/glaive/rawsql"
	"github.com/glaive-db/glaive/sql"
	"github.com/glaive-db/glaive/translate"
)

type fakeLookup map[string]sql.Schema

func (f fakeLookup) FetchSchema(name string) (sql.Schema, bool) {
	s, ok := f[name]
	return s, ok
}

func translateSQL(t *testing.T, src string) ast.Statement {
	t.Helper()
	raw, err := rawsql.Parse(src)
	require.NoError(t, err)
	require.Len(t, raw, 1)
	stmt, err := translate.Statement(raw[0])
	require.NoError(t, err)
	return stmt
}

func schemaFor(table string, cols ...sql.Column) sql.Schema {
	return sql.Schema{TableName: table, Columns: cols}
}

func TestScopeResolveUnqualified(t *testing.T) {
	s := (&Scope{}).Push(Frame{Name: "t", Columns: []string{"a", "b"}})
	fi, ci, outer, err := s.Resolve("", "b")
	require.NoError(t, err)
	require.Equal(t, 0, fi)
	require.Equal(t, 1, ci)
	require.False(t, outer)
}

func TestScopeResolveQualified(t *testing.T) {
	s := (&Scope{}).Push(
		Frame{Name: "t1", Columns: []string{"a"}},
		Frame{Name: "t2", Columns: []string{"a", "b"}},
	)
	fi, ci, _, err := s.Resolve("t2", "b")
	require.NoError(t, err)
	require.Equal(t, 1, fi)
	require.Equal(t, 1, ci)
}

func TestScopeResolveAmbiguous(t *testing.T) {
	s := (&Scope{}).Push(
		Frame{Name: "t1", Columns: []string{"a"}},
		Frame{Name: "t2", Columns: []string{"a"}},
	)
	_, _, _, err := s.Resolve("", "a")
	require.Error(t, err)
	require.True(t, ErrAmbiguousColumn.Is(err))
}

func TestScopeResolveOuterCorrelated(t *testing.T) {
	outer := (&Scope{}).Push(Frame{Name: "o", Columns: []string{"x"}})
	inner := outer.Push(Frame{Name: "i", Columns: []string{"y"}})
	_, _, isOuter, err := inner.Resolve("o", "x")
	require.NoError(t, err)
	require.True(t, isOuter)
}

func TestScopeResolveColumnNotFound(t *testing.T) {
	s := (&Scope{}).Push(Frame{Name: "t", Columns: []string{"a"}})
	_, _, _, err := s.Resolve("", "nope")
	require.Error(t, err)
	require.True(t, ErrColumnNotFound.Is(err))
}

func TestPlanSimpleSelectAttachesScope(t *testing.T) {
	lookup := fakeLookup{
		"t": schemaFor("t", sql.Column{Name: "a", Type: sql.Int32}, sql.Column{Name: "b", Type: sql.Text}),
	}
	stmt := translateSQL(t, "SELECT a FROM t WHERE b = 'x'")
	planned, err := Plan(lookup, stmt)
	require.NoError(t, err)
	q := stmt.(*ast.Query)
	scope := planned.ScopeOf(q)
	require.NotNil(t, scope)
	require.Len(t, scope.Frames, 1)
	require.Equal(t, "t", scope.Frames[0].Name)
}

func TestValidateForeignKeysRejectsNonPK(t *testing.T) {
	lookup := fakeLookup{
		"parent": schemaFor("parent", sql.Column{Name: "id", Type: sql.Int32}, sql.Column{Name: "name", Type: sql.Text}),
	}
	stmt := translateSQL(t, "CREATE TABLE child (id INT PRIMARY KEY, parent_name TEXT REFERENCES parent(name))")
	_, err := Plan(lookup, stmt)
	require.Error(t, err)
	require.True(t, ErrReferencingNonPKColumn.Is(err))
}

func TestValidateForeignKeysAcceptsPK(t *testing.T) {
	lookup := fakeLookup{
		"parent": schemaFor("parent", sql.Column{Name: "id", Type: sql.Int32, PrimaryKey: true}),
	}
	stmt := translateSQL(t, "CREATE TABLE child (id INT PRIMARY KEY, parent_id INT REFERENCES parent(id))")
	_, err := Plan(lookup, stmt)
	require.NoError(t, err)
}

func TestValidateForeignKeysRejectsSetNull(t *testing.T) {
	lookup := fakeLookup{
		"parent": schemaFor("parent", sql.Column{Name: "id", Type: sql.Int32, PrimaryKey: true}),
	}
	stmt := translateSQL(t, "CREATE TABLE child (id INT PRIMARY KEY, parent_id INT REFERENCES parent(id) ON DELETE SET NULL)")
	_, err := Plan(lookup, stmt)
	require.Error(t, err)
	require.True(t, sql.ErrFeatureNotSupported.Is(err))
}

func TestValidateForeignKeysUnknownTable(t *testing.T) {
	lookup := fakeLookup{}
	stmt := translateSQL(t, "CREATE TABLE child (id INT PRIMARY KEY, parent_id INT REFERENCES parent(id))")
	_, err := Plan(lookup, stmt)
	require.Error(t, err)
	require.True(t, ErrTableNotFound.Is(err))
}

func TestPlanCorrelatedSubqueryCapturesOuterScope(t *testing.T) {
	lookup := fakeLookup{
		"orders":  schemaFor("orders", sql.Column{Name: "id", Type: sql.Int32}, sql.Column{Name: "customer_id", Type: sql.Int32}),
		"returns": schemaFor("returns", sql.Column{Name: "order_id", Type: sql.Int32}),
	}
	stmt := translateSQL(t, "SELECT id FROM orders WHERE EXISTS (SELECT 1 FROM returns WHERE returns.order_id = orders.id)")
	planned, err := Plan(lookup, stmt)
	require.NoError(t, err)
	require.NotEmpty(t, planned.Scopes)

	var innerScope *Scope
	for _, sc := range planned.Scopes {
		if sc != nil && sc.Outer != nil {
			innerScope = sc
		}
	}
	require.NotNil(t, innerScope, "expected the EXISTS subquery's scope to have a non-nil Outer")
	require.Equal(t, "returns", innerScope.Frames[0].Name)
	require.Equal(t, "orders", innerScope.Outer.Frames[0].Name)
}
