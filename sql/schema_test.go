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

package sql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchemaDDLRoundTrip(t *testing.T) {
	s := Schema{
		TableName: "users",
		Columns: []Column{
			{Name: "id", Type: Int32, PrimaryKey: true},
			{Name: "name", Type: Text, Nullable: false},
			{Name: "age", Type: Int32, Nullable: true},
		},
	}
	ddl := s.ToDDL()
	got, ok := FromDDL(ddl)
	require.True(t, ok)
	require.Equal(t, s.TableName, got.TableName)
	require.Len(t, got.Columns, len(s.Columns))
	for i, c := range s.Columns {
		require.Equal(t, c.Name, got.Columns[i].Name)
		require.Equal(t, c.Type.Kind, got.Columns[i].Type.Kind)
		require.Equal(t, c.PrimaryKey, got.Columns[i].PrimaryKey)
		require.Equal(t, c.Nullable, got.Columns[i].Nullable)
	}
}

func TestSchemaDDLRoundTripForeignKey(t *testing.T) {
	s := Schema{
		TableName: "orders",
		Columns: []Column{
			{Name: "id", Type: Int32, PrimaryKey: true},
			{Name: "user_id", Type: Int32, ForeignKey: &ForeignKey{ReferencedTable: "users", ReferencedColumn: "id", OnDelete: Cascade}},
		},
	}
	got, ok := FromDDL(s.ToDDL())
	require.True(t, ok)
	require.NotNil(t, got.Columns[1].ForeignKey)
	require.Equal(t, "users", got.Columns[1].ForeignKey.ReferencedTable)
	require.Equal(t, Cascade, got.Columns[1].ForeignKey.OnDelete)
}

func TestSchemalessHasNoColumns(t *testing.T) {
	s := Schema{TableName: "blob"}
	require.True(t, s.Schemaless())
	require.Equal(t, "CREATE TABLE blob", s.ToDDL())
}

func TestCheckRowArityMismatch(t *testing.T) {
	s := Schema{Columns: []Column{{Name: "a", Type: Int32}}}
	err := s.CheckRow([]Value{NewI32(1), NewI32(2)})
	require.Error(t, err)
	require.True(t, ErrColumnAndValuesNotMatched.Is(err))
}

func TestCheckRowRejectsNullOnNotNullColumn(t *testing.T) {
	s := Schema{Columns: []Column{{Name: "a", Type: Int32, Nullable: false}}}
	err := s.CheckRow([]Value{Null})
	require.Error(t, err)
	require.True(t, ErrNullValueOnNotNullColumn.Is(err))
}

func TestColumnIndexCaseInsensitive(t *testing.T) {
	s := Schema{Columns: []Column{{Name: "Name"}}}
	require.Equal(t, 0, s.ColumnIndex("name"))
	require.Equal(t, -1, s.ColumnIndex("missing"))
}
