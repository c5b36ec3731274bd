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

package jsonl

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glaive-db/glaive/sql"
	"github.com/glaive-db/glaive/storage"
)

func schema(name string, cols ...sql.Column) sql.Schema {
	return sql.Schema{TableName: name, Columns: cols}
}

func TestInsertSchemaCreatesDataAndDDLFiles(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.InsertSchema(schema("t", sql.Column{Name: "id", Type: sql.Typed(sql.KindI64)})))

	got, ok, err := s.FetchSchema("t")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "t", got.TableName)
	require.Len(t, got.Columns, 1)
	require.Equal(t, "id", got.Columns[0].Name)
}

func TestAppendAndScanRoundtrip(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.InsertSchema(schema("t",
		sql.Column{Name: "id", Type: sql.Typed(sql.KindI64)},
		sql.Column{Name: "name", Type: sql.Typed(sql.KindStr)})))

	keys, err := s.AppendData("t", []sql.Row{
		sql.NewRow(sql.NewI64(1), sql.NewStr("Glue")),
		sql.NewRow(sql.NewI64(2), sql.NewStr("SQL")),
	})
	require.NoError(t, err)
	require.Len(t, keys, 2)

	iter, err := s.ScanData("t")
	require.NoError(t, err)
	var rows []sql.Row
	for {
		kr, err := iter.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		rows = append(rows, kr.Row)
	}
	require.Len(t, rows, 2)
	n, _ := rows[0].Values()[0].AsInt64()
	require.EqualValues(t, 1, n)
	require.Equal(t, "Glue", rows[0].Values()[1].Str())
}

func TestFetchDataByKey(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.InsertSchema(schema("t", sql.Column{Name: "v", Type: sql.Typed(sql.KindI64)})))
	keys, err := s.AppendData("t", []sql.Row{sql.NewRow(sql.NewI64(10)), sql.NewRow(sql.NewI64(20))})
	require.NoError(t, err)

	row, ok, err := s.FetchData("t", keys[1])
	require.NoError(t, err)
	require.True(t, ok)
	n, _ := row.Values()[0].AsInt64()
	require.EqualValues(t, 20, n)
}

func TestInsertDataOverwritesExistingLine(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.InsertSchema(schema("t", sql.Column{Name: "v", Type: sql.Typed(sql.KindI64)})))
	keys, err := s.AppendData("t", []sql.Row{sql.NewRow(sql.NewI64(1))})
	require.NoError(t, err)

	require.NoError(t, s.InsertData("t", []storage.KeyedWrite{{Key: keys[0], Row: sql.NewRow(sql.NewI64(99))}}))

	row, ok, err := s.FetchData("t", keys[0])
	require.NoError(t, err)
	require.True(t, ok)
	n, _ := row.Values()[0].AsInt64()
	require.EqualValues(t, 99, n)
}

func TestDeleteDataRemovesRow(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.InsertSchema(schema("t", sql.Column{Name: "v", Type: sql.Typed(sql.KindI64)})))
	keys, err := s.AppendData("t", []sql.Row{sql.NewRow(sql.NewI64(1)), sql.NewRow(sql.NewI64(2))})
	require.NoError(t, err)

	require.NoError(t, s.DeleteData("t", []sql.Key{keys[0]}))

	iter, err := s.ScanData("t")
	require.NoError(t, err)
	rows, err := storage.DrainKeyedRows(iter)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	n, _ := rows[0].Row.Values()[0].AsInt64()
	require.EqualValues(t, 2, n)
}

func TestSchemalessTableRoundTripsMapRows(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.InsertSchema(schema("loose")))

	_, err = s.AppendData("loose", []sql.Row{
		sql.NewMapRow(map[string]sql.Value{"id": sql.NewI64(1), "name": sql.NewStr("Glue")}),
	})
	require.NoError(t, err)

	iter, err := s.ScanData("loose")
	require.NoError(t, err)
	rows, err := storage.DrainKeyedRows(iter)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.True(t, rows[0].Row.IsMap())
	v, ok := rows[0].Row.GetNamed("name")
	require.True(t, ok)
	require.Equal(t, "Glue", v.Str())
}

func TestFetchAllSchemasSortedByName(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.InsertSchema(schema("zebra")))
	require.NoError(t, s.InsertSchema(schema("alpha")))

	schemas, err := s.FetchAllSchemas()
	require.NoError(t, err)
	require.Len(t, schemas, 2)
	require.Equal(t, "alpha", schemas[0].TableName)
	require.Equal(t, "zebra", schemas[1].TableName)
}

func TestDeleteSchemaRemovesFiles(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.InsertSchema(schema("t", sql.Column{Name: "v", Type: sql.Typed(sql.KindI64)})))
	require.NoError(t, s.DeleteSchema("t"))

	_, ok, err := s.FetchSchema("t")
	require.NoError(t, err)
	require.False(t, ok)
}
