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

package bolt

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glaive-db/glaive/sql"
	"github.com/glaive-db/glaive/storage"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func schema(name string, cols ...sql.Column) sql.Schema {
	return sql.Schema{TableName: name, Columns: cols}
}

func TestInsertSchemaThenFetch(t *testing.T) {
	s := openTestStorage(t)
	require.NoError(t, s.InsertSchema(schema("t", sql.Column{Name: "id", Type: sql.Typed(sql.KindI64)})))

	got, ok, err := s.FetchSchema("t")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "t", got.TableName)
}

func TestAppendAndScanRoundtrip(t *testing.T) {
	s := openTestStorage(t)
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
	rows, err := storage.DrainKeyedRows(iter)
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestFetchDataByKey(t *testing.T) {
	s := openTestStorage(t)
	require.NoError(t, s.InsertSchema(schema("t", sql.Column{Name: "v", Type: sql.Typed(sql.KindI64)})))
	keys, err := s.AppendData("t", []sql.Row{sql.NewRow(sql.NewI64(10)), sql.NewRow(sql.NewI64(20))})
	require.NoError(t, err)

	row, ok, err := s.FetchData("t", keys[1])
	require.NoError(t, err)
	require.True(t, ok)
	n, _ := row.Values()[0].AsInt64()
	require.EqualValues(t, 20, n)
}

func TestInsertDataUpsertsByKey(t *testing.T) {
	s := openTestStorage(t)
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
	s := openTestStorage(t)
	require.NoError(t, s.InsertSchema(schema("t", sql.Column{Name: "v", Type: sql.Typed(sql.KindI64)})))
	keys, err := s.AppendData("t", []sql.Row{sql.NewRow(sql.NewI64(1)), sql.NewRow(sql.NewI64(2))})
	require.NoError(t, err)

	require.NoError(t, s.DeleteData("t", []sql.Key{keys[0]}))

	_, ok, err := s.FetchData("t", keys[0])
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDecimalValueRoundtrips(t *testing.T) {
	s := openTestStorage(t)
	require.NoError(t, s.InsertSchema(schema("t", sql.Column{Name: "amount", Type: sql.DecimalType(38, 9)})))

	dt := sql.DecimalType(38, 9)
	v, err := dt.Convert(sql.NewStr("12.50"))
	require.NoError(t, err)

	keys, err := s.AppendData("t", []sql.Row{sql.NewRow(v)})
	require.NoError(t, err)

	row, ok, err := s.FetchData("t", keys[0])
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "12.5", row.Values()[0].Decimal().String())
}

func TestDeleteSchemaDropsTableBucket(t *testing.T) {
	s := openTestStorage(t)
	require.NoError(t, s.InsertSchema(schema("t", sql.Column{Name: "v", Type: sql.Typed(sql.KindI64)})))
	require.NoError(t, s.DeleteSchema("t"))

	_, ok, err := s.FetchSchema("t")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFetchAllSchemas(t *testing.T) {
	s := openTestStorage(t)
	require.NoError(t, s.InsertSchema(schema("a")))
	require.NoError(t, s.InsertSchema(schema("b")))

	schemas, err := s.FetchAllSchemas()
	require.NoError(t, err)
	require.Len(t, schemas, 2)
}
