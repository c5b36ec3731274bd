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

package memory

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

func TestInsertSchemaThenFetch(t *testing.T) {
	s := New()
	require.NoError(t, s.InsertSchema(schema("t", sql.Column{Name: "id", Type: sql.Typed(sql.KindI64)})))

	got, ok, err := s.FetchSchema("t")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "t", got.TableName)

	_, ok, err = s.FetchSchema("missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAppendDataAssignsSurrogateKeysInOrder(t *testing.T) {
	s := New()
	require.NoError(t, s.InsertSchema(schema("t", sql.Column{Name: "v", Type: sql.Typed(sql.KindI64)})))

	keys, err := s.AppendData("t", []sql.Row{
		sql.NewRow(sql.NewI64(10)),
		sql.NewRow(sql.NewI64(20)),
	})
	require.NoError(t, err)
	require.Len(t, keys, 2)
	require.Equal(t, -1, keys[0].Compare(keys[1]))

	iter, err := s.ScanData("t")
	require.NoError(t, err)
	var rows []sql.KeyedRow
	for {
		row, err := iter.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}
	require.Len(t, rows, 2)
}

func TestAppendDataUnknownTable(t *testing.T) {
	s := New()
	_, err := s.AppendData("nope", []sql.Row{sql.NewRow(sql.NewI64(1))})
	require.Error(t, err)
	require.True(t, sql.ErrTableNotFound.Is(err))
}

func TestInsertDataUpsertsByKey(t *testing.T) {
	s := New()
	require.NoError(t, s.InsertSchema(schema("t", sql.Column{Name: "v", Type: sql.Typed(sql.KindI64)})))
	keys, err := s.AppendData("t", []sql.Row{sql.NewRow(sql.NewI64(1))})
	require.NoError(t, err)

	err = s.InsertData("t", []storage.KeyedWrite{{Key: keys[0], Row: sql.NewRow(sql.NewI64(99))}})
	require.NoError(t, err)

	row, ok, err := s.FetchData("t", keys[0])
	require.NoError(t, err)
	require.True(t, ok)
	n, _ := row.Values()[0].AsInt64()
	require.EqualValues(t, 99, n)
}

func TestDeleteDataRemovesRowAndKey(t *testing.T) {
	s := New()
	require.NoError(t, s.InsertSchema(schema("t", sql.Column{Name: "v", Type: sql.Typed(sql.KindI64)})))
	keys, err := s.AppendData("t", []sql.Row{sql.NewRow(sql.NewI64(1)), sql.NewRow(sql.NewI64(2))})
	require.NoError(t, err)

	require.NoError(t, s.DeleteData("t", []sql.Key{keys[0]}))

	_, ok, err := s.FetchData("t", keys[0])
	require.NoError(t, err)
	require.False(t, ok)

	iter, err := s.ScanData("t")
	require.NoError(t, err)
	count := 0
	for {
		_, err := iter.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		count++
	}
	require.Equal(t, 1, count)
}

func TestDeleteSchemaDropsTable(t *testing.T) {
	s := New()
	require.NoError(t, s.InsertSchema(schema("t", sql.Column{Name: "v", Type: sql.Typed(sql.KindI64)})))
	require.NoError(t, s.DeleteSchema("t"))
	_, ok, err := s.FetchSchema("t")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFetchAllSchemasSortedByName(t *testing.T) {
	s := New()
	require.NoError(t, s.InsertSchema(schema("zebra")))
	require.NoError(t, s.InsertSchema(schema("alpha")))

	schemas, err := s.FetchAllSchemas()
	require.NoError(t, err)
	require.Len(t, schemas, 2)
	require.Equal(t, "alpha", schemas[0].TableName)
	require.Equal(t, "zebra", schemas[1].TableName)
}

func TestRenameTable(t *testing.T) {
	s := New()
	require.NoError(t, s.InsertSchema(schema("old", sql.Column{Name: "v", Type: sql.Typed(sql.KindI64)})))
	require.NoError(t, s.RenameTable("old", "new"))

	_, ok, _ := s.FetchSchema("old")
	require.False(t, ok)
	got, ok, _ := s.FetchSchema("new")
	require.True(t, ok)
	require.Equal(t, "new", got.TableName)
}

func TestAddColumnBackfillsDefault(t *testing.T) {
	s := New()
	require.NoError(t, s.InsertSchema(schema("t", sql.Column{Name: "v", Type: sql.Typed(sql.KindI64)})))
	keys, err := s.AppendData("t", []sql.Row{sql.NewRow(sql.NewI64(1))})
	require.NoError(t, err)

	require.NoError(t, s.AddColumn("t", sql.Column{Name: "flag", Type: sql.Typed(sql.KindBool)}))

	row, ok, err := s.FetchData("t", keys[0])
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, row.Values(), 2)
	require.True(t, row.Values()[1].IsNull())
}

func TestDropColumnRemovesFromRows(t *testing.T) {
	s := New()
	require.NoError(t, s.InsertSchema(schema("t",
		sql.Column{Name: "id", Type: sql.Typed(sql.KindI64)},
		sql.Column{Name: "v", Type: sql.Typed(sql.KindI64)})))
	keys, err := s.AppendData("t", []sql.Row{sql.NewRow(sql.NewI64(1), sql.NewI64(2))})
	require.NoError(t, err)

	require.NoError(t, s.DropColumn("t", "v"))

	row, ok, err := s.FetchData("t", keys[0])
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, row.Values(), 1)
}

func TestMetadataRoundtrip(t *testing.T) {
	s := New()
	require.NoError(t, s.AppendMeta(map[string]sql.Value{"t": sql.NewStr("meta")}))
	meta, err := s.ScanMeta()
	require.NoError(t, err)
	require.Equal(t, "meta", meta["t"].Str())

	require.NoError(t, s.DeleteMeta("t"))
	meta, err = s.ScanMeta()
	require.NoError(t, err)
	_, ok := meta["t"]
	require.False(t, ok)
}
