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

// Package memory is the reference in-memory storage.Store: a map of
// table name to an ordered set of (Key, Row) pairs, no persistence.
// Grounded directly on
// original_source/storages/memory-storage/src/lib.rs's
// MemoryStorage{id_counter, items: HashMap<String, Item>, metadata}.
package memory

import (
	"sort"
	"sync"

	"github.com/glaive-db/glaive/sql"
	"github.com/glaive-db/glaive/storage"
)

type item struct {
	schema sql.Schema
	keys   []sql.Key // kept sorted, mirrors the Rust BTreeMap<Key, DataRow>
	rows   map[string]sql.Row
}

// Storage is the reference backend: everything lives in process memory
// and is lost when the process exits.
type Storage struct {
	mu        sync.Mutex
	idCounter int64
	items     map[string]*item
	metadata  map[string]sql.Value
}

func New() *Storage {
	return &Storage{items: map[string]*item{}, metadata: map[string]sql.Value{}}
}

var _ storage.Store = (*Storage)(nil)
var _ storage.StoreMut = (*Storage)(nil)
var _ storage.Metadata = (*Storage)(nil)
var _ storage.AlterTable = (*Storage)(nil)

func (s *Storage) FetchAllSchemas() ([]sql.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sql.Schema, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it.schema)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TableName < out[j].TableName })
	return out, nil
}

func (s *Storage) FetchSchema(tableName string) (sql.Schema, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[tableName]
	if !ok {
		return sql.Schema{}, false, nil
	}
	return it.schema, true, nil
}

func (s *Storage) FetchData(tableName string, key sql.Key) (sql.Row, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[tableName]
	if !ok {
		return sql.Row{}, false, nil
	}
	row, ok := it.rows[string(key.Bytes())]
	return row, ok, nil
}

func (s *Storage) ScanData(tableName string) (storage.KeyedRowIter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[tableName]
	if !ok {
		return storage.NewSliceKeyedIter(nil), nil
	}
	rows := make([]sql.KeyedRow, 0, len(it.keys))
	for _, k := range it.keys {
		rows = append(rows, sql.KeyedRow{Key: k, Row: it.rows[string(k.Bytes())]})
	}
	return storage.NewSliceKeyedIter(rows), nil
}

func (s *Storage) InsertSchema(schema sql.Schema) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[schema.TableName] = &item{schema: schema, rows: map[string]sql.Row{}}
	return nil
}

func (s *Storage) DeleteSchema(tableName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, tableName)
	delete(s.metadata, tableName)
	return nil
}

func (s *Storage) AppendData(tableName string, rows []sql.Row) ([]sql.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[tableName]
	if !ok {
		return nil, sql.ErrTableNotFound.New(tableName)
	}
	keys := make([]sql.Key, 0, len(rows))
	for _, row := range rows {
		s.idCounter++
		k := sql.NewKey(sql.NewI64(s.idCounter))
		it.rows[string(k.Bytes())] = row
		it.keys = insertSorted(it.keys, k)
		keys = append(keys, k)
	}
	return keys, nil
}

func (s *Storage) InsertData(tableName string, writes []storage.KeyedWrite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[tableName]
	if !ok {
		return sql.ErrTableNotFound.New(tableName)
	}
	for _, w := range writes {
		bk := string(w.Key.Bytes())
		if _, exists := it.rows[bk]; !exists {
			it.keys = insertSorted(it.keys, w.Key)
		}
		it.rows[bk] = w.Row
	}
	return nil
}

func (s *Storage) DeleteData(tableName string, keys []sql.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[tableName]
	if !ok {
		return sql.ErrTableNotFound.New(tableName)
	}
	for _, k := range keys {
		bk := string(k.Bytes())
		delete(it.rows, bk)
		it.keys = removeSorted(it.keys, k)
	}
	return nil
}

func insertSorted(keys []sql.Key, k sql.Key) []sql.Key {
	i := sort.Search(len(keys), func(i int) bool { return keys[i].Compare(k) >= 0 })
	keys = append(keys, sql.Key{})
	copy(keys[i+1:], keys[i:])
	keys[i] = k
	return keys
}

func removeSorted(keys []sql.Key, k sql.Key) []sql.Key {
	i := sort.Search(len(keys), func(i int) bool { return keys[i].Compare(k) >= 0 })
	if i < len(keys) && keys[i].Compare(k) == 0 {
		keys = append(keys[:i], keys[i+1:]...)
	}
	return keys
}

func (s *Storage) ScanMeta() (map[string]sql.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]sql.Value, len(s.metadata))
	for k, v := range s.metadata {
		out[k] = v
	}
	return out, nil
}

func (s *Storage) AppendMeta(meta map[string]sql.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range meta {
		s.metadata[k] = v
	}
	return nil
}

func (s *Storage) DeleteMeta(tableName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.metadata, tableName)
	return nil
}

func (s *Storage) RenameTable(tableName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[tableName]
	if !ok {
		return sql.ErrTableNotFound.New(tableName)
	}
	it.schema.TableName = newName
	s.items[newName] = it
	delete(s.items, tableName)
	return nil
}

func (s *Storage) RenameColumn(tableName, oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[tableName]
	if !ok {
		return sql.ErrTableNotFound.New(tableName)
	}
	idx := it.schema.ColumnIndex(oldName)
	if idx == -1 {
		return sql.ErrColumnNotFound.New(oldName)
	}
	it.schema.Columns[idx].Name = newName
	return nil
}

func (s *Storage) AddColumn(tableName string, column sql.Column) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[tableName]
	if !ok {
		return sql.ErrTableNotFound.New(tableName)
	}
	it.schema.Columns = append(it.schema.Columns, column)
	def, err := columnDefaultValue(column)
	if err != nil {
		return err
	}
	for bk, row := range it.rows {
		vals := append(append([]sql.Value{}, row.Values()...), def)
		it.rows[bk] = sql.NewRow(vals...)
	}
	return nil
}

func (s *Storage) DropColumn(tableName, columnName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[tableName]
	if !ok {
		return sql.ErrTableNotFound.New(tableName)
	}
	idx := it.schema.ColumnIndex(columnName)
	if idx == -1 {
		return sql.ErrColumnNotFound.New(columnName)
	}
	it.schema.Columns = append(it.schema.Columns[:idx], it.schema.Columns[idx+1:]...)
	for bk, row := range it.rows {
		vals := row.Values()
		vals = append(vals[:idx], vals[idx+1:]...)
		it.rows[bk] = sql.NewRow(vals...)
	}
	return nil
}

func columnDefaultValue(c sql.Column) (sql.Value, error) {
	if c.Default == nil {
		return sql.Null, nil
	}
	return c.Default.EvalDefault()
}
