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

// Package jsonl is a human-inspectable storage.Store backed by one
// <table>.jsonl data file (one JSON object per line, line number is the
// row's surrogate Key) plus one <table>.sql schema-DDL file per table.
// Grounded directly on
// original_source/storages/jsonl-storage/src/lib.rs's
// data_path/schema_path/path_by naming and its Schema::from_ddl round
// trip through the .sql file.
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/glaive-db/glaive/sql"
	"github.com/glaive-db/glaive/storage"
)

// Storage persists each table as plain files under a root directory.
type Storage struct {
	dir string
}

// New creates dir if necessary and returns a Storage rooted there.
func New(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Storage{dir: dir}, nil
}

var _ storage.Store = (*Storage)(nil)
var _ storage.StoreMut = (*Storage)(nil)

func (s *Storage) pathBy(tableName, extension string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s.%s", tableName, extension))
}

func (s *Storage) dataPath(tableName string) string   { return s.pathBy(tableName, "jsonl") }
func (s *Storage) schemaPath(tableName string) string { return s.pathBy(tableName, "sql") }

func (s *Storage) FetchSchema(tableName string) (sql.Schema, bool, error) {
	if _, err := os.Stat(s.dataPath(tableName)); err != nil {
		return sql.Schema{}, false, nil
	}
	schemaPath := s.schemaPath(tableName)
	ddl, err := os.ReadFile(schemaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return sql.Schema{TableName: tableName}, true, nil
		}
		return sql.Schema{}, false, err
	}
	schema, ok := sql.FromDDL(string(ddl))
	if !ok {
		return sql.Schema{}, false, fmt.Errorf("jsonl: malformed schema file %s", schemaPath)
	}
	return schema, true, nil
}

func (s *Storage) FetchAllSchemas() ([]sql.Schema, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var schemas []sql.Schema
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".jsonl" {
			continue
		}
		tableName := strings.TrimSuffix(e.Name(), ".jsonl")
		schema, ok, err := s.FetchSchema(tableName)
		if err != nil {
			return nil, err
		}
		if ok {
			schemas = append(schemas, schema)
		}
	}
	sort.Slice(schemas, func(i, j int) bool { return schemas[i].TableName < schemas[j].TableName })
	return schemas, nil
}

func (s *Storage) FetchData(tableName string, key sql.Key) (sql.Row, bool, error) {
	iter, err := s.ScanData(tableName)
	if err != nil {
		return sql.Row{}, false, err
	}
	defer iter.Close()
	for {
		kr, err := iter.Next()
		if err != nil {
			break
		}
		if kr.Key.Compare(key) == 0 {
			return kr.Row, true, nil
		}
	}
	return sql.Row{}, false, nil
}

func (s *Storage) ScanData(tableName string) (storage.KeyedRowIter, error) {
	schema, ok, err := s.FetchSchema(tableName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, sql.ErrTableNotFound.New(tableName)
	}
	f, err := os.Open(s.dataPath(tableName))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var rows []sql.KeyedRow
	scanner := bufio.NewScanner(f)
	line := int64(0)
	for scanner.Scan() {
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		line++
		row, err := decodeRow(text, schema)
		if err != nil {
			return nil, err
		}
		rows = append(rows, sql.KeyedRow{Key: sql.NewKey(sql.NewI64(line)), Row: row})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return storage.NewSliceKeyedIter(rows), nil
}

func decodeRow(line string, schema sql.Schema) (sql.Row, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(line), &obj); err != nil {
		return sql.Row{}, err
	}
	if schema.Schemaless() {
		m := make(map[string]sql.Value, len(obj))
		for k, raw := range obj {
			m[k] = decodeJSONValue(raw)
		}
		return sql.NewMapRow(m), nil
	}
	values := make([]sql.Value, len(schema.Columns))
	for i, c := range schema.Columns {
		raw, ok := obj[c.Name]
		if !ok {
			values[i] = sql.Null
			continue
		}
		v := decodeJSONValue(raw)
		if !v.IsNull() && v.Kind() != c.Type.Kind {
			converted, err := c.Type.Convert(v)
			if err == nil {
				v = converted
			}
		}
		values[i] = v
	}
	return sql.NewRow(values...), nil
}

// decodeJSONValue maps plain JSON scalars (as produced by
// encoding/json's interface{} unmarshal) to the closest sql.Value kind;
// Schema.Columns[i].Type.Convert then coerces to the column's declared
// type. Strings that parse as a UUID are decoded as KindUuid so that a
// round trip through encodeRow/decodeRow preserves UUID columns.
func decodeJSONValue(raw interface{}) sql.Value {
	switch v := raw.(type) {
	case nil:
		return sql.Null
	case bool:
		return sql.NewBool(v)
	case float64:
		if v == float64(int64(v)) {
			return sql.NewI64(int64(v))
		}
		return sql.NewF64(v)
	case string:
		if u, err := uuid.Parse(v); err == nil {
			return sql.NewUuid(u)
		}
		return sql.NewStr(v)
	case []interface{}:
		list := make([]sql.Value, len(v))
		for i, item := range v {
			list[i] = decodeJSONValue(item)
		}
		return sql.NewList(list)
	case map[string]interface{}:
		m := make(map[string]sql.Value, len(v))
		for k, item := range v {
			m[k] = decodeJSONValue(item)
		}
		return sql.NewMap(m)
	default:
		return sql.Null
	}
}

func encodeValue(v sql.Value) interface{} {
	switch v.Kind() {
	case sql.KindNull:
		return nil
	case sql.KindBool:
		return v.Bool()
	case sql.KindI8, sql.KindI16, sql.KindI32, sql.KindI64:
		n, _ := v.AsInt64()
		return n
	case sql.KindU8, sql.KindU16, sql.KindU32, sql.KindU64:
		n, _ := v.AsInt64()
		return n
	case sql.KindF32, sql.KindF64:
		f, _ := v.AsFloat64()
		return f
	case sql.KindDecimal:
		f, _ := v.Decimal().Float64()
		return f
	case sql.KindStr:
		return v.Str()
	case sql.KindUuid:
		return v.Uuid().String()
	case sql.KindList:
		list := v.List()
		out := make([]interface{}, len(list))
		for i, item := range list {
			out[i] = encodeValue(item)
		}
		return out
	case sql.KindMap:
		m := v.Map()
		out := make(map[string]interface{}, len(m))
		for k, item := range m {
			out[k] = encodeValue(item)
		}
		return out
	default:
		return v.String()
	}
}

func encodeRow(row sql.Row, schema sql.Schema) (string, error) {
	obj := map[string]interface{}{}
	if schema.Schemaless() {
		for name, value := range row.Map() {
			obj[name] = encodeValue(value)
		}
	} else {
		for i, c := range schema.Columns {
			obj[c.Name] = encodeValue(row.Values()[i])
		}
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *Storage) InsertSchema(schema sql.Schema) error {
	f, err := os.Create(s.dataPath(schema.TableName))
	if err != nil {
		return err
	}
	f.Close()
	if !schema.Schemaless() {
		return os.WriteFile(s.schemaPath(schema.TableName), []byte(schema.ToDDL()), 0o644)
	}
	return nil
}

func (s *Storage) DeleteSchema(tableName string) error {
	os.Remove(s.dataPath(tableName))
	os.Remove(s.schemaPath(tableName))
	return nil
}

func (s *Storage) AppendData(tableName string, rows []sql.Row) ([]sql.Key, error) {
	schema, ok, err := s.FetchSchema(tableName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, sql.ErrTableNotFound.New(tableName)
	}
	existing, err := s.countLines(tableName)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(s.dataPath(tableName), os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	keys := make([]sql.Key, 0, len(rows))
	for i, row := range rows {
		line, err := encodeRow(row, schema)
		if err != nil {
			return nil, err
		}
		if _, err := w.WriteString(line + "\n"); err != nil {
			return nil, err
		}
		keys = append(keys, sql.NewKey(sql.NewI64(int64(existing+i+1))))
	}
	return keys, w.Flush()
}

func (s *Storage) countLines(tableName string) (int, error) {
	f, err := os.Open(s.dataPath(tableName))
	if err != nil {
		return 0, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	n := 0
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			n++
		}
	}
	return n, scanner.Err()
}

func keyLine(k sql.Key) (int, bool) {
	n, ok := k.Value().AsInt64()
	return int(n), ok
}

// InsertData rewrites the whole data file, applying keyed writes as an
// overlay on the existing rows in line-number order — mirrors the Rust
// implementation's SortMerge of previous rows against the incoming
// (Key, DataRow) pairs.
func (s *Storage) InsertData(tableName string, writes []storage.KeyedWrite) error {
	schema, ok, err := s.FetchSchema(tableName)
	if err != nil {
		return err
	}
	if !ok {
		return sql.ErrTableNotFound.New(tableName)
	}
	iter, err := s.ScanData(tableName)
	if err != nil {
		return err
	}
	keyedRows, err := storage.DrainKeyedRows(iter)
	if err != nil {
		return err
	}
	rows := make([]sql.Row, len(keyedRows))
	for i, kr := range keyedRows {
		rows[i] = kr.Row
	}
	for _, w := range writes {
		idx, ok := keyLine(w.Key)
		idx--
		if ok && idx >= 0 && idx < len(rows) {
			rows[idx] = w.Row
		} else {
			rows = append(rows, w.Row)
		}
	}
	return s.rewrite(tableName, schema, rows)
}

func (s *Storage) DeleteData(tableName string, keys []sql.Key) error {
	schema, ok, err := s.FetchSchema(tableName)
	if err != nil {
		return err
	}
	if !ok {
		return sql.ErrTableNotFound.New(tableName)
	}
	iter, err := s.ScanData(tableName)
	if err != nil {
		return err
	}
	allRows, err := storage.DrainKeyedRows(iter)
	if err != nil {
		return err
	}
	removed := make(map[int]bool, len(keys))
	for _, k := range keys {
		if line, ok := keyLine(k); ok {
			removed[line] = true
		}
	}
	var kept []sql.Row
	for i, kr := range allRows {
		if !removed[i+1] {
			kept = append(kept, kr.Row)
		}
	}
	return s.rewrite(tableName, schema, kept)
}

func (s *Storage) rewrite(tableName string, schema sql.Schema, rows []sql.Row) error {
	f, err := os.Create(s.dataPath(tableName))
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, row := range rows {
		line, err := encodeRow(row, schema)
		if err != nil {
			f.Close()
			return err
		}
		if _, err := w.WriteString(line + "\n"); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
