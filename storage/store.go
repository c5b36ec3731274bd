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

// Package storage defines the capability-trait surface a backend
// implements (spec.md §6): a minimal read-only Store every backend must
// satisfy, plus optional StoreMut/AlterTable/Index/Transaction/Metadata/
// CustomFunction capabilities rowexec type-asserts for at the point it
// needs them. Grounded directly on gluesql's own store trait split
// (original_source/core/src/store/mod.rs and
// original_source/storages/memory-storage/src/lib.rs's impl blocks).
package storage

import (
	"io"

	"github.com/glaive-db/glaive/sql"
)

// Store is the read surface every backend implements.
type Store interface {
	FetchAllSchemas() ([]sql.Schema, error)
	FetchSchema(tableName string) (sql.Schema, bool, error)
	FetchData(tableName string, key sql.Key) (sql.Row, bool, error)
	// ScanData yields every row of a table in ascending key order
	// (spec.md §4.5 Scan). The key is carried alongside each row (as
	// sql.KeyedRow) so that rowexec's UPDATE/DELETE operators can target a
	// scanned row's exact storage slot without re-deriving it.
	ScanData(tableName string) (KeyedRowIter, error)
}

// KeyedRowIter is ScanData's iterator shape: Next returns io.EOF once
// exhausted, mirroring sql.RowIter.
type KeyedRowIter interface {
	Next() (sql.KeyedRow, error)
	Close() error
}

// sliceKeyedIter adapts a materialized []sql.KeyedRow into a KeyedRowIter.
type sliceKeyedIter struct {
	rows []sql.KeyedRow
	pos  int
}

// NewSliceKeyedIter adapts an already-materialized slice of keyed rows
// into a KeyedRowIter, mirroring sql.NewSliceIter.
func NewSliceKeyedIter(rows []sql.KeyedRow) KeyedRowIter {
	return &sliceKeyedIter{rows: rows}
}

func (it *sliceKeyedIter) Next() (sql.KeyedRow, error) {
	if it.pos >= len(it.rows) {
		return sql.KeyedRow{}, io.EOF
	}
	row := it.rows[it.pos]
	it.pos++
	return row, nil
}

func (it *sliceKeyedIter) Close() error { return nil }

// DrainKeyedRows fully materializes a KeyedRowIter, closing it
// afterwards.
func DrainKeyedRows(iter KeyedRowIter) ([]sql.KeyedRow, error) {
	defer iter.Close()
	var rows []sql.KeyedRow
	for {
		row, err := iter.Next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// StoreMut is the write surface. Backends that only ever serve SELECT
// (e.g. a read replica) may implement Store without StoreMut; rowexec's
// DML operators type-assert for it and return sql.ErrReadOnly if absent.
type StoreMut interface {
	InsertSchema(schema sql.Schema) error
	DeleteSchema(tableName string) error
	AppendData(tableName string, rows []sql.Row) ([]sql.Key, error)
	InsertData(tableName string, rows []KeyedWrite) error
	DeleteData(tableName string, keys []sql.Key) error
}

// KeyedWrite pairs a row with the key it must be written at — used by
// InsertData for upserts-by-key (e.g. re-insert during an UPDATE) where
// AppendData's auto-assigned surrogate key is not wanted.
type KeyedWrite struct {
	Key sql.Key
	Row sql.Row
}

// AlterTable is the optional capability for schema mutation after
// creation. A backend without it rejects ALTER TABLE with
// sql.ErrFeatureNotSupported.
type AlterTable interface {
	RenameTable(tableName, newName string) error
	RenameColumn(tableName, oldName, newName string) error
	AddColumn(tableName string, column sql.Column) error
	DropColumn(tableName, columnName string) error
}

// Index is the optional secondary-index read/plan capability.
type Index interface {
	ScanIndexedData(tableName, indexName string, asc bool) (sql.RowIter, error)
}

// IndexMut is the optional secondary-index write capability.
type IndexMut interface {
	CreateIndex(tableName string, index sql.Index) error
	DropIndex(tableName, indexName string) error
}

// Transaction is the optional capability for explicit
// START TRANSACTION/COMMIT/ROLLBACK. A backend without it runs every
// statement in autocommit mode (spec.md §4.5 statement lifecycle).
type Transaction interface {
	Begin(autocommit bool) error
	Commit() error
	Rollback() error
}

// Metadata is the optional capability backing the GLUE_OBJECTS reserved
// table (spec.md §6 Reserved tables): arbitrary table-keyed bookkeeping
// values a backend may expose read-only through the dictionary view.
type Metadata interface {
	ScanMeta() (map[string]sql.Value, error)
	AppendMeta(meta map[string]sql.Value) error
	DeleteMeta(tableName string) error
}

// CustomFunction is the optional capability for backend-registered
// scalar functions beyond spec.md §4.4's fixed registry.
type CustomFunction interface {
	FetchFunction(name string) (CustomFunctionDef, bool)
}

// CustomFunctionDef is a backend-supplied scalar function.
type CustomFunctionDef struct {
	Name string
	Call func(args []sql.Value) (sql.Value, error)
}
