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

package storage

import "github.com/glaive-db/glaive/sql"

// PayloadKind enumerates the result shapes a statement produces
// (spec.md §4.5, §6).
type PayloadKind int

const (
	PayloadCreate PayloadKind = iota
	PayloadDropTable
	PayloadAlterTable
	PayloadInsert
	PayloadUpdate
	PayloadDelete
	PayloadSelect
	PayloadSelectMap
	PayloadShowColumns
	PayloadStartTransaction
	PayloadCommit
	PayloadRollback
)

// Payload is the uniform result of executing one statement.
type Payload struct {
	Kind PayloadKind

	// Insert/Update/Delete: affected row count.
	RowCount int

	// Select: column labels followed by the rows they label.
	Labels []string
	Rows   []sql.Row

	// SelectMap: schemaless map rows (no fixed label set).
	MapRows []sql.Row

	// ShowColumns: one (name, type) pair per column.
	ColumnNames []string
	ColumnTypes []sql.DataType
}
