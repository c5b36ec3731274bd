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

package rowexec

import (
	"github.com/glaive-db/glaive/ast"
	"github.com/glaive-db/glaive/plan"
	"github.com/glaive-db/glaive/sql"
	"github.com/glaive-db/glaive/storage"
)

// frameFor builds the single-table plan.Frame an UPDATE/DELETE's row
// context resolves its SET/WHERE expressions against: the alias if
// given, else the table name, per spec.md §4.5's "current row context".
func frameFor(table, alias string, schema sql.Schema) plan.Frame {
	name := table
	if alias != "" {
		name = alias
	}
	cols := make([]string, len(schema.Columns))
	for i, c := range schema.Columns {
		cols[i] = c.Name
	}
	return plan.Frame{Name: name, Columns: cols}
}

// execInsert implements spec.md §4.5 Insert: resolve the column list,
// evaluate Source statelessly, fill defaults, validate types/
// nullability, enforce foreign keys, then write. A table with a
// declared primary key is written through insert_data keyed by the PK
// value, rejecting duplicates; a table with none falls back to
// append_data's surrogate monotonic keys.
func (ec *engineCtx) execInsert(stmt *ast.Insert) (int, error) {
	storeMut, ok := ec.store.(storage.StoreMut)
	if !ok {
		return 0, sql.ErrReadOnly.New()
	}
	schema, found, err := ec.store.FetchSchema(stmt.Table)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, sql.ErrTableNotFound.New(stmt.Table)
	}
	_, srcRows, err := ec.execQuery(nil, stmt.Source)
	if err != nil {
		return 0, err
	}
	pkCol, hasPK := schema.PrimaryKeyColumn()
	if !hasPK {
		rows := make([]sql.Row, 0, len(srcRows))
		for _, src := range srcRows {
			vals, err := buildInsertRow(schema, stmt.Columns, src)
			if err != nil {
				return 0, err
			}
			if err := ec.checkForeignKeys(schema, vals); err != nil {
				return 0, err
			}
			rows = append(rows, sql.NewRow(vals...))
		}
		if _, err := storeMut.AppendData(stmt.Table, rows); err != nil {
			return 0, err
		}
		return len(rows), nil
	}

	pkIdx := schema.ColumnIndex(pkCol)
	writes := make([]storage.KeyedWrite, 0, len(srcRows))
	seen := make(map[string]bool, len(srcRows))
	for _, src := range srcRows {
		vals, err := buildInsertRow(schema, stmt.Columns, src)
		if err != nil {
			return 0, err
		}
		if err := ec.checkForeignKeys(schema, vals); err != nil {
			return 0, err
		}
		key := sql.NewKey(vals[pkIdx])
		keyBytes := string(key.Bytes())
		if seen[keyBytes] {
			return 0, ErrDuplicatePrimaryKey.New(vals[pkIdx].String(), stmt.Table)
		}
		if _, found, err := ec.store.FetchData(stmt.Table, key); err != nil {
			return 0, err
		} else if found {
			return 0, ErrDuplicatePrimaryKey.New(vals[pkIdx].String(), stmt.Table)
		}
		seen[keyBytes] = true
		writes = append(writes, storage.KeyedWrite{Key: key, Row: sql.NewRow(vals...)})
	}
	if err := storeMut.InsertData(stmt.Table, writes); err != nil {
		return 0, err
	}
	return len(writes), nil
}

// buildInsertRow maps src's positional values onto columns (or the
// schema's full column list when Insert.Columns is empty), filling
// every unmentioned column from its DEFAULT clause (or NULL), then
// converts and validates every value against its declared column type.
func buildInsertRow(schema sql.Schema, columns []string, src sql.Row) ([]sql.Value, error) {
	target := columns
	if len(target) == 0 {
		target = make([]string, len(schema.Columns))
		for i, c := range schema.Columns {
			target[i] = c.Name
		}
	}
	if src.Len() != len(target) {
		return nil, sql.ErrColumnAndValuesNotMatched.New()
	}
	vals := make([]sql.Value, len(schema.Columns))
	set := make([]bool, len(schema.Columns))
	for i, name := range target {
		ci := schema.ColumnIndex(name)
		if ci == -1 {
			return nil, sql.ErrColumnNotFound.New(name)
		}
		converted, err := schema.Columns[ci].Type.Convert(src.Get(i))
		if err != nil {
			return nil, err
		}
		vals[ci] = converted
		set[ci] = true
	}
	for i, c := range schema.Columns {
		if set[i] {
			continue
		}
		if c.Default != nil {
			v, err := c.Default.EvalDefault()
			if err != nil {
				return nil, err
			}
			vals[i] = v
			continue
		}
		vals[i] = sql.Null
	}
	for i, c := range schema.Columns {
		if err := c.CheckValue(vals[i]); err != nil {
			return nil, err
		}
	}
	return vals, nil
}

// checkForeignKeys enforces spec.md §4.5 Insert/Update: a non-NULL
// foreign-key value must exist in the referenced table's referenced
// column; NULL is always permitted regardless of the referenced table's
// state.
func (ec *engineCtx) checkForeignKeys(schema sql.Schema, vals []sql.Value) error {
	for i, c := range schema.Columns {
		if c.ForeignKey == nil || vals[i].IsNull() {
			continue
		}
		refSchema, found, err := ec.store.FetchSchema(c.ForeignKey.ReferencedTable)
		if err != nil {
			return err
		}
		if !found {
			return sql.ErrTableNotFound.New(c.ForeignKey.ReferencedTable)
		}
		refCi := refSchema.ColumnIndex(c.ForeignKey.ReferencedColumn)
		if refCi == -1 {
			return sql.ErrColumnNotFound.New(c.ForeignKey.ReferencedColumn)
		}
		iter, err := ec.store.ScanData(c.ForeignKey.ReferencedTable)
		if err != nil {
			return err
		}
		refRows, err := storage.DrainKeyedRows(iter)
		if err != nil {
			return err
		}
		matched := false
		for _, kr := range refRows {
			if valueAtIndex(kr.Row, refSchema, refCi).Equal(vals[i]) {
				matched = true
				break
			}
		}
		if !matched {
			return CannotFindReferencedValue.New(vals[i].String(), c.ForeignKey.ReferencedTable, c.ForeignKey.ReferencedColumn)
		}
	}
	return nil
}

func valueAtIndex(row sql.Row, schema sql.Schema, ci int) sql.Value {
	if row.IsMap() {
		v, _ := row.GetNamed(schema.Columns[ci].Name)
		return v
	}
	return row.Get(ci)
}

// execUpdate implements spec.md §4.5 Update: stream matching rows, eval
// each SET assignment's RHS against the pre-update row (so `SET a=a+1`
// is self-referential to the old value), re-check constraints, then
// insert_data at the same key.
func (ec *engineCtx) execUpdate(stmt *ast.Update) (int, error) {
	storeMut, ok := ec.store.(storage.StoreMut)
	if !ok {
		return 0, sql.ErrReadOnly.New()
	}
	schema, found, err := ec.store.FetchSchema(stmt.Table)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, sql.ErrTableNotFound.New(stmt.Table)
	}
	iter, err := ec.store.ScanData(stmt.Table)
	if err != nil {
		return 0, err
	}
	keyed, err := storage.DrainKeyedRows(iter)
	if err != nil {
		return 0, err
	}
	frame := frameFor(stmt.Table, stmt.Alias, schema)
	scope := &plan.Scope{Frames: []plan.Frame{frame}}
	writes := make([]storage.KeyedWrite, 0)
	count := 0
	for _, kr := range keyed {
		rc := &rowContext{scope: scope, row: tuple{kr.Row}}
		if stmt.Selection != nil {
			ok, err := ec.evalItemBool(resultRow{rc: rc}, stmt.Selection)
			if err != nil {
				return 0, err
			}
			if !ok {
				continue
			}
		}
		vals := copyRowValues(schema, kr.Row)
		for _, asn := range stmt.Assignments {
			ci := schema.ColumnIndex(asn.Column)
			if ci == -1 {
				return 0, sql.ErrColumnNotFound.New(asn.Column)
			}
			raw, err := ec.evalItem(resultRow{rc: rc}, asn.Value)
			if err != nil {
				return 0, err
			}
			converted, err := schema.Columns[ci].Type.Convert(raw)
			if err != nil {
				return 0, err
			}
			vals[ci] = converted
		}
		if err := schema.CheckRow(vals); err != nil {
			return 0, err
		}
		if err := ec.checkForeignKeys(schema, vals); err != nil {
			return 0, err
		}
		writes = append(writes, storage.KeyedWrite{Key: kr.Key, Row: sql.NewRow(vals...)})
		count++
	}
	if len(writes) > 0 {
		if err := storeMut.InsertData(stmt.Table, writes); err != nil {
			return 0, err
		}
	}
	return count, nil
}

func copyRowValues(schema sql.Schema, row sql.Row) []sql.Value {
	vals := make([]sql.Value, len(schema.Columns))
	for i := range schema.Columns {
		vals[i] = valueAtIndex(row, schema, i)
	}
	return vals
}

// execDelete implements spec.md §4.5 Delete: stream matching keys,
// refuse when a NO ACTION foreign key elsewhere still references one of
// them, else CASCADE-delete the referencing rows first.
func (ec *engineCtx) execDelete(stmt *ast.Delete) (int, error) {
	storeMut, ok := ec.store.(storage.StoreMut)
	if !ok {
		return 0, sql.ErrReadOnly.New()
	}
	schema, found, err := ec.store.FetchSchema(stmt.Table)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, sql.ErrTableNotFound.New(stmt.Table)
	}
	iter, err := ec.store.ScanData(stmt.Table)
	if err != nil {
		return 0, err
	}
	keyed, err := storage.DrainKeyedRows(iter)
	if err != nil {
		return 0, err
	}
	frame := frameFor(stmt.Table, stmt.Alias, schema)
	scope := &plan.Scope{Frames: []plan.Frame{frame}}
	var toDelete []sql.KeyedRow
	for _, kr := range keyed {
		rc := &rowContext{scope: scope, row: tuple{kr.Row}}
		if stmt.Selection != nil {
			ok, err := ec.evalItemBool(resultRow{rc: rc}, stmt.Selection)
			if err != nil {
				return 0, err
			}
			if !ok {
				continue
			}
		}
		toDelete = append(toDelete, kr)
	}
	if err := ec.enforceDeleteReferences(stmt.Table, schema, toDelete); err != nil {
		return 0, err
	}
	keys := make([]sql.Key, len(toDelete))
	for i, kr := range toDelete {
		keys[i] = kr.Key
	}
	if err := storeMut.DeleteData(stmt.Table, keys); err != nil {
		return 0, err
	}
	return len(keys), nil
}

// enforceDeleteReferences walks every other table's schema for a foreign
// key into table, and for each row being deleted, either refuses
// (NO ACTION) or recursively deletes the referencing rows (CASCADE).
func (ec *engineCtx) enforceDeleteReferences(table string, schema sql.Schema, deleted []sql.KeyedRow) error {
	pkCol, hasPK := schema.PrimaryKeyColumn()
	if !hasPK || len(deleted) == 0 {
		return nil
	}
	pkIdx := schema.ColumnIndex(pkCol)
	deletedVals := make([]sql.Value, len(deleted))
	for i, kr := range deleted {
		deletedVals[i] = valueAtIndex(kr.Row, schema, pkIdx)
	}
	schemas, err := ec.store.FetchAllSchemas()
	if err != nil {
		return err
	}
	for _, child := range schemas {
		for _, col := range child.Columns {
			if col.ForeignKey == nil || col.ForeignKey.ReferencedTable != table || col.ForeignKey.ReferencedColumn != pkCol {
				continue
			}
			iter, err := ec.store.ScanData(child.TableName)
			if err != nil {
				return err
			}
			childRows, err := storage.DrainKeyedRows(iter)
			if err != nil {
				return err
			}
			ci := child.ColumnIndex(col.Name)
			var referencing []sql.KeyedRow
			for _, kr := range childRows {
				v := valueAtIndex(kr.Row, child, ci)
				if v.IsNull() {
					continue
				}
				for _, dv := range deletedVals {
					if v.Equal(dv) {
						referencing = append(referencing, kr)
						break
					}
				}
			}
			if len(referencing) == 0 {
				continue
			}
			if col.ForeignKey.OnDelete != sql.Cascade {
				return ReferencingColumnExists.New(child.TableName + "." + col.Name)
			}
			storeMut, ok := ec.store.(storage.StoreMut)
			if !ok {
				return sql.ErrReadOnly.New()
			}
			if err := ec.enforceDeleteReferences(child.TableName, child, referencing); err != nil {
				return err
			}
			keys := make([]sql.Key, len(referencing))
			for i, kr := range referencing {
				keys[i] = kr.Key
			}
			if err := storeMut.DeleteData(child.TableName, keys); err != nil {
				return err
			}
		}
	}
	return nil
}
