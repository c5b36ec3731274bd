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
	"fmt"
	"time"

	"github.com/glaive-db/glaive/ast"
	"github.com/glaive-db/glaive/expression"
	"github.com/glaive-db/glaive/plan"
	"github.com/glaive-db/glaive/sql"
	"github.com/glaive-db/glaive/storage"
	"github.com/glaive-db/glaive/translate"
)

// Execute is rowexec's single entry point: it dispatches planned's
// statement to the matching operator(s) and produces the uniform
// storage.Payload spec.md §6 names. Engine (the root package) is the
// only caller; every DML/DDL/query/transaction-control branch of
// spec.md §3's Statement sum type is handled here.
func Execute(ctx *sql.Context, store storage.Store, planned *plan.Planned) (*storage.Payload, error) {
	ec := &engineCtx{ctx: ctx, store: store, planned: planned}
	switch stmt := planned.Statement.(type) {
	case *ast.Query:
		labels, rows, err := ec.execQuery(nil, stmt)
		if err != nil {
			return nil, err
		}
		if schemalessResult(rows) {
			return &storage.Payload{Kind: storage.PayloadSelectMap, MapRows: rows}, nil
		}
		return &storage.Payload{Kind: storage.PayloadSelect, Labels: labels, Rows: rows}, nil
	case *ast.Insert:
		n, err := ec.execInsert(stmt)
		if err != nil {
			return nil, err
		}
		return &storage.Payload{Kind: storage.PayloadInsert, RowCount: n}, nil
	case *ast.Update:
		n, err := ec.execUpdate(stmt)
		if err != nil {
			return nil, err
		}
		return &storage.Payload{Kind: storage.PayloadUpdate, RowCount: n}, nil
	case *ast.Delete:
		n, err := ec.execDelete(stmt)
		if err != nil {
			return nil, err
		}
		return &storage.Payload{Kind: storage.PayloadDelete, RowCount: n}, nil
	case *ast.CreateTable:
		if err := ec.execCreateTable(stmt); err != nil {
			return nil, err
		}
		return &storage.Payload{Kind: storage.PayloadCreate}, nil
	case *ast.DropTable:
		if err := ec.execDropTable(stmt); err != nil {
			return nil, err
		}
		return &storage.Payload{Kind: storage.PayloadDropTable}, nil
	case *ast.AlterTable:
		if err := ec.execAlterTable(stmt); err != nil {
			return nil, err
		}
		return &storage.Payload{Kind: storage.PayloadAlterTable}, nil
	case *ast.ShowColumns:
		return ec.execShowColumns(stmt)
	case *ast.StartTransaction:
		tx, ok := store.(storage.Transaction)
		if !ok {
			return nil, sql.ErrFeatureNotSupported.New("START TRANSACTION")
		}
		if err := tx.Begin(false); err != nil {
			return nil, err
		}
		ctx.SetIgnoreAutoCommit(true)
		return &storage.Payload{Kind: storage.PayloadStartTransaction}, nil
	case *ast.Commit:
		tx, ok := store.(storage.Transaction)
		if !ok {
			return nil, sql.ErrFeatureNotSupported.New("COMMIT")
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		ctx.SetIgnoreAutoCommit(false)
		return &storage.Payload{Kind: storage.PayloadCommit}, nil
	case *ast.Rollback:
		tx, ok := store.(storage.Transaction)
		if !ok {
			return nil, sql.ErrFeatureNotSupported.New("ROLLBACK")
		}
		if err := tx.Rollback(); err != nil {
			return nil, err
		}
		ctx.SetIgnoreAutoCommit(false)
		return &storage.Payload{Kind: storage.PayloadRollback}, nil
	default:
		return nil, sql.ErrFeatureNotSupported.New(fmt.Sprintf("%T", stmt))
	}
}

// schemalessResult reports whether every row of a SELECT result is a
// map row, meaning the query's driving table(s) are schemaless and the
// Payload should carry SelectMap rather than labeled Select rows
// (spec.md §6 Payload kinds).
func schemalessResult(rows []sql.Row) bool {
	if len(rows) == 0 {
		return false
	}
	for _, r := range rows {
		if !r.IsMap() {
			return false
		}
	}
	return true
}

// execCreateTable implements spec.md §4.5 DDL/CREATE TABLE: rejects
// duplicate column names, wraps each column's translated DEFAULT in
// expression.ColumnDefault (superseding translate's placeholder so
// DEFAULT NOW() and other non-literal-but-const expressions work, not
// just bare literals), and for CREATE TABLE ... AS SELECT materializes
// the result's inferred schema and rows.
func (ec *engineCtx) execCreateTable(stmt *ast.CreateTable) error {
	storeMut, ok := ec.store.(storage.StoreMut)
	if !ok {
		return sql.ErrReadOnly.New()
	}
	_, exists, err := ec.store.FetchSchema(stmt.Table)
	if err != nil {
		return err
	}
	if exists {
		if stmt.IfNotExists {
			return nil
		}
		return sql.ErrTableAlreadyExists.New(stmt.Table)
	}

	if stmt.AsSelect != nil {
		labels, rows, err := ec.execQuery(nil, stmt.AsSelect)
		if err != nil {
			return err
		}
		schema := inferSchema(stmt.Table, labels, rows)
		if err := storeMut.InsertSchema(schema); err != nil {
			return err
		}
		if len(rows) > 0 {
			if _, err := storeMut.AppendData(stmt.Table, rows); err != nil {
				return err
			}
		}
		return nil
	}

	seen := map[string]bool{}
	columns := make([]sql.Column, len(stmt.Columns))
	for i, c := range stmt.Columns {
		if seen[c.Name] {
			return ErrDuplicateColumn.New(c.Name)
		}
		seen[c.Name] = true
		columns[i] = c
		if src, ok := c.Default.(translate.DefaultSource); ok {
			columns[i].Default = &expression.ColumnDefault{Column: c.Name, Expr: src.ASTExpr()}
		}
	}
	schema := sql.Schema{TableName: stmt.Table, Columns: columns, Created: ec.now(), Engine: stmt.Engine}
	return storeMut.InsertSchema(schema)
}

// now returns the statement's creation timestamp (sql.Schema.Created,
// spec.md §3).
func (ec *engineCtx) now() time.Time { return time.Now().UTC() }

// inferSchema builds the schemaless-or-typed schema a CREATE TABLE ... AS
// SELECT materializes: typed when every produced row is a Vec row (the
// common case), with each column's DataType the LUB across all rows at
// that position; schemaless when the source produced map rows.
func inferSchema(table string, labels []string, rows []sql.Row) sql.Schema {
	if schemalessResult(rows) {
		return sql.Schema{TableName: table}
	}
	columns := make([]sql.Column, len(labels))
	for i, label := range labels {
		dt := sql.Typed(sql.KindStr)
		nullable := false
		seenKind := false
		for _, r := range rows {
			v := r.Get(i)
			if v.IsNull() {
				nullable = true
				continue
			}
			if !seenKind {
				dt = sql.Typed(v.Kind())
				seenKind = true
			} else {
				dt = sql.LUB(dt, sql.Typed(v.Kind()))
			}
		}
		columns[i] = sql.Column{Name: label, Type: dt, Nullable: nullable || !seenKind}
	}
	return sql.Schema{TableName: table, Columns: columns, Created: time.Now().UTC()}
}

// execDropTable implements spec.md §4.5 DROP TABLE: refuses when another
// table's foreign key still references this one, unless CASCADE, in
// which case the referencing tables are dropped first.
func (ec *engineCtx) execDropTable(stmt *ast.DropTable) error {
	storeMut, ok := ec.store.(storage.StoreMut)
	if !ok {
		return sql.ErrReadOnly.New()
	}
	_, exists, err := ec.store.FetchSchema(stmt.Table)
	if err != nil {
		return err
	}
	if !exists {
		if stmt.IfExists {
			return nil
		}
		return sql.ErrTableNotFound.New(stmt.Table)
	}
	schemas, err := ec.store.FetchAllSchemas()
	if err != nil {
		return err
	}
	var referencing []string
	for _, s := range schemas {
		if s.TableName == stmt.Table {
			continue
		}
		for _, c := range s.Columns {
			if c.ForeignKey != nil && c.ForeignKey.ReferencedTable == stmt.Table {
				referencing = append(referencing, s.TableName)
				break
			}
		}
	}
	if len(referencing) > 0 {
		if !stmt.Cascade {
			return CannotDropTableWithReferencing.New(stmt.Table, referencing)
		}
		for _, r := range referencing {
			if err := ec.execDropTable(&ast.DropTable{Table: r, Cascade: true}); err != nil {
				return err
			}
		}
	}
	return storeMut.DeleteSchema(stmt.Table)
}

// execAlterTable implements spec.md §4.5 ALTER TABLE: rename table,
// add column (DEFAULT fills existing rows), drop column, rename column.
func (ec *engineCtx) execAlterTable(stmt *ast.AlterTable) error {
	alterable, ok := ec.store.(storage.AlterTable)
	if !ok {
		return sql.ErrFeatureNotSupported.New("ALTER TABLE")
	}
	_, found, err := ec.store.FetchSchema(stmt.Table)
	if err != nil {
		return err
	}
	if !found {
		return sql.ErrTableNotFound.New(stmt.Table)
	}
	switch action := stmt.Action.(type) {
	case *ast.RenameTable:
		return alterable.RenameTable(stmt.Table, action.NewName)
	case *ast.RenameColumn:
		return alterable.RenameColumn(stmt.Table, action.OldName, action.NewName)
	case *ast.DropColumn:
		return alterable.DropColumn(stmt.Table, action.Name)
	case *ast.AddColumn:
		col := action.Column
		if src, ok := col.Default.(translate.DefaultSource); ok {
			col.Default = &expression.ColumnDefault{Column: col.Name, Expr: src.ASTExpr()}
		}
		// AddColumn's backfill of existing rows (spec.md §4.5 "default
		// fills existing rows") is the backend's job: it alone knows its
		// row storage shape, and storage/memory's AddColumn evaluates
		// column.Default once and appends that value to every existing row.
		return alterable.AddColumn(stmt.Table, col)
	default:
		return sql.ErrFeatureNotSupported.New("ALTER TABLE action")
	}
}

// execShowColumns implements the ShowColumns meta statement (spec.md §6
// Payload kinds).
func (ec *engineCtx) execShowColumns(stmt *ast.ShowColumns) (*storage.Payload, error) {
	schema, found, err := ec.store.FetchSchema(stmt.Table)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, sql.ErrTableNotFound.New(stmt.Table)
	}
	names := make([]string, len(schema.Columns))
	types := make([]sql.DataType, len(schema.Columns))
	for i, c := range schema.Columns {
		names[i] = c.Name
		types[i] = c.Type
	}
	return &storage.Payload{Kind: storage.PayloadShowColumns, ColumnNames: names, ColumnTypes: types}, nil
}
