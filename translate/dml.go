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

package translate

import (
	"strings"

	"github.com/glaive-db/glaive/ast"
	"github.com/glaive-db/glaive/rawsql"
	"github.com/glaive-db/glaive/sql"
)

func lowerInsert(r *rawsql.RawInsert) (*ast.Insert, error) {
	q, err := lowerQuery(&rawsql.RawQuery{Body: r.Source.Body, OrderBy: r.Source.OrderBy, Limit: r.Source.Limit, Offset: r.Source.Offset})
	if err != nil {
		return nil, err
	}
	cols := make([]string, 0, len(r.Columns))
	for _, c := range r.Columns {
		cols = append(cols, strings.ToLower(c))
	}
	return &ast.Insert{Table: strings.ToLower(r.Table), Columns: cols, Source: q}, nil
}

func lowerUpdate(r *rawsql.RawUpdate) (*ast.Update, error) {
	out := &ast.Update{Table: strings.ToLower(r.Table), Alias: r.Alias}
	for _, a := range r.Assignments {
		v, err := lowerExpr(a.Value)
		if err != nil {
			return nil, err
		}
		out.Assignments = append(out.Assignments, ast.Assignment{Column: strings.ToLower(a.Column), Value: v})
	}
	if r.Where != nil {
		e, err := lowerExpr(r.Where)
		if err != nil {
			return nil, err
		}
		out.Selection = e
	}
	return out, nil
}

func lowerDelete(r *rawsql.RawDelete) (*ast.Delete, error) {
	out := &ast.Delete{Table: strings.ToLower(r.Table), Alias: r.Alias}
	if r.Where != nil {
		e, err := lowerExpr(r.Where)
		if err != nil {
			return nil, err
		}
		out.Selection = e
	}
	return out, nil
}

func lowerCreateTable(r *rawsql.RawCreateTable) (*ast.CreateTable, error) {
	out := &ast.CreateTable{
		Table:       strings.ToLower(r.Table),
		IfNotExists: r.IfNotExists,
		Engine:      r.Engine,
	}
	if r.AsSelect != nil {
		q, err := lowerQuery(r.AsSelect)
		if err != nil {
			return nil, err
		}
		out.AsSelect = q
		return out, nil
	}
	// Duplicate-column and default-constness validation belong to the
	// executor's CREATE TABLE handling (spec.md §4.5), not translate:
	// translate only rejects syntactic/lexical forms it cannot lower.
	for _, c := range r.Columns {
		col, err := lowerColumnDef(c)
		if err != nil {
			return nil, err
		}
		out.Columns = append(out.Columns, col)
	}
	return out, nil
}

func lowerColumnDef(c rawsql.RawColumnDef) (sql.Column, error) {
	var dt sql.DataType
	var err error
	if c.TypeName == "INTERVAL" {
		dt = sql.IntervalType(strings.TrimSpace("INTERVAL " + c.IntervalUnit))
	} else {
		dt, err = dataTypeByName(c.TypeName, c.Precision, c.Scale, c.HasPrecision)
		if err != nil {
			return sql.Column{}, err
		}
	}
	col := sql.Column{
		Name:       strings.ToLower(c.Name),
		Type:       dt,
		Nullable:   !c.NotNull,
		Unique:     c.Unique,
		PrimaryKey: c.PrimaryKey,
	}
	if c.Default != nil {
		e, err := lowerExpr(c.Default)
		if err != nil {
			return sql.Column{}, err
		}
		col.Default = &constDefault{expr: e}
	}
	if c.RefTable != "" {
		col.ForeignKey = &sql.ForeignKey{
			ReferencedTable:  strings.ToLower(c.RefTable),
			ReferencedColumn: strings.ToLower(c.RefColumn),
			OnDelete:         foreignKeyAction(c.OnDeleteAction),
		}
	}
	return col, nil
}

func foreignKeyAction(text string) sql.ForeignKeyAction {
	switch text {
	case "CASCADE":
		return sql.Cascade
	case "SET NULL":
		return sql.SetNull
	case "SET DEFAULT":
		return sql.SetDefault
	default:
		return sql.NoAction
	}
}

// constDefault adapts a translated constant ast.Expr to sql.DefaultExpr.
// Only literal and literal-composed expressions (no column references)
// are legal defaults; the executor's stateless evaluator (which does
// implement sql.DefaultExpr for real) rejects non-const shapes at insert
// time with the same error this placeholder would if invoked directly.
// Kept here, rather than importing expression, to preserve the
// translate → ast → expression dependency direction: translate hands
// rowexec/expression an ast.Expr, and expression supplies the real
// DefaultExpr implementation that wraps it (see expression.ColumnDefault).
// Exported via the ASTExpr accessor so rowexec's CREATE TABLE/ADD COLUMN
// handling can rewrap it in expression.ColumnDefault before storing the
// schema.
type constDefault struct{ expr ast.Expr }

func (c *constDefault) EvalDefault() (sql.Value, error) {
	if lit, ok := c.expr.(*ast.Literal); ok {
		return lit.Value, nil
	}
	return sql.Null, sql.ErrInvalidType.New("non-constant DEFAULT expression")
}

// ASTExpr returns the default clause's underlying expression.
func (c *constDefault) ASTExpr() ast.Expr { return c.expr }

// DefaultSource is implemented by every sql.DefaultExpr translate
// produces, letting a later stage recover the original expression.
type DefaultSource interface {
	ASTExpr() ast.Expr
}

func lowerAlterTable(r *rawsql.RawAlterTable) (*ast.AlterTable, error) {
	out := &ast.AlterTable{Table: strings.ToLower(r.Table)}
	switch a := r.Action.(type) {
	case *rawsql.RawRenameTable:
		out.Action = &ast.RenameTable{NewName: strings.ToLower(a.NewName)}
	case *rawsql.RawAddColumn:
		col, err := lowerColumnDef(a.Column)
		if err != nil {
			return nil, err
		}
		out.Action = &ast.AddColumn{Column: col}
	case *rawsql.RawDropColumn:
		out.Action = &ast.DropColumn{Name: strings.ToLower(a.Name)}
	case *rawsql.RawRenameColumn:
		out.Action = &ast.RenameColumn{OldName: strings.ToLower(a.OldName), NewName: strings.ToLower(a.NewName)}
	default:
		return nil, ErrUnsupportedStatement.New("ALTER TABLE action")
	}
	return out, nil
}
