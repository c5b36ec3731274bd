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

package plan

import (
	"github.com/glaive-db/glaive/ast"
	"github.com/glaive-db/glaive/sql"
)

// SchemaLookup is the minimum the planner needs from storage: schema by
// name. A storage.Store satisfies this without plan importing storage.
type SchemaLookup interface {
	FetchSchema(name string) (sql.Schema, bool)
}

var reservedViewColumns = map[string][]string{
	"GLUE_OBJECTS":       {"OBJECT_TYPE", "OBJECT_NAME"},
	"GLUE_TABLES":        {"TABLE_NAME"},
	"GLUE_TABLE_COLUMNS": {"TABLE_NAME", "COLUMN_NAME", "COLUMN_TYPE"},
	"GLUE_INDEXES":       {"TABLE_NAME", "INDEX_NAME"},
}

// Planned pairs a statement with the Scope captured at each of its
// (sub)queries, keyed by the *ast.Query pointer identity (safe because
// each query node is singly owned, spec.md §9).
type Planned struct {
	Statement ast.Statement
	Scopes    map[*ast.Query]*Scope
}

// ScopeOf returns the scope captured for q, or nil if q was never
// planned (e.g. q is not part of this Planned's statement tree).
func (p *Planned) ScopeOf(q *ast.Query) *Scope { return p.Scopes[q] }

type planner struct {
	lookup SchemaLookup
	scopes map[*ast.Query]*Scope
}

// Plan walks stmt, attaching a Scope to every query/subquery and
// validating DDL foreign-key targets (spec.md §4.3).
func Plan(lookup SchemaLookup, stmt ast.Statement) (*Planned, error) {
	p := &planner{lookup: lookup, scopes: map[*ast.Query]*Scope{}}
	switch s := stmt.(type) {
	case *ast.Query:
		if err := p.planQuery(nil, s); err != nil {
			return nil, err
		}
	case *ast.Insert:
		if err := p.planQuery(nil, s.Source); err != nil {
			return nil, err
		}
	case *ast.Update:
		frame, err := p.frameForTable(s.Table, s.Alias)
		if err != nil {
			return nil, err
		}
		scope := (&Scope{}).Push(frame)
		for _, a := range s.Assignments {
			if err := p.planExpr(scope, a.Value); err != nil {
				return nil, err
			}
		}
		if s.Selection != nil {
			if err := p.planExpr(scope, s.Selection); err != nil {
				return nil, err
			}
		}
	case *ast.Delete:
		frame, err := p.frameForTable(s.Table, s.Alias)
		if err != nil {
			return nil, err
		}
		scope := (&Scope{}).Push(frame)
		if s.Selection != nil {
			if err := p.planExpr(scope, s.Selection); err != nil {
				return nil, err
			}
		}
	case *ast.CreateTable:
		if s.AsSelect != nil {
			if err := p.planQuery(nil, s.AsSelect); err != nil {
				return nil, err
			}
		}
		if err := p.validateForeignKeys(s.Columns); err != nil {
			return nil, err
		}
	case *ast.AlterTable:
		if add, ok := s.Action.(*ast.AddColumn); ok {
			if err := p.validateForeignKeys([]sql.Column{add.Column}); err != nil {
				return nil, err
			}
		}
	}
	return &Planned{Statement: stmt, Scopes: p.scopes}, nil
}

// validateForeignKeys enforces spec.md §4.3: the referenced column must
// exist AND be the referenced table's declared primary key.
func (p *planner) validateForeignKeys(columns []sql.Column) error {
	for _, c := range columns {
		if c.ForeignKey == nil {
			continue
		}
		refSchema, ok := p.lookup.FetchSchema(c.ForeignKey.ReferencedTable)
		if !ok {
			return ErrTableNotFound.New(c.ForeignKey.ReferencedTable)
		}
		pk, hasPK := refSchema.PrimaryKeyColumn()
		idx := refSchema.ColumnIndex(c.ForeignKey.ReferencedColumn)
		if idx == -1 {
			return ErrColumnNotFound.New(c.ForeignKey.ReferencedColumn)
		}
		if !hasPK || pk != refSchema.Columns[idx].Name {
			return ErrReferencingNonPKColumn.New(c.ForeignKey.ReferencedTable, c.ForeignKey.ReferencedColumn)
		}
		switch c.ForeignKey.OnDelete {
		case sql.SetNull:
			return sql.ErrFeatureNotSupported.New("ON DELETE SET NULL")
		case sql.SetDefault:
			return sql.ErrFeatureNotSupported.New("ON DELETE SET DEFAULT")
		}
	}
	return nil
}

func (p *planner) frameForTable(name, alias string) (Frame, error) {
	schema, ok := p.lookup.FetchSchema(name)
	if !ok {
		return Frame{}, ErrTableNotFound.New(name)
	}
	frameName := name
	if alias != "" {
		frameName = alias
	}
	f := Frame{Name: frameName}
	for _, c := range schema.Columns {
		f.Columns = append(f.Columns, c.Name)
	}
	if pk, ok := schema.PrimaryKeyColumn(); ok {
		f.PrimaryKey, f.HasPK = pk, true
	}
	return f, nil
}

// planQuery recurses into q, building the Frames visible at this level
// from its FROM clause, recording the resulting Scope, then descending
// into every expression that might itself contain a correlated
// subquery.
func (p *planner) planQuery(outer *Scope, q *ast.Query) error {
	if q == nil {
		return nil
	}
	var scope *Scope
	switch body := q.Body.(type) {
	case *ast.Select:
		frames, err := p.framesForFrom(outer, body.From)
		if err != nil {
			return err
		}
		scope = outer.Push(frames...)
		for _, item := range body.Projection {
			if item.Expr != nil {
				if err := p.planExpr(scope, item.Expr); err != nil {
					return err
				}
			}
		}
		if body.Selection != nil {
			if err := p.planExpr(scope, body.Selection); err != nil {
				return err
			}
		}
		for _, g := range body.GroupBy {
			if err := p.planExpr(scope, g); err != nil {
				return err
			}
		}
		if body.Having != nil {
			if err := p.planExpr(scope, body.Having); err != nil {
				return err
			}
		}
		for _, j := range body.From.Joins {
			if j.Constraint != nil {
				if err := p.planExpr(scope, j.Constraint); err != nil {
					return err
				}
			}
		}
	case *ast.Values:
		scope = outer
		for _, row := range body.Rows {
			for _, e := range row {
				if err := p.planExpr(scope, e); err != nil {
					return err
				}
			}
		}
	}
	p.scopes[q] = scope
	for _, ob := range q.OrderBy {
		if err := p.planExpr(scope, ob.Expr); err != nil {
			return err
		}
	}
	return nil
}

func (p *planner) framesForFrom(outer *Scope, from *ast.TableWithJoins) ([]Frame, error) {
	if from == nil {
		return nil, nil
	}
	var frames []Frame
	f, err := p.frameForFactor(outer, from.Relation)
	if err != nil {
		return nil, err
	}
	frames = append(frames, f)
	for _, j := range from.Joins {
		jf, err := p.frameForFactor(outer, j.Relation)
		if err != nil {
			return nil, err
		}
		frames = append(frames, jf)
	}
	return frames, nil
}

func (p *planner) frameForFactor(outer *Scope, tf ast.TableFactor) (Frame, error) {
	switch v := tf.(type) {
	case *ast.TableFactorTable:
		return p.frameForTable(v.Name, v.Alias)
	case *ast.TableFactorSeries:
		name := "series"
		if v.Alias != "" {
			name = v.Alias
		}
		return Frame{Name: name, Columns: []string{"generate_series"}}, nil
	case *ast.TableFactorDictionary:
		name := v.View
		if v.Alias != "" {
			name = v.Alias
		}
		return Frame{Name: name, Columns: reservedViewColumns[v.View]}, nil
	case *ast.TableFactorDerived:
		if err := p.planQuery(outer, v.Subquery); err != nil {
			return Frame{}, err
		}
		cols := derivedColumns(v.Subquery)
		return Frame{Name: v.Alias, Columns: cols}, nil
	default:
		return Frame{}, ErrTableNotFound.New("unknown table factor")
	}
}

// derivedColumns computes a derived table's visible column labels from
// its SELECT projection (spec.md §4.5 Project labeling rules).
func derivedColumns(q *ast.Query) []string {
	sel, ok := q.Body.(*ast.Select)
	if !ok {
		return nil
	}
	var cols []string
	for _, item := range sel.Projection {
		if item.Wildcard {
			continue
		}
		cols = append(cols, item.Alias)
	}
	return cols
}

// planExpr walks expr looking for nested subqueries to plan against
// scope as their captured outer context (spec.md §4.3: "captures the
// outer context so the executor can resolve correlated identifiers").
func (p *planner) planExpr(scope *Scope, expr ast.Expr) error {
	switch e := expr.(type) {
	case *ast.BinaryOp:
		if err := p.planExpr(scope, e.Left); err != nil {
			return err
		}
		return p.planExpr(scope, e.Right)
	case *ast.UnaryOp:
		return p.planExpr(scope, e.Expr)
	case *ast.Between:
		if err := p.planExpr(scope, e.Expr); err != nil {
			return err
		}
		if err := p.planExpr(scope, e.Low); err != nil {
			return err
		}
		return p.planExpr(scope, e.High)
	case *ast.Like:
		if err := p.planExpr(scope, e.Expr); err != nil {
			return err
		}
		return p.planExpr(scope, e.Pattern)
	case *ast.InList:
		if err := p.planExpr(scope, e.Expr); err != nil {
			return err
		}
		for _, item := range e.List {
			if err := p.planExpr(scope, item); err != nil {
				return err
			}
		}
		return nil
	case *ast.InSubquery:
		if err := p.planExpr(scope, e.Expr); err != nil {
			return err
		}
		return p.planQuery(scope, e.Subquery)
	case *ast.SubqueryScalar:
		return p.planQuery(scope, e.Subquery)
	case *ast.Exists:
		return p.planQuery(scope, e.Subquery)
	case *ast.Case:
		if e.Operand != nil {
			if err := p.planExpr(scope, e.Operand); err != nil {
				return err
			}
		}
		for _, wt := range e.WhenThen {
			if err := p.planExpr(scope, wt.When); err != nil {
				return err
			}
			if err := p.planExpr(scope, wt.Then); err != nil {
				return err
			}
		}
		if e.ElseResult != nil {
			return p.planExpr(scope, e.ElseResult)
		}
		return nil
	case *ast.Cast:
		return p.planExpr(scope, e.Expr)
	case *ast.Extract:
		return p.planExpr(scope, e.Expr)
	case *ast.Nested:
		return p.planExpr(scope, e.Expr)
	case *ast.FunctionCall:
		for _, a := range e.Args {
			if err := p.planExpr(scope, a); err != nil {
				return err
			}
		}
		return nil
	case *ast.AggregateCall:
		if e.Arg != nil {
			return p.planExpr(scope, e.Arg)
		}
		return nil
	case *ast.Array:
		for _, item := range e.Items {
			if err := p.planExpr(scope, item); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}
