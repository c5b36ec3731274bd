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

// Package astbuilder is a fluent, staged API that constructs the same
// ast.Statement shapes translate produces from SQL text (spec.md §4.2).
// Stages form a directed graph — Table → Select → Filter → GroupBy →
// Having → Project → OrderBy → Offset → Limit → Build — where each
// stage's methods only expose the next legal transitions, so a caller
// cannot, say, call GroupBy after OrderBy without going through Build
// first and starting a new query.
package astbuilder

import (
	"github.com/glaive-db/glaive/ast"
	"github.com/glaive-db/glaive/sql"
)

// Table begins a builder program rooted at a named table.
func Table(name string) *TableNode {
	return &TableNode{relation: &ast.TableFactorTable{Name: name}}
}

// TableAlias is Table with an explicit alias attached up front.
func TableAlias(name, alias string) *TableNode {
	return &TableNode{relation: &ast.TableFactorTable{Name: name, Alias: alias}}
}

// Derived begins a builder program rooted at a subquery.
func Derived(sub *ast.Query, alias string) *TableNode {
	return &TableNode{relation: &ast.TableFactorDerived{Subquery: sub, Alias: alias}}
}

// Series begins a builder program rooted at SERIES(n).
func Series(n ast.Expr) *TableNode {
	return &TableNode{relation: &ast.TableFactorSeries{Size: n}}
}

// TableNode is the Table stage: it can join more relations or move
// directly into Select.
type TableNode struct {
	relation ast.TableFactor
	joins    []ast.Join
}

func (t *TableNode) Join(relation ast.TableFactor, on ast.Expr) *TableNode {
	t.joins = append(t.joins, ast.Join{Relation: relation, Operator: ast.InnerJoin, Constraint: on})
	return t
}

func (t *TableNode) LeftJoin(relation ast.TableFactor, on ast.Expr) *TableNode {
	t.joins = append(t.joins, ast.Join{Relation: relation, Operator: ast.LeftOuterJoin, Constraint: on})
	return t
}

// Select moves to the Select stage, recording the projection list.
func (t *TableNode) Select(items ...ast.SelectItem) *SelectNode {
	return &SelectNode{
		from:       &ast.TableWithJoins{Relation: t.relation, Joins: t.joins},
		projection: items,
	}
}

// SelectNode is the Select stage: Filter, GroupBy, or skip straight to
// Project.
type SelectNode struct {
	from       *ast.TableWithJoins
	projection []ast.SelectItem
	selection  ast.Expr
	groupBy    []ast.Expr
	having     ast.Expr
}

func (s *SelectNode) Filter(expr ast.Expr) *FilterNode {
	s.selection = expr
	return &FilterNode{s}
}

func (s *SelectNode) GroupBy(keys ...ast.Expr) *GroupByNode {
	s.groupBy = keys
	return &GroupByNode{s}
}

func (s *SelectNode) Project(items ...ast.SelectItem) *ProjectNode {
	s.projection = items
	return &ProjectNode{s}
}

// FilterNode is the Filter stage.
type FilterNode struct{ s *SelectNode }

func (f *FilterNode) GroupBy(keys ...ast.Expr) *GroupByNode {
	f.s.groupBy = keys
	return &GroupByNode{f.s}
}

func (f *FilterNode) Project(items ...ast.SelectItem) *ProjectNode {
	f.s.projection = items
	return &ProjectNode{f.s}
}

// GroupByNode is the GroupBy stage.
type GroupByNode struct{ s *SelectNode }

func (g *GroupByNode) Having(expr ast.Expr) *HavingNode {
	g.s.having = expr
	return &HavingNode{g.s}
}

func (g *GroupByNode) Project(items ...ast.SelectItem) *ProjectNode {
	g.s.projection = items
	return &ProjectNode{g.s}
}

// HavingNode is the Having stage.
type HavingNode struct{ s *SelectNode }

func (h *HavingNode) Project(items ...ast.SelectItem) *ProjectNode {
	h.s.projection = items
	return &ProjectNode{h.s}
}

// ProjectNode is the Project stage: OrderBy, Offset, Limit, or Build.
type ProjectNode struct{ s *SelectNode }

func (p *ProjectNode) OrderBy(exprs ...ast.OrderByExpr) *OrderByNode {
	return &OrderByNode{s: p.s, orderBy: exprs}
}

func (p *ProjectNode) Offset(expr ast.Expr) *OffsetNode {
	return &OffsetNode{s: p.s, offset: expr}
}

func (p *ProjectNode) Limit(expr ast.Expr) *LimitNode {
	return &LimitNode{s: p.s, limit: expr}
}

func (p *ProjectNode) Build() *ast.Query {
	return &ast.Query{Body: p.s.toSelect()}
}

func (s *SelectNode) toSelect() *ast.Select {
	return &ast.Select{
		Projection: s.projection,
		From:       s.from,
		Selection:  s.selection,
		GroupBy:    s.groupBy,
		Having:     s.having,
	}
}

// OrderByNode is the OrderBy stage: Offset, Limit, or Build.
type OrderByNode struct {
	s       *SelectNode
	orderBy []ast.OrderByExpr
}

func (o *OrderByNode) Offset(expr ast.Expr) *OffsetNode {
	return &OffsetNode{s: o.s, orderBy: o.orderBy, offset: expr}
}

func (o *OrderByNode) Limit(expr ast.Expr) *LimitNode {
	return &LimitNode{s: o.s, orderBy: o.orderBy, limit: expr}
}

func (o *OrderByNode) Build() *ast.Query {
	return &ast.Query{Body: o.s.toSelect(), OrderBy: o.orderBy}
}

// OffsetNode is the Offset stage: Limit or Build.
type OffsetNode struct {
	s       *SelectNode
	orderBy []ast.OrderByExpr
	offset  ast.Expr
}

func (o *OffsetNode) Limit(expr ast.Expr) *LimitNode {
	return &LimitNode{s: o.s, orderBy: o.orderBy, offset: o.offset, limit: expr}
}

func (o *OffsetNode) Build() *ast.Query {
	return &ast.Query{Body: o.s.toSelect(), OrderBy: o.orderBy, Offset: o.offset}
}

// LimitNode is the terminal Limit stage.
type LimitNode struct {
	s       *SelectNode
	orderBy []ast.OrderByExpr
	offset  ast.Expr
	limit   ast.Expr
}

func (l *LimitNode) Build() *ast.Query {
	return &ast.Query{Body: l.s.toSelect(), OrderBy: l.orderBy, Offset: l.offset, Limit: l.limit}
}

// ---- Non-query terminals -------------------------------------------------
//
// Insert/Update/Delete/CreateTable/DropTable each build
// directly: they have no intermediate stages to restrict, since their
// shape (unlike SELECT) has no optional sub-clauses ordering constraint
// beyond what their own Go signature already enforces.

func Insert(table string, columns []string, source *ast.Query) *ast.Insert {
	return &ast.Insert{Table: table, Columns: columns, Source: source}
}

func Update(table string, assignments []ast.Assignment, where ast.Expr) *ast.Update {
	return &ast.Update{Table: table, Assignments: assignments, Selection: where}
}

func Delete(table string, where ast.Expr) *ast.Delete {
	return &ast.Delete{Table: table, Selection: where}
}

func CreateTable(table string, columns []sql.Column) *ast.CreateTable {
	return &ast.CreateTable{Table: table, Columns: columns}
}

func DropTable(table string, ifExists bool) *ast.DropTable {
	return &ast.DropTable{Table: table, IfExists: ifExists}
}
