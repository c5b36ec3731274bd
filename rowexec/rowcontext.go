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

// Package rowexec is the operator set of spec.md §4.5: Scan, Project,
// Filter, Join, GroupBy, Having, OrderBy, Limit/Offset, the DML operators
// (Insert/Update/Delete) and DDL operators, plus the transaction-control
// statements. Each operator is a pass over a fully materialized row
// slice; rows are not pulled lazily one at a time. The per-statement
// autocommit bracket lives in the root package's Engine.ExecuteStmt. It
// drives expression.Evaluator over its own row/scope machinery and the
// storage capability traits.
package rowexec

import (
	"strings"

	"github.com/mitchellh/hashstructure"

	"github.com/glaive-db/glaive/ast"
	"github.com/glaive-db/glaive/expression"
	"github.com/glaive-db/glaive/plan"
	"github.com/glaive-db/glaive/sql"
)

// tuple is one joined row: tuple[i] is the current row of scope.Frames[i]
// at whatever scope level this tuple belongs to.
type tuple []sql.Row

// rowContext implements expression.Resolver over a tuple bound to a
// plan.Scope level, chained to an outer rowContext the same way
// plan.Scope chains to plan.Scope.Outer. Scope.Resolve cannot be reused
// directly here since its "outer bool" return collapses every ancestor
// depth to one bit; rowexec instead walks its own chain in lockstep with
// the Scope chain, one level at a time, so a doubly-correlated subquery
// resolves against the right ancestor.
type rowContext struct {
	scope *plan.Scope
	row   tuple
	outer *rowContext
}

var _ expression.Resolver = (*rowContext)(nil)

func (rc *rowContext) Column(table, column string) (sql.Value, error) {
	cur, sc := rc, rc.scope
	for cur != nil && sc != nil {
		if table != "" {
			for fi, f := range sc.Frames {
				if !strings.EqualFold(f.Name, table) {
					continue
				}
				ci := f.ColumnIndex(column)
				if ci == -1 {
					return sql.Null, sql.ErrColumnNotFound.New(column)
				}
				if fi >= len(cur.row) {
					return sql.Null, sql.ErrColumnNotFound.New(column)
				}
				return valueAt(cur.row[fi], f, ci), nil
			}
		} else {
			matchFrame, matchCol, count := -1, -1, 0
			for fi, f := range sc.Frames {
				if ci := f.ColumnIndex(column); ci != -1 {
					matchFrame, matchCol = fi, ci
					count++
				}
			}
			if count > 1 {
				return sql.Null, sql.ErrAmbiguousColumn.New(column)
			}
			if count == 1 {
				if matchFrame >= len(cur.row) {
					return sql.Null, sql.ErrColumnNotFound.New(column)
				}
				return valueAt(cur.row[matchFrame], sc.Frames[matchFrame], matchCol), nil
			}
		}
		cur, sc = cur.outer, sc.Outer
	}
	return sql.Null, sql.ErrColumnNotFound.New(column)
}

// Param is unused: the grammar this engine translates never produces a
// bind-parameter placeholder node, so every lookup is a programming
// error in the caller.
func (rc *rowContext) Param(index int) (sql.Value, error) {
	return sql.Null, sql.ErrFeatureNotSupported.New("bind parameters")
}

// valueAt reads column ci of row, which is shaped according to f: a
// schemaless row is looked up by column name, a positional row by index.
func valueAt(row sql.Row, f plan.Frame, ci int) sql.Value {
	if row.IsMap() {
		v, _ := row.GetNamed(f.Columns[ci])
		return v
	}
	return row.Get(ci)
}

// nullTuple builds an all-NULL row shaped like f, emitted by LEFT OUTER
// JOIN when no inner row matches.
func nullTuple(f plan.Frame) sql.Row {
	vals := make([]sql.Value, len(f.Columns))
	for i := range vals {
		vals[i] = sql.Null
	}
	return sql.NewRow(vals...)
}

// valueHashKey hashes v's canonical key encoding (sql.Key.Bytes), giving
// the hash-join probe table a collision-resistant bucket key that still
// treats any two SQL-equal values identically regardless of their Go
// representation: numeric values hash by their float64 value, so
// Decimal("1.0"), I64(1) and F64(1.0) share a bucket.
func valueHashKey(v sql.Value) (uint64, error) {
	type primitive struct {
		Kind sql.Kind
		Enc  string
	}
	p := primitive{Kind: v.Kind()}
	if f, ok := v.AsFloat64(); ok {
		p = primitive{Kind: sql.KindF64, Enc: string(sql.NewKey(sql.NewF64(f)).Bytes())}
	} else if !v.IsNull() {
		p.Enc = string(sql.NewKey(v).Bytes())
	}
	return hashstructure.Hash(p, nil)
}

// tupleHashKey hashes a composite key (GroupBy's key tuple, or a
// multi-column hash-join probe key).
func tupleHashKey(vals []sql.Value) (uint64, error) {
	encs := make([]string, len(vals))
	for i, v := range vals {
		if v.IsNull() {
			encs[i] = ""
			continue
		}
		encs[i] = string(sql.NewKey(v).Bytes())
	}
	return hashstructure.Hash(encs, nil)
}

// valuesEqual reports whether two key tuples are the same SQL value
// component-wise, used to verify a hash match (hashstructure's 64-bit
// hash is not collision-free).
func valuesEqual(a, b []sql.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].IsNull() != b[i].IsNull() {
			return false
		}
		if a[i].IsNull() {
			continue
		}
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// touchedFrames reports the single frame index expr references (-1 if
// expr references none, i.e. it is constant), or ok=false if expr spans
// more than one frame or has a shape the hash-join analysis does not
// understand (spec.md §4.5/§9: "pure predicate-shape analysis ... no
// statistics consulted. Failing the shape test falls back to nested
// loop").
func touchedFrames(frames []plan.Frame, expr ast.Expr) (int, bool) {
	set := map[int]bool{}
	if !collectFrames(frames, expr, set) {
		return 0, false
	}
	if len(set) > 1 {
		return 0, false
	}
	for idx := range set {
		return idx, true
	}
	return -1, true
}

func collectFrames(frames []plan.Frame, expr ast.Expr, set map[int]bool) bool {
	switch e := expr.(type) {
	case nil:
		return true
	case *ast.Literal, *ast.TypedString, *ast.IntervalLit:
		return true
	case *ast.Identifier:
		matched, count := -1, 0
		for i, f := range frames {
			if f.ColumnIndex(e.Name) != -1 {
				matched, count = i, count+1
			}
		}
		if count > 1 {
			return false
		}
		if count == 1 {
			set[matched] = true
		}
		return true
	case *ast.CompoundIdentifier:
		for i, f := range frames {
			if strings.EqualFold(f.Name, e.Table) {
				set[i] = true
				return true
			}
		}
		return false
	case *ast.BinaryOp:
		return collectFrames(frames, e.Left, set) && collectFrames(frames, e.Right, set)
	case *ast.UnaryOp:
		return collectFrames(frames, e.Expr, set)
	case *ast.Nested:
		return collectFrames(frames, e.Expr, set)
	case *ast.Cast:
		return collectFrames(frames, e.Expr, set)
	case *ast.FunctionCall:
		for _, a := range e.Args {
			if !collectFrames(frames, a, set) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// splitConjuncts flattens a top-level chain of AND nodes into its
// individual conjuncts, the first step of hash-join shape analysis.
func splitConjuncts(expr ast.Expr) []ast.Expr {
	if b, ok := expr.(*ast.BinaryOp); ok && b.Op == "AND" {
		return append(splitConjuncts(b.Left), splitConjuncts(b.Right)...)
	}
	return []ast.Expr{expr}
}

// rejoinConjuncts rebuilds a single AND-expr from the conjuncts not
// consumed by the hash-join equality, used as the post-probe residual
// filter.
func rejoinConjuncts(exprs []ast.Expr) ast.Expr {
	if len(exprs) == 0 {
		return nil
	}
	result := exprs[0]
	for _, e := range exprs[1:] {
		result = &ast.BinaryOp{Left: result, Op: "AND", Right: e}
	}
	return result
}
