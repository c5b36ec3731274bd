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
	"sort"
	"strings"

	"github.com/opentracing/opentracing-go"

	"github.com/glaive-db/glaive/ast"
	"github.com/glaive-db/glaive/expression"
	"github.com/glaive-db/glaive/plan"
	"github.com/glaive-db/glaive/sql"
	"github.com/glaive-db/glaive/storage"
)

// engineCtx bundles the dependencies one statement's execution shares:
// the ambient sql.Context (cancellation, logging, transaction), the
// storage backend, and the Scope map plan.Plan attached to every
// (sub)query in the statement.
type engineCtx struct {
	ctx     *sql.Context
	store   storage.Store
	planned *plan.Planned
}

// projItem is one output column: its (already-wildcard-expanded) source
// expression and its display label.
type projItem struct {
	Expr  ast.Expr
	Label string
}

// resultRow is one row of a SELECT pipeline after WHERE/GroupBy/Having,
// before final projection: the row context non-aggregate expressions
// evaluate against, plus (for a grouped query) each aggregate call's
// folded result.
type resultRow struct {
	rc   *rowContext
	subs map[*ast.AggregateCall]sql.Value
}

func (ec *engineCtx) evalItem(r resultRow, expr ast.Expr) (sql.Value, error) {
	resolved, err := rewriteExpr(ec, r.rc, expr)
	if err != nil {
		return sql.Null, err
	}
	if r.subs != nil {
		resolved = substituteAggregates(resolved, r.subs)
	}
	return expression.New(r.rc).Eval(resolved)
}

func (ec *engineCtx) evalItemBool(r resultRow, expr ast.Expr) (bool, error) {
	v, err := ec.evalItem(r, expr)
	if err != nil {
		return false, err
	}
	if v.IsNull() {
		return false, nil
	}
	if v.Kind() != sql.KindBool {
		return false, sql.ErrInvalidType.New(v.Kind())
	}
	return v.Bool(), nil
}

// runSubquery executes q with rc as its captured outer row context,
// returning its materialized result rows. Used by rewriteExpr to lower
// SubqueryScalar/InSubquery/Exists nodes.
func (ec *engineCtx) runSubquery(rc *rowContext, q *ast.Query) ([]sql.Row, error) {
	_, rows, err := ec.execQuery(rc, q)
	return rows, err
}

// execQuery runs q (a SELECT or VALUES body plus ORDER BY/LIMIT/OFFSET)
// against outerRC, the row context of whatever scope encloses q.
func (ec *engineCtx) execQuery(outerRC *rowContext, q *ast.Query) ([]string, []sql.Row, error) {
	scope := ec.planned.ScopeOf(q)
	var items []projItem
	var rows []resultRow
	var err error
	switch body := q.Body.(type) {
	case *ast.Select:
		items, rows, err = ec.execSelect(outerRC, scope, body)
	case *ast.Values:
		items, rows, err = ec.execValues(outerRC, scope, body)
	default:
		return nil, nil, fmt.Errorf("rowexec: unhandled query body %T", q.Body)
	}
	if err != nil {
		return nil, nil, err
	}
	if len(q.OrderBy) > 0 {
		if err := ec.sortRows(rows, q.OrderBy); err != nil {
			return nil, nil, err
		}
	}
	rows, err = ec.applyLimitOffset(outerRC, rows, q.Limit, q.Offset)
	if err != nil {
		return nil, nil, err
	}
	return ec.materialize(items, rows)
}

func (ec *engineCtx) materialize(items []projItem, rows []resultRow) ([]string, []sql.Row, error) {
	labels := make([]string, len(items))
	for i, it := range items {
		labels[i] = it.Label
	}
	out := make([]sql.Row, 0, len(rows))
	for _, r := range rows {
		vals := make([]sql.Value, len(items))
		for i, it := range items {
			v, err := ec.evalItem(r, it.Expr)
			if err != nil {
				return nil, nil, err
			}
			vals[i] = v
		}
		out = append(out, sql.NewRow(vals...))
	}
	return labels, out, nil
}

// ---- VALUES ----------------------------------------------------------

func (ec *engineCtx) execValues(outerRC *rowContext, scope *plan.Scope, v *ast.Values) ([]projItem, []resultRow, error) {
	if len(v.Rows) == 0 {
		return nil, nil, nil
	}
	items := make([]projItem, len(v.Rows[0]))
	for i := range items {
		items[i] = projItem{Expr: &ast.Identifier{Name: fmt.Sprintf("column%d", i+1)}, Label: fmt.Sprintf("column%d", i+1)}
	}
	rows := make([]resultRow, len(v.Rows))
	for ri, row := range v.Rows {
		vals := make([]sql.Value, len(row))
		rc := &rowContext{scope: scope, outer: outerRC}
		for ci, e := range row {
			resolved, err := rewriteExpr(ec, rc, e)
			if err != nil {
				return nil, nil, err
			}
			val, err := expression.New(rc).Eval(resolved)
			if err != nil {
				return nil, nil, err
			}
			vals[ci] = val
		}
		frame := plan.Frame{Columns: make([]string, len(items))}
		for i, it := range items {
			frame.Columns[i] = it.Label
		}
		rowRC := &rowContext{scope: &plan.Scope{Frames: []plan.Frame{frame}, Outer: scope}, row: tuple{sql.NewRow(vals...)}, outer: outerRC}
		rows[ri] = resultRow{rc: rowRC}
	}
	// items are plain Identifier lookups of column1..N, which resolve
	// against each row's synthetic frame rather than the outer scope
	// (Column resolves unqualified names against the innermost frame first).
	return items, rows, nil
}

// ---- SELECT ------------------------------------------------------------

func (ec *engineCtx) execSelect(outerRC *rowContext, scope *plan.Scope, sel *ast.Select) ([]projItem, []resultRow, error) {
	frames := scope.Frames
	var tuples []tuple
	if sel.From == nil {
		tuples = []tuple{{}}
	} else {
		relRows, err := ec.scanFrom(outerRC, sel.From)
		if err != nil {
			return nil, nil, err
		}
		tuples, err = ec.joinRelations(outerRC, scope, frames, sel.From, relRows)
		if err != nil {
			return nil, nil, err
		}
	}
	if sel.Selection != nil {
		filtered := tuples[:0:0]
		for _, t := range tuples {
			rc := &rowContext{scope: scope, row: t, outer: outerRC}
			ok, err := ec.evalItemBool(resultRow{rc: rc}, sel.Selection)
			if err != nil {
				return nil, nil, err
			}
			if ok {
				filtered = append(filtered, t)
			}
		}
		tuples = filtered
	}

	var aggs []*ast.AggregateCall
	for _, item := range sel.Projection {
		if item.Expr != nil {
			collectAggregates(item.Expr, &aggs)
		}
	}
	collectAggregates(sel.Having, &aggs)

	if len(sel.GroupBy) > 0 || len(aggs) > 0 {
		return ec.execGroupBy(outerRC, scope, frames, sel, tuples, aggs)
	}

	items, err := expandProjection(frames, sel.Projection)
	if err != nil {
		return nil, nil, err
	}
	rows := make([]resultRow, len(tuples))
	for i, t := range tuples {
		rows[i] = resultRow{rc: &rowContext{scope: scope, row: t, outer: outerRC}}
	}
	return items, rows, nil
}

// expandProjection turns sel.Projection into the flat list of (expr,
// label) output columns, expanding `*` and `t.*` wildcards against
// frames (spec.md §4.5 Project).
func expandProjection(frames []plan.Frame, projection []ast.SelectItem) ([]projItem, error) {
	var items []projItem
	for _, sel := range projection {
		if sel.Wildcard {
			if sel.Qualifier == "" {
				for _, f := range frames {
					for _, col := range f.Columns {
						items = append(items, projItem{
							Expr:  &ast.CompoundIdentifier{Table: f.Name, Column: col},
							Label: col,
						})
					}
				}
				continue
			}
			found := false
			for _, f := range frames {
				if !strings.EqualFold(f.Name, sel.Qualifier) {
					continue
				}
				found = true
				for _, col := range f.Columns {
					items = append(items, projItem{
						Expr:  &ast.CompoundIdentifier{Table: f.Name, Column: col},
						Label: col,
					})
				}
			}
			if !found {
				return nil, plan.ErrTableNotFound.New(sel.Qualifier)
			}
			continue
		}
		label := sel.Alias
		if label == "" {
			label = exprLabel(sel.Expr)
		}
		items = append(items, projItem{Expr: sel.Expr, Label: label})
	}
	return items, nil
}

// ---- Scan --------------------------------------------------------------

// scanFrom materializes every FROM-item relation independently: per
// plan.go's framesForFrom, no FROM item is ever planned against its
// siblings' scope, only against the query's own outer, so each
// relation's rows can be computed once before the join cross product
// (spec.md §9's "avoid shared references" extended to rowexec's own
// join strategy).
func (ec *engineCtx) scanFrom(outerRC *rowContext, from *ast.TableWithJoins) ([][]sql.Row, error) {
	span, _ := opentracing.StartSpanFromContext(ec.ctx, "rowexec.scan")
	defer span.Finish()

	rows := make([][]sql.Row, 0, 1+len(from.Joins))
	r, err := ec.scanFactor(outerRC, from.Relation)
	if err != nil {
		return nil, err
	}
	rows = append(rows, r)
	for _, j := range from.Joins {
		r, err := ec.scanFactor(outerRC, j.Relation)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func (ec *engineCtx) scanFactor(outerRC *rowContext, tf ast.TableFactor) ([]sql.Row, error) {
	if ec.ctx.Canceled() {
		return nil, ec.ctx.Err()
	}
	switch v := tf.(type) {
	case *ast.TableFactorTable:
		iter, err := ec.store.ScanData(v.Name)
		if err != nil {
			return nil, err
		}
		keyed, err := storage.DrainKeyedRows(iter)
		if err != nil {
			return nil, err
		}
		rows := make([]sql.Row, len(keyed))
		for i, kr := range keyed {
			rows[i] = kr.Row
		}
		return rows, nil
	case *ast.TableFactorSeries:
		rc := &rowContext{scope: outerRC.scopeOrNil(), outer: outerRC}
		resolved, err := rewriteExpr(ec, rc, v.Size)
		if err != nil {
			return nil, err
		}
		sizeVal, err := expression.New(rc).Eval(resolved)
		if err != nil {
			return nil, err
		}
		n, ok := sizeVal.AsInt64()
		if !ok {
			return nil, sql.ErrInvalidType.New(sizeVal.Kind())
		}
		rows := make([]sql.Row, 0, n)
		for i := int64(1); i <= n; i++ {
			rows = append(rows, sql.NewRow(sql.NewI64(i)))
		}
		return rows, nil
	case *ast.TableFactorDictionary:
		return ec.scanDictionary(v.View)
	case *ast.TableFactorDerived:
		_, rows, err := ec.execQuery(outerRC, v.Subquery)
		if err != nil {
			return nil, err
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("rowexec: unhandled table factor %T", tf)
	}
}

// scopeOrNil lets a nil *rowContext still yield a nil Scope for
// constructing a child rowContext, so the top-level query (outerRC ==
// nil) doesn't need special-casing at every call site.
func (rc *rowContext) scopeOrNil() *plan.Scope {
	if rc == nil {
		return nil
	}
	return rc.scope
}

// scanDictionary serves the reserved meta views (spec.md §6) by reading
// storage.Store.FetchAllSchemas and, for GLUE_OBJECTS, the optional
// storage.Metadata capability.
func (ec *engineCtx) scanDictionary(view string) ([]sql.Row, error) {
	schemas, err := ec.store.FetchAllSchemas()
	if err != nil {
		return nil, err
	}
	switch view {
	case "GLUE_TABLES":
		rows := make([]sql.Row, len(schemas))
		for i, s := range schemas {
			rows[i] = sql.NewRow(sql.NewStr(s.TableName))
		}
		return rows, nil
	case "GLUE_TABLE_COLUMNS":
		var rows []sql.Row
		for _, s := range schemas {
			for _, c := range s.Columns {
				typeName := c.Type.Name
				if typeName == "" {
					typeName = c.Type.Kind.String()
				}
				rows = append(rows, sql.NewRow(sql.NewStr(s.TableName), sql.NewStr(c.Name), sql.NewStr(typeName)))
			}
		}
		return rows, nil
	case "GLUE_INDEXES":
		var rows []sql.Row
		for _, s := range schemas {
			for _, idx := range s.Indexes {
				rows = append(rows, sql.NewRow(sql.NewStr(s.TableName), sql.NewStr(idx.Name)))
			}
		}
		return rows, nil
	case "GLUE_OBJECTS":
		meta, ok := ec.store.(storage.Metadata)
		if !ok {
			return nil, nil
		}
		m, err := meta.ScanMeta()
		if err != nil {
			return nil, err
		}
		rows := make([]sql.Row, 0, len(m))
		for name := range m {
			rows = append(rows, sql.NewRow(sql.NewStr("TABLE"), sql.NewStr(name)))
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Get(1).Str() < rows[j].Get(1).Str() })
		return rows, nil
	default:
		return nil, plan.ErrTableNotFound.New(view)
	}
}

// ---- Join ----------------------------------------------------------------

// joinRelations folds relRows left to right through each join in
// from.Joins, choosing NestedLoop or Hash per-join by predicate shape
// (spec.md §4.5 Join).
func (ec *engineCtx) joinRelations(outerRC *rowContext, scope *plan.Scope, frames []plan.Frame, from *ast.TableWithJoins, relRows [][]sql.Row) ([]tuple, error) {
	if len(from.Joins) > 0 {
		span, _ := opentracing.StartSpanFromContext(ec.ctx, "rowexec.join")
		defer span.Finish()
	}

	tuples := make([]tuple, len(relRows[0]))
	for i, r := range relRows[0] {
		tuples[i] = tuple{r}
	}
	for i, j := range from.Joins {
		innerIdx := i + 1
		nextFrames := frames[:innerIdx+1]
		innerRows := relRows[innerIdx]
		var err error
		tuples, err = ec.applyJoin(outerRC, scope, nextFrames, innerIdx, tuples, innerRows, j)
		if err != nil {
			return nil, err
		}
	}
	return tuples, nil
}

func (ec *engineCtx) applyJoin(outerRC *rowContext, scope *plan.Scope, frames []plan.Frame, innerIdx int, left []tuple, innerRows []sql.Row, j ast.Join) ([]tuple, error) {
	if j.Constraint == nil {
		// CROSS JOIN: every pair matches.
		out := make([]tuple, 0, len(left)*len(innerRows))
		for _, t := range left {
			for _, r := range innerRows {
				out = append(out, append(append(tuple{}, t...), r))
			}
		}
		return out, nil
	}
	eqExpr, innerOnLeft, residual, hashable := detectHashEquality(frames, innerIdx, j.Constraint)
	if j.Executor == ast.NestedLoopJoinExecutor {
		hashable = false
	}
	if hashable {
		return ec.hashJoin(outerRC, scope, frames, innerIdx, left, innerRows, eqExpr, innerOnLeft, residual, j)
	}
	return ec.nestedLoopJoin(outerRC, scope, frames, innerIdx, left, innerRows, j)
}

func (ec *engineCtx) nestedLoopJoin(outerRC *rowContext, scope *plan.Scope, frames []plan.Frame, innerIdx int, left []tuple, innerRows []sql.Row, j ast.Join) ([]tuple, error) {
	out := make([]tuple, 0, len(left))
	for _, t := range left {
		matched := false
		for _, r := range innerRows {
			candidate := append(append(tuple{}, t...), r)
			rc := &rowContext{scope: scope, row: padTuple(candidate, frames), outer: outerRC}
			ok, err := ec.evalItemBool(resultRow{rc: rc}, j.Constraint)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, candidate)
				matched = true
			}
		}
		if !matched && j.Operator == ast.LeftOuterJoin {
			out = append(out, append(append(tuple{}, t...), nullTuple(frames[innerIdx])))
		}
	}
	return out, nil
}

func (ec *engineCtx) hashJoin(outerRC *rowContext, scope *plan.Scope, frames []plan.Frame, innerIdx int, left []tuple, innerRows []sql.Row, eqExpr [2]ast.Expr, innerOnLeft bool, residual ast.Expr, j ast.Join) ([]tuple, error) {
	innerExpr, outerExpr := eqExpr[1], eqExpr[0]
	if innerOnLeft {
		innerExpr, outerExpr = eqExpr[0], eqExpr[1]
	}
	type bucketEntry struct {
		key []sql.Value
		row sql.Row
	}
	buckets := map[uint64][]bucketEntry{}
	for _, r := range innerRows {
		t := make(tuple, innerIdx+1)
		t[innerIdx] = r
		rc := &rowContext{scope: scope, row: t, outer: outerRC}
		v, err := ec.evalItem(resultRow{rc: rc}, innerExpr)
		if err != nil {
			return nil, err
		}
		if v.IsNull() {
			continue
		}
		h, err := valueHashKey(v)
		if err != nil {
			return nil, err
		}
		buckets[h] = append(buckets[h], bucketEntry{key: []sql.Value{v}, row: r})
	}
	out := make([]tuple, 0, len(left))
	for _, t := range left {
		probeTuple := padTuple(t, frames)
		rc := &rowContext{scope: scope, row: probeTuple, outer: outerRC}
		probeVal, err := ec.evalItem(resultRow{rc: rc}, outerExpr)
		if err != nil {
			return nil, err
		}
		matched := false
		if !probeVal.IsNull() {
			h, err := valueHashKey(probeVal)
			if err != nil {
				return nil, err
			}
			for _, e := range buckets[h] {
				if !valuesEqual(e.key, []sql.Value{probeVal}) {
					continue
				}
				candidate := append(append(tuple{}, t...), e.row)
				if residual != nil {
					rc2 := &rowContext{scope: scope, row: padTuple(candidate, frames), outer: outerRC}
					ok, err := ec.evalItemBool(resultRow{rc: rc2}, residual)
					if err != nil {
						return nil, err
					}
					if !ok {
						continue
					}
				}
				out = append(out, candidate)
				matched = true
			}
		}
		if !matched && j.Operator == ast.LeftOuterJoin {
			out = append(out, append(append(tuple{}, t...), nullTuple(frames[innerIdx])))
		}
	}
	return out, nil
}

func padTuple(t tuple, frames []plan.Frame) tuple {
	if len(t) >= len(frames) {
		return t
	}
	padded := make(tuple, len(frames))
	copy(padded, t)
	return padded
}

// detectHashEquality looks for a top-level conjunct of constraint shaped
// `a = b` where one side touches exactly innerIdx and the other touches
// exactly one earlier frame (spec.md §4.5/§9: pure predicate-shape
// analysis, no statistics). The remaining conjuncts become a residual
// filter evaluated after the probe.
func detectHashEquality(frames []plan.Frame, innerIdx int, constraint ast.Expr) (eq [2]ast.Expr, innerOnLeft bool, residual ast.Expr, ok bool) {
	conjuncts := splitConjuncts(constraint)
	for i, c := range conjuncts {
		b, isBin := c.(*ast.BinaryOp)
		if !isBin || b.Op != "=" {
			continue
		}
		li, lok := touchedFrames(frames, b.Left)
		ri, rok := touchedFrames(frames, b.Right)
		if !lok || !rok || li == -1 || ri == -1 || li == ri {
			continue
		}
		if li != innerIdx && ri != innerIdx {
			continue
		}
		rest := append(append([]ast.Expr{}, conjuncts[:i]...), conjuncts[i+1:]...)
		return [2]ast.Expr{b.Left, b.Right}, li == innerIdx, rejoinConjuncts(rest), true
	}
	return eq, false, nil, false
}

// ---- GroupBy / Having ----------------------------------------------------

type groupEntry struct {
	key  []sql.Value
	rc   *rowContext
	accs map[*ast.AggregateCall]expression.Accumulator
}

func (ec *engineCtx) execGroupBy(outerRC *rowContext, scope *plan.Scope, frames []plan.Frame, sel *ast.Select, tuples []tuple, aggs []*ast.AggregateCall) ([]projItem, []resultRow, error) {
	span, _ := opentracing.StartSpanFromContext(ec.ctx, "rowexec.groupby")
	defer span.Finish()

	if err := validateGroupedProjection(sel); err != nil {
		return nil, nil, err
	}
	var order []uint64
	groups := map[uint64][]*groupEntry{}

	newAccs := func() map[*ast.AggregateCall]expression.Accumulator {
		m := make(map[*ast.AggregateCall]expression.Accumulator, len(aggs))
		for _, a := range aggs {
			m[a] = expression.NewAccumulator(a.Kind)
		}
		return m
	}

	for _, t := range tuples {
		rc := &rowContext{scope: scope, row: t, outer: outerRC}
		key := make([]sql.Value, len(sel.GroupBy))
		for i, g := range sel.GroupBy {
			v, err := ec.evalItem(resultRow{rc: rc}, g)
			if err != nil {
				return nil, nil, err
			}
			key[i] = v
		}
		h, err := tupleHashKey(key)
		if err != nil {
			return nil, nil, err
		}
		var entry *groupEntry
		for _, e := range groups[h] {
			if valuesEqual(e.key, key) {
				entry = e
				break
			}
		}
		if entry == nil {
			entry = &groupEntry{key: key, rc: rc, accs: newAccs()}
			groups[h] = append(groups[h], entry)
			order = append(order, h)
		}
		for _, a := range aggs {
			var v sql.Value
			var err error
			if a.Kind == ast.AggCountStar || a.Arg == nil {
				v = sql.NewI64(1)
			} else {
				v, err = ec.evalItem(resultRow{rc: rc}, a.Arg)
				if err != nil {
					return nil, nil, err
				}
			}
			if err := entry.accs[a].Add(v); err != nil {
				return nil, nil, err
			}
		}
	}

	if len(sel.GroupBy) == 0 && len(order) == 0 {
		// No input rows but an aggregate query with no GROUP BY still
		// produces exactly one group (e.g. SELECT COUNT(*) FROM t).
		rc := &rowContext{scope: scope, row: nil, outer: outerRC}
		entry := &groupEntry{rc: rc, accs: newAccs()}
		groups[0] = []*groupEntry{entry}
		order = []uint64{0}
	}

	rows := make([]resultRow, 0, len(order))
	seen := map[uint64]int{}
	for _, h := range order {
		idx := seen[h]
		seen[h]++
		entry := groups[h][idx]
		subs := make(map[*ast.AggregateCall]sql.Value, len(aggs))
		for _, a := range aggs {
			v, err := entry.accs[a].Result()
			if err != nil {
				return nil, nil, err
			}
			subs[a] = v
		}
		rr := resultRow{rc: entry.rc, subs: subs}
		if sel.Having != nil {
			ok, err := ec.evalItemBool(rr, sel.Having)
			if err != nil {
				return nil, nil, err
			}
			if !ok {
				continue
			}
		}
		rows = append(rows, rr)
	}

	var items []projItem
	for _, sel := range sel.Projection {
		if sel.Wildcard {
			return nil, nil, UngroupedColumn.New("*")
		}
		label := sel.Alias
		if label == "" {
			label = exprLabel(sel.Expr)
		}
		items = append(items, projItem{Expr: sel.Expr, Label: label})
	}
	return items, rows, nil
}

// validateGroupedProjection enforces spec.md §4.5 GroupBy: a projected
// expression with no aggregate call in it must be structurally one of
// the GROUP BY keys.
func validateGroupedProjection(sel *ast.Select) error {
	for _, item := range sel.Projection {
		if item.Wildcard {
			continue
		}
		var aggs []*ast.AggregateCall
		collectAggregates(item.Expr, &aggs)
		if len(aggs) > 0 {
			continue
		}
		matched := false
		for _, g := range sel.GroupBy {
			if exprEqual(item.Expr, g) {
				matched = true
				break
			}
		}
		if !matched {
			return UngroupedColumn.New(exprLabel(item.Expr))
		}
	}
	return nil
}

// exprEqual is a structural (syntactic) equality check over the subset
// of ast.Expr GROUP BY keys are built from; it is intentionally not a
// semantic/value comparison.
func exprEqual(a, b ast.Expr) bool {
	switch av := a.(type) {
	case *ast.Identifier:
		bv, ok := b.(*ast.Identifier)
		return ok && strings.EqualFold(av.Name, bv.Name)
	case *ast.CompoundIdentifier:
		bv, ok := b.(*ast.CompoundIdentifier)
		return ok && strings.EqualFold(av.Table, bv.Table) && strings.EqualFold(av.Column, bv.Column)
	case *ast.Literal:
		bv, ok := b.(*ast.Literal)
		return ok && av.Value.Equal(bv.Value)
	case *ast.BinaryOp:
		bv, ok := b.(*ast.BinaryOp)
		return ok && av.Op == bv.Op && exprEqual(av.Left, bv.Left) && exprEqual(av.Right, bv.Right)
	case *ast.FunctionCall:
		bv, ok := b.(*ast.FunctionCall)
		if !ok || !strings.EqualFold(av.Name, bv.Name) || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !exprEqual(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ---- OrderBy / Limit / Offset -------------------------------------------

func (ec *engineCtx) sortRows(rows []resultRow, orderBy []ast.OrderByExpr) error {
	var sortErr error
	sort.SliceStable(rows, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		for _, ob := range orderBy {
			vi, err := ec.evalItem(rows[i], ob.Expr)
			if err != nil {
				sortErr = err
				return false
			}
			vj, err := ec.evalItem(rows[j], ob.Expr)
			if err != nil {
				sortErr = err
				return false
			}
			nullsFirst := ob.Desc
			if ob.NullsSet {
				nullsFirst = ob.NullsFirst
			}
			if vi.IsNull() || vj.IsNull() {
				if vi.IsNull() && vj.IsNull() {
					continue
				}
				if vi.IsNull() {
					return nullsFirst
				}
				return !nullsFirst
			}
			c, err := vi.Compare(vj)
			if err != nil {
				sortErr = err
				return false
			}
			if c == 0 {
				continue
			}
			if ob.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return sortErr
}

func (ec *engineCtx) applyLimitOffset(outerRC *rowContext, rows []resultRow, limitExpr, offsetExpr ast.Expr) ([]resultRow, error) {
	offset := 0
	if offsetExpr != nil {
		n, err := ec.evalConstInt(outerRC, offsetExpr)
		if err != nil {
			return nil, err
		}
		offset = int(n)
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(rows) {
		offset = len(rows)
	}
	rows = rows[offset:]
	if limitExpr != nil {
		n, err := ec.evalConstInt(outerRC, limitExpr)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			n = 0
		}
		if int(n) < len(rows) {
			rows = rows[:n]
		}
	}
	return rows, nil
}

func (ec *engineCtx) evalConstInt(outerRC *rowContext, expr ast.Expr) (int64, error) {
	rc := &rowContext{outer: outerRC}
	resolved, err := rewriteExpr(ec, rc, expr)
	if err != nil {
		return 0, err
	}
	v, err := expression.New(rc).Eval(resolved)
	if err != nil {
		return 0, err
	}
	n, ok := v.AsInt64()
	if !ok {
		return 0, sql.ErrInvalidType.New(v.Kind())
	}
	return n, nil
}
