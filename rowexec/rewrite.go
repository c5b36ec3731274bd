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
	"strings"

	"github.com/glaive-db/glaive/ast"
	"github.com/glaive-db/glaive/sql"
)

// rewriteExpr resolves every node expression.Eval cannot itself evaluate
// — subqueries and deferred typed-string/interval literals — into plain
// ast.Literal (or ast.InList, for InSubquery) nodes, given rc as the
// resolver context a nested query's outer correlation sees. It runs once
// per (row, expr) immediately before expression.New(rc).Eval, rather
// than duplicating Evaluator's dispatch.
func rewriteExpr(ec *engineCtx, rc *rowContext, expr ast.Expr) (ast.Expr, error) {
	switch e := expr.(type) {
	case nil:
		return nil, nil
	case *ast.Literal, *ast.Identifier, *ast.CompoundIdentifier:
		return e, nil
	case *ast.TypedString:
		if e.DataType.Kind == sql.KindInterval {
			v, err := sql.ParseInterval(e.IntervalUnit, e.Value)
			if err != nil {
				return nil, err
			}
			return &ast.Literal{Value: v}, nil
		}
		v, err := e.DataType.Convert(sql.NewStr(e.Value))
		if err != nil {
			return nil, err
		}
		return &ast.Literal{Value: v}, nil
	case *ast.IntervalLit:
		v, err := sql.ParseInterval(e.Unit, e.Value)
		if err != nil {
			return nil, err
		}
		return &ast.Literal{Value: v}, nil
	case *ast.BinaryOp:
		left, err := rewriteExpr(ec, rc, e.Left)
		if err != nil {
			return nil, err
		}
		right, err := rewriteExpr(ec, rc, e.Right)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryOp{Left: left, Op: e.Op, Right: right}, nil
	case *ast.UnaryOp:
		inner, err := rewriteExpr(ec, rc, e.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: e.Op, Expr: inner}, nil
	case *ast.Between:
		val, err := rewriteExpr(ec, rc, e.Expr)
		if err != nil {
			return nil, err
		}
		low, err := rewriteExpr(ec, rc, e.Low)
		if err != nil {
			return nil, err
		}
		high, err := rewriteExpr(ec, rc, e.High)
		if err != nil {
			return nil, err
		}
		return &ast.Between{Expr: val, Negated: e.Negated, Low: low, High: high}, nil
	case *ast.Like:
		val, err := rewriteExpr(ec, rc, e.Expr)
		if err != nil {
			return nil, err
		}
		pat, err := rewriteExpr(ec, rc, e.Pattern)
		if err != nil {
			return nil, err
		}
		return &ast.Like{Expr: val, Negated: e.Negated, Pattern: pat, CaseInsensitive: e.CaseInsensitive}, nil
	case *ast.InList:
		val, err := rewriteExpr(ec, rc, e.Expr)
		if err != nil {
			return nil, err
		}
		list := make([]ast.Expr, len(e.List))
		for i, item := range e.List {
			list[i], err = rewriteExpr(ec, rc, item)
			if err != nil {
				return nil, err
			}
		}
		return &ast.InList{Expr: val, List: list, Negated: e.Negated}, nil
	case *ast.InSubquery:
		val, err := rewriteExpr(ec, rc, e.Expr)
		if err != nil {
			return nil, err
		}
		rows, err := ec.runSubquery(rc, e.Subquery)
		if err != nil {
			return nil, err
		}
		items := make([]ast.Expr, len(rows))
		for i, r := range rows {
			items[i] = &ast.Literal{Value: r.Get(0)}
		}
		return &ast.InList{Expr: val, List: items, Negated: e.Negated}, nil
	case *ast.SubqueryScalar:
		rows, err := ec.runSubquery(rc, e.Subquery)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return &ast.Literal{Value: sql.Null}, nil
		}
		if len(rows) > 1 {
			return nil, fmt.Errorf("rowexec: scalar subquery returned more than one row")
		}
		return &ast.Literal{Value: rows[0].Get(0)}, nil
	case *ast.Exists:
		rows, err := ec.runSubquery(rc, e.Subquery)
		if err != nil {
			return nil, err
		}
		exists := len(rows) > 0
		if e.Negated {
			exists = !exists
		}
		return &ast.Literal{Value: sql.NewBool(exists)}, nil
	case *ast.Case:
		var operand ast.Expr
		var err error
		if e.Operand != nil {
			operand, err = rewriteExpr(ec, rc, e.Operand)
			if err != nil {
				return nil, err
			}
		}
		whenThen := make([]ast.CaseWhen, len(e.WhenThen))
		for i, wt := range e.WhenThen {
			when, err := rewriteExpr(ec, rc, wt.When)
			if err != nil {
				return nil, err
			}
			then, err := rewriteExpr(ec, rc, wt.Then)
			if err != nil {
				return nil, err
			}
			whenThen[i] = ast.CaseWhen{When: when, Then: then}
		}
		var elseResult ast.Expr
		if e.ElseResult != nil {
			elseResult, err = rewriteExpr(ec, rc, e.ElseResult)
			if err != nil {
				return nil, err
			}
		}
		return &ast.Case{Operand: operand, WhenThen: whenThen, ElseResult: elseResult}, nil
	case *ast.Cast:
		inner, err := rewriteExpr(ec, rc, e.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.Cast{Expr: inner, DataType: e.DataType}, nil
	case *ast.Extract:
		inner, err := rewriteExpr(ec, rc, e.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.Extract{Field: e.Field, Expr: inner}, nil
	case *ast.Nested:
		inner, err := rewriteExpr(ec, rc, e.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.Nested{Expr: inner}, nil
	case *ast.FunctionCall:
		args := make([]ast.Expr, len(e.Args))
		for i, a := range e.Args {
			var err error
			args[i], err = rewriteExpr(ec, rc, a)
			if err != nil {
				return nil, err
			}
		}
		return &ast.FunctionCall{Name: e.Name, Args: args}, nil
	case *ast.AggregateCall:
		if e.Arg == nil {
			return e, nil
		}
		arg, err := rewriteExpr(ec, rc, e.Arg)
		if err != nil {
			return nil, err
		}
		return &ast.AggregateCall{Kind: e.Kind, Arg: arg}, nil
	case *ast.Array:
		items := make([]ast.Expr, len(e.Items))
		for i, item := range e.Items {
			var err error
			items[i], err = rewriteExpr(ec, rc, item)
			if err != nil {
				return nil, err
			}
		}
		return &ast.Array{Items: items}, nil
	default:
		return nil, fmt.Errorf("rowexec: unhandled expr %T in rewrite", expr)
	}
}

// substituteAggregates replaces every *ast.AggregateCall node present in
// subs with its accumulated result, leaving the rest of the tree
// structurally unchanged. Run after a GroupBy/Having pass has reduced
// each aggregate call to one sql.Value per group, so the remaining tree
// is plain scalar expression.Eval can handle directly.
func substituteAggregates(expr ast.Expr, subs map[*ast.AggregateCall]sql.Value) ast.Expr {
	switch e := expr.(type) {
	case nil:
		return nil
	case *ast.AggregateCall:
		if v, ok := subs[e]; ok {
			return &ast.Literal{Value: v}
		}
		return e
	case *ast.BinaryOp:
		return &ast.BinaryOp{Left: substituteAggregates(e.Left, subs), Op: e.Op, Right: substituteAggregates(e.Right, subs)}
	case *ast.UnaryOp:
		return &ast.UnaryOp{Op: e.Op, Expr: substituteAggregates(e.Expr, subs)}
	case *ast.Between:
		return &ast.Between{
			Expr: substituteAggregates(e.Expr, subs), Negated: e.Negated,
			Low: substituteAggregates(e.Low, subs), High: substituteAggregates(e.High, subs),
		}
	case *ast.Like:
		return &ast.Like{
			Expr: substituteAggregates(e.Expr, subs), Negated: e.Negated,
			Pattern: substituteAggregates(e.Pattern, subs), CaseInsensitive: e.CaseInsensitive,
		}
	case *ast.InList:
		list := make([]ast.Expr, len(e.List))
		for i, item := range e.List {
			list[i] = substituteAggregates(item, subs)
		}
		return &ast.InList{Expr: substituteAggregates(e.Expr, subs), List: list, Negated: e.Negated}
	case *ast.Case:
		whenThen := make([]ast.CaseWhen, len(e.WhenThen))
		for i, wt := range e.WhenThen {
			whenThen[i] = ast.CaseWhen{When: substituteAggregates(wt.When, subs), Then: substituteAggregates(wt.Then, subs)}
		}
		return &ast.Case{Operand: substituteAggregates(e.Operand, subs), WhenThen: whenThen, ElseResult: substituteAggregates(e.ElseResult, subs)}
	case *ast.Cast:
		return &ast.Cast{Expr: substituteAggregates(e.Expr, subs), DataType: e.DataType}
	case *ast.Extract:
		return &ast.Extract{Field: e.Field, Expr: substituteAggregates(e.Expr, subs)}
	case *ast.Nested:
		return &ast.Nested{Expr: substituteAggregates(e.Expr, subs)}
	case *ast.FunctionCall:
		args := make([]ast.Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = substituteAggregates(a, subs)
		}
		return &ast.FunctionCall{Name: e.Name, Args: args}
	case *ast.Array:
		items := make([]ast.Expr, len(e.Items))
		for i, item := range e.Items {
			items[i] = substituteAggregates(item, subs)
		}
		return &ast.Array{Items: items}
	default:
		return e
	}
}

// collectAggregates appends every *ast.AggregateCall reachable from expr
// (excluding through a nested subquery, which has its own scope) into
// out, used to discover the accumulators a GroupBy needs to maintain.
func collectAggregates(expr ast.Expr, out *[]*ast.AggregateCall) {
	switch e := expr.(type) {
	case nil:
		return
	case *ast.AggregateCall:
		*out = append(*out, e)
	case *ast.BinaryOp:
		collectAggregates(e.Left, out)
		collectAggregates(e.Right, out)
	case *ast.UnaryOp:
		collectAggregates(e.Expr, out)
	case *ast.Between:
		collectAggregates(e.Expr, out)
		collectAggregates(e.Low, out)
		collectAggregates(e.High, out)
	case *ast.Like:
		collectAggregates(e.Expr, out)
		collectAggregates(e.Pattern, out)
	case *ast.InList:
		collectAggregates(e.Expr, out)
		for _, item := range e.List {
			collectAggregates(item, out)
		}
	case *ast.Case:
		collectAggregates(e.Operand, out)
		for _, wt := range e.WhenThen {
			collectAggregates(wt.When, out)
			collectAggregates(wt.Then, out)
		}
		collectAggregates(e.ElseResult, out)
	case *ast.Cast:
		collectAggregates(e.Expr, out)
	case *ast.Extract:
		collectAggregates(e.Expr, out)
	case *ast.Nested:
		collectAggregates(e.Expr, out)
	case *ast.FunctionCall:
		for _, a := range e.Args {
			collectAggregates(a, out)
		}
	case *ast.Array:
		for _, item := range e.Items {
			collectAggregates(item, out)
		}
	}
}

// exprLabel derives a projection column label from its expr when no AS
// alias was given: an identifier's name, the trailing identifier of a
// compound reference, the lower-cased name of a function or aggregate
// call, or the label of a CAST's or parenthesized expression's operand.
// Any other expression is labeled "?column?"; the original expression
// text is not used.
func exprLabel(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e.Name
	case *ast.CompoundIdentifier:
		return e.Column
	case *ast.FunctionCall:
		return strings.ToLower(e.Name)
	case *ast.AggregateCall:
		return strings.ToLower(aggregateCallName(e.Kind))
	case *ast.Cast:
		return exprLabel(e.Expr)
	case *ast.Nested:
		return exprLabel(e.Expr)
	default:
		return "?column?"
	}
}

func aggregateCallName(k ast.AggregateKind) string {
	switch k {
	case ast.AggCount, ast.AggCountStar:
		return "count"
	case ast.AggSum:
		return "sum"
	case ast.AggAvg:
		return "avg"
	case ast.AggMin:
		return "min"
	case ast.AggMax:
		return "max"
	case ast.AggStdev:
		return "stdev"
	case ast.AggVariance:
		return "variance"
	default:
		return "?column?"
	}
}
