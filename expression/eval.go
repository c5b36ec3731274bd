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

// Package expression evaluates an ast.Expr against a row binding,
// implementing spec.md §4.4: three-valued NULL logic, the numeric
// coercion lattice, the scalar function registry, and aggregates.
// rowexec drives it per row/group; translate's minimal constDefault is
// superseded here by ColumnDefault, which can evaluate any constant
// expression (not just bare literals) as a column default.
package expression

import (
	"fmt"
	"strings"

	"github.com/glaive-db/glaive/ast"
	"github.com/glaive-db/glaive/sql"
)

// Resolver binds identifiers to runtime values. rowexec implements this
// over whatever row/scope machinery it is currently iterating;
// Evaluator itself carries no notion of Scope or Row shape.
type Resolver interface {
	Column(table, column string) (sql.Value, error)
	Param(index int) (sql.Value, error)
}

// ConstResolver rejects every lookup, used to evaluate expressions that
// must be constant (column DEFAULTs).
type ConstResolver struct{}

func (ConstResolver) Column(table, column string) (sql.Value, error) {
	return sql.Null, fmt.Errorf("expression: %s.%s is not a constant", table, column)
}

func (ConstResolver) Param(index int) (sql.Value, error) {
	return sql.Null, fmt.Errorf("expression: parameters are not constant")
}

// Evaluator evaluates ast.Expr nodes against a Resolver.
type Evaluator struct {
	Resolver Resolver
}

func New(r Resolver) *Evaluator { return &Evaluator{Resolver: r} }

// Eval dispatches over every Expr variant ast defines (spec.md §3/§4.4).
func (e *Evaluator) Eval(expr ast.Expr) (sql.Value, error) {
	switch v := expr.(type) {
	case *ast.Literal:
		return v.Value, nil
	case *ast.TypedString:
		return sql.Null, fmt.Errorf("expression: unresolved typed string literal %q", v.Value)
	case *ast.IntervalLit:
		return sql.Null, fmt.Errorf("expression: unresolved interval literal %q", v.Value)
	case *ast.Identifier:
		return e.Resolver.Column("", v.Name)
	case *ast.CompoundIdentifier:
		return e.Resolver.Column(v.Table, v.Column)
	case *ast.Nested:
		return e.Eval(v.Expr)
	case *ast.UnaryOp:
		return e.evalUnary(v)
	case *ast.BinaryOp:
		return e.evalBinary(v)
	case *ast.Between:
		return e.evalBetween(v)
	case *ast.Like:
		return e.evalLike(v)
	case *ast.InList:
		return e.evalInList(v)
	case *ast.Case:
		return e.evalCase(v)
	case *ast.Cast:
		val, err := e.Eval(v.Expr)
		if err != nil {
			return sql.Null, err
		}
		return v.DataType.Convert(val)
	case *ast.Extract:
		val, err := e.Eval(v.Expr)
		if err != nil {
			return sql.Null, err
		}
		return extract(v.Field, val)
	case *ast.FunctionCall:
		return e.evalFunctionCall(v)
	case *ast.Array:
		items := make([]sql.Value, 0, len(v.Items))
		for _, item := range v.Items {
			val, err := e.Eval(item)
			if err != nil {
				return sql.Null, err
			}
			items = append(items, val)
		}
		return sql.NewList(items), nil
	case *ast.AggregateCall:
		return sql.Null, ErrAggregateOutsideExec.New(aggregateName(v.Kind))
	case *ast.SubqueryScalar, *ast.InSubquery, *ast.Exists:
		return sql.Null, fmt.Errorf("expression: subqueries are evaluated by rowexec, not Evaluator")
	default:
		return sql.Null, fmt.Errorf("expression: unhandled expr %T", expr)
	}
}

// EvalBool evaluates expr and folds the three-valued result (true,
// false, unknown/NULL) down to a Go bool for a WHERE/HAVING/ON
// predicate, per spec.md §4.4: unknown is treated as false.
func (e *Evaluator) EvalBool(expr ast.Expr) (bool, error) {
	v, err := e.Eval(expr)
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

func (e *Evaluator) evalUnary(v *ast.UnaryOp) (sql.Value, error) {
	val, err := e.Eval(v.Expr)
	if err != nil {
		return sql.Null, err
	}
	switch v.Op {
	case "NOT":
		if val.IsNull() {
			return sql.Null, nil
		}
		if val.Kind() != sql.KindBool {
			return sql.Null, sql.ErrInvalidType.New(val.Kind())
		}
		return sql.NewBool(!val.Bool()), nil
	case "-":
		if val.IsNull() {
			return sql.Null, nil
		}
		return negate(val)
	case "+":
		return val, nil
	default:
		return sql.Null, ErrUnsupportedOperator.New(v.Op)
	}
}

func negate(v sql.Value) (sql.Value, error) {
	switch v.Kind() {
	case sql.KindDecimal:
		return sql.NewDecimal(v.Decimal().Neg()), nil
	case sql.KindF32, sql.KindF64:
		f, _ := v.AsFloat64()
		return sql.NewF64(-f), nil
	default:
		n, ok := v.AsInt64()
		if !ok {
			return sql.Null, sql.ErrInvalidType.New(v.Kind())
		}
		return sql.NewI64(-n), nil
	}
}

func (e *Evaluator) evalBinary(v *ast.BinaryOp) (sql.Value, error) {
	switch v.Op {
	case "AND":
		return e.evalLogical(v, true)
	case "OR":
		return e.evalLogical(v, false)
	}
	l, err := e.Eval(v.Left)
	if err != nil {
		return sql.Null, err
	}
	r, err := e.Eval(v.Right)
	if err != nil {
		return sql.Null, err
	}
	switch v.Op {
	case "+", "-", "*", "/", "%":
		return arithmetic(l, r, v.Op)
	case "=", "<>", "<", "<=", ">", ">=":
		return compareOp(l, r, v.Op)
	default:
		return sql.Null, ErrUnsupportedOperator.New(v.Op)
	}
}

// evalLogical implements SQL three-valued AND/OR short-circuiting:
// FALSE AND NULL = FALSE; TRUE OR NULL = TRUE; otherwise NULL propagates.
func (e *Evaluator) evalLogical(v *ast.BinaryOp, isAnd bool) (sql.Value, error) {
	l, err := e.Eval(v.Left)
	if err != nil {
		return sql.Null, err
	}
	shortCircuit := !isAnd // OR short-circuits on true, AND short-circuits on false
	if !l.IsNull() && l.Kind() == sql.KindBool && l.Bool() == shortCircuit {
		return l, nil
	}
	r, err := e.Eval(v.Right)
	if err != nil {
		return sql.Null, err
	}
	if !r.IsNull() && r.Kind() == sql.KindBool && r.Bool() == shortCircuit {
		return r, nil
	}
	if l.IsNull() || r.IsNull() {
		return sql.Null, nil
	}
	if isAnd {
		return sql.NewBool(l.Bool() && r.Bool()), nil
	}
	return sql.NewBool(l.Bool() || r.Bool()), nil
}

func arithmetic(a, b sql.Value, op string) (sql.Value, error) {
	if a.IsNull() || b.IsNull() {
		return sql.Null, nil
	}
	lub := sql.LUB(sql.Typed(a.Kind()), sql.Typed(b.Kind()))
	switch lub.Kind {
	case sql.KindDecimal:
		da, err := lub.Convert(a)
		if err != nil {
			return sql.Null, err
		}
		db, err := lub.Convert(b)
		if err != nil {
			return sql.Null, err
		}
		x, y := da.Decimal(), db.Decimal()
		switch op {
		case "+":
			return sql.NewDecimal(x.Add(y)), nil
		case "-":
			return sql.NewDecimal(x.Sub(y)), nil
		case "*":
			return sql.NewDecimal(x.Mul(y)), nil
		case "/":
			if y.IsZero() {
				return sql.Null, ErrDivisionByZero.New()
			}
			return sql.NewDecimal(x.Div(y)), nil
		case "%":
			if y.IsZero() {
				return sql.Null, ErrDivisionByZero.New()
			}
			return sql.NewDecimal(x.Mod(y)), nil
		}
	case sql.KindF64:
		x, _ := a.AsFloat64()
		y, _ := b.AsFloat64()
		switch op {
		case "+":
			return sql.NewF64(x + y), nil
		case "-":
			return sql.NewF64(x - y), nil
		case "*":
			return sql.NewF64(x * y), nil
		case "/":
			if y == 0 {
				return sql.Null, ErrDivisionByZero.New()
			}
			return sql.NewF64(x / y), nil
		case "%":
			if y == 0 {
				return sql.Null, ErrDivisionByZero.New()
			}
			return sql.NewF64(float64(int64(x) % int64(y))), nil
		}
	default:
		x, ok1 := a.AsInt64()
		y, ok2 := b.AsInt64()
		if !ok1 || !ok2 {
			return sql.Null, sql.ErrInvalidType.New(lub.Kind)
		}
		switch op {
		case "+":
			return sql.NewI64(x + y), nil
		case "-":
			return sql.NewI64(x - y), nil
		case "*":
			return sql.NewI64(x * y), nil
		case "/":
			if y == 0 {
				return sql.Null, ErrDivisionByZero.New()
			}
			return sql.NewI64(x / y), nil
		case "%":
			if y == 0 {
				return sql.Null, ErrDivisionByZero.New()
			}
			return sql.NewI64(x % y), nil
		}
	}
	return sql.Null, ErrUnsupportedOperator.New(op)
}

func compareOp(a, b sql.Value, op string) (sql.Value, error) {
	if a.IsNull() || b.IsNull() {
		return sql.Null, nil
	}
	c, err := a.Compare(b)
	if err != nil {
		return sql.Null, err
	}
	switch op {
	case "=":
		return sql.NewBool(c == 0), nil
	case "<>":
		return sql.NewBool(c != 0), nil
	case "<":
		return sql.NewBool(c < 0), nil
	case "<=":
		return sql.NewBool(c <= 0), nil
	case ">":
		return sql.NewBool(c > 0), nil
	case ">=":
		return sql.NewBool(c >= 0), nil
	default:
		return sql.Null, ErrUnsupportedOperator.New(op)
	}
}

func (e *Evaluator) evalBetween(v *ast.Between) (sql.Value, error) {
	val, err := e.Eval(v.Expr)
	if err != nil {
		return sql.Null, err
	}
	low, err := e.Eval(v.Low)
	if err != nil {
		return sql.Null, err
	}
	high, err := e.Eval(v.High)
	if err != nil {
		return sql.Null, err
	}
	if val.IsNull() || low.IsNull() || high.IsNull() {
		return sql.Null, nil
	}
	lc, err := val.Compare(low)
	if err != nil {
		return sql.Null, err
	}
	hc, err := val.Compare(high)
	if err != nil {
		return sql.Null, err
	}
	result := lc >= 0 && hc <= 0
	if v.Negated {
		result = !result
	}
	return sql.NewBool(result), nil
}

func (e *Evaluator) evalLike(v *ast.Like) (sql.Value, error) {
	val, err := e.Eval(v.Expr)
	if err != nil {
		return sql.Null, err
	}
	pat, err := e.Eval(v.Pattern)
	if err != nil {
		return sql.Null, err
	}
	if val.IsNull() || pat.IsNull() {
		return sql.Null, nil
	}
	if val.Kind() != sql.KindStr || pat.Kind() != sql.KindStr {
		return sql.Null, sql.ErrFunctionRequiresStringValue.New("LIKE")
	}
	s, p := val.Str(), pat.Str()
	if v.CaseInsensitive {
		s, p = strings.ToUpper(s), strings.ToUpper(p)
	}
	result := likeMatch(s, p)
	if v.Negated {
		result = !result
	}
	return sql.NewBool(result), nil
}

// likeMatch implements SQL LIKE semantics: % matches any run (including
// empty), _ matches exactly one rune.
func likeMatch(s, pattern string) bool {
	return likeMatchRunes([]rune(s), []rune(pattern))
}

func likeMatchRunes(s, p []rune) bool {
	if len(p) == 0 {
		return len(s) == 0
	}
	if p[0] == '%' {
		for i := 0; i <= len(s); i++ {
			if likeMatchRunes(s[i:], p[1:]) {
				return true
			}
		}
		return false
	}
	if len(s) == 0 {
		return false
	}
	if p[0] == '_' || p[0] == s[0] {
		return likeMatchRunes(s[1:], p[1:])
	}
	return false
}

func (e *Evaluator) evalInList(v *ast.InList) (sql.Value, error) {
	val, err := e.Eval(v.Expr)
	if err != nil {
		return sql.Null, err
	}
	if val.IsNull() {
		return sql.Null, nil
	}
	sawNull := false
	for _, item := range v.List {
		iv, err := e.Eval(item)
		if err != nil {
			return sql.Null, err
		}
		if iv.IsNull() {
			sawNull = true
			continue
		}
		c, err := val.Compare(iv)
		if err != nil {
			return sql.Null, err
		}
		if c == 0 {
			return sql.NewBool(!v.Negated), nil
		}
	}
	if sawNull {
		return sql.Null, nil
	}
	return sql.NewBool(v.Negated), nil
}

func (e *Evaluator) evalCase(v *ast.Case) (sql.Value, error) {
	var operand sql.Value
	hasOperand := v.Operand != nil
	if hasOperand {
		var err error
		operand, err = e.Eval(v.Operand)
		if err != nil {
			return sql.Null, err
		}
	}
	for _, wt := range v.WhenThen {
		if hasOperand {
			whenVal, err := e.Eval(wt.When)
			if err != nil {
				return sql.Null, err
			}
			if operand.IsNull() || whenVal.IsNull() {
				continue
			}
			c, err := operand.Compare(whenVal)
			if err != nil {
				return sql.Null, err
			}
			if c != 0 {
				continue
			}
			return e.Eval(wt.Then)
		}
		match, err := e.EvalBool(wt.When)
		if err != nil {
			return sql.Null, err
		}
		if match {
			return e.Eval(wt.Then)
		}
	}
	if v.ElseResult != nil {
		return e.Eval(v.ElseResult)
	}
	return sql.Null, nil
}

func extract(field string, v sql.Value) (sql.Value, error) {
	if v.IsNull() {
		return sql.Null, nil
	}
	switch v.Kind() {
	case sql.KindDate, sql.KindTimestamp:
		t := v.Date()
		if v.Kind() == sql.KindTimestamp {
			t = v.Timestamp()
		}
		switch strings.ToUpper(field) {
		case "YEAR":
			return sql.NewI64(int64(t.Year())), nil
		case "MONTH":
			return sql.NewI64(int64(t.Month())), nil
		case "DAY":
			return sql.NewI64(int64(t.Day())), nil
		case "HOUR":
			return sql.NewI64(int64(t.Hour())), nil
		case "MINUTE":
			return sql.NewI64(int64(t.Minute())), nil
		case "SECOND":
			return sql.NewI64(int64(t.Second())), nil
		}
	case sql.KindTime:
		d := v.Time()
		switch strings.ToUpper(field) {
		case "HOUR":
			return sql.NewI64(int64(d.Hours()) % 24), nil
		case "MINUTE":
			return sql.NewI64(int64(d.Minutes()) % 60), nil
		case "SECOND":
			return sql.NewI64(int64(d.Seconds()) % 60), nil
		}
	case sql.KindInterval:
		iv := v.Interval()
		switch strings.ToUpper(field) {
		case "YEAR":
			return sql.NewI64(int64(iv.Months / 12)), nil
		case "MONTH":
			return sql.NewI64(int64(iv.Months % 12)), nil
		}
	}
	return sql.Null, fmt.Errorf("expression: cannot EXTRACT %s from %s", field, v.Kind())
}

func aggregateName(k ast.AggregateKind) string {
	switch k {
	case ast.AggCount, ast.AggCountStar:
		return "COUNT"
	case ast.AggSum:
		return "SUM"
	case ast.AggAvg:
		return "AVG"
	case ast.AggMin:
		return "MIN"
	case ast.AggMax:
		return "MAX"
	case ast.AggStdev:
		return "STDEV"
	case ast.AggVariance:
		return "VARIANCE"
	default:
		return "?"
	}
}
