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

// Package translate lowers rawsql's untyped parse tree into ast.Statement
// (spec.md §4.1), rejecting unsupported forms with precise structured
// errors instead of panicking or silently guessing intent.
package translate

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/glaive-db/glaive/ast"
	"github.com/glaive-db/glaive/rawsql"
	"github.com/glaive-db/glaive/sql"
)

// reservedTables are the meta views routed to the Dictionary table
// factor (spec.md §6 "Reserved tables").
var reservedTables = map[string]bool{
	"GLUE_OBJECTS": true, "GLUE_TABLES": true,
	"GLUE_TABLE_COLUMNS": true, "GLUE_INDEXES": true,
}

// Statements lowers every statement rawsql.Parse produced.
func Statements(raw []rawsql.RawStatement) ([]ast.Statement, error) {
	out := make([]ast.Statement, 0, len(raw))
	for _, r := range raw {
		s, err := Statement(r)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Statement lowers one raw statement.
func Statement(r rawsql.RawStatement) (ast.Statement, error) {
	switch s := r.(type) {
	case *rawsql.RawQuery:
		return lowerQuery(s)
	case *rawsql.RawInsert:
		return lowerInsert(s)
	case *rawsql.RawUpdate:
		return lowerUpdate(s)
	case *rawsql.RawDelete:
		return lowerDelete(s)
	case *rawsql.RawCreateTable:
		return lowerCreateTable(s)
	case *rawsql.RawDropTable:
		return &ast.DropTable{Table: strings.ToLower(s.Table), IfExists: s.IfExists}, nil
	case *rawsql.RawAlterTable:
		return lowerAlterTable(s)
	case *rawsql.RawStartTransaction:
		return &ast.StartTransaction{}, nil
	case *rawsql.RawCommit:
		return &ast.Commit{}, nil
	case *rawsql.RawRollback:
		return &ast.Rollback{}, nil
	case *rawsql.RawShowColumns:
		return &ast.ShowColumns{Table: strings.ToLower(s.Table)}, nil
	default:
		return nil, ErrUnsupportedStatement.New(fmt.Sprintf("%T", r))
	}
}

func lowerQuery(q *rawsql.RawQuery) (*ast.Query, error) {
	body, err := lowerSetExpr(q.Body)
	if err != nil {
		return nil, err
	}
	out := &ast.Query{Body: body}
	for _, ob := range q.OrderBy {
		e, err := lowerExpr(ob.Expr)
		if err != nil {
			return nil, err
		}
		out.OrderBy = append(out.OrderBy, ast.OrderByExpr{
			Expr: e, Desc: ob.Desc, NullsFirst: ob.NullsFirst, NullsSet: ob.NullsSet,
		})
	}
	if q.Limit != nil {
		e, err := lowerExpr(q.Limit)
		if err != nil {
			return nil, err
		}
		out.Limit = e
	}
	if q.Offset != nil {
		e, err := lowerExpr(q.Offset)
		if err != nil {
			return nil, err
		}
		out.Offset = e
	}
	return out, nil
}

func lowerSetExpr(s rawsql.RawSetExpr) (ast.SetExpr, error) {
	switch v := s.(type) {
	case *rawsql.RawValues:
		rows := make([][]ast.Expr, 0, len(v.Rows))
		for _, row := range v.Rows {
			out := make([]ast.Expr, 0, len(row))
			for _, e := range row {
				le, err := lowerExpr(e)
				if err != nil {
					return nil, err
				}
				out = append(out, le)
			}
			rows = append(rows, out)
		}
		return &ast.Values{Rows: rows}, nil
	case *rawsql.RawSelect:
		return lowerSelect(v)
	default:
		return nil, ErrUnsupportedQuerySetExpr.New(fmt.Sprintf("%T", s))
	}
}

func lowerSelect(s *rawsql.RawSelect) (*ast.Select, error) {
	out := &ast.Select{}
	for _, item := range s.Projection {
		if item.Wildcard {
			out.Projection = append(out.Projection, ast.SelectItem{Wildcard: true, Qualifier: strings.ToLower(item.Qualifier)})
			continue
		}
		e, err := lowerExpr(item.Expr)
		if err != nil {
			return nil, err
		}
		alias := item.Alias
		if alias == "" {
			alias = trailingLabel(e)
		}
		out.Projection = append(out.Projection, ast.SelectItem{Expr: e, Alias: alias})
	}
	from, err := lowerFrom(s.From)
	if err != nil {
		return nil, err
	}
	out.From = from
	if s.Where != nil {
		e, err := lowerExpr(s.Where)
		if err != nil {
			return nil, err
		}
		out.Selection = e
	}
	for _, g := range s.GroupBy {
		e, err := lowerExpr(g)
		if err != nil {
			return nil, err
		}
		out.GroupBy = append(out.GroupBy, e)
	}
	if s.Having != nil {
		e, err := lowerExpr(s.Having)
		if err != nil {
			return nil, err
		}
		out.Having = e
	}
	return out, nil
}

// trailingLabel derives a projection's default label from its expression
// shape: an identifier's name, the trailing identifier of a compound
// reference, or a function call's name. Any other expression gets an
// empty label here; the original expression text is not used.
func trailingLabel(e ast.Expr) string {
	switch v := e.(type) {
	case *ast.Identifier:
		return v.Name
	case *ast.CompoundIdentifier:
		return v.Column
	case *ast.FunctionCall:
		return v.Name
	default:
		return ""
	}
}

// lowerFrom rewrites an empty FROM to FROM SERIES(1) so every query has a
// driving relation (spec.md §4.1).
func lowerFrom(f *rawsql.RawTableWithJoins) (*ast.TableWithJoins, error) {
	if f == nil {
		return &ast.TableWithJoins{Relation: &ast.TableFactorSeries{Size: &ast.Literal{Value: sql.NewI64(1)}}}, nil
	}
	rel, err := lowerTableFactor(f.Relation)
	if err != nil {
		return nil, err
	}
	out := &ast.TableWithJoins{Relation: rel}
	for _, j := range f.Joins {
		jr, err := lowerTableFactor(j.Relation)
		if err != nil {
			return nil, err
		}
		var constraint ast.Expr
		if j.Constraint != nil {
			constraint, err = lowerExpr(j.Constraint)
			if err != nil {
				return nil, err
			}
		}
		op := ast.InnerJoin
		if j.Kind == "LEFT" {
			op = ast.LeftOuterJoin
		}
		out.Joins = append(out.Joins, ast.Join{Relation: jr, Operator: op, Constraint: constraint})
	}
	return out, nil
}

func lowerTableFactor(f rawsql.RawTableFactor) (ast.TableFactor, error) {
	switch v := f.(type) {
	case *rawsql.RawTableFactorTable:
		if v.Args != nil {
			if !strings.EqualFold(v.Name, "SERIES") {
				return nil, ErrUnsupportedStatement.New("table-valued function: " + v.Name)
			}
			if len(v.Args) != 1 {
				return nil, ErrFunctionArgsLengthNotMatching.New("SERIES", 1, len(v.Args))
			}
			size, err := lowerExpr(v.Args[0])
			if err != nil {
				return nil, err
			}
			return &ast.TableFactorSeries{Size: size, Alias: v.Alias}, nil
		}
		name := strings.ToLower(v.Name)
		if reservedTables[strings.ToUpper(v.Name)] {
			return &ast.TableFactorDictionary{View: strings.ToUpper(v.Name), Alias: v.Alias}, nil
		}
		return &ast.TableFactorTable{Name: name, Alias: v.Alias}, nil
	case *rawsql.RawTableFactorDerived:
		if v.Alias == "" {
			return nil, ErrLackOfAlias.New()
		}
		q, err := lowerQuery(v.Subquery)
		if err != nil {
			return nil, err
		}
		return &ast.TableFactorDerived{Subquery: q, Alias: v.Alias}, nil
	default:
		return nil, ErrUnsupportedStatement.New(fmt.Sprintf("%T", f))
	}
}

// ---- Expressions -----------------------------------------------------

func lowerExpr(e rawsql.RawExpr) (ast.Expr, error) {
	switch v := e.(type) {
	case *rawsql.RawLiteral:
		return lowerLiteral(v)
	case *rawsql.RawTypedString:
		return lowerTypedString(v)
	case *rawsql.RawIdent:
		return &ast.Identifier{Name: strings.ToLower(v.Name)}, nil
	case *rawsql.RawCompoundIdent:
		return &ast.CompoundIdentifier{Table: strings.ToLower(v.Table), Column: strings.ToLower(v.Column)}, nil
	case *rawsql.RawBinaryOp:
		l, err := lowerExpr(v.Left)
		if err != nil {
			return nil, err
		}
		r, err := lowerExpr(v.Right)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryOp{Left: l, Op: v.Op, Right: r}, nil
	case *rawsql.RawUnaryOp:
		inner, err := lowerExpr(v.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: v.Op, Expr: inner}, nil
	case *rawsql.RawBetween:
		expr, err := lowerExpr(v.Expr)
		if err != nil {
			return nil, err
		}
		low, err := lowerExpr(v.Low)
		if err != nil {
			return nil, err
		}
		high, err := lowerExpr(v.High)
		if err != nil {
			return nil, err
		}
		return &ast.Between{Expr: expr, Negated: v.Negated, Low: low, High: high}, nil
	case *rawsql.RawLike:
		expr, err := lowerExpr(v.Expr)
		if err != nil {
			return nil, err
		}
		pat, err := lowerExpr(v.Pattern)
		if err != nil {
			return nil, err
		}
		return &ast.Like{Expr: expr, Negated: v.Negated, Pattern: pat, CaseInsensitive: v.CaseInsensitive}, nil
	case *rawsql.RawInList:
		expr, err := lowerExpr(v.Expr)
		if err != nil {
			return nil, err
		}
		list := make([]ast.Expr, 0, len(v.List))
		for _, item := range v.List {
			le, err := lowerExpr(item)
			if err != nil {
				return nil, err
			}
			list = append(list, le)
		}
		return &ast.InList{Expr: expr, List: list, Negated: v.Negated}, nil
	case *rawsql.RawInSubquery:
		expr, err := lowerExpr(v.Expr)
		if err != nil {
			return nil, err
		}
		q, err := lowerQuery(v.Subquery)
		if err != nil {
			return nil, err
		}
		return &ast.InSubquery{Expr: expr, Subquery: q, Negated: v.Negated}, nil
	case *rawsql.RawSubqueryScalar:
		q, err := lowerQuery(v.Subquery)
		if err != nil {
			return nil, err
		}
		return &ast.SubqueryScalar{Subquery: q}, nil
	case *rawsql.RawExists:
		q, err := lowerQuery(v.Subquery)
		if err != nil {
			return nil, err
		}
		return &ast.Exists{Subquery: q, Negated: v.Negated}, nil
	case *rawsql.RawCase:
		return lowerCase(v)
	case *rawsql.RawCast:
		return lowerCast(v)
	case *rawsql.RawExtract:
		inner, err := lowerExpr(v.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.Extract{Field: v.Field, Expr: inner}, nil
	case *rawsql.RawNested:
		inner, err := lowerExpr(v.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.Nested{Expr: inner}, nil
	case *rawsql.RawFunctionCall:
		return lowerFunctionCall(v)
	case *rawsql.RawArray:
		items := make([]ast.Expr, 0, len(v.Items))
		for _, item := range v.Items {
			le, err := lowerExpr(item)
			if err != nil {
				return nil, err
			}
			items = append(items, le)
		}
		return &ast.Array{Items: items}, nil
	default:
		return nil, ErrUnsupportedExpression.New(fmt.Sprintf("%T", e))
	}
}

func lowerLiteral(v *rawsql.RawLiteral) (ast.Expr, error) {
	switch v.Kind {
	case "NULL":
		return &ast.Literal{Value: sql.Null}, nil
	case "BOOL":
		return &ast.Literal{Value: sql.NewBool(v.Text == "TRUE")}, nil
	case "STRING":
		return &ast.Literal{Value: sql.NewStr(v.Text)}, nil
	case "PARAM":
		return nil, ErrUnsupportedExpression.New("parameter placeholders")
	case "NUMBER":
		return lowerNumber(v.Text)
	default:
		return nil, ErrUnsupportedExpression.New("literal kind " + v.Kind)
	}
}

// lowerNumber picks the narrowest exact representation: an integer
// literal stays I64, a fractional/exponent literal becomes Decimal (not
// F64) so that VALUES columns seeded from numeric literals default to
// exact arithmetic (DESIGN.md Open Question 1).
func lowerNumber(text string) (ast.Expr, error) {
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return &ast.Literal{Value: sql.NewI64(n)}, nil
	}
	d, err := sqlDecimalFromString(text)
	if err != nil {
		return nil, ErrInvalidNumericLiteral.New(text)
	}
	return &ast.Literal{Value: d}, nil
}

func lowerTypedString(v *rawsql.RawTypedString) (ast.Expr, error) {
	switch v.TypeName {
	case "HEX":
		b, err := hexDecode(v.Text)
		if err != nil {
			return nil, ErrInvalidHexLiteral.New(v.Text)
		}
		return &ast.Literal{Value: sql.NewBytea(b)}, nil
	case "DATE":
		t, err := time.Parse("2006-01-02", v.Text)
		if err != nil {
			return nil, ErrInvalidDateLiteral.New(v.Text)
		}
		return &ast.Literal{Value: sql.NewDate(t)}, nil
	case "TIME":
		d, err := parseTimeOfDay(v.Text)
		if err != nil {
			return nil, ErrInvalidDateLiteral.New(v.Text)
		}
		return &ast.Literal{Value: sql.NewTime(d)}, nil
	case "TIMESTAMP":
		t, err := parseTimestamp(v.Text)
		if err != nil {
			return nil, ErrInvalidTimestampLiteral.New(v.Text)
		}
		return &ast.Literal{Value: sql.NewTimestamp(t)}, nil
	case "UUID":
		u, err := parseUUID(v.Text)
		if err != nil {
			return nil, ErrInvalidUUIDLiteral.New(v.Text)
		}
		return &ast.Literal{Value: u}, nil
	case "INTERVAL":
		if !validIntervalUnit(v.Unit) {
			return nil, ErrInvalidIntervalUnit.New(v.Unit)
		}
		return &ast.IntervalLit{Value: v.Text, Unit: v.Unit}, nil
	default:
		return nil, ErrUnsupportedExpression.New("typed string " + v.TypeName)
	}
}

// validIntervalUnit checks membership in spec.md §6's closed unit set.
func validIntervalUnit(unit string) bool {
	switch unit {
	case "YEAR", "MONTH", "DAY", "HOUR", "MINUTE", "SECOND",
		"YEAR TO MONTH", "DAY TO HOUR", "DAY TO MINUTE", "DAY TO SECOND",
		"HOUR TO MINUTE", "HOUR TO SECOND", "MINUTE TO SECOND":
		return true
	}
	return false
}

func lowerCase(v *rawsql.RawCase) (ast.Expr, error) {
	out := &ast.Case{}
	if v.Operand != nil {
		e, err := lowerExpr(v.Operand)
		if err != nil {
			return nil, err
		}
		out.Operand = e
	}
	for _, wt := range v.WhenThen {
		when, err := lowerExpr(wt.When)
		if err != nil {
			return nil, err
		}
		then, err := lowerExpr(wt.Then)
		if err != nil {
			return nil, err
		}
		out.WhenThen = append(out.WhenThen, ast.CaseWhen{When: when, Then: then})
	}
	if v.Else != nil {
		e, err := lowerExpr(v.Else)
		if err != nil {
			return nil, err
		}
		out.ElseResult = e
	}
	return out, nil
}

func lowerCast(v *rawsql.RawCast) (ast.Expr, error) {
	inner, err := lowerExpr(v.Expr)
	if err != nil {
		return nil, err
	}
	if strings.ToUpper(v.TypeName) == "INTERVAL" {
		unit := strings.ToUpper(v.IntervalUnit)
		if !validIntervalUnit(unit) {
			return nil, ErrInvalidIntervalUnit.New(unit)
		}
		return &ast.Cast{Expr: inner, DataType: sql.IntervalType("INTERVAL " + unit)}, nil
	}
	dt, err := dataTypeByName(v.TypeName, v.Precision, v.Scale, v.HasPrecision)
	if err != nil {
		return nil, err
	}
	return &ast.Cast{Expr: inner, DataType: dt}, nil
}

func dataTypeByName(name string, precision, scale int, hasPrecision bool) (sql.DataType, error) {
	switch strings.ToUpper(name) {
	case "BOOLEAN", "BOOL":
		return sql.Bool, nil
	case "TINYINT", "I8":
		return sql.Int8, nil
	case "SMALLINT", "I16":
		return sql.Int16, nil
	case "INT", "INTEGER", "I32":
		return sql.Int32, nil
	case "BIGINT", "I64":
		return sql.Int64, nil
	case "FLOAT", "F32":
		return sql.Float32T, nil
	case "DOUBLE", "F64":
		return sql.Float64T, nil
	case "DECIMAL", "NUMERIC":
		if hasPrecision {
			return sql.DecimalType(precision, scale), nil
		}
		return sql.DecimalType(38, 9), nil
	case "TEXT", "VARCHAR", "STRING":
		return sql.Text, nil
	case "BYTEA":
		return sql.Bytea, nil
	case "DATE":
		return sql.Date, nil
	case "TIME":
		return sql.Time, nil
	case "TIMESTAMP":
		return sql.Timestamp, nil
	case "UUID":
		return sql.UuidType, nil
	default:
		return sql.DataType{}, ErrUnknownDataType.New(name)
	}
}

func lowerFunctionCall(v *rawsql.RawFunctionCall) (ast.Expr, error) {
	if isAggregateName(v.Name) {
		return lowerAggregate(v)
	}
	a, known := lookupFunction(v.Name)
	if !known {
		return nil, ErrUnknownFunction.New(v.Name)
	}
	if err := checkArity(v.Name, a, len(v.Args)); err != nil {
		return nil, err
	}
	args := make([]ast.Expr, 0, len(v.Args))
	for _, arg := range v.Args {
		le, err := lowerExpr(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, le)
	}
	return &ast.FunctionCall{Name: strings.ToUpper(v.Name), Args: args}, nil
}

func lowerAggregate(v *rawsql.RawFunctionCall) (ast.Expr, error) {
	name := strings.ToUpper(v.Name)
	if v.Star {
		if name != "COUNT" {
			return nil, ErrUnsupportedExpression.New(name + "(*)")
		}
		return &ast.AggregateCall{Kind: ast.AggCountStar}, nil
	}
	if len(v.Args) != 1 {
		return nil, ErrFunctionArgsLengthNotMatching.New(name, 1, len(v.Args))
	}
	arg, err := lowerExpr(v.Args[0])
	if err != nil {
		return nil, err
	}
	kinds := map[string]ast.AggregateKind{
		"COUNT": ast.AggCount, "SUM": ast.AggSum, "AVG": ast.AggAvg,
		"MIN": ast.AggMin, "MAX": ast.AggMax, "STDEV": ast.AggStdev,
		"VARIANCE": ast.AggVariance,
	}
	return &ast.AggregateCall{Kind: kinds[name], Arg: arg}, nil
}
