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

// Package ast holds the internal typed SQL representation described in
// spec.md §3. translate lowers a raw parse tree into this AST; astbuilder
// constructs the same AST programmatically. plan and rowexec consume it
// but never mutate a shared node: each node has a single owner, per the
// design note in spec.md §9 ("avoid shared references").
package ast

import "github.com/glaive-db/glaive/sql"

// Statement is the top-level sum type: DDL, DML, query, transaction
// control, or meta.
type Statement interface {
	isStatement()
}

// ---- Query bodies ----------------------------------------------------

// Query is a SELECT/VALUES body plus ORDER BY/LIMIT/OFFSET, spec.md §3.
type Query struct {
	Body    SetExpr
	OrderBy []OrderByExpr
	Limit   Expr
	Offset  Expr
}

func (*Query) isStatement() {}

// SetExpr is Select | Values.
type SetExpr interface {
	isSetExpr()
}

type Values struct {
	Rows [][]Expr
}

func (*Values) isSetExpr() {}

type Select struct {
	Projection []SelectItem
	From       *TableWithJoins
	Selection  Expr // WHERE, nil if absent
	GroupBy    []Expr
	Having     Expr // nil if absent
}

func (*Select) isSetExpr() {}

// SelectItem is one projected expression, with an optional alias
// (spec.md §4.5 Project: "Column labels derive from the AS alias, else
// the trailing identifier ...").
type SelectItem struct {
	Expr     Expr
	Alias    string
	Wildcard bool   // true for "*" or "t.*"
	Qualifier string // table qualifier for "t.*"; empty for bare "*"
}

type TableWithJoins struct {
	Relation TableFactor
	Joins    []Join
}

// TableFactor is Table | Derived | Series | Dictionary (spec.md §3).
type TableFactor interface {
	isTableFactor()
}

type TableFactorTable struct {
	Name  string
	Alias string
}

func (*TableFactorTable) isTableFactor() {}

type TableFactorDerived struct {
	Subquery *Query
	Alias    string // required; LackOfAlias if absent, enforced in translate
}

func (*TableFactorDerived) isTableFactor() {}

type TableFactorSeries struct {
	Size Expr
	Alias string
}

func (*TableFactorSeries) isTableFactor() {}

type TableFactorDictionary struct {
	View  string
	Alias string
}

func (*TableFactorDictionary) isTableFactor() {}

// JoinOperator names the join kind.
type JoinOperator int

const (
	InnerJoin JoinOperator = iota
	LeftOuterJoin
)

// JoinExecutor is the executor hint spec.md §3 names: NestedLoop is
// always correct; Hash is chosen by rowexec when the predicate shape
// allows it (spec.md §4.5 "Hash-join detection").
type JoinExecutor int

const (
	AutoJoinExecutor JoinExecutor = iota
	NestedLoopJoinExecutor
	HashJoinExecutor
)

type Join struct {
	Relation TableFactor
	Operator JoinOperator
	Executor JoinExecutor
	Constraint Expr // ON predicate; nil for CROSS JOIN
}

type OrderByExpr struct {
	Expr       Expr
	Desc       bool
	NullsFirst bool
	NullsSet   bool // true if NULLS FIRST/LAST was explicit
}

// ---- Expressions -------------------------------------------------------

// Expr is the recursive expression sum type (spec.md §3). Each node
// holds owned pointers to its children (spec.md §9 "Recursive AST with
// boxing").
type Expr interface {
	isExpr()
}

type Literal struct{ Value sql.Value }

func (*Literal) isExpr() {}

// TypedString is a `TYPE 'literal'` form (DATE '...', TIMESTAMP '...',
// INTERVAL '...' unit, UUID '...', X'...').
type TypedString struct {
	DataType sql.DataType
	Value    string
	IntervalUnit string // e.g. "DAY TO SECOND"; empty unless DataType.Kind == KindInterval
}

func (*TypedString) isExpr() {}

type Identifier struct{ Name string }

func (*Identifier) isExpr() {}

type CompoundIdentifier struct {
	Table  string
	Column string
}

func (*CompoundIdentifier) isExpr() {}

type BinaryOp struct {
	Left  Expr
	Op    string
	Right Expr
}

func (*BinaryOp) isExpr() {}

type UnaryOp struct {
	Op   string
	Expr Expr
}

func (*UnaryOp) isExpr() {}

type Between struct {
	Expr    Expr
	Negated bool
	Low     Expr
	High    Expr
}

func (*Between) isExpr() {}

type Like struct {
	Expr    Expr
	Negated bool
	Pattern Expr
	CaseInsensitive bool // ILIKE
}

func (*Like) isExpr() {}

type InList struct {
	Expr    Expr
	List    []Expr
	Negated bool
}

func (*InList) isExpr() {}

type InSubquery struct {
	Expr     Expr
	Subquery *Query
	Negated  bool
}

func (*InSubquery) isExpr() {}

// SubqueryScalar is a scalar subquery used as an expression.
type SubqueryScalar struct{ Subquery *Query }

func (*SubqueryScalar) isExpr() {}

type Exists struct {
	Subquery *Query
	Negated  bool
}

func (*Exists) isExpr() {}

type CaseWhen struct {
	When Expr
	Then Expr
}

type Case struct {
	Operand    Expr // nil for searched CASE
	WhenThen   []CaseWhen
	ElseResult Expr // nil if absent
}

func (*Case) isExpr() {}

type Cast struct {
	Expr     Expr
	DataType sql.DataType
}

func (*Cast) isExpr() {}

type Extract struct {
	Field string
	Expr  Expr
}

func (*Extract) isExpr() {}

type Nested struct{ Expr Expr }

func (*Nested) isExpr() {}

type FunctionCall struct {
	Name string
	Args []Expr
}

func (*FunctionCall) isExpr() {}

// AggregateKind enumerates the aggregate functions (spec.md §4.4).
type AggregateKind int

const (
	AggCount AggregateKind = iota
	AggCountStar
	AggSum
	AggAvg
	AggMin
	AggMax
	AggStdev
	AggVariance
)

type AggregateCall struct {
	Kind AggregateKind
	Arg  Expr // nil for COUNT(*)
}

func (*AggregateCall) isExpr() {}

type Array struct{ Items []Expr }

func (*Array) isExpr() {}

// IntervalLit is a literal INTERVAL '<value>' <unit> expression prior to
// evaluation (kept distinct from TypedString so the evaluator can defer
// type pinning, spec.md §4.4 "Evaluated").
type IntervalLit struct {
	Value string
	Unit  string
}

func (*IntervalLit) isExpr() {}

// ---- DML / DDL / transaction-control / meta statements -----------------

type Insert struct {
	Table   string
	Columns []string
	Source  *Query // either a Values body or a SELECT to insert from
}

func (*Insert) isStatement() {}

type Assignment struct {
	Column string
	Value  Expr
}

type Update struct {
	Table      string
	Alias      string
	Assignments []Assignment
	Selection  Expr
}

func (*Update) isStatement() {}

type Delete struct {
	Table     string
	Alias     string
	Selection Expr
}

func (*Delete) isStatement() {}

type CreateTable struct {
	Table       string
	Columns     []sql.Column
	IfNotExists bool
	AsSelect    *Query // non-nil for CREATE TABLE ... AS SELECT
	Engine      string
}

func (*CreateTable) isStatement() {}

type DropTable struct {
	Table    string
	IfExists bool
	Cascade  bool
}

func (*DropTable) isStatement() {}

// AlterTableAction is the sum of supported ALTER TABLE operations
// (spec.md §4.5 + SPEC_FULL.md's RENAME COLUMN supplement).
type AlterTableAction interface{ isAlterAction() }

type RenameTable struct{ NewName string }

func (*RenameTable) isAlterAction() {}

type AddColumn struct{ Column sql.Column }

func (*AddColumn) isAlterAction() {}

type DropColumn struct{ Name string }

func (*DropColumn) isAlterAction() {}

type RenameColumn struct{ OldName, NewName string }

func (*RenameColumn) isAlterAction() {}

type AlterTable struct {
	Table  string
	Action AlterTableAction
}

func (*AlterTable) isStatement() {}

type StartTransaction struct{}

func (*StartTransaction) isStatement() {}

type Commit struct{}

func (*Commit) isStatement() {}

type Rollback struct{}

func (*Rollback) isStatement() {}

// ShowColumns is a meta statement surfacing a table's schema.
type ShowColumns struct{ Table string }

func (*ShowColumns) isStatement() {}
