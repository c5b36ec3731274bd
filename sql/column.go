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

package sql

// ForeignKeyAction is the action taken on the child row when the parent
// row it references is deleted. Per DESIGN.md Open Question 2, only
// NoAction and Cascade are executed; SetNull/SetDefault parse but are
// rejected at plan time with FeatureNotSupported.
type ForeignKeyAction int

const (
	NoAction ForeignKeyAction = iota
	Cascade
	SetNull
	SetDefault
)

func (a ForeignKeyAction) String() string {
	switch a {
	case Cascade:
		return "CASCADE"
	case SetNull:
		return "SET NULL"
	case SetDefault:
		return "SET DEFAULT"
	default:
		return "NO ACTION"
	}
}

// ForeignKey ties (this column) to (other table, other column), per
// spec.md §3 ColumnDef.
type ForeignKey struct {
	ReferencedTable  string
	ReferencedColumn string
	OnDelete         ForeignKeyAction
}

// Column is spec.md's ColumnDef: name, declared type, nullability,
// optional default expression (stored as a pre-parsed constant-evaluable
// AST handle by callers in translate/plan; here it is an opaque
// evaluator closure so the sql package does not depend on expression),
// optional uniqueness marker, optional comment, optional foreign key.
type Column struct {
	Name       string
	Type       DataType
	Nullable   bool
	Default    DefaultExpr
	Unique     bool
	PrimaryKey bool
	Comment    string
	ForeignKey *ForeignKey
}

// DefaultExpr evaluates a column's default value. It is implemented by
// the expression package's stateless evaluator wrapper so that sql has
// no dependency on expression (expression depends on sql, not the other
// way around).
type DefaultExpr interface {
	EvalDefault() (Value, error)
}

// CheckValue validates v against the column's nullability and type,
// implementing spec.md invariant 4: "column.nullable || value ≠ Null"
// and "type(value) ⊑ column.data_type".
func (c Column) CheckValue(v Value) error {
	if v.IsNull() {
		if !c.Nullable {
			return ErrNullValueOnNotNullColumn.New(c.Name)
		}
		return nil
	}
	if v.Kind() != c.Type.Kind {
		return ErrInvalidType.New(c.Name)
	}
	return nil
}
