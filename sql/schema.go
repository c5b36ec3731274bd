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

import (
	"fmt"
	"strings"
	"time"
)

// Index describes a secondary index over one or more columns.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// Schema is spec.md §3's Schema: table name, optional ordered column
// definitions (nil ⇒ schemaless, row-shaped-map tables), index list,
// creation timestamp, optional engine tag.
type Schema struct {
	TableName string
	Columns   []Column
	Indexes   []Index
	Created   time.Time
	Engine    string
}

// Schemaless reports whether the table accepts row-shaped maps instead
// of positional, typed rows.
func (s Schema) Schemaless() bool { return s.Columns == nil }

// PrimaryKeyColumn returns the name of the declared primary-key column,
// if any.
func (s Schema) PrimaryKeyColumn() (string, bool) {
	for _, c := range s.Columns {
		if c.PrimaryKey {
			return c.Name, true
		}
	}
	return "", false
}

// ColumnIndex returns the 0-based position of name in the schema, or -1.
func (s Schema) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

// CheckRow validates a positional row against the schema's arity and
// per-column type/nullability constraints (spec.md invariant 4).
func (s Schema) CheckRow(values []Value) error {
	if len(values) != len(s.Columns) {
		return ErrColumnAndValuesNotMatched.New()
	}
	for i, c := range s.Columns {
		if err := c.CheckValue(values[i]); err != nil {
			return err
		}
	}
	return nil
}

// ToDDL emits canonical CREATE TABLE SQL for the schema, the DDL-text
// direction of spec.md §4.6's round-trip law.
func (s Schema) ToDDL() string {
	if s.Schemaless() {
		return fmt.Sprintf("CREATE TABLE %s", quoteIdent(s.TableName))
	}
	parts := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		def := fmt.Sprintf("%s %s", quoteIdent(c.Name), ddlTypeName(c.Type))
		if c.PrimaryKey {
			def += " PRIMARY KEY"
		} else if c.Unique {
			def += " UNIQUE"
		}
		if !c.Nullable {
			def += " NOT NULL"
		}
		if c.ForeignKey != nil {
			def += fmt.Sprintf(" REFERENCES %s(%s)", quoteIdent(c.ForeignKey.ReferencedTable), quoteIdent(c.ForeignKey.ReferencedColumn))
			if c.ForeignKey.OnDelete != NoAction {
				def += " ON DELETE " + c.ForeignKey.OnDelete.String()
			}
		}
		parts = append(parts, def)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(s.TableName), strings.Join(parts, ", "))
}

func ddlTypeName(t DataType) string {
	if t.Kind == KindDecimal {
		return fmt.Sprintf("DECIMAL(%d,%d)", t.Precision, t.Scale)
	}
	if t.Name != "" {
		return t.Name
	}
	return t.Kind.String()
}

func quoteIdent(name string) string {
	if strings.ContainsAny(name, " \t\"") {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
	return name
}

// FromDDL parses a CREATE TABLE statement of the shape ToDDL emits and
// reconstructs the Schema, the parsing direction of spec.md §4.6's
// round-trip law. FromDDL(s.ToDDL()) restores the table name and, for
// column names without whitespace, each column's name, type, PRIMARY
// KEY, UNIQUE (on non-key columns), NOT NULL and foreign key. Column
// DEFAULTs, indexes, Created and Engine are not written by ToDDL and come
// back empty. It is intentionally a
// narrow parser of exactly ToDDL's own output shape (identifier,
// type-name, PRIMARY KEY/UNIQUE/NOT NULL/REFERENCES/ON DELETE in that
// order); general CREATE TABLE parsing lives in translate, which targets
// ast.Statement instead of Schema directly.
func FromDDL(ddl string) (Schema, bool) {
	ddl = strings.TrimSpace(ddl)
	const prefix = "CREATE TABLE "
	if !strings.HasPrefix(strings.ToUpper(ddl), prefix) {
		return Schema{}, false
	}
	rest := strings.TrimSpace(ddl[len(prefix):])
	open := strings.Index(rest, "(")
	if open == -1 {
		return Schema{TableName: unquoteIdent(rest)}, true
	}
	name := unquoteIdent(strings.TrimSpace(rest[:open]))
	body := strings.TrimSuffix(strings.TrimSpace(rest[open+1:]), ")")
	cols := splitTopLevel(body)
	schema := Schema{TableName: name}
	for _, raw := range cols {
		col, ok := parseColumnDDL(strings.TrimSpace(raw))
		if !ok {
			return Schema{}, false
		}
		schema.Columns = append(schema.Columns, col)
	}
	return schema, true
}

func unquoteIdent(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return s
}

func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func parseColumnDDL(def string) (Column, bool) {
	fields := strings.Fields(def)
	if len(fields) < 2 {
		return Column{}, false
	}
	col := Column{Name: unquoteIdent(fields[0]), Nullable: true}
	typeTok := strings.ToUpper(fields[1])
	if strings.HasPrefix(typeTok, "DECIMAL(") {
		var p, sc int
		fmt.Sscanf(typeTok, "DECIMAL(%d,%d)", &p, &sc)
		col.Type = DecimalType(p, sc)
	} else {
		col.Type = dataTypeByName(typeTok)
	}
	rest := strings.ToUpper(strings.Join(fields[2:], " "))
	if strings.Contains(rest, "PRIMARY KEY") {
		col.PrimaryKey = true
		col.Nullable = false
	}
	if strings.Contains(rest, "UNIQUE") {
		col.Unique = true
	}
	if strings.Contains(rest, "NOT NULL") {
		col.Nullable = false
	}
	if idx := strings.Index(rest, "REFERENCES"); idx != -1 {
		var table, column string
		refPart := rest[idx+len("REFERENCES"):]
		paren := strings.Index(refPart, "(")
		close := strings.Index(refPart, ")")
		if paren != -1 && close != -1 {
			table = strings.TrimSpace(refPart[:paren])
			column = strings.TrimSpace(refPart[paren+1 : close])
		}
		action := NoAction
		if strings.Contains(rest, "ON DELETE CASCADE") {
			action = Cascade
		} else if strings.Contains(rest, "ON DELETE SET NULL") {
			action = SetNull
		} else if strings.Contains(rest, "ON DELETE SET DEFAULT") {
			action = SetDefault
		}
		col.ForeignKey = &ForeignKey{ReferencedTable: strings.ToLower(table), ReferencedColumn: strings.ToLower(column), OnDelete: action}
	}
	return col, true
}

func dataTypeByName(name string) DataType {
	switch name {
	case "BOOLEAN", "BOOL":
		return Bool
	case "I8", "TINYINT":
		return Int8
	case "I16", "SMALLINT":
		return Int16
	case "I32", "INT", "INTEGER":
		return Int32
	case "I64", "BIGINT":
		return Int64
	case "I128":
		return Int128
	case "U8":
		return Uint8
	case "U16":
		return Uint16
	case "U32":
		return Uint32
	case "U64":
		return Uint64
	case "U128":
		return Uint128
	case "F32", "FLOAT":
		return Float32T
	case "F64", "DOUBLE":
		return Float64T
	case "TEXT", "VARCHAR", "STRING":
		return Text
	case "BYTEA":
		return Bytea
	case "INET":
		return Inet
	case "DATE":
		return Date
	case "TIME":
		return Time
	case "TIMESTAMP":
		return Timestamp
	case "UUID":
		return UuidType
	case "MAP":
		return MapType
	case "LIST":
		return ListType
	case "POINT":
		return PointType
	default:
		return Text
	}
}
