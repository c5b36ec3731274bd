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

import errors "gopkg.in/src-d/go-errors.v1"

// Execute-group error kinds (spec.md §7) not already covered by sql.Err*
// or plan.Err*.
var (
	// CannotFindReferencedValue fires on INSERT/UPDATE when a non-NULL
	// foreign-key value has no matching row in the referenced table's
	// primary key column.
	CannotFindReferencedValue = errors.NewKind("cannot find referenced value %s in %s.%s")

	// ReferencingColumnExists fires on DELETE when a NO ACTION foreign
	// key in another table still points at a row being removed. UPDATE
	// of a referenced primary key is not checked.
	ReferencingColumnExists = errors.NewKind("referencing column %q still has matching rows")

	// CannotDropTableWithReferencing fires on DROP TABLE without CASCADE
	// when other tables declare a foreign key into this one.
	CannotDropTableWithReferencing = errors.NewKind("table %q is referenced by %v, drop with CASCADE")

	// UngroupedColumn fires when a GroupBy/Having projection references a
	// column that is neither a group key nor wrapped in an aggregate.
	UngroupedColumn = errors.NewKind("column %q must appear in GROUP BY or be used in an aggregate function")

	// LackOfAlias mirrors translate's LackOfAlias for a derived table
	// (subquery in FROM) with no AS alias. rowexec does not return it:
	// translate rejects such a source before execution.
	LackOfAlias = errors.NewKind("derived table requires an alias")

	// ErrDuplicateColumn fires when a CREATE TABLE column list repeats a
	// name (spec.md §4.5 DDL: "no duplicate names").
	ErrDuplicateColumn = errors.NewKind("duplicate column name %q")

	// ErrDuplicatePrimaryKey fires on INSERT into a table with a declared
	// primary key when the key already exists, either already committed
	// to storage or repeated earlier in the same statement's row list.
	ErrDuplicatePrimaryKey = errors.NewKind("duplicate primary key value %s in %q")

	// ErrNoSuchFrame names a mismatch between rowexec's row context and
	// plan.Scope chains. rowexec does not return it: rowContext.Column
	// reports such a mismatch as sql.ErrColumnNotFound.
	ErrNoSuchFrame = errors.NewKind("rowexec: no row context for scope frame %d")
)
