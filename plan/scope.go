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

// Package plan attaches per-scope context to subqueries and validates
// DDL foreign-key targets (spec.md §4.3). It sits between translate and
// rowexec: translate produces an ast.Statement with no notion of scope;
// plan decorates it with the Scope chain rowexec's correlated-subquery
// resolution needs, and rejects schema-level errors translate cannot
// see (unknown tables, bad FK targets). Unknown and ambiguous column
// references are reported later, when rowexec resolves them.
package plan

import "strings"

// Frame names one relation visible at a scope: its alias-or-name, its
// visible columns (in order), and its optional primary-key column.
type Frame struct {
	Name       string
	Columns    []string
	PrimaryKey string
	HasPK      bool
}

// ColumnIndex returns the 0-based index of name within the frame, or -1.
func (f Frame) ColumnIndex(name string) int {
	for i, c := range f.Columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

// Scope is a linked list of Frames, innermost first, immutable and
// pointer-shared between sibling subqueries the way gluesql's
// Rc<Context> is: capturing the outer scope when descending into a
// correlated subquery never copies the outer frames, only extends the
// chain by one link.
type Scope struct {
	Frames []Frame
	Outer  *Scope
}

// Resolve looks up table.column (table may be empty for a bare
// identifier) across this scope and its outer chain, innermost first,
// returning the owning frame index within Frames, the column index
// within that frame, and whether the lookup originated from an outer
// (correlated) scope.
func (s *Scope) Resolve(table, column string) (frameIdx, colIdx int, outer bool, err error) {
	cur := s
	depth := 0
	for cur != nil {
		if table != "" {
			for fi, f := range cur.Frames {
				if !strings.EqualFold(f.Name, table) {
					continue
				}
				ci := f.ColumnIndex(column)
				if ci == -1 {
					return 0, 0, false, ErrColumnNotFound.New(column)
				}
				return fi, ci, depth > 0, nil
			}
		} else {
			matchFrame, matchCol := -1, -1
			count := 0
			for fi, f := range cur.Frames {
				if ci := f.ColumnIndex(column); ci != -1 {
					matchFrame, matchCol = fi, ci
					count++
				}
			}
			if count > 1 {
				return 0, 0, false, ErrAmbiguousColumn.New(column)
			}
			if count == 1 {
				return matchFrame, matchCol, depth > 0, nil
			}
		}
		cur = cur.Outer
		depth++
	}
	return 0, 0, false, ErrColumnNotFound.New(column)
}

// Push returns a new Scope with frames prepended, sharing the same
// Outer chain (never mutating s).
func (s *Scope) Push(frames ...Frame) *Scope {
	return &Scope{Frames: frames, Outer: s}
}
