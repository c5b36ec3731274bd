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

package expression

import (
	"github.com/glaive-db/glaive/ast"
	"github.com/glaive-db/glaive/sql"
)

// ColumnDefault adapts a DEFAULT clause's ast.Expr to sql.DefaultExpr,
// superseding translate's constDefault: any expression with no column
// reference is a legal default (e.g. DEFAULT NOW(), DEFAULT 1 + 1), not
// just a bare literal. rowexec's CREATE TABLE handling wraps every
// translated column's Default in this before storing the schema.
type ColumnDefault struct {
	Column string
	Expr   ast.Expr
}

func (c *ColumnDefault) EvalDefault() (sql.Value, error) {
	ev := New(ConstResolver{})
	v, err := ev.Eval(c.Expr)
	if err != nil {
		return sql.Null, ErrNonConstantDefault.New(c.Column)
	}
	return v, nil
}
