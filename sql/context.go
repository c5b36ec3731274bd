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
	stdcontext "context"

	"github.com/sirupsen/logrus"
)

// Transaction is the minimal handle the engine brackets statements with
// (spec.md §1: "the core only brackets statements with begin/commit/
// rollback calls"). Concrete meaning is entirely up to the storage
// backend; glaive never inspects it beyond nil-ness.
type Transaction interface {
	String() string
}

// Context threads a context.Context (for cancellation, per spec.md §5
// "Cancellation"), a logger, and the active transaction through every
// stage of one statement's execution. It mirrors the teacher's
// sql.Context (engine.go's ctx.GetLogger()/ctx.SetTransaction pattern).
type Context struct {
	stdcontext.Context
	log *logrus.Entry
	tx  Transaction

	// ignoreAutocommit mirrors engine.go's GetIgnoreAutoCommit: true
	// once the caller has started an explicit transaction, so the
	// engine does not clear it out from under them after a statement.
	ignoreAutocommit bool
}

// NewContext wraps a context.Context with a logger. Passing nil uses
// context.Background().
func NewContext(ctx stdcontext.Context, log *logrus.Entry) *Context {
	if ctx == nil {
		ctx = stdcontext.Background()
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Context{Context: ctx, log: log}
}

// NewEmptyContext returns a Context suitable for tests and stateless
// evaluation paths, matching the teacher's sql.NewEmptyContext().
func NewEmptyContext() *Context {
	return NewContext(stdcontext.Background(), nil)
}

func (c *Context) GetLogger() *logrus.Entry { return c.log }

func (c *Context) WithLogger(log *logrus.Entry) *Context {
	cp := *c
	cp.log = log
	return &cp
}

func (c *Context) GetTransaction() Transaction { return c.tx }
func (c *Context) SetTransaction(tx Transaction) { c.tx = tx }

func (c *Context) GetIgnoreAutoCommit() bool      { return c.ignoreAutocommit }
func (c *Context) SetIgnoreAutoCommit(ignore bool) { c.ignoreAutocommit = ignore }

// Canceled reports whether the underlying context.Context has been
// canceled, the suspension-point check spec.md §5 requires at every
// storage-trait boundary.
func (c *Context) Canceled() bool {
	select {
	case <-c.Done():
		return true
	default:
		return false
	}
}
