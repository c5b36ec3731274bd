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

// Package glaive is the public surface of spec.md §6: New, Execute,
// ExecuteAsync, Plan, ExecuteStmt over a caller-supplied storage.Store.
// Everything upstream of this file (rawsql → translate → plan →
// rowexec) is wired together here into one engine handle, mirroring
// dolthub-go-mysql-server/engine.go's own Engine struct and
// beginTransaction/commitTransaction/rollback bracketing around each
// statement.
package glaive

import (
	stdcontext "context"

	"github.com/BurntSushi/toml"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/glaive-db/glaive/ast"
	"github.com/glaive-db/glaive/plan"
	"github.com/glaive-db/glaive/rawsql"
	"github.com/glaive-db/glaive/rowexec"
	"github.com/glaive-db/glaive/sql"
	"github.com/glaive-db/glaive/storage"
	"github.com/glaive-db/glaive/translate"
)

// Config is the engine's optional TOML-loaded configuration, mirroring
// the teacher pack's own BurntSushi/toml-based config loaders.
type Config struct {
	// LogLevel is one of logrus's level names ("debug", "info", "warn",
	// "error"); empty defaults to "info".
	LogLevel string `toml:"log_level"`
}

// LoadConfig reads a Config from a TOML file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, errors.Wrap(err, "unable to load glaive config")
	}
	return &cfg, nil
}

func (c *Config) logger() *logrus.Entry {
	lvl := logrus.InfoLevel
	if c != nil && c.LogLevel != "" {
		if parsed, err := logrus.ParseLevel(c.LogLevel); err == nil {
			lvl = parsed
		}
	}
	l := logrus.New()
	l.SetLevel(lvl)
	return logrus.NewEntry(l)
}

// Engine is one handle over one storage.Store (spec.md §5: "One engine
// handle services one statement at a time; callers needing parallelism
// instantiate independent handles, each owning its own storage
// reference").
type Engine struct {
	store storage.Store
	log   *logrus.Entry
}

// New wires a fresh Engine over storage with default (info-level)
// logging.
func New(store storage.Store) *Engine {
	return NewWithConfig(store, nil)
}

// NewWithConfig wires a fresh Engine over storage using cfg's logging
// configuration (nil behaves like New).
func NewWithConfig(store storage.Store, cfg *Config) *Engine {
	return &Engine{store: store, log: cfg.logger()}
}

// Result pairs one statement's Payload with its error, the unit
// ExecuteAsync streams back one per semicolon-separated statement.
type Result struct {
	Payload *storage.Payload
	Err     error
}

// Plan lowers sqlText into the core AST without executing it,
// spec.md §6's "plan(sql) → [Statement]". Each returned Statement is
// independently consumable by ExecuteStmt.
func (e *Engine) Plan(sqlText string) ([]ast.Statement, error) {
	raw, err := rawsql.Parse(sqlText)
	if err != nil {
		return nil, err
	}
	return translate.Statements(raw)
}

// Execute runs every semicolon-separated statement in sqlText in turn,
// returning one Payload per statement that completed before the first
// error (spec.md §7: "multi-statement batches fail fast at the first
// error and do not execute subsequent statements").
func (e *Engine) Execute(ctx *sql.Context, sqlText string) ([]*storage.Payload, error) {
	stmts, err := e.Plan(sqlText)
	if err != nil {
		return nil, err
	}
	payloads := make([]*storage.Payload, 0, len(stmts))
	for _, stmt := range stmts {
		p, err := e.ExecuteStmt(ctx, stmt)
		if err != nil {
			return payloads, err
		}
		payloads = append(payloads, p)
	}
	return payloads, nil
}

// ExecuteAsync is Execute's suspendable form (spec.md §5): it streams
// one Result per statement over the returned channel, checking ctx for
// cancellation between statements and, when ctx is canceled, rolling
// back any explicitly started transaction left in flight before sending
// a final Canceled result. The channel is unbuffered: a caller that stops
// receiving without canceling ctx leaves the goroutine blocked, and no
// rollback happens.
func (e *Engine) ExecuteAsync(ctx *sql.Context, sqlText string) (<-chan Result, error) {
	stmts, err := e.Plan(sqlText)
	if err != nil {
		return nil, err
	}
	out := make(chan Result)
	go func() {
		defer close(out)
		for _, stmt := range stmts {
			if ctx.Canceled() {
				e.rollbackInFlight(ctx)
				out <- Result{Err: stdcontext.Canceled}
				return
			}
			p, err := e.ExecuteStmt(ctx, stmt)
			out <- Result{Payload: p, Err: err}
			if err != nil {
				return
			}
		}
	}()
	return out, nil
}

// ExecuteStmt plans and runs a single Statement — the same one a
// builder's Build() or Plan's translate step produces — brokering the
// autocommit transaction bracket described in spec.md §4.5's statement
// lifecycle: if the backend supports storage.Transaction and the caller
// has not started an explicit transaction (ctx.GetIgnoreAutoCommit()),
// every statement runs inside its own begin/commit (or begin/rollback on
// error).
func (e *Engine) ExecuteStmt(ctx *sql.Context, stmt ast.Statement) (*storage.Payload, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "glaive.execute")
	defer span.Finish()

	lookup := &schemaLookup{store: e.store}
	planned, err := plan.Plan(lookup, stmt)
	if err != nil {
		return nil, err
	}
	if lookup.err != nil {
		return nil, errors.Wrap(lookup.err, "unable to fetch schema during planning")
	}

	tx, hasTx := e.store.(storage.Transaction)
	autocommit := hasTx && !ctx.GetIgnoreAutoCommit() && !isTxControlStatement(stmt)
	if autocommit {
		if err := tx.Begin(true); err != nil {
			return nil, errors.Wrap(err, "unable to begin autocommit transaction")
		}
	}

	payload, err := rowexec.Execute(ctx, e.store, planned)

	if autocommit {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				e.log.WithError(rbErr).Error("unable to roll back failed autocommit transaction")
			}
			return nil, err
		}
		if cErr := tx.Commit(); cErr != nil {
			return nil, errors.Wrap(cErr, "unable to commit autocommit transaction")
		}
		return payload, nil
	}
	return payload, err
}

func isTxControlStatement(stmt ast.Statement) bool {
	switch stmt.(type) {
	case *ast.StartTransaction, *ast.Commit, *ast.Rollback:
		return true
	default:
		return false
	}
}

// rollbackInFlight implements spec.md §5's cancellation guarantee for an
// ExecuteAsync whose ctx was canceled: any transaction the caller started
// explicitly (ignoreAutocommit) and never committed is rolled back
// before the channel closes.
func (e *Engine) rollbackInFlight(ctx *sql.Context) {
	tx, ok := e.store.(storage.Transaction)
	if !ok || !ctx.GetIgnoreAutoCommit() {
		return
	}
	if err := tx.Rollback(); err != nil {
		e.log.WithError(err).Error("unable to roll back in-flight transaction on cancellation")
	}
	ctx.SetIgnoreAutoCommit(false)
}

// schemaLookup adapts storage.Store to plan.SchemaLookup, which (unlike
// the storage surface) reports existence only: a storage error during
// lookup is captured on err and surfaced by ExecuteStmt after Plan
// returns, since plan.SchemaLookup's signature has no error return of
// its own (spec.md §4.3 planning never suspends on a failed fetch, it
// either finds the schema or doesn't).
type schemaLookup struct {
	store storage.Store
	err   error
}

func (l *schemaLookup) FetchSchema(name string) (sql.Schema, bool) {
	s, ok, err := l.store.FetchSchema(name)
	if err != nil && l.err == nil {
		l.err = err
	}
	return s, ok
}
