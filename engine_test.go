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

package glaive

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glaive-db/glaive/sql"
	"github.com/glaive-db/glaive/storage"
	"github.com/glaive-db/glaive/storage/memory"
)

func newTestEngine() (*Engine, *sql.Context) {
	return New(memory.New()), sql.NewEmptyContext()
}

// TestBasicCRUD exercises create/insert/select/update/delete end to end,
// one engine handle over one memory.Storage.
func TestBasicCRUD(t *testing.T) {
	e, ctx := newTestEngine()

	_, err := e.Execute(ctx, "CREATE TABLE t (id INT PRIMARY KEY, name TEXT NOT NULL)")
	require.NoError(t, err)

	payloads, err := e.Execute(ctx, "INSERT INTO t (id, name) VALUES (1, 'ann'), (2, 'bob')")
	require.NoError(t, err)
	require.Equal(t, storage.PayloadInsert, payloads[0].Kind)
	require.Equal(t, 2, payloads[0].RowCount)

	payloads, err = e.Execute(ctx, "SELECT id, name FROM t ORDER BY id")
	require.NoError(t, err)
	require.Equal(t, storage.PayloadSelect, payloads[0].Kind)
	require.Len(t, payloads[0].Rows, 2)
	require.Equal(t, "ann", payloads[0].Rows[0].Get(1).Str())
	require.Equal(t, "bob", payloads[0].Rows[1].Get(1).Str())

	payloads, err = e.Execute(ctx, "UPDATE t SET name = 'annie' WHERE id = 1")
	require.NoError(t, err)
	require.Equal(t, 1, payloads[0].RowCount)

	payloads, err = e.Execute(ctx, "SELECT name FROM t WHERE id = 1")
	require.NoError(t, err)
	require.Equal(t, "annie", payloads[0].Rows[0].Get(0).Str())

	payloads, err = e.Execute(ctx, "DELETE FROM t WHERE id = 2")
	require.NoError(t, err)
	require.Equal(t, 1, payloads[0].RowCount)

	payloads, err = e.Execute(ctx, "SELECT id FROM t")
	require.NoError(t, err)
	require.Len(t, payloads[0].Rows, 1)
}

// TestForeignKeyEnforcement checks that an orphaned child insert is
// rejected and that a referenced parent row cannot be dropped out from
// under a NO ACTION child, but can be removed via CASCADE.
func TestForeignKeyEnforcement(t *testing.T) {
	e, ctx := newTestEngine()

	_, err := e.Execute(ctx, "CREATE TABLE users (id INT PRIMARY KEY, name TEXT)")
	require.NoError(t, err)
	_, err = e.Execute(ctx, "CREATE TABLE orders (id INT PRIMARY KEY, user_id INT REFERENCES users(id))")
	require.NoError(t, err)

	_, err = e.Execute(ctx, "INSERT INTO orders (id, user_id) VALUES (1, 99)")
	require.Error(t, err, "expected rejection of an order referencing a nonexistent user")

	_, err = e.Execute(ctx, "INSERT INTO users (id, name) VALUES (1, 'ann')")
	require.NoError(t, err)
	_, err = e.Execute(ctx, "INSERT INTO orders (id, user_id) VALUES (1, 1)")
	require.NoError(t, err)

	_, err = e.Execute(ctx, "DELETE FROM users WHERE id = 1")
	require.Error(t, err, "expected NO ACTION to refuse deleting a referenced user")

	_, err = e.Execute(ctx, "CREATE TABLE orders2 (id INT PRIMARY KEY, user_id INT REFERENCES users(id) ON DELETE CASCADE)")
	require.NoError(t, err)
	_, err = e.Execute(ctx, "INSERT INTO orders2 (id, user_id) VALUES (1, 1)")
	require.NoError(t, err)

	// Drop the NO ACTION reference first, so only the CASCADE child remains.
	_, err = e.Execute(ctx, "DELETE FROM orders WHERE id = 1")
	require.NoError(t, err)

	_, err = e.Execute(ctx, "DELETE FROM users WHERE id = 1")
	require.NoError(t, err, "CASCADE should allow removing the referenced user")

	payloads, err := e.Execute(ctx, "SELECT id FROM orders2")
	require.NoError(t, err)
	require.Empty(t, payloads[0].Rows, "CASCADE should have removed the dependent order")
}

// TestDerivedTableRequiresAlias checks that an inline subquery used as a
// FROM source must be aliased.
func TestDerivedTableRequiresAlias(t *testing.T) {
	e, ctx := newTestEngine()
	_, err := e.Execute(ctx, "CREATE TABLE t (id INT PRIMARY KEY)")
	require.NoError(t, err)
	_, err = e.Execute(ctx, "INSERT INTO t (id) VALUES (1)")
	require.NoError(t, err)

	_, err = e.Execute(ctx, "SELECT * FROM (SELECT id FROM t)")
	require.Error(t, err)

	payloads, err := e.Execute(ctx, "SELECT * FROM (SELECT id FROM t) AS sub")
	require.NoError(t, err)
	require.Len(t, payloads[0].Rows, 1)
}

// TestIntervalArithmetic checks the two worked CAST-to-INTERVAL examples
// (months and microseconds decomposition).
func TestIntervalArithmetic(t *testing.T) {
	e, ctx := newTestEngine()

	payloads, err := e.Execute(ctx, "SELECT CAST('1-2' AS INTERVAL YEAR TO MONTH)")
	require.NoError(t, err)
	require.Equal(t, sql.KindInterval, payloads[0].Rows[0].Get(0).Kind())
	require.EqualValues(t, 14, payloads[0].Rows[0].Get(0).Interval().Months)

	payloads, err = e.Execute(ctx, "SELECT CAST('3 12:30:12.1324' AS INTERVAL DAY TO SECOND)")
	require.NoError(t, err)
	require.EqualValues(t, 304212132400, payloads[0].Rows[0].Get(0).Interval().Micros)
}

// TestCastFailureCascades checks that an impossible CAST surfaces as an
// error rather than a NULL.
func TestCastFailureCascades(t *testing.T) {
	e, ctx := newTestEngine()
	_, err := e.Execute(ctx, "SELECT CAST('not-a-number' AS INT)")
	require.Error(t, err)
	require.True(t, sql.ErrLiteralCastFromTextToIntegerFailed.Is(err) || sql.ErrImpossibleCast.Is(err))
}

// TestMultiStatementFailsFast checks that a batch stops at its first
// error and does not run subsequent statements.
func TestMultiStatementFailsFast(t *testing.T) {
	e, ctx := newTestEngine()
	_, err := e.Execute(ctx, "CREATE TABLE t (id INT PRIMARY KEY); INSERT INTO t (id) VALUES (1); INSERT INTO missing (id) VALUES (1); INSERT INTO t (id) VALUES (2)")
	require.Error(t, err)

	payloads, err := e.Execute(ctx, "SELECT id FROM t")
	require.NoError(t, err)
	require.Len(t, payloads[0].Rows, 1, "the statement after the failing one must not have run")
}

func TestPlanSeparatesFromExecute(t *testing.T) {
	e, _ := newTestEngine()
	stmts, err := e.Plan("SELECT 1")
	require.NoError(t, err)
	require.Len(t, stmts, 1)
}
