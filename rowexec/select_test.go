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

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glaive-db/glaive/plan"
	"github.com/glaive-db/glaive/rawsql"
	"github.com/glaive-db/glaive/sql"
	"github.com/glaive-db/glaive/storage"
	"github.com/glaive-db/glaive/storage/memory"
	"github.com/glaive-db/glaive/translate"
)

type fetchOnly struct{ store storage.Store }

func (f *fetchOnly) FetchSchema(name string) (sql.Schema, bool) {
	s, ok, _ := f.store.FetchSchema(name)
	return s, ok
}

func run(t *testing.T, store storage.Store, sqlText string) *storage.Payload {
	t.Helper()
	raw, err := rawsql.Parse(sqlText)
	require.NoError(t, err)
	require.Len(t, raw, 1)
	stmt, err := translate.Statement(raw[0])
	require.NoError(t, err)
	planned, err := plan.Plan(&fetchOnly{store: store}, stmt)
	require.NoError(t, err)
	payload, err := Execute(sql.NewEmptyContext(), store, planned)
	require.NoError(t, err)
	return payload
}

func setupCustomersOrders(t *testing.T) *memory.Storage {
	store := memory.New()
	run(t, store, "CREATE TABLE customers (id INT PRIMARY KEY, name TEXT)")
	run(t, store, "CREATE TABLE orders (id INT PRIMARY KEY, customer_id INT, amount INT)")
	run(t, store, "INSERT INTO customers (id, name) VALUES (1, 'ann'), (2, 'bob')")
	run(t, store, "INSERT INTO orders (id, customer_id, amount) VALUES (1, 1, 10), (2, 1, 20), (3, 2, 5)")
	return store
}

func TestInnerJoinMatchesOnEquality(t *testing.T) {
	store := setupCustomersOrders(t)
	p := run(t, store, "SELECT customers.name, orders.amount FROM customers JOIN orders ON customers.id = orders.customer_id ORDER BY orders.id")
	require.Len(t, p.Rows, 3)
	require.Equal(t, "ann", p.Rows[0].Get(0).Str())
	require.EqualValues(t, 10, p.Rows[0].Get(1).Int())
}

func TestLeftOuterJoinKeepsUnmatchedLeftRows(t *testing.T) {
	store := setupCustomersOrders(t)
	run(t, store, "INSERT INTO customers (id, name) VALUES (3, 'cara')")
	p := run(t, store, "SELECT customers.name, orders.amount FROM customers LEFT JOIN orders ON customers.id = orders.customer_id ORDER BY customers.id")
	require.Len(t, p.Rows, 4)
	last := p.Rows[3]
	require.Equal(t, "cara", last.Get(0).Str())
	require.True(t, last.Get(1).IsNull())
}

func TestGroupByAggregatesPerKey(t *testing.T) {
	store := setupCustomersOrders(t)
	p := run(t, store, "SELECT customer_id, SUM(amount) FROM orders GROUP BY customer_id ORDER BY customer_id")
	require.Len(t, p.Rows, 2)
	require.EqualValues(t, 1, p.Rows[0].Get(0).Int())
	require.EqualValues(t, 30, p.Rows[0].Get(1).Int())
	require.EqualValues(t, 2, p.Rows[1].Get(0).Int())
	require.EqualValues(t, 5, p.Rows[1].Get(1).Int())
}

func TestUngroupedColumnRejected(t *testing.T) {
	store := setupCustomersOrders(t)
	raw, err := rawsql.Parse("SELECT customer_id, amount FROM orders GROUP BY customer_id")
	require.NoError(t, err)
	stmt, err := translate.Statement(raw[0])
	require.NoError(t, err)
	planned, err := plan.Plan(&fetchOnly{store: store}, stmt)
	require.NoError(t, err)
	_, err = Execute(sql.NewEmptyContext(), store, planned)
	require.Error(t, err)
	require.True(t, UngroupedColumn.Is(err))
}

func TestLimitOffset(t *testing.T) {
	store := setupCustomersOrders(t)
	p := run(t, store, "SELECT id FROM orders ORDER BY id LIMIT 1 OFFSET 1")
	require.Len(t, p.Rows, 1)
	require.EqualValues(t, 2, p.Rows[0].Get(0).Int())
}
