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

package rawsql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseStatementShapes(t *testing.T) {
	tests := []struct {
		q  string
		ok bool
	}{
		{q: "SELECT * FROM xy WHERE x = 1", ok: true},
		{q: "SELECT a, b AS bb FROM xy", ok: true},
		{q: "INSERT INTO xy VALUES (0, '0', .5)", ok: true},
		{q: "INSERT INTO xy (x, y, z) VALUES (0, '0', 1.0)", ok: true},
		{q: "UPDATE xy SET x = x + 1 WHERE y = 'a'", ok: true},
		{q: "DELETE FROM xy WHERE x = 1", ok: true},
		{q: "CREATE TABLE t (id INT PRIMARY KEY, name TEXT NOT NULL)", ok: true},
		{q: "DROP TABLE IF EXISTS t", ok: true},
		{q: "ALTER TABLE t ADD COLUMN age INT", ok: true},
		{q: "ALTER TABLE t RENAME COLUMN age TO years", ok: true},
		{q: "SELECT x FROM t1 JOIN t2 ON t1.id = t2.id", ok: true},
		{q: "SELECT COUNT(*) FROM t GROUP BY x HAVING COUNT(*) > 1", ok: true},
		{q: "SELECT x FROM t ORDER BY x DESC LIMIT 10 OFFSET 5", ok: true},
		{q: "SELECT INTERVAL '3' DAY", ok: true},
		{q: "SELECT DATE '2024-01-01'", ok: true},
		{q: "SELECT X'DEADBEEF'", ok: true},
		{q: "SELECT CAST(x AS DECIMAL(10,2))", ok: true},
		{q: "SELECT 1 +", ok: false},
		{q: "SELECT FROM WHERE", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			_, err := Parse(tt.q)
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestParseMultipleStatements(t *testing.T) {
	stmts, err := Parse("SELECT 1; SELECT 2;")
	require.NoError(t, err)
	require.Len(t, stmts, 2)
}

func TestLexerStringEscape(t *testing.T) {
	toks, err := Tokenize("'it''s'")
	require.NoError(t, err)
	require.Equal(t, STRING, toks[0].Type)
	require.Equal(t, "it's", toks[0].Text)
}

func TestLexerNumericSeparator(t *testing.T) {
	toks, err := Tokenize("1_000_000")
	require.NoError(t, err)
	require.Equal(t, NUMBER, toks[0].Type)
	require.Equal(t, "1000000", toks[0].Text)
}

func TestLexerQuotedIdentifiers(t *testing.T) {
	for _, src := range []string{`"my col"`, "`my col`"} {
		toks, err := Tokenize(src)
		require.NoError(t, err)
		require.Equal(t, QUOTED_IDENT, toks[0].Type)
		require.Equal(t, "my col", toks[0].Text)
	}
}
