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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyByteOrderMatchesNegativeInts(t *testing.T) {
	neg := NewKey(NewI64(-5))
	pos := NewKey(NewI64(5))
	require.True(t, neg.Compare(pos) < 0)
}

func TestKeyByteOrderMatchesStringOrdering(t *testing.T) {
	a := NewKey(NewStr("alpha"))
	b := NewKey(NewStr("beta"))
	require.True(t, a.Compare(b) < 0)
}

func TestKeyDistinctValuesDistinctBytes(t *testing.T) {
	seen := map[string]bool{}
	for _, v := range []Value{NewI64(1), NewI64(2), NewStr("1"), NewBool(true), NewBool(false), NewF64(1.5)} {
		b := string(NewKey(v).Bytes())
		require.False(t, seen[b], "collision encoding %v", v)
		seen[b] = true
	}
}

func TestKeyListCompositeOrdersComponentwise(t *testing.T) {
	a := NewKey(NewList([]Value{NewI64(1), NewI64(9)}))
	b := NewKey(NewList([]Value{NewI64(1), NewI64(10)}))
	require.True(t, a.Compare(b) < 0, "[1,9] must sort before [1,10]")
}
