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

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNullNeverEqual(t *testing.T) {
	require.False(t, Null.Equal(Null))
	require.False(t, Null.Equal(NewI64(0)))
}

func TestEqualAcrossNumericKinds(t *testing.T) {
	require.True(t, NewI32(7).Equal(NewI64(7)))
	require.True(t, NewF64(1.5).Equal(NewF32(1.5)))
}

func TestCompareWidensAcrossNumericKinds(t *testing.T) {
	c, err := NewI32(1).Compare(NewF64(2.5))
	require.NoError(t, err)
	require.Equal(t, -1, c)
}

func TestCompareDecimalAgainstFloat(t *testing.T) {
	d := NewDecimal(decimal.NewFromFloat(10))
	c, err := d.Compare(NewF64(9))
	require.NoError(t, err)
	require.Equal(t, 1, c)
}

func TestAsInt64BoolCoercion(t *testing.T) {
	n, ok := NewBool(true).AsInt64()
	require.True(t, ok)
	require.EqualValues(t, 1, n)
}

func TestStringRoundTrips(t *testing.T) {
	require.Equal(t, "NULL", Null.String())
	require.Equal(t, "7", NewI64(7).String())
	require.Equal(t, "true", NewBool(true).String())
}

func TestCompareListsLexicographic(t *testing.T) {
	a := NewList([]Value{NewI64(1), NewI64(2)})
	b := NewList([]Value{NewI64(1), NewI64(3)})
	c, err := a.Compare(b)
	require.NoError(t, err)
	require.Equal(t, -1, c)
}
