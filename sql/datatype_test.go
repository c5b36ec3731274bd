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

func TestLUBSameKindIsIdentity(t *testing.T) {
	require.Equal(t, Int32, LUB(Int32, Int32))
}

func TestLUBNullYieldsOtherSide(t *testing.T) {
	require.Equal(t, Text, LUB(Typed(KindNull), Text))
	require.Equal(t, Text, LUB(Text, Typed(KindNull)))
}

func TestLUBDecimalBeatsFloat(t *testing.T) {
	got := LUB(DecimalType(38, 9), Float64T)
	require.Equal(t, KindDecimal, got.Kind)
}

func TestLUBIntegersWidenToInt64(t *testing.T) {
	got := LUB(Int8, Int32)
	require.Equal(t, Int64, got)
}

func TestConvertNullIsAlwaysNull(t *testing.T) {
	v, err := Int32.Convert(Null)
	require.NoError(t, err)
	require.True(t, v.IsNull())
}

func TestConvertBoolFromText(t *testing.T) {
	v, err := Bool.Convert(NewStr("true"))
	require.NoError(t, err)
	require.True(t, v.Bool())

	_, err = Bool.Convert(NewStr("maybe"))
	require.Error(t, err)
}

func TestConvertIntegerFromTextRejectsNonDigits(t *testing.T) {
	_, err := Int32.Convert(NewStr("abc"))
	require.Error(t, err)
	require.True(t, ErrLiteralCastFromTextToIntegerFailed.Is(err))
}

func TestConvertIntegerRebox(t *testing.T) {
	v, err := Int8.Convert(NewI64(42))
	require.NoError(t, err)
	require.Equal(t, KindI8, v.Kind())
}
