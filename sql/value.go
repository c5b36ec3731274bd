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

// Package sql holds the core value, type, schema and row representation
// shared by every stage of the engine: translate, plan, expression and
// rowexec all exchange sql.Value, sql.Row and sql.Schema, never raw Go
// types.
package sql

import (
	"fmt"
	"math/big"
	"net"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind tags the variant held by a Value. It is the discriminant of the
// tagged union described in spec.md §3.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindI8
	KindI16
	KindI32
	KindI64
	KindI128
	KindU8
	KindU16
	KindU32
	KindU64
	KindU128
	KindF32
	KindF64
	KindDecimal
	KindStr
	KindBytea
	KindInet
	KindDate
	KindTime
	KindTimestamp
	KindInterval
	KindUuid
	KindMap
	KindList
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindBool:
		return "BOOLEAN"
	case KindI8:
		return "I8"
	case KindI16:
		return "I16"
	case KindI32:
		return "I32"
	case KindI64:
		return "I64"
	case KindI128:
		return "I128"
	case KindU8:
		return "U8"
	case KindU16:
		return "U16"
	case KindU32:
		return "U32"
	case KindU64:
		return "U64"
	case KindU128:
		return "U128"
	case KindF32:
		return "F32"
	case KindF64:
		return "F64"
	case KindDecimal:
		return "DECIMAL"
	case KindStr:
		return "TEXT"
	case KindBytea:
		return "BYTEA"
	case KindInet:
		return "INET"
	case KindDate:
		return "DATE"
	case KindTime:
		return "TIME"
	case KindTimestamp:
		return "TIMESTAMP"
	case KindInterval:
		return "INTERVAL"
	case KindUuid:
		return "UUID"
	case KindMap:
		return "MAP"
	case KindList:
		return "LIST"
	case KindPoint:
		return "POINT"
	default:
		return "UNKNOWN"
	}
}

// isNumeric reports whether the kind belongs to the numeric coercion
// lattice (integer, unsigned, float or decimal).
func (k Kind) isNumeric() bool {
	switch k {
	case KindI8, KindI16, KindI32, KindI64, KindI128,
		KindU8, KindU16, KindU32, KindU64, KindU128,
		KindF32, KindF64, KindDecimal:
		return true
	}
	return false
}

func (k Kind) isInteger() bool {
	switch k {
	case KindI8, KindI16, KindI32, KindI64, KindI128,
		KindU8, KindU16, KindU32, KindU64, KindU128:
		return true
	}
	return false
}

func (k Kind) isFloat() bool {
	return k == KindF32 || k == KindF64
}

// Interval is months-plus-microseconds, each additive independently, as
// required by spec.md §3.
type Interval struct {
	Months int32
	Micros int64
}

// Point is a simple planar point value.
type Point struct {
	X, Y float64
}

// Value is the tagged-union runtime value described in spec.md §3. The
// zero Value is Null.
type Value struct {
	kind Kind
	raw  any
}

// Null is the singular null value.
var Null = Value{kind: KindNull}

func NewBool(b bool) Value            { return Value{kind: KindBool, raw: b} }
func NewI8(n int8) Value              { return Value{kind: KindI8, raw: int64(n)} }
func NewI16(n int16) Value            { return Value{kind: KindI16, raw: int64(n)} }
func NewI32(n int32) Value            { return Value{kind: KindI32, raw: int64(n)} }
func NewI64(n int64) Value            { return Value{kind: KindI64, raw: n} }
func NewI128(n *big.Int) Value        { return Value{kind: KindI128, raw: n} }
func NewU8(n uint8) Value             { return Value{kind: KindU8, raw: uint64(n)} }
func NewU16(n uint16) Value           { return Value{kind: KindU16, raw: uint64(n)} }
func NewU32(n uint32) Value           { return Value{kind: KindU32, raw: uint64(n)} }
func NewU64(n uint64) Value           { return Value{kind: KindU64, raw: n} }
func NewU128(n *big.Int) Value        { return Value{kind: KindU128, raw: n} }
func NewF32(f float32) Value          { return Value{kind: KindF32, raw: f} }
func NewF64(f float64) Value          { return Value{kind: KindF64, raw: f} }
func NewDecimal(d decimal.Decimal) Value {
	return Value{kind: KindDecimal, raw: d}
}
func NewStr(s string) Value       { return Value{kind: KindStr, raw: s} }
func NewBytea(b []byte) Value     { return Value{kind: KindBytea, raw: b} }
func NewInet(ip net.IP) Value     { return Value{kind: KindInet, raw: ip} }
func NewDate(t time.Time) Value   { return Value{kind: KindDate, raw: t} }
func NewTime(d time.Duration) Value {
	return Value{kind: KindTime, raw: d}
}
func NewTimestamp(t time.Time) Value { return Value{kind: KindTimestamp, raw: t} }
func NewInterval(months int32, micros int64) Value {
	return Value{kind: KindInterval, raw: Interval{Months: months, Micros: micros}}
}
func NewUuid(u uuid.UUID) Value    { return Value{kind: KindUuid, raw: u} }
func NewMap(m map[string]Value) Value { return Value{kind: KindMap, raw: m} }
func NewList(l []Value) Value      { return Value{kind: KindList, raw: l} }
func NewPoint(x, y float64) Value  { return Value{kind: KindPoint, raw: Point{X: x, Y: y}} }

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsNull() bool  { return v.kind == KindNull }
func (v Value) Raw() any      { return v.raw }

func (v Value) Bool() bool                { return v.raw.(bool) }
func (v Value) Int() int64                { return v.raw.(int64) }
func (v Value) Uint() uint64              { return v.raw.(uint64) }
func (v Value) BigInt() *big.Int          { return v.raw.(*big.Int) }
func (v Value) F32() float32              { return v.raw.(float32) }
func (v Value) F64() float64              { return v.raw.(float64) }
func (v Value) Decimal() decimal.Decimal  { return v.raw.(decimal.Decimal) }
func (v Value) Str() string               { return v.raw.(string) }
func (v Value) Bytea() []byte             { return v.raw.([]byte) }
func (v Value) Inet() net.IP              { return v.raw.(net.IP) }
func (v Value) Date() time.Time           { return v.raw.(time.Time) }
func (v Value) Time() time.Duration       { return v.raw.(time.Duration) }
func (v Value) Timestamp() time.Time      { return v.raw.(time.Time) }
func (v Value) Interval() Interval        { return v.raw.(Interval) }
func (v Value) Uuid() uuid.UUID           { return v.raw.(uuid.UUID) }
func (v Value) Map() map[string]Value     { return v.raw.(map[string]Value) }
func (v Value) List() []Value             { return v.raw.([]Value) }
func (v Value) Point() Point              { return v.raw.(Point) }

// AsFloat64 widens any numeric variant to a float64 for arithmetic that
// mixes integer and float operands (spec.md §4.4: "Integer ↔ Float:
// widen to float on arithmetic with a float operand").
func (v Value) AsFloat64() (float64, bool) {
	switch v.kind {
	case KindI8, KindI16, KindI32, KindI64:
		return float64(v.raw.(int64)), true
	case KindI128:
		f, _ := new(big.Float).SetInt(v.raw.(*big.Int)).Float64()
		return f, true
	case KindU8, KindU16, KindU32, KindU64:
		return float64(v.raw.(uint64)), true
	case KindU128:
		f, _ := new(big.Float).SetInt(v.raw.(*big.Int)).Float64()
		return f, true
	case KindF32:
		return float64(v.raw.(float32)), true
	case KindF64:
		return v.raw.(float64), true
	case KindDecimal:
		f, _ := v.raw.(decimal.Decimal).Float64()
		return f, true
	}
	return 0, false
}

// AsInt64 extracts an integer-compatible value as int64, used by
// functions and storage adapters that only need whole numbers.
func (v Value) AsInt64() (int64, bool) {
	switch v.kind {
	case KindI8, KindI16, KindI32, KindI64:
		return v.raw.(int64), true
	case KindU8, KindU16, KindU32, KindU64:
		return int64(v.raw.(uint64)), true
	case KindI128, KindU128:
		return v.raw.(*big.Int).Int64(), true
	case KindBool:
		if v.raw.(bool) {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// Equal implements total equality for comparable pairs (spec.md §3).
// Null is never equal to anything, including another Null, under SQL
// three-valued semantics; callers checking for "is the same shape"
// rather than SQL equality should compare Kind and Raw directly.
func (v Value) Equal(o Value) bool {
	c, err := v.Compare(o)
	return err == nil && c == 0
}

// Compare orders two values, coercing across numeric kinds toward the
// wider precision (spec.md §3: "comparison across distinct numeric kinds
// coerces toward the wider precision"). Comparing a Null against
// anything, or comparing across fundamentally incompatible kinds (e.g.
// Str vs Bool), is an error the caller must translate into SQL NULL in
// boolean contexts.
func (v Value) Compare(o Value) (int, error) {
	if v.kind == KindNull || o.kind == KindNull {
		return 0, fmt.Errorf("sql: cannot compare NULL directly, use three-valued logic")
	}
	if v.kind.isNumeric() && o.kind.isNumeric() {
		return compareNumeric(v, o)
	}
	if v.kind != o.kind {
		return 0, fmt.Errorf("sql: cannot compare %s and %s", v.kind, o.kind)
	}
	switch v.kind {
	case KindBool:
		a, b := v.raw.(bool), o.raw.(bool)
		switch {
		case a == b:
			return 0, nil
		case !a:
			return -1, nil
		default:
			return 1, nil
		}
	case KindStr:
		return compareOrdered(v.raw.(string), o.raw.(string)), nil
	case KindBytea:
		return compareBytes(v.raw.([]byte), o.raw.([]byte)), nil
	case KindInet:
		return compareBytes(v.raw.(net.IP).To16(), o.raw.(net.IP).To16()), nil
	case KindDate, KindTimestamp:
		return compareTime(v.raw.(time.Time), o.raw.(time.Time)), nil
	case KindTime:
		return compareOrdered(int64(v.raw.(time.Duration)), int64(o.raw.(time.Duration))), nil
	case KindInterval:
		a, b := v.raw.(Interval), o.raw.(Interval)
		av := int64(a.Months)*monthMicros + a.Micros
		bv := int64(b.Months)*monthMicros + b.Micros
		return compareOrdered(av, bv), nil
	case KindUuid:
		return compareBytes(v.raw.(uuid.UUID).NodeID(), o.raw.(uuid.UUID).NodeID()), nil
	case KindList:
		return compareLists(v.raw.([]Value), o.raw.([]Value))
	case KindMap:
		return compareMaps(v.raw.(map[string]Value), o.raw.(map[string]Value))
	case KindPoint:
		a, b := v.raw.(Point), o.raw.(Point)
		if a.X != b.X {
			return compareOrdered(a.X, b.X), nil
		}
		return compareOrdered(a.Y, b.Y), nil
	}
	return 0, fmt.Errorf("sql: incomparable kind %s", v.kind)
}

// monthMicros approximates a month as 30 days for ordering interval
// values that mix month and microsecond components; exact additive
// semantics for arithmetic are handled separately in the interval
// arithmetic helpers, never through this ordering approximation.
const monthMicros = 30 * 24 * 60 * 60 * 1_000_000

func compareNumeric(a, b Value) (int, error) {
	if a.kind == KindDecimal || b.kind == KindDecimal {
		ad, bd := toDecimal(a), toDecimal(b)
		return ad.Cmp(bd), nil
	}
	if a.kind.isFloat() || b.kind.isFloat() {
		af, _ := a.AsFloat64()
		bf, _ := b.AsFloat64()
		return compareOrdered(af, bf), nil
	}
	af, _ := a.AsFloat64()
	bf, _ := b.AsFloat64()
	return compareOrdered(af, bf), nil
}

func toDecimal(v Value) decimal.Decimal {
	if v.kind == KindDecimal {
		return v.raw.(decimal.Decimal)
	}
	f, _ := v.AsFloat64()
	return decimal.NewFromFloat(f)
}

type ordered interface {
	~int | ~int64 | ~float64 | ~string
}

func compareOrdered[T ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return compareOrdered(a[i], b[i])
		}
	}
	return compareOrdered(len(a), len(b))
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func compareLists(a, b []Value) (int, error) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		c, err := a[i].Compare(b[i])
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return c, nil
		}
	}
	return compareOrdered(len(a), len(b)), nil
}

func compareMaps(a, b map[string]Value) (int, error) {
	ak := sortedKeys(a)
	bk := sortedKeys(b)
	n := len(ak)
	if len(bk) < n {
		n = len(bk)
	}
	for i := 0; i < n; i++ {
		if ak[i] != bk[i] {
			return compareOrdered(ak[i], bk[i]), nil
		}
		c, err := a[ak[i]].Compare(b[bk[i]])
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return c, nil
		}
	}
	return compareOrdered(len(ak), len(bk)), nil
}

func sortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindBool:
		return fmt.Sprintf("%v", v.raw.(bool))
	case KindStr:
		return v.raw.(string)
	case KindDecimal:
		return v.raw.(decimal.Decimal).String()
	case KindUuid:
		return v.raw.(uuid.UUID).String()
	default:
		return fmt.Sprintf("%v", v.raw)
	}
}
