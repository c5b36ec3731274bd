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
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// DataType is a declared column type. It knows how to coerce a runtime
// Value into its own domain (spec.md §4.6 coercion lattice) and how to
// round-trip through DDL text (spec.md §4.6 to_ddl/from_ddl law).
type DataType struct {
	Kind      Kind
	Precision int // Decimal precision; interval sub-kind stored in Name
	Scale     int
	Name      string // canonical DDL spelling, e.g. "INTERVAL DAY TO SECOND"
}

func Typed(k Kind) DataType { return DataType{Kind: k, Name: k.String()} }

var (
	Bool      = Typed(KindBool)
	Int8      = Typed(KindI8)
	Int16     = Typed(KindI16)
	Int32     = Typed(KindI32)
	Int64     = Typed(KindI64)
	Int128    = Typed(KindI128)
	Uint8     = Typed(KindU8)
	Uint16    = Typed(KindU16)
	Uint32    = Typed(KindU32)
	Uint64    = Typed(KindU64)
	Uint128   = Typed(KindU128)
	Float32T  = Typed(KindF32)
	Float64T  = Typed(KindF64)
	Text      = Typed(KindStr)
	Bytea     = Typed(KindBytea)
	Inet      = Typed(KindInet)
	Date      = Typed(KindDate)
	Time      = Typed(KindTime)
	Timestamp = Typed(KindTimestamp)
	UuidType  = Typed(KindUuid)
	MapType   = Typed(KindMap)
	ListType  = Typed(KindList)
	PointType = Typed(KindPoint)
)

func DecimalType(precision, scale int) DataType {
	return DataType{Kind: KindDecimal, Precision: precision, Scale: scale, Name: "DECIMAL"}
}

func IntervalType(name string) DataType {
	return DataType{Kind: KindInterval, Name: name}
}

// Convert coerces v into d's domain, implementing spec.md §4.4's rules:
//
//   - Integer ↔ Float widens to float on arithmetic with a float operand
//     (handled by the evaluator; Convert applies it on explicit CAST too).
//   - Text ↔ Numeric is CAST-only: text→int parses base-10 and rejects
//     non-digit text.
//   - Bool ↔ Integer: TRUE↔1, FALSE↔0; any other integer literal fails
//     cast to bool.
//   - NULL converts to NULL regardless of target type.
func (d DataType) Convert(v Value) (Value, error) {
	if v.IsNull() {
		return Null, nil
	}
	switch d.Kind {
	case KindBool:
		return d.convertBool(v)
	case KindI8, KindI16, KindI32, KindI64, KindI128,
		KindU8, KindU16, KindU32, KindU64, KindU128:
		return d.convertInteger(v)
	case KindF32, KindF64:
		return d.convertFloat(v)
	case KindDecimal:
		return d.convertDecimal(v)
	case KindStr:
		return NewStr(valueToText(v)), nil
	case KindBytea:
		if v.Kind() == KindBytea {
			return v, nil
		}
		return Null, ErrImpossibleCast.New(v.Kind(), d.Kind)
	case KindInet:
		if v.Kind() == KindInet {
			return v, nil
		}
		if v.Kind() == KindStr {
			ip := net.ParseIP(v.Str())
			if ip == nil {
				return Null, ErrImpossibleCast.New(v.Kind(), d.Kind)
			}
			return NewInet(ip), nil
		}
		return Null, ErrImpossibleCast.New(v.Kind(), d.Kind)
	case KindUuid:
		if v.Kind() == KindUuid {
			return v, nil
		}
		if v.Kind() == KindStr {
			u, err := uuid.Parse(v.Str())
			if err != nil {
				return Null, ErrImpossibleCast.New(v.Kind(), d.Kind)
			}
			return NewUuid(u), nil
		}
		return Null, ErrImpossibleCast.New(v.Kind(), d.Kind)
	case KindInterval:
		if v.Kind() == KindInterval {
			return v, nil
		}
		if v.Kind() == KindStr {
			return ParseInterval(strings.TrimPrefix(d.Name, "INTERVAL "), v.Str())
		}
		return Null, ErrImpossibleCast.New(v.Kind(), d.Kind)
	case KindDate, KindTime, KindTimestamp, KindMap, KindList, KindPoint:
		if v.Kind() == d.Kind {
			return v, nil
		}
		return Null, ErrImpossibleCast.New(v.Kind(), d.Kind)
	}
	return Null, ErrInvalidType.New(d.Kind)
}

func (d DataType) convertBool(v Value) (Value, error) {
	switch v.Kind() {
	case KindBool:
		return v, nil
	case KindStr:
		s := strings.ToUpper(strings.TrimSpace(v.Str()))
		switch s {
		case "TRUE", "T", "1":
			return NewBool(true), nil
		case "FALSE", "F", "0":
			return NewBool(false), nil
		default:
			return Null, ErrLiteralCastToBooleanFailed.New(v.Str())
		}
	case KindI8, KindI16, KindI32, KindI64, KindU8, KindU16, KindU32, KindU64:
		n, _ := v.AsInt64()
		switch n {
		case 0:
			return NewBool(false), nil
		case 1:
			return NewBool(true), nil
		default:
			return Null, ErrLiteralCastToBooleanFailed.New(fmt.Sprint(n))
		}
	}
	return Null, ErrImpossibleCast.New(v.Kind(), d.Kind)
}

func (d DataType) convertInteger(v Value) (Value, error) {
	switch v.Kind() {
	case KindBool:
		if v.Bool() {
			return reboxInt(d.Kind, 1), nil
		}
		return reboxInt(d.Kind, 0), nil
	case KindStr:
		n, err := strconv.ParseInt(strings.TrimSpace(v.Str()), 10, 64)
		if err != nil {
			return Null, ErrLiteralCastFromTextToIntegerFailed.New(v.Str())
		}
		return reboxInt(d.Kind, n), nil
	default:
		if n, ok := v.AsInt64(); ok {
			return reboxInt(d.Kind, n), nil
		}
		if f, ok := v.AsFloat64(); ok {
			return reboxInt(d.Kind, int64(f)), nil
		}
	}
	return Null, ErrImpossibleCast.New(v.Kind(), d.Kind)
}

func reboxInt(k Kind, n int64) Value {
	switch k {
	case KindI8:
		return NewI8(int8(n))
	case KindI16:
		return NewI16(int16(n))
	case KindI32:
		return NewI32(int32(n))
	case KindI64:
		return NewI64(n)
	case KindU8:
		return NewU8(uint8(n))
	case KindU16:
		return NewU16(uint16(n))
	case KindU32:
		return NewU32(uint32(n))
	case KindU64:
		return NewU64(uint64(n))
	default:
		return NewI64(n)
	}
}

func (d DataType) convertFloat(v Value) (Value, error) {
	var f float64
	switch v.Kind() {
	case KindStr:
		parsed, err := cast.ToFloat64E(strings.TrimSpace(v.Str()))
		if err != nil {
			return Null, ErrImpossibleCast.New(v.Kind(), d.Kind)
		}
		f = parsed
	default:
		parsed, ok := v.AsFloat64()
		if !ok {
			return Null, ErrImpossibleCast.New(v.Kind(), d.Kind)
		}
		f = parsed
	}
	if d.Kind == KindF32 {
		return NewF32(float32(f)), nil
	}
	return NewF64(f), nil
}

func (d DataType) convertDecimal(v Value) (Value, error) {
	switch v.Kind() {
	case KindDecimal:
		return v, nil
	case KindStr:
		parsed, err := decimal.NewFromString(strings.TrimSpace(v.Str()))
		if err != nil {
			return Null, ErrImpossibleCast.New(v.Kind(), d.Kind)
		}
		return NewDecimal(parsed), nil
	default:
		if f, ok := v.AsFloat64(); ok {
			return NewDecimal(decimal.NewFromFloat(f)), nil
		}
	}
	return Null, ErrImpossibleCast.New(v.Kind(), d.Kind)
}

func valueToText(v Value) string {
	switch v.Kind() {
	case KindTimestamp, KindDate:
		return v.raw.(time.Time).Format(time.RFC3339)
	default:
		return v.String()
	}
}

// LUB returns the least-upper-bound type of a and b under the coercion
// lattice, used to type a VALUES column per spec.md invariant 2.
//
// Open Question 1 resolution (see DESIGN.md): Decimal beats F64. Any
// Decimal/F64 mix in one column widens to Decimal rather than F64, so
// that a column which starts with an exact decimal literal never loses
// precision just because a later row used float syntax.
func LUB(a, b DataType) DataType {
	if a.Kind == b.Kind {
		return a
	}
	if a.Kind == KindNull {
		return b
	}
	if b.Kind == KindNull {
		return a
	}
	if a.Kind == KindDecimal || b.Kind == KindDecimal {
		return DecimalType(38, 9)
	}
	if a.Kind.isFloat() || b.Kind.isFloat() {
		return Float64T
	}
	if a.Kind.isInteger() && b.Kind.isInteger() {
		return Int64
	}
	return a
}
