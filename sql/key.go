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
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Key is the total-order storage address of a row (spec.md §3). Bool,
// the integer kinds up to 64 bits, F32/F64, Str, Bytea, Date, Time,
// Timestamp, Uuid and List have a canonical big-endian encoding whose
// lexicographic byte order equals the semantic order of the decoded
// values; storage backends sort by this encoding. Any other kind
// (Decimal, I128, U128, Inet, Interval, Map, Point) is encoded as its
// kind byte followed by its fmt text, whose byte order does not follow
// the values' semantic order.
type Key struct {
	value Value
}

func NewKey(v Value) Key { return Key{value: v} }

func (k Key) Value() Value { return k.value }

// Bytes returns the canonical big-endian encoding described in spec.md
// GLOSSARY. Composite (List) keys concatenate each element's tagged
// encoding so that component-wise ordering matches byte ordering.
func (k Key) Bytes() []byte {
	var buf bytes.Buffer
	encodeKeyValue(&buf, k.value)
	return buf.Bytes()
}

// Compare orders two keys by their canonical byte encoding.
func (k Key) Compare(o Key) int {
	return bytes.Compare(k.Bytes(), o.Bytes())
}

func encodeKeyValue(buf *bytes.Buffer, v Value) {
	buf.WriteByte(byte(v.Kind()))
	switch v.Kind() {
	case KindBool:
		if v.Bool() {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case KindI8, KindI16, KindI32, KindI64:
		n, _ := v.AsInt64()
		// Flip the sign bit so two's-complement negative numbers sort
		// before positive numbers under plain big-endian byte order.
		binary.Write(buf, binary.BigEndian, uint64(n)^(1<<63))
	case KindU8, KindU16, KindU32, KindU64:
		n, _ := v.AsInt64()
		binary.Write(buf, binary.BigEndian, uint64(n))
	case KindF32, KindF64:
		f, _ := v.AsFloat64()
		bits := math.Float64bits(f)
		if bits&(1<<63) != 0 {
			bits = ^bits
		} else {
			bits |= 1 << 63
		}
		binary.Write(buf, binary.BigEndian, bits)
	case KindStr:
		buf.WriteString(v.Str())
	case KindBytea:
		buf.Write(v.Bytea())
	case KindDate, KindTimestamp:
		binary.Write(buf, binary.BigEndian, v.Timestamp().UnixMicro())
	case KindTime:
		binary.Write(buf, binary.BigEndian, int64(v.Time()))
	case KindUuid:
		u := v.Uuid()
		buf.Write(u[:])
	case KindList:
		for _, item := range v.List() {
			encodeKeyValue(buf, item)
		}
	default:
		fmt.Fprintf(buf, "%v", v.Raw())
	}
}
