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

import "io"

// Row is spec.md §3's Row: either a positional Vec row for a typed
// table, or a Map row for a schemaless table. The two shapes never mix
// within one table (enforced by Schema.Schemaless/CheckRow).
type Row struct {
	vec []Value
	m   map[string]Value
}

func NewRow(values ...Value) Row { return Row{vec: values} }
func NewMapRow(m map[string]Value) Row { return Row{m: m} }

func (r Row) IsMap() bool { return r.m != nil }
func (r Row) Len() int {
	if r.IsMap() {
		return len(r.m)
	}
	return len(r.vec)
}

func (r Row) Get(i int) Value {
	if i < 0 || i >= len(r.vec) {
		return Null
	}
	return r.vec[i]
}

func (r Row) GetNamed(name string) (Value, bool) {
	v, ok := r.m[name]
	return v, ok
}

func (r Row) Values() []Value {
	if r.IsMap() {
		return nil
	}
	return r.vec
}

func (r Row) Map() map[string]Value { return r.m }

// Copy returns a shallow copy whose backing slice/map is independent of
// r's, matching the Row lifecycle note in spec.md §3 ("owned by whichever
// operator currently holds them").
func (r Row) Copy() Row {
	if r.IsMap() {
		cp := make(map[string]Value, len(r.m))
		for k, v := range r.m {
			cp[k] = v
		}
		return Row{m: cp}
	}
	cp := make([]Value, len(r.vec))
	copy(cp, r.vec)
	return Row{vec: cp}
}

// WithValue returns a copy of r with index i replaced by v, leaving r
// itself unchanged.
func (r Row) WithValue(i int, v Value) Row {
	cp := r.Copy()
	cp.vec[i] = v
	return cp
}

// RowIter is a lazy sequence of Row, returned by storage index scans;
// the executor itself works on materialized slices. Next returns io.EOF
// when exhausted.
type RowIter interface {
	Next() (Row, error)
	Close() error
}

// KeyedRow pairs a Row with its storage Key, the shape storage.Store's
// scan returns (spec.md §6 scan_data).
type KeyedRow struct {
	Key Key
	Row Row
}

// sliceIter adapts a pre-materialized slice to RowIter.
type sliceIter struct {
	rows []Row
	pos  int
}

func NewSliceIter(rows []Row) RowIter { return &sliceIter{rows: rows} }

func (s *sliceIter) Next() (Row, error) {
	if s.pos >= len(s.rows) {
		return Row{}, io.EOF
	}
	r := s.rows[s.pos]
	s.pos++
	return r, nil
}

func (s *sliceIter) Close() error { return nil }

// DrainRows exhausts iter into a slice.
func DrainRows(iter RowIter) ([]Row, error) {
	var rows []Row
	for {
		r, err := iter.Next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
}
