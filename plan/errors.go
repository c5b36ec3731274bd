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

package plan

import errors "gopkg.in/src-d/go-errors.v1"

// Plan-group error kinds (spec.md §4.3, §7).
var (
	ErrReferencingNonPKColumn = errors.NewKind("foreign key references %s.%s, which is not that table's primary key")
	ErrTableNotFound          = errors.NewKind("table %q not found")
	ErrColumnNotFound         = errors.NewKind("column %q not found")
	ErrAmbiguousColumn        = errors.NewKind("ambiguous column %q")
)
