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

package expression

import errors "gopkg.in/src-d/go-errors.v1"

// Evaluation-group error kinds (spec.md §4.4, §7).
var (
	ErrDivisionByZero       = errors.NewKind("division by zero")
	ErrUnsupportedOperator  = errors.NewKind("unsupported operator: %s")
	ErrUnknownFunction      = errors.NewKind("unknown function: %s")
	ErrNonConstantDefault   = errors.NewKind("DEFAULT expression for column %q is not constant")
	ErrAggregateOutsideExec = errors.NewKind("aggregate %s cannot be evaluated outside group execution")
)
