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

package translate

import errors "gopkg.in/src-d/go-errors.v1"

// Translate-group error kinds (spec.md §4.1, §7).
var (
	ErrUnsupportedStatement       = errors.NewKind("unsupported statement: %s")
	ErrUnsupportedExpression      = errors.NewKind("unsupported expression: %s")
	ErrUnsupportedQuerySetExpr    = errors.NewKind("unsupported query set expression: %s")
	ErrTooManyTables              = errors.NewKind("too many tables in FROM clause")
	ErrLackOfAlias                = errors.NewKind("derived table requires an alias")
	ErrNamedFunctionArgNotSupported      = errors.NewKind("named function arguments are not supported: %s")
	ErrFunctionArgsLengthNotMatching     = errors.NewKind("function %s expects %d arguments, found %d")
	ErrFunctionArgsLengthRangeNotMatching = errors.NewKind("function %s expects between %d and %d arguments, found %d")
	ErrUnknownFunction            = errors.NewKind("unknown function: %s")
	ErrUnknownDataType            = errors.NewKind("unknown data type: %s")
	ErrInvalidIntervalUnit        = errors.NewKind("invalid interval unit: %s")
	ErrInvalidDateLiteral         = errors.NewKind("invalid date literal: %s")
	ErrInvalidTimestampLiteral    = errors.NewKind("invalid timestamp literal: %s")
	ErrInvalidUUIDLiteral         = errors.NewKind("invalid UUID literal: %s")
	ErrInvalidHexLiteral          = errors.NewKind("invalid hex literal: %s")
	ErrInvalidNumericLiteral      = errors.NewKind("invalid numeric literal: %s")
)
