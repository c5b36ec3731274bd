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

import errors "gopkg.in/src-d/go-errors.v1"

// Value/Schema/Row error kinds (spec.md §7 groups: Value, Row, Schema).
// Every Err* is a Kind: call .New(args...) to produce a concrete error,
// .Is(err) to test membership. This mirrors the teacher's own
// ErrTableNotFound.New(...) convention (sql/errors_test.go).
var (
	ErrLackOfRequiredColumn      = errors.NewKind("lack of required column: %s")
	ErrColumnAndValuesNotMatched = errors.NewKind("column and values not matched")
	ErrTooManyValues             = errors.NewKind("literals have more values than target columns")
	ErrValuesTypeDifferent       = errors.NewKind("VALUES types %s and %s cannot be matched")
	ErrNumberOfValuesDifferent   = errors.NewKind("VALUES lists must all be the same length")
	ErrConflictOnEmptyRow        = errors.NewKind("row cannot be empty")

	ErrNullValueOnNotNullColumn = errors.NewKind("column %q does not allow NULL values")
	ErrInvalidType              = errors.NewKind("invalid type: %s")
	ErrImpossibleCast           = errors.NewKind("cannot cast %s to %s")
	ErrLiteralCastFromTextToIntegerFailed = errors.NewKind("literal cast from text to integer failed: %s")
	ErrLiteralCastToBooleanFailed         = errors.NewKind("literal cast to boolean failed: %s")
	ErrFunctionRequiresStringValue        = errors.NewKind("function %s requires a string value")

	ErrTableAlreadyExists = errors.NewKind("table %q already exists")
	ErrTableNotFound      = errors.NewKind("table %q not found")
	ErrColumnNotFound     = errors.NewKind("column %q not found")
	ErrAmbiguousColumn    = errors.NewKind("ambiguous column %q")

	ErrInvalidIntervalLiteral = errors.NewKind("invalid interval literal %q for unit %s")

	ErrReadOnly             = errors.NewKind("engine is read-only")
	ErrDatabaseWriteLocked  = errors.NewKind("database is locked for writes")
	ErrFeatureNotSupported  = errors.NewKind("feature not supported: %s")
	ErrUnsupportedFeature   = ErrFeatureNotSupported
)

// CastSQLError classifies err, useful for integrators that need to map
// engine errors onto a wire-protocol error code; glaive itself does not
// speak any wire protocol, so this simply reports whether err originated
// as one of the structured Kinds above.
func CastSQLError(err error) (kind string, ok bool) {
	if err == nil {
		return "", false
	}
	named := map[string]*errors.Kind{
		"table not found":       ErrTableNotFound,
		"column not found":      ErrColumnNotFound,
		"ambiguous column":      ErrAmbiguousColumn,
		"table already exists":  ErrTableAlreadyExists,
		"invalid type":          ErrInvalidType,
		"impossible cast":       ErrImpossibleCast,
	}
	for name, k := range named {
		if k.Is(err) {
			return name, true
		}
	}
	return "", false
}
