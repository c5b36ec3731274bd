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

import "strings"

// arity describes a function's accepted argument count, either an exact
// count (Min == Max) or a range.
type arity struct {
	Min, Max int
}

// functionRegistry is the fixed, case-insensitive function name → arity
// table the translator validates calls against (spec.md §4.1, §4.4). The
// expression package owns evaluation; this table only owns shape
// checking at translate time, so bad arity is rejected before planning
// rather than at first evaluation.
var functionRegistry = map[string]arity{
	"LOWER":     {1, 1},
	"UPPER":     {1, 1},
	"LEFT":      {2, 2},
	"RIGHT":     {2, 2},
	"LTRIM":     {1, 2},
	"RTRIM":     {1, 2},
	"TRIM":      {1, 1},
	"LENGTH":    {1, 1},
	"CONCAT":    {1, 64},
	"SUBSTR":    {2, 3},
	"REPLACE":   {3, 3},
	"REPEAT":    {2, 2},
	"REVERSE":   {1, 1},
	"LPAD":      {2, 3},
	"RPAD":      {2, 3},
	"ASCII":     {1, 1},
	"CHR":       {1, 1},
	"POSITION":  {2, 2},
	"ABS":       {1, 1},
	"CEIL":      {1, 1},
	"FLOOR":     {1, 1},
	"ROUND":     {1, 2},
	"SQRT":      {1, 1},
	"POWER":     {2, 2},
	"LOG":       {1, 2},
	"LN":        {1, 1},
	"EXP":       {1, 1},
	"SIGN":      {1, 1},
	"GCD":       {2, 2},
	"LCM":       {2, 2},
	"DIV":       {2, 2},
	"MOD":       {2, 2},
	"NOW":       {0, 0},
	"COALESCE":  {1, 64},
	"IFNULL":    {2, 2},
	"GREATEST":  {1, 64},
	"LEAST":     {1, 64},
	"KEYS":      {1, 1},
	"VALUES":    {1, 1},
	"APPEND":    {2, 2},
	"PREPEND":   {2, 2},
	"CONCAT_WS": {2, 64},
	"FORMAT":    {2, 64},
	"TO_DATE":   {1, 1},
	"TO_TIMESTAMP": {1, 1},
	"GENERATE_UUID": {0, 0},
}

// aggregateNames is the closed set recognized as aggregates rather than
// scalar functions (spec.md §4.4).
var aggregateNames = map[string]bool{
	"COUNT": true, "SUM": true, "AVG": true, "MIN": true, "MAX": true,
	"STDEV": true, "VARIANCE": true,
}

func lookupFunction(name string) (arity, bool) {
	a, ok := functionRegistry[strings.ToUpper(name)]
	return a, ok
}

func isAggregateName(name string) bool {
	return aggregateNames[strings.ToUpper(name)]
}

// checkArity validates argCount against a's bounds, producing the two
// distinct structured errors spec.md §4.1 names.
func checkArity(name string, a arity, argCount int) error {
	if a.Min == a.Max {
		if argCount != a.Min {
			return ErrFunctionArgsLengthNotMatching.New(strings.ToUpper(name), a.Min, argCount)
		}
		return nil
	}
	if argCount < a.Min || argCount > a.Max {
		return ErrFunctionArgsLengthRangeNotMatching.New(strings.ToUpper(name), a.Min, a.Max, argCount)
	}
	return nil
}
