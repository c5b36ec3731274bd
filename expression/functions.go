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

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/glaive-db/glaive/ast"
	"github.com/glaive-db/glaive/sql"
)

func (e *Evaluator) evalFunctionCall(fc *ast.FunctionCall) (sql.Value, error) {
	args := make([]sql.Value, 0, len(fc.Args))
	for _, a := range fc.Args {
		v, err := e.Eval(a)
		if err != nil {
			return sql.Null, err
		}
		args = append(args, v)
	}
	name := strings.ToUpper(fc.Name)
	fn, ok := scalarFunctions[name]
	if !ok {
		return sql.Null, ErrUnknownFunction.New(fc.Name)
	}
	v, err := fn(args)
	if sql.ErrFunctionRequiresStringValue.Is(err) {
		return sql.Null, sql.ErrFunctionRequiresStringValue.New(name)
	}
	return v, err
}

type scalarFunc func(args []sql.Value) (sql.Value, error)

// scalarFunctions implements the registry translate/functions.go
// validates arity against (spec.md §4.4). Every entry here propagates
// NULL per the general rule: a NULL argument yields a NULL result,
// except where a function's own semantics say otherwise (COALESCE,
// IFNULL, GREATEST, LEAST skip NULLs rather than propagate them;
// CONCAT_WS skips NULL values after its separator; APPEND and PREPEND
// add a NULL item to the list as an element).
var scalarFunctions = map[string]scalarFunc{
	"LOWER":   str1(strings.ToLower),
	"UPPER":   str1(strings.ToUpper),
	"TRIM":    str1(strings.TrimSpace),
	"REVERSE": str1(reverseString),
	"LENGTH":  fnLength,
	"LEFT":    fnLeft,
	"RIGHT":   fnRight,
	"LTRIM":   fnLTrim,
	"RTRIM":   fnRTrim,
	"CONCAT":  fnConcat,
	"CONCAT_WS": fnConcatWS,
	"SUBSTR":  fnSubstr,
	"REPLACE": fnReplace,
	"REPEAT":  fnRepeat,
	"LPAD":    fnLPad,
	"RPAD":    fnRPad,
	"ASCII":   fnAscii,
	"CHR":     fnChr,
	"POSITION": fnPosition,
	"FORMAT":  fnFormat,
	"TO_DATE": fnToDate,
	"TO_TIMESTAMP": fnToTimestamp,

	"ABS":   fnAbs,
	"CEIL":  fnCeil,
	"FLOOR": fnFloor,
	"ROUND": fnRound,
	"SQRT":  fnSqrt,
	"POWER": fnPower,
	"LOG":   fnLog,
	"LN":    fnLn,
	"EXP":   fnExp,
	"SIGN":  fnSign,
	"GCD":   fnGCD,
	"LCM":   fnLCM,
	"DIV":   fnDiv,
	"MOD":   fnMod,

	"NOW":           fnNow,
	"GENERATE_UUID": fnGenerateUUID,
	"COALESCE":      fnCoalesce,
	"IFNULL":        fnIfNull,
	"GREATEST":      fnGreatest,
	"LEAST":         fnLeast,

	"KEYS":    fnKeys,
	"VALUES":  fnValues,
	"APPEND":  fnAppend,
	"PREPEND": fnPrepend,
}

func str1(f func(string) string) scalarFunc {
	return func(args []sql.Value) (sql.Value, error) {
		if args[0].IsNull() {
			return sql.Null, nil
		}
		s, err := asString(args[0])
		if err != nil {
			return sql.Null, err
		}
		return sql.NewStr(f(s)), nil
	}
}

func asString(v sql.Value) (string, error) {
	if v.Kind() != sql.KindStr {
		return "", sql.ErrFunctionRequiresStringValue.New(v.Kind())
	}
	return v.Str(), nil
}

func asInt(v sql.Value) (int64, error) {
	n, ok := v.AsInt64()
	if !ok {
		return 0, sql.ErrInvalidType.New(v.Kind())
	}
	return n, nil
}

func asFloat(v sql.Value) (float64, error) {
	f, ok := v.AsFloat64()
	if !ok {
		return 0, sql.ErrInvalidType.New(v.Kind())
	}
	return f, nil
}

func reverseString(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func fnLength(args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null, nil
	}
	s, err := asString(args[0])
	if err != nil {
		return sql.Null, err
	}
	return sql.NewI64(int64(len([]rune(s)))), nil
}

func fnLeft(args []sql.Value) (sql.Value, error) {
	if anyNull(args) {
		return sql.Null, nil
	}
	s, err := asString(args[0])
	if err != nil {
		return sql.Null, err
	}
	n, err := asInt(args[1])
	if err != nil {
		return sql.Null, err
	}
	r := []rune(s)
	if n < 0 {
		n = 0
	}
	if n > int64(len(r)) {
		n = int64(len(r))
	}
	return sql.NewStr(string(r[:n])), nil
}

func fnRight(args []sql.Value) (sql.Value, error) {
	if anyNull(args) {
		return sql.Null, nil
	}
	s, err := asString(args[0])
	if err != nil {
		return sql.Null, err
	}
	n, err := asInt(args[1])
	if err != nil {
		return sql.Null, err
	}
	r := []rune(s)
	if n < 0 {
		n = 0
	}
	if n > int64(len(r)) {
		n = int64(len(r))
	}
	return sql.NewStr(string(r[int64(len(r))-n:])), nil
}

func trimSet(args []sql.Value) (string, string, error) {
	s, err := asString(args[0])
	if err != nil {
		return "", "", err
	}
	cut := " "
	if len(args) == 2 && !args[1].IsNull() {
		cut, err = asString(args[1])
		if err != nil {
			return "", "", err
		}
	}
	return s, cut, nil
}

func fnLTrim(args []sql.Value) (sql.Value, error) {
	if anyNull(args) {
		return sql.Null, nil
	}
	s, cut, err := trimSet(args)
	if err != nil {
		return sql.Null, err
	}
	return sql.NewStr(strings.TrimLeft(s, cut)), nil
}

func fnRTrim(args []sql.Value) (sql.Value, error) {
	if anyNull(args) {
		return sql.Null, nil
	}
	s, cut, err := trimSet(args)
	if err != nil {
		return sql.Null, err
	}
	return sql.NewStr(strings.TrimRight(s, cut)), nil
}

func fnConcat(args []sql.Value) (sql.Value, error) {
	var b strings.Builder
	for _, a := range args {
		if a.IsNull() {
			return sql.Null, nil
		}
		s, err := asString(a)
		if err != nil {
			return sql.Null, err
		}
		b.WriteString(s)
	}
	return sql.NewStr(b.String()), nil
}

func fnConcatWS(args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null, nil
	}
	sep, err := asString(args[0])
	if err != nil {
		return sql.Null, err
	}
	var parts []string
	for _, a := range args[1:] {
		if a.IsNull() {
			continue
		}
		s, err := asString(a)
		if err != nil {
			return sql.Null, err
		}
		parts = append(parts, s)
	}
	return sql.NewStr(strings.Join(parts, sep)), nil
}

func fnSubstr(args []sql.Value) (sql.Value, error) {
	if anyNull(args) {
		return sql.Null, nil
	}
	s, err := asString(args[0])
	if err != nil {
		return sql.Null, err
	}
	start, err := asInt(args[1])
	if err != nil {
		return sql.Null, err
	}
	r := []rune(s)
	idx := start - 1
	if idx < 0 {
		idx = 0
	}
	if idx > int64(len(r)) {
		idx = int64(len(r))
	}
	end := int64(len(r))
	if len(args) == 3 && !args[2].IsNull() {
		n, err := asInt(args[2])
		if err != nil {
			return sql.Null, err
		}
		if idx+n < end {
			end = idx + n
		}
	}
	if end < idx {
		end = idx
	}
	return sql.NewStr(string(r[idx:end])), nil
}

func fnReplace(args []sql.Value) (sql.Value, error) {
	if anyNull(args) {
		return sql.Null, nil
	}
	s, err := asString(args[0])
	if err != nil {
		return sql.Null, err
	}
	from, err := asString(args[1])
	if err != nil {
		return sql.Null, err
	}
	to, err := asString(args[2])
	if err != nil {
		return sql.Null, err
	}
	return sql.NewStr(strings.ReplaceAll(s, from, to)), nil
}

func fnRepeat(args []sql.Value) (sql.Value, error) {
	if anyNull(args) {
		return sql.Null, nil
	}
	s, err := asString(args[0])
	if err != nil {
		return sql.Null, err
	}
	n, err := asInt(args[1])
	if err != nil {
		return sql.Null, err
	}
	if n < 0 {
		n = 0
	}
	return sql.NewStr(strings.Repeat(s, int(n))), nil
}

func pad(args []sql.Value, right bool) (sql.Value, error) {
	if anyNull(args) {
		return sql.Null, nil
	}
	s, err := asString(args[0])
	if err != nil {
		return sql.Null, err
	}
	length, err := asInt(args[1])
	if err != nil {
		return sql.Null, err
	}
	fill := " "
	if len(args) == 3 && !args[2].IsNull() {
		fill, err = asString(args[2])
		if err != nil {
			return sql.Null, err
		}
	}
	r := []rune(s)
	if int64(len(r)) >= length || fill == "" {
		if int64(len(r)) > length {
			if right {
				return sql.NewStr(string(r[:length])), nil
			}
			return sql.NewStr(string(r[int64(len(r))-length:])), nil
		}
		return sql.NewStr(s), nil
	}
	fillRunes := []rune(fill)
	need := int(length) - len(r)
	var padRunes []rune
	for len(padRunes) < need {
		padRunes = append(padRunes, fillRunes...)
	}
	padRunes = padRunes[:need]
	if right {
		return sql.NewStr(s + string(padRunes)), nil
	}
	return sql.NewStr(string(padRunes) + s), nil
}

func fnLPad(args []sql.Value) (sql.Value, error) { return pad(args, false) }
func fnRPad(args []sql.Value) (sql.Value, error) { return pad(args, true) }

func fnAscii(args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null, nil
	}
	s, err := asString(args[0])
	if err != nil {
		return sql.Null, err
	}
	if s == "" {
		return sql.NewI64(0), nil
	}
	return sql.NewI64(int64([]rune(s)[0])), nil
}

func fnChr(args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null, nil
	}
	n, err := asInt(args[0])
	if err != nil {
		return sql.Null, err
	}
	return sql.NewStr(string(rune(n))), nil
}

func fnPosition(args []sql.Value) (sql.Value, error) {
	if anyNull(args) {
		return sql.Null, nil
	}
	needle, err := asString(args[0])
	if err != nil {
		return sql.Null, err
	}
	hay, err := asString(args[1])
	if err != nil {
		return sql.Null, err
	}
	idx := strings.Index(hay, needle)
	if idx < 0 {
		return sql.NewI64(0), nil
	}
	return sql.NewI64(int64(len([]rune(hay[:idx]))) + 1), nil
}

func fnFormat(args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null, nil
	}
	layout, err := asString(args[0])
	if err != nil {
		return sql.Null, err
	}
	if len(args) < 2 || args[1].IsNull() {
		return sql.Null, nil
	}
	switch args[1].Kind() {
	case sql.KindDate:
		return sql.NewStr(args[1].Date().Format(goLayout(layout))), nil
	case sql.KindTimestamp:
		return sql.NewStr(args[1].Timestamp().Format(goLayout(layout))), nil
	default:
		return sql.Null, sql.ErrInvalidType.New(args[1].Kind())
	}
}

// goLayout maps a handful of common SQL date-format tokens to Go's
// reference-time layout; unrecognized literal text passes through.
func goLayout(sqlLayout string) string {
	replacer := strings.NewReplacer(
		"YYYY", "2006", "MM", "01", "DD", "02",
		"HH24", "15", "MI", "04", "SS", "05",
	)
	return replacer.Replace(sqlLayout)
}

func fnToDate(args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null, nil
	}
	s, err := asString(args[0])
	if err != nil {
		return sql.Null, err
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return sql.Null, err
	}
	return sql.NewDate(t), nil
}

func fnToTimestamp(args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null, nil
	}
	s, err := asString(args[0])
	if err != nil {
		return sql.Null, err
	}
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return sql.Null, err
	}
	return sql.NewTimestamp(t.UTC()), nil
}

func anyNull(args []sql.Value) bool {
	for _, a := range args {
		if a.IsNull() {
			return true
		}
	}
	return false
}

func toDecimalValue(v sql.Value) (decimal.Decimal, error) {
	if v.Kind() == sql.KindDecimal {
		return v.Decimal(), nil
	}
	if f, ok := v.AsFloat64(); ok {
		return decimal.NewFromFloat(f), nil
	}
	return decimal.Decimal{}, sql.ErrInvalidType.New(v.Kind())
}

func fnAbs(args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null, nil
	}
	switch args[0].Kind() {
	case sql.KindDecimal:
		return sql.NewDecimal(args[0].Decimal().Abs()), nil
	case sql.KindI8, sql.KindI16, sql.KindI32, sql.KindI64, sql.KindI128,
		sql.KindU8, sql.KindU16, sql.KindU32, sql.KindU64, sql.KindU128:
		n, _ := args[0].AsInt64()
		if n < 0 {
			n = -n
		}
		return sql.NewI64(n), nil
	default:
		f, err := asFloat(args[0])
		if err != nil {
			return sql.Null, err
		}
		return sql.NewF64(math.Abs(f)), nil
	}
}

func fnCeil(args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null, nil
	}
	f, err := asFloat(args[0])
	if err != nil {
		return sql.Null, err
	}
	return sql.NewF64(math.Ceil(f)), nil
}

func fnFloor(args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null, nil
	}
	f, err := asFloat(args[0])
	if err != nil {
		return sql.Null, err
	}
	return sql.NewF64(math.Floor(f)), nil
}

func fnRound(args []sql.Value) (sql.Value, error) {
	if anyNull(args) {
		return sql.Null, nil
	}
	f, err := asFloat(args[0])
	if err != nil {
		return sql.Null, err
	}
	places := 0
	if len(args) == 2 && !args[1].IsNull() {
		n, err := asInt(args[1])
		if err != nil {
			return sql.Null, err
		}
		places = int(n)
	}
	mult := math.Pow(10, float64(places))
	return sql.NewF64(math.Round(f*mult) / mult), nil
}

func fnSqrt(args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null, nil
	}
	f, err := asFloat(args[0])
	if err != nil {
		return sql.Null, err
	}
	return sql.NewF64(math.Sqrt(f)), nil
}

func fnPower(args []sql.Value) (sql.Value, error) {
	if anyNull(args) {
		return sql.Null, nil
	}
	base, err := asFloat(args[0])
	if err != nil {
		return sql.Null, err
	}
	exp, err := asFloat(args[1])
	if err != nil {
		return sql.Null, err
	}
	return sql.NewF64(math.Pow(base, exp)), nil
}

func fnLog(args []sql.Value) (sql.Value, error) {
	if anyNull(args) {
		return sql.Null, nil
	}
	if len(args) == 1 {
		f, err := asFloat(args[0])
		if err != nil {
			return sql.Null, err
		}
		return sql.NewF64(math.Log10(f)), nil
	}
	base, err := asFloat(args[0])
	if err != nil {
		return sql.Null, err
	}
	x, err := asFloat(args[1])
	if err != nil {
		return sql.Null, err
	}
	return sql.NewF64(math.Log(x) / math.Log(base)), nil
}

func fnLn(args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null, nil
	}
	f, err := asFloat(args[0])
	if err != nil {
		return sql.Null, err
	}
	return sql.NewF64(math.Log(f)), nil
}

func fnExp(args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null, nil
	}
	f, err := asFloat(args[0])
	if err != nil {
		return sql.Null, err
	}
	return sql.NewF64(math.Exp(f)), nil
}

func fnSign(args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null, nil
	}
	f, err := asFloat(args[0])
	if err != nil {
		return sql.Null, err
	}
	switch {
	case f > 0:
		return sql.NewI64(1), nil
	case f < 0:
		return sql.NewI64(-1), nil
	default:
		return sql.NewI64(0), nil
	}
}

func fnGCD(args []sql.Value) (sql.Value, error) {
	if anyNull(args) {
		return sql.Null, nil
	}
	a, err := asInt(args[0])
	if err != nil {
		return sql.Null, err
	}
	b, err := asInt(args[1])
	if err != nil {
		return sql.Null, err
	}
	return sql.NewI64(gcd(a, b)), nil
}

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func fnLCM(args []sql.Value) (sql.Value, error) {
	if anyNull(args) {
		return sql.Null, nil
	}
	a, err := asInt(args[0])
	if err != nil {
		return sql.Null, err
	}
	b, err := asInt(args[1])
	if err != nil {
		return sql.Null, err
	}
	g := gcd(a, b)
	if g == 0 {
		return sql.NewI64(0), nil
	}
	return sql.NewI64(a / g * b), nil
}

func fnDiv(args []sql.Value) (sql.Value, error) {
	if anyNull(args) {
		return sql.Null, nil
	}
	a, err := asInt(args[0])
	if err != nil {
		return sql.Null, err
	}
	b, err := asInt(args[1])
	if err != nil {
		return sql.Null, err
	}
	if b == 0 {
		return sql.Null, ErrDivisionByZero.New()
	}
	return sql.NewI64(a / b), nil
}

func fnMod(args []sql.Value) (sql.Value, error) {
	if anyNull(args) {
		return sql.Null, nil
	}
	a, err := asInt(args[0])
	if err != nil {
		return sql.Null, err
	}
	b, err := asInt(args[1])
	if err != nil {
		return sql.Null, err
	}
	if b == 0 {
		return sql.Null, ErrDivisionByZero.New()
	}
	return sql.NewI64(a % b), nil
}

// Clock is the time source NOW() reads; overridable for deterministic
// tests. NOW() and GENERATE_UUID() are the registry's non-pure entries.
var Clock = time.Now

func fnNow(args []sql.Value) (sql.Value, error) {
	return sql.NewTimestamp(Clock().UTC()), nil
}

func fnGenerateUUID(args []sql.Value) (sql.Value, error) {
	return sql.NewUuid(uuid.New()), nil
}

func fnCoalesce(args []sql.Value) (sql.Value, error) {
	for _, a := range args {
		if !a.IsNull() {
			return a, nil
		}
	}
	return sql.Null, nil
}

func fnIfNull(args []sql.Value) (sql.Value, error) {
	if !args[0].IsNull() {
		return args[0], nil
	}
	return args[1], nil
}

func fnGreatest(args []sql.Value) (sql.Value, error) {
	return extremum(args, true)
}

func fnLeast(args []sql.Value) (sql.Value, error) {
	return extremum(args, false)
}

func extremum(args []sql.Value, greatest bool) (sql.Value, error) {
	var best sql.Value
	found := false
	for _, a := range args {
		if a.IsNull() {
			continue
		}
		if !found {
			best, found = a, true
			continue
		}
		c, err := a.Compare(best)
		if err != nil {
			return sql.Null, err
		}
		if (greatest && c > 0) || (!greatest && c < 0) {
			best = a
		}
	}
	if !found {
		return sql.Null, nil
	}
	return best, nil
}

func fnKeys(args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null, nil
	}
	if args[0].Kind() != sql.KindMap {
		return sql.Null, sql.ErrInvalidType.New(args[0].Kind())
	}
	m := args[0].Map()
	out := make([]sql.Value, 0, len(m))
	for k := range m {
		out = append(out, sql.NewStr(k))
	}
	return sql.NewList(out), nil
}

func fnValues(args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null, nil
	}
	if args[0].Kind() != sql.KindMap {
		return sql.Null, sql.ErrInvalidType.New(args[0].Kind())
	}
	m := args[0].Map()
	out := make([]sql.Value, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return sql.NewList(out), nil
}

func fnAppend(args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null, nil
	}
	if args[0].Kind() != sql.KindList {
		return sql.Null, sql.ErrInvalidType.New(args[0].Kind())
	}
	items := append(append([]sql.Value{}, args[0].List()...), args[1])
	return sql.NewList(items), nil
}

func fnPrepend(args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null, nil
	}
	if args[0].Kind() != sql.KindList {
		return sql.Null, sql.ErrInvalidType.New(args[0].Kind())
	}
	items := append([]sql.Value{args[1]}, args[0].List()...)
	return sql.NewList(items), nil
}
