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
	"strconv"
	"strings"
)

// ParseInterval parses the text of an `INTERVAL '<value>' <unit>` literal
// (or a CAST(text AS INTERVAL <unit>), which shares the same grammar) into
// an Interval, per spec.md §6's closed unit set and §8 scenario 5's
// worked examples. unit has already been validated by the caller against
// that closed set.
func ParseInterval(unit, text string) (Value, error) {
	text = strings.TrimSpace(text)
	switch unit {
	case "YEAR":
		n, err := strconv.Atoi(text)
		if err != nil {
			return Null, ErrInvalidIntervalLiteral.New(text, unit)
		}
		return NewInterval(int32(n*12), 0), nil
	case "MONTH":
		n, err := strconv.Atoi(text)
		if err != nil {
			return Null, ErrInvalidIntervalLiteral.New(text, unit)
		}
		return NewInterval(int32(n), 0), nil
	case "YEAR TO MONTH":
		y, m, ok := splitInt2(text, "-")
		if !ok {
			return Null, ErrInvalidIntervalLiteral.New(text, unit)
		}
		return NewInterval(int32(y*12+m), 0), nil
	case "DAY":
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Null, ErrInvalidIntervalLiteral.New(text, unit)
		}
		return NewInterval(0, int64(f*86400*1_000_000)), nil
	case "HOUR":
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Null, ErrInvalidIntervalLiteral.New(text, unit)
		}
		return NewInterval(0, int64(f*3600*1_000_000)), nil
	case "MINUTE":
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Null, ErrInvalidIntervalLiteral.New(text, unit)
		}
		return NewInterval(0, int64(f*60*1_000_000)), nil
	case "SECOND":
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Null, ErrInvalidIntervalLiteral.New(text, unit)
		}
		return NewInterval(0, int64(f*1_000_000)), nil
	case "DAY TO HOUR":
		d, rest, ok := splitDayRest(text)
		if !ok {
			return Null, ErrInvalidIntervalLiteral.New(text, unit)
		}
		h, err := strconv.Atoi(rest)
		if err != nil {
			return Null, ErrInvalidIntervalLiteral.New(text, unit)
		}
		return NewInterval(0, (d*24+int64(h))*3600*1_000_000), nil
	case "DAY TO MINUTE":
		d, rest, ok := splitDayRest(text)
		if !ok {
			return Null, ErrInvalidIntervalLiteral.New(text, unit)
		}
		h, m, ok := splitInt2(rest, ":")
		if !ok {
			return Null, ErrInvalidIntervalLiteral.New(text, unit)
		}
		return NewInterval(0, ((d*24+int64(h))*60+int64(m))*60*1_000_000), nil
	case "DAY TO SECOND":
		d, rest, ok := splitDayRest(text)
		if !ok {
			return Null, ErrInvalidIntervalLiteral.New(text, unit)
		}
		h, m, s, ok := splitHMS(rest)
		if !ok {
			return Null, ErrInvalidIntervalLiteral.New(text, unit)
		}
		totalSeconds := float64((d*24+int64(h))*60+int64(m))*60 + s
		return NewInterval(0, int64(totalSeconds*1_000_000)), nil
	case "HOUR TO MINUTE":
		h, m, ok := splitInt2(text, ":")
		if !ok {
			return Null, ErrInvalidIntervalLiteral.New(text, unit)
		}
		return NewInterval(0, int64(h*60+m)*60*1_000_000), nil
	case "HOUR TO SECOND":
		h, m, s, ok := splitHMS(text)
		if !ok {
			return Null, ErrInvalidIntervalLiteral.New(text, unit)
		}
		totalSeconds := float64(h*60+m)*60 + s
		return NewInterval(0, int64(totalSeconds*1_000_000)), nil
	case "MINUTE TO SECOND":
		parts := strings.SplitN(text, ":", 2)
		if len(parts) != 2 {
			return Null, ErrInvalidIntervalLiteral.New(text, unit)
		}
		m, err := strconv.Atoi(parts[0])
		if err != nil {
			return Null, ErrInvalidIntervalLiteral.New(text, unit)
		}
		s, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return Null, ErrInvalidIntervalLiteral.New(text, unit)
		}
		return NewInterval(0, int64((float64(m)*60+s)*1_000_000)), nil
	default:
		return Null, ErrInvalidIntervalLiteral.New(text, unit)
	}
}

// splitDayRest splits "D <rest>" into the leading day count and the
// remaining clock text.
func splitDayRest(text string) (int64, string, bool) {
	parts := strings.SplitN(text, " ", 2)
	if len(parts) != 2 {
		return 0, "", false
	}
	d, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, "", false
	}
	return d, strings.TrimSpace(parts[1]), true
}

func splitInt2(text, sep string) (int, int, bool) {
	parts := strings.SplitN(text, sep, 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	a, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	b, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return a, b, true
}

// splitHMS splits "HH:MM:SS[.ffff]" into hour, minute and a fractional
// second count.
func splitHMS(text string) (h, m int, s float64, ok bool) {
	parts := strings.SplitN(text, ":", 3)
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, false
	}
	m, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, false
	}
	s, err = strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, 0, 0, false
	}
	return h, m, s, true
}
