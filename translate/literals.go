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

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/glaive-db/glaive/sql"
)

func sqlDecimalFromString(text string) (sql.Value, error) {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return sql.Null, err
	}
	return sql.NewDecimal(d), nil
}

func hexDecode(text string) ([]byte, error) {
	return hex.DecodeString(text)
}

// parseTimeOfDay accepts "HH:MM:SS[.fff]".
func parseTimeOfDay(text string) (time.Duration, error) {
	parts := strings.SplitN(text, ".", 2)
	t, err := time.Parse("15:04:05", parts[0])
	if err != nil {
		return 0, err
	}
	d := time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second
	if len(parts) == 2 {
		frac, err := strconv.ParseFloat("0."+parts[1], 64)
		if err != nil {
			return 0, err
		}
		d += time.Duration(frac * float64(time.Second))
	}
	return d, nil
}

// parseTimestamp accepts "YYYY-MM-DD HH:MM:SS[.fff]" (spec.md §6).
func parseTimestamp(text string) (time.Time, error) {
	layouts := []string{"2006-01-02 15:04:05.999999999", "2006-01-02 15:04:05"}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, text)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("translate: %w", lastErr)
}

func parseUUID(text string) (sql.Value, error) {
	u, err := uuid.Parse(text)
	if err != nil {
		return sql.Null, err
	}
	return sql.NewUuid(u), nil
}
