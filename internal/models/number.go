// ABOUTME: Number type that normalizes backend numeric representations.
// ABOUTME: Scans floats, ints, and decimal text into a float64 value.
package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNotFinite is returned for NaN and infinite values, which JSON cannot carry.
var ErrNotFinite = errors.New("number must be finite")

// Number is a numeric column value. Postgres NUMERIC columns arrive as
// decimal text and JSON payloads may quote numbers; both end up as float64.
type Number float64

// Float64 returns the value as a float64.
func (n Number) Float64() float64 {
	return float64(n)
}

// Int returns the value rounded to the nearest integer.
func (n Number) Int() int {
	return int(math.Round(float64(n)))
}

// IsFinite reports whether n is neither NaN nor infinite.
func (n Number) IsFinite() bool {
	f := float64(n)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Scan implements sql.Scanner.
func (n *Number) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*n = 0
	case float64:
		*n = Number(v)
	case float32:
		*n = Number(v)
	case int64:
		*n = Number(v)
	case int32:
		*n = Number(v)
	case int:
		*n = Number(v)
	case []byte:
		return n.parse(string(v))
	case string:
		return n.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into Number", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (n Number) Value() (driver.Value, error) {
	return float64(n), nil
}

// UnmarshalJSON accepts both JSON numbers and numeric strings.
func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*n = 0
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	return n.parse(s)
}

// ParseNumber parses a decimal string such as a CLI argument or form value.
func ParseNumber(s string) (Number, error) {
	var n Number
	if err := n.parse(s); err != nil {
		return 0, err
	}
	return n, nil
}

func (n *Number) parse(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", s, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("parse number %q: %w", s, ErrNotFinite)
	}
	*n = Number(f)
	return nil
}
