package query

import (
	"strconv"
	"strings"
	"time"
)

// Value is a coerced filter value.
//
// This is a sealed interface - only types in this package implement it.
// Coercion happens once, at parse time; the executor switches on the
// concrete type and never re-parses raw text.
//
// Value types:
//   - StringValue: anything that is not a number, bool or date
//   - NumberValue: full numeric values and "NN%" percentages
//   - BoolValue: "true" / "false" (any case)
//   - DateValue: date fields only, relative keywords already resolved
type Value interface {
	queryValue() // Marker method - seals interface to this package
	String() string
}

var (
	_ Value = StringValue("")
	_ Value = NumberValue(0)
	_ Value = BoolValue(false)
	_ Value = DateValue{}
)

type StringValue string

func (StringValue) queryValue()      {}
func (v StringValue) String() string { return string(v) }

type NumberValue float64

func (NumberValue) queryValue() {}
func (v NumberValue) String() string {
	return strconv.FormatFloat(float64(v), 'f', -1, 64)
}

type BoolValue bool

func (BoolValue) queryValue() {}
func (v BoolValue) String() string {
	if v {
		return "true"
	}
	return "false"
}

// DateValue is a calendar day, truncated to midnight in the clock's
// location.
type DateValue struct {
	Time time.Time
}

func (DateValue) queryValue()      {}
func (v DateValue) String() string { return v.Time.Format("2006-01-02") }

// dateLayouts are tried in order for non-keyword date values.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC3339,
}

// CoerceValue converts a raw value token into a typed Value for the given
// field. Order of rules:
//   - a trailing '%' with a numeric prefix parses as a percentage number
//   - a date field goes through date parsing (relative keywords resolve
//     against now; anything else tries the known layouts)
//   - a value that parses fully as a number becomes numeric
//   - "true"/"false" (any case) become booleans
//   - everything else stays a string
//
// An unparsable date is a field error carrying the offending position.
func CoerceValue(field Field, raw string, pos int, now time.Time) (Value, error) {
	if strings.HasSuffix(raw, "%") {
		if n, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64); err == nil {
			return NumberValue(n), nil
		}
	}
	if field == FieldDate {
		return coerceDate(raw, pos, now)
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return NumberValue(n), nil
	}
	switch strings.ToLower(raw) {
	case "true":
		return BoolValue(true), nil
	case "false":
		return BoolValue(false), nil
	}
	return StringValue(raw), nil
}

// coerceDate resolves relative date keywords against now, at parse time,
// so the same literal query yields different dates on different days.
// Week keywords resolve to the Monday of the respective week.
func coerceDate(raw string, pos int, now time.Time) (Value, error) {
	switch strings.ToLower(raw) {
	case "today":
		return DateValue{startOfDay(now)}, nil
	case "yesterday":
		return DateValue{startOfDay(now).AddDate(0, 0, -1)}, nil
	case "this-week":
		return DateValue{startOfWeek(now)}, nil
	case "last-week":
		return DateValue{startOfWeek(now).AddDate(0, 0, -7)}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, now.Location()); err == nil {
			return DateValue{startOfDay(t)}, nil
		}
	}
	return nil, &ParseError{
		Code:     ErrCodeBadValue,
		Message:  "unparsable date " + strconv.Quote(raw),
		Position: pos,
		Field:    FieldDate,
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns midnight of the Monday on or before t.
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return startOfDay(t).AddDate(0, 0, -(weekday - 1))
}
