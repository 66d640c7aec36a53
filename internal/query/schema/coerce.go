package schema

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/syntrixbase/wallpaper/pkg/model"
)

// coerceFunc converts a raw scalar into the declared kind. A non-empty
// message means the value could not be converted.
type coerceFunc func(v interface{}) (interface{}, string)

// dateLayouts are tried in order for date-like strings, before the
// Unix-millisecond reading of integer strings.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01",
	"2006",
}

var coercers = map[model.Kind]coerceFunc{
	model.KindString:  coerceString,
	model.KindNumber:  coerceNumber,
	model.KindBoolean: coerceBoolean,
	model.KindDate:    coerceDate,
}

// Coerce converts a bare value to kind the way a field of that kind does.
func Coerce(kind model.Kind, v interface{}) (interface{}, error) {
	fn, ok := coercers[kind]
	if !ok {
		return nil, fmt.Errorf("no validator for field kind %q", kind)
	}
	out, msg := fn(v)
	if msg != "" {
		return nil, errors.New(msg)
	}
	return out, nil
}

func coerceString(v interface{}) (interface{}, string) {
	if s, ok := v.(string); ok {
		return s, ""
	}
	return nil, fmt.Sprintf("expected string, received %s", describe(v))
}

// coerceObjectID accepts ObjectIDs and their 24 character hex form.
func coerceObjectID(v interface{}) (interface{}, string) {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id, ""
	case string:
		oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
		if err != nil {
			return nil, fmt.Sprintf("expected ObjectId, received %q", id)
		}
		return oid, ""
	}
	return nil, fmt.Sprintf("expected ObjectId, received %s", describe(v))
}

func coerceNumber(v interface{}) (interface{}, string) {
	if f, ok := toFloat(v); ok {
		return f, ""
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Sprintf("expected number, received %q", s)
		}
		return f, ""
	}
	return nil, fmt.Sprintf("expected number, received %s", describe(v))
}

func coerceBoolean(v interface{}) (interface{}, string) {
	switch b := v.(type) {
	case bool:
		return b, ""
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return nil, fmt.Sprintf("expected boolean, received %q", b)
		}
		return parsed, ""
	}
	return nil, fmt.Sprintf("expected boolean, received %s", describe(v))
}

func coerceDate(v interface{}) (interface{}, string) {
	switch d := v.(type) {
	case time.Time:
		return d.UTC(), ""
	case primitive.DateTime:
		return d.Time().UTC(), ""
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), ""
			}
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), ""
		}
		return nil, fmt.Sprintf("expected date, received %q", d)
	}
	if f, ok := toFloat(v); ok {
		return time.UnixMilli(int64(f)).UTC(), ""
	}
	return nil, fmt.Sprintf("expected date, received %s", describe(v))
}

// coerceSize accepts non-negative integers for the size operator.
func coerceSize(v interface{}) (interface{}, string) {
	n, ok := toInt(v)
	if !ok || n < 0 {
		return nil, fmt.Sprintf("expected non-negative integer, received %s", describeValue(v))
	}
	return n, ""
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		f := float64(n)
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// toInt converts integral numbers and numeric strings.
func toInt(v interface{}) (int64, bool) {
	if s, ok := v.(string); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		return n, err == nil
	}
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}

func asObject(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case bson.M:
		return m, true
	}
	return nil, false
}

func asArray(v interface{}) ([]interface{}, bool) {
	switch a := v.(type) {
	case []interface{}:
		return a, true
	case bson.A:
		return a, true
	case []string:
		out := make([]interface{}, len(a))
		for i, s := range a {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

// describe names the JSON-ish type of v for issue messages.
func describe(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case time.Time, primitive.DateTime:
		return "date"
	}
	if _, ok := toFloat(v); ok {
		return "number"
	}
	if _, ok := asObject(v); ok {
		return "object"
	}
	if _, ok := asArray(v); ok {
		return "array"
	}
	return fmt.Sprintf("%T", v)
}

func describeValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return describe(v)
}
