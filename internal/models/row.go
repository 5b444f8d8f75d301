package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Row is an untyped record as returned by the PHP backend.
// Keys are usually snake_case but some endpoints answer in camelCase.
// Every accessor takes an ordered list of candidate keys and uses the
// first one that holds a usable value.
type Row map[string]any

// timeLayouts are tried in order when parsing backend timestamps
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Lookup returns the first non-empty value among keys
func (r Row) Lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// String returns the first present key rendered as a string, or ""
func (r Row) String(keys ...string) string {
	v, ok := r.Lookup(keys...)
	if !ok {
		return ""
	}
	return stringify(v)
}

// Int returns the first key that parses as a number, rounded
func (r Row) Int(keys ...string) (int, bool) {
	f, ok := r.Float(keys...)
	if !ok {
		return 0, false
	}
	f = math.Round(f)
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int(f), true
}

// IntOr is Int with a default
func (r Row) IntOr(def int, keys ...string) int {
	if n, ok := r.Int(keys...); ok {
		return n
	}
	return def
}

// Float returns the first key that parses as a number
func (r Row) Float(keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := r.Lookup(k)
		if !ok {
			continue
		}
		if f, ok := toFloat(v); ok {
			return f, true
		}
	}
	return 0, false
}

// FloatOr is Float with a default
func (r Row) FloatOr(def float64, keys ...string) float64 {
	if f, ok := r.Float(keys...); ok {
		return f
	}
	return def
}

// Time returns the first key that parses as a timestamp
func (r Row) Time(keys ...string) (time.Time, bool) {
	for _, k := range keys {
		v, ok := r.Lookup(k)
		if !ok {
			continue
		}
		if t, ok := toTime(v); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// TimeOrZero returns the parsed timestamp or the zero time
func (r Row) TimeOrZero(keys ...string) time.Time {
	t, _ := r.Time(keys...)
	return t
}

// OptTime returns a pointer to the parsed timestamp, nil when absent
func (r Row) OptTime(keys ...string) *time.Time {
	if t, ok := r.Time(keys...); ok {
		return &t
	}
	return nil
}

// Strings returns the first present key as a list. Accepts JSON arrays,
// JSON-encoded array strings and comma separated strings.
func (r Row) Strings(keys ...string) []string {
	v, ok := r.Lookup(keys...)
	if !ok {
		return []string{}
	}
	switch t := v.(type) {
	case []string:
		return compact(t)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			out = append(out, stringify(item))
		}
		return compact(out)
	case string:
		s := strings.TrimSpace(t)
		if strings.HasPrefix(s, "[") {
			var decoded []any
			if err := json.Unmarshal([]byte(s), &decoded); err == nil {
				return Row{"v": decoded}.Strings("v")
			}
		}
		return compact(strings.Split(s, ","))
	default:
		return []string{stringify(v)}
	}
}

// StringMap returns the first present key as a string map
func (r Row) StringMap(keys ...string) map[string]string {
	v, ok := r.Lookup(keys...)
	if !ok {
		return nil
	}
	var src map[string]any
	switch t := v.(type) {
	case map[string]any:
		src = t
	case Row:
		src = t
	case string:
		if err := json.Unmarshal([]byte(t), &src); err != nil {
			return nil
		}
	default:
		return nil
	}
	out := make(map[string]string, len(src))
	for k, val := range src {
		if val == nil {
			continue
		}
		out[k] = stringify(val)
	}
	return out
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(v)
	}
}

// toFloat rejects NaN and infinities so callers fall back to their defaults
func toFloat(v any) (float64, bool) {
	f, ok := rawFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func rawFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	default:
		if secs, ok := toFloat(v); ok && secs > 0 {
			return time.Unix(int64(secs), 0).UTC(), true
		}
		return time.Time{}, false
	}
}
