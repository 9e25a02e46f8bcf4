// Package sanitize normalises loosely typed JSON input into model values.
// Functions accept the raw decoded value (string, float64, bool, nil, ...)
// so callers can distinguish missing keys from invalid ones.
package sanitize

import (
	"math"
	"strings"
	"time"
)

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// Number reports v as a finite float64.
func Number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func roundNonNegative(f float64) int {
	return int(math.Max(0, math.Round(f)))
}

// NonNegativeInt rounds a finite number and clamps it at zero; nil otherwise.
func NonNegativeInt(v any) *int {
	f, ok := Number(v)
	if !ok {
		return nil
	}
	n := roundNonNegative(f)
	return &n
}

// NullableString trims v and returns nil for blank or non-string values.
func NullableString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// StringList keeps the string entries of v, trimmed. Blank entries are dropped
// when dropBlank is set.
func StringList(v any, dropBlank bool) []string {
	var items []any
	switch typed := v.(type) {
	case []any:
		items = typed
	case []string:
		for _, item := range typed {
			items = append(items, item)
		}
	}

	result := []string{}
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if dropBlank && s == "" {
			continue
		}
		result = append(result, s)
	}
	return result
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// DateInput parses ISO-8601 style strings. Layouts without a zone are read as UTC.
func DateInput(v any) *time.Time {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return &parsed
		}
	}
	return nil
}

// Email trims and lower-cases v; non-strings become "".
func Email(v any) string {
	s, _ := v.(string)
	return strings.ToLower(strings.TrimSpace(s))
}

// ID returns v when it is a non-empty string.
func ID(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
