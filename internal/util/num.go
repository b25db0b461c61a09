package util

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	dotGroupedPattern   = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`)
	commaGroupedPattern = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+$`)
)

// ParseIntOr coerces a cell value to a positive-friendly integer,
// falling back when nothing numeric can be read. Floats are truncated
// the way spreadsheet quantity cells expect.
func ParseIntOr(value any, fallback int) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return fallback
		}
		if parsed, err := strconv.Atoi(s); err == nil {
			return parsed
		}
		if f, err := strconv.ParseFloat(normalizeNumericToken(s), 64); err == nil {
			return int(f)
		}
	}
	return fallback
}

// ParseFloatPtr coerces a cell value to a float, nil on failure.
// Handles both BR ("1.234,56") and US ("1,234.56") separators.
func ParseFloatPtr(value any) *float64 {
	switch v := value.(type) {
	case float64:
		return FloatPtr(v)
	case int:
		return FloatPtr(float64(v))
	case int64:
		return FloatPtr(float64(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		s = strings.TrimPrefix(s, "R$")
		s = strings.TrimSpace(s)
		if f, err := strconv.ParseFloat(normalizeNumericToken(s), 64); err == nil {
			return FloatPtr(f)
		}
	}
	return nil
}

func normalizeNumericToken(token string) string {
	compact := strings.ReplaceAll(token, " ", "")
	compact = strings.ReplaceAll(compact, " ", "")
	if dotGroupedPattern.MatchString(compact) {
		return strings.ReplaceAll(compact, ".", "")
	}
	if commaGroupedPattern.MatchString(compact) {
		return strings.ReplaceAll(compact, ",", "")
	}
	if strings.Contains(compact, ",") && strings.Contains(compact, ".") {
		if strings.LastIndex(compact, ",") > strings.LastIndex(compact, ".") {
			compact = strings.ReplaceAll(compact, ".", "")
			return strings.ReplaceAll(compact, ",", ".")
		}
		return strings.ReplaceAll(compact, ",", "")
	}
	if strings.Contains(compact, ",") {
		return strings.ReplaceAll(compact, ",", ".")
	}
	return compact
}
