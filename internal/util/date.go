package util

import (
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// Day-first layouts come before month-first: the documents are mostly
// Brazilian, so "03/04/2024" means April 3rd unless day-first fails.
var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2.1.2006",
	"02/01/06",
	"2/1/06",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"01/02/06",
	"2006-01-02",
	"2006/01/02",
}

var freeFormLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
}

// Excel/Lotus serial epoch (accounts for the fictional 1900-02-29).
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// NormalizeDate converts whatever date representation a spreadsheet or
// pasted document carries into a yyyy-MM-dd string. It never fails: a
// value nothing can make sense of becomes today. An approximate but
// valid date beats an error that would block a whole import batch.
func NormalizeDate(input any) string {
	today := time.Now().Format(isoDate)

	switch v := input.(type) {
	case nil:
		return today
	case time.Time:
		return v.Format(isoDate)
	case float64:
		if s, ok := fromExcelSerial(v); ok {
			return s
		}
		return today
	case int:
		if s, ok := fromExcelSerial(float64(v)); ok {
			return s
		}
		return today
	case int64:
		if s, ok := fromExcelSerial(float64(v)); ok {
			return s
		}
		return today
	case string:
		return normalizeDateString(v, today)
	default:
		return today
	}
}

func normalizeDateString(value, today string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return today
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(isoDate)
		}
	}

	for _, layout := range freeFormLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(isoDate)
		}
	}

	return today
}

func fromExcelSerial(serial float64) (string, bool) {
	t := excelEpoch.Add(time.Duration(serial * 86400 * float64(time.Second)))
	if t.Year() < 1900 || t.Year() > 2200 {
		return "", false
	}
	return t.UTC().Format(isoDate), true
}
